package diagnosis

import (
	"github.com/dctmd-mcp-server/internal/criteria"
	"github.com/dctmd-mcp-server/internal/domain"
)

// Answer values used by the intake forms.
const (
	Yes = "yes"
	No  = "no"

	PainIntermittent = "intermittent"
	PainContinuous   = "continuous"
)

// Opening and excursion maneuvers recorded in E4, E5 and E7.
var (
	openingManeuvers  = []string{"maxUnassisted", "maxAssisted"}
	movementManeuvers = []string{"lateralRight", "lateralLeft", "protrusive"}
)

// NewDCTMDRegistry builds the validated registry of the twelve DC/TMD Axis I
// diagnoses.
func NewDCTMDRegistry() (*Registry, error) {
	return NewRegistry(DCTMDDefinitions()...)
}

// DCTMDDefinitions returns freshly built definitions, in the order of the
// DC/TMD diagnostic decision tree.
func DCTMDDefinitions() []Definition {
	return []Definition{
		myalgia(),
		localMyalgia(),
		myofascialPainWithSpreading(),
		myofascialPainWithReferral(),
		arthralgia(),
		headacheAttributedToTMD(),
		discDisplacementWithReduction(),
		discDisplacementWithReductionIntermittentLocking(),
		discDisplacementWithoutReductionLimitedOpening(),
		discDisplacementWithoutReductionWithoutLimitedOpening(),
		degenerativeJointDisease(),
		subluxation(),
	}
}

func yesAt(ref string, opts ...criteria.Option) criteria.Criterion {
	return criteria.Field(ref, criteria.Equals(Yes), opts...)
}

func sqRefs(prefix string, suffixes ...string) []string {
	refs := make([]string, len(suffixes))
	for i, s := range suffixes {
		refs[i] = "sq." + prefix + s
	}
	return refs
}

// painHistory: pain in a masticatory structure (SQ1), in the last 30 days (SQ3),
// modified by jaw movement, function or parafunction (SQ4 A-D).
func painHistory() criteria.Criterion {
	return criteria.With(criteria.And(
		yesAt("sq.SQ1", criteria.ID("sq1"), criteria.Label("Pain in jaw, temple, in the ear or in front of the ear")),
		criteria.With(criteria.Or(
			criteria.Field("sq.SQ3", criteria.Equals(PainIntermittent)),
			criteria.Field("sq.SQ3", criteria.Equals(PainContinuous)),
		), criteria.ID("sq3"), criteria.Label("Pain in the last 30 days")),
		criteria.Any(sqRefs("SQ4_", "A", "B", "C", "D"), criteria.Equals(Yes),
			criteria.ID("sq4"), criteria.Label("Pain modified by jaw movement, function or parafunction")),
	), criteria.ID("pain-history"))
}

func painLocationConfirmed() criteria.Criterion {
	return criteria.Field("e1.painLocation.${side}", criteria.Includes("${region}"),
		criteria.ID("e1-pain"), criteria.Label("Examiner confirms pain location"))
}

// openingPain: familiar pain or headache reported during maximum unassisted or assisted opening.
func openingPain(finding string) criteria.Criterion {
	children := make([]criteria.Criterion, len(openingManeuvers))
	for i, m := range openingManeuvers {
		children[i] = yesAt("e4." + m + ".${side}.${region}." + finding)
	}
	return criteria.With(criteria.Or(children...), criteria.ID("e4-"+finding))
}

// movementPain: familiar pain or headache reported during lateral or protrusive movements.
func movementPain(finding string) criteria.Criterion {
	children := make([]criteria.Criterion, len(movementManeuvers))
	for i, m := range movementManeuvers {
		children[i] = yesAt("e5." + m + ".${side}.${region}." + finding)
	}
	return criteria.With(criteria.Or(children...), criteria.ID("e5-"+finding))
}

// palpationSection is where a region's palpation sites are recorded: E9, or the
// supplemental E10 for other masticatory muscles.
func palpationSection(region domain.Region) string {
	if region == domain.OTHER_MAST {
		return "e10"
	}
	return "e9"
}

// palpation reports the finding at any site of the location's region. Each
// region's sites sit behind a Match gate so a location never reads the sites of
// another region.
func palpation(finding string, regions ...domain.Region) criteria.Criterion {
	branches := make([]criteria.Criterion, 0, len(regions))
	for _, region := range regions {
		sites := domain.RegionSites[region]
		refs := make([]string, len(sites))
		for i, site := range sites {
			refs[i] = palpationSection(region) + ".${side}." + string(site) + "." + finding
		}
		branches = append(branches, criteria.And(
			criteria.Match("${region}", string(region)),
			criteria.Any(refs, criteria.Equals(Yes)),
		))
	}
	return criteria.With(criteria.Or(branches...), criteria.ID("palpation-"+finding))
}

func myalgia() Definition {
	return Definition{
		ID:        domain.MYALGIA,
		Name:      "Myalgia",
		Category:  domain.PAIN_DISORDER,
		Anamnesis: painHistory(),
		Examination: LocationCriterion{
			Regions: []domain.Region{domain.TEMPORALIS, domain.MASSETER, domain.OTHER_MAST, domain.NON_MAST},
			Criterion: criteria.And(
				painLocationConfirmed(),
				criteria.Or(
					openingPain("familiarPain"),
					palpation("familiarPain", domain.TEMPORALIS, domain.MASSETER, domain.OTHER_MAST),
				),
			),
		},
	}
}

var myalgiaSubtypeRegions = []domain.Region{domain.TEMPORALIS, domain.MASSETER}

func localMyalgia() Definition {
	return Definition{
		ID:        domain.LOCAL_MYALGIA,
		Name:      "Local myalgia",
		Category:  domain.PAIN_DISORDER,
		Anamnesis: painHistory(),
		Examination: LocationCriterion{
			Regions: myalgiaSubtypeRegions,
			Criterion: criteria.And(
				painLocationConfirmed(),
				palpation("familiarPain", myalgiaSubtypeRegions...),
				criteria.Not(palpation("spreadingPain", myalgiaSubtypeRegions...)),
				criteria.Not(palpation("referredPain", myalgiaSubtypeRegions...)),
			),
		},
		Requires: &Requirement{AnyOf: []domain.DiagnosisID{domain.MYALGIA}},
	}
}

func myofascialPainWithSpreading() Definition {
	return Definition{
		ID:        domain.MYOFASCIAL_PAIN_WITH_SPREADING,
		Name:      "Myofascial pain with spreading",
		Category:  domain.PAIN_DISORDER,
		Anamnesis: painHistory(),
		Examination: LocationCriterion{
			Regions: myalgiaSubtypeRegions,
			Criterion: criteria.And(
				painLocationConfirmed(),
				palpation("familiarPain", myalgiaSubtypeRegions...),
				palpation("spreadingPain", myalgiaSubtypeRegions...),
				criteria.Not(palpation("referredPain", myalgiaSubtypeRegions...)),
			),
		},
		Requires: &Requirement{AnyOf: []domain.DiagnosisID{domain.MYALGIA}},
	}
}

func myofascialPainWithReferral() Definition {
	return Definition{
		ID:        domain.MYOFASCIAL_PAIN_WITH_REFERRAL,
		Name:      "Myofascial pain with referral",
		Category:  domain.PAIN_DISORDER,
		Anamnesis: painHistory(),
		Examination: LocationCriterion{
			Regions: myalgiaSubtypeRegions,
			Criterion: criteria.And(
				painLocationConfirmed(),
				palpation("familiarPain", myalgiaSubtypeRegions...),
				palpation("referredPain", myalgiaSubtypeRegions...),
			),
		},
		Requires: &Requirement{AnyOf: []domain.DiagnosisID{domain.MYALGIA}},
	}
}

func arthralgia() Definition {
	return Definition{
		ID:        domain.ARTHRALGIA,
		Name:      "Arthralgia",
		Category:  domain.PAIN_DISORDER,
		Anamnesis: painHistory(),
		Examination: LocationCriterion{
			Regions: []domain.Region{domain.TMJ},
			Criterion: criteria.And(
				painLocationConfirmed(),
				criteria.Or(
					openingPain("familiarPain"),
					movementPain("familiarPain"),
					palpation("familiarPain", domain.TMJ),
				),
			),
		},
	}
}

func headacheAttributedToTMD() Definition {
	return Definition{
		ID:       domain.HEADACHE_ATTRIBUTED_TO_TMD,
		Name:     "Headache attributed to TMD",
		Category: domain.PAIN_DISORDER,
		Anamnesis: criteria.With(criteria.And(
			yesAt("sq.SQ5", criteria.ID("sq5"), criteria.Label("Headache including the temple area")),
			criteria.Any(sqRefs("SQ7_", "A", "B", "C", "D"), criteria.Equals(Yes),
				criteria.ID("sq7"), criteria.Label("Headache modified by jaw movement, function or parafunction")),
		), criteria.ID("headache-history")),
		Examination: LocationCriterion{
			Regions: []domain.Region{domain.TEMPORALIS},
			Criterion: criteria.And(
				criteria.Field("e1.headacheLocation.${side}", criteria.Includes("${region}"),
					criteria.ID("e1-headache"), criteria.Label("Examiner confirms headache location")),
				criteria.Or(
					openingPain("familiarHeadache"),
					movementPain("familiarHeadache"),
					palpation("familiarHeadache", domain.TEMPORALIS),
				),
			),
		},
		Requires: &Requirement{AnyOf: []domain.DiagnosisID{domain.MYALGIA, domain.ARTHRALGIA}},
	}
}

func jointNoiseHistory() criteria.Criterion {
	return yesAt("sq.SQ8", criteria.ID("sq8"), criteria.Label("TMJ noise in the last 30 days"))
}

// clickingWithReduction: clicking on both opening and closing, or on opening or
// closing together with clicking on an excursive movement.
func clickingWithReduction() criteria.Criterion {
	excursive := make([]string, len(movementManeuvers))
	for i, m := range movementManeuvers {
		excursive[i] = "e7.${side}.click." + m
	}

	return criteria.With(criteria.Or(
		criteria.And(
			yesAt("e6.${side}.click.open"),
			yesAt("e6.${side}.click.close"),
		),
		criteria.And(
			criteria.Or(
				yesAt("e6.${side}.click.open"),
				yesAt("e6.${side}.click.close"),
			),
			criteria.Any(excursive, criteria.Equals(Yes)),
		),
	), criteria.ID("clicking"), criteria.Label("Clicking detected with opening/closing or excursions"))
}

func discDisplacementWithReduction() Definition {
	return Definition{
		ID:        domain.DISC_DISPLACEMENT_WITH_REDUCTION,
		Name:      "Disc displacement with reduction",
		Category:  domain.JOINT_DISORDER,
		Anamnesis: jointNoiseHistory(),
		Examination: LocationCriterion{
			Regions:   []domain.Region{domain.TMJ},
			Criterion: clickingWithReduction(),
		},
	}
}

func discDisplacementWithReductionIntermittentLocking() Definition {
	return Definition{
		ID:       domain.DISC_DISPLACEMENT_WITH_REDUCTION_IL,
		Name:     "Disc displacement with reduction, with intermittent locking",
		Category: domain.JOINT_DISORDER,
		Anamnesis: criteria.And(
			jointNoiseHistory(),
			yesAt("sq.SQ11", criteria.ID("sq11"), criteria.Label("Jaw locked with limited opening, then unlocked")),
			criteria.Field("sq.SQ12", criteria.Equals(No), criteria.ID("sq12"), criteria.Label("Jaw currently locked")),
		),
		Examination: LocationCriterion{
			Regions:   []domain.Region{domain.TMJ},
			Criterion: clickingWithReduction(),
		},
	}
}

func lockingHistory() criteria.Criterion {
	return criteria.And(
		yesAt("sq.SQ9", criteria.ID("sq9"), criteria.Label("Jaw ever locked or caught")),
		yesAt("sq.SQ10", criteria.ID("sq10"), criteria.Label("Locking severe enough to limit opening and interfere with eating")),
	)
}

// assistedOpening is maximum assisted opening plus vertical incisal overlap, in mm.
func assistedOpening(op criteria.Operator) criteria.Criterion {
	return criteria.Computed(
		[]string{"e4.maxAssisted.measurement", "e2.verticalOverlap"},
		criteria.Sum, op, 40,
		criteria.ID("assisted-opening"), criteria.Label("Maximum assisted opening including vertical overlap"),
	).WithDefaults(map[string]float64{"e2.verticalOverlap": 0})
}

func discDisplacementWithoutReductionLimitedOpening() Definition {
	return Definition{
		ID:        domain.DISC_DISPLACEMENT_WITHOUT_REDUCTION_L,
		Name:      "Disc displacement without reduction, with limited opening",
		Category:  domain.JOINT_DISORDER,
		Anamnesis: lockingHistory(),
		Examination: LocationCriterion{
			Regions:   []domain.Region{domain.TMJ},
			Criterion: assistedOpening(criteria.LT),
		},
	}
}

func discDisplacementWithoutReductionWithoutLimitedOpening() Definition {
	return Definition{
		ID:        domain.DISC_DISPLACEMENT_WITHOUT_REDUCTION,
		Name:      "Disc displacement without reduction, without limited opening",
		Category:  domain.JOINT_DISORDER,
		Anamnesis: lockingHistory(),
		Examination: LocationCriterion{
			Regions:   []domain.Region{domain.TMJ},
			Criterion: assistedOpening(criteria.GTE),
		},
	}
}

func degenerativeJointDisease() Definition {
	refs := []string{"e6.${side}.crepitus.open", "e6.${side}.crepitus.close"}
	for _, m := range movementManeuvers {
		refs = append(refs, "e7.${side}.crepitus."+m)
	}

	return Definition{
		ID:        domain.DEGENERATIVE_JOINT_DISEASE,
		Name:      "Degenerative joint disease",
		Category:  domain.JOINT_DISORDER,
		Anamnesis: jointNoiseHistory(),
		Examination: LocationCriterion{
			Regions: []domain.Region{domain.TMJ},
			Criterion: criteria.Any(refs, criteria.Equals(Yes),
				criteria.ID("crepitus"), criteria.Label("Crepitus detected during opening, closing or excursions")),
		},
	}
}

// subluxation is diagnosed from history; the examination finding is optional and
// counts as satisfied when not recorded.
func subluxation() Definition {
	return Definition{
		ID:       domain.SUBLUXATION,
		Name:     "Subluxation",
		Category: domain.JOINT_DISORDER,
		Anamnesis: criteria.And(
			yesAt("sq.SQ13", criteria.ID("sq13"), criteria.Label("Jaw locked or caught in a wide open position")),
			yesAt("sq.SQ14", criteria.ID("sq14"), criteria.Label("Could not close without a self-maneuver")),
		),
		Examination: LocationCriterion{
			Regions: []domain.Region{domain.TMJ},
			Criterion: criteria.With(criteria.Or(
				yesAt("e8.${side}.openLocking.reducibleByPatient"),
				yesAt("e8.${side}.openLocking.reducibleByExaminer"),
			), criteria.ID("open-locking"), criteria.Label("Open locking reduced by patient or examiner"),
				criteria.PendingAs(domain.POSITIVE)),
		},
	}
}
