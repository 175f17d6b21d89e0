// Package domain contains core entities and types for temporomandibular disorder assessment
// following the Diagnostic Criteria for Temporomandibular Disorders (DC/TMD).
//
// Reference: Schiffman et al. (2014) Diagnostic Criteria for Temporomandibular Disorders
// (DC/TMD) for Clinical and Research Applications. J Oral Facial Pain Headache. 28(1):6-27.
// doi: 10.11607/jop.1151
package domain

// CriterionStatus is the three-valued verdict of a criterion or diagnosis.
// Missing data is never collapsed into NEGATIVE: it stays PENDING.
type CriterionStatus string

const (
	POSITIVE CriterionStatus = "positive"
	NEGATIVE CriterionStatus = "negative"
	PENDING  CriterionStatus = "pending"
)

// Side is the anatomical side a location criterion is instantiated for.
type Side string

const (
	LEFT  Side = "left"
	RIGHT Side = "right"
)

// Sides lists both sides in evaluation order.
var Sides = []Side{LEFT, RIGHT}

// Region is an examination region (E1 pain location vocabulary).
type Region string

const (
	TEMPORALIS Region = "temporalis"
	MASSETER   Region = "masseter"
	TMJ        Region = "tmj"
	OTHER_MAST Region = "otherMast" // other masticatory muscles
	NON_MAST   Region = "nonMast"   // non-masticatory structures
)

// Site is a palpation site recorded in E9 (or supplemental E10).
type Site string

const (
	TEMPORALIS_POSTERIOR    Site = "temporalisPosterior"
	TEMPORALIS_MIDDLE       Site = "temporalisMiddle"
	TEMPORALIS_ANTERIOR     Site = "temporalisAnterior"
	MASSETER_ORIGIN         Site = "masseterOrigin"
	MASSETER_BODY           Site = "masseterBody"
	MASSETER_INSERTION      Site = "masseterInsertion"
	TMJ_LATERAL_POLE        Site = "tmjLateralPole"
	TMJ_AROUND_LATERAL_POLE Site = "tmjAroundLateralPole"
	POSTERIOR_MANDIBULAR    Site = "posteriorMandibular"
	SUBMANDIBULAR           Site = "submandibular"
	LATERAL_PTERYGOID       Site = "lateralPterygoid"
	TEMPORALIS_TENDON       Site = "temporalisTendon"
)

// RegionSites maps each palpable region to its E9/E10 palpation sites.
// Regions absent from the map have no palpation sites.
var RegionSites = map[Region][]Site{
	TEMPORALIS: {TEMPORALIS_POSTERIOR, TEMPORALIS_MIDDLE, TEMPORALIS_ANTERIOR},
	MASSETER:   {MASSETER_ORIGIN, MASSETER_BODY, MASSETER_INSERTION},
	TMJ:        {TMJ_LATERAL_POLE, TMJ_AROUND_LATERAL_POLE},
	OTHER_MAST: {POSTERIOR_MANDIBULAR, SUBMANDIBULAR, LATERAL_PTERYGOID, TEMPORALIS_TENDON},
}

// DiagnosisID is the stable identifier of a DC/TMD diagnosis. It is the join key
// for cross-diagnosis requirements.
type DiagnosisID string

const (
	MYALGIA                               DiagnosisID = "myalgia"
	LOCAL_MYALGIA                         DiagnosisID = "localMyalgia"
	MYOFASCIAL_PAIN_WITH_SPREADING        DiagnosisID = "myofascialPainWithSpreading"
	MYOFASCIAL_PAIN_WITH_REFERRAL         DiagnosisID = "myofascialPainWithReferral"
	ARTHRALGIA                            DiagnosisID = "arthralgia"
	HEADACHE_ATTRIBUTED_TO_TMD            DiagnosisID = "headacheAttributedToTmd"
	DISC_DISPLACEMENT_WITH_REDUCTION      DiagnosisID = "discDisplacementWithReduction"
	DISC_DISPLACEMENT_WITH_REDUCTION_IL   DiagnosisID = "discDisplacementWithReductionIntermittentLocking"
	DISC_DISPLACEMENT_WITHOUT_REDUCTION_L DiagnosisID = "discDisplacementWithoutReductionLimitedOpening"
	DISC_DISPLACEMENT_WITHOUT_REDUCTION   DiagnosisID = "discDisplacementWithoutReductionWithoutLimitedOpening"
	DEGENERATIVE_JOINT_DISEASE            DiagnosisID = "degenerativeJointDisease"
	SUBLUXATION                           DiagnosisID = "subluxation"
)

// DiagnosisCategory groups diagnoses the way the DC/TMD Axis I taxonomy does.
type DiagnosisCategory string

const (
	PAIN_DISORDER  DiagnosisCategory = "painDisorder"
	JOINT_DISORDER DiagnosisCategory = "jointDisorder"
)

// IsValid reports whether the status is one of the three permitted verdicts.
func (s CriterionStatus) IsValid() bool {
	switch s {
	case POSITIVE, NEGATIVE, PENDING:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s CriterionStatus) String() string {
	return string(s)
}

// Negate returns the NOT of the status. PENDING stays PENDING.
func (s CriterionStatus) Negate() CriterionStatus {
	switch s {
	case POSITIVE:
		return NEGATIVE
	case NEGATIVE:
		return POSITIVE
	default:
		return PENDING
	}
}

// Ptr returns a pointer to a copy of the status, for optional overrides.
func (s CriterionStatus) Ptr() *CriterionStatus {
	return &s
}

// IsValid validates the side.
func (s Side) IsValid() bool {
	switch s {
	case LEFT, RIGHT:
		return true
	default:
		return false
	}
}

// String returns the string representation of the side.
func (s Side) String() string {
	return string(s)
}

// IsValid validates the region.
func (r Region) IsValid() bool {
	switch r {
	case TEMPORALIS, MASSETER, TMJ, OTHER_MAST, NON_MAST:
		return true
	default:
		return false
	}
}

// String returns the string representation of the region.
func (r Region) String() string {
	return string(r)
}

// String returns the string representation of the site.
func (s Site) String() string {
	return string(s)
}

// String returns the string representation of the diagnosis identifier.
func (id DiagnosisID) String() string {
	return string(id)
}

// IsValid validates the diagnosis category.
func (c DiagnosisCategory) IsValid() bool {
	switch c {
	case PAIN_DISORDER, JOINT_DISORDER:
		return true
	default:
		return false
	}
}
