// Package diagnosis evaluates DC/TMD diagnosis definitions: an anamnesis criterion
// evaluated once, and an examination criterion instantiated once per (side, region)
// location.
package diagnosis

import (
	"fmt"
	"strings"

	"github.com/dctmd-mcp-server/internal/criteria"
	"github.com/dctmd-mcp-server/internal/domain"
)

// LocationCriterion is an examination criterion template together with the
// regions it is instantiated for. The template uses ${side} and ${region}.
type LocationCriterion struct {
	Regions   []domain.Region
	Criterion criteria.Criterion
}

// Requirement restricts a diagnosis to batches where at least one of AnyOf is positive.
type Requirement struct {
	AnyOf []domain.DiagnosisID `json:"any_of"`
}

// Definition is the rule set of one diagnosis.
type Definition struct {
	ID          domain.DiagnosisID
	Name        string
	Category    domain.DiagnosisCategory
	Anamnesis   criteria.Criterion
	Examination LocationCriterion
	Requires    *Requirement
}

// Location is one (side, region) pair.
type Location struct {
	Side   domain.Side   `json:"side"`
	Region domain.Region `json:"region"`
}

// String renders the location as "side region".
func (l Location) String() string {
	return fmt.Sprintf("%s %s", l.Side, l.Region)
}

// LocationResult is the examination verdict for one location.
type LocationResult struct {
	Side              domain.Side            `json:"side"`
	Region            domain.Region          `json:"region"`
	IsPositive        bool                   `json:"is_positive"`
	Status            domain.CriterionStatus `json:"status"`
	ExaminationResult criteria.Result        `json:"examination_result"`
}

// Location returns the (side, region) pair of the result.
func (r LocationResult) Location() Location {
	return Location{Side: r.Side, Region: r.Region}
}

// RequirementOutcome records how a Requirement was resolved against the batch.
type RequirementOutcome struct {
	AnyOf []domain.DiagnosisID `json:"any_of"`
	// Dependencies holds the status of each dependency found in the batch.
	// Dependencies missing from the batch are absent from the map.
	Dependencies   map[domain.DiagnosisID]domain.CriterionStatus `json:"dependencies"`
	Satisfied      bool                                          `json:"satisfied"`
	OriginalStatus domain.CriterionStatus                        `json:"original_status"`
}

// Result is the verdict for one diagnosis.
type Result struct {
	DiagnosisID       domain.DiagnosisID       `json:"diagnosis_id"`
	Name              string                   `json:"name"`
	Category          domain.DiagnosisCategory `json:"category"`
	Status            domain.CriterionStatus   `json:"status"`
	IsPositive        bool                     `json:"is_positive"`
	AnamnesisResult   criteria.Result          `json:"anamnesis_result"`
	LocationResults   []LocationResult         `json:"location_results"`
	PositiveLocations []Location               `json:"positive_locations"`
	Requirement       *RequirementOutcome      `json:"requirement,omitempty"`
}

// Summary is a one-line human readable verdict.
func (r Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", r.Name, r.Status)

	if len(r.PositiveLocations) > 0 {
		locs := make([]string, len(r.PositiveLocations))
		for i, l := range r.PositiveLocations {
			locs[i] = l.String()
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(locs, ", "))
	}

	if r.Requirement != nil && !r.Requirement.Satisfied {
		ids := make([]string, len(r.Requirement.AnyOf))
		for i, id := range r.Requirement.AnyOf {
			ids[i] = string(id)
		}
		fmt.Fprintf(&b, " [requires %s]", strings.Join(ids, " or "))
	}
	return b.String()
}

// Summary describes a definition for listings.
type Summary struct {
	ID       domain.DiagnosisID       `json:"id"`
	Name     string                   `json:"name"`
	Category domain.DiagnosisCategory `json:"category"`
	Regions  []domain.Region          `json:"regions"`
	Requires []domain.DiagnosisID     `json:"requires,omitempty"`
}

// RelevanceResult lists what remains worth examining given questionnaire answers.
type RelevanceResult struct {
	// RelevantSections is in ascending section number order
	RelevantSections  []string             `json:"relevant_sections"`
	// RelevantFieldRefs holds unresolved template refs, deduplicated across
	// diagnoses and sorted alphabetically rather than in rule tree order
	RelevantFieldRefs []string             `json:"relevant_field_refs"`
	RuledOutDiagnoses []domain.DiagnosisID `json:"ruled_out_diagnoses"`
	PossibleDiagnoses []domain.DiagnosisID `json:"possible_diagnoses"`
}
