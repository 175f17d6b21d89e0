package criteria

import (
	"github.com/dctmd-mcp-server/internal/domain"
)

// Result mirrors the shape of the evaluated criterion and carries the evidence
// behind its status: resolved paths and the values read from them.
//
// Which evidence fields are set depends on Kind:
//   - field, threshold, match: Ref and Value (Expected for field conditions)
//   - computed: Refs, Values and ComputedValue (nil while pending)
//   - and, or, not: Children
//   - any, all: Refs, Values, MatchedRefs, PendingRefs, FailedRefs
type Result struct {
	Kind      Kind                   `json:"kind"`
	Status    domain.CriterionStatus `json:"status"`
	ID        string                 `json:"id,omitempty"`
	Label     string                 `json:"label,omitempty"`
	Criterion Criterion              `json:"-"`

	Ref      string        `json:"ref,omitempty"`
	Value    *domain.Value `json:"value,omitempty"`
	Expected *domain.Value `json:"expected,omitempty"`

	Refs          []string       `json:"refs,omitempty"`
	Values        []domain.Value `json:"values,omitempty"`
	ComputedValue *float64       `json:"computed_value,omitempty"`

	Children []Result `json:"children,omitempty"`

	MatchedRefs []string `json:"matched_refs,omitempty"`
	PendingRefs []string `json:"pending_refs,omitempty"`
	FailedRefs  []string `json:"failed_refs,omitempty"`

	Overridden bool                   `json:"overridden,omitempty"`
	RawStatus  domain.CriterionStatus `json:"raw_status,omitempty"`
}

func newResult(c Criterion) Result {
	m := c.Metadata()
	return Result{Kind: c.Kind(), ID: m.ID, Label: m.Label, Criterion: c}
}

// IsPositive reports whether the status is POSITIVE.
func (r Result) IsPositive() bool { return r.Status == domain.POSITIVE }

// IsNegative reports whether the status is NEGATIVE.
func (r Result) IsNegative() bool { return r.Status == domain.NEGATIVE }

// IsPending reports whether the status is PENDING.
func (r Result) IsPending() bool { return r.Status == domain.PENDING }

// Find returns the first result in the tree, depth first, whose ID is id.
func (r Result) Find(id string) (Result, bool) {
	if r.ID == id {
		return r, true
	}
	for _, child := range r.Children {
		if found, ok := child.Find(id); ok {
			return found, true
		}
	}
	return Result{}, false
}

// Walk visits the result and all descendants depth first.
func (r Result) Walk(fn func(Result)) {
	fn(r)
	for _, child := range r.Children {
		child.Walk(fn)
	}
}

func valuePtr(v domain.Value) *domain.Value { return &v }
