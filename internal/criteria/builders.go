package criteria

import (
	"github.com/dctmd-mcp-server/internal/domain"
)

// Option sets node metadata at construction time.
type Option func(*Meta)

// ID sets the node identifier.
func ID(id string) Option {
	return func(m *Meta) { m.ID = id }
}

// Label sets the human readable label.
func Label(label string) Option {
	return func(m *Meta) { m.Label = label }
}

// PendingAs substitutes status whenever the node would evaluate to PENDING.
func PendingAs(status domain.CriterionStatus) Option {
	return func(m *Meta) { m.PendingAs = status.Ptr() }
}

// With applies options to an already built node and returns it.
func With[C Criterion](c C, opts ...Option) C {
	m := c.meta()
	for _, opt := range opts {
		opt(m)
	}
	return c
}

func newMeta(opts []Option) Meta {
	var m Meta
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func newRefs(refs []string) []Ref {
	out := make([]Ref, len(refs))
	for i, r := range refs {
		out[i] = newRef(r)
	}
	return out
}

// Field builds a field criterion.
func Field(ref string, cond Condition, opts ...Option) *FieldCriterion {
	return &FieldCriterion{Meta: newMeta(opts), Ref: newRef(ref), Condition: cond}
}

// Threshold builds a numeric threshold criterion.
func Threshold(ref string, op Operator, value float64, opts ...Option) *ThresholdCriterion {
	return &ThresholdCriterion{Meta: newMeta(opts), Ref: newRef(ref), Operator: op, Value: value}
}

// Computed builds a computed criterion.
func Computed(refs []string, compute ComputeFunc, op Operator, value float64, opts ...Option) *ComputedCriterion {
	return &ComputedCriterion{
		Meta:     newMeta(opts),
		Refs:     newRefs(refs),
		Compute:  compute,
		Operator: op,
		Value:    value,
	}
}

// WithDefaults sets per-ref defaults used when a field is unanswered.
func (c *ComputedCriterion) WithDefaults(defaults map[string]float64) *ComputedCriterion {
	c.Defaults = make(map[string]float64, len(defaults))
	for k, v := range defaults {
		c.Defaults[k] = v
	}
	return c
}

// Match builds a context gate: positive when the resolved ref equals value.
func Match(ref, value string, opts ...Option) *MatchCriterion {
	return &MatchCriterion{Meta: newMeta(opts), Ref: ref, Value: value}
}

// And builds a conjunction.
func And(children ...Criterion) *AndCriterion {
	return &AndCriterion{Children: children}
}

// Or builds a disjunction.
func Or(children ...Criterion) *OrCriterion {
	return &OrCriterion{Children: children}
}

// Not builds a negation.
func Not(child Criterion, opts ...Option) *NotCriterion {
	return &NotCriterion{Meta: newMeta(opts), Child: child}
}

// Any builds a quantifier that needs one matching ref.
func Any(refs []string, cond Condition, opts ...Option) *AnyCriterion {
	return &AnyCriterion{Meta: newMeta(opts), Refs: newRefs(refs), Condition: cond, MinCount: 1}
}

// AtLeast builds a quantifier that needs n matching refs.
func AtLeast(n int, refs []string, cond Condition, opts ...Option) *AnyCriterion {
	return &AnyCriterion{Meta: newMeta(opts), Refs: newRefs(refs), Condition: cond, MinCount: n}
}

// All builds a quantifier that needs every ref to match.
func All(refs []string, cond Condition, opts ...Option) *AllCriterion {
	return &AllCriterion{Meta: newMeta(opts), Refs: newRefs(refs), Condition: cond}
}
