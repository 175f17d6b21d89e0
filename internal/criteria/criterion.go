// Package criteria implements the DC/TMD criterion language: field references,
// the criterion tree model and its three-valued evaluator.
//
// A criterion evaluates to POSITIVE, NEGATIVE or PENDING. Data that has not been
// collected yet never makes a criterion NEGATIVE; it makes it PENDING, unless the
// node carries a PendingAs override.
package criteria

import (
	"math"

	"github.com/dctmd-mcp-server/internal/domain"
)

// Kind discriminates criterion variants and their results.
type Kind string

const (
	KindField     Kind = "field"
	KindThreshold Kind = "threshold"
	KindComputed  Kind = "computed"
	KindMatch     Kind = "match"
	KindAnd       Kind = "and"
	KindOr        Kind = "or"
	KindNot       Kind = "not"
	KindAny       Kind = "any"
	KindAll       Kind = "all"
)

// Operator is a numeric comparison.
type Operator string

const (
	LT  Operator = "<"
	GT  Operator = ">"
	LTE Operator = "<="
	GTE Operator = ">="
)

// IsValid validates the operator.
func (op Operator) IsValid() bool {
	switch op {
	case LT, GT, LTE, GTE:
		return true
	default:
		return false
	}
}

// Compare applies the operator to a and b.
func (op Operator) Compare(a, b float64) bool {
	switch op {
	case LT:
		return a < b
	case GT:
		return a > b
	case LTE:
		return a <= b
	case GTE:
		return a >= b
	default:
		return false
	}
}

// Meta is the optional metadata carried by every node.
type Meta struct {
	ID        string                  `json:"id,omitempty"`
	Label     string                  `json:"label,omitempty"`
	PendingAs *domain.CriterionStatus `json:"pending_as,omitempty"`
}

// Metadata returns the node metadata.
func (m *Meta) Metadata() Meta { return *m }

func (m *Meta) meta() *Meta { return m }

// Criterion is a node of a rule tree. The set of variants is closed: only this
// package can implement the interface.
type Criterion interface {
	Kind() Kind
	Metadata() Meta

	meta() *Meta
	evaluate(data domain.Value, ctx TemplateContext) (Result, error)
	collectRefs(add func(string))
	validate() error
}

// ComputeFunc derives one number from the values of a computed criterion's refs,
// in ref order.
type ComputeFunc func(values []float64) (float64, error)

// Sum adds all values.
func Sum(values []float64) (float64, error) {
	var total float64
	for _, v := range values {
		total += v
	}
	return total, nil
}

// FieldCriterion compares one stored value against a condition.
type FieldCriterion struct {
	Meta
	Ref       Ref
	Condition Condition
}

// ThresholdCriterion compares one stored number against a constant.
type ThresholdCriterion struct {
	Meta
	Ref      Ref
	Operator Operator
	Value    float64
}

// ComputedCriterion derives a number from several fields and compares it against
// a constant. Defaults, keyed by ref template, substitute for unanswered fields.
type ComputedCriterion struct {
	Meta
	Refs     []Ref
	Compute  ComputeFunc
	Operator Operator
	Value    float64
	Defaults map[string]float64
}

// MatchCriterion compares the resolved template string itself against Value.
// It reads no data and gates rules by evaluation context.
type MatchCriterion struct {
	Meta
	Ref   string
	Value string
}

// AndCriterion is positive when every child is positive.
type AndCriterion struct {
	Meta
	Children []Criterion
}

// OrCriterion is positive when any child is positive.
type OrCriterion struct {
	Meta
	Children []Criterion
}

// NotCriterion negates its child. Pending stays pending.
type NotCriterion struct {
	Meta
	Child Criterion
}

// AnyCriterion is positive when at least MinCount refs satisfy the condition.
// A zero MinCount means 1.
type AnyCriterion struct {
	Meta
	Refs      []Ref
	Condition Condition
	MinCount  int
}

// AllCriterion is positive when every ref satisfies the condition.
type AllCriterion struct {
	Meta
	Refs      []Ref
	Condition Condition
}

func (*FieldCriterion) Kind() Kind     { return KindField }
func (*ThresholdCriterion) Kind() Kind { return KindThreshold }
func (*ComputedCriterion) Kind() Kind  { return KindComputed }
func (*MatchCriterion) Kind() Kind     { return KindMatch }
func (*AndCriterion) Kind() Kind       { return KindAnd }
func (*OrCriterion) Kind() Kind        { return KindOr }
func (*NotCriterion) Kind() Kind       { return KindNot }
func (*AnyCriterion) Kind() Kind       { return KindAny }
func (*AllCriterion) Kind() Kind       { return KindAll }

func (a *AnyCriterion) minCount() int {
	if a.MinCount <= 0 {
		return 1
	}
	return a.MinCount
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
