package criteria

import (
	"github.com/dctmd-mcp-server/internal/domain"
)

// ConditionOp is the comparison applied by field and quantifier criteria.
type ConditionOp string

const (
	OpEquals      ConditionOp = "equals"
	OpNotEquals   ConditionOp = "notEquals"
	OpIncludes    ConditionOp = "includes"
	OpNotIncludes ConditionOp = "notIncludes"
)

// IsValid validates the condition operator.
func (op ConditionOp) IsValid() bool {
	switch op {
	case OpEquals, OpNotEquals, OpIncludes, OpNotIncludes:
		return true
	default:
		return false
	}
}

// Condition compares a stored value against either a literal or another field.
// A literal string is template-resolved before comparison, so Includes("${region}")
// tests membership of the location's region.
type Condition struct {
	Op    ConditionOp  `json:"op"`
	Value domain.Value `json:"value"`
	Ref   *Ref         `json:"-"`
}

// Equals matches values equal to v.
func Equals(v any) Condition { return Condition{Op: OpEquals, Value: domain.FromAny(v)} }

// NotEquals matches values different from v.
func NotEquals(v any) Condition { return Condition{Op: OpNotEquals, Value: domain.FromAny(v)} }

// Includes matches lists containing v.
func Includes(v any) Condition { return Condition{Op: OpIncludes, Value: domain.FromAny(v)} }

// NotIncludes matches lists not containing v.
func NotIncludes(v any) Condition { return Condition{Op: OpNotIncludes, Value: domain.FromAny(v)} }

// IncludesRef matches lists containing the value stored at ref.
func IncludesRef(ref string) Condition {
	r := newRef(ref)
	return Condition{Op: OpIncludes, Ref: &r}
}

// NotIncludesRef matches lists not containing the value stored at ref.
func NotIncludesRef(ref string) Condition {
	r := newRef(ref)
	return Condition{Op: OpNotIncludes, Ref: &r}
}

// expected returns the comparison operand for ctx. ok is false when it cannot
// be determined yet (unresolved template or unanswered target field).
func (c Condition) expected(data domain.Value, ctx TemplateContext) (operand domain.Value, ok bool) {
	if c.Ref != nil {
		path, resolved := c.Ref.Resolve(ctx)
		if !resolved {
			return domain.Absent(), false
		}
		operand = data.Lookup(path)
		return operand, !operand.IsMissing()
	}

	if s, isString := c.Value.AsString(); isString {
		s = Resolve(s, ctx)
		if HasUnresolvedPlaceholders(s) {
			return domain.String(s), false
		}
		return domain.String(s), true
	}
	return c.Value, true
}

// check evaluates the condition against an answered value.
func (c Condition) check(actual, operand domain.Value) bool {
	switch c.Op {
	case OpEquals:
		return actual.Equal(operand)
	case OpNotEquals:
		return !actual.Equal(operand)
	case OpIncludes:
		return actual.Kind() == domain.KindList && actual.Contains(operand)
	case OpNotIncludes:
		return actual.Kind() == domain.KindList && !actual.Contains(operand)
	default:
		return false
	}
}

// test returns the status of the condition for a single stored value.
func (c Condition) test(actual domain.Value, data domain.Value, ctx TemplateContext) (domain.CriterionStatus, *domain.Value) {
	if actual.IsMissing() {
		return domain.PENDING, nil
	}
	operand, ok := c.expected(data, ctx)
	if !ok {
		return domain.PENDING, nil
	}
	if c.check(actual, operand) {
		return domain.POSITIVE, &operand
	}
	return domain.NEGATIVE, &operand
}
