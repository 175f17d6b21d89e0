package criteria

import (
	"fmt"
)

// Validate checks a criterion tree for configuration errors and returns the
// first one found, depth first. Definitions are validated once at startup.
func Validate(c Criterion) error {
	if c == nil {
		return configError(nil, "nil criterion", nil)
	}
	if pa := c.Metadata().PendingAs; pa != nil && !pa.IsValid() {
		return configError(c, fmt.Sprintf("invalid pendingAs status %q", *pa), nil)
	}
	return c.validate()
}

func validateRef(c Criterion, r Ref) error {
	if err := r.Err(); err != nil {
		return configError(c, "bad field reference", err)
	}
	return nil
}

func validateRefs(c Criterion, refs []Ref) error {
	if len(refs) == 0 {
		return configError(c, "no field references", nil)
	}
	for _, r := range refs {
		if err := validateRef(c, r); err != nil {
			return err
		}
	}
	return nil
}

func validateCondition(c Criterion, cond Condition) error {
	if cond.Op == "" {
		return configError(c, "missing condition", nil)
	}
	if !cond.Op.IsValid() {
		return configError(c, fmt.Sprintf("unknown condition %q", cond.Op), nil)
	}
	if cond.Ref != nil {
		return validateRef(c, *cond.Ref)
	}
	return nil
}

func validateChildren(c Criterion, children []Criterion) error {
	if len(children) == 0 {
		return configError(c, "no children", nil)
	}
	for i, child := range children {
		if child == nil {
			return configError(c, fmt.Sprintf("nil child at index %d", i), nil)
		}
		if err := Validate(child); err != nil {
			return err
		}
	}
	return nil
}

func (f *FieldCriterion) validate() error {
	if err := validateRef(f, f.Ref); err != nil {
		return err
	}
	return validateCondition(f, f.Condition)
}

func (t *ThresholdCriterion) validate() error {
	if err := validateRef(t, t.Ref); err != nil {
		return err
	}
	if !t.Operator.IsValid() {
		return configError(t, fmt.Sprintf("unknown operator %q", t.Operator), nil)
	}
	if !isFinite(t.Value) {
		return configError(t, "threshold is not a finite number", nil)
	}
	return nil
}

func (c *ComputedCriterion) validate() error {
	if err := validateRefs(c, c.Refs); err != nil {
		return err
	}
	if c.Compute == nil {
		return configError(c, "missing compute function", nil)
	}
	if !c.Operator.IsValid() {
		return configError(c, fmt.Sprintf("unknown operator %q", c.Operator), nil)
	}
	if !isFinite(c.Value) {
		return configError(c, "threshold is not a finite number", nil)
	}

	known := make(map[string]bool, len(c.Refs))
	for _, r := range c.Refs {
		known[r.String()] = true
	}
	for ref := range c.Defaults {
		if !known[ref] {
			return configError(c, fmt.Sprintf("default for unknown ref %q", ref), nil)
		}
	}
	return nil
}

func (m *MatchCriterion) validate() error {
	if m.Ref == "" {
		return configError(m, "empty match template", nil)
	}
	return nil
}

func (a *AndCriterion) validate() error { return validateChildren(a, a.Children) }

func (o *OrCriterion) validate() error { return validateChildren(o, o.Children) }

func (n *NotCriterion) validate() error {
	if n.Child == nil {
		return configError(n, "nil child", nil)
	}
	return Validate(n.Child)
}

func (a *AnyCriterion) validate() error {
	if err := validateRefs(a, a.Refs); err != nil {
		return err
	}
	if a.MinCount < 0 || a.MinCount > len(a.Refs) {
		return configError(a, fmt.Sprintf("minCount %d out of range for %d refs", a.MinCount, len(a.Refs)), nil)
	}
	return validateCondition(a, a.Condition)
}

func (a *AllCriterion) validate() error {
	if err := validateRefs(a, a.Refs); err != nil {
		return err
	}
	return validateCondition(a, a.Condition)
}
