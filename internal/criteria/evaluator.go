package criteria

import (
	"github.com/dctmd-mcp-server/internal/domain"
)

// Evaluate evaluates c against data with ctx supplying template values.
//
// Clinical indeterminacy is reported as PENDING in the result. The error is
// reserved for configuration problems, such as a nil node or a failing compute
// function, and is always a *ConfigurationError.
func Evaluate(c Criterion, data domain.Value, ctx TemplateContext) (Result, error) {
	if c == nil {
		return Result{}, configError(nil, "nil criterion", nil)
	}

	res, err := c.evaluate(data, ctx)
	if err != nil {
		return Result{}, err
	}

	if res.Status == domain.PENDING {
		if override := c.Metadata().PendingAs; override != nil {
			res.Overridden = true
			res.RawStatus = domain.PENDING
			res.Status = *override
		}
	}
	return res, nil
}

func (f *FieldCriterion) evaluate(data domain.Value, ctx TemplateContext) (Result, error) {
	res := newResult(f)

	ref, path, ok := f.Ref.resolvedString(ctx)
	res.Ref = ref
	if !ok {
		res.Status = domain.PENDING
		return res, nil
	}

	actual := data.Lookup(path)
	res.Value = valuePtr(actual)
	res.Status, res.Expected = f.Condition.test(actual, data, ctx)
	return res, nil
}

func (t *ThresholdCriterion) evaluate(data domain.Value, ctx TemplateContext) (Result, error) {
	res := newResult(t)

	ref, path, ok := t.Ref.resolvedString(ctx)
	res.Ref = ref
	if !ok {
		res.Status = domain.PENDING
		return res, nil
	}

	actual := data.Lookup(path)
	res.Value = valuePtr(actual)

	n, isNumber := actual.AsNumber()
	switch {
	case !isNumber:
		res.Status = domain.PENDING
	case t.Operator.Compare(n, t.Value):
		res.Status = domain.POSITIVE
	default:
		res.Status = domain.NEGATIVE
	}
	return res, nil
}

func (c *ComputedCriterion) evaluate(data domain.Value, ctx TemplateContext) (Result, error) {
	res := newResult(c)
	res.Refs = make([]string, len(c.Refs))
	res.Values = make([]domain.Value, len(c.Refs))

	numbers := make([]float64, len(c.Refs))
	pending := false
	for i, r := range c.Refs {
		ref, path, ok := r.resolvedString(ctx)
		res.Refs[i] = ref

		value := domain.Absent()
		if ok {
			value = data.Lookup(path)
		}

		if n, isNumber := value.AsNumber(); isNumber {
			res.Values[i] = value
			numbers[i] = n
			continue
		}
		// defaults stand in for missing values only, never for malformed ones
		if def, hasDefault := c.Defaults[r.String()]; hasDefault && value.IsMissing() {
			res.Values[i] = domain.Number(def)
			numbers[i] = def
			continue
		}
		res.Values[i] = value
		pending = true
	}

	if pending {
		res.Status = domain.PENDING
		return res, nil
	}

	if c.Compute == nil {
		return Result{}, configError(c, "missing compute function", nil)
	}
	computed, err := c.Compute(numbers)
	if err != nil {
		return Result{}, configError(c, "compute failed", err)
	}
	res.ComputedValue = &computed

	if c.Operator.Compare(computed, c.Value) {
		res.Status = domain.POSITIVE
	} else {
		res.Status = domain.NEGATIVE
	}
	return res, nil
}

func (m *MatchCriterion) evaluate(_ domain.Value, ctx TemplateContext) (Result, error) {
	res := newResult(m)

	resolved := Resolve(m.Ref, ctx)
	res.Ref = resolved
	res.Expected = valuePtr(domain.String(m.Value))

	if HasUnresolvedPlaceholders(resolved) {
		res.Status = domain.PENDING
		return res, nil
	}

	res.Value = valuePtr(domain.String(resolved))
	if resolved == m.Value {
		res.Status = domain.POSITIVE
	} else {
		res.Status = domain.NEGATIVE
	}
	return res, nil
}

// evaluateChildren evaluates every child in order without short-circuiting.
// A configuration error anywhere fails the whole node, even when an earlier
// sibling already decided the status. Validate rejects the structural ones at
// startup; compute failures can only surface here.
func evaluateChildren(children []Criterion, data domain.Value, ctx TemplateContext) ([]Result, error) {
	results := make([]Result, 0, len(children))
	for _, child := range children {
		r, err := Evaluate(child, data, ctx)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func (a *AndCriterion) evaluate(data domain.Value, ctx TemplateContext) (Result, error) {
	res := newResult(a)

	children, err := evaluateChildren(a.Children, data, ctx)
	if err != nil {
		return Result{}, err
	}
	res.Children = children

	res.Status = domain.POSITIVE
	for _, child := range children {
		if child.Status == domain.NEGATIVE {
			res.Status = domain.NEGATIVE
			break
		}
		if child.Status == domain.PENDING {
			res.Status = domain.PENDING
		}
	}
	return res, nil
}

func (o *OrCriterion) evaluate(data domain.Value, ctx TemplateContext) (Result, error) {
	res := newResult(o)

	children, err := evaluateChildren(o.Children, data, ctx)
	if err != nil {
		return Result{}, err
	}
	res.Children = children

	res.Status = domain.NEGATIVE
	for _, child := range children {
		if child.Status == domain.POSITIVE {
			res.Status = domain.POSITIVE
			break
		}
		if child.Status == domain.PENDING {
			res.Status = domain.PENDING
		}
	}
	return res, nil
}

func (n *NotCriterion) evaluate(data domain.Value, ctx TemplateContext) (Result, error) {
	res := newResult(n)

	child, err := Evaluate(n.Child, data, ctx)
	if err != nil {
		return Result{}, err
	}
	res.Children = []Result{child}
	res.Status = child.Status.Negate()
	return res, nil
}

// quantify tests cond against every ref and fills the quantifier evidence.
func quantify(res *Result, refs []Ref, cond Condition, data domain.Value, ctx TemplateContext) (matched, pending, failed int) {
	res.Refs = make([]string, len(refs))
	res.Values = make([]domain.Value, len(refs))

	for i, r := range refs {
		ref, path, ok := r.resolvedString(ctx)
		res.Refs[i] = ref

		status := domain.PENDING
		value := domain.Absent()
		if ok {
			value = data.Lookup(path)
			status, _ = cond.test(value, data, ctx)
		}
		res.Values[i] = value

		switch status {
		case domain.POSITIVE:
			matched++
			res.MatchedRefs = append(res.MatchedRefs, ref)
		case domain.NEGATIVE:
			failed++
			res.FailedRefs = append(res.FailedRefs, ref)
		default:
			pending++
			res.PendingRefs = append(res.PendingRefs, ref)
		}
	}
	return matched, pending, failed
}

func (a *AnyCriterion) evaluate(data domain.Value, ctx TemplateContext) (Result, error) {
	res := newResult(a)

	matched, pending, _ := quantify(&res, a.Refs, a.Condition, data, ctx)
	need := a.minCount()
	switch {
	case matched >= need:
		res.Status = domain.POSITIVE
	case matched+pending < need:
		res.Status = domain.NEGATIVE
	default:
		res.Status = domain.PENDING
	}
	return res, nil
}

func (a *AllCriterion) evaluate(data domain.Value, ctx TemplateContext) (Result, error) {
	res := newResult(a)

	_, pending, failed := quantify(&res, a.Refs, a.Condition, data, ctx)
	switch {
	case failed > 0:
		res.Status = domain.NEGATIVE
	case pending > 0:
		res.Status = domain.PENDING
	default:
		res.Status = domain.POSITIVE
	}
	return res, nil
}
