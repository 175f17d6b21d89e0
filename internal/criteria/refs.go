package criteria

// CollectRefs returns every field reference template read by the tree, in
// first-seen order without duplicates. Match nodes read no data and contribute
// nothing; the target of IncludesRef conditions is included.
func CollectRefs(c Criterion) []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]bool)
	var refs []string
	c.collectRefs(func(ref string) {
		if ref == "" || seen[ref] {
			return
		}
		seen[ref] = true
		refs = append(refs, ref)
	})
	return refs
}

func (cond Condition) collectRefs(add func(string)) {
	if cond.Ref != nil {
		add(cond.Ref.String())
	}
}

func (f *FieldCriterion) collectRefs(add func(string)) {
	add(f.Ref.String())
	f.Condition.collectRefs(add)
}

func (t *ThresholdCriterion) collectRefs(add func(string)) {
	add(t.Ref.String())
}

func (c *ComputedCriterion) collectRefs(add func(string)) {
	for _, r := range c.Refs {
		add(r.String())
	}
}

func (*MatchCriterion) collectRefs(func(string)) {}

func (a *AndCriterion) collectRefs(add func(string)) {
	for _, child := range a.Children {
		if child != nil {
			child.collectRefs(add)
		}
	}
}

func (o *OrCriterion) collectRefs(add func(string)) {
	for _, child := range o.Children {
		if child != nil {
			child.collectRefs(add)
		}
	}
}

func (n *NotCriterion) collectRefs(add func(string)) {
	if n.Child != nil {
		n.Child.collectRefs(add)
	}
}

func (a *AnyCriterion) collectRefs(add func(string)) {
	for _, r := range a.Refs {
		add(r.String())
	}
	a.Condition.collectRefs(add)
}

func (a *AllCriterion) collectRefs(add func(string)) {
	for _, r := range a.Refs {
		add(r.String())
	}
	a.Condition.collectRefs(add)
}
