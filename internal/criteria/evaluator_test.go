package criteria

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dctmd-mcp-server/internal/domain"
)

var (
	pos  = Match("a", "a")
	neg  = Match("a", "b")
	pend = Match("${side}", "left")
)

func doc(m map[string]any) domain.Value { return domain.FromAny(m) }

func mustEvaluate(t *testing.T, c Criterion, data domain.Value, ctx TemplateContext) Result {
	t.Helper()
	res, err := Evaluate(c, data, ctx)
	require.NoError(t, err)
	require.True(t, res.Status.IsValid())
	return res
}

func TestAbsentDataIsPendingForEveryLeaf(t *testing.T) {
	empty := domain.Absent()
	leaves := map[string]Criterion{
		"field equals":       Field("sq.SQ1", Equals("yes")),
		"field notEquals":    Field("sq.SQ1", NotEquals("yes")),
		"field includes":     Field("e1.painLocation.left", Includes("tmj")),
		"field notIncludes":  Field("e1.painLocation.left", NotIncludes("tmj")),
		"field includesRef":  Field("e1.painLocation.left", IncludesRef("e1.headacheLocation.left")),
		"threshold":          Threshold("e4.maxAssisted.measurement", LT, 40),
		"computed":           Computed([]string{"e4.maxAssisted.measurement", "e2.verticalOverlap"}, Sum, LT, 40),
		"any":                Any([]string{"sq.SQ4_A", "sq.SQ4_B"}, Equals("yes")),
		"all":                All([]string{"sq.SQ4_A", "sq.SQ4_B"}, Equals("yes")),
		"field unresolvable": Field("e9.${side}.x", Equals("yes")),
	}

	for name, c := range leaves {
		t.Run(name, func(t *testing.T) {
			res := mustEvaluate(t, c, empty, TemplateContext{})
			assert.Equal(t, domain.PENDING, res.Status)
			assert.False(t, res.Overridden)
		})
	}
}

func TestNullIsTreatedAsUnanswered(t *testing.T) {
	data := doc(map[string]any{"sq": map[string]any{"SQ1": nil}})
	res := mustEvaluate(t, Field("sq.SQ1", NotEquals("yes")), data, TemplateContext{})
	assert.Equal(t, domain.PENDING, res.Status)
}

func TestPendingAsOverride(t *testing.T) {
	c := Field("e8.left.openLocking.reducibleByPatient", Equals("yes"), PendingAs(domain.POSITIVE))
	res := mustEvaluate(t, c, domain.Absent(), TemplateContext{})

	assert.Equal(t, domain.POSITIVE, res.Status)
	assert.True(t, res.Overridden)
	assert.Equal(t, domain.PENDING, res.RawStatus)

	answered := doc(map[string]any{"e8": map[string]any{"left": map[string]any{"openLocking": map[string]any{"reducibleByPatient": "no"}}}})
	res = mustEvaluate(t, c, answered, TemplateContext{})
	assert.Equal(t, domain.NEGATIVE, res.Status)
	assert.False(t, res.Overridden)
}

func TestFieldConditions(t *testing.T) {
	data := doc(map[string]any{
		"sq": map[string]any{"SQ3": "intermittent"},
		"e1": map[string]any{
			"painLocation":     map[string]any{"left": []any{"temporalis"}, "right": "temporalis"},
			"headacheLocation": map[string]any{"left": []any{}},
		},
		"ctx": map[string]any{"region": "temporalis"},
	})
	ctx := TemplateContext{Side: "left", Region: "temporalis"}

	tests := []struct {
		name string
		c    Criterion
		want domain.CriterionStatus
	}{
		{"equals match", Field("sq.SQ3", Equals("intermittent")), domain.POSITIVE},
		{"equals mismatch", Field("sq.SQ3", Equals("continuous")), domain.NEGATIVE},
		{"notEquals", Field("sq.SQ3", NotEquals("continuous")), domain.POSITIVE},
		{"includes templated literal", Field("e1.painLocation.${side}", Includes("${region}")), domain.POSITIVE},
		{"includes other region", Field("e1.painLocation.${side}", Includes("masseter")), domain.NEGATIVE},
		{"notIncludes", Field("e1.painLocation.${side}", NotIncludes("masseter")), domain.POSITIVE},
		{"includes on non-list", Field("e1.painLocation.right", Includes("temporalis")), domain.NEGATIVE},
		{"notIncludes on non-list", Field("e1.painLocation.right", NotIncludes("masseter")), domain.NEGATIVE},
		{"includes on empty list", Field("e1.headacheLocation.left", Includes("temporalis")), domain.NEGATIVE},
		{"includesRef", Field("e1.painLocation.${side}", IncludesRef("ctx.region")), domain.POSITIVE},
		{"includesRef absent target", Field("e1.painLocation.${side}", IncludesRef("ctx.side")), domain.PENDING},
		{"notIncludesRef", Field("e1.painLocation.${side}", NotIncludesRef("ctx.region")), domain.NEGATIVE},
		{"literal with unsupplied placeholder", Field("e1.painLocation.left", Includes("${site}")), domain.PENDING},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustEvaluate(t, tt.c, data, ctx)
			assert.Equal(t, tt.want, res.Status)
		})
	}
}

func TestFieldResultIsTraceable(t *testing.T) {
	data := doc(map[string]any{"e9": map[string]any{"left": map[string]any{"temporalisPosterior": map[string]any{"familiarPain": "yes"}}}})
	c := Field("e9.${side}.temporalisPosterior.familiarPain", Equals("yes"), ID("e9-tp"), Label("Temporalis posterior familiar pain"))

	res := mustEvaluate(t, c, data, TemplateContext{Side: "left"})
	assert.Equal(t, KindField, res.Kind)
	assert.Equal(t, "e9-tp", res.ID)
	assert.Equal(t, "Temporalis posterior familiar pain", res.Label)
	assert.Equal(t, "e9.left.temporalisPosterior.familiarPain", res.Ref)
	require.NotNil(t, res.Value)
	assert.True(t, res.Value.Equal(domain.String("yes")))
	require.NotNil(t, res.Expected)
	assert.Same(t, c, res.Criterion)
}

func TestThreshold(t *testing.T) {
	data := doc(map[string]any{"e4": map[string]any{
		"maxAssisted":   map[string]any{"measurement": 38},
		"maxUnassisted": map[string]any{"measurement": "38"},
	}})

	tests := []struct {
		name string
		c    Criterion
		want domain.CriterionStatus
	}{
		{"lt true", Threshold("e4.maxAssisted.measurement", LT, 40), domain.POSITIVE},
		{"gte false", Threshold("e4.maxAssisted.measurement", GTE, 40), domain.NEGATIVE},
		{"lte boundary", Threshold("e4.maxAssisted.measurement", LTE, 38), domain.POSITIVE},
		{"gt boundary", Threshold("e4.maxAssisted.measurement", GT, 38), domain.NEGATIVE},
		{"non-numeric", Threshold("e4.maxUnassisted.measurement", LT, 40), domain.PENDING},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustEvaluate(t, tt.c, data, TemplateContext{}).Status)
		})
	}
}

func TestComputed(t *testing.T) {
	refs := []string{"e4.maxAssisted.measurement", "e2.verticalOverlap"}

	t.Run("default substitutes missing value", func(t *testing.T) {
		c := Computed(refs, Sum, LT, 40).WithDefaults(map[string]float64{"e2.verticalOverlap": 0})
		data := doc(map[string]any{"e4": map[string]any{"maxAssisted": map[string]any{"measurement": 35}}})

		res := mustEvaluate(t, c, data, TemplateContext{})
		assert.Equal(t, domain.POSITIVE, res.Status)
		require.NotNil(t, res.ComputedValue)
		assert.Equal(t, 35.0, *res.ComputedValue)
		assert.Equal(t, refs, res.Refs)
	})

	t.Run("default never replaces a malformed value", func(t *testing.T) {
		c := Computed(refs, Sum, GTE, 40).WithDefaults(map[string]float64{"e2.verticalOverlap": 0})
		data := doc(map[string]any{
			"e4": map[string]any{"maxAssisted": map[string]any{"measurement": 40}},
			"e2": map[string]any{"verticalOverlap": "garbled"},
		})

		res := mustEvaluate(t, c, data, TemplateContext{})
		assert.Equal(t, domain.PENDING, res.Status)
		assert.Nil(t, res.ComputedValue)
		require.Len(t, res.Values, 2)
		assert.Equal(t, domain.Number(40), res.Values[0])
		assert.Equal(t, domain.String("garbled"), res.Values[1])
	})

	t.Run("default substitutes null", func(t *testing.T) {
		c := Computed(refs, Sum, GTE, 40).WithDefaults(map[string]float64{"e2.verticalOverlap": 0})
		data := doc(map[string]any{
			"e4": map[string]any{"maxAssisted": map[string]any{"measurement": 40}},
			"e2": map[string]any{"verticalOverlap": nil},
		})

		res := mustEvaluate(t, c, data, TemplateContext{})
		assert.Equal(t, domain.POSITIVE, res.Status)
		assert.Equal(t, domain.Number(0), res.Values[1])
	})

	t.Run("missing without default is pending", func(t *testing.T) {
		c := Computed(refs, Sum, LT, 40)
		data := doc(map[string]any{"e4": map[string]any{"maxAssisted": map[string]any{"measurement": 35}}})

		res := mustEvaluate(t, c, data, TemplateContext{})
		assert.Equal(t, domain.PENDING, res.Status)
		assert.Nil(t, res.ComputedValue)
	})

	t.Run("sum compared", func(t *testing.T) {
		c := Computed(refs, Sum, GTE, 40)
		data := doc(map[string]any{
			"e4": map[string]any{"maxAssisted": map[string]any{"measurement": 37}},
			"e2": map[string]any{"verticalOverlap": 3},
		})
		res := mustEvaluate(t, c, data, TemplateContext{})
		assert.Equal(t, domain.POSITIVE, res.Status)
		assert.Equal(t, 40.0, *res.ComputedValue)
	})

	t.Run("compute error is a configuration error", func(t *testing.T) {
		boom := errors.New("boom")
		c := Computed([]string{"a"}, func([]float64) (float64, error) { return 0, boom }, LT, 1, ID("broken"))

		_, err := Evaluate(c, doc(map[string]any{"a": 1}), TemplateContext{})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidCriterion)
		assert.ErrorIs(t, err, boom)

		var ce *ConfigurationError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "broken", ce.CriterionID)
		assert.Equal(t, KindComputed, ce.Kind)
	})
}

func TestMatch(t *testing.T) {
	assert.Equal(t, domain.POSITIVE, mustEvaluate(t, Match("${region}", "tmj"), domain.Absent(), TemplateContext{Region: "tmj"}).Status)
	assert.Equal(t, domain.NEGATIVE, mustEvaluate(t, Match("${region}", "tmj"), domain.Absent(), TemplateContext{Region: "masseter"}).Status)
	assert.Equal(t, domain.PENDING, mustEvaluate(t, Match("${region}", "tmj"), domain.Absent(), TemplateContext{}).Status)
}

func TestAndNegativeDominatesPending(t *testing.T) {
	tests := []struct {
		name     string
		children []Criterion
		want     domain.CriterionStatus
	}{
		{"all positive", []Criterion{pos, pos}, domain.POSITIVE},
		{"negative then pending", []Criterion{neg, pend}, domain.NEGATIVE},
		{"pending then negative", []Criterion{pend, neg}, domain.NEGATIVE},
		{"pending and positive", []Criterion{pend, pos}, domain.PENDING},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustEvaluate(t, And(tt.children...), domain.Absent(), TemplateContext{})
			assert.Equal(t, tt.want, res.Status)
			assert.Len(t, res.Children, len(tt.children), "every child is traced")
		})
	}
}

func TestOrPositiveDominatesPending(t *testing.T) {
	tests := []struct {
		name     string
		children []Criterion
		want     domain.CriterionStatus
	}{
		{"all negative", []Criterion{neg, neg}, domain.NEGATIVE},
		{"positive then pending", []Criterion{pos, pend}, domain.POSITIVE},
		{"pending then positive", []Criterion{pend, pos}, domain.POSITIVE},
		{"pending and negative", []Criterion{pend, neg}, domain.PENDING},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustEvaluate(t, Or(tt.children...), domain.Absent(), TemplateContext{})
			assert.Equal(t, tt.want, res.Status)
			assert.Len(t, res.Children, len(tt.children))
		})
	}
}

func TestNotNotIsIdentity(t *testing.T) {
	for _, c := range []Criterion{pos, neg, pend} {
		inner := mustEvaluate(t, c, domain.Absent(), TemplateContext{})
		outer := mustEvaluate(t, Not(Not(c)), domain.Absent(), TemplateContext{})
		assert.Equal(t, inner.Status, outer.Status)
	}
	assert.Equal(t, domain.PENDING, mustEvaluate(t, Not(pend), domain.Absent(), TemplateContext{}).Status)
	assert.Equal(t, domain.NEGATIVE, mustEvaluate(t, Not(pos), domain.Absent(), TemplateContext{}).Status)
}

func TestAnyThresholds(t *testing.T) {
	refs := []string{"sq.A", "sq.B", "sq.C"}

	tests := []struct {
		name     string
		answers  map[string]any
		minCount int
		want     domain.CriterionStatus
	}{
		{"one match", map[string]any{"A": "yes"}, 1, domain.POSITIVE},
		{"none possible", map[string]any{"A": "no", "B": "no", "C": "no"}, 1, domain.NEGATIVE},
		{"still possible", map[string]any{"A": "no", "B": "no"}, 1, domain.PENDING},
		{"two needed one matched one pending", map[string]any{"A": "yes", "B": "no"}, 2, domain.PENDING},
		{"two needed unreachable", map[string]any{"A": "yes", "B": "no", "C": "no"}, 2, domain.NEGATIVE},
		{"two needed reached", map[string]any{"A": "yes", "C": "yes"}, 2, domain.POSITIVE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := AtLeast(tt.minCount, refs, Equals("yes"))
			res := mustEvaluate(t, c, doc(map[string]any{"sq": tt.answers}), TemplateContext{})
			assert.Equal(t, tt.want, res.Status)
			assert.Equal(t, len(refs), len(res.MatchedRefs)+len(res.PendingRefs)+len(res.FailedRefs))
		})
	}
}

func TestAnyDefaultMinCount(t *testing.T) {
	c := &AnyCriterion{Refs: newRefs([]string{"sq.A"}), Condition: Equals("yes")}
	res := mustEvaluate(t, c, doc(map[string]any{"sq": map[string]any{"A": "yes"}}), TemplateContext{})
	assert.Equal(t, domain.POSITIVE, res.Status)
	assert.Equal(t, []string{"sq.A"}, res.MatchedRefs)
}

func TestAll(t *testing.T) {
	refs := []string{"sq.A", "sq.B"}

	assert.Equal(t, domain.POSITIVE, mustEvaluate(t, All(refs, Equals("yes")), doc(map[string]any{"sq": map[string]any{"A": "yes", "B": "yes"}}), TemplateContext{}).Status)
	assert.Equal(t, domain.NEGATIVE, mustEvaluate(t, All(refs, Equals("yes")), doc(map[string]any{"sq": map[string]any{"B": "no"}}), TemplateContext{}).Status)
	assert.Equal(t, domain.PENDING, mustEvaluate(t, All(refs, Equals("yes")), doc(map[string]any{"sq": map[string]any{"A": "yes"}}), TemplateContext{}).Status)
}

func TestQuantifierResolvesTemplates(t *testing.T) {
	data := doc(map[string]any{"e9": map[string]any{"right": map[string]any{"masseterBody": map[string]any{"familiarPain": "yes"}}}})
	c := Any([]string{"e9.${side}.masseterOrigin.familiarPain", "e9.${side}.masseterBody.familiarPain"}, Equals("yes"))

	res := mustEvaluate(t, c, data, TemplateContext{Side: "right"})
	assert.Equal(t, domain.POSITIVE, res.Status)
	assert.Equal(t, []string{"e9.right.masseterBody.familiarPain"}, res.MatchedRefs)
	assert.Equal(t, []string{"e9.right.masseterOrigin.familiarPain"}, res.PendingRefs)
}

func TestNilChildIsConfigurationError(t *testing.T) {
	_, err := Evaluate(And(pos, nil), domain.Absent(), TemplateContext{})
	assert.ErrorIs(t, err, domain.ErrInvalidCriterion)

	_, err = Evaluate(nil, domain.Absent(), TemplateContext{})
	assert.ErrorIs(t, err, domain.ErrInvalidCriterion)
}

func TestCompositesDoNotShortCircuitErrors(t *testing.T) {
	broken := Computed([]string{"a"}, func([]float64) (float64, error) {
		return 0, errors.New("boom")
	}, LT, 1, ID("broken"))
	data := doc(map[string]any{"a": 1})

	// a decided sibling does not hide a misconfigured one
	_, err := Evaluate(And(neg, broken), data, TemplateContext{})
	assert.ErrorIs(t, err, domain.ErrInvalidCriterion)

	_, err = Evaluate(Or(pos, broken), data, TemplateContext{})
	assert.ErrorIs(t, err, domain.ErrInvalidCriterion)
}

func TestCompositeMetadata(t *testing.T) {
	c := With(Or(pend, neg), ID("optional-step"), PendingAs(domain.NEGATIVE))
	res := mustEvaluate(t, c, domain.Absent(), TemplateContext{})

	assert.Equal(t, "optional-step", res.ID)
	assert.Equal(t, domain.NEGATIVE, res.Status)
	assert.True(t, res.Overridden)

	found, ok := res.Find("optional-step")
	require.True(t, ok)
	assert.Equal(t, KindOr, found.Kind)

	count := 0
	res.Walk(func(Result) { count++ })
	assert.Equal(t, 3, count)
}
