package criteria

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dctmd-mcp-server/internal/domain"
)

func TestValidateAcceptsWellFormedTrees(t *testing.T) {
	c := And(
		Field("sq.SQ1", Equals("yes")),
		Or(
			Threshold("e4.maxAssisted.measurement", LT, 40),
			Computed([]string{"e4.maxAssisted.measurement", "e2.verticalOverlap"}, Sum, GTE, 40).
				WithDefaults(map[string]float64{"e2.verticalOverlap": 0}),
		),
		Not(Match("${region}", "tmj")),
		AtLeast(2, []string{"sq.SQ4_A", "sq.SQ4_B"}, Equals("yes")),
		All([]string{"e9.${side}.${site}.familiarPain"}, Equals("yes"), PendingAs(domain.POSITIVE)),
		Field("e1.painLocation.${side}", IncludesRef("e1.headacheLocation.${side}")),
	)
	assert.NoError(t, Validate(c))
}

func TestValidateRejects(t *testing.T) {
	bogus := domain.CriterionStatus("maybe")

	tests := []struct {
		name string
		c    Criterion
	}{
		{"nil", nil},
		{"empty ref", Field("", Equals("yes"))},
		{"unknown placeholder", Field("e9.${foo}.x", Equals("yes"))},
		{"missing condition", Field("sq.SQ1", Condition{})},
		{"unknown condition", Field("sq.SQ1", Condition{Op: "startsWith"})},
		{"bad includesRef", Field("sq.SQ1", IncludesRef("a..b"))},
		{"bad operator", Threshold("e4.x", Operator("=="), 1)},
		{"nan threshold", Threshold("e4.x", LT, math.NaN())},
		{"nil compute", Computed([]string{"a"}, nil, LT, 1)},
		{"computed without refs", Computed(nil, Sum, LT, 1)},
		{"default for unknown ref", Computed([]string{"a"}, Sum, LT, 1).WithDefaults(map[string]float64{"b": 0})},
		{"empty match", Match("", "x")},
		{"empty and", And()},
		{"empty or", Or()},
		{"nil and child", And(Field("sq.SQ1", Equals("yes")), nil)},
		{"nil not child", Not(nil)},
		{"minCount above refs", AtLeast(3, []string{"a", "b"}, Equals("yes"))},
		{"negative minCount", AtLeast(-1, []string{"a"}, Equals("yes"))},
		{"all without refs", All(nil, Equals("yes"))},
		{"invalid pendingAs", &FieldCriterion{Meta: Meta{PendingAs: &bogus}, Ref: newRef("a"), Condition: Equals("yes")}},
		{"nested invalid", Or(Field("sq.SQ1", Equals("yes")), Not(Threshold("", LT, 1)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.c)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidCriterion)

			var ce *ConfigurationError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestCollectRefs(t *testing.T) {
	c := And(
		Field("e1.painLocation.${side}", Includes("${region}")),
		Or(
			And(Match("${region}", "temporalis"), Any([]string{"e9.${side}.temporalisPosterior.familiarPain", "e9.${side}.temporalisMiddle.familiarPain"}, Equals("yes"))),
			Field("e4.maxAssisted.${side}.${region}.familiarPain", Equals("yes")),
		),
		Not(Field("e1.painLocation.${side}", IncludesRef("e1.headacheLocation.${side}"))),
	)

	assert.Equal(t, []string{
		"e1.painLocation.${side}",
		"e9.${side}.temporalisPosterior.familiarPain",
		"e9.${side}.temporalisMiddle.familiarPain",
		"e4.maxAssisted.${side}.${region}.familiarPain",
		"e1.headacheLocation.${side}",
	}, CollectRefs(c))

	assert.Empty(t, CollectRefs(Match("${region}", "tmj")))
	assert.Nil(t, CollectRefs(nil))
}

func TestConfigurationErrorMessage(t *testing.T) {
	err := Validate(With(And(), ID("anamnesis")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anamnesis")
	assert.Contains(t, err.Error(), "no children")
}
