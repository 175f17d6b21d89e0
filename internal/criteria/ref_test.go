package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dctmd-mcp-server/internal/domain"
)

func TestResolve(t *testing.T) {
	ctx := TemplateContext{Side: "left", Region: "temporalis"}

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"no placeholders", "sq.SQ1", "sq.SQ1"},
		{"side and region", "e4.maxAssisted.${side}.${region}.familiarPain", "e4.maxAssisted.left.temporalis.familiarPain"},
		{"unsupplied site", "e9.${side}.${site}.familiarPain", "e9.left.${site}.familiarPain"},
		{"unknown placeholder", "e9.${foo}", "e9.${foo}"},
		{"repeated placeholder", "${side}.${side}", "left.left"},
		{"unterminated", "e1.${side", "e1.${side"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.ref, ctx))
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	ctx := TemplateContext{Side: "right", Region: "masseter", Site: "masseterBody"}
	refs := []string{
		"e9.${side}.${site}.familiarPain",
		"e1.painLocation.${side}",
		"${region}",
		"e10.${side}.${unknown}",
	}

	for _, ref := range refs {
		once := Resolve(ref, ctx)
		assert.Equal(t, once, Resolve(once, ctx), ref)
	}
}

func TestResolveIsOrderIndependent(t *testing.T) {
	ref := "e9.${side}.${site}.${region}"
	full := TemplateContext{Side: "left", Region: "tmj", Site: "tmjLateralPole"}

	sideFirst := Resolve(Resolve(ref, TemplateContext{Side: "left"}), TemplateContext{Region: "tmj", Site: "tmjLateralPole"})
	siteFirst := Resolve(Resolve(ref, TemplateContext{Site: "tmjLateralPole"}), TemplateContext{Side: "left", Region: "tmj"})

	assert.Equal(t, Resolve(ref, full), sideFirst)
	assert.Equal(t, Resolve(ref, full), siteFirst)
}

func TestHasUnresolvedPlaceholders(t *testing.T) {
	assert.True(t, HasUnresolvedPlaceholders("e9.${side}.x"))
	assert.True(t, HasUnresolvedPlaceholders("${}"))
	assert.False(t, HasUnresolvedPlaceholders("e9.left.x"))
	assert.False(t, HasUnresolvedPlaceholders("e9.$side"))
}

func TestGetAtPath(t *testing.T) {
	doc := domain.FromAny(map[string]any{
		"e6": map[string]any{"left": map[string]any{"click": map[string]any{"open": "yes"}}},
	})

	assert.True(t, GetAtPath(doc, "e6.left.click.open").Equal(domain.String("yes")))
	assert.True(t, GetAtPath(doc, "e6.right.click.open").IsAbsent())
	assert.True(t, GetAtPath(doc, "e6.left.click.open.deeper").IsAbsent())
	assert.True(t, GetAtPath(doc, "").IsAbsent())
	assert.True(t, GetAtPath(domain.Absent(), "e6").IsAbsent())
}

func TestParseRef(t *testing.T) {
	r, err := ParseRef("e9.${side}.${site}.familiarPain")
	require.NoError(t, err)
	assert.Equal(t, []string{"side", "site"}, r.Placeholders())

	path, ok := r.Resolve(TemplateContext{Side: "left", Site: "masseterBody"})
	require.True(t, ok)
	assert.Equal(t, Path{"e9", "left", "masseterBody", "familiarPain"}, path)
	assert.Equal(t, "e9.left.masseterBody.familiarPain", path.String())

	_, ok = r.Resolve(TemplateContext{Side: "left"})
	assert.False(t, ok, "unsupplied placeholder must not resolve")

	for _, bad := range []string{"", "e1..x", "e1.${foo}", "e1.${side"} {
		_, err := ParseRef(bad)
		assert.Error(t, err, bad)
	}
}

func TestRefResolveMatchesStringResolver(t *testing.T) {
	doc := domain.FromAny(map[string]any{
		"e9": map[string]any{"right": map[string]any{"temporalisAnterior": map[string]any{"familiarPain": "no"}}},
	})
	ctx := TemplateContext{Side: "right", Site: "temporalisAnterior"}
	raw := "e9.${side}.${site}.familiarPain"

	r, err := ParseRef(raw)
	require.NoError(t, err)
	path, ok := r.Resolve(ctx)
	require.True(t, ok)

	assert.True(t, doc.Lookup(path).Equal(GetAtPath(doc, Resolve(raw, ctx))))
}
