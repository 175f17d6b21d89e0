package criteria

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dctmd-mcp-server/internal/domain"
)

// Placeholder names understood by the resolver.
const (
	PlaceholderSide   = "side"
	PlaceholderRegion = "region"
	PlaceholderSite   = "site"
)

var placeholderPattern = regexp.MustCompile(`\$\{([^{}]*)\}`)

// TemplateContext supplies the values substituted for ${side}, ${region} and ${site}.
// Empty fields are "not supplied" and leave their placeholder untouched.
type TemplateContext struct {
	Side   string `json:"side,omitempty"`
	Region string `json:"region,omitempty"`
	Site   string `json:"site,omitempty"`
}

// LocationContext returns the context used for one examination location.
func LocationContext(side domain.Side, region domain.Region) TemplateContext {
	return TemplateContext{Side: string(side), Region: string(region)}
}

func (c TemplateContext) lookup(name string) (string, bool) {
	var v string
	switch name {
	case PlaceholderSide:
		v = c.Side
	case PlaceholderRegion:
		v = c.Region
	case PlaceholderSite:
		v = c.Site
	}
	return v, v != ""
}

// Resolve substitutes every supplied placeholder in ref. Unknown or unsupplied
// placeholders are left as they are.
func Resolve(ref string, ctx TemplateContext) string {
	if !strings.Contains(ref, "${") {
		return ref
	}
	return placeholderPattern.ReplaceAllStringFunc(ref, func(tok string) string {
		if v, ok := ctx.lookup(tok[2 : len(tok)-1]); ok {
			return v
		}
		return tok
	})
}

// HasUnresolvedPlaceholders reports whether ref still contains a ${...} token.
func HasUnresolvedPlaceholders(ref string) bool {
	return placeholderPattern.MatchString(ref)
}

// GetAtPath reads the dot-separated path from doc. Misses yield Absent.
func GetAtPath(doc domain.Value, path string) domain.Value {
	return doc.Lookup(strings.Split(path, "."))
}

// Path is a concrete, fully resolved data path.
type Path []string

// String joins the path with dots.
func (p Path) String() string {
	return strings.Join(p, ".")
}

type refToken struct {
	text string
	slot bool
}

// Ref is a parsed field reference template such as "e9.${side}.temporalisPosterior.familiarPain".
type Ref struct {
	raw    string
	tokens []refToken
	err    error
}

// ParseRef parses a reference template. Empty references, empty path segments and
// malformed or unknown placeholders are rejected.
func ParseRef(raw string) (Ref, error) {
	r := newRef(raw)
	return r, r.err
}

// newRef keeps any parse error inside the Ref so builders stay infallible;
// Validate reports it.
func newRef(raw string) Ref {
	r := Ref{raw: raw}
	if raw == "" {
		r.err = fmt.Errorf("empty field reference")
		return r
	}
	for _, seg := range strings.Split(raw, ".") {
		if seg == "" {
			r.err = fmt.Errorf("empty path segment in %q", raw)
			return r
		}
	}

	pos := 0
	for _, loc := range placeholderPattern.FindAllStringSubmatchIndex(raw, -1) {
		if loc[0] > pos {
			r.tokens = append(r.tokens, refToken{text: raw[pos:loc[0]]})
		}
		name := raw[loc[2]:loc[3]]
		switch name {
		case PlaceholderSide, PlaceholderRegion, PlaceholderSite:
		default:
			r.err = fmt.Errorf("unknown placeholder ${%s} in %q", name, raw)
		}
		r.tokens = append(r.tokens, refToken{text: name, slot: true})
		pos = loc[1]
	}
	if pos < len(raw) {
		r.tokens = append(r.tokens, refToken{text: raw[pos:]})
	}
	if r.err == nil {
		for _, t := range r.tokens {
			if !t.slot && strings.Contains(t.text, "${") {
				r.err = fmt.Errorf("malformed placeholder in %q", raw)
			}
		}
	}
	return r
}

// String returns the template text.
func (r Ref) String() string { return r.raw }

// Err returns the parse error, if any.
func (r Ref) Err() error { return r.err }

// Placeholders lists the placeholder names used by the template, in order.
func (r Ref) Placeholders() []string {
	var names []string
	for _, t := range r.tokens {
		if t.slot {
			names = append(names, t.text)
		}
	}
	return names
}

// Resolve instantiates the template. It reports false when a placeholder has
// no value in ctx.
func (r Ref) Resolve(ctx TemplateContext) (Path, bool) {
	if r.raw == "" {
		return nil, false
	}
	var b strings.Builder
	for _, t := range r.tokens {
		if !t.slot {
			b.WriteString(t.text)
			continue
		}
		v, ok := ctx.lookup(t.text)
		if !ok {
			return nil, false
		}
		b.WriteString(v)
	}
	return Path(strings.Split(b.String(), ".")), true
}

// resolvedString returns the resolved path, or the template text when unresolved.
func (r Ref) resolvedString(ctx TemplateContext) (string, Path, bool) {
	path, ok := r.Resolve(ctx)
	if !ok {
		return r.raw, nil, false
	}
	return path.String(), path, true
}
