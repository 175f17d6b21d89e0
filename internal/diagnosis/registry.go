package diagnosis

import (
	"fmt"

	"github.com/dctmd-mcp-server/internal/criteria"
	"github.com/dctmd-mcp-server/internal/domain"
)

// Registry is an ordered, validated and immutable set of definitions.
type Registry struct {
	defs []Definition
	byID map[domain.DiagnosisID]int
}

// NewRegistry validates every definition and indexes them by ID.
// Requirements must name definitions of the same registry.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{
		defs: make([]Definition, 0, len(defs)),
		byID: make(map[domain.DiagnosisID]int, len(defs)),
	}

	for _, def := range defs {
		if err := ValidateDefinition(def); err != nil {
			return nil, err
		}
		if _, dup := r.byID[def.ID]; dup {
			return nil, fmt.Errorf("duplicate diagnosis %s: %w", def.ID, domain.ErrInvalidCriterion)
		}
		r.byID[def.ID] = len(r.defs)
		r.defs = append(r.defs, def)
	}

	for _, def := range r.defs {
		if def.Requires == nil {
			continue
		}
		for _, dep := range def.Requires.AnyOf {
			if dep == def.ID {
				return nil, fmt.Errorf("diagnosis %s requires itself: %w", def.ID, domain.ErrInvalidCriterion)
			}
			if _, ok := r.byID[dep]; !ok {
				return nil, fmt.Errorf("diagnosis %s requires %s: %w", def.ID, dep, domain.ErrUnknownDiagnosis)
			}
		}
	}
	return r, nil
}

// ValidateDefinition checks a single definition and both of its criterion trees.
func ValidateDefinition(def Definition) error {
	if def.ID == "" {
		return fmt.Errorf("diagnosis without id: %w", domain.ErrInvalidCriterion)
	}
	if !def.Category.IsValid() {
		return fmt.Errorf("diagnosis %s: invalid category %q: %w", def.ID, def.Category, domain.ErrInvalidCriterion)
	}
	if err := criteria.Validate(def.Anamnesis); err != nil {
		return fmt.Errorf("diagnosis %s: anamnesis: %w", def.ID, err)
	}
	if len(def.Examination.Regions) == 0 {
		return fmt.Errorf("diagnosis %s: no examination regions: %w", def.ID, domain.ErrInvalidCriterion)
	}
	for _, region := range def.Examination.Regions {
		if !region.IsValid() {
			return fmt.Errorf("diagnosis %s: invalid region %q: %w", def.ID, region, domain.ErrInvalidCriterion)
		}
	}
	if err := criteria.Validate(def.Examination.Criterion); err != nil {
		return fmt.Errorf("diagnosis %s: examination: %w", def.ID, err)
	}
	if def.Requires != nil && len(def.Requires.AnyOf) == 0 {
		return fmt.Errorf("diagnosis %s: empty requirement: %w", def.ID, domain.ErrInvalidCriterion)
	}
	return nil
}

// Definitions returns all definitions in registry order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Get returns the definition with the given ID.
func (r *Registry) Get(id domain.DiagnosisID) (Definition, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// Len returns the number of definitions.
func (r *Registry) Len() int { return len(r.defs) }

// Select returns the named definitions in registry order. An empty selection
// returns every definition.
func (r *Registry) Select(ids []domain.DiagnosisID) ([]Definition, error) {
	if len(ids) == 0 {
		return r.Definitions(), nil
	}

	wanted := make(map[domain.DiagnosisID]bool, len(ids))
	for _, id := range ids {
		if _, ok := r.byID[id]; !ok {
			return nil, fmt.Errorf("%s: %w", id, domain.ErrUnknownDiagnosis)
		}
		wanted[id] = true
	}

	out := make([]Definition, 0, len(wanted))
	for _, def := range r.defs {
		if wanted[def.ID] {
			out = append(out, def)
		}
	}
	return out, nil
}

// Summaries lists the registry for UIs and tools.
func (r *Registry) Summaries() []Summary {
	out := make([]Summary, len(r.defs))
	for i, def := range r.defs {
		s := Summary{
			ID:       def.ID,
			Name:     def.Name,
			Category: def.Category,
			Regions:  append([]domain.Region(nil), def.Examination.Regions...),
		}
		if def.Requires != nil {
			s.Requires = append([]domain.DiagnosisID(nil), def.Requires.AnyOf...)
		}
		out[i] = s
	}
	return out
}
