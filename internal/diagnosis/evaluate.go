package diagnosis

import (
	"fmt"

	"github.com/dctmd-mcp-server/internal/criteria"
	"github.com/dctmd-mcp-server/internal/domain"
)

// EvaluateDiagnosis evaluates the anamnesis once and the examination once per
// side and region. Errors are configuration errors from the criterion trees.
func EvaluateDiagnosis(def Definition, data domain.Value) (Result, error) {
	anamnesis, err := criteria.Evaluate(def.Anamnesis, data, criteria.TemplateContext{})
	if err != nil {
		return Result{}, fmt.Errorf("diagnosis %s: anamnesis: %w", def.ID, err)
	}

	res := Result{
		DiagnosisID:       def.ID,
		Name:              def.Name,
		Category:          def.Category,
		AnamnesisResult:   anamnesis,
		LocationResults:   make([]LocationResult, 0, len(domain.Sides)*len(def.Examination.Regions)),
		PositiveLocations: []Location{},
	}

	for _, side := range domain.Sides {
		for _, region := range def.Examination.Regions {
			exam, err := criteria.Evaluate(def.Examination.Criterion, data, criteria.LocationContext(side, region))
			if err != nil {
				return Result{}, fmt.Errorf("diagnosis %s: examination %s %s: %w", def.ID, side, region, err)
			}

			loc := LocationResult{
				Side:              side,
				Region:            region,
				Status:            exam.Status,
				IsPositive:        exam.Status == domain.POSITIVE,
				ExaminationResult: exam,
			}
			res.LocationResults = append(res.LocationResults, loc)
			if loc.IsPositive {
				res.PositiveLocations = append(res.PositiveLocations, loc.Location())
			}
		}
	}

	res.IsPositive = anamnesis.Status == domain.POSITIVE && len(res.PositiveLocations) > 0
	res.Status = overallStatus(anamnesis.Status, res.LocationResults)
	return res, nil
}

// overallStatus combines the anamnesis verdict with the location verdicts.
// A pending anamnesis becomes negative once every location is negative.
func overallStatus(anamnesis domain.CriterionStatus, locations []LocationResult) domain.CriterionStatus {
	if anamnesis == domain.NEGATIVE {
		return domain.NEGATIVE
	}

	anyPositive, allNegative := false, true
	for _, loc := range locations {
		switch loc.Status {
		case domain.POSITIVE:
			anyPositive = true
			allNegative = false
		case domain.PENDING:
			allNegative = false
		}
	}

	if anamnesis == domain.POSITIVE {
		switch {
		case anyPositive:
			return domain.POSITIVE
		case allNegative:
			return domain.NEGATIVE
		default:
			return domain.PENDING
		}
	}

	if allNegative {
		return domain.NEGATIVE
	}
	return domain.PENDING
}

// EvaluateAll evaluates every definition independently, in order, then applies
// the requires constraints against the statuses of the same batch.
func EvaluateAll(defs []Definition, data domain.Value) ([]Result, error) {
	results := make([]Result, 0, len(defs))
	for _, def := range defs {
		res, err := EvaluateDiagnosis(def, data)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	applyRequirements(defs, results)
	return results, nil
}

// applyRequirements is the second pass. It reads only first-pass statuses, so a
// chain of requirements is never resolved transitively.
func applyRequirements(defs []Definition, results []Result) {
	statuses := make(map[domain.DiagnosisID]domain.CriterionStatus, len(results))
	for _, r := range results {
		statuses[r.DiagnosisID] = r.Status
	}

	for i, def := range defs {
		if def.Requires == nil {
			continue
		}
		res := &results[i]

		outcome := &RequirementOutcome{
			AnyOf:          def.Requires.AnyOf,
			Dependencies:   make(map[domain.DiagnosisID]domain.CriterionStatus),
			OriginalStatus: res.Status,
		}

		anyPositive, anyPending := false, false
		for _, dep := range def.Requires.AnyOf {
			status, ok := statuses[dep]
			if !ok {
				continue
			}
			outcome.Dependencies[dep] = status
			switch status {
			case domain.POSITIVE:
				anyPositive = true
			case domain.PENDING:
				anyPending = true
			}
		}

		switch {
		case anyPositive:
			outcome.Satisfied = true
		case anyPending:
			// an unmet requirement still overrides a positive first pass
			res.IsPositive = false
			if res.Status != domain.PENDING {
				res.Status = domain.NEGATIVE
			}
		default:
			res.IsPositive = false
			res.Status = domain.NEGATIVE
		}
		res.Requirement = outcome
	}
}
