package diagnosis

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dctmd-mcp-server/internal/criteria"
	"github.com/dctmd-mcp-server/internal/domain"
)

var sectionPattern = regexp.MustCompile(`^e(\d+)$`)

// RelevantExaminationItems partially evaluates each anamnesis against the
// questionnaire answers alone. Diagnoses whose anamnesis is negative are ruled
// out; the examination fields of the remaining ones are collected from their
// criterion trees without evaluating them.
func RelevantExaminationItems(sqData domain.Value, defs []Definition) (RelevanceResult, error) {
	data := domain.Map(map[string]domain.Value{"sq": sqData})

	res := RelevanceResult{
		RelevantSections:  []string{},
		RelevantFieldRefs: []string{},
		RuledOutDiagnoses: []domain.DiagnosisID{},
		PossibleDiagnoses: []domain.DiagnosisID{},
	}
	refs := make(map[string]bool)

	for _, def := range defs {
		anamnesis, err := criteria.Evaluate(def.Anamnesis, data, criteria.TemplateContext{})
		if err != nil {
			return RelevanceResult{}, fmt.Errorf("diagnosis %s: anamnesis: %w", def.ID, err)
		}

		if anamnesis.Status == domain.NEGATIVE {
			res.RuledOutDiagnoses = append(res.RuledOutDiagnoses, def.ID)
			continue
		}

		res.PossibleDiagnoses = append(res.PossibleDiagnoses, def.ID)
		for _, ref := range criteria.CollectRefs(def.Examination.Criterion) {
			refs[ref] = true
		}
	}

	sections := make(map[int]bool)
	for ref := range refs {
		res.RelevantFieldRefs = append(res.RelevantFieldRefs, ref)
		if n, ok := sectionNumber(ref); ok {
			sections[n] = true
		}
	}
	sort.Strings(res.RelevantFieldRefs)

	numbers := make([]int, 0, len(sections))
	for n := range sections {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	for _, n := range numbers {
		res.RelevantSections = append(res.RelevantSections, "e"+strconv.Itoa(n))
	}

	return res, nil
}

func sectionNumber(ref string) (int, bool) {
	first, _, _ := strings.Cut(ref, ".")
	m := sectionPattern.FindStringSubmatch(first)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
