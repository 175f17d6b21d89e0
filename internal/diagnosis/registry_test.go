package diagnosis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dctmd-mcp-server/internal/criteria"
	"github.com/dctmd-mcp-server/internal/domain"
)

func simpleDefinition(id domain.DiagnosisID) Definition {
	return Definition{
		ID:          id,
		Name:        string(id),
		Category:    domain.JOINT_DISORDER,
		Anamnesis:   criteria.Field("sq.SQ8", criteria.Equals("yes")),
		Examination: LocationCriterion{Regions: []domain.Region{domain.TMJ}, Criterion: criteria.Match("${region}", "tmj")},
	}
}

func TestDCTMDRegistry(t *testing.T) {
	reg := mustRegistry(t)

	summaries := reg.Summaries()
	require.Len(t, summaries, 12)
	assert.Equal(t, domain.MYALGIA, summaries[0].ID)
	assert.Equal(t, []domain.Region{domain.TEMPORALIS, domain.MASSETER, domain.OTHER_MAST, domain.NON_MAST}, summaries[0].Regions)
	assert.Equal(t, []domain.DiagnosisID{domain.MYALGIA, domain.ARTHRALGIA}, summaries[5].Requires)

	for _, id := range []domain.DiagnosisID{domain.LOCAL_MYALGIA, domain.MYOFASCIAL_PAIN_WITH_SPREADING, domain.MYOFASCIAL_PAIN_WITH_REFERRAL} {
		def, ok := reg.Get(id)
		require.True(t, ok)
		require.NotNil(t, def.Requires)
		assert.Equal(t, []domain.DiagnosisID{domain.MYALGIA}, def.Requires.AnyOf)
	}
}

func TestRegistrySelect(t *testing.T) {
	reg := mustRegistry(t)

	defs, err := reg.Select([]domain.DiagnosisID{domain.SUBLUXATION, domain.MYALGIA, domain.SUBLUXATION})
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, domain.MYALGIA, defs[0].ID)
	assert.Equal(t, domain.SUBLUXATION, defs[1].ID)

	all, err := reg.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 12)

	_, err = reg.Select([]domain.DiagnosisID{"bruxism"})
	assert.ErrorIs(t, err, domain.ErrUnknownDiagnosis)
}

func TestNewRegistryRejects(t *testing.T) {
	selfRequiring := simpleDefinition("a")
	selfRequiring.Requires = &Requirement{AnyOf: []domain.DiagnosisID{"a"}}

	unknownDep := simpleDefinition("a")
	unknownDep.Requires = &Requirement{AnyOf: []domain.DiagnosisID{"missing"}}

	emptyRequirement := simpleDefinition("a")
	emptyRequirement.Requires = &Requirement{}

	noRegions := simpleDefinition("a")
	noRegions.Examination.Regions = nil

	badRegion := simpleDefinition("a")
	badRegion.Examination.Regions = []domain.Region{"ear"}

	badCategory := simpleDefinition("a")
	badCategory.Category = "other"

	badTree := simpleDefinition("a")
	badTree.Anamnesis = criteria.And()

	tests := []struct {
		name string
		defs []Definition
		want error
	}{
		{"duplicate", []Definition{simpleDefinition("a"), simpleDefinition("a")}, domain.ErrInvalidCriterion},
		{"self requirement", []Definition{selfRequiring}, domain.ErrInvalidCriterion},
		{"unknown dependency", []Definition{unknownDep}, domain.ErrUnknownDiagnosis},
		{"empty requirement", []Definition{emptyRequirement}, domain.ErrInvalidCriterion},
		{"no regions", []Definition{noRegions}, domain.ErrInvalidCriterion},
		{"bad region", []Definition{badRegion}, domain.ErrInvalidCriterion},
		{"bad category", []Definition{badCategory}, domain.ErrInvalidCriterion},
		{"bad anamnesis", []Definition{badTree}, domain.ErrInvalidCriterion},
		{"missing id", []Definition{simpleDefinition("")}, domain.ErrInvalidCriterion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.defs...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDefinitionsAreFreshlyBuilt(t *testing.T) {
	a := DCTMDDefinitions()
	b := DCTMDDefinitions()
	assert.NotSame(t, a[0].Anamnesis, b[0].Anamnesis)
}
