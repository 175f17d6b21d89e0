package diagnosis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dctmd-mcp-server/internal/domain"
)

func TestRelevantExaminationItems(t *testing.T) {
	reg := mustRegistry(t)

	sq := domain.FromAny(map[string]any{
		"SQ1": "yes", "SQ3": "intermittent", "SQ4_A": "yes",
		"SQ5": "no",
		"SQ8": "no",
		"SQ9": "no",
	})

	res, err := RelevantExaminationItems(sq, reg.Definitions())
	require.NoError(t, err)

	assert.Equal(t, []domain.DiagnosisID{
		domain.HEADACHE_ATTRIBUTED_TO_TMD,
		domain.DISC_DISPLACEMENT_WITH_REDUCTION,
		domain.DISC_DISPLACEMENT_WITH_REDUCTION_IL,
		domain.DISC_DISPLACEMENT_WITHOUT_REDUCTION_L,
		domain.DISC_DISPLACEMENT_WITHOUT_REDUCTION,
		domain.DEGENERATIVE_JOINT_DISEASE,
	}, res.RuledOutDiagnoses)

	assert.Equal(t, []domain.DiagnosisID{
		domain.MYALGIA,
		domain.LOCAL_MYALGIA,
		domain.MYOFASCIAL_PAIN_WITH_SPREADING,
		domain.MYOFASCIAL_PAIN_WITH_REFERRAL,
		domain.ARTHRALGIA,
		domain.SUBLUXATION,
	}, res.PossibleDiagnoses)

	assert.Equal(t, []string{"e1", "e4", "e5", "e8", "e9", "e10"}, res.RelevantSections)
	assert.Contains(t, res.RelevantFieldRefs, "e1.painLocation.${side}")
	assert.Contains(t, res.RelevantFieldRefs, "e10.${side}.lateralPterygoid.familiarPain")
	assert.NotContains(t, res.RelevantFieldRefs, "e1.headacheLocation.${side}")
	assert.NotContains(t, res.RelevantFieldRefs, "e6.${side}.click.open")
	assert.IsIncreasing(t, res.RelevantFieldRefs)
}

func TestRelevanceIgnoresExaminationData(t *testing.T) {
	reg := mustRegistry(t)

	// Only the sq subtree is visible to the analyzer.
	sq := domain.FromAny(map[string]any{"SQ13": "yes", "SQ14": "yes"})
	res, err := RelevantExaminationItems(sq, reg.Definitions())
	require.NoError(t, err)

	assert.Len(t, res.PossibleDiagnoses, 12)
	assert.Empty(t, res.RuledOutDiagnoses)
	assert.Equal(t, []string{"e1", "e2", "e4", "e5", "e6", "e7", "e8", "e9", "e10"}, res.RelevantSections)
}

func TestRelevanceAllRuledOut(t *testing.T) {
	reg := mustRegistry(t)
	sq := domain.FromAny(map[string]any{
		"SQ1": "no", "SQ5": "no", "SQ8": "no", "SQ9": "no", "SQ13": "no",
	})

	res, err := RelevantExaminationItems(sq, reg.Definitions())
	require.NoError(t, err)

	assert.Empty(t, res.PossibleDiagnoses)
	assert.Len(t, res.RuledOutDiagnoses, 12)
	assert.Empty(t, res.RelevantFieldRefs)
	assert.NotNil(t, res.RelevantSections)
}

func TestSectionNumber(t *testing.T) {
	n, ok := sectionNumber("e10.${side}.x")
	assert.True(t, ok)
	assert.Equal(t, 10, n)

	_, ok = sectionNumber("sq.SQ1")
	assert.False(t, ok)
	_, ok = sectionNumber("eX.a")
	assert.False(t, ok)
}
