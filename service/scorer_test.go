package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tieubaoca/docqa-be/types"
)

func TestScoreBasicQuestionKnownType(t *testing.T) {
	scorer := NewScorer()

	result := scorer.Score(types.DocumentTypePolicyWording, "What is the premium amount?")
	assert.Equal(t, 1.0, result.QuestionWeight)
	assert.Equal(t, 0.5, result.DocumentWeight)
	assert.Equal(t, 0.5, result.Score)
}

func TestScorePolarQuestionUnknownType(t *testing.T) {
	scorer := NewScorer()

	result := scorer.Score(types.DocumentTypeUnknown, "Does the policy cover knee surgery?")
	assert.Equal(t, 1.5, result.QuestionWeight)
	assert.Equal(t, 2.0, result.DocumentWeight)
	assert.Equal(t, 3.0, result.Score)
}

func TestScoreComplexQuestionUnknownType(t *testing.T) {
	scorer := NewScorer()

	result := scorer.Score(types.DocumentTypeUnknown, "Analyze the termination clauses")
	assert.Equal(t, 2.0, result.QuestionWeight)
	assert.Equal(t, 4.0, result.Score)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestScoreComplexVerbAnywhere(t *testing.T) {
	scorer := NewScorer()

	result := scorer.Score(types.DocumentTypeLegal, "Could you compare the two warranty periods?")
	assert.Equal(t, 2.0, result.QuestionWeight)
}

func TestScorePolarMarkerOnlyLeading(t *testing.T) {
	scorer := NewScorer()

	// "is" mid-sentence does not make the question polar.
	result := scorer.Score(types.DocumentTypeLegal, "What is the governing law?")
	assert.Equal(t, 1.0, result.QuestionWeight)

	result = scorer.Score(types.DocumentTypeLegal, "Is arbitration mandatory?")
	assert.Equal(t, 1.5, result.QuestionWeight)
}

func TestScoreConfidenceBounds(t *testing.T) {
	scorer := NewScorer()

	for _, question := range []string{
		"", "Analyze everything", "Does it apply?", "Summarize does is are",
	} {
		for _, dt := range append(types.AllDocumentTypes, types.DocumentTypeUnknown) {
			result := scorer.Score(dt, question)
			assert.GreaterOrEqual(t, result.Confidence, 0.0)
			assert.LessOrEqual(t, result.Confidence, 1.0)
			assert.Equal(t, result.QuestionWeight*result.DocumentWeight, result.Score)
		}
	}
}

func TestScoreEmptyTypeReportedAsUnknown(t *testing.T) {
	scorer := NewScorer()

	result := scorer.Score("", "What applies?")
	assert.Equal(t, types.DocumentTypeUnknown, result.DocumentType)
	assert.Equal(t, 2.0, result.DocumentWeight)
}

func TestScoreDeterministic(t *testing.T) {
	scorer := NewScorer()

	first := scorer.Score(types.DocumentTypeMedical, "Does the dosage change?")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, scorer.Score(types.DocumentTypeMedical, "Does the dosage change?"))
	}
}
