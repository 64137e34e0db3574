package service

import (
	"strings"
	"unicode"

	"github.com/tieubaoca/docqa-be/types"
)

// Question weights by complexity class, and the shared document weights.
// Unclassified documents weigh higher because their content cannot be
// cross-validated against public sources.
const (
	questionWeightComplex = 2.0
	questionWeightPolar   = 1.5
	questionWeightBasic   = 1.0

	documentWeightUnknown = 2.0
	documentWeightKnown   = 0.5

	// maxScore bounds the confidence normalization: 2.0 x 2.0.
	maxScore = questionWeightComplex * documentWeightUnknown
)

// Analytical verbs mark a complex question wherever they appear.
var complexityMarkers = map[string]bool{
	"analyze":   true,
	"analyse":   true,
	"compare":   true,
	"explain":   true,
	"evaluate":  true,
	"assess":    true,
	"summarize": true,
	"summarise": true,
}

// Polar (yes/no) questions lead with one of these.
var polarMarkers = map[string]bool{
	"does":   true,
	"do":     true,
	"did":    true,
	"is":     true,
	"are":    true,
	"was":    true,
	"were":   true,
	"can":    true,
	"could":  true,
	"will":   true,
	"would":  true,
	"should": true,
	"has":    true,
	"have":   true,
}

// Scorer computes the deterministic answer confidence score from two static
// lookup tables and one multiplication. It never errors; unrecognized
// inputs fall back to the default weights.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Score computes questionWeight x documentWeight and the bounded confidence
// derived from it. Both factors are surfaced so the product stays
// explainable.
func (s *Scorer) Score(documentType types.DocumentType, question string) types.ScoreResult {
	qw := questionWeight(question)
	dw := documentWeightUnknown
	if documentType.Known() {
		dw = documentWeightKnown
	}

	score := qw * dw
	confidence := score / maxScore
	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0 {
		confidence = 0
	}

	dt := documentType
	if dt == "" {
		dt = types.DocumentTypeUnknown
	}
	return types.ScoreResult{
		DocumentType:   dt,
		QuestionWeight: qw,
		DocumentWeight: dw,
		Score:          score,
		Confidence:     confidence,
	}
}

func questionWeight(question string) float64 {
	tokens := questionTokens(question)
	if len(tokens) == 0 {
		return questionWeightBasic
	}
	for _, token := range tokens {
		if complexityMarkers[token] {
			return questionWeightComplex
		}
	}
	if polarMarkers[tokens[0]] {
		return questionWeightPolar
	}
	return questionWeightBasic
}

func questionTokens(question string) []string {
	return strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
