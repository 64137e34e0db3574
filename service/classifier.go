package service

import (
	"strings"
	"unicode"

	"github.com/tieubaoca/docqa-be/types"
)

// Keyword tables per candidate type. Single words match against the token
// set of the text; multi-word phrases match as substrings.
var domainKeywords = map[types.DocumentType][]string{
	types.DocumentTypePolicyWording: {
		"policy", "premium", "coverage", "insured", "insurer", "exclusion",
		"claim", "deductible", "policyholder", "endorsement", "waiting period",
		"sum insured",
	},
	types.DocumentTypeLegal: {
		"agreement", "contract", "clause", "jurisdiction", "liability",
		"hereinafter", "arbitration", "indemnify", "governing law", "breach",
		"termination", "warranty",
	},
	types.DocumentTypeFinancial: {
		"revenue", "balance sheet", "profit", "fiscal", "audit", "assets",
		"liabilities", "cash flow", "dividend", "equity", "expenditure",
		"quarterly",
	},
	types.DocumentTypeTechnical: {
		"installation", "configuration", "specification", "software",
		"server", "hardware", "protocol", "firmware", "interface",
		"troubleshooting", "architecture", "deployment",
	},
	types.DocumentTypeMedical: {
		"patient", "diagnosis", "treatment", "clinical", "prescription",
		"symptoms", "dosage", "physician", "surgery", "medical history",
		"hospitalization", "pathology",
	},
}

// Filename patterns nudge the ranking between types but never substitute
// for keyword evidence.
var filenamePatterns = map[types.DocumentType][]string{
	types.DocumentTypePolicyWording: {"policy", "insurance"},
	types.DocumentTypeLegal:         {"contract", "agreement", "legal"},
	types.DocumentTypeFinancial:     {"financial", "statement", "invoice", "report"},
	types.DocumentTypeTechnical:     {"manual", "spec", "technical"},
	types.DocumentTypeMedical:       {"medical", "patient", "clinical"},
}

// A keyword found in the text counts double a filename pattern hit when
// ranking candidates.
const (
	keywordPoints  = 2
	filenamePoints = 1
)

// Classifier assigns a document type from content and filename. It is a
// pure function over its inputs plus the static keyword tables; it never
// errors and never touches network or storage.
type Classifier struct {
	confidenceFloor int
}

// NewClassifier builds a classifier with the given confidence floor: the
// minimum number of distinct keyword matches the winning type must reach.
func NewClassifier(confidenceFloor int) *Classifier {
	if confidenceFloor <= 0 {
		confidenceFloor = 3
	}
	return &Classifier{confidenceFloor: confidenceFloor}
}

// Classify returns the winning document type and its distinct keyword match
// count. The winner must reach the confidence floor on keyword matches
// alone; a tie on aggregate score at or above the floor degrades to Unknown
// rather than picking an arbitrary winner.
func (c *Classifier) Classify(text, filename string) (types.DocumentType, int) {
	lowerText := strings.ToLower(text)
	lowerName := strings.ToLower(filename)
	tokens := tokenSet(lowerText)

	bestType := types.DocumentTypeUnknown
	bestMatches := 0
	bestAggregate := 0
	tied := false

	for _, dt := range types.AllDocumentTypes {
		matches := 0
		for _, keyword := range domainKeywords[dt] {
			if keywordMatches(keyword, lowerText, tokens) {
				matches++
			}
		}

		aggregate := matches * keywordPoints
		for _, pattern := range filenamePatterns[dt] {
			if strings.Contains(lowerName, pattern) {
				aggregate += filenamePoints
				break
			}
		}

		switch {
		case aggregate > bestAggregate:
			bestType = dt
			bestMatches = matches
			bestAggregate = aggregate
			tied = false
		case aggregate == bestAggregate && aggregate > 0:
			tied = true
			if matches > bestMatches {
				bestMatches = matches
			}
		}
	}

	if bestMatches < c.confidenceFloor || tied {
		return types.DocumentTypeUnknown, bestMatches
	}
	return bestType, bestMatches
}

func keywordMatches(keyword, lowerText string, tokens map[string]bool) bool {
	if strings.ContainsRune(keyword, ' ') {
		return strings.Contains(lowerText, keyword)
	}
	return tokens[keyword]
}

// tokenSet splits on anything that is not a letter or digit, so keyword
// lookups do not fire on substrings of larger words.
func tokenSet(lowerText string) map[string]bool {
	tokens := make(map[string]bool)
	for _, token := range strings.FieldsFunc(lowerText, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		tokens[token] = true
	}
	return tokens
}
