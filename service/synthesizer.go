package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tieubaoca/docqa-be/types"
)

// Synthesizer is the external language model boundary: one completion call
// with a system prompt and a user prompt.
type Synthesizer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Type-specific system prompts. The analyst persona follows the document's
// classified domain so the model reasons in the right register.
var synthesisPrompts = map[types.DocumentType]string{
	types.DocumentTypePolicyWording: "You are an insurance policy analyst. Answer strictly from the provided policy wording extracts.",
	types.DocumentTypeLegal:         "You are a legal document analyst. Answer strictly from the provided contract extracts.",
	types.DocumentTypeFinancial:     "You are a financial document analyst. Answer strictly from the provided financial report extracts.",
	types.DocumentTypeTechnical:     "You are a technical documentation analyst. Answer strictly from the provided documentation extracts.",
	types.DocumentTypeMedical:       "You are a medical records analyst. Answer strictly from the provided medical document extracts.",
	types.DocumentTypeUnknown:       "You are a document analyst. Answer strictly from the provided document extracts.",
}

const synthesisFormat = `Respond with a JSON object of this exact shape:
{"answer": "<direct answer>", "justification": "<why, citing the extracts>", "matched_clauses": ["<verbatim clause>", ...]}`

const strictSynthesisFormat = `Return ONLY a single JSON object, no prose, no markdown fences:
{"answer": string, "justification": string, "matched_clauses": array of strings}`

// synthesizeAnswer asks the model for a structured answer over the
// retrieved chunks. One stricter-prompt retry recovers the common case of
// the model wrapping or decorating its JSON; after that the failure
// surfaces as a synthesis error.
func synthesizeAnswer(ctx context.Context, ai Synthesizer, question string, chunkTexts []string, documentType types.DocumentType) (*types.Answer, error) {
	system, ok := synthesisPrompts[documentType]
	if !ok {
		system = synthesisPrompts[types.DocumentTypeUnknown]
	}

	user := buildUserPrompt(question, chunkTexts, synthesisFormat)
	raw, err := completeWithRetry(ctx, ai, system, user)
	if err != nil {
		return nil, err
	}

	answer, parseErr := parseAnswer(raw)
	if parseErr == nil {
		return answer, nil
	}

	// Retry once with the stricter format instruction.
	user = buildUserPrompt(question, chunkTexts, strictSynthesisFormat)
	raw, err = completeWithRetry(ctx, ai, system, user)
	if err != nil {
		return nil, err
	}
	answer, parseErr = parseAnswer(raw)
	if parseErr != nil {
		return nil, types.WrapAppError(types.ErrKindSynthesis, parseErr,
			"language model response could not be parsed into an answer")
	}
	return answer, nil
}

func completeWithRetry(ctx context.Context, ai Synthesizer, system, user string) (string, error) {
	var raw string
	err := withRetry(ctx, "synthesis", func(callCtx context.Context) error {
		var callErr error
		raw, callErr = ai.Complete(callCtx, system, user)
		return callErr
	})
	return raw, err
}

func buildUserPrompt(question string, chunkTexts []string, format string) string {
	var b strings.Builder
	b.WriteString("Document extracts:\n")
	for i, text := range chunkTexts {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, text)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\n")
	b.WriteString(format)
	return b.String()
}

// parseAnswer extracts the JSON object from the model output, tolerating
// markdown fences and surrounding prose.
func parseAnswer(raw string) (*types.Answer, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var answer types.Answer
	if err := json.Unmarshal([]byte(raw[start:end+1]), &answer); err != nil {
		return nil, fmt.Errorf("unmarshaling model output: %w", err)
	}
	if answer.Answer == "" {
		return nil, fmt.Errorf("model output missing answer field")
	}
	if answer.MatchedClauses == nil {
		answer.MatchedClauses = []string{}
	}
	return &answer, nil
}
