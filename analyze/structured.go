package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// jsonInstruction is appended to the prompt in structured mode so the
// model answers with bare JSON instead of prose.
const jsonInstruction = "Respond with a single JSON object only, no prose and no code fences."

// Structured runs an analysis whose answer is parsed into T. The prompt
// should describe the fields the caller expects; the JSON-only
// instruction is appended automatically. Model output that is not quite
// valid JSON is repaired before unmarshaling.
func Structured[T any](ctx context.Context, a *Analyzer, content, prompt string) (T, error) {
	var zero T

	answer, err := a.Analyze(ctx, content, prompt+"\n\n"+jsonInstruction)
	if err != nil {
		return zero, err
	}

	return ParseStructured[T](answer)
}

// ParseStructured unmarshals model-emitted JSON into T. Markdown code
// fences are stripped first; when plain unmarshaling fails, the content
// is run through jsonrepair (models routinely emit single quotes,
// trailing commas, or unquoted keys) and retried once.
func ParseStructured[T any](content string) (T, error) {
	var result T

	cleaned := stripCodeFences(content)
	if err := json.Unmarshal([]byte(cleaned), &result); err == nil {
		return result, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(cleaned)
	if repairErr != nil {
		return result, fmt.Errorf("analyze: response is not valid JSON and could not be repaired: %w", repairErr)
	}

	if err := json.Unmarshal([]byte(repaired), &result); err != nil {
		return result, fmt.Errorf("analyze: failed to unmarshal repaired response as %T: %w", result, err)
	}
	return result, nil
}

// stripCodeFences removes a surrounding markdown code fence, with or
// without a language tag.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag line ("json", "JSON", ...).
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine == "" || !strings.ContainsAny(firstLine, "{[") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
