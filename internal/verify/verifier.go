package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmarchante/relvet/internal/model"
	"github.com/tidwall/gjson"
)

// Provider defines the interface for verification service backends.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Verify checks one record against the service. It never returns a
	// Go error: transport failures, timeouts and unparsable responses
	// all map to an outcome with the error verdict.
	Verify(ctx context.Context, rec model.Record) model.Outcome

	// IsAvailable checks if the provider and configured model are
	// reachable before a run starts.
	IsAvailable(ctx context.Context) bool
}

// BuildPrompt constructs the verification prompt for one record. The
// model is asked for a JSON verdict so parsing does not depend on the
// phrasing of its prose.
func BuildPrompt(rec model.Record) string {
	return fmt.Sprintf(`As an expert medical system, evaluate whether this relationship is medically valid:

ID: %s
Entity: %s
Relation: %s
Related element: %s

If "%s" to "%s" is medically correct, answer with exactly:
{"verdict": "valid"}

If it is NOT correct, answer with exactly:
{"verdict": "invalid", "reason": "<brief explanation>"}

Answer with the JSON object only. Base your answer solely on established medical knowledge.`,
		rec.ID, rec.Entity(), rec.Relation(), rec.Related(), rec.Entity(), rec.Related())
}

const systemPrompt = "You are an expert medical knowledge system that judges whether relationships between medical concepts are valid. You answer with a single JSON object and nothing else."

// ParseVerdict interprets a raw model response. It first looks for the
// requested JSON object (tolerating markdown fences and surrounding
// prose), then falls back to keyword scanning, where "invalid" takes
// precedence since "invalid" contains "valid" as a substring.
func ParseVerdict(raw string) (model.Verdict, string) {
	if candidate := jsonCandidate(raw); candidate != "" {
		verdict := gjson.Get(candidate, "verdict")
		if verdict.Exists() {
			switch strings.ToLower(strings.TrimSpace(verdict.String())) {
			case "valid", "válido", "valido":
				return model.VerdictValid, ""
			case "invalid", "inválido", "invalido":
				return model.VerdictInvalid, strings.TrimSpace(gjson.Get(candidate, "reason").String())
			}
		}
	}

	upper := strings.ToUpper(raw)
	switch {
	case strings.Contains(upper, "INVALID") || strings.Contains(upper, "INVÁLIDO"):
		return model.VerdictInvalid, reasonAfterKeyword(raw, upper)
	case strings.Contains(upper, "VALID") || strings.Contains(upper, "VÁLIDO"):
		return model.VerdictValid, ""
	}

	return model.VerdictError, "unparsable response from model"
}

// jsonCandidate extracts the first balanced-looking JSON object from a
// response that may be wrapped in markdown fences or explanation text.
func jsonCandidate(raw string) string {
	s := strings.TrimSpace(raw)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	candidate := s[start : end+1]
	if !gjson.Valid(candidate) {
		return ""
	}
	return candidate
}

// reasonAfterKeyword returns the explanation following the first
// invalid keyword, or the whole response when nothing follows it.
func reasonAfterKeyword(raw, upper string) string {
	idx := strings.Index(upper, "INVALID")
	keyLen := len("INVALID")
	if jdx := strings.Index(upper, "INVÁLIDO"); jdx >= 0 && (idx < 0 || jdx < idx) {
		idx = jdx
		keyLen = len("INVÁLIDO")
	}
	if idx < 0 {
		return strings.TrimSpace(raw)
	}
	reason := strings.TrimLeft(raw[idx+keyLen:], " \t\n:.,;-\"")
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return strings.TrimSpace(raw)
	}
	return reason
}

// errorOutcome builds an outcome with the error verdict.
func errorOutcome(rec model.Record, format string, args ...any) model.Outcome {
	return model.Outcome{
		ID:      rec.ID,
		Verdict: model.VerdictError,
		Reason:  fmt.Sprintf(format, args...),
		Record:  rec,
	}
}
