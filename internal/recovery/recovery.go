package recovery

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrorKindRecoveryFailure is the errorKind reported when every tier fails.
const ErrorKindRecoveryFailure = "JSONRecoveryFailure"

const defaultExcerptLimit = 800

// Failure describes an unrecoverable model reply. It is a returned value,
// never an error: the caller still sends a structured payload to the client.
type Failure struct {
	ErrorKind  string `json:"error"`
	RawExcerpt string `json:"raw_response"`
	Detail     string `json:"details"`
}

// Result holds either the recovered JSON value or a failure record.
type Result struct {
	Value   json.RawMessage
	Failure *Failure
}

// Recovered reports whether a JSON value was salvaged from the reply.
func (r Result) Recovered() bool { return r.Failure == nil }

// Engine converts raw model output into structured JSON using tiered
// fallbacks. The tier order is fixed and must not vary by caller:
//
//  1. fence stripping
//  2. direct parse
//  3. balanced-array extraction
//  4. balanced-object extraction
//  5. repair pass (accepted only for objects and arrays)
//  6. typed failure with a bounded excerpt
type Engine struct {
	excerptLimit int
}

// New constructs an Engine. excerptLimit caps the raw-text excerpt carried by
// failure results; non-positive values fall back to the default.
func New(excerptLimit int) Engine {
	if excerptLimit <= 0 {
		excerptLimit = defaultExcerptLimit
	}
	return Engine{excerptLimit: excerptLimit}
}

// Recover runs the tiers in order against the model's raw reply.
func (e Engine) Recover(responseText string) Result {
	candidate := strings.TrimSpace(stripFences(responseText))

	if json.Valid([]byte(candidate)) {
		return Result{Value: json.RawMessage(candidate)}
	}

	// Array before object: the fixed, documented order.
	if extracted, ok := balancedSlice(candidate, '[', ']'); ok {
		if json.Valid([]byte(extracted)) {
			return Result{Value: json.RawMessage(extracted)}
		}
	}
	if extracted, ok := balancedSlice(candidate, '{', '}'); ok {
		if json.Valid([]byte(extracted)) {
			return Result{Value: json.RawMessage(extracted)}
		}
	}

	// Last resort before giving up: let jsonrepair fix quoting/comma damage.
	// Only objects and arrays are accepted; repairing free prose into a bare
	// JSON string must not count as a recovery.
	if repaired, err := jsonrepair.JSONRepair(candidate); err == nil {
		trimmed := strings.TrimSpace(repaired)
		if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid([]byte(trimmed)) {
			return Result{Value: json.RawMessage(trimmed)}
		}
	}

	return Result{Failure: &Failure{
		ErrorKind:  ErrorKindRecoveryFailure,
		RawExcerpt: excerpt(responseText, e.excerptLimit),
		Detail:     "model output did not contain a parseable JSON value",
	}}
}

// stripFences returns the content of the first fenced code block, tolerating
// an optional language tag after the opening fence. Text without fences is
// returned unmodified; a missing closing fence (truncated reply) yields
// everything after the opening fence.
func stripFences(text string) string {
	const fence = "```"
	start := strings.Index(text, fence)
	if start < 0 {
		return text
	}
	rest := text[start+len(fence):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 && isLanguageTag(rest[:nl]) {
		rest = rest[nl+1:]
	}
	if end := strings.Index(rest, fence); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

func isLanguageTag(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) > 16 {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// balancedSlice finds the substring starting at the first open byte and
// ending where the open/close nesting depth returns to zero. Depth counting
// is required for correctness: slicing to the last closer in the whole text
// breaks as soon as surrounding prose contains stray bracket characters.
func balancedSlice(text string, opener, closer byte) (string, bool) {
	start := strings.IndexByte(text, opener)
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// excerpt truncates on rune boundaries so the failure payload stays valid UTF-8.
func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
