// Package repair converts unreliable generative output into a valid resume
// record. It applies a fixed sequence of named recovery strategies and is
// guaranteed to return a usable record: informativeness degrades, never
// availability.
package repair

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/resumetools/resume-optimizer/internal/ai"
	"github.com/resumetools/resume-optimizer/internal/resume"

	"go.uber.org/zap"
)

const maxModelAttempts = 3

// Attempt describes one executed recovery step. Ephemeral, logged only.
type Attempt struct {
	Strategy string
	Ordinal  int
	Outcome  string
}

// Engine runs the layered recovery protocol. The generator is optional; when
// absent the model-assisted strategy is skipped.
type Engine struct {
	generator ai.Generator
	logger    *zap.Logger
}

func New(generator ai.Generator, logger *zap.Logger) *Engine {
	return &Engine{generator: generator, logger: logger}
}

// Repair turns raw generative text into a record. It never fails: when no
// structured data can be salvaged the caller-supplied fallback is returned
// unchanged.
func (e *Engine) Repair(ctx context.Context, raw string, fallback *resume.Record) *resume.Record {
	ordinal := 0

	// Direct parse of the whole response.
	if record, err := parseObject(raw); err == nil {
		e.logAttempt(Attempt{Strategy: "direct_parse", Ordinal: ordinal, Outcome: "success"})
		return record
	}
	ordinal++
	e.logAttempt(Attempt{Strategy: "direct_parse", Ordinal: ordinal, Outcome: "retry"})

	// Without a brace-delimited candidate the remaining strategies have
	// nothing to work on.
	candidate, ok := extractCandidate(raw)
	if !ok {
		ordinal++
		e.logAttempt(Attempt{Strategy: "bracket_extraction", Ordinal: ordinal, Outcome: "exhausted"})
		return fallback
	}
	ordinal++
	if record, err := parseObject(candidate); err == nil {
		e.logAttempt(Attempt{Strategy: "bracket_extraction", Ordinal: ordinal, Outcome: "success"})
		return record
	}
	e.logAttempt(Attempt{Strategy: "bracket_extraction", Ordinal: ordinal, Outcome: "retry"})

	normalized := normalizeSyntax(candidate)
	ordinal++
	if record, err := parseObject(normalized); err == nil {
		e.logAttempt(Attempt{Strategy: "syntax_normalization", Ordinal: ordinal, Outcome: "success"})
		return record
	}
	e.logAttempt(Attempt{Strategy: "syntax_normalization", Ordinal: ordinal, Outcome: "retry"})

	if record := e.modelAssisted(ctx, normalized, &ordinal); record != nil {
		return record
	}

	ordinal++
	if record := salvagePairs(candidate); record != nil {
		e.logAttempt(Attempt{Strategy: "regex_salvage", Ordinal: ordinal, Outcome: "success"})
		return record
	}
	e.logAttempt(Attempt{Strategy: "regex_salvage", Ordinal: ordinal, Outcome: "retry"})

	ordinal++
	e.logAttempt(Attempt{Strategy: "fallback", Ordinal: ordinal, Outcome: "exhausted"})
	return fallback
}

// modelAssisted asks the generative service to fix the candidate, feeding
// each failed response into the next iteration. Returns nil when the loop is
// exhausted or no generator is configured.
func (e *Engine) modelAssisted(ctx context.Context, input string, ordinal *int) *resume.Record {
	if e.generator == nil {
		return nil
	}

	for attempt := 1; attempt <= maxModelAttempts; attempt++ {
		*ordinal++

		response, err := e.generator.GenerateContent(ctx, fixPrompt(input), &ai.Options{
			Temperature:      ai.Float32(0),
			ResponseMIMEType: "application/json",
		})
		if err != nil {
			e.logAttempt(Attempt{Strategy: "model_assisted", Ordinal: *ordinal, Outcome: "retry"})
			e.logger.Debug("model-assisted repair call failed",
				zap.Int("fix_attempt", attempt),
				zap.Error(err),
			)
			continue
		}

		cleaned := StripCodeFences(response)
		if extracted, ok := extractCandidate(cleaned); ok {
			cleaned = extracted
		}

		if record, err := parseObject(cleaned); err == nil {
			e.logAttempt(Attempt{Strategy: "model_assisted", Ordinal: *ordinal, Outcome: "success"})
			return record
		}

		e.logAttempt(Attempt{Strategy: "model_assisted", Ordinal: *ordinal, Outcome: "retry"})
		input = cleaned
	}

	return nil
}

func (e *Engine) logAttempt(attempt Attempt) {
	if e.logger == nil {
		return
	}
	e.logger.Debug("repair attempt",
		zap.String("strategy", attempt.Strategy),
		zap.Int("ordinal", attempt.Ordinal),
		zap.String("outcome", attempt.Outcome),
	)
}

func fixPrompt(broken string) string {
	return fmt.Sprintf(`This JSON has syntax errors and cannot be parsed. Fix it to be valid JSON with double quotes for all property names and string values. Fix all escaping and format issues:

%s

Return ONLY the fixed JSON with no additional text. Make sure all strings are properly escaped:
1. All backslashes are properly doubled when needed in strings
2. No unescaped quotes inside string values
3. No unescaped newlines in string values
4. No trailing commas in arrays or objects
5. All keys and string values use double quotes`, broken)
}

// parseObject parses s as JSON, requires the top level to be an object and
// decodes it into a record.
func parseObject(s string) (*resume.Record, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &data); err != nil {
		return nil, err
	}
	return resume.FromMap(data)
}

// extractCandidate slices the substring between the first '{' and the last
// '}' of the text.
func extractCandidate(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

var (
	singleQuotedKey   = regexp.MustCompile(`([{\[,]\s*)'([^']*?)'(\s*:)`)
	singleQuotedValue = regexp.MustCompile(`(:\s*)'((?:[^'\\]|\\.)*)'`)
	codeFence         = regexp.MustCompile("```json|```")
	danglingNewline   = regexp.MustCompile(`"\s*\n\s*([^"])`)
	splitString       = regexp.MustCompile(`"\s*\n\s*"`)
)

// normalizeSyntax applies the mechanical cleanups that recover the most
// common generative JSON defects: single-quoted keys/values, code fences,
// raw line breaks inside string values and under-escaped backslashes.
func normalizeSyntax(s string) string {
	s = singleQuotedKey.ReplaceAllString(s, `$1"$2"$3`)
	s = singleQuotedValue.ReplaceAllString(s, `$1"$2"`)
	s = codeFence.ReplaceAllString(s, "")
	s = danglingNewline.ReplaceAllString(s, `" $1`)
	s = splitString.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, `\\`, `\\\\`)
	return s
}

// StripCodeFences removes surrounding markdown code fence markers.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	s = strings.Trim(s, "`")
	return strings.TrimSpace(s)
}

var quotedPair = regexp.MustCompile(`"([^"]+)":\s*"([^"\\]*(?:\\.[^"\\]*)*)"`)

// salvagePairs reconstructs a partial record from quoted key/value pairs in
// the candidate, supporting dotted-key nesting ("a.b" -> {"a":{"b":...}}).
// Deeper dotting than generative output actually produces will not
// round-trip; known limitation. Returns nil when no pair is found.
func salvagePairs(candidate string) *resume.Record {
	matches := quotedPair.FindAllStringSubmatch(candidate, -1)
	if len(matches) == 0 {
		return nil
	}

	data := make(map[string]any)
	for _, match := range matches {
		key, value := match[1], strings.ReplaceAll(match[2], `\"`, `"`)

		parts := strings.Split(key, ".")
		if len(parts) == 1 {
			data[key] = value
			continue
		}

		current := data
		for _, part := range parts[:len(parts)-1] {
			next, ok := current[part].(map[string]any)
			if !ok {
				next = make(map[string]any)
				current[part] = next
			}
			current = next
		}
		current[parts[len(parts)-1]] = value
	}

	// Backfill the sections rendering requires.
	if _, ok := data["contact_info"]; !ok {
		data["contact_info"] = map[string]any{"name": resume.PlaceholderName}
	}
	if _, ok := data["experience"]; !ok {
		data["experience"] = []any{}
	}
	if _, ok := data["education"]; !ok {
		data["education"] = []any{}
	}

	record, err := resume.FromMap(data)
	if err != nil {
		return nil
	}
	return record
}
