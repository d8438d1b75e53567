// Package template resolves Mustache-style single-brace placeholders
// against a run context: {{path.to.value}} for a stringified scalar lookup,
// {{json path}} for a pretty-printed JSON subtree.
package template

import (
	"encoding/json"
	"fmt"
	"strings"

	"regexp"

	"github.com/smilemakc/workflow-engine/internal/domain"
)

var placeholderPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Engine resolves templates against a fixed context snapshot. Unknown
// paths resolve to the empty string; the evaluator never executes code and
// never HTML-escapes its output (spec §4.4).
type Engine struct {
	context any
}

// New builds an Engine bound to the given context value, typically a
// domain.RunContext.
func New(context any) *Engine {
	return &Engine{context: context}
}

// ResolveString substitutes every {{...}} placeholder in s.
func (e *Engine) ResolveString(s string) string {
	if s == "" || !strings.Contains(s, "{{") {
		return s
	}
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		ref := strings.TrimSpace(match[2 : len(match)-2])
		return e.resolveRef(ref)
	})
}

func (e *Engine) resolveRef(ref string) string {
	if rest, ok := cutPrefix(ref, "json"); ok {
		path := strings.TrimSpace(rest)
		value, found := domain.ResolvePath(e.context, path)
		if !found {
			return ""
		}
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return ""
		}
		return string(data)
	}

	value, found := domain.ResolvePath(e.context, ref)
	if !found {
		return ""
	}
	return stringify(value)
}

// cutPrefix reports whether ref starts with the "json" keyword followed by
// whitespace, returning the remainder of the reference.
func cutPrefix(ref, keyword string) (string, bool) {
	if !strings.HasPrefix(ref, keyword) {
		return "", false
	}
	rest := ref[len(keyword):]
	if rest == "" {
		return "", false
	}
	if rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	return rest, true
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return fmt.Sprintf("%t", v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case int, int32, int64:
		return fmt.Sprintf("%d", v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

// ResolveConfig resolves every string-valued field of a node config map,
// recursing into nested maps and slices. Non-string scalars pass through
// unchanged.
func ResolveConfig(context any, config map[string]any) map[string]any {
	e := New(context)
	out := make(map[string]any, len(config))
	for k, v := range config {
		out[k] = e.resolveValue(v)
	}
	return out
}

func (e *Engine) resolveValue(v any) any {
	switch t := v.(type) {
	case string:
		return e.ResolveString(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = e.resolveValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = e.resolveValue(vv)
		}
		return out
	default:
		return v
	}
}

// HasPlaceholders reports whether s contains at least one {{...}} template.
func HasPlaceholders(s string) bool {
	return placeholderPattern.MatchString(s)
}
