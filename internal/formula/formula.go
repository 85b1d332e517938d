// Package formula shields embedded mathematical content from translation.
// Literal formula text is swapped for synthetic placeholder tokens before a
// block crosses the translation boundary and swapped back afterwards, so the
// translator never sees (or mangles) the math.
package formula

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	// DefaultPrefix is the default placeholder token prefix
	DefaultPrefix = "__FORMULA"
	// DefaultSuffix is the default placeholder token suffix
	DefaultSuffix = "__"
)

// Handler generates and resolves placeholder tokens. The counter is owned by
// the instance; create one Handler per translation run so token sequences
// never collide across runs.
type Handler struct {
	prefix  string
	suffix  string
	counter int
	pattern *regexp.Regexp
}

// NewHandler creates a Handler with the default token shape.
func NewHandler() *Handler {
	return NewHandlerWithTokenShape(DefaultPrefix, DefaultSuffix)
}

// NewHandlerWithTokenShape creates a Handler with a custom prefix and suffix.
func NewHandlerWithTokenShape(prefix, suffix string) *Handler {
	return &Handler{
		prefix:  prefix,
		suffix:  suffix,
		pattern: regexp.MustCompile(regexp.QuoteMeta(prefix) + `\d+` + regexp.QuoteMeta(suffix)),
	}
}

// Tokenize replaces the first remaining occurrence of each formula string in
// text with a freshly generated token. Formulas not present in the text are
// silently skipped. Returns the modified text and the token-to-formula
// mapping for the replacements that were made.
func (h *Handler) Tokenize(text string, formulas []string) (string, map[string]string) {
	mapping := make(map[string]string)
	modified := text

	for _, f := range formulas {
		if !strings.Contains(modified, f) {
			continue
		}
		token := h.nextToken()
		mapping[token] = f
		modified = strings.Replace(modified, f, token, 1)
	}

	return modified, mapping
}

// GenerateMapping produces a fresh token for each formula without touching
// any text. Used when extraction has already separated formula spans from
// the surrounding prose.
func (h *Handler) GenerateMapping(formulas []string) map[string]string {
	mapping := make(map[string]string, len(formulas))
	for _, f := range formulas {
		mapping[h.nextToken()] = f
	}
	return mapping
}

// Restore replaces every occurrence of each token in mapping with its
// formula content. Tokens absent from the text are no-ops. Tokens are
// processed in sorted order so restoration is deterministic per run; token
// character content never overlaps, so order cannot affect the result.
func Restore(text string, mapping map[string]string) string {
	if len(mapping) == 0 {
		return text
	}

	tokens := make([]string, 0, len(mapping))
	for token := range mapping {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	restored := text
	for _, token := range tokens {
		restored = strings.ReplaceAll(restored, token, mapping[token])
	}
	return restored
}

// nextToken generates the next unique placeholder token.
func (h *Handler) nextToken() string {
	token := fmt.Sprintf("%s%d%s", h.prefix, h.counter, h.suffix)
	h.counter++
	return token
}

// ResetCounter resets the token counter to zero.
func (h *Handler) ResetCounter() {
	h.counter = 0
}

// IsPlaceholder reports whether text is exactly one placeholder token.
func (h *Handler) IsPlaceholder(text string) bool {
	m := h.pattern.FindString(text)
	return m == text && m != ""
}

// ExtractPlaceholders returns all non-overlapping token occurrences in text,
// in scan order.
func (h *Handler) ExtractPlaceholders(text string) []string {
	return h.pattern.FindAllString(text, -1)
}
