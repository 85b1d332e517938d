// Package translator turns block text from the source language into the
// target language. The OpenAI-backed implementation is fronted by an
// on-disk cache so repeated runs over the same document are cheap.
package translator

import (
	"context"
	"strings"
)

// Translator 翻译器接口
type Translator interface {
	// Translate translates a single text. Empty or whitespace-only input is
	// returned unchanged without contacting the backend.
	Translate(ctx context.Context, text string) (string, error)

	// TranslateBatch translates texts one by one, preserving order. A failed
	// item degrades to its original text rather than failing the batch.
	TranslateBatch(ctx context.Context, texts []string) ([]string, error)

	// SupportsLanguagePair reports whether both language codes are valid.
	SupportsLanguagePair(source, target string) bool

	// Name returns the backend name.
	Name() string
}

// isBlank reports whether text carries no translatable content.
func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
