// Package renderer writes translated text back into the PDF. The overlay
// strategy covers each source block with a white rectangle and stamps the
// translation on top, so the page layout of the original document survives.
package renderer

import (
	"context"

	"pdf-translator/internal/document"
)

// RenderResult 渲染结果
type RenderResult struct {
	OutputPath     string
	RenderedBlocks int
	SkippedBlocks  int
	TotalPages     int
}

// Renderer 渲染器接口
type Renderer interface {
	// Render writes translations for blocks into a copy of sourcePDF at
	// outputPath. Blocks without a translation are skipped, not failed.
	Render(ctx context.Context, sourcePDF string, blocks []document.TextBlock,
		translations document.TranslationMap, outputPath string) (*RenderResult, error)

	// Name returns the strategy name.
	Name() string

	// PreservesOriginalText reports whether the original text objects are
	// still present underneath the rendered output.
	PreservesOriginalText() bool
}
