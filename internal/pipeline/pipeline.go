// Package pipeline orchestrates a full document translation: extraction,
// block filtering, translation with formula restoration, and rendering.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pdf-translator/internal/document"
	"pdf-translator/internal/extractor"
	"pdf-translator/internal/formula"
	"pdf-translator/internal/logger"
	"pdf-translator/internal/renderer"
	"pdf-translator/internal/results"
	"pdf-translator/internal/styling"
	"pdf-translator/internal/translator"
	"pdf-translator/internal/types"
)

// Stats 翻译统计
type Stats struct {
	TotalBlocks      int
	TranslatedBlocks int
	SkippedBlocks    int
	RenderedBlocks   int
	TotalPages       int
	Elapsed          time.Duration
}

// Result is the outcome of one document translation.
type Result struct {
	OutputPath string
	RunID      string
	Stats      Stats
}

// Pipeline 翻译流水线
type Pipeline struct {
	extractor  extractor.Extractor
	translator translator.Translator
	renderer   renderer.Renderer
	runs       *results.Manager
	sourceLang string
	targetLang string
}

// Config holds the pipeline's collaborators and language pair. Runs may be
// nil, in which case no run records are written.
type Config struct {
	Extractor  extractor.Extractor
	Translator translator.Translator
	Renderer   renderer.Renderer
	Runs       *results.Manager
	SourceLang string
	TargetLang string
}

// New creates a Pipeline. All three collaborators are required.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Extractor == nil {
		return nil, types.NewAppError(types.ErrConfig, "extractor is required", nil)
	}
	if cfg.Translator == nil {
		return nil, types.NewAppError(types.ErrConfig, "translator is required", nil)
	}
	if cfg.Renderer == nil {
		return nil, types.NewAppError(types.ErrConfig, "renderer is required", nil)
	}
	sourceLang := cfg.SourceLang
	if sourceLang == "" {
		sourceLang = "en"
	}
	targetLang := cfg.TargetLang
	if targetLang == "" {
		targetLang = "es"
	}
	if !cfg.Translator.SupportsLanguagePair(sourceLang, targetLang) {
		return nil, types.NewAppErrorWithDetails(types.ErrConfig, "unsupported language pair",
			sourceLang+" -> "+targetLang, nil)
	}

	return &Pipeline{
		extractor:  cfg.Extractor,
		translator: cfg.Translator,
		renderer:   cfg.Renderer,
		runs:       cfg.Runs,
		sourceLang: sourceLang,
		targetLang: targetLang,
	}, nil
}

// TranslatePDF translates one document. An empty outputPath derives the
// output location from the input path.
func (p *Pipeline) TranslatePDF(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	start := time.Now()

	pdfPath, err := ResolveInputPath(inputPath)
	if err != nil {
		return nil, err
	}
	if outputPath == "" {
		outputPath = DefaultOutputPath(pdfPath, p.targetLang)
	}

	var run *results.RunInfo
	if p.runs != nil {
		run, err = p.runs.NewRun(pdfPath, p.sourceLang, p.targetLang, p.extractor.Name())
		if err != nil {
			logger.Warn("cannot record run, continuing", logger.Err(err))
			run = nil
		}
	}

	result, err := p.translate(ctx, pdfPath, outputPath)
	if run != nil {
		if err != nil {
			if failErr := p.runs.Fail(run, err.Error()); failErr != nil {
				logger.Warn("cannot record run failure", logger.String("run", run.ID), logger.Err(failErr))
			}
		} else {
			result.RunID = run.ID
			if completeErr := p.runs.Complete(run, result.OutputPath,
				result.Stats.TotalBlocks, result.Stats.TranslatedBlocks, result.Stats.RenderedBlocks); completeErr != nil {
				logger.Warn("cannot record run completion", logger.String("run", run.ID), logger.Err(completeErr))
			}
		}
	}
	if err != nil {
		return nil, err
	}

	result.Stats.Elapsed = time.Since(start)
	logger.Info("document translated",
		logger.String("output", filepath.Base(result.OutputPath)),
		logger.Int("translated", result.Stats.TranslatedBlocks),
		logger.Int("rendered", result.Stats.RenderedBlocks),
		logger.Float64("seconds", result.Stats.Elapsed.Seconds()))
	return result, nil
}

func (p *Pipeline) translate(ctx context.Context, pdfPath, outputPath string) (*Result, error) {
	extraction, err := p.extractor.Extract(ctx, pdfPath)
	if err != nil {
		return nil, err
	}
	if len(extraction.TextBlocks) == 0 {
		return nil, types.NewAppErrorWithDetails(types.ErrExtractFailed, "no text blocks extracted", pdfPath, nil)
	}

	stats := Stats{
		TotalBlocks: len(extraction.TextBlocks),
		TotalPages:  extraction.TotalPages,
	}

	// Select blocks that should cross the translation boundary.
	var candidates []document.TextBlock
	for _, block := range extraction.TextBlocks {
		if !styling.ShouldTranslate(block.BlockType) || strings.TrimSpace(block.Text) == "" {
			stats.SkippedBlocks++
			continue
		}
		candidates = append(candidates, block)
	}
	if len(candidates) == 0 {
		return nil, types.NewAppErrorWithDetails(types.ErrTranslateFailed, "no translatable blocks", pdfPath, nil)
	}

	texts := make([]string, len(candidates))
	for i, block := range candidates {
		texts[i] = block.Text
	}

	logger.Info("translating blocks",
		logger.Int("candidates", len(candidates)),
		logger.Int("skipped", stats.SkippedBlocks),
		logger.String("backend", p.translator.Name()))

	translated, err := p.translator.TranslateBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(translated) != len(candidates) {
		return nil, types.NewAppError(types.ErrTranslateFailed, "translation count mismatch", nil)
	}

	// Restore formula placeholders and build the render map. Duplicate
	// source texts collapse to one entry; last translation wins.
	translations := make(document.TranslationMap, len(candidates))
	for i, block := range candidates {
		if translated[i] != block.Text {
			stats.TranslatedBlocks++
		}
		translations[block.Text] = formula.Restore(translated[i], block.FormulaSources())
	}

	renderResult, err := p.renderer.Render(ctx, pdfPath, candidates, translations, outputPath)
	if err != nil {
		return nil, err
	}
	stats.RenderedBlocks = renderResult.RenderedBlocks
	stats.SkippedBlocks += renderResult.SkippedBlocks

	return &Result{OutputPath: renderResult.OutputPath, Stats: stats}, nil
}

// ResolveInputPath locates the input document. A bare name is tried as
// given, with a .pdf extension appended, and inside a sibling pdfs/
// directory.
func ResolveInputPath(inputPath string) (string, error) {
	if inputPath == "" {
		return "", types.NewAppError(types.ErrInvalidInput, "input path is empty", nil)
	}

	candidates := []string{inputPath}
	if !strings.EqualFold(filepath.Ext(inputPath), ".pdf") {
		candidates = append(candidates, inputPath+".pdf")
	}
	base := filepath.Base(inputPath)
	candidates = append(candidates, filepath.Join("pdfs", base))
	if !strings.EqualFold(filepath.Ext(base), ".pdf") {
		candidates = append(candidates, filepath.Join("pdfs", base+".pdf"))
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}
	return "", types.NewAppErrorWithDetails(types.ErrFileNotFound, "input PDF not found", inputPath, nil)
}

// DefaultOutputPath derives the output location from the input path. Inputs
// inside a pdfs/ directory write to a sibling output_pdfs/ directory;
// everything else gets a suffixed sibling file.
func DefaultOutputPath(pdfPath, targetLang string) string {
	dir := filepath.Dir(pdfPath)
	stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	name := fmt.Sprintf("%s_translated_%s.pdf", stem, targetLang)

	if filepath.Base(dir) == "pdfs" {
		return filepath.Join(filepath.Dir(dir), "output_pdfs", name)
	}
	return filepath.Join(dir, name)
}
