package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"pdf-translator/internal/document"
	"pdf-translator/internal/formula"
	"pdf-translator/internal/logger"
	"pdf-translator/internal/types"
)

// Intermediate format produced by the structured extraction backend: a
// per-page list of paragraph blocks, each carrying a type, a 4-element bbox,
// and lines of spans. Equation spans are identified by their type or
// text_format discriminator.

type middleFile struct {
	PDFInfo []middlePage `json:"pdf_info"`
}

type middlePage struct {
	ParaBlocks []middleBlock `json:"para_blocks"`
}

type middleBlock struct {
	Type   string        `json:"type"`
	BBox   []float64     `json:"bbox"`
	Lines  []middleLine  `json:"lines"`
	Blocks []middleBlock `json:"blocks"` // nested captions/footnotes
}

type middleLine struct {
	Spans []middleSpan `json:"spans"`
}

type middleSpan struct {
	Type       string `json:"type"`
	TextFormat string `json:"text_format"`
	Content    string `json:"content"`
}

// StructuredExtractor 结构化提取器
// High-accuracy backend: runs an external extraction command that produces
// the intermediate JSON file, then converts it to the shared block schema.
// Formula spans are pulled out as placeholders before the surrounding text
// is assembled, so the block text crosses the translation boundary with its
// math already protected.
type StructuredExtractor struct {
	command     string
	parseMethod string
	lang        string
	outputDir   string
	forceRun    bool
}

// StructuredConfig holds configuration options for the structured extractor.
type StructuredConfig struct {
	// Command is the external extraction CLI. Defaults to "mineru".
	Command string
	// ParseMethod selects the backend parse mode (auto, txt, ocr).
	ParseMethod string
	// Lang is the OCR language hint.
	Lang string
	// OutputDir is where the extraction command writes its results.
	OutputDir string
	// ForceRun re-runs extraction even when a cached intermediate file exists.
	ForceRun bool
}

// NewStructuredExtractor creates a StructuredExtractor with the given configuration.
func NewStructuredExtractor(cfg StructuredConfig) *StructuredExtractor {
	command := cfg.Command
	if command == "" {
		command = "mineru"
	}
	parseMethod := cfg.ParseMethod
	if parseMethod == "" {
		parseMethod = "auto"
	}
	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = "output"
	}
	return &StructuredExtractor{
		command:     command,
		parseMethod: parseMethod,
		lang:        cfg.Lang,
		outputDir:   outputDir,
		forceRun:    cfg.ForceRun,
	}
}

// Name returns the backend name.
func (e *StructuredExtractor) Name() string {
	return "structured"
}

// SupportsOCR reports that this backend can handle scanned pages.
func (e *StructuredExtractor) SupportsOCR() bool {
	return true
}

// IntermediatePath returns where the intermediate JSON for pdfPath lives.
func (e *StructuredExtractor) IntermediatePath(pdfPath string) string {
	stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	return filepath.Join(e.outputDir, stem, e.parseMethod, stem+"_middle.json")
}

// Extract runs the extraction command (unless a cached intermediate file
// exists) and converts its output into the shared block schema.
func (e *StructuredExtractor) Extract(ctx context.Context, pdfPath string) (*document.ExtractionResult, error) {
	if err := ValidatePDF(pdfPath); err != nil {
		return nil, err
	}

	middlePath := e.IntermediatePath(pdfPath)
	if e.forceRun {
		os.Remove(middlePath)
	}

	if _, err := os.Stat(middlePath); err != nil {
		if err := e.runExtraction(ctx, pdfPath); err != nil {
			return nil, err
		}
	} else {
		logger.Info("reusing cached intermediate file", logger.String("path", middlePath))
	}

	pages, err := loadIntermediate(middlePath)
	if err != nil {
		return nil, err
	}

	return e.convert(pages), nil
}

// runExtraction invokes the external extraction command.
func (e *StructuredExtractor) runExtraction(ctx context.Context, pdfPath string) error {
	args := []string{"-p", pdfPath, "-o", e.outputDir, "-m", e.parseMethod}
	if e.lang != "" {
		args = append(args, "-l", e.lang)
	}

	logger.Info("running structured extraction",
		logger.String("command", e.command),
		logger.String("input", filepath.Base(pdfPath)))

	cmd := exec.CommandContext(ctx, e.command, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return types.NewAppErrorWithDetails(types.ErrExtractFailed,
			"structured extraction command failed", strings.TrimSpace(string(out)), err)
	}

	if _, err := os.Stat(e.IntermediatePath(pdfPath)); err != nil {
		return types.NewAppErrorWithDetails(types.ErrExtractFailed,
			"extraction produced no intermediate file", e.IntermediatePath(pdfPath), err)
	}
	return nil
}

// loadIntermediate reads and validates the intermediate JSON file.
func loadIntermediate(path string) ([]middlePage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrExtractFailed,
			"cannot read intermediate file", path, err)
	}

	var mf middleFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrExtractFailed,
			"malformed intermediate file", path, err)
	}
	if mf.PDFInfo == nil {
		return nil, types.NewAppErrorWithDetails(types.ErrExtractFailed,
			"malformed intermediate file", "missing pdf_info list", nil)
	}
	return mf.PDFInfo, nil
}

// convert turns intermediate pages into the shared block schema. Nested
// blocks (captions, footnotes) are extracted exactly one level deep.
func (e *StructuredExtractor) convert(pages []middlePage) *document.ExtractionResult {
	var textBlocks []document.TextBlock
	var formulaBlocks []document.FormulaBlock

	for pageIdx, page := range pages {
		for _, para := range page.ParaBlocks {
			textBlocks, formulaBlocks = appendBlock(textBlocks, formulaBlocks, para, pageIdx, false)

			for _, nested := range para.Blocks {
				textBlocks, formulaBlocks = appendBlock(textBlocks, formulaBlocks, nested, pageIdx, true)
			}
		}
	}

	logger.Info("structured extraction complete",
		logger.Int("textBlocks", len(textBlocks)),
		logger.Int("formulaBlocks", len(formulaBlocks)),
		logger.Int("pages", len(pages)))

	return &document.ExtractionResult{
		TextBlocks:    textBlocks,
		FormulaBlocks: formulaBlocks,
		TotalPages:    len(pages),
		Metadata: map[string]string{
			"extractor": "structured",
			"pages":     strconv.Itoa(len(pages)),
		},
	}
}

// appendBlock converts one paragraph block, protecting its formula spans.
func appendBlock(textBlocks []document.TextBlock, formulaBlocks []document.FormulaBlock,
	para middleBlock, pageIdx int, nested bool) ([]document.TextBlock, []document.FormulaBlock) {

	if len(para.BBox) != 4 {
		return textBlocks, formulaBlocks
	}

	blockType := para.Type
	if blockType == "" {
		blockType = "text"
	}

	text, formulas := assembleText(para)
	if text == "" {
		return textBlocks, formulaBlocks
	}

	var meta *document.BlockMetadata
	if len(formulas) > 0 || nested {
		meta = &document.BlockMetadata{Formulas: formulas, Nested: nested}
	}

	textBlocks = append(textBlocks, document.TextBlock{
		Text:      text,
		BBox:      para.BBox,
		BlockType: blockType,
		PageNum:   pageIdx,
		Metadata:  meta,
	})

	for _, content := range formulas {
		formulaBlocks = append(formulaBlocks, document.FormulaBlock{
			Content: content,
			BBox:    para.BBox, // same region as the parent block
			PageNum: pageIdx,
			Format:  "latex",
		})
	}

	return textBlocks, formulaBlocks
}

// assembleText joins a block's spans into text, replacing equation spans
// with placeholder tokens. The token counter is scoped to the block, matching
// the per-block scope of the returned mapping.
func assembleText(para middleBlock) (string, map[string]string) {
	handler := formula.NewHandler()
	placeholders := make(map[string]string)
	var lines []string

	for _, line := range para.Lines {
		var parts []string
		for _, span := range line.Spans {
			if isEquationSpan(span) {
				token := handler.GenerateMapping([]string{span.Content})
				for t, content := range token {
					placeholders[t] = content
					parts = append(parts, t)
				}
				continue
			}
			parts = append(parts, span.Content)
		}

		lineText := strings.TrimSpace(strings.Join(parts, ""))
		if lineText != "" {
			lines = append(lines, lineText)
		}
	}

	if len(placeholders) == 0 {
		placeholders = nil
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), placeholders
}

// isEquationSpan reports whether a span carries formula content.
func isEquationSpan(span middleSpan) bool {
	return strings.EqualFold(span.Type, "equation") || strings.EqualFold(span.TextFormat, "latex")
}

// String implements fmt.Stringer for diagnostics.
func (e *StructuredExtractor) String() string {
	return fmt.Sprintf("structured(%s, %s)", e.command, e.parseMethod)
}
