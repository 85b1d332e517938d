package extractor

import (
	"context"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"pdf-translator/internal/document"
	"pdf-translator/internal/logger"
	"pdf-translator/internal/types"
)

// TextExtractor 快速文本提取器
// Fast backend for text-based PDFs: one block per text row, no layout
// classification (every block is typed "text") and no formula detection.
type TextExtractor struct{}

// NewTextExtractor creates a new TextExtractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Name returns the backend name.
func (e *TextExtractor) Name() string {
	return "text"
}

// SupportsOCR reports that this backend cannot handle scanned pages.
func (e *TextExtractor) SupportsOCR() bool {
	return false
}

// Extract reads per-row text blocks from the PDF.
func (e *TextExtractor) Extract(ctx context.Context, pdfPath string) (*document.ExtractionResult, error) {
	if err := ValidatePDF(pdfPath); err != nil {
		return nil, err
	}

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, types.NewAppError(types.ErrExtractFailed, "cannot open PDF file", err)
	}
	defer f.Close()

	totalPages := r.NumPage()
	var blocks []document.TextBlock

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, types.NewAppError(types.ErrExtractFailed, "extraction interrupted", err)
		}

		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			logger.Warn("failed to read page rows, skipping page",
				logger.Int("page", pageNum), logger.Err(err))
			continue
		}

		for _, row := range rows {
			block, ok := rowToBlock(row, pageNum-1)
			if ok {
				blocks = append(blocks, block)
			}
		}
	}

	logger.Info("text extraction complete",
		logger.Int("blocks", len(blocks)),
		logger.Int("pages", totalPages))

	return &document.ExtractionResult{
		TextBlocks:    blocks,
		FormulaBlocks: nil,
		TotalPages:    totalPages,
		Metadata:      map[string]string{"extractor": "text", "pages": strconv.Itoa(totalPages)},
	}, nil
}

// rowToBlock merges a text row's fragments into a single TextBlock.
func rowToBlock(row *pdf.Row, pageNum int) (document.TextBlock, bool) {
	var sb strings.Builder
	var minX, maxX, minY, maxY, totalFontSize float64
	first := true
	count := 0

	for _, frag := range row.Content {
		if frag.S == "" {
			continue
		}
		sb.WriteString(frag.S)
		count++
		totalFontSize += frag.FontSize

		if first {
			minX, maxX, minY, maxY = frag.X, frag.X, frag.Y, frag.Y
			first = false
			continue
		}
		minX = min(minX, frag.X)
		maxX = max(maxX, frag.X)
		minY = min(minY, frag.Y)
		maxY = max(maxY, frag.Y)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" || count == 0 {
		return document.TextBlock{}, false
	}

	fontSize := totalFontSize / float64(count)
	if fontSize <= 0 {
		fontSize = 10.0
	}

	// Fragment coordinates are text origins. The right edge and line height
	// are estimated from the font size; exact values need font metrics.
	width := float64(len(text)) * fontSize * 0.5
	if maxX > minX && maxX-minX+fontSize > width {
		width = maxX - minX + fontSize
	}

	return document.TextBlock{
		Text:      text,
		BBox:      []float64{minX, minY, minX + width, maxY + fontSize},
		BlockType: "text",
		PageNum:   pageNum,
	}, true
}
