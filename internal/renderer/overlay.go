package renderer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/color"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"pdf-translator/internal/bbox"
	"pdf-translator/internal/document"
	"pdf-translator/internal/logger"
	"pdf-translator/internal/styling"
	"pdf-translator/internal/types"
)

// DefaultPadding is the bbox expansion applied before covering a block, in
// points. A small margin hides antialiasing fringes of the original glyphs.
const DefaultPadding = 0.5

// OverlayRenderer 覆盖式渲染器
// Pure Go rendering on pdfcpu watermarks. For every translated block it
// stamps a white rectangle over the source region and the translated text
// on top of it. The original text objects stay in the file underneath.
type OverlayRenderer struct {
	styles  *styling.StyleConfig
	conf    *model.Configuration
	padding float64
}

// OverlayOption configures an OverlayRenderer.
type OverlayOption func(*OverlayRenderer)

// WithPadding sets the bbox expansion in points.
func WithPadding(padding float64) OverlayOption {
	return func(r *OverlayRenderer) { r.padding = padding }
}

// WithStyles sets a custom style table.
func WithStyles(styles *styling.StyleConfig) OverlayOption {
	return func(r *OverlayRenderer) { r.styles = styles }
}

// NewOverlayRenderer creates an OverlayRenderer with default styling.
func NewOverlayRenderer(opts ...OverlayOption) *OverlayRenderer {
	r := &OverlayRenderer{
		styles:  styling.NewStyleConfig(),
		conf:    model.NewDefaultConfiguration(),
		padding: DefaultPadding,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the strategy name.
func (r *OverlayRenderer) Name() string {
	return "overlay"
}

// PreservesOriginalText reports that the source text objects remain in the
// output file underneath the stamped content.
func (r *OverlayRenderer) PreservesOriginalText() bool {
	return true
}

// Render stamps translations into a copy of sourcePDF at outputPath.
func (r *OverlayRenderer) Render(ctx context.Context, sourcePDF string, blocks []document.TextBlock,
	translations document.TranslationMap, outputPath string) (*RenderResult, error) {

	if err := r.validateInputs(sourcePDF, blocks, translations, outputPath); err != nil {
		return nil, err
	}

	pdfCtx, err := api.ReadContextFile(sourcePDF)
	if err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrRenderFailed, "cannot read source PDF", sourcePDF, err)
	}
	pageCount := pdfCtx.PageCount

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrRenderFailed, "cannot create output directory", dir, err)
		}
	}
	if err := copyFile(sourcePDF, outputPath); err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrRenderFailed, "cannot copy source PDF", outputPath, err)
	}

	result := &RenderResult{OutputPath: outputPath, TotalPages: pageCount}

	for pageIdx, pageBlocks := range groupByPage(blocks) {
		if err := ctx.Err(); err != nil {
			return nil, types.NewAppError(types.ErrRenderFailed, "rendering cancelled", err)
		}
		if pageIdx < 0 || pageIdx >= pageCount {
			logger.Warn("block page outside document, skipping",
				logger.Int("page", pageIdx), logger.Int("pageCount", pageCount))
			result.SkippedBlocks += len(pageBlocks)
			continue
		}

		for _, block := range pageBlocks {
			translation, ok := translations[block.Text]
			if !ok || strings.TrimSpace(translation) == "" {
				result.SkippedBlocks++
				continue
			}
			if err := r.renderBlock(outputPath, pageIdx+1, block, translation); err != nil {
				logger.Warn("block rendering failed, continuing",
					logger.Int("page", pageIdx), logger.String("type", block.BlockType), logger.Err(err))
				result.SkippedBlocks++
				continue
			}
			result.RenderedBlocks++
		}
	}

	if err := api.OptimizeFile(outputPath, "", r.conf); err != nil {
		logger.Warn("output compaction failed", logger.Err(err))
	}
	if err := api.ValidateFile(outputPath, r.conf); err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrRenderFailed, "generated PDF is invalid", outputPath, err)
	}

	logger.Info("rendering complete",
		logger.String("output", filepath.Base(outputPath)),
		logger.Int("rendered", result.RenderedBlocks),
		logger.Int("skipped", result.SkippedBlocks))
	return result, nil
}

// renderBlock covers one source region and stamps its translation.
func (r *OverlayRenderer) renderBlock(pdfPath string, page int, block document.TextBlock, translation string) error {
	region, err := bbox.Expand(block.BBox, r.padding)
	if err != nil {
		return types.NewAppErrorWithPage(types.ErrRenderFailed, "invalid block geometry", page, err)
	}
	x, y := region[0], region[1]
	width, height := region[2]-region[0], region[3]-region[1]

	if err := r.coverRegion(pdfPath, page, x, y, width, height); err != nil {
		return err
	}

	style := r.styles.StyleFor(block.BlockType)
	wm := &model.Watermark{
		Mode:           model.WMText,
		TextString:     prepareText(translation),
		FontName:       fontNameFor(style),
		FontSize:       int(style.FontSize),
		ScaledFontSize: int(style.FontSize),
		Color:          color.Black,
		Opacity:        1.0,
		OnTop:          true,
		Pos:            pdftypes.TopLeft,
		Dx:             x,
		Dy:             y,
		Width:          int(width),
		Height:         int(height),
	}

	selectedPages := []string{fmt.Sprintf("%d", page)}
	if err := api.AddWatermarksFile(pdfPath, "", selectedPages, wm, r.conf); err != nil {
		return types.NewAppErrorWithPage(types.ErrRenderFailed, "failed to stamp translated text", page, err)
	}
	return nil
}

// coverRegion stamps a white rectangle over the source text area.
func (r *OverlayRenderer) coverRegion(pdfPath string, page int, x, y, width, height float64) error {
	bgColor := color.White
	wm := &model.Watermark{
		Mode:       model.WMText,
		TextString: " ",
		BgColor:    &bgColor,
		Opacity:    1.0,
		OnTop:      true,
		Pos:        pdftypes.TopLeft,
		Dx:         x,
		Dy:         y,
		Width:      int(width),
		Height:     int(height),
	}

	selectedPages := []string{fmt.Sprintf("%d", page)}
	if err := api.AddWatermarksFile(pdfPath, "", selectedPages, wm, r.conf); err != nil {
		return types.NewAppErrorWithPage(types.ErrRenderFailed, "failed to cover source text", page, err)
	}
	return nil
}

// validateInputs rejects calls that cannot possibly render anything.
func (r *OverlayRenderer) validateInputs(sourcePDF string, blocks []document.TextBlock,
	translations document.TranslationMap, outputPath string) error {

	if sourcePDF == "" {
		return types.NewAppError(types.ErrInvalidInput, "source PDF path is empty", nil)
	}
	if outputPath == "" {
		return types.NewAppError(types.ErrInvalidInput, "output path is empty", nil)
	}
	if _, err := os.Stat(sourcePDF); err != nil {
		if os.IsNotExist(err) {
			return types.NewAppErrorWithDetails(types.ErrFileNotFound, "source PDF not found", sourcePDF, err)
		}
		return types.NewAppErrorWithDetails(types.ErrInvalidInput, "cannot access source PDF", sourcePDF, err)
	}
	if len(blocks) == 0 {
		return types.NewAppError(types.ErrInvalidInput, "no text blocks to render", nil)
	}
	if len(translations) == 0 {
		return types.NewAppError(types.ErrInvalidInput, "translation map is empty", nil)
	}
	return nil
}

// groupByPage buckets blocks by their zero-based page number.
func groupByPage(blocks []document.TextBlock) map[int][]document.TextBlock {
	pages := make(map[int][]document.TextBlock)
	for _, block := range blocks {
		pages[block.PageNum] = append(pages[block.PageNum], block)
	}
	return pages
}

// prepareText flattens a translation to a single stampable line.
func prepareText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\r", "")
	return strings.ReplaceAll(text, "\n", " ")
}

// fontNameFor maps a block style to a pdfcpu core font.
func fontNameFor(style styling.Style) string {
	bold := style.FontWeight == "bold"
	italic := style.FontStyle == "italic"
	switch {
	case bold && italic:
		return "Helvetica-BoldOblique"
	case bold:
		return "Helvetica-Bold"
	case italic:
		return "Helvetica-Oblique"
	default:
		return "Helvetica"
	}
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
