// Package document defines the intermediate schema shared between extraction,
// translation, and rendering: rectangular text regions with semantic types,
// formula regions, and the per-document extraction result.
package document

// TextBlock 文本块
// A rectangular text region extracted from one page. Blocks are produced once
// by an extractor and treated as read-only afterwards.
type TextBlock struct {
	Text      string         `json:"text"`
	BBox      []float64      `json:"bbox"` // [x0, y0, x1, y1], x0<x1 and y0<y1
	BlockType string         `json:"block_type"`
	PageNum   int            `json:"page_num"` // zero-based
	Metadata  *BlockMetadata `json:"metadata,omitempty"`
}

// BlockMetadata carries optional per-block extraction details.
type BlockMetadata struct {
	// Formulas maps placeholder tokens embedded in Text to literal formula content.
	Formulas map[string]string `json:"formulas,omitempty"`
	// Nested marks blocks pulled out of a parent region (captions, footnotes).
	Nested bool `json:"nested,omitempty"`
}

// FormulaSources returns the block's placeholder mapping, or nil.
func (b *TextBlock) FormulaSources() map[string]string {
	if b.Metadata == nil {
		return nil
	}
	return b.Metadata.Formulas
}

// FormulaBlock 公式块
// Consumed only for counting and reporting; formulas are re-inserted inline
// via placeholder restoration, not re-rendered as separate regions.
type FormulaBlock struct {
	Content string    `json:"content"`
	BBox    []float64 `json:"bbox"`
	PageNum int       `json:"page_num"`
	Format  string    `json:"format"` // e.g. "latex"
}

// ExtractionResult 提取结果
type ExtractionResult struct {
	TextBlocks    []TextBlock       `json:"text_blocks"`
	FormulaBlocks []FormulaBlock    `json:"formula_blocks"`
	TotalPages    int               `json:"total_pages"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// TranslationMap maps original (placeholder-protected) text to translated
// text. The original text is the lookup key, so byte-identical blocks share
// one translation.
type TranslationMap map[string]string
