// Package styling decides which block types are translated and how
// translated text is styled when re-projected onto the page.
package styling

import (
	"fmt"
	"strings"
)

// skipTypes are block types whose content must not be sent to the
// translator: non-prose regions where a mistranslation or a destructive
// overlay would damage the document.
var skipTypes = map[string]struct{}{
	"image":              {},
	"table":              {},
	"equation":           {},
	"figure":             {},
	"interline_equation": {},
	"chart":              {},
	"diagram":            {},
}

// typeSynonyms maps known block type variations to the canonical vocabulary.
var typeSynonyms = map[string]string{
	"heading":     "header",
	"h1":          "title",
	"h2":          "header",
	"h3":          "header",
	"paragraph":   "text",
	"body":        "text",
	"fig_caption": "image_caption",
	"tbl_caption": "table_caption",
}

// ShouldTranslate reports whether a block of the given type is eligible for
// translation. Matching is case-insensitive; a missing or empty type is
// treated as translatable prose.
func ShouldTranslate(blockType string) bool {
	_, skip := skipTypes[strings.ToLower(blockType)]
	return !skip
}

// IsCaption reports whether the block type denotes a caption.
func IsCaption(blockType string) bool {
	bt := strings.ToLower(blockType)
	return strings.Contains(bt, "caption")
}

// IsFootnote reports whether the block type denotes a footnote or footer.
func IsFootnote(blockType string) bool {
	bt := strings.ToLower(blockType)
	return strings.Contains(bt, "footnote") || bt == "footer" || bt == "page_footnote"
}

// NormalizeType lower-cases, trims, and maps known synonyms onto the
// canonical type vocabulary. Unknown types pass through unchanged; an empty
// type becomes "text".
func NormalizeType(blockType string) string {
	if blockType == "" {
		return "text"
	}

	bt := strings.ToLower(strings.TrimSpace(blockType))
	if canonical, ok := typeSynonyms[bt]; ok {
		return canonical
	}
	return bt
}

// Style 样式配置
// Per block-type font profile applied when translated text is inserted.
type Style struct {
	FontWeight string  `json:"font_weight"`
	FontSize   float64 `json:"font_size"`
	FontStyle  string  `json:"font_style"`
}

// defaultStyles is the static profile table. "text" doubles as the fallback
// for unknown types.
func defaultStyles() map[string]Style {
	return map[string]Style{
		"text":          {FontWeight: "normal", FontSize: 9.0, FontStyle: "normal"},
		"title":         {FontWeight: "bold", FontSize: 14.0, FontStyle: "normal"},
		"header":        {FontWeight: "bold", FontSize: 11.0, FontStyle: "normal"},
		"abstract":      {FontWeight: "normal", FontSize: 9.0, FontStyle: "italic"},
		"caption":       {FontWeight: "normal", FontSize: 9.0, FontStyle: "italic"},
		"image_caption": {FontWeight: "normal", FontSize: 8.5, FontStyle: "italic"},
		"table_caption": {FontWeight: "normal", FontSize: 8.5, FontStyle: "italic"},
		"footer":        {FontWeight: "normal", FontSize: 8.0, FontStyle: "normal"},
		"page_footnote": {FontWeight: "normal", FontSize: 8.0, FontStyle: "normal"},
		"equation":      {FontWeight: "normal", FontSize: 9.0, FontStyle: "normal"},
	}
}

// StyleConfig resolves block types to font profiles.
type StyleConfig struct {
	styles map[string]Style
}

// NewStyleConfig creates a StyleConfig with the default profile table.
func NewStyleConfig() *StyleConfig {
	return &StyleConfig{styles: defaultStyles()}
}

// NewStyleConfigWithOverrides creates a StyleConfig with custom profiles
// layered over the defaults.
func NewStyleConfigWithOverrides(overrides map[string]Style) *StyleConfig {
	cfg := NewStyleConfig()
	for bt, s := range overrides {
		cfg.styles[strings.ToLower(bt)] = s
	}
	return cfg
}

// StyleFor returns the profile for the given block type, falling back to the
// "text" profile for unknown types.
func (c *StyleConfig) StyleFor(blockType string) Style {
	bt := strings.ToLower(blockType)
	if bt == "" {
		bt = "text"
	}
	if s, ok := c.styles[bt]; ok {
		return s
	}
	return c.styles["text"]
}

// SetStyle overrides a single profile property set for a block type. A type
// not yet in the table starts from the "text" profile.
func (c *StyleConfig) SetStyle(blockType string, style Style) {
	c.styles[strings.ToLower(blockType)] = style
}

// CSSFor renders a style declaration for backends that draw text through an
// HTML box, such as a headless-browser renderer. The PDF overlay backend
// maps profiles to core fonts directly and does not consume this form. The
// font family is fixed; size and weight are always emitted, font-style only
// when the profile is not normal.
func (c *StyleConfig) CSSFor(blockType, color string) string {
	s := c.StyleFor(blockType)

	var sb strings.Builder
	sb.WriteString("* {")
	sb.WriteString("font-family: sans-serif; ")
	fmt.Fprintf(&sb, "font-size: %gpt; ", s.FontSize)
	fmt.Fprintf(&sb, "font-weight: %s; ", s.FontWeight)
	if s.FontStyle != "normal" {
		fmt.Fprintf(&sb, "font-style: %s; ", s.FontStyle)
	}
	fmt.Fprintf(&sb, "color: %s;", color)
	sb.WriteString("}")

	return sb.String()
}
