// Package extractor provides the extraction collaborators of the translation
// pipeline. Backends are swappable implementations of the Extractor
// interface, selected by configuration.
package extractor

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"pdf-translator/internal/document"
	"pdf-translator/internal/types"
)

// Extractor 提取器接口
type Extractor interface {
	// Extract returns the structured content of the PDF at pdfPath.
	Extract(ctx context.Context, pdfPath string) (*document.ExtractionResult, error)
	// Name returns a human-readable backend name.
	Name() string
	// SupportsOCR reports whether this backend can handle scanned pages.
	SupportsOCR() bool
}

// ValidatePDF checks that pdfPath exists, is a regular file, and carries a
// .pdf extension.
func ValidatePDF(pdfPath string) error {
	info, err := os.Stat(pdfPath)
	if err != nil {
		if os.IsNotExist(err) {
			return types.NewAppErrorWithDetails(types.ErrFileNotFound, "PDF file not found", pdfPath, err)
		}
		return types.NewAppErrorWithDetails(types.ErrInvalidInput, "cannot access PDF file", pdfPath, err)
	}
	if !info.Mode().IsRegular() {
		return types.NewAppErrorWithDetails(types.ErrInvalidInput, "path is not a regular file", pdfPath, nil)
	}
	if !strings.EqualFold(filepath.Ext(pdfPath), ".pdf") {
		return types.NewAppErrorWithDetails(types.ErrInvalidInput, "not a PDF file", pdfPath, nil)
	}
	return nil
}
