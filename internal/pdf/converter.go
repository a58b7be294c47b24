// Package pdf rasterizes PDF documents into per-page images using go-fitz.
package pdf

import (
	"context"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog"

	"github.com/hkb3711220/passport-ocr/internal/domain"
)

// jpegQuality balances recognition accuracy against upload size.
const jpegQuality = 85

// Converter implements domain.Rasterizer. Each Convert call works in its own
// temporary directory so concurrent documents never share artifacts.
type Converter struct {
	log zerolog.Logger
}

// NewConverter creates a new PDF converter.
func NewConverter(log zerolog.Logger) *Converter {
	return &Converter{log: log}
}

// Convert renders every page of the PDF to a JPEG in a fresh temp directory.
// The returned cleanup removes the directory and is valid on every return
// path; callers must defer it even when err is non-nil.
func (c *Converter) Convert(ctx context.Context, pdfPath string) ([]domain.PageImage, func(), error) {
	cleanup := func() {}

	if err := validatePDFPath(pdfPath); err != nil {
		return nil, cleanup, err
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, cleanup, domain.ConversionError("cannot open PDF", err)
	}
	defer doc.Close()

	tempDir, err := os.MkdirTemp("", "passport-ocr-*")
	if err != nil {
		return nil, cleanup, domain.IOError("cannot create temp directory", err)
	}
	cleanup = func() {
		if rmErr := os.RemoveAll(tempDir); rmErr != nil {
			c.log.Warn().Str("dir", tempDir).Err(rmErr).Msg("cannot remove temp pages")
		}
	}

	pageCount := doc.NumPage()
	pages := make([]domain.PageImage, 0, pageCount)

	for pageNum := 0; pageNum < pageCount; pageNum++ {
		select {
		case <-ctx.Done():
			return nil, cleanup, ctx.Err()
		default:
		}

		img, err := doc.Image(pageNum)
		if err != nil {
			return nil, cleanup, domain.ConversionError(fmt.Sprintf("cannot render page %d", pageNum+1), err)
		}

		outputPath := filepath.Join(tempDir, fmt.Sprintf("page_%03d.jpg", pageNum+1))
		outputFile, err := os.Create(outputPath)
		if err != nil {
			return nil, cleanup, domain.IOError(fmt.Sprintf("cannot create page file %d", pageNum+1), err)
		}

		err = jpeg.Encode(outputFile, img, &jpeg.Options{Quality: jpegQuality})
		outputFile.Close()
		if err != nil {
			return nil, cleanup, domain.ConversionError(fmt.Sprintf("cannot encode page %d", pageNum+1), err)
		}

		bounds := img.Bounds()
		pages = append(pages, domain.PageImage{
			PageNumber: pageNum + 1,
			ImagePath:  outputPath,
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
		})
	}

	c.log.Debug().Str("pdf", pdfPath).Int("pages", len(pages)).Msg("rasterized document")
	return pages, cleanup, nil
}

// validatePDFPath checks the path points at a readable PDF file.
func validatePDFPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return domain.ValidationError("file path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ValidationError(fmt.Sprintf("file does not exist: %s", path), err)
		}
		return domain.ValidationError(fmt.Sprintf("cannot access file: %s", path), err)
	}
	if info.IsDir() {
		return domain.ValidationError(fmt.Sprintf("path is a directory, not a file: %s", path), nil)
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".pdf" {
		return domain.ValidationError(fmt.Sprintf("file is not a PDF (has extension %s)", ext), nil)
	}
	return nil
}
