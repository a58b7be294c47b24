package domain

import "context"

// Fetcher produces the list of local files to process.
type Fetcher interface {
	// FetchAll returns the paths of every candidate input file.
	FetchAll(ctx context.Context) ([]string, error)
}

// Recognizer extracts structured data from a single image file.
type Recognizer interface {
	// Recognize sends the image with the given prompt to the model and
	// returns the decoded structured result. Any failure is retryable from
	// the caller's point of view.
	Recognize(ctx context.Context, prompt, imagePath string) (OCRData, error)
}

// Rasterizer expands a multi-page document into per-page images.
type Rasterizer interface {
	// Convert renders every page of the PDF into a temporary image file.
	// The returned cleanup function removes all temporary artifacts and is
	// non-nil on every return path, including errors.
	Convert(ctx context.Context, pdfPath string) (pages []PageImage, cleanup func(), err error)
}
