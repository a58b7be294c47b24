package domain

import (
	"path/filepath"
	"strings"
)

// FileType is the closed set of input kinds, decided once at admission time.
type FileType int

const (
	FileTypeUnsupported FileType = iota
	FileTypeImage
	FileTypePDF
)

// Image formats accepted by the recognizer.
var supportedImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
}

// DetectFileType classifies a path by its extension.
func DetectFileType(path string) FileType {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case supportedImageExtensions[ext]:
		return FileTypeImage
	case ext == ".pdf":
		return FileTypePDF
	default:
		return FileTypeUnsupported
	}
}

// WorkItem is one input file submitted for processing.
type WorkItem struct {
	Path string
	Type FileType
}

// NewWorkItem classifies the path and builds the item.
func NewWorkItem(path string) WorkItem {
	return WorkItem{Path: path, Type: DetectFileType(path)}
}

// Key is the resume/dedup identity of the item: the base filename, not the
// full path. Two items with the same basename are the same logical item even
// when their directories differ.
func (w WorkItem) Key() string {
	return filepath.Base(w.Path)
}

// PageImage is one page rasterized out of a PDF. Pages exist only between
// conversion and aggregation; they are never persisted.
type PageImage struct {
	PageNumber int
	ImagePath  string
	Width      int
	Height     int
}

// OCRData is the structured payload returned by the recognizer. The batch
// core treats it as opaque.
type OCRData map[string]any

// Record is the single outcome of one work item (or one page, when nested in
// PageResults). Field names match the persisted ocr_results.json layout and
// must not change: the ledger of a later run is rebuilt from them.
type Record struct {
	Filename         string   `json:"filename"`
	FilePath         string   `json:"file_path"`
	OCRData          OCRData  `json:"ocr_data,omitempty"`
	Error            string   `json:"error,omitempty"`
	SourceType       string   `json:"source_type,omitempty"`
	TotalPages       int      `json:"total_pages,omitempty"`
	PagesProcessed   int      `json:"pages_processed,omitempty"`
	PageResults      []Record `json:"page_results,omitempty"`
	OriginalFilename string   `json:"original_filename,omitempty"`
}

// SourceTypePDF marks records aggregated from a multi-page document.
const SourceTypePDF = "pdf"

// IsError reports whether the record describes a failed item. Errored ledger
// entries are re-processed on the next run.
func (r Record) IsError() bool {
	return r.Error != ""
}

// SuccessRecord builds a success outcome for a single recognized file.
func SuccessRecord(path string, data OCRData) Record {
	return Record{
		Filename: filepath.Base(path),
		FilePath: path,
		OCRData:  data,
	}
}

// ErrorRecord builds a failure outcome for a file.
func ErrorRecord(path string, err error) Record {
	return Record{
		Filename: filepath.Base(path),
		FilePath: path,
		Error:    err.Error(),
	}
}
