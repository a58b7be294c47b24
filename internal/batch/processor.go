// Package batch contains the batch execution core: the per-item processor
// and the concurrency-bounded scheduler.
package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hkb3711220/passport-ocr/internal/domain"
	"github.com/hkb3711220/passport-ocr/internal/retry"
)

// Processor turns one work item into exactly one outcome record. Failures
// never escape as errors; they become error records.
type Processor struct {
	recognizer domain.Recognizer
	rasterizer domain.Rasterizer
	executor   *retry.Executor
	prompt     string
	log        zerolog.Logger
}

// NewProcessor creates an item processor.
func NewProcessor(recognizer domain.Recognizer, rasterizer domain.Rasterizer, executor *retry.Executor, prompt string, log zerolog.Logger) *Processor {
	return &Processor{
		recognizer: recognizer,
		rasterizer: rasterizer,
		executor:   executor,
		prompt:     prompt,
		log:        log,
	}
}

// Process handles one admitted work item. The scheduler only admits items
// classified as image or PDF.
func (p *Processor) Process(ctx context.Context, item domain.WorkItem) domain.Record {
	p.log.Info().Str("file", item.Path).Msg("processing file")

	switch item.Type {
	case domain.FileTypePDF:
		return p.processDocument(ctx, item)
	default:
		return p.processPage(ctx, item.Path, "")
	}
}

// processDocument expands a PDF into pages, recognizes each page in order,
// and aggregates one record for the whole document. Rasterization failures
// are terminal: unlike recognition they consume no retry budget.
func (p *Processor) processDocument(ctx context.Context, item domain.WorkItem) domain.Record {
	pages, cleanup, err := p.rasterizer.Convert(ctx, item.Path)
	// Temp pages are removed on every exit path below, success or failure.
	defer cleanup()

	if err != nil {
		p.log.Error().Str("file", item.Path).Err(err).Msg("PDF conversion failed")
		return domain.ErrorRecord(item.Path, err)
	}
	if len(pages) == 0 {
		p.log.Error().Str("file", item.Path).Msg("PDF conversion produced no pages")
		return domain.ErrorRecord(item.Path, errors.New("PDF conversion produced no pages"))
	}

	// Pages run strictly in order: numbering and the first-successful-page
	// aggregation below depend on it.
	pageRecords := make([]domain.Record, 0, len(pages))
	successCount := 0
	for _, page := range pages {
		label := fmt.Sprintf("%s (page %d)", item.Key(), page.PageNumber)
		rec := p.processPage(ctx, page.ImagePath, label)
		pageRecords = append(pageRecords, rec)
		if !rec.IsError() {
			successCount++
		}
	}

	if successCount == 0 {
		p.log.Error().Str("file", item.Path).Int("pages", len(pages)).Msg("no pages could be processed")
		return withDocumentFields(domain.ErrorRecord(item.Path, errors.New("no pages could be processed")), len(pages), 0)
	}

	// The parent record promotes the first successful page's data rather
	// than merging across pages. The per-page list rides along only when
	// more than one page succeeded.
	var first domain.Record
	for _, rec := range pageRecords {
		if !rec.IsError() {
			first = rec
			break
		}
	}

	result := withDocumentFields(domain.SuccessRecord(item.Path, first.OCRData), len(pages), successCount)
	if successCount > 1 {
		result.PageResults = pageRecords
	}

	p.log.Info().
		Str("file", item.Path).
		Int("pages", len(pages)).
		Int("pages_processed", successCount).
		Msg("document processed")

	return result
}

// processPage wraps a single recognition call in the retry executor. On
// exhaustion the returned record carries the last attempt's error message.
// When label is set it overrides the record key and is kept for traceability.
func (p *Processor) processPage(ctx context.Context, path, label string) domain.Record {
	name := label
	if name == "" {
		name = domain.NewWorkItem(path).Key()
	}

	var data domain.OCRData
	err := p.executor.Do(ctx, fmt.Sprintf("OCR %s", name), func(ctx context.Context) error {
		d, rerr := p.recognizer.Recognize(ctx, p.prompt, path)
		if rerr != nil {
			return rerr
		}
		data = d
		return nil
	})

	var rec domain.Record
	if err != nil {
		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			err = exhausted.Err
		}
		p.log.Error().Str("file", path).Err(err).Msg("OCR failed")
		rec = domain.ErrorRecord(path, err)
	} else {
		rec = domain.SuccessRecord(path, data)
	}

	if label != "" {
		rec.Filename = label
		rec.OriginalFilename = label
	}
	return rec
}

// withDocumentFields stamps the aggregate counters onto a document record.
func withDocumentFields(rec domain.Record, total, processed int) domain.Record {
	rec.SourceType = domain.SourceTypePDF
	rec.TotalPages = total
	rec.PagesProcessed = processed
	return rec
}
