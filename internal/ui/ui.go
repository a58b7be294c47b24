// Package ui provides terminal output for the passport-ocr CLI.
package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/hkb3711220/passport-ocr/internal/domain"
	"github.com/hkb3711220/passport-ocr/internal/progress"
)

// ProgressBar wraps a progressbar instance for deterministic progress display.
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a progress bar sized for the batch.
func NewProgressBar(total int64, description string) *ProgressBar {
	bar := progressbar.NewOptions64(
		total,
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &ProgressBar{bar: bar}
}

// Update moves the bar to the snapshot's processed count.
func (p *ProgressBar) Update(s progress.Snapshot) {
	_ = p.bar.Set64(s.Processed)
}

// Finish completes the progress bar.
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}

// Spinner wraps a spinner for indeterminate phases (listing input files).
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a spinner with the given message.
func NewSpinner(message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr
	return &Spinner{spinner: s}
}

// Start starts the spinner animation.
func (s *Spinner) Start() { s.spinner.Start() }

// Stop stops the spinner animation and clears the line.
func (s *Spinner) Stop() { s.spinner.Stop() }

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	fieldColor   = color.New(color.FgWhite)
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
)

// DisplayRecord prints one outcome in the formatted per-file block.
func DisplayRecord(rec domain.Record) {
	divider := strings.Repeat("=", 50)

	fmt.Println()
	headerColor.Println(divider)
	headerColor.Printf("FILE: %s\n", rec.Filename)
	headerColor.Println(divider)

	if rec.IsError() {
		errorColor.Printf("ERROR: %s\n", rec.Error)
		fmt.Println(divider)
		return
	}

	fmt.Println("OCR RESULT:")
	fmt.Println(strings.Repeat("-", 20))
	for _, field := range []struct{ label, key string }{
		{"Last Name", "last_name"},
		{"First Name", "first_name"},
		{"Passport Number", "passport_number"},
		{"Nationality", "nationality"},
	} {
		if v, ok := rec.OCRData[field.key]; ok {
			fieldColor.Printf("%s: %v\n", field.label, v)
		}
	}
	if rec.SourceType == domain.SourceTypePDF {
		fieldColor.Printf("Pages: %d/%d processed\n", rec.PagesProcessed, rec.TotalPages)
	}
	fmt.Println(divider)
}

// DisplaySummary prints the end-of-run block.
func DisplaySummary(outputFile string, sum progress.Summary, totalRecords int) {
	divider := strings.Repeat("=", 60)

	fmt.Println()
	fmt.Println(divider)
	successColor.Printf("ALL OCR RESULTS SAVED TO: %s\n", outputFile)
	fmt.Printf("Total records: %d\n", totalRecords)
	fmt.Printf("Processed this run: %d (%d ok, %d failed, %d retried)\n",
		sum.Processed, sum.Success, sum.Failed, sum.Retried)
	fmt.Printf("Elapsed: %s (avg %s per file)\n",
		sum.Elapsed.Round(time.Millisecond), sum.AverageString())
	fmt.Println(divider)
}

// Errorf prints an error line to stderr.
func Errorf(format string, args ...any) {
	errorColor.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}
