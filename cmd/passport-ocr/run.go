package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/hkb3711220/passport-ocr/internal/batch"
	"github.com/hkb3711220/passport-ocr/internal/config"
	"github.com/hkb3711220/passport-ocr/internal/fetch"
	"github.com/hkb3711220/passport-ocr/internal/gemini"
	"github.com/hkb3711220/passport-ocr/internal/ledger"
	"github.com/hkb3711220/passport-ocr/internal/observability"
	"github.com/hkb3711220/passport-ocr/internal/pdf"
	"github.com/hkb3711220/passport-ocr/internal/progress"
	"github.com/hkb3711220/passport-ocr/internal/retry"
	"github.com/hkb3711220/passport-ocr/internal/ui"
)

var (
	runInputDir    string
	runOutputFile  string
	runModel       string
	runConcurrency int
	runMaxRetries  int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process every file in the input directory",
	RunE:  runBatch,
}

func init() {
	runCmd.Flags().StringVarP(&runInputDir, "input", "i", "", "directory of images/PDFs to process (required)")
	runCmd.Flags().StringVarP(&runOutputFile, "output", "o", "", "results file (default ocr_results.json)")
	runCmd.Flags().StringVar(&runModel, "model", "", "model name override")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "max files processed at once")
	runCmd.Flags().IntVar(&runMaxRetries, "max-retries", -1, "retries per OCR call")
	rootCmd.AddCommand(runCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if runInputDir != "" {
		cfg.InputDir = runInputDir
	}
	if runOutputFile != "" {
		cfg.OutputFile = runOutputFile
	}
	if runModel != "" {
		cfg.Model.Name = runModel
	}
	if runConcurrency > 0 {
		cfg.Batch.MaxConcurrentFiles = runConcurrency
	}
	if runMaxRetries >= 0 {
		cfg.Retry.MaxRetries = runMaxRetries
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	log := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	spin := ui.NewSpinner(fmt.Sprintf("listing files in %s", cfg.InputDir))
	spin.Start()
	paths, err := fetch.NewDirectoryFetcher(cfg.InputDir, log).FetchAll(ctx)
	spin.Stop()
	if err != nil {
		ui.Errorf("cannot list input files: %v", err)
		return err
	}

	prior := ledger.Load(cfg.OutputFile, log)

	executor := retry.NewExecutor(cfg.Retry.MaxRetries, retry.BackoffConfig{
		BaseDelay: cfg.Retry.RetryDelay.Std(),
		Factor:    cfg.Retry.BackoffFactor,
		MaxDelay:  cfg.Retry.MaxRetryDelay.Std(),
	}, log)

	processor := batch.NewProcessor(
		gemini.NewClient(cfg.Model.APIKey, cfg.Model.Name, log),
		pdf.NewConverter(log),
		executor,
		cfg.Model.Prompt,
		log,
	)

	scheduler := batch.NewScheduler(processor, cfg.Batch.MaxConcurrentFiles, log)

	// The bar is sized lazily: only the scheduler knows how many items
	// survive skip/carry-over classification.
	var (
		barMu sync.Mutex
		bar   *ui.ProgressBar
	)
	scheduler.OnProgress(func(s progress.Snapshot) {
		barMu.Lock()
		defer barMu.Unlock()
		if bar == nil {
			bar = ui.NewProgressBar(s.Total, "processing")
		}
		bar.Update(s)
	})

	records, summary := scheduler.Run(ctx, paths, prior)

	barMu.Lock()
	if bar != nil {
		bar.Finish()
	}
	barMu.Unlock()

	for _, rec := range records {
		ui.DisplayRecord(rec)
	}

	if err := ledger.Save(cfg.OutputFile, records); err != nil {
		ui.Errorf("cannot save results: %v", err)
		return err
	}

	ui.DisplaySummary(cfg.OutputFile, summary, len(records))
	return nil
}
