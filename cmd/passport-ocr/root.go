package main

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "passport-ocr",
	Short: "Batch passport OCR over images and PDFs",
	Long: `passport-ocr runs a folder of passport scans (images and multi-page PDFs)
through the Gemini vision model and writes one structured record per file.
Transient model failures are retried with exponential backoff, and a rerun
picks up where the previous output file left off.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}
