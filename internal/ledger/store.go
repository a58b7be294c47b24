// Package ledger persists batch outcomes and rebuilds resume state from the
// previous run's output file.
package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/hkb3711220/passport-ocr/internal/domain"
)

// Status classifies an item against the ledger.
type Status int

const (
	// NeedsRetry covers both never-seen items and items whose previous run
	// ended in an error record.
	NeedsRetry Status = iota
	// Done means a prior run produced a clean record for the item.
	Done
)

// Ledger maps item keys (base filenames) to their prior outcome.
type Ledger map[string]domain.Record

// Load rebuilds the ledger from a previous output file. The file is
// best-effort resume state, not a source of truth: a missing or unparsable
// file yields an empty ledger and a warning, never an error.
func Load(path string, log zerolog.Logger) Ledger {
	l := make(Ledger)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Str("path", path).Err(err).Msg("cannot read previous results, starting fresh")
		}
		return l
	}

	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		log.Warn().Str("path", path).Err(err).Msg("previous results are malformed, starting fresh")
		return l
	}

	for _, r := range records {
		l[r.Filename] = r
	}

	log.Info().Str("path", path).Int("entries", len(l)).Msg("loaded previous results")
	return l
}

// Classify reports whether the keyed item can be skipped.
func (l Ledger) Classify(key string) Status {
	r, ok := l[key]
	if ok && !r.IsError() {
		return Done
	}
	return NeedsRetry
}

// Merge folds new records into the ledger, replacing prior entries with the
// same key.
func (l Ledger) Merge(records []domain.Record) {
	for _, r := range records {
		l[r.Filename] = r
	}
}

// Save writes the records to path as a JSON array. Element order carries no
// meaning; the next run keys entries by their filename field.
func Save(path string, records []domain.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return domain.IOError("cannot encode results", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.IOError("cannot create output directory", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return domain.IOError("cannot write results file", err)
	}
	return nil
}
