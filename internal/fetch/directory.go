// Package fetch lists the input files for a batch run.
package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/hkb3711220/passport-ocr/internal/domain"
)

// DirectoryFetcher implements domain.Fetcher over a local directory. It
// returns every regular file in the directory (non-recursive); deciding what
// is processable is the scheduler's job, not the fetcher's.
type DirectoryFetcher struct {
	dir string
	log zerolog.Logger
}

// NewDirectoryFetcher creates a fetcher for the given directory.
func NewDirectoryFetcher(dir string, log zerolog.Logger) *DirectoryFetcher {
	return &DirectoryFetcher{dir: dir, log: log}
}

// FetchAll returns the sorted paths of every regular file in the directory.
func (f *DirectoryFetcher) FetchAll(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, domain.IOError(fmt.Sprintf("cannot list input directory %s", f.dir), err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		paths = append(paths, filepath.Join(f.dir, entry.Name()))
	}
	sort.Strings(paths)

	f.log.Info().Str("dir", f.dir).Int("files", len(paths)).Msg("listed input files")
	return paths, nil
}
