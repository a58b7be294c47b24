package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkb3711220/passport-ocr/internal/domain"
)

func TestValidatePDFPath(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4"), 0o644))
	txtPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0o644))

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "valid pdf", path: pdfPath},
		{name: "empty path", path: "  ", wantErr: "cannot be empty"},
		{name: "missing file", path: filepath.Join(dir, "nope.pdf"), wantErr: "does not exist"},
		{name: "directory", path: dir, wantErr: "directory"},
		{name: "wrong extension", path: txtPath, wantErr: "not a PDF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePDFPath(tt.path)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var derr *domain.DomainError
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, domain.ErrorTypeValidation, derr.Type)
		})
	}
}

func TestConvertInvalidPathKeepsCleanupSafe(t *testing.T) {
	c := NewConverter(zerolog.Nop())

	pages, cleanup, err := c.Convert(context.Background(), "/nope/missing.pdf")

	require.Error(t, err)
	assert.Nil(t, pages)
	require.NotNil(t, cleanup, "cleanup must be callable on every return path")
	cleanup()
}
