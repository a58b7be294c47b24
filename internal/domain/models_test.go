package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		path string
		want FileType
	}{
		{"scan.jpg", FileTypeImage},
		{"scan.JPG", FileTypeImage},
		{"scan.jpeg", FileTypeImage},
		{"scan.png", FileTypeImage},
		{"scan.gif", FileTypeImage},
		{"scan.bmp", FileTypeImage},
		{"doc.pdf", FileTypePDF},
		{"doc.PDF", FileTypePDF},
		{"notes.txt", FileTypeUnsupported},
		{"archive.zip", FileTypeUnsupported},
		{"noextension", FileTypeUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFileType(tt.path))
		})
	}
}

func TestWorkItemKeyIsBasename(t *testing.T) {
	a := NewWorkItem("/downloads/run1/scan.jpg")
	b := NewWorkItem("/downloads/run2/scan.jpg")

	assert.Equal(t, "scan.jpg", a.Key())
	assert.Equal(t, a.Key(), b.Key(), "same basename, same logical item")
}

func TestRecordIsError(t *testing.T) {
	assert.False(t, SuccessRecord("/in/a.jpg", OCRData{}).IsError())
	assert.True(t, Record{Filename: "a.jpg", Error: "boom"}.IsError())
}

func TestRecordJSONShape(t *testing.T) {
	rec := SuccessRecord("/in/a.jpg", OCRData{"last_name": "SATO"})

	out, err := json.Marshal(rec)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))

	assert.Equal(t, "a.jpg", m["filename"])
	assert.Equal(t, "/in/a.jpg", m["file_path"])
	assert.Contains(t, m, "ocr_data")
	assert.NotContains(t, m, "error", "success records omit the error field")
	assert.NotContains(t, m, "source_type", "non-document records omit document fields")
	assert.NotContains(t, m, "page_results")
}

func TestErrorRecordJSONShape(t *testing.T) {
	rec := ErrorRecord("/in/a.jpg", assert.AnError)

	out, err := json.Marshal(rec)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))

	assert.Contains(t, m, "error")
	assert.NotContains(t, m, "ocr_data", "error records omit the data field")
}
