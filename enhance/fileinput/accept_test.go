package fileinput

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAccept(t *testing.T) {
	assert.Nil(t, ParseAccept(""))
	assert.Equal(t, []string{".pdf"}, ParseAccept(".pdf"))
	assert.Equal(t, []string{".pdf", "image/*", "text/plain"}, ParseAccept(" .pdf, image/* ,text/plain,,"))
}

func TestPatternMatches(t *testing.T) {
	tests := []struct {
		pattern  string
		fileName string
		mimeType string
		want     bool
	}{
		// Filename substring, case-insensitive.
		{".pdf", "report.pdf", "application/pdf", true},
		{".PDF", "report.pdf", "", true},
		{".pdf", "Report.PDF", "", true},
		{".pdf", "virus.exe", "application/octet-stream", false},
		{"report", "report.pdf", "", true},

		// Exact MIME type.
		{"image/png", "photo", "image/png", true},
		{"image/png", "photo", "image/jpeg", false},

		// Wildcard subtype.
		{"image/*", "photo", "image/png", true},
		{"image/*", "photo", "IMAGE/JPEG", true},
		{"image/*", "clip", "video/mp4", false},

		// Malformed patterns match nothing.
		{"", "anything", "text/plain", false},
		{"/png", "photo", "image/png", false},
		{"image/", "photo", "image/png", false},
	}
	for _, tc := range tests {
		got := patternMatches(tc.pattern, tc.fileName, tc.mimeType)
		assert.Equal(t, tc.want, got, "pattern=%q name=%q mime=%q", tc.pattern, tc.fileName, tc.mimeType)
	}
}

func TestFileAccepted(t *testing.T) {
	patterns := []string{".pdf", "image/*"}

	assert.True(t, fileAccepted(patterns, "scan.pdf", "application/pdf"))
	assert.True(t, fileAccepted(patterns, "photo.raw", "image/x-raw"))
	assert.False(t, fileAccepted(patterns, "virus.exe", "application/octet-stream"))
	assert.False(t, fileAccepted(nil, "anything", "text/plain"))
}

func TestFallbackClass(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"report.pdf", PDFPreviewClass},
		{"letter.docx", WordPreviewClass},
		{"notes.pages", WordPreviewClass},
		{"sheet.xlsx", ExcelPreviewClass},
		{"budget.numbers", ExcelPreviewClass},
		{"clip.mov", VideoPreviewClass},
		{"clip.MP4", VideoPreviewClass},
		{"archive.zip", GenericPreviewClass},
		{"noextension", GenericPreviewClass},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, fallbackClass(tc.name), "file %q", tc.name)
	}
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "You have selected the file: a.txt", selectedStatusText([]string{"a.txt"}))
	assert.Equal(t, "You have selected 2 files: a.txt, b.txt", selectedStatusText([]string{"a.txt", "b.txt"}))

	assert.Equal(t, "No file selected.", defaultStatusText(false))
	assert.Equal(t, "No files selected.", defaultStatusText(true))

	assert.Equal(t, "Selected file", headingText(1))
	assert.Equal(t, "3 files selected", headingText(3))

	assert.Equal(t, "Change file", changeLabel(false))
	assert.Equal(t, "Change files", changeLabel(true))
}
