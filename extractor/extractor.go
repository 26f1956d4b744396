// Package extractor recovers plain text from uploaded documents.
package extractor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedFormat is returned for extensions outside the dispatch table
var ErrUnsupportedFormat = errors.New("Unsupported file format")

var errInvalidUTF8 = errors.New("file is not valid UTF-8 text")

// ExtractionError reports a document that could not be read in its declared format
type ExtractionError struct {
	Format string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("Error extracting text from %s: %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extractor dispatches on file extension
type Extractor struct{}

// New creates a new extractor
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the text of data, interpreting it by the extension of filename
func (x *Extractor) Extract(filename string, data []byte) (string, error) {
	return Extract(filename, data)
}

// Extract returns the text of data, interpreting it by the extension of filename
func Extract(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDOCX(data)
	case ".txt":
		return extractTXT(data)
	default:
		return "", ErrUnsupportedFormat
	}
}

// ExtractFile reads path and extracts its text
func ExtractFile(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".docx", ".txt":
	default:
		return "", ErrUnsupportedFormat
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Extract(path, data)
}

func extractTXT(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", &ExtractionError{Format: "TXT", Err: errInvalidUTF8}
	}
	return string(data), nil
}
