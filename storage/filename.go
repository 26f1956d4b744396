package storage

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// AllowedExtensions lists the upload formats the extractor understands
var AllowedExtensions = map[string]bool{
	"pdf":  true,
	"docx": true,
	"txt":  true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// AllowedFile reports whether the text after the last "." is an allowed extension.
// Only the name is checked, never the content.
func AllowedFile(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	return AllowedExtensions[strings.ToLower(filename[idx+1:])]
}

// Extension returns the lower-cased extension of filename without the dot
func Extension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

// SecureFilename reduces a client supplied filename to a flat ASCII name that
// cannot address anything outside the storage root.
func SecureFilename(filename string) string {
	decomposed := norm.NFKD.String(filename)

	var ascii strings.Builder
	for _, r := range decomposed {
		if r < 0x80 {
			ascii.WriteRune(r)
		}
	}

	name := strings.NewReplacer("/", " ", "\\", " ").Replace(ascii.String())
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}
