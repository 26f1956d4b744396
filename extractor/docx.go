package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const documentPart = "word/document.xml"

var errNoDocumentPart = errors.New("missing " + documentPart)

// extractDOCX returns one line per w:p paragraph of the main document part
func extractDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Format: "DOCX", Err: err}
	}

	var part *zip.File
	for _, f := range archive.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", &ExtractionError{Format: "DOCX", Err: errNoDocumentPart}
	}

	rc, err := part.Open()
	if err != nil {
		return "", &ExtractionError{Format: "DOCX", Err: err}
	}
	defer rc.Close()

	paragraphs, err := readParagraphs(rc)
	if err != nil {
		return "", &ExtractionError{Format: "DOCX", Err: err}
	}
	return strings.Join(paragraphs, "\n"), nil
}

const (
	wordprocessingNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	compatibilityNS  = "http://schemas.openxmlformats.org/markup-compatibility/2006"
)

// paragraph is an open w:p; nested holds the text of paragraphs inside it
// (text boxes), emitted as their own lines after it
type paragraph struct {
	text   strings.Builder
	nested []string
}

// readParagraphs returns body level paragraphs in document order. Paragraphs
// nested in a text box follow the paragraph that anchors them; the
// mc:Fallback copy of alternate content is skipped.
func readParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs []string
		stack      []*paragraph
		inText     bool
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == compatibilityNS && t.Name.Local == "Fallback" {
				if err := decoder.Skip(); err != nil {
					return nil, fmt.Errorf("failed to parse %s: %w", documentPart, err)
				}
				continue
			}
			if t.Name.Space != wordprocessingNS {
				continue
			}
			var top *paragraph
			if len(stack) > 0 {
				top = stack[len(stack)-1]
			}
			switch t.Name.Local {
			case "p":
				stack = append(stack, &paragraph{})
			case "t":
				inText = top != nil
			case "tab":
				if top != nil {
					top.text.WriteString("\t")
				}
			case "br", "cr":
				if top != nil {
					top.text.WriteString("\n")
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordprocessingNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				if len(stack) == 0 {
					continue
				}
				done := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				lines := append([]string{done.text.String()}, done.nested...)
				if len(stack) == 0 {
					paragraphs = append(paragraphs, lines...)
				} else {
					parent := stack[len(stack)-1]
					parent.nested = append(parent.nested, lines...)
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	return paragraphs, nil
}
