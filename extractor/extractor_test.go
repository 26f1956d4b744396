package extractor

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF writes a minimal single-page PDF whose content stream shows text
func buildPDF(t *testing.T, text string) []byte {
	t.Helper()

	stream := fmt.Sprintf("BT /F1 24 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// buildDOCX writes a zip holding only the main document part
func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func TestExtract_PDF(t *testing.T) {
	text, err := Extract("hello.pdf", buildPDF(t, "Hello World"))
	require.NoError(t, err)
	assert.Contains(t, text, "Hello World")
}

func TestExtract_PDFMalformed(t *testing.T) {
	_, err := Extract("broken.pdf", []byte("this is not a pdf"))
	require.Error(t, err)

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, "PDF", extractionErr.Format)
	assert.Contains(t, err.Error(), "Error extracting text from PDF: ")
}

func TestExtract_DOCX(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document ` + wordNS + `><w:body>
<w:p><w:r><w:t>Tenant shall pay </w:t></w:r><w:r><w:t>rent monthly.</w:t></w:r></w:p>
<w:p><w:r><w:t>Late</w:t><w:tab/><w:t>fees apply.</w:t></w:r></w:p>
<w:p/>
<w:p><w:r><w:t>Signed.</w:t></w:r></w:p>
</w:body></w:document>`

	text, err := Extract("lease.DOCX", buildDOCX(t, doc))
	require.NoError(t, err)
	assert.Equal(t, "Tenant shall pay rent monthly.\nLate\tfees apply.\n\nSigned.", text)
}

func TestExtract_DOCXTextBox(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document ` + wordNS + ` xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006" xmlns:wps="http://schemas.microsoft.com/office/word/2010/wordprocessingShape" xmlns:v="urn:schemas-microsoft-com:vml"><w:body>
<w:p>
  <w:r><w:t xml:space="preserve">Before </w:t></w:r>
  <w:r><mc:AlternateContent>
    <mc:Choice Requires="wps"><w:drawing><wps:txbx><w:txbxContent>
      <w:p><w:r><w:t>Box</w:t></w:r></w:p>
    </w:txbxContent></wps:txbx></w:drawing></mc:Choice>
    <mc:Fallback><w:pict><v:shape><v:textbox><w:txbxContent>
      <w:p><w:r><w:t>Box</w:t></w:r></w:p>
    </w:txbxContent></v:textbox></v:shape></w:pict></mc:Fallback>
  </mc:AlternateContent></w:r>
  <w:r><w:t>after.</w:t></w:r>
</w:p>
<w:p><w:r><w:t>Next paragraph.</w:t></w:r></w:p>
</w:body></w:document>`

	text, err := Extract("flyer.docx", buildDOCX(t, doc))
	require.NoError(t, err)
	assert.Equal(t, "Before after.\nBox\nNext paragraph.", text)
}

func TestExtract_DOCXIgnoresForeignNamespaces(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document ` + wordNS + ` xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"><w:body>
<w:p><w:r><w:t>Clause one.</w:t></w:r><w:r><a:p><a:t>drawing label</a:t></a:p></w:r></w:p>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Cell text.</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
</w:body></w:document>`

	text, err := Extract("table.docx", buildDOCX(t, doc))
	require.NoError(t, err)
	assert.Equal(t, "Clause one.\nCell text.", text)
}

func TestExtract_DOCXNotAZip(t *testing.T) {
	_, err := Extract("lease.docx", []byte("plain bytes"))

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, "DOCX", extractionErr.Format)
}

func TestExtract_DOCXMissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Extract("lease.docx", buf.Bytes())
	assert.ErrorIs(t, err, errNoDocumentPart)
}

func TestExtract_TXT(t *testing.T) {
	text, err := Extract("clause.txt", []byte("Sample clause."))
	require.NoError(t, err)
	assert.Equal(t, "Sample clause.", text)
}

func TestExtract_TXTKeepsContentVerbatim(t *testing.T) {
	text, err := Extract("clause.txt", []byte("Line one\n  Line two\n"))
	require.NoError(t, err)
	assert.Equal(t, "Line one\n  Line two\n", text)
}

func TestExtract_TXTInvalidUTF8(t *testing.T) {
	_, err := Extract("clause.txt", []byte{0xff, 0xfe, 0x00})
	assert.EqualError(t, err, "Error extracting text from TXT: file is not valid UTF-8 text")
}

func TestExtract_Unsupported(t *testing.T) {
	_, err := Extract("table.csv", []byte("a,b"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.EqualError(t, err, "Unsupported file format")
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "clause.txt")
	require.NoError(t, os.WriteFile(path, []byte("Sample clause."), 0644))
	text, err := ExtractFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Sample clause.", text)

	_, err = ExtractFile(filepath.Join(dir, "table.csv"))
	assert.EqualError(t, err, "Unsupported file format")

	_, err = ExtractFile(filepath.Join(dir, "missing.pdf"))
	assert.ErrorContains(t, err, "failed to read")
}
