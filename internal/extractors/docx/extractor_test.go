package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/intrafact/internal/core/domain"
)

// createTestDOCX creates a minimal valid DOCX file in memory.
func createTestDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))
	require.NoError(t, err)

	if documentXML != "" {
		doc, err := w.Create("word/document.xml")
		require.NoError(t, err)
		_, err = doc.Write([]byte(documentXML))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func wrapBody(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`
}

func TestSupportedTypes(t *testing.T) {
	assert.Equal(t, []string{"docx"}, New().SupportedTypes())
}

func TestExtract_Paragraphs(t *testing.T) {
	doc := wrapBody(`<w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t xml:space="preserve">Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>`)

	text, err := New().Extract(context.Background(), createTestDOCX(t, doc))

	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", text)
}

func TestExtract_Table(t *testing.T) {
	doc := wrapBody(`<w:tbl><w:tr>` +
		`<w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc>` +
		`<w:tc><w:p><w:r><w:t>Days</w:t></w:r></w:p></w:tc>` +
		`</w:tr></w:tbl>`)

	text, err := New().Extract(context.Background(), createTestDOCX(t, doc))

	require.NoError(t, err)
	assert.Equal(t, "Name \tDays", text)
}

func TestExtract_SkipsEmptyParagraphs(t *testing.T) {
	doc := wrapBody(`<w:p></w:p><w:p><w:r><w:t>Only line</w:t></w:r></w:p><w:p/>`)

	text, err := New().Extract(context.Background(), createTestDOCX(t, doc))

	require.NoError(t, err)
	assert.Equal(t, "Only line", text)
}

func TestExtract_EmptyBody(t *testing.T) {
	text, err := New().Extract(context.Background(), createTestDOCX(t, wrapBody("")))

	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtract_InvalidZip(t *testing.T) {
	_, err := New().Extract(context.Background(), []byte("not a zip archive"))

	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_MissingDocumentPart(t *testing.T) {
	_, err := New().Extract(context.Background(), createTestDOCX(t, ""))

	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_MalformedXML(t *testing.T) {
	_, err := New().Extract(context.Background(), createTestDOCX(t, "<w:document><w:body>"))

	assert.ErrorIs(t, err, domain.ErrExtraction)
}
