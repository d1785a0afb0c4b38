package ingest

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "docqa/internal/pkg/errors"
)

func TestExtractTextPlain(t *testing.T) {
	got, err := ExtractText("notes.txt", []byte("plain content"))
	require.NoError(t, err)
	require.Equal(t, "plain content", got)
}

func TestExtractTextRejectsBinaryAsText(t *testing.T) {
	_, err := ExtractText("notes.txt", []byte{0xff, 0xfe, 0xfd})
	require.Error(t, err)
	require.True(t, errors.Is(err, appErr.ErrInvalid))
}

func TestExtractTextMarkdown(t *testing.T) {
	src := "# Title\n\nSome paragraph text.\n\n```go\nfmt.Println(1)\n```\n\n## Section\n\nMore text here.\n"
	got, err := ExtractText("doc.md", []byte(src))
	require.NoError(t, err)
	require.Contains(t, got, "Heading: Title")
	require.Contains(t, got, "Heading: Section")
	require.Contains(t, got, "Some paragraph text.")
	require.Contains(t, got, "fmt.Println(1)")
	require.NotContains(t, got, "```")
	require.NotContains(t, got, "# Title")
}

func TestExtractTextDocx(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Hello world</w:t></w:r></w:p>
<w:p><w:r><w:t>Second line</w:t></w:r></w:p>
</w:body>
</w:document>`
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	got, err := ExtractText("report.docx", buf.Bytes())
	require.NoError(t, err)
	require.Contains(t, got, "Hello world")
	require.Contains(t, got, "Second line")
}

func TestExtractTextDocxWithoutBody(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/other.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = ExtractText("report.docx", buf.Bytes())
	require.Error(t, err)
	require.True(t, errors.Is(err, appErr.ErrInvalid))
}

func TestExtractTextCorruptPDF(t *testing.T) {
	_, err := ExtractText("paper.pdf", []byte("not a pdf"))
	require.Error(t, err)
	require.True(t, errors.Is(err, appErr.ErrInvalid))
}

func TestExtractTextUnknownExtension(t *testing.T) {
	_, err := ExtractText("data.bin", []byte("x"))
	require.Error(t, err)
	require.True(t, errors.Is(err, appErr.ErrInvalid))
}
