// Package export writes the edited CV out as a Word document.
package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/quotedprintable"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hoangphuccoder123/tutorbond/internal/cv"
	"github.com/hoangphuccoder123/tutorbond/internal/extract"
	"github.com/hoangphuccoder123/tutorbond/internal/i18n"
)

// File is an exported document ready to be saved or sent.
type File struct {
	Name      string
	MediaType string
	Data      []byte
}

type Exporter interface {
	Export(ctx context.Context, doc *cv.Document) (*File, error)
}

// Docx packages the rendered HTML as an altChunk inside a minimal .docx, which
// Word converts to native content when the file is opened.
type Docx struct {
	locale i18n.Locale
}

var _ Exporter = (*Docx)(nil)

func NewDocx(locale i18n.Locale) *Docx {
	return &Docx{locale: locale}
}

const (
	chunkPart = "word/afchunk.mht"
	mhtBound  = "----=mhtDocumentPart"
)

var packageParts = []struct {
	name    string
	content string
}{
	{
		name: "[Content_Types].xml",
		content: `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Default Extension="mht" ContentType="message/rfc822"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`,
	},
	{
		name: "_rels/.rels",
		content: `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="/word/document.xml"/>` +
			`</Relationships>`,
	},
	{
		name: "word/document.xml",
		content: `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
			`<w:body><w:altChunk r:id="htmlChunk"/>` +
			`<w:sectPr><w:pgSz w:w="11906" w:h="16838" w:orient="portrait"/>` +
			`<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="720" w:footer="720" w:gutter="0"/></w:sectPr>` +
			`</w:body></w:document>`,
	},
	{
		name: "word/_rels/document.xml.rels",
		content: `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="htmlChunk" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/aFChunk" Target="/word/afchunk.mht"/>` +
			`</Relationships>`,
	},
}

func (d *Docx) Export(ctx context.Context, doc *cv.Document) (*File, error) {
	if doc == nil {
		return nil, errors.New("document is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	html, err := HTML(doc, d.locale)
	if err != nil {
		return nil, err
	}

	mht, err := mhtDocument(html)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range packageParts {
		if err := writePart(zw, part.name, []byte(part.content)); err != nil {
			return nil, err
		}
	}
	if err := writePart(zw, chunkPart, mht); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close docx archive: %w", err)
	}

	return &File{
		Name:      Filename(doc.FullName),
		MediaType: extract.DocxMediaType,
		Data:      buf.Bytes(),
	}, nil
}

func writePart(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create docx part %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write docx part %s: %w", name, err)
	}
	return nil
}

func mhtDocument(html string) ([]byte, error) {
	var body bytes.Buffer
	qp := quotedprintable.NewWriter(&body)
	if _, err := qp.Write([]byte(html)); err != nil {
		return nil, fmt.Errorf("encode html chunk: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("encode html chunk: %w", err)
	}

	var out bytes.Buffer
	out.WriteString("MIME-Version: 1.0\r\n")
	out.WriteString("Content-Type: multipart/related;\r\n\ttype=\"text/html\";\r\n\tboundary=\"" + mhtBound + "\"\r\n\r\n")
	out.WriteString("--" + mhtBound + "\r\n")
	out.WriteString("Content-Type: text/html;\r\n\tcharset=\"utf-8\"\r\n")
	out.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	out.WriteString("Content-Location: file:///C:/fake/document.html\r\n\r\n")
	out.Write(body.Bytes())
	out.WriteString("\r\n\r\n--" + mhtBound + "--\r\n")
	return out.Bytes(), nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_\- ]`)

// Filename derives "<name>.docx" from the candidate's name, keeping ASCII
// letters, digits, underscore, hyphen and space. It falls back to "CV".
func Filename(fullName string) string {
	name := strings.TrimSpace(unsafeFilenameChars.ReplaceAllString(fullName, ""))
	if name == "" {
		name = "CV"
	}
	return name + ".docx"
}

// WriteFile saves f into dir, creating dir when needed, and returns the path.
func WriteFile(dir string, f *File) (string, error) {
	if f == nil {
		return "", errors.New("file is required")
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, f.Name)
	if err := os.WriteFile(path, f.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
