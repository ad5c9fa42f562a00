// Package extract turns uploaded documents into plain text for analysis.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
)

// DocxMediaType is the registered media type of Word documents.
const DocxMediaType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ErrUnavailable means no converter is wired in. It is a setup problem, not a
// problem with the uploaded file.
var ErrUnavailable = errors.New("document extractor is unavailable")

type Extractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// IsDocx accepts a file by its .docx extension or by the DOCX media type.
func IsDocx(name, mediaType string) bool {
	if strings.EqualFold(filepath.Ext(strings.TrimSpace(name)), ".docx") {
		return true
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if idx := strings.Index(mediaType, ";"); idx != -1 {
		mediaType = strings.TrimSpace(mediaType[:idx])
	}
	return mediaType == DocxMediaType
}

// Docx extracts the raw text of a .docx file.
type Docx struct {
	convert func(r io.Reader) (string, map[string]string, error)
}

var _ Extractor = (*Docx)(nil)

func NewDocx() *Docx {
	return &Docx{convert: docconv.ConvertDocx}
}

func (d *Docx) ExtractText(ctx context.Context, data []byte) (string, error) {
	if d == nil || d.convert == nil {
		return "", ErrUnavailable
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("docx file is empty")
	}

	text, _, err := d.convert(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("convert docx: %w", err)
	}

	return normalize(text), nil
}

// normalize trims every line and collapses runs of blank lines to one.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}
