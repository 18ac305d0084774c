package pdfparser

import (
	"bytes"
	"fmt"
	"strings"

	pdf "github.com/ledongthuc/pdf"

	"github.com/markdave123-py/Lumen/internal/core"
)

var _ core.PDFParser = (*NativeParser)(nil)

// NativeParser reads the embedded text layer with ledongthuc/pdf. Pure Go, no external tools.
type NativeParser struct{}

func NewNativeParser() *NativeParser {
	return &NativeParser{}
}

type nativeDocument struct {
	reader *pdf.Reader
}

// Open parses the cross-reference table. The underlying reader panics on some
// malformed inputs, so panics are converted to errors here.
func (p *NativeParser) Open(data []byte) (doc core.PDFDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &nativeDocument{reader: r}, nil
}

func (d *nativeDocument) NumPages() int {
	return d.reader.NumPage()
}

// PageFragments returns one fragment per visual text row, top to bottom.
func (d *nativeDocument) PageFragments(page int) (frags []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			frags, err = nil, fmt.Errorf("page %d: malformed content stream: %v", page, r)
		}
	}()

	p := d.reader.Page(page)
	if p.V.IsNull() {
		return nil, nil
	}

	rows, err := p.GetTextByRow()
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}

	for _, row := range rows {
		var sb strings.Builder
		for _, t := range row.Content {
			sb.WriteString(t.S)
		}
		if s := strings.TrimSpace(sb.String()); s != "" {
			frags = append(frags, s)
		}
	}
	return frags, nil
}
