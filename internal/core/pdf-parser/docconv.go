package pdfparser

import (
	"bytes"
	"fmt"
	"strings"

	"code.sajari.com/docconv"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/markdave123-py/Lumen/internal/core"
)

var _ core.PDFParser = (*DocconvParser)(nil)

// pageBreak is the form feed pdftotext emits between pages.
const pageBreak = "\f"

// DocconvParser validates and counts pages with pdfcpu, then converts the whole
// document through docconv (pdftotext). Requires poppler-utils on the host.
type DocconvParser struct {
	convert func(data []byte) (string, error)
}

func NewDocconvParser() *DocconvParser {
	return &DocconvParser{convert: convertWithDocconv}
}

func convertWithDocconv(data []byte) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(data), "application/pdf", false)
	if err != nil {
		return "", err
	}
	return res.Body, nil
}

type docconvDocument struct {
	pages []string
	count int
}

func (p *DocconvParser) Open(data []byte) (core.PDFDocument, error) {
	count, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	body, err := p.convert(data)
	if err != nil {
		return nil, fmt.Errorf("docconv: %w", err)
	}

	return &docconvDocument{pages: splitPages(body), count: count}, nil
}

func (d *docconvDocument) NumPages() int { return d.count }

func (d *docconvDocument) PageFragments(page int) ([]string, error) {
	if page < 1 || page > d.count {
		return nil, fmt.Errorf("page %d out of range (1-%d)", page, d.count)
	}
	if page > len(d.pages) {
		return nil, nil
	}
	var frags []string
	for _, line := range strings.Split(d.pages[page-1], "\n") {
		if line = strings.TrimSpace(line); line != "" {
			frags = append(frags, line)
		}
	}
	return frags, nil
}

// splitPages splits converter output on form feeds; a trailing feed does not start a new page.
func splitPages(body string) []string {
	body = strings.TrimSuffix(body, pageBreak)
	if body == "" {
		return nil
	}
	return strings.Split(body, pageBreak)
}
