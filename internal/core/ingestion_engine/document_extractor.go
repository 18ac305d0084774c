package ingestion_engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/Lumen/internal/core"
)

var _ core.TextExtractor = (*StructuredExtractor)(nil)

// StructuredExtractor pulls the embedded text layer out of a PDF, page by page.
type StructuredExtractor struct {
	parser core.PDFParser
	logger *slog.Logger
}

func NewStructuredExtractor(parser core.PDFParser, logger *slog.Logger) *StructuredExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &StructuredExtractor{parser: parser, logger: logger}
}

type pageText struct {
	num  int
	text string
}

// Extract streams pages in order: fragments of a page are joined with a space
// and every page is terminated by a newline. A page that fails to read is
// logged and contributes an empty line. Whitespace-only output becomes "".
func (e *StructuredExtractor) Extract(ctx context.Context, data []byte, onProgress core.ProgressFunc) (string, error) {
	doc, err := e.parser.Open(data)
	if err != nil {
		return "", core.NewExtractionError("could not open document", err)
	}

	n := doc.NumPages()
	if n <= 0 {
		report(onProgress, 100)
		return "", nil
	}

	g, gctx := errgroup.WithContext(ctx)
	pages := make(chan pageText, 4)

	g.Go(func() error {
		defer close(pages)
		for i := 1; i <= n; i++ {
			frags, err := readPage(doc, i)
			if err != nil {
				e.logger.Warn("structured extraction: page unreadable", "page", i, "error", err)
				frags = nil
			}
			select {
			case pages <- pageText{num: i, text: strings.Join(frags, " ")}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var sb strings.Builder
	g.Go(func() error {
		for p := range pages {
			sb.WriteString(p.text)
			sb.WriteByte('\n')
			report(onProgress, p.num*100/n)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return "", core.NewExtractionError("extraction interrupted", err)
	}

	return normalizeText(sb.String()), nil
}

// readPage runs off the chain goroutine, so a panicking document is turned
// into a page error here.
func readPage(doc core.PDFDocument, page int) (frags []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			frags, err = nil, fmt.Errorf("page %d: %v", page, r)
		}
	}()
	return doc.PageFragments(page)
}

func report(fn core.ProgressFunc, percent int) {
	if fn != nil {
		fn(percent)
	}
}

// normalizeText maps whitespace-only output to "" so empty-text handling is uniform.
func normalizeText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}
