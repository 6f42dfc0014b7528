package docload

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"
)

// ExtractPDF extracts text from each page of a PDF in parallel.
//
// MuPDF is the fast path. The document is opened once for the page count,
// then each page task opens its own handle: MuPDF contexts must not be
// shared across goroutines. A page whose extraction fails contributes an
// empty string for its page number; sibling pages are unaffected, so the
// returned keys are always exactly {1..N}.
//
// When MuPDF cannot open the document at all, extraction falls back to a
// sequential pure-Go reader with the same per-page isolation.
func (l *Loader) ExtractPDF(ctx context.Context, path string, maxWorkers int) (PageTextMap, error) {
	doc, err := fitz.New(path)
	if err != nil {
		l.logger.Warn("mupdf open failed, using fallback reader", "path", path, "error", err)
		return l.extractPDFSlow(ctx, path)
	}
	pageCount := doc.NumPage()
	doc.Close()

	pages := make(PageTextMap, pageCount)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(effectiveWorkers(maxWorkers, pageCount))
	for i := range pageCount {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pageNum, text := extractPDFPage(l.logger, path, i)
			mu.Lock()
			pages[pageNum] = text
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Only context cancellation reaches here; page failures do not.
		return nil, err
	}

	l.logger.Debug("extracted pdf text", "path", path, "pages", len(pages))
	return pages, nil
}

// extractPDFPage renders one page's text through a fresh document handle.
// Returns the 1-indexed page number and the text, empty on failure.
func extractPDFPage(logger *slog.Logger, path string, pageIdx int) (int, string) {
	doc, err := fitz.New(path)
	if err != nil {
		logger.Error("pdf page open failed", "page", pageIdx+1, "error", err)
		return pageIdx + 1, ""
	}
	defer doc.Close()

	text, err := doc.Text(pageIdx)
	if err != nil {
		logger.Error("pdf page text failed", "page", pageIdx+1, "error", err)
		return pageIdx + 1, ""
	}
	return pageIdx + 1, text
}

// extractPDFSlow is the sequential fallback built on a pure-Go PDF reader.
func (l *Loader) extractPDFSlow(ctx context.Context, path string) (PageTextMap, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	pages := make(PageTextMap, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			pages[i] = ""
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			l.logger.Error("pdf page text failed", "page", i, "error", err)
			pages[i] = ""
			continue
		}
		pages[i] = text
	}

	l.logger.Debug("extracted pdf text via fallback reader", "path", path, "pages", len(pages))
	return pages, nil
}
