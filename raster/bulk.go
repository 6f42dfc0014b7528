package raster

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gen2brain/go-fitz"
	"golang.org/x/sync/errgroup"
)

// ConvertDocument converts every page of a document to a base64 JPEG.
//
// Bulk conversion is fully supported only for PDF. The parallel MuPDF path
// runs first; any setup error there falls back to a sequential pdftoppm run
// over the whole document. Pages that fail to render are omitted from the
// map. Other formats log a warning and return an empty map: callers must
// request per-page conversion instead.
func (r *Renderer) ConvertDocument(ctx context.Context, path string) (PageImageMap, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext != "pdf" {
		r.logger.Warn("bulk conversion only implemented for pdf", "ext", ext)
		return PageImageMap{}, nil
	}

	pages, err := r.convertPDFParallel(ctx, path)
	if err != nil {
		r.logger.Warn("parallel rasterization failed, falling back to pdftoppm", "path", path, "error", err)
		pages, err = r.runPdftoppm(ctx, path, 0, 0)
		if err != nil {
			// Bulk conversion never raises: both paths failing yields an
			// empty map, as with unsupported formats.
			r.logger.Error("bulk rasterization failed", "path", path, "error", err)
			return PageImageMap{}, nil
		}
	}
	return pages, nil
}

// convertPDFParallel fans page rendering out over a fixed set of workers.
// Rendering is CPU-bound native work, so each worker owns one MuPDF document
// handle for its lifetime instead of reopening per page.
func (r *Renderer) convertPDFParallel(ctx context.Context, path string) (PageImageMap, error) {
	probe, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	pageCount := probe.NumPage()
	probe.Close()

	workers := min(r.cfg.Workers, max(1, pageCount))
	jobs := make(chan int)
	pages := make(PageImageMap, pageCount)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := range pageCount {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	for range workers {
		g.Go(func() error {
			doc, err := fitz.New(path)
			if err != nil {
				return fmt.Errorf("open pdf: %w", err)
			}
			defer doc.Close()

			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					return err
				}
				img, err := doc.ImageDPI(idx, float64(r.cfg.DPI))
				if err != nil {
					r.logger.Error("page render failed", "page", idx+1, "error", err)
					continue
				}
				data, err := encodeJPEG(img, r.cfg.JPEGQuality)
				if err != nil {
					r.logger.Error("page encode failed", "page", idx+1, "error", err)
					continue
				}
				mu.Lock()
				pages[idx+1] = data
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Debug("rasterized pdf", "path", path, "pages", len(pages), "workers", workers)
	return pages, nil
}
