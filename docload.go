package docload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ExtractFunc extracts a page map from a locally staged document.
type ExtractFunc func(ctx context.Context, path string, maxWorkers int) (PageTextMap, error)

// Loader routes documents to format-specific extractors. The extractor
// registry is owned by the instance; substitute extractors can be injected
// with WithExtractor.
type Loader struct {
	cfg        Config
	logger     *slog.Logger
	fs         FileSystem
	extractors map[string]ExtractFunc
}

// Option configures a Loader beyond its Config.
type Option func(*Loader)

// WithExtractor registers fn for the given extension, replacing any default.
func WithExtractor(ext string, fn ExtractFunc) Option {
	return func(l *Loader) {
		l.extractors[strings.ToLower(ext)] = fn
	}
}

// New creates a Loader with the default extractor registry.
func New(cfg Config, opts ...Option) *Loader {
	cfg.defaults()
	l := &Loader{
		cfg:    cfg,
		logger: cfg.Logger,
		fs:     cfg.FS,
	}
	l.extractors = map[string]ExtractFunc{
		"pdf":  l.ExtractPDF,
		"docx": l.ExtractDOCX,
		"pptx": l.ExtractPPTX,
	}
	for _, ext := range textFileTypes {
		l.extractors[ext] = l.ExtractTXT
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Detect returns the routing format for a path based on its extension.
func (l *Loader) Detect(path string) (Format, error) {
	ext := extOf(path)
	switch ext {
	case "pdf":
		return FormatPDF, nil
	case "docx":
		return FormatDocx, nil
	case "pptx":
		return FormatPPTX, nil
	case "doc":
		return FormatDoc, nil
	case "ppt":
		return FormatPPT, nil
	}
	if slices.Contains(textFileTypes, ext) {
		return FormatTXT, nil
	}
	return "", &UnsupportedTypeError{Ext: ext}
}

// ConvertToText extracts per-page text from a document, auto-detecting the
// file type. The document is staged from the file system gateway into a
// temporary directory that is removed on every exit path.
//
// Page maps from the PDF extractor may contain empty strings for pages that
// failed individually; the DOCX, PPTX and plain-text extractors are
// all-or-nothing and propagate whole-document failures.
func (l *Loader) ConvertToText(ctx context.Context, path string) (PageTextMap, error) {
	ok, err := l.fs.Exists(path)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	ext := extOf(path)
	if !slices.Contains(supportedFileTypes, ext) {
		return nil, &UnsupportedTypeError{Ext: ext}
	}
	extract, ok := l.extractors[ext]
	if !ok {
		return nil, &NoExtractorError{Ext: ext}
	}

	l.logger.Debug("extracting document", "path", path, "format", ext)

	// Stage through the gateway so extraction always reads local bytes.
	tmpDir, err := os.MkdirTemp("", "docload-*")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	local := filepath.Join(tmpDir, filepath.Base(path))
	if err := l.fs.Get(path, local); err != nil {
		return nil, fmt.Errorf("stage %s: %w", path, err)
	}

	info, err := os.Stat(local)
	if err != nil {
		return nil, fmt.Errorf("stat staged file: %w", err)
	}
	if info.Size() > l.cfg.MaxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), l.cfg.MaxFileSize)
	}

	return extract(ctx, local, l.cfg.TextWorkers)
}

// extOf returns the lowercased extension without the leading dot.
func extOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// effectiveWorkers bounds the pool: never more workers than pages, never
// fewer than one.
func effectiveWorkers(requested, pages int) int {
	w := min(requested, max(1, pages))
	if w < 1 {
		w = 1
	}
	return w
}
