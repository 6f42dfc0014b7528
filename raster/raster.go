// Package raster converts document pages to base64-encoded JPEG images.
//
// PDF pages render through MuPDF with a poppler (pdftoppm) subprocess as the
// fallback. PPTX slides route through an injected PPTX→PDF converter and
// reuse the PDF path. DOCX and plain-text files have no raster path.
package raster

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

const (
	// DefaultDPI is the render resolution.
	DefaultDPI = 200

	// DefaultJPEGQuality is the JPEG compression quality (1-95).
	DefaultJPEGQuality = 85

	// DefaultWorkers bounds parallel bulk rasterization.
	DefaultWorkers = 4
)

// Status tags a render result.
type Status string

const (
	// StatusOK means Data holds a base64 JPEG.
	StatusOK Status = "ok"
	// StatusUnsupported means the format has no raster path (docx, text).
	StatusUnsupported Status = "unsupported"
	// StatusFailed means the format is rasterizable but this page could not
	// be rendered (bad page number, broken file, missing converter).
	StatusFailed Status = "failed"
)

// Result is a tagged render result. Data is empty unless Status is StatusOK,
// so callers can tell "no image possible" from "legitimately empty".
type Result struct {
	Data   string `json:"data"`
	Status Status `json:"status"`
}

// PageImageMap maps 1-indexed page numbers to base64 JPEG payloads.
type PageImageMap map[int]string

// Config configures a Renderer.
type Config struct {
	// DPI is the render resolution in dots per inch.
	DPI int `json:"dpi" yaml:"dpi"`

	// JPEGQuality is the JPEG compression quality, clamped to 1-95.
	JPEGQuality int `json:"jpeg_quality" yaml:"jpeg_quality"`

	// Workers bounds parallel bulk rasterization.
	Workers int `json:"workers" yaml:"workers"`

	// PopplerPath, when set, is the directory holding the pdftoppm binary.
	PopplerPath string `json:"poppler_path" yaml:"poppler_path"`

	// Converter turns PPTX files into intermediate PDFs. Defaults to
	// SofficeConverter, which shells out to LibreOffice or unoconv.
	Converter Converter `json:"-" yaml:"-"`

	// Logger for debug/error messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.DPI <= 0 {
		c.DPI = DefaultDPI
	}
	if c.JPEGQuality <= 0 {
		c.JPEGQuality = DefaultJPEGQuality
	}
	if c.JPEGQuality > 95 {
		c.JPEGQuality = 95
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Converter == nil {
		c.Converter = SofficeConverter{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Renderer rasterizes document pages.
type Renderer struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Renderer with the given configuration.
func New(cfg Config) *Renderer {
	cfg.defaults()
	return &Renderer{cfg: cfg, logger: cfg.Logger}
}

// textFileTypes mirrors the loader's plain-text extension set.
var textFileTypes = map[string]bool{
	"txt": true, "md": true, "markdown": true, "log": true, "rst": true,
}

// ConvertPage converts one 1-indexed page of a document to a base64 JPEG.
// Soft failures (bad page number, missing external converter) come back as
// StatusFailed with no error; only an extension outside the known set is a
// hard error.
func (r *Renderer) ConvertPage(ctx context.Context, path string, pageNum int) (Result, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch {
	case ext == "pdf":
		return r.renderPDFPage(ctx, path, pageNum), nil
	case ext == "docx":
		r.logger.Warn("direct docx to image conversion is not supported; convert to pdf first")
		return Result{Status: StatusUnsupported}, nil
	case ext == "pptx":
		return r.renderPPTXSlide(ctx, path, pageNum), nil
	case textFileTypes[ext]:
		r.logger.Warn("text files cannot be converted to images")
		return Result{Status: StatusUnsupported}, nil
	default:
		return Result{}, fmt.Errorf("unsupported file type for image conversion: %q", ext)
	}
}

var errPageOutOfRange = errors.New("page out of range")

// renderPDFPage tries MuPDF first and falls back to pdftoppm. An
// out-of-range page never reaches the fallback: it would fail there too.
func (r *Renderer) renderPDFPage(ctx context.Context, path string, pageNum int) Result {
	data, err := r.renderFitz(path, pageNum)
	if err == nil {
		return Result{Data: data, Status: StatusOK}
	}
	if errors.Is(err, errPageOutOfRange) {
		r.logger.Error("invalid page number", "path", path, "page", pageNum)
		return Result{Status: StatusFailed}
	}
	r.logger.Warn("mupdf render failed, falling back to pdftoppm", "path", path, "page", pageNum, "error", err)

	data, err = r.renderPoppler(ctx, path, pageNum)
	if err != nil {
		r.logger.Error("pdf page render failed", "path", path, "page", pageNum, "error", err)
		return Result{Status: StatusFailed}
	}
	return Result{Data: data, Status: StatusOK}
}

// renderFitz rasterizes one page through MuPDF at the configured DPI.
func (r *Renderer) renderFitz(path string, pageNum int) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	if pageNum < 1 || pageNum > doc.NumPage() {
		return "", fmt.Errorf("%w: page %d of %d", errPageOutOfRange, pageNum, doc.NumPage())
	}

	img, err := doc.ImageDPI(pageNum-1, float64(r.cfg.DPI))
	if err != nil {
		return "", fmt.Errorf("render page %d: %w", pageNum, err)
	}
	return encodeJPEG(img, r.cfg.JPEGQuality)
}

// renderPPTXSlide converts the presentation to an intermediate PDF in a
// scoped temp directory and reuses the PDF path for the slide. A missing
// converter binary is a soft failure.
func (r *Renderer) renderPPTXSlide(ctx context.Context, path string, slideNum int) Result {
	tmpDir, err := os.MkdirTemp("", "docload-pptx-*")
	if err != nil {
		r.logger.Error("create temp dir failed", "error", err)
		return Result{Status: StatusFailed}
	}
	defer os.RemoveAll(tmpDir)

	pdfPath, err := r.cfg.Converter.ToPDF(ctx, path, tmpDir)
	if err != nil {
		r.logger.Error("pptx to pdf conversion failed", "path", path, "error", err)
		return Result{Status: StatusFailed}
	}
	if _, err := os.Stat(pdfPath); err != nil {
		r.logger.Error("converter produced no pdf", "path", path, "expected", pdfPath)
		return Result{Status: StatusFailed}
	}

	return r.renderPDFPage(ctx, pdfPath, slideNum)
}

// encodeJPEG compresses an image and returns it base64-encoded.
func encodeJPEG(img image.Image, quality int) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
