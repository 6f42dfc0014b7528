package docload

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Quality captures metrics about PDF text extraction quality. Downstream
// code uses it to decide whether a document needs OCR or a vision model for
// its figures.
type Quality struct {
	PageCount       int     `json:"page_count"`
	CharsPerPage    float64 `json:"chars_per_page"`
	PrintableRatio  float64 `json:"printable_ratio"`
	WordlikeRatio   float64 `json:"wordlike_ratio"`
	HasImageStreams bool    `json:"has_image_streams"`
	VisualRefCount  int     `json:"visual_ref_count"`
}

// NeedsOCR returns true if the PDF likely carries its text as pixels.
func (q *Quality) NeedsOCR() bool {
	return (q.CharsPerPage < 50 && q.HasImageStreams) || q.PrintableRatio < 0.85
}

// HasVisualGap returns true if the text references figures or tables and the
// PDF carries image streams the text extraction cannot see.
func (q *Quality) HasVisualGap() bool {
	return q.VisualRefCount > 0 && q.HasImageStreams
}

// AnalyzePDF extracts the document's text and scores extraction quality.
// The path must point at a local PDF file.
func (l *Loader) AnalyzePDF(ctx context.Context, path string) (*Quality, error) {
	pages, err := l.ExtractPDF(ctx, path, l.cfg.TextWorkers)
	if err != nil {
		return nil, err
	}

	totalChars := 0
	var sb strings.Builder
	for _, text := range pages {
		totalChars += len([]rune(text))
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	fullText := sb.String()

	q := &Quality{
		PageCount:      len(pages),
		PrintableRatio: printableRatio(fullText),
		WordlikeRatio:  wordlikeRatio(fullText),
		VisualRefCount: countVisualRefs(fullText),
	}
	if q.PageCount > 0 {
		q.CharsPerPage = float64(totalChars) / float64(q.PageCount)
	}

	hasImages, err := pdfHasImageStreams(path)
	if err != nil {
		l.logger.Warn("image stream detection failed", "path", path, "error", err)
	}
	q.HasImageStreams = hasImages

	return q, nil
}

// pdfHasImageStreams checks whether the PDF contains image XObjects.
func pdfHasImageStreams(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	pdfCtx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return false, fmt.Errorf("pdfcpu read: %w", err)
	}

	if pdfCtx.Optimize != nil {
		for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
			if len(pdfcpu.ImageObjNrs(pdfCtx, pageNr)) > 0 {
				return true, nil
			}
		}
	}
	// Fallback: scan the xref table for image subtype stream dicts.
	for _, entry := range pdfCtx.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, found := sd.Find("Subtype"); found {
			if name, isName := subtype.(types.Name); isName && name == "Image" {
				return true, nil
			}
		}
	}
	return false, nil
}

// printableRatio returns the ratio of printable characters in text.
// Garbled extractions (CIDFont without ToUnicode) surface as Private Use
// Area runes, control characters and U+FFFD.
func printableRatio(text string) float64 {
	if len(text) == 0 {
		return 1.0
	}
	total, printable := 0, 0
	for _, r := range text {
		total++
		if isGarbageRune(r) {
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(printable) / float64(total)
}

func isGarbageRune(r rune) bool {
	if r >= 0xE000 && r <= 0xF8FF {
		return true
	}
	if r == 0xFFFD {
		return true
	}
	if r < 0x0020 && r != '\n' && r != '\r' && r != '\t' {
		return true
	}
	return false
}

// wordlikeRatio returns the ratio of word-like tokens (2-15 runes) to total
// tokens. Character-by-character extraction produces mostly 1-rune tokens.
func wordlikeRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	wordlike := 0
	for _, f := range fields {
		n := len([]rune(f))
		if n >= 2 && n <= 15 {
			wordlike++
		}
	}
	return float64(wordlike) / float64(len(fields))
}

var visualRefRe = regexp.MustCompile(`(?i)(figure|fig\.?|table|diagram|chart|illustration)\s+\d+`)

// countVisualRefs counts references to figures, tables and diagrams.
func countVisualRefs(text string) int {
	return len(visualRefRe.FindAllString(text, -1))
}
