package docload

import (
	"context"
	"testing"
)

func TestPrintableRatio_Normal(t *testing.T) {
	ratio := printableRatio("This is a normal sentence with standard characters.")
	if ratio < 0.95 {
		t.Errorf("printable ratio = %f, want > 0.95", ratio)
	}
}

func TestPrintableRatio_Garbage(t *testing.T) {
	// WHAT: PUA and control chars produce a low printable ratio.
	// WHY: detects garbled extraction from CIDFonts without ToUnicode.
	garbage := "abcdefghi\x01\x02\x03\x04\x05"
	ratio := printableRatio(garbage)
	if ratio >= 0.85 {
		t.Errorf("printable ratio = %f, want < 0.85", ratio)
	}
}

func TestWordlikeRatio(t *testing.T) {
	if ratio := wordlikeRatio("This is a normal sentence with standard words inside"); ratio < 0.70 {
		t.Errorf("wordlike ratio = %f, want > 0.70", ratio)
	}
	// Character-by-character extraction produces mostly 1-rune tokens.
	if ratio := wordlikeRatio("a b c d e f g h i j k l"); ratio >= 0.40 {
		t.Errorf("wordlike ratio = %f, want < 0.40", ratio)
	}
}

func TestCountVisualRefs(t *testing.T) {
	text := "As shown in Figure 3, throughput rises. See Table 12 for details. No other refs."
	if got := countVisualRefs(text); got != 2 {
		t.Errorf("countVisualRefs = %d, want 2", got)
	}
}

func TestQualityNeedsOCR(t *testing.T) {
	q := &Quality{CharsPerPage: 10, HasImageStreams: true, PrintableRatio: 0.99}
	if !q.NeedsOCR() {
		t.Error("near-empty pages with image streams should need OCR")
	}
	q = &Quality{CharsPerPage: 2000, HasImageStreams: false, PrintableRatio: 0.99}
	if q.NeedsOCR() {
		t.Error("dense printable text should not need OCR")
	}
	q = &Quality{CharsPerPage: 2000, PrintableRatio: 0.50}
	if !q.NeedsOCR() {
		t.Error("mostly unprintable text should need OCR")
	}
}

func TestAnalyzePDF(t *testing.T) {
	path := writePDF(t, "The first page has some words on it", "And the second page does too")

	loader := New(Config{})
	q, err := loader.AnalyzePDF(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if q.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", q.PageCount)
	}
	if q.CharsPerPage <= 0 {
		t.Errorf("CharsPerPage = %f, want > 0", q.CharsPerPage)
	}
	if q.PrintableRatio < 0.9 {
		t.Errorf("PrintableRatio = %f, want >= 0.9", q.PrintableRatio)
	}
	if q.HasImageStreams {
		t.Error("text-only fixture should have no image streams")
	}
	if q.NeedsOCR() {
		t.Error("clean text PDF should not need OCR")
	}
}
