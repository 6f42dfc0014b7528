package docload

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writePDF assembles a minimal valid PDF with one Helvetica text line per
// page, computing the xref table from real object offsets.
func writePDF(t *testing.T, pageTexts ...string) string {
	t.Helper()

	n := len(pageTexts)
	var kids []string
	for i := 0; i < n; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", 4+i))
	}

	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}
	for i := 0; i < n; i++ {
		objs = append(objs, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			4+n+i))
	}
	for _, text := range pageTexts {
		content := fmt.Sprintf("BT /F1 24 Tf 72 720 Td (%s) Tj ET", text)
		objs = append(objs, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs)+1)
	for i, obj := range objs {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for i := 1; i <= len(objs); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)

	path := filepath.Join(t.TempDir(), "test.pdf")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractPDF_AllPagesPresent(t *testing.T) {
	path := writePDF(t, "Hello", "World", "Again")

	loader := New(Config{})
	pages, err := loader.ExtractPDF(context.Background(), path, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(pages))
	}
	for n := 1; n <= 3; n++ {
		if _, ok := pages[n]; !ok {
			t.Errorf("page %d missing from map", n)
		}
	}
	if !strings.Contains(pages[1], "Hello") {
		t.Errorf("page 1 = %q, want to contain Hello", pages[1])
	}
	if !strings.Contains(pages[2], "World") {
		t.Errorf("page 2 = %q, want to contain World", pages[2])
	}
}

func TestExtractPDF_WorkerCountInvariance(t *testing.T) {
	// WHAT: results match regardless of worker count, including
	// max_workers > page_count.
	// WHY: the page map key carries position; completion order must not.
	path := writePDF(t, "Alpha", "Beta")

	loader := New(Config{})
	baseline, err := loader.ExtractPDF(context.Background(), path, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, workers := range []int{2, 8, 100} {
		pages, err := loader.ExtractPDF(context.Background(), path, workers)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if len(pages) != len(baseline) {
			t.Fatalf("workers=%d: got %d pages, want %d", workers, len(pages), len(baseline))
		}
		for n, text := range baseline {
			if pages[n] != text {
				t.Errorf("workers=%d: page %d differs", workers, n)
			}
		}
	}
}

func TestExtractPDF_Idempotent(t *testing.T) {
	path := writePDF(t, "Stable", "Output")

	loader := New(Config{})
	first, err := loader.ExtractPDF(context.Background(), path, 4)
	if err != nil {
		t.Fatal(err)
	}
	second, err := loader.ExtractPDF(context.Background(), path, 4)
	if err != nil {
		t.Fatal(err)
	}
	for n, text := range first {
		if second[n] != text {
			t.Errorf("page %d differs between runs", n)
		}
	}
}

func TestConvertToText_PDFRouted(t *testing.T) {
	path := writePDF(t, "Routed")

	loader := New(Config{})
	pages, err := loader.ConvertToText(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	if !strings.Contains(pages[1], "Routed") {
		t.Errorf("page 1 = %q", pages[1])
	}
}

func TestExtractPDF_Cancelled(t *testing.T) {
	path := writePDF(t, "One", "Two")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := New(Config{})
	if _, err := loader.ExtractPDF(ctx, path, 2); err == nil {
		t.Fatal("expected context cancellation error")
	}
}
