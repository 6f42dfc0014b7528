package docload

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// MaxCharsPerPage bounds a synthesized page when a text file has no page
// markers and must be packed by paragraph.
const MaxCharsPerPage = 3000

// pageMarkers are checked in order; the first one present anywhere in the
// content splits the whole document.
var pageMarkers = []string{"\f", "----", "****", "======", "# Page", "===", "---", "***"}

// ExtractTXT extracts text from a plain-text file, splitting into pages by
// marker or by length. Pages that are empty after trimming are dropped and
// the survivors are renumbered densely from 1. maxWorkers is accepted for
// registry symmetry.
func (l *Loader) ExtractTXT(ctx context.Context, path string, maxWorkers int) (PageTextMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text file: %w", err)
	}

	raw := l.splitIntoPages(string(data), MaxCharsPerPage)
	pages := make(PageTextMap)
	n := 1
	for _, page := range raw {
		trimmed := strings.TrimSpace(page)
		if trimmed == "" {
			continue
		}
		pages[n] = trimmed
		n++
	}
	return pages, nil
}

// splitIntoPages splits content on the first page marker found, or falls
// back to packing paragraphs up to maxChars per page. A single paragraph
// longer than maxChars stays whole rather than being split mid-paragraph.
func (l *Loader) splitIntoPages(content string, maxChars int) []string {
	for _, marker := range pageMarkers {
		if strings.Contains(content, marker) {
			l.logger.Debug("split text file by marker", "marker", marker)
			return strings.Split(content, marker)
		}
	}

	paragraphs := strings.Split(content, "\n\n")
	var pages []string
	var current strings.Builder
	for _, para := range paragraphs {
		if current.Len()+len(para) > maxChars && current.Len() > 0 {
			pages = append(pages, current.String())
			current.Reset()
			current.WriteString(para)
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	if current.Len() > 0 {
		pages = append(pages, current.String())
	}
	l.logger.Debug("split text file by paragraph packing", "pages", len(pages))
	return pages
}
