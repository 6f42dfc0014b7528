package docload

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ExtractDOCX extracts text from a Word document, splitting on page-break
// signals. DOCX files carry no native page boundaries, so each segment
// between breaks is treated as one page. maxWorkers is accepted for
// registry symmetry; extraction is sequential.
//
// A paragraph is a page boundary when its text contains "PAGE BREAK", when
// it is a lone form feed, when its style name contains "page break", or when
// one of its runs holds an explicit <w:br w:type="page"/>.
func (l *Loader) ExtractDOCX(ctx context.Context, path string, maxWorkers int) (PageTextMap, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	pages := make(PageTextMap)
	currentPage := 1
	var pageText strings.Builder

	var paraText strings.Builder
	var paraStyle string
	var paraHasBreak bool
	var inParagraph bool

	flushPage := func() {
		if text := strings.TrimSpace(pageText.String()); text != "" {
			pages[currentPage] = text
			currentPage++
		}
		pageText.Reset()
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "p":
				inParagraph = true
				paraText.Reset()
				paraStyle = ""
				paraHasBreak = false
			case t.Name.Local == "pStyle" && inParagraph:
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						paraStyle = attr.Value
					}
				}
			case t.Name.Local == "br" && inParagraph:
				for _, attr := range t.Attr {
					if attr.Name.Local == "type" && attr.Value == "page" {
						paraHasBreak = true
					}
				}
			}

		case xml.CharData:
			if inParagraph {
				paraText.Write(t)
			}

		case xml.EndElement:
			if t.Name.Local == "p" && inParagraph {
				inParagraph = false
				text := paraText.String()
				if isPageBreakParagraph(text, paraStyle) || paraHasBreak {
					flushPage()
				} else {
					pageText.WriteString(text)
					pageText.WriteByte('\n')
				}
			}
		}
	}

	// Trailing text after the last break becomes the final page.
	flushPage()

	l.logger.Debug("extracted docx text", "path", path, "pages", len(pages))
	return pages, nil
}

// isPageBreakParagraph applies the page-break text and style heuristics.
func isPageBreakParagraph(text, style string) bool {
	if strings.Contains(strings.ToUpper(text), "PAGE BREAK") {
		return true
	}
	if strings.TrimSpace(text) == "\f" {
		return true
	}
	return strings.Contains(strings.ToLower(style), "page break")
}
