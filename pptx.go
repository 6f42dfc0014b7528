package docload

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// ExtractPPTX extracts text from a PowerPoint presentation, one entry per
// slide in native slide order. Slides without text still get an entry with
// an empty string. Parse failures fail the whole call; there is no per-slide
// isolation. maxWorkers is accepted for registry symmetry.
func (l *Loader) ExtractPPTX(ctx context.Context, path string, maxWorkers int) (PageTextMap, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	// Slide parts are numbered ppt/slides/slide1.xml, slide2.xml, ...
	// Archive order is not slide order; sort by the embedded number.
	type slidePart struct {
		num  int
		file *zip.File
	}
	var slides []slidePart
	for _, f := range r.File {
		m := slidePartRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slidePart{num: n, file: f})
	}
	if len(slides) == 0 {
		// A valid archive with no slide parts is an empty presentation,
		// not a malformed one.
		l.logger.Debug("no slides in archive", "path", path)
		return PageTextMap{}, nil
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	pages := make(PageTextMap, len(slides))
	for i, s := range slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := extractSlideText(s.file)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", s.num, err)
		}
		pages[i+1] = text
	}

	l.logger.Debug("extracted pptx text", "path", path, "slides", len(pages))
	return pages, nil
}

// extractSlideText collects the text runs of one slide, one line per
// paragraph, joined with newlines.
func extractSlideText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open slide part: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var lines []string
	var line strings.Builder
	var inRun bool

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse slide xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inRun = true
			}
		case xml.CharData:
			if inRun {
				line.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				if s := strings.TrimSpace(line.String()); s != "" {
					lines = append(lines, s)
				}
				line.Reset()
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}
