package raster

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// pdftoppmBin resolves the poppler binary, honoring PopplerPath for hosts
// where poppler is not on PATH.
func (r *Renderer) pdftoppmBin() (string, error) {
	if r.cfg.PopplerPath != "" {
		bin := filepath.Join(r.cfg.PopplerPath, "pdftoppm")
		if _, err := os.Stat(bin); err != nil {
			return "", fmt.Errorf("pdftoppm not found at %s: %w", bin, err)
		}
		return bin, nil
	}
	return exec.LookPath("pdftoppm")
}

// renderPoppler rasterizes a single PDF page via pdftoppm.
func (r *Renderer) renderPoppler(ctx context.Context, path string, pageNum int) (string, error) {
	pages, err := r.runPdftoppm(ctx, path, pageNum, pageNum)
	if err != nil {
		return "", err
	}
	data, ok := pages[pageNum]
	if !ok {
		return "", fmt.Errorf("pdftoppm produced no image for page %d", pageNum)
	}
	return data, nil
}

// runPdftoppm converts the page range [first, last] (0,0 = all pages) and
// returns the produced images keyed by page number.
func (r *Renderer) runPdftoppm(ctx context.Context, path string, first, last int) (PageImageMap, error) {
	bin, err := r.pdftoppmBin()
	if err != nil {
		return nil, fmt.Errorf("pdftoppm unavailable: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "docload-ppm-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	args := []string{
		"-jpeg",
		"-r", strconv.Itoa(r.cfg.DPI),
		"-jpegopt", "quality=" + strconv.Itoa(r.cfg.JPEGQuality),
	}
	if first > 0 {
		args = append(args, "-f", strconv.Itoa(first), "-l", strconv.Itoa(last))
	}
	args = append(args, path, prefix)

	cmd := exec.CommandContext(ctx, bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(out)))
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, fmt.Errorf("read output dir: %w", err)
	}

	pages := make(PageImageMap, len(entries))
	for _, e := range entries {
		// pdftoppm emits page-1.jpg, page-01.jpg, ... depending on count.
		name := e.Name()
		numPart := strings.TrimSuffix(strings.TrimPrefix(name, "page-"), ".jpg")
		num, err := strconv.Atoi(strings.TrimLeft(numPart, "0"))
		if err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(tmpDir, name))
		if err != nil {
			r.logger.Error("read rendered page failed", "file", name, "error", err)
			continue
		}
		pages[num] = base64.StdEncoding.EncodeToString(data)
	}
	return pages, nil
}
