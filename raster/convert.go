package raster

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Converter turns an office document into a PDF inside outDir and returns
// the path of the produced file. Implementations are injected so the
// renderer stays testable without external binaries installed.
type Converter interface {
	ToPDF(ctx context.Context, src, outDir string) (string, error)
}

// ErrNoConverter reports that no external document converter binary is
// available on the host.
var ErrNoConverter = errors.New("no document converter found (need libreoffice or unoconv)")

// SofficeConverter converts documents to PDF via LibreOffice, falling back
// to unoconv when LibreOffice is not installed.
type SofficeConverter struct{}

func (SofficeConverter) ToPDF(ctx context.Context, src, outDir string) (string, error) {
	for _, name := range []string{"libreoffice", "soffice"} {
		bin, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		return sofficeConvert(ctx, bin, src, outDir)
	}
	if bin, err := exec.LookPath("unoconv"); err == nil {
		return unoconvConvert(ctx, bin, src, outDir)
	}
	return "", ErrNoConverter
}

func sofficeConvert(ctx context.Context, bin, src, outDir string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, "--headless", "--convert-to", "pdf", "--outdir", outDir, src)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("libreoffice convert: %w: %s", err, strings.TrimSpace(string(out)))
	}
	// LibreOffice names the output after the source file's stem.
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(outDir, stem+".pdf"), nil
}

func unoconvConvert(ctx context.Context, bin, src, outDir string) (string, error) {
	out := filepath.Join(outDir, "output.pdf")
	cmd := exec.CommandContext(ctx, bin, "-f", "pdf", "-o", out, src)
	if msg, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("unoconv convert: %w: %s", err, strings.TrimSpace(string(msg)))
	}
	return out, nil
}
