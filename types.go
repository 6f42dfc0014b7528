// Package docload extracts per-page text from document files and hands
// whole documents off for rasterization.
//
// Supported formats:
//   - .pdf   — parallel per-page extraction (MuPDF fast path, pure-Go fallback)
//   - .docx  — page-break heuristic splitting (archive/zip → word/document.xml)
//   - .pptx  — slide-as-page extraction (archive/zip → ppt/slides/slideN.xml)
//   - .txt and friends — marker-based or length-based pagination
//
// Results are page maps: 1-indexed page number → extracted text. Page
// numbering follows the document's native page/slide order even when pages
// complete out of order under parallel extraction.
//
// Usage:
//
//	loader := docload.New(docload.Config{})
//	pages, err := loader.ConvertToText(ctx, "/path/to/file.pdf")
//	fmt.Println(pages[1])
package docload

// Format identifies a document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
	FormatPPTX Format = "pptx"
	FormatDoc  Format = "doc"
	FormatPPT  Format = "ppt"
	FormatTXT  Format = "txt"
)

// PageTextMap maps 1-indexed page numbers to extracted text. An empty string
// means that page existed but yielded no text (or failed in the PDF path).
type PageTextMap map[int]string

// textFileTypes are the extensions that share the plain-text extractor.
var textFileTypes = []string{"txt", "md", "markdown", "log", "rst"}

// supportedFileTypes is the full allowlist consumed by upload validation.
// doc and ppt are accepted at the boundary but have no registered extractor.
var supportedFileTypes = []string{"pdf", "docx", "pptx", "doc", "ppt", "txt", "md", "markdown", "log", "rst"}

// SupportedFileTypes returns the extensions the loader accepts.
func SupportedFileTypes() []string {
	out := make([]string, len(supportedFileTypes))
	copy(out, supportedFileTypes)
	return out
}

// SupportedMIMETypes returns the MIME type for each supported extension.
// Callers use this to pre-validate uploads before invoking the loader.
func SupportedMIMETypes() map[string]string {
	return map[string]string{
		"pdf":      "application/pdf",
		"docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"pptx":     "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"doc":      "application/msword",
		"ppt":      "application/vnd.ms-powerpoint",
		"txt":      "text/plain",
		"md":       "text/markdown",
		"markdown": "text/markdown",
		"log":      "text/plain",
		"rst":      "text/x-rst",
	}
}
