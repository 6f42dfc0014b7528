package docload

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that the source document is absent from the file
// system gateway. Always wrapped with the offending path.
var ErrNotFound = errors.New("document not found")

// UnsupportedTypeError reports an extension outside the supported set.
type UnsupportedTypeError struct {
	Ext string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %q", e.Ext)
}

// NoExtractorError reports an extension that is in the supported set but has
// no registered extractor. Distinct from UnsupportedTypeError: the format is
// known to the system, the handler is missing.
type NoExtractorError struct {
	Ext string
}

func (e *NoExtractorError) Error() string {
	return fmt.Sprintf("no extractor registered for file type: %q", e.Ext)
}
