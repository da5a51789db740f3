package importer

import (
	"errors"
	"fmt"
)

var (
	// ErrNoReference reports an import dispatched without a source reference.
	ErrNoReference = errors.New("importer: no source reference")
	// ErrNotSpreadsheet reports a source file whose MIME type marks it as an
	// image rather than tabular data.
	ErrNotSpreadsheet = errors.New("importer: source file is not a spreadsheet")
	// ErrEmptyDocument reports a source file that produced no rows at all.
	ErrEmptyDocument = errors.New("importer: document has no rows")
)

// FetchError reports a non-success HTTP status while downloading the source
// file bytes.
type FetchError struct {
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("Fetch failed: %d", e.Status)
}
