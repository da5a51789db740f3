package workbook

import "errors"

var (
	// ErrEmptyInput reports that no bytes were supplied to the parser.
	ErrEmptyInput = errors.New("workbook: empty input")
	// ErrNoWorksheet reports a workbook without any sheet to read.
	ErrNoWorksheet = errors.New("workbook: no worksheet found")
	// ErrMalformed wraps lower-level decode failures for workbook input.
	ErrMalformed = errors.New("workbook: malformed input")
)
