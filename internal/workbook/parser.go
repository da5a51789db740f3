package workbook

import (
	"bytes"
	"strings"

	"github.com/goliatone/go-sheet-import/internal/tabular"
)

// Hints steer parse-path selection. All fields are optional; when nothing
// matches, the input bytes themselves are sniffed.
type Hints struct {
	// ContentType is the MIME type reported for the bytes, when known.
	ContentType string
	// Filename is the source file name, when known.
	Filename string
	// Delimiter forces the delimited-text separator; zero enables sniffing
	// between comma and semicolon.
	Delimiter rune
}

// Parser converts workbook bytes or delimited text into a raw cell grid.
// Rows whose cells are all blank after trimming are dropped.
type Parser struct {
	dates DatePolicy
}

// Option customises parser behaviour.
type Option func(*Parser)

// WithDatePolicy overrides the date-cell classification policy. The default
// is the conservative format-based policy.
func WithDatePolicy(policy DatePolicy) Option {
	return func(p *Parser) {
		if policy != nil {
			p.dates = policy
		}
	}
}

// NewParser constructs a parser with the format-based date policy.
func NewParser(opts ...Option) *Parser {
	p := &Parser{dates: FormatDatePolicy{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var zipMagic = []byte{'P', 'K'}

// Parse converts the input into a grid of raw cell values, selecting the
// binary or delimited path from the supplied hints and, failing that, from
// the bytes themselves.
func (p *Parser) Parse(data []byte, hints Hints) (tabular.Grid, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	if isDelimited(data, hints) {
		return parseDelimited(string(data), hints.Delimiter)
	}
	return p.parseBinary(data)
}

func isDelimited(data []byte, hints Hints) bool {
	contentType := strings.ToLower(hints.ContentType)
	if strings.Contains(contentType, "csv") {
		return true
	}
	if strings.HasSuffix(strings.ToLower(hints.Filename), ".csv") {
		return true
	}
	if contentType == "" && !bytes.HasPrefix(data, zipMagic) {
		return true
	}
	return false
}
