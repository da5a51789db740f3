package tabular

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Grid is a rectangular-ish matrix of raw cell values as produced by the
// workbook parser. Rows may have uneven widths.
type Grid [][]any

// Table is the normalized rows/columns relation written to the host field.
// Column identifiers are non-empty, never start with a digit, and are
// pairwise distinct.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

var (
	headerStripPattern = regexp.MustCompile(`[^\p{L}\p{N}\s_-]+`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
	digitLeadPattern   = regexp.MustCompile(`^\d`)
)

// Normalize converts a raw grid into a Table. The first row is the header,
// the remainder is data. Columns are widened to the widest data row, missing
// headers are synthesized as column_<n>, names are slugified and
// de-duplicated left to right, and every data row is right-padded to the
// final column count.
func Normalize(grid Grid) *Table {
	if len(grid) == 0 {
		return &Table{Columns: []string{}, Rows: []map[string]string{}}
	}

	header := grid[0]
	body := grid[1:]

	columns := make([]string, 0, len(header))
	for i, raw := range header {
		columns = append(columns, SlugHeader(raw, fmt.Sprintf("column_%d", i+1)))
	}

	maxCols := len(columns)
	for _, row := range body {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}
	if maxCols < 1 {
		maxCols = 1
	}
	for len(columns) < maxCols {
		columns = append(columns, fmt.Sprintf("column_%d", len(columns)+1))
	}
	columns = makeUnique(columns)

	rows := make([]map[string]string, 0, len(body))
	for _, row := range body {
		record := make(map[string]string, maxCols)
		for i, column := range columns {
			if i < len(row) {
				record[column] = CellString(row[i])
			} else {
				record[column] = ""
			}
		}
		rows = append(rows, record)
	}

	return &Table{Columns: columns, Rows: rows}
}

// SlugHeader turns a raw header cell into a column identifier: characters
// outside letters, digits, whitespace, underscore and hyphen are stripped,
// whitespace runs collapse to single underscores, and leading underscores
// are removed. Empty or digit-leading results fall back to the synthesized
// name.
func SlugHeader(raw any, fallback string) string {
	s := strings.TrimSpace(CellString(raw))
	if s == "" {
		return fallback
	}
	s = headerStripPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = whitespacePattern.ReplaceAllString(s, "_")
	s = strings.TrimLeft(s, "_")
	if s == "" || digitLeadPattern.MatchString(s) {
		return fallback
	}
	return s
}

// makeUnique resolves duplicate column names left to right: the first
// occurrence keeps the bare name, later ones get _2, _3, ... appended.
func makeUnique(names []string) []string {
	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		seen[name]++
		if count := seen[name]; count > 1 {
			out[i] = fmt.Sprintf("%s_%d", name, count)
		} else {
			out[i] = name
		}
	}
	return out
}

// CellString coerces a raw cell value to its string form. Nil and NaN map to
// the empty string; everything else follows its natural string conversion.
func CellString(raw any) string {
	switch typed := raw.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		if math.IsNaN(typed) {
			return ""
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return CellString(float64(typed))
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	default:
		return fmt.Sprintf("%v", typed)
	}
}
