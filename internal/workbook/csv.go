package workbook

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/goliatone/go-sheet-import/internal/tabular"
)

// parseDelimited reads comma- or semicolon-separated text into a grid. When
// no delimiter is supplied the first line is sniffed: the candidate that
// splits it into more fields wins, comma on ties.
func parseDelimited(text string, delimiter rune) (tabular.Grid, error) {
	if delimiter == 0 {
		delimiter = sniffDelimiter(text)
	}
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = false

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	grid := make(tabular.Grid, 0, len(records))
	for _, record := range records {
		row := make([]any, len(record))
		blank := true
		for i, cell := range record {
			row[i] = cell
			if strings.TrimSpace(cell) != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		grid = append(grid, row)
	}
	return grid, nil
}

func sniffDelimiter(text string) rune {
	line := text
	if idx := strings.IndexAny(text, "\r\n"); idx >= 0 {
		line = text[:idx]
	}
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}
