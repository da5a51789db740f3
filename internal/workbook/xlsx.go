package workbook

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/unidoc/unioffice/schema/soo/sml"
	"github.com/unidoc/unioffice/spreadsheet"
	"github.com/unidoc/unioffice/spreadsheet/reference"

	"github.com/goliatone/go-sheet-import/internal/tabular"
)

// parseBinary reads the first worksheet of a binary workbook into a grid.
// Rows are reconstructed from the sparse cell list via column references and
// numeric cells are classified through the configured date policy.
func (p *Parser) parseBinary(data []byte) (tabular.Grid, error) {
	wb, err := spreadsheet.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	sheets := wb.Sheets()
	if len(sheets) == 0 {
		return nil, ErrNoWorksheet
	}
	sheet := sheets[0]

	type rawRow []rawCell
	rows := make([]rawRow, 0, len(sheet.Rows()))
	maxCols := 0
	for _, row := range sheet.Rows() {
		cells := row.Cells()
		byIndex := make(map[int]rawCell, len(cells))
		width := 0
		for _, cell := range cells {
			column, err := cell.Column()
			if err != nil {
				continue
			}
			idx := int(reference.ColumnToIndex(column))
			byIndex[idx] = p.readCell(wb, cell)
			if idx+1 > width {
				width = idx + 1
			}
		}
		if width > maxCols {
			maxCols = width
		}
		raw := make(rawRow, width)
		for idx := 0; idx < width; idx++ {
			raw[idx] = byIndex[idx]
		}
		rows = append(rows, raw)
	}

	// Header text per column feeds the date policy for data cells.
	headers := make([]string, maxCols)
	if len(rows) > 0 {
		for idx, cell := range rows[0] {
			headers[idx] = cell.text
		}
	}

	grid := make(tabular.Grid, 0, len(rows))
	for rowIdx, raw := range rows {
		out := make([]any, len(raw))
		blank := true
		for idx, cell := range raw {
			header := ""
			if rowIdx > 0 && idx < len(headers) {
				header = headers[idx]
			}
			value := p.renderCell(cell, header)
			out[idx] = value
			if strings.TrimSpace(value) != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		grid = append(grid, out)
	}
	return grid, nil
}

// rawCell captures a cell before date classification.
type rawCell struct {
	text       string
	literal    string
	numeric    bool
	serial     float64
	formatCode string
	builtinID  uint32
}

func (p *Parser) readCell(wb *spreadsheet.Workbook, cell spreadsheet.Cell) rawCell {
	x := cell.X()
	if x == nil {
		return rawCell{}
	}
	switch x.TAttr {
	case sml.ST_CellTypeN, sml.ST_CellTypeUnset:
		if x.V == nil {
			return rawCell{text: cell.GetFormattedValue()}
		}
		serial, err := strconv.ParseFloat(strings.TrimSpace(*x.V), 64)
		if err != nil {
			return rawCell{text: *x.V}
		}
		code, builtin := formatFor(wb, x.SAttr)
		return rawCell{
			numeric:    true,
			serial:     serial,
			literal:    *x.V,
			formatCode: code,
			builtinID:  builtin,
		}
	default:
		return rawCell{text: cell.GetFormattedValue()}
	}
}

func (p *Parser) renderCell(cell rawCell, header string) string {
	if !cell.numeric {
		return cell.text
	}
	info := CellInfo{
		FormatCode:      cell.formatCode,
		BuiltinFormatID: cell.builtinID,
		Header:          header,
	}
	if p.dates.IsDateCell(info) {
		return FormatDate(serialToTime(cell.serial))
	}
	// Non-date numbers keep their stored representation untouched.
	return cell.literal
}

// formatFor resolves the number format applied to a cell: the custom format
// code when the style points at one, otherwise the built-in format id.
func formatFor(wb *spreadsheet.Workbook, styleIdx *uint32) (string, uint32) {
	if styleIdx == nil {
		return "", 0
	}
	ss := wb.StyleSheet.X()
	if ss == nil || ss.CellXfs == nil || int(*styleIdx) >= len(ss.CellXfs.Xf) {
		return "", 0
	}
	xf := ss.CellXfs.Xf[*styleIdx]
	if xf == nil || xf.NumFmtIdAttr == nil {
		return "", 0
	}
	id := uint32(*xf.NumFmtIdAttr)
	if ss.NumFmts != nil {
		for _, nf := range ss.NumFmts.NumFmt {
			if nf != nil && uint32(nf.NumFmtIdAttr) == id {
				return nf.FormatCodeAttr, 0
			}
		}
	}
	return "", id
}
