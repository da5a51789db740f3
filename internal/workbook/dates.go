package workbook

import (
	"fmt"
	"strings"
	"time"
)

// CellInfo carries the facts a date policy may consult when classifying a
// numeric cell.
type CellInfo struct {
	// IsDateType is true when the file format marks the cell as a date.
	IsDateType bool
	// FormatCode is the resolved number format code, empty when the cell
	// uses the general format.
	FormatCode string
	// BuiltinFormatID is the built-in number format id, zero when a custom
	// format applies.
	BuiltinFormatID uint32
	// Header is the text of the header cell above this column, empty for
	// the header row itself.
	Header string
}

// DatePolicy decides whether a numeric cell is rendered as a date. The
// heuristic went through several iterations, so classification stays
// pluggable rather than hard-coded.
type DatePolicy interface {
	IsDateCell(info CellInfo) bool
}

// FormatDatePolicy is the conservative default: a cell is a date only when
// the file format marks it as one, either through the date cell type, a
// date-shaped custom format code, or a built-in date format id. Plain
// numbers that merely look like years pass through untouched.
type FormatDatePolicy struct{}

func (FormatDatePolicy) IsDateCell(info CellInfo) bool {
	if info.IsDateType {
		return true
	}
	if info.FormatCode != "" {
		return IsDateFormatCode(info.FormatCode)
	}
	return isBuiltinDateFormat(info.BuiltinFormatID)
}

// HeaderDatePolicy reproduces the legacy heuristic that classified every
// numeric cell under a date-looking header as a date. Kept selectable for
// records imported under the old behaviour.
type HeaderDatePolicy struct {
	Substrings []string
}

func (p HeaderDatePolicy) IsDateCell(info CellInfo) bool {
	if info.IsDateType {
		return true
	}
	header := strings.ToLower(info.Header)
	if header == "" {
		return false
	}
	needles := p.Substrings
	if len(needles) == 0 {
		needles = []string{"date"}
	}
	for _, needle := range needles {
		if strings.Contains(header, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}

// NoDatePolicy disables date detection entirely; every cell passes through
// with its raw value.
type NoDatePolicy struct{}

func (NoDatePolicy) IsDateCell(CellInfo) bool { return false }

// IsDateFormatCode reports whether a number format code renders a date.
// Bracketed sections (colors, locale prefixes, elapsed-time markers), quoted
// literals and backslash-escaped characters carry no format semantics and
// are stripped before testing for year/month/day format letters.
func IsDateFormatCode(code string) bool {
	stripped := stripFormatTokens(code)
	lower := strings.ToLower(stripped)
	return strings.ContainsAny(lower, "ymd")
}

func stripFormatTokens(code string) string {
	var out strings.Builder
	inBracket := false
	inQuote := false
	escaped := false
	for _, r := range code {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case inQuote:
			if r == '"' {
				inQuote = false
			}
		case r == '"':
			inQuote = true
		case inBracket:
			if r == ']' {
				inBracket = false
			}
		case r == '[':
			inBracket = true
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}

// Built-in number format ids that render dates (not bare times).
func isBuiltinDateFormat(id uint32) bool {
	switch {
	case id >= 14 && id <= 17:
		return true
	case id == 22:
		return true
	case id >= 27 && id <= 36:
		return true
	default:
		return false
	}
}

// excelEpoch is day zero of the 1900 date system. Using day -1 absorbs the
// historical Lotus leap-year bug for serials past February 1900.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// serialToTime converts an Excel serial day number to a UTC instant.
func serialToTime(serial float64) time.Time {
	days := int(serial)
	frac := serial - float64(days)
	t := excelEpoch.AddDate(0, 0, days)
	if frac > 0 {
		t = t.Add(time.Duration(frac * float64(24*time.Hour)))
	}
	return t
}

// FormatDate renders a date as month,day,year with no leading zeros, in UTC
// so the rendered day never shifts across timezones.
func FormatDate(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%d,%d,%d", int(t.Month()), t.Day(), t.Year())
}
