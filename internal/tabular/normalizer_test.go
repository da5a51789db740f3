package tabular

import "testing"

func TestNormalizeBasicTable(t *testing.T) {
	grid := Grid{
		{"Name", "Amount"},
		{"Alpha", float64(10)},
		{"Beta", float64(2.5)},
	}
	table := Normalize(grid)

	if len(table.Columns) != 2 || table.Columns[0] != "Name" || table.Columns[1] != "Amount" {
		t.Fatalf("unexpected columns %v", table.Columns)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[0]["Name"] != "Alpha" || table.Rows[0]["Amount"] != "10" {
		t.Fatalf("unexpected first row %v", table.Rows[0])
	}
	if table.Rows[1]["Amount"] != "2.5" {
		t.Fatalf("expected trimmed float rendering, got %q", table.Rows[1]["Amount"])
	}
}

func TestNormalizeDuplicateHeaders(t *testing.T) {
	table := Normalize(Grid{{"X", "X", "X"}, {"a", "b", "c"}})
	want := []string{"X", "X_2", "X_3"}
	for i, column := range want {
		if table.Columns[i] != column {
			t.Fatalf("expected columns %v, got %v", want, table.Columns)
		}
	}
	if table.Rows[0]["X_2"] != "b" {
		t.Fatalf("deduped column lost its data: %v", table.Rows[0])
	}
}

func TestNormalizeDigitLeadingHeaderFallsBack(t *testing.T) {
	table := Normalize(Grid{{"2023"}, {"v"}})
	if table.Columns[0] != "column_1" {
		t.Fatalf("digit-leading header must synthesize, got %q", table.Columns[0])
	}
}

func TestNormalizeBlankAndSymbolHeaders(t *testing.T) {
	table := Normalize(Grid{{"", "Total ($)", "a  b"}, {"1", "2", "3"}})
	if table.Columns[0] != "column_1" {
		t.Fatalf("blank header must synthesize, got %q", table.Columns[0])
	}
	if table.Columns[1] != "Total" {
		t.Fatalf("symbols must strip before collapsing, got %q", table.Columns[1])
	}
	if table.Columns[2] != "a_b" {
		t.Fatalf("whitespace runs must collapse to one underscore, got %q", table.Columns[2])
	}
}

func TestNormalizeWidensToWidestRow(t *testing.T) {
	table := Normalize(Grid{
		{"Only"},
		{"a", "b", "c"},
	})
	want := []string{"Only", "column_2", "column_3"}
	for i, column := range want {
		if table.Columns[i] != column {
			t.Fatalf("expected columns %v, got %v", want, table.Columns)
		}
	}
	if table.Rows[0]["column_3"] != "c" {
		t.Fatalf("widened column lost data: %v", table.Rows[0])
	}
}

func TestNormalizeRightPadsShortRows(t *testing.T) {
	table := Normalize(Grid{
		{"A", "B", "C"},
		{"only"},
	})
	row := table.Rows[0]
	if row["A"] != "only" || row["B"] != "" || row["C"] != "" {
		t.Fatalf("short row must right-pad with blanks: %v", row)
	}
}

func TestNormalizeEmptyGrid(t *testing.T) {
	table := Normalize(Grid{})
	if len(table.Columns) != 0 || len(table.Rows) != 0 {
		t.Fatalf("empty grid must normalize to empty table, got %+v", table)
	}
}

func TestNormalizeHeaderOnly(t *testing.T) {
	table := Normalize(Grid{{"A"}})
	if len(table.Columns) != 1 || len(table.Rows) != 0 {
		t.Fatalf("header-only grid must keep columns and no rows, got %+v", table)
	}
}

func TestSlugHeaderUnicodeLetters(t *testing.T) {
	if got := SlugHeader("Prix (€)", "column_1"); got != "Prix" {
		t.Fatalf("unexpected slug %q", got)
	}
	if got := SlugHeader("Größe", "column_1"); got != "Größe" {
		t.Fatalf("unicode letters must survive, got %q", got)
	}
}

func TestCellString(t *testing.T) {
	if CellString(nil) != "" {
		t.Fatal("nil must render blank")
	}
	if CellString(true) != "true" {
		t.Fatal("bool must render via FormatBool")
	}
	if CellString(float64(3)) != "3" {
		t.Fatal("whole floats must render without decimals")
	}
}
