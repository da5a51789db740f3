package tabular

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func sampleTable() *Table {
	return &Table{
		Columns: []string{"Name", "Amount"},
		Rows: []map[string]string{
			{"Name": "Alpha", "Amount": "10"},
			{"Name": "Beta", "Amount": "2.5"},
		},
	}
}

func TestBuildAndEncodeMatrixPayload(t *testing.T) {
	at := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	meta := NewMeta("data.xlsx", "application/vnd.ms-excel", at, "import-1")

	payload, err := BuildPayload(sampleTable(), meta, ShapeMatrix)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	encoded, err := EncodePayload(payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(encoded), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	columns := decoded["columns"].([]any)
	if len(columns) != 2 || columns[0] != "Name" {
		t.Fatalf("unexpected columns %v", columns)
	}
	data := decoded["data"].([]any)
	first := data[0].([]any)
	if first[0] != "Alpha" || first[1] != "10" {
		t.Fatalf("row values must follow column order, got %v", first)
	}
	metaValue := decoded["meta"].(map[string]any)
	if metaValue["imported_at"] != "2026-08-29T12:00:00Z" {
		t.Fatalf("unexpected imported_at %v", metaValue["imported_at"])
	}
	if metaValue["filename"] != "data.xlsx" {
		t.Fatalf("unexpected filename %v", metaValue["filename"])
	}
	if int64(metaValue["nonce"].(float64)) != at.UnixMilli() {
		t.Fatalf("nonce must be the millisecond timestamp, got %v", metaValue["nonce"])
	}
}

func TestBuildRowsPayload(t *testing.T) {
	meta := NewMeta("", "", time.Now(), "import-2")
	payload, err := BuildPayload(sampleTable(), meta, ShapeRows)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	rows := payload["rows"].([]any)
	record := rows[1].(map[string]any)
	if record["Name"] != "Beta" {
		t.Fatalf("unexpected record %v", record)
	}
	if _, err := EncodePayload(payload); err != nil {
		t.Fatalf("rows payload must validate: %v", err)
	}
}

func TestMetaNullFields(t *testing.T) {
	meta := NewMeta("", "", time.Now(), "")
	encoded, err := json.Marshal(meta)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(encoded), `"filename":null`) {
		t.Fatalf("unknown filename must encode as null: %s", encoded)
	}
	if !strings.Contains(string(encoded), `"mime":null`) {
		t.Fatalf("unknown mime must encode as null: %s", encoded)
	}
}

func TestBuildPayloadRejectsInvalidShape(t *testing.T) {
	_, err := BuildPayload(sampleTable(), NewMeta("", "", time.Now(), ""), Shape("pivot"))
	if err == nil {
		t.Fatal("expected shape error")
	}
}

func TestRemovalPayload(t *testing.T) {
	payload, err := RemovalPayload(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	if err != nil {
		t.Fatalf("removal: %v", err)
	}
	if len(payload["columns"].([]any)) != 0 || len(payload["data"].([]any)) != 0 {
		t.Fatalf("removal payload must be empty, got %v", payload)
	}
	meta := payload["meta"].(map[string]any)
	if meta["removed"] != true {
		t.Fatalf("removal payload must carry removed flag, got %v", meta)
	}
	if _, err := EncodePayload(payload); err != nil {
		t.Fatalf("removal payload must validate: %v", err)
	}
}

func TestEncodePayloadRejectsMalformed(t *testing.T) {
	if _, err := EncodePayload(map[string]any{"columns": []any{"a"}}); err == nil {
		t.Fatal("payload without meta must fail validation")
	}
}

func TestDecodeTableRoundTrip(t *testing.T) {
	table := sampleTable()
	payload, err := BuildPayload(table, NewMeta("f", "m", time.Now(), "id"), ShapeMatrix)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	encoded, err := EncodePayload(payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeTable(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Columns) != len(table.Columns) || len(decoded.Rows) != len(table.Rows) {
		t.Fatalf("round trip changed shape: %+v", decoded)
	}
	if decoded.Rows[0]["Amount"] != "10" {
		t.Fatalf("round trip changed data: %v", decoded.Rows[0])
	}
}
