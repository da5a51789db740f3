package tabular

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Shape selects the JSON layout of the payload written to the target field.
type Shape string

const (
	// ShapeMatrix stores columns plus rows-as-ordered-value-arrays.
	ShapeMatrix Shape = "matrix"
	// ShapeRows stores rows as a list of column-keyed mappings.
	ShapeRows Shape = "rows"
)

// ErrShapeInvalid reports an unsupported payload shape.
var ErrShapeInvalid = errors.New("tabular: payload shape invalid")

// Valid reports whether the shape is one of the supported layouts.
func (s Shape) Valid() bool {
	return s == ShapeMatrix || s == ShapeRows
}

// Meta travels with every payload and defeats the host's read cache via the
// nonce. Filename and Mime stay null when unknown.
type Meta struct {
	Filename   *string `json:"filename"`
	Mime       *string `json:"mime"`
	ImportedAt string  `json:"imported_at"`
	Nonce      int64   `json:"nonce,omitempty"`
	ImportID   string  `json:"import_id,omitempty"`
	Removed    bool    `json:"removed,omitempty"`
}

// NewMeta builds payload metadata for an import that happened at the given
// instant. The nonce is the millisecond timestamp, mirroring the cache-bust
// parameter used when fetching the asset bytes.
func NewMeta(filename, mime string, at time.Time, importID string) Meta {
	meta := Meta{
		ImportedAt: at.UTC().Format(time.RFC3339),
		Nonce:      at.UnixMilli(),
		ImportID:   importID,
	}
	if filename != "" {
		meta.Filename = &filename
	}
	if mime != "" {
		meta.Mime = &mime
	}
	return meta
}

// BuildPayload assembles the JSON value for the target field in the
// requested shape.
func BuildPayload(table *Table, meta Meta, shape Shape) (map[string]any, error) {
	if !shape.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrShapeInvalid, shape)
	}
	metaValue, err := metaMap(meta)
	if err != nil {
		return nil, err
	}
	if shape == ShapeRows {
		rows := make([]any, 0, len(table.Rows))
		for _, row := range table.Rows {
			record := make(map[string]any, len(row))
			for key, value := range row {
				record[key] = value
			}
			rows = append(rows, record)
		}
		return map[string]any{"rows": rows, "meta": metaValue}, nil
	}

	columns := make([]any, 0, len(table.Columns))
	for _, column := range table.Columns {
		columns = append(columns, column)
	}
	data := make([]any, 0, len(table.Rows))
	for _, row := range table.Rows {
		values := make([]any, 0, len(table.Columns))
		for _, column := range table.Columns {
			values = append(values, row[column])
		}
		data = append(data, values)
	}
	return map[string]any{"columns": columns, "data": data, "meta": metaValue}, nil
}

// RemovalPayload is the empty matrix payload written when the source file is
// removed from the block.
func RemovalPayload(at time.Time) (map[string]any, error) {
	meta := Meta{
		ImportedAt: at.UTC().Format(time.RFC3339),
		Removed:    true,
	}
	metaValue, err := metaMap(meta)
	if err != nil {
		return nil, err
	}
	return map[string]any{"columns": []any{}, "data": []any{}, "meta": metaValue}, nil
}

// EncodePayload validates the payload against the embedded schema and
// returns its JSON encoding. The target field stores the encoded string, not
// the object itself.
func EncodePayload(payload map[string]any) (string, error) {
	if err := ValidatePayload(payload); err != nil {
		return "", err
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// DecodeTable reconstructs a Table from an encoded matrix-shape payload.
// Used to round-trip previously imported data, e.g. for chart previews.
func DecodeTable(encoded string) (*Table, error) {
	var payload struct {
		Columns []string   `json:"columns"`
		Data    [][]string `json:"data"`
		Rows    []map[string]string
	}
	if err := json.Unmarshal([]byte(encoded), &payload); err != nil {
		return nil, err
	}
	if payload.Columns != nil {
		table := &Table{Columns: payload.Columns, Rows: make([]map[string]string, 0, len(payload.Data))}
		for _, values := range payload.Data {
			row := make(map[string]string, len(payload.Columns))
			for i, column := range payload.Columns {
				if i < len(values) {
					row[column] = values[i]
				} else {
					row[column] = ""
				}
			}
			table.Rows = append(table.Rows, row)
		}
		return table, nil
	}
	return nil, errors.New("tabular: encoded payload has no columns")
}

func metaMap(meta Meta) (map[string]any, error) {
	encoded, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, err
	}
	return out, nil
}
