package importer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-sheet-import/internal/assets"
	"github.com/goliatone/go-sheet-import/internal/fieldvalue"
	"github.com/goliatone/go-sheet-import/internal/tabular"
	"github.com/goliatone/go-sheet-import/pkg/testsupport"
)

type stubAssets struct {
	meta      *assets.Metadata
	metaErr   error
	ensureErr error
	ensured   []*fieldvalue.Reference
}

func (s *stubAssets) EnsureUploaded(_ context.Context, ref *fieldvalue.Reference) (*fieldvalue.Reference, error) {
	s.ensured = append(s.ensured, ref)
	if s.ensureErr != nil {
		return nil, s.ensureErr
	}
	return ref, nil
}

func (s *stubAssets) ResolveMetadata(context.Context, *fieldvalue.Reference) (*assets.Metadata, error) {
	return s.meta, s.metaErr
}

type stubFetcher struct {
	data        []byte
	contentType string
	err         error
	urls        []string
}

func (s *stubFetcher) Fetch(_ context.Context, rawURL string) ([]byte, string, error) {
	s.urls = append(s.urls, rawURL)
	return s.data, s.contentType, s.err
}

func importHost() *testsupport.FakeHost {
	form := map[string]any{
		"sections": map[string]any{
			"block_1": map[string]any{
				"table_data": "",
				"sourcefile": map[string]any{"upload_id": "u1"},
			},
		},
	}
	return testsupport.NewFakeHost(form, "sections.block_1.table_data")
}

func fixedClock() func() time.Time {
	at := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func newTestImporter(assetsSvc assets.Service, fetcher Fetcher) Service {
	return NewService(
		WithAssets(assetsSvc),
		WithFetcher(fetcher),
		WithMetaFieldKeys("columns_meta", "row_count"),
		WithClock(fixedClock()),
		WithImportID(func() string { return "import-1" }),
	)
}

func TestImportWritesPayloadAndMetaFields(t *testing.T) {
	assetsSvc := &stubAssets{meta: &assets.Metadata{
		URL:      "https://cdn/d.csv",
		MimeType: "text/csv",
		Filename: "d.csv",
	}}
	fetcher := &stubFetcher{data: []byte("Name,Amount\nAlpha,10\n")}
	svc := newTestImporter(assetsSvc, fetcher)
	host := importHost()

	if err := svc.Import(context.Background(), host, fieldvalue.Upload("u1")); err != nil {
		t.Fatalf("import: %v", err)
	}

	// Clear-then-set double write on the target field.
	writes := host.WritesTo("sections.block_1.table_data")
	if len(writes) != 2 {
		t.Fatalf("expected clear-then-set, got %d writes", len(writes))
	}
	if writes[0] != nil {
		t.Fatalf("first write must clear the field, got %v", writes[0])
	}
	encoded, ok := writes[1].(string)
	if !ok {
		t.Fatalf("second write must be the encoded payload, got %T", writes[1])
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(encoded), &payload); err != nil {
		t.Fatalf("payload must be valid JSON: %v", err)
	}
	columns := payload["columns"].([]any)
	if len(columns) != 2 || columns[0] != "Name" {
		t.Fatalf("unexpected columns %v", columns)
	}
	meta := payload["meta"].(map[string]any)
	if meta["filename"] != "d.csv" || meta["mime"] != "text/csv" {
		t.Fatalf("unexpected meta %v", meta)
	}
	if meta["import_id"] != "import-1" {
		t.Fatalf("unexpected import id %v", meta["import_id"])
	}

	colWrites := host.WritesTo("sections.block_1.columns_meta")
	if len(colWrites) != 1 {
		t.Fatalf("expected columns meta write, got %v", colWrites)
	}
	colValue := colWrites[0].(map[string]any)
	if len(colValue["columns"].([]any)) != 2 {
		t.Fatalf("unexpected columns meta %v", colValue)
	}
	rowWrites := host.WritesTo("sections.block_1.row_count")
	if len(rowWrites) != 1 || rowWrites[0] != 1 {
		t.Fatalf("expected row count 1, got %v", rowWrites)
	}

	if len(host.Notices) != 1 || host.Notices[0] != "Imported 1 rows × 2 columns." {
		t.Fatalf("unexpected notices %v", host.Notices)
	}
	if len(host.Alerts) != 0 {
		t.Fatalf("unexpected alerts %v", host.Alerts)
	}
}

func TestImportRejectsImages(t *testing.T) {
	assetsSvc := &stubAssets{meta: &assets.Metadata{
		URL:      "https://cdn/photo.png",
		MimeType: "image/png",
		Filename: "photo.png",
	}}
	svc := newTestImporter(assetsSvc, &stubFetcher{})
	host := importHost()

	err := svc.Import(context.Background(), host, fieldvalue.Upload("u1"))
	if !errors.Is(err, ErrNotSpreadsheet) {
		t.Fatalf("expected ErrNotSpreadsheet, got %v", err)
	}
	if len(host.Alerts) != 1 {
		t.Fatalf("failures must alert the editor, got %v", host.Alerts)
	}
	if len(host.WritesTo("sections.block_1.table_data")) != 0 {
		t.Fatal("failed imports must not touch the target field")
	}
}

func TestImportSurfacesFetchFailures(t *testing.T) {
	assetsSvc := &stubAssets{meta: &assets.Metadata{URL: "https://cdn/d.csv", MimeType: "text/csv"}}
	fetcher := &stubFetcher{err: &FetchError{Status: 403}}
	svc := newTestImporter(assetsSvc, fetcher)
	host := importHost()

	err := svc.Import(context.Background(), host, fieldvalue.Upload("u1"))
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Status != 403 {
		t.Fatalf("expected FetchError 403, got %v", err)
	}
	if len(host.Alerts) != 1 || !strings.Contains(host.Alerts[0], "Fetch failed: 403") {
		t.Fatalf("alert must carry the fetch status, got %v", host.Alerts)
	}
}

func TestImportNilReference(t *testing.T) {
	svc := newTestImporter(&stubAssets{}, &stubFetcher{})
	host := importHost()
	if err := svc.Import(context.Background(), host, nil); !errors.Is(err, ErrNoReference) {
		t.Fatalf("expected ErrNoReference, got %v", err)
	}
}

func TestImportUsesFetchedContentTypeWhenUnknown(t *testing.T) {
	assetsSvc := &stubAssets{meta: &assets.Metadata{URL: "https://cdn/d", Filename: "d"}}
	fetcher := &stubFetcher{data: []byte("a,b\n1,2\n"), contentType: "text/csv"}
	svc := newTestImporter(assetsSvc, fetcher)
	host := importHost()

	if err := svc.Import(context.Background(), host, fieldvalue.Upload("u1")); err != nil {
		t.Fatalf("import: %v", err)
	}
	writes := host.WritesTo("sections.block_1.table_data")
	var payload map[string]any
	if err := json.Unmarshal([]byte(writes[1].(string)), &payload); err != nil {
		t.Fatal(err)
	}
	meta := payload["meta"].(map[string]any)
	if meta["mime"] != "text/csv" {
		t.Fatalf("mime must fall back to the fetched content type, got %v", meta["mime"])
	}
}

func TestImportRowsShape(t *testing.T) {
	assetsSvc := &stubAssets{meta: &assets.Metadata{URL: "https://cdn/d.csv", MimeType: "text/csv", Filename: "d.csv"}}
	fetcher := &stubFetcher{data: []byte("Name,Amount\nAlpha,10\n")}
	svc := NewService(
		WithAssets(assetsSvc),
		WithFetcher(fetcher),
		WithShape(tabular.ShapeRows),
		WithMetaFieldKeys("columns_meta", "row_count"),
		WithClock(fixedClock()),
	)
	host := importHost()

	if err := svc.Import(context.Background(), host, fieldvalue.Upload("u1")); err != nil {
		t.Fatalf("import: %v", err)
	}
	writes := host.WritesTo("sections.block_1.table_data")
	var payload map[string]any
	if err := json.Unmarshal([]byte(writes[1].(string)), &payload); err != nil {
		t.Fatal(err)
	}
	if _, hasRows := payload["rows"]; !hasRows {
		t.Fatalf("rows shape must emit rows, got %v", payload)
	}
	// Columns meta only applies to the matrix layout.
	if len(host.WritesTo("sections.block_1.columns_meta")) != 0 {
		t.Fatal("columns meta must be skipped for the rows shape")
	}
	if len(host.WritesTo("sections.block_1.row_count")) != 1 {
		t.Fatal("row count still applies to the rows shape")
	}
}

func TestRemoveWritesRemovalPayloadAndClearsMeta(t *testing.T) {
	svc := newTestImporter(&stubAssets{}, &stubFetcher{})
	host := importHost()

	if err := svc.Remove(context.Background(), host); err != nil {
		t.Fatalf("remove: %v", err)
	}
	writes := host.WritesTo("sections.block_1.table_data")
	if len(writes) != 2 || writes[0] != nil {
		t.Fatalf("removal must clear-then-set, got %v", writes)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(writes[1].(string)), &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload["columns"].([]any)) != 0 || len(payload["data"].([]any)) != 0 {
		t.Fatalf("removal payload must be empty, got %v", payload)
	}
	if payload["meta"].(map[string]any)["removed"] != true {
		t.Fatalf("removal payload must flag removed, got %v", payload)
	}

	colWrites := host.WritesTo("sections.block_1.columns_meta")
	if len(colWrites) != 1 || colWrites[0] != nil {
		t.Fatalf("meta fields must clear on removal, got %v", colWrites)
	}
	if len(host.Notices) != 1 {
		t.Fatalf("removal must notify, got %v", host.Notices)
	}
}
