package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	sheetimport "github.com/goliatone/go-sheet-import"
	"github.com/goliatone/go-sheet-import/internal/assets"
	"github.com/goliatone/go-sheet-import/internal/di"
	"github.com/goliatone/go-sheet-import/internal/fieldvalue"
	"github.com/goliatone/go-sheet-import/pkg/testsupport"
)

type memoryFetcher struct {
	data        []byte
	contentType string
}

func (m *memoryFetcher) Fetch(context.Context, string) ([]byte, string, error) {
	return m.data, m.contentType, nil
}

type memoryAssets struct {
	meta *assets.Metadata
}

func (m *memoryAssets) EnsureUploaded(_ context.Context, ref *fieldvalue.Reference) (*fieldvalue.Reference, error) {
	return ref, nil
}

func (m *memoryAssets) ResolveMetadata(context.Context, *fieldvalue.Reference) (*assets.Metadata, error) {
	return m.meta, nil
}

func main() {
	ctx := context.Background()

	cfg := sheetimport.DefaultConfig()
	cfg.Fields.ColumnsMetaAPIKey = "columns_meta"
	cfg.Fields.RowCountAPIKey = "row_count"

	module, err := sheetimport.New(cfg,
		di.WithAssetsService(&memoryAssets{meta: &assets.Metadata{
			URL:      "https://cdn.example.com/quarterly.csv",
			MimeType: "text/csv",
			Filename: "quarterly.csv",
		}}),
		di.WithFetcher(&memoryFetcher{
			data:        []byte("Region,Q1,Q2\nEMEA,120,150\nAPAC,90,140\nAMER,200,210\n"),
			contentType: "text/csv",
		}),
	)
	if err != nil {
		log.Fatalf("module: %v", err)
	}

	host := testsupport.NewFakeHost(map[string]any{
		"sections": map[string]any{
			"block_1": map[string]any{
				"table_data": "",
				"sourcefile": map[string]any{"url": "https://cdn.example.com/quarterly.csv"},
			},
		},
	}, "sections.block_1.table_data")

	if err := module.ImportNow(ctx, host); err != nil {
		log.Fatalf("import: %v", err)
	}

	fmt.Println("== import ==")
	for _, notice := range host.Notices {
		fmt.Println("notice:", notice)
	}
	writes := host.WritesTo("sections.block_1.table_data")
	if encoded, ok := writes[len(writes)-1].(string); ok {
		var payload map[string]any
		if err := json.Unmarshal([]byte(encoded), &payload); err != nil {
			log.Fatalf("decode payload: %v", err)
		}
		fmt.Println("columns:", payload["columns"])
		fmt.Println("rows imported:", len(payload["data"].([]any)))
	}

	fmt.Println("\n== watch ==")
	stop, err := module.Watch(ctx, host)
	if err != nil {
		log.Fatalf("watch: %v", err)
	}
	time.Sleep(2 * time.Second)
	stop()
	fmt.Println("poller stopped after baseline scan")

	fmt.Println("\n== chart ==")
	chartHost := testsupport.NewFakeHost(map[string]any{
		"revenue_chart": map[string]any{
			"itemType": map[string]any{"api_key": "chart"},
			"attributes": map[string]any{
				"title":      "Quarterly revenue",
				"chart_type": "bar_stacked",
				"labels":     "Q1, Q2",
				"data": []any{
					map[string]any{"attributes": map[string]any{"label": "EMEA", "values": "120,150"}},
					map[string]any{"attributes": map[string]any{"label": "APAC", "values": "90,140"}},
				},
			},
		},
	}, "revenue_chart")

	chart, ok := module.ChartBlock(chartHost)
	if !ok {
		log.Fatal("expected a chart block")
	}
	fmt.Printf("%s (%s, renderer %s, stacked %v)\n", chart.Title, chart.Type, chart.Type.Renderer(), chart.Type.Stacked())
	for _, ds := range chart.Datasets {
		fmt.Printf("  %s: %v\n", ds.Label, ds.Values)
	}

	if err := module.RemoveNow(ctx, host); err != nil {
		log.Fatalf("remove: %v", err)
	}
	fmt.Println("\n== remove ==")
	fmt.Println("notice:", host.Notices[len(host.Notices)-1])
}
