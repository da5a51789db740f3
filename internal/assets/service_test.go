package assets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-sheet-import/internal/fieldvalue"
	"github.com/goliatone/go-sheet-import/pkg/interfaces"
)

type stubAPI struct {
	createID  string
	createErr error
	created   []interfaces.AssetBlob

	find   func(id, scope string) (*interfaces.UploadMeta, error)
	scopes []string
}

func (s *stubAPI) CreateFromBlob(_ context.Context, blob interfaces.AssetBlob) (string, error) {
	s.created = append(s.created, blob)
	return s.createID, s.createErr
}

func (s *stubAPI) FindUpload(_ context.Context, id, scope string) (*interfaces.UploadMeta, error) {
	s.scopes = append(s.scopes, scope)
	return s.find(id, scope)
}

// fakeTimeline drives the retry loop deterministically: sleeping advances
// the clock.
type fakeTimeline struct {
	now time.Time
}

func (f *fakeTimeline) clock() time.Time { return f.now }

func (f *fakeTimeline) sleep(_ context.Context, d time.Duration) error {
	f.now = f.now.Add(d)
	return nil
}

func newTestService(api interfaces.AssetAPI, tl *fakeTimeline, opts ...ServiceOption) Service {
	base := []ServiceOption{
		WithClock(tl.clock),
		WithSleep(tl.sleep),
	}
	return NewService(api, append(base, opts...)...)
}

func TestEnsureUploadedPassesThroughUploads(t *testing.T) {
	svc := NewService(nil)
	ref := fieldvalue.Upload("u1")
	got, err := svc.EnsureUploaded(context.Background(), ref)
	if err != nil || got != ref {
		t.Fatalf("upload refs pass through, got %v err=%v", got, err)
	}

	url := fieldvalue.DirectURL("https://example.com/a.csv")
	got, err = svc.EnsureUploaded(context.Background(), url)
	if err != nil || got != url {
		t.Fatalf("url refs pass through, got %v err=%v", got, err)
	}
}

func TestEnsureUploadedBlobWithoutToken(t *testing.T) {
	svc := NewService(nil)
	ref := fieldvalue.FromBlob(&interfaces.AssetBlob{Filename: "a.csv"})
	if _, err := svc.EnsureUploaded(context.Background(), ref); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestEnsureUploadedPromotesBlob(t *testing.T) {
	api := &stubAPI{createID: "new-upload"}
	svc := NewService(api)
	blob := &interfaces.AssetBlob{Filename: "a.csv", Size: 3, Data: []byte("a,b")}

	got, err := svc.EnsureUploaded(context.Background(), fieldvalue.FromBlob(blob))
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if got.Kind != fieldvalue.KindUpload || got.UploadID != "new-upload" {
		t.Fatalf("expected promoted upload, got %+v", got)
	}
	if len(api.created) != 1 || api.created[0].Filename != "a.csv" {
		t.Fatalf("blob must reach the API, got %+v", api.created)
	}
}

func TestEnsureUploadedNilReference(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.EnsureUploaded(context.Background(), nil); !errors.Is(err, ErrNoReference) {
		t.Fatalf("expected ErrNoReference, got %v", err)
	}
}

func TestResolveMetadataDirectURL(t *testing.T) {
	svc := NewService(nil)
	meta, err := svc.ResolveMetadata(context.Background(), fieldvalue.DirectURL("https://cdn.example.com/files/My%20Data.xlsx"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if meta.URL != "https://cdn.example.com/files/My%20Data.xlsx" {
		t.Fatalf("unexpected url %q", meta.URL)
	}
	if meta.Filename != "My Data.xlsx" {
		t.Fatalf("filename must come from the url path, got %q", meta.Filename)
	}
}

func TestResolveMetadataUploadReady(t *testing.T) {
	tl := &fakeTimeline{now: time.Unix(1000, 0)}
	api := &stubAPI{
		find: func(id, scope string) (*interfaces.UploadMeta, error) {
			return &interfaces.UploadMeta{URL: "https://cdn/x.xlsx", MimeType: "application/vnd.ms-excel", Filename: "x.xlsx"}, nil
		},
	}
	svc := newTestService(api, tl)
	meta, err := svc.ResolveMetadata(context.Background(), fieldvalue.Upload("u1"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if meta.URL != "https://cdn/x.xlsx" || meta.Filename != "x.xlsx" {
		t.Fatalf("unexpected metadata %+v", meta)
	}
}

func TestResolveMetadataScopeFallback(t *testing.T) {
	tl := &fakeTimeline{now: time.Unix(1000, 0)}
	api := &stubAPI{
		find: func(id, scope string) (*interfaces.UploadMeta, error) {
			if scope == "staging" {
				return nil, ErrNotFound
			}
			return &interfaces.UploadMeta{URL: "https://cdn/x.xlsx"}, nil
		},
	}
	svc := newTestService(api, tl, WithEnvironment("staging"))
	meta, err := svc.ResolveMetadata(context.Background(), fieldvalue.Upload("u1"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if meta.URL == "" {
		t.Fatal("expected metadata after fallback")
	}
	if len(api.scopes) < 2 || api.scopes[0] != "staging" || api.scopes[1] != "" {
		t.Fatalf("expected environment scope first then global, got %v", api.scopes)
	}
}

func TestResolveMetadataWaitsForReadiness(t *testing.T) {
	tl := &fakeTimeline{now: time.Unix(1000, 0)}
	calls := 0
	api := &stubAPI{
		find: func(id, scope string) (*interfaces.UploadMeta, error) {
			calls++
			if calls < 3 {
				// Upload exists but the CDN URL is not assigned yet.
				return &interfaces.UploadMeta{}, nil
			}
			return &interfaces.UploadMeta{URL: "https://cdn/ready.xlsx"}, nil
		},
	}
	svc := newTestService(api, tl)
	meta, err := svc.ResolveMetadata(context.Background(), fieldvalue.Upload("u1"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if meta.URL != "https://cdn/ready.xlsx" || calls != 3 {
		t.Fatalf("expected third lookup to succeed, calls=%d meta=%+v", calls, meta)
	}
}

func TestResolveMetadataReadinessWindowExpires(t *testing.T) {
	tl := &fakeTimeline{now: time.Unix(1000, 0)}
	api := &stubAPI{
		find: func(id, scope string) (*interfaces.UploadMeta, error) {
			return &interfaces.UploadMeta{}, nil
		},
	}
	svc := newTestService(api, tl, WithRetryInterval(time.Second), WithReadyWindow(3*time.Second))
	if _, err := svc.ResolveMetadata(context.Background(), fieldvalue.Upload("u1")); !errors.Is(err, ErrUploadUnready) {
		t.Fatalf("expected ErrUploadUnready, got %v", err)
	}
}

func TestResolveMetadataAuthAborts(t *testing.T) {
	tl := &fakeTimeline{now: time.Unix(1000, 0)}
	api := &stubAPI{
		find: func(id, scope string) (*interfaces.UploadMeta, error) {
			return nil, ErrAuth
		},
	}
	svc := newTestService(api, tl)
	if _, err := svc.ResolveMetadata(context.Background(), fieldvalue.Upload("u1")); !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
	if len(api.scopes) != 1 {
		t.Fatalf("auth failures must not retry, got %d lookups", len(api.scopes))
	}
}

func TestResolveMetadataWithoutAPI(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.ResolveMetadata(context.Background(), fieldvalue.Upload("u1")); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}
