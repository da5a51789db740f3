package assets

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-sheet-import/internal/fieldvalue"
	"github.com/goliatone/go-sheet-import/internal/logging"
	"github.com/goliatone/go-sheet-import/pkg/interfaces"
)

const (
	defaultRetryInterval = 300 * time.Millisecond
	defaultReadyWindow   = 6500 * time.Millisecond
)

// Metadata is the resolved access detail for an asset reference.
type Metadata struct {
	URL      string
	MimeType string
	Filename string
}

// Service promotes and resolves asset references against the management API.
type Service interface {
	// EnsureUploaded guarantees the reference is fetchable: upload-id and
	// direct-URL references pass through unchanged, an in-memory blob is
	// created in the media library and replaced by its upload id.
	EnsureUploaded(ctx context.Context, ref *fieldvalue.Reference) (*fieldvalue.Reference, error)
	// ResolveMetadata returns the URL, MIME type and filename for a
	// reference, absorbing eventual-consistency delays with a bounded
	// retry loop and an environment-then-global scope fallback.
	ResolveMetadata(ctx context.Context, ref *fieldvalue.Reference) (*Metadata, error)
}

// ServiceOption customises the asset service.
type ServiceOption func(*service)

// WithEnvironment scopes upload lookups to a project environment before
// falling back to the global scope.
func WithEnvironment(environment string) ServiceOption {
	return func(s *service) {
		s.environment = strings.TrimSpace(environment)
	}
}

// WithRetryInterval overrides the pause between readiness lookups.
func WithRetryInterval(interval time.Duration) ServiceOption {
	return func(s *service) {
		if interval > 0 {
			s.retryInterval = interval
		}
	}
}

// WithReadyWindow overrides the wall-clock bound on readiness polling.
func WithReadyWindow(window time.Duration) ServiceOption {
	return func(s *service) {
		if window > 0 {
			s.readyWindow = window
		}
	}
}

// WithClock injects the time source used to bound the retry window.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithSleep injects the pause function used between retries.
func WithSleep(sleep func(context.Context, time.Duration) error) ServiceOption {
	return func(s *service) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithLogger injects the assets module logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	api           interfaces.AssetAPI
	environment   string
	retryInterval time.Duration
	readyWindow   time.Duration
	now           func() time.Time
	sleep         func(context.Context, time.Duration) error
	logger        interfaces.Logger
}

// NewService constructs the asset service. A nil api means no management
// token was configured: direct URLs still resolve, blob promotion and
// upload lookups fail with ErrMissingToken.
func NewService(api interfaces.AssetAPI, opts ...ServiceOption) Service {
	s := &service{
		api:           api,
		retryInterval: defaultRetryInterval,
		readyWindow:   defaultReadyWindow,
		now:           time.Now,
		sleep:         sleepContext,
		logger:        logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) EnsureUploaded(ctx context.Context, ref *fieldvalue.Reference) (*fieldvalue.Reference, error) {
	if ref == nil {
		return nil, ErrNoReference
	}
	switch ref.Kind {
	case fieldvalue.KindUpload, fieldvalue.KindURL:
		return ref, nil
	case fieldvalue.KindBlob:
		if s.api == nil {
			return nil, ErrMissingToken
		}
		if ref.Blob == nil {
			return nil, ErrNoReference
		}
		id, err := s.api.CreateFromBlob(ctx, *ref.Blob)
		if err != nil {
			if errors.Is(err, ErrAuth) || errors.Is(err, ErrMissingToken) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrUpload, err)
		}
		s.logger.Info("assets.blob_promoted", "upload_id", id, "filename", ref.Blob.Filename)
		return fieldvalue.Upload(id), nil
	default:
		return nil, ErrNoReference
	}
}

func (s *service) ResolveMetadata(ctx context.Context, ref *fieldvalue.Reference) (*Metadata, error) {
	if ref == nil {
		return nil, ErrNoReference
	}
	switch ref.Kind {
	case fieldvalue.KindURL:
		return &Metadata{
			URL:      ref.URL,
			Filename: filenameFromURL(ref.URL),
		}, nil
	case fieldvalue.KindUpload:
		return s.resolveUpload(ctx, ref.UploadID)
	default:
		return nil, ErrNoReference
	}
}

// resolveUpload polls the management API until the upload exposes a public
// URL or the readiness window elapses. Lookups start in the configured
// environment scope; a not-found answer drops to the global scope for the
// remainder of the window.
func (s *service) resolveUpload(ctx context.Context, id string) (*Metadata, error) {
	if s.api == nil {
		return nil, ErrMissingToken
	}
	strategy := NewScopeStrategy(s.environment)
	deadline := s.now().Add(s.readyWindow)
	var lastErr error

	for {
		meta, err := s.api.FindUpload(ctx, id, string(strategy.Current()))
		switch {
		case err == nil && meta != nil && meta.URL != "":
			return &Metadata{URL: meta.URL, MimeType: meta.MimeType, Filename: meta.Filename}, nil
		case errors.Is(err, ErrAuth):
			return nil, err
		case errors.Is(err, ErrNotFound):
			if strategy.Advance() {
				s.logger.Debug("assets.scope_fallback", "upload_id", id, "scope", string(strategy.Current()))
				continue
			}
			lastErr = err
		case err != nil:
			lastErr = err
		}

		if !s.now().Before(deadline) {
			if lastErr != nil {
				return nil, fmt.Errorf("%w: %v", ErrUploadUnready, lastErr)
			}
			return nil, ErrUploadUnready
		}
		if err := s.sleep(ctx, s.retryInterval); err != nil {
			return nil, err
		}
	}
}

func filenameFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	segments := strings.Split(parsed.Path, "/")
	if len(segments) == 0 {
		return ""
	}
	name := segments[len(segments)-1]
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
