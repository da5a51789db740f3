package interfaces

import "context"

// AssetAPI is the outbound contract against the CMS content-management API.
// Implementations handle transport, authentication and scoping; callers deal
// in upload ids and metadata only.
type AssetAPI interface {
	// CreateFromBlob registers a new binary asset and returns its upload id.
	CreateFromBlob(ctx context.Context, blob AssetBlob) (string, error)
	// FindUpload fetches metadata for an existing upload. Scope selects the
	// project environment to query; an empty scope targets the global
	// (primary) environment.
	FindUpload(ctx context.Context, id string, scope string) (*UploadMeta, error)
}

// AssetBlob carries an in-memory binary file that has not been persisted to
// the media library yet.
type AssetBlob struct {
	Filename string
	MimeType string
	Size     int64
	// LastModified is a millisecond timestamp when known, zero otherwise.
	LastModified int64
	Data         []byte
}

// UploadMeta describes a media-library asset. URL may be empty while the
// upload is still being processed by the CMS.
type UploadMeta struct {
	URL      string
	MimeType string
	Filename string
}
