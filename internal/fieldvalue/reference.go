package fieldvalue

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-sheet-import/pkg/interfaces"
)

// Kind discriminates the supported asset reference shapes.
type Kind string

const (
	// KindUpload references an asset already registered with the CMS.
	KindUpload Kind = "upload"
	// KindURL references an externally hosted, fetchable URL.
	KindURL Kind = "url"
	// KindBlob references an in-browser binary file not yet persisted.
	KindBlob Kind = "blob"
)

// Reference is the tagged union over the asset shapes a field value can hold.
// Exactly one of UploadID, URL or Blob is populated, matching Kind.
type Reference struct {
	Kind     Kind
	UploadID string
	URL      string
	Blob     *interfaces.AssetBlob
}

// Upload returns an upload-id reference.
func Upload(id string) *Reference {
	return &Reference{Kind: KindUpload, UploadID: id}
}

// DirectURL returns a direct-URL reference.
func DirectURL(url string) *Reference {
	return &Reference{Kind: KindURL, URL: url}
}

// FromBlob returns an in-memory blob reference.
func FromBlob(blob *interfaces.AssetBlob) *Reference {
	return &Reference{Kind: KindBlob, Blob: blob}
}

// Equal reports whether two references identify the same asset.
func (r *Reference) Equal(other *Reference) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.Kind != other.Kind {
		return false
	}
	switch r.Kind {
	case KindUpload:
		return r.UploadID == other.UploadID
	case KindURL:
		return r.URL == other.URL
	case KindBlob:
		return r.Blob == other.Blob
	}
	return false
}

// Normalize interprets a raw field value as an asset reference. It accepts
// the shapes the host runtime produces: a map carrying upload_id, a map
// nesting upload.id, a bare URL string, or an array whose first element is
// one of those. It never panics; absence is reported through the bool.
func Normalize(raw any) (*Reference, bool) {
	if raw == nil {
		return nil, false
	}
	value := raw
	if list, ok := raw.([]any); ok {
		if len(list) == 0 || list[0] == nil {
			return nil, false
		}
		value = list[0]
	}
	switch typed := value.(type) {
	case map[string]any:
		if id := stringValue(typed["upload_id"]); id != "" {
			return Upload(id), true
		}
		if nested, ok := typed["upload"].(map[string]any); ok {
			if id := stringValue(nested["id"]); id != "" {
				return Upload(id), true
			}
		}
	case string:
		if strings.HasPrefix(typed, "http") {
			return DirectURL(typed), true
		}
	case *interfaces.AssetBlob:
		if typed != nil {
			return FromBlob(typed), true
		}
	}
	return nil, false
}

// FindDeep walks a value tree depth-first and returns the first asset
// reference it can normalize. Arrays are visited in order; map keys are
// visited in sorted order so resolution stays deterministic.
func FindDeep(raw any) (*Reference, bool) {
	if raw == nil {
		return nil, false
	}
	if ref, ok := Normalize(raw); ok {
		return ref, true
	}
	switch typed := raw.(type) {
	case []any:
		for _, item := range typed {
			if ref, ok := FindDeep(item); ok {
				return ref, true
			}
		}
	case map[string]any:
		for _, key := range sortedKeys(typed) {
			if ref, ok := FindDeep(typed[key]); ok {
				return ref, true
			}
		}
	}
	return nil, false
}

// FindBlobDeep performs the same traversal as FindDeep restricted to
// in-memory binary blobs.
func FindBlobDeep(raw any) (*interfaces.AssetBlob, bool) {
	if raw == nil {
		return nil, false
	}
	switch typed := raw.(type) {
	case *interfaces.AssetBlob:
		if typed != nil {
			return typed, true
		}
	case interfaces.AssetBlob:
		blob := typed
		return &blob, true
	case []any:
		for _, item := range typed {
			if blob, ok := FindBlobDeep(item); ok {
				return blob, true
			}
		}
	case map[string]any:
		for _, key := range sortedKeys(typed) {
			if blob, ok := FindBlobDeep(typed[key]); ok {
				return blob, true
			}
		}
	}
	return nil, false
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func stringValue(raw any) string {
	switch typed := raw.(type) {
	case string:
		return typed
	case float64:
		// Upload ids occasionally arrive as JSON numbers.
		return strconv.FormatFloat(typed, 'f', -1, 64)
	}
	return ""
}
