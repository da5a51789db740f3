package poller

import (
	"fmt"

	"github.com/goliatone/go-sheet-import/internal/fieldvalue"
)

// SignatureEmpty marks a watched field holding no source file. It is a real
// signature, not an absence: transitioning to it from a file signature is a
// removal, and transitioning away from it is a fresh import.
const SignatureEmpty = "null"

// Signature derives a stable identity string for an asset reference. Two
// references with the same signature denote the same source file, so a
// signature change is the import trigger.
func Signature(ref *fieldvalue.Reference) string {
	if ref == nil {
		return SignatureEmpty
	}
	switch ref.Kind {
	case fieldvalue.KindUpload:
		return "upload:" + ref.UploadID
	case fieldvalue.KindURL:
		return "url:" + ref.URL
	case fieldvalue.KindBlob:
		if ref.Blob == nil {
			return SignatureEmpty
		}
		return fmt.Sprintf("blob:%s:%d:%d", ref.Blob.Filename, ref.Blob.Size, ref.Blob.LastModified)
	default:
		return SignatureEmpty
	}
}
