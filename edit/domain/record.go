package domain

import (
	"context"
	"errors"
	"time"
)

const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeWebP = "image/webp"
)

// Sentinel errors for the edit pipeline. Every collaborator and store
// failure is translated into one of these before it crosses a package
// boundary; the REST layer maps them to status codes.
var (
	// ErrInvalidInput means the caller's request was malformed or incomplete.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound covers both records that never existed and records past
	// their retention window. The two cases are deliberately
	// indistinguishable to callers.
	ErrNotFound = errors.New("record not found or expired")

	// ErrUpstream means a remote collaborator (the image model or a blob
	// host) failed or returned an unusable response.
	ErrUpstream = errors.New("upstream unavailable")

	// ErrStorage means the record store itself is unreachable or
	// misconfigured. Not user-recoverable.
	ErrStorage = errors.New("storage unavailable")

	// ErrNoImage means the model answered but produced no image part.
	// Retryable by the user, distinct from a server fault.
	ErrNoImage = errors.New("model returned no image")

	// ErrRateLimited means the model rejected the call for quota reasons.
	ErrRateLimited = errors.New("upstream rate limited")
)

// Record is the persisted result of one edit, addressed by its token.
// Exactly one of Bytes or URL is populated: Bytes holds the payload
// inline, URL references bytes hosted by a remote blob store that the
// retrieval gateway fetches lazily.
type Record struct {
	Bytes        []byte
	URL          string
	Mime         string
	OriginalName string
	CreatedAt    time.Time
}

// Remote reports whether the payload lives behind a remote reference.
func (r *Record) Remote() bool {
	return r.URL != ""
}

// Handle identifies where a Put landed. Callers treat it as opaque; it
// exists for logging and tests.
type Handle struct {
	ImageKey string
	MetaKey  string
}

// RecordStore persists edited images and their metadata under a token.
// Implementations are selected once at startup; see edit/persistence.
type RecordStore interface {
	// Put persists data and metadata for token. A concurrent Get sees
	// either nothing or the complete record. Passing nil data rewrites
	// the metadata sidecar for an existing record without touching the
	// payload; nil data for an unknown token is ErrInvalidInput.
	Put(ctx context.Context, token string, data []byte, mime, originalName string) (*Handle, error)

	// Get resolves a token. The returned record always carries a
	// concrete Mime, and inline bytes are an independent copy the
	// caller may hold onto. Unknown tokens yield ErrNotFound; a torn
	// record (bytes without metadata or vice versa) fails closed the
	// same way.
	Get(ctx context.Context, token string) (*Record, error)

	// Close releases any backing resources.
	Close() error
}

// NormalizeMime collapses an untrusted content type onto the closed set
// this system stores. Anything unrecognized, including the empty
// string, degrades to image/jpeg; that is the one documented fallback.
func NormalizeMime(mime string) string {
	switch mime {
	case MimePNG, MimeWebP, MimeJPEG:
		return mime
	default:
		return MimeJPEG
	}
}

// ExtForMime maps a normalized mime to a filename extension. The
// extension is always derived here, never taken from user input.
func ExtForMime(mime string) string {
	switch mime {
	case MimePNG:
		return "png"
	case MimeWebP:
		return "webp"
	default:
		return "jpg"
	}
}

// CloneBytes returns a standalone copy of b. Stores and the retrieval
// gateway use it to honor the copy-on-read contract: no caller ever
// receives an alias into a shared buffer.
func CloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
