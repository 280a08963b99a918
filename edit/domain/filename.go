package domain

import (
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultBase is the download filename used when neither the request
// nor the stored record contributes a usable name.
const DefaultBase = "photo-edited"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// BuildFilename derives the attachment filename for a download.
// Priority: a client-supplied base (sanitized), then the uploader's
// original name (extension stripped, sanitized, "-edited" appended),
// then DefaultBase. The extension always comes from the stored mime.
// Pure and total: bad input degrades to the default, never errors.
func BuildFilename(requestedBase, originalName, mime string) string {
	base := ""

	switch {
	case requestedBase != "":
		base = sanitize(requestedBase)
	case originalName != "":
		stem := strings.TrimSuffix(originalName, filepath.Ext(originalName))
		if s := sanitize(stem); s != "" {
			base = s + "-edited"
		}
	}

	if base == "" {
		base = DefaultBase
	}

	return base + "." + ExtForMime(mime)
}

func sanitize(s string) string {
	return unsafeChars.ReplaceAllString(s, "")
}
