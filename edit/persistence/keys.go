package persistence

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/retouch-app/retouch/edit/domain"
)

const keyPrefix = "images/"

// metadata is the sidecar record written next to every image. It is
// rewritten on every Put so metadata can be attached to bytes that were
// placed earlier.
type metadata struct {
	Mime         string `json:"mime"`
	OriginalName string `json:"originalName,omitempty"`
	CreatedAt    int64  `json:"createdAt"`
}

// imageKey derives the physical key for the payload: images/<token>.<ext>.
// Deterministic in (token, mime) so readers can resolve it by prefix.
func imageKey(token, mime string) string {
	return keyPrefix + token + "." + domain.ExtForMime(mime)
}

// metaKey derives the physical key for the sidecar: images/<token>.json.
func metaKey(token string) string {
	return keyPrefix + token + ".json"
}

// tokenPrefix is the shared prefix of a token's image and sidecar keys.
func tokenPrefix(token string) string {
	return keyPrefix + token + "."
}

// isMetaKey distinguishes the sidecar from the payload under a token's
// prefix; the one non-json entry is the image.
func isMetaKey(key string) bool {
	return strings.HasSuffix(key, ".json")
}

func encodeMetadata(m metadata) ([]byte, error) {
	out, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return out, nil
}

func decodeMetadata(raw []byte) (metadata, error) {
	var m metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return metadata{}, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return m, nil
}
