package domain

import "github.com/google/uuid"

// NewToken mints the opaque identifier that ties a generated image to a
// later checkout and download. Random UUIDv4, so concurrent calls never
// collide; consumers must not depend on the format.
func NewToken() string {
	return uuid.NewString()
}
