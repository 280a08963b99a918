package domain

import "context"

// EditedImage is what the image model hands back for one edit call.
type EditedImage struct {
	Bytes []byte
	Mime  string
}

// ImageEditor is the external AI collaborator. Implementations must
// translate their transport and API errors into the sentinels above
// (ErrNoImage, ErrRateLimited, ErrUpstream) before returning.
type ImageEditor interface {
	EditImage(ctx context.Context, image []byte, mime, instruction string) (*EditedImage, error)
}

// CheckoutProvider is the external payment collaborator. It creates a
// hosted payment session correlated by token and returns the URL to
// redirect the buyer to. The token must survive the round trip
// unmodified.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, token, originalName string) (string, error)
}
