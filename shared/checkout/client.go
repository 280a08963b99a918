// Package checkout adapts Stripe hosted checkout to the
// domain.CheckoutProvider contract. The token is the correlation id:
// it goes into the session's client_reference_id, its metadata, and the
// success redirect URL, and must come back unmodified.
package checkout

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/retouch-app/retouch/edit/domain"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

var _ domain.CheckoutProvider = (*Client)(nil)

type Client struct {
	priceID string
	baseURL string
}

// NewClient configures the Stripe SDK. Both the secret key and the
// price are required; failing here keeps misconfiguration from
// surfacing as a cryptic session-create error later.
func NewClient(secretKey, priceID, baseURL string) (*Client, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("checkout: secret key is not configured")
	}
	if priceID == "" {
		return nil, fmt.Errorf("checkout: price id is not configured")
	}

	stripe.Key = secretKey

	return &Client{
		priceID: priceID,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// CreateSession opens a hosted payment session for one download and
// returns the redirect URL.
func (c *Client) CreateSession(ctx context.Context, token, originalName string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("checkout requires a token: %w", domain.ErrInvalidInput)
	}

	successURL := fmt.Sprintf("%s/success?token=%s", c.baseURL, url.QueryEscape(token))
	if originalName != "" {
		successURL += "&name=" + url.QueryEscape(originalName)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(c.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(c.baseURL + "/"),
		ClientReferenceID: stripe.String(token),
	}
	params.Context = ctx
	params.AddMetadata("token", token)
	if originalName != "" {
		params.AddMetadata("originalName", originalName)
	}

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("checkout: failed to create session: %v: %w", err, domain.ErrUpstream)
	}

	return sess.URL, nil
}
