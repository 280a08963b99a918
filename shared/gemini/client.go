// Package gemini adapts the Gemini image model to the domain.ImageEditor
// contract. All SDK and transport errors are translated into domain
// sentinels here; nothing genai-specific escapes this package.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/retouch-app/retouch/edit/domain"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash-image-preview"

var _ domain.ImageEditor = (*Client)(nil)

type Client struct {
	client *genai.Client
	model  string
}

// NewClient builds the editor. A missing API key is a configuration
// fault caught here, at first use, not a generic downstream failure.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is not configured")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to build client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

// EditImage sends the instruction plus the image inline and extracts
// the first image-bearing part of the response.
func (c *Client) EditImage(ctx context.Context, image []byte, mime, instruction string) (*domain.EditedImage, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(instruction),
			genai.NewPartFromBytes(image, mime),
		}, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return nil, translateError(err)
	}

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				outMime := part.InlineData.MIMEType
				if outMime == "" {
					outMime = domain.MimeJPEG
				}
				return &domain.EditedImage{
					Bytes: part.InlineData.Data,
					Mime:  outMime,
				}, nil
			}
		}
	}

	return nil, fmt.Errorf("gemini: response had no inline image part: %w", domain.ErrNoImage)
}

// translateError maps SDK failures onto the domain taxonomy.
func translateError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			return fmt.Errorf("gemini: rate limited: %w", domain.ErrRateLimited)
		}
		return fmt.Errorf("gemini: call failed with status %d: %s: %w", apiErr.Code, apiErr.Message, domain.ErrUpstream)
	}
	return fmt.Errorf("gemini: call failed: %v: %w", err, domain.ErrUpstream)
}
