package caption

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

// GeminiDescriber asks a Gemini model to describe the place shown in an image.
type GeminiDescriber struct {
	svc    *generativelanguage.Service
	model  string
	prompt string
}

func NewGeminiDescriber(ctx context.Context, apiKey, model, prompt string, opts ...option.ClientOption) (*GeminiDescriber, error) {
	svc, err := generativelanguage.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("generativelanguage.NewService -> %w", err)
	}

	return &GeminiDescriber{
		svc:    svc,
		model:  model,
		prompt: prompt,
	}, nil
}

func (g *GeminiDescriber) Describe(ctx context.Context, image []byte) (string, error) {
	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{
			{
				Role: "user",
				Parts: []*generativelanguage.Part{
					{Text: g.prompt},
					{InlineData: &generativelanguage.Blob{
						MimeType: http.DetectContentType(image),
						Data:     base64.StdEncoding.EncodeToString(image),
					}},
				},
			},
		},
	}

	resp, err := g.svc.Models.GenerateContent("models/"+g.model, req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("g.svc.Models.GenerateContent -> %w", err)
	}

	var b strings.Builder
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			b.WriteString(p.Text)
		}
		break
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrNoCaption
	}

	return text, nil
}
