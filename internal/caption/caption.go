package caption

import (
	"context"
	"errors"
)

var ErrNoCaption = errors.New("caption service returned no text")

// Describer turns image bytes into a natural language description.
type Describer interface {
	Describe(ctx context.Context, image []byte) (string, error)
}

// Unavailable is used when no caption backend is configured. Every call fails,
// so callers store their fallback text.
type Unavailable struct{}

func (Unavailable) Describe(context.Context, []byte) (string, error) {
	return "", errors.New("caption service is not configured")
}
