package media

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrInvalidKey      = errors.New("invalid storage key")
)

// Store holds uploaded images addressed by slash separated keys such as
// contests/12/photo_3_1718000000000000000_beach.jpg.
type Store interface {
	// Save writes data under key. The object is durable when Save returns.
	Save(ctx context.Context, key string, data []byte) error
	// Delete removes key. A missing object is not an error.
	Delete(ctx context.Context, key string) error
	// DeleteDir removes every object under prefix.
	DeleteDir(ctx context.Context, prefix string) error
}

func ContestDir(contestID uint) string {
	return fmt.Sprintf("contests/%d", contestID)
}

const PhotoDir = "photos"
