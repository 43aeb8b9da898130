package media

import (
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"
	"unicode"
)

const maxNameLength = 100

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DetectImageType sniffs the content type from the first 512 bytes and
// rejects anything that is not an allowed image format.
func DetectImageType(data []byte) (string, error) {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}

	contentType := http.DetectContentType(head)
	if _, ok := allowedTypes[contentType]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	return contentType, nil
}

// Namer builds storage keys. Its timestamps strictly increase within a process,
// so one user uploading twice in the same instant still gets two keys.
type Namer struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewNamer() *Namer {
	return &Namer{now: time.Now}
}

func (n *Namer) stamp() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	ts := n.now().UnixNano()
	if ts <= n.last {
		ts = n.last + 1
	}
	n.last = ts

	return ts
}

func (n *Namer) ContestPhotoKey(contestID, userID uint, original string) string {
	return fmt.Sprintf("%s/photo_%d_%d_%s", ContestDir(contestID), userID, n.stamp(), SanitizeName(original))
}

func (n *Namer) PhotoKey(userID uint, original string) string {
	return fmt.Sprintf("%s/%d_%d_%s", PhotoDir, userID, n.stamp(), SanitizeName(original))
}

// SanitizeName reduces a client supplied filename to a safe base name.
func SanitizeName(original string) string {
	name := path.Base(strings.ReplaceAll(original, "\\", "/"))
	name = strings.TrimLeft(name, ".")

	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	name = b.String()
	if runes := []rune(name); len(runes) > maxNameLength {
		name = string(runes[len(runes)-maxNameLength:])
	}
	if name == "" {
		return "image"
	}

	return name
}
