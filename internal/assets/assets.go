// Package assets stores uploaded images and exported documents and hands
// back durable URLs for them.
package assets

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
	ErrEmptyKey            = errors.New("storage key is required")
)

// Storage puts an object and returns a URL a browser can load it from.
type Storage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// ImageKey validates the extension of an uploaded file name and returns the
// object key (products/<uuid><ext>) and content type for it.
func ImageKey(filename string) (key, contentType string, err error) {
	ext := strings.ToLower(path.Ext(filename))
	ct, ok := imageTypes[ext]
	if !ok {
		return "", "", ErrExtensionNotAllowed
	}
	return "products/" + uuid.NewString() + ext, ct, nil
}

// ExportKey names an exported bill. The order id is optional.
func ExportKey(orderID string) string {
	prefix := sanitize(orderID)
	if prefix == "" {
		prefix = uuid.NewString()
	}
	return "exports/" + prefix + "-" + uuid.NewString() + ".pdf"
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
