// Package media owns the append-only directory where downloaded chat
// attachments live. Filenames are generated from timestamp plus
// message id so concurrent writers never target the same path, and
// every name offered for read-back is checked against a safe charset
// before it touches the filesystem.
package media

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrUnsafeFilename rejects read requests whose name falls outside
// the charset this store generates.
var ErrUnsafeFilename = errors.New("filename contains unsafe characters")

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Filename builds the collision-resistant name for one message's
// attachment. The message id is sanitized to the same charset the
// read path accepts.
func Filename(ts time.Time, messageID, mimeType string) string {
	return fmt.Sprintf("%d-%s%s", ts.UnixMilli(), sanitize(messageID), extensionFor(mimeType))
}

// Save writes data under name and returns the name back.
func (s *Store) Save(name string, data []byte) (string, error) {
	if !SafeName(name) {
		return "", ErrUnsafeFilename
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}
	return name, nil
}

// Open returns the stored bytes and the content type derived from the
// file extension.
func (s *Store) Open(name string) ([]byte, string, error) {
	if !SafeName(name) {
		return nil, "", ErrUnsafeFilename
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, "", fmt.Errorf("read media file: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

// SafeName reports whether name is restricted to the charset this
// store generates: letters, digits, dot, dash, underscore, with no
// way to climb out of the media dir.
func SafeName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}

func sanitize(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "audio/ogg", "audio/ogg; codecs=opus":
		return ".ogg"
	case "audio/mpeg":
		return ".mp3"
	case "video/mp4":
		return ".mp4"
	case "application/pdf":
		return ".pdf"
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
