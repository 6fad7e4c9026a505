// Package uploads stores member documents and expense bills in the
// configured object store and hands back the stored path. Paths are
// grouped by collection and person so an admin browsing the bucket can
// find one member's files in one place:
//
//	members/asha_rao/aadhar_20260301T120000_1f8a2b3c-scan.pdf
//	expenses/asha_rao/bill_20260301T120000_9d4e5f60-receipt.jpg
package uploads

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
)

// Info describes a stored file.
type Info struct {
	Path        string
	FileName    string
	Size        int64
	ContentType string
}

// File stores the reader under
// <group>/<person>/<field>_<timestamp>_<uuid8>-<name> and returns its
// path. The uuid chunk keeps same-second uploads of one file distinct.
// person and field are folded into safe path segments; the original
// filename survives, sanitized.
func File(ctx context.Context, store storage.Store, group, person, field, filename string, reader io.Reader, size int64, contentType string) (Info, error) {
	now := time.Now().UTC()
	name := fmt.Sprintf("%s_%s_%s-%s",
		Segment(field),
		now.Format("20060102T150405"),
		uuid.New().String()[:8],
		SanitizeFilename(filename))
	path := filepath.ToSlash(filepath.Join(Segment(group), Segment(person), name))

	opts := &storage.PutOptions{ContentType: contentType}
	if err := store.Put(ctx, path, reader, opts); err != nil {
		return Info{}, fmt.Errorf("upload %s: %w", path, err)
	}

	return Info{
		Path:        path,
		FileName:    filename,
		Size:        size,
		ContentType: contentType,
	}, nil
}

// Segment converts free text into a lowercase path segment: spaces
// become underscores and anything outside [a-z0-9._-] is dropped.
func Segment(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			b.WriteByte('_')
		case isAllowedFilenameChar(c):
			b.WriteByte(c)
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

// SanitizeFilename strips path components and replaces characters that
// would be awkward in object keys. Long names are truncated with the
// extension preserved.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	// Base maps "" and bare separators to "." and "/".
	if filename == "." || filename == "/" {
		filename = ""
	}

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
