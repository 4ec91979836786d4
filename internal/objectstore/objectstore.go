// Package objectstore puts uploaded documents into a named bucket and
// resolves their public URL.
package objectstore

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
)

// Store is a flat bucket/path object store.
type Store interface {
	Put(ctx context.Context, bucket, path string, r io.Reader, contentType string) error
	PublicURL(bucket, path string) string
}

var ErrInvalidPath = errors.New("objectstore: invalid object path")

// cleanPath rejects absolute paths and parent references and returns path
// with redundant slashes removed.
func cleanPath(p string) (string, error) {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return "", ErrInvalidPath
	}
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, s := range parts {
		switch s {
		case "":
			continue
		case ".", "..":
			return "", ErrInvalidPath
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return "", ErrInvalidPath
	}
	return strings.Join(out, "/"), nil
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}
