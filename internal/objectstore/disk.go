package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Disk keeps objects under Root/<bucket>/<path> and serves them from
// BaseURL/files/<bucket>/<path>.
type Disk struct {
	Root    string
	BaseURL string
}

func NewDisk(root, baseURL string) *Disk {
	return &Disk{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (d *Disk) Put(ctx context.Context, bucket, path string, r io.Reader, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := cleanPath(bucket)
	if err != nil || strings.Contains(b, "/") {
		return ErrInvalidPath
	}
	p, err := cleanPath(path)
	if err != nil {
		return err
	}

	full := filepath.Join(d.Root, b, filepath.FromSlash(p))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	// O_EXCL: an object path is written once.
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return fmt.Errorf("write object: %w", err)
	}
	return f.Close()
}

func (d *Disk) PublicURL(bucket, path string) string {
	return d.BaseURL + "/files/" + url.PathEscape(bucket) + "/" + escapePath(path)
}
