package registration

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bjj-tournament/internal/apperr"
	"bjj-tournament/internal/form"
	"bjj-tournament/internal/metrics"
	"bjj-tournament/internal/models"
)

// Uploader stores registration documents. Uploads are not retried and
// objects already stored are left in place when a later step fails.
type Uploader struct {
	store   ObjectStore
	bucket  string
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewUploader(store ObjectStore, bucket string, log *slog.Logger, m *metrics.Metrics) *Uploader {
	return &Uploader{store: store, bucket: bucket, log: log, metrics: m, now: time.Now}
}

var whitespace = regexp.MustCompile(`\s+`)

// SanitizeName replaces whitespace runs with "_" and strips path separators.
func SanitizeName(name string) string {
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	return whitespace.ReplaceAllString(name, "_")
}

// DocumentPrefix is <category>/<registration id>/<purpose>.
func DocumentPrefix(kind models.Kind, registrationID, purpose string) string {
	return kind.Category() + "/" + registrationID + "/" + purpose
}

// Upload stores f under prefix/<unix ms>_<sanitized name> and returns its
// public URL.
func (u *Uploader) Upload(ctx context.Context, kind models.Kind, purpose, prefix string, f *form.FileRef) (string, error) {
	if f.Oversized() {
		u.log.WarnContext(ctx, "document exceeds advisory size",
			"type", kind, "purpose", purpose, "file", f.Name, "size", f.Size)
	}
	path := prefix + "/" + strconv.FormatInt(u.now().UnixMilli(), 10) + "_" + SanitizeName(f.Name)

	if err := u.put(ctx, path, f); err != nil {
		u.metrics.UploadFailed(string(kind), purpose)
		u.log.ErrorContext(ctx, "document upload failed",
			"type", kind, "purpose", purpose, "path", path, "error", err)
		return "", apperr.Wrap(err, apperr.CodeUploadFailed,
			fmt.Sprintf("No se pudo subir el archivo %s: %v", f.Name, err))
	}
	return u.store.PublicURL(u.bucket, path), nil
}

func (u *Uploader) put(ctx context.Context, path string, f *form.FileRef) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	return u.store.Put(ctx, u.bucket, path, rc, ct)
}
