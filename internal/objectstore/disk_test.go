package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisk_PutAndURL(t *testing.T) {
	root := t.TempDir()
	d := NewDisk(root, "http://localhost:8080/")
	path := "adults/TORNEO-ADULTO-00001/payment_proofs/1718000000000_comprobante_pago.pdf"

	err := d.Put(context.Background(), "documents", path, strings.NewReader("pdf"), "application/pdf")
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(root, "documents", filepath.FromSlash(path)))
	require.NoError(t, err)
	assert.Equal(t, "pdf", string(b))
	assert.Equal(t, "http://localhost:8080/files/documents/"+path, d.PublicURL("documents", path))
}

func TestDisk_RejectsEscapes(t *testing.T) {
	d := NewDisk(t.TempDir(), "http://localhost")

	for _, p := range []string{"../etc/passwd", "/abs/file", "a/../../b", "", `a\b`} {
		err := d.Put(context.Background(), "documents", p, strings.NewReader("x"), "")
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
	err := d.Put(context.Background(), "../documents", "a.txt", strings.NewReader("x"), "")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestDisk_DoesNotOverwrite(t *testing.T) {
	d := NewDisk(t.TempDir(), "http://localhost")
	ctx := context.Background()

	require.NoError(t, d.Put(ctx, "documents", "a/b.txt", strings.NewReader("first"), ""))
	assert.Error(t, d.Put(ctx, "documents", "a/b.txt", strings.NewReader("second"), ""))
}

func TestPublicURL_EscapesSegments(t *testing.T) {
	d := NewDisk("", "https://torneo.example")
	assert.Equal(t, "https://torneo.example/files/documents/minors/x/dni_child/1_se%C3%B1a.jpg",
		d.PublicURL("documents", "minors/x/dni_child/1_seña.jpg"))

	g := &GCS{bucket: "bjj-uploads"}
	assert.Equal(t, "https://storage.googleapis.com/bjj-uploads/documents/adults/a.pdf", g.PublicURL("documents", "adults/a.pdf"))
}
