package pdf

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flowerrors "github.com/rbc-easyrent/signiflow-order-service/internal/errors"
)

func TestMergeStripsLeadingJunk(t *testing.T) {
	merged := Merge([]byte("%PDF-A"), []byte("junkHEADER%PDF-B"))
	assert.Equal(t, "%PDF-A\n%PDF-B", string(merged))
}

func TestMergeKeepsSecondWithoutHeader(t *testing.T) {
	// No marker found: second document passed through untouched.
	merged := Merge([]byte("%PDF-A"), []byte("no header here"))
	assert.Equal(t, "%PDF-A\nno header here", string(merged))
}

func TestMergeHeaderAtStart(t *testing.T) {
	merged := Merge([]byte("%PDF-A"), []byte("%PDF-B"))
	assert.Equal(t, "%PDF-A\n%PDF-B", string(merged))
}

func TestResolveLocalPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "template.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-local"), 0o644))

	resolver := NewResolver("", "")
	data, err := resolver.Resolve(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-local", string(data))
}

func TestResolveMissingFile(t *testing.T) {
	resolver := NewResolver("", "")
	_, err := resolver.Resolve(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)

	kind, ok := flowerrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, flowerrors.KindPdf, kind)
}

func TestResolveUploadsURLTranslatedToLocalPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "2024", "07"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024", "07", "t1.pdf"), []byte("%PDF-uploads"), 0o644))

	resolver := NewResolver("https://shop.example.com/wp-content/uploads", dir)
	data, err := resolver.Resolve(context.Background(), "https://shop.example.com/wp-content/uploads/2024/07/t1.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-uploads", string(data))
}

func TestResolveExternalURLFetched(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-remote"))
	}))
	defer server.Close()

	resolver := NewResolver("https://shop.example.com/wp-content/uploads", t.TempDir())
	data, err := resolver.Resolve(context.Background(), server.URL+"/t1.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-remote", string(data))
}

func TestResolveExternalURLErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	resolver := NewResolver("", "")
	_, err := resolver.Resolve(context.Background(), server.URL+"/gone.pdf")
	require.Error(t, err)

	kind, ok := flowerrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, flowerrors.KindPdf, kind)
}
