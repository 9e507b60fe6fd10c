package pdf

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	flowerrors "github.com/rbc-easyrent/signiflow-order-service/internal/errors"
)

// Source resolves a document reference to raw bytes. References may be an
// absolute local path, a URL under the uploads root (translated to a local
// path), or any other URL (fetched over HTTP). No content validation is
// performed; callers own the well-formedness of the bytes.
type Source interface {
	Resolve(ctx context.Context, ref string) ([]byte, error)
}

type Resolver struct {
	http           *http.Client
	uploadsBaseURL string
	uploadsBaseDir string
}

func NewResolver(uploadsBaseURL, uploadsBaseDir string) *Resolver {
	return &Resolver{
		http:           &http.Client{Timeout: 30 * time.Second},
		uploadsBaseURL: strings.TrimRight(uploadsBaseURL, "/"),
		uploadsBaseDir: uploadsBaseDir,
	}
}

func (r *Resolver) Resolve(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "http") {
		if r.uploadsBaseURL != "" && strings.HasPrefix(ref, r.uploadsBaseURL) {
			// Internal storage URL: translate to the local uploads path.
			rel := strings.TrimPrefix(ref, r.uploadsBaseURL)
			local := filepath.Join(r.uploadsBaseDir, filepath.FromSlash(rel))
			return r.readFile(local)
		}
		return r.fetch(ctx, ref)
	}
	return r.readFile(ref)
}

func (r *Resolver) readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, flowerrors.Pdf(fmt.Sprintf("PDF file not readable: %s", path), err)
	}
	return data, nil
}

func (r *Resolver) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, flowerrors.Pdf(fmt.Sprintf("invalid PDF URL: %s", url), err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, flowerrors.Pdf(fmt.Sprintf("failed to download PDF from URL: %s", url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, flowerrors.Pdf(fmt.Sprintf("PDF download returned HTTP %d: %s", resp.StatusCode, url), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, flowerrors.Pdf(fmt.Sprintf("failed to read PDF body: %s", url), err)
	}

	zap.L().Info("PDF downloaded", zap.String("url", url), zap.Int("bytes", len(data)))
	return data, nil
}
