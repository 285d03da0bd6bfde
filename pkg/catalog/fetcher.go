package catalog

import (
	"context"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/hack-pad/hackpadfs"
)

// Fetcher retrieves raw catalog bytes from a location. Implementations
// must treat a non-existent or unreachable location as an error; the
// Store decides how failures are tolerated.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches catalogs over plain same-origin-style GET.
// No retries and no timeout of its own; callers control the deadline
// through ctx.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher backed by the given client,
// defaulting to http.DefaultClient.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{Client: client}
}

// Fetch issues a GET and returns the body. Any non-2xx status is a
// failure.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request for %s", url)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Newf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read body of %s", url)
	}
	return body, nil
}

// FSFetcher reads catalogs from a filesystem. Used for bundled data
// directories and tests; the "url" is a path within the FS.
type FSFetcher struct {
	FS hackpadfs.FS
}

// NewFSFetcher creates a filesystem-backed fetcher.
func NewFSFetcher(fs hackpadfs.FS) *FSFetcher {
	return &FSFetcher{FS: fs}
}

// Fetch reads the file at path.
func (f *FSFetcher) Fetch(_ context.Context, path string) ([]byte, error) {
	data, err := hackpadfs.ReadFile(f.FS, path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return data, nil
}

// Compile-time interface checks
var (
	_ Fetcher = (*HTTPFetcher)(nil)
	_ Fetcher = (*FSFetcher)(nil)
)
