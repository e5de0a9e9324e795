package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/lintang-b-s/streetscan/pkg"
	"go.uber.org/zap"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// driver
	_ "gocloud.dev/blob/gcsblob"  // GCS driver
	_ "gocloud.dev/blob/s3blob"   // S3 driver
)

// Fetcher makes sure the base OSM source exists on disk.
type Fetcher struct {
	url    string
	local  string
	client *http.Client
	logger *zap.Logger
}

func NewFetcher(sourceURL, local string, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		url:    sourceURL,
		local:  local,
		client: http.DefaultClient,
		logger: logger,
	}
}

// EnsureSource downloads the source when the local file does not exist. An
// existing file is trusted as is. The download goes to a temporary file that
// is renamed into place once complete.
func (f *Fetcher) EnsureSource(ctx context.Context) (string, error) {
	if _, err := os.Stat(f.local); err == nil {
		return f.local, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat %s: %w", f.local, err)
	}

	f.logger.Info("Downloading OSM source data...", zap.String("url", f.url), zap.String("local", f.local))

	rc, err := f.open(ctx)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	if err := writeAtomic(f.local, func(w io.Writer) error {
		_, err := io.Copy(w, rc)
		return err
	}); err != nil {
		return "", fmt.Errorf("download %s: %w", f.url, err)
	}

	f.logger.Info("OSM source data downloaded.", zap.String("local", f.local))
	return f.local, nil
}

func (f *Fetcher) open(ctx context.Context) (io.ReadCloser, error) {
	u, err := url.Parse(f.url)
	if err != nil {
		return nil, fmt.Errorf("parse source url %s: %w", f.url, err)
	}

	switch u.Scheme {
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", f.url, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("get %s: unexpected status %s", f.url, resp.Status)
		}
		return resp.Body, nil
	default:
		return openBlob(ctx, u)
	}
}

// openBlob reads <scheme>://<bucket>/<key>. For file:// urls the bucket is
// the parent directory of the file.
func openBlob(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	var bucketURL, key string
	if u.Scheme == "file" {
		bucketURL = "file://" + path.Dir(u.Path)
		key = path.Base(u.Path)
	} else {
		bucketURL = fmt.Sprintf("%s://%s", u.Scheme, u.Host)
		if u.RawQuery != "" {
			bucketURL += "?" + u.RawQuery
		}
		key = strings.TrimPrefix(u.Path, "/")
	}

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucketURL, err)
	}
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		bucket.Close()
		return nil, fmt.Errorf("open %s in bucket %s: %w", key, bucketURL, err)
	}
	return &bucketReader{Reader: r, bucket: bucket}, nil
}

type bucketReader struct {
	*blob.Reader
	bucket *blob.Bucket
}

func (br *bucketReader) Close() error {
	err := br.Reader.Close()
	if cerr := br.bucket.Close(); err == nil {
		err = cerr
	}
	return err
}

// writeAtomic writes to a temporary file in the directory of target, syncs
// it and renames it to target. The temporary file is removed on failure.
func writeAtomic(target string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+"-*"+pkg.TEMP_FILE_SUFFIX)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	ok := false
	defer func() {
		if !ok {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		return err
	}
	ok = true
	return nil
}
