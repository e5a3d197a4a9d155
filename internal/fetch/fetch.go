// Package fetch downloads and verifies the content-addressed artifacts
// the provisioning core needs: library jars, asset objects, client
// jars, and Java runtime files.
package fetch

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/aayushdutt/mcprovision/internal/netstate"
	"github.com/aayushdutt/mcprovision/internal/provisionerr"
	"github.com/hashicorp/go-retryablehttp"
)

// Client performs the actual HTTP transfer and hashing work behind a
// download/check task. A single Client is shared across a Pool batch.
type Client struct {
	httpClient *http.Client
}

// New returns a Client with retry and timeout settings appropriate for
// large artifact downloads.
func New() *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = nil
	retryClient.HTTPClient.Transport = &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	retryClient.HTTPClient.Timeout = 5 * time.Minute

	return &Client{httpClient: retryClient.StandardClient()}
}

// HashFile returns the SHA-1 hex digest of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify reports whether the file at path exists and its SHA-1 matches
// wantSHA1. A missing file or hash mismatch both report false with a nil
// error; only I/O errors other than "not found" are returned.
func Verify(path, wantSHA1 string) (bool, error) {
	got, err := HashFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}
	return got == wantSHA1, nil
}

// Download fetches url to path, verifying the result against wantSHA1
// (skipped when empty). It downloads to a sibling ".tmp" file and
// renames atomically on success so a crash mid-transfer never leaves a
// half-written artifact at the final path. onChunk, if non-nil, is
// called with the number of bytes written for each read.
func (c *Client) Download(ctx context.Context, url, path, wantSHA1 string, onChunk func(n int)) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return netstate.Classify(ctx, fmt.Errorf("%w: %v", provisionerr.ErrNetwork, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return netstate.Classify(ctx, fmt.Errorf("%w: unexpected status %d for %s", provisionerr.ErrNetwork, resp.StatusCode, url))
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}

	hasher := sha1.New()
	writer := io.MultiWriter(f, hasher)

	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := writer.Write(buf[:n]); writeErr != nil {
				f.Close()
				os.Remove(tmpPath)
				return fmt.Errorf("%w: %v", provisionerr.ErrIO, writeErr)
			}
			if onChunk != nil {
				onChunk(n)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			f.Close()
			os.Remove(tmpPath)
			return netstate.Classify(ctx, fmt.Errorf("%w: %v", provisionerr.ErrNetwork, readErr))
		}
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}

	if wantSHA1 != "" {
		got := hex.EncodeToString(hasher.Sum(nil))
		if got != wantSHA1 {
			os.Remove(tmpPath)
			return fmt.Errorf("%w: expected %s, got %s", provisionerr.ErrHashMismatch, wantSHA1, got)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}

	return nil
}

// DownloadNoHash is Download without hash verification, for artifacts
// whose manifest entry carries no declared SHA-1 (rare, but the Forge
// installer jar's re-exported libraries sometimes omit one).
func (c *Client) DownloadNoHash(ctx context.Context, url, path string, onChunk func(n int)) error {
	return c.Download(ctx, url, path, "", onChunk)
}

// CheckOrDownload is the canonical per-artifact task body: if path
// already holds content matching wantSHA1, it is a no-op; otherwise the
// artifact is downloaded and verified. Returns true if a download
// actually occurred.
func (c *Client) CheckOrDownload(ctx context.Context, url, path, wantSHA1 string, onChunk func(n int)) (downloaded bool, err error) {
	if wantSHA1 != "" {
		ok, verr := Verify(path, wantSHA1)
		if verr != nil {
			return false, verr
		}
		if ok {
			return false, nil
		}
	} else if _, statErr := os.Stat(path); statErr == nil {
		return false, nil
	}

	if err := c.Download(ctx, url, path, wantSHA1, onChunk); err != nil {
		return false, err
	}
	return true, nil
}
