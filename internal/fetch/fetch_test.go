package fetch

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownload_VerifiesHash(t *testing.T) {
	content := []byte("library jar contents")
	hash := sha1.Sum(content)
	want := hex.EncodeToString(hash[:])

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "lib.jar")
	c := New()
	if err := c.Download(context.Background(), server.URL, dest, want, nil); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(data) != string(content) {
		t.Errorf("content mismatch: got %q want %q", data, content)
	}
}

func TestDownload_HashMismatchRemovesTemp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("wrong content"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "lib.jar")
	c := New()
	err := c.Download(context.Background(), server.URL, dest, "0000000000000000000000000000000000000000", nil)
	if err == nil {
		t.Fatal("expected hash mismatch error")
	}
	if _, statErr := os.Stat(dest + ".tmp"); !os.IsNotExist(statErr) {
		t.Error("temp file should be removed on hash mismatch")
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("destination file should not exist on hash mismatch")
	}
}

func TestCheckOrDownload_SkipsValidExisting(t *testing.T) {
	content := []byte("already on disk")
	hash := sha1.Sum(content)
	want := hex.EncodeToString(hash[:])

	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Write(content)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "asset")
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		t.Fatal(err)
	}

	c := New()
	downloaded, err := c.CheckOrDownload(context.Background(), server.URL, dest, want, nil)
	if err != nil {
		t.Fatalf("CheckOrDownload failed: %v", err)
	}
	if downloaded {
		t.Error("expected no download for already-valid file")
	}
	if called {
		t.Error("server should not have been hit")
	}
}

func TestCheckOrDownload_RefetchesOnMismatch(t *testing.T) {
	content := []byte("fresh content")
	hash := sha1.Sum(content)
	want := hex.EncodeToString(hash[:])

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "asset")
	if err := os.WriteFile(dest, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New()
	downloaded, err := c.CheckOrDownload(context.Background(), server.URL, dest, want, nil)
	if err != nil {
		t.Fatalf("CheckOrDownload failed: %v", err)
	}
	if !downloaded {
		t.Error("expected a download to occur for stale content")
	}
}

func TestHashFile(t *testing.T) {
	content := []byte("hash me")
	path := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	sum := sha1.Sum(content)
	want := hex.EncodeToString(sum[:])
	if got != want {
		t.Errorf("got %s want %s", got, want)
	}
}

func TestVerify_MissingFile(t *testing.T) {
	ok, err := Verify(filepath.Join(t.TempDir(), "missing"), "abc")
	if err != nil {
		t.Fatalf("Verify should not error on missing file: %v", err)
	}
	if ok {
		t.Error("expected false for missing file")
	}
}
