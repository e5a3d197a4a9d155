package netstate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aayushdutt/mcprovision/internal/provisionerr"
)

func withProbeURL(t *testing.T, url string) {
	t.Helper()
	orig := probeURL
	probeURL = url
	t.Cleanup(func() { probeURL = orig })
}

func TestProbe_Up(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	withProbeURL(t, srv.URL)

	if !Probe(context.Background()) {
		t.Error("expected Probe to report online for a 200 response")
	}
}

func TestProbe_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	withProbeURL(t, srv.URL)

	if Probe(context.Background()) {
		t.Error("expected Probe to report offline for a 5xx response")
	}
}

func TestProbe_Unreachable(t *testing.T) {
	withProbeURL(t, "http://127.0.0.1:1/unreachable")

	if Probe(context.Background()) {
		t.Error("expected Probe to report offline when dialing fails")
	}
}

func TestClassify_NonNetworkErrorPassesThrough(t *testing.T) {
	err := provisionerr.ErrNotFound
	if got := Classify(context.Background(), err); got != err {
		t.Errorf("expected non-network error unchanged, got %v", got)
	}
}

func TestClassify_NetworkErrorWithReachableProbePassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	withProbeURL(t, srv.URL)

	err := fmt.Errorf("%w: connection reset", provisionerr.ErrNetwork)
	got := Classify(context.Background(), err)
	if errors.Is(got, provisionerr.ErrOffline) {
		t.Error("expected no ErrOffline annotation when the probe host is reachable")
	}
	if !errors.Is(got, provisionerr.ErrNetwork) {
		t.Error("expected ErrNetwork to still be present")
	}
}

func TestClassify_NetworkErrorWithUnreachableProbeWrapsOffline(t *testing.T) {
	withProbeURL(t, "http://127.0.0.1:1/unreachable")

	err := fmt.Errorf("%w: connection reset", provisionerr.ErrNetwork)
	got := Classify(context.Background(), err)
	if !errors.Is(got, provisionerr.ErrOffline) {
		t.Error("expected ErrOffline annotation when the probe itself is unreachable")
	}
	if !errors.Is(got, provisionerr.ErrNetwork) {
		t.Error("expected the original ErrNetwork to remain discoverable via errors.Is")
	}
}
