// Package netstate offers a best-effort online/offline probe, so
// callers that hit provisionerr.ErrNetwork can distinguish "transient
// failure" from "no connectivity at all" before deciding whether to
// retry or fall back to cached state.
package netstate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aayushdutt/mcprovision/internal/provisionerr"
)

// probeURL is a well-known, highly-available host used only to check
// for basic outbound connectivity — its response body is never read.
// Var (not const) so tests can point it at an httptest server.
var probeURL = "https://launchermeta.mojang.com/mc/game/version_manifest_v2.json"

var probeClient = &http.Client{Timeout: 5 * time.Second}

// Probe reports whether a HEAD request to a well-known host succeeds.
// A false result means genuinely offline, the request timed out, or the
// host answered with a 5xx status; callers should treat all of these the
// same way (fall back to cache).
func Probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, probeURL, nil)
	if err != nil {
		return false
	}

	resp, err := probeClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < 500
}

// Classify probes connectivity whenever err wraps provisionerr.ErrNetwork,
// annotating it with provisionerr.ErrOffline when the probe itself fails
// too — meaning there is no network path at all, not just a failed
// request against one host. Non-network errors and errors on a host that
// is still reachable pass through unchanged.
func Classify(ctx context.Context, err error) error {
	if err == nil || !errors.Is(err, provisionerr.ErrNetwork) {
		return err
	}
	if Probe(ctx) {
		return err
	}
	return fmt.Errorf("%w: %w", provisionerr.ErrOffline, err)
}
