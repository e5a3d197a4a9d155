// Package provisionerr defines the sentinel error taxonomy shared across
// the provisioning core so callers can classify failures with errors.Is.
package provisionerr

import "errors"

var (
	// ErrNotFound is returned when a requested game id or loader version
	// is not present in the corresponding index.
	ErrNotFound = errors.New("not found")

	// ErrNotSupported is returned for an unhandled Java component or an
	// OS/arch variant with no platform descriptor entry.
	ErrNotSupported = errors.New("not supported")

	// ErrHashMismatch is returned when a content-addressed download does
	// not match its declared SHA-1.
	ErrHashMismatch = errors.New("hash mismatch")

	// ErrPreprocessFailed is returned when a Forge/NeoForge processor
	// exits non-zero or its manifest lacks Main-Class.
	ErrPreprocessFailed = errors.New("preprocess failed")

	// ErrInvalidMetadata is returned for a manifest parse failure or a
	// loader metadata shape matching neither known schema variant.
	ErrInvalidMetadata = errors.New("invalid metadata")

	// ErrNetwork is returned for any transport-layer failure.
	ErrNetwork = errors.New("network error")

	// ErrOffline wraps ErrNetwork when a connectivity probe confirms
	// there is no network path at all, rather than a single request
	// having failed against an otherwise-reachable host.
	ErrOffline = errors.New("offline")

	// ErrIO is returned for local filesystem errors.
	ErrIO = errors.New("io error")
)
