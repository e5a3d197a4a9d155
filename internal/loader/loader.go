// Package loader defines the mod-loader adapter contract shared by the
// vanilla, Fabric/Quilt, and Forge/NeoForge implementations.
package loader

import (
	"context"

	"github.com/aayushdutt/mcprovision/internal/mcpath"
	"github.com/aayushdutt/mcprovision/internal/pool"
)

// Type names one of the supported mod-loader kinds.
type Type string

const (
	Vanilla  Type = "vanilla"
	Fabric   Type = "fabric"
	Forge    Type = "forge"
	Quilt    Type = "quilt"
	NeoForge Type = "neoforge"
)

// Loader answers loader-wide queries: which versions it publishes and
// which of those are compatible with a given Minecraft version.
type Loader interface {
	// DownloadMetadata fetches (or refreshes) this loader's version index.
	DownloadMetadata(ctx context.Context, mc mcpath.MC, version mcpath.Version) error

	// SupportedVersions returns every Minecraft version this loader has
	// at least one build for, newest first.
	SupportedVersions(ctx context.Context, version mcpath.Version, stableOnly bool) ([]string, error)

	// LoaderVersionsFor returns every loader version compatible with
	// mcVersion. Fabric/Quilt sort the result newest first; Forge/NeoForge
	// return builds in the order their cached index lists them.
	LoaderVersionsFor(ctx context.Context, mcVersion string, version mcpath.Version, stableOnly bool) ([]string, error)
}

// LoaderVersion is one resolved (Minecraft version, loader version)
// pair, capable of producing the check/download tasks, classpath
// entries, main class, and extra arguments needed to launch it.
type LoaderVersion interface {
	// Download returns the set of check tasks (each possibly yielding a
	// download) needed to materialize this loader version on disk.
	// existingLibs lists (group:artifact) keys already satisfied by the
	// vanilla library set, for de-duplication.
	Download(ctx context.Context, mc mcpath.MC, version mcpath.Version, existingLibs map[string]bool) ([]pool.Task, error)

	// Preprocess runs any installer/processor pipeline this loader
	// version requires (a no-op for Fabric/Quilt). Must be idempotent:
	// callers may re-invoke it after a partial prior failure.
	Preprocess(ctx context.Context, mc mcpath.MC, version mcpath.Version, javaBin string) error

	// Classpath returns this loader version's own classpath entries as
	// absolute file paths, keyed by their (group, artifact) identity for
	// override-dedup against the vanilla classpath.
	Classpath(ctx context.Context, mc mcpath.MC, version mcpath.Version) (map[string]string, error)

	// MainClass returns the entry point class to launch.
	MainClass(ctx context.Context, version mcpath.Version) (string, error)

	// ExtraArguments returns additional JVM and game arguments this
	// loader version contributes on top of the vanilla version manifest.
	// When overwriteGame is true, the caller must discard the vanilla
	// game argument list before appending game, rather than append to it
	// (Forge/NeoForge ship a full replacement game-argument list).
	ExtraArguments(ctx context.Context, version mcpath.Version) (jvm []string, game []string, overwriteGame bool, err error)
}

// vanillaLoaderVersion is the identity loader: Minecraft run with no mod
// loader at all. Every LoaderVersion method is either a no-op or derives
// directly from the already-resolved vanilla version manifest.
type vanillaLoaderVersion struct{}

// NewVanillaLoaderVersion returns the identity LoaderVersion.
func NewVanillaLoaderVersion() LoaderVersion { return vanillaLoaderVersion{} }

func (vanillaLoaderVersion) Download(ctx context.Context, mc mcpath.MC, version mcpath.Version, existingLibs map[string]bool) ([]pool.Task, error) {
	return nil, nil
}

func (vanillaLoaderVersion) Preprocess(ctx context.Context, mc mcpath.MC, version mcpath.Version, javaBin string) error {
	return nil
}

func (vanillaLoaderVersion) Classpath(ctx context.Context, mc mcpath.MC, version mcpath.Version) (map[string]string, error) {
	return nil, nil
}

func (vanillaLoaderVersion) MainClass(ctx context.Context, version mcpath.Version) (string, error) {
	return "", nil
}

func (vanillaLoaderVersion) ExtraArguments(ctx context.Context, version mcpath.Version) ([]string, []string, bool, error) {
	return nil, nil, false, nil
}
