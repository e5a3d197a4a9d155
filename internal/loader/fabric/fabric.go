// Package fabric implements the loader.Loader/LoaderVersion contract for
// the Fabric and Quilt mod loaders, which publish a single self-
// contained metadata document per (Minecraft version, loader build)
// pair and need no local preprocessing step.
package fabric

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/aayushdutt/mcprovision/internal/fetch"
	"github.com/aayushdutt/mcprovision/internal/maven"
	"github.com/aayushdutt/mcprovision/internal/mcpath"
	"github.com/aayushdutt/mcprovision/internal/netstate"
	"github.com/aayushdutt/mcprovision/internal/pool"
	"github.com/aayushdutt/mcprovision/internal/provisionerr"
	"github.com/hashicorp/go-retryablehttp"
)

// flavor distinguishes Fabric from its API-compatible fork Quilt; the
// two differ only in their well-known base URLs.
type flavor struct {
	apiBase   string
	mavenBase string
	name      string
}

var (
	Fabric = flavor{
		apiBase:   "https://meta.fabricmc.net/v2/versions",
		mavenBase: "https://maven.fabricmc.net",
		name:      "fabric",
	}
	Quilt = flavor{
		apiBase:   "https://meta.quiltmc.org/v3/versions",
		mavenBase: "https://maven.quiltmc.org/repository/release",
		name:      "quilt",
	}
)

// Loader queries a Fabric-like metadata API for supported versions.
type Loader struct {
	flavor flavor
	client *http.Client
}

// New returns a Loader for the given flavor (fabric.Fabric or fabric.Quilt).
func New(f flavor) *Loader {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil
	return &Loader{flavor: f, client: rc.StandardClient()}
}

type gameVersionEntry struct {
	Version string `json:"version"`
	Stable  bool   `json:"stable"`
}

type loaderVersionEntry struct {
	Separator string `json:"separator"`
	Build     int    `json:"build"`
	Maven     string `json:"maven"`
	Version   string `json:"version"`
	Stable    bool   `json:"stable"`
}

func (l *Loader) gameVersionsPath(version mcpath.Version) string {
	return filepath.Join(version.BasePath(), l.flavor.name+"-game-versions.json")
}

func (l *Loader) loaderVersionsPath(version mcpath.Version) string {
	return filepath.Join(version.BasePath(), l.flavor.name+"-loader-versions.json")
}

// DownloadMetadata refreshes the game-version and loader-version index
// documents for this flavor.
func (l *Loader) DownloadMetadata(ctx context.Context, mc mcpath.MC, version mcpath.Version) error {
	if err := l.fetchJSON(ctx, l.flavor.apiBase+"/game", l.gameVersionsPath(version)); err != nil {
		return err
	}
	return l.fetchJSON(ctx, l.flavor.apiBase+"/loader", l.loaderVersionsPath(version))
}

func (l *Loader) fetchJSON(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return netstate.Classify(ctx, fmt.Errorf("%w: %v", provisionerr.ErrNetwork, err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return netstate.Classify(ctx, fmt.Errorf("%w: unexpected status %d for %s", provisionerr.ErrNetwork, resp.StatusCode, url))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}
	defer f.Close()

	dec := json.NewDecoder(resp.Body)
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", provisionerr.ErrInvalidMetadata, err)
	}
	enc, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	_, err = f.Write(enc)
	return err
}

// SupportedVersions returns every Minecraft version id the flavor's
// game-version endpoint lists, newest first; stableOnly filters to
// entries marked stable upstream.
func (l *Loader) SupportedVersions(ctx context.Context, version mcpath.Version, stableOnly bool) ([]string, error) {
	var entries []gameVersionEntry
	if err := readCachedJSON(l.gameVersionsPath(version), &entries); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if stableOnly && !e.Stable {
			continue
		}
		out = append(out, e.Version)
	}
	return out, nil
}

// LoaderVersionsFor returns every loader build compatible with
// mcVersion, newest first. Fabric/Quilt loader builds are global (not
// per-Minecraft-version), so this simply filters the stability flag.
func (l *Loader) LoaderVersionsFor(ctx context.Context, mcVersion string, version mcpath.Version, stableOnly bool) ([]string, error) {
	var entries []loaderVersionEntry
	if err := readCachedJSON(l.loaderVersionsPath(version), &entries); err != nil {
		return nil, err
	}

	versions := make([]*semver.Version, 0, len(entries))
	byVersion := make(map[string]loaderVersionEntry, len(entries))
	for _, e := range entries {
		if stableOnly && !e.Stable {
			continue
		}
		sv, err := semver.NewVersion(e.Version)
		if err != nil {
			continue
		}
		versions = append(versions, sv)
		byVersion[sv.String()] = e
	}

	sort.Sort(sort.Reverse(semver.Collection(versions)))

	out := make([]string, 0, len(versions))
	for _, v := range versions {
		out = append(out, byVersion[v.String()].Version)
	}
	return out, nil
}

func readCachedJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", provisionerr.ErrNotFound, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", provisionerr.ErrInvalidMetadata, err)
	}
	return nil
}

// launcherMetaV1 and launcherMetaV2 are the two structurally distinct
// shapes the Fabric/Quilt per-build metadata document can take: V2
// splits mainClass by side, V1 has a single flat mainClass plus a
// launchwrapper tweaker block V2 dropped.
type launcherMetaV1 struct {
	Libraries libraries `json:"libraries"`
	MainClass string    `json:"mainClass"`
}

type launcherMetaV2 struct {
	Libraries libraries `json:"libraries"`
	MainClass struct {
		Client string `json:"client"`
	} `json:"mainClass"`
}

type libraries struct {
	Client []libraryEntry `json:"client"`
	Common []libraryEntry `json:"common"`
}

type libraryEntry struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
	SHA1 string `json:"sha1,omitempty"`
}

// LoaderVersion resolves one (Minecraft version, loader build) pair.
type LoaderVersion struct {
	flavor        flavor
	mcVersion     string
	loaderVersion string
	client        *http.Client
	fetchClient   *fetch.Client
}

// NewVersion returns a LoaderVersion for the given flavor and build.
func NewVersion(f flavor, mcVersion, loaderVersion string) *LoaderVersion {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil
	return &LoaderVersion{
		flavor:        f,
		mcVersion:     mcVersion,
		loaderVersion: loaderVersion,
		client:        rc.StandardClient(),
		fetchClient:   fetch.New(),
	}
}

func (v *LoaderVersion) metaPath(version mcpath.Version) string {
	return filepath.Join(version.BasePath(), fmt.Sprintf("%s-%s.json", v.flavor.name, v.loaderVersion))
}

func (v *LoaderVersion) metaURL() string {
	return fmt.Sprintf("%s/loader/%s/%s", v.flavor.apiBase, v.mcVersion, v.loaderVersion)
}

// loadMeta decodes the per-build metadata document, trying the V1 shape
// first and falling back to V2 on structural mismatch (main class is an
// object rather than a string).
func (v *LoaderVersion) loadMeta(version mcpath.Version) (libs []libraryEntry, loaderEntry, intermediaryEntry loaderVersionEntry, mainClass string, err error) {
	data, err := os.ReadFile(v.metaPath(version))
	if err != nil {
		return nil, loaderVersionEntry{}, loaderVersionEntry{}, "", fmt.Errorf("%w: %v", provisionerr.ErrNotFound, err)
	}

	var envelope struct {
		Loader       loaderVersionEntry `json:"loader"`
		Intermediary loaderVersionEntry `json:"intermediary"`
		LauncherMeta json.RawMessage    `json:"launcherMeta"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, loaderVersionEntry{}, loaderVersionEntry{}, "", fmt.Errorf("%w: %v", provisionerr.ErrInvalidMetadata, err)
	}

	var v1 launcherMetaV1
	if jerr := json.Unmarshal(envelope.LauncherMeta, &v1); jerr == nil && v1.MainClass != "" {
		return append(v1.Libraries.Client, v1.Libraries.Common...), envelope.Loader, envelope.Intermediary, v1.MainClass, nil
	}

	var v2 launcherMetaV2
	if jerr := json.Unmarshal(envelope.LauncherMeta, &v2); jerr == nil && v2.MainClass.Client != "" {
		return append(v2.Libraries.Client, v2.Libraries.Common...), envelope.Loader, envelope.Intermediary, v2.MainClass.Client, nil
	}

	return nil, loaderVersionEntry{}, loaderVersionEntry{}, "", fmt.Errorf("%w: launcherMeta matches neither V1 nor V2 shape", provisionerr.ErrInvalidMetadata)
}

// Download fetches the per-build metadata document (if not already
// cached) and returns check tasks for every library it names, plus the
// loader and intermediary Maven artifacts themselves.
func (v *LoaderVersion) Download(ctx context.Context, mc mcpath.MC, version mcpath.Version, existingLibs map[string]bool) ([]pool.Task, error) {
	if _, err := os.Stat(v.metaPath(version)); err != nil {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.metaURL(), nil)
		if err != nil {
			return nil, err
		}
		resp, err := v.client.Do(req)
		if err != nil {
			return nil, netstate.Classify(ctx, fmt.Errorf("%w: %v", provisionerr.ErrNetwork, err))
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: loader build %s not found for %s", provisionerr.ErrNotFound, v.loaderVersion, v.mcVersion)
		}

		if err := os.MkdirAll(filepath.Dir(v.metaPath(version)), 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
		}
		f, err := os.Create(v.metaPath(version))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
		}
		defer f.Close()
		var body json.RawMessage
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("%w: %v", provisionerr.ErrInvalidMetadata, err)
		}
		enc, _ := json.Marshal(body)
		if _, err := f.Write(enc); err != nil {
			return nil, err
		}
	}

	libs, loaderEntry, intermediaryEntry, _, err := v.loadMeta(version)
	if err != nil {
		return nil, err
	}

	var tasks []pool.Task
	for _, lib := range libs {
		art, perr := maven.Parse(lib.Name)
		if perr != nil {
			continue
		}
		if existingLibs[art.Key().Group+":"+art.Key().Name] {
			continue
		}
		tasks = append(tasks, v.libraryTask(mc, art))
	}

	for _, coord := range []string{loaderEntry.Maven, intermediaryEntry.Maven} {
		art, perr := maven.Parse(coord)
		if perr != nil {
			continue
		}
		tasks = append(tasks, v.libraryTask(mc, art))
	}

	return tasks, nil
}

// libraryTask builds a hash-less check-or-download task: Fabric/Quilt
// library entries frequently omit a sha1, so presence on disk is the
// only check available (mirrors the original's
// download_and_parse_file_no_hash_force / download_maven "force" naming).
func (v *LoaderVersion) libraryTask(mc mcpath.MC, art maven.Artifact) pool.Task {
	path := filepath.Join(mc.LibraryPath(), art.Path())
	url := art.URL(v.flavor.mavenBase)
	fc := v.fetchClient
	return pool.Task{
		Label: art.String(),
		Run: func(ctx context.Context, onChunk func(int)) error {
			if _, err := os.Stat(path); err == nil {
				return nil
			}
			return fc.DownloadNoHash(ctx, url, path, onChunk)
		},
	}
}

// Preprocess is a no-op: Fabric/Quilt need no local processor pipeline.
func (v *LoaderVersion) Preprocess(ctx context.Context, mc mcpath.MC, version mcpath.Version, javaBin string) error {
	return nil
}

// Classpath returns every library (plus loader and intermediary) this
// build contributes, keyed by (group:artifact) for override-dedup.
func (v *LoaderVersion) Classpath(ctx context.Context, mc mcpath.MC, version mcpath.Version) (map[string]string, error) {
	libs, loaderEntry, intermediaryEntry, _, err := v.loadMeta(version)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for _, lib := range libs {
		art, perr := maven.Parse(lib.Name)
		if perr != nil {
			continue
		}
		out[art.Key().Group+":"+art.Key().Name] = filepath.Join(mc.LibraryPath(), art.Path())
	}
	for _, coord := range []string{loaderEntry.Maven, intermediaryEntry.Maven} {
		art, perr := maven.Parse(coord)
		if perr != nil {
			continue
		}
		out[art.Key().Group+":"+art.Key().Name] = filepath.Join(mc.LibraryPath(), art.Path())
	}
	return out, nil
}

// MainClass returns the client main class from the cached metadata.
func (v *LoaderVersion) MainClass(ctx context.Context, version mcpath.Version) (string, error) {
	_, _, _, mainClass, err := v.loadMeta(version)
	return mainClass, err
}

// ExtraArguments returns no additional arguments: Fabric/Quilt's main
// class fully replaces vanilla's, but it still takes vanilla's game
// argument list (player name, version, assets, ...), so the vanilla set
// is kept rather than overwritten.
func (v *LoaderVersion) ExtraArguments(ctx context.Context, version mcpath.Version) ([]string, []string, bool, error) {
	return nil, nil, false, nil
}
