package manifest

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/aayushdutt/mcprovision/internal/mcpath"
	"github.com/aayushdutt/mcprovision/internal/netstate"
	"github.com/aayushdutt/mcprovision/internal/provisionerr"
	"github.com/aayushdutt/mcprovision/internal/rules"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	masterManifestURL = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"
	javaPlatformURL   = "https://piston-meta.mojang.com/v1/products/java-runtime/2ec0cc96c44e5a76b9c8b7c39df7210883d12871/all.json"
)

// Store resolves and caches the manifest chain: master manifest, per-
// version manifest, asset index, Java platform descriptor, and Java
// component files. One Store is shared by every caller resolving
// manifests for a single data directory.
type Store struct {
	httpClient *http.Client
	dataDir    string
	mc         mcpath.MC

	mu       sync.Mutex
	master   *MasterManifest
	platform JavaPlatform
}

// New returns a Store rooted at dataDir. It does not perform any network
// I/O until Refresh or a Resolve* method is called.
func New(dataDir string) *Store {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = 30 * time.Second

	return &Store{
		httpClient: retryClient.StandardClient(),
		dataDir:    dataDir,
		mc:         mcpath.NewMC(dataDir),
	}
}

// Refresh force-refetches the master manifest and Java platform
// descriptor and reports whether the master manifest's content changed.
func (s *Store) Refresh(ctx context.Context) (changed bool, err error) {
	master, err := s.fetchMaster(ctx)
	if err != nil {
		return false, err
	}

	platform, err := s.fetchPlatform(ctx)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	changed = s.master == nil || len(s.master.Versions) != len(master.Versions) ||
		s.master.Latest != master.Latest
	s.master = master
	s.platform = platform
	s.mu.Unlock()

	return changed, nil
}

func (s *Store) ensureMaster(ctx context.Context) (*MasterManifest, error) {
	s.mu.Lock()
	if s.master != nil {
		m := s.master
		s.mu.Unlock()
		return m, nil
	}
	s.mu.Unlock()

	if _, err := s.Refresh(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.master, nil
}

func (s *Store) fetchMaster(ctx context.Context) (*MasterManifest, error) {
	var m MasterManifest
	if err := s.getJSON(ctx, masterManifestURL, &m); err != nil {
		if cached, cerr := s.loadCachedMaster(); cerr == nil {
			return cached, nil
		}
		return nil, err
	}
	_ = s.saveCachedMaster(&m)
	return &m, nil
}

func (s *Store) loadCachedMaster() (*MasterManifest, error) {
	data, err := os.ReadFile(s.mc.Manifest())
	if err != nil {
		return nil, err
	}
	var m MasterManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: cached master manifest: %v", provisionerr.ErrInvalidMetadata, err)
	}
	return &m, nil
}

func (s *Store) saveCachedMaster(m *MasterManifest) error {
	if err := os.MkdirAll(filepath.Dir(s.mc.Manifest()), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(s.mc.Manifest(), data, 0o644)
}

func (s *Store) fetchPlatform(ctx context.Context) (JavaPlatform, error) {
	var p JavaPlatform
	javaRoot := mcpath.NewJava(s.dataDir, "").ManifestPath()
	if err := s.getJSON(ctx, javaPlatformURL, &p); err != nil {
		data, rerr := os.ReadFile(javaRoot)
		if rerr != nil {
			return nil, err
		}
		if jerr := json.Unmarshal(data, &p); jerr != nil {
			return nil, fmt.Errorf("%w: cached java platform: %v", provisionerr.ErrInvalidMetadata, jerr)
		}
		return p, nil
	}

	if err := os.MkdirAll(filepath.Dir(javaRoot), 0o755); err == nil {
		if data, merr := json.Marshal(p); merr == nil {
			_ = os.WriteFile(javaRoot, data, 0o644)
		}
	}
	return p, nil
}

// ListVersions returns every version record in the master manifest (or
// only the release records when releasesOnly is set), newest first as
// Mojang orders them.
func (s *Store) ListVersions(ctx context.Context, releasesOnly bool) ([]VersionRecord, error) {
	master, err := s.ensureMaster(ctx)
	if err != nil {
		return nil, err
	}
	if !releasesOnly {
		return master.Versions, nil
	}
	out := make([]VersionRecord, 0, len(master.Versions))
	for _, v := range master.Versions {
		if v.Type == Release {
			out = append(out, v)
		}
	}
	return out, nil
}

// findRecord looks up a version id in the master manifest.
func (s *Store) findRecord(ctx context.Context, id string) (VersionRecord, error) {
	master, err := s.ensureMaster(ctx)
	if err != nil {
		return VersionRecord{}, err
	}
	for _, v := range master.Versions {
		if v.ID == id {
			return v, nil
		}
	}
	return VersionRecord{}, fmt.Errorf("%w: version %q", provisionerr.ErrNotFound, id)
}

// ResolveVersionDetails resolves a version's full manifest. It tries the
// network first and falls back to the last successfully cached copy on
// transport failure (offline, DNS failure, non-2xx). A caller whose
// SHA-1 on the cached master record does not match the fetched
// manifest's own declared id is still returned the fetched copy —
// mismatch detection against the record happens in CheckMeta.
func (s *Store) ResolveVersionDetails(ctx context.Context, id string) (*VersionManifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	versionPath := mcpath.NewVersion(s.dataDir, id)

	record, err := s.findRecord(ctx, id)
	if err == nil {
		var vm VersionManifest
		if getErr := s.getJSON(ctx, record.URL, &vm); getErr == nil {
			_ = s.saveVersionManifest(versionPath.Manifest(), &vm)
			return &vm, nil
		}
	}

	cached, cerr := s.loadVersionManifest(versionPath.Manifest())
	if cerr != nil {
		if err != nil {
			return nil, err
		}
		return nil, netstate.Classify(ctx, fmt.Errorf("%w: version %q: %v", provisionerr.ErrNetwork, id, cerr))
	}
	return cached, nil
}

func (s *Store) loadVersionManifest(path string) (*VersionManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var vm VersionManifest
	if err := json.Unmarshal(data, &vm); err != nil {
		return nil, fmt.Errorf("%w: %v", provisionerr.ErrInvalidMetadata, err)
	}
	return &vm, nil
}

func (s *Store) saveVersionManifest(path string, vm *VersionManifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(vm)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// CheckMeta reports whether the on-disk version manifest for id is
// present and matches the master manifest's declared SHA-1, without
// downloading the version manifest. If the Store has not loaded the
// master manifest yet, it is fetched first.
func (s *Store) CheckMeta(ctx context.Context, id string) (ok bool, err error) {
	record, err := s.findRecord(ctx, id)
	if err != nil {
		return false, err
	}

	versionPath := mcpath.NewVersion(s.dataDir, id)
	data, err := os.ReadFile(versionPath.Manifest())
	if err != nil {
		return false, nil
	}

	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:]) == record.SHA1, nil
}

// ResolveAssetIndex resolves a version's assets index, honoring the same
// network-first, cached-copy-on-failure contract as ResolveVersionDetails.
func (s *Store) ResolveAssetIndex(ctx context.Context, ref AssetIndexRef) (*Assets, error) {
	mc := s.mc
	path := mc.AssetIndexPath(ref.ID)

	var idx Assets
	if err := s.getJSON(ctx, ref.URL, &idx); err == nil {
		if data, merr := json.Marshal(idx); merr == nil {
			_ = os.MkdirAll(filepath.Dir(path), 0o755)
			_ = os.WriteFile(path, data, 0o644)
		}
		return &idx, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, netstate.Classify(ctx, fmt.Errorf("%w: asset index %q: %v", provisionerr.ErrNetwork, ref.ID, err))
	}
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("%w: asset index %q: %v", provisionerr.ErrInvalidMetadata, ref.ID, err)
	}
	return &idx, nil
}

// JavaComponentFor resolves the ordered list of candidate runtimes for a
// Java component on the current OS. The first entry is the one callers
// should use.
func (s *Store) JavaComponentFor(ctx context.Context, component JavaComponent) ([]JavaPlatformEntry, error) {
	s.mu.Lock()
	platform := s.platform
	s.mu.Unlock()

	if platform == nil {
		if _, err := s.Refresh(ctx); err != nil {
			return nil, err
		}
		s.mu.Lock()
		platform = s.platform
		s.mu.Unlock()
	}

	byComponent, ok := platform[rules.CurrentOSName()]
	if !ok {
		return nil, fmt.Errorf("%w: no java platform entries for os %q", provisionerr.ErrNotSupported, rules.CurrentOSName())
	}
	entries, ok := byComponent[component]
	if !ok || len(entries) == 0 {
		return nil, fmt.Errorf("%w: component %q", provisionerr.ErrNotSupported, component)
	}
	return entries, nil
}

// ResolveJavaFiles fetches the files listing for a chosen Java platform
// entry's manifest artifact.
func (s *Store) ResolveJavaFiles(ctx context.Context, entry JavaPlatformEntry) (*JavaFiles, error) {
	var files JavaFiles
	if err := s.getJSON(ctx, entry.Manifest.URL, &files); err != nil {
		return nil, netstate.Classify(ctx, fmt.Errorf("%w: java files: %v", provisionerr.ErrNetwork, err))
	}
	return &files, nil
}

func (s *Store) getJSON(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return netstate.Classify(ctx, fmt.Errorf("%w: %v", provisionerr.ErrNetwork, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return netstate.Classify(ctx, fmt.Errorf("%w: unexpected status %d for %s", provisionerr.ErrNetwork, resp.StatusCode, url))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", provisionerr.ErrInvalidMetadata, err)
	}
	return nil
}

// SortLoaderVersions sorts version records by ReleaseTime, newest first,
// for callers without a semver-parseable scheme (vanilla release ids do
// not follow semver).
func SortLoaderVersions(records []VersionRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].ReleaseTime.After(records[j].ReleaseTime)
	})
}
