// Package forge implements the loader.Loader/LoaderVersion contract for
// Forge and NeoForge, which ship a self-extracting installer jar and
// require a local Java subprocess pipeline ("processors") to finish
// wiring their version manifest before launch.
package forge

import (
	"archive/zip"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/aayushdutt/mcprovision/internal/fetch"
	"github.com/aayushdutt/mcprovision/internal/maven"
	"github.com/aayushdutt/mcprovision/internal/mcpath"
	"github.com/aayushdutt/mcprovision/internal/netstate"
	"github.com/aayushdutt/mcprovision/internal/pool"
	"github.com/aayushdutt/mcprovision/internal/provisionerr"
	"github.com/hashicorp/go-retryablehttp"
)

// flavor captures the handful of constants distinguishing Forge from
// NeoForge: their index formats differ (JSON map vs Maven XML), as does
// the installer URL template and Maven repository base.
type flavor struct {
	indexURL      string
	installerURL  string // contains "{loader_version}"
	mavenBase     string
	indexFileName string
	isXMLIndex    bool
}

var (
	Forge = flavor{
		indexURL:      "https://files.minecraftforge.net/net/minecraftforge/forge/maven-metadata.json",
		installerURL:  "https://maven.minecraftforge.net/net/minecraftforge/forge/{loader_version}/forge-{loader_version}-installer.jar",
		mavenBase:     "https://maven.minecraftforge.net",
		indexFileName: "forge",
		isXMLIndex:    false,
	}
	NeoForge = flavor{
		indexURL:      "https://maven.neoforged.net/releases/net/neoforged/neoforge/maven-metadata.xml",
		installerURL:  "https://maven.neoforged.net/releases/net/neoforged/neoforge/{loader_version}/neoforge-{loader_version}-installer.jar",
		mavenBase:     "https://maven.neoforged.net/releases",
		indexFileName: "neoforge",
		isXMLIndex:    true,
	}
)

// Loader queries a Forge-like version index.
type Loader struct {
	flavor flavor
	client *http.Client
}

// New returns a Loader for the given flavor.
func New(f flavor) *Loader {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil
	return &Loader{flavor: f, client: rc.StandardClient()}
}

func (l *Loader) indexPath(version mcpath.Version) string {
	return filepath.Join(version.BasePath(), l.flavor.indexFileName+"-index.json")
}

// DownloadMetadata force-refetches the version index (JSON map for
// Forge, Maven metadata XML for NeoForge) and caches it verbatim.
func (l *Loader) DownloadMetadata(ctx context.Context, mc mcpath.MC, version mcpath.Version) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.flavor.indexURL, nil)
	if err != nil {
		return err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return netstate.Classify(ctx, fmt.Errorf("%w: %v", provisionerr.ErrNetwork, err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return netstate.Classify(ctx, fmt.Errorf("%w: unexpected status %d", provisionerr.ErrNetwork, resp.StatusCode))
	}

	path := l.indexPath(version)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}

// versionIndex is Forge's maven-metadata.json shape: mc version -> list
// of "{mc}-{forge}[-{mc}]" version strings.
type versionIndex map[string][]string

type neoForgeIndex struct {
	Versioning struct {
		Versions struct {
			Version []string `xml:"version"`
		} `xml:"versions"`
	} `xml:"versioning"`
}

func forgeVersionPair(versionString string) (mcVersion, forgeVersion string, err error) {
	parts := strings.Split(versionString, "-")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("%w: invalid forge version string %q", provisionerr.ErrInvalidMetadata, versionString)
	}
	return parts[0], parts[1], nil
}

func neoforgeVersionPair(versionString string) (mcVersion, neoforgeVersion string, err error) {
	parts := strings.Split(versionString, ".")
	if len(parts) < 3 {
		return "", "", fmt.Errorf("%w: invalid neoforge version string %q", provisionerr.ErrInvalidMetadata, versionString)
	}
	if _, err := strconv.Atoi(parts[0]); err != nil {
		return "", "", fmt.Errorf("%w: invalid neoforge version string %q", provisionerr.ErrInvalidMetadata, versionString)
	}
	if _, err := strconv.Atoi(parts[1]); err != nil {
		return "", "", fmt.Errorf("%w: invalid neoforge version string %q", provisionerr.ErrInvalidMetadata, versionString)
	}
	return fmt.Sprintf("1.%s.%s", parts[0], parts[1]), strings.Join(parts[2:], "."), nil
}

func (l *Loader) neoforgeVersionList(version mcpath.Version) ([]string, error) {
	data, err := os.ReadFile(l.indexPath(version))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provisionerr.ErrNotFound, err)
	}
	var idx neoForgeIndex
	if err := xml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("%w: %v", provisionerr.ErrInvalidMetadata, err)
	}
	return idx.Versioning.Versions.Version, nil
}

func (l *Loader) neoforgeVersionPairs(version mcpath.Version) ([][2]string, error) {
	raw, err := l.neoforgeVersionList(version)
	if err != nil {
		return nil, err
	}
	var out [][2]string
	for _, v := range raw {
		mc, nf, perr := neoforgeVersionPair(v)
		if perr != nil {
			continue
		}
		out = append(out, [2]string{mc, nf})
	}
	return out, nil
}

// SupportedVersions returns every Minecraft version this flavor has at
// least one build for, newest first (compared as semver where both ids
// parse, lexically otherwise).
func (l *Loader) SupportedVersions(ctx context.Context, version mcpath.Version, stableOnly bool) ([]string, error) {
	newestFirst := func(vs []string) {
		sort.SliceStable(vs, func(i, j int) bool {
			a, aerr := semver.NewVersion(vs[i])
			b, berr := semver.NewVersion(vs[j])
			if aerr == nil && berr == nil {
				return a.GreaterThan(b)
			}
			return vs[i] > vs[j]
		})
	}

	if !l.flavor.isXMLIndex {
		data, err := os.ReadFile(l.indexPath(version))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", provisionerr.ErrNotFound, err)
		}
		var idx versionIndex
		if err := json.Unmarshal(data, &idx); err != nil {
			return nil, fmt.Errorf("%w: %v", provisionerr.ErrInvalidMetadata, err)
		}

		out := make([]string, 0, len(idx))
		for mcVersion, builds := range idx {
			hasPre := false
			for _, b := range builds {
				if strings.Contains(b, "pre") {
					hasPre = true
					break
				}
			}
			if hasPre {
				continue
			}
			out = append(out, mcVersion)
		}
		newestFirst(out)
		return out, nil
	}

	pairs, err := l.neoforgeVersionPairs(version)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, p := range pairs {
		if seen[p[0]] {
			continue
		}
		seen[p[0]] = true
		out = append(out, p[0])
	}
	newestFirst(out)
	return out, nil
}

// LoaderVersionsFor returns every loader build compatible with
// mcVersion, in the order the cached index lists them; the result is
// not re-sorted.
func (l *Loader) LoaderVersionsFor(ctx context.Context, mcVersion string, version mcpath.Version, stableOnly bool) ([]string, error) {
	if !l.flavor.isXMLIndex {
		data, err := os.ReadFile(l.indexPath(version))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", provisionerr.ErrNotFound, err)
		}
		var idx versionIndex
		if err := json.Unmarshal(data, &idx); err != nil {
			return nil, fmt.Errorf("%w: %v", provisionerr.ErrInvalidMetadata, err)
		}

		builds := idx[mcVersion]
		out := make([]string, 0, len(builds))
		for _, b := range builds {
			if stableOnly && strings.Contains(b, "pre") {
				continue
			}
			_, forgeVersion, perr := forgeVersionPair(b)
			if perr != nil {
				continue
			}
			out = append(out, forgeVersion)
		}
		return out, nil
	}

	pairs, err := l.neoforgeVersionPairs(version)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range pairs {
		if p[0] != mcVersion {
			continue
		}
		if stableOnly && strings.Contains(p[1], "beta") {
			continue
		}
		out = append(out, p[1])
	}
	return out, nil
}

// LoaderVersion resolves one (Minecraft version, loader build) pair via
// its installer jar.
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
	rc.HTTPClient.Timeout = 0
	return &LoaderVersion{
		flavor:        f,
		mcVersion:     mcVersion,
		loaderVersion: loaderVersion,
		client:        rc.StandardClient(),
		fetchClient:   fetch.New(),
	}
}

// resolvedVersion finds the full upstream version string
// ("{mc}-{forge}[-{mc}]" or NeoForge's dotted form) matching this
// LoaderVersion's (mcVersion, loaderVersion) pair.
func (v *LoaderVersion) resolvedVersion(version mcpath.Version) (string, error) {
	l := New(v.flavor)

	if !v.flavor.isXMLIndex {
		data, err := os.ReadFile(l.indexPath(version))
		if err != nil {
			return "", fmt.Errorf("%w: %v", provisionerr.ErrNotFound, err)
		}
		var idx versionIndex
		if err := json.Unmarshal(data, &idx); err != nil {
			return "", fmt.Errorf("%w: %v", provisionerr.ErrInvalidMetadata, err)
		}
		for _, b := range idx[v.mcVersion] {
			if strings.Contains(b, fmt.Sprintf("%s-%s", v.mcVersion, v.loaderVersion)) {
				return b, nil
			}
		}
		return "", fmt.Errorf("%w: loader version %s not found for %s", provisionerr.ErrNotFound, v.loaderVersion, v.mcVersion)
	}

	raw, err := l.neoforgeVersionList(version)
	if err != nil {
		return "", err
	}
	parts := strings.SplitN(v.mcVersion, ".", 3)
	var mcPart string
	if len(parts) > 2 {
		mcPart = fmt.Sprintf("%s.%s", parts[1], parts[2])
	} else if len(parts) == 2 {
		mcPart = fmt.Sprintf("%s.0", parts[1])
	} else {
		return "", fmt.Errorf("%w: invalid minecraft version %q", provisionerr.ErrInvalidMetadata, v.mcVersion)
	}
	for _, b := range raw {
		if strings.Contains(b, fmt.Sprintf("%s.%s", mcPart, v.loaderVersion)) {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: loader version %s not found for %s", provisionerr.ErrNotFound, v.loaderVersion, v.mcVersion)
}

func (v *LoaderVersion) installerDir(version mcpath.Version) (string, error) {
	resolved, err := v.resolvedVersion(version)
	if err != nil {
		return "", err
	}
	return filepath.Join(version.BasePath(), fmt.Sprintf("%s-%s", v.flavor.indexFileName, resolved)), nil
}

const (
	installerFile = "installer.jar"
	profileFile   = "install_profile.json"
	versionFile   = "version.json"
)

type installerProfile struct {
	Data       map[string]dataEntry `json:"data"`
	Processors []processor          `json:"processors"`
	Libraries  []forgeLibrary       `json:"libraries"`
	JSON       string               `json:"json"`
}

type dataEntry struct {
	Client string `json:"client"`
	Server string `json:"server"`
}

type processor struct {
	Sides     []string `json:"sides,omitempty"`
	Jar       string   `json:"jar"`
	Classpath []string `json:"classpath"`
	Args      []string `json:"args"`
}

type forgeLibrary struct {
	Name      string `json:"name"`
	Downloads struct {
		Artifact struct {
			Path string `json:"path"`
			URL  string `json:"url"`
			SHA1 string `json:"sha1"`
		} `json:"artifact"`
	} `json:"downloads"`
}

type forgeVersionJSON struct {
	ID        string         `json:"id"`
	MainClass string         `json:"mainClass"`
	Libraries []forgeLibrary `json:"libraries"`
	Arguments struct {
		Game []string `json:"game"`
		JVM  []string `json:"jvm"`
	} `json:"arguments"`
}

// Download downloads the installer jar, extracts its install profile and
// bundled version manifest, and returns check tasks for every library
// either document names (skipping ones already satisfied by
// existingLibs).
func (v *LoaderVersion) Download(ctx context.Context, mc mcpath.MC, version mcpath.Version, existingLibs map[string]bool) ([]pool.Task, error) {
	dir, err := v.installerDir(version)
	if err != nil {
		return nil, err
	}
	installerPath := filepath.Join(dir, installerFile)

	resolved, err := v.resolvedVersion(version)
	if err != nil {
		return nil, err
	}
	installerURL := strings.ReplaceAll(v.flavor.installerURL, "{loader_version}", resolved)

	if _, statErr := os.Stat(installerPath); statErr != nil {
		if err := v.downloadInstaller(ctx, installerURL, installerPath); err != nil {
			return nil, err
		}
	}

	profileData, err := extractZipEntry(installerPath, profileFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provisionerr.ErrInvalidMetadata, err)
	}
	profilePath := filepath.Join(dir, profileFile)
	if err := os.WriteFile(profilePath, profileData, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}

	var profile installerProfile
	if err := json.Unmarshal(profileData, &profile); err != nil {
		return nil, fmt.Errorf("%w: %v", provisionerr.ErrInvalidMetadata, err)
	}

	versionJSONEntry := strings.TrimPrefix(profile.JSON, "/")
	versionData, err := extractZipEntry(installerPath, versionJSONEntry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provisionerr.ErrInvalidMetadata, err)
	}
	versionJSONPath := filepath.Join(dir, versionFile)
	if err := os.WriteFile(versionJSONPath, versionData, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}

	var versionJSON forgeVersionJSON
	if err := json.Unmarshal(versionData, &versionJSON); err != nil {
		return nil, fmt.Errorf("%w: %v", provisionerr.ErrInvalidMetadata, err)
	}

	for _, entry := range profile.Data {
		for _, p := range []string{entry.Client, entry.Server} {
			if strings.HasPrefix(p, "/") {
				rel := strings.TrimPrefix(p, "/")
				data, err := extractZipEntry(installerPath, rel)
				if err != nil {
					continue
				}
				dest := filepath.Join(dir, rel)
				if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
					return nil, fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
				}
				if err := os.WriteFile(dest, data, 0o644); err != nil {
					return nil, fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
				}
			}
		}
	}

	var tasks []pool.Task
	added := make(map[string]bool)
	addLibraries := func(libs []forgeLibrary) {
		for _, lib := range libs {
			if existingLibs[lib.Name] || added[lib.Name] {
				continue
			}
			if lib.Downloads.Artifact.URL == "" {
				if err := extractLibraryFromZip(mc, lib, installerPath); err != nil {
					continue
				}
				added[lib.Name] = true
				continue
			}
			art, perr := maven.Parse(lib.Name)
			if perr != nil {
				continue
			}
			path := filepath.Join(mc.LibraryPath(), art.Path())
			url := lib.Downloads.Artifact.URL
			sha1 := lib.Downloads.Artifact.SHA1
			label := lib.Name
			fc := v.fetchClient
			tasks = append(tasks, pool.Task{
				Label: label,
				Run: func(ctx context.Context, onChunk func(int)) error {
					_, err := fc.CheckOrDownload(ctx, url, path, sha1, onChunk)
					return err
				},
			})
			added[lib.Name] = true
		}
	}

	addLibraries(profile.Libraries)
	addLibraries(versionJSON.Libraries)

	return tasks, nil
}

func (v *LoaderVersion) downloadInstaller(ctx context.Context, url, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return netstate.Classify(ctx, fmt.Errorf("%w: %v", provisionerr.ErrNetwork, err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return netstate.Classify(ctx, fmt.Errorf("%w: unexpected status %d for %s", provisionerr.ErrNetwork, resp.StatusCode, url))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}

func extractZipEntry(zipPath, entryName string) ([]byte, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == entryName {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("entry %q not found in %s", entryName, zipPath)
}

func extractLibraryFromZip(mc mcpath.MC, lib forgeLibrary, installerPath string) error {
	entryName := "maven/" + lib.Downloads.Artifact.Path
	data, err := extractZipEntry(installerPath, entryName)
	if err != nil {
		return err
	}
	art, err := maven.Parse(lib.Name)
	if err != nil {
		return err
	}
	dest := filepath.Join(mc.LibraryPath(), art.Path())
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

// Preprocess runs the installer's processor pipeline: each processor is
// a small Java tool invoked with a classpath and argument list built
// from the install profile's seeded + resolved data map. Idempotent:
// re-running after a partial failure simply re-executes every processor
// again (each processor is expected to tolerate re-run, matching
// upstream's contract).
func (v *LoaderVersion) Preprocess(ctx context.Context, mc mcpath.MC, version mcpath.Version, javaBin string) error {
	dir, err := v.installerDir(version)
	if err != nil {
		return err
	}

	profileData, err := os.ReadFile(filepath.Join(dir, profileFile))
	if err != nil {
		return fmt.Errorf("%w: %v", provisionerr.ErrNotFound, err)
	}
	var profile installerProfile
	if err := json.Unmarshal(profileData, &profile); err != nil {
		return fmt.Errorf("%w: %v", provisionerr.ErrInvalidMetadata, err)
	}

	data := make(map[string]dataEntry, len(profile.Data))
	for k, e := range profile.Data {
		if strings.HasPrefix(e.Client, "/") {
			e.Client = filepath.Join(dir, strings.TrimPrefix(e.Client, "/"))
		}
		if strings.HasPrefix(e.Server, "/") {
			e.Server = filepath.Join(dir, strings.TrimPrefix(e.Server, "/"))
		}
		data[k] = e
	}
	defaultData(data, v.mcVersion, version, mc)

	for _, proc := range profile.Processors {
		if len(proc.Sides) > 0 && !containsString(proc.Sides, "client") {
			continue
		}

		jarArt, err := maven.Parse(proc.Jar)
		if err != nil {
			return fmt.Errorf("%w: %v", provisionerr.ErrInvalidMetadata, err)
		}
		jarPath := filepath.Join(mc.LibraryPath(), jarArt.Path())

		mainClass, err := mainClassFromManifest(jarPath)
		if err != nil {
			return fmt.Errorf("%w: %v", provisionerr.ErrPreprocessFailed, err)
		}

		classpath := []string{jarPath}
		for _, lib := range proc.Classpath {
			art, perr := maven.Parse(lib)
			if perr != nil {
				continue
			}
			classpath = append(classpath, filepath.Join(mc.LibraryPath(), art.Path()))
		}

		var args []string
		for _, raw := range proc.Args {
			arg := raw
			if strings.HasPrefix(arg, "{") && strings.HasSuffix(arg, "}") {
				key := arg[1 : len(arg)-1]
				entry, ok := data[key]
				if !ok {
					return fmt.Errorf("%w: argument %q not found in profile data", provisionerr.ErrPreprocessFailed, key)
				}
				arg = entry.Client
			}
			if strings.HasPrefix(arg, "[") && strings.HasSuffix(arg, "]") {
				art, perr := maven.Parse(arg[1 : len(arg)-1])
				if perr != nil {
					return fmt.Errorf("%w: %v", provisionerr.ErrPreprocessFailed, perr)
				}
				arg = filepath.Join(mc.LibraryPath(), art.Path())
			}
			args = append(args, arg)
		}

		cmdArgs := append([]string{"-cp", strings.Join(classpath, mcpath.ClasspathSeparator()), mainClass}, args...)
		cmd := exec.CommandContext(ctx, javaBin, cmdArgs...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("%w: processor %s: %v: %s", provisionerr.ErrPreprocessFailed, proc.Jar, err, out)
		}
	}

	return nil
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func mainClassFromManifest(jarPath string) (string, error) {
	data, err := extractZipEntry(jarPath, "META-INF/MANIFEST.MF")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, "Main-Class: ") {
			return strings.TrimPrefix(line, "Main-Class: "), nil
		}
	}
	return "", fmt.Errorf("%w: Main-Class not found in manifest", provisionerr.ErrInvalidMetadata)
}

// defaultData seeds the five profile-data variables the processor
// pipeline always expects, in addition to whatever the installer
// profile itself declares.
func defaultData(data map[string]dataEntry, mcVersion string, version mcpath.Version, mc mcpath.MC) {
	data["SIDE"] = dataEntry{Client: "client", Server: "server"}
	data["MINECRAFT_VERSION"] = dataEntry{Client: mcVersion, Server: mcVersion}
	data["MINECRAFT_JAR"] = dataEntry{Client: version.ClientJar()}
	data["ROOT"] = dataEntry{Client: filepath.Join(version.BasePath(), "root")}
	data["LIBRARY_DIR"] = dataEntry{Client: mc.LibraryPath()}
}

// Classpath returns the bundled version manifest's library set as
// absolute paths, keyed by (group:artifact) for override-dedup.
func (v *LoaderVersion) Classpath(ctx context.Context, mc mcpath.MC, version mcpath.Version) (map[string]string, error) {
	dir, err := v.installerDir(version)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, versionFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provisionerr.ErrNotFound, err)
	}
	var vj forgeVersionJSON
	if err := json.Unmarshal(data, &vj); err != nil {
		return nil, fmt.Errorf("%w: %v", provisionerr.ErrInvalidMetadata, err)
	}

	out := make(map[string]string)
	for _, lib := range vj.Libraries {
		art, perr := maven.Parse(lib.Name)
		if perr != nil {
			continue
		}
		out[art.Key().Group+":"+art.Key().Name] = filepath.Join(mc.LibraryPath(), art.Path())
	}
	return out, nil
}

// MainClass returns the bundled version manifest's main class.
func (v *LoaderVersion) MainClass(ctx context.Context, version mcpath.Version) (string, error) {
	dir, err := v.installerDir(version)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(dir, versionFile))
	if err != nil {
		return "", fmt.Errorf("%w: %v", provisionerr.ErrNotFound, err)
	}
	var vj forgeVersionJSON
	if err := json.Unmarshal(data, &vj); err != nil {
		return "", fmt.Errorf("%w: %v", provisionerr.ErrInvalidMetadata, err)
	}
	return vj.MainClass, nil
}

// ExtraArguments returns the bundled version manifest's own JVM and game
// argument lists. Forge/NeoForge ship a full replacement game-argument
// list of their own, so overwriteGame is always true: the caller must
// discard the vanilla game arguments rather than append to them.
func (v *LoaderVersion) ExtraArguments(ctx context.Context, version mcpath.Version) ([]string, []string, bool, error) {
	dir, err := v.installerDir(version)
	if err != nil {
		return nil, nil, false, err
	}
	data, err := os.ReadFile(filepath.Join(dir, versionFile))
	if err != nil {
		return nil, nil, false, fmt.Errorf("%w: %v", provisionerr.ErrNotFound, err)
	}
	var vj forgeVersionJSON
	if err := json.Unmarshal(data, &vj); err != nil {
		return nil, nil, false, fmt.Errorf("%w: %v", provisionerr.ErrInvalidMetadata, err)
	}
	return vj.Arguments.JVM, vj.Arguments.Game, true, nil
}
