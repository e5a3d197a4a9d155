// Package manifest fetches and parses the chain of JSON manifests that
// describe a game version: master manifest, version manifest, assets
// index, Java platform descriptor, and Java component files listing.
package manifest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aayushdutt/mcprovision/internal/rules"
)

// VersionType classifies a master-manifest version record.
type VersionType string

const (
	Release  VersionType = "release"
	Snapshot VersionType = "snapshot"
	OldBeta  VersionType = "old_beta"
	OldAlpha VersionType = "old_alpha"
)

// MasterManifest is the root of the version_manifest_v2.json document.
type MasterManifest struct {
	Latest   LatestVersions  `json:"latest"`
	Versions []VersionRecord `json:"versions"`
}

// LatestVersions names the current release and snapshot ids.
type LatestVersions struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}

// VersionRecord is one entry in the master manifest's version list.
type VersionRecord struct {
	ID          string      `json:"id"`
	Type        VersionType `json:"type"`
	URL         string      `json:"url"`
	Time        time.Time   `json:"time"`
	ReleaseTime time.Time   `json:"releaseTime"`
	SHA1        string      `json:"sha1"`
}

// Artifact is a single downloadable, content-addressed file.
type Artifact struct {
	URL  string `json:"url"`
	Path string `json:"path,omitempty"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
}

// VersionManifest is the per-version JSON descriptor ({id}.json).
type VersionManifest struct {
	ID          string         `json:"id"`
	Type        VersionType    `json:"type"`
	MainClass   string         `json:"mainClass"`
	Arguments   Arguments      `json:"arguments"`
	AssetIndex  AssetIndexRef  `json:"assetIndex"`
	Downloads   Downloads      `json:"downloads"`
	JavaVersion JavaVersionReq `json:"javaVersion"`
	Libraries   []Library      `json:"libraries"`
}

// Downloads holds the client (and optionally server) jar download info.
type Downloads struct {
	Client *Artifact `json:"client,omitempty"`
	Server *Artifact `json:"server,omitempty"`
}

// AssetIndexRef references the asset index document for this version.
type AssetIndexRef struct {
	ID        string `json:"id"`
	SHA1      string `json:"sha1"`
	Size      int64  `json:"size"`
	TotalSize int64  `json:"totalSize"`
	URL       string `json:"url"`
}

// JavaVersionReq names the Java runtime component this version needs.
type JavaVersionReq struct {
	Component    string `json:"component"`
	MajorVersion int    `json:"majorVersion"`
}

// Library is one entry in a version's libraries list.
type Library struct {
	Name      string            `json:"name"`
	URL       string            `json:"url,omitempty"`
	Downloads *LibraryDownloads `json:"downloads,omitempty"`
	Rules     []rules.Rule      `json:"rules,omitempty"`
}

// LibraryDownloads holds the main artifact and/or OS-specific natives.
type LibraryDownloads struct {
	Artifact    *Artifact            `json:"artifact,omitempty"`
	Classifiers map[string]*Artifact `json:"classifiers,omitempty"`
}

// NativesClassifierKey returns the classifiers map key carrying this
// library's natives jar for the current OS ("natives-linux" etc.).
func NativesClassifierKey(osName string) string {
	return "natives-" + osName
}

// Arguments holds the modern (1.13+) game/jvm argument lists. Each
// element is either a bare string or a rule-gated object.
type Arguments struct {
	Game []Argument `json:"game"`
	JVM  []Argument `json:"jvm"`
}

// Argument is a tagged union: a literal string, or an object carrying a
// rule set plus a value (string or list of strings).
type Argument struct {
	Literal string
	Rules   []rules.Rule
	Value   []string
	IsRule  bool
}

// UnmarshalJSON implements the "try string, else object" structural
// decode: most argument entries are bare strings, but rule-gated ones
// arrive as an object carrying a rule set plus a value.
func (a *Argument) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Literal = s
		a.IsRule = false
		return nil
	}

	var obj struct {
		Rules []rules.Rule    `json:"rules"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("argument: neither string nor rule object: %w", err)
	}

	a.IsRule = true
	a.Rules = obj.Rules

	var single string
	if err := json.Unmarshal(obj.Value, &single); err == nil {
		a.Value = []string{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(obj.Value, &list); err != nil {
		return fmt.Errorf("argument value neither string nor list: %w", err)
	}
	a.Value = list
	return nil
}

// Assets is the parsed assets index: a map from asset name to its
// content-addressed object.
type Assets struct {
	Objects map[string]AssetObject `json:"objects"`
}

// AssetObject is one entry in an assets index.
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// JavaComponent names one of Mojang's Java runtime channels.
type JavaComponent string

const (
	JavaRuntimeAlpha         JavaComponent = "java-runtime-alpha"
	JavaRuntimeBeta          JavaComponent = "java-runtime-beta"
	JavaRuntimeDelta         JavaComponent = "java-runtime-delta"
	JavaRuntimeGamma         JavaComponent = "java-runtime-gamma"
	JavaRuntimeGammaSnapshot JavaComponent = "java-runtime-gamma-snapshot"
	JreLegacy                JavaComponent = "jre-legacy"
)

// JavaPlatform is the process-wide Java platform descriptor: OS name ->
// component -> ordered candidate list (the first entry is the one used).
type JavaPlatform map[string]map[JavaComponent][]JavaPlatformEntry

// JavaPlatformEntry is one candidate runtime for a component on one OS.
type JavaPlatformEntry struct {
	Manifest Artifact          `json:"manifest"`
	Version  JavaPlatformBuild `json:"version"`
}

// JavaPlatformBuild names the concrete build behind a platform entry.
type JavaPlatformBuild struct {
	Name     string `json:"name"`
	Released string `json:"released"`
}

// JavaFiles is the per-component files listing fetched via the manifest
// entry's URL.
type JavaFiles struct {
	Files map[string]JavaFileEntry `json:"files"`
}

// JavaFileKind discriminates a JavaFileEntry's variant.
type JavaFileKind string

const (
	JavaFileDirectory JavaFileKind = "directory"
	JavaFileLink      JavaFileKind = "link"
	JavaFileFile      JavaFileKind = "file"
)

// JavaFileEntry is one entry in a Java component's file tree.
type JavaFileEntry struct {
	Type       JavaFileKind       `json:"type"`
	Target     string             `json:"target,omitempty"`     // for Link
	Executable bool               `json:"executable,omitempty"` // for File
	Downloads  *JavaFileDownloads `json:"downloads,omitempty"`  // for File
}

// JavaFileDownloads holds a Java runtime file's raw (and optionally
// LZMA-compressed) download.
type JavaFileDownloads struct {
	Raw  Artifact  `json:"raw"`
	LZMA *Artifact `json:"lzma,omitempty"`
}
