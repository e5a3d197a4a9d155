// Package mcpath derives the deterministic on-disk layout for every
// artifact kind the provisioning core downloads or writes.
package mcpath

import (
	"path/filepath"
	"runtime"
)

const (
	javaDir          = "java"
	mcDir            = "minecraft"
	versionDir       = "versions"
	libraryDir       = "lib"
	assetsDir        = "assets"
	assetsObjectsDir = "objects"
	assetsIndexDir   = "indexes"
	nativeDir        = "natives"
	manifestName     = "manifest.json"

	// QuickPlayFile is the well-known relative path written for the
	// quickPlayPath launch variable.
	QuickPlayFile = "quick_play.json"
)

// MC is the root layout for vanilla game data: {data_dir}/minecraft/...
type MC struct {
	base string
}

// NewMC returns the layout rooted at data_dir/minecraft.
func NewMC(dataDir string) MC {
	return MC{base: filepath.Join(dataDir, mcDir)}
}

// Manifest is the path of the cached master manifest.
func (p MC) Manifest() string { return filepath.Join(p.base, manifestName) }

// LibraryPath is the root under which every Maven artifact is stored.
func (p MC) LibraryPath() string { return filepath.Join(p.base, libraryDir) }

// AssetsPath is the root of the assets tree.
func (p MC) AssetsPath() string { return filepath.Join(p.base, assetsDir) }

// AssetObjectsPath is the root under which content-addressed asset
// objects live.
func (p MC) AssetObjectsPath() string { return filepath.Join(p.AssetsPath(), assetsObjectsDir) }

// AssetObjectPath returns the path for a single asset object identified
// by its hash: {objects}/{hash[0:2]}/{hash}.
func (p MC) AssetObjectPath(hash string) string {
	return filepath.Join(p.AssetObjectsPath(), hash[:2], hash)
}

// AssetIndexPath returns the path of a cached asset index.
func (p MC) AssetIndexPath(id string) string {
	return filepath.Join(p.AssetsPath(), assetsIndexDir, id+".json")
}

// VersionsRoot is the root of all per-version directories.
func (p MC) VersionsRoot() string { return filepath.Join(p.base, versionDir) }

// Version is the layout for one game version's installation directory.
type Version struct {
	base string
	id   string
}

// NewVersion returns the layout for {data_dir}/minecraft/versions/{id}.
func NewVersion(dataDir, id string) Version {
	return Version{base: filepath.Join(dataDir, mcDir, versionDir, id), id: id}
}

// BasePath is the version's installation directory.
func (p Version) BasePath() string { return p.base }

// Manifest is the version manifest JSON path.
func (p Version) Manifest() string { return filepath.Join(p.base, p.id+".json") }

// ClientJar is the client jar path.
func (p Version) ClientJar() string { return filepath.Join(p.base, p.id+".jar") }

// Java is the layout for one Java component's managed runtime.
type Java struct {
	base string
	root string
}

// NewJava returns the layout for {data_dir}/java/{component}.
func NewJava(dataDir, component string) Java {
	return Java{
		base: filepath.Join(dataDir, javaDir, component),
		root: filepath.Join(dataDir, javaDir),
	}
}

// ManifestPath is the single process-wide Java platform descriptor path,
// shared by every component.
func (p Java) ManifestPath() string { return filepath.Join(p.root, manifestName) }

// BasePath is the component's runtime root.
func (p Java) BasePath() string { return p.base }

// LibPath is the extraction target for natives pulled out of library jars.
func (p Java) LibPath() string { return filepath.Join(p.base, nativeDir) }

// BinPath is the java executable, OS-specific.
func (p Java) BinPath() string {
	name := "java"
	if runtime.GOOS == "windows" {
		name = "java.exe"
	}
	return filepath.Join(p.base, "bin", name)
}

// ClasspathSeparator is the platform path-list separator used to join
// classpath entries.
func ClasspathSeparator() string {
	if runtime.GOOS == "windows" {
		return ";"
	}
	return ":"
}
