// Package config handles provisioning-core configuration and paths.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config holds the provisioning core's tunables and on-disk layout root.
type Config struct {
	// Paths
	DataDir      string `json:"dataDir"`
	AssetsDir    string `json:"assetsDir"`
	LibrariesDir string `json:"librariesDir"`

	// Java
	JavaPath string   `json:"javaPath"`
	JVMArgs  []string `json:"jvmArgs"`

	// Concurrency/network tunables. CheckConcurrency and
	// DownloadConcurrency size the internal/pool batches. HTTPTimeout and
	// DebounceInterval are only stored and persisted: internal/fetch and
	// internal/events use their own built-in timeout and debounce window.
	CheckConcurrency    int           `json:"checkConcurrency"`
	DownloadConcurrency int           `json:"downloadConcurrency"`
	HTTPTimeout         time.Duration `json:"httpTimeout"`
	DebounceInterval    time.Duration `json:"debounceInterval"`

	// Loader index/Maven base URLs. These are stored and persisted only;
	// the internal/loader adapters use their own built-in URLs and do not
	// read these fields.
	FabricMetaBase    string `json:"fabricMetaBase"`
	FabricMavenBase   string `json:"fabricMavenBase"`
	QuiltMetaBase     string `json:"quiltMetaBase"`
	QuiltMavenBase    string `json:"quiltMavenBase"`
	ForgeIndexURL     string `json:"forgeIndexURL"`
	ForgeMavenBase    string `json:"forgeMavenBase"`
	NeoForgeIndexURL  string `json:"neoForgeIndexURL"`
	NeoForgeMavenBase string `json:"neoForgeMavenBase"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	dataDir := getDefaultDataDir()
	return &Config{
		DataDir:      dataDir,
		AssetsDir:    filepath.Join(dataDir, "minecraft", "assets"),
		LibrariesDir: filepath.Join(dataDir, "minecraft", "lib"),
		JVMArgs:      []string{"-Xmx2G", "-Xms512M"},

		CheckConcurrency:    20,
		DownloadConcurrency: 20,
		HTTPTimeout:         10 * time.Second,
		DebounceInterval:    50 * time.Millisecond,

		FabricMetaBase:  "https://meta.fabricmc.net",
		FabricMavenBase: "https://maven.fabricmc.net",
		QuiltMetaBase:   "https://meta.quiltmc.org",
		QuiltMavenBase:  "https://maven.quiltmc.org/repository/release",

		ForgeIndexURL:  "https://files.minecraftforge.net/net/minecraftforge/forge/maven-metadata.json",
		ForgeMavenBase: "https://maven.minecraftforge.net",

		NeoForgeIndexURL:  "https://maven.neoforged.net/releases/net/neoforged/neoforge/maven-metadata.xml",
		NeoForgeMavenBase: "https://maven.neoforged.net/releases",
	}
}

// Load reads config from disk, falling back to defaults for any field
// missing from the file (including a missing file entirely).
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath := filepath.Join(cfg.DataDir, "config.json")
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	configPath := filepath.Join(c.DataDir, "config.json")
	return os.WriteFile(configPath, data, 0o644)
}

// EnsureDirs creates every directory this config's paths require.
func (c *Config) EnsureDirs() error {
	dirs := []string{c.DataDir, c.AssetsDir, c.LibrariesDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func getDefaultDataDir() string {
	// Check for portable mode first.
	exe, _ := os.Executable()
	portablePath := filepath.Join(filepath.Dir(exe), "data")
	if _, err := os.Stat(portablePath); err == nil {
		return portablePath
	}

	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "mcprovision")
	}

	home, _ := os.UserHomeDir()
	switch {
	case os.Getenv("APPDATA") != "": // Windows
		return filepath.Join(os.Getenv("APPDATA"), "mcprovision")
	default: // Linux/macOS
		return filepath.Join(home, ".local", "share", "mcprovision")
	}
}
