package fetch

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/aayushdutt/mcprovision/internal/provisionerr"
	"github.com/mholt/archiver/v3"
)

// ExtractRuntime unpacks a Java runtime archive (tar.gz on Linux/macOS,
// zip on Windows) into destDir, stripping the single top-level directory
// component every Adoptium-style runtime archive wraps its contents in.
func ExtractRuntime(archivePath, destDir string) error {
	tmp, err := os.MkdirTemp(filepath.Dir(destDir), ".extract-*")
	if err != nil {
		return fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}
	defer os.RemoveAll(tmp)

	if err := archiver.Unarchive(archivePath, tmp); err != nil {
		return fmt.Errorf("%w: extracting runtime archive: %v", provisionerr.ErrIO, err)
	}

	entries, err := os.ReadDir(tmp)
	if err != nil {
		return fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}

	root := tmp
	if len(entries) == 1 && entries[0].IsDir() {
		root = filepath.Join(tmp, entries[0].Name())
	}

	if err := os.MkdirAll(filepath.Dir(destDir), 0o755); err != nil {
		return fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}
	if err := os.RemoveAll(destDir); err != nil {
		return fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}
	if err := os.Rename(root, destDir); err != nil {
		return fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}
	return nil
}

// ExtractNatives unzips every file matching one of the given suffixes
// (e.g. ".so", ".dll", ".dylib") from a library jar into destDir,
// flattening directory structure. Entries under "META-INF/" are skipped.
func ExtractNatives(jarPath, destDir string, suffixes []string) error {
	r, err := zip.OpenReader(jarPath)
	if err != nil {
		return fmt.Errorf("%w: opening native jar: %v", provisionerr.ErrIO, err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", provisionerr.ErrIO, err)
	}

	for _, f := range r.File {
		if strings.HasPrefix(f.Name, "META-INF/") {
			continue
		}
		if !matchesAny(f.Name, suffixes) {
			continue
		}

		destPath := filepath.Join(destDir, filepath.Base(f.Name))
		if err := extractZipEntry(f, destPath); err != nil {
			return fmt.Errorf("%w: extracting %s: %v", provisionerr.ErrIO, f.Name, err)
		}
	}
	return nil
}

func matchesAny(name string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(name, suf) {
			return true
		}
	}
	return false
}

func extractZipEntry(f *zip.File, destPath string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

// NativeSuffixesForOS returns the native-library file extensions
// relevant on the current OS, used to filter a natives classifier jar's
// contents during extraction.
func NativeSuffixesForOS() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{".dll"}
	case "darwin":
		return []string{".dylib", ".jnilib"}
	default:
		return []string{".so"}
	}
}
