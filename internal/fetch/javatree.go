package fetch

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/aayushdutt/mcprovision/internal/manifest"
)

// ApplyJavaFile realizes a single entry from a Java component's file
// tree at destDir/relPath: creates directories, skips symlinks (not
// portable across the platforms this core targets), and downloads file
// entries, re-applying the executable bit on every successful check or
// download.
func (c *Client) ApplyJavaFile(ctx context.Context, destDir, relPath string, entry manifest.JavaFileEntry, onChunk func(n int)) error {
	fullPath := filepath.Join(destDir, relPath)

	switch entry.Type {
	case manifest.JavaFileDirectory:
		return os.MkdirAll(fullPath, 0o755)

	case manifest.JavaFileLink:
		// Symlink targets are not re-created; the original is a
		// convenience for disk space on POSIX, not a correctness
		// requirement of the runtime tree.
		return nil

	case manifest.JavaFileFile:
		if _, err := c.CheckOrDownload(ctx, entry.Downloads.Raw.URL, fullPath, entry.Downloads.Raw.SHA1, onChunk); err != nil {
			return err
		}
		if entry.Executable && runtime.GOOS != "windows" {
			if err := os.Chmod(fullPath, 0o755); err != nil {
				return err
			}
		}
		return nil
	}

	return nil
}
