// Package maven parses and derives paths/URLs from Maven coordinate
// strings, the canonical identifier for Minecraft library artifacts.
package maven

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Artifact is a parsed Maven coordinate: group:artifact:version[:classifier][@ext].
type Artifact struct {
	Group      string
	Name       string
	Version    string
	Classifier string // empty if absent
	Ext        string // defaults to "jar"
}

// Key is the (group, artifact) identity used for classpath de-duplication.
type Key struct {
	Group string
	Name  string
}

// Key returns this artifact's de-duplication key.
func (a Artifact) Key() Key { return Key{Group: a.Group, Name: a.Name} }

// Parse parses "group:artifact:version[:classifier][@ext]".
func Parse(coord string) (Artifact, error) {
	parts := strings.Split(coord, ":")
	if len(parts) < 3 {
		return Artifact{}, fmt.Errorf("invalid maven coordinate %q", coord)
	}

	a := Artifact{Group: parts[0], Name: parts[1], Ext: "jar"}

	last := parts[len(parts)-1]
	version, ext, hasExt := strings.Cut(last, "@")
	if hasExt {
		a.Ext = ext
	}

	switch len(parts) {
	case 3:
		a.Version = version
	default:
		// group:artifact:version:classifier[@ext]
		a.Version = parts[2]
		a.Classifier = version
	}

	return a, nil
}

// Path derives the on-disk path fragment (relative to a library root):
// {group/with/slashes}/{artifact}/{version}/{artifact}-{version}[-{classifier}].{ext}.
func (a Artifact) Path() string {
	groupPath := filepath.Join(strings.Split(a.Group, ".")...)
	filename := a.Name + "-" + a.Version
	if a.Classifier != "" {
		filename += "-" + a.Classifier
	}
	filename += "." + a.Ext
	return filepath.Join(groupPath, a.Name, a.Version, filename)
}

// URL derives the download URL given a Maven repository base URL.
func (a Artifact) URL(baseURL string) string {
	groupPath := strings.ReplaceAll(a.Group, ".", "/")
	filename := a.Name + "-" + a.Version
	if a.Classifier != "" {
		filename += "-" + a.Classifier
	}
	filename += "." + a.Ext
	return fmt.Sprintf("%s/%s/%s/%s/%s", strings.TrimRight(baseURL, "/"), groupPath, a.Name, a.Version, filename)
}

// String reconstructs the canonical coordinate string.
func (a Artifact) String() string {
	s := fmt.Sprintf("%s:%s:%s", a.Group, a.Name, a.Version)
	if a.Classifier != "" {
		s += ":" + a.Classifier
	}
	if a.Ext != "" && a.Ext != "jar" {
		s += "@" + a.Ext
	}
	return s
}
