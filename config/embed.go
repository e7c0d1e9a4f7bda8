package config

import (
	"embed"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultScene is the scene loaded when no path is given.
const DefaultScene = "scene.yaml"

//go:embed *.yaml
var ScenesFS embed.FS

// Load reads a scene file from disk, falling back to the embedded copy.
func Load(name string) ([]byte, error) {
	if name == "" {
		name = DefaultScene
	}
	if data, err := os.ReadFile(diskScenePath(name)); err == nil {
		return data, nil
	}
	return ScenesFS.ReadFile(cleanScenePath(name))
}

// ModTime reports when the on-disk scene last changed.
func ModTime(name string) (time.Time, bool) {
	if name == "" {
		name = DefaultScene
	}
	info, err := os.Stat(diskScenePath(name))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// DiskPath is where Load looks for an on-disk scene.
func DiskPath(name string) string {
	if name == "" {
		name = DefaultScene
	}
	return diskScenePath(name)
}

func cleanScenePath(path string) string {
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "config/"); ok {
		return after
	}
	return filepath.Base(s)
}

// diskScenePath keeps explicit paths as given and resolves bare names
// under the config directory.
func diskScenePath(name string) string {
	if strings.ContainsRune(filepath.ToSlash(name), '/') {
		return filepath.FromSlash(name)
	}
	return filepath.Join("config", name)
}
