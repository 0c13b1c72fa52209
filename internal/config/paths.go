package config

import (
	"os"
	"path/filepath"
	"strings"
)

const defaultBaseDir = ".tutor"

// Paths holds resolved filesystem paths for tutor data.
type Paths struct {
	Base   string // ~/.tutor
	Config string // ~/.tutor/config.yaml
	Data   string // ~/.tutor/data
}

// ResolvePaths computes all standard paths from the home directory.
// If TUTOR_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("TUTOR_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:   base,
		Config: filepath.Join(base, "config.yaml"),
		Data:   filepath.Join(base, "data"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Data} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}

// ResolveSQLitePath anchors a relative database file under Data. Empty,
// in-memory, URI and absolute paths are returned unchanged.
func (p Paths) ResolveSQLitePath(path string) string {
	switch {
	case path == "", path == ":memory:", strings.HasPrefix(path, "file:"), filepath.IsAbs(path):
		return path
	default:
		return filepath.Join(p.Data, path)
	}
}

// ParseConfigPath splits a dot-separated config path into segments.
// Returns an error if any segment is empty.
func ParseConfigPath(raw string) ([]string, error) {
	if raw == "" {
		return nil, &ConfigError{Message: "empty config path"}
	}
	parts := strings.Split(raw, ".")
	for _, p := range parts {
		if p == "" {
			return nil, &ConfigError{Message: "config path contains empty segment"}
		}
	}
	return parts, nil
}

// GetValueAtPath traverses a nested map using the given path segments.
func GetValueAtPath(root map[string]any, path []string) (any, bool) {
	current := any(root)
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
