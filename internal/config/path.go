package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a leading ~ to the user's home directory and then
// substitutes $VAR and ${VAR} references. A path whose home directory cannot
// be determined keeps its ~.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	return os.ExpandEnv(expandHome(path))
}

// ExpandPaths applies ExpandPath to each path, dropping blank entries such as
// the ones a trailing comma leaves in a repeated flag.
func ExpandPaths(paths ...string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, ExpandPath(p))
		}
	}
	return out
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/' && rest[0] != filepath.Separator) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if rest == "" {
		return home
	}
	return filepath.Join(home, rest[1:])
}
