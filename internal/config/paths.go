package config

import (
	"os"
	"path/filepath"
	"strings"
)

// expandPath expands $VAR references and a leading ~ in p.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	expanded := os.ExpandEnv(p)
	if expanded != "~" && !strings.HasPrefix(expanded, "~/") && !strings.HasPrefix(expanded, "~"+string(filepath.Separator)) {
		return expanded
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return expanded
	}
	return filepath.Join(home, expanded[1:])
}

// resolvePath expands p and anchors a relative result at root.
// An empty p stays empty.
func resolvePath(root, p string) string {
	p = expandPath(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
