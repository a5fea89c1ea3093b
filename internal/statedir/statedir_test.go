package statedir

import (
	"path/filepath"
	"testing"
)

func TestPaths(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"store in dir", StorePath("/tmp/state"), filepath.Join("/tmp/state", "store.json")},
		{"store default", StorePath(""), filepath.Join(".tasks", "store.json")},
		{"lock in dir", LockPath("/tmp/state"), filepath.Join("/tmp/state", "store.lock")},
		{"dir dot", DirPath("."), ".tasks"},
		{"dir empty", DirPath(""), ".tasks"},
		{"dir nested", DirPath("/work"), filepath.Join("/work", ".tasks")},
		{"config", ConfigPath("/work"), filepath.Join("/work", ".tasks", "tasks.toml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
