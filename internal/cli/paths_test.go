package cli

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "/home/tester")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/home/tester", ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, want)
	}
}

func TestStoreLocation(t *testing.T) {
	tests := []struct {
		name, flag, env, want string
	}{
		{"flag wins", "redis://cache:6379/0", "other.yaml", "redis://cache:6379/0"},
		{"env", "", "mongodb://db/cellforge", "mongodb://db/cellforge"},
		{"default file", "", "", "logic_generated_templates.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(envStore, tt.env)
			if got := storeLocation(tt.flag, defaultLibrary); got != tt.want {
				t.Errorf("storeLocation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTechPath(t *testing.T) {
	t.Setenv(envTech, "/etc/cellforge/tech.toml")
	if got := techPath(""); got != "/etc/cellforge/tech.toml" {
		t.Errorf("techPath(\"\") = %q", got)
	}
	if got := techPath("mine.toml"); got != "mine.toml" {
		t.Errorf("techPath(flag) = %q", got)
	}
}

func TestParseFormats(t *testing.T) {
	if got := strings.Join(parseFormats(""), ","); got != "svg" {
		t.Errorf("parseFormats(\"\") = %s", got)
	}
	if err := validateFormats(parseFormats("svg,json")); err != nil {
		t.Errorf("validateFormats(svg,json) error: %v", err)
	}
	if err := validateFormats([]string{"gds"}); err == nil {
		t.Error("validateFormats(gds) succeeded")
	}
}
