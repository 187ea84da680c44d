package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fimon/internal/digest"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fimon.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database: /var/lib/fimon/baseline.db
include:
  files:
    - /etc/hosts
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	if cfg.Algo() != digest.SHA256 {
		t.Errorf("default digest = %s, want %s", cfg.Algo(), digest.SHA256)
	}
	if cfg.Workers != 1 {
		t.Errorf("default workers = %d, want 1", cfg.Workers)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("FIMON_TEST_STATE", "/var/lib/fimon")
	path := writeConfig(t, `
database: $FIMON_TEST_STATE/baseline.db
include:
  files:
    - $FIMON_TEST_STATE/watched.conf
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	if cfg.Database != "/var/lib/fimon/baseline.db" {
		t.Errorf("database = %s, env var not expanded", cfg.Database)
	}
	if cfg.Include.Files[0] != "/var/lib/fimon/watched.conf" {
		t.Errorf("include file = %s, env var not expanded", cfg.Include.Files[0])
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"missing database",
			"include:\n  files: [/etc/hosts]\n",
			"database is required",
		},
		{
			"relative database",
			"database: baseline.db\ninclude:\n  files: [/etc/hosts]\n",
			"absolute path",
		},
		{
			"unknown digest",
			"database: /tmp/b.db\ndigest: md5\ninclude:\n  files: [/etc/hosts]\n",
			"unknown digest algorithm",
		},
		{
			"negative workers",
			"database: /tmp/b.db\nworkers: -2\ninclude:\n  files: [/etc/hosts]\n",
			"workers must be at least 1",
		},
		{
			"no includes",
			"database: /tmp/b.db\n",
			"at least one include",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load on a missing file should fail")
	}
}

func TestTrackedPathsOrderingAndExclusion(t *testing.T) {
	root := t.TempDir()
	mustWrite := func(rel string) string {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(rel), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	explicit := mustWrite("explicit.conf")
	a := mustWrite("watched/a.txt")
	b := mustWrite("watched/b.txt")
	c := mustWrite("watched/sub/c.txt")
	mustWrite("watched/cache/skipped.txt")
	mustWrite("watched/secret.txt")

	cfg := &Config{
		Database: filepath.Join(root, "baseline.db"),
		Include: PathsBlock{
			Files:       []string{explicit, a}, // a repeats below via the walk
			Directories: []string{filepath.Join(root, "watched")},
		},
		Exclude: PathsBlock{
			Files:       []string{filepath.Join(root, "watched", "secret.txt")},
			Directories: []string{filepath.Join(root, "watched", "cache")},
		},
	}

	tracked, err := cfg.TrackedPaths()
	if err != nil {
		t.Fatalf("TrackedPaths: unexpected error: %v", err)
	}

	want := []string{explicit, a, b, c}
	if len(tracked) != len(want) {
		t.Fatalf("tracked = %v, want %v", tracked, want)
	}
	for i := range want {
		if tracked[i] != want[i] {
			t.Errorf("tracked[%d] = %s, want %s", i, tracked[i], want[i])
		}
	}
}

func TestTrackedPathsMissingIncludeDirectory(t *testing.T) {
	cfg := &Config{
		Include: PathsBlock{
			Directories: []string{filepath.Join(t.TempDir(), "absent")},
		},
	}
	if _, err := cfg.TrackedPaths(); err == nil {
		t.Fatal("TrackedPaths should fail for a missing include directory")
	}
}
