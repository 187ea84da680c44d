package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"fimon/internal/digest"
)

// Config represents the complete fimon run configuration.
type Config struct {
	Database string     `yaml:"database"`
	Digest   string     `yaml:"digest"`
	Workers  int        `yaml:"workers"`
	Include  PathsBlock `yaml:"include"`
	Exclude  PathsBlock `yaml:"exclude"`

	algo digest.Algo
}

// PathsBlock declares a set of files and directories.
type PathsBlock struct {
	Files       []string `yaml:"files"`
	Directories []string `yaml:"directories"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.expandEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// expandEnv expands environment variables in all path fields
func (c *Config) expandEnv() {
	c.Database = os.ExpandEnv(c.Database)
	expandAll(c.Include.Files)
	expandAll(c.Include.Directories)
	expandAll(c.Exclude.Files)
	expandAll(c.Exclude.Directories)
}

func expandAll(paths []string) {
	for i, p := range paths {
		paths[i] = os.ExpandEnv(p)
	}
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Digest == "" {
		c.Digest = string(digest.Default)
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if !filepath.IsAbs(c.Database) {
		return fmt.Errorf("database must be an absolute path: %s", c.Database)
	}

	algo, err := digest.Parse(c.Digest)
	if err != nil {
		return err
	}
	c.algo = algo

	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}

	if len(c.Include.Files) == 0 && len(c.Include.Directories) == 0 {
		return fmt.Errorf("at least one include.files or include.directories entry is required")
	}

	return nil
}

// Algo returns the validated digest algorithm.
func (c *Config) Algo() digest.Algo {
	return c.algo
}

// TrackedPaths expands the include and exclude sets into the ordered,
// duplicate-free list of monitored files. Explicitly included files come
// first in declaration order, followed by every regular file under the
// included directories in lexical walk order. Paths are compared by exact
// string equality; no normalization or symlink resolution.
func (c *Config) TrackedPaths() ([]string, error) {
	excludedFiles := make(map[string]bool, len(c.Exclude.Files))
	for _, f := range c.Exclude.Files {
		excludedFiles[f] = true
	}
	excludedDirs := make(map[string]bool, len(c.Exclude.Directories))
	for _, d := range c.Exclude.Directories {
		excludedDirs[d] = true
	}

	seen := make(map[string]bool)
	var tracked []string

	for _, f := range c.Include.Files {
		if excludedFiles[f] || seen[f] {
			continue
		}
		seen[f] = true
		tracked = append(tracked, f)
	}

	for _, dir := range c.Include.Directories {
		walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == dir {
					return fmt.Errorf("include directory %s: %w", dir, err)
				}
				// Unreadable entries below the root are skipped here;
				// unreadable tracked files surface in the diff instead.
				return nil
			}
			if d.IsDir() {
				if excludedDirs[path] {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if excludedFiles[path] || seen[path] {
				return nil
			}
			seen[path] = true
			tracked = append(tracked, path)
			return nil
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}

	return tracked, nil
}
