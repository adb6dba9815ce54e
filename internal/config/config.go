// Package config loads release settings with koanf.
// Priority: environment variables > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/clintrovert/cutrelease/internal/changelog"
	"github.com/clintrovert/cutrelease/pkg/types"
)

// EnvPrefix prefixes every environment override, nested keys use a double underscore
const EnvPrefix = "CUTRELEASE_"

// ErrRepositoryUnknown is returned when owner/name cannot be resolved
var ErrRepositoryUnknown = errors.New("repository is not configured")

// candidateFiles are looked up in the working directory, first match wins
var candidateFiles = []string{
	"changelog.config.yaml",
	"changelog.config.yml",
	"changelog.config.json",
	"changelog.config.toml",
}

// Config holds everything a release run needs
type Config struct {
	From       string         `koanf:"from"`
	To         string         `koanf:"to"`
	Repo       string         `koanf:"repo"`
	BaseBranch string         `koanf:"base_branch"`
	Remote     string         `koanf:"remote"`
	Manifest   ManifestConfig `koanf:"manifest"`
	Git        GitConfig      `koanf:"git"`

	GitHubToken string `koanf:"-"`

	Types *types.TypeTable `koanf:"-"`
}

// ManifestConfig locates the package manifest and the tool that bumps it
type ManifestConfig struct {
	Path string `koanf:"path"`
	// Command is the package manager used to rewrite the version; empty uses the built-in rewrite.
	Command string `koanf:"command"`
}

// GitConfig is the identity used for the release commit
type GitConfig struct {
	UserName  string `koanf:"user_name"`
	UserEmail string `koanf:"user_email"`
}

// Identity returns the configured commit author
func (c *Config) Identity() types.Identity {
	return types.Identity{Name: c.Git.UserName, Email: c.Git.UserEmail}
}

// Owner returns the repository owner, empty when unresolved
func (c *Config) Owner() string {
	owner, _, _ := strings.Cut(c.Repo, "/")
	return owner
}

// RepositoryName returns the repository name, empty when unresolved
func (c *Config) RepositoryName() string {
	_, name, _ := strings.Cut(c.Repo, "/")
	return name
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// Dir is searched for a config file when Path is empty.
	Dir string
	// Path forces a specific config file.
	Path string
}

// Load reads defaults, the first config file found and environment overrides
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	loadDefaults(k)

	path, err := resolvePath(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadFile(k, path); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	return finalize(k, opts.Dir)
}

func loadDefaults(k *koanf.Koanf) {
	for key, value := range Defaults() {
		k.Set(key, value)
	}

	table := changelog.DefaultTypes()
	for _, name := range table.Names() {
		rule, _ := table.Lookup(name)
		k.Set("types."+name+".title", rule.Title)
		k.Set("types."+name+".semver", string(rule.Semver))
	}
}

func resolvePath(opts LoadOptions) (string, error) {
	if opts.Path != "" {
		if _, err := os.Stat(opts.Path); err != nil {
			return "", fmt.Errorf("failed to read config %s: %w", opts.Path, err)
		}
		return opts.Path, nil
	}

	for _, name := range candidateFiles {
		path := filepath.Join(opts.Dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

func loadFile(k *koanf.Koanf, path string) error {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	case ".toml":
		parser = TOMLParser()
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return nil
}

// envTransform maps CUTRELEASE_MANIFEST__PATH to manifest.path
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func finalize(k *koanf.Koanf, dir string) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	table, err := loadTypes(k)
	if err != nil {
		return nil, err
	}
	cfg.Types = table

	if cfg.Repo == "" {
		cfg.Repo = os.Getenv("GITHUB_REPOSITORY")
	}
	cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")

	if cfg.Manifest.Path != "" && !filepath.IsAbs(cfg.Manifest.Path) {
		cfg.Manifest.Path = filepath.Join(dir, cfg.Manifest.Path)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadTypes builds the ordered type table: built-in types first, then user types sorted by name.
// A type set to false is disabled.
func loadTypes(k *koanf.Koanf) (*types.TypeTable, error) {
	table := types.NewTypeTable()

	names := changelog.DefaultTypes().Names()
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	for _, n := range k.MapKeys("types") {
		if !known[n] {
			names = append(names, n)
			known[n] = true
		}
	}

	for _, name := range names {
		key := "types." + name
		switch v := k.Get(key).(type) {
		case nil:
			continue
		case bool:
			if v {
				table.Set(name, types.TypeRule{Title: name})
			}
			continue
		case string:
			// environment overrides arrive as strings
			if v == "false" {
				continue
			}
			return nil, fmt.Errorf("type %s must be a table or false, got %q", name, v)
		}

		var rule types.TypeRule
		if err := k.Unmarshal(key, &rule); err != nil {
			return nil, fmt.Errorf("failed to unmarshal type %s: %w", name, err)
		}
		if rule.Title == "" {
			rule.Title = name
		}
		table.Set(name, rule)
	}

	return table, nil
}
