package config

import (
	"fmt"
	"strings"

	"github.com/clintrovert/cutrelease/pkg/types"
)

// Validate checks values that would otherwise fail late in the run
func Validate(cfg *Config) error {
	if cfg.BaseBranch == "" {
		return fmt.Errorf("base_branch must not be empty")
	}
	if cfg.Remote == "" {
		return fmt.Errorf("remote must not be empty")
	}
	if cfg.Manifest.Path == "" {
		return fmt.Errorf("manifest.path must not be empty")
	}
	if cfg.Git.UserName == "" || cfg.Git.UserEmail == "" {
		return fmt.Errorf("git.user_name and git.user_email are required")
	}
	if cfg.Repo != "" {
		owner, name, ok := strings.Cut(cfg.Repo, "/")
		if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
			return fmt.Errorf("repo must be owner/name, got %q", cfg.Repo)
		}
	}

	for _, name := range cfg.Types.Names() {
		rule, _ := cfg.Types.Lookup(name)
		switch rule.Semver {
		case types.BumpNone, types.BumpPatch, types.BumpMinor, types.BumpMajor:
		default:
			return fmt.Errorf("type %s has invalid semver %q", name, rule.Semver)
		}
	}

	return nil
}
