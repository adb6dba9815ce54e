package release

import (
	"fmt"

	"github.com/clintrovert/cutrelease/internal/config"
	"github.com/clintrovert/cutrelease/internal/github"
)

// RemoteLocator exposes the URL of the release remote
type RemoteLocator interface {
	RemoteURL() (string, error)
}

// ResolveRepository fills cfg.Repo from the remote URL when neither the config nor the environment set it
func ResolveRepository(cfg *config.Config, remote RemoteLocator) error {
	if cfg.Repo != "" {
		return nil
	}

	raw, err := remote.RemoteURL()
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrRepositoryUnknown, err)
	}
	owner, name, err := github.ParseRepositoryURL(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrRepositoryUnknown, err)
	}

	cfg.Repo = owner + "/" + name
	return nil
}
