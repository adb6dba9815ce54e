package github

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseRepositoryURL extracts owner and name from a GitHub remote URL.
// Accepted forms: https://github.com/owner/repo(.git), git@github.com:owner/repo.git,
// ssh://git@github.com/owner/repo.git and owner/repo.
func ParseRepositoryURL(raw string) (string, string, error) {
	raw = strings.TrimSpace(raw)

	var path string
	switch {
	case strings.Contains(raw, "://"):
		u, err := url.Parse(raw)
		if err != nil {
			return "", "", fmt.Errorf("failed to parse remote URL: %w", err)
		}
		path = u.Path
	case strings.Contains(raw, "@") && strings.Contains(raw, ":"):
		// scp-like syntax
		_, path, _ = strings.Cut(raw, ":")
	default:
		path = raw
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("remote URL %q is not owner/repo", raw)
	}

	return parts[0], parts[1], nil
}
