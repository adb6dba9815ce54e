package config

// Defaults returns the default flat configuration values
func Defaults() map[string]any {
	return map[string]any{
		"base_branch":      "main",
		"remote":           "origin",
		"manifest.path":    "package.json",
		"manifest.command": "npm",
		"git.user_name":    "github-actions[bot]",
		"git.user_email":   "41898282+github-actions[bot]@users.noreply.github.com",
	}
}
