package changelog

import (
	"regexp"
	"strings"

	"github.com/clintrovert/cutrelease/pkg/types"
)

var (
	conventionalPattern = regexp.MustCompile(`^(?::\w+:|[\x{2600}-\x{2B55}]|[\x{1F300}-\x{1FAFF}])?\x{FE0F}?\s*([a-zA-Z]+)(?:\((.+)\))?(!)?: (.+)$`)
	pullRequestPattern  = regexp.MustCompile(`(?i)\([ a-z]*(#\d+)\s*\)`)
	issuePattern        = regexp.MustCompile(`#\d+`)
	coAuthorPattern     = regexp.MustCompile(`(?im)co-authored-by:\s*(.+?)\s*<(.+)>`)
)

const breakingMarker = "BREAKING CHANGE:"

// Parse turns raw commits into conventional commits, keeping their order
func Parse(raw []types.RawCommit) []types.Commit {
	commits := make([]types.Commit, 0, len(raw))
	for _, rc := range raw {
		commits = append(commits, ParseCommit(rc))
	}
	return commits
}

// ParseCommit parses a single commit subject and body.
// Subjects that are not conventional keep an empty type and the whole subject as description.
func ParseCommit(rc types.RawCommit) types.Commit {
	c := types.Commit{
		RawCommit:   rc,
		Description: strings.TrimSpace(rc.Subject),
		Authors:     []types.Identity{rc.Author},
	}

	if m := conventionalPattern.FindStringSubmatch(strings.TrimSpace(rc.Subject)); m != nil {
		c.Type = m[1]
		c.Scope = m[2]
		c.IsBreaking = m[3] == "!"
		c.Description = m[4]
	}
	if strings.Contains(rc.Body, breakingMarker) {
		c.IsBreaking = true
	}

	c.References = extractReferences(c.Description, rc.ShortHash())
	c.Description = strings.TrimSpace(pullRequestPattern.ReplaceAllString(c.Description, ""))

	for _, m := range coAuthorPattern.FindAllStringSubmatch(rc.Body, -1) {
		c.Authors = append(c.Authors, types.Identity{
			Name:  strings.TrimSpace(m[1]),
			Email: strings.TrimSpace(m[2]),
		})
	}

	return c
}

func extractReferences(description, shortHash string) []types.Reference {
	var refs []types.Reference
	seen := make(map[string]bool)

	for _, m := range pullRequestPattern.FindAllStringSubmatch(description, -1) {
		refs = append(refs, types.Reference{Kind: types.ReferencePullRequest, Value: m[1]})
		seen[m[1]] = true
	}
	for _, m := range issuePattern.FindAllString(description, -1) {
		if seen[m] {
			continue
		}
		seen[m] = true
		refs = append(refs, types.Reference{Kind: types.ReferenceIssue, Value: m})
	}

	return append(refs, types.Reference{Kind: types.ReferenceHash, Value: shortHash})
}
