package changelog

import "github.com/clintrovert/cutrelease/pkg/types"

// Filter keeps commits with a recognized type, dropping non-breaking chore(deps) commits.
// Input order is preserved; an empty result is valid.
func Filter(commits []types.Commit, table *types.TypeTable) []types.Commit {
	filtered := make([]types.Commit, 0, len(commits))
	for _, c := range commits {
		if _, ok := table.Lookup(c.Type); !ok {
			continue
		}
		if isDependencyChore(c) {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

func isDependencyChore(c types.Commit) bool {
	return c.Type == "chore" && c.Scope == "deps" && !c.IsBreaking
}
