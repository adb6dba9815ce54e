package changelog

import "github.com/clintrovert/cutrelease/pkg/types"

// DetermineBump decides the release bump for a set of commits.
// A breaking commit forces major; otherwise the highest bump among the commit types wins.
// BumpNone is returned when no commit carries a bump.
func DetermineBump(commits []types.Commit, table *types.TypeTable) types.BumpType {
	bump := types.BumpNone
	for _, c := range commits {
		if c.IsBreaking {
			return types.BumpMajor
		}
		if rule, ok := table.Lookup(c.Type); ok {
			bump = bump.Max(rule.Semver)
		}
	}
	return bump
}
