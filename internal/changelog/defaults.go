package changelog

import "github.com/clintrovert/cutrelease/pkg/types"

// DefaultTypes returns the recognized commit types used when no configuration overrides them
func DefaultTypes() *types.TypeTable {
	t := types.NewTypeTable()
	t.Set("feat", types.TypeRule{Title: "🚀 Enhancements", Semver: types.BumpMinor})
	t.Set("perf", types.TypeRule{Title: "🔥 Performance", Semver: types.BumpPatch})
	t.Set("fix", types.TypeRule{Title: "🩹 Fixes", Semver: types.BumpPatch})
	t.Set("refactor", types.TypeRule{Title: "💅 Refactors", Semver: types.BumpPatch})
	t.Set("docs", types.TypeRule{Title: "📖 Documentation", Semver: types.BumpPatch})
	t.Set("build", types.TypeRule{Title: "📦 Build", Semver: types.BumpPatch})
	t.Set("types", types.TypeRule{Title: "🌊 Types", Semver: types.BumpPatch})
	t.Set("chore", types.TypeRule{Title: "🏡 Chore"})
	t.Set("examples", types.TypeRule{Title: "🏀 Examples"})
	t.Set("test", types.TypeRule{Title: "✅ Tests"})
	t.Set("style", types.TypeRule{Title: "🎨 Styles"})
	t.Set("ci", types.TypeRule{Title: "🤖 CI"})
	return t
}
