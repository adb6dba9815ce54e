package github

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clintrovert/cutrelease/internal/testutil"
	"github.com/clintrovert/cutrelease/pkg/types"
)

func openTestRepo(t *testing.T, g *testutil.GitRepo) *Repository {
	t.Helper()

	r, err := OpenRepository(g.Dir, "origin", "", zap.NewNop())
	require.NoError(t, err)
	return r
}

func subjects(commits []types.RawCommit) []string {
	out := make([]string, 0, len(commits))
	for _, c := range commits {
		out = append(out, c.Subject)
	}
	return out
}

func TestCommitsBetween(t *testing.T) {
	g := testutil.NewGitRepo(t)
	first := g.Commit("README.md", "hello", "chore: init")
	g.Tag("v1.0.0", first, false)
	g.Commit("a.txt", "a", "feat: add a\n\nlonger body")
	g.Commit("b.txt", "b", "fix(core): fix b (#12)")

	r := openTestRepo(t, g)

	commits, err := r.CommitsBetween("v1.0.0", "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"fix(core): fix b (#12)", "feat: add a"}, subjects(commits))
	assert.Equal(t, "longer body", commits[1].Body)
	assert.Equal(t, types.Identity{Name: "Jane Doe", Email: "jane@example.com"}, commits[0].Author)
	assert.Len(t, commits[0].Hash, 40)

	all, err := r.CommitsBetween("", "main")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = r.CommitsBetween("v9.9.9", "main")
	assert.Error(t, err)
}

func TestLatestTag(t *testing.T) {
	g := testutil.NewGitRepo(t)
	r := openTestRepo(t, g)

	first := g.Commit("README.md", "hello", "chore: init")
	tag, err := r.LatestTag()
	require.NoError(t, err)
	assert.Empty(t, tag)

	g.Tag("v1.0.0", first, false)
	second := g.Commit("a.txt", "a", "feat: a")
	g.Tag("v1.1.0", second, true)
	g.Commit("b.txt", "b", "fix: b")

	tag, err = r.LatestTag()
	require.NoError(t, err)
	assert.Equal(t, "v1.1.0", tag)
}

func TestCurrentBranch(t *testing.T) {
	g := testutil.NewGitRepo(t)
	g.Commit("README.md", "hello", "chore: init")

	branch, err := openTestRepo(t, g).CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
}

func TestRemoteURL(t *testing.T) {
	g := testutil.NewGitRepo(t)

	url, err := openTestRepo(t, g).RemoteURL()
	require.NoError(t, err)
	assert.Equal(t, g.RemoteDir, url)
}

func TestPublishReleaseBranch(t *testing.T) {
	ctx := context.Background()
	g := testutil.NewGitRepo(t)
	g.Commit("package.json", `{"version": "1.2.0"}`, "chore: init")
	g.Push("main")

	r := openTestRepo(t, g)

	exists, err := r.RemoteBranchExists(ctx, "v1.3.0")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, r.CreateBranch("v1.3.0"))
	branch, err := r.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "v1.3.0", branch)

	require.NoError(t, os.WriteFile(filepath.Join(g.Dir, "package.json"), []byte(`{"version": "1.3.0"}`), 0o644))
	identity := types.Identity{Name: "release-bot", Email: "bot@example.com"}
	require.NoError(t, r.CommitAll("v1.3.0", identity))

	head := g.HeadCommit()
	assert.Equal(t, "v1.3.0", head.Message)
	assert.Equal(t, "release-bot", head.Author.Name)
	assert.Equal(t, "bot@example.com", head.Author.Email)

	require.NoError(t, r.PushBranch(ctx, "v1.3.0"))

	exists, err = r.RemoteBranchExists(ctx, "v1.3.0")
	require.NoError(t, err)
	assert.True(t, exists)

	bare, err := git.PlainOpen(g.RemoteDir)
	require.NoError(t, err)
	ref, err := bare.Reference(plumbing.NewBranchReferenceName("v1.3.0"), true)
	require.NoError(t, err)
	assert.Equal(t, head.Hash, ref.Hash())

	cfg, err := g.Repo.Config()
	require.NoError(t, err)
	require.Contains(t, cfg.Branches, "v1.3.0")
	assert.Equal(t, "origin", cfg.Branches["v1.3.0"].Remote)
	assert.Equal(t, plumbing.NewBranchReferenceName("v1.3.0"), cfg.Branches["v1.3.0"].Merge)
}

func TestCreateBranchTwiceFails(t *testing.T) {
	g := testutil.NewGitRepo(t)
	g.Commit("README.md", "hello", "chore: init")
	r := openTestRepo(t, g)

	require.NoError(t, r.CreateBranch("v1.0.1"))
	assert.Error(t, r.CreateBranch("v1.0.1"))
}
