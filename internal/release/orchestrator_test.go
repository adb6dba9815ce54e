package release

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clintrovert/cutrelease/internal/changelog"
	"github.com/clintrovert/cutrelease/internal/config"
	"github.com/clintrovert/cutrelease/internal/github"
	"github.com/clintrovert/cutrelease/internal/version"
	"github.com/clintrovert/cutrelease/pkg/types"
)

func testConfig() *config.Config {
	return &config.Config{
		Repo:       "acme/widget",
		BaseBranch: "main",
		Remote:     "origin",
		Git:        config.GitConfig{UserName: "release-bot", UserEmail: "bot@example.com"},
		Types:      changelog.DefaultTypes(),
	}
}

type harness struct {
	repo     *fakeRepo
	pulls    *fakePulls
	manifest *fakeManifest
	orch     *Orchestrator
}

func newHarness(cfg *config.Config, current string, commits ...string) *harness {
	h := &harness{
		repo:     &fakeRepo{branch: "main", tag: "v" + current},
		pulls:    &fakePulls{},
		manifest: &fakeManifest{version: current},
	}
	for i, subject := range commits {
		h.repo.commits = append(h.repo.commits, types.RawCommit{
			Hash:    strings.Repeat(string(rune('a'+i)), 40),
			Subject: subject,
			Author:  types.Identity{Name: "jane doe", Email: "jane@example.com"},
		})
	}
	h.orch = NewOrchestrator(cfg, h.repo, h.pulls, h.manifest, h.manifest, zap.NewNop())
	return h
}

func TestRunCreatesBranchAndDraftPullRequest(t *testing.T) {
	h := newHarness(testConfig(), "1.2.0", "feat: add widgets")

	result, err := h.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.BumpMinor, result.Bump)
	assert.Equal(t, "1.3.0", result.Version)
	assert.Equal(t, "v1.3.0", result.Branch)
	assert.True(t, result.BranchCreated)
	assert.True(t, result.PullRequestCreated)

	assert.Equal(t, []string{
		"create v1.3.0",
		"commit v1.3.0 by release-bot <bot@example.com>",
		"push v1.3.0",
	}, h.repo.calls)
	assert.Equal(t, "1.3.0", h.manifest.version)

	require.Len(t, h.pulls.created, 1)
	pr := h.pulls.created[0]
	assert.Equal(t, "v1.3.0", pr.Title)
	assert.True(t, pr.Draft)
	assert.True(t, strings.HasPrefix(pr.Body, "> 1.3.0 is the next minor release.\n>\n> **Timetable**: to be announced.\n"+github.ChangelogMarker+"\n"))
	assert.Contains(t, pr.Body, "compare/v1.2.0...v1.3.0")
	assert.Contains(t, pr.Body, "- Add widgets")
	assert.NotContains(t, pr.Body, "## v1.2.0...main")

	require.Len(t, h.pulls.lookups, 1)
	lookup := h.pulls.lookups[0]
	assert.Equal(t, "acme:v1.3.0", lookup.HeadRef())
	assert.Equal(t, "main", lookup.BaseBranch)
	assert.Equal(t, "widget", lookup.Name)
}

func TestRunUpdatesExistingPullRequest(t *testing.T) {
	h := newHarness(testConfig(), "1.2.0", "feat: add widgets")
	h.repo.remote = map[string]bool{"v1.3.0": true}
	h.pulls.byBranch = map[string]*types.PRInfo{
		"v1.3.0": {PRNumber: 7, Body: "Ships on Friday.\n" + github.ChangelogMarker + "\nstale"},
	}

	result, err := h.orch.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, result.BranchCreated)
	assert.False(t, result.PullRequestCreated)
	assert.Empty(t, h.repo.calls)
	assert.Equal(t, "1.2.0", h.manifest.version)

	assert.Empty(t, h.pulls.created)
	require.Len(t, h.pulls.updated, 1)
	body := h.pulls.updated[0].Body
	assert.True(t, strings.HasPrefix(body, "Ships on Friday.\n\n"+github.ChangelogMarker+"\n"))
	assert.NotContains(t, body, "stale")
	assert.Contains(t, body, "- Add widgets")
}

func TestRunTwiceIsIdempotentForBranch(t *testing.T) {
	h := newHarness(testConfig(), "1.2.0", "fix: patch things")

	_, err := h.orch.Run(context.Background())
	require.NoError(t, err)
	firstCalls := len(h.repo.calls)
	h.manifest.version = "1.2.0"

	result, err := h.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1.2.1", result.Version)
	assert.False(t, result.BranchCreated)
	assert.Len(t, h.repo.calls, firstCalls)
	assert.Len(t, h.pulls.created, 1)
	assert.Len(t, h.pulls.updated, 1)
}

func TestRunWithoutRecognizedCommitsBumpsPatch(t *testing.T) {
	h := newHarness(testConfig(), "1.2.0", "chore(deps): bump lodash", "wip: nothing")

	result, err := h.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.BumpNone, result.Bump)
	assert.Equal(t, "1.2.1", result.Version)
	assert.Contains(t, h.pulls.created[0].Body, "> 1.2.1 is the next patch release.")
	assert.NotContains(t, h.pulls.created[0].Body, "lodash")
}

func TestRunBreakingChangeBumpsMajor(t *testing.T) {
	h := newHarness(testConfig(), "1.2.0", "feat!: new api")

	result, err := h.orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", result.Version)
	assert.Equal(t, "v2.0.0", h.pulls.created[0].Title)
}

func TestRunResolvesRange(t *testing.T) {
	tests := map[string]struct {
		from, to string
		want     [2]string
	}{
		"defaults":   {want: [2]string{"v1.2.0", "main"}},
		"configured": {from: "v1.0.0", to: "release", want: [2]string{"v1.0.0", "release"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			cfg.From, cfg.To = tt.from, tt.to
			h := newHarness(cfg, "1.2.0", "fix: x")

			_, err := h.orch.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.repo.gotRange)
		})
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	h := newHarness(testConfig(), "1.2.0", "feat: add widgets")
	h.orch.SetDryRun(true)

	result, err := h.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1.3.0", result.Version)
	assert.Contains(t, result.Notes, github.ChangelogMarker)
	assert.Empty(t, h.repo.calls)
	assert.Zero(t, h.pulls.writes())
	assert.Equal(t, "1.2.0", h.manifest.version)
}

func TestRunStopsOnPushFailure(t *testing.T) {
	h := newHarness(testConfig(), "1.2.0", "feat: add widgets")
	h.repo.pushErr = errors.New("remote rejected")

	_, err := h.orch.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote rejected")

	assert.Equal(t, []string{"create v1.3.0", "commit v1.3.0 by release-bot <bot@example.com>"}, h.repo.calls)
	assert.Empty(t, h.pulls.lookups)
}

func TestRunRejectsInvalidManifestVersion(t *testing.T) {
	h := newHarness(testConfig(), "next", "feat: add widgets")

	_, err := h.orch.Run(context.Background())
	assert.ErrorIs(t, err, version.ErrInvalidVersion)
	assert.Empty(t, h.repo.calls)
}
