package release

import (
	"context"
	"errors"
	"fmt"

	"github.com/clintrovert/cutrelease/pkg/types"
)

// fakeRepo records every call and marks branches as remote once pushed
type fakeRepo struct {
	branch   string
	tag      string
	commits  []types.RawCommit
	remote   map[string]bool
	pushErr  error
	calls    []string
	gotRange [2]string
}

func (f *fakeRepo) CurrentBranch() (string, error) {
	return f.branch, nil
}

func (f *fakeRepo) LatestTag() (string, error) {
	return f.tag, nil
}

func (f *fakeRepo) CommitsBetween(from, to string) ([]types.RawCommit, error) {
	f.gotRange = [2]string{from, to}
	return f.commits, nil
}

func (f *fakeRepo) RemoteBranchExists(_ context.Context, branch string) (bool, error) {
	return f.remote[branch], nil
}

func (f *fakeRepo) CreateBranch(branch string) error {
	f.calls = append(f.calls, "create "+branch)
	f.branch = branch
	return nil
}

func (f *fakeRepo) CommitAll(message string, author types.Identity) error {
	f.calls = append(f.calls, fmt.Sprintf("commit %s by %s <%s>", message, author.Name, author.Email))
	return nil
}

func (f *fakeRepo) PushBranch(_ context.Context, branch string) error {
	if f.pushErr != nil {
		return f.pushErr
	}
	f.calls = append(f.calls, "push "+branch)
	if f.remote == nil {
		f.remote = make(map[string]bool)
	}
	f.remote[branch] = true
	return nil
}

// fakePulls keeps pull requests keyed by release branch
type fakePulls struct {
	byBranch map[string]*types.PRInfo
	created  []*types.PRInfo
	updated  []*types.PRInfo
	lookups  []types.RepositoryInfo
}

func (f *fakePulls) FindOpenPullRequest(_ context.Context, repo types.RepositoryInfo) (*types.PRInfo, error) {
	f.lookups = append(f.lookups, repo)
	if pr, ok := f.byBranch[repo.ReleaseBranch]; ok {
		copied := *pr
		return &copied, nil
	}
	return nil, nil
}

func (f *fakePulls) CreatePullRequest(_ context.Context, repo types.RepositoryInfo, title, body string, draft bool) (*types.PRInfo, error) {
	if f.byBranch == nil {
		f.byBranch = make(map[string]*types.PRInfo)
	}
	pr := &types.PRInfo{PRNumber: int64(len(f.byBranch) + 1), Title: title, Body: body, Draft: draft, Status: "open"}
	f.byBranch[repo.ReleaseBranch] = pr
	f.created = append(f.created, pr)
	return pr, nil
}

func (f *fakePulls) UpdatePullRequestBody(_ context.Context, repo types.RepositoryInfo, number int64, body string) (*types.PRInfo, error) {
	pr, ok := f.byBranch[repo.ReleaseBranch]
	if !ok || pr.PRNumber != number {
		return nil, errors.New("not found")
	}
	pr.Body = body
	f.updated = append(f.updated, pr)
	return pr, nil
}

func (f *fakePulls) writes() int {
	return len(f.created) + len(f.updated)
}

type fakeManifest struct {
	version string
}

func (f *fakeManifest) Version() (string, error) {
	return f.version, nil
}

// SetVersion lets the manifest double as its own writer
func (f *fakeManifest) SetVersion(_ context.Context, v string) error {
	f.version = v
	return nil
}
