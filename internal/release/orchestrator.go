package release

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clintrovert/cutrelease/internal/changelog"
	"github.com/clintrovert/cutrelease/internal/config"
	"github.com/clintrovert/cutrelease/internal/github"
	"github.com/clintrovert/cutrelease/internal/version"
	"github.com/clintrovert/cutrelease/pkg/types"
)

// Repository is the local git repository and its remote
type Repository interface {
	CurrentBranch() (string, error)
	LatestTag() (string, error)
	CommitsBetween(from, to string) ([]types.RawCommit, error)
	RemoteBranchExists(ctx context.Context, branch string) (bool, error)
	CreateBranch(branch string) error
	CommitAll(message string, author types.Identity) error
	PushBranch(ctx context.Context, branch string) error
}

// PullRequests is the hosting API for release pull requests
type PullRequests interface {
	FindOpenPullRequest(ctx context.Context, repo types.RepositoryInfo) (*types.PRInfo, error)
	CreatePullRequest(ctx context.Context, repo types.RepositoryInfo, title, body string, draft bool) (*types.PRInfo, error)
	UpdatePullRequestBody(ctx context.Context, repo types.RepositoryInfo, number int64, body string) (*types.PRInfo, error)
}

// VersionReader reads the current project version
type VersionReader interface {
	Version() (string, error)
}

// Result describes what a run decided and changed
type Result struct {
	From          string
	To            string
	Bump          types.BumpType
	Version       string
	Branch        string
	BranchCreated bool
	Notes         string
	PullRequest   *types.PRInfo
	// PullRequestCreated is false when an existing pull request was updated.
	PullRequestCreated bool
}

// Orchestrator runs the release pipeline once
type Orchestrator struct {
	cfg      *config.Config
	repo     Repository
	pulls    PullRequests
	manifest VersionReader
	writer   version.Writer
	logger   *zap.Logger
	dryRun   bool
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	cfg *config.Config,
	repo Repository,
	pulls PullRequests,
	manifest VersionReader,
	writer version.Writer,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		repo:     repo,
		pulls:    pulls,
		manifest: manifest,
		writer:   writer,
		logger:   logger,
	}
}

// SetDryRun makes Run compute the release without pushing or writing to the API
func (o *Orchestrator) SetDryRun(dryRun bool) {
	o.dryRun = dryRun
}

// Run executes every stage in order and stops at the first error
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	from, to, err := o.resolveRange()
	if err != nil {
		return nil, err
	}

	raw, err := o.repo.CommitsBetween(from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to collect commits: %w", err)
	}

	commits := changelog.Filter(changelog.Parse(raw), o.cfg.Types)
	bump := changelog.DetermineBump(commits, o.cfg.Types)

	current, err := o.manifest.Version()
	if err != nil {
		return nil, err
	}
	next, err := version.Next(current, bump)
	if err != nil {
		return nil, fmt.Errorf("failed to compute next version: %w", err)
	}

	o.logger.Info("computed release",
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("commits", len(commits)),
		zap.String("bump", string(bump.OrDefault())),
		zap.String("current_version", current),
		zap.String("version", next),
	)

	markdown := changelog.Render(commits, changelog.RenderOptions{
		Types: o.cfg.Types,
		From:  from,
		To:    to,
		Repo:  o.cfg.Repo,
	})

	result := &Result{
		From:    from,
		To:      to,
		Bump:    bump,
		Version: next,
		Branch:  version.BranchName(next),
	}

	created, err := o.publishBranch(ctx, result.Branch, next)
	if err != nil {
		return nil, err
	}
	result.BranchCreated = created

	if err := o.reconcilePullRequest(ctx, result, markdown); err != nil {
		return nil, err
	}

	return result, nil
}

// resolveRange fills in the configured range, defaulting to the latest tag and the current branch
func (o *Orchestrator) resolveRange() (string, string, error) {
	from, to := o.cfg.From, o.cfg.To

	if from == "" {
		tag, err := o.repo.LatestTag()
		if err != nil {
			return "", "", fmt.Errorf("failed to find latest tag: %w", err)
		}
		from = tag
	}
	if to == "" {
		branch, err := o.repo.CurrentBranch()
		if err != nil {
			return "", "", fmt.Errorf("failed to find current branch: %w", err)
		}
		to = branch
	}

	return from, to, nil
}

// publishBranch creates, bumps, commits and pushes the release branch unless the remote already has it
func (o *Orchestrator) publishBranch(ctx context.Context, branch, next string) (bool, error) {
	exists, err := o.repo.RemoteBranchExists(ctx, branch)
	if err != nil {
		return false, fmt.Errorf("failed to check release branch: %w", err)
	}
	if exists {
		o.logger.Info("release branch already exists", zap.String("branch", branch))
		return false, nil
	}
	if o.dryRun {
		o.logger.Info("dry run, not publishing branch", zap.String("branch", branch))
		return false, nil
	}

	if err := o.repo.CreateBranch(branch); err != nil {
		return false, err
	}
	if err := o.writer.SetVersion(ctx, next); err != nil {
		return false, err
	}
	if err := o.repo.CommitAll(branch, o.cfg.Identity()); err != nil {
		return false, err
	}
	if err := o.repo.PushBranch(ctx, branch); err != nil {
		return false, err
	}

	return true, nil
}

// reconcilePullRequest creates the draft release PR or refreshes the body of the existing one
func (o *Orchestrator) reconcilePullRequest(ctx context.Context, result *Result, markdown string) error {
	info := types.RepositoryInfo{
		Owner:         o.cfg.Owner(),
		Name:          o.cfg.RepositoryName(),
		BaseBranch:    o.cfg.BaseBranch,
		ReleaseBranch: result.Branch,
		Remote:        o.cfg.Remote,
	}

	current, err := o.pulls.FindOpenPullRequest(ctx, info)
	if err != nil {
		return err
	}

	result.Notes = github.GenerateReleaseNotes(current, markdown, result.Version, result.Bump.OrDefault(), o.cfg.BaseBranch)

	if o.dryRun {
		result.PullRequest = current
		return nil
	}

	if current == nil {
		pr, err := o.pulls.CreatePullRequest(ctx, info, result.Branch, result.Notes, true)
		if err != nil {
			return err
		}
		result.PullRequest = pr
		result.PullRequestCreated = true
		return nil
	}

	pr, err := o.pulls.UpdatePullRequestBody(ctx, info, current.PRNumber, result.Notes)
	if err != nil {
		return err
	}
	result.PullRequest = pr
	return nil
}
