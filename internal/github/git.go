package github

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"go.uber.org/zap"

	"github.com/clintrovert/cutrelease/pkg/types"
)

// Repository wraps the local git repository and its release remote
type Repository struct {
	repo        *git.Repository
	root        string
	remote      string
	accessToken string
	logger      *zap.Logger
}

// OpenRepository opens the repository containing path
func OpenRepository(path, remote, accessToken string, logger *zap.Logger) (*Repository, error) {
	r, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	w, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	return &Repository{
		repo:        r,
		root:        w.Filesystem.Root(),
		remote:      remote,
		accessToken: accessToken,
		logger:      logger,
	}, nil
}

// Root returns the worktree root
func (r *Repository) Root() string {
	return r.root
}

// RemoteURL returns the first URL of the release remote
func (r *Repository) RemoteURL() (string, error) {
	remote, err := r.repo.Remote(r.remote)
	if err != nil {
		return "", fmt.Errorf("failed to get remote %s: %w", r.remote, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %s has no URL", r.remote)
	}
	return urls[0], nil
}

// CurrentBranch returns the checked out branch, or HEAD when detached
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "HEAD", nil
	}
	return head.Name().Short(), nil
}

// LatestTag returns the nearest tag reachable from HEAD, or an empty string when there is none
func (r *Repository) LatestTag() (string, error) {
	tagged, err := r.taggedCommits()
	if err != nil {
		return "", err
	}
	if len(tagged) == 0 {
		return "", nil
	}

	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	iter, err := r.repo.Log(&git.LogOptions{From: head.Hash(), Order: git.LogOrderCommitterTime})
	if err != nil {
		return "", fmt.Errorf("failed to read history: %w", err)
	}
	defer iter.Close()

	var tag string
	err = iter.ForEach(func(c *object.Commit) error {
		if names, ok := tagged[c.Hash]; ok {
			tag = names[0]
			return errStopIteration
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return "", fmt.Errorf("failed to walk history: %w", err)
	}

	return tag, nil
}

var errStopIteration = errors.New("stop iteration")

// taggedCommits maps commit hashes to the sorted names of the tags pointing at them
func (r *Repository) taggedCommits() (map[plumbing.Hash][]string, error) {
	refs, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	tagged := make(map[plumbing.Hash][]string)
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		hash := ref.Hash()
		if tagObj, err := r.repo.TagObject(hash); err == nil {
			c, err := tagObj.Commit()
			if err != nil {
				return nil
			}
			hash = c.Hash
		}
		tagged[hash] = append(tagged[hash], ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}

	for _, names := range tagged {
		sort.Strings(names)
	}
	return tagged, nil
}

// CommitsBetween returns commits reachable from to but not from from, newest first.
// An empty from returns the whole history of to.
func (r *Repository) CommitsBetween(from, to string) ([]types.RawCommit, error) {
	toHash, err := r.resolve(to)
	if err != nil {
		return nil, err
	}

	excluded := make(map[plumbing.Hash]bool)
	if from != "" {
		fromHash, err := r.resolve(from)
		if err != nil {
			return nil, err
		}
		err = r.walk(fromHash, func(c *object.Commit) {
			excluded[c.Hash] = true
		})
		if err != nil {
			return nil, err
		}
	}

	var commits []types.RawCommit
	err = r.walk(toHash, func(c *object.Commit) {
		if excluded[c.Hash] {
			return
		}
		subject, body, _ := strings.Cut(c.Message, "\n")
		commits = append(commits, types.RawCommit{
			Hash:    c.Hash.String(),
			Subject: strings.TrimSpace(subject),
			Body:    strings.TrimSpace(body),
			Author:  types.Identity{Name: c.Author.Name, Email: c.Author.Email},
		})
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("collected commits",
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("count", len(commits)),
	)

	return commits, nil
}

func (r *Repository) walk(from plumbing.Hash, fn func(*object.Commit)) error {
	iter, err := r.repo.Log(&git.LogOptions{From: from, Order: git.LogOrderCommitterTime})
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	defer iter.Close()

	err = iter.ForEach(func(c *object.Commit) error {
		fn(c)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk history: %w", err)
	}
	return nil
}

// resolve finds a revision locally, falling back to the remote-tracking branch
func (r *Repository) resolve(rev string) (plumbing.Hash, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err == nil {
		return *hash, nil
	}

	remoteHash, remoteErr := r.repo.ResolveRevision(plumbing.Revision(r.remote + "/" + rev))
	if remoteErr == nil {
		return *remoteHash, nil
	}

	return plumbing.ZeroHash, fmt.Errorf("failed to resolve revision %s: %w", rev, err)
}

// RemoteBranchExists reports whether the remote already has refs/heads/<branch>
func (r *Repository) RemoteBranchExists(ctx context.Context, branch string) (bool, error) {
	remote, err := r.repo.Remote(r.remote)
	if err != nil {
		return false, fmt.Errorf("failed to get remote: %w", err)
	}

	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: r.auth()})
	if err != nil {
		if errors.Is(err, transport.ErrEmptyRemoteRepository) {
			return false, nil
		}
		return false, fmt.Errorf("failed to list remote heads: %w", err)
	}

	want := plumbing.NewBranchReferenceName(branch)
	for _, ref := range refs {
		if ref.Name() == want {
			return true, nil
		}
	}
	return false, nil
}

// CreateBranch creates a branch at HEAD and checks it out, keeping working tree changes
func (r *Repository) CreateBranch(branch string) error {
	branchRef := plumbing.NewBranchReferenceName(branch)
	if _, err := r.repo.Reference(branchRef, false); err == nil {
		return fmt.Errorf("branch %s already exists", branch)
	} else if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return fmt.Errorf("failed to check branch: %w", err)
	}

	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD: %w", err)
	}

	w, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	err = w.Checkout(&git.CheckoutOptions{
		Hash:   head.Hash(),
		Branch: branchRef,
		Create: true,
		Keep:   true,
	})
	if err != nil {
		return fmt.Errorf("failed to create branch: %w", err)
	}

	r.logger.Info("created branch",
		zap.String("branch", branch),
		zap.String("repo_path", r.root),
	)

	return nil
}

// CommitAll commits every modified tracked file with the given author
func (r *Repository) CommitAll(message string, author types.Identity) error {
	w, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	hash, err := w.Commit(message, &git.CommitOptions{
		All: true,
		Author: &object.Signature{
			Name:  author.Name,
			Email: author.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	r.logger.Info("committed changes",
		zap.String("message", message),
		zap.String("commit", hash.String()),
	)

	return nil
}

// PushBranch pushes a branch to the remote and records it as the upstream
func (r *Repository) PushBranch(ctx context.Context, branch string) error {
	refSpec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))

	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: r.remote,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       r.auth(),
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push branch: %w", err)
	}

	cfg, err := r.repo.Config()
	if err != nil {
		return fmt.Errorf("failed to read git config: %w", err)
	}
	cfg.Branches[branch] = &config.Branch{
		Name:   branch,
		Remote: r.remote,
		Merge:  plumbing.NewBranchReferenceName(branch),
	}
	if err := r.repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("failed to set upstream: %w", err)
	}

	r.logger.Info("pushed branch",
		zap.String("branch", branch),
		zap.String("remote", r.remote),
	)

	return nil
}

// auth picks credentials for the remote: the token over HTTPS, the SSH agent otherwise
func (r *Repository) auth() transport.AuthMethod {
	url, err := r.RemoteURL()
	if err != nil {
		return nil
	}

	switch {
	case strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://"):
		if r.accessToken == "" {
			return nil
		}
		return &http.BasicAuth{Username: "x-access-token", Password: r.accessToken}
	case strings.HasPrefix(url, "ssh://") || strings.Contains(url, "@"):
		auth, err := ssh.NewSSHAgentAuth("git")
		if err != nil {
			r.logger.Debug("ssh agent unavailable", zap.Error(err))
			return nil
		}
		return auth
	default:
		return nil
	}
}
