package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// GitRepo is a working repository on main with a bare "origin" next to it
type GitRepo struct {
	Dir       string
	RemoteDir string
	Repo      *git.Repository

	t     *testing.T
	clock int
}

// NewGitRepo initializes the working and remote repositories in a temp dir
func NewGitRepo(t *testing.T) *GitRepo {
	t.Helper()

	root := t.TempDir()
	remoteDir := filepath.Join(root, "origin.git")
	workDir := filepath.Join(root, "work")

	_, err := git.PlainInitWithOptions(remoteDir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
		Bare:        true,
	})
	require.NoError(t, err)

	repo, err := git.PlainInitWithOptions(workDir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	})
	require.NoError(t, err)

	_, err = repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{remoteDir}})
	require.NoError(t, err)

	return &GitRepo{Dir: workDir, RemoteDir: remoteDir, Repo: repo, t: t}
}

// signature returns a fixed author one minute after the previous one, so history order is stable
func (g *GitRepo) signature() *object.Signature {
	g.clock++
	return &object.Signature{
		Name:  "Jane Doe",
		Email: "jane@example.com",
		When:  baseTime.Add(time.Duration(g.clock) * time.Minute),
	}
}

// Commit writes file and commits it
func (g *GitRepo) Commit(file, content, message string) plumbing.Hash {
	g.t.Helper()

	require.NoError(g.t, os.WriteFile(filepath.Join(g.Dir, file), []byte(content), 0o644))
	w, err := g.Repo.Worktree()
	require.NoError(g.t, err)
	_, err = w.Add(file)
	require.NoError(g.t, err)

	sig := g.signature()
	hash, err := w.Commit(message, &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(g.t, err)
	return hash
}

// Tag creates a lightweight or annotated tag
func (g *GitRepo) Tag(name string, hash plumbing.Hash, annotated bool) {
	g.t.Helper()

	var opts *git.CreateTagOptions
	if annotated {
		opts = &git.CreateTagOptions{Tagger: g.signature(), Message: name}
	}
	_, err := g.Repo.CreateTag(name, hash, opts)
	require.NoError(g.t, err)
}

// Push pushes a local branch to origin
func (g *GitRepo) Push(branch string) {
	g.t.Helper()

	spec := config.RefSpec("refs/heads/" + branch + ":refs/heads/" + branch)
	err := g.Repo.Push(&git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{spec},
	})
	require.NoError(g.t, err)
}

// RemoteHasBranch reports whether origin holds refs/heads/<branch>
func (g *GitRepo) RemoteHasBranch(branch string) bool {
	g.t.Helper()

	bare, err := git.PlainOpen(g.RemoteDir)
	require.NoError(g.t, err)
	_, err = bare.Reference(plumbing.NewBranchReferenceName(branch), true)
	return err == nil
}

// HeadCommit returns the commit checked out in the working repository
func (g *GitRepo) HeadCommit() *object.Commit {
	g.t.Helper()

	head, err := g.Repo.Head()
	require.NoError(g.t, err)
	c, err := g.Repo.CommitObject(head.Hash())
	require.NoError(g.t, err)
	return c
}

// Branch points a new local branch at HEAD without checking it out
func (g *GitRepo) Branch(name string) {
	g.t.Helper()

	head, err := g.Repo.Head()
	require.NoError(g.t, err)
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), head.Hash())
	require.NoError(g.t, g.Repo.Storer.SetReference(ref))
}
