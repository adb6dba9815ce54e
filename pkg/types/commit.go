package types

// RawCommit is a commit as read from history, before conventional-commit parsing
type RawCommit struct {
	Hash    string
	Subject string
	Body    string
	Author  Identity
}

// ShortHash returns the abbreviated commit hash
func (c RawCommit) ShortHash() string {
	if len(c.Hash) > 7 {
		return c.Hash[:7]
	}
	return c.Hash
}

// ReferenceKind tells what a commit reference points at
type ReferenceKind string

const (
	ReferencePullRequest ReferenceKind = "pull-request"
	ReferenceIssue       ReferenceKind = "issue"
	ReferenceHash        ReferenceKind = "hash"
)

// Reference links a commit to a pull request, an issue or itself
type Reference struct {
	Kind  ReferenceKind
	Value string
}

// Commit is a parsed conventional commit
type Commit struct {
	RawCommit
	Type        string
	Scope       string
	Description string
	IsBreaking  bool
	References  []Reference
	Authors     []Identity
}
