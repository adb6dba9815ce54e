package types

import "fmt"

// RepositoryInfo contains GitHub repository information
type RepositoryInfo struct {
	Owner         string
	Name          string
	BaseBranch    string
	ReleaseBranch string
	Remote        string
}

// FullName returns the repository as owner/name
func (r RepositoryInfo) FullName() string {
	return r.Owner + "/" + r.Name
}

// HeadRef returns the owner-qualified head used to look up the release pull request
func (r RepositoryInfo) HeadRef() string {
	return fmt.Sprintf("%s:%s", r.Owner, r.ReleaseBranch)
}

// PRInfo contains pull request information
type PRInfo struct {
	PRNumber int64
	PRURL    string
	Title    string
	Body     string
	Status   string
	Draft    bool
}

// Identity is the author recorded on release commits
type Identity struct {
	Name  string
	Email string
}
