package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/clintrovert/cutrelease/pkg/types"
)

// Client wraps the GitHub pull request API
type Client struct {
	apiClient *github.Client
	logger    *zap.Logger
}

// NewClient creates a new GitHub client authenticated with a bearer token.
// An empty token yields an anonymous client; GitHub rejects its writes.
func NewClient(accessToken string, logger *zap.Logger) *Client {
	httpClient := http.DefaultClient
	if accessToken != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: accessToken},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	return &Client{
		apiClient: github.NewClient(httpClient),
		logger:    logger,
	}
}

// SetBaseURL points the client at another API root, e.g. GitHub Enterprise
func (c *Client) SetBaseURL(baseURL string) error {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("failed to parse base URL: %w", err)
	}
	c.apiClient.BaseURL = u
	return nil
}

// FindOpenPullRequest returns the first open pull request whose head is the release branch, or nil
func (c *Client) FindOpenPullRequest(ctx context.Context, repo types.RepositoryInfo) (*types.PRInfo, error) {
	prs, _, err := c.apiClient.PullRequests.List(ctx, repo.Owner, repo.Name, &github.PullRequestListOptions{
		State: "open",
		Head:  repo.HeadRef(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}

	if len(prs) == 0 {
		c.logger.Debug("no open pull request",
			zap.String("head", repo.HeadRef()),
		)
		return nil, nil
	}

	return toPRInfo(prs[0]), nil
}

// CreatePullRequest opens a pull request from the release branch into the base branch
func (c *Client) CreatePullRequest(ctx context.Context, repo types.RepositoryInfo, title, body string, draft bool) (*types.PRInfo, error) {
	newPR := &github.NewPullRequest{
		Title: github.String(title),
		Head:  github.String(repo.ReleaseBranch),
		Base:  github.String(repo.BaseBranch),
		Body:  github.String(body),
		Draft: github.Bool(draft),
	}

	pr, _, err := c.apiClient.PullRequests.Create(ctx, repo.Owner, repo.Name, newPR)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	prInfo := toPRInfo(pr)

	c.logger.Info("created pull request",
		zap.String("owner", repo.Owner),
		zap.String("repo", repo.Name),
		zap.Int64("pr_number", prInfo.PRNumber),
		zap.String("pr_url", prInfo.PRURL),
	)

	return prInfo, nil
}

// UpdatePullRequestBody replaces the body of an existing pull request
func (c *Client) UpdatePullRequestBody(ctx context.Context, repo types.RepositoryInfo, number int64, body string) (*types.PRInfo, error) {
	pr, _, err := c.apiClient.PullRequests.Edit(ctx, repo.Owner, repo.Name, int(number), &github.PullRequest{
		Body: github.String(body),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update pull request #%d: %w", number, err)
	}

	prInfo := toPRInfo(pr)

	c.logger.Info("updated pull request",
		zap.String("owner", repo.Owner),
		zap.String("repo", repo.Name),
		zap.Int64("pr_number", prInfo.PRNumber),
		zap.String("pr_url", prInfo.PRURL),
	)

	return prInfo, nil
}

func toPRInfo(pr *github.PullRequest) *types.PRInfo {
	return &types.PRInfo{
		PRNumber: int64(pr.GetNumber()),
		PRURL:    pr.GetHTMLURL(),
		Title:    pr.GetTitle(),
		Body:     pr.GetBody(),
		Status:   pr.GetState(),
		Draft:    pr.GetDraft(),
	}
}
