package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/autoclouddeploy/archmap/pkg/integrations"
)

// Client provides access to the GitHub API for repository search and content.
// It handles HTTP requests with caching, automatic retries, and optional
// authentication.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client with optional authentication.
// Pass an empty string for token to use unauthenticated requests (lower rate limits).
func NewClient(token string, cacheTTL time.Duration) (*Client, error) {
	cache, err := integrations.NewCache(cacheTTL)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	return &Client{
		Client:  integrations.NewClient(cache, headers),
		baseURL: "https://api.github.com",
	}, nil
}

// perPage is the GitHub search page size. 100 is the API maximum.
const perPage = 100

// Search finds repositories matching a GitHub search query, sorted by stars.
// Query follows GitHub repository search syntax, e.g.
// "topic:terraform language:HCL stars:>100". At most limit repositories are
// returned; a limit of 0 returns the first page.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Repo, error) {
	if limit <= 0 {
		limit = perPage
	}

	var repos []Repo
	for page := 1; len(repos) < limit; page++ {
		url := fmt.Sprintf("%s/search/repositories?q=%s&sort=stars&order=desc&per_page=%d&page=%d",
			c.baseURL, integrations.URLEncode(query), perPage, page)

		var data searchResponse
		if err := c.Get(ctx, url, &data); err != nil {
			return nil, fmt.Errorf("search repositories: %w", err)
		}
		if len(data.Items) == 0 {
			break
		}
		for _, item := range data.Items {
			repos = append(repos, repoFromAPI(item))
			if len(repos) == limit {
				break
			}
		}
		// GitHub caps search results at 1000 items
		if page*perPage >= 1000 {
			break
		}
	}
	return repos, nil
}

// Info retrieves metadata for a single repository.
func (c *Client) Info(ctx context.Context, owner, repo string) (*Repo, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, repo)

	var data apiRepo
	if err := c.Get(ctx, url, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: github repo %s/%s", err, owner, repo)
		}
		return nil, err
	}
	r := repoFromAPI(data)
	return &r, nil
}

// Readme retrieves the repository README as raw markdown.
// Returns integrations.ErrNotFound if the repository has no README.
func (c *Client) Readme(ctx context.Context, owner, repo string) (string, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/repos/%s/%s/readme", c.baseURL, owner, repo)
	headers := map[string]string{"Accept": "application/vnd.github.v3.raw"}
	return c.GetTextWithHeaders(ctx, url, headers)
}

// AuthenticatedUser fetches the account that owns the client's token.
// Requires a client constructed with a token.
func (c *Client) AuthenticatedUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.Get(ctx, c.baseURL+"/user", &user); err != nil {
		return nil, fmt.Errorf("fetch authenticated user: %w", err)
	}
	return &user, nil
}

// FileRaw retrieves the raw content of a file from a repository.
func (c *Client) FileRaw(ctx context.Context, owner, repo, path string) (string, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, owner, repo, path)
	headers := map[string]string{"Accept": "application/vnd.github.v3.raw"}
	return c.GetTextWithHeaders(ctx, url, headers)
}

func repoFromAPI(a apiRepo) Repo {
	return Repo{
		Name:          a.Name,
		FullName:      a.FullName,
		Description:   a.Description,
		CloneURL:      a.CloneURL,
		DefaultBranch: a.DefaultBranch,
		Stars:         a.Stars,
		Language:      a.Language,
		Topics:        a.Topics,
		Archived:      a.Archived,
	}
}
