// Package social wraps the outbound social API integrations. The feed
// clients absorb connection failures and return empty results, so an
// unreachable provider never breaks page rendering.
package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/corticalabs/site-manager/internal/logger"
)

const defaultGitHubAPI = "https://api.github.com"

// GitHubClient checks repository permissions inside the project
// organisation.
type GitHubClient struct {
	client  *http.Client
	baseURL string
	org     string
	logger  logger.Logger
}

func NewGitHubClient(client *http.Client, baseURL, org string, log logger.Logger) *GitHubClient {
	if baseURL == "" {
		baseURL = defaultGitHubAPI
	}
	return &GitHubClient{
		client:  client,
		baseURL: baseURL,
		org:     org,
		logger:  log,
	}
}

type orgRepo struct {
	Name        string `json:"name"`
	Permissions struct {
		Admin bool `json:"admin"`
		Push  bool `json:"push"`
		Pull  bool `json:"pull"`
	} `json:"permissions"`
}

// HasCommitPermission reports whether the token's user holds admin, push and
// pull permission on the named repository in the organisation. An empty
// token never has permission.
func (c *GitHubClient) HasCommitPermission(ctx context.Context, accessToken, repoName string) (bool, error) {
	if accessToken == "" {
		return false, nil
	}

	url := fmt.Sprintf("%s/orgs/%s/repos", c.baseURL, c.org)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("build repos request: %w", err)
	}
	req.Header.Set("Authorization", "token "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("list organisation repos: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("list organisation repos: unexpected status %d", resp.StatusCode)
	}

	var repos []orgRepo
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return false, fmt.Errorf("decode organisation repos: %w", err)
	}

	for _, repo := range repos {
		if repo.Name != repoName {
			continue
		}
		return repo.Permissions.Admin && repo.Permissions.Push && repo.Permissions.Pull, nil
	}

	return false, nil
}
