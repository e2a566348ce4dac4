package github

// Repo describes a GitHub repository returned by search or lookup.
type Repo struct {
	Name          string   `json:"name"`
	FullName      string   `json:"full_name"`
	Description   string   `json:"description"`
	CloneURL      string   `json:"clone_url"`
	DefaultBranch string   `json:"default_branch"`
	Stars         int      `json:"stars"`
	Language      string   `json:"language,omitempty"`
	Topics        []string `json:"topics,omitempty"`
	Archived      bool     `json:"archived"`
}

// LocalRepo is a repository that has been cloned to the local filesystem.
type LocalRepo struct {
	// FullName is the "owner/repo" identifier.
	FullName string `json:"full_name"`

	// Path is the local directory holding the shallow clone.
	Path string `json:"path"`
}

// User is a GitHub user account.
type User struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// OAuthConfig holds OAuth configuration.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// OAuthToken represents an OAuth access token response.
type OAuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

// searchResponse is the GitHub repository search API response.
type searchResponse struct {
	TotalCount int       `json:"total_count"`
	Items      []apiRepo `json:"items"`
}

// apiRepo is the GitHub API repository representation.
type apiRepo struct {
	Name          string   `json:"name"`
	FullName      string   `json:"full_name"`
	Description   string   `json:"description"`
	CloneURL      string   `json:"clone_url"`
	DefaultBranch string   `json:"default_branch"`
	Stars         int      `json:"stargazers_count"`
	Language      string   `json:"language"`
	Topics        []string `json:"topics"`
	Archived      bool     `json:"archived"`
}
