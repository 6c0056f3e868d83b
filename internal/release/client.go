package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/plepperguy/pleppervr-updater/internal/version"
)

// DefaultBaseURL is the GitHub REST API root.
const DefaultBaseURL = "https://api.github.com"

// defaultTimeout bounds a single metadata request.
const defaultTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when the repository has no published release
	// or the latest release has no asset with the requested extension.
	ErrNotFound = errors.New("release asset not found")
	// ErrNetwork is returned when the release API cannot be queried.
	ErrNetwork = errors.New("release api request failed")
)

// Asset is a downloadable file attached to a release.
type Asset struct {
	// Name is the file name of the asset.
	Name string `json:"name"`
	// DownloadURL is the public download link.
	DownloadURL string `json:"browser_download_url"`
	// Size is the asset size in bytes as reported by the API.
	Size int64 `json:"size"`
}

// Release is the subset of the latest release payload the updater reads.
type Release struct {
	TagName string  `json:"tag_name"`
	Name    string  `json:"name"`
	Assets  []Asset `json:"assets"`
}

// Client queries the GitHub release API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithToken authenticates requests with a bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient returns a Client for the public GitHub API.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    DefaultBaseURL,
		userAgent:  version.UserAgent(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetLatestRelease fetches the latest published release of owner/repo.
func (c *Client) GetLatestRelease(ctx context.Context, owner, repo string) (*Release, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, url.PathEscape(owner), url.PathEscape(repo))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	switch {
	case response.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: no published release for %s/%s", ErrNotFound, owner, repo)
	case response.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: %s: %s", ErrNetwork, endpoint, response.Status)
	}

	var release Release
	if err = json.NewDecoder(response.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("%w: decode release: %w", ErrNetwork, err)
	}

	return &release, nil
}

// GetLatestReleaseAsset returns the first asset of the latest release whose
// name ends with extension, together with the release it belongs to.
func (c *Client) GetLatestReleaseAsset(ctx context.Context, owner, repo, extension string) (*Asset, *Release, error) {
	release, err := c.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		return nil, nil, err
	}

	asset, err := release.FindAsset(extension)
	if err != nil {
		return nil, release, err
	}

	return asset, release, nil
}

// FindAsset returns the first asset whose name ends with extension.
func (r *Release) FindAsset(extension string) (*Asset, error) {
	for i := range r.Assets {
		if strings.HasSuffix(r.Assets[i].Name, extension) {
			return &r.Assets[i], nil
		}
	}

	return nil, fmt.Errorf("%w: no %s file in release %s", ErrNotFound, extension, r.TagName)
}
