// Package forge is a minimal client for the GitHub REST API covering the
// read and write calls the editor needs: identity, repository and branch
// listing, lazy directory listing, file content, commit history, file
// create/update with optimistic-concurrency tokens, and branch creation.
// Nothing is retried; retry policy belongs to the caller.
package forge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.github.com"

type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

type Option func(*Client)

// WithBaseURL points the client at a different API root (tests, GHE).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(token string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultBaseURL,
		token:   token,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// do issues one request and decodes the JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(raw)
	} else {
		rdr = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// CurrentUser returns the identity behind the configured token.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var u User
	err := c.do(ctx, http.MethodGet, "/user", nil, nil, &u)
	return u, err
}

// Repositories lists the repositories visible to the authenticated user,
// most recently updated first.
func (c *Client) Repositories(ctx context.Context) ([]Repo, error) {
	q := url.Values{"per_page": {"100"}, "sort": {"updated"}}
	var repos []Repo
	err := c.do(ctx, http.MethodGet, "/user/repos", q, nil, &repos)
	return repos, err
}

// Branches lists the branches of a repository with their head commits.
func (c *Client) Branches(ctx context.Context, repo RepoRef) ([]Branch, error) {
	q := url.Values{"per_page": {"100"}}
	var raw []struct {
		Name   string `json:"name"`
		Commit struct {
			SHA string `json:"sha"`
		} `json:"commit"`
	}
	if err := c.do(ctx, http.MethodGet, "/repos/"+repo.String()+"/branches", q, nil, &raw); err != nil {
		return nil, err
	}
	branches := make([]Branch, 0, len(raw))
	for _, b := range raw {
		branches = append(branches, Branch{Name: b.Name, SHA: b.Commit.SHA})
	}
	return branches, nil
}

// CreateBranch creates a new branch pointing at fromSHA.
func (c *Client) CreateBranch(ctx context.Context, repo RepoRef, name, fromSHA string) (Branch, error) {
	body := map[string]string{
		"ref": "refs/heads/" + name,
		"sha": fromSHA,
	}
	var raw struct {
		Object struct {
			SHA string `json:"sha"`
		} `json:"object"`
	}
	if err := c.do(ctx, http.MethodPost, "/repos/"+repo.String()+"/git/refs", nil, body, &raw); err != nil {
		return Branch{}, err
	}
	return Branch{Name: name, SHA: raw.Object.SHA}, nil
}

// ListDir lists the entries of a directory at ref, in API order. The root
// directory is the empty path.
func (c *Client) ListDir(ctx context.Context, repo RepoRef, ref, path string) ([]Entry, error) {
	var entries []Entry
	q := url.Values{}
	if ref != "" {
		q.Set("ref", ref)
	}
	err := c.do(ctx, http.MethodGet, contentsPath(repo, path), q, nil, &entries)
	return entries, err
}

// FileContent fetches a file's decoded text and its revision token.
// Only text files are supported; the contents endpoint returns base64.
func (c *Client) FileContent(ctx context.Context, repo RepoRef, ref, path string) (string, string, error) {
	var raw struct {
		Encoding string `json:"encoding"`
		Content  string `json:"content"`
		SHA      string `json:"sha"`
	}
	q := url.Values{}
	if ref != "" {
		q.Set("ref", ref)
	}
	if err := c.do(ctx, http.MethodGet, contentsPath(repo, path), q, nil, &raw); err != nil {
		return "", "", err
	}
	if raw.Encoding != "base64" {
		return "", "", fmt.Errorf("%w: unexpected encoding %q for %s", ErrMalformedResponse, raw.Encoding, path)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(raw.Content, "\n", ""))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return string(decoded), raw.SHA, nil
}

// UpdateFile creates or updates a file on branch and returns the new
// revision token. sha must be the current token when overwriting an existing
// file and empty when creating one; a stale token fails with ErrConflict.
func (c *Client) UpdateFile(ctx context.Context, repo RepoRef, branch, path, message, content, sha string) (string, error) {
	body := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString([]byte(content)),
		"branch":  branch,
	}
	if sha != "" {
		body["sha"] = sha
	}
	var raw struct {
		Content struct {
			SHA string `json:"sha"`
		} `json:"content"`
	}
	if err := c.do(ctx, http.MethodPut, contentsPath(repo, path), nil, body, &raw); err != nil {
		return "", err
	}
	if raw.Content.SHA == "" {
		return "", fmt.Errorf("%w: update response missing content sha", ErrMalformedResponse)
	}
	return raw.Content.SHA, nil
}

// Commits lists the most recent commits reachable from ref.
func (c *Client) Commits(ctx context.Context, repo RepoRef, ref string) ([]Commit, error) {
	q := url.Values{"per_page": {"50"}}
	if ref != "" {
		q.Set("sha", ref)
	}
	var raw []struct {
		SHA    string `json:"sha"`
		Commit struct {
			Message string `json:"message"`
			Author  struct {
				Name string    `json:"name"`
				Date time.Time `json:"date"`
			} `json:"author"`
		} `json:"commit"`
	}
	if err := c.do(ctx, http.MethodGet, "/repos/"+repo.String()+"/commits", q, nil, &raw); err != nil {
		return nil, err
	}
	commits := make([]Commit, 0, len(raw))
	for _, r := range raw {
		commits = append(commits, Commit{
			SHA:     r.SHA,
			Message: r.Commit.Message,
			Author:  r.Commit.Author.Name,
			Date:    r.Commit.Author.Date,
		})
	}
	return commits, nil
}

func contentsPath(repo RepoRef, path string) string {
	p := "/repos/" + repo.String() + "/contents"
	for _, seg := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		if seg == "" {
			continue
		}
		p += "/" + url.PathEscape(seg)
	}
	return p
}
