// Package client provides a Go client for the bloglist API.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tsander/bloglist/internal/model"
)

// Client is a bloglist API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

// Credentials holds an account's login data.
type Credentials struct {
	Username string
	Name     string
	Password string
}

// New creates a new bloglist client.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Errors
var (
	ErrAlreadyRegistered = errors.New("already registered")
)

// Register creates a new account on the server.
func (c *Client) Register(creds Credentials) (*model.Account, error) {
	reqBody := map[string]string{
		"username": creds.Username,
		"name":     creds.Name,
		"password": creds.Password,
	}

	resp, err := c.doRequest(http.MethodPost, "/accounts", reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusBadRequest && bytes.Contains(respBody, []byte("unique")) {
		return nil, ErrAlreadyRegistered
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("register failed (%d): %s", resp.StatusCode, string(respBody))
	}

	var account model.Account
	if err := json.Unmarshal(respBody, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Login exchanges the credentials for a bearer token and stores it on the client.
func (c *Client) Login(creds Credentials) error {
	reqBody := map[string]string{
		"username": creds.Username,
		"password": creds.Password,
	}

	resp, err := c.doRequest(http.MethodPost, "/login", reqBody)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("login failed (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}

	c.Token = result.Token
	return nil
}

// RegisterAndLogin is a convenience method that registers (if needed) and logs in.
func (c *Client) RegisterAndLogin(creds Credentials) error {
	_, err := c.Register(creds)
	if err != nil && !errors.Is(err, ErrAlreadyRegistered) {
		return fmt.Errorf("register: %w", err)
	}
	return c.Login(creds)
}

// IsAuthenticated returns true if the client has a token.
func (c *Client) IsAuthenticated() bool {
	return c.Token != ""
}

// CreatePost creates a new post owned by the authenticated account.
func (c *Client) CreatePost(title, author, url string, likes int) (*model.Post, error) {
	reqBody := map[string]any{
		"title": title,
		"url":   url,
		"likes": likes,
	}
	if author != "" {
		reqBody["author"] = author
	}

	resp, err := c.doRequest(http.MethodPost, "/posts", reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create post failed (%d): %s", resp.StatusCode, string(body))
	}

	var post model.Post
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPosts fetches all posts.
func (c *Client) ListPosts() ([]model.Post, error) {
	resp, err := c.doRequest(http.MethodGet, "/posts", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list posts failed (%d): %s", resp.StatusCode, string(body))
	}

	var posts []model.Post
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost fetches a single post.
func (c *Client) GetPost(id string) (*model.Post, error) {
	resp, err := c.doRequest(http.MethodGet, "/posts/"+id, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get post failed (%d): %s", resp.StatusCode, string(body))
	}

	var post model.Post
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdateLikes replaces the like count of a post.
func (c *Client) UpdateLikes(id string, likes int) (*model.Post, error) {
	reqBody := map[string]any{"likes": likes}

	resp, err := c.doRequest(http.MethodPut, "/posts/"+id, reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("update post failed (%d): %s", resp.StatusCode, string(body))
	}

	var post model.Post
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost deletes a post you own.
func (c *Client) DeletePost(id string) error {
	resp, err := c.doRequest(http.MethodDelete, "/posts/"+id, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete post failed (%d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// ListAccounts fetches all accounts.
func (c *Client) ListAccounts() ([]model.Account, error) {
	resp, err := c.doRequest(http.MethodGet, "/accounts", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list accounts failed (%d): %s", resp.StatusCode, string(body))
	}

	var accounts []model.Account
	if err := json.NewDecoder(resp.Body).Decode(&accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// doRequest performs an HTTP request, attaching the bearer token when present.
func (c *Client) doRequest(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return c.HTTPClient.Do(req)
}

// TestHelper provides utilities for creating authenticated clients in tests.
type TestHelper struct {
	BaseURL string
}

// NewTestHelper creates a new test helper for the given base URL.
func NewTestHelper(baseURL string) *TestHelper {
	return &TestHelper{BaseURL: baseURL}
}

// CreateAuthenticatedClient registers an account with the given username and
// returns a logged-in client. This is a convenience method for tests.
func (h *TestHelper) CreateAuthenticatedClient(username, password string) (*Client, error) {
	c := New(h.BaseURL)
	creds := Credentials{Username: username, Name: username, Password: password}
	if err := c.RegisterAndLogin(creds); err != nil {
		return nil, err
	}
	return c, nil
}
