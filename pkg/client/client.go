// Package client is the Taskdeck API client. It owns the outbound HTTP
// plumbing: JSON encoding, error extraction, and the transport middleware
// that resolves relative paths to the API origin and attaches the current
// bearer token to API-bound requests.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jfanara/taskdeck/pkg/domain"
)

// Client is the Taskdeck API client.
type Client struct {
	apiOrigin  *url.URL
	httpClient *http.Client
}

// New creates an API client for the given base URL. The token source is
// consulted on every request; pass nil for an unauthenticated client.
func New(baseURL string, tokens TokenSource) (*Client, error) {
	origin, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client.New: parse base URL: %w", err)
	}
	if origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("client.New: base URL %q must be absolute", baseURL)
	}
	return &Client{
		apiOrigin: origin,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: newTransport(origin, tokens, nil),
		},
	}, nil
}

// NewWithToken creates a client bound to a fixed token. Useful for scripts
// and tests; the interactive app wires a live token source instead.
func NewWithToken(baseURL, token string) (*Client, error) {
	return New(baseURL, staticToken(token))
}

// --- Auth endpoints ---

// authResponse is the shape of the login and register responses.
type authResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// profileResponse is the shape of the profile response.
type profileResponse struct {
	User domain.User `json:"user"`
}

// Login exchanges credentials for a user record and a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	var resp authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "/auth/login", body, &resp); err != nil {
		return domain.User{}, "", fmt.Errorf("client.Login: %w", err)
	}
	return resp.User, resp.Token, nil
}

// Register creates an account and returns the new user record and a bearer token.
func (c *Client) Register(ctx context.Context, name, email, password string) (domain.User, string, error) {
	var resp authResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.post(ctx, "/auth/register", body, &resp); err != nil {
		return domain.User{}, "", fmt.Errorf("client.Register: %w", err)
	}
	return resp.User, resp.Token, nil
}

// Profile fetches the user record for an explicit token, bypassing the
// token source. The session layer uses it to revalidate a persisted token
// before that token is published to the rest of the app.
func (c *Client) Profile(ctx context.Context, token string) (domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "/auth/profile", nil)
	if err != nil {
		return domain.User{}, fmt.Errorf("client.Profile: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var resp profileResponse
	if err := c.send(req, &resp); err != nil {
		return domain.User{}, fmt.Errorf("client.Profile: %w", err)
	}
	return resp.User, nil
}

// --- Task endpoints ---

// CreateTaskRequest is the payload for creating a new task.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	AssigneeID  *int64 `json:"assignee_id,omitempty"`
}

// ListTasks fetches tasks with optional status/assignee/text filters.
func (c *Client) ListTasks(ctx context.Context, status string, assigneeID int64, query string, limit, offset int) ([]domain.Task, error) {
	params := url.Values{}
	if status != "" {
		params.Set("status", status)
	}
	if assigneeID != 0 {
		params.Set("assignee", strconv.FormatInt(assigneeID, 10))
	}
	if query != "" {
		params.Set("q", query)
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var tasks []domain.Task
	if err := c.get(ctx, "/api/tasks?"+params.Encode(), &tasks); err != nil {
		return nil, fmt.Errorf("client.ListTasks: %w", err)
	}
	return tasks, nil
}

// GetTask fetches a single task by ID.
func (c *Client) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	if err := c.get(ctx, "/api/tasks/"+url.PathEscape(id), &task); err != nil {
		return nil, fmt.Errorf("client.GetTask: %w", err)
	}
	return &task, nil
}

// CreateTask creates a new task.
func (c *Client) CreateTask(ctx context.Context, task CreateTaskRequest) (*domain.Task, error) {
	var created domain.Task
	if err := c.post(ctx, "/api/tasks", task, &created); err != nil {
		return nil, fmt.Errorf("client.CreateTask: %w", err)
	}
	return &created, nil
}

// UpdateTaskStatus moves a task to the given status.
func (c *Client) UpdateTaskStatus(ctx context.Context, id, status string) (*domain.Task, error) {
	var updated domain.Task
	body := map[string]string{"status": status}
	if err := c.doRequest(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id)+"/status", body, &updated); err != nil {
		return nil, fmt.Errorf("client.UpdateTaskStatus: %w", err)
	}
	return &updated, nil
}

// AssignTask assigns a task to the given user.
func (c *Client) AssignTask(ctx context.Context, id string, userID int64) (*domain.Task, error) {
	var updated domain.Task
	body := map[string]int64{"assignee_id": userID}
	if err := c.post(ctx, "/api/tasks/"+url.PathEscape(id)+"/assign", body, &updated); err != nil {
		return nil, fmt.Errorf("client.AssignTask: %w", err)
	}
	return &updated, nil
}

// UnassignTask removes a task's assignee.
func (c *Client) UnassignTask(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id)+"/assign", nil, nil); err != nil {
		return fmt.Errorf("client.UnassignTask: %w", err)
	}
	return nil
}

// DeleteTask deletes a task by ID.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteTask: %w", err)
	}
	return nil
}

// ListUsers returns board members, for assignee pickers.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.get(ctx, "/api/users", &users); err != nil {
		return nil, fmt.Errorf("client.ListUsers: %w", err)
	}
	return users, nil
}

// --- Request plumbing ---

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

// doRequest builds a request with a relative path; the transport chain
// resolves it to the API origin and injects credentials.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
