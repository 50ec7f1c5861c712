// Package client is a Go client for the task-manager HTTP API.
//
// Credentials are never stored on the Client: every authenticated call takes
// the bearer token as an argument, so one Client can serve many users from
// concurrent goroutines.
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
	"strings"
	"time"
)

type Task struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Status      string     `json:"status"`
	Completed   bool       `json:"completed"`
	UserID      string     `json:"userId"`
	Version     uint       `json:"version"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type CreateTask struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
}

// UpdateTask sends only non-nil fields. Set DueDate to a pointer to "" to
// clear the due date.
type UpdateTask struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
	Status      *string `json:"status,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

type Page struct {
	Tasks       []Task `json:"tasks"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	TotalTasks  int64  `json:"totalTasks"`
	HasMore     bool   `json:"hasMore"`
}

type Stats struct {
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in progress"`
	Done       int64 `json:"done"`
	Total      int64 `json:"total"`
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string            `json:"message"`
	Fields     map[string]string `json:"errors"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("task-manager: %d %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for baseURL (for example "http://localhost:5000").
// A nil httpClient uses a client with a 15 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*Session, error) {
	var out Session
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var out Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

func (c *Client) ListTasks(ctx context.Context, token string) ([]Task, error) {
	var out []Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, token string, in CreateTask) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTask(ctx context.Context, token, id string) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTask(ctx context.Context, token, id string, in UpdateTask) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), token, nil, nil)
}

func (c *Client) ToggleTask(ctx context.Context, token, id string) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodPatch, taskPath(id)+"/toggle", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Paginate(ctx context.Context, token string, page, limit int) (*Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var out Page
	if err := c.do(ctx, http.MethodGet, "/api/tasks/paginated?"+q.Encode(), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context, token string) (*Stats, error) {
	var out Stats
	if err := c.do(ctx, http.MethodGet, "/api/tasks/stats", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Search(ctx context.Context, token, query, status string) ([]Task, error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	if status != "" {
		q.Set("status", status)
	}

	var out []Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/search?"+q.Encode(), token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DueOn lists tasks due on the calendar day of day in day's location. The
// server is sent local midnight with its offset, so the window follows the
// caller's day rather than UTC's.
func (c *Client) DueOn(ctx context.Context, token string, day time.Time) ([]Task, error) {
	y, m, d := day.Date()
	q := url.Values{}
	q.Set("date", time.Date(y, m, d, 0, 0, 0, 0, day.Location()).Format(time.RFC3339))

	var out []Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/due?"+q.Encode(), token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func taskPath(id string) string {
	return "/api/tasks/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
