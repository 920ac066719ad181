// Package asana provides an HTTP client for the Asana REST API and the
// OAuth token refresh flow.
package asana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/calehr/taskbridge/internal/config"
	"github.com/calehr/taskbridge/internal/port/taskclient"
	"github.com/calehr/taskbridge/internal/resilience"
)

// taskOptFields is the field-selection list requested on every task read.
const taskOptFields = "gid,name,notes,completed,completed_at,due_on,created_at,modified_at,projects,tags"

// Client talks to the Asana REST API. It holds no credentials; every call
// takes the caller's access token.
type Client struct {
	baseURL    string
	pageLimit  int
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewClient creates an Asana API client from config.
func NewClient(cfg config.Asana) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		pageLimit: cfg.PageLimit,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// dataEnvelope wraps every Asana response body.
type dataEnvelope[T any] struct {
	Data     T `json:"data"`
	NextPage *struct {
		Offset string `json:"offset"`
	} `json:"next_page"`
}

// ProjectTasks returns all tasks of a project, following next_page offsets
// until the server reports no more pages.
func (c *Client) ProjectTasks(ctx context.Context, token, projectID string) ([]taskclient.Task, error) {
	var all []taskclient.Task
	offset := ""

	for {
		q := url.Values{}
		q.Set("opt_fields", taskOptFields)
		q.Set("limit", strconv.Itoa(c.pageLimit))
		if offset != "" {
			q.Set("offset", offset)
		}

		path := fmt.Sprintf("/projects/%s/tasks?%s", url.PathEscape(projectID), q.Encode())
		body, err := c.doRequest(ctx, token, http.MethodGet, path, nil)
		if err != nil {
			return nil, fmt.Errorf("list project tasks: %w", err)
		}

		var page dataEnvelope[[]taskclient.Task]
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("unmarshal tasks: %w", err)
		}
		all = append(all, page.Data...)

		if page.NextPage == nil || page.NextPage.Offset == "" {
			return all, nil
		}
		offset = page.NextPage.Offset
	}
}

// CreateTask creates a task and adds it to the given project.
func (c *Client) CreateTask(ctx context.Context, token, projectID string, fields taskclient.TaskFields) (*taskclient.Task, error) {
	payload := map[string]any{
		"data": createBody{
			TaskFields: fields,
			Projects:   []string{projectID},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal create task: %w", err)
	}

	resp, err := c.doRequest(ctx, token, http.MethodPost, "/tasks", body)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	var env dataEnvelope[taskclient.Task]
	if err := json.Unmarshal(resp, &env); err != nil {
		return nil, fmt.Errorf("unmarshal created task: %w", err)
	}
	return &env.Data, nil
}

// createBody extends TaskFields with the project membership list required
// on creation.
type createBody struct {
	taskclient.TaskFields
	Projects []string `json:"projects"`
}

// UpdateTask updates a task by its native gid.
func (c *Client) UpdateTask(ctx context.Context, token, taskID string, fields taskclient.TaskFields) (*taskclient.Task, error) {
	body, err := json.Marshal(map[string]any{"data": fields})
	if err != nil {
		return nil, fmt.Errorf("marshal update task: %w", err)
	}

	resp, err := c.doRequest(ctx, token, http.MethodPut, "/tasks/"+url.PathEscape(taskID), body)
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", taskID, err)
	}

	var env dataEnvelope[taskclient.Task]
	if err := json.Unmarshal(resp, &env); err != nil {
		return nil, fmt.Errorf("unmarshal updated task: %w", err)
	}
	return &env.Data, nil
}

// DeleteTask deletes a task by its native gid.
func (c *Client) DeleteTask(ctx context.Context, token, taskID string) error {
	if _, err := c.doRequest(ctx, token, http.MethodDelete, "/tasks/"+url.PathEscape(taskID), nil); err != nil {
		return fmt.Errorf("delete task %s: %w", taskID, err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, token, method, path string, body []byte) ([]byte, error) {
	var result []byte
	call := func() error {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, truncate(data, 200))
		}

		result = data
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(call); err != nil {
			return nil, err
		}
		return result, nil
	}
	if err := call(); err != nil {
		return nil, err
	}
	return result, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
