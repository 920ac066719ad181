package asana_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/calehr/taskbridge/internal/adapter/asana"
	"github.com/calehr/taskbridge/internal/config"
	"github.com/calehr/taskbridge/internal/port/taskclient"
)

func testConfig(baseURL string) config.Asana {
	cfg := config.Defaults().Asana
	cfg.BaseURL = baseURL
	cfg.TokenURL = baseURL + "/-/oauth_token"
	return cfg
}

func TestProjectTasksPagination(t *testing.T) {
	page := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/p1/tasks" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
			t.Fatalf("unexpected auth: %q", auth)
		}
		if limit := r.URL.Query().Get("limit"); limit != "100" {
			t.Fatalf("unexpected limit: %q", limit)
		}

		w.Header().Set("Content-Type", "application/json")
		page++
		switch page {
		case 1:
			if r.URL.Query().Get("offset") != "" {
				t.Fatal("first page should have no offset")
			}
			_, _ = w.Write([]byte(`{"data":[{"gid":"1","name":"Write report"}],"next_page":{"offset":"abc"}}`))
		default:
			if got := r.URL.Query().Get("offset"); got != "abc" {
				t.Fatalf("expected offset abc, got %q", got)
			}
			_, _ = w.Write([]byte(`{"data":[{"gid":"2","name":"File taxes"}]}`))
		}
	}))
	defer srv.Close()

	client := asana.NewClient(testConfig(srv.URL))
	tasks, err := client.ProjectTasks(context.Background(), "tok", "p1")
	if err != nil {
		t.Fatalf("ProjectTasks failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[1].GID != "2" {
		t.Fatalf("expected gid 2, got %q", tasks[1].GID)
	}
}

func TestCreateTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tasks" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var req struct {
			Data struct {
				Name     string   `json:"name"`
				DueOn    string   `json:"due_on"`
				Projects []string `json:"projects"`
			} `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req.Data.Name != "Write report" {
			t.Fatalf("expected name, got %q", req.Data.Name)
		}
		if req.Data.DueOn != "2026-09-01" {
			t.Fatalf("expected due_on 2026-09-01, got %q", req.Data.DueOn)
		}
		if len(req.Data.Projects) != 1 || req.Data.Projects[0] != "p1" {
			t.Fatalf("expected project p1, got %v", req.Data.Projects)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"gid":"99","name":"Write report"}}`))
	}))
	defer srv.Close()

	name := "Write report"
	due := "2026-09-01"
	client := asana.NewClient(testConfig(srv.URL))
	task, err := client.CreateTask(context.Background(), "tok", "p1",
		taskclient.TaskFields{Name: &name, DueOn: &due})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.GID != "99" {
		t.Fatalf("expected gid 99, got %q", task.GID)
	}
}

func TestUpdateTaskServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors":[{"message":"Not authorized"}]}`))
	}))
	defer srv.Close()

	done := true
	client := asana.NewClient(testConfig(srv.URL))
	_, err := client.UpdateTask(context.Background(), "tok", "42",
		taskclient.TaskFields{Completed: &done})
	if err == nil {
		t.Fatal("expected error on 403")
	}
}

func TestOAuthRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.Form.Get("grant_type"); got != "refresh_token" {
			t.Fatalf("expected refresh_token grant, got %q", got)
		}
		if got := r.Form.Get("refresh_token"); got != "rt-1" {
			t.Fatalf("expected rt-1, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-2","refresh_token":"rt-2","expires_in":3600,"token_type":"bearer"}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.TokenURL = srv.URL
	oauth := asana.NewOAuthClient(cfg)

	tr, err := oauth.Refresh(context.Background(), "rt-1")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if tr.AccessToken != "at-2" || tr.RefreshToken != "rt-2" {
		t.Fatalf("unexpected tokens: %+v", tr)
	}

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	if got := tr.ExpiresAt(now); !got.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry: %v", got)
	}
}
