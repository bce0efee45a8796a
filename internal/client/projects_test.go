package client

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fivetwenty-io/aap-client/pkg/aap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectsPath = "/api/controller/v2/projects/"

func demoProject() *aap.Project {
	return &aap.Project{
		ProjectName:        "demo",
		ProjectDescription: "demo project",
		Organization:       aap.Organization{ID: 1, Name: "Default"},
		Credentials:        &aap.Credential{ID: 8, Name: "github"},
		ScmURL:             "https://github.com/example/playbooks",
		ScmBranch:          "main",
	}
}

// projectStatusServer serves a project whose sync walks through statuses.
func projectStatusServer(t *testing.T, existing []interface{}, statuses ...string) (string, *requestLog) {
	t.Helper()

	var polls int32

	server, log := newTestServer(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == projectsPath:
			writeJSON(w, http.StatusOK, page(nil, existing...))
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost && r.URL.Path == projectsPath:
			writeJSON(w, http.StatusCreated, map[string]interface{}{"id": 42, "name": "demo", "status": statuses[0]})
		case r.Method == http.MethodGet && r.URL.Path == projectsPath+"42/":
			index := int(atomic.AddInt32(&polls, 1))
			if index >= len(statuses) {
				index = len(statuses) - 1
			}

			writeJSON(w, http.StatusOK, map[string]interface{}{"id": 42, "name": "demo", "status": statuses[index]})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	return server.URL, log
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestProjectsClient_Create(t *testing.T) {
	t.Parallel()

	t.Run("deletes the single existing project before creating", func(t *testing.T) {
		t.Parallel()

		baseURL, log := projectStatusServer(t,
			[]interface{}{map[string]interface{}{"id": 5, "name": "demo"}},
			"pending", "running", "successful")

		client := newTestClient(t, baseURL)

		project, err := client.Projects().Create(context.Background(), demoProject(), true)
		require.NoError(t, err)

		calls := log.Calls()
		require.GreaterOrEqual(t, len(calls), 4)
		assert.Equal(t, "GET "+projectsPath, calls[0])
		assert.Equal(t, "DELETE "+projectsPath+"5/", calls[1])
		assert.Equal(t, "POST "+projectsPath, calls[2])

		lookup := log.Requests()[0]
		assert.Contains(t, lookup.Query, "name=demo")
		assert.Contains(t, lookup.Query, "organization=1")

		assert.Equal(t, 42, project.ID)
		assert.Equal(t, "successful", project.Status)
		assert.Equal(t, baseURL+"/execution/projects/42/details", project.URL)
		assert.Equal(t, "Default", project.Organization.Name)
		assert.Equal(t, 8, project.Credentials.ID)
	})

	t.Run("returns only after observing successful", func(t *testing.T) {
		t.Parallel()

		baseURL, log := projectStatusServer(t, nil, "pending", "running", "successful")
		client := newTestClient(t, baseURL)

		project, err := client.Projects().Create(context.Background(), demoProject(), false)
		require.NoError(t, err)
		assert.Equal(t, "successful", project.Status)
		assert.Equal(t, []string{
			"POST " + projectsPath,
			"GET " + projectsPath + "42/",
			"GET " + projectsPath + "42/",
		}, log.Calls())
	})

	t.Run("maps fields to the controller schema", func(t *testing.T) {
		t.Parallel()

		baseURL, log := projectStatusServer(t, nil, "successful")
		client := newTestClient(t, baseURL)

		_, err := client.Projects().Create(context.Background(), demoProject(), false)
		require.NoError(t, err)

		body := decodeBody(t, log.Requests()[0].Body)
		assert.Equal(t, "demo", body["name"])
		assert.Equal(t, "demo project", body["description"])
		assert.InDelta(t, 1, body["organization"], 0)
		assert.Equal(t, "git", body["scm_type"])
		assert.Equal(t, "https://github.com/example/playbooks", body["scm_url"])
		assert.Equal(t, "main", body["scm_branch"])
		assert.InDelta(t, 8, body["credential"], 0)
		assert.NotContains(t, body, "scm_update_on_launch")
	})

	t.Run("no delete without a match", func(t *testing.T) {
		t.Parallel()

		baseURL, log := projectStatusServer(t, nil, "successful")
		client := newTestClient(t, baseURL)

		_, err := client.Projects().Create(context.Background(), demoProject(), true)
		require.NoError(t, err)
		assert.Equal(t, []string{"GET " + projectsPath, "POST " + projectsPath}, log.Calls())
	})

	t.Run("no delete with several matches", func(t *testing.T) {
		t.Parallel()

		baseURL, log := projectStatusServer(t, []interface{}{
			map[string]interface{}{"id": 5, "name": "demo"},
			map[string]interface{}{"id": 6, "name": "demo"},
		}, "successful")
		client := newTestClient(t, baseURL)

		_, err := client.Projects().Create(context.Background(), demoProject(), true)
		require.NoError(t, err)
		assert.Equal(t, []string{"GET " + projectsPath, "POST " + projectsPath}, log.Calls())
	})

	t.Run("failed sync", func(t *testing.T) {
		t.Parallel()

		baseURL, _ := projectStatusServer(t, nil, "pending", "failed")
		client := newTestClient(t, baseURL)

		_, err := client.Projects().Create(context.Background(), demoProject(), false)
		require.ErrorIs(t, err, aap.ErrProjectCreationFailed)
		assert.Contains(t, err.Error(), "Failed to create project")
	})

	t.Run("canceled sync", func(t *testing.T) {
		t.Parallel()

		baseURL, _ := projectStatusServer(t, nil, "canceled")
		client := newTestClient(t, baseURL)

		_, err := client.Projects().Create(context.Background(), demoProject(), false)
		require.ErrorIs(t, err, aap.ErrProjectCreationFailed)
	})

	t.Run("poll timeout", func(t *testing.T) {
		t.Parallel()

		baseURL, _ := projectStatusServer(t, nil, "running")
		client := newTestClient(t, baseURL, func(config *aap.Config) {
			config.PollTimeout = 50 * time.Millisecond
		})

		_, err := client.Projects().Create(context.Background(), demoProject(), false)
		require.ErrorIs(t, err, aap.ErrPollTimeout)
	})

	t.Run("caller cancellation", func(t *testing.T) {
		t.Parallel()

		baseURL, _ := projectStatusServer(t, nil, "running")
		client := newTestClient(t, baseURL)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.Projects().Create(ctx, demoProject(), false)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.NotErrorIs(t, err, aap.ErrPollTimeout)
	})

	t.Run("validation error", func(t *testing.T) {
		t.Parallel()

		server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"__all__": []string{"Project with this Name and Organization already exists."},
			})
		})

		client := newTestClient(t, server.URL)

		_, err := client.Projects().Create(context.Background(), demoProject(), false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Project with this Name and Organization already exists.")
		assert.Equal(t, 400, aap.StatusCode(err))
	})
}

func TestProjectsClient_Get(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
		assert.Equal(t, projectsPath+"7/", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":                   7,
			"name":                 "demo",
			"organization":         1,
			"scm_url":              "https://github.com/example/playbooks",
			"scm_update_on_launch": true,
			"status":               "successful",
			"summary_fields": map[string]interface{}{
				"organization": map[string]interface{}{"id": 1, "name": "Default"},
			},
		})
	})

	client := newTestClient(t, server.URL)

	project, err := client.Projects().Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "demo", project.ProjectName)
	assert.Equal(t, "Default", project.Organization.Name)
	require.NotNil(t, project.ScmUpdateOnLaunch)
	assert.True(t, *project.ScmUpdateOnLaunch)
	assert.Equal(t, server.URL+"/execution/projects/7/details", project.URL)
}

func TestProjectsClient_FindByName_ExactMatch(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
		writeJSON(w, http.StatusOK, page(nil,
			map[string]interface{}{"id": 1, "name": "demo"},
			map[string]interface{}{"id": 2, "name": "Demo"},
		))
	})

	client := newTestClient(t, server.URL)

	projects, err := client.Projects().FindByName(context.Background(), "demo", 0)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, 1, projects[0].ID)
}
