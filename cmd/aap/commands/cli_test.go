package commands

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fivetwenty-io/aap-client/internal/constants"
	"github.com/fivetwenty-io/aap-client/pkg/aap"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestProjectsGet(t *testing.T) {
	server, calls := newControllerServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer cli-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":      7,
			"name":    "demo",
			"scm_url": "https://github.com/example/demo",
			"status":  "successful",
			"summary_fields": map[string]interface{}{
				"organization": map[string]interface{}{"id": 1, "name": "Default"},
			},
		})
	})
	setupCLI(t, server.URL)

	out, err := runCommand(t, NewProjectsCommand(), "get", "7")
	require.NoError(t, err)
	assert.Equal(t, []string{"GET /api/controller/v2/projects/7/"}, *calls)

	var project aap.Project
	require.NoError(t, json.Unmarshal([]byte(out), &project))
	assert.Equal(t, 7, project.ID)
	assert.Equal(t, "demo", project.ProjectName)
	assert.Equal(t, "Default", project.Organization.Name)
}

func TestProjectsGet_InvalidID(t *testing.T) {
	server, calls := newControllerServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	setupCLI(t, server.URL)

	_, err := runCommand(t, NewProjectsCommand(), "get", "latest")
	require.ErrorIs(t, err, aap.ErrMissingResourceID)
	assert.Empty(t, *calls)
}

func TestProjectsDelete_Forbidden(t *testing.T) {
	server, _ := newControllerServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]interface{}{"detail": "You do not have permission."})
	})
	setupCLI(t, server.URL)

	_, err := runCommand(t, NewProjectsCommand(), "delete", "7")
	require.ErrorIs(t, err, aap.ErrInsufficientPrivileges)
	assert.Contains(t, err.Error(), aap.InsufficientPrivilegesMessage)
	assert.Equal(t, aap.InsufficientPrivilegesMessage, UserMessage(err))
}

func TestJobsLaunch_DuplicateCredentialTypes(t *testing.T) {
	server, calls := newControllerServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	setupCLI(t, server.URL)

	_, err := runCommand(t, NewJobsCommand(), "launch", "21", "--credential", "4:1:ssh-a", "--credential", "5:1:ssh-b")
	require.ErrorIs(t, err, aap.ErrDuplicateCredentialType)
	assert.Contains(t, err.Error(), "credential type 1 (ssh-a, ssh-b)")
	assert.Empty(t, *calls)
}

func TestJobsLaunch_Successful(t *testing.T) {
	var launchBody map[string]interface{}

	server, calls := newControllerServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/controller/v2/job_templates/21/launch/":
			_ = json.NewDecoder(r.Body).Decode(&launchBody)
			writeJSON(w, http.StatusCreated, map[string]interface{}{"id": 9, "job": 9, "status": "pending"})
		case "/api/controller/v2/jobs/9/":
			writeJSON(w, http.StatusOK, map[string]interface{}{"id": 9, "status": "successful"})
		case "/api/controller/v2/jobs/9/job_events/":
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"count":   1,
				"next":    nil,
				"results": []interface{}{map[string]interface{}{"id": 1, "counter": 1, "event": "playbook_on_stats"}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	setupCLI(t, server.URL)

	out, err := runCommand(t, NewJobsCommand(), "launch", "21", "--timeout", "0", "--limit", "web", "--extra-vars", "app: shop")
	require.NoError(t, err)
	assert.Equal(t, "POST /api/controller/v2/job_templates/21/launch/", (*calls)[0])

	assert.InDelta(t, 0, launchBody["timeout"], 0)
	assert.Equal(t, "web", launchBody["limit"])
	assert.Equal(t, map[string]interface{}{"app": "shop"}, launchBody["extra_vars"])
	assert.NotContains(t, launchBody, "forks")

	var job aap.Job
	require.NoError(t, json.Unmarshal([]byte(out), &job))
	assert.Equal(t, "successful", job.Status)
	assert.Len(t, job.Events, 1)
}

func TestCleanup(t *testing.T) {
	server, calls := newControllerServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	setupCLI(t, server.URL)

	_, err := runCommand(t, NewCleanupCommand())
	require.ErrorIs(t, err, constants.ErrNothingToCleanUp)
	assert.Empty(t, *calls)

	out, err := runCommand(t, NewCleanupCommand(), "--project-id", "1", "--template-id", "2")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"DELETE /api/controller/v2/job_templates/2/",
		"DELETE /api/controller/v2/projects/1/",
	}, *calls)
	assert.Equal(t, "Cleanup complete\n", out)
}

func TestResourcesList(t *testing.T) {
	server, _ := newControllerServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/controller/v2/inventories/", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"count":   1,
			"next":    nil,
			"results": []interface{}{map[string]interface{}{"id": 2, "name": "prod"}},
		})
	})
	setupCLI(t, server.URL)

	out, err := runCommand(t, NewResourcesCommand(), "list", "inventories")
	require.NoError(t, err)

	var items []aap.ResourceItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	assert.Equal(t, []aap.ResourceItem{{ID: 2, Name: "prod"}}, items)
}

func TestPing(t *testing.T) {
	server, _ := newControllerServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/gateway/v1/ping/", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{"version": "2.5"})
	})
	setupCLI(t, server.URL)
	viper.Set("output", constants.FormatYAML)

	out, err := runCommand(t, NewPingCommand())
	require.NoError(t, err)

	var info aap.PingInfo
	require.NoError(t, yaml.Unmarshal([]byte(out), &info))
	assert.Equal(t, "api/controller/v2", info.APIPrefix)
	assert.True(t, info.Gateway)
}

func TestUseCasesApply_RequiresFileAndOrganization(t *testing.T) {
	setupCLI(t, "https://aap.example.com")

	_, err := runCommand(t, NewUseCasesCommand(), "apply", "--organization-id", "1")
	require.ErrorIs(t, err, constants.ErrUseCaseFileRequired)

	_, err = runCommand(t, NewUseCasesCommand(), "apply", "--file", "use-cases.yml")
	require.ErrorIs(t, err, constants.ErrOrganizationRequired)
}

func TestConfigSetAndShow(t *testing.T) {
	configFile := setupCLI(t, "https://aap.example.com")

	out, err := runCommand(t, NewConfigCommand(), "set", "base_url", "https://controller.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "Set base_url = https://controller.example.com/\n", out)

	data, err := os.ReadFile(configFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "base_url: https://controller.example.com\n")

	_, err = runCommand(t, NewConfigCommand(), "set", "colour", "blue")
	require.ErrorIs(t, err, constants.ErrUnknownConfigKey)

	_, err = runCommand(t, NewConfigCommand(), "set", "output", "xml")
	require.ErrorIs(t, err, constants.ErrInvalidOutputFormat)

	out, err = runCommand(t, NewConfigCommand(), "show")
	require.NoError(t, err)

	var shown Config
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "https://controller.example.com", shown.BaseURL)
	assert.Equal(t, Masked+"oken", shown.Token)
}

func TestConfigSetToken(t *testing.T) {
	configFile := setupCLI(t, "https://aap.example.com")

	cmd := NewConfigCommand()
	cmd.SetIn(strings.NewReader("fresh-token\n"))

	out, err := runCommand(t, cmd, "set-token")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "Token saved\n"))

	data, err := os.ReadFile(filepath.Clean(configFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "token: fresh-token")
	assert.Equal(t, "fresh-token", viper.GetString("token"))

	cmd = NewConfigCommand()
	cmd.SetIn(strings.NewReader("\n"))

	_, err = runCommand(t, cmd, "set-token")
	require.ErrorIs(t, err, constants.ErrNoTokenConfigured)
}
