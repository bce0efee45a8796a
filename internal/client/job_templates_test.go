package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/aap-client/pkg/aap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const jobTemplatesPath = "/api/controller/v2/job_templates/"

func demoTemplate() *aap.JobTemplate {
	return &aap.JobTemplate{
		TemplateName: "deploy",
		Project: aap.Project{
			ID:           42,
			ProjectName:  "demo",
			Organization: aap.Organization{ID: 1, Name: "Default"},
		},
		JobInventory: aap.Inventory{ID: 2},
		Playbook:     "playbooks/deploy.yml",
	}
}

func jobTemplateServer(t *testing.T, existing ...interface{}) (string, *requestLog) {
	t.Helper()

	server, log := newTestServer(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == jobTemplatesPath:
			writeJSON(w, http.StatusOK, page(nil, existing...))
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost && r.URL.Path == jobTemplatesPath:
			writeJSON(w, http.StatusCreated, map[string]interface{}{
				"id":           21,
				"name":         "deploy",
				"project":      42,
				"inventory":    2,
				"playbook":     "playbooks/deploy.yml",
				"organization": 1,
			})
		case r.Method == http.MethodPost && r.URL.Path == jobTemplatesPath+"21/credentials/":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	return server.URL, log
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestJobTemplatesClient_Create(t *testing.T) {
	t.Parallel()

	t.Run("injects connection settings into extra variables", func(t *testing.T) {
		t.Parallel()

		baseURL, log := jobTemplateServer(t)
		client := newTestClient(t, baseURL, func(config *aap.Config) {
			config.SkipTLSVerify = true
		})

		template := demoTemplate()
		template.ExtraVariables = map[string]interface{}{"app_name": "shop"}

		created, err := client.JobTemplates().Create(context.Background(), template, false)
		require.NoError(t, err)

		body := decodeBody(t, log.Requests()[0].Body)
		assert.Equal(t, "deploy", body["name"])
		assert.Equal(t, "run", body["job_type"])
		assert.InDelta(t, 42, body["project"], 0)
		assert.InDelta(t, 2, body["inventory"], 0)
		assert.InDelta(t, 1, body["organization"], 0)

		extraVars, ok := body["extra_vars"].(string)
		require.True(t, ok)

		var vars map[string]interface{}
		require.NoError(t, yaml.Unmarshal([]byte(extraVars), &vars))
		assert.Equal(t, "shop", vars["app_name"])
		assert.Equal(t, false, vars["aap_validate_certs"])
		assert.Equal(t, baseURL, vars["aap_hostname"])

		assert.NotContains(t, template.ExtraVariables, "aap_hostname")
		assert.Equal(t, 21, created.ID)
		assert.Equal(t, baseURL+"/execution/templates/job-template/21/details", created.URL)
		assert.Equal(t, "demo", created.Project.ProjectName)
	})

	t.Run("omits extra variables when none are given", func(t *testing.T) {
		t.Parallel()

		baseURL, log := jobTemplateServer(t)
		client := newTestClient(t, baseURL)

		_, err := client.JobTemplates().Create(context.Background(), demoTemplate(), false)
		require.NoError(t, err)

		body := decodeBody(t, log.Requests()[0].Body)
		assert.NotContains(t, body, "extra_vars")
		assert.NotContains(t, body, "execution_environment")
	})

	t.Run("associates the credential", func(t *testing.T) {
		t.Parallel()

		baseURL, log := jobTemplateServer(t)
		client := newTestClient(t, baseURL)

		template := demoTemplate()
		template.Credentials = &aap.Credential{ID: 9, Name: "machine"}
		template.ExecutionEnvironment = &aap.ExecutionEnvironment{ID: 11}

		_, err := client.JobTemplates().Create(context.Background(), template, false)
		require.NoError(t, err)

		requests := log.Requests()
		require.Len(t, requests, 2)
		assert.InDelta(t, 11, decodeBody(t, requests[0].Body)["execution_environment"], 0)
		assert.Equal(t, "POST "+jobTemplatesPath+"21/credentials/", requests[1].Call())
		assert.InDelta(t, 9, decodeBody(t, requests[1].Body)["id"], 0)
	})

	t.Run("deletes the existing template within the organization", func(t *testing.T) {
		t.Parallel()

		baseURL, log := jobTemplateServer(t, map[string]interface{}{"id": 17, "name": "deploy"})
		client := newTestClient(t, baseURL)

		_, err := client.JobTemplates().Create(context.Background(), demoTemplate(), true)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"GET " + jobTemplatesPath,
			"DELETE " + jobTemplatesPath + "17/",
			"POST " + jobTemplatesPath,
		}, log.Calls())
		assert.Contains(t, log.Requests()[0].Query, "organization=1")
	})
}

func TestJobTemplatesClient_Get(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":         21,
			"name":       "deploy",
			"playbook":   "playbooks/deploy.yml",
			"extra_vars": "---\napp_name: shop\n",
			"summary_fields": map[string]interface{}{
				"project":               map[string]interface{}{"id": 42, "name": "demo"},
				"inventory":             map[string]interface{}{"id": 2, "name": "Demo Inventory"},
				"organization":          map[string]interface{}{"id": 1, "name": "Default"},
				"execution_environment": map[string]interface{}{"id": 11, "name": "ee-demo"},
				"credentials": []interface{}{
					map[string]interface{}{"id": 9, "name": "machine", "kind": "ssh"},
				},
			},
		})
	})

	client := newTestClient(t, server.URL)

	template, err := client.JobTemplates().Get(context.Background(), 21)
	require.NoError(t, err)
	assert.Equal(t, "demo", template.Project.ProjectName)
	assert.Equal(t, "Demo Inventory", template.JobInventory.Name)
	assert.Equal(t, 1, template.OrganizationID())
	assert.Equal(t, "ee-demo", template.ExecutionEnvironment.EnvironmentName)
	assert.Equal(t, 9, template.Credentials.ID)
	assert.Equal(t, "shop", template.ExtraVariables["app_name"])
}
