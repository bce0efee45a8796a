package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/aap-client/internal/constants"
	"github.com/fivetwenty-io/aap-client/pkg/aap"
)

// ProjectsClient implements aap.ProjectsClient.
type ProjectsClient struct {
	api *apiContext
}

// NewProjectsClient creates a new projects client.
func NewProjectsClient(api *apiContext) *ProjectsClient {
	return &ProjectsClient{api: api}
}

type projectRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	Organization      int    `json:"organization"`
	ScmType           string `json:"scm_type"`
	ScmURL            string `json:"scm_url"`
	ScmBranch         string `json:"scm_branch,omitempty"`
	Credential        *int   `json:"credential,omitempty"`
	ScmUpdateOnLaunch *bool  `json:"scm_update_on_launch,omitempty"`
}

type projectSummaryFields struct {
	Organization *aap.Organization `json:"organization"`
	Credential   *aap.Credential   `json:"credential"`
}

type projectResponse struct {
	ID                int                  `json:"id"`
	Name              string               `json:"name"`
	Description       string               `json:"description"`
	Organization      int                  `json:"organization"`
	ScmURL            string               `json:"scm_url"`
	ScmBranch         string               `json:"scm_branch"`
	ScmUpdateOnLaunch bool                 `json:"scm_update_on_launch"`
	Status            string               `json:"status"`
	SummaryFields     projectSummaryFields `json:"summary_fields"`
}

func (r *projectResponse) toProject(api *apiContext) *aap.Project {
	organization := aap.Organization{ID: r.Organization}
	if r.SummaryFields.Organization != nil {
		organization = *r.SummaryFields.Organization
	}

	updateOnLaunch := r.ScmUpdateOnLaunch

	return &aap.Project{
		ID:                 r.ID,
		ProjectName:        r.Name,
		ProjectDescription: r.Description,
		Organization:       organization,
		Credentials:        r.SummaryFields.Credential,
		ScmURL:             r.ScmURL,
		ScmBranch:          r.ScmBranch,
		ScmUpdateOnLaunch:  &updateOnLaunch,
		Status:             r.Status,
		URL:                api.portalURL(constants.ProjectDetailsPath, r.ID),
	}
}

func newProjectRequest(project *aap.Project) *projectRequest {
	req := &projectRequest{
		Name:              project.ProjectName,
		Description:       project.ProjectDescription,
		Organization:      project.Organization.ID,
		ScmType:           "git",
		ScmURL:            project.ScmURL,
		ScmBranch:         project.ScmBranch,
		ScmUpdateOnLaunch: project.ScmUpdateOnLaunch,
	}

	if project.Credentials != nil {
		id := project.Credentials.ID
		req.Credential = &id
	}

	return req
}

// isProjectInFlight reports whether the initial SCM sync is still running.
func isProjectInFlight(status string) bool {
	switch status {
	case constants.StatusNew, constants.StatusPending, constants.StatusWaiting, constants.StatusRunning:
		return true
	default:
		return false
	}
}

func isProjectFailed(status string) bool {
	switch status {
	case constants.StatusFailed, constants.StatusError, constants.StatusCanceled:
		return true
	default:
		return false
	}
}

// Create implements aap.ProjectsClient.Create. It returns once the initial
// SCM sync has finished.
func (c *ProjectsClient) Create(ctx context.Context, project *aap.Project, deleteIfExist bool) (*aap.Project, error) {
	if deleteIfExist {
		err := c.deleteExisting(ctx, project.ProjectName, project.Organization.ID)
		if err != nil {
			return nil, err
		}
	}

	resp, err := c.api.httpClient.Post(ctx, c.api.endpoint(constants.ProjectsEndpoint), newProjectRequest(project))
	if err != nil {
		return nil, fmt.Errorf("creating project %s: %w", project.ProjectName, err)
	}

	var created projectResponse

	err = json.Unmarshal(resp.Body, &created)
	if err != nil {
		return nil, fmt.Errorf("parsing project: %w", err)
	}

	current := &created

	if isProjectInFlight(created.Status) {
		current, err = pollUntil(ctx, c.api.pollInterval, c.api.pollTimeout,
			func(ctx context.Context) (*projectResponse, error) {
				return c.get(ctx, created.ID)
			},
			func(p *projectResponse) bool {
				return !isProjectInFlight(p.Status)
			},
		)
		if err != nil {
			return nil, fmt.Errorf("waiting for project %s: %w", project.ProjectName, err)
		}
	}

	if isProjectFailed(current.Status) {
		c.api.logger.Error("Project sync failed", c.api.fields(map[string]interface{}{
			"project_id": current.ID,
			"status":     current.Status,
		}))

		return nil, fmt.Errorf("%w %s: sync ended with status %s", aap.ErrProjectCreationFailed, project.ProjectName, current.Status)
	}

	result := current.toProject(c.api)
	if current.SummaryFields.Organization == nil {
		result.Organization = project.Organization
	}

	if project.Credentials != nil {
		result.Credentials = project.Credentials
	}

	c.api.logger.Info("Project created", c.api.fields(map[string]interface{}{
		"project_id": result.ID,
		"name":       result.ProjectName,
	}))

	return result, nil
}

// Get implements aap.ProjectsClient.Get.
func (c *ProjectsClient) Get(ctx context.Context, id int) (*aap.Project, error) {
	project, err := c.get(ctx, id)
	if err != nil {
		return nil, err
	}

	return project.toProject(c.api), nil
}

func (c *ProjectsClient) get(ctx context.Context, id int) (*projectResponse, error) {
	resp, err := c.api.httpClient.Get(ctx, c.api.endpoint(constants.ProjectsEndpoint, itoa(id)), nil)
	if err != nil {
		return nil, fmt.Errorf("getting project %d: %w", id, err)
	}

	var project projectResponse

	err = json.Unmarshal(resp.Body, &project)
	if err != nil {
		return nil, fmt.Errorf("parsing project: %w", err)
	}

	return &project, nil
}

// FindByName implements aap.ProjectsClient.FindByName.
func (c *ProjectsClient) FindByName(ctx context.Context, name string, organizationID int) ([]aap.Project, error) {
	query := url.Values{"name": []string{name}}
	if organizationID != 0 {
		query.Set("organization", itoa(organizationID))
	}

	found, err := listAll[projectResponse](ctx, c.api.httpClient, c.api.endpoint(constants.ProjectsEndpoint), query)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	projects := make([]aap.Project, 0, len(found))

	for i := range found {
		if found[i].Name == name {
			projects = append(projects, *found[i].toProject(c.api))
		}
	}

	return projects, nil
}

// Delete implements aap.ProjectsClient.Delete.
func (c *ProjectsClient) Delete(ctx context.Context, id int) error {
	_, err := c.api.httpClient.Delete(ctx, c.api.endpoint(constants.ProjectsEndpoint, itoa(id)))
	if err != nil {
		return fmt.Errorf("deleting project %d: %w", id, err)
	}

	return nil
}

func (c *ProjectsClient) deleteExisting(ctx context.Context, name string, organizationID int) error {
	existing, err := c.FindByName(ctx, name, organizationID)
	if err != nil {
		return err
	}

	ids := make([]int, 0, len(existing))
	for _, project := range existing {
		ids = append(ids, project.ID)
	}

	return deleteSingleMatch(ctx, c.api, "project", name, ids, c.Delete)
}

// deleteSingleMatch deletes the resource when exactly one match exists.
// Several matches are ambiguous and left alone.
func deleteSingleMatch(
	ctx context.Context,
	api *apiContext,
	kind, name string,
	ids []int,
	deleteFn func(context.Context, int) error,
) error {
	switch len(ids) {
	case 0:
		return nil
	case 1:
		api.logger.Info("Deleting existing resource", api.fields(map[string]interface{}{
			"kind": kind,
			"name": name,
			"id":   ids[0],
		}))

		return deleteFn(ctx, ids[0])
	default:
		api.logger.Warn("Several resources match, skipping delete", api.fields(map[string]interface{}{
			"kind":    kind,
			"name":    name,
			"matches": ids,
		}))

		return nil
	}
}
