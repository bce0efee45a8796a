package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/aap-client/internal/constants"
	"github.com/fivetwenty-io/aap-client/pkg/aap"
	"gopkg.in/yaml.v3"
)

// JobTemplatesClient implements aap.JobTemplatesClient.
type JobTemplatesClient struct {
	api *apiContext
}

// NewJobTemplatesClient creates a new job templates client.
func NewJobTemplatesClient(api *apiContext) *JobTemplatesClient {
	return &JobTemplatesClient{api: api}
}

type jobTemplateRequest struct {
	Name                 string `json:"name"`
	Description          string `json:"description,omitempty"`
	JobType              string `json:"job_type"`
	Inventory            int    `json:"inventory"`
	Project              int    `json:"project"`
	Playbook             string `json:"playbook"`
	Organization         *int   `json:"organization,omitempty"`
	ExecutionEnvironment *int   `json:"execution_environment,omitempty"`
	ExtraVars            string `json:"extra_vars,omitempty"`
}

type namedRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type jobTemplateSummaryFields struct {
	Project              *namedRef         `json:"project"`
	Inventory            *namedRef         `json:"inventory"`
	Organization         *aap.Organization `json:"organization"`
	ExecutionEnvironment *namedRef         `json:"execution_environment"`
	Credentials          []aap.Credential  `json:"credentials"`
}

type jobTemplateResponse struct {
	ID                   int                      `json:"id"`
	Name                 string                   `json:"name"`
	Description          string                   `json:"description"`
	Inventory            *int                     `json:"inventory"`
	Project              *int                     `json:"project"`
	Playbook             string                   `json:"playbook"`
	Organization         *int                     `json:"organization"`
	ExecutionEnvironment *int                     `json:"execution_environment"`
	ExtraVars            string                   `json:"extra_vars"`
	SummaryFields        jobTemplateSummaryFields `json:"summary_fields"`
}

//nolint:cyclop // field by field mapping of optional references
func (r *jobTemplateResponse) toJobTemplate(api *apiContext) *aap.JobTemplate {
	template := &aap.JobTemplate{
		ID:                  r.ID,
		TemplateName:        r.Name,
		TemplateDescription: r.Description,
		Playbook:            r.Playbook,
		URL:                 api.portalURL(constants.JobTemplateDetailsPath, r.ID),
	}

	if r.Project != nil {
		template.Project.ID = *r.Project
	}

	if ref := r.SummaryFields.Project; ref != nil {
		template.Project.ID = ref.ID
		template.Project.ProjectName = ref.Name
	}

	if r.Inventory != nil {
		template.JobInventory.ID = *r.Inventory
	}

	if ref := r.SummaryFields.Inventory; ref != nil {
		template.JobInventory = aap.Inventory{ID: ref.ID, Name: ref.Name}
	}

	switch {
	case r.SummaryFields.Organization != nil:
		organization := *r.SummaryFields.Organization
		template.Organization = &organization
		template.Project.Organization = organization
	case r.Organization != nil:
		template.Organization = &aap.Organization{ID: *r.Organization}
		template.Project.Organization = *template.Organization
	}

	if ref := r.SummaryFields.ExecutionEnvironment; ref != nil {
		template.ExecutionEnvironment = &aap.ExecutionEnvironment{ID: ref.ID, EnvironmentName: ref.Name}
	} else if r.ExecutionEnvironment != nil {
		template.ExecutionEnvironment = &aap.ExecutionEnvironment{ID: *r.ExecutionEnvironment}
	}

	if len(r.SummaryFields.Credentials) > 0 {
		credential := r.SummaryFields.Credentials[0]
		template.Credentials = &credential
	}

	if r.ExtraVars != "" {
		var vars map[string]interface{}

		err := yaml.Unmarshal([]byte(r.ExtraVars), &vars)
		if err == nil && len(vars) > 0 {
			template.ExtraVariables = vars
		}
	}

	return template
}

// extraVars returns the YAML text for the template extra variables, with
// the connection settings of this client added. Empty when the template has
// no extra variables.
func (c *JobTemplatesClient) extraVars(vars map[string]interface{}) (string, error) {
	if vars == nil {
		return "", nil
	}

	merged := make(map[string]interface{}, len(vars)+2)
	for key, value := range vars {
		merged[key] = value
	}

	merged[constants.ExtraVarValidateCerts] = c.api.checkSSL
	merged[constants.ExtraVarHostname] = c.api.baseURL

	data, err := yaml.Marshal(merged)
	if err != nil {
		return "", fmt.Errorf("encoding extra variables: %w", err)
	}

	return string(data), nil
}

// Create implements aap.JobTemplatesClient.Create.
func (c *JobTemplatesClient) Create(
	ctx context.Context,
	template *aap.JobTemplate,
	deleteIfExist bool,
) (*aap.JobTemplate, error) {
	organizationID := template.OrganizationID()

	if deleteIfExist {
		err := c.deleteExisting(ctx, template.TemplateName, organizationID)
		if err != nil {
			return nil, err
		}
	}

	extraVars, err := c.extraVars(template.ExtraVariables)
	if err != nil {
		return nil, err
	}

	req := &jobTemplateRequest{
		Name:        template.TemplateName,
		Description: template.TemplateDescription,
		JobType:     "run",
		Inventory:   template.JobInventory.ID,
		Project:     template.Project.ID,
		Playbook:    template.Playbook,
		ExtraVars:   extraVars,
	}

	if organizationID != 0 {
		req.Organization = &organizationID
	}

	if template.ExecutionEnvironment != nil {
		id := template.ExecutionEnvironment.ID
		req.ExecutionEnvironment = &id
	}

	resp, err := c.api.httpClient.Post(ctx, c.api.endpoint(constants.JobTemplatesEndpoint), req)
	if err != nil {
		return nil, fmt.Errorf("creating job template %s: %w", template.TemplateName, err)
	}

	var created jobTemplateResponse

	err = json.Unmarshal(resp.Body, &created)
	if err != nil {
		return nil, fmt.Errorf("parsing job template: %w", err)
	}

	if template.Credentials != nil {
		err = c.AssociateCredential(ctx, created.ID, template.Credentials.ID)
		if err != nil {
			return nil, err
		}
	}

	result := created.toJobTemplate(c.api)
	result.Project = template.Project
	result.Credentials = template.Credentials

	if result.Organization == nil && template.Organization != nil {
		organization := *template.Organization
		result.Organization = &organization
	}

	c.api.logger.Info("Job template created", c.api.fields(map[string]interface{}{
		"template_id": result.ID,
		"name":        result.TemplateName,
	}))

	return result, nil
}

// AssociateCredential attaches a credential to a job template.
func (c *JobTemplatesClient) AssociateCredential(ctx context.Context, templateID, credentialID int) error {
	path := c.api.endpoint(constants.JobTemplatesEndpoint, itoa(templateID), "credentials")

	_, err := c.api.httpClient.Post(ctx, path, map[string]int{"id": credentialID})
	if err != nil {
		return fmt.Errorf("associating credential %d with job template %d: %w", credentialID, templateID, err)
	}

	return nil
}

// Get implements aap.JobTemplatesClient.Get.
func (c *JobTemplatesClient) Get(ctx context.Context, id int) (*aap.JobTemplate, error) {
	resp, err := c.api.httpClient.Get(ctx, c.api.endpoint(constants.JobTemplatesEndpoint, itoa(id)), nil)
	if err != nil {
		return nil, fmt.Errorf("getting job template %d: %w", id, err)
	}

	var template jobTemplateResponse

	err = json.Unmarshal(resp.Body, &template)
	if err != nil {
		return nil, fmt.Errorf("parsing job template: %w", err)
	}

	return template.toJobTemplate(c.api), nil
}

// FindByName implements aap.JobTemplatesClient.FindByName.
func (c *JobTemplatesClient) FindByName(ctx context.Context, name string, organizationID int) ([]aap.JobTemplate, error) {
	query := url.Values{"name": []string{name}}
	if organizationID != 0 {
		query.Set("organization", itoa(organizationID))
	}

	return c.list(ctx, query, func(r *jobTemplateResponse) bool { return r.Name == name })
}

func (c *JobTemplatesClient) list(
	ctx context.Context,
	query url.Values,
	keep func(*jobTemplateResponse) bool,
) ([]aap.JobTemplate, error) {
	found, err := listAll[jobTemplateResponse](ctx, c.api.httpClient, c.api.endpoint(constants.JobTemplatesEndpoint), query)
	if err != nil {
		return nil, fmt.Errorf("listing job templates: %w", err)
	}

	templates := make([]aap.JobTemplate, 0, len(found))

	for i := range found {
		if keep(&found[i]) {
			templates = append(templates, *found[i].toJobTemplate(c.api))
		}
	}

	return templates, nil
}

// Delete implements aap.JobTemplatesClient.Delete.
func (c *JobTemplatesClient) Delete(ctx context.Context, id int) error {
	_, err := c.api.httpClient.Delete(ctx, c.api.endpoint(constants.JobTemplatesEndpoint, itoa(id)))
	if err != nil {
		return fmt.Errorf("deleting job template %d: %w", id, err)
	}

	return nil
}

func (c *JobTemplatesClient) deleteExisting(ctx context.Context, name string, organizationID int) error {
	existing, err := c.FindByName(ctx, name, organizationID)
	if err != nil {
		return err
	}

	ids := make([]int, 0, len(existing))
	for _, template := range existing {
		ids = append(ids, template.ID)
	}

	return deleteSingleMatch(ctx, c.api, "job template", name, ids, c.Delete)
}
