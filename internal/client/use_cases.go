package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/aap-client/pkg/aap"
)

// UseCasesClient implements aap.UseCasesClient.
type UseCasesClient struct {
	api          *apiContext
	projects     *ProjectsClient
	jobTemplates *JobTemplatesClient
}

// NewUseCasesClient creates a new use cases client.
func NewUseCasesClient(api *apiContext, projects *ProjectsClient, jobTemplates *JobTemplatesClient) *UseCasesClient {
	return &UseCasesClient{
		api:          api,
		projects:     projects,
		jobTemplates: jobTemplates,
	}
}

// FindTemplatesByName implements aap.UseCasesClient.FindTemplatesByName.
func (c *UseCasesClient) FindTemplatesByName(ctx context.Context, names []string, organizationID int) ([]aap.JobTemplate, error) {
	if len(names) == 0 {
		return nil, aap.ErrNoTemplatesFound
	}

	query := url.Values{"name__in": []string{strings.Join(names, ",")}}
	if organizationID != 0 {
		query.Set("organization", itoa(organizationID))
	}

	templates, err := c.jobTemplates.list(ctx, query, func(*jobTemplateResponse) bool { return true })
	if err != nil {
		return nil, err
	}

	if len(templates) == 0 {
		return nil, fmt.Errorf("%w: %s", aap.ErrNoTemplatesFound, strings.Join(names, ", "))
	}

	return templates, nil
}

// Apply implements aap.UseCasesClient.Apply. Each use case gets a project
// for its repository and a job template per template definition. Existing
// resources are kept unless DeleteIfExist is set.
//
//nolint:funlen // orchestration reads best in one place
func (c *UseCasesClient) Apply(ctx context.Context, req *aap.UseCaseRequest) (*aap.UseCaseResult, error) {
	err := req.SCMType.Validate()
	if err != nil {
		return nil, err
	}

	if req.Organization.ID == 0 {
		return nil, fmt.Errorf("organization: %w", aap.ErrMissingResourceID)
	}

	names := req.TemplateNames()
	existing := make(map[string]bool, len(names))

	if !req.DeleteIfExist && len(names) > 0 {
		found, err := c.FindTemplatesByName(ctx, names, req.Organization.ID)
		if err != nil && !errors.Is(err, aap.ErrNoTemplatesFound) {
			return nil, err
		}

		for _, template := range found {
			existing[template.TemplateName] = true
		}
	}

	result := &aap.UseCaseResult{}

	for _, useCase := range req.UseCases {
		project, err := c.ensureProject(ctx, req, useCase)
		if err != nil {
			return nil, fmt.Errorf("use case %s: %w", useCase.Name, err)
		}

		result.Projects = append(result.Projects, *project)

		for _, def := range useCase.Templates {
			if existing[def.Name] {
				c.api.logger.Info("Reusing existing job template", c.api.fields(map[string]interface{}{
					"use_case": useCase.Name,
					"name":     def.Name,
				}))

				continue
			}

			organization := req.Organization

			_, err := c.jobTemplates.Create(ctx, &aap.JobTemplate{
				TemplateName:         def.Name,
				TemplateDescription:  def.Description,
				Project:              *project,
				Organization:         &organization,
				JobInventory:         def.Inventory,
				Playbook:             def.Playbook,
				ExecutionEnvironment: def.ExecutionEnvironment,
				ExtraVariables:       def.ExtraVariables,
			}, req.DeleteIfExist)
			if err != nil {
				return nil, fmt.Errorf("use case %s: %w", useCase.Name, err)
			}
		}
	}

	templates, err := c.FindTemplatesByName(ctx, names, req.Organization.ID)
	if err != nil {
		return nil, err
	}

	result.Templates = templates

	return result, nil
}

// ensureProject returns the project of a use case, creating it when needed.
func (c *UseCasesClient) ensureProject(ctx context.Context, req *aap.UseCaseRequest, useCase aap.UseCase) (*aap.Project, error) {
	if !req.DeleteIfExist {
		found, err := c.projects.FindByName(ctx, useCase.Name, req.Organization.ID)
		if err != nil {
			return nil, err
		}

		if len(found) == 1 {
			c.api.logger.Info("Reusing existing project", c.api.fields(map[string]interface{}{
				"use_case":   useCase.Name,
				"project_id": found[0].ID,
			}))

			return &found[0], nil
		}
	}

	updateOnLaunch := true

	return c.projects.Create(ctx, &aap.Project{
		ProjectName:        useCase.Name,
		ProjectDescription: useCase.Description,
		Organization:       req.Organization,
		Credentials:        req.SCMCredentials[req.SCMType],
		ScmURL:             useCase.URL,
		ScmBranch:          useCase.Version,
		ScmUpdateOnLaunch:  &updateOnLaunch,
	}, req.DeleteIfExist)
}
