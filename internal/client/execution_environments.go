package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/aap-client/internal/constants"
	"github.com/fivetwenty-io/aap-client/pkg/aap"
)

// ExecutionEnvironmentsClient implements aap.ExecutionEnvironmentsClient.
type ExecutionEnvironmentsClient struct {
	api *apiContext
}

// NewExecutionEnvironmentsClient creates a new execution environments client.
func NewExecutionEnvironmentsClient(api *apiContext) *ExecutionEnvironmentsClient {
	return &ExecutionEnvironmentsClient{api: api}
}

type executionEnvironmentRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Organization *int   `json:"organization,omitempty"`
	Image        string `json:"image"`
	Pull         string `json:"pull"`
}

type executionEnvironmentResponse struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Organization  *int   `json:"organization"`
	Image         string `json:"image"`
	Pull          string `json:"pull"`
	SummaryFields struct {
		Organization *aap.Organization `json:"organization"`
	} `json:"summary_fields"`
}

func (r *executionEnvironmentResponse) toExecutionEnvironment(api *apiContext) *aap.ExecutionEnvironment {
	var organization aap.Organization

	switch {
	case r.SummaryFields.Organization != nil:
		organization = *r.SummaryFields.Organization
	case r.Organization != nil:
		organization.ID = *r.Organization
	}

	return &aap.ExecutionEnvironment{
		ID:                     r.ID,
		EnvironmentName:        r.Name,
		EnvironmentDescription: r.Description,
		Organization:           organization,
		Image:                  r.Image,
		Pull:                   aap.PullPolicy(r.Pull),
		URL:                    api.portalURL(constants.ExecutionEnvironmentDetailsPath, r.ID),
	}
}

// Create implements aap.ExecutionEnvironmentsClient.Create. The controller
// returns the final state right away, so there is nothing to wait for.
func (c *ExecutionEnvironmentsClient) Create(
	ctx context.Context,
	env *aap.ExecutionEnvironment,
	deleteIfExist bool,
) (*aap.ExecutionEnvironment, error) {
	err := env.Pull.Validate()
	if err != nil {
		return nil, err
	}

	if deleteIfExist {
		existing, err := c.FindByName(ctx, env.EnvironmentName)
		if err != nil {
			return nil, err
		}

		ids := make([]int, 0, len(existing))
		for _, found := range existing {
			ids = append(ids, found.ID)
		}

		err = deleteSingleMatch(ctx, c.api, "execution environment", env.EnvironmentName, ids, c.Delete)
		if err != nil {
			return nil, err
		}
	}

	req := &executionEnvironmentRequest{
		Name:        env.EnvironmentName,
		Description: env.EnvironmentDescription,
		Image:       env.Image,
		Pull:        string(env.Pull),
	}

	if env.Organization.ID != 0 {
		id := env.Organization.ID
		req.Organization = &id
	}

	resp, err := c.api.httpClient.Post(ctx, c.api.endpoint(constants.ExecutionEnvironmentsEndpoint), req)
	if err != nil {
		return nil, fmt.Errorf("creating execution environment %s: %w", env.EnvironmentName, err)
	}

	var created executionEnvironmentResponse

	err = json.Unmarshal(resp.Body, &created)
	if err != nil {
		return nil, fmt.Errorf("parsing execution environment: %w", err)
	}

	result := created.toExecutionEnvironment(c.api)
	if created.SummaryFields.Organization == nil {
		result.Organization = env.Organization
	}

	c.api.logger.Info("Execution environment created", c.api.fields(map[string]interface{}{
		"execution_environment_id": result.ID,
		"name":                     result.EnvironmentName,
	}))

	return result, nil
}

// Get implements aap.ExecutionEnvironmentsClient.Get.
func (c *ExecutionEnvironmentsClient) Get(ctx context.Context, id int) (*aap.ExecutionEnvironment, error) {
	resp, err := c.api.httpClient.Get(ctx, c.api.endpoint(constants.ExecutionEnvironmentsEndpoint, itoa(id)), nil)
	if err != nil {
		return nil, fmt.Errorf("getting execution environment %d: %w", id, err)
	}

	var env executionEnvironmentResponse

	err = json.Unmarshal(resp.Body, &env)
	if err != nil {
		return nil, fmt.Errorf("parsing execution environment: %w", err)
	}

	return env.toExecutionEnvironment(c.api), nil
}

// FindByName implements aap.ExecutionEnvironmentsClient.FindByName. Names
// are matched across all organizations.
func (c *ExecutionEnvironmentsClient) FindByName(ctx context.Context, name string) ([]aap.ExecutionEnvironment, error) {
	found, err := listAll[executionEnvironmentResponse](ctx, c.api.httpClient,
		c.api.endpoint(constants.ExecutionEnvironmentsEndpoint), url.Values{"name": []string{name}})
	if err != nil {
		return nil, fmt.Errorf("listing execution environments: %w", err)
	}

	envs := make([]aap.ExecutionEnvironment, 0, len(found))

	for i := range found {
		if found[i].Name == name {
			envs = append(envs, *found[i].toExecutionEnvironment(c.api))
		}
	}

	return envs, nil
}

// Delete implements aap.ExecutionEnvironmentsClient.Delete.
func (c *ExecutionEnvironmentsClient) Delete(ctx context.Context, id int) error {
	_, err := c.api.httpClient.Delete(ctx, c.api.endpoint(constants.ExecutionEnvironmentsEndpoint, itoa(id)))
	if err != nil {
		return fmt.Errorf("deleting execution environment %d: %w", id, err)
	}

	return nil
}
