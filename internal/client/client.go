package client

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/aap-client/internal/auth"
	"github.com/fivetwenty-io/aap-client/internal/constants"
	"github.com/fivetwenty-io/aap-client/internal/http"
	"github.com/fivetwenty-io/aap-client/pkg/aap"
)

// Client implements the aap.Client interface.
type Client struct {
	api *apiContext

	projects              *ProjectsClient
	executionEnvironments *ExecutionEnvironmentsClient
	jobTemplates          *JobTemplatesClient
	jobs                  *JobsClient
	useCases              *UseCasesClient
	resources             *ResourcesClient
	platform              *PlatformClient
}

// apiContext is shared by every resource client of one Client.
type apiContext struct {
	httpClient   *http.Client
	logger       aap.Logger
	apiPrefix    string
	baseURL      string
	checkSSL     bool
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// endpoint joins path segments under the controller API prefix, with the
// trailing slash the controller expects.
func (a *apiContext) endpoint(segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, a.apiPrefix)

	for _, segment := range segments {
		parts = append(parts, strings.Trim(segment, "/"))
	}

	return strings.Join(parts, "/") + "/"
}

// portalURL builds the link to a resource page of the platform UI.
func (a *apiContext) portalURL(format string, id int) string {
	return a.baseURL + fmt.Sprintf(format, id)
}

// fields returns log fields tagged with the plugin identifier.
func (a *apiContext) fields(extra map[string]interface{}) map[string]interface{} {
	fields := map[string]interface{}{"plugin": constants.PluginID}
	for key, value := range extra {
		fields[key] = value
	}

	return fields
}

func itoa(id int) string {
	return strconv.Itoa(id)
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *aap.Config, logger aap.Logger) []http.Option {
	httpOpts := []http.Option{http.WithLogger(logger)}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.SkipTLSVerify {
		httpOpts = append(httpOpts, http.WithInsecureSkipVerify(true))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if config.RateLimit > 0 {
		httpOpts = append(httpOpts, http.WithRateLimit(config.RateLimit, config.RateBurst))
	}

	return httpOpts
}

// New creates a new AAP client bound to the token of config.
func New(config *aap.Config) (*Client, error) {
	if config == nil {
		return nil, aap.ErrConfigRequired
	}

	if strings.TrimSpace(config.BaseURL) == "" {
		return nil, aap.ErrBaseURLRequired
	}

	if strings.TrimSpace(config.Token) == "" {
		return nil, aap.ErrTokenRequired
	}

	tokenManager := auth.NewStaticTokenManager(config.Token)

	var logger aap.Logger = aap.NoopLogger{}
	if config.Logger != nil {
		logger = config.Logger
	}

	httpClient := http.NewClient(config.BaseURL, tokenManager, createHTTPClientOptions(config, logger)...)

	apiPrefix := strings.Trim(config.APIPrefix, "/")
	if apiPrefix == "" {
		apiPrefix = constants.ControllerAPIPrefix
	}

	pollInterval := config.PollInterval
	if pollInterval <= 0 {
		pollInterval = constants.DefaultPollInterval
	}

	pollTimeout := config.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = constants.DefaultPollTimeout
	}

	api := &apiContext{
		httpClient:   httpClient,
		logger:       logger,
		apiPrefix:    apiPrefix,
		baseURL:      httpClient.BaseURL(),
		checkSSL:     config.CheckSSL(),
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
	}

	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = constants.DefaultCacheTTL
	}

	client := &Client{api: api}
	client.projects = NewProjectsClient(api)
	client.executionEnvironments = NewExecutionEnvironmentsClient(api)
	client.jobTemplates = NewJobTemplatesClient(api)
	client.jobs = NewJobsClient(api)
	client.useCases = NewUseCasesClient(api, client.projects, client.jobTemplates)
	client.resources = NewResourcesClient(api, config.Cache, cacheTTL, auth.Fingerprint(config.Token))
	client.platform = NewPlatformClient(api)

	return client, nil
}

// BaseURL returns the platform base URL.
func (c *Client) BaseURL() string {
	return c.api.baseURL
}

// APIPrefix returns the controller API prefix in use.
func (c *Client) APIPrefix() string {
	return c.api.apiPrefix
}

// Projects implements aap.Client.Projects.
func (c *Client) Projects() aap.ProjectsClient {
	return c.projects
}

// ExecutionEnvironments implements aap.Client.ExecutionEnvironments.
func (c *Client) ExecutionEnvironments() aap.ExecutionEnvironmentsClient {
	return c.executionEnvironments
}

// JobTemplates implements aap.Client.JobTemplates.
func (c *Client) JobTemplates() aap.JobTemplatesClient {
	return c.jobTemplates
}

// Jobs implements aap.Client.Jobs.
func (c *Client) Jobs() aap.JobsClient {
	return c.jobs
}

// UseCases implements aap.Client.UseCases.
func (c *Client) UseCases() aap.UseCasesClient {
	return c.useCases
}

// Resources implements aap.Client.Resources.
func (c *Client) Resources() aap.ResourcesClient {
	return c.resources
}

// Platform implements aap.Client.Platform.
func (c *Client) Platform() aap.PlatformClient {
	return c.platform
}

var _ aap.Client = (*Client)(nil)
