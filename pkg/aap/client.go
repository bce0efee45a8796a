package aap

import (
	"context"
	"time"
)

// ProjectsClient manages controller projects.
type ProjectsClient interface {
	Create(ctx context.Context, project *Project, deleteIfExist bool) (*Project, error)
	Get(ctx context.Context, id int) (*Project, error)
	FindByName(ctx context.Context, name string, organizationID int) ([]Project, error)
	Delete(ctx context.Context, id int) error
}

// ExecutionEnvironmentsClient manages execution environments.
type ExecutionEnvironmentsClient interface {
	Create(ctx context.Context, env *ExecutionEnvironment, deleteIfExist bool) (*ExecutionEnvironment, error)
	Get(ctx context.Context, id int) (*ExecutionEnvironment, error)
	FindByName(ctx context.Context, name string) ([]ExecutionEnvironment, error)
	Delete(ctx context.Context, id int) error
}

// JobTemplatesClient manages job templates.
type JobTemplatesClient interface {
	Create(ctx context.Context, template *JobTemplate, deleteIfExist bool) (*JobTemplate, error)
	Get(ctx context.Context, id int) (*JobTemplate, error)
	FindByName(ctx context.Context, name string, organizationID int) ([]JobTemplate, error)
	Delete(ctx context.Context, id int) error
}

// JobsClient launches job templates and tracks the resulting jobs.
type JobsClient interface {
	// Launch starts the template and blocks until the job is terminal.
	Launch(ctx context.Context, launch *LaunchJobTemplate) (*Job, error)
	Get(ctx context.Context, id int) (*Job, error)
	Events(ctx context.Context, id int) ([]JobEvent, error)
	PollUntilComplete(ctx context.Context, id int) (*Job, error)
}

// UseCasesClient materializes showcase use cases into projects and job templates.
type UseCasesClient interface {
	FindTemplatesByName(ctx context.Context, names []string, organizationID int) ([]JobTemplate, error)
	Apply(ctx context.Context, req *UseCaseRequest) (*UseCaseResult, error)
}

// ResourcesClient lists arbitrary controller resources for autocompletion.
type ResourcesClient interface {
	List(ctx context.Context, resource string) ([]ResourceItem, error)
}

// PlatformClient probes the platform version and subscription.
type PlatformClient interface {
	Ping(ctx context.Context) (*PingInfo, error)
	Subscription(ctx context.Context) (*Subscription, error)
}

// ResourceClients provides access to all resource-specific clients.
type ResourceClients interface {
	Projects() ProjectsClient
	ExecutionEnvironments() ExecutionEnvironmentsClient
	JobTemplates() JobTemplatesClient
	Jobs() JobsClient
	UseCases() UseCasesClient
	Resources() ResourcesClient
	Platform() PlatformClient
}

// Client is the AAP orchestration client.
type Client interface {
	ResourceClients

	// CleanUp deletes every resource present in the request. A failed
	// delete does not stop the others; all failures are returned joined.
	CleanUp(ctx context.Context, req *CleanUp) error
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building an aap.Client.
//
// A client is bound to a single token. Callers acting for different users
// build one client per token; clients share no mutable state other than an
// optional Cache.
//
// # TLS
//
// Certificate verification is on unless SkipTLSVerify is set. The same flag
// is forwarded to job templates as the aap_validate_certs extra variable.
//
// # Polling
//
// Project syncs and jobs are polled every PollInterval until they reach a
// terminal status. PollTimeout bounds the wait; use the context for
// per-call deadlines.
type Config struct {
	// BaseURL of the platform, e.g. "https://aap.example.com".
	BaseURL string
	// Token is sent as a Bearer token on every request.
	Token string
	// SkipTLSVerify disables certificate verification. Logged at warn level.
	SkipTLSVerify bool
	// APIPrefix overrides the controller API prefix (default api/controller/v2).
	APIPrefix string
	// DetectAPIPrefix pings the gateway on construction to pick the prefix.
	DetectAPIPrefix bool

	// HTTPTimeout is the per-request timeout.
	HTTPTimeout time.Duration
	// RetryMax enables retries of transient failures (>=500, 429, connection
	// errors). Zero, the default, disables retries.
	RetryMax int
	// RetryWaitMin is the minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax is the maximum backoff between retries.
	RetryWaitMax time.Duration
	// RateLimit caps requests per second. Zero disables limiting.
	RateLimit float64
	// RateBurst is the burst allowed by RateLimit.
	RateBurst int

	// PollInterval is the delay between status checks.
	PollInterval time.Duration
	// PollTimeout bounds a single wait for a terminal status.
	PollTimeout time.Duration

	// Cache stores autocomplete results. Nil disables caching.
	Cache Cache
	// CacheTTL is how long cached results are served.
	CacheTTL time.Duration

	// Debug enables request/response body logging.
	Debug bool
	// Logger receives structured log lines. Nil discards them.
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string
}

// CheckSSL reports whether certificates are verified.
func (c *Config) CheckSSL() bool {
	return !c.SkipTLSVerify
}
