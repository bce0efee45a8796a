package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as platform probes.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. Requests are not retried unless RetryMax is configured.
const (
	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Polling of asynchronous AAP resources.
const (
	// DefaultPollInterval is the fixed delay between status checks.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultPollTimeout bounds how long a project sync or job run is awaited.
	DefaultPollTimeout = 30 * time.Minute
)

// Cache defaults.
const (
	// DefaultCacheSize is the maximum number of entries kept in memory.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is how long autocomplete results stay valid.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultNATSBucket is the JetStream KV bucket used for cached lookups.
	DefaultNATSBucket = "aap_autocomplete"
)

// Logging.
const (
	// PluginID tags every log line emitted by the client.
	PluginID = "backstage-rhaap"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "aap-client-go"
)

// API path prefixes.
const (
	// ControllerAPIPrefix is the controller API behind the platform gateway (AAP 2.5+).
	ControllerAPIPrefix = "api/controller/v2"

	// LegacyAPIPrefix is the controller API on installations without a gateway.
	LegacyAPIPrefix = "api/v2"

	// GatewayPingPath answers with the platform version on AAP 2.5+.
	GatewayPingPath = "api/gateway/v1/ping/"

	// GatewayMinimumVersion is the first platform version that ships the gateway.
	GatewayMinimumVersion = "2.5"
)

// Controller resource endpoints, relative to the API prefix.
const (
	ProjectsEndpoint              = "projects"
	ExecutionEnvironmentsEndpoint = "execution_environments"
	JobTemplatesEndpoint          = "job_templates"
	JobsEndpoint                  = "jobs"
	ConfigEndpoint                = "config"
)

// Portal paths used to build links to created resources.
const (
	ProjectDetailsPath              = "/execution/projects/%d/details"
	ExecutionEnvironmentDetailsPath = "/execution/infrastructure/execution-environments/%d/details"
	JobTemplateDetailsPath          = "/execution/templates/job-template/%d/details"
	JobOutputPath                   = "/execution/jobs/playbook/%d/output"
)

// Project and job statuses reported by the controller.
const (
	StatusNew        = "new"
	StatusPending    = "pending"
	StatusWaiting    = "waiting"
	StatusRunning    = "running"
	StatusSuccessful = "successful"
	StatusFailed     = "failed"
	StatusError      = "error"
	StatusCanceled   = "canceled"
)

// Extra variables injected into every job template.
const (
	ExtraVarValidateCerts = "aap_validate_certs"
	ExtraVarHostname      = "aap_hostname"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// TimestampFormat is used when rendering timestamps in tables.
	TimestampFormat = "2006-01-02 15:04:05"
)
