package constants

import "errors"

// Configuration errors.
var (
	ErrNoBaseURLConfigured = errors.New("no AAP base URL configured, use 'aap config set base_url <url>' or --base-url")
	ErrNoTokenConfigured   = errors.New("no AAP token configured, use 'aap config set-token' or --token")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
)

// Validation errors.
var (
	ErrOrganizationRequired = errors.New("--organization-id flag is required")
	ErrNothingToCleanUp     = errors.New("at least one of --project-id, --template-id or --ee-id is required")
	ErrUseCaseFileRequired  = errors.New("--file flag is required")
	ErrInvalidOutputFormat  = errors.New("invalid output format")
)
