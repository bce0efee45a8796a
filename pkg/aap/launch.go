package aap

import (
	"fmt"
	"sort"
	"strings"
)

// LaunchJobTemplate describes a launch of an existing job template.
// Optional fields are pointers: a non-nil pointer is sent even when it holds
// a zero value such as 0 or false.
type LaunchJobTemplate struct {
	Template             JobTemplate            `json:"template"                       yaml:"template"`
	Inventory            *Inventory             `json:"inventory,omitempty"            yaml:"inventory,omitempty"`
	Credentials          []Credential           `json:"credentials,omitempty"          yaml:"credentials,omitempty"`
	ExtraVariables       map[string]interface{} `json:"extraVariables,omitempty"       yaml:"extraVariables,omitempty"`
	Limit                *string                `json:"limit,omitempty"                yaml:"limit,omitempty"`
	JobType              *string                `json:"jobType,omitempty"              yaml:"jobType,omitempty"`
	ExecutionEnvironment *ExecutionEnvironment  `json:"executionEnvironment,omitempty" yaml:"executionEnvironment,omitempty"`
	Verbosity            *int                   `json:"verbosity,omitempty"            yaml:"verbosity,omitempty"`
	Forks                *int                   `json:"forks,omitempty"                yaml:"forks,omitempty"`
	JobSliceCount        *int                   `json:"jobSliceCount,omitempty"        yaml:"jobSliceCount,omitempty"`
	Timeout              *int                   `json:"timeout,omitempty"              yaml:"timeout,omitempty"`
	DiffMode             *bool                  `json:"diffMode,omitempty"             yaml:"diffMode,omitempty"`
	JobTags              *string                `json:"jobTags,omitempty"              yaml:"jobTags,omitempty"`
	SkipTags             *string                `json:"skipTags,omitempty"             yaml:"skipTags,omitempty"`
}

// LaunchRequest is the body posted to job_templates/:id/launch/.
type LaunchRequest struct {
	Inventory            *int                   `json:"inventory,omitempty"`
	Credentials          []int                  `json:"credentials,omitempty"`
	ExtraVars            map[string]interface{} `json:"extra_vars,omitempty"`
	Limit                *string                `json:"limit,omitempty"`
	JobType              *string                `json:"job_type,omitempty"`
	ExecutionEnvironment *int                   `json:"execution_environment,omitempty"`
	Verbosity            *int                   `json:"verbosity,omitempty"`
	Forks                *int                   `json:"forks,omitempty"`
	JobSliceCount        *int                   `json:"job_slice_count,omitempty"`
	Timeout              *int                   `json:"timeout,omitempty"`
	DiffMode             *bool                  `json:"diff_mode,omitempty"`
	JobTags              *string                `json:"job_tags,omitempty"`
	SkipTags             *string                `json:"skip_tags,omitempty"`
}

// ValidateCredentials rejects credential sets where two entries share a
// credential type. AAP only allows one credential per type on a launch.
func (l *LaunchJobTemplate) ValidateCredentials() error {
	byType := make(map[int][]Credential)
	order := make([]int, 0, len(l.Credentials))

	for _, cred := range l.Credentials {
		if _, seen := byType[cred.CredentialType]; !seen {
			order = append(order, cred.CredentialType)
		}

		byType[cred.CredentialType] = append(byType[cred.CredentialType], cred)
	}

	var duplicates []string

	for _, credType := range order {
		group := byType[credType]
		if len(group) < 2 {
			continue
		}

		names := make([]string, 0, len(group))
		for _, cred := range group {
			names = append(names, cred.Name)
		}

		sort.Strings(names)
		duplicates = append(duplicates, fmt.Sprintf("%s (%s)", group[0].TypeName(), strings.Join(names, ", ")))
	}

	if len(duplicates) > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateCredentialType, strings.Join(duplicates, "; "))
	}

	return nil
}

// Request builds the launch body, carrying over only the fields that are set.
func (l *LaunchJobTemplate) Request() *LaunchRequest {
	req := &LaunchRequest{
		ExtraVars:     l.ExtraVariables,
		Limit:         l.Limit,
		JobType:       l.JobType,
		Verbosity:     l.Verbosity,
		Forks:         l.Forks,
		JobSliceCount: l.JobSliceCount,
		Timeout:       l.Timeout,
		DiffMode:      l.DiffMode,
		JobTags:       l.JobTags,
		SkipTags:      l.SkipTags,
	}

	if l.Inventory != nil {
		id := l.Inventory.ID
		req.Inventory = &id
	}

	if l.ExecutionEnvironment != nil {
		id := l.ExecutionEnvironment.ID
		req.ExecutionEnvironment = &id
	}

	if len(l.Credentials) > 0 {
		req.Credentials = make([]int, 0, len(l.Credentials))
		for _, cred := range l.Credentials {
			req.Credentials = append(req.Credentials, cred.ID)
		}
	}

	return req
}
