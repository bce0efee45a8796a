package aap

import (
	"fmt"
)

// ListResponse represents a paginated controller list response.
type ListResponse[T any] struct {
	Count    int     `json:"count"    yaml:"count"`
	Next     *string `json:"next"     yaml:"next"`
	Previous *string `json:"previous" yaml:"previous"`
	Results  []T     `json:"results"  yaml:"results"`
}

// NextPage returns the link to the next page, or "" when exhausted.
func (l *ListResponse[T]) NextPage() string {
	if l.Next == nil {
		return ""
	}

	return *l.Next
}

// Organization is referenced by other resources and never created by the client.
type Organization struct {
	ID   int    `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Inventory is referenced by job templates and launches.
type Inventory struct {
	ID   int    `json:"id"             yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// CredentialTypeSummary is the credential type as embedded in summary_fields.
type CredentialTypeSummary struct {
	ID   int    `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// CredentialSummaryFields holds the related objects AAP embeds in a credential.
type CredentialSummaryFields struct {
	CredentialType CredentialTypeSummary `json:"credential_type" yaml:"credential_type"`
}

// Credential represents an AAP credential.
type Credential struct {
	ID             int                     `json:"id"                       yaml:"id"`
	Name           string                  `json:"name"                     yaml:"name"`
	Kind           string                  `json:"kind,omitempty"           yaml:"kind,omitempty"`
	CredentialType int                     `json:"credential_type"          yaml:"credential_type"`
	Inputs         map[string]interface{}  `json:"inputs,omitempty"         yaml:"inputs,omitempty"`
	SummaryFields  CredentialSummaryFields `json:"summary_fields,omitempty" yaml:"summary_fields,omitempty"`
}

// TypeName returns a human readable name of the credential type.
func (c *Credential) TypeName() string {
	if c.SummaryFields.CredentialType.Name != "" {
		return c.SummaryFields.CredentialType.Name
	}

	return fmt.Sprintf("credential type %d", c.CredentialType)
}

// Project represents an SCM backed AAP project.
type Project struct {
	ID                 int          `json:"id,omitempty"                 yaml:"id,omitempty"`
	ProjectName        string       `json:"projectName"                  yaml:"projectName"`
	ProjectDescription string       `json:"projectDescription,omitempty" yaml:"projectDescription,omitempty"`
	Organization       Organization `json:"organization"                 yaml:"organization"`
	Credentials        *Credential  `json:"credentials,omitempty"        yaml:"credentials,omitempty"`
	ScmURL             string       `json:"scmUrl"                       yaml:"scmUrl"`
	ScmBranch          string       `json:"scmBranch,omitempty"          yaml:"scmBranch,omitempty"`
	ScmUpdateOnLaunch  *bool        `json:"scmUpdateOnLaunch,omitempty"  yaml:"scmUpdateOnLaunch,omitempty"`
	Status             string       `json:"status,omitempty"             yaml:"status,omitempty"`
	URL                string       `json:"url,omitempty"                yaml:"url,omitempty"`
}

// PullPolicy controls when an execution environment image is pulled.
type PullPolicy string

// Supported pull policies.
const (
	PullAlways  PullPolicy = "always"
	PullMissing PullPolicy = "missing"
	PullNever   PullPolicy = "never"
)

// Validate checks the pull policy against the values AAP accepts.
func (p PullPolicy) Validate() error {
	switch p {
	case PullAlways, PullMissing, PullNever:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPullPolicy, p)
	}
}

// ExecutionEnvironment is a container image definition used to run playbooks.
type ExecutionEnvironment struct {
	ID                     int          `json:"id,omitempty"                     yaml:"id,omitempty"`
	EnvironmentName        string       `json:"environmentName"                  yaml:"environmentName"`
	EnvironmentDescription string       `json:"environmentDescription,omitempty" yaml:"environmentDescription,omitempty"`
	Organization           Organization `json:"organization"                     yaml:"organization"`
	Image                  string       `json:"image"                            yaml:"image"`
	Pull                   PullPolicy   `json:"pull"                             yaml:"pull"`
	URL                    string       `json:"url,omitempty"                    yaml:"url,omitempty"`
}

// JobTemplate is a reusable definition of a playbook run.
type JobTemplate struct {
	ID                   int                    `json:"id,omitempty"                   yaml:"id,omitempty"`
	TemplateName         string                 `json:"templateName"                   yaml:"templateName"`
	TemplateDescription  string                 `json:"templateDescription,omitempty"  yaml:"templateDescription,omitempty"`
	Project              Project                `json:"project"                        yaml:"project"`
	Organization         *Organization          `json:"organization,omitempty"         yaml:"organization,omitempty"`
	Credentials          *Credential            `json:"credentials,omitempty"          yaml:"credentials,omitempty"`
	JobInventory         Inventory              `json:"jobInventory"                   yaml:"jobInventory"`
	Playbook             string                 `json:"playbook"                       yaml:"playbook"`
	ExecutionEnvironment *ExecutionEnvironment  `json:"executionEnvironment,omitempty" yaml:"executionEnvironment,omitempty"`
	ExtraVariables       map[string]interface{} `json:"extraVariables,omitempty"       yaml:"extraVariables,omitempty"`
	URL                  string                 `json:"url,omitempty"                  yaml:"url,omitempty"`
}

// OrganizationID returns the template organization, falling back to the
// organization of its project.
func (t *JobTemplate) OrganizationID() int {
	if t.Organization != nil && t.Organization.ID != 0 {
		return t.Organization.ID
	}

	return t.Project.Organization.ID
}

// JobEventData is the free-form event_data payload of a job event.
type JobEventData map[string]interface{}

// ResultMessage returns event_data.res.msg when the event carries one.
func (d JobEventData) ResultMessage() (string, bool) {
	res, ok := d["res"].(map[string]interface{})
	if !ok {
		return "", false
	}

	msg, ok := res["msg"].(string)
	if !ok || msg == "" {
		return "", false
	}

	return msg, true
}

// JobEvent is a single entry of a job's event stream.
type JobEvent struct {
	ID        int          `json:"id"                   yaml:"id"`
	Counter   int          `json:"counter"              yaml:"counter"`
	Event     string       `json:"event"                yaml:"event"`
	UUID      string       `json:"uuid,omitempty"       yaml:"uuid,omitempty"`
	Created   string       `json:"created,omitempty"    yaml:"created,omitempty"`
	Failed    bool         `json:"failed"               yaml:"failed"`
	Stdout    string       `json:"stdout,omitempty"     yaml:"stdout,omitempty"`
	Task      string       `json:"task,omitempty"       yaml:"task,omitempty"`
	Host      string       `json:"host_name,omitempty"  yaml:"host_name,omitempty"`
	EventData JobEventData `json:"event_data,omitempty" yaml:"event_data,omitempty"`
}

// Job is the result of a launched job template.
type Job struct {
	ID     int        `json:"id"               yaml:"id"`
	Status string     `json:"status"           yaml:"status"`
	Events []JobEvent `json:"events,omitempty" yaml:"events,omitempty"`
	URL    string     `json:"url"              yaml:"url"`
}

// ResourceRef identifies a remote resource by id.
type ResourceRef struct {
	ID int `json:"id" yaml:"id"`
}

// CleanUp lists resources to delete. Each present entry is deleted independently.
type CleanUp struct {
	Project              *ResourceRef `json:"project,omitempty"              yaml:"project,omitempty"`
	ExecutionEnvironment *ResourceRef `json:"executionEnvironment,omitempty" yaml:"executionEnvironment,omitempty"`
	Template             *ResourceRef `json:"template,omitempty"             yaml:"template,omitempty"`
}

// ResourceItem is a single autocomplete entry.
type ResourceItem struct {
	ID   int    `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// PingInfo describes the platform answering at the base URL.
type PingInfo struct {
	Version   string `json:"version"    yaml:"version"`
	Gateway   bool   `json:"gateway"    yaml:"gateway"`
	APIPrefix string `json:"api_prefix" yaml:"api_prefix"`
}

// Subscription summarizes the license state of the controller.
type Subscription struct {
	Status      string `json:"status"                 yaml:"status"`
	Name        string `json:"name,omitempty"         yaml:"name,omitempty"`
	IsValid     bool   `json:"isValid"                yaml:"isValid"`
	IsCompliant bool   `json:"isCompliant"            yaml:"isCompliant"`
	Version     string `json:"version,omitempty"      yaml:"version,omitempty"`
}
