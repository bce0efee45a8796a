package aap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SCMType is the source control host of a use case repository.
type SCMType string

// Supported SCM types.
const (
	SCMTypeGithub SCMType = "Github"
	SCMTypeGitlab SCMType = "Gitlab"
)

// Validate checks the SCM type.
func (s SCMType) Validate() error {
	switch s {
	case SCMTypeGithub, SCMTypeGitlab:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedSCMType, s)
	}
}

// TemplateDefinition describes a job template shipped with a use case.
type TemplateDefinition struct {
	Name                 string                 `json:"name"                           yaml:"name"`
	Description          string                 `json:"description,omitempty"          yaml:"description,omitempty"`
	Playbook             string                 `json:"playbook"                       yaml:"playbook"`
	Inventory            Inventory              `json:"inventory"                      yaml:"inventory"`
	ExecutionEnvironment *ExecutionEnvironment  `json:"executionEnvironment,omitempty" yaml:"executionEnvironment,omitempty"`
	ExtraVariables       map[string]interface{} `json:"extraVariables,omitempty"       yaml:"extraVariables,omitempty"`
}

// UseCase is a named starter scenario: one SCM repository and the job
// templates that run its playbooks.
type UseCase struct {
	Name        string               `json:"name"                  yaml:"name"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string               `json:"url"                   yaml:"url"`
	Version     string               `json:"version,omitempty"     yaml:"version,omitempty"`
	Templates   []TemplateDefinition `json:"templates"             yaml:"templates"`
}

// UseCaseRequest asks for the resources of a set of use cases.
type UseCaseRequest struct {
	Organization   Organization            `json:"organization"             yaml:"organization"`
	SCMType        SCMType                 `json:"scmType"                  yaml:"scmType"`
	SCMCredentials map[SCMType]*Credential `json:"scmCredentials,omitempty" yaml:"scmCredentials,omitempty"`
	UseCases       []UseCase               `json:"useCases"                 yaml:"useCases"`
	DeleteIfExist  bool                    `json:"deleteIfExist"            yaml:"deleteIfExist"`
}

// TemplateNames returns the names of every template of every use case.
func (r *UseCaseRequest) TemplateNames() []string {
	var names []string

	for _, useCase := range r.UseCases {
		for _, def := range useCase.Templates {
			names = append(names, def.Name)
		}
	}

	return names
}

// UseCaseResult lists the projects and job templates backing the use cases.
type UseCaseResult struct {
	Projects  []Project     `json:"projects"  yaml:"projects"`
	Templates []JobTemplate `json:"templates" yaml:"templates"`
}

// useCaseFile is the on-disk layout of a use case definition file.
type useCaseFile struct {
	UseCases []UseCase `yaml:"useCases"`
}

// Static errors for err113 compliance.
var (
	ErrNoUseCases          = errors.New("no use cases defined")
	ErrUseCaseNameRequired = errors.New("use case name is required")
	ErrUseCaseURLRequired  = errors.New("use case url is required")
)

// ParseUseCases decodes and validates a YAML use case definition.
func ParseUseCases(data []byte) ([]UseCase, error) {
	var file useCaseFile

	err := yaml.Unmarshal(data, &file)
	if err != nil {
		return nil, fmt.Errorf("parsing use cases: %w", err)
	}

	if len(file.UseCases) == 0 {
		return nil, ErrNoUseCases
	}

	for i, useCase := range file.UseCases {
		if useCase.Name == "" {
			return nil, fmt.Errorf("use case %d: %w", i, ErrUseCaseNameRequired)
		}

		if useCase.URL == "" {
			return nil, fmt.Errorf("use case %s: %w", useCase.Name, ErrUseCaseURLRequired)
		}
	}

	return file.UseCases, nil
}

// LoadUseCases reads a YAML use case definition file.
func LoadUseCases(path string) ([]UseCase, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading use cases file: %w", err)
	}

	return ParseUseCases(data)
}
