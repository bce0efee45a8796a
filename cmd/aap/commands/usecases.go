package commands

import (
	"strings"

	"github.com/fivetwenty-io/aap-client/internal/constants"
	"github.com/fivetwenty-io/aap-client/pkg/aap"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewUseCasesCommand creates the use cases command group.
func NewUseCasesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "usecases",
		Aliases: []string{"usecase", "uc"},
		Short:   "Apply use case definitions",
		Long:    "Create the projects and job templates described by a use case file",
	}

	cmd.AddCommand(newUseCasesApplyCommand())

	return cmd
}

func newUseCasesApplyCommand() *cobra.Command {
	var (
		file               string
		organization       aap.Organization
		scmType            string
		githubCredentialID int
		gitlabCredentialID int
		deleteIfExist      bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a use case file",
		Long: `Create one project per use case and the job templates it ships.

Existing projects and templates are reused unless --delete-if-exist is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return constants.ErrUseCaseFileRequired
			}

			if organization.ID == 0 {
				return constants.ErrOrganizationRequired
			}

			useCases, err := aap.LoadUseCases(file)
			if err != nil {
				return err
			}

			req := &aap.UseCaseRequest{
				Organization:   organization,
				SCMType:        aap.SCMType(scmType),
				SCMCredentials: map[aap.SCMType]*aap.Credential{},
				UseCases:       useCases,
				DeleteIfExist:  deleteIfExist,
			}

			if githubCredentialID != 0 {
				req.SCMCredentials[aap.SCMTypeGithub] = &aap.Credential{ID: githubCredentialID}
			}

			if gitlabCredentialID != 0 {
				req.SCMCredentials[aap.SCMTypeGitlab] = &aap.Credential{ID: gitlabCredentialID}
			}

			client, release, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			result, err := client.UseCases().Apply(cmd.Context(), req)
			if err != nil {
				return err
			}

			return renderUseCaseResult(cmd, result)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "use case definition file")
	cmd.Flags().IntVar(&organization.ID, organizationIDFlag, 0, "organization id")
	cmd.Flags().StringVar(&organization.Name, "organization-name", "", "organization name")
	cmd.Flags().StringVar(&scmType, "scm-type", string(aap.SCMTypeGithub), "SCM host (Github, Gitlab)")
	cmd.Flags().IntVar(&githubCredentialID, "github-credential-id", 0, "credential for Github repositories")
	cmd.Flags().IntVar(&gitlabCredentialID, "gitlab-credential-id", 0, "credential for Gitlab repositories")
	cmd.Flags().BoolVar(&deleteIfExist, deleteIfExistFlag, false, "recreate projects and templates that already exist")

	return cmd
}

func renderUseCaseResult(cmd *cobra.Command, result *aap.UseCaseResult) error {
	return renderOutput(cmd.OutOrStdout(), result, func(table *tablewriter.Table) {
		table.Header("Kind", "ID", "Name", "Details")

		for _, project := range result.Projects {
			_ = table.Append("project", idOrNA(project.ID), project.ProjectName, valueOrNA(project.ScmURL))
		}

		for _, template := range result.Templates {
			details := []string{valueOrNA(template.Playbook)}
			if template.Project.ProjectName != "" {
				details = append(details, "project "+template.Project.ProjectName)
			}

			_ = table.Append("template", idOrNA(template.ID), template.TemplateName, strings.Join(details, ", "))
		}
	})
}
