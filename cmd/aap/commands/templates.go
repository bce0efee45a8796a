package commands

import (
	"fmt"

	"github.com/fivetwenty-io/aap-client/pkg/aap"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewTemplatesCommand creates the job templates command group.
func NewTemplatesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"template", "jt"},
		Short:   "Manage job templates",
		Long:    "Create, inspect, find and delete job templates",
	}

	cmd.AddCommand(newTemplatesCreateCommand())
	cmd.AddCommand(newTemplatesGetCommand())
	cmd.AddCommand(newTemplatesFindCommand())
	cmd.AddCommand(newTemplatesDeleteCommand())

	return cmd
}

func newTemplatesCreateCommand() *cobra.Command {
	var (
		template       aap.JobTemplate
		organizationID int
		eeID           int
		credentialID   int
		extraVars      string
		deleteIfExist  bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a job template",
		Long: `Create a job template for a playbook of an existing project.

Extra variables are given as a YAML or JSON mapping. The connection settings
of the CLI are added as aap_hostname and aap_validate_certs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := parseExtraVars(extraVars)
			if err != nil {
				return err
			}

			template.ExtraVariables = vars
			template.Organization = &aap.Organization{ID: organizationID}

			if eeID != 0 {
				template.ExecutionEnvironment = &aap.ExecutionEnvironment{ID: eeID}
			}

			if credentialID != 0 {
				template.Credentials = &aap.Credential{ID: credentialID}
			}

			client, release, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			created, err := client.JobTemplates().Create(cmd.Context(), &template, deleteIfExist)
			if err != nil {
				return err
			}

			return renderJobTemplate(cmd, created)
		},
	}

	cmd.Flags().StringVar(&template.TemplateName, "name", "", "job template name")
	cmd.Flags().StringVar(&template.TemplateDescription, "description", "", "description")
	cmd.Flags().IntVar(&template.Project.ID, "project-id", 0, "project id")
	cmd.Flags().IntVar(&organizationID, organizationIDFlag, 0, "organization id")
	cmd.Flags().IntVar(&template.JobInventory.ID, "inventory-id", 0, "inventory id")
	cmd.Flags().StringVar(&template.Playbook, "playbook", "", "playbook path inside the project")
	cmd.Flags().IntVar(&eeID, "ee-id", 0, "execution environment id")
	cmd.Flags().IntVar(&credentialID, "credential-id", 0, "credential to associate")
	cmd.Flags().StringVar(&extraVars, extraVarsFlag, "", "extra variables as YAML or JSON")
	cmd.Flags().BoolVar(&deleteIfExist, deleteIfExistFlag, false, "delete a template with the same name first")

	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("project-id")
	_ = cmd.MarkFlagRequired(organizationIDFlag)
	_ = cmd.MarkFlagRequired("inventory-id")
	_ = cmd.MarkFlagRequired("playbook")

	return cmd
}

func newTemplatesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get TEMPLATE_ID",
		Short: "Get job template details",
		Long:  "Display the details of a single job template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("job template", args[0])
			if err != nil {
				return err
			}

			client, release, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			template, err := client.JobTemplates().Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			return renderJobTemplate(cmd, template)
		},
	}
}

func newTemplatesFindCommand() *cobra.Command {
	var organizationID int

	cmd := &cobra.Command{
		Use:   "find NAME [NAME...]",
		Short: "Find job templates by name",
		Long:  "List the job templates of an organization whose name is one of the given names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, release, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			templates, err := client.UseCases().FindTemplatesByName(cmd.Context(), args, organizationID)
			if err != nil {
				return err
			}

			return renderOutput(cmd.OutOrStdout(), templates, func(table *tablewriter.Table) {
				table.Header("ID", "Name", "Project", "Inventory", "Playbook")

				for _, template := range templates {
					_ = table.Append(
						idOrNA(template.ID),
						template.TemplateName,
						valueOrNA(template.Project.ProjectName),
						valueOrNA(template.JobInventory.Name),
						valueOrNA(template.Playbook),
					)
				}
			})
		},
	}

	cmd.Flags().IntVar(&organizationID, organizationIDFlag, 0, "organization id")
	_ = cmd.MarkFlagRequired(organizationIDFlag)

	return cmd
}

func newTemplatesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete TEMPLATE_ID",
		Short: "Delete a job template",
		Long:  "Delete a job template by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("job template", args[0])
			if err != nil {
				return err
			}

			client, release, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			err = client.JobTemplates().Delete(cmd.Context(), id)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Job template %d deleted\n", id)

			return nil
		},
	}
}

func renderJobTemplate(cmd *cobra.Command, template *aap.JobTemplate) error {
	return renderOutput(cmd.OutOrStdout(), template, func(table *tablewriter.Table) {
		table.Header("Property", "Value")
		_ = table.Append("ID", idOrNA(template.ID))
		_ = table.Append("Name", template.TemplateName)
		_ = table.Append("Description", valueOrNA(template.TemplateDescription))
		_ = table.Append("Project", idOrNA(template.Project.ID))
		_ = table.Append("Organization", idOrNA(template.OrganizationID()))
		_ = table.Append("Inventory", idOrNA(template.JobInventory.ID))
		_ = table.Append("Playbook", valueOrNA(template.Playbook))

		if template.ExecutionEnvironment != nil {
			_ = table.Append("Execution Environment", idOrNA(template.ExecutionEnvironment.ID))
		}

		if template.Credentials != nil {
			_ = table.Append("Credential", valueOrNA(template.Credentials.Name))
		}

		_ = table.Append("URL", valueOrNA(template.URL))
	})
}
