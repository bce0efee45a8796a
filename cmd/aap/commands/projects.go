package commands

import (
	"fmt"

	"github.com/fivetwenty-io/aap-client/pkg/aap"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewProjectsCommand creates the projects command group.
func NewProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "proj"},
		Short:   "Manage projects",
		Long:    "Create, inspect, find and delete SCM backed AAP projects",
	}

	cmd.AddCommand(newProjectsCreateCommand())
	cmd.AddCommand(newProjectsGetCommand())
	cmd.AddCommand(newProjectsFindCommand())
	cmd.AddCommand(newProjectsDeleteCommand())

	return cmd
}

func newProjectsCreateCommand() *cobra.Command {
	var (
		project        aap.Project
		credentialID   int
		updateOnLaunch bool
		deleteIfExist  bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Long:  "Create a project and wait for its initial SCM sync to finish",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, release, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			if credentialID != 0 {
				project.Credentials = &aap.Credential{ID: credentialID}
			}

			if cmd.Flags().Changed("update-on-launch") {
				project.ScmUpdateOnLaunch = &updateOnLaunch
			}

			created, err := client.Projects().Create(cmd.Context(), &project, deleteIfExist)
			if err != nil {
				return err
			}

			return renderProject(cmd, created)
		},
	}

	cmd.Flags().StringVar(&project.ProjectName, "name", "", "project name")
	cmd.Flags().StringVar(&project.ProjectDescription, "description", "", "project description")
	cmd.Flags().IntVar(&project.Organization.ID, organizationIDFlag, 0, "organization id")
	cmd.Flags().StringVar(&project.ScmURL, "scm-url", "", "git repository URL")
	cmd.Flags().StringVar(&project.ScmBranch, "scm-branch", "", "git branch, tag or commit")
	cmd.Flags().IntVar(&credentialID, "credential-id", 0, "SCM credential id")
	cmd.Flags().BoolVar(&updateOnLaunch, "update-on-launch", false, "sync the project before every job")
	cmd.Flags().BoolVar(&deleteIfExist, deleteIfExistFlag, false, "delete a project with the same name first")

	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired(organizationIDFlag)
	_ = cmd.MarkFlagRequired("scm-url")

	return cmd
}

func newProjectsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get PROJECT_ID",
		Short: "Get project details",
		Long:  "Display the details of a single project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("project", args[0])
			if err != nil {
				return err
			}

			client, release, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			project, err := client.Projects().Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			return renderProject(cmd, project)
		},
	}
}

func newProjectsFindCommand() *cobra.Command {
	var organizationID int

	cmd := &cobra.Command{
		Use:   "find NAME",
		Short: "Find projects by name",
		Long:  "List the projects with exactly the given name in an organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, release, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			projects, err := client.Projects().FindByName(cmd.Context(), args[0], organizationID)
			if err != nil {
				return err
			}

			return renderOutput(cmd.OutOrStdout(), projects, func(table *tablewriter.Table) {
				table.Header("ID", "Name", "Organization", "SCM URL", "Status")

				for _, project := range projects {
					_ = table.Append(
						idOrNA(project.ID),
						project.ProjectName,
						valueOrNA(project.Organization.Name),
						valueOrNA(project.ScmURL),
						valueOrNA(project.Status),
					)
				}
			})
		},
	}

	cmd.Flags().IntVar(&organizationID, organizationIDFlag, 0, "organization id")

	return cmd
}

func newProjectsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete PROJECT_ID",
		Short: "Delete a project",
		Long:  "Delete a project by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("project", args[0])
			if err != nil {
				return err
			}

			client, release, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			err = client.Projects().Delete(cmd.Context(), id)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Project %d deleted\n", id)

			return nil
		},
	}
}

func renderProject(cmd *cobra.Command, project *aap.Project) error {
	return renderOutput(cmd.OutOrStdout(), project, func(table *tablewriter.Table) {
		table.Header("Property", "Value")
		_ = table.Append("ID", idOrNA(project.ID))
		_ = table.Append("Name", project.ProjectName)
		_ = table.Append("Description", valueOrNA(project.ProjectDescription))
		_ = table.Append("Organization", valueOrNA(project.Organization.Name))
		_ = table.Append("SCM URL", valueOrNA(project.ScmURL))
		_ = table.Append("SCM Branch", valueOrNA(project.ScmBranch))
		_ = table.Append("Status", valueOrNA(project.Status))
		_ = table.Append("URL", valueOrNA(project.URL))
	})
}
