package commands

import (
	"fmt"

	"github.com/fivetwenty-io/aap-client/pkg/aap"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewExecutionEnvironmentsCommand creates the execution environments command group.
func NewExecutionEnvironmentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ees",
		Aliases: []string{"ee", "execution-environments"},
		Short:   "Manage execution environments",
		Long:    "Create, inspect and delete execution environment image definitions",
	}

	cmd.AddCommand(newExecutionEnvironmentsCreateCommand())
	cmd.AddCommand(newExecutionEnvironmentsGetCommand())
	cmd.AddCommand(newExecutionEnvironmentsDeleteCommand())

	return cmd
}

func newExecutionEnvironmentsCreateCommand() *cobra.Command {
	var (
		env           aap.ExecutionEnvironment
		pull          string
		deleteIfExist bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an execution environment",
		Long:  "Create an execution environment from a container image",
		RunE: func(cmd *cobra.Command, args []string) error {
			env.Pull = aap.PullPolicy(pull)

			err := env.Pull.Validate()
			if err != nil {
				return err
			}

			client, release, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			created, err := client.ExecutionEnvironments().Create(cmd.Context(), &env, deleteIfExist)
			if err != nil {
				return err
			}

			return renderExecutionEnvironment(cmd, created)
		},
	}

	cmd.Flags().StringVar(&env.EnvironmentName, "name", "", "execution environment name")
	cmd.Flags().StringVar(&env.EnvironmentDescription, "description", "", "description")
	cmd.Flags().IntVar(&env.Organization.ID, organizationIDFlag, 0, "organization id")
	cmd.Flags().StringVar(&env.Image, "image", "", "container image reference")
	cmd.Flags().StringVar(&pull, "pull", string(aap.PullMissing), "pull policy (always, missing, never)")
	cmd.Flags().BoolVar(&deleteIfExist, deleteIfExistFlag, false, "delete an environment with the same name first")

	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func newExecutionEnvironmentsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get EE_ID",
		Short: "Get execution environment details",
		Long:  "Display the details of a single execution environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("execution environment", args[0])
			if err != nil {
				return err
			}

			client, release, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			env, err := client.ExecutionEnvironments().Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			return renderExecutionEnvironment(cmd, env)
		},
	}
}

func newExecutionEnvironmentsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete EE_ID",
		Short: "Delete an execution environment",
		Long:  "Delete an execution environment by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("execution environment", args[0])
			if err != nil {
				return err
			}

			client, release, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			err = client.ExecutionEnvironments().Delete(cmd.Context(), id)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Execution environment %d deleted\n", id)

			return nil
		},
	}
}

func renderExecutionEnvironment(cmd *cobra.Command, env *aap.ExecutionEnvironment) error {
	return renderOutput(cmd.OutOrStdout(), env, func(table *tablewriter.Table) {
		table.Header("Property", "Value")
		_ = table.Append("ID", idOrNA(env.ID))
		_ = table.Append("Name", env.EnvironmentName)
		_ = table.Append("Description", valueOrNA(env.EnvironmentDescription))
		_ = table.Append("Organization", idOrNA(env.Organization.ID))
		_ = table.Append("Image", valueOrNA(env.Image))
		_ = table.Append("Pull", valueOrNA(string(env.Pull)))
		_ = table.Append("URL", valueOrNA(env.URL))
	})
}
