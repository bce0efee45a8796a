package commands

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewResourcesCommand creates the resources command group.
func NewResourcesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resources",
		Aliases: []string{"resource"},
		Short:   "List controller resources",
		Long:    "List id and name of any controller resource, e.g. inventories or credentials",
	}

	cmd.AddCommand(newResourcesListCommand())

	return cmd
}

func newResourcesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list RESOURCE",
		Short:   "List a resource collection",
		Long:    "List every item of a controller collection. Results are cached by the configured cache backend",
		Example: "  aap resources list inventories\n  aap resources list credentials --output json",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, release, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			items, err := client.Resources().List(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return renderOutput(cmd.OutOrStdout(), items, func(table *tablewriter.Table) {
				table.Header("ID", "Name")

				for _, item := range items {
					_ = table.Append(idOrNA(item.ID), item.Name)
				}
			})
		},
	}
}
