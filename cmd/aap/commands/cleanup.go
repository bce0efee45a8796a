package commands

import (
	"fmt"

	"github.com/fivetwenty-io/aap-client/internal/constants"
	"github.com/fivetwenty-io/aap-client/pkg/aap"
	"github.com/spf13/cobra"
)

// NewCleanupCommand creates the cleanup command.
func NewCleanupCommand() *cobra.Command {
	var projectID, eeID, templateID int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete provisioned resources",
		Long: `Delete a job template, execution environment and project in that order.

A failed delete does not stop the others. Every failure is reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &aap.CleanUp{}

			if projectID != 0 {
				req.Project = &aap.ResourceRef{ID: projectID}
			}

			if eeID != 0 {
				req.ExecutionEnvironment = &aap.ResourceRef{ID: eeID}
			}

			if templateID != 0 {
				req.Template = &aap.ResourceRef{ID: templateID}
			}

			if req.Project == nil && req.ExecutionEnvironment == nil && req.Template == nil {
				return constants.ErrNothingToCleanUp
			}

			client, release, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			err = client.CleanUp(cmd.Context(), req)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cleanup complete")

			return nil
		},
	}

	cmd.Flags().IntVar(&projectID, "project-id", 0, "project to delete")
	cmd.Flags().IntVar(&eeID, "ee-id", 0, "execution environment to delete")
	cmd.Flags().IntVar(&templateID, "template-id", 0, "job template to delete")

	return cmd
}
