package commands

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewPingCommand creates the ping command.
func NewPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the platform version",
		Long:  "Ping the platform gateway and report the version and controller API prefix",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, release, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			info, err := client.Platform().Ping(cmd.Context())
			if err != nil {
				return err
			}

			return renderOutput(cmd.OutOrStdout(), info, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Version", valueOrNA(info.Version))
				_ = table.Append("Gateway", strconv.FormatBool(info.Gateway))
				_ = table.Append("API Prefix", info.APIPrefix)
			})
		},
	}
}

// NewSubscriptionCommand creates the subscription command.
func NewSubscriptionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "subscription",
		Aliases: []string{"license"},
		Short:   "Check the subscription",
		Long:    "Report whether the controller has a valid and compliant subscription",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, release, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			subscription, err := client.Platform().Subscription(cmd.Context())
			if err != nil {
				return err
			}

			return renderOutput(cmd.OutOrStdout(), subscription, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Status", subscription.Status)
				_ = table.Append("Name", valueOrNA(subscription.Name))
				_ = table.Append("Valid", strconv.FormatBool(subscription.IsValid))
				_ = table.Append("Compliant", strconv.FormatBool(subscription.IsCompliant))
				_ = table.Append("Version", valueOrNA(subscription.Version))
			})
		},
	}
}
