package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fivetwenty-io/aap-client/cmd/aap/commands"
	"github.com/fivetwenty-io/aap-client/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "aap",
	Short: "Ansible Automation Platform orchestration CLI",
	Long: `A command-line interface for provisioning and running automation on
Red Hat Ansible Automation Platform.

Create projects, execution environments and job templates, launch jobs and
wait for their results, and apply use case definitions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.aap/config.yml)")
	flags.StringP("base-url", "a", "", "AAP base URL")
	flags.StringP("token", "t", "", "AAP API token")
	flags.String("output", constants.FormatTable, "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.Bool("skip-tls-verify", false, "skip TLS certificate verification")
	flags.String("api-prefix", "", "controller API prefix (default api/controller/v2)")
	flags.Bool("detect-api-prefix", false, "ping the gateway to pick the controller API prefix")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-format", "json", "log format (json, console, both)")
	flags.String("cache", "memory", "autocomplete cache backend (memory, nats, none)")
	flags.String("nats-url", "", "NATS server URL for the nats cache backend")
	flags.Duration("poll-interval", constants.DefaultPollInterval, "delay between status checks")
	flags.Duration("poll-timeout", constants.DefaultPollTimeout, "maximum wait for a project sync or job")
	flags.Int("retry-max", 0, "retries of transient failures")
	flags.Float64("rate-limit", 0, "maximum requests per second (0 disables)")

	for key, flag := range map[string]string{
		"config":            "config",
		"base_url":          "base-url",
		"token":             "token",
		"output":            "output",
		"verbose":           "verbose",
		"skip_tls_verify":   "skip-tls-verify",
		"api_prefix":        "api-prefix",
		"detect_api_prefix": "detect-api-prefix",
		"log_level":         "log-level",
		"log_format":        "log-format",
		"cache":             "cache",
		"nats_url":          "nats-url",
		"poll_interval":     "poll-interval",
		"poll_timeout":      "poll-timeout",
		"retry_max":         "retry-max",
		"rate_limit":        "rate-limit",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewProjectsCommand())
	rootCmd.AddCommand(commands.NewExecutionEnvironmentsCommand())
	rootCmd.AddCommand(commands.NewTemplatesCommand())
	rootCmd.AddCommand(commands.NewJobsCommand())
	rootCmd.AddCommand(commands.NewCleanupCommand())
	rootCmd.AddCommand(commands.NewResourcesCommand())
	rootCmd.AddCommand(commands.NewUseCasesCommand())
	rootCmd.AddCommand(commands.NewPingCommand())
	rootCmd.AddCommand(commands.NewSubscriptionCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".aap")

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating config directory: %v\n", err)
		}

		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("AAP")
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err == nil && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, commands.UserMessage(err))
		os.Exit(1)
	}
}
