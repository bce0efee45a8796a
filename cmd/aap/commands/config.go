package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/aap-client/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration stored in ~/.aap/config.yml.
type Config struct {
	BaseURL       string `json:"base_url,omitempty"   yaml:"base_url,omitempty"`
	Token         string `json:"token,omitempty"      yaml:"token,omitempty"`
	SkipTLSVerify bool   `json:"skip_tls_verify"      yaml:"skip_tls_verify"`
	APIPrefix     string `json:"api_prefix,omitempty" yaml:"api_prefix,omitempty"`
	Output        string `json:"output,omitempty"     yaml:"output,omitempty"`
	LogLevel      string `json:"log_level,omitempty"  yaml:"log_level,omitempty"`
	LogFormat     string `json:"log_format,omitempty" yaml:"log_format,omitempty"`
	Cache         string `json:"cache,omitempty"      yaml:"cache,omitempty"`
	NATSURL       string `json:"nats_url,omitempty"   yaml:"nats_url,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage the AAP CLI configuration file and connection settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigSetTokenCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	var showToken bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective CLI configuration. The token is masked unless --show-token is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if !showToken && config.Token != "" {
				config.Token = maskToken(config.Token)
			}

			return renderOutput(cmd.OutOrStdout(), config, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Base URL", valueOrNA(config.BaseURL))
				_ = table.Append("Token", valueOrNA(config.Token))
				_ = table.Append("Skip TLS Verify", strconv.FormatBool(config.SkipTLSVerify))
				_ = table.Append("API Prefix", valueOrNA(config.APIPrefix))
				_ = table.Append("Output", valueOrNA(config.Output))
				_ = table.Append("Log Level", valueOrNA(config.LogLevel))
				_ = table.Append("Log Format", valueOrNA(config.LogFormat))
				_ = table.Append("Cache", valueOrNA(config.Cache))
				_ = table.Append("NATS URL", valueOrNA(config.NATSURL))
			})
		},
	}

	cmd.Flags().BoolVar(&showToken, "show-token", false, "print the token in clear text")

	return cmd
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a configuration value and save it to the config file.

Keys: base_url, skip_tls_verify, api_prefix, output, log_level, log_format,
cache, nats_url. Use 'aap config set-token' for the token.`,
		Args: cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			config := loadConfig()

			err := setConfigValue(config, key, value)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)

			return nil
		},
	}
}

func newConfigSetTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-token [TOKEN]",
		Short: "Save the API token",
		Long:  "Save the AAP API token. Without an argument the token is read from the terminal without echo",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string

			if len(args) == 1 {
				token = args[0]
			} else {
				read, err := readToken(cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					return err
				}

				token = read
			}

			token = strings.TrimSpace(token)
			if token == "" {
				return constants.ErrNoTokenConfigured
			}

			config := loadConfig()
			config.Token = token

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Token saved")

			return nil
		},
	}
}

// readToken prompts for the token. Terminal input is read without echo.
func readToken(in io.Reader, out io.Writer) (string, error) {
	_, _ = fmt.Fprint(out, "Token: ")

	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		tokenBytes, err := term.ReadPassword(int(file.Fd()))
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}

		_, _ = fmt.Fprintln(out)

		return string(tokenBytes), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	return line, nil
}

// loadConfig reads the effective configuration from viper.
func loadConfig() *Config {
	return &Config{
		BaseURL:       viper.GetString("base_url"),
		Token:         viper.GetString("token"),
		SkipTLSVerify: viper.GetBool("skip_tls_verify"),
		APIPrefix:     viper.GetString("api_prefix"),
		Output:        viper.GetString("output"),
		LogLevel:      viper.GetString("log_level"),
		LogFormat:     viper.GetString("log_format"),
		Cache:         viper.GetString("cache"),
		NATSURL:       viper.GetString("nats_url"),
	}
}

// setConfigValue sets a single key on config.
func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "base_url":
		config.BaseURL = strings.TrimRight(value, "/")
	case "skip_tls_verify":
		config.SkipTLSVerify = value == "true" || value == "1"
	case "api_prefix":
		config.APIPrefix = strings.Trim(value, "/")
	case "output":
		switch value {
		case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
			config.Output = value
		default:
			return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, value)
		}
	case "log_level":
		config.LogLevel = value
	case "log_format":
		config.LogFormat = value
	case "cache":
		config.Cache = value
	case "nats_url":
		config.NATSURL = value
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

// configFilePath returns the file in use, or ~/.aap/config.yml.
func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".aap", "config.yml"), nil
}

// saveConfigStruct writes config to the config file and refreshes viper.
func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	viper.Set("base_url", config.BaseURL)
	viper.Set("token", config.Token)
	viper.Set("skip_tls_verify", config.SkipTLSVerify)
	viper.Set("api_prefix", config.APIPrefix)
	viper.Set("output", config.Output)
	viper.Set("log_level", config.LogLevel)
	viper.Set("log_format", config.LogFormat)
	viper.Set("cache", config.Cache)
	viper.Set("nats_url", config.NATSURL)

	return nil
}
