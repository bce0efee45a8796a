package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/aap-client/internal/constants"
	"github.com/fivetwenty-io/aap-client/internal/logging"
	"github.com/fivetwenty-io/aap-client/pkg/aap"
	"github.com/fivetwenty-io/aap-client/pkg/aapclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Common string constants used throughout the commands package.
const (
	Masked = "***"

	logFormatConsole = "console"
	logFormatBoth    = "both"

	organizationIDFlag = "organization-id"
	deleteIfExistFlag  = "delete-if-exist"
	extraVarsFlag      = "extra-vars"
)

// closer is implemented by cache backends that hold a connection.
type closer interface {
	Close()
}

// renderOutput writes data in the configured output format. Table output is
// delegated to fill.
func renderOutput(w io.Writer, data interface{}, fill func(table *tablewriter.Table)) error {
	output := viper.GetString("output")

	switch output {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(data)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)

		err := encoder.Encode(data)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}

		return encoder.Close()
	case constants.FormatTable, "":
		table := tablewriter.NewWriter(w)
		fill(table)

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, output)
	}
}

// newLogger builds the CLI logger from the log_level and log_format settings.
func newLogger(w io.Writer) aap.Logger {
	level := viper.GetString("log_level")
	if viper.GetBool("verbose") {
		level = "debug"
	}

	switch viper.GetString("log_format") {
	case logFormatConsole:
		return logging.NewLegacy(w, level)
	case logFormatBoth:
		return aap.NewMultiLogger(logging.New(w, level), logging.NewLegacy(w, level))
	default:
		return logging.New(w, level)
	}
}

// newCache builds the autocomplete cache selected by the cache setting.
func newCache() (aap.Cache, error) {
	cacheType, err := aap.ParseCacheType(viper.GetString("cache"))
	if err != nil {
		return nil, err
	}

	config := aap.DefaultCacheConfig()
	config.Type = cacheType

	if config.Type == aap.CacheTypeNATS {
		config.NATS = &aap.NATSKVConfig{
			URL:    viper.GetString("nats_url"),
			Bucket: viper.GetString("nats_bucket"),
		}
	}

	cache, err := aap.NewCacheFromConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	return cache, nil
}

// buildClientConfig turns the CLI configuration into a client config.
func buildClientConfig(cmd *cobra.Command) (*aap.Config, error) {
	config := loadConfig()

	if config.BaseURL == "" {
		return nil, constants.ErrNoBaseURLConfigured
	}

	if config.Token == "" {
		return nil, constants.ErrNoTokenConfigured
	}

	return &aap.Config{
		BaseURL:         config.BaseURL,
		Token:           config.Token,
		SkipTLSVerify:   config.SkipTLSVerify,
		APIPrefix:       config.APIPrefix,
		DetectAPIPrefix: viper.GetBool("detect_api_prefix"),
		RetryMax:        viper.GetInt("retry_max"),
		RateLimit:       viper.GetFloat64("rate_limit"),
		PollInterval:    viper.GetDuration("poll_interval"),
		PollTimeout:     viper.GetDuration("poll_timeout"),
		Debug:           viper.GetBool("verbose"),
		Logger:          newLogger(cmd.ErrOrStderr()),
	}, nil
}

// createClient builds a client for the configured platform. The returned
// release func closes the cache connection, if any.
func createClient(cmd *cobra.Command) (aap.Client, func(), error) {
	config, err := buildClientConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	cache, err := newCache()
	if err != nil {
		return nil, nil, err
	}

	config.Cache = cache

	release := func() {
		if c, ok := cache.(closer); ok {
			c.Close()
		}
	}

	client, err := aapclient.New(cmd.Context(), config)
	if err != nil {
		release()

		return nil, nil, err
	}

	return client, release, nil
}

// parseID parses a numeric resource id argument.
func parseID(kind, value string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q: %w", kind, value, aap.ErrMissingResourceID)
	}

	return id, nil
}

// parseExtraVars decodes a YAML (or JSON) mapping given on the command line.
func parseExtraVars(text string) (map[string]interface{}, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil //nolint:nilnil // no extra variables
	}

	var vars map[string]interface{}

	err := yaml.Unmarshal([]byte(text), &vars)
	if err != nil {
		return nil, fmt.Errorf("failed to parse extra variables: %w", err)
	}

	return vars, nil
}

// valueOrNA returns value, or N/A when it is empty.
func valueOrNA(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

// idOrNA formats an id, or N/A when it is unset.
func idOrNA(id int) string {
	if id == 0 {
		return constants.NotAvailable
	}

	return strconv.Itoa(id)
}

// maskToken hides all but the last four characters of a token.
func maskToken(token string) string {
	const visible = 4

	if token == "" {
		return constants.NotAvailable
	}

	if len(token) <= visible {
		return Masked
	}

	return Masked + token[len(token)-visible:]
}

// UserMessage returns the text shown to the user for err. Errors reported by
// the controller are shown without the wrapping context unless verbose
// output is on.
func UserMessage(err error) string {
	if err == nil || viper.GetBool("verbose") {
		return fmt.Sprint(err)
	}

	if aap.IsInsufficientPrivileges(err) {
		return aap.InsufficientPrivilegesMessage
	}

	validationErr := &aap.RemoteValidationError{}
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}

	failureErr := &aap.RequestFailureError{}
	if errors.As(err, &failureErr) {
		return failureErr.Error()
	}

	return err.Error()
}
