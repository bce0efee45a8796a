package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/aap-client/pkg/aap"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ErrInvalidCredentialFormat is returned for a malformed --credential value.
var ErrInvalidCredentialFormat = errors.New("invalid credential, expected ID:CREDENTIAL_TYPE_ID[:NAME]")

// NewJobsCommand creates the jobs command group.
func NewJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "Launch and inspect jobs",
		Long:    "Launch job templates, wait for the job to finish and read its events",
	}

	cmd.AddCommand(newJobsLaunchCommand())
	cmd.AddCommand(newJobsGetCommand())
	cmd.AddCommand(newJobsEventsCommand())

	return cmd
}

// launchFlags holds the optional launch parameters given on the command line.
type launchFlags struct {
	file          string
	inventoryID   int
	credentials   []string
	extraVars     string
	limit         string
	jobType       string
	eeID          int
	verbosity     int
	forks         int
	jobSliceCount int
	timeout       int
	diffMode      bool
	jobTags       string
	skipTags      string
}

func newJobsLaunchCommand() *cobra.Command {
	flags := &launchFlags{}

	cmd := &cobra.Command{
		Use:   "launch TEMPLATE_ID",
		Short: "Launch a job template",
		Long: `Launch a job template and wait until the job reaches a terminal status.

Launch parameters can be read from a YAML file with --file; flags override
the file. Credentials are given as ID:CREDENTIAL_TYPE_ID[:NAME] so that two
credentials of the same type are rejected before launching.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			templateID, err := parseID("job template", args[0])
			if err != nil {
				return err
			}

			launch, err := flags.build(cmd, templateID)
			if err != nil {
				return err
			}

			client, release, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			job, launchErr := client.Jobs().Launch(cmd.Context(), launch)
			if job != nil {
				err = renderJob(cmd, job)
				if err != nil {
					return err
				}
			}

			return launchErr
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "YAML file with launch parameters")
	cmd.Flags().IntVar(&flags.inventoryID, "inventory-id", 0, "inventory id")
	cmd.Flags().StringSliceVar(&flags.credentials, "credential", nil, "credential as ID:CREDENTIAL_TYPE_ID[:NAME], repeatable")
	cmd.Flags().StringVar(&flags.extraVars, extraVarsFlag, "", "extra variables as YAML or JSON")
	cmd.Flags().StringVar(&flags.limit, "limit", "", "host pattern limit")
	cmd.Flags().StringVar(&flags.jobType, "job-type", "", "run or check")
	cmd.Flags().IntVar(&flags.eeID, "ee-id", 0, "execution environment id")
	cmd.Flags().IntVar(&flags.verbosity, "verbosity", 0, "ansible verbosity (0-5)")
	cmd.Flags().IntVar(&flags.forks, "forks", 0, "number of parallel processes")
	cmd.Flags().IntVar(&flags.jobSliceCount, "job-slice-count", 0, "number of job slices")
	cmd.Flags().IntVar(&flags.timeout, "timeout", 0, "job timeout in seconds")
	cmd.Flags().BoolVar(&flags.diffMode, "diff-mode", false, "show changes made by tasks")
	cmd.Flags().StringVar(&flags.jobTags, "job-tags", "", "only run tasks with these tags")
	cmd.Flags().StringVar(&flags.skipTags, "skip-tags", "", "skip tasks with these tags")

	return cmd
}

// build assembles the launch from the optional file and the changed flags.
//
//nolint:cyclop,funlen // one branch per optional flag
func (f *launchFlags) build(cmd *cobra.Command, templateID int) (*aap.LaunchJobTemplate, error) {
	launch := &aap.LaunchJobTemplate{}

	if f.file != "" {
		data, err := os.ReadFile(filepath.Clean(f.file))
		if err != nil {
			return nil, fmt.Errorf("failed to read launch file: %w", err)
		}

		err = yaml.Unmarshal(data, launch)
		if err != nil {
			return nil, fmt.Errorf("failed to parse launch file: %w", err)
		}
	}

	launch.Template.ID = templateID

	changed := cmd.Flags().Changed

	if changed("inventory-id") {
		launch.Inventory = &aap.Inventory{ID: f.inventoryID}
	}

	if changed("credential") {
		credentials, err := parseCredentials(f.credentials)
		if err != nil {
			return nil, err
		}

		launch.Credentials = credentials
	}

	if changed(extraVarsFlag) {
		vars, err := parseExtraVars(f.extraVars)
		if err != nil {
			return nil, err
		}

		launch.ExtraVariables = vars
	}

	if changed("limit") {
		launch.Limit = &f.limit
	}

	if changed("job-type") {
		launch.JobType = &f.jobType
	}

	if changed("ee-id") {
		launch.ExecutionEnvironment = &aap.ExecutionEnvironment{ID: f.eeID}
	}

	if changed("verbosity") {
		launch.Verbosity = &f.verbosity
	}

	if changed("forks") {
		launch.Forks = &f.forks
	}

	if changed("job-slice-count") {
		launch.JobSliceCount = &f.jobSliceCount
	}

	if changed("timeout") {
		launch.Timeout = &f.timeout
	}

	if changed("diff-mode") {
		launch.DiffMode = &f.diffMode
	}

	if changed("job-tags") {
		launch.JobTags = &f.jobTags
	}

	if changed("skip-tags") {
		launch.SkipTags = &f.skipTags
	}

	return launch, nil
}

// parseCredentials parses ID:CREDENTIAL_TYPE_ID[:NAME] values.
func parseCredentials(values []string) ([]aap.Credential, error) {
	const (
		minParts = 2
		maxParts = 3
	)

	credentials := make([]aap.Credential, 0, len(values))

	for _, value := range values {
		parts := strings.SplitN(value, ":", maxParts)
		if len(parts) < minParts {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCredentialFormat, value)
		}

		id, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCredentialFormat, value)
		}

		credType, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCredentialFormat, value)
		}

		name := "credential " + parts[0]
		if len(parts) == maxParts && parts[2] != "" {
			name = parts[2]
		}

		credentials = append(credentials, aap.Credential{ID: id, Name: name, CredentialType: credType})
	}

	return credentials, nil
}

func newJobsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get JOB_ID",
		Short: "Get job details",
		Long:  "Display the status of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("job", args[0])
			if err != nil {
				return err
			}

			client, release, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			job, err := client.Jobs().Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			return renderJob(cmd, job)
		},
	}
}

func newJobsEventsCommand() *cobra.Command {
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "events JOB_ID",
		Short: "List job events",
		Long:  "List every event of a job in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("job", args[0])
			if err != nil {
				return err
			}

			client, release, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer release()

			events, err := client.Jobs().Events(cmd.Context(), id)
			if err != nil {
				return err
			}

			if failedOnly {
				events = filterFailedEvents(events)
			}

			return renderOutput(cmd.OutOrStdout(), events, func(table *tablewriter.Table) {
				table.Header("Counter", "Event", "Host", "Task", "Failed", "Message")

				for _, event := range events {
					msg, _ := event.EventData.ResultMessage()
					_ = table.Append(
						strconv.Itoa(event.Counter),
						event.Event,
						valueOrNA(event.Host),
						valueOrNA(event.Task),
						strconv.FormatBool(event.Failed),
						valueOrNA(msg),
					)
				}
			})
		},
	}

	cmd.Flags().BoolVar(&failedOnly, "failed", false, "only show failed events")

	return cmd
}

func filterFailedEvents(events []aap.JobEvent) []aap.JobEvent {
	failed := make([]aap.JobEvent, 0, len(events))

	for _, event := range events {
		if event.Failed {
			failed = append(failed, event)
		}
	}

	return failed
}

func renderJob(cmd *cobra.Command, job *aap.Job) error {
	return renderOutput(cmd.OutOrStdout(), job, func(table *tablewriter.Table) {
		table.Header("Property", "Value")
		_ = table.Append("ID", idOrNA(job.ID))
		_ = table.Append("Status", valueOrNA(job.Status))
		_ = table.Append("Events", strconv.Itoa(len(job.Events)))
		_ = table.Append("URL", valueOrNA(job.URL))
	})
}
