package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/aap-client/internal/constants"
	"github.com/fivetwenty-io/aap-client/pkg/aap"
)

// JobsClient implements aap.JobsClient.
type JobsClient struct {
	api *apiContext
}

// NewJobsClient creates a new jobs client.
func NewJobsClient(api *apiContext) *JobsClient {
	return &JobsClient{api: api}
}

type launchResponse struct {
	ID     int    `json:"id"`
	Job    int    `json:"job"`
	Status string `json:"status"`
}

type jobResponse struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}

// Launch implements aap.JobsClient.Launch.
//
// The job is awaited and its full event history fetched. A job that does not
// succeed is returned together with an aap.ErrJobExecutionFailed error.
func (c *JobsClient) Launch(ctx context.Context, launch *aap.LaunchJobTemplate) (*aap.Job, error) {
	err := launch.ValidateCredentials()
	if err != nil {
		return nil, err
	}

	if launch.Template.ID == 0 {
		return nil, aap.ErrMissingTemplateID
	}

	path := c.api.endpoint(constants.JobTemplatesEndpoint, itoa(launch.Template.ID), "launch")

	resp, err := c.api.httpClient.Post(ctx, path, launch.Request())
	if err != nil {
		return nil, fmt.Errorf("launching job template %d: %w", launch.Template.ID, err)
	}

	var launched launchResponse

	err = json.Unmarshal(resp.Body, &launched)
	if err != nil {
		return nil, fmt.Errorf("parsing launch response: %w", err)
	}

	jobID := launched.ID
	if jobID == 0 {
		jobID = launched.Job
	}

	if jobID == 0 {
		return nil, aap.ErrNoJobID
	}

	c.api.logger.Info("Job launched", c.api.fields(map[string]interface{}{
		"template_id": launch.Template.ID,
		"job_id":      jobID,
	}))

	job, err := c.PollUntilComplete(ctx, jobID)
	if err != nil {
		return job, err
	}

	failed := job.Status != constants.StatusSuccessful

	events, err := c.Events(ctx, jobID)
	if err != nil && !failed {
		return job, err
	}

	if err != nil {
		c.api.logger.Warn("Could not fetch events of failed job", c.api.fields(map[string]interface{}{
			"job_id": jobID,
			"error":  err.Error(),
		}))
	}

	job.Events = events

	if failed {
		c.api.logger.Error("Job failed", c.api.fields(map[string]interface{}{
			"job_id": jobID,
			"status": job.Status,
		}))

		return job, fmt.Errorf("%w: %s", aap.ErrJobExecutionFailed, failureReason(events))
	}

	return job, nil
}

// failureReason reads the task result message of the second to last event,
// which precedes the playbook_on_stats summary.
func failureReason(events []aap.JobEvent) string {
	if len(events) >= 2 {
		msg, ok := events[len(events)-2].EventData.ResultMessage()
		if ok {
			return msg
		}
	}

	return aap.JobFailureFallbackMessage
}

// Get implements aap.JobsClient.Get.
func (c *JobsClient) Get(ctx context.Context, id int) (*aap.Job, error) {
	resp, err := c.api.httpClient.Get(ctx, c.api.endpoint(constants.JobsEndpoint, itoa(id)), nil)
	if err != nil {
		return nil, fmt.Errorf("getting job %d: %w", id, err)
	}

	var job jobResponse

	err = json.Unmarshal(resp.Body, &job)
	if err != nil {
		return nil, fmt.Errorf("parsing job: %w", err)
	}

	return &aap.Job{
		ID:     job.ID,
		Status: job.Status,
		URL:    c.api.portalURL(constants.JobOutputPath, job.ID),
	}, nil
}

// Events implements aap.JobsClient.Events. All pages are fetched and
// concatenated in order.
func (c *JobsClient) Events(ctx context.Context, id int) ([]aap.JobEvent, error) {
	events, err := listAll[aap.JobEvent](ctx, c.api.httpClient, c.api.endpoint(constants.JobsEndpoint, itoa(id), "job_events"), nil)
	if err != nil {
		return nil, fmt.Errorf("fetching events of job %d: %w", id, err)
	}

	return events, nil
}

// PollUntilComplete implements aap.JobsClient.PollUntilComplete.
// It polls the job until it reaches a terminal status; a failed job is not
// an error here.
func (c *JobsClient) PollUntilComplete(ctx context.Context, id int) (*aap.Job, error) {
	job, err := pollUntil(ctx, c.api.pollInterval, c.api.pollTimeout,
		func(ctx context.Context) (*aap.Job, error) {
			return c.Get(ctx, id)
		},
		func(job *aap.Job) bool {
			return isJobComplete(job.Status)
		},
	)
	if err != nil {
		return job, fmt.Errorf("waiting for job %d: %w", id, err)
	}

	return job, nil
}

// isJobComplete checks if a job is in a terminal state.
func isJobComplete(status string) bool {
	switch status {
	case constants.StatusSuccessful, constants.StatusFailed, constants.StatusError, constants.StatusCanceled:
		return true
	default:
		return false
	}
}
