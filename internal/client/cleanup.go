package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/aap-client/pkg/aap"
)

// CleanUp implements aap.Client.CleanUp. Templates go first since they
// reference the project and the execution environment.
func (c *Client) CleanUp(ctx context.Context, req *aap.CleanUp) error {
	if req == nil {
		return nil
	}

	var errs []error

	remove := func(kind string, ref *aap.ResourceRef, deleteFn func(context.Context, int) error) {
		if ref == nil {
			return
		}

		if ref.ID == 0 {
			errs = append(errs, fmt.Errorf("%s: %w", kind, aap.ErrMissingResourceID))

			return
		}

		errs = append(errs, deleteFn(ctx, ref.ID))
	}

	remove("job template", req.Template, c.jobTemplates.Delete)
	remove("execution environment", req.ExecutionEnvironment, c.executionEnvironments.Delete)
	remove("project", req.Project, c.projects.Delete)

	err := errors.Join(errs...)
	if err != nil {
		c.api.logger.Error("Clean up incomplete", c.api.fields(map[string]interface{}{
			"error": err.Error(),
		}))
	}

	return err
}
