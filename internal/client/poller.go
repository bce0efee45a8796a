package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/aap-client/pkg/aap"
)

// pollUntil calls fetch immediately and then every interval until done
// reports true. The wait is bounded by timeout; exceeding it returns
// aap.ErrPollTimeout together with the last observed value. Cancellation of
// ctx is returned as is.
func pollUntil[T any](
	ctx context.Context,
	interval, timeout time.Duration,
	fetch func(context.Context) (*T, error),
	done func(*T) bool,
) (*T, error) {
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First check immediately
	current, err := fetch(pollCtx)
	if err != nil {
		return nil, pollError(ctx, pollCtx, err)
	}

	if done(current) {
		return current, nil
	}

	for {
		select {
		case <-pollCtx.Done():
			return current, pollError(ctx, pollCtx, pollCtx.Err())
		case <-ticker.C:
			next, err := fetch(pollCtx)
			if err != nil {
				return current, pollError(ctx, pollCtx, err)
			}

			current = next

			if done(current) {
				return current, nil
			}
		}
	}
}

// pollError tells a caller cancellation apart from the poll deadline.
func pollError(parent, pollCtx context.Context, err error) error {
	if parent.Err() != nil {
		return fmt.Errorf("polling canceled: %w", parent.Err())
	}

	if errors.Is(pollCtx.Err(), context.DeadlineExceeded) {
		return aap.ErrPollTimeout
	}

	return err
}
