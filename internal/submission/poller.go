package submission

import (
	"context"
	"errors"
	"time"

	"codearena/internal/common/httpclient"
	"codearena/internal/model"
	pkgerrors "codearena/pkg/errors"
	"codearena/pkg/utils/logger"

	"go.uber.org/zap"
)

// StatusPath is the batch status endpoint, relative to the API base.
const StatusPath = "/problem-submission/submissions-status"

const (
	DefaultPollInterval = 2 * time.Second
	// DefaultMaxAttempts caps a poll at roughly five minutes with the default interval.
	DefaultMaxAttempts = 150
)

// PollOptions controls the status polling loop.
type PollOptions struct {
	// Interval is the fixed delay between status requests.
	Interval time.Duration
	// MaxAttempts bounds the number of status requests. Zero means
	// DefaultMaxAttempts, a negative value means no bound.
	MaxAttempts int
	// Timeout bounds the whole poll. Zero means no deadline.
	Timeout time.Duration
	// Observer, if set, sees every snapshot that is not yet completed.
	Observer func(attempt int, snapshot model.BatchResult)
}

func (o PollOptions) withDefaults() PollOptions {
	if o.Interval <= 0 {
		o.Interval = DefaultPollInterval
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	return o
}

// Poller waits for a batch of judge jobs to complete.
type Poller struct {
	client *httpclient.Client
	opts   PollOptions
}

func NewPoller(client *httpclient.Client, opts PollOptions) *Poller {
	return &Poller{client: client, opts: opts.withDefaults()}
}

// Options returns the effective options.
func (p *Poller) Options() PollOptions {
	return p.opts
}

// Poll queries the status endpoint until the backend reports the batch as
// completed and returns that snapshot. Pending snapshots are never returned.
func (p *Poller) Poll(ctx context.Context, tokens []string, concept, complexity string) (model.BatchResult, error) {
	if len(tokens) == 0 {
		return model.BatchResult{}, pkgerrors.New(pkgerrors.NoSubmissionTokens)
	}

	pollCtx := ctx
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	req := model.StatusRequest{Tokens: tokens, Concept: concept, Complexity: complexity}
	for attempt := 1; ; attempt++ {
		logger.Debug(ctx, "polling submissions", zap.Int("attempt", attempt), zap.Int("tokens", len(tokens)))

		result, err := p.fetch(pollCtx, req)
		if err != nil {
			return model.BatchResult{}, p.deadlineError(ctx, pollCtx, attempt, err)
		}
		if result.Completed {
			logger.Debug(ctx, "submission completed", zap.Int("attempt", attempt), zap.Bool("passed", result.Passed))
			return result, nil
		}
		if p.opts.Observer != nil {
			p.opts.Observer(attempt, result)
		}
		if p.opts.MaxAttempts > 0 && attempt >= p.opts.MaxAttempts {
			logger.Warn(ctx, "submission poll gave up", zap.Int("attempts", attempt))
			return model.BatchResult{}, pkgerrors.Newf(pkgerrors.PollTimedOut,
				"submission still running after %d status checks", attempt).
				WithDetail("attempts", attempt)
		}
		if err := wait(pollCtx, p.opts.Interval); err != nil {
			return model.BatchResult{}, p.deadlineError(ctx, pollCtx, attempt, err)
		}
	}
}

func (p *Poller) fetch(ctx context.Context, req model.StatusRequest) (model.BatchResult, error) {
	resp, err := p.client.PostJSON(ctx, StatusPath, req)
	if err != nil {
		return model.BatchResult{}, httpclient.RequestError("Failed to poll submissions", err)
	}
	if !resp.OK() {
		logger.Warn(ctx, "submission status request rejected", zap.Int("status", resp.StatusCode))
		return model.BatchResult{}, httpclient.StatusError("Failed to poll submissions", resp.StatusCode, resp.Body)
	}
	result, err := model.DecodeBatchResult(resp.Body)
	if err != nil {
		return model.BatchResult{}, pkgerrors.DecodeError(err)
	}
	return result, nil
}

// deadlineError maps expiry of the poll's own deadline to PollTimedOut;
// cancellation by the caller keeps its own kind.
func (p *Poller) deadlineError(parent, pollCtx context.Context, attempt int, err error) error {
	if parent.Err() == nil && errors.Is(pollCtx.Err(), context.DeadlineExceeded) {
		return pkgerrors.Wrapf(err, pkgerrors.PollTimedOut,
			"submission still running after %s", p.opts.Timeout).
			WithDetail("attempts", attempt)
	}
	return err
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return pkgerrors.FromContext(ctx.Err())
	}
}
