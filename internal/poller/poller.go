// Package poller implements the client-side polling state machine for a
// generation task: submit, poll the status endpoint on a single timer, retry
// transient fetch errors, silently resubmit once on a failed generation, and
// give up after a size-dependent wall-clock ceiling.
package poller

import (
	"context"
	"fmt"
	"time"

	"infographic-service/internal/models"
)

// State is the poller's observable state
type State string

const (
	StatePolling   State = "polling"
	StateRetrying  State = "retrying"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateTimedOut  State = "timed_out"
)

// Backend is the server surface the poller drives. Client implements it over
// HTTP; tests substitute stubs.
type Backend interface {
	Submit(ctx context.Context, req models.GenerateInfographicRequest) (*models.TaskResponse, error)
	Status(ctx context.Context, taskID string) (*models.StatusResponse, error)
}

// Config tunes the polling policies. Zero values fall back to the defaults
// used by the web client.
type Config struct {
	Interval      time.Duration // baseline poll cadence (default 1.5s)
	FastInterval  time.Duration // cadence once progress passes FastThreshold (default 1s)
	FastThreshold int           // progress percentage that triggers FastInterval (default 70)
	FetchRetries  int           // transient fetch errors tolerated per streak (default 2)
	RetryGap      time.Duration // wait between fetch retries (default 2s)
	Ceiling       time.Duration // wall-clock limit; 0 derives it from the requested size
}

func (c Config) withDefaults() Config {
	if c.Interval == 0 {
		c.Interval = 1500 * time.Millisecond
	}
	if c.FastInterval == 0 {
		c.FastInterval = time.Second
	}
	if c.FastThreshold == 0 {
		c.FastThreshold = 70
	}
	if c.FetchRetries == 0 {
		c.FetchRetries = 2
	}
	if c.RetryGap == 0 {
		c.RetryGap = 2 * time.Second
	}
	return c
}

// Result is the terminal outcome of one polling run
type Result struct {
	State   State
	TaskID  string
	HTML    string // populated when State is StateCompleted
	Message string // populated when State is StateFailed or StateTimedOut
}

// Poller runs the polling state machine. A Poller is not safe for concurrent
// use; create one per submission.
type Poller struct {
	backend Backend
	cfg     Config
	state   State
}

// New creates a poller over the given backend
func New(backend Backend, cfg Config) *Poller {
	return &Poller{
		backend: backend,
		cfg:     cfg.withDefaults(),
		state:   StatePolling,
	}
}

// State returns the poller's current state
func (p *Poller) State() State {
	return p.state
}

// CeilingFor returns the maximum wall-clock wait for a given output size.
// Larger formats are given more time before the client gives up.
func CeilingFor(size models.Size) time.Duration {
	switch size {
	case models.Size16x9:
		return 300 * time.Second
	case models.SizeA4Landscape, models.SizeA4Portrait:
		return 240 * time.Second
	default:
		return 180 * time.Second
	}
}

// TimeoutMessage names the format that timed out so the user can act on it
// (shorten the text or pick a smaller format)
func TimeoutMessage(size models.Size) string {
	var label string
	switch size {
	case models.Size16x9:
		label = "the 16:9 slide format"
	case models.SizeA4Landscape:
		label = "the A4 landscape format"
	case models.SizeA4Portrait:
		label = "the A4 portrait format"
	default:
		label = fmt.Sprintf("the %s mobile format", size)
	}
	return fmt.Sprintf("Generation for %s took too long. Try shorter text or a smaller format.", label)
}

// Run submits the request and polls until a terminal state is reached.
// Cancelling the context abandons polling; the server-side job keeps running
// and a later status lookup for the returned task id still reports the true
// outcome.
func (p *Poller) Run(ctx context.Context, req models.GenerateInfographicRequest) (*Result, error) {
	resp, err := p.backend.Submit(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to submit: %w", err)
	}
	if resp.Status == models.TaskStatusCompleted {
		p.state = StateCompleted
		return &Result{State: StateCompleted, TaskID: resp.ID, HTML: resp.Result}, nil
	}
	return p.poll(ctx, req, resp.ID)
}

func (p *Poller) poll(ctx context.Context, req models.GenerateInfographicRequest, taskID string) (*Result, error) {
	size, err := models.ParseSize(req.Size)
	if err != nil {
		size = models.Size16x9
	}
	ceiling := p.cfg.Ceiling
	if ceiling == 0 {
		ceiling = CeilingFor(size)
	}

	deadline := time.Now().Add(ceiling)
	interval := p.cfg.Interval
	fetchErrors := 0
	autoRetried := false

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			// Manual cancellation: stop observing, leave the server job alone
			return nil, ctx.Err()
		case <-timer.C:
		}

		// The ceiling applies regardless of the last observed status
		if time.Now().After(deadline) {
			p.state = StateTimedOut
			return &Result{State: StateTimedOut, TaskID: taskID, Message: TimeoutMessage(size)}, nil
		}

		status, err := p.backend.Status(ctx, taskID)
		if err != nil {
			fetchErrors++
			if fetchErrors > p.cfg.FetchRetries {
				p.state = StateFailed
				return &Result{
					State:   StateFailed,
					TaskID:  taskID,
					Message: fmt.Sprintf("connection issue while checking generation status: %v", err),
				}, nil
			}
			p.state = StateRetrying
			timer.Reset(p.cfg.RetryGap)
			continue
		}
		fetchErrors = 0
		p.state = StatePolling

		switch status.Status {
		case models.TaskStatusCompleted:
			p.state = StateCompleted
			return &Result{State: StateCompleted, TaskID: taskID, HTML: status.Result}, nil

		case models.TaskStatusFailed:
			if !autoRetried {
				// One silent retry: resubmit the original input as a brand-new
				// task and keep polling without surfacing the first failure
				autoRetried = true
				resp, err := p.backend.Submit(ctx, req)
				if err != nil {
					p.state = StateFailed
					return &Result{
						State:   StateFailed,
						TaskID:  taskID,
						Message: fmt.Sprintf("generation failed and retry could not be submitted: %v", err),
					}, nil
				}
				taskID = resp.ID
				if resp.Status == models.TaskStatusCompleted {
					p.state = StateCompleted
					return &Result{State: StateCompleted, TaskID: taskID, HTML: resp.Result}, nil
				}
				interval = p.cfg.Interval
				timer.Reset(interval)
				continue
			}
			p.state = StateFailed
			return &Result{State: StateFailed, TaskID: taskID, Message: status.Error}, nil
		}

		// Cosmetic responsiveness: poll faster near the end
		if status.Progress > p.cfg.FastThreshold {
			interval = p.cfg.FastInterval
		}
		timer.Reset(interval)
	}
}
