// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/danielhkuo/photo-swap/models"
)

var (
	ErrIdentity     = errors.New("identity fetch failed")
	ErrNotStarted   = errors.New("flow not started")
	ErrStarted      = errors.New("flow already started")
	ErrExited       = errors.New("flow has exited")
	ErrFlowNotFound = errors.New("flow not found")
)

// Source is the data-access collaborator the controller reads from.
type Source interface {
	FetchUser(ctx context.Context, userID string) (models.User, error)
	FetchSubmissions(ctx context.Context, userID string) ([]models.Submission, error)
}

// Options tune a Controller. Zero values fall back to defaults.
type Options struct {
	// ExitURL is where a participant is sent when their identity can't be
	// loaded.
	ExitURL string

	// FetchTimeout bounds each individual fetch attempt.
	FetchTimeout time.Duration

	// FetchRetries is how many times a failed submission fetch is retried.
	// Zero means DefaultFetchRetries; a negative value disables retries.
	FetchRetries int

	// BackOff builds the retry schedule for submission fetches.
	BackOff func() backoff.BackOff

	// Loader performs preloads on the server. When nil, preloads are only
	// advertised on the screen and the client reports completions.
	Loader         MediaLoader
	PreloadTimeout time.Duration

	// IdleTTL is how long a Registry keeps a flow nobody has touched. Zero
	// keeps flows until they are ended.
	IdleTTL time.Duration

	Rand   Rand
	Logger *slog.Logger
}

const (
	DefaultExitURL        = "/"
	DefaultFetchTimeout   = 10 * time.Second
	DefaultFetchRetries   = 3
	DefaultPreloadTimeout = 30 * time.Second
)

func (o Options) withDefaults() Options {
	if o.ExitURL == "" {
		o.ExitURL = DefaultExitURL
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = DefaultFetchTimeout
	}
	if o.FetchRetries == 0 {
		o.FetchRetries = DefaultFetchRetries
	}
	if o.BackOff == nil {
		o.BackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		}
	}
	if o.PreloadTimeout <= 0 {
		o.PreloadTimeout = DefaultPreloadTimeout
	}
	if o.Rand == nil {
		o.Rand = globalRand{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Controller drives one returning participant through the flow. It owns the
// submission snapshot, its display order, the preload cursor and the
// busy/stage state; screens only read from it and report completion.
//
// All methods are safe for concurrent use. State changes are serialized
// under a single mutex, and fetches run outside it. Every refresh takes a
// new generation number and only the newest generation may apply its
// result.
type Controller struct {
	id     string
	userID string
	source Source
	opts   Options
	log    *slog.Logger

	loaderCtx    context.Context
	cancelLoader context.CancelFunc
	loaders      sync.WaitGroup

	mu                sync.Mutex
	user              *models.User
	started           bool
	isBusy            bool
	loadingMessage    string
	stage             models.Stage
	submissions       []models.Submission // nil until the first snapshot is applied
	finishedResponses bool
	exited            bool
	lastErr           string
	generation        uint64
	preloader         *Preloader
}

func NewController(id, userID string, source Source, opts Options) *Controller {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		id:           id,
		userID:       userID,
		source:       source,
		opts:         opts,
		log:          opts.Logger.With("flow_id", id, "user_id", userID),
		loaderCtx:    ctx,
		cancelLoader: cancel,
		isBusy:       true,
		stage:        models.StageCreateSubmission,
		preloader:    NewPreloader(),
	}
}

func (c *Controller) ID() string     { return c.id }
func (c *Controller) UserID() string { return c.userID }

// Start loads the participant's identity and the first snapshot. An
// identity failure is terminal: the flow exits and Start returns an error
// wrapping ErrIdentity.
//
// The flow outlives the call that drives it, so cancellation of ctx is
// ignored; FetchTimeout bounds each attempt instead.
func (c *Controller) Start(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrStarted
	}
	c.started = true
	c.isBusy = true
	c.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, c.opts.FetchTimeout)
	user, err := c.source.FetchUser(fetchCtx, c.userID)
	cancel()
	if err != nil {
		c.mu.Lock()
		c.exited = true
		c.isBusy = false
		c.mu.Unlock()
		c.log.Warn("identity fetch failed, leaving flow", "error", err, "exit_url", c.opts.ExitURL)
		return fmt.Errorf("%w: %v", ErrIdentity, err)
	}

	c.mu.Lock()
	c.user = &user
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	return c.refresh(ctx, gen)
}

// Reevaluate re-fetches the snapshot, re-orders it against what is
// currently displayed and reclassifies the stage. Like Start, it ignores
// cancellation of ctx.
func (c *Controller) Reevaluate(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	c.mu.Lock()
	if c.exited {
		c.mu.Unlock()
		return ErrExited
	}
	if c.user == nil {
		c.mu.Unlock()
		return ErrNotStarted
	}
	c.isBusy = true
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	return c.refresh(ctx, gen)
}

// SubmissionCreated is the completion callback of the submission screen.
func (c *Controller) SubmissionCreated(ctx context.Context) error {
	return c.Reevaluate(ctx)
}

// ResponsesFinished is the completion callback of the response screen. The
// participant will not be sent back to the response stage in this flow,
// even if new submissions arrive.
func (c *Controller) ResponsesFinished(ctx context.Context) error {
	c.mu.Lock()
	if c.exited {
		c.mu.Unlock()
		return ErrExited
	}
	if c.user == nil {
		c.mu.Unlock()
		return ErrNotStarted
	}
	c.finishedResponses = true
	c.mu.Unlock()

	return c.Reevaluate(ctx)
}

// SetBusy lets a screen show a loading message while it does its own long
// running work. Staged screens are hidden until busy is cleared.
func (c *Controller) SetBusy(isBusy bool, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isBusy = isBusy
	c.loadingMessage = message
}

// PreloadDone records a finished media preload and reports whether it
// advanced the cursor.
func (c *Controller) PreloadDone(submissionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.preloader.Complete(c.submissions, submissionID) {
		return false
	}
	c.dispatchPreloads()
	return true
}

// Close stops any server-side preloads and waits for them to return.
func (c *Controller) Close() {
	c.mu.Lock()
	c.cancelLoader()
	c.mu.Unlock()
	c.loaders.Wait()
}

func (c *Controller) refresh(ctx context.Context, gen uint64) error {
	snapshot, err := c.fetchSubmissions(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.log.Info("discarding stale snapshot", "generation", gen, "current", c.generation)
		return nil
	}

	if err != nil {
		c.isBusy = false
		c.loadingMessage = ""
		c.lastErr = "Could not load submissions"
		c.log.Error("submission fetch failed", "error", err)
		return fmt.Errorf("fetch submissions: %w", err)
	}

	for i := range snapshot {
		if snapshot[i].Responses == nil {
			snapshot[i].Responses = []models.Response{}
		}
	}

	c.submissions = Order(snapshot, c.submissions, c.opts.Rand)
	c.stage = Classify(c.submissions, c.userID, c.finishedResponses)
	c.isBusy = false
	c.loadingMessage = ""
	c.lastErr = ""
	c.dispatchPreloads()

	c.log.Info("flow evaluated",
		"stage", c.stage.String(),
		"submissions", len(c.submissions),
		"finished_responses", c.finishedResponses,
	)
	return nil
}

func (c *Controller) fetchSubmissions(ctx context.Context) ([]models.Submission, error) {
	var snapshot []models.Submission
	op := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.opts.FetchTimeout)
		defer cancel()
		var err error
		snapshot, err = c.source.FetchSubmissions(attemptCtx, c.userID)
		return err
	}

	retries := uint64(max(c.opts.FetchRetries, 0))
	b := backoff.WithContext(backoff.WithMaxRetries(c.opts.BackOff(), retries), ctx)
	err := backoff.RetryNotify(op, b, func(err error, wait time.Duration) {
		c.log.Warn("submission fetch failed, retrying", "error", err, "wait", wait)
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// dispatchPreloads hands newly outstanding preloads to the loader. Callers
// hold c.mu.
func (c *Controller) dispatchPreloads() {
	if c.opts.Loader == nil || c.loaderCtx.Err() != nil {
		return
	}
	for _, req := range c.preloader.Next(c.submissions) {
		c.loaders.Add(1)
		go func(req models.PreloadRequest) {
			defer c.loaders.Done()

			ctx, cancel := context.WithTimeout(c.loaderCtx, c.opts.PreloadTimeout)
			err := c.opts.Loader.Load(ctx, req)
			cancel()
			if c.loaderCtx.Err() != nil {
				return
			}
			if err != nil {
				// A broken image must not stall the rest of the queue.
				c.log.Warn("preload failed", "submission_id", req.SubmissionID, "error", err)
			}
			c.PreloadDone(req.SubmissionID)
		}(req)
	}
}

// State returns a copy of the observable flow state.
func (c *Controller) State() models.FlowState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return models.FlowState{
		FlowID:            c.id,
		UserID:            c.userID,
		IsBusy:            c.isBusy,
		LoadingMessage:    c.loadingMessage,
		Stage:             c.stage,
		Submissions:       cloneSubmissions(c.submissions),
		FinishedResponses: c.finishedResponses,
		PreloadCursor:     c.preloader.Cursor(),
		Exited:            c.exited,
		Error:             c.lastErr,
	}
}

// Screen selects the one screen the participant should see right now.
func (c *Controller) Screen() models.Screen {
	c.mu.Lock()
	defer c.mu.Unlock()

	screen := models.Screen{Preloads: []models.PreloadRequest{}}
	if c.opts.Loader == nil && !c.exited {
		screen.Preloads = c.preloader.Outstanding(c.submissions)
	}

	switch {
	case c.exited:
		screen.Kind = models.ScreenExit
		screen.RedirectURL = c.opts.ExitURL
	case c.isBusy:
		screen.Kind = models.ScreenLoading
		screen.Message = c.loadingMessage
	case c.lastErr != "":
		screen.Kind = models.ScreenError
		screen.Message = c.lastErr
	case c.stage == models.StageCreateSubmission:
		screen.Kind = models.ScreenCreateSubmission
		screen.UserID = c.userID
	case c.stage == models.StageCreateResponses:
		screen.Kind = models.ScreenCreateResponses
		screen.UserID = c.userID
		screen.Submissions = PendingResponses(c.submissions, c.userID)
	default:
		screen.Kind = models.ScreenViewSubmissions
		screen.Submissions = cloneSubmissions(c.submissions)
	}
	return screen
}

func cloneSubmissions(s []models.Submission) []models.Submission {
	if s == nil {
		return []models.Submission{}
	}
	out := make([]models.Submission, len(s))
	copy(out, s)
	return out
}
