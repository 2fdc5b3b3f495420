// Package generator drives a server-side story job from submission to a
// resolved story id: it creates the job, polls its status on a fixed interval
// and hands the finished story off to the navigator.
package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"storyclient/internal/domain"
	"storyclient/internal/infra"
	"storyclient/internal/messages"
)

// DefaultInterval is the delay between two status checks.
const DefaultInterval = 5 * time.Second

// JobAPI is the subset of the story API the generator talks to.
type JobAPI interface {
	CreateJob(ctx context.Context, theme string) (*domain.Job, error)
	GetJob(ctx context.Context, jobID string) (*domain.Job, error)
}

// Options configures a Generator.
type Options struct {
	API       JobAPI
	Navigator domain.Navigator
	Clock     clockwork.Clock
	Interval  time.Duration
	Messages  *messages.Printer
	Logger    *infra.Logger
	// OnChange receives a snapshot after every session change. It may be
	// called from the poll goroutine and must not call back into the
	// Generator synchronously.
	OnChange func(Session)
}

// Generator owns one Session and at most one poll timer.
//
// Every submission and reset starts a new generation; responses that arrive
// for an older generation are dropped, so a slow request can never overwrite
// the state of a newer session.
type Generator struct {
	api      JobAPI
	nav      domain.Navigator
	clock    clockwork.Clock
	interval time.Duration
	msgs     *messages.Printer
	logger   *infra.Logger
	onChange func(Session)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	session    Session
	generation uint64
	timer      *pollTimer
	closed     bool
}

type pollTimer struct {
	jobID  string
	ticker clockwork.Ticker
	cancel context.CancelFunc
}

// New constructs a Generator with sane defaults for optional dependencies.
func New(opts Options) (*Generator, error) {
	if opts.API == nil {
		return nil, errors.New("generator: api is required")
	}
	if opts.Navigator == nil {
		return nil, errors.New("generator: navigator is required")
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	msgs := opts.Messages
	if msgs == nil {
		msgs = messages.NewPrinter("en")
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Generator{
		api:      opts.API,
		nav:      opts.Navigator,
		clock:    clock,
		interval: interval,
		msgs:     msgs,
		logger:   logger,
		onChange: opts.OnChange,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Session returns a snapshot of the current session.
func (g *Generator) Session() Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

// Submit starts a new generation attempt for theme. The theme is expected to
// be validated by the caller.
//
// On success the job is checked once right away, without waiting for the
// first interval. A creation failure is surfaced in the session and returned.
func (g *Generator) Submit(ctx context.Context, theme string) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return fmt.Errorf("generator: %w", domain.ErrClosed)
	}
	g.generation++
	gen := g.generation
	g.stopTimerLocked()
	g.session = Session{Theme: theme, Busy: true}
	snap := g.session
	g.mu.Unlock()
	g.notify(snap)

	job, err := g.api.CreateJob(ctx, theme)
	if err != nil {
		reason := err.Error()
		if reason == "" {
			reason = g.msgs.Sprintf(messages.UnknownError)
		}
		g.logger.Warn().Err(err).Str("theme", theme).Msg("generator: create job failed")
		g.update(gen, func(s *Session) {
			s.Busy = false
			s.Error = g.msgs.Sprintf(messages.GenerateFailed, reason)
		})
		return fmt.Errorf("create job: %w", err)
	}

	g.logger.Info().Str("job_id", job.ID).Str("status", string(job.Status)).Msg("generator: job created")
	if !g.update(gen, func(s *Session) {
		s.JobID = job.ID
		s.Status = job.Status
	}) {
		return nil
	}

	g.check(ctx, job.ID, gen)
	return nil
}

// Reset returns the session to its initial empty state and stops polling,
// whatever state it was in.
func (g *Generator) Reset() {
	g.mu.Lock()
	g.generation++
	g.stopTimerLocked()
	g.session = Session{}
	snap := g.session
	g.mu.Unlock()

	g.logger.Debug().Msg("generator: session reset")
	g.notify(snap)
}

// Close stops polling and waits for the poll goroutine to exit. Submit fails
// after Close.
func (g *Generator) Close() {
	g.mu.Lock()
	g.closed = true
	g.generation++
	g.stopTimerLocked()
	g.mu.Unlock()

	g.cancel()
	g.wg.Wait()
}

// check fetches the job status once and applies the result.
func (g *Generator) check(ctx context.Context, jobID string, gen uint64) {
	if ctx.Err() != nil || !g.current(gen, jobID) {
		return
	}
	job, err := g.api.GetJob(ctx, jobID)
	if ctx.Err() != nil {
		// A cancelled check says nothing about the job.
		g.logger.Debug().Str("job_id", jobID).Msg("generator: check abandoned")
		return
	}
	g.apply(gen, jobID, classify(job, err))
}

func (g *Generator) current(gen uint64, jobID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return gen == g.generation && g.session.Busy && g.session.JobID == jobID
}

func (g *Generator) apply(gen uint64, jobID string, res checkResult) {
	g.mu.Lock()
	if gen != g.generation || !g.session.Busy || g.session.JobID != jobID {
		g.mu.Unlock()
		g.logger.Debug().Str("job_id", jobID).Stringer("result", res.kind).Msg("generator: dropped stale status")
		return
	}

	prev := g.session
	handoff := false
	switch res.kind {
	case checkMiss:
		g.logger.Debug().Str("job_id", jobID).Msg("generator: job not visible yet")
	case checkPending:
		if res.status.IsTerminal() {
			g.logger.Warn().Str("job_id", jobID).Str("status", string(res.status)).Msg("generator: terminal status without story id")
		}
		g.session.Status = res.status
	case checkCompleted:
		handoff = true
		g.session.Status = domain.JobStatusCompleted
		g.session.Busy = false
	case checkFailed:
		msg := res.reason
		if msg == "" {
			msg = g.msgs.Sprintf(messages.JobFailed)
		}
		g.session.Status = res.status
		g.session.Busy = false
		g.session.Error = msg
	case checkFatal:
		g.session.Busy = false
		g.session.Error = g.msgs.Sprintf(messages.StatusCheckFailed, res.reason)
	}
	g.syncTimerLocked(gen)
	snap := g.session
	g.mu.Unlock()

	switch res.kind {
	case checkCompleted:
		g.logger.Info().Str("job_id", jobID).Int64("story_id", res.storyID).Msg("generator: story ready")
	case checkFailed:
		g.logger.Warn().Str("job_id", jobID).Str("reason", res.reason).Msg("generator: job failed")
	case checkFatal:
		g.logger.Warn().Str("job_id", jobID).Str("reason", res.reason).Msg("generator: status check failed")
	}

	if snap != prev {
		g.notify(snap)
	}
	if handoff {
		g.nav.ShowStory(res.storyID)
	}
}

// update mutates the session if gen is still current and reports whether it did.
func (g *Generator) update(gen uint64, fn func(*Session)) bool {
	g.mu.Lock()
	if gen != g.generation {
		g.mu.Unlock()
		return false
	}
	fn(&g.session)
	g.syncTimerLocked(gen)
	snap := g.session
	g.mu.Unlock()

	g.notify(snap)
	return true
}

// syncTimerLocked starts or stops the poll timer so that it runs exactly while
// the session is polling. A timer for the same job is kept as is.
func (g *Generator) syncTimerLocked(gen uint64) {
	if g.closed || !g.session.Polling() {
		g.stopTimerLocked()
		return
	}
	if g.timer != nil && g.timer.jobID == g.session.JobID {
		return
	}
	g.stopTimerLocked()

	ctx, cancel := context.WithCancel(g.ctx)
	t := &pollTimer{
		jobID:  g.session.JobID,
		ticker: g.clock.NewTicker(g.interval),
		cancel: cancel,
	}
	g.timer = t
	g.wg.Add(1)
	go g.runTimer(ctx, t, gen)
	g.logger.Debug().Str("job_id", t.jobID).Dur("interval", g.interval).Msg("generator: polling started")
}

func (g *Generator) stopTimerLocked() {
	if g.timer == nil {
		return
	}
	g.timer.cancel()
	g.timer.ticker.Stop()
	g.logger.Debug().Str("job_id", g.timer.jobID).Msg("generator: polling stopped")
	g.timer = nil
}

func (g *Generator) runTimer(ctx context.Context, t *pollTimer, gen uint64) {
	defer g.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.ticker.Chan():
			g.check(ctx, t.jobID, gen)
		}
	}
}

func (g *Generator) notify(s Session) {
	if g.onChange != nil {
		g.onChange(s)
	}
}
