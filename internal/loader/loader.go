// Package loader fetches a finished story by id for the display view.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storyclient/internal/domain"
	"storyclient/internal/infra"
	"storyclient/internal/messages"
)

// StoryAPI is the subset of the story API the loader talks to.
type StoryAPI interface {
	GetCompleteStory(ctx context.Context, storyID int64) (*domain.Story, error)
}

// State is what the display view renders.
type State struct {
	StoryID int64
	Story   *domain.Story
	Loading bool
	Error   string
	// NotFound marks Error as the not-found class, which offers a way back to
	// the generator instead of a plain failure.
	NotFound bool
}

// Options configures a Loader.
type Options struct {
	API      StoryAPI
	Messages *messages.Printer
	Logger   *infra.Logger
	// OnChange receives a snapshot after every state change.
	OnChange func(State)
}

// Loader owns the display state for one story id at a time. A load for a new
// id supersedes any load still in flight.
type Loader struct {
	api      StoryAPI
	msgs     *messages.Printer
	logger   *infra.Logger
	onChange func(State)

	mu         sync.Mutex
	state      State
	generation uint64
}

// New constructs a Loader.
func New(opts Options) (*Loader, error) {
	if opts.API == nil {
		return nil, errors.New("loader: api is required")
	}
	msgs := opts.Messages
	if msgs == nil {
		msgs = messages.NewPrinter("en")
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Loader{
		api:      opts.API,
		msgs:     msgs,
		logger:   logger,
		onChange: opts.OnChange,
	}, nil
}

// State returns a snapshot of the current state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// SetStoryID loads id unless it is already the current one.
func (l *Loader) SetStoryID(ctx context.Context, id int64) (*domain.Story, error) {
	l.mu.Lock()
	same := l.generation > 0 && l.state.StoryID == id
	l.mu.Unlock()
	if same {
		return nil, nil
	}
	return l.Load(ctx, id)
}

// Load fetches the story for id. Not-found and other failures end in distinct
// error messages; Loading is cleared on every exit path.
func (l *Loader) Load(ctx context.Context, id int64) (story *domain.Story, err error) {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.state = State{StoryID: id, Loading: true}
	snap := l.state
	l.mu.Unlock()
	l.notify(snap)

	defer func() {
		l.update(gen, func(s *State) {
			s.Loading = false
			switch {
			case err == nil:
				s.Story = story
			case errors.Is(err, domain.ErrNotFound):
				s.Error = l.msgs.Sprintf(messages.StoryNotFound)
				s.NotFound = true
			default:
				s.Error = l.msgs.Sprintf(messages.StoryLoadFailed)
			}
		})
	}()

	story, err = l.api.GetCompleteStory(ctx, id)
	if err != nil {
		l.logger.Warn().Err(err).Int64("story_id", id).Msg("loader: load story failed")
		return nil, fmt.Errorf("load story %d: %w", id, err)
	}
	l.logger.Info().Int64("story_id", id).Msg("loader: story loaded")
	return story, nil
}

func (l *Loader) update(gen uint64, fn func(*State)) {
	l.mu.Lock()
	if gen != l.generation {
		l.mu.Unlock()
		l.logger.Debug().Msg("loader: dropped superseded load")
		return
	}
	fn(&l.state)
	snap := l.state
	l.mu.Unlock()
	l.notify(snap)
}

func (l *Loader) notify(s State) {
	if l.onChange != nil {
		l.onChange(s)
	}
}
