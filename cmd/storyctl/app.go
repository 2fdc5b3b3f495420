package main

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/jonboulle/clockwork"

	"storyclient/internal/domain"
	"storyclient/internal/generator"
	"storyclient/internal/infra"
	"storyclient/internal/loader"
	"storyclient/internal/messages"
)

var (
	errGenerationFailed = errors.New("story generation failed")
	errLoadFailed       = errors.New("story could not be loaded")
)

// storyAPI is everything the CLI needs from the story service.
type storyAPI interface {
	generator.JobAPI
	loader.StoryAPI
}

type appOptions struct {
	API      storyAPI
	Messages *messages.Printer
	Logger   *infra.Logger
	Clock    clockwork.Clock
	Interval time.Duration
	In       io.Reader
	Out      io.Writer
	Err      io.Writer
}

// app wires the generator and loader to the terminal. Generator callbacks may
// run on the poll goroutine, so they only hand events over to the command
// goroutine through channels.
type app struct {
	gen    *generator.Generator
	loader *loader.Loader
	term   *terminal
	nav    *navigator
	msgs   *messages.Printer
	logger *infra.Logger

	failures chan generator.Session
}

func newApp(opts appOptions) (*app, error) {
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	a := &app{
		term:     newTerminal(opts.In, opts.Out, opts.Messages),
		nav:      newNavigator(),
		msgs:     opts.Messages,
		logger:   logger,
		failures: make(chan generator.Session, 1),
	}

	gen, err := generator.New(generator.Options{
		API:       opts.API,
		Navigator: a.nav,
		Clock:     opts.Clock,
		Interval:  opts.Interval,
		Messages:  opts.Messages,
		Logger:    logger,
		OnChange:  a.sessionChanged,
	})
	if err != nil {
		return nil, err
	}
	a.gen = gen

	ld, err := loader.New(loader.Options{
		API:      opts.API,
		Messages: opts.Messages,
		Logger:   logger,
		OnChange: func(s loader.State) {
			if s.Loading {
				a.term.Loading(a.msgs.Sprintf(messages.Loading))
			}
		},
	})
	if err != nil {
		gen.Close()
		return nil, err
	}
	a.loader = ld
	return a, nil
}

func (a *app) Close() {
	a.gen.Close()
}

func (a *app) sessionChanged(s generator.Session) {
	if !s.Resolved() || s.Error == "" {
		return
	}
	select {
	case a.failures <- s:
	default:
	}
}

// generate runs the submit, poll and display cycle until a story is shown or
// the user gives up. An empty theme is collected from the terminal.
func (a *app) generate(ctx context.Context, theme string) error {
	for {
		if theme == "" {
			var ok bool
			if theme, ok = a.term.Prompt(a.msgs.Sprintf(messages.ThemePrompt)); !ok {
				return nil
			}
		}
		a.term.Loading(a.msgs.Sprintf(messages.Generating, a.msgs.Theme(theme)))
		if err := a.gen.Submit(ctx, theme); err != nil {
			a.logger.Debug().Err(err).Msg("storyctl: submit failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case id := <-a.nav.stories:
			again, err := a.display(ctx, id)
			if !again {
				return err
			}
		case s := <-a.failures:
			retry := false
			a.term.ShowError(domain.ErrorView{
				Message: s.Error,
				Action:  a.msgs.Sprintf(messages.TryAgain),
				OnAction: func() {
					a.gen.Reset()
					retry = true
				},
			})
			if !retry {
				return errGenerationFailed
			}
		}
		theme = ""
	}
}

// load shows a single story and continues with the generator if the user
// asks to start over.
func (a *app) load(ctx context.Context, id int64) error {
	again, err := a.display(ctx, id)
	if !again {
		return err
	}
	return a.generate(ctx, "")
}

// display loads and renders a story. A story that is already loaded is shown
// again without another request. It reports whether the user asked to go
// back to the generator.
func (a *app) display(ctx context.Context, id int64) (bool, error) {
	if _, err := a.loader.SetStoryID(ctx, id); err != nil {
		a.logger.Debug().Err(err).Int64("story_id", id).Msg("storyctl: story unavailable")
	}

	var err error
	st := a.loader.State()
	if st.Story != nil {
		a.term.Render(st.Story, a.nav.GoToStart)
	} else {
		a.logger.Debug().Int64("story_id", id).Bool("not_found", st.NotFound).Msg("storyctl: showing load error")
		a.term.ShowError(domain.ErrorView{
			Title:    a.msgs.Sprintf(messages.StoryNotFoundTitle),
			Message:  st.Error,
			Action:   a.msgs.Sprintf(messages.GoToGenerator),
			OnAction: a.nav.GoToStart,
		})
		err = errLoadFailed
	}

	select {
	case <-a.nav.starts:
		a.gen.Reset()
		return true, nil
	default:
		return false, err
	}
}

// navigator turns navigation requests into events for the command loop.
type navigator struct {
	stories chan int64
	starts  chan struct{}
}

func newNavigator() *navigator {
	return &navigator{stories: make(chan int64, 1), starts: make(chan struct{}, 1)}
}

func (n *navigator) ShowStory(id int64) {
	select {
	case n.stories <- id:
	default:
	}
}

func (n *navigator) GoToStart() {
	select {
	case n.starts <- struct{}{}:
	default:
	}
}

var _ domain.Navigator = (*navigator)(nil)
