package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"storyclient/internal/domain"
	"storyclient/internal/messages"
	"storyclient/internal/providers/storyapi"
	"storyclient/internal/storyapitest"
)

type stubAPI struct {
	stories map[int64]*domain.Story
	errs    map[int64]error
	calls   []int64
}

func (s *stubAPI) GetCompleteStory(_ context.Context, id int64) (*domain.Story, error) {
	s.calls = append(s.calls, id)
	if err := s.errs[id]; err != nil {
		return nil, err
	}
	return s.stories[id], nil
}

func newStory(id int64, title string) *domain.Story {
	return &domain.Story{ID: id, Content: json.RawMessage(fmt.Sprintf(`{"title":%q}`, title))}
}

func recorder(states *[]State) func(State) {
	return func(s State) { *states = append(*states, s) }
}

func TestNewRequiresAPI(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("expected error without api")
	}
}

func TestLoad(t *testing.T) {
	story := newStory(42, "Dragons")
	tests := []struct {
		name     string
		id       int64
		err      error
		want     State
		notFound bool
	}{
		{
			name: "success",
			id:   42,
			want: State{StoryID: 42, Story: story},
		},
		{
			name:     "not found",
			id:       99,
			err:      &storyapi.StatusError{Code: http.StatusNotFound},
			want:     State{StoryID: 99, Error: "Story is not found.", NotFound: true},
			notFound: true,
		},
		{
			name: "server error",
			id:   7,
			err:  &storyapi.StatusError{Code: http.StatusInternalServerError},
			want: State{StoryID: 7, Error: "Failed to load story"},
		},
		{
			name: "transport error",
			id:   8,
			err:  errors.New("connection refused"),
			want: State{StoryID: 8, Error: "Failed to load story"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &stubAPI{
				stories: map[int64]*domain.Story{42: story},
				errs:    map[int64]error{tt.id: tt.err},
			}
			var states []State
			l, err := New(Options{API: api, OnChange: recorder(&states)})
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			got, err := l.Load(context.Background(), tt.id)
			if tt.err == nil {
				if err != nil || got != story {
					t.Fatalf("Load = %v, %v", got, err)
				}
			} else {
				if err == nil || got != nil {
					t.Fatalf("Load = %v, %v; want error", got, err)
				}
				if errors.Is(err, domain.ErrNotFound) != tt.notFound {
					t.Fatalf("err = %v, not found = %v", err, tt.notFound)
				}
			}

			if diff := cmp.Diff(tt.want, l.State()); diff != "" {
				t.Fatalf("state mismatch (-want +got):\n%s", diff)
			}
			if len(states) != 2 || !states[0].Loading || states[1].Loading {
				t.Fatalf("want loading on then off exactly once, got %+v", states)
			}
		})
	}
}

func TestLoadClearsPreviousError(t *testing.T) {
	api := &stubAPI{
		stories: map[int64]*domain.Story{2: newStory(2, "Owls")},
		errs:    map[int64]error{1: &storyapi.StatusError{Code: http.StatusNotFound}},
	}
	l, _ := New(Options{API: api})

	_, _ = l.Load(context.Background(), 1)
	if !l.State().NotFound {
		t.Fatalf("expected not found state")
	}
	if _, err := l.Load(context.Background(), 2); err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := l.State()
	if s.Error != "" || s.NotFound || s.Story == nil || s.Story.Title() != "Owls" {
		t.Fatalf("unexpected state: %+v", s)
	}
}

func TestSetStoryIDSkipsSameID(t *testing.T) {
	api := &stubAPI{stories: map[int64]*domain.Story{5: newStory(5, "Bees"), 6: newStory(6, "Ants")}}
	l, _ := New(Options{API: api})
	ctx := context.Background()

	if _, err := l.SetStoryID(ctx, 5); err != nil {
		t.Fatalf("SetStoryID: %v", err)
	}
	if _, err := l.SetStoryID(ctx, 5); err != nil {
		t.Fatalf("SetStoryID: %v", err)
	}
	if _, err := l.SetStoryID(ctx, 6); err != nil {
		t.Fatalf("SetStoryID: %v", err)
	}
	if diff := cmp.Diff([]int64{5, 6}, api.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

// blockingAPI holds every request until the test releases it.
type blockingAPI struct {
	started chan int64
	release map[int64]chan struct{}
	errs    map[int64]error
}

func (b *blockingAPI) GetCompleteStory(_ context.Context, id int64) (*domain.Story, error) {
	b.started <- id
	<-b.release[id]
	if err := b.errs[id]; err != nil {
		return nil, err
	}
	return newStory(id, "late"), nil
}

func TestNewerLoadSupersedesOlder(t *testing.T) {
	api := &blockingAPI{
		started: make(chan int64, 2),
		release: map[int64]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})},
		errs:    map[int64]error{1: errors.New("slow failure")},
	}
	l, _ := New(Options{API: api})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = l.Load(context.Background(), 1)
	}()
	<-api.started

	close(api.release[2])
	if _, err := l.Load(context.Background(), 2); err != nil {
		t.Fatalf("Load: %v", err)
	}
	<-api.started

	close(api.release[1])
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("older load never returned")
	}

	s := l.State()
	if s.StoryID != 2 || s.Error != "" || s.Loading || s.Story == nil {
		t.Fatalf("older load overwrote newer state: %+v", s)
	}
}

func TestLocalizedMessages(t *testing.T) {
	api := &stubAPI{errs: map[int64]error{1: &storyapi.StatusError{Code: http.StatusNotFound}}}
	l, _ := New(Options{API: api, Messages: messages.NewPrinter("id")})

	_, _ = l.Load(context.Background(), 1)
	if got := l.State().Error; got != "Cerita tidak ditemukan." {
		t.Fatalf("error = %q", got)
	}
}

func TestLoadAgainstFakeAPI(t *testing.T) {
	server := storyapitest.NewServer()
	defer server.Close()
	server.AddStory(42, `{"title":"Sky Whales"}`)
	server.FailStory(500, http.StatusInternalServerError)

	client, err := storyapi.NewClient(storyapi.Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	l, _ := New(Options{API: client})
	ctx := context.Background()

	story, err := l.Load(ctx, 42)
	if err != nil || story.Title() != "Sky Whales" {
		t.Fatalf("Load(42) = %v, %v", story, err)
	}

	_, _ = l.Load(ctx, 99)
	if s := l.State(); !s.NotFound || s.Error != "Story is not found." || s.Loading {
		t.Fatalf("unexpected not-found state: %+v", s)
	}

	_, _ = l.Load(ctx, 500)
	if s := l.State(); s.NotFound || s.Error != "Failed to load story" || s.Loading {
		t.Fatalf("unexpected failure state: %+v", s)
	}
}
