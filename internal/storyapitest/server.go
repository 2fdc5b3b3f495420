// Package storyapitest provides an in-process fake of the story generation API
// with scriptable job progress, for tests.
package storyapitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Reply scripts one GET /jobs/{id} response.
type Reply struct {
	// Code is the HTTP status; zero means 200.
	Code    int
	Status  string
	StoryID int64
	Error   string
}

// Processing, Completed and NotFound are shorthands for common replies.
var (
	Processing = Reply{Status: "processing"}
	NotFound   = Reply{Code: http.StatusNotFound}
)

// Completed returns a reply reporting the finished story.
func Completed(storyID int64) Reply {
	return Reply{Status: "completed", StoryID: storyID}
}

type job struct {
	theme   string
	replies []Reply
	checks  int
}

// Server is a fake story API backed by httptest.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	createCode    int
	initialStatus string
	script        []Reply
	jobs          map[string]*job
	order         []string
	stories       map[int64]json.RawMessage
	storyCodes    map[int64]int
	requestIDs    []string
}

// NewServer starts a fake API. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		initialStatus: "pending",
		jobs:          map[string]*job{},
		stories:       map[int64]json.RawMessage{},
		storyCodes:    map[int64]int{},
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer, s.recordRequestID)

	r.Post("/stories/create", s.createJob)
	r.Get("/jobs/{jobID}", s.getJob)
	r.Get("/stories/{storyID}/complete", s.getCompleteStory)
	return r
}

// FailCreate makes subsequent create calls answer with code.
func (s *Server) FailCreate(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCode = code
}

// ScriptJob sets the initial status and the status replies for jobs created
// afterwards. The last reply repeats once the script is exhausted.
func (s *Server) ScriptJob(initialStatus string, replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialStatus = initialStatus
	s.script = append([]Reply(nil), replies...)
}

// AddStory registers a complete story payload.
func (s *Server) AddStory(id int64, payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stories[id] = json.RawMessage(payload)
}

// FailStory makes GET /stories/{id}/complete answer with code.
func (s *Server) FailStory(id int64, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storyCodes[id] = code
}

// JobIDs returns the ids of created jobs in creation order.
func (s *Server) JobIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Theme returns the theme a job was created with.
func (s *Server) Theme(jobID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[jobID]; ok {
		return j.theme
	}
	return ""
}

// Checks returns how many status checks a job received.
func (s *Server) Checks(jobID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[jobID]; ok {
		return j.checks
	}
	return 0
}

// RequestIDs returns the X-Request-ID of every request received.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

func (s *Server) recordRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requestIDs = append(s.requestIDs, r.Header.Get("X-Request-ID"))
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Theme) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "theme is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createCode != 0 {
		writeJSON(w, s.createCode, map[string]string{"detail": "create failed"})
		return
	}
	id := uuid.NewString()
	s.jobs[id] = &job{theme: req.Theme, replies: append([]Reply(nil), s.script...)}
	s.order = append(s.order, id)
	writeJSON(w, http.StatusOK, map[string]string{"job_id": id, "status": s.initialStatus})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")

	s.mu.Lock()
	j, ok := s.jobs[id]
	if !ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Job not found"})
		return
	}
	reply := Processing
	if n := len(j.replies); n > 0 {
		idx := j.checks
		if idx >= n {
			idx = n - 1
		}
		reply = j.replies[idx]
	}
	j.checks++
	s.mu.Unlock()

	if reply.Code != 0 && reply.Code != http.StatusOK {
		writeJSON(w, reply.Code, map[string]string{"detail": http.StatusText(reply.Code)})
		return
	}
	body := map[string]any{"job_id": id, "status": reply.Status}
	if reply.StoryID != 0 {
		body["story_id"] = reply.StoryID
	}
	if reply.Error != "" {
		body["error"] = reply.Error
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) getCompleteStory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "storyID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid story id"})
		return
	}

	s.mu.Lock()
	code := s.storyCodes[id]
	payload, ok := s.stories[id]
	s.mu.Unlock()

	switch {
	case code != 0:
		writeJSON(w, code, map[string]string{"detail": http.StatusText(code)})
	case !ok:
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Story not found"})
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
