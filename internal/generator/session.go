package generator

import "storyclient/internal/domain"

// Session is the client-owned state of one story generation attempt. The zero
// value is the initial, idle session.
type Session struct {
	Theme  string
	JobID  string
	Status domain.JobStatus
	Error  string
	Busy   bool
}

// Polling reports whether the recurring status check should be running: a job
// exists and has not resolved yet. Pending, not-yet-visible and unknown states
// all keep the check going.
func (s Session) Polling() bool {
	return s.Busy && s.JobID != ""
}

// AcceptsInput reports whether a new theme may be collected.
func (s Session) AcceptsInput() bool {
	return s.JobID == "" && s.Error == "" && !s.Busy
}

// Resolved reports whether the session reached a terminal outcome.
func (s Session) Resolved() bool {
	return !s.Busy && (s.Error != "" || s.Status == domain.JobStatusCompleted)
}
