package generator

import (
	"errors"
	"fmt"
	"testing"

	"storyclient/internal/domain"
)

func TestClassify(t *testing.T) {
	story := int64(42)
	zero := int64(0)
	tests := []struct {
		name string
		job  *domain.Job
		err  error
		want checkResult
	}{
		{
			name: "wrapped not found is a miss",
			err:  fmt.Errorf("get job: %w", domain.ErrNotFound),
			want: checkResult{kind: checkMiss},
		},
		{
			name: "transport failure is fatal",
			err:  errors.New("connection refused"),
			want: checkResult{kind: checkFatal, reason: "connection refused"},
		},
		{
			name: "nil job is fatal",
			want: checkResult{kind: checkFatal, reason: domain.ErrInvalidResponse.Error()},
		},
		{
			name: "completed with story",
			job:  &domain.Job{Status: domain.JobStatusCompleted, StoryID: &story},
			want: checkResult{kind: checkCompleted, status: domain.JobStatusCompleted, storyID: 42},
		},
		{
			name: "completed without story keeps waiting",
			job:  &domain.Job{Status: domain.JobStatusCompleted},
			want: checkResult{kind: checkPending, status: domain.JobStatusCompleted},
		},
		{
			name: "completed with story id 0 keeps waiting",
			job:  &domain.Job{Status: domain.JobStatusCompleted, StoryID: &zero},
			want: checkResult{kind: checkPending, status: domain.JobStatusCompleted},
		},
		{
			name: "failed without reason",
			job:  &domain.Job{Status: domain.JobStatusFailed},
			want: checkResult{kind: checkFailed, status: domain.JobStatusFailed},
		},
		{
			name: "error field wins over processing",
			job:  &domain.Job{Status: domain.JobStatusProcessing, Error: "boom"},
			want: checkResult{kind: checkFailed, status: domain.JobStatusProcessing, reason: "boom"},
		},
		{
			name: "unknown status is pending",
			job:  &domain.Job{Status: "queued"},
			want: checkResult{kind: checkPending, status: "queued"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.job, tt.err); got != tt.want {
				t.Fatalf("classify = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSessionPredicates(t *testing.T) {
	tests := []struct {
		name     string
		s        Session
		polling  bool
		input    bool
		resolved bool
	}{
		{"zero", Session{}, false, true, false},
		{"creating", Session{Theme: "x", Busy: true}, false, false, false},
		{"pending", Session{JobID: "J", Status: domain.JobStatusPending, Busy: true}, true, false, false},
		{"not visible yet", Session{JobID: "J", Busy: true}, true, false, false},
		{"completed without story", Session{JobID: "J", Status: domain.JobStatusCompleted, Busy: true}, true, false, false},
		{"processing", Session{JobID: "J", Status: domain.JobStatusProcessing, Busy: true}, true, false, false},
		{"completed", Session{JobID: "J", Status: domain.JobStatusCompleted}, false, false, true},
		{"create failed", Session{Error: "e"}, false, false, true},
		{"fatal while processing", Session{JobID: "J", Status: domain.JobStatusProcessing, Error: "e"}, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Polling(); got != tt.polling {
				t.Errorf("Polling = %v, want %v", got, tt.polling)
			}
			if got := tt.s.AcceptsInput(); got != tt.input {
				t.Errorf("AcceptsInput = %v, want %v", got, tt.input)
			}
			if got := tt.s.Resolved(); got != tt.resolved {
				t.Errorf("Resolved = %v, want %v", got, tt.resolved)
			}
		})
	}
}
