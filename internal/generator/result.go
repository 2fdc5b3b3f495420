package generator

import (
	"errors"

	"storyclient/internal/domain"
)

type checkKind int

const (
	// checkPending: the job is still running (or in an unknown state).
	checkPending checkKind = iota
	checkCompleted
	checkFailed
	// checkMiss: the job is not visible yet.
	checkMiss
	// checkFatal: the status request itself failed.
	checkFatal
)

func (k checkKind) String() string {
	switch k {
	case checkPending:
		return "pending"
	case checkCompleted:
		return "completed"
	case checkFailed:
		return "failed"
	case checkMiss:
		return "miss"
	case checkFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// checkResult is the outcome of one status check. An empty reason means the
// server supplied no text.
type checkResult struct {
	kind    checkKind
	status  domain.JobStatus
	storyID int64
	reason  string
}

func classify(job *domain.Job, err error) checkResult {
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return checkResult{kind: checkMiss}
		}
		return checkResult{kind: checkFatal, reason: err.Error()}
	}
	if job == nil {
		return checkResult{kind: checkFatal, reason: domain.ErrInvalidResponse.Error()}
	}
	switch {
	case job.Status == domain.JobStatusCompleted && job.HasStory():
		return checkResult{kind: checkCompleted, status: job.Status, storyID: *job.StoryID}
	case job.Status == domain.JobStatusFailed || job.Error != "":
		return checkResult{kind: checkFailed, status: job.Status, reason: job.Error}
	default:
		return checkResult{kind: checkPending, status: job.Status}
	}
}
