package domain

// JobStatus enumerates the server-reported lifecycle states of a story job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether no further status change is expected.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job is a read-only snapshot of a server-side story generation job.
// Unknown statuses are kept verbatim and treated as non-terminal.
type Job struct {
	ID      string
	Status  JobStatus
	Error   string
	StoryID *int64
}

// HasStory reports whether the snapshot carries a resulting story identifier.
// Story ids are positive; a zero id counts as absent.
func (j *Job) HasStory() bool {
	return j != nil && j.StoryID != nil && *j.StoryID > 0
}
