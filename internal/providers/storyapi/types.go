package storyapi

type createJobRequest struct {
	Theme string `json:"theme"`
}

type createJobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

type jobResponse struct {
	Status  string `json:"status"`
	StoryID *int64 `json:"story_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

type errorResponse struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}
