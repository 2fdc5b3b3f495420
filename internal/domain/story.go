package domain

import (
	"encoding/json"
	"strings"
)

// Story is a fully assembled story as returned by the server. The content is
// opaque to the client and only handed to the display renderer.
type Story struct {
	ID      int64
	Content json.RawMessage
}

// Title returns the best-effort "title" field of the payload, or "" when the
// payload has none.
func (s *Story) Title() string {
	if s == nil || len(s.Content) == 0 {
		return ""
	}
	var probe struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(s.Content, &probe); err != nil {
		return ""
	}
	return strings.TrimSpace(probe.Title)
}
