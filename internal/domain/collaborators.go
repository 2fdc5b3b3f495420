package domain

// Navigator moves the user between the generator and the story view.
type Navigator interface {
	// ShowStory switches to display mode for the given story.
	ShowStory(storyID int64)
	// GoToStart returns to the theme input.
	GoToStart()
}

// Renderer presents the client's views. onNewStory starts over.
type Renderer interface {
	Render(story *Story, onNewStory func())
	Loading(message string)
	ShowError(view ErrorView)
}

// ErrorView is an error screen with a single recovery action.
type ErrorView struct {
	Title    string
	Message  string
	Action   string
	OnAction func()
}
