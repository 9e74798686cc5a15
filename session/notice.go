package session

import (
	"errors"

	"omnibot/dispatch"
)

// Notice is a transient toast shown to the user.
type Notice struct {
	Level       string `json:"level"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

const (
	LevelError = "error"
	LevelInfo  = "info"
)

var (
	QueryFailed = Notice{Level: LevelError, Title: "Error", Description: "Failed to query AI models"}
	Stopped     = Notice{Level: LevelInfo, Title: "Query Stopped", Description: "AI query has been stopped"}
)

// NoticeFor maps a rejected submit to the notice the user sees.
func NoticeFor(err error) Notice {
	desc := "Failed to query AI models"
	switch {
	case errors.Is(err, dispatch.ErrReadinessFailed):
		desc = "Failed to initialize the model gateway. Please refresh the page."
	case errors.Is(err, dispatch.ErrNotReady):
		desc = "The model gateway is not ready yet. Please wait..."
	case errors.Is(err, dispatch.ErrEmptyPrompt):
		desc = "Please enter a prompt"
	case errors.Is(err, dispatch.ErrNoSelection):
		desc = "Please select at least one AI model"
	case errors.Is(err, ErrNoPrompt):
		desc = "There is no previous query to refresh"
	case errors.Is(err, ErrBusy):
		desc = "A query is already running"
	case errors.Is(err, ErrUnknownCard):
		desc = "That response is no longer shown"
	case errors.Is(err, ErrClosed):
		desc = "This session has ended. Please refresh the page."
	}
	return Notice{Level: LevelError, Title: "Error", Description: desc}
}
