package ui

import (
	"golang.org/x/net/html"

	"github.com/aethra/marketconsole/internal/view"
)

// Level is the severity of a toast
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Toast renders one notification
func Toast(message string, level Level) *html.Node {
	switch level {
	case LevelSuccess, LevelError, LevelInfo:
	default:
		level = LevelInfo
	}
	role := "status"
	if level == LevelError {
		role = "alert"
	}
	return view.El("div",
		view.Class("toast", "toast-"+string(level)),
		view.Attr("role", role),
		view.Content(message),
	)
}
