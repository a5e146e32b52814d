// Package flash carries one-shot notifications from a handler to the next
// rendered page.  Messages added during a request are visible to a page
// rendered in that same request; otherwise they survive one redirect.
package flash

import "github.com/labstack/echo/v4"

// Categories double as the CSS alert classes used by the layout.
const (
	CategorySuccess = "success"
	CategoryError   = "danger"
	CategoryInfo    = "info"
)

// Message is a single flash notification.
type Message struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// Success builds a green confirmation message.
func Success(text string) Message { return Message{Category: CategorySuccess, Text: text} }

// Error builds a red failure message.
func Error(text string) Message { return Message{Category: CategoryError, Text: text} }

// Info builds a neutral message.
func Info(text string) Message { return Message{Category: CategoryInfo, Text: text} }

// Store keeps pending messages between requests.
type Store interface {
	// Add queues m for the current or next rendered page.
	Add(c echo.Context, m Message) error
	// Pop returns and clears every pending message.
	Pop(c echo.Context) []Message
}
