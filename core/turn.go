package core

import "time"

// Turn is one completed conversational exchange: exactly one user message and
// one assistant message, plus the sources surfaced by tool executions during
// that exchange. Turns are immutable once appended to a session.
type Turn struct {
	UserMessage      string    `json:"user_message"`
	AssistantMessage string    `json:"assistant_message"`
	Sources          []Source  `json:"sources,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
