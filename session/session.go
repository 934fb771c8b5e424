// Package session manages bounded per-session conversational history. Each
// session owns an ordered sequence of turns; only the most recent turns
// within the configured window are retained and supplied as model context.
package session

import (
	"context"

	"github.com/coursechat/coursechat/core"
)

// DefaultWindow is the default number of retained turns per session.
const DefaultWindow = 2

// Store persists per-session turn history. Implementations must serialize
// appends on the same session id, keep sessions independent of each other,
// and make Append atomic: either the full turn is recorded or nothing is.
type Store interface {
	// Create allocates a new unique session id.
	Create() string

	// History returns the retained turns of a session, oldest first. An
	// unknown or empty session id yields an empty history, not an error.
	History(ctx context.Context, sessionID string) ([]core.Turn, error)

	// Append records a completed turn, evicting the oldest turn once the
	// window is exceeded.
	Append(ctx context.Context, sessionID string, turn core.Turn) error
}
