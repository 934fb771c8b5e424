package core

import "errors"

// ErrStoreUnavailable signals that the vector index or its embedding backend
// cannot be reached. It is fatal for the current query: callers must abort the
// turn without appending to session history rather than degrade to unranked
// or fabricated results.
var ErrStoreUnavailable = errors.New("vector store unavailable")
