package ai

import "errors"

// ErrUnavailable marks a provider that is not configured or cannot serve the
// request; group chains treat it like any other failure and move on.
var ErrUnavailable = errors.New("ai provider unavailable")
