package tui

import "errors"

// ErrMissingRepository is returned when the image repository is not provided.
var ErrMissingRepository = errors.New("tui: image repository is required")
