package videos

import "errors"

var (
	// ErrProberUnavailable indicates no duration prober is configured.
	ErrProberUnavailable = errors.New("video duration prober unavailable")
)
