package httpserver

import "time"

// DefaultShutdownTimeout applies when no shutdown timeout is configured.
const DefaultShutdownTimeout = 10 * time.Second
