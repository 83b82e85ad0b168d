// Package lifecycle holds shared constants for component startup and shutdown.
package lifecycle

import "time"

// DefaultTimeout bounds lifecycle operations such as graceful shutdown and
// initial connectivity checks.
const DefaultTimeout = 10 * time.Second
