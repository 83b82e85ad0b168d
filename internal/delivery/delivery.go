// Package delivery defines the transport-facing contracts of the application.
package delivery

import "context"

// Delivery is a transport server that runs until stopped via its fx lifecycle.
type Delivery interface {
	Serve(ctx context.Context) error
}
