package services

import (
	"context"
	"time"
)

// adapterContext bounds a single call to an external collaborator.
// A non-positive timeout leaves only the parent's deadline.
func adapterContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
