// Package context holds timeout helpers shared by connection checks.
package context

import (
	"context"
	"time"
)

// DefaultPingTimeout bounds a single connectivity check.
const DefaultPingTimeout = 5 * time.Second

// WithPingTimeout derives a context from parent that expires after DefaultPingTimeout.
func WithPingTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultPingTimeout)
}
