// Package health runs named dependency checks and reports them over HTTP.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/content-extraction/infrastructure/gin"
)

// Status is the aggregate result of all checks.
type Status string

const (
	// StatusHealthy means every check passed.
	StatusHealthy Status = "healthy"
	// StatusUnhealthy means at least one check failed.
	StatusUnhealthy Status = "unhealthy"
)

// DefaultTimeout bounds one full run of the checks.
const DefaultTimeout = 5 * time.Second

// CheckFunc returns nil when the dependency is usable.
type CheckFunc func(ctx context.Context) error

type namedCheck struct {
	name string
	fn   CheckFunc
}

// Checker holds checks in registration order.
type Checker struct {
	mu      sync.RWMutex
	checks  []namedCheck
	timeout time.Duration
}

// NewChecker creates an empty checker.
func NewChecker() *Checker {
	return &Checker{timeout: DefaultTimeout}
}

// Register adds a check. Registering a name twice replaces the earlier check.
func (c *Checker) Register(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.checks {
		if c.checks[i].name == name {
			c.checks[i].fn = fn
			return
		}
	}
	c.checks = append(c.checks, namedCheck{name: name, fn: fn})
}

// Check runs every check sequentially and returns "ok" or "error: ..." per name.
func (c *Checker) Check(ctx context.Context) (Status, map[string]string) {
	c.mu.RLock()
	checks := append([]namedCheck(nil), c.checks...)
	c.mu.RUnlock()

	status := StatusHealthy
	results := make(map[string]string, len(checks))
	for _, check := range checks {
		if err := check.fn(ctx); err != nil {
			results[check.name] = "error: " + err.Error()
			status = StatusUnhealthy
			continue
		}
		results[check.name] = "ok"
	}
	return status, results
}

// GinHandler responds 200 when healthy and 503 otherwise.
func (c *Checker) GinHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), c.timeout)
		defer cancel()

		status, results := c.Check(checkCtx)

		code := http.StatusOK
		if status != StatusHealthy {
			code = http.StatusServiceUnavailable
		}

		ctx.JSON(code, gin.H{
			"status":    status,
			"checks":    results,
			"timestamp": infragin.Timestamp(time.Now()),
		})
	}
}
