// Package health tracks component status for the health endpoint.
package health

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Status represents the health status of a component
type Status string

const (
	// StatusUp indicates a component is working correctly
	StatusUp Status = "up"
	// StatusDown indicates a component is not working
	StatusDown Status = "down"
	// StatusDegraded indicates a component is working but with reduced functionality
	StatusDegraded Status = "degraded"
)

// Component represents a system component that can be health-checked
type Component struct {
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	Description string    `json:"description,omitempty"`
	LastChecked time.Time `json:"last_checked"`
}

// Check reports the current status of one component.
type Check func() (Status, string)

// Checker runs registered component checks on demand.
type Checker struct {
	mu     sync.Mutex
	checks map[string]Check
	order  []string
}

// NewChecker creates an empty checker.
func NewChecker() *Checker {
	return &Checker{checks: make(map[string]Check)}
}

// Register adds a component check under the given name.
func (c *Checker) Register(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.checks[name]; !ok {
		c.order = append(c.order, name)
	}
	c.checks[name] = check
}

// Run evaluates every check and returns the components plus the overall
// status: down if any component is down, degraded if any is degraded.
func (c *Checker) Run() (Status, []Component) {
	c.mu.Lock()
	defer c.mu.Unlock()

	overall := StatusUp
	components := make([]Component, 0, len(c.order))
	for _, name := range c.order {
		status, description := c.checks[name]()
		components = append(components, Component{
			Name:        name,
			Status:      status,
			Description: description,
			LastChecked: time.Now(),
		})
		switch status {
		case StatusDown:
			overall = StatusDown
		case StatusDegraded:
			if overall == StatusUp {
				overall = StatusDegraded
			}
		}
	}

	return overall, components
}

// Handler returns a gin handler rendering the checker state.
func (c *Checker) Handler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		overall, components := c.Run()

		code := http.StatusOK
		if overall == StatusDown {
			code = http.StatusServiceUnavailable
		}

		ctx.JSON(code, gin.H{
			"status":     overall,
			"components": components,
			"time":       time.Now().Format(time.RFC3339),
		})
	}
}
