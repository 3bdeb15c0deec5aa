// Package health exposes liveness and readiness HTTP endpoints backed by
// named dependency checks.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const checkTimeout = 5 * time.Second

// Check probes a single dependency and returns nil when it is healthy.
type Check func(ctx context.Context) error

// Status of a component or of the service as a whole.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

type result struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

type report struct {
	Status    Status            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]result `json:"checks,omitempty"`
}

// Registry holds named dependency checks.
type Registry struct {
	mu     sync.RWMutex
	checks map[string]Check
}

// NewRegistry returns an empty check registry.
func NewRegistry() *Registry {
	return &Registry{checks: make(map[string]Check)}
}

// Add registers a named check. Re-adding a name replaces the previous check.
func (reg *Registry) Add(name string, c Check) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.checks[name] = c
}

// Liveness always reports up while the process can serve requests.
func (reg *Registry) Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeReport(w, http.StatusOK, report{Status: StatusUp, Timestamp: time.Now().UTC()})
	}
}

// Readiness runs every registered check and reports 503 if any fails.
func (reg *Registry) Readiness() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		reg.mu.RLock()
		checks := make(map[string]Check, len(reg.checks))
		for name, c := range reg.checks {
			checks[name] = c
		}
		reg.mu.RUnlock()

		rep := report{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
			Checks:    make(map[string]result, len(checks)),
		}
		for name, c := range checks {
			if err := c(ctx); err != nil {
				rep.Checks[name] = result{Status: StatusDown, Error: err.Error()}
				rep.Status = StatusDown
			} else {
				rep.Checks[name] = result{Status: StatusUp}
			}
		}

		status := http.StatusOK
		if rep.Status == StatusDown {
			status = http.StatusServiceUnavailable
		}
		writeReport(w, status, rep)
	}
}

func writeReport(w http.ResponseWriter, status int, rep report) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rep)
}
