package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type componentStatus struct {
	Component string `json:"component"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components []componentStatus `json:"components"`
}

const healthCheckTimeout = 5 * time.Second

// Health pings the upstream platform and the rate-limit store concurrently
// and reports degraded with 503 if any component fails.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	var (
		mu         sync.Mutex
		components []componentStatus
	)
	record := func(component string, err error) {
		status := componentStatus{Component: component, Status: "ok"}
		if err != nil {
			status.Status = "degraded"
			status.Error = err.Error()
		}
		mu.Lock()
		components = append(components, status)
		mu.Unlock()
	}

	group, groupCtx := errgroup.WithContext(ctx)
	if pinger, ok := h.Platform.(Pinger); ok {
		group.Go(func() error {
			record("platform", pinger.Ping(groupCtx))
			return nil
		})
	}
	if h.RateLimitStore != nil {
		group.Go(func() error {
			record("rate_limit_store", h.RateLimitStore.Ping(groupCtx))
			return nil
		})
	}
	_ = group.Wait()

	overall := "ok"
	code := http.StatusOK
	for _, component := range components {
		if component.Status != "ok" {
			overall = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, healthResponse{Status: overall, Components: components})
}
