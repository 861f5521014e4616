package handlers

import (
	"context"
	"net/http"
	"sort"
	"strings"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler reports liveness and readiness. Readiness fails while any
// provider credential is missing or a configured dependency is down.
type HealthHandler struct {
	missing []string
	deps    map[string]Pinger
}

func NewHealthHandler(missing []string, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{missing: missing, deps: deps}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}

	if len(h.missing) > 0 {
		names := append([]string(nil), h.missing...)
		sort.Strings(names)
		checks["credentials"] = "missing credential: " + strings.Join(names, ", ")
	} else {
		checks["credentials"] = "ok"
	}

	for name, dep := range h.deps {
		if dep == nil {
			continue
		}
		if err := dep.Ping(r.Context()); err != nil {
			checks[name] = "unhealthy: " + err.Error()
		} else {
			checks[name] = "ok"
		}
	}

	status := http.StatusOK
	for _, v := range checks {
		if v != "ok" {
			status = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, status, map[string]interface{}{"status": statusStr(status), "checks": checks})
}

func statusStr(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "unhealthy"
}
