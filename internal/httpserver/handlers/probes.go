package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/snooze/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snooze/internal/logger"
	"github.com/MrSnakeDoc/snooze/internal/version"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	version.Info
}

// Healthz reports liveness only; it never touches dependencies.
func Healthz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			UptimeSeconds: d.Now().Sub(d.StartTime).Seconds(),
			Info:          d.Build,
		})
	}
}

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// Readyz is ready once the session store answers. The remote API is not
// required: pages degrade to an error message without it.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.RedisProbe != nil {
			if err := probe(r.Context(), d.RedisProbe); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false, Error: "session store unreachable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}

type componentStatus struct {
	OK        bool    `json:"ok"`
	Mode      string  `json:"mode,omitempty"`
	Target    string  `json:"target,omitempty"`
	LatencyMS float64 `json:"latency_ms,omitempty"`
	Active    *int    `json:"active,omitempty"`
	Error     string  `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of each dependency.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"story_api": check(r.Context(), d.APIProbe, ""),
			"sessions":  check(r.Context(), d.RedisProbe, d.SessionMode),
		}
		api := components["story_api"]
		api.Target = d.APIURL
		components["story_api"] = api

		if sessions := components["sessions"]; sessions.OK && d.SessionCount != nil {
			n, err := d.SessionCount(r.Context())
			if err != nil {
				d.Logger.Warn("failed to count sessions", logger.Error(err))
			} else {
				sessions.Active = &n
				components["sessions"] = sessions
			}
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Components: components,
		})
	}
}

func overallStatus(components map[string]componentStatus) string {
	if !components["sessions"].OK {
		return "critical" // nobody can stay signed in
	}
	if !components["story_api"].OK {
		return "degraded"
	}
	return "ok"
}

func check(ctx context.Context, p deps.Probe, mode string) componentStatus {
	if p == nil {
		// Nothing to probe means an in-process component.
		return componentStatus{OK: true, Mode: mode}
	}

	start := time.Now()
	err := probe(ctx, p)
	status := componentStatus{
		OK:        err == nil,
		Mode:      mode,
		LatencyMS: float64(time.Since(start).Microseconds()) / 1000,
	}
	if err != nil {
		status.Error = err.Error()
	}
	return status
}

func probe(ctx context.Context, p deps.Probe) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
