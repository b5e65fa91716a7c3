package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
	healthStatusNoToken      = "no token"
)

// HealthChecker serves liveness and readiness probes for the MCP server.
type HealthChecker struct {
	ready     atomic.Bool
	sc        *ServerContext
	startTime time.Time
}

// NewHealthChecker creates a HealthChecker that starts out ready. sc may be
// nil, in which case only the ready flag is checked.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{sc: sc, startTime: time.Now()}
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness state of the server.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns whether the server is ready to receive traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// readinessCheck reports the failure status for name, or "" when it passes.
type readinessCheck struct {
	name  string
	check func() string
}

func (h *HealthChecker) readinessChecks() []readinessCheck {
	return []readinessCheck{
		{name: "ready", check: func() string {
			if !h.ready.Load() {
				return healthStatusNotReady
			}
			return ""
		}},
		{name: "shutdown", check: func() string {
			if h.sc != nil && h.sc.IsShutdown() {
				return healthStatusShuttingDown
			}
			return ""
		}},
		// Every Classroom tool needs a token for the default account.
		{name: "credentials", check: func() string {
			if h.sc != nil && !h.sc.HasCredentials(h.sc.DefaultAccount()) {
				return healthStatusNoToken
			}
			return ""
		}},
	}
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed.
type DetailedHealthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Account  string `json:"account,omitempty"`
	Feedback bool   `json:"feedback"`
	Email    bool   `json:"email"`
}

// LivenessHandler only reports that the process is serving requests.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler fails with 503 unless every readiness check passes.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{Status: healthStatusOK, Checks: map[string]string{}}
		code := http.StatusOK
		for _, c := range h.readinessChecks() {
			status := c.check()
			if status == "" {
				resp.Checks[c.name] = healthStatusOK
				continue
			}
			resp.Checks[c.name] = status
			resp.Status = healthStatusNotReady
			code = http.StatusServiceUnavailable
		}
		writeHealth(w, code, resp)
	})
}

// DetailedHealthHandler adds uptime and the enabled pipeline stages. It does
// not consider credentials, so a server awaiting `auth` still reports ok.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := DetailedHealthResponse{
			Status: healthStatusOK,
			Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
		}
		if h.sc != nil {
			cfg := h.sc.Config()
			resp.Account = h.sc.DefaultAccount()
			resp.Feedback = h.sc.feedback != nil
			resp.Email = cfg.Email.Enabled
		}

		code := http.StatusOK
		switch {
		case !h.ready.Load():
			resp.Status = healthStatusNotReady
			code = http.StatusServiceUnavailable
		case h.sc != nil && h.sc.IsShutdown():
			resp.Status = healthStatusShuttingDown
			code = http.StatusServiceUnavailable
		}
		writeHealth(w, code, resp)
	})
}

// RegisterHealthEndpoints registers /healthz, /readyz and /healthz/detailed.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

func writeHealth(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
