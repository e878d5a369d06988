package handlers

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/config"
)

// ServiceName identifies this service in /ping responses.
const ServiceName = "status-digest"

// StatusResponse is returned by / and /test.
type StatusResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
	ServerURL string `json:"serverUrl,omitempty"`
}

// Integrations says which outside systems this instance is set up to reach.
// It never carries credentials.
type Integrations struct {
	StoreDriver string `json:"store_driver"`
	Store       bool   `json:"store_configured"`
	AIProvider  string `json:"ai_provider,omitempty"`
	AI          bool   `json:"ai_configured"`
	Webhook     bool   `json:"webhook_configured"`
}

// PingResponse describes the running build and its integrations.
type PingResponse struct {
	Status       string       `json:"status"`
	Version      string       `json:"version"`
	Service      string       `json:"service"`
	GoVersion    string       `json:"go_version"`
	Hostname     string       `json:"hostname"`
	Environment  string       `json:"environment"`
	Integrations Integrations `json:"integrations"`
}

// HealthHandler serves liveness and diagnostics.
type HealthHandler struct {
	cfg      *config.Config
	now      func() time.Time
	hostname func() (string, error)
	logger   *zap.Logger
}

func NewHealthHandler(cfg *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, now: time.Now, hostname: os.Hostname, logger: logger}
}

func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /test", h.Test)
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/ping", h.Ping)
}

// Root handles GET /.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "root", StatusResponse{Status: "ok", Message: "Server is running"})
}

// Test handles GET /test and echoes the configured public URL.
func (h *HealthHandler) Test(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "test", StatusResponse{
		Status:    "running",
		Message:   "Server is up and running!",
		Timestamp: h.now().UTC().Format(time.RFC3339Nano),
		ServerURL: h.cfg.ServerURL,
	})
}

// Health is the container probe.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ping reports build and integration status.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := h.hostname()
	if err != nil {
		h.logger.Warn("Hostname lookup failed", zap.Error(err))
		hostname = "unknown"
	}

	cfg := h.cfg
	h.respond(w, "ping", PingResponse{
		Status:      "ok",
		Version:     cfg.Version,
		Service:     ServiceName,
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
		Environment: cfg.Env,
		Integrations: Integrations{
			StoreDriver: cfg.Store.Driver,
			Store:       storeConfigured(&cfg.Store),
			AIProvider:  cfg.AI.Provider,
			AI:          cfg.AI.IsConfigured(),
			Webhook:     cfg.Webhook.IsConfigured(),
		},
	})
}

func (h *HealthHandler) respond(w http.ResponseWriter, route string, body any) {
	if err := WriteJSON(w, http.StatusOK, body); err != nil {
		h.logger.Error("Failed to encode response", zap.String("route", route), zap.Error(err))
	}
}

func storeConfigured(s *config.StoreConfig) bool {
	switch s.Driver {
	case config.StoreAirtable:
		return s.Airtable.IsConfigured()
	case config.StorePostgres:
		return s.Database.Host != ""
	default:
		return true
	}
}
