// Package api serves the HTTP surface: health probes, a status root, and
// the MCP streamable-HTTP endpoint mounted at /mcp.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/demystifier/demystifier/internal/log"
	"github.com/demystifier/demystifier/internal/session"
)

// ServerConfig contains configuration for creating the HTTP server.
type ServerConfig struct {
	Logger log.Logger

	// Name is reported by the status root.
	Name string

	// MCP is the tool server to mount at /mcp. Optional: nil serves the
	// plain HTTP surface with mcp_available reported false.
	MCP *sdk.Server

	// Sessions is used for /ready statistics. Optional.
	Sessions *session.Store

	// CORSOrigins are the origins allowed to reach the API.
	CORSOrigins []string
}

// Server is the HTTP server for the backend.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates the HTTP server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Name == "" {
		return nil, errors.New("server name is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mcpAvailable := cfg.MCP != nil

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"mcp":    mcpAvailable,
		})
	})
	mux.Handle("GET /ready", readiness(cfg.Sessions))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"message":       cfg.Name,
			"status":        "running",
			"mcp_available": mcpAvailable,
		})
	})

	if mcpAvailable {
		handler := sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server {
			return cfg.MCP
		}, nil)
		mux.Handle("/mcp", handler)
		mux.Handle("/mcp/", handler)
		logger.Info("mounted MCP handler", "path", "/mcp")
	} else {
		logger.Warn("MCP server not configured; /mcp not mounted")
	}

	// Middleware stack, outermost first:
	//   Recovery → Logging → CORS → MCP header debug → Routes
	var handler http.Handler = mux
	handler = mcpHeaderMiddleware(logger)(handler)
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	top := http.NewServeMux()
	top.Handle("/", handler)

	return &Server{mux: top}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// readiness reports whether the server can take traffic, with live session
// statistics when a store is wired.
func readiness(sessions *session.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		body := map[string]any{"status": "ready"}
		if sessions != nil {
			body["sessions"] = sessions.Count()
		}
		writeJSON(w, http.StatusOK, body)
	})
}
