// Package monitor serves the HTTP control surface of the trail overlay: the
// page pushes positions and replay time in, and the host UI drives tracking
// and fetches rendered frames.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/banshee-data/movement.trails/internal/position"
	"github.com/banshee-data/movement.trails/internal/report"
	"github.com/banshee-data/movement.trails/internal/status"
	"github.com/banshee-data/movement.trails/internal/timeutil"
	"github.com/banshee-data/movement.trails/internal/trails"
	"github.com/banshee-data/movement.trails/internal/trails/render"
	"github.com/banshee-data/movement.trails/internal/trails/sampler"
	"github.com/banshee-data/movement.trails/internal/version"
)

// WebServer exposes trail tracking and rendering over HTTP.
type WebServer struct {
	address  string
	registry *trails.Registry
	tracker  *sampler.Tracker
	overlay  *render.Overlay
	feed     *position.Feed
	replay   *timeutil.ReplayClock
	status   *status.Mux
	reports  *report.Client
	clock    timeutil.Clock

	upgrader websocket.Upgrader
	server   *http.Server
	handler  http.Handler

	ctxMu   sync.Mutex
	baseCtx context.Context
}

// WebServerConfig contains configuration options for the web server.
// Registry and Renderer are required; the rest may be nil, in which case
// the matching endpoints answer 503.
type WebServerConfig struct {
	Address     string
	Registry    *trails.Registry
	Tracker     *sampler.Tracker
	Renderer    *render.Renderer
	Feed        *position.Feed
	ReplayClock *timeutil.ReplayClock
	Status      *status.Mux
	Reports     *report.Client
	Clock       timeutil.Clock
}

// NewWebServer creates a new web server with the provided configuration.
func NewWebServer(config WebServerConfig) *WebServer {
	clock := config.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	var reporter render.StatusReporter
	if config.Status != nil {
		reporter = config.Status
	}

	ws := &WebServer{
		address:  config.Address,
		registry: config.Registry,
		tracker:  config.Tracker,
		overlay:  render.NewOverlay(config.Registry, config.Renderer, reporter),
		feed:     config.Feed,
		replay:   config.ReplayClock,
		status:   config.Status,
		reports:  config.Reports,
		clock:    clock,
		baseCtx:  context.Background(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The page runs on the replay viewer's origin, not ours.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	ws.handler = ws.setupRoutes()
	ws.server = &http.Server{
		Addr:              ws.address,
		Handler:           ws.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return ws
}

// Handler returns the routed handler, for tests and embedding.
func (ws *WebServer) Handler() http.Handler {
	return ws.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully. Tracking
// started over HTTP lives until ctx is cancelled or it is stopped.
func (ws *WebServer) Start(ctx context.Context) error {
	ws.ctxMu.Lock()
	ws.baseCtx = ctx
	ws.ctxMu.Unlock()

	ln, err := net.Listen("tcp", ws.address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", ws.address, err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on %s", ln.Addr())
		if err := ws.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}

	log.Printf("HTTP server routine stopped")
	return nil
}

// Close shuts down the web server immediately.
func (ws *WebServer) Close() error {
	if ws.server != nil {
		return ws.server.Close()
	}
	return nil
}

func (ws *WebServer) context() context.Context {
	ws.ctxMu.Lock()
	defer ws.ctxMu.Unlock()
	return ws.baseCtx
}

func (ws *WebServer) publish(msg string) {
	if ws.status != nil {
		ws.status.Publish(msg)
	}
}

// setupRoutes configures the HTTP routes and handlers.
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/api/status", ws.handleStatus)

	mux.HandleFunc("/api/trails", ws.handleTrails)
	mux.HandleFunc("/api/trails/track", ws.handleTrack)
	mux.HandleFunc("/api/trails/stop", ws.handleStop)
	mux.HandleFunc("/api/trails/clear", ws.handleClear)
	mux.HandleFunc("/api/trails/remove", ws.handleRemove)
	mux.HandleFunc("/api/trails/visible", ws.handleVisible)
	mux.HandleFunc("/api/trails/global-visible", ws.handleGlobalVisible)
	mux.HandleFunc("/api/trails/reset", ws.handleReset)

	mux.HandleFunc("/api/trails/scene", ws.handleScene)
	mux.HandleFunc("/api/trails/render.svg", ws.handleRenderSVG)
	mux.HandleFunc("/api/trails/render.png", ws.handleRenderPNG)
	mux.HandleFunc("/api/trails/raster.png", ws.handleRasterPNG)

	mux.HandleFunc("/api/positions", ws.handlePositions)
	mux.HandleFunc("/ws/positions", ws.handlePositionSocket)
	mux.HandleFunc("/api/replay-time", ws.handleReplayTime)
	mux.HandleFunc("/api/report/players", ws.handleReportPlayers)

	ws.attachAdminRoutes(mux)
	return mux
}

// handleHealth handles the health check endpoint.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "ok", "service": "trails", "version": %q, "session": %q, "timestamp": "%s"}`,
		version.Version, ws.registry.SessionID(), ws.clock.Now().UTC().Format(time.RFC3339))
}
