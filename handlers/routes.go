package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Routes starts a hub bound to ctx and mounts the websocket and read-only
// HTTP endpoints on r.
func Routes(ctx context.Context, r *mux.Router, opts Options, logger zerolog.Logger) *Hub {
	hub := NewHub(logger)
	go hub.Run(ctx)

	ep := Endpoint{
		hub:    hub,
		opts:   opts,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(opts.AllowedOrigins),
		},
	}

	lmt := tollbooth.NewLimiter(opts.UpgradeRate, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
	lmt.SetMessage("too many connection attempts")

	r.Use(hlog.NewHandler(logger), hlog.RemoteAddrHandler("remote_addr"))
	r.Handle("/ws", tollbooth.LimitFuncHandler(lmt, ep.WSEndpoint)).Methods(http.MethodGet)
	r.HandleFunc("/health", ep.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/scores", ep.Scores).Methods(http.MethodGet)

	return hub
}

type Endpoint struct {
	hub      *Hub
	opts     Options
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// checkOrigin allows every origin when none are configured. Requests without
// an Origin header come from non-browser clients and are let through.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

func (ep Endpoint) HealthCheck(w http.ResponseWriter, r *http.Request) {
	stats, err := ep.hub.Stats(r.Context())
	if err != nil {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

func (ep Endpoint) Scores(w http.ResponseWriter, r *http.Request) {
	view, err := ep.hub.View(r.Context())
	if err != nil {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (ep Endpoint) WSEndpoint(w http.ResponseWriter, r *http.Request) {
	logger := hlog.FromRequest(r)

	ws, err := ep.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	ServeSocketUser(r.Context(), ep.hub, ws, ep.opts, *logger)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Debug().Err(err).Msg("error writing response")
	}
}
