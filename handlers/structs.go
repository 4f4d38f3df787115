package handlers

import (
	"scoreboard-backend/protocol"
	"scoreboard-backend/session"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type Client struct {
	hub                 *Hub
	webSocketConnection *websocket.Conn
	send                chan []byte
	id                  session.ID
	limiter             *rate.Limiter
	logger              zerolog.Logger
}

// Options tune the per-connection side of the websocket endpoint.
type Options struct {
	AllowedOrigins []string
	MaxMessageSize int64
	SendBufferSize int
	MessageRate    float64
	MessageBurst   int
	UpgradeRate    float64
}

// Stats is the hub summary served on /health.
type Stats struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
	Sessions    int    `json:"sessions"`
	Active      int    `json:"active"`
	Leaderboard int    `json:"leaderboard"`
}

// Commands queued on Hub.inbox. Everything goes through the one queue so a
// connection's messages and its disconnect are handled in arrival order.
type registerCommand struct {
	client *Client
}

type unregisterCommand struct {
	client *Client
}

type messageCommand struct {
	client  *Client
	message protocol.Message
}

type viewRequest struct {
	reply chan protocol.Scores
}

type statsRequest struct {
	reply chan Stats
}
