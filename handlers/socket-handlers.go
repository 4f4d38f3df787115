package handlers

import (
	"context"
	"time"

	"scoreboard-backend/protocol"
	"scoreboard-backend/session"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

func unRegisterAndCloseConnection(c *Client) {
	if err := c.hub.enqueue(unregisterCommand{client: c}); err != nil {
		c.logger.Debug().Err(err).Msg("unregister after hub stop")
	}
	c.webSocketConnection.Close()
}

func setSocketPayloadReadConfig(c *Client, maxMessageSize int64) {
	c.webSocketConnection.SetReadLimit(maxMessageSize)
	c.webSocketConnection.SetReadDeadline(time.Now().Add(pongWait))
	c.webSocketConnection.SetPongHandler(func(string) error {
		return c.webSocketConnection.SetReadDeadline(time.Now().Add(pongWait))
	})
}

func newClient(hub *Hub, connection *websocket.Conn, opts Options, logger zerolog.Logger) *Client {
	id := session.ID(uuid.NewString())
	return &Client{
		hub:                 hub,
		webSocketConnection: connection,
		send:                make(chan []byte, opts.SendBufferSize),
		id:                  id,
		limiter:             rate.NewLimiter(rate.Limit(opts.MessageRate), opts.MessageBurst),
		logger:              logger.With().Str("conn", string(id)).Logger(),
	}
}

// ServeSocketUser registers a freshly upgraded connection and blocks reading
// from it until the connection goes away.
func ServeSocketUser(ctx context.Context, hub *Hub, connection *websocket.Conn, opts Options, logger zerolog.Logger) {
	client := newClient(hub, connection, opts, logger)

	if err := hub.enqueue(registerCommand{client: client}); err != nil {
		client.logger.Warn().Err(err).Msg("rejecting connection")
		connection.Close()
		return
	}

	go client.writePump()
	client.readPump(ctx, opts.MaxMessageSize)
}

func (c *Client) readPump(ctx context.Context, maxMessageSize int64) {
	defer unRegisterAndCloseConnection(c)

	setSocketPayloadReadConfig(c, maxMessageSize)

	for {
		_, payload, err := c.webSocketConnection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug().Err(err).Msg("unexpected close")
			}
			return
		}

		// throttles a flooding client without reordering or dropping its events
		if err := c.limiter.Wait(ctx); err != nil {
			return
		}

		message, err := protocol.Decode(payload)
		if err != nil {
			c.logger.Debug().Err(err).Msg("dropping malformed message")
			continue
		}

		if err := c.hub.enqueue(messageCommand{client: c, message: message}); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.webSocketConnection.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.webSocketConnection.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.webSocketConnection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.webSocketConnection.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Debug().Err(err).Msg("write failed")
				return
			}
		case <-ticker.C:
			c.webSocketConnection.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.webSocketConnection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.hub.done:
			c.webSocketConnection.SetWriteDeadline(time.Now().Add(writeWait))
			c.webSocketConnection.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// HandleUserRegisterEvent adds a connection to the broadcast set. It has no
// session until it sends a join.
func HandleUserRegisterEvent(hub *Hub, client *Client) {
	hub.clients[client] = true
	client.logger.Debug().Int("connections", len(hub.clients)).Msg("connection registered")
}

// HandleUserDisconnectEvent removes a closed connection and finishes its
// session if it was still playing.
func HandleUserDisconnectEvent(hub *Hub, client *Client) {
	if _, ok := hub.clients[client]; !ok {
		return
	}
	delete(hub.clients, client)
	close(client.send)

	if hub.registry.MarkDisconnected(client.id) {
		client.logger.Info().Msg("player disconnected mid-game")
		hub.notifyChanged()
	}
}

func handleSocketPayloadEvents(client *Client, message protocol.Message) {
	hub := client.hub

	switch message.Type {
	case protocol.MsgJoin:
		if _, err := hub.registry.Join(client.id, message.Username); err != nil {
			client.logger.Warn().Err(err).Str("username", message.Username).Msg("ignoring join")
			return
		}
		client.logger.Info().Str("username", message.Username).Msg("player joined")

	case protocol.MsgUpdate:
		if !hub.registry.UpdateScore(client.id, message.Score) {
			return
		}

	case protocol.MsgGameOver:
		result, ok := hub.registry.MarkGameOver(client.id, message.Score)
		if !ok {
			return
		}
		ranked := hub.leaderboard.Submit(result.Username, result.Score)
		client.logger.Info().
			Str("username", result.Username).
			Int("score", result.Score).
			Bool("ranked", ranked).
			Msg("game over")

	default:
		return
	}

	hub.notifyChanged()
}
