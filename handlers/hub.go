package handlers

import (
	"context"
	"errors"

	"scoreboard-backend/leaderboard"
	"scoreboard-backend/protocol"
	"scoreboard-backend/session"

	"github.com/rs/zerolog"
)

const inboxSize = 256

var ErrHubStopped = errors.New("hub stopped")

// Hub owns every piece of shared state: the open clients, the session
// registry and the leaderboard. Only the Run goroutine touches them.
type Hub struct {
	clients     map[*Client]bool
	inbox       chan any
	done        chan struct{}
	registry    *session.Registry
	leaderboard *leaderboard.Leaderboard
	logger      zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		inbox:       make(chan any, inboxSize),
		done:        make(chan struct{}),
		registry:    session.NewRegistry(),
		leaderboard: leaderboard.New(leaderboard.DefaultCapacity),
		logger:      logger,
	}
}

func (hub *Hub) Run(ctx context.Context) {
	defer close(hub.done)
	for {
		select {
		case <-ctx.Done():
			hub.shutdown()
			return
		case cmd := <-hub.inbox:
			hub.handleCommand(cmd)
		}
	}
}

func (hub *Hub) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case registerCommand:
		HandleUserRegisterEvent(hub, c.client)
	case unregisterCommand:
		HandleUserDisconnectEvent(hub, c.client)
	case messageCommand:
		handleSocketPayloadEvents(c.client, c.message)
	case viewRequest:
		c.reply <- hub.view()
	case statsRequest:
		c.reply <- Stats{
			Status:      "ok",
			Connections: len(hub.clients),
			Sessions:    hub.registry.Len(),
			Active:      hub.registry.ActiveLen(),
			Leaderboard: hub.leaderboard.Len(),
		}
	default:
		hub.logger.Error().Msgf("unknown hub command %T", cmd)
	}
}

// enqueue hands cmd to the Run goroutine. It fails once the hub has stopped.
func (hub *Hub) enqueue(cmd any) error {
	if hub.stopped() {
		return ErrHubStopped
	}
	select {
	case hub.inbox <- cmd:
		return nil
	case <-hub.done:
		return ErrHubStopped
	}
}

func (hub *Hub) stopped() bool {
	select {
	case <-hub.done:
		return true
	default:
		return false
	}
}

func (hub *Hub) View(ctx context.Context) (protocol.Scores, error) {
	reply := make(chan protocol.Scores, 1)
	if err := hub.enqueueContext(ctx, viewRequest{reply: reply}); err != nil {
		return protocol.Scores{}, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-hub.done:
		return protocol.Scores{}, ErrHubStopped
	case <-ctx.Done():
		return protocol.Scores{}, ctx.Err()
	}
}

func (hub *Hub) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	if err := hub.enqueueContext(ctx, statsRequest{reply: reply}); err != nil {
		return Stats{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-hub.done:
		return Stats{}, ErrHubStopped
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}

func (hub *Hub) enqueueContext(ctx context.Context, cmd any) error {
	if hub.stopped() {
		return ErrHubStopped
	}
	select {
	case hub.inbox <- cmd:
		return nil
	case <-hub.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// view builds a fresh copy of the public state.
func (hub *Hub) view() protocol.Scores {
	active := hub.registry.ActiveSnapshot()
	board := hub.leaderboard.Snapshot()

	v := protocol.Scores{
		Type:        protocol.MsgScores,
		Active:      make([]protocol.Score, 0, len(active)),
		Leaderboard: make([]protocol.Score, 0, len(board)),
	}
	for _, p := range active {
		v.Active = append(v.Active, protocol.Score{Username: p.Username, Score: p.Score})
	}
	for _, e := range board {
		v.Leaderboard = append(v.Leaderboard, protocol.Score{Username: e.Username, Score: e.Score})
	}
	return v
}

// notifyChanged pushes the current view to every open connection. A client
// whose send buffer is full loses its oldest queued view instead, so it always
// ends up on the latest state; the others are unaffected.
func (hub *Hub) notifyChanged() {
	payload, err := protocol.EncodeScores(hub.view())
	if err != nil {
		hub.logger.Error().Err(err).Msg("error encoding scores")
		return
	}

	for client := range hub.clients {
		select {
		case client.send <- payload:
			continue
		default:
		}

		// make room by dropping the oldest queued view
		select {
		case <-client.send:
		default:
		}
		select {
		case client.send <- payload:
			client.logger.Debug().Msg("send buffer full, replaced oldest scores update")
		default:
			client.logger.Warn().Msg("send buffer full, dropping scores update")
		}
	}
}

func (hub *Hub) shutdown() {
	for client := range hub.clients {
		delete(hub.clients, client)
		close(client.send)
	}

	// connections still waiting to be registered get closed too
	for pending := true; pending; {
		select {
		case cmd := <-hub.inbox:
			if c, ok := cmd.(registerCommand); ok {
				close(c.client.send)
			}
		default:
			pending = false
		}
	}
	hub.logger.Info().
		Int("sessions", hub.registry.Len()).
		Int("leaderboard", hub.leaderboard.Len()).
		Msg("hub stopped")
}
