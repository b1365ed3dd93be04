// internal/connactor/actor.go
package connactor

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mlundberg/foursouls/internal/apperr"
	"github.com/mlundberg/foursouls/internal/game"
	"github.com/mlundberg/foursouls/internal/lobby"
	"github.com/mlundberg/foursouls/internal/netio"
	"github.com/mlundberg/foursouls/internal/protocol"
	"github.com/mlundberg/foursouls/internal/reliable"
)

// InboxSize is the buffer of a connection actor's inbox.
const InboxSize = 256

// Registry is the routing surface a connection actor needs: forward to
// the lobby, forward to its game, and deregister itself on exit.
type Registry interface {
	SendLobbyMessage(msg lobby.Message) error
	SendGameMessage(connectionID string, msg game.Message) error
	RemovePlayerConnection(connectionID string)
}

// Message is one unit of input for a connection actor's inbox.
type Message interface{ isConnectionMessage() }

// InboundFrame carries a parsed transport frame from the read pump.
type InboundFrame struct {
	Frame protocol.Frame
}

// TransitionToGame flips the actor into in-game state.
type TransitionToGame struct {
	GameID   string
	PlayerID string
}

// TransitionToLobby flips the actor back to lobby-only state.
type TransitionToLobby struct{}

// SendReliable asks the actor to push a payload to its own client
// through the reliable sublayer.
type SendReliable struct {
	Payload string
}

// Disconnect terminates the actor loop.
type Disconnect struct{}

// retryTick is internal: a scheduled resend check for one pending
// reliable message. Scheduling it as an inbox message keeps the actor
// from ever sleeping.
type retryTick struct {
	messageID string
}

func (InboundFrame) isConnectionMessage()     {}
func (TransitionToGame) isConnectionMessage() {}
func (TransitionToLobby) isConnectionMessage() {}
func (SendReliable) isConnectionMessage()     {}
func (Disconnect) isConnectionMessage()       {}
func (retryTick) isConnectionMessage()        {}

type connectionState struct {
	inGame   bool
	gameID   string
	playerID string
}

// Actor is the per-client state machine. It classifies inbound client
// messages as lobby or game traffic, tracks which game (if any) the
// client is in, and runs the sender side of the reliable sublayer.
type Actor struct {
	connectionID string
	state        connectionState
	inbox        chan Message
	registry     Registry
	commands     chan<- netio.Command
	receiver     *reliable.Receiver
	sequencer    reliable.Sequencer
	pending      map[string]*reliable.Pending
}

func NewActor(connectionID string, registry Registry, commands chan<- netio.Command) *Actor {
	return &Actor{
		connectionID: connectionID,
		inbox:        make(chan Message, InboxSize),
		registry:     registry,
		commands:     commands,
		receiver:     reliable.NewReceiver(),
		pending:      make(map[string]*reliable.Pending),
	}
}

// Inbox exposes the actor's message queue for the registry and the
// read pump.
func (a *Actor) Inbox() chan Message { return a.inbox }

// Run drains the inbox until Disconnect or channel close, then cleans
// up the actor's registry entries and tells the lobby the transport is
// gone.
func (a *Actor) Run() {
	log.Debugf("connection %s: actor started", a.connectionID)
	for msg := range a.inbox {
		if _, ok := msg.(Disconnect); ok {
			break
		}
		a.handle(msg)
	}
	a.cleanup()
	log.Debugf("connection %s: actor stopped", a.connectionID)
}

func (a *Actor) handle(msg Message) {
	switch m := msg.(type) {
	case InboundFrame:
		a.handleFrame(m.Frame)
	case TransitionToGame:
		a.state = connectionState{inGame: true, gameID: m.GameID, playerID: m.PlayerID}
	case TransitionToLobby:
		a.state = connectionState{}
	case SendReliable:
		a.sendReliable(m.Payload)
	case retryTick:
		a.retryPending(m.messageID)
	default:
		log.Errorf("connection %s: unknown message %T", a.connectionID, msg)
	}
}

func (a *Actor) handleFrame(frame protocol.Frame) {
	switch {
	case frame.Ack != nil:
		delete(a.pending, frame.Ack.MessageID)
	case frame.Reliable != nil:
		ack, ordered := a.receiver.Receive(*frame.Reliable)
		a.sendToSelf(protocol.AckEnvelope(ack))
		for _, m := range ordered {
			var client protocol.ClientMessage
			if err := client.UnmarshalJSON([]byte(m.Payload)); err != nil {
				a.sendError(err)
				continue
			}
			a.dispatch(client)
		}
	case frame.Client != nil:
		a.dispatch(*frame.Client)
	}
}

// dispatch routes one client message. Errors never stop the actor;
// they come back to this client as Error responses.
func (a *Actor) dispatch(msg protocol.ClientMessage) {
	var err error
	if msg.Category() == protocol.CategoryGame {
		err = a.dispatchGame(msg)
	} else {
		err = a.dispatchLobby(msg)
	}
	if err != nil {
		a.sendError(err)
	}
}

func (a *Actor) dispatchLobby(msg protocol.ClientMessage) error {
	var translated lobby.Message
	switch msg.Type {
	case protocol.TypePing:
		translated = lobby.Ping{ConnectionID: a.connectionID}
	case protocol.TypeChat:
		translated = lobby.Chat{ConnectionID: a.connectionID, Message: msg.Chat.Message}
	case protocol.TypeCreateRoom:
		translated = lobby.CreateRoom{
			ConnectionID:    a.connectionID,
			RoomName:        msg.CreateRoom.RoomName,
			FirstPlayerName: msg.CreateRoom.FirstPlayerName,
		}
	case protocol.TypeDestroyRoom:
		translated = lobby.DestroyRoom{ConnectionID: a.connectionID, RoomID: msg.DestroyRoom.RoomID}
	case protocol.TypeJoinRoom:
		translated = lobby.JoinRoom{
			ConnectionID: a.connectionID,
			PlayerName:   msg.JoinRoom.PlayerName,
			RoomID:       msg.JoinRoom.RoomID,
		}
	case protocol.TypeLeaveRoom:
		// Leaving always returns this connection to lobby state, even
		// if the lobby later rejects the request.
		a.state = connectionState{}
		translated = lobby.LeaveRoom{ConnectionID: a.connectionID}
	case protocol.TypePlayerReady:
		translated = lobby.PlayerReady{ConnectionID: a.connectionID}
	default:
		return apperr.UnknownMessage(string(msg.Type))
	}
	return a.registry.SendLobbyMessage(translated)
}

func (a *Actor) dispatchGame(msg protocol.ClientMessage) error {
	if !a.state.inGame {
		return apperr.ErrConnectionNotInRoom
	}
	var translated game.Message
	switch msg.Type {
	case protocol.TypeTurnPass:
		translated = game.TurnPassFromConnection{ConnectionID: a.connectionID}
	case protocol.TypePriorityPass:
		translated = game.PriorityPassFromConnection{ConnectionID: a.connectionID}
	default:
		return apperr.UnknownMessage(string(msg.Type))
	}
	return a.registry.SendGameMessage(a.connectionID, translated)
}

// sendReliable wraps a payload in the reliable envelope, records it as
// pending and schedules the first retry check.
func (a *Actor) sendReliable(payload string) {
	msg := a.sequencer.Next(payload)
	a.pending[msg.ID] = &reliable.Pending{Message: msg, SentAt: time.Now()}
	a.sendToSelf(protocol.ReliableEnvelope(msg))
	a.scheduleRetry(msg.ID)
}

// retryPending resends an unacked message until MaxRetries, then gives
// up on it.
func (a *Actor) retryPending(messageID string) {
	p, ok := a.pending[messageID]
	if !ok {
		return
	}
	if p.Retries >= reliable.MaxRetries {
		log.Warnf("connection %s: reliable message %s unacked after %d retries, dropping", a.connectionID, messageID, p.Retries)
		delete(a.pending, messageID)
		return
	}
	p.Retries++
	p.SentAt = time.Now()
	a.sendToSelf(protocol.ReliableEnvelope(p.Message))
	a.scheduleRetry(messageID)
}

func (a *Actor) scheduleRetry(messageID string) {
	time.AfterFunc(reliable.RetryInterval, func() {
		// Best effort: a full or drained inbox means the actor is on
		// its way out and the pending table dies with it.
		select {
		case a.inbox <- retryTick{messageID: messageID}:
		default:
		}
	})
}

func (a *Actor) sendToSelf(resp protocol.Response) {
	a.commands <- netio.SendToPlayer{ConnectionID: a.connectionID, Message: protocol.Encode(resp)}
}

func (a *Actor) sendError(err error) {
	a.sendToSelf(protocol.ErrorResponse(err))
}

// cleanup deregisters this connection everywhere and lets the lobby
// reap memberships the transport left behind.
func (a *Actor) cleanup() {
	a.registry.RemovePlayerConnection(a.connectionID)
	if err := a.registry.SendLobbyMessage(lobby.ConnectionClosed{ConnectionID: a.connectionID}); err != nil {
		log.Warnf("connection %s: closed notify failed: %v", a.connectionID, err)
	}
}
