// internal/registry/registry.go
package registry

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/mlundberg/foursouls/internal/apperr"
	"github.com/mlundberg/foursouls/internal/cards"
	"github.com/mlundberg/foursouls/internal/connactor"
	"github.com/mlundberg/foursouls/internal/game"
	"github.com/mlundberg/foursouls/internal/history"
	"github.com/mlundberg/foursouls/internal/lobby"
	"github.com/mlundberg/foursouls/internal/netio"
)

// ActorRegistry is the process-wide directory of actor inboxes and
// connection->game bindings. It implements lobby.GameStarter and
// connactor.Registry; it is the only package that knows every inbox
// type, which keeps the actor packages cycle-free.
//
// Locking: inbox sends happen under the read lock (sends never block,
// buffers are sized for that), channel closes happen under the write
// lock. A goroutine can therefore never send on a channel that another
// is closing.
type ActorRegistry struct {
	mu          sync.RWMutex
	lobbyInbox  chan lobby.Message
	gameInboxes map[string]chan game.Message
	connInboxes map[string]chan connactor.Message
	connToGame  map[string]string

	commands        chan<- netio.Command
	catalog         cards.TemplateSource
	historian       *history.Publisher
	reliablePrivate bool
}

func New(commands chan<- netio.Command, catalog cards.TemplateSource, historian *history.Publisher, reliablePrivate bool) *ActorRegistry {
	return &ActorRegistry{
		gameInboxes:     make(map[string]chan game.Message),
		connInboxes:     make(map[string]chan connactor.Message),
		connToGame:      make(map[string]string),
		commands:        commands,
		catalog:         catalog,
		historian:       historian,
		reliablePrivate: reliablePrivate,
	}
}

// RegisterLobby installs the lobby actor's inbox. Called once at boot,
// before any connection is accepted.
func (r *ActorRegistry) RegisterLobby(inbox chan lobby.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lobbyInbox = inbox
}

// SendLobbyMessage enqueues a message for the lobby actor.
func (r *ActorRegistry) SendLobbyMessage(msg lobby.Message) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.lobbyInbox == nil {
		return apperr.Internal("lobby actor not registered")
	}
	select {
	case r.lobbyInbox <- msg:
		return nil
	default:
		return apperr.Internal("lobby inbox full")
	}
}

// RegisterConnectionActor installs a connection actor's inbox.
func (r *ActorRegistry) RegisterConnectionActor(connectionID string, inbox chan connactor.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connInboxes[connectionID] = inbox
}

// SendToConnectionActor enqueues a message for one connection actor.
func (r *ActorRegistry) SendToConnectionActor(connectionID string, msg connactor.Message) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inbox, ok := r.connInboxes[connectionID]
	if !ok {
		return apperr.ConnectionNotFound(connectionID)
	}
	select {
	case inbox <- msg:
		return nil
	default:
		return apperr.MessageSendFailed(connectionID)
	}
}

// StartGameActor builds and launches a game actor for the given
// player id -> connection id mapping, installs its inbox, and binds
// every participating connection to the game. Returns the randomised
// turn order.
func (r *ActorRegistry) StartGameActor(gameID string, playerToConn map[string]string) (*game.TurnOrder, error) {
	if len(playerToConn) == 0 {
		return nil, apperr.Internal("cannot start a game with no players")
	}
	actor := game.NewActor(gameID, playerToConn, r.catalog, r.commands, r.privateSender(), r.historian)

	r.mu.Lock()
	if _, exists := r.gameInboxes[gameID]; exists {
		r.mu.Unlock()
		return nil, apperr.Internal("game " + gameID + " already running")
	}
	r.gameInboxes[gameID] = actor.Inbox()
	for _, connectionID := range playerToConn {
		r.connToGame[connectionID] = gameID
	}
	r.mu.Unlock()

	go actor.Run()
	log.Infof("registry: game actor %s started for %d players", gameID, len(playerToConn))
	return actor.TurnOrder(), nil
}

// privateSender picks the delivery path for private board snapshots:
// through the owning connection actor's reliable sublayer, or straight
// onto the best-effort command channel.
func (r *ActorRegistry) privateSender() game.PrivateSendFunc {
	if !r.reliablePrivate {
		return nil
	}
	return func(connectionID, payload string) {
		if err := r.SendToConnectionActor(connectionID, connactor.SendReliable{Payload: payload}); err != nil {
			log.Debugf("registry: reliable private push to %s failed, falling back: %v", connectionID, err)
			r.commands <- netio.SendToPlayer{ConnectionID: connectionID, Message: payload}
		}
	}
}

// SendGameMessage routes a connection-scoped message to the game the
// connection is bound to.
func (r *ActorRegistry) SendGameMessage(connectionID string, msg game.Message) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gameID, ok := r.connToGame[connectionID]
	if !ok {
		return apperr.ErrConnectionNotInRoom
	}
	inbox, ok := r.gameInboxes[gameID]
	if !ok {
		return apperr.GameMessageLoopNotFound(gameID)
	}
	select {
	case inbox <- msg:
		return nil
	default:
		return apperr.GameEventSendFailed("inbox full")
	}
}

// CleanupGameActor closes a game actor's inbox (stopping its loop) and
// purges every binding that pointed at it. Idempotent.
func (r *ActorRegistry) CleanupGameActor(gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inbox, ok := r.gameInboxes[gameID]
	if !ok {
		return
	}
	delete(r.gameInboxes, gameID)
	close(inbox)
	for connectionID, g := range r.connToGame {
		if g == gameID {
			delete(r.connToGame, connectionID)
		}
	}
	log.Infof("registry: game actor %s cleaned up", gameID)
}

// RemovePlayerConnection drops a connection from both the connection
// table and the connection->game binding.
func (r *ActorRegistry) RemovePlayerConnection(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.connInboxes, connectionID)
	delete(r.connToGame, connectionID)
}

// NotifyConnectionGameStart flips a connection actor into game state.
func (r *ActorRegistry) NotifyConnectionGameStart(connectionID, gameID, playerID string) error {
	return r.SendToConnectionActor(connectionID, connactor.TransitionToGame{GameID: gameID, PlayerID: playerID})
}

// NotifyConnectionLobbyReturn flips a connection actor back to lobby
// state.
func (r *ActorRegistry) NotifyConnectionLobbyReturn(connectionID string) error {
	return r.SendToConnectionActor(connectionID, connactor.TransitionToLobby{})
}
