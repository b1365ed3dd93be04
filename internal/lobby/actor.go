// internal/lobby/actor.go
package lobby

import (
	log "github.com/sirupsen/logrus"

	"github.com/mlundberg/foursouls/internal/apperr"
	"github.com/mlundberg/foursouls/internal/game"
	"github.com/mlundberg/foursouls/internal/netio"
	"github.com/mlundberg/foursouls/internal/protocol"
)

// InboxSize is the buffer of the lobby actor's inbox.
const InboxSize = 4096

// GameStarter is the registry surface the lobby needs to promote a
// room into a running game and to tear games down.
type GameStarter interface {
	// StartGameActor spawns a game actor for the given player id ->
	// connection id mapping and returns the randomised turn order.
	StartGameActor(gameID string, playerToConn map[string]string) (*game.TurnOrder, error)
	// CleanupGameActor stops a game actor and purges its routing
	// entries. Idempotent.
	CleanupGameActor(gameID string)
	NotifyConnectionGameStart(connectionID, gameID, playerID string) error
	NotifyConnectionLobbyReturn(connectionID string) error
}

type roomInfo struct {
	roomID     string
	playerID   string
	playerName string
}

// Actor is the single process-wide lobby. It exclusively owns every
// Room and all connection->room indices; all mutations happen on the
// actor's goroutine.
type Actor struct {
	rooms     map[string]*Room
	connInfo  map[string]roomInfo
	roomConns map[string]map[string]struct{}
	starter   GameStarter
	commands  chan<- netio.Command
	inbox     chan Message

	// quickStart short-circuits the readiness predicate so a game
	// starts on the first ready. Debug aid, off in production.
	quickStart bool
}

func NewActor(starter GameStarter, commands chan<- netio.Command, quickStart bool) *Actor {
	return &Actor{
		rooms:      make(map[string]*Room),
		connInfo:   make(map[string]roomInfo),
		roomConns:  make(map[string]map[string]struct{}),
		starter:    starter,
		commands:   commands,
		inbox:      make(chan Message, InboxSize),
		quickStart: quickStart,
	}
}

// Inbox exposes the actor's message queue for the registry.
func (a *Actor) Inbox() chan Message { return a.inbox }

// Run drains the inbox until it is closed. Handler errors are routed
// back to the originating connection; they never stop the loop.
func (a *Actor) Run() {
	log.Info("lobby actor started")
	for msg := range a.inbox {
		if err := a.handle(msg); err != nil {
			if conn := originOf(msg); conn != "" {
				a.sendTo(conn, protocol.ErrorResponse(err))
			}
			if apperr.From(err).ShouldLog() {
				log.Errorf("lobby: %T failed: %v", msg, err)
			}
		}
	}
	log.Info("lobby actor stopped")
}

func (a *Actor) handle(msg Message) error {
	switch m := msg.(type) {
	case Ping:
		a.sendTo(m.ConnectionID, protocol.Pong())
		return nil
	case Chat:
		return a.handleChat(m)
	case CreateRoom:
		return a.handleCreateRoom(m)
	case DestroyRoom:
		return a.handleDestroyRoom(m)
	case JoinRoom:
		return a.handleJoinRoom(m)
	case LeaveRoom:
		return a.handleLeaveRoom(m)
	case PlayerReady:
		return a.handlePlayerReady(m)
	case ConnectionClosed:
		a.handleConnectionClosed(m)
		return nil
	default:
		return apperr.Internal("unknown lobby message")
	}
}

func originOf(msg Message) string {
	switch m := msg.(type) {
	case Ping:
		return m.ConnectionID
	case Chat:
		return m.ConnectionID
	case CreateRoom:
		return m.ConnectionID
	case DestroyRoom:
		return m.ConnectionID
	case JoinRoom:
		return m.ConnectionID
	case LeaveRoom:
		return m.ConnectionID
	case PlayerReady:
		return m.ConnectionID
	}
	return ""
}

func (a *Actor) handleChat(m Chat) error {
	info, ok := a.connInfo[m.ConnectionID]
	if !ok {
		return apperr.ErrConnectionNotInRoom
	}
	a.sendToRoom(info.roomID, protocol.ChatMessage(info.playerName, m.Message))
	return nil
}

func (a *Actor) handleCreateRoom(m CreateRoom) error {
	if err := apperr.ValidateRoomName(m.RoomName); err != nil {
		return err
	}
	if err := apperr.ValidatePlayerName(m.FirstPlayerName); err != nil {
		return err
	}
	if _, ok := a.connInfo[m.ConnectionID]; ok {
		return apperr.PlayerAlreadyInRoom(m.FirstPlayerName)
	}
	room := NewRoom(m.RoomName)
	playerID, err := room.AddPlayer(m.FirstPlayerName)
	if err != nil {
		return err
	}
	a.rooms[room.ID] = room
	a.indexMember(m.ConnectionID, room.ID, playerID, m.FirstPlayerName)

	log.Infof("lobby: room %q created as %s by %s", m.RoomName, room.ID, m.FirstPlayerName)
	a.sendTo(m.ConnectionID, protocol.RoomCreated(room.ID, playerID))
	a.sendToAll(protocol.RoomCreatedBroadcast(room.ID))
	return nil
}

// handleDestroyRoom tears the room down for every member, not just the
// caller: memberships are dropped, any running game is stopped, and
// members are returned to the lobby.
func (a *Actor) handleDestroyRoom(m DestroyRoom) error {
	room, ok := a.rooms[m.RoomID]
	if !ok {
		return apperr.RoomNotFound(m.RoomID)
	}
	for conn := range a.roomConns[room.ID] {
		delete(a.connInfo, conn)
		if err := a.starter.NotifyConnectionLobbyReturn(conn); err != nil {
			log.Warnf("lobby: lobby-return notify for %s failed: %v", conn, err)
		}
	}
	a.starter.CleanupGameActor(room.ID)
	delete(a.roomConns, room.ID)
	delete(a.rooms, room.ID)

	log.Infof("lobby: room %s destroyed by %s", room.ID, m.ConnectionID)
	a.sendToAll(protocol.RoomDestroyed(room.ID))
	return nil
}

func (a *Actor) handleJoinRoom(m JoinRoom) error {
	if err := apperr.ValidatePlayerName(m.PlayerName); err != nil {
		return err
	}
	if _, ok := a.connInfo[m.ConnectionID]; ok {
		return apperr.PlayerAlreadyInRoom(m.PlayerName)
	}
	room, ok := a.rooms[m.RoomID]
	if !ok {
		return apperr.RoomNotFound(m.RoomID)
	}
	playerID, err := room.AddPlayer(m.PlayerName)
	if err != nil {
		return err
	}
	a.indexMember(m.ConnectionID, room.ID, playerID, m.PlayerName)

	a.sendTo(m.ConnectionID, protocol.SelfJoined(m.PlayerName, playerID))
	a.sendToRoom(room.ID, protocol.PlayerJoined(m.PlayerName, playerID))
	return nil
}

func (a *Actor) handleLeaveRoom(m LeaveRoom) error {
	info, ok := a.connInfo[m.ConnectionID]
	if !ok {
		return apperr.ErrConnectionNotInRoom
	}
	room, ok := a.rooms[info.roomID]
	if !ok {
		delete(a.connInfo, m.ConnectionID)
		return apperr.RoomNotFound(info.roomID)
	}
	if err := room.RemovePlayer(info.playerID); err != nil {
		return err
	}
	a.dropMember(m.ConnectionID, info.roomID)

	if len(room.Players) == 0 {
		delete(a.roomConns, room.ID)
		delete(a.rooms, room.ID)
		a.sendToAll(protocol.RoomDestroyed(room.ID))
		return nil
	}
	a.sendToRoom(room.ID, protocol.PlayerLeft(info.playerName))
	return nil
}

func (a *Actor) handlePlayerReady(m PlayerReady) error {
	info, ok := a.connInfo[m.ConnectionID]
	if !ok {
		return apperr.ErrConnectionNotInRoom
	}
	room := a.rooms[info.roomID]
	ready, err := room.AddPlayerReady(info.playerID)
	if err != nil {
		return err
	}
	if a.quickStart || room.CanStartGame() {
		return a.startGame(room)
	}
	a.sendToAll(protocol.PlayersReady(ready))
	return nil
}

// startGame promotes a room: spawn the game actor, flip every member's
// connection actor into game state, announce the turn order in-room
// and the start to everyone.
func (a *Actor) startGame(room *Room) error {
	playerToConn := make(map[string]string, len(room.Players))
	for conn := range a.roomConns[room.ID] {
		info := a.connInfo[conn]
		playerToConn[info.playerID] = conn
	}
	turnOrder, err := a.starter.StartGameActor(room.ID, playerToConn)
	if err != nil {
		return err
	}
	for conn := range a.roomConns[room.ID] {
		info := a.connInfo[conn]
		if err := a.starter.NotifyConnectionGameStart(conn, room.ID, info.playerID); err != nil {
			log.Warnf("lobby: game-start notify for %s failed: %v", conn, err)
		}
	}
	a.sendToRoom(room.ID, protocol.RoomGameStart(turnOrder.Order))
	a.sendToAll(protocol.LobbyStartedGame(room.ID))
	room.SetStateInGame()
	log.Infof("lobby: room %s started a game with %d players", room.ID, len(room.Players))
	return nil
}

// handleConnectionClosed drops a vanished transport's membership and
// destroys the room once no live connection remains in it.
func (a *Actor) handleConnectionClosed(m ConnectionClosed) {
	info, ok := a.connInfo[m.ConnectionID]
	if !ok {
		return
	}
	room, ok := a.rooms[info.roomID]
	if !ok {
		delete(a.connInfo, m.ConnectionID)
		return
	}
	if room.State == RoomStateLobby {
		if err := room.RemovePlayer(info.playerID); err != nil {
			log.Debugf("lobby: remove on disconnect: %v", err)
		}
	}
	a.dropMember(m.ConnectionID, room.ID)

	if len(a.roomConns[room.ID]) == 0 {
		a.starter.CleanupGameActor(room.ID)
		delete(a.roomConns, room.ID)
		delete(a.rooms, room.ID)
		log.Infof("lobby: room %s destroyed, all connections gone", room.ID)
		a.sendToAll(protocol.RoomDestroyed(room.ID))
		return
	}
	a.sendToRoom(room.ID, protocol.PlayerLeft(info.playerName))
}

func (a *Actor) indexMember(connectionID, roomID, playerID, playerName string) {
	a.connInfo[connectionID] = roomInfo{roomID: roomID, playerID: playerID, playerName: playerName}
	conns, ok := a.roomConns[roomID]
	if !ok {
		conns = make(map[string]struct{})
		a.roomConns[roomID] = conns
	}
	conns[connectionID] = struct{}{}
}

func (a *Actor) dropMember(connectionID, roomID string) {
	delete(a.connInfo, connectionID)
	if conns, ok := a.roomConns[roomID]; ok {
		delete(conns, connectionID)
	}
}

func (a *Actor) sendTo(connectionID string, resp protocol.Response) {
	a.commands <- netio.SendToPlayer{ConnectionID: connectionID, Message: protocol.Encode(resp)}
}

func (a *Actor) sendToRoom(roomID string, resp protocol.Response) {
	conns := a.roomConns[roomID]
	ids := make([]string, 0, len(conns))
	for conn := range conns {
		ids = append(ids, conn)
	}
	a.commands <- netio.SendToPlayers{ConnectionIDs: ids, Message: protocol.Encode(resp)}
}

func (a *Actor) sendToAll(resp protocol.Response) {
	a.commands <- netio.SendToAll{Message: protocol.Encode(resp)}
}
