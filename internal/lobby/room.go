// internal/lobby/room.go
package lobby

import (
	"sort"

	"github.com/google/uuid"

	"github.com/mlundberg/foursouls/internal/apperr"
)

const (
	// MaxPlayers caps room membership.
	MaxPlayers = 4
	// MinPlayers is the smallest table a game can start with.
	MinPlayers = 2
)

// RoomState is the room's lifecycle stage.
type RoomState string

const (
	RoomStateLobby  RoomState = "Lobby"
	RoomStateInGame RoomState = "InGame"
)

// Room holds lobby-phase membership and readiness. It is owned
// exclusively by the lobby actor; membership mutations are rejected
// once the room has been promoted to a game.
type Room struct {
	ID           string
	Name         string
	Players      map[string]string // player id -> player name
	PlayersReady map[string]struct{}
	State        RoomState
}

func NewRoom(name string) *Room {
	return &Room{
		ID:           uuid.NewString(),
		Name:         name,
		Players:      make(map[string]string),
		PlayersReady: make(map[string]struct{}),
		State:        RoomStateLobby,
	}
}

// AddPlayer admits a new member and returns their fresh player id.
func (r *Room) AddPlayer(name string) (string, error) {
	if r.State != RoomStateLobby {
		return "", apperr.RoomInGame(r.ID)
	}
	if len(r.Players) >= MaxPlayers {
		return "", apperr.RoomFull(r.ID, MaxPlayers)
	}
	playerID := uuid.NewString()
	r.Players[playerID] = name
	return playerID, nil
}

// RemovePlayer drops a member and their readiness mark.
func (r *Room) RemovePlayer(playerID string) error {
	if r.State != RoomStateLobby {
		return apperr.RoomInGame(r.ID)
	}
	if _, ok := r.Players[playerID]; !ok {
		return apperr.ErrConnectionNotInRoom
	}
	delete(r.Players, playerID)
	delete(r.PlayersReady, playerID)
	return nil
}

// AddPlayerReady marks a member ready (idempotent) and returns the
// current ready set.
func (r *Room) AddPlayerReady(playerID string) ([]string, error) {
	if _, ok := r.Players[playerID]; !ok {
		return nil, apperr.ErrConnectionNotInRoom
	}
	r.PlayersReady[playerID] = struct{}{}
	return r.ReadyPlayerIDs(), nil
}

// ReadyPlayerIDs returns the ready set in sorted order.
func (r *Room) ReadyPlayerIDs() []string {
	ids := make([]string, 0, len(r.PlayersReady))
	for pid := range r.PlayersReady {
		ids = append(ids, pid)
	}
	sort.Strings(ids)
	return ids
}

// CanStartGame is the production readiness predicate: everyone ready,
// still in lobby state, and enough players at the table.
func (r *Room) CanStartGame() bool {
	return len(r.PlayersReady) == len(r.Players) &&
		r.State == RoomStateLobby &&
		len(r.Players) >= MinPlayers
}

// SetStateInGame promotes the room. Only meaningful from Lobby.
func (r *Room) SetStateInGame() {
	if r.State == RoomStateLobby {
		r.State = RoomStateInGame
	}
}
