// internal/game/broadcaster.go
package game

import (
	log "github.com/sirupsen/logrus"

	"github.com/mlundberg/foursouls/internal/netio"
	"github.com/mlundberg/foursouls/internal/protocol"
)

// PrivateSendFunc delivers a private, per-player payload to one
// connection. The registry injects either a best-effort sender or one
// that routes through the connection actor's reliable sublayer.
type PrivateSendFunc func(connectionID, payload string)

// Broadcaster derives public and per-player private snapshots from a
// State and emits them on the outbound command channel. It also owns
// the game's connection<->player bimap.
type Broadcaster struct {
	gameID       string
	playerToConn map[string]string
	connToPlayer map[string]string
	commands     chan<- netio.Command
	sendPrivate  PrivateSendFunc
}

func NewBroadcaster(gameID string, playerToConn map[string]string, commands chan<- netio.Command, sendPrivate PrivateSendFunc) *Broadcaster {
	connToPlayer := make(map[string]string, len(playerToConn))
	for pid, cid := range playerToConn {
		connToPlayer[cid] = pid
	}
	b := &Broadcaster{
		gameID:       gameID,
		playerToConn: playerToConn,
		connToPlayer: connToPlayer,
		commands:     commands,
		sendPrivate:  sendPrivate,
	}
	if b.sendPrivate == nil {
		b.sendPrivate = func(connectionID, payload string) {
			commands <- netio.SendToPlayer{ConnectionID: connectionID, Message: payload}
		}
	}
	return b
}

// PlayerForConnection resolves a connection id to its player id.
func (b *Broadcaster) PlayerForConnection(connectionID string) (string, bool) {
	pid, ok := b.connToPlayer[connectionID]
	return pid, ok
}

func (b *Broadcaster) connectionIDs() []string {
	ids := make([]string, 0, len(b.connToPlayer))
	for cid := range b.connToPlayer {
		ids = append(ids, cid)
	}
	return ids
}

// BroadcastFullState emits the public snapshot to every participant
// and each player's private snapshot to their own connection. Private
// hands never travel on the shared broadcast path.
func (b *Broadcaster) BroadcastFullState(s *State) {
	b.BroadcastPublicState(s)
	b.BroadcastPrivateStates(s)
}

// BroadcastPublicState sends the spectator-safe snapshot: hand sizes,
// never hand contents.
func (b *Broadcaster) BroadcastPublicState(s *State) {
	players := make(map[string]protocol.PublicPlayer, len(s.Board.Players))
	for pid, p := range s.Board.Players {
		players[pid] = protocol.PublicPlayer{
			HandSize:      len(p.Hand),
			MaxHealth:     p.MaxHealth,
			CurrentHealth: p.CurrentHealth,
			LootPlayTurn:  p.LootPlayTurn,
			LootPlayChar:  p.LootPlayChar,
		}
	}
	payload := protocol.PublicBoardPayload{
		LootDeckSize: len(s.Board.LootDeck),
		LootDiscard:  s.Board.LootDiscard,
		CurrentPhase: string(s.CurrentPhase),
		ActivePlayer: s.TurnOrder.Active,
		Players:      players,
	}
	b.commands <- netio.SendToPlayers{
		ConnectionIDs: b.connectionIDs(),
		Message:       protocol.Encode(protocol.PublicBoardState(payload)),
	}
}

// BroadcastPrivateStates sends each player their own hand.
func (b *Broadcaster) BroadcastPrivateStates(s *State) {
	for pid, p := range s.Board.Players {
		cid, ok := b.playerToConn[pid]
		if !ok {
			log.Warnf("game %s: no connection for player %s, skipping private state", b.gameID, pid)
			continue
		}
		b.sendPrivate(cid, protocol.Encode(protocol.PrivateBoardState(p.Hand)))
	}
}

// BroadcastPhaseChange announces the current phase and the player who
// holds priority in it.
func (b *Broadcaster) BroadcastPhaseChange(s *State) {
	b.commands <- netio.SendToPlayers{
		ConnectionIDs: b.connectionIDs(),
		Message:       protocol.Encode(protocol.TurnPhaseChange(s.CurrentPriorityPlayer, string(s.CurrentPhase))),
	}
}

// BroadcastGameEnded announces the winner to every participant.
func (b *Broadcaster) BroadcastGameEnded(winnerID string) {
	b.commands <- netio.SendToPlayers{
		ConnectionIDs: b.connectionIDs(),
		Message:       protocol.Encode(protocol.GameEnded(winnerID)),
	}
}

// SendError delivers an error response to a single connection.
func (b *Broadcaster) SendError(connectionID string, err error) {
	b.commands <- netio.SendToPlayer{
		ConnectionID: connectionID,
		Message:      protocol.Encode(protocol.ErrorResponse(err)),
	}
}
