// internal/game/actor.go
package game

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mlundberg/foursouls/internal/apperr"
	"github.com/mlundberg/foursouls/internal/cards"
	"github.com/mlundberg/foursouls/internal/history"
	"github.com/mlundberg/foursouls/internal/netio"
)

// InboxSize is the buffer of a game actor's inbox. The design assumes
// no backpressure; the buffer only has to cover routing bursts.
const InboxSize = 1024

// WinTurnThreshold ends the game once the turn counter reaches it.
// Placeholder until real Four Souls win conditions land.
const WinTurnThreshold = 100

const historianTimeout = 2 * time.Second

// Actor owns one game: its state, its broadcaster and its inbox. All
// game mutations happen on the actor's goroutine.
type Actor struct {
	gameID      string
	state       *State
	broadcaster *Broadcaster
	inbox       chan Message
	historian   *history.Publisher
	actionIndex int
}

// NewActor builds the game: randomised turn order, shuffled board with
// opening hands, and the broadcaster over the player<->connection map.
func NewActor(gameID string, playerToConn map[string]string, catalog cards.TemplateSource, commands chan<- netio.Command, sendPrivate PrivateSendFunc, historian *history.Publisher) *Actor {
	playerIDs := make([]string, 0, len(playerToConn))
	for pid := range playerToConn {
		playerIDs = append(playerIDs, pid)
	}
	turnOrder := NewTurnOrder(playerIDs)
	board := NewBoard(catalog, playerIDs)
	return &Actor{
		gameID:      gameID,
		state:       NewState(turnOrder, board),
		broadcaster: NewBroadcaster(gameID, playerToConn, commands, sendPrivate),
		inbox:       make(chan Message, InboxSize),
		historian:   historian,
	}
}

// Inbox exposes the actor's message queue for the registry.
func (a *Actor) Inbox() chan Message { return a.inbox }

// TurnOrder exposes the randomised order so the lobby can announce it.
func (a *Actor) TurnOrder() *TurnOrder { return a.state.TurnOrder }

// Run initialises the game, then drains the inbox until it is closed
// or the game ends. Handler errors never terminate the loop; they are
// translated into error responses for the offending connection.
func (a *Actor) Run() {
	log.Infof("game %s: starting with turn order %v", a.gameID, a.state.TurnOrder.Order)
	a.initialize()
	for msg := range a.inbox {
		if !a.state.GameRunning {
			continue
		}
		a.handle(msg)
		if a.checkWin() {
			break
		}
	}
	log.Infof("game %s: stopped", a.gameID)
}

// initialize draws the first card for the active player, pushes the
// opening snapshot and enters UntapStartStep.
func (a *Actor) initialize() {
	if _, err := a.state.Board.DrawLootForPlayer(a.state.TurnOrder.Active); err != nil {
		log.Errorf("game %s: initial draw failed: %v", a.gameID, err)
	}
	a.broadcaster.BroadcastFullState(a.state)
	a.transitionToPhase(PhaseUntapStart)
}

func (a *Actor) handle(msg Message) {
	switch m := msg.(type) {
	case TurnPass:
		a.handleTurnPass(m.PlayerID, "")
	case PriorityPass:
		a.handlePriorityPass(m.PlayerID, "")
	case TurnPassFromConnection:
		if pid, ok := a.broadcaster.PlayerForConnection(m.ConnectionID); ok {
			a.handleTurnPass(pid, m.ConnectionID)
		} else {
			a.broadcaster.SendError(m.ConnectionID, apperr.ErrConnectionNotInRoom)
		}
	case PriorityPassFromConnection:
		if pid, ok := a.broadcaster.PlayerForConnection(m.ConnectionID); ok {
			a.handlePriorityPass(pid, m.ConnectionID)
		} else {
			a.broadcaster.SendError(m.ConnectionID, apperr.ErrConnectionNotInRoom)
		}
	default:
		log.Errorf("game %s: unknown message %T", a.gameID, msg)
	}
}

func (a *Actor) handleTurnPass(playerID, connectionID string) {
	if !a.state.CanPlayerPassTurn(playerID) {
		a.replyError(playerID, connectionID, apperr.ErrNotPlayerTurn)
		return
	}
	a.recordAction(playerID, "turn_pass")
	a.transitionToPhase(PhaseTurnEnd)
}

func (a *Actor) handlePriorityPass(playerID, connectionID string) {
	if err := a.state.PassPriority(playerID); err != nil {
		a.replyError(playerID, connectionID, err)
		return
	}
	a.recordAction(playerID, "priority_pass")
	a.broadcaster.BroadcastPhaseChange(a.state)
	a.broadcaster.BroadcastFullState(a.state)
}

// transitionToPhase applies a phase transition, performs phase-scoped
// automatic effects and broadcasts the result.
func (a *Actor) transitionToPhase(phase Phase) {
	if err := a.state.TransitionToPhase(phase); err != nil {
		log.Warnf("game %s: transition to %s: %v", a.gameID, phase, err)
	}
	if a.state.CurrentPhase == PhaseLoot {
		if _, err := a.state.Board.DrawLootForPlayer(a.state.TurnOrder.Active); err != nil {
			log.Warnf("game %s: loot step draw: %v", a.gameID, err)
		}
	}
	a.broadcaster.BroadcastPhaseChange(a.state)
	a.broadcaster.BroadcastFullState(a.state)
}

// checkWin evaluates the placeholder win condition and, when met,
// announces the winner and stops the game.
func (a *Actor) checkWin() bool {
	if a.state.TurnOrder.TurnCounter() < WinTurnThreshold {
		return false
	}
	winner := a.state.TurnOrder.Order[0]
	a.state.GameRunning = false
	a.recordAction(winner, "game_end")
	a.broadcaster.BroadcastGameEnded(winner)
	log.Infof("game %s: ended, winner %s", a.gameID, winner)
	return true
}

// replyError routes a rule violation back to the offending player's
// connection. Violations are feedback, not server failures.
func (a *Actor) replyError(playerID, connectionID string, err error) {
	if connectionID == "" {
		cid, ok := a.broadcaster.playerToConn[playerID]
		if !ok {
			log.Debugf("game %s: dropping error for unreachable player %s: %v", a.gameID, playerID, err)
			return
		}
		connectionID = cid
	}
	a.broadcaster.SendError(connectionID, err)
}

// recordAction pushes an action record to the historian, best-effort
// and off the actor goroutine so game progress never waits on Redis.
func (a *Actor) recordAction(playerID, actionType string) {
	if a.historian == nil {
		return
	}
	a.actionIndex++
	record := history.ActionRecord{
		GameID:      a.gameID,
		ActionIndex: a.actionIndex,
		PlayerID:    playerID,
		ActionType:  actionType,
		Timestamp:   time.Now().UnixMilli(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), historianTimeout)
		defer cancel()
		if err := a.historian.Publish(ctx, record); err != nil {
			log.Warnf("game %s: historian publish failed: %v", a.gameID, err)
		}
	}()
}
