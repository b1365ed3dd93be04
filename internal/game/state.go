// internal/game/state.go
package game

import "github.com/mlundberg/foursouls/internal/apperr"

// Phase is the discrete stage within a player's turn. TurnEnd is a
// transient marker: transitioning into it immediately rolls the turn
// over into the next player's UntapStartStep.
type Phase string

const (
	PhaseUntapStart Phase = "UntapStartStep"
	PhaseLoot       Phase = "LootStep"
	PhaseAction     Phase = "ActionStep"
	PhaseEnd        Phase = "EndStep"
	PhaseTurnEnd    Phase = "TurnEnd"
)

// Next returns the successor in the fixed phase cycle.
func (p Phase) Next() Phase {
	switch p {
	case PhaseUntapStart:
		return PhaseLoot
	case PhaseLoot:
		return PhaseAction
	case PhaseAction:
		return PhaseEnd
	case PhaseEnd:
		return PhaseTurnEnd
	default:
		return PhaseUntapStart
	}
}

// State is the authoritative per-game state. It is owned by a single
// game actor and mutated in place; every other component only ever
// sees broadcast snapshots derived from it.
type State struct {
	TurnOrder             *TurnOrder
	CurrentPhase          Phase
	CurrentPriorityPlayer string
	PlayersPassedPriority map[string]struct{}
	Board                 *Board
	GameRunning           bool
	WaitingForPriority    bool
}

// NewState starts a game in UntapStartStep with priority on the active
// player.
func NewState(turnOrder *TurnOrder, board *Board) *State {
	return &State{
		TurnOrder:             turnOrder,
		CurrentPhase:          PhaseUntapStart,
		CurrentPriorityPlayer: turnOrder.Active,
		PlayersPassedPriority: make(map[string]struct{}),
		Board:                 board,
		GameRunning:           true,
		WaitingForPriority:    true,
	}
}

// TransitionToPhase applies one phase transition. Entering TurnEnd
// rotates the turn order, resets the phase to UntapStartStep and draws
// one loot card for the new active player. Any other target phase just
// re-opens the priority window on the active player.
func (s *State) TransitionToPhase(newPhase Phase) error {
	if newPhase == PhaseTurnEnd {
		next := s.TurnOrder.Advance()
		s.CurrentPhase = PhaseUntapStart
		s.CurrentPriorityPlayer = next
		s.WaitingForPriority = true
		clear(s.PlayersPassedPriority)
		// Stand-in for the untap/draw steps of a full turn.
		_, err := s.Board.DrawLootForPlayer(next)
		return err
	}
	s.CurrentPhase = newPhase
	s.CurrentPriorityPlayer = s.TurnOrder.Active
	s.WaitingForPriority = true
	clear(s.PlayersPassedPriority)
	return nil
}

// CanPlayerPassPriority reports whether p currently holds priority.
func (s *State) CanPlayerPassPriority(p string) bool {
	return s.WaitingForPriority && s.CurrentPriorityPlayer == p
}

// CanPlayerPassTurn reports whether p may end the turn.
func (s *State) CanPlayerPassTurn(p string) bool {
	return s.TurnOrder.IsPlayerTurn(p)
}

// PassPriority records p's priority pass. When every player in the
// turn order has passed, the phase advances; otherwise priority moves
// to the next player in turn order who has not yet passed.
func (s *State) PassPriority(p string) error {
	if !s.CanPlayerPassPriority(p) {
		return apperr.ErrInvalidPriorityPass
	}
	s.PlayersPassedPriority[p] = struct{}{}
	if len(s.PlayersPassedPriority) == len(s.TurnOrder.Order) {
		return s.TransitionToPhase(s.CurrentPhase.Next())
	}
	next := s.TurnOrder.NextAfter(p)
	for {
		if _, passed := s.PlayersPassedPriority[next]; !passed {
			break
		}
		next = s.TurnOrder.NextAfter(next)
	}
	s.CurrentPriorityPlayer = next
	return nil
}
