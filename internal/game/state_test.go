// internal/game/state_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlundberg/foursouls/internal/apperr"
)

func testState(t *testing.T, players ...string) *State {
	t.Helper()
	if players == nil {
		players = []string{"p1", "p2", "p3"}
	}
	to := &TurnOrder{Order: players, Active: players[0]}
	board := NewBoard(testCatalog(t), players)
	return NewState(to, board)
}

func TestPhaseCycle(t *testing.T) {
	assert.Equal(t, PhaseLoot, PhaseUntapStart.Next())
	assert.Equal(t, PhaseAction, PhaseLoot.Next())
	assert.Equal(t, PhaseEnd, PhaseAction.Next())
	assert.Equal(t, PhaseTurnEnd, PhaseEnd.Next())
	assert.Equal(t, PhaseUntapStart, PhaseTurnEnd.Next())
}

func TestNewStateOpensPriorityOnActive(t *testing.T) {
	s := testState(t)
	assert.Equal(t, PhaseUntapStart, s.CurrentPhase)
	assert.True(t, s.WaitingForPriority)
	assert.Equal(t, "p1", s.CurrentPriorityPlayer)
	assert.True(t, s.GameRunning)
	assert.Empty(t, s.PlayersPassedPriority)
}

func TestTransitionToOrdinaryPhase(t *testing.T) {
	s := testState(t)
	s.PlayersPassedPriority["p2"] = struct{}{}

	require.NoError(t, s.TransitionToPhase(PhaseAction))
	assert.Equal(t, PhaseAction, s.CurrentPhase)
	assert.Equal(t, "p1", s.CurrentPriorityPlayer)
	assert.True(t, s.WaitingForPriority)
	assert.Empty(t, s.PlayersPassedPriority, "pass set resets on every transition")
	assert.Equal(t, uint32(0), s.TurnOrder.TurnCounter())
}

func TestTransitionToTurnEndRollsTheTurn(t *testing.T) {
	s := testState(t)
	handBefore := len(s.Board.Players["p2"].Hand)

	require.NoError(t, s.TransitionToPhase(PhaseTurnEnd))
	assert.Equal(t, "p2", s.TurnOrder.Active)
	assert.Equal(t, uint32(1), s.TurnOrder.TurnCounter())
	assert.Equal(t, PhaseUntapStart, s.CurrentPhase)
	assert.Equal(t, "p2", s.CurrentPriorityPlayer)
	assert.Len(t, s.Board.Players["p2"].Hand, handBefore+1, "new active player auto-draws")
}

func TestPriorityPassRotation(t *testing.T) {
	s := testState(t)

	require.NoError(t, s.PassPriority("p1"))
	assert.Equal(t, "p2", s.CurrentPriorityPlayer)
	assert.Equal(t, PhaseUntapStart, s.CurrentPhase)

	require.NoError(t, s.PassPriority("p2"))
	assert.Equal(t, "p3", s.CurrentPriorityPlayer)

	// Last pass completes the round: phase advances and the pass set
	// resets with priority back on the active player.
	require.NoError(t, s.PassPriority("p3"))
	assert.Equal(t, PhaseLoot, s.CurrentPhase)
	assert.Equal(t, "p1", s.CurrentPriorityPlayer)
	assert.Empty(t, s.PlayersPassedPriority)
}

func TestPriorityInvariant(t *testing.T) {
	s := testState(t)
	require.NoError(t, s.PassPriority("p1"))

	// While waiting, the priority holder is never in the pass set.
	_, passed := s.PlayersPassedPriority[s.CurrentPriorityPlayer]
	assert.False(t, passed)
	assert.Contains(t, s.TurnOrder.Order, s.CurrentPriorityPlayer)
}

func TestPassPriorityOutOfTurn(t *testing.T) {
	s := testState(t)

	err := s.PassPriority("p2")
	assert.ErrorIs(t, err, apperr.ErrInvalidPriorityPass)

	// Passing twice is also invalid: priority has moved on.
	require.NoError(t, s.PassPriority("p1"))
	err = s.PassPriority("p1")
	assert.ErrorIs(t, err, apperr.ErrInvalidPriorityPass)
}

func TestFullPriorityRoundThroughEndStepRollsTurn(t *testing.T) {
	s := testState(t, "p1", "p2")

	// Four full rounds walk UntapStart -> Loot -> Action -> End; the
	// round completed in EndStep lands in TurnEnd, which rolls over.
	for phase := 0; phase < 4; phase++ {
		require.NoError(t, s.PassPriority(s.CurrentPriorityPlayer))
		require.NoError(t, s.PassPriority(s.CurrentPriorityPlayer))
	}
	assert.Equal(t, PhaseUntapStart, s.CurrentPhase)
	assert.Equal(t, "p2", s.TurnOrder.Active)
	assert.Equal(t, uint32(1), s.TurnOrder.TurnCounter())
}

func TestCanPlayerPassTurn(t *testing.T) {
	s := testState(t)
	assert.True(t, s.CanPlayerPassTurn("p1"))
	assert.False(t, s.CanPlayerPassTurn("p2"))
}
