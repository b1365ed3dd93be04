// internal/game/turn_order_test.go
package game

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTurnOrderIsPermutation(t *testing.T) {
	players := []string{"p1", "p2", "p3", "p4"}
	to := NewTurnOrder(players)

	require.Len(t, to.Order, 4)
	sorted := make([]string, 4)
	copy(sorted, to.Order)
	sort.Strings(sorted)
	assert.Equal(t, players, sorted)

	assert.Equal(t, to.Order[0], to.Active)
	assert.Equal(t, uint32(0), to.TurnCounter())
	assert.True(t, to.IsPlayerTurn(to.Active))
}

func TestAdvanceRotatesAndCounts(t *testing.T) {
	to := &TurnOrder{Order: []string{"a", "b", "c"}, Active: "a"}

	assert.Equal(t, "b", to.Advance())
	assert.Equal(t, "c", to.Advance())
	assert.Equal(t, "a", to.Advance(), "wraps around")
	assert.Equal(t, uint32(3), to.TurnCounter())

	// k advances leave the counter at exactly k.
	for i := 0; i < 7; i++ {
		to.Advance()
	}
	assert.Equal(t, uint32(10), to.TurnCounter())
	assert.Contains(t, to.Order, to.Active)
}

func TestNextAfter(t *testing.T) {
	to := &TurnOrder{Order: []string{"a", "b", "c"}, Active: "a"}
	assert.Equal(t, "b", to.NextAfter("a"))
	assert.Equal(t, "a", to.NextAfter("c"))
}
