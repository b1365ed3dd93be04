// internal/game/turn_order.go
package game

import "math/rand"

// TurnOrder is a randomised cyclic sequence of player ids with an
// active cursor and a monotonic turn counter.
type TurnOrder struct {
	Order   []string
	Active  string
	counter uint32
}

// NewTurnOrder shuffles the given player ids uniformly and activates
// the first. The slice must be non-empty.
func NewTurnOrder(playerIDs []string) *TurnOrder {
	order := make([]string, len(playerIDs))
	copy(order, playerIDs)
	rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return &TurnOrder{Order: order, Active: order[0]}
}

// IsPlayerTurn reports whether p holds the active cursor.
func (t *TurnOrder) IsPlayerTurn(p string) bool { return p == t.Active }

// Advance rotates the active cursor to the next player in order,
// increments the turn counter and returns the new active player.
func (t *TurnOrder) Advance() string {
	idx := t.indexOf(t.Active)
	t.Active = t.Order[(idx+1)%len(t.Order)]
	t.counter++
	return t.Active
}

// TurnCounter reports how many times the cursor has advanced.
func (t *TurnOrder) TurnCounter() uint32 { return t.counter }

// NextAfter returns the player following p in cyclic order.
func (t *TurnOrder) NextAfter(p string) string {
	idx := t.indexOf(p)
	return t.Order[(idx+1)%len(t.Order)]
}

func (t *TurnOrder) indexOf(p string) int {
	for i, id := range t.Order {
		if id == p {
			return i
		}
	}
	// Active is maintained as a member of Order, so this only fires on
	// a corrupted caller-supplied id. Treat it as position zero.
	return 0
}
