// internal/game/messages.go
package game

// Message is one unit of input for a game actor's inbox.
type Message interface{ isGameMessage() }

// TurnPass ends the active player's turn.
type TurnPass struct {
	PlayerID string
}

// PriorityPass passes priority within the current phase.
type PriorityPass struct {
	PlayerID string
}

// TurnPassFromConnection is a TurnPass whose sender is identified only
// by connection id; the actor resolves it through its own bimap.
type TurnPassFromConnection struct {
	ConnectionID string
}

// PriorityPassFromConnection is the connection-scoped PriorityPass.
type PriorityPassFromConnection struct {
	ConnectionID string
}

func (TurnPass) isGameMessage()                   {}
func (PriorityPass) isGameMessage()               {}
func (TurnPassFromConnection) isGameMessage()     {}
func (PriorityPassFromConnection) isGameMessage() {}
