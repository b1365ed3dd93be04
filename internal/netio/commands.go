// internal/netio/commands.go
package netio

import "context"

// Sink is the outbound half of one client transport. Implementations
// must tolerate concurrent-free single-writer use; the command loop is
// the only caller.
type Sink interface {
	WriteText(ctx context.Context, data []byte) error
}

// Command is one unit of work for the command loop. Commands enqueued
// by a single actor are delivered in enqueue order.
type Command interface{ isCommand() }

// AddConnection registers a new outbound sink.
type AddConnection struct {
	ID   string
	Sink Sink
}

// RemoveConnection drops a sink.
type RemoveConnection struct {
	ID string
}

// SendToPlayer writes to one recipient.
type SendToPlayer struct {
	ConnectionID string
	Message      string
}

// SendToPlayers fans out to a recipient list.
type SendToPlayers struct {
	ConnectionIDs []string
	Message       string
}

// SendToAll broadcasts to every registered sink.
type SendToAll struct {
	Message string
}

func (AddConnection) isCommand()    {}
func (RemoveConnection) isCommand() {}
func (SendToPlayer) isCommand()     {}
func (SendToPlayers) isCommand()    {}
func (SendToAll) isCommand()        {}
