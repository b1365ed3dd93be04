// internal/netio/command_loop.go
package netio

import (
	log "github.com/sirupsen/logrus"
)

// CommandQueueSize is the buffer of the process-wide command channel.
// The design assumes no backpressure; a full channel only adds latency
// because sends block until the loop catches up.
const CommandQueueSize = 4096

// NewCommandChannel creates the process-wide outbound command channel.
func NewCommandChannel() chan Command {
	return make(chan Command, CommandQueueSize)
}

// RunCommandLoop is the single consumer of the command channel. It owns
// the ConnectionManager: no other goroutine touches the sinks. The loop
// exits when the channel is closed.
func RunCommandLoop(commands <-chan Command, manager *ConnectionManager) {
	log.Info("command loop started")
	for cmd := range commands {
		switch c := cmd.(type) {
		case AddConnection:
			manager.Add(c.ID, c.Sink)
		case RemoveConnection:
			manager.Remove(c.ID)
		case SendToPlayer:
			manager.SendToOne(c.ConnectionID, c.Message)
		case SendToPlayers:
			manager.SendToMany(c.ConnectionIDs, c.Message)
		case SendToAll:
			manager.SendToAll(c.Message)
		default:
			log.Errorf("command loop: unknown command %T", cmd)
		}
	}
	log.Info("command loop stopped")
}
