// internal/netio/connection_manager.go
package netio

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// writeTimeout bounds a single transport write so one stalled client
// cannot wedge the command loop.
const writeTimeout = 5 * time.Second

// ConnectionManager owns the conn_id -> sink mapping. It is used only
// from the command loop goroutine and therefore needs no locking. A
// failed write removes the faulty connection instead of buffering.
type ConnectionManager struct {
	connections map[string]Sink
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{connections: make(map[string]Sink)}
}

// Add registers a sink, replacing any previous sink for the id.
func (m *ConnectionManager) Add(id string, sink Sink) {
	m.connections[id] = sink
	log.Debugf("connection manager: added %s (%d total)", id, len(m.connections))
}

// Remove drops a sink.
func (m *ConnectionManager) Remove(id string) {
	delete(m.connections, id)
	log.Debugf("connection manager: removed %s (%d total)", id, len(m.connections))
}

// Count reports the number of registered sinks.
func (m *ConnectionManager) Count() int { return len(m.connections) }

// SendToOne writes to a single connection; unknown ids are ignored
// (the connection is already gone).
func (m *ConnectionManager) SendToOne(connectionID, message string) {
	sink, ok := m.connections[connectionID]
	if !ok {
		log.Debugf("connection manager: dropping message for unknown connection %s", connectionID)
		return
	}
	m.write(connectionID, sink, message)
}

// SendToMany fans a message out to a recipient list.
func (m *ConnectionManager) SendToMany(connectionIDs []string, message string) {
	for _, id := range connectionIDs {
		m.SendToOne(id, message)
	}
}

// SendToAll broadcasts to every registered connection.
func (m *ConnectionManager) SendToAll(message string) {
	failed := make([]string, 0)
	for id, sink := range m.connections {
		if !m.writeOnce(id, sink, message) {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		m.Remove(id)
	}
}

func (m *ConnectionManager) write(connectionID string, sink Sink, message string) {
	if !m.writeOnce(connectionID, sink, message) {
		m.Remove(connectionID)
	}
}

func (m *ConnectionManager) writeOnce(connectionID string, sink Sink, message string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := sink.WriteText(ctx, []byte(message)); err != nil {
		log.Warnf("connection manager: write to %s failed, dropping connection: %v", connectionID, err)
		return false
	}
	return true
}
