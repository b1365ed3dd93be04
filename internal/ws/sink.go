// internal/ws/sink.go
package ws

import (
	"context"

	"github.com/coder/websocket"
)

// connSink adapts a websocket connection to the outbound sink the
// command loop writes to.
type connSink struct {
	conn *websocket.Conn
}

func (s *connSink) WriteText(ctx context.Context, data []byte) error {
	return s.conn.Write(ctx, websocket.MessageText, data)
}
