// internal/ws/handler.go
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mlundberg/foursouls/internal/connactor"
	"github.com/mlundberg/foursouls/internal/middleware"
	"github.com/mlundberg/foursouls/internal/netio"
	"github.com/mlundberg/foursouls/internal/protocol"
	"github.com/mlundberg/foursouls/internal/registry"
)

// keepaliveInterval is how often the server pings an idle client so
// intermediaries keep the connection open.
const keepaliveInterval = 30 * time.Second

// Handler upgrades HTTP requests to the game websocket. Each accepted
// transport gets a fresh connection id, a connection actor and an
// outbound sink; the first server frame is always ConnectionId.
func Handler(logger *logrus.Logger, reg *registry.ActorRegistry, commands chan<- netio.Command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		connectionID := uuid.NewString()
		middleware.LogWebSocketConnect(logger, connectionID, r.RemoteAddr)

		actor := connactor.NewActor(connectionID, reg, commands)
		reg.RegisterConnectionActor(connectionID, actor.Inbox())
		go actor.Run()

		commands <- netio.AddConnection{ID: connectionID, Sink: &connSink{conn: c}}
		commands <- netio.SendToPlayer{
			ConnectionID: connectionID,
			Message:      protocol.Encode(protocol.ConnectionID(connectionID)),
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		go keepalive(ctx, c)

		readPump(ctx, c, connectionID, actor, commands, logger)

		commands <- netio.RemoveConnection{ID: connectionID}
		actor.Inbox() <- connactor.Disconnect{}
		middleware.LogWebSocketDisconnect(logger, connectionID, nil)
	}
}

// readPump feeds parsed frames into the connection actor until the
// transport errors or closes.
func readPump(ctx context.Context, c *websocket.Conn, connectionID string, actor *connactor.Actor, commands chan<- netio.Command, logger *logrus.Logger) {
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return
			}
			logger.Debugf("connection %s read error: %v", connectionID, err)
			return
		}
		frame, err := protocol.ParseFrame(data)
		if err != nil {
			commands <- netio.SendToPlayer{
				ConnectionID: connectionID,
				Message:      protocol.Encode(protocol.ErrorResponse(err)),
			}
			continue
		}
		actor.Inbox() <- connactor.InboundFrame{Frame: frame}
	}
}

func keepalive(ctx context.Context, c *websocket.Conn) {
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
