// internal/connactor/actor_test.go
package connactor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlundberg/foursouls/internal/game"
	"github.com/mlundberg/foursouls/internal/lobby"
	"github.com/mlundberg/foursouls/internal/netio"
	"github.com/mlundberg/foursouls/internal/protocol"
	"github.com/mlundberg/foursouls/internal/reliable"
)

// fakeRegistry records routed messages instead of delivering them.
type fakeRegistry struct {
	lobbyMessages []lobby.Message
	gameMessages  []game.Message
	removed       []string
}

func (f *fakeRegistry) SendLobbyMessage(msg lobby.Message) error {
	f.lobbyMessages = append(f.lobbyMessages, msg)
	return nil
}

func (f *fakeRegistry) SendGameMessage(connectionID string, msg game.Message) error {
	f.gameMessages = append(f.gameMessages, msg)
	return nil
}

func (f *fakeRegistry) RemovePlayerConnection(connectionID string) {
	f.removed = append(f.removed, connectionID)
}

func setupTestConnActor(t *testing.T) (*Actor, *fakeRegistry, chan netio.Command) {
	t.Helper()
	commands := make(chan netio.Command, 256)
	reg := &fakeRegistry{}
	return NewActor("c1", reg, commands), reg, commands
}

func clientFrame(t *testing.T, raw string) InboundFrame {
	t.Helper()
	frame, err := protocol.ParseFrame([]byte(raw))
	require.NoError(t, err)
	return InboundFrame{Frame: frame}
}

func drain(commands chan netio.Command) []netio.Command {
	var out []netio.Command
	for {
		select {
		case cmd := <-commands:
			out = append(out, cmd)
		default:
			return out
		}
	}
}

func TestLobbyMessagesAreTranslated(t *testing.T) {
	a, reg, _ := setupTestConnActor(t)

	a.handle(clientFrame(t, `"Ping"`))
	a.handle(clientFrame(t, `{"CreateRoom":{"room_name":"basement","first_player_name":"isaac"}}`))
	a.handle(clientFrame(t, `{"Chat":{"message":"hi"}}`))

	require.Len(t, reg.lobbyMessages, 3)
	assert.Equal(t, lobby.Ping{ConnectionID: "c1"}, reg.lobbyMessages[0])
	assert.Equal(t, lobby.CreateRoom{ConnectionID: "c1", RoomName: "basement", FirstPlayerName: "isaac"}, reg.lobbyMessages[1])
	assert.Equal(t, lobby.Chat{ConnectionID: "c1", Message: "hi"}, reg.lobbyMessages[2])
}

func TestGameMessagesRequireGameState(t *testing.T) {
	a, reg, commands := setupTestConnActor(t)

	// In lobby state, game traffic is rejected back to the client.
	a.handle(clientFrame(t, `"TurnPass"`))
	assert.Empty(t, reg.gameMessages)
	cmds := drain(commands)
	require.Len(t, cmds, 1)
	send := cmds[0].(netio.SendToPlayer)
	assert.Equal(t, "c1", send.ConnectionID)
	assert.Contains(t, send.Message, "ConnectionNotInRoom")

	// After the transition, it routes to the game.
	a.handle(TransitionToGame{GameID: "g1", PlayerID: "p1"})
	a.handle(clientFrame(t, `"TurnPass"`))
	a.handle(clientFrame(t, `"PriorityPass"`))
	require.Len(t, reg.gameMessages, 2)
	assert.Equal(t, game.TurnPassFromConnection{ConnectionID: "c1"}, reg.gameMessages[0])
	assert.Equal(t, game.PriorityPassFromConnection{ConnectionID: "c1"}, reg.gameMessages[1])
}

func TestTransitionToLobbyBlocksGameTraffic(t *testing.T) {
	a, reg, commands := setupTestConnActor(t)
	a.handle(TransitionToGame{GameID: "g1", PlayerID: "p1"})
	a.handle(TransitionToLobby{})

	a.handle(clientFrame(t, `"TurnPass"`))
	assert.Empty(t, reg.gameMessages)
	assert.Len(t, drain(commands), 1)
}

func TestLeaveRoomResetsStateEagerly(t *testing.T) {
	a, reg, _ := setupTestConnActor(t)
	a.handle(TransitionToGame{GameID: "g1", PlayerID: "p1"})

	a.handle(clientFrame(t, `"LeaveRoom"`))
	require.Len(t, reg.lobbyMessages, 1)
	assert.Equal(t, lobby.LeaveRoom{ConnectionID: "c1"}, reg.lobbyMessages[0])
	assert.False(t, a.state.inGame)
}

func TestReliableReceivePathDeliversInOrder(t *testing.T) {
	a, reg, commands := setupTestConnActor(t)

	// Sequence 2 arrives first: acked, buffered, not dispatched.
	a.handle(clientFrame(t, `{"Reliable":{"id":"m2","sequence":2,"payload":"\"PlayerReady\"","timestamp":1}}`))
	assert.Empty(t, reg.lobbyMessages)
	cmds := drain(commands)
	require.Len(t, cmds, 1)
	assert.Contains(t, cmds[0].(netio.SendToPlayer).Message, "m2")

	// Sequence 1 fills the gap: both dispatch, in order.
	a.handle(clientFrame(t, `{"Reliable":{"id":"m1","sequence":1,"payload":"\"Ping\"","timestamp":1}}`))
	require.Len(t, reg.lobbyMessages, 2)
	assert.Equal(t, lobby.Ping{ConnectionID: "c1"}, reg.lobbyMessages[0])
	assert.Equal(t, lobby.PlayerReady{ConnectionID: "c1"}, reg.lobbyMessages[1])
}

func TestSendReliableTracksPendingUntilAck(t *testing.T) {
	a, _, commands := setupTestConnActor(t)

	a.handle(SendReliable{Payload: `"Pong"`})
	require.Len(t, a.pending, 1)

	cmds := drain(commands)
	require.Len(t, cmds, 1)
	var envelope map[string]reliable.Message
	require.NoError(t, json.Unmarshal([]byte(cmds[0].(netio.SendToPlayer).Message), &envelope))
	msg := envelope["Reliable"]
	assert.Equal(t, `"Pong"`, msg.Payload)

	// The matching ack clears the pending entry.
	a.handle(clientFrame(t, `{"Ack":{"message_id":"`+msg.ID+`"}}`))
	assert.Empty(t, a.pending)
}

func TestRetryGivesUpAfterMaxRetries(t *testing.T) {
	a, _, commands := setupTestConnActor(t)
	a.handle(SendReliable{Payload: `"Pong"`})
	drain(commands)

	var id string
	for mid := range a.pending {
		id = mid
	}
	for i := 0; i < reliable.MaxRetries; i++ {
		a.retryPending(id)
		assert.Len(t, drain(commands), 1, "retry %d resends", i+1)
	}
	a.retryPending(id)
	assert.Empty(t, a.pending, "dropped after max retries")
	assert.Empty(t, drain(commands))
}

func TestCleanupDeregistersAndNotifiesLobby(t *testing.T) {
	a, reg, _ := setupTestConnActor(t)
	a.cleanup()

	assert.Equal(t, []string{"c1"}, reg.removed)
	require.Len(t, reg.lobbyMessages, 1)
	assert.Equal(t, lobby.ConnectionClosed{ConnectionID: "c1"}, reg.lobbyMessages[0])
}
