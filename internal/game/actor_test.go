// internal/game/actor_test.go
package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlundberg/foursouls/internal/cards"
	"github.com/mlundberg/foursouls/internal/netio"
	"github.com/mlundberg/foursouls/internal/protocol"
)

// setupTestActor builds a two-player game with a captured outbound
// channel. Messages are fed through handle directly so every assertion
// runs synchronously.
func setupTestActor(t *testing.T) (*Actor, chan netio.Command) {
	t.Helper()
	commands := make(chan netio.Command, 1024)
	playerToConn := map[string]string{"p1": "c1", "p2": "c2"}
	actor := NewActor("g1", playerToConn, testCatalog(t,
		cards.Template{ID: "penny", Name: "A Penny!", Count: 80},
		cards.Template{ID: "bomb", Name: "Bomb!", Count: 40},
	), commands, nil, nil)
	actor.initialize()
	drain(commands)
	return actor, commands
}

// drain empties the command channel and returns what was queued.
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

// variantOf extracts the tagged-union variant name from an encoded
// response.
func variantOf(t *testing.T, encoded string) string {
	t.Helper()
	var name string
	if err := json.Unmarshal([]byte(encoded), &name); err == nil {
		return name
	}
	var object map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(encoded), &object))
	require.Len(t, object, 1)
	for key := range object {
		return key
	}
	return ""
}

func messageOf(cmd netio.Command) (string, bool) {
	switch c := cmd.(type) {
	case netio.SendToPlayer:
		return c.Message, true
	case netio.SendToPlayers:
		return c.Message, true
	case netio.SendToAll:
		return c.Message, true
	}
	return "", false
}

func variantsOf(t *testing.T, cmds []netio.Command) []string {
	t.Helper()
	var names []string
	for _, cmd := range cmds {
		if msg, ok := messageOf(cmd); ok {
			names = append(names, variantOf(t, msg))
		}
	}
	return names
}

func TestActorInitialization(t *testing.T) {
	commands := make(chan netio.Command, 1024)
	actor := NewActor("g1", map[string]string{"p1": "c1", "p2": "c2"}, testCatalog(t), commands, nil, nil)
	actor.initialize()

	// The active player auto-draws once on top of the opening hand.
	active := actor.state.TurnOrder.Active
	assert.Len(t, actor.state.Board.Players[active].Hand, 4)
	assert.Equal(t, PhaseUntapStart, actor.state.CurrentPhase)

	variants := variantsOf(t, drain(commands))
	assert.Contains(t, variants, "PublicBoardState")
	assert.Contains(t, variants, "PrivateBoardState")
	assert.Contains(t, variants, "TurnPhaseChange")
}

func TestTurnPassAdvancesTurn(t *testing.T) {
	actor, commands := setupTestActor(t)
	active := actor.state.TurnOrder.Active

	actor.handle(TurnPass{PlayerID: active})

	assert.NotEqual(t, active, actor.state.TurnOrder.Active)
	assert.Equal(t, uint32(1), actor.state.TurnOrder.TurnCounter())

	variants := variantsOf(t, drain(commands))
	assert.Contains(t, variants, "PublicBoardState")
	assert.Contains(t, variants, "TurnPhaseChange")
	assert.NotContains(t, variants, "Error")
}

func TestTurnPassOutOfTurnIsRejected(t *testing.T) {
	actor, commands := setupTestActor(t)
	inactive := actor.state.TurnOrder.Order[1]
	counterBefore := actor.state.TurnOrder.TurnCounter()

	actor.handle(TurnPass{PlayerID: inactive})

	assert.Equal(t, counterBefore, actor.state.TurnOrder.TurnCounter(), "no state change")
	cmds := drain(commands)
	require.Len(t, cmds, 1, "only the offender hears about it")
	send, ok := cmds[0].(netio.SendToPlayer)
	require.True(t, ok)
	assert.Equal(t, "Error", variantOf(t, send.Message))

	var decoded map[string]struct {
		ErrorType string `json:"error_type"`
		Code      int    `json:"code"`
	}
	require.NoError(t, json.Unmarshal([]byte(send.Message), &decoded))
	assert.Equal(t, "NotPlayerTurn", decoded["Error"].ErrorType)
	assert.Equal(t, 200, decoded["Error"].Code)
}

func TestConnectionScopedMessagesResolveThroughBimap(t *testing.T) {
	actor, commands := setupTestActor(t)
	activeConn := actor.broadcaster.playerToConn[actor.state.TurnOrder.Active]

	actor.handle(TurnPassFromConnection{ConnectionID: activeConn})
	assert.Equal(t, uint32(1), actor.state.TurnOrder.TurnCounter())
	drain(commands)

	actor.handle(TurnPassFromConnection{ConnectionID: "stranger"})
	cmds := drain(commands)
	require.Len(t, cmds, 1)
	send := cmds[0].(netio.SendToPlayer)
	assert.Equal(t, "stranger", send.ConnectionID)
	assert.Equal(t, "Error", variantOf(t, send.Message))
}

func TestPriorityPassBroadcasts(t *testing.T) {
	actor, commands := setupTestActor(t)
	holder := actor.state.CurrentPriorityPlayer

	actor.handle(PriorityPass{PlayerID: holder})
	variants := variantsOf(t, drain(commands))
	assert.Contains(t, variants, "TurnPhaseChange")
	assert.Contains(t, variants, "PublicBoardState")

	// A pass from someone without priority only yields an error.
	actor.handle(PriorityPass{PlayerID: holder})
	variants = variantsOf(t, drain(commands))
	assert.Equal(t, []string{"Error"}, variants)
}

func TestPrivateStateConfidentiality(t *testing.T) {
	actor, commands := setupTestActor(t)
	actor.broadcaster.BroadcastFullState(actor.state)

	for _, cmd := range drain(commands) {
		send, ok := cmd.(netio.SendToPlayer)
		if !ok {
			continue
		}
		if variantOf(t, send.Message) != "PrivateBoardState" {
			continue
		}
		owner := actor.broadcaster.connToPlayer[send.ConnectionID]
		var decoded map[string]struct {
			Hand []struct {
				OwnerID string `json:"owner_id"`
			} `json:"hand"`
		}
		require.NoError(t, json.Unmarshal([]byte(send.Message), &decoded))
		for _, card := range decoded["PrivateBoardState"].Hand {
			assert.Equal(t, owner, card.OwnerID, "a hand only goes to its owner")
		}
	}
}

func TestPublicStateHidesHands(t *testing.T) {
	actor, commands := setupTestActor(t)
	actor.broadcaster.BroadcastPublicState(actor.state)

	cmds := drain(commands)
	require.Len(t, cmds, 1)
	msg, _ := messageOf(cmds[0])

	var decoded map[string]protocol.PublicBoardPayload
	require.NoError(t, json.Unmarshal([]byte(msg), &decoded))
	payload := decoded["PublicBoardState"]
	require.Len(t, payload.Players, 2)
	for pid, p := range payload.Players {
		assert.Equal(t, len(actor.state.Board.Players[pid].Hand), p.HandSize)
	}
	assert.NotContains(t, msg, `"hand":`, "public snapshots carry sizes, not contents")
}

func TestWinCondition(t *testing.T) {
	actor, commands := setupTestActor(t)

	// Drive the placeholder win condition: the turn counter crosses
	// the threshold and the first player in the order wins.
	for i := 0; i < WinTurnThreshold; i++ {
		actor.handle(TurnPass{PlayerID: actor.state.TurnOrder.Active})
		if i%10 == 0 {
			drain(commands)
		}
	}
	require.True(t, actor.checkWin())
	assert.False(t, actor.state.GameRunning)

	variants := variantsOf(t, drain(commands))
	assert.Contains(t, variants, "GameEnded")
}
