// internal/protocol/messages.go
//
// Inbound wire schema. Payloads are externally tagged JSON unions:
// unit variants are encoded as the bare variant name ("Ping"), struct
// variants as a single-key object ({"Chat":{"message":"hi"}}).
package protocol

import (
	"encoding/json"

	"github.com/mlundberg/foursouls/internal/apperr"
	"github.com/mlundberg/foursouls/internal/reliable"
)

// ClientMessageType names an inbound variant.
type ClientMessageType string

const (
	TypePing         ClientMessageType = "Ping"
	TypeChat         ClientMessageType = "Chat"
	TypeCreateRoom   ClientMessageType = "CreateRoom"
	TypeDestroyRoom  ClientMessageType = "DestroyRoom"
	TypeJoinRoom     ClientMessageType = "JoinRoom"
	TypeLeaveRoom    ClientMessageType = "LeaveRoom"
	TypePlayerReady  ClientMessageType = "PlayerReady"
	TypeTurnPass     ClientMessageType = "TurnPass"
	TypePriorityPass ClientMessageType = "PriorityPass"
)

// Category splits inbound messages between the lobby actor and the
// per-game actors.
type Category int

const (
	CategoryLobby Category = iota
	CategoryGame
)

// ClientMessage is one parsed inbound payload. Exactly the payload
// pointer matching Type is non-nil.
type ClientMessage struct {
	Type        ClientMessageType
	Chat        *ChatPayload
	CreateRoom  *CreateRoomPayload
	DestroyRoom *DestroyRoomPayload
	JoinRoom    *JoinRoomPayload
}

type ChatPayload struct {
	Message string `json:"message"`
}

type CreateRoomPayload struct {
	RoomName        string `json:"room_name"`
	FirstPlayerName string `json:"first_player_name"`
}

type DestroyRoomPayload struct {
	RoomID string `json:"room_id"`
}

type JoinRoomPayload struct {
	PlayerName string `json:"player_name"`
	RoomID     string `json:"room_id"`
}

// Category classifies the message for routing.
func (m ClientMessage) Category() Category {
	switch m.Type {
	case TypeTurnPass, TypePriorityPass:
		return CategoryGame
	default:
		return CategoryLobby
	}
}

// UnmarshalJSON accepts both encodings of the tagged union.
func (m *ClientMessage) UnmarshalJSON(data []byte) error {
	// Bare string form: a unit variant.
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		return m.decodeVariant(name, nil)
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(data, &object); err != nil {
		return apperr.UnknownMessage("payload is neither a variant name nor an object")
	}
	if len(object) != 1 {
		return apperr.UnknownMessage("payload must carry exactly one variant")
	}
	for variant, payload := range object {
		return m.decodeVariant(variant, payload)
	}
	return nil
}

func (m *ClientMessage) decodeVariant(variant string, payload json.RawMessage) error {
	*m = ClientMessage{Type: ClientMessageType(variant)}
	switch m.Type {
	case TypePing, TypeLeaveRoom, TypePlayerReady, TypeTurnPass, TypePriorityPass:
		return nil
	case TypeChat:
		m.Chat = &ChatPayload{}
		return decodePayload(variant, payload, m.Chat)
	case TypeCreateRoom:
		m.CreateRoom = &CreateRoomPayload{}
		return decodePayload(variant, payload, m.CreateRoom)
	case TypeDestroyRoom:
		m.DestroyRoom = &DestroyRoomPayload{}
		return decodePayload(variant, payload, m.DestroyRoom)
	case TypeJoinRoom:
		m.JoinRoom = &JoinRoomPayload{}
		return decodePayload(variant, payload, m.JoinRoom)
	default:
		return apperr.UnknownMessage(variant)
	}
}

func decodePayload(variant string, payload json.RawMessage, into any) error {
	if len(payload) == 0 || string(payload) == "null" {
		return apperr.UnknownMessage(variant + " requires a payload")
	}
	if err := json.Unmarshal(payload, into); err != nil {
		return apperr.UnknownMessage(variant + ": " + err.Error())
	}
	return nil
}

// Frame is one decoded transport frame: either a plain client message
// or an envelope of the reliable sublayer.
type Frame struct {
	Client   *ClientMessage
	Reliable *reliable.Message
	Ack      *reliable.Ack
}

// ParseFrame decodes an inbound text frame, peeling the reliable
// envelope if present.
func ParseFrame(data []byte) (Frame, error) {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(data, &object); err == nil && len(object) == 1 {
		if payload, ok := object["Reliable"]; ok {
			var msg reliable.Message
			if err := json.Unmarshal(payload, &msg); err != nil {
				return Frame{}, apperr.UnknownMessage("Reliable: " + err.Error())
			}
			return Frame{Reliable: &msg}, nil
		}
		if payload, ok := object["Ack"]; ok {
			var ack reliable.Ack
			if err := json.Unmarshal(payload, &ack); err != nil {
				return Frame{}, apperr.UnknownMessage("Ack: " + err.Error())
			}
			return Frame{Ack: &ack}, nil
		}
	}

	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return Frame{}, err
	}
	return Frame{Client: &msg}, nil
}
