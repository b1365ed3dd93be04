// internal/protocol/responses.go
//
// Outbound wire schema. Responses use the same externally tagged union
// encoding as inbound messages.
package protocol

import (
	"encoding/json"
	"sort"

	"github.com/mlundberg/foursouls/internal/apperr"
	"github.com/mlundberg/foursouls/internal/cards"
	"github.com/mlundberg/foursouls/internal/reliable"
)

// Response is one outbound payload. A nil payload marks a unit variant.
type Response struct {
	variant string
	payload any
}

// MarshalJSON encodes unit variants as the bare name and struct
// variants as a single-key object.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.payload == nil {
		return json.Marshal(r.variant)
	}
	return json.Marshal(map[string]any{r.variant: r.payload})
}

// Variant exposes the tag, mostly for tests and logging.
func (r Response) Variant() string { return r.variant }

// Encode serialises a response to its wire form. A response that fails
// to serialise degrades to a serialisation Error response, which is
// built from plain strings and cannot itself fail.
func Encode(r Response) string {
	data, err := json.Marshal(r)
	if err != nil {
		data, _ = json.Marshal(ErrorResponse(apperr.Serialization(err.Error())))
	}
	return string(data)
}

type connectionIDPayload struct {
	ConnectionID string `json:"connection_id"`
}

type chatMessagePayload struct {
	PlayerName string `json:"player_name"`
	Message    string `json:"message"`
}

type roomCreatedPayload struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
}

type roomIDPayload struct {
	RoomID string `json:"room_id"`
}

type playerJoinedPayload struct {
	PlayerName string `json:"player_name"`
	PlayerID   string `json:"player_id"`
}

type playerLeftPayload struct {
	PlayerName string `json:"player_name"`
}

type playersReadyPayload struct {
	PlayersReady []string `json:"players_ready"`
}

type roomGameStartPayload struct {
	TurnOrder []string `json:"turn_order"`
}

type turnPhaseChangePayload struct {
	PlayerID string `json:"player_id"`
	Phase    string `json:"phase"`
}

// PublicPlayer is the spectator-safe view of an in-game player: hand
// size only, never hand contents.
type PublicPlayer struct {
	HandSize      int   `json:"hand_size"`
	MaxHealth     uint8 `json:"max_health"`
	CurrentHealth uint8 `json:"current_health"`
	LootPlayTurn  bool  `json:"loot_play_turn"`
	LootPlayChar  bool  `json:"loot_play_char"`
}

// PublicBoardPayload is broadcast to every in-game connection.
type PublicBoardPayload struct {
	LootDeckSize int                     `json:"loot_deck_size"`
	LootDiscard  []cards.LootCard        `json:"loot_discard"`
	CurrentPhase string                  `json:"current_phase"`
	ActivePlayer string                  `json:"active_player"`
	Players      map[string]PublicPlayer `json:"players"`
}

type privateBoardPayload struct {
	Hand []cards.LootCard `json:"hand"`
}

type gameEndedPayload struct {
	WinnerID string `json:"winner_id"`
}

type errorPayload struct {
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
	Code      int    `json:"code"`
}

func ConnectionID(connectionID string) Response {
	return Response{variant: "ConnectionId", payload: connectionIDPayload{ConnectionID: connectionID}}
}

func Pong() Response {
	return Response{variant: "Pong"}
}

func ChatMessage(playerName, message string) Response {
	return Response{variant: "ChatMessage", payload: chatMessagePayload{PlayerName: playerName, Message: message}}
}

func RoomCreated(roomID, playerID string) Response {
	return Response{variant: "RoomCreated", payload: roomCreatedPayload{RoomID: roomID, PlayerID: playerID}}
}

func RoomCreatedBroadcast(roomID string) Response {
	return Response{variant: "RoomCreatedBroadcast", payload: roomIDPayload{RoomID: roomID}}
}

func RoomDestroyed(roomID string) Response {
	return Response{variant: "RoomDestroyed", payload: roomIDPayload{RoomID: roomID}}
}

func SelfJoined(playerName, playerID string) Response {
	return Response{variant: "SelfJoined", payload: playerJoinedPayload{PlayerName: playerName, PlayerID: playerID}}
}

func PlayerJoined(playerName, playerID string) Response {
	return Response{variant: "PlayerJoined", payload: playerJoinedPayload{PlayerName: playerName, PlayerID: playerID}}
}

func PlayerLeft(playerName string) Response {
	return Response{variant: "PlayerLeft", payload: playerLeftPayload{PlayerName: playerName}}
}

// PlayersReady carries the ready set in sorted order so the encoding
// is stable.
func PlayersReady(playersReady []string) Response {
	sorted := make([]string, len(playersReady))
	copy(sorted, playersReady)
	sort.Strings(sorted)
	return Response{variant: "PlayersReady", payload: playersReadyPayload{PlayersReady: sorted}}
}

func LobbyStartedGame(roomID string) Response {
	return Response{variant: "LobbyStartedGame", payload: roomIDPayload{RoomID: roomID}}
}

func RoomGameStart(turnOrder []string) Response {
	return Response{variant: "RoomGameStart", payload: roomGameStartPayload{TurnOrder: turnOrder}}
}

func TurnPhaseChange(playerID, phase string) Response {
	return Response{variant: "TurnPhaseChange", payload: turnPhaseChangePayload{PlayerID: playerID, Phase: phase}}
}

func PublicBoardState(payload PublicBoardPayload) Response {
	return Response{variant: "PublicBoardState", payload: payload}
}

func PrivateBoardState(hand []cards.LootCard) Response {
	if hand == nil {
		hand = []cards.LootCard{}
	}
	return Response{variant: "PrivateBoardState", payload: privateBoardPayload{Hand: hand}}
}

func GameEnded(winnerID string) Response {
	return Response{variant: "GameEnded", payload: gameEndedPayload{WinnerID: winnerID}}
}

// ErrorResponse translates any error into the wire Error variant.
func ErrorResponse(err error) Response {
	appErr := apperr.From(err)
	return Response{variant: "Error", payload: errorPayload{
		ErrorType: appErr.Type,
		Message:   appErr.Message,
		Code:      appErr.Code(),
	}}
}

// ReliableEnvelope wraps a reliable message for the wire.
func ReliableEnvelope(msg reliable.Message) Response {
	return Response{variant: "Reliable", payload: msg}
}

// AckEnvelope wraps an ack for the wire.
func AckEnvelope(ack reliable.Ack) Response {
	return Response{variant: "Ack", payload: ack}
}
