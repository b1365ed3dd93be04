// internal/apperr/errors.go
package apperr

import (
	"errors"
	"fmt"
)

// Category groups errors by who caused them and how they surface to the
// client. Game errors are user-visible feedback, not server failures.
type Category int

const (
	CategoryClient Category = iota
	CategoryValidation
	CategoryGame
	CategoryServer
)

// Code returns the wire-level code carried in Error responses.
func (c Category) Code() int {
	switch c {
	case CategoryGame:
		return 200
	case CategoryClient:
		return 400
	case CategoryValidation:
		return 422
	default:
		return 500
	}
}

// Error is the application error type. Type is the stable variant name
// sent to clients as error_type.
type Error struct {
	Type     string
	Message  string
	Category Category
}

func (e *Error) Error() string { return e.Message }

// Code is the wire code for this error (400/422/200/500).
func (e *Error) Code() int { return e.Category.Code() }

// ShouldLog reports whether this error indicates a server-side problem
// worth logging, as opposed to routine client feedback.
func (e *Error) ShouldLog() bool { return e.Category == CategoryServer }

// Fixed-shape errors.
var (
	ErrConnectionNotInRoom = &Error{Type: "ConnectionNotInRoom", Message: "you need to join a room first", Category: CategoryClient}
	ErrRoomNameEmpty       = &Error{Type: "RoomNameEmpty", Message: "room name cannot be empty", Category: CategoryValidation}
	ErrTurnOrderNotInit    = &Error{Type: "TurnOrderNotInitialized", Message: "turn order not initialized", Category: CategoryClient}
	ErrNotPlayerTurn       = &Error{Type: "NotPlayerTurn", Message: "it is not your turn", Category: CategoryGame}
	ErrInvalidPriorityPass = &Error{Type: "InvalidPriorityPass", Message: "invalid priority pass", Category: CategoryGame}
	ErrInvalidTurnPass     = &Error{Type: "InvalidTurnPass", Message: "invalid turn pass", Category: CategoryGame}
	ErrPlayerNotFound      = &Error{Type: "PlayerNotFound", Message: "player not found", Category: CategoryGame}
	ErrEmptyLootDeck       = &Error{Type: "EmptyLootDeck", Message: "loot deck and discard are both empty", Category: CategoryGame}
	ErrCardNotInHand       = &Error{Type: "CardNotInHand", Message: "card is not in your hand", Category: CategoryGame}
	ErrGameEnded           = &Error{Type: "GameEnded", Message: "the game has ended", Category: CategoryGame}
)

// Parameterised constructors.

func PlayerAlreadyInRoom(playerName string) *Error {
	return &Error{
		Type:     "PlayerAlreadyInRoom",
		Message:  fmt.Sprintf("player %q is already in a room", playerName),
		Category: CategoryClient,
	}
}

func RoomNotFound(roomID string) *Error {
	return &Error{
		Type:     "RoomNotFound",
		Message:  fmt.Sprintf("room %q not found", roomID),
		Category: CategoryClient,
	}
}

func RoomFull(roomID string, maxPlayers int) *Error {
	return &Error{
		Type:     "RoomFull",
		Message:  fmt.Sprintf("room is full (maximum %d players)", maxPlayers),
		Category: CategoryClient,
	}
}

func RoomInGame(roomID string) *Error {
	return &Error{
		Type:     "RoomInGame",
		Message:  fmt.Sprintf("room %q is already in game", roomID),
		Category: CategoryClient,
	}
}

func ConnectionNotFound(connectionID string) *Error {
	return &Error{
		Type:     "ConnectionNotFound",
		Message:  fmt.Sprintf("connection %q not found", connectionID),
		Category: CategoryServer,
	}
}

func MessageSendFailed(connectionID string) *Error {
	return &Error{
		Type:     "MessageSendFailed",
		Message:  fmt.Sprintf("failed to send message to connection %q", connectionID),
		Category: CategoryServer,
	}
}

func GameMessageLoopNotFound(gameID string) *Error {
	return &Error{
		Type:     "GameMessageLoopNotFound",
		Message:  fmt.Sprintf("game loop for %q not found", gameID),
		Category: CategoryServer,
	}
}

func GameEventSendFailed(reason string) *Error {
	return &Error{
		Type:     "GameEventSendFailed",
		Message:  "failed to send event to game loop: " + reason,
		Category: CategoryServer,
	}
}

func InvalidPlayerName(reason string) *Error {
	return &Error{
		Type:     "InvalidPlayerName",
		Message:  "invalid player name: " + reason,
		Category: CategoryValidation,
	}
}

func InvalidRoomName(reason string) *Error {
	return &Error{
		Type:     "InvalidRoomName",
		Message:  "invalid room name: " + reason,
		Category: CategoryValidation,
	}
}

func UnknownMessage(detail string) *Error {
	return &Error{
		Type:     "UnknownMessage",
		Message:  "unknown message: " + detail,
		Category: CategoryClient,
	}
}

func Serialization(detail string) *Error {
	return &Error{
		Type:     "SerializationError",
		Message:  "invalid message format: " + detail,
		Category: CategoryServer,
	}
}

func Internal(message string) *Error {
	return &Error{
		Type:     "Internal",
		Message:  "internal server error: " + message,
		Category: CategoryServer,
	}
}

// From extracts the typed *Error from err, wrapping anything else as an
// Internal server error so every failure has a variant name and a code.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err.Error())
}

// ValidatePlayerName enforces the name rules shared by join and create.
func ValidatePlayerName(name string) error {
	if len(name) == 0 {
		return InvalidPlayerName("player name cannot be empty")
	}
	if len(name) > 50 {
		return InvalidPlayerName("player name cannot exceed 50 characters")
	}
	for _, r := range name {
		if !isNameRune(r) {
			return InvalidPlayerName("player name can only contain letters, numbers, underscore, and dash")
		}
	}
	return nil
}

// ValidateRoomName rejects blank and oversized room names.
func ValidateRoomName(name string) error {
	if isBlank(name) {
		return ErrRoomNameEmpty
	}
	if len(name) > 100 {
		return InvalidRoomName("room name cannot exceed 100 characters")
	}
	return nil
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	}
	return false
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
