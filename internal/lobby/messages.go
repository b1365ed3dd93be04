// internal/lobby/messages.go
package lobby

// Message is one unit of input for the lobby actor's inbox. Every
// variant carries the originating connection id so replies and errors
// can be addressed.
type Message interface{ isLobbyMessage() }

type Ping struct {
	ConnectionID string
}

type Chat struct {
	ConnectionID string
	Message      string
}

type CreateRoom struct {
	ConnectionID    string
	RoomName        string
	FirstPlayerName string
}

type DestroyRoom struct {
	ConnectionID string
	RoomID       string
}

type JoinRoom struct {
	ConnectionID string
	PlayerName   string
	RoomID       string
}

type LeaveRoom struct {
	ConnectionID string
}

type PlayerReady struct {
	ConnectionID string
}

// ConnectionClosed is internal: the connection actor emits it during
// cleanup so the lobby can drop memberships of vanished transports.
type ConnectionClosed struct {
	ConnectionID string
}

func (Ping) isLobbyMessage()             {}
func (Chat) isLobbyMessage()             {}
func (CreateRoom) isLobbyMessage()       {}
func (DestroyRoom) isLobbyMessage()      {}
func (JoinRoom) isLobbyMessage()         {}
func (LeaveRoom) isLobbyMessage()        {}
func (PlayerReady) isLobbyMessage()      {}
func (ConnectionClosed) isLobbyMessage() {}
