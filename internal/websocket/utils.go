package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	// WriteWait is the time allowed to write a message to the peer.
	WriteWait = 10 * time.Second
	// PongWait is how long the server waits for any frame before dropping the peer.
	PongWait = 60 * time.Second
	// PingPeriod must be shorter than PongWait.
	PingPeriod = (PongWait * 9) / 10
	// MaxMessageSize bounds client frames; clients only send small actions.
	MaxMessageSize = 4096
)

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(WriteWait))
	return conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return WriteTyped(conn, ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// WritePing sends a ping control frame.
func WritePing(conn *websocket.Conn) error {
	return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(WriteWait))
}

// PrepareRead applies the read limit and keeps extending the read deadline
// whenever the peer answers a ping.
func PrepareRead(conn *websocket.Conn) {
	conn.SetReadLimit(MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(PongWait))
	})
}

// ReadJSON reads and decodes a message into the provided structure,
// extending the read deadline.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(PongWait))
	return conn.ReadJSON(v)
}
