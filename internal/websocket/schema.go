package websocket

import "github.com/stemsi/learnhub-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing    Action = "ping"
	ActionRefresh Action = "refresh"
)

// RequestEnvelope is the only message shape clients send.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventDashboard Event = "dashboard"
	EventNotFound  Event = "not_found"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// DashboardResponse pushes a freshly built dashboard. Reason tells the client
// what triggered it: "connect", "activity" or "refresh".
type DashboardResponse struct {
	Event     Event            `json:"event"`
	Reason    string           `json:"reason"`
	Dashboard *model.Dashboard `json:"dashboard"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
