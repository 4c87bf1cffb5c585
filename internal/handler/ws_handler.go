package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/learnhub-backend/internal/config"
	"github.com/stemsi/learnhub-backend/internal/middleware"
	ws "github.com/stemsi/learnhub-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// ActivityNotifier delivers a signal whenever new activity is persisted for
// a learner. The returned stop func releases the subscription.
type ActivityNotifier interface {
	Subscribe(ctx context.Context, learnerID uuid.UUID) (<-chan struct{}, func(), error)
}

// RedisActivityNotifier listens on the per-learner Redis pub/sub channel
// the activity worker publishes to.
type RedisActivityNotifier struct {
	rdb *redis.Client
}

// NewRedisActivityNotifier creates a RedisActivityNotifier.
func NewRedisActivityNotifier(rdb *redis.Client) *RedisActivityNotifier {
	return &RedisActivityNotifier{rdb: rdb}
}

func (n *RedisActivityNotifier) Subscribe(ctx context.Context, learnerID uuid.UUID) (<-chan struct{}, func(), error) {
	sub := n.rdb.Subscribe(ctx, config.CacheKey.LearnerActivityChannel(learnerID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for range sub.Channel() {
			// Coalesce bursts: one pending signal is enough to trigger a rebuild.
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()

	return out, func() { _ = sub.Close() }, nil
}

// WSHandler streams live dashboards over WebSocket.
type WSHandler struct {
	dashboards DashboardBuilder
	notifier   ActivityNotifier
	log        zerolog.Logger
	upgrader   websocket.Upgrader
	pingPeriod time.Duration
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(dashboards DashboardBuilder, notifier ActivityNotifier, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		dashboards: dashboards,
		notifier:   notifier,
		log:        log.With().Str("component", "ws_handler").Logger(),
		upgrader:   buildUpgrader(allowedOrigins),
		pingPeriod: ws.PingPeriod,
	}
}

// DashboardStream godoc
// WS /ws/v1/learner/dashboard/stream?token=
// Pushes the learner's dashboard on connect, after each persisted activity,
// and whenever the client sends {"action":"refresh"}.
func (h *WSHandler) DashboardStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	learnerID, err := claims.LearnerUUID()
	if err != nil || claims.Email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "learner token required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("learner_id", learnerID.String()).Logger()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	notifications, stop, err := h.notifier.Subscribe(ctx, learnerID)
	if err != nil {
		wsLog.Error().Err(err).Msg("Activity subscription failed")
		_ = ws.WriteError(conn, "live updates unavailable")
		return
	}
	defer stop()

	wsLog.Info().Msg("Learner connected")

	if !h.push(ctx, conn, wsLog, claims.Email, "connect") {
		return
	}

	// Only the reader goroutine reads; only this goroutine writes.
	actions := make(chan ws.Action)
	go func() {
		defer cancel()
		ws.PrepareRead(conn)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			select {
			case actions <- msg.Action:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}

		case _, ok := <-notifications:
			if !ok {
				wsLog.Warn().Msg("Activity subscription ended")
				return
			}
			if !h.push(ctx, conn, wsLog, claims.Email, "activity") {
				return
			}

		case action := <-actions:
			switch action {
			case ws.ActionPing:
				if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
					return
				}
			case ws.ActionRefresh:
				if !h.push(ctx, conn, wsLog, claims.Email, "refresh") {
					return
				}
			default:
				wsLog.Warn().Str("action", string(action)).Msg("Unknown action")
				if err := ws.WriteError(conn, "unknown action: "+string(action)); err != nil {
					return
				}
			}
		}
	}
}

// push rebuilds and sends the dashboard. It reports whether the connection
// should stay open.
func (h *WSHandler) push(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, email, reason string) bool {
	dashboard, err := h.dashboards.GetDashboardByEmail(ctx, email)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		wsLog.Error().Err(err).Str("reason", reason).Msg("Dashboard push failed")
		return ws.WriteError(conn, err.Error()) == nil
	}
	if dashboard == nil {
		_ = ws.WriteTyped(conn, ws.ErrorResponse{Event: ws.EventNotFound, Error: "learner not found"})
		return false
	}

	return ws.WriteTyped(conn, ws.DashboardResponse{
		Event:     ws.EventDashboard,
		Reason:    reason,
		Dashboard: dashboard,
	}) == nil
}
