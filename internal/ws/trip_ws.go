package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"drift-board/internal/middleware"
	"drift-board/internal/models"
	"drift-board/internal/observability"
	"drift-board/internal/repositories"
)

// TripWebSocketHandler handles trip channel websocket connections.
type TripWebSocketHandler struct {
	hub        *Hub
	memberRepo repositories.MemberRepository
	secret     []byte
}

// NewTripWebSocketHandler constructs a TripWebSocketHandler.
func NewTripWebSocketHandler(hub *Hub, memberRepo repositories.MemberRepository, secret []byte) *TripWebSocketHandler {
	return &TripWebSocketHandler{hub: hub, memberRepo: memberRepo, secret: secret}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientFrame is the only inbound frame shape clients may send. Anything
// but a typing broadcast is dropped at this boundary.
type clientFrame struct {
	Type    string               `json:"type"`
	Payload models.TypingPayload `json:"payload"`
}

// Handle authenticates, checks trip membership, upgrades the connection and
// binds it to the trip room. The caller's presence record is tracked as part
// of registration.
func (h *TripWebSocketHandler) Handle(c *gin.Context) {
	tripID, err := strconv.Atoi(c.Param("trip_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}

	ctx, span := otel.Tracer("drift-board/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := middleware.TokenFromHeader(c.GetHeader("Authorization"))
	if token == "" {
		token = c.Query("token")
	}

	claims, err := middleware.ParseToken(h.secret, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	member, err := h.memberRepo.IsMember(c.Request.Context(), tripID, claims.UserID)
	if err != nil || !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for trip"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      claims.UserID,
		UserName:    claims.DisplayName(),
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(tripID, conn, info)

	observability.IncWSActive("trip")
	observability.IncWSEvent("trip", "ws_connect")
	h.publishConnEvent(ctx, tripID, "ws_connect", info, "")

	go h.readLoop(ctx, tripID, conn, info)
}

// readLoop relays typing broadcasts from the client until the connection
// drops, then tears the registration down. After RemoveClient returns the
// connection receives no further events.
func (h *TripWebSocketHandler) readLoop(ctx context.Context, tripID int, conn *websocket.Conn, info ConnInfo) {
	var closeReason string
	defer func() {
		h.hub.RemoveClient(tripID, conn)
		observability.DecWSActive("trip")
		observability.IncWSEvent("trip", "ws_disconnect")
		h.publishConnEvent(ctx, tripID, "ws_disconnect", info, closeReason)
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("trip", "ws_error")
				h.publishConnEvent(ctx, tripID, "ws_error", info, closeReason)
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Type != models.EventTyping {
			observability.IncWSEvent("trip", "dropped_frame")
			continue
		}

		// identity is taken from the authenticated connection, never from
		// the frame
		frame.Payload.UserID = info.UserID
		frame.Payload.UserName = info.UserName
		h.hub.HandleTyping(tripID, frame.Payload)
	}
}

func (h *TripWebSocketHandler) publishConnEvent(ctx context.Context, tripID int, event string, info ConnInfo, reason string) {
	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(ctx, "ws_events.trips", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   wsEventPayload(tripID, event, info, reason),
	}, headers)
}
