package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"drift-board/internal/models"
	"drift-board/internal/repositories"
	"drift-board/internal/sonar"
	"drift-board/internal/telemetry"
	"drift-board/internal/ws"
)

// memoryLimit is how many recent messages are replayed to the planner.
const memoryLimit = 12

const plannerSystemPrompt = `You are a collaborative travel-planning assistant. The user messages below
come from multiple people working on the same trip. Always:
1. Combine everyone's ideas creatively.
2. Include citations inline (markdown [^1]) where relevant.
3. When asked to propose an activity, wrap it in JSON:
   {"suggestion": "...", "day": <int>, "tags": ["food","culture"]}

Do NOT add any other keys. Do NOT output <think> blocks.`

// ChatHandler manages the shared trip chat and suggestion selection.
type ChatHandler struct {
	memberRepo    repositories.MemberRepository
	messageRepo   repositories.MessageRepository
	itineraryRepo repositories.ItineraryRepository
	activityRepo  repositories.ActivityRepository
	sonar         sonar.Client
	hub           *ws.Hub
	audit         *telemetry.AuditEmitter
}

// NewChatHandler constructs a ChatHandler.
func NewChatHandler(memberRepo repositories.MemberRepository, messageRepo repositories.MessageRepository, itineraryRepo repositories.ItineraryRepository, activityRepo repositories.ActivityRepository, sonarClient sonar.Client, hub *ws.Hub, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{
		memberRepo:    memberRepo,
		messageRepo:   messageRepo,
		itineraryRepo: itineraryRepo,
		activityRepo:  activityRepo,
		sonar:         sonarClient,
		hub:           hub,
		audit:         audit,
	}
}

// ListMessages returns the full trip chat in chronological order.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}
	if !requireMember(c, h.memberRepo, tripID) {
		return
	}

	msgs, err := h.messageRepo.ListMessages(c.Request.Context(), tripID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostMessage persists the user message, runs the planner over the recent
// memory window and persists the assistant reply. Both messages are
// broadcast to the trip room as they land.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}
	if !requireMember(c, h.memberRepo, tripID) {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		emitAudit(c, h.audit, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	userName := c.GetString("userName")

	userMsg, err := h.messageRepo.CreateMessage(c.Request.Context(), tripID, userID, models.RoleUser, req.Content)
	if err != nil {
		emitAudit(c, h.audit, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}
	h.hub.BroadcastMessage(tripID, userMsg)

	history, err := h.messageRepo.RecentMessages(c.Request.Context(), tripID, memoryLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	memory := make([]sonar.Message, 0, len(history))
	for _, m := range history {
		memory = append(memory, sonar.Message{Role: m.Role, Content: m.Content})
	}

	answer, usage, err := h.sonar.Complete(c.Request.Context(), sonar.CompletionRequest{
		System:   plannerSystemPrompt,
		Messages: memory,
	})
	if err != nil {
		emitAudit(c, h.audit, "ERROR", "planner call failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "planner unavailable"})
		return
	}

	botMsg, err := h.messageRepo.CreateMessage(c.Request.Context(), tripID, models.AssistantUserID, models.RoleAssistant, answer)
	if err != nil {
		emitAudit(c, h.audit, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store reply"})
		return
	}
	h.hub.BroadcastMessage(tripID, botMsg)

	recordActivity(c.Request.Context(), h.activityRepo, h.hub, tripID,
		models.ActivityMessage, userID, userName, userName+" posted a message")
	emitAudit(c, h.audit, "INFO", "Chat message sent")
	c.JSON(http.StatusCreated, gin.H{"assistant": botMsg, "usage": usage})
}

// SelectSuggestion saves one assistant suggestion as an itinerary choice.
func (h *ChatHandler) SelectSuggestion(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}
	if !requireMember(c, h.memberRepo, tripID) {
		return
	}

	var req struct {
		MessageID int             `json:"message_id" binding:"required"`
		Payload   json.RawMessage `json:"payload" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messageRepo.GetMessage(c.Request.Context(), req.MessageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}
	if msg.TripID != tripID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message does not belong to trip"})
		return
	}

	userID := c.GetString("userID")
	choice, err := h.itineraryRepo.CreateChoice(c.Request.Context(), tripID, userID, req.MessageID, req.Payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save choice"})
		return
	}

	emitAudit(c, h.audit, "INFO", "Suggestion selected")
	c.JSON(http.StatusCreated, gin.H{"status": "saved", "choice": choice})
}
