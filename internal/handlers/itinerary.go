package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"drift-board/internal/models"
	"drift-board/internal/repositories"
	"drift-board/internal/sonar"
	"drift-board/internal/telemetry"
	"drift-board/internal/ws"
)

const finalizeSystemPrompt = "Return JSON only. Do *not* include <think> or " +
	"extra text. Use exhaustive, cited planning."

// ItineraryHandler turns selected suggestions into a finalized day-by-day plan.
type ItineraryHandler struct {
	memberRepo    repositories.MemberRepository
	itineraryRepo repositories.ItineraryRepository
	activityRepo  repositories.ActivityRepository
	sonar         sonar.Client
	hub           *ws.Hub
	audit         *telemetry.AuditEmitter
}

// NewItineraryHandler constructs an ItineraryHandler.
func NewItineraryHandler(memberRepo repositories.MemberRepository, itineraryRepo repositories.ItineraryRepository, activityRepo repositories.ActivityRepository, sonarClient sonar.Client, hub *ws.Hub, audit *telemetry.AuditEmitter) *ItineraryHandler {
	return &ItineraryHandler{
		memberRepo:    memberRepo,
		itineraryRepo: itineraryRepo,
		activityRepo:  activityRepo,
		sonar:         sonarClient,
		hub:           hub,
		audit:         audit,
	}
}

// Finalize gathers every collaborator's selected suggestions, asks the
// planner for a structured plan and persists it as the trip's itinerary.
func (h *ItineraryHandler) Finalize(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}
	if !requireMember(c, h.memberRepo, tripID) {
		return
	}

	var req struct {
		Title string `json:"title" binding:"required"`
		Days  int    `json:"days" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		emitAudit(c, h.audit, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	choices, err := h.itineraryRepo.ListChoices(c.Request.Context(), tripID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load choices"})
		return
	}
	if len(choices) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no suggestions selected yet"})
		return
	}

	bullets := make([]string, 0, len(choices))
	for _, choice := range choices {
		var payload models.ChoicePayload
		if err := json.Unmarshal(choice.Payload, &payload); err != nil || payload.Suggestion == "" {
			continue
		}
		bullets = append(bullets, "- "+payload.Suggestion)
	}

	prompt := fmt.Sprintf(`Here are all confirmed ideas:
%s
Please craft a coherent %d-day plan named %q. Respond ONLY with valid JSON matching
{
  "title": str,
  "days": [
    { "day": 1, "summary": str, "morning": str,
      "afternoon": str, "evening": str, "notes": [str] }
  ]
}`, strings.Join(bullets, "\n"), req.Days, req.Title)

	answer, _, err := h.sonar.Complete(c.Request.Context(), sonar.CompletionRequest{
		System:   finalizeSystemPrompt,
		Messages: []sonar.Message{{Role: "user", Content: prompt}},
		JSONOnly: true,
	})
	if err != nil {
		emitAudit(c, h.audit, "ERROR", "planner call failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "planner unavailable"})
		return
	}

	var plan models.ItineraryPlan
	if err := json.Unmarshal([]byte(answer), &plan); err != nil {
		emitAudit(c, h.audit, "ERROR", "planner returned invalid plan")
		c.JSON(http.StatusBadGateway, gin.H{"error": "planner returned invalid plan"})
		return
	}

	userID := c.GetString("userID")
	userName := c.GetString("userName")
	itinerary, err := h.itineraryRepo.SaveItinerary(c.Request.Context(), tripID, req.Title, req.Days, json.RawMessage(answer), userID)
	if err != nil {
		emitAudit(c, h.audit, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save itinerary"})
		return
	}

	recordActivity(c.Request.Context(), h.activityRepo, h.hub, tripID,
		models.ActivityItinerary, userID, userName, userName+" finalized the itinerary "+req.Title)
	emitAudit(c, h.audit, "INFO", "Itinerary finalized")
	c.JSON(http.StatusCreated, itinerary)
}

// GetItinerary returns the last finalized itinerary for the trip.
func (h *ItineraryHandler) GetItinerary(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}
	if !requireMember(c, h.memberRepo, tripID) {
		return
	}

	itinerary, err := h.itineraryRepo.LatestItinerary(c.Request.Context(), tripID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrItineraryNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "itinerary not found"})
		return
	}

	c.JSON(http.StatusOK, itinerary)
}
