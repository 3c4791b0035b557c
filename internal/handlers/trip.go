package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"drift-board/internal/repositories"
	"drift-board/internal/telemetry"
)

// TripHandler manages trip CRUD endpoints.
type TripHandler struct {
	tripRepo   repositories.TripRepository
	memberRepo repositories.MemberRepository
	audit      *telemetry.AuditEmitter
}

// NewTripHandler constructs a TripHandler.
func NewTripHandler(tripRepo repositories.TripRepository, memberRepo repositories.MemberRepository, audit *telemetry.AuditEmitter) *TripHandler {
	return &TripHandler{
		tripRepo:   tripRepo,
		memberRepo: memberRepo,
		audit:      audit,
	}
}

// CreateTrip handles POST /trips. The owner becomes the first accepted member.
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Destination string `json:"destination" binding:"required"`
		QueryID     *int   `json:"query_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		emitAudit(c, h.audit, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	userName := c.GetString("userName")
	userEmail := c.GetString("userEmail")

	trip, err := h.tripRepo.CreateTrip(c.Request.Context(), userID, userName, userEmail, req.Title, req.Destination, req.QueryID)
	if err != nil {
		emitAudit(c, h.audit, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create trip"})
		return
	}

	emitAudit(c, h.audit, "INFO", "Trip created")
	c.JSON(http.StatusCreated, trip)
}

// ListTrips returns trips the caller is an accepted member of.
func (h *TripHandler) ListTrips(c *gin.Context) {
	userID := c.GetString("userID")
	trips, err := h.tripRepo.ListTripsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load trips"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// GetTrip returns a single trip for a member.
func (h *TripHandler) GetTrip(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}
	if !requireMember(c, h.memberRepo, tripID) {
		return
	}

	trip, err := h.tripRepo.GetTrip(c.Request.Context(), tripID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrTripNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "trip not found"})
		return
	}

	c.JSON(http.StatusOK, trip)
}
