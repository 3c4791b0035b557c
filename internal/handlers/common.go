package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"drift-board/internal/repositories"
	"drift-board/internal/telemetry"
	"drift-board/internal/ws"
)

func parseTripID(c *gin.Context) (int, bool) {
	tripID, err := strconv.Atoi(c.Param("trip_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return 0, false
	}
	return tripID, true
}

// requireMember enforces accepted trip membership on trip-scoped routes.
// It writes the error response itself and reports whether to continue.
func requireMember(c *gin.Context, memberRepo repositories.MemberRepository, tripID int) bool {
	userID := c.GetString("userID")
	member, err := memberRepo.IsMember(c.Request.Context(), tripID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return false
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a trip member"})
		return false
	}
	return true
}

// recordActivity persists a feed entry and fans it out to the trip room.
// Failures are logged, never surfaced: the primary operation already
// succeeded by the time the feed is written.
func recordActivity(ctx context.Context, activityRepo repositories.ActivityRepository, hub *ws.Hub, tripID int, activityType, userID, userName, content string) {
	activity, err := activityRepo.CreateActivity(ctx, tripID, activityType, userID, userName, content)
	if err != nil {
		log.Printf("activity record failed trip=%d type=%s: %v", tripID, activityType, err)
		return
	}
	if hub != nil {
		hub.BroadcastActivity(tripID, activity)
	}
}

func emitAudit(c *gin.Context, audit *telemetry.AuditEmitter, level, text string) {
	if audit == nil {
		return
	}
	audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
