package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"drift-board/internal/repositories"
)

const (
	defaultActivityLimit = 50
	// maxActivityLimit caps the page size so a query param cannot force a
	// full-table scan.
	maxActivityLimit = 200
)

// ActivityHandler serves the persisted trip activity feed.
type ActivityHandler struct {
	memberRepo   repositories.MemberRepository
	activityRepo repositories.ActivityRepository
}

// NewActivityHandler constructs an ActivityHandler.
func NewActivityHandler(memberRepo repositories.MemberRepository, activityRepo repositories.ActivityRepository) *ActivityHandler {
	return &ActivityHandler{
		memberRepo:   memberRepo,
		activityRepo: activityRepo,
	}
}

// ListActivities returns the feed most-recent-first.
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}
	if !requireMember(c, h.memberRepo, tripID) {
		return
	}

	limit := defaultActivityLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
		if limit > maxActivityLimit {
			limit = maxActivityLimit
		}
	}

	activities, err := h.activityRepo.ListActivities(c.Request.Context(), tripID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load activities"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": activities})
}
