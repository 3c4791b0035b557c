package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"drift-board/internal/models"
	"drift-board/internal/repositories"
	"drift-board/internal/telemetry"
	"drift-board/internal/ws"
)

// MemberHandler manages trip collaborators.
type MemberHandler struct {
	tripRepo     repositories.TripRepository
	memberRepo   repositories.MemberRepository
	activityRepo repositories.ActivityRepository
	hub          *ws.Hub
	audit        *telemetry.AuditEmitter
}

// NewMemberHandler constructs a MemberHandler.
func NewMemberHandler(tripRepo repositories.TripRepository, memberRepo repositories.MemberRepository, activityRepo repositories.ActivityRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *MemberHandler {
	return &MemberHandler{
		tripRepo:     tripRepo,
		memberRepo:   memberRepo,
		activityRepo: activityRepo,
		hub:          hub,
		audit:        audit,
	}
}

// ListMembers returns collaborators with live status. Status is computed
// from the current presence snapshot and typing set, so two requests a few
// seconds apart can legitimately disagree.
func (h *MemberHandler) ListMembers(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}
	if !requireMember(c, h.memberRepo, tripID) {
		return
	}

	members, err := h.memberRepo.ListMembers(c.Request.Context(), tripID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load members"})
		return
	}

	snapshot := h.hub.Snapshot(tripID)
	typingSet := map[string]struct{}{}
	for _, userID := range h.hub.TypingUsers(tripID) {
		typingSet[userID] = struct{}{}
	}

	type memberResponse struct {
		models.TripMember
		UserID string `json:"user_id,omitempty"`
		Status string `json:"status"`
	}

	resp := make([]memberResponse, 0, len(members))
	for _, m := range members {
		var online, typing bool
		if m.UserID.Valid {
			online = snapshot.Online(m.UserID.String)
			_, typing = typingSet[m.UserID.String]
		}
		resp = append(resp, memberResponse{
			TripMember: m,
			UserID:     m.UserID.String,
			Status:     m.Status(typing, online),
		})
	}

	c.JSON(http.StatusOK, gin.H{"members": resp})
}

// InviteMember handles POST /trips/:trip_id/members. The invite stays in
// pending state until the invitee accepts it.
func (h *MemberHandler) InviteMember(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}
	if !requireMember(c, h.memberRepo, tripID) {
		return
	}

	var req struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		emitAudit(c, h.audit, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.memberRepo.InviteMember(c.Request.Context(), tripID, req.Name, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrAlreadyInvited) {
			c.JSON(http.StatusConflict, gin.H{"error": "already invited"})
			return
		}
		emitAudit(c, h.audit, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not invite member"})
		return
	}

	emitAudit(c, h.audit, "INFO", "Invite sent")
	c.JSON(http.StatusCreated, member)
}

// AcceptInvite binds a pending invite to the authenticated user. This is the
// one trip-scoped route without a membership guard: the caller is not a
// member until it succeeds.
func (h *MemberHandler) AcceptInvite(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}

	userID := c.GetString("userID")
	userEmail := c.GetString("userEmail")
	member, err := h.memberRepo.AcceptInvite(c.Request.Context(), tripID, userEmail, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no pending invite"})
			return
		}
		emitAudit(c, h.audit, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not accept invite"})
		return
	}

	recordActivity(c.Request.Context(), h.activityRepo, h.hub, tripID,
		models.ActivityJoin, userID, member.Name, member.Name+" joined the trip")
	emitAudit(c, h.audit, "INFO", "Invite accepted")
	c.JSON(http.StatusOK, member)
}

// RemoveMember handles DELETE /trips/:trip_id/members/:user_id. Members may
// leave on their own; only the trip owner removes anyone else.
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}
	if !requireMember(c, h.memberRepo, tripID) {
		return
	}

	targetID := c.Param("user_id")
	callerID := c.GetString("userID")
	if targetID != callerID {
		trip, err := h.tripRepo.GetTrip(c.Request.Context(), tripID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load trip"})
			return
		}
		if trip.OwnerID != callerID {
			c.JSON(http.StatusForbidden, gin.H{"error": "only the owner removes members"})
			return
		}
	}

	if err := h.memberRepo.RemoveMember(c.Request.Context(), tripID, targetID); err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove member"})
		return
	}

	emitAudit(c, h.audit, "INFO", "Member removed")
	c.Status(http.StatusNoContent)
}
