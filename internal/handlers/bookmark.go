package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"drift-board/internal/models"
	"drift-board/internal/repositories"
	"drift-board/internal/telemetry"
	"drift-board/internal/ws"
)

// BookmarkHandler manages shared trip bookmarks.
type BookmarkHandler struct {
	memberRepo   repositories.MemberRepository
	bookmarkRepo repositories.BookmarkRepository
	activityRepo repositories.ActivityRepository
	hub          *ws.Hub
	audit        *telemetry.AuditEmitter
}

// NewBookmarkHandler constructs a BookmarkHandler.
func NewBookmarkHandler(memberRepo repositories.MemberRepository, bookmarkRepo repositories.BookmarkRepository, activityRepo repositories.ActivityRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *BookmarkHandler {
	return &BookmarkHandler{
		memberRepo:   memberRepo,
		bookmarkRepo: bookmarkRepo,
		activityRepo: activityRepo,
		hub:          hub,
		audit:        audit,
	}
}

// ListBookmarks returns the trip's bookmarks, most recent first.
func (h *BookmarkHandler) ListBookmarks(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}
	if !requireMember(c, h.memberRepo, tripID) {
		return
	}

	bookmarks, err := h.bookmarkRepo.ListBookmarks(c.Request.Context(), tripID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookmarks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookmarks": bookmarks})
}

// CreateBookmark saves a link into the trip and records a feed entry.
func (h *BookmarkHandler) CreateBookmark(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}
	if !requireMember(c, h.memberRepo, tripID) {
		return
	}

	var req struct {
		URL     string `json:"url" binding:"required,url"`
		Title   string `json:"title" binding:"required"`
		Snippet string `json:"snippet"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		emitAudit(c, h.audit, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	userName := c.GetString("userName")
	bookmark, err := h.bookmarkRepo.CreateBookmark(c.Request.Context(), tripID, userID, req.URL, req.Title, req.Snippet)
	if err != nil {
		emitAudit(c, h.audit, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save bookmark"})
		return
	}

	recordActivity(c.Request.Context(), h.activityRepo, h.hub, tripID,
		models.ActivityBookmark, userID, userName, userName+" bookmarked "+req.Title)
	emitAudit(c, h.audit, "INFO", "Bookmark added")
	c.JSON(http.StatusCreated, bookmark)
}

// DeleteBookmark removes a bookmark from the trip.
func (h *BookmarkHandler) DeleteBookmark(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}
	bookmarkID, err := strconv.Atoi(c.Param("bookmark_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bookmark id"})
		return
	}
	if !requireMember(c, h.memberRepo, tripID) {
		return
	}

	if err := h.bookmarkRepo.DeleteBookmark(c.Request.Context(), tripID, bookmarkID); err != nil {
		if errors.Is(err, repositories.ErrBookmarkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "bookmark not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete bookmark"})
		return
	}

	emitAudit(c, h.audit, "INFO", "Bookmark removed")
	c.Status(http.StatusNoContent)
}
