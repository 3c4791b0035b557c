package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"drift-board/internal/models"
	"drift-board/internal/repositories"
	"drift-board/internal/sonar"
	"drift-board/internal/telemetry"
)

const researchSystemPrompt = "You are a travel research assistant. Answer the " +
	"query thoroughly with inline markdown citations where relevant."

// QueryHandler manages research queries and browser-extension captures.
type QueryHandler struct {
	queryRepo repositories.QueryRepository
	sonar     sonar.Client
	audit     *telemetry.AuditEmitter
}

// NewQueryHandler constructs a QueryHandler.
func NewQueryHandler(queryRepo repositories.QueryRepository, sonarClient sonar.Client, audit *telemetry.AuditEmitter) *QueryHandler {
	return &QueryHandler{
		queryRepo: queryRepo,
		sonar:     sonarClient,
		audit:     audit,
	}
}

// CreateQuery stores a free-text query, runs it through Sonar and records
// the outcome. The row is visible in pending state while Sonar runs.
func (h *QueryHandler) CreateQuery(c *gin.Context) {
	var req struct {
		RawQuery string `json:"raw_query" binding:"required"`
		Source   string `json:"source"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		emitAudit(c, h.audit, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Source == "" {
		req.Source = models.QuerySourceWeb
	}

	userID := c.GetString("userID")
	query, err := h.queryRepo.CreateQuery(c.Request.Context(), userID, req.RawQuery, req.Source, models.QueryStatusPending, nil)
	if err != nil {
		emitAudit(c, h.audit, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store query"})
		return
	}

	answer, usage, err := h.sonar.Complete(c.Request.Context(), sonar.CompletionRequest{
		System:   researchSystemPrompt,
		Messages: []sonar.Message{{Role: "user", Content: req.RawQuery}},
	})

	status := models.QueryStatusCompleted
	var data json.RawMessage
	if err != nil {
		status = models.QueryStatusError
		data, _ = json.Marshal(gin.H{"error": err.Error()})
	} else {
		data, _ = json.Marshal(gin.H{"answer": answer, "usage": usage})
	}

	if err := h.queryRepo.UpdateQueryResult(c.Request.Context(), query.ID, status, data); err != nil {
		emitAudit(c, h.audit, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update query"})
		return
	}

	query.SonarStatus = status
	query.SonarData = data
	emitAudit(c, h.audit, "INFO", "Query processed")
	c.JSON(http.StatusCreated, query)
}

// CreateCapture stores a scraped question/answer pair relayed by the browser
// extension. Captures skip Sonar and land directly in completed state.
func (h *QueryHandler) CreateCapture(c *gin.Context) {
	var req struct {
		RawQuery string `json:"raw_query" binding:"required"`
		Answer   string `json:"answer" binding:"required"`
		URL      string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, _ := json.Marshal(gin.H{"answer": req.Answer, "url": req.URL})
	userID := c.GetString("userID")
	query, err := h.queryRepo.CreateQuery(c.Request.Context(), userID, req.RawQuery, models.QuerySourceExtension, models.QueryStatusCompleted, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store capture"})
		return
	}

	emitAudit(c, h.audit, "INFO", "Capture stored")
	c.JSON(http.StatusCreated, query)
}

// ListQueries returns the caller's queries, most recent first.
func (h *QueryHandler) ListQueries(c *gin.Context) {
	userID := c.GetString("userID")
	queries, err := h.queryRepo.ListQueries(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load queries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"queries": queries})
}

// GetQuery returns a single query owned by the caller.
func (h *QueryHandler) GetQuery(c *gin.Context) {
	queryID, err := strconv.Atoi(c.Param("query_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query id"})
		return
	}

	query, err := h.queryRepo.GetQuery(c.Request.Context(), queryID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrQueryNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "query not found"})
		return
	}
	if query.UserID != c.GetString("userID") {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your query"})
		return
	}

	c.JSON(http.StatusOK, query)
}
