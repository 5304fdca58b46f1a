package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hepworth/owlmap/internal/domain"
	"github.com/hepworth/owlmap/internal/logger"
	"github.com/hepworth/owlmap/internal/services"
)

type GraphHandler struct {
	svc      *services.GraphService
	pageSize int
	log      *logger.Logger
}

func NewGraphHandler(svc *services.GraphService, pageSize int, baseLog *logger.Logger) *GraphHandler {
	return &GraphHandler{svc: svc, pageSize: pageSize, log: baseLog.With("handler", "GraphHandler")}
}

func (h *GraphHandler) Candidates(c *gin.Context) {
	f := services.CandidateFilter{
		Subject:  c.Query("subject"),
		EdgeType: domain.EdgeType(c.Query("edge_type")),
		Limit:    h.pageSize,
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		f.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		f.Offset = v
	}
	if v := c.Query("confirmed"); v != "" {
		confirmed := v == "true"
		f.Confirmed = &confirmed
	}

	page, err := h.svc.Candidates(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type confirmEdgeRequest struct {
	FromOccurrence uint   `json:"from_occurrence" binding:"required"`
	ToOccurrence   uint   `json:"to_occurrence" binding:"required"`
	EdgeType       string `json:"edge_type"`
	EdgeNature     string `json:"edge_nature" binding:"required"`
	ConfirmedBy    string `json:"confirmed_by" binding:"required"`
}

func (h *GraphHandler) ConfirmEdge(c *gin.Context) {
	var req confirmEdgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	edge, err := h.svc.ConfirmEdge(c.Request.Context(),
		req.FromOccurrence, req.ToOccurrence,
		domain.EdgeType(req.EdgeType), domain.EdgeNature(req.EdgeNature),
		req.ConfirmedBy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, edge)
}

func (h *GraphHandler) ConceptDetail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.svc.ConceptDetail(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *GraphHandler) LoadBearing(c *gin.Context) {
	limit := 20
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	ranked, err := h.svc.LoadBearing(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"concepts": ranked})
}

func (h *GraphHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *GraphHandler) fail(c *gin.Context, err error) {
	h.log.Error("request failed", "path", c.FullPath(), "error", err.Error())
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
