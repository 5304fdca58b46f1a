// Package handlers exposes the pipeline's query and confirmation surface
// over HTTP for the review UI. Handlers stay thin: parse, delegate to a
// service, encode.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hepworth/owlmap/internal/logger"
	"github.com/hepworth/owlmap/internal/repos"
	"github.com/hepworth/owlmap/internal/services"
)

type ReviewHandler struct {
	svc      *services.ReviewService
	pageSize int
	log      *logger.Logger
}

func NewReviewHandler(svc *services.ReviewService, pageSize int, baseLog *logger.Logger) *ReviewHandler {
	return &ReviewHandler{svc: svc, pageSize: pageSize, log: baseLog.With("handler", "ReviewHandler")}
}

// listFilter reads the shared filter/pagination query parameters.
func listFilter(c *gin.Context, defaultLimit int) repos.ListFilter {
	f := repos.ListFilter{
		Subject: c.Query("subject"),
		Term:    c.Query("term"),
		Search:  c.Query("search"),
		Limit:   defaultLimit,
	}
	f.Year, _ = strconv.Atoi(c.Query("year"))
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		f.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		f.Offset = v
	}
	return f
}

func idParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}

func (h *ReviewHandler) FilterOptions(c *gin.Context) {
	opts, err := h.svc.FilterOptions(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

func (h *ReviewHandler) Queue(c *gin.Context) {
	page, err := h.svc.Queue(c.Request.Context(), listFilter(c, h.pageSize))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ReviewHandler) Browse(c *gin.Context) {
	page, err := h.svc.Browse(c.Request.Context(), listFilter(c, h.pageSize))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ReviewHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ReviewHandler) TermDetail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.svc.TermDetail(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *ReviewHandler) Adjacent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	prev, next, err := h.svc.AdjacentIDs(c.Request.Context(), id, listFilter(c, h.pageSize))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prev": prev, "next": next})
}

type saveDecisionRequest struct {
	Decision string `json:"decision"`
	Notes    string `json:"notes"`
}

func (h *ReviewHandler) SaveDecision(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req saveDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.SaveDecision(c.Request.Context(), id, req.Decision, req.Notes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (h *ReviewHandler) ApplyPending(c *gin.Context) {
	dryRun := c.Query("dry_run") == "true"
	report, err := h.svc.ApplyPending(c.Request.Context(), dryRun)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReviewHandler) fail(c *gin.Context, err error) {
	h.log.Error("request failed", "path", c.FullPath(), "error", err.Error())
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
