package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/replenish-planner/internal/cashflow"
	"github.com/andresuchdata/replenish-planner/internal/domain"
	"github.com/andresuchdata/replenish-planner/internal/replenishment"
	"github.com/andresuchdata/replenish-planner/internal/service"
	"github.com/gin-gonic/gin"
)

type PlannerHandler struct {
	service *service.PlannerService
}

func NewPlannerHandler(service *service.PlannerService) *PlannerHandler {
	return &PlannerHandler{service: service}
}

type planRequest struct {
	AsOf  string               `json:"as_of"`
	Items []domain.SKUSnapshot `json:"items"`
}

func (h *PlannerHandler) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": h.service.Tools()})
}

func (h *PlannerHandler) Evaluate(c *gin.Context) {
	var snap replenishment.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	metrics, err := h.service.Evaluate(c.Request.Context(), snap)
	if err != nil {
		respondError(c, "failed to evaluate snapshot", err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

func (h *PlannerHandler) Compare(c *gin.Context) {
	var snap replenishment.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	cmp, err := h.service.Compare(c.Request.Context(), snap)
	if err != nil {
		respondError(c, "failed to compare scenarios", err)
		return
	}

	c.JSON(http.StatusOK, cmp)
}

func (h *PlannerHandler) Plan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	asOf, err := parseAsOf(req.AsOf)
	if err != nil {
		badRequest(c, "invalid as_of", err)
		return
	}

	plan, err := h.service.Plan(c.Request.Context(), asOf, req.Items)
	if err != nil {
		respondError(c, "failed to build plan", err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// PlanStored plans the snapshots held by the configured repository.
// Query: sku and brand (repeated or comma separated), limit, as_of.
func (h *PlannerHandler) PlanStored(c *gin.Context) {
	asOf, err := parseAsOf(c.Query("as_of"))
	if err != nil {
		badRequest(c, "invalid as_of", err)
		return
	}

	filter := domain.SKUFilter{
		SKUs:   queryList(c, "sku"),
		Brands: queryList(c, "brand"),
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			badRequest(c, "invalid limit", fmt.Errorf("limit %q must be a non-negative integer", raw))
			return
		}
		filter.Limit = limit
	}

	plan, err := h.service.PlanFromRepository(c.Request.Context(), asOf, filter)
	if err != nil {
		respondError(c, "failed to build plan", err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *PlannerHandler) InvalidatePlans(c *gin.Context) {
	if err := h.service.InvalidatePlans(c.Request.Context()); err != nil {
		respondError(c, "failed to invalidate plan cache", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PlannerHandler) EvaluateCashflow(c *gin.Context) {
	var snap cashflow.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	metrics, err := h.service.EvaluateCashflow(c.Request.Context(), snap)
	if err != nil {
		respondError(c, "failed to evaluate cashflow", err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// parseAsOf accepts a calendar date or an RFC3339 timestamp. Empty means today.
func parseAsOf(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("as_of %q must be YYYY-MM-DD or RFC3339", raw)
	}
	return t, nil
}

// queryList supports both ?k=a&k=b and ?k=a,b.
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
