package handlers

import (
	"errors"
	"net/http"

	"github.com/andresuchdata/replenish-planner/internal/scenario"
	"github.com/andresuchdata/replenish-planner/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type rowErrorResponse struct {
	Index  int                   `json:"index"`
	SKU    string                `json:"sku,omitempty"`
	Reason string                `json:"reason"`
	Fields []scenario.FieldError `json:"fields,omitempty"`
}

// respondError maps service errors onto HTTP statuses. Anything unknown is a 500.
func respondError(c *gin.Context, message string, err error) {
	_ = c.Error(err)

	var planErr *service.PlanValidationError
	if errors.As(err, &planErr) {
		rows := make([]rowErrorResponse, 0, len(planErr.Rows))
		for _, r := range planErr.Rows {
			resp := rowErrorResponse{Index: r.Index, SKU: r.SKU, Reason: r.Err.Error()}
			var ve *scenario.ValidationError
			if errors.As(r.Err, &ve) {
				resp.Fields = ve.Fields
			}
			rows = append(rows, resp)
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid plan rows", "rows": rows})
		return
	}

	var ve *scenario.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid snapshot", "fields": ve.Fields})
		return
	}

	switch {
	case errors.Is(err, service.ErrBatchTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": message, "details": err.Error()})
	case errors.Is(err, service.ErrNoSnapshotSource):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": message, "details": err.Error()})
	default:
		log.Error().Stack().Err(err).Str("path", c.FullPath()).Msg(message)
		c.JSON(http.StatusInternalServerError, gin.H{"error": message, "details": err.Error()})
	}
}

func badRequest(c *gin.Context, message string, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "details": err.Error()})
}
