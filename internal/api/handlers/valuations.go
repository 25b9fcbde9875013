package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
	"github.com/michaelcoll/card-collection-price-tracker/internal/services"
)

type ValuationHandler struct {
	scheduler *services.ValuationScheduler
}

func NewValuationHandler(scheduler *services.ValuationScheduler) *ValuationHandler {
	return &ValuationHandler{scheduler: scheduler}
}

// RunValuations values every pending (date, user) pair now
func (h *ValuationHandler) RunValuations(c *gin.Context) {
	result, err := h.scheduler.TriggerNow(c.Request.Context())
	if errors.Is(err, services.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetHistory returns the user's valuation snapshots, optionally from a date (YYYY-MM-DD)
func (h *ValuationHandler) GetHistory(c *gin.Context) {
	user, ok := userParam(c)
	if !ok {
		return
	}

	var from models.Date
	if raw := c.Query("from"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be a date formatted as YYYY-MM-DD"})
			return
		}
		from = d
	}

	snapshots, err := h.scheduler.History(c.Request.Context(), user, from)
	if err != nil {
		respondError(c, err)
		return
	}
	if snapshots == nil {
		snapshots = []models.ValuationSnapshot{}
	}

	c.JSON(http.StatusOK, models.ValuationHistoryResponse{
		User:      user,
		From:      from,
		Snapshots: snapshots,
	})
}
