package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/michaelcoll/card-collection-price-tracker/internal/services"
)

type PriceHandler struct {
	prices     *services.PriceImportService
	productIDs *services.ProductIDService
	worker     *services.Worker
}

func NewPriceHandler(prices *services.PriceImportService, productIDs *services.ProductIDService, worker *services.Worker) *PriceHandler {
	return &PriceHandler{
		prices:     prices,
		productIDs: productIDs,
		worker:     worker,
	}
}

// ImportPrices downloads and stores the current price guide
func (h *PriceHandler) ImportPrices(c *gin.Context) {
	result, err := h.prices.ImportCurrentPrices(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ResolveProductIDs links stored cards to their Cardmarket product
func (h *PriceHandler) ResolveProductIDs(c *gin.Context) {
	result, err := h.productIDs.UpdateMissing(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetWorkerStatus returns the outcome of the last background cycle
func (h *PriceHandler) GetWorkerStatus(c *gin.Context) {
	if h.worker == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}
	c.JSON(http.StatusOK, h.worker.GetStatus())
}
