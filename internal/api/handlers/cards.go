package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
	"github.com/michaelcoll/card-collection-price-tracker/internal/services"
)

// CardInfoSource looks up community usage of a card.
type CardInfoSource interface {
	CardInfo(ctx context.Context, name string) (models.CardInfo, error)
}

type CardHandler struct {
	info CardInfoSource
}

func NewCardHandler(info CardInfoSource) *CardHandler {
	return &CardHandler{info: info}
}

// GetCardInfo returns EDHREC inclusion counts for ?name=
func (h *CardHandler) GetCardInfo(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	info, err := h.info.CardInfo(c.Request.Context(), name)
	if errors.Is(err, services.ErrCardNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, info)
}
