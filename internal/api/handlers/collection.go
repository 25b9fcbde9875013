package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/michaelcoll/card-collection-price-tracker/internal/services"
)

type CollectionHandler struct {
	imports  *services.ImportService
	maxBytes int64
}

func NewCollectionHandler(imports *services.ImportService, maxBytes int64) *CollectionHandler {
	return &CollectionHandler{
		imports:  imports,
		maxBytes: maxBytes,
	}
}

// ImportCollection replaces the user's collection with the CSV export in the body.
func (h *CollectionHandler) ImportCollection(c *gin.Context) {
	user, ok := userParam(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "import file is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	result, err := h.imports.ImportCollection(c.Request.Context(), user, string(body))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *CollectionHandler) GetCollection(c *gin.Context) {
	user, ok := userParam(c)
	if !ok {
		return
	}

	cards, err := h.imports.Collection(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"cards": cards,
	})
}
