package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

// respondError maps import errors to 400 with their details and anything
// else to 500.
func respondError(c *gin.Context, err error) {
	var ve *models.ValueError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": ve.Error(),
			"line":  ve.Line,
			"field": ve.Field,
			"value": ve.Value,
		})
		return
	}

	var fe *models.FormatError
	if errors.As(err, &fe) {
		body := gin.H{"error": fe.Error()}
		if fe.Columns > 0 {
			body["columns"] = fe.Columns
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	log.Errorf("API: %s %s failed: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func userParam(c *gin.Context) (models.UserID, bool) {
	user := c.Param("user")
	if user == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user is required"})
		return "", false
	}
	return models.UserID(user), true
}
