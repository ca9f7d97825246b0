package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sonjayce/TianyanchaAutosearch/models"
)

// StatusSource provides the current run snapshot.
type StatusSource interface {
	Snapshot() models.RunStatus
}

// Status returns a handler for GET /api/v1/status.
func Status(src StatusSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.StatusResponse{
			Success: true,
			Status:  src.Snapshot(),
		})
	}
}
