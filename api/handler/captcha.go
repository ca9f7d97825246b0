package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sonjayce/TianyanchaAutosearch/gate"
	"github.com/sonjayce/TianyanchaAutosearch/models"
)

// Resumer releases a run suspended on a captcha.
type Resumer interface {
	Resume() error
}

// Resume returns a handler for POST /api/v1/captcha/resume.
//
// The operator calls it after solving the captcha in the browser window.
// It answers 409 when no run is waiting.
func Resume(r Resumer) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := r.Resume()
		switch {
		case err == nil:
			slog.Info("captcha gate resumed by operator", "client", c.ClientIP())
			c.JSON(http.StatusOK, models.ResumeResponse{Success: true, Resumed: true})
		case errors.Is(err, gate.ErrNotWaiting):
			c.JSON(http.StatusConflict, models.ResumeResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeNotWaiting,
					Message: "no run is waiting on a captcha",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, models.ResumeResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInternal,
					Message: err.Error(),
				},
			})
		}
	}
}
