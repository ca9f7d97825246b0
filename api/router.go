package api

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sonjayce/TianyanchaAutosearch/api/handler"
	"github.com/sonjayce/TianyanchaAutosearch/api/middleware"
	"github.com/sonjayce/TianyanchaAutosearch/config"
)

// NewRouter creates the gate API engine.
//
// Middleware chain:
//
//	Global:  Recovery → Logger (stderr)
//	API:     Auth (if tokens configured) → RateLimit
//
// Health endpoint is outside auth so monitoring probes always work.
func NewRouter(cfg config.GateConfig, status handler.StatusSource, resumer handler.Resumer, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(gin.Recovery())
	// stdout may carry the MCP protocol.
	r.Use(gin.LoggerWithWriter(os.Stderr))

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(startTime))

	protected := v1.Group("")
	protected.Use(middleware.Auth(cfg.Tokens))
	protected.Use(middleware.RateLimit(cfg))

	protected.GET("/status", handler.Status(status))
	protected.POST("/captcha/resume", handler.Resume(resumer))

	return r
}
