// Package httpapi exposes the user service over HTTP using gin. Every
// response, including guard rejections, uses the Response envelope.
package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/userbase/internal/logging"
	"github.com/dmitrijs2005/userbase/internal/server/auth"
	"github.com/gin-gonic/gin"
)

// NewRouter assembles the engine: recovery, request ids, access log and
// metrics on every route, the guard on protected ones.
func NewRouter(h *Handler, guard *auth.Guard, logger logging.Logger, metrics *Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error(c.Request.Context(), "panic recovered", "panic", recovered, "path", c.Request.URL.Path)
		abortWithError(c, http.StatusInternalServerError, "internal error")
	}))
	r.Use(RequestID(), AccessLog(logger), metrics.Instrument())

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "route not found")
	})

	r.GET("/health", h.Health)
	if metrics != nil {
		r.GET("/metrics", metrics.Handler())
	}

	r.GET("/users", h.ListUsers)
	r.POST("/users", h.CreateUser)
	r.POST("/login", h.Login)

	protected := r.Group("/")
	protected.Use(RequireIdentity(guard, logger, metrics))
	protected.GET("/me", h.Me)

	return r
}
