// Package httpapi exposes the JSON API over gin. Every route declares the
// authorization Policy the Gate enforces before its handler runs.
package httpapi

import (
	"github.com/dmitrijs2005/movieapi/internal/logging"
	"github.com/gin-gonic/gin"
)

func NewRouter(h *Handlers, g *Gate, l logging.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(l.With("module", "http")))

	user := r.Group("/user")
	{
		user.POST("/register", g.Require(PolicyNone), h.Register)
		user.POST("/login", g.Require(PolicyNone), h.Login)
		user.POST("/refresh", g.Require(PolicySelfChecked), h.Refresh)
		user.POST("/logout", g.Require(PolicySelfChecked), h.Logout)
		user.GET("/:email/profile", g.Require(PolicyOptionalBearer), h.GetProfile)
		user.PUT("/:email/profile", g.Require(PolicyRequiredBearer), h.UpdateProfile)
	}

	r.GET("/people/:id", g.Require(PolicyRequiredBearer), h.GetPerson)

	return r
}
