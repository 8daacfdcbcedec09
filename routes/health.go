package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func AddHealthCheckRoutes(engine *gin.Engine) {
	engine.GET("/health", aliveCheck)
	engine.HEAD("/health", aliveCheck)
}

func aliveCheck(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.String(http.StatusOK, "OK")
}
