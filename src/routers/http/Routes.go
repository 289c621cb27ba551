package http

import (
	"github.com/PsycoVenom0/security-relay/src/models"
	"github.com/PsycoVenom0/security-relay/src/routers/websocket"
	jwt "github.com/appleboy/gin-jwt/v2"
	"github.com/gin-gonic/gin"
)

func AddRoutes(r *gin.Engine, authMiddleware *jwt.GinJWTMiddleware, configuration *models.Configuration, communication *models.Communication, relay Relay, hub *websocket.Hub) *gin.RouterGroup {

	if hub != nil {
		r.GET("/ws", hub.WebsocketHandler)
	}

	api := r.Group("/api")
	{
		api.POST("/login", authMiddleware.LoginHandler)

		api.GET("/health", Health)

		api.GET("/status", func(c *gin.Context) {
			GetStatus(c, configuration, communication, relay)
		})

		api.GET("/events", func(c *gin.Context) {
			GetEvents(c, relay)
		})

		// Secured endpoints..
		api.Use(authMiddleware.MiddlewareFunc())
		{
			api.POST("/trigger", func(c *gin.Context) {
				Trigger(c, communication, relay)
			})

			api.GET("/config", func(c *gin.Context) {
				GetConfig(c, configuration)
			})
		}
	}
	return api
}
