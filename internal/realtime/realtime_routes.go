package realtime

import (
	"go-hris-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func RegisterRoutes(
	r gin.IRouter,
	handler *Handler,
	jwtSecret string,
	connectRate rate.Limit,
	connectBurst int,
) {
	ws := r.Group("/ws")
	ws.GET("/leave-notifications/:employee_id",
		middleware.RateLimitByIP(connectRate, connectBurst),
		middleware.WebSocketAuth(jwtSecret),
		handler.Connect,
	)
}
