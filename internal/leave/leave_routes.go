package leave

import (
	"go-hris-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	rdb *redis.Client,
	jwtSecret string,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware(jwtSecret))
	{
		leaves.GET("",
			middleware.RateLimitByEmployee(3, 10),
			middleware.RBACAuthorize(rbacService, "leave", "read"),
			handler.ListMine,
		)

		leaves.GET("/monthly/:year/:month",
			middleware.RateLimitByEmployee(3, 10),
			middleware.RBACAuthorize(rbacService, "leave", "read"),
			handler.Monthly,
		)

		leaves.GET("/summary",
			middleware.RateLimitByEmployee(3, 10),
			middleware.RBACAuthorize(rbacService, "leave", "read"),
			handler.Summary,
		)

		leaves.GET("/:id",
			middleware.RateLimitByEmployee(3, 10),
			middleware.RBACAuthorize(rbacService, "leave", "read"),
			handler.GetByID,
		)

		leaves.POST("",
			middleware.RateLimitByEmployee(0.5, 2),
			middleware.RBACAuthorize(rbacService, "leave", "create"),
			middleware.Idempotency(rdb),
			handler.Submit,
		)

		leaves.POST("/:id/action",
			middleware.RateLimitByEmployee(1, 5),
			middleware.RBACAuthorize(rbacService, "leave", "read"),
			middleware.Idempotency(rdb),
			handler.HandleAction,
		)

		leaves.POST("/:id/approve",
			middleware.RateLimitByEmployee(1, 5),
			middleware.RBACAuthorize(rbacService, "leave", "review"),
			middleware.Idempotency(rdb),
			handler.Approve,
		)

		leaves.POST("/:id/reject",
			middleware.RateLimitByEmployee(1, 5),
			middleware.RBACAuthorize(rbacService, "leave", "review"),
			middleware.Idempotency(rdb),
			handler.Reject,
		)

		leaves.POST("/:id/cancel",
			middleware.RateLimitByEmployee(1, 5),
			middleware.RBACAuthorize(rbacService, "leave", "cancel"),
			middleware.Idempotency(rdb),
			handler.Cancel,
		)
	}
}
