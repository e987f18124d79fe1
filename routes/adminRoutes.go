package routes

import (
	"civicseva-be/controllers"
	"civicseva-be/middlewares"

	"github.com/gin-gonic/gin"
)

// AdminRoutes sets up the admin account routes
func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/api/admin")
	{
		admin.POST("/register", controllers.RegisterAdmin)
		admin.POST("/login", controllers.LoginAdmin)
		admin.POST("/logout", controllers.LogoutAdmin)
		admin.GET("/me", middlewares.AuthMiddleware(), controllers.GetMe)
		admin.GET("", middlewares.AuthMiddleware(), controllers.ListAdmins)
		admin.GET("/:id", middlewares.AuthMiddleware(), controllers.GetAdmin)
		admin.PATCH("/:id", middlewares.AuthMiddleware(), controllers.UpdateAdmin)
		admin.DELETE("/:id", middlewares.AuthMiddleware(), controllers.DeleteAdmin)
	}
}
