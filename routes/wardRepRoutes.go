package routes

import (
	"civicseva-be/controllers"
	"civicseva-be/middlewares"

	"github.com/gin-gonic/gin"
)

// WardRepRoutes sets up the ward representative routes
func WardRepRoutes(r *gin.Engine) {
	ward := r.Group("/api/ward-reps")
	{
		ward.POST("/register", controllers.RegisterWardRep)
		ward.POST("/login", controllers.LoginWardRep)
		ward.GET("", controllers.ListWardReps)
		ward.GET("/:id", controllers.GetWardRep)
		ward.PATCH("/:id", middlewares.AuthMiddleware(), controllers.UpdateWardRep)
		ward.DELETE("/:id", middlewares.AuthMiddleware(), controllers.DeleteWardRep)

		ward.POST("/:id/verified-issues", middlewares.AuthMiddleware(), controllers.AddWardRepVerifiedIssue)
		ward.POST("/:id/increment-resolved", middlewares.AuthMiddleware(), controllers.IncrementWardRepResolved)
	}
}
