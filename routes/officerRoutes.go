package routes

import (
	"civicseva-be/controllers"
	"civicseva-be/middlewares"

	"github.com/gin-gonic/gin"
)

// OfficerRoutes sets up the municipal officer routes
func OfficerRoutes(r *gin.Engine) {
	officer := r.Group("/api/officers")
	{
		officer.POST("", middlewares.AuthMiddleware(), controllers.CreateOfficer)
		officer.POST("/login", controllers.LoginOfficer)
		officer.GET("", controllers.ListOfficers)
		officer.GET("/:id", controllers.GetOfficer)
		officer.POST("/:id/assignments", middlewares.AuthMiddleware(), controllers.RecordOfficerAssignment)
		officer.DELETE("/:id", middlewares.AuthMiddleware(), controllers.DeleteOfficer)
	}
}
