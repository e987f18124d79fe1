package routes

import (
	"civicseva-be/controllers"
	"civicseva-be/middlewares"

	"github.com/gin-gonic/gin"
)

// CitizenRoutes sets up the citizen profile routes
func CitizenRoutes(r *gin.Engine) {
	citizen := r.Group("/api/citizen")
	{
		citizen.POST("", middlewares.AuthMiddleware(), controllers.CreateCitizen)
		citizen.GET("", controllers.ListCitizens)
		citizen.GET("/:citizenId", controllers.GetCitizen)
		citizen.PATCH("/:citizenId", middlewares.AuthMiddleware(), controllers.UpdateCitizen)
		citizen.DELETE("/:citizenId", middlewares.AuthMiddleware(), controllers.DeleteCitizen)

		citizen.POST("/:citizenId/report-issue", middlewares.AuthMiddleware(), controllers.AddReportedIssue)
		citizen.PATCH("/:citizenId/report-issue/:issueId", middlewares.AuthMiddleware(), controllers.UpdateReportedIssueStatus)
		citizen.POST("/:citizenId/comment", middlewares.AuthMiddleware(), controllers.AddCitizenComment)
		citizen.POST("/:citizenId/activity", middlewares.AuthMiddleware(), controllers.RecordCitizenActivity)
		citizen.PATCH("/:citizenId/verify", middlewares.AuthMiddleware(), controllers.VerifyCitizen)
		citizen.PATCH("/:citizenId/archive", middlewares.AuthMiddleware(), controllers.SetCitizenArchive)
	}
}
