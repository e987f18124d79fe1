package routes

import (
	"civicseva-be/controllers"
	"civicseva-be/middlewares"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue lifecycle routes
func IssueRoutes(r *gin.Engine) {
	issue := r.Group("/api/issues")
	{
		issue.POST("", middlewares.AuthMiddleware(), middlewares.IssueRateLimiter(5), controllers.CreateIssue)
		issue.GET("", controllers.ListIssues)
		issue.GET("/analytics", controllers.GetIssueAnalytics)
		issue.GET("/:id", controllers.GetIssue)
		issue.PATCH("/:id", middlewares.AuthMiddleware(), controllers.UpdateIssue)
		issue.DELETE("/:id", middlewares.AuthMiddleware(), controllers.DeleteIssue)

		issue.POST("/:id/verify", middlewares.AuthMiddleware(), controllers.VerifyIssue)
		issue.POST("/:id/assign", middlewares.AuthMiddleware(), controllers.AssignIssue)
		issue.POST("/:id/progress", middlewares.AuthMiddleware(), controllers.AddProgressUpdate)
		issue.POST("/:id/comment", middlewares.AuthMiddleware(), controllers.AddIssueComment)
		issue.POST("/:id/like", middlewares.AuthMiddleware(), controllers.ToggleLike)
		issue.POST("/:id/views", controllers.IncrementViews)
		issue.POST("/:id/link-budget", middlewares.AuthMiddleware(), controllers.LinkBudget)
		issue.PATCH("/:id/archive", middlewares.AuthMiddleware(), controllers.SetIssueArchive)
	}
}
