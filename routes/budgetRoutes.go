package routes

import (
	"civicseva-be/controllers"
	"civicseva-be/middlewares"

	"github.com/gin-gonic/gin"
)

// BudgetRoutes sets up the budget routes
func BudgetRoutes(r *gin.Engine) {
	budget := r.Group("/api/budget")
	{
		budget.POST("", middlewares.AuthMiddleware(), controllers.CreateBudget)
		budget.GET("", controllers.ListBudgets)
		budget.GET("/:id", controllers.GetBudget)
		budget.PATCH("/:id/usage", middlewares.AuthMiddleware(), controllers.UpdateBudgetUsage)
		budget.POST("/:id/document", middlewares.AuthMiddleware(), controllers.AddBudgetDocument)
		budget.POST("/:id/document/upload", middlewares.AuthMiddleware(), controllers.UploadBudgetDocument)
		budget.PATCH("/:id/close", middlewares.AuthMiddleware(), controllers.CloseBudget)
		budget.DELETE("/:id", middlewares.AuthMiddleware(), controllers.DeleteBudget)
	}
}
