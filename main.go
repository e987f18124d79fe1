package main

import (
	"log"
	"net/http"
	"os"

	"civicseva-be/config"
	"civicseva-be/events"
	"civicseva-be/models"
	"civicseva-be/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	db := config.ConnectDB()
	if db == nil {
		log.Fatal("Failed to connect to MongoDB")
	}

	log.Println("MongoDB connection established successfully!")

	if err := models.EnsureCitizenIndex(config.GetCollection("citizens")); err != nil {
		log.Println("Failed to ensure citizen index:", err)
	}
	if err := models.EnsureWardRepIndexes(config.GetCollection("wardreps")); err != nil {
		log.Println("Failed to ensure ward rep indexes:", err)
	}
	if err := models.EnsureAdminIndexes(config.GetCollection("admins")); err != nil {
		log.Println("Failed to ensure admin indexes:", err)
	}

	config.ConnectRedis()

	if err := config.ConnectRabbit(); err != nil {
		log.Println("Event bus unavailable:", err)
	}
	events.StartMirror()

	if err := config.ConnectMinio(); err != nil {
		log.Println("Object storage unavailable:", err)
	}

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		corsConfig.AllowOrigins = []string{origins}
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowHeaders("Authorization")
	r.Use(cors.New(corsConfig))

	routes.IssueRoutes(r)
	routes.BudgetRoutes(r)
	routes.CitizenRoutes(r)
	routes.WardRepRoutes(r)
	routes.AdminRoutes(r)
	routes.OfficerRoutes(r)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
