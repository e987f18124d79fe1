package controllers

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"civicseva-be/config"
	"civicseva-be/models"
	"civicseva-be/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var adminCollection *mongo.Collection = config.GetCollection("admins")

// RegisterAdmin handles admin account registration
func RegisterAdmin(c *gin.Context) {
	var input struct {
		Username string   `json:"username" binding:"required,max=50"`
		Email    string   `json:"email" binding:"required,email"`
		Password string   `json:"password" binding:"required,min=6"`
		Roles    []string `json:"roles,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := adminCollection.CountDocuments(ctx, bson.M{"$or": []bson.M{
		{"username": input.Username},
		{"email": input.Email},
	}})
	if err != nil {
		log.Println("Error checking existing admin:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Admin with this username or email already exists"})
		return
	}

	roles := input.Roles
	if len(roles) == 0 {
		roles = []string{"user"}
	}

	admin := models.Admin{
		ID:        primitive.NewObjectID(),
		Username:  input.Username,
		Email:     input.Email,
		Password:  input.Password,
		Roles:     roles,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := admin.HashPassword(); err != nil {
		log.Println("Error hashing password:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	if _, err := adminCollection.InsertOne(ctx, admin); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Admin with this username or email already exists"})
			return
		}
		log.Println("Error inserting admin:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	token, err := utils.GenerateToken(admin.ID.Hex(), "admin")
	if err != nil {
		log.Println("Error generating token:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"admin": admin, "token": token})
}

// LoginAdmin handles admin login and sets the auth cookie
func LoginAdmin(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var admin models.Admin
	err := adminCollection.FindOne(ctx, bson.M{"email": input.Email}).Decode(&admin)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !admin.ComparePassword(input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(admin.ID.Hex(), "admin")
	if err != nil {
		log.Println("Error generating token:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	environment := os.Getenv("GO_ENV")
	domain := os.Getenv("DOMAIN")

	// For production, don't set domain to allow cross-origin cookies
	if environment == "production" {
		domain = ""
	}

	cookie := &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		MaxAge:   3600, // 1 hour
		Path:     "/",
		Domain:   domain,
		Secure:   environment == "production", // false for HTTP (dev), true for HTTPS (prod)
		HttpOnly: true,                        // still protect from JS access
		SameSite: http.SameSiteNoneMode,       // Required for cross-origin cookies in production
	}
	http.SetCookie(c.Writer, cookie)

	c.JSON(http.StatusOK, gin.H{
		"id":        admin.ID,
		"username":  admin.Username,
		"email":     admin.Email,
		"roles":     admin.Roles,
		"createdAt": admin.CreatedAt,
		"token":     token,
	})
}

// GetMe retrieves the authenticated admin's information
func GetMe(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	objectID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var admin models.Admin
	err = adminCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&admin)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
		return
	}

	c.JSON(http.StatusOK, admin)
}

// ListAdmins retrieves admin accounts with pagination
func ListAdmins(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pagination := utils.ParsePagination(c.DefaultQuery("page", "1"), c.DefaultQuery("limit", "20"))
	sortSpec := utils.SortSpec(c.Query("sortBy"), c.Query("sortDir"), "createdAt")

	filter := bson.M{}
	if role := c.Query("role"); role != "" {
		filter["roles"] = role
	}

	total, err := adminCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count admins"})
		return
	}

	findOptions := options.Find().
		SetSort(sortSpec).
		SetSkip(pagination.Skip()).
		SetLimit(int64(pagination.Limit))

	cursor, err := adminCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve admins"})
		return
	}
	defer cursor.Close(ctx)

	admins := make([]models.Admin, 0)
	if err := cursor.All(ctx, &admins); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode admins"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": admins,
		"total": total,
		"page":  pagination.Page,
		"limit": pagination.Limit,
	})
}

// GetAdmin retrieves an admin account by ID
func GetAdmin(c *gin.Context) {
	adminID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid admin ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var admin models.Admin
	err = adminCollection.FindOne(ctx, bson.M{"_id": adminID}).Decode(&admin)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve admin"})
		}
		return
	}

	c.JSON(http.StatusOK, admin)
}

// UpdateAdmin applies a partial update; a new password is re-hashed
func UpdateAdmin(c *gin.Context) {
	adminID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid admin ID"})
		return
	}

	var input struct {
		Email    *string  `json:"email,omitempty"`
		Password *string  `json:"password,omitempty"`
		Roles    []string `json:"roles,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if input.Email != nil {
		update["email"] = *input.Email
	}
	if input.Password != nil {
		admin := models.Admin{Password: *input.Password}
		if err := admin.HashPassword(); err != nil {
			log.Println("Error hashing password:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
		update["password"] = admin.Password
	}
	if input.Roles != nil {
		update["roles"] = input.Roles
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.Admin
	err = adminCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": adminID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update admin"})
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteAdmin removes an admin account
func DeleteAdmin(c *gin.Context) {
	adminID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid admin ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := adminCollection.DeleteOne(ctx, bson.M{"_id": adminID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete admin"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Admin deleted"})
}

// LogoutAdmin handles logout by clearing the auth_token cookie
func LogoutAdmin(c *gin.Context) {
	environment := os.Getenv("GO_ENV")
	domain := os.Getenv("DOMAIN")

	c.SetCookie("auth_token", "", -1, "/", domain, environment == "production", true)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}
