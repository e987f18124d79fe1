package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"civicseva-be/models"
	"civicseva-be/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateOfficer registers a municipal officer account
func CreateOfficer(c *gin.Context) {
	var input struct {
		Name         string   `json:"name" binding:"required,max=50"`
		Email        string   `json:"email" binding:"required,email"`
		Password     string   `json:"password" binding:"required,min=6"`
		WardsManaged []string `json:"wardsManaged,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := officerCollection.CountDocuments(ctx, bson.M{"email": input.Email})
	if err != nil {
		log.Println("Error checking existing officer:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Officer with this email already exists"})
		return
	}

	officer := models.Officer{
		ID:        primitive.NewObjectID(),
		Name:      input.Name,
		Email:     input.Email,
		Password:  input.Password,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	for _, ward := range input.WardsManaged {
		wardID, err := primitive.ObjectIDFromHex(ward)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ward ID"})
			return
		}
		officer.WardsManaged = append(officer.WardsManaged, wardID)
	}

	if err := officer.HashPassword(); err != nil {
		log.Println("Error hashing password:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	if _, err := officerCollection.InsertOne(ctx, officer); err != nil {
		log.Println("Error inserting officer:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusCreated, officer)
}

// LoginOfficer handles officer login
func LoginOfficer(c *gin.Context) {
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

	var officer models.Officer
	err := officerCollection.FindOne(ctx, bson.M{"email": input.Email}).Decode(&officer)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !officer.ComparePassword(input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(officer.ID.Hex(), "officer")
	if err != nil {
		log.Println("Error generating token:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"officer": officer, "token": token})
}

// ListOfficers retrieves officers with pagination
func ListOfficers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pagination := utils.ParsePagination(c.DefaultQuery("page", "1"), c.DefaultQuery("limit", "20"))
	sortSpec := utils.SortSpec(c.Query("sortBy"), c.Query("sortDir"), "createdAt")

	filter := bson.M{}
	if wardID, err := primitive.ObjectIDFromHex(c.Query("wardId")); err == nil {
		filter["wardsManaged"] = wardID
	}

	total, err := officerCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count officers"})
		return
	}

	findOptions := options.Find().
		SetSort(sortSpec).
		SetSkip(pagination.Skip()).
		SetLimit(int64(pagination.Limit))

	cursor, err := officerCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve officers"})
		return
	}
	defer cursor.Close(ctx)

	officers := make([]models.Officer, 0)
	if err := cursor.All(ctx, &officers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode officers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": officers,
		"total": total,
		"page":  pagination.Page,
		"limit": pagination.Limit,
	})
}

// GetOfficer retrieves an officer by ID
func GetOfficer(c *gin.Context) {
	officerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid officer ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var officer models.Officer
	err = officerCollection.FindOne(ctx, bson.M{"_id": officerID}).Decode(&officer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Officer not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve officer"})
		}
		return
	}

	c.JSON(http.StatusOK, officer)
}

// RecordOfficerAssignment tracks an issue on the officer's assigned list
func RecordOfficerAssignment(c *gin.Context) {
	officerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid officer ID"})
		return
	}

	var input struct {
		IssueID string `json:"issueId" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issueID, err := primitive.ObjectIDFromHex(input.IssueID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.Officer
	err = officerCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": officerID},
		bson.M{
			"$addToSet": bson.M{"assignedIssues": issueID},
			"$set":      bson.M{"updatedAt": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Officer not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update officer"})
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteOfficer removes an officer account
func DeleteOfficer(c *gin.Context) {
	officerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid officer ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := officerCollection.DeleteOne(ctx, bson.M{"_id": officerID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete officer"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Officer not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Officer deleted"})
}
