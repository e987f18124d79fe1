package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"civicseva-be/config"
	"civicseva-be/events"
	"civicseva-be/models"
	"civicseva-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateBudget approves a budget for an issue
func CreateBudget(c *gin.Context) {
	var input struct {
		IssueID        string                  `json:"issueId" binding:"required"`
		WardID         string                  `json:"wardId" binding:"required"`
		ApprovedBy     string                  `json:"approvedBy" binding:"required"`
		EstimatedCost  *float64                `json:"estimatedCost" binding:"required"`
		AmountApproved *float64                `json:"amountApproved" binding:"required"`
		AmountUsed     float64                 `json:"amountUsed,omitempty"`
		Remarks        string                  `json:"remarks,omitempty"`
		Documents      []models.BudgetDocument `json:"documents,omitempty"`
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
	wardID, err := primitive.ObjectIDFromHex(input.WardID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ward ID"})
		return
	}
	approvedBy, err := primitive.ObjectIDFromHex(input.ApprovedBy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid approver ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := issueCollection.CountDocuments(ctx, bson.M{"_id": issueID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check issue"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	budget := models.NewBudget(issueID, wardID, approvedBy, *input.EstimatedCost, *input.AmountApproved, input.AmountUsed, input.Remarks, input.Documents)

	if _, err := budgetCollection.InsertOne(ctx, budget); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create budget"})
		return
	}

	c.JSON(http.StatusCreated, budget)
}

// ListBudgets retrieves budgets with filtering and pagination
func ListBudgets(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pagination := utils.ParsePagination(c.DefaultQuery("page", "1"), c.DefaultQuery("limit", "20"))
	sortSpec := utils.SortSpec(c.Query("sortBy"), c.Query("sortDir"), "approvedAt")

	filter := bson.M{}
	if wardID, err := primitive.ObjectIDFromHex(c.Query("wardId")); err == nil {
		filter["wardId"] = wardID
	}
	if issueID, err := primitive.ObjectIDFromHex(c.Query("issueId")); err == nil {
		filter["issueId"] = issueID
	}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	total, err := budgetCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count budgets"})
		return
	}

	findOptions := options.Find().
		SetSort(sortSpec).
		SetSkip(pagination.Skip()).
		SetLimit(int64(pagination.Limit))

	cursor, err := budgetCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve budgets"})
		return
	}
	defer cursor.Close(ctx)

	budgets := make([]models.Budget, 0)
	if err := cursor.All(ctx, &budgets); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode budgets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": budgets,
		"total": total,
		"page":  pagination.Page,
		"limit": pagination.Limit,
	})
}

// GetBudget retrieves a budget with its issue reference expanded
func GetBudget(c *gin.Context) {
	budgetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid budget ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var budget models.Budget
	err = budgetCollection.FindOne(ctx, bson.M{"_id": budgetID}).Decode(&budget)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve budget"})
		}
		return
	}

	response := gin.H{"budget": budget}

	var issue models.Issue
	if err := issueCollection.FindOne(ctx, bson.M{"_id": budget.IssueID}).Decode(&issue); err == nil {
		response["issue"] = gin.H{"id": issue.ID, "title": issue.Title, "status": issue.Status}
	}

	c.JSON(http.StatusOK, response)
}

// UpdateBudgetUsage records spending against the budget. The amount is the
// new absolute figure, not a delta; zero is valid.
func UpdateBudgetUsage(c *gin.Context) {
	budgetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid budget ID"})
		return
	}

	var input struct {
		AmountUsed *float64 `json:"amountUsed" binding:"required"`
		By         string   `json:"by" binding:"required"`
		Note       string   `json:"note,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	by, err := primitive.ObjectIDFromHex(input.By)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid actor ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var budget models.Budget
	if err := budgetCollection.FindOne(ctx, bson.M{"_id": budgetID}).Decode(&budget); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve budget"})
		}
		return
	}

	if err := budget.ApplyUsage(*input.AmountUsed, by, input.Note); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Budget is closed"})
		return
	}

	update := bson.M{"$set": bson.M{
		"amountUsed":      budget.AmountUsed,
		"remainingAmount": budget.RemainingAmount,
		"status":          budget.Status,
		"history":         budget.History,
		"updatedAt":       budget.UpdatedAt,
	}}
	if _, err := budgetCollection.UpdateOne(ctx, bson.M{"_id": budgetID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update budget"})
		return
	}

	events.PublishBudgetUsage(&budget)

	c.JSON(http.StatusOK, budget)
}

// AddBudgetDocument attaches document metadata to the budget
func AddBudgetDocument(c *gin.Context) {
	budgetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid budget ID"})
		return
	}

	var input struct {
		FileName string `json:"fileName" binding:"required"`
		FilePath string `json:"filePath" binding:"required"`
		By       string `json:"by" binding:"required"`
		Note     string `json:"note,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	by, err := primitive.ObjectIDFromHex(input.By)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid actor ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var budget models.Budget
	if err := budgetCollection.FindOne(ctx, bson.M{"_id": budgetID}).Decode(&budget); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve budget"})
		}
		return
	}

	if err := budget.AttachDocument(input.FileName, input.FilePath, by, input.Note); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Budget is closed"})
		return
	}

	update := bson.M{"$set": bson.M{
		"documents": budget.Documents,
		"history":   budget.History,
		"updatedAt": budget.UpdatedAt,
	}}
	if _, err := budgetCollection.UpdateOne(ctx, bson.M{"_id": budgetID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update budget"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Document added", "documents": budget.Documents})
}

// UploadBudgetDocument stores the uploaded file in object storage, then
// attaches its metadata to the budget.
func UploadBudgetDocument(c *gin.Context) {
	if config.MinioClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Object storage not configured"})
		return
	}

	budgetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid budget ID"})
		return
	}

	by, err := primitive.ObjectIDFromHex(c.PostForm("by"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid actor ID"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var budget models.Budget
	if err := budgetCollection.FindOne(ctx, bson.M{"_id": budgetID}).Decode(&budget); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve budget"})
		}
		return
	}

	if budget.Status == models.BudgetClosed {
		c.JSON(http.StatusConflict, gin.H{"error": "Budget is closed"})
		return
	}

	objectName := fmt.Sprintf("%s/%d%s", budgetID.Hex(), time.Now().UnixNano(), filepath.Ext(fileHeader.Filename))
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = config.MinioClient.PutObject(ctx, config.MinioBucket, objectName, file, fileHeader.Size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		log.Println("Failed to store budget document:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store document"})
		return
	}

	if err := budget.AttachDocument(fileHeader.Filename, config.MinioBucket+"/"+objectName, by, c.PostForm("note")); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Budget is closed"})
		return
	}

	update := bson.M{"$set": bson.M{
		"documents": budget.Documents,
		"history":   budget.History,
		"updatedAt": budget.UpdatedAt,
	}}
	if _, err := budgetCollection.UpdateOne(ctx, bson.M{"_id": budgetID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update budget"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Document uploaded", "documents": budget.Documents})
}

// CloseBudget moves the budget to its terminal status
func CloseBudget(c *gin.Context) {
	budgetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid budget ID"})
		return
	}

	var input struct {
		By   string `json:"by" binding:"required"`
		Note string `json:"note,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	by, err := primitive.ObjectIDFromHex(input.By)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid actor ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var budget models.Budget
	if err := budgetCollection.FindOne(ctx, bson.M{"_id": budgetID}).Decode(&budget); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve budget"})
		}
		return
	}

	if err := budget.Close(by, input.Note); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Budget is already closed"})
		return
	}

	update := bson.M{"$set": bson.M{
		"status":    budget.Status,
		"closedAt":  budget.ClosedAt,
		"history":   budget.History,
		"updatedAt": budget.UpdatedAt,
	}}
	if _, err := budgetCollection.UpdateOne(ctx, bson.M{"_id": budgetID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update budget"})
		return
	}

	c.JSON(http.StatusOK, budget)
}

// DeleteBudget hard-deletes a budget record
func DeleteBudget(c *gin.Context) {
	budgetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid budget ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := budgetCollection.DeleteOne(ctx, bson.M{"_id": budgetID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete budget"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted"})
}
