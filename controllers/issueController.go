package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"civicseva-be/config"
	"civicseva-be/events"
	"civicseva-be/models"
	"civicseva-be/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var issueCollection *mongo.Collection = config.GetCollection("issues")
var budgetCollection *mongo.Collection = config.GetCollection("budgets")
var citizenCollection *mongo.Collection = config.GetCollection("citizens")
var wardRepCollection *mongo.Collection = config.GetCollection("wardreps")
var officerCollection *mongo.Collection = config.GetCollection("officers")

// CreateIssue handles the creation of a new issue
func CreateIssue(c *gin.Context) {
	var input struct {
		CitizenID     string           `json:"citizenId" binding:"required"`
		WardID        string           `json:"wardId" binding:"required"`
		Title         string           `json:"title" binding:"required,max=200"`
		Description   string           `json:"description" binding:"required,max=2000"`
		Category      *string          `json:"category,omitempty"`
		Priority      *string          `json:"priority,omitempty"`
		Location      *models.Location `json:"location,omitempty"`
		Images        []string         `json:"images,omitempty"`
		EstimatedCost float64          `json:"estimatedCost,omitempty"`
		Visibility    *string          `json:"visibility,omitempty"`
		PostID        *string          `json:"postId,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	citizenID, err := primitive.ObjectIDFromHex(input.CitizenID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid citizen ID"})
		return
	}
	wardID, err := primitive.ObjectIDFromHex(input.WardID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ward ID"})
		return
	}

	category := models.Others
	if input.Category != nil {
		if !models.ValidCategory(*input.Category) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		category = models.IssueCategory(*input.Category)
	}

	priority := models.PriorityMedium
	if input.Priority != nil {
		if !models.ValidPriority(*input.Priority) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
		priority = models.IssuePriority(*input.Priority)
	}

	visibility := models.VisibilityPublic
	if input.Visibility != nil {
		switch models.IssueVisibility(*input.Visibility) {
		case models.VisibilityPublic, models.VisibilityWardOnly:
			visibility = models.IssueVisibility(*input.Visibility)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid visibility"})
			return
		}
	}

	issue := models.Issue{
		ID:            primitive.NewObjectID(),
		CitizenID:     citizenID,
		WardID:        wardID,
		Title:         input.Title,
		Description:   input.Description,
		Category:      category,
		Priority:      priority,
		Images:        input.Images,
		EstimatedCost: input.EstimatedCost,
		Status:        models.IssuePendingVerification,
		Visibility:    visibility,
		IsActive:      true,
		IsArchived:    false,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if input.Location != nil {
		issue.Location = *input.Location
	}
	if input.PostID != nil {
		postID, err := primitive.ObjectIDFromHex(*input.PostID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
			return
		}
		issue.PostID = &postID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := issueCollection.InsertOne(ctx, issue); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create issue"})
		return
	}

	c.JSON(http.StatusCreated, issue)
}

// ListIssues handles retrieving issues with filtering, search, pagination and sorting
func ListIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pagination := utils.ParsePagination(c.DefaultQuery("page", "1"), c.DefaultQuery("limit", "20"))
	sortSpec := utils.SortSpec(c.Query("sortBy"), c.Query("sortDir"), "createdAt")

	// Archived issues never show up in listings
	filter := bson.M{"isActive": true, "isArchived": false}

	if wardID, err := primitive.ObjectIDFromHex(c.Query("wardId")); err == nil {
		filter["wardId"] = wardID
	}
	if citizenID, err := primitive.ObjectIDFromHex(c.Query("citizenId")); err == nil {
		filter["citizenId"] = citizenID
	}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	if category := c.Query("category"); category != "" {
		filter["category"] = category
	}
	if priority := c.Query("priority"); priority != "" {
		filter["priority"] = priority
	}
	if q := c.Query("q"); q != "" {
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": q, "$options": "i"}},
			{"description": bson.M{"$regex": q, "$options": "i"}},
		}
	}

	total, err := issueCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count issues"})
		return
	}

	findOptions := options.Find().
		SetSort(sortSpec).
		SetSkip(pagination.Skip()).
		SetLimit(int64(pagination.Limit))

	cursor, err := issueCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	defer cursor.Close(ctx)

	issues := make([]models.Issue, 0)
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode issues"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": issues,
		"total": total,
		"page":  pagination.Page,
		"limit": pagination.Limit,
	})
}

// GetIssue retrieves an issue by its ID with related references expanded
func GetIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.Issue
	err = issueCollection.FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	// Expand references after the primary read; missing references are
	// simply left out of the response
	response := gin.H{"issue": issue}

	var citizen models.Citizen
	if err := citizenCollection.FindOne(ctx, bson.M{"_id": issue.CitizenID}).Decode(&citizen); err == nil {
		response["citizen"] = gin.H{
			"id":      citizen.ID,
			"address": citizen.Address,
			"pincode": citizen.Pincode,
		}
	}

	if issue.VerifiedBy != nil {
		var rep models.WardRep
		if err := wardRepCollection.FindOne(ctx, bson.M{"_id": *issue.VerifiedBy}).Decode(&rep); err == nil {
			response["verifiedBy"] = gin.H{"id": rep.ID, "name": rep.Name, "ward": rep.Ward}
		}
	}

	if issue.OfficerID != nil {
		var officer models.Officer
		if err := officerCollection.FindOne(ctx, bson.M{"_id": *issue.OfficerID}).Decode(&officer); err == nil {
			response["officer"] = gin.H{"id": officer.ID, "name": officer.Name}
		}
	}

	if issue.BudgetDetails != nil {
		var budget models.Budget
		if err := budgetCollection.FindOne(ctx, bson.M{"_id": *issue.BudgetDetails}).Decode(&budget); err == nil {
			response["budget"] = budget
		}
	}

	c.JSON(http.StatusOK, response)
}

// UpdateIssue applies a partial update restricted to non-lifecycle fields.
// Status and verification fields only move through the dedicated endpoints.
func UpdateIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		Title         *string          `json:"title,omitempty"`
		Description   *string          `json:"description,omitempty"`
		Category      *string          `json:"category,omitempty"`
		Priority      *string          `json:"priority,omitempty"`
		Location      *models.Location `json:"location,omitempty"`
		Images        []string         `json:"images,omitempty"`
		EstimatedCost *float64         `json:"estimatedCost,omitempty"`
		Visibility    *string          `json:"visibility,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if input.Title != nil {
		update["title"] = *input.Title
	}
	if input.Description != nil {
		update["description"] = *input.Description
	}
	if input.Category != nil {
		if !models.ValidCategory(*input.Category) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		update["category"] = *input.Category
	}
	if input.Priority != nil {
		if !models.ValidPriority(*input.Priority) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
		update["priority"] = *input.Priority
	}
	if input.Location != nil {
		update["location"] = *input.Location
	}
	if input.Images != nil {
		update["images"] = input.Images
	}
	if input.EstimatedCost != nil {
		update["estimatedCost"] = *input.EstimatedCost
	}
	if input.Visibility != nil {
		switch models.IssueVisibility(*input.Visibility) {
		case models.VisibilityPublic, models.VisibilityWardOnly:
			update["visibility"] = *input.Visibility
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid visibility"})
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.Issue
	err = issueCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": issueID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue"})
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

// VerifyIssue records a ward representative's verdict on an issue
func VerifyIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		WardRepID          string `json:"wardRepId" binding:"required"`
		VerificationRemark string `json:"verificationRemark,omitempty"`
		Accept             *bool  `json:"accept,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	repID, err := primitive.ObjectIDFromHex(input.WardRepID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ward rep ID"})
		return
	}

	accept := true
	if input.Accept != nil {
		accept = *input.Accept
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.Issue
	if err := issueCollection.FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	if err := issue.ApplyVerification(repID, input.VerificationRemark, accept); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Issue can no longer be verified in its current status"})
		return
	}

	update := bson.M{"$set": bson.M{
		"verifiedBy":         issue.VerifiedBy,
		"verificationRemark": issue.VerificationRemark,
		"verifiedAt":         issue.VerifiedAt,
		"verifiedDate":       issue.VerifiedDate,
		"status":             issue.Status,
		"updatedAt":          issue.UpdatedAt,
	}}
	if _, err := issueCollection.UpdateOne(ctx, bson.M{"_id": issueID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue"})
		return
	}

	events.PublishIssueStatus(&issue)

	c.JSON(http.StatusOK, issue)
}

// AssignIssue assigns an officer and/or a worker to the issue
func AssignIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		OfficerID  *string `json:"officerId,omitempty"`
		WorkerID   *string `json:"workerId,omitempty"`
		AssignedBy *string `json:"assignedBy,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var officerID, workerID, assignedBy *primitive.ObjectID
	if input.OfficerID != nil {
		id, err := primitive.ObjectIDFromHex(*input.OfficerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid officer ID"})
			return
		}
		officerID = &id
	}
	if input.WorkerID != nil {
		id, err := primitive.ObjectIDFromHex(*input.WorkerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid worker ID"})
			return
		}
		workerID = &id
	}
	if input.AssignedBy != nil {
		id, err := primitive.ObjectIDFromHex(*input.AssignedBy)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignedBy ID"})
			return
		}
		assignedBy = &id
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.Issue
	if err := issueCollection.FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	if err := issue.Assign(officerID, workerID, assignedBy); err != nil {
		if err == models.ErrNothingToAssign {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusConflict, gin.H{"error": "Issue cannot be assigned in its current status"})
		}
		return
	}

	update := bson.M{"$set": bson.M{
		"officerId":       issue.OfficerID,
		"assignedTo":      issue.AssignedTo,
		"assignedAt":      issue.AssignedAt,
		"status":          issue.Status,
		"progressUpdates": issue.ProgressUpdates,
		"updatedAt":       issue.UpdatedAt,
	}}
	if _, err := issueCollection.UpdateOne(ctx, bson.M{"_id": issueID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue"})
		return
	}

	events.PublishIssueStatus(&issue)

	c.JSON(http.StatusOK, issue)
}

// AddProgressUpdate appends a progress entry and moves the issue status
func AddProgressUpdate(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		Status    string  `json:"status" binding:"required"`
		Remark    string  `json:"remark,omitempty"`
		UpdatedBy *string `json:"updatedBy,omitempty"`
		Photo     string  `json:"photo,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := models.ProgressUpdate{
		Status: models.IssueStatus(input.Status),
		Remark: input.Remark,
		Photo:  input.Photo,
	}
	if input.UpdatedBy != nil {
		id, err := primitive.ObjectIDFromHex(*input.UpdatedBy)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid updatedBy ID"})
			return
		}
		update.UpdatedBy = &id
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.Issue
	if err := issueCollection.FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	if err := issue.ApplyProgress(update); err != nil {
		if err == models.ErrUnknownStatus {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid progress status"})
		} else {
			c.JSON(http.StatusConflict, gin.H{"error": "Status transition not allowed"})
		}
		return
	}

	set := bson.M{"$set": bson.M{
		"status":          issue.Status,
		"progressUpdates": issue.ProgressUpdates,
		"resolvedDate":    issue.ResolvedDate,
		"closedDate":      issue.ClosedDate,
		"updatedAt":       issue.UpdatedAt,
	}}
	if _, err := issueCollection.UpdateOne(ctx, bson.M{"_id": issueID}, set); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue"})
		return
	}

	events.PublishIssueStatus(&issue)

	c.JSON(http.StatusOK, issue)
}

// AddIssueComment appends a comment to the issue
func AddIssueComment(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		UserID string `json:"userId" binding:"required"`
		Text   string `json:"text" binding:"required,max=1000"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := primitive.ObjectIDFromHex(input.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	comment := models.IssueComment{
		UserID:    userID,
		Text:      input.Text,
		Timestamp: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.Issue
	err = issueCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": issueID},
		bson.M{"$push": bson.M{"comments": comment}, "$set": bson.M{"updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Comment added", "comments": updated.Comments})
}

// ToggleLike toggles the user's like on an issue
func ToggleLike(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		UserID string `json:"userId" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := primitive.ObjectIDFromHex(input.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.Issue
	if err := issueCollection.FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	liked := issue.ToggleLike(userID)

	update := bson.M{"$set": bson.M{"likes": issue.Likes, "updatedAt": time.Now()}}
	if _, err := issueCollection.UpdateOne(ctx, bson.M{"_id": issueID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update likes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"likesCount": len(issue.Likes), "liked": liked})
}

// IncrementViews atomically bumps the view counter and returns the new count
func IncrementViews(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.Issue
	err = issueCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": issueID},
		bson.M{"$inc": bson.M{"views": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to increment views"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"views": updated.Views})
}

// LinkBudget attaches a budget record to the issue. The budget must already
// reference this issue, keeping the 1:1 relation consistent in both
// directions.
func LinkBudget(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		BudgetID string `json:"budgetId" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	budgetID, err := primitive.ObjectIDFromHex(input.BudgetID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid budget ID"})
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

	if budget.IssueID != issueID {
		c.JSON(http.StatusConflict, gin.H{"error": "Budget belongs to a different issue"})
		return
	}

	result, err := issueCollection.UpdateOne(
		ctx,
		bson.M{"_id": issueID},
		bson.M{"$set": bson.M{"budgetDetails": budgetID, "updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to link budget"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget linked", "budgetDetails": budgetID})
}

// SetIssueArchive archives or restores an issue
func SetIssueArchive(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		Archive *bool `json:"archive,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	archive := true
	if input.Archive != nil {
		archive = *input.Archive
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.Issue
	if err := issueCollection.FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	issue.SetArchive(archive)

	update := bson.M{"$set": bson.M{
		"isArchived": issue.IsArchived,
		"isActive":   issue.IsActive,
		"updatedAt":  issue.UpdatedAt,
	}}
	if _, err := issueCollection.UpdateOne(ctx, bson.M{"_id": issueID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue"})
		return
	}

	message := "Archived"
	if !archive {
		message = "Restored"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "issue": issue})
}

// DeleteIssue hard-deletes an issue (admin escape hatch)
func DeleteIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := issueCollection.DeleteOne(ctx, bson.M{"_id": issueID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete issue"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted"})
}

// GetIssueAnalytics returns analytical data about issues
func GetIssueAnalytics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Get issues by category using aggregation
	categoryPipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":   "$category",
				"count": bson.M{"$sum": 1},
			},
		},
		{
			"$project": bson.M{
				"name":  "$_id",
				"value": "$count",
				"_id":   0,
			},
		},
	}

	categoryCursor, err := issueCollection.Aggregate(ctx, categoryPipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get category analytics"})
		return
	}
	defer categoryCursor.Close(ctx)

	var issuesByCategory []bson.M
	if err := categoryCursor.All(ctx, &issuesByCategory); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode category analytics"})
		return
	}

	// Issues by status
	statusPipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":   "$status",
				"count": bson.M{"$sum": 1},
			},
		},
		{
			"$project": bson.M{
				"name":  "$_id",
				"value": "$count",
				"_id":   0,
			},
		},
	}

	statusCursor, err := issueCollection.Aggregate(ctx, statusPipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get status analytics"})
		return
	}
	defer statusCursor.Close(ctx)

	var issuesByStatus []bson.M
	if err := statusCursor.All(ctx, &issuesByStatus); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode status analytics"})
		return
	}

	// Get last 7 days data
	var last7Days []gin.H
	for i := 6; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i)
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

		nextDate := date.AddDate(0, 0, 1)

		count, err := issueCollection.CountDocuments(ctx, bson.M{
			"createdAt": bson.M{
				"$gte": date,
				"$lt":  nextDate,
			},
		})
		if err != nil {
			count = 0
		}

		last7Days = append(last7Days, gin.H{
			"date":  date.Format("2006-01-02"),
			"count": count,
		})
	}

	// Top liked issues among the 50 most recent
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(50)

	cursor, err := issueCollection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues for like analysis"})
		return
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode issues"})
		return
	}

	type IssueWithLikeCount struct {
		ID       primitive.ObjectID `json:"id"`
		Title    string             `json:"title"`
		Category string             `json:"category"`
		Status   string             `json:"status"`
		Likes    int                `json:"likes"`
	}

	var topLiked []IssueWithLikeCount
	for _, issue := range issues {
		topLiked = append(topLiked, IssueWithLikeCount{
			ID:       issue.ID,
			Title:    issue.Title,
			Category: string(issue.Category),
			Status:   string(issue.Status),
			Likes:    len(issue.Likes),
		})
	}

	sort.Slice(topLiked, func(i, j int) bool {
		return topLiked[i].Likes > topLiked[j].Likes
	})

	if len(topLiked) > 5 {
		topLiked = topLiked[:5]
	}

	totalIssues, err := issueCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		totalIssues = 0
	}

	openIssues, err := issueCollection.CountDocuments(ctx, bson.M{
		"status": bson.M{"$in": []string{
			string(models.IssuePendingVerification),
			string(models.IssueVerified),
			string(models.IssueAssigned),
			string(models.IssueInProgress),
			string(models.IssueWorkHalted),
		}},
	})
	if err != nil {
		openIssues = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"issuesByCategory": issuesByCategory,
		"issuesByStatus":   issuesByStatus,
		"last7Days":        last7Days,
		"topLikedIssues":   topLiked,
		"totalIssues":      totalIssues,
		"openIssues":       openIssues,
	})
}
