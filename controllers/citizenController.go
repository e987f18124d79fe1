package controllers

import (
	"context"
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

// CreateCitizen creates a citizen profile for a user account. One profile
// per user, backed by the unique index on userId.
func CreateCitizen(c *gin.Context) {
	var input struct {
		UserID            string              `json:"userId" binding:"required"`
		WardID            string              `json:"wardId" binding:"required"`
		Address           string              `json:"address" binding:"required"`
		Pincode           string              `json:"pincode,omitempty"`
		GeoLocation       *models.GeoLocation `json:"geoLocation,omitempty"`
		AlternatePhone    string              `json:"alternatePhone,omitempty"`
		ProfileVisibility *string             `json:"profileVisibility,omitempty"`
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
	wardID, err := primitive.ObjectIDFromHex(input.WardID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ward ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := citizenCollection.CountDocuments(ctx, bson.M{"userId": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing profile"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Profile already exists for this user"})
		return
	}

	visibility := models.ProfilePublic
	if input.ProfileVisibility != nil {
		switch models.ProfileVisibility(*input.ProfileVisibility) {
		case models.ProfilePublic, models.ProfilePrivate:
			visibility = models.ProfileVisibility(*input.ProfileVisibility)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile visibility"})
			return
		}
	}

	citizen := models.Citizen{
		ID:                primitive.NewObjectID(),
		UserID:            userID,
		WardID:            wardID,
		Address:           input.Address,
		Pincode:           input.Pincode,
		AlternatePhone:    input.AlternatePhone,
		ProfileVisibility: visibility,
		IsActive:          true,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	if input.GeoLocation != nil {
		citizen.GeoLocation = *input.GeoLocation
	}
	citizen.LogActivity("Profile created", nil)

	if _, err := citizenCollection.InsertOne(ctx, citizen); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Profile already exists for this user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create profile"})
		return
	}

	c.JSON(http.StatusCreated, citizen)
}

// ListCitizens retrieves citizen profiles with filtering and pagination
func ListCitizens(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pagination := utils.ParsePagination(c.DefaultQuery("page", "1"), c.DefaultQuery("limit", "20"))
	sortSpec := utils.SortSpec(c.Query("sortBy"), c.Query("sortDir"), "createdAt")

	filter := bson.M{"isActive": true, "isArchived": false}
	if wardID, err := primitive.ObjectIDFromHex(c.Query("wardId")); err == nil {
		filter["wardId"] = wardID
	}
	if verified := c.Query("verified"); verified != "" {
		filter["isVerifiedCitizen"] = verified == "true"
	}
	if q := c.Query("q"); q != "" {
		filter["$or"] = []bson.M{
			{"address": bson.M{"$regex": q, "$options": "i"}},
			{"alternatePhone": bson.M{"$regex": q, "$options": "i"}},
		}
	}

	total, err := citizenCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count profiles"})
		return
	}

	findOptions := options.Find().
		SetSort(sortSpec).
		SetSkip(pagination.Skip()).
		SetLimit(int64(pagination.Limit))

	cursor, err := citizenCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve profiles"})
		return
	}
	defer cursor.Close(ctx)

	citizens := make([]models.Citizen, 0)
	if err := cursor.All(ctx, &citizens); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode profiles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": citizens,
		"total": total,
		"page":  pagination.Page,
		"limit": pagination.Limit,
	})
}

// GetCitizen retrieves a citizen profile by its ID
func GetCitizen(c *gin.Context) {
	citizenID, err := primitive.ObjectIDFromHex(c.Param("citizenId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid citizen ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var citizen models.Citizen
	err = citizenCollection.FindOne(ctx, bson.M{"_id": citizenID}).Decode(&citizen)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve profile"})
		}
		return
	}

	c.JSON(http.StatusOK, citizen)
}

// UpdateCitizen applies a partial profile update. The userId link is
// immutable; derived totals never come from the client.
func UpdateCitizen(c *gin.Context) {
	citizenID, err := primitive.ObjectIDFromHex(c.Param("citizenId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid citizen ID"})
		return
	}

	var input struct {
		WardID            *string             `json:"wardId,omitempty"`
		Address           *string             `json:"address,omitempty"`
		Pincode           *string             `json:"pincode,omitempty"`
		GeoLocation       *models.GeoLocation `json:"geoLocation,omitempty"`
		AlternatePhone    *string             `json:"alternatePhone,omitempty"`
		ProfileVisibility *string             `json:"profileVisibility,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if input.WardID != nil {
		wardID, err := primitive.ObjectIDFromHex(*input.WardID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ward ID"})
			return
		}
		update["wardId"] = wardID
	}
	if input.Address != nil {
		update["address"] = *input.Address
	}
	if input.Pincode != nil {
		update["pincode"] = *input.Pincode
	}
	if input.GeoLocation != nil {
		update["geoLocation"] = *input.GeoLocation
	}
	if input.AlternatePhone != nil {
		update["alternatePhone"] = *input.AlternatePhone
	}
	if input.ProfileVisibility != nil {
		switch models.ProfileVisibility(*input.ProfileVisibility) {
		case models.ProfilePublic, models.ProfilePrivate:
			update["profileVisibility"] = *input.ProfileVisibility
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile visibility"})
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.Citizen
	err = citizenCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": citizenID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

// AddReportedIssue records an issue on the citizen's profile. The guarded
// push keeps concurrent duplicates out even across racing requests.
func AddReportedIssue(c *gin.Context) {
	citizenID, err := primitive.ObjectIDFromHex(c.Param("citizenId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid citizen ID"})
		return
	}

	var input struct {
		IssueID string `json:"issueId" binding:"required"`
		Title   string `json:"title,omitempty"`
		Status  string `json:"status,omitempty"`
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

	status := models.IssueStatus(input.Status)
	if input.Status == "" {
		status = models.IssuePendingVerification
	}

	entry := models.ReportedIssue{
		IssueID:    issueID,
		Title:      input.Title,
		Status:     status,
		ReportedAt: time.Now(),
	}
	activity := models.Activity{
		Action:    "Reported Issue",
		IssueID:   &issueID,
		Timestamp: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Push only when the issue is not yet recorded; a zero match count means
	// either a duplicate or a missing profile
	result, err := citizenCollection.UpdateOne(
		ctx,
		bson.M{"_id": citizenID, "issuesReported.issueId": bson.M{"$ne": issueID}},
		bson.M{"$push": bson.M{"issuesReported": entry, "activityLog": activity}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record issue"})
		return
	}

	var citizen models.Citizen
	if err := citizenCollection.FindOne(ctx, bson.M{"_id": citizenID}).Decode(&citizen); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve profile"})
		}
		return
	}

	if result.MatchedCount == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Issue already recorded for this citizen"})
		return
	}

	citizen.RecalcTotals()
	_, err = citizenCollection.UpdateOne(ctx, bson.M{"_id": citizenID}, bson.M{"$set": bson.M{
		"totalIssuesReported": citizen.TotalIssuesReported,
		"totalResolved":       citizen.TotalResolved,
		"totalPending":        citizen.TotalPending,
		"updatedAt":           time.Now(),
	}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update totals"})
		return
	}

	c.JSON(http.StatusCreated, citizen)
}

// UpdateReportedIssueStatus updates the snapshot status of one reported issue
func UpdateReportedIssueStatus(c *gin.Context) {
	citizenID, err := primitive.ObjectIDFromHex(c.Param("citizenId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid citizen ID"})
		return
	}
	issueID, err := primitive.ObjectIDFromHex(c.Param("issueId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var citizen models.Citizen
	if err := citizenCollection.FindOne(ctx, bson.M{"_id": citizenID}).Decode(&citizen); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve profile"})
		}
		return
	}

	if err := citizen.SetReportedIssueStatus(issueID, models.IssueStatus(input.Status)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not recorded for this citizen"})
		return
	}

	update := bson.M{"$set": bson.M{
		"issuesReported":      citizen.IssuesReported,
		"totalIssuesReported": citizen.TotalIssuesReported,
		"totalResolved":       citizen.TotalResolved,
		"totalPending":        citizen.TotalPending,
		"activityLog":         citizen.ActivityLog,
		"updatedAt":           citizen.UpdatedAt,
	}}
	if _, err := citizenCollection.UpdateOne(ctx, bson.M{"_id": citizenID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, citizen)
}

// AddCitizenComment keeps an issue-scoped comment reference on the profile
func AddCitizenComment(c *gin.Context) {
	citizenID, err := primitive.ObjectIDFromHex(c.Param("citizenId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid citizen ID"})
		return
	}

	var input struct {
		IssueID     *string `json:"issueId,omitempty"`
		CommentText string  `json:"commentText" binding:"required,max=1000"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment := models.CitizenComment{
		CommentText: input.CommentText,
		CommentedAt: time.Now(),
	}
	if input.IssueID != nil {
		issueID, err := primitive.ObjectIDFromHex(*input.IssueID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
			return
		}
		comment.IssueID = &issueID
	}

	activity := models.Activity{
		Action:    "Commented",
		IssueID:   comment.IssueID,
		Timestamp: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.Citizen
	err = citizenCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": citizenID},
		bson.M{
			"$push": bson.M{"comments": comment, "activityLog": activity},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Comment added", "comments": updated.Comments})
}

// RecordCitizenActivity appends a free-form activity entry
func RecordCitizenActivity(c *gin.Context) {
	citizenID, err := primitive.ObjectIDFromHex(c.Param("citizenId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid citizen ID"})
		return
	}

	var input struct {
		Action  string  `json:"action" binding:"required"`
		IssueID *string `json:"issueId,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	activity := models.Activity{
		Action:    input.Action,
		Timestamp: time.Now(),
	}
	if input.IssueID != nil {
		issueID, err := primitive.ObjectIDFromHex(*input.IssueID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
			return
		}
		activity.IssueID = &issueID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.Citizen
	err = citizenCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": citizenID},
		bson.M{
			"$push": bson.M{"activityLog": activity},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record activity"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Activity recorded", "activityLog": updated.ActivityLog})
}

// VerifyCitizen flags the profile as a verified citizen
func VerifyCitizen(c *gin.Context) {
	citizenID, err := primitive.ObjectIDFromHex(c.Param("citizenId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid citizen ID"})
		return
	}

	var input struct {
		Verified *bool `json:"verified,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	verified := true
	if input.Verified != nil {
		verified = *input.Verified
	}

	action := "Profile verified"
	if !verified {
		action = "Profile verification revoked"
	}
	activity := models.Activity{Action: action, Timestamp: time.Now()}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.Citizen
	err = citizenCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": citizenID},
		bson.M{
			"$set":  bson.M{"isVerifiedCitizen": verified, "updatedAt": time.Now()},
			"$push": bson.M{"activityLog": activity},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

// SetCitizenArchive archives or restores the profile
func SetCitizenArchive(c *gin.Context) {
	citizenID, err := primitive.ObjectIDFromHex(c.Param("citizenId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid citizen ID"})
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

	var citizen models.Citizen
	if err := citizenCollection.FindOne(ctx, bson.M{"_id": citizenID}).Decode(&citizen); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve profile"})
		}
		return
	}

	citizen.SetArchive(archive)

	update := bson.M{"$set": bson.M{
		"isArchived":  citizen.IsArchived,
		"isActive":    citizen.IsActive,
		"activityLog": citizen.ActivityLog,
		"updatedAt":   citizen.UpdatedAt,
	}}
	if _, err := citizenCollection.UpdateOne(ctx, bson.M{"_id": citizenID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	message := "Archived"
	if !archive {
		message = "Restored"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "citizen": citizen})
}

// DeleteCitizen hard-deletes a citizen profile
func DeleteCitizen(c *gin.Context) {
	citizenID, err := primitive.ObjectIDFromHex(c.Param("citizenId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid citizen ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := citizenCollection.DeleteOne(ctx, bson.M{"_id": citizenID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete profile"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile deleted"})
}
