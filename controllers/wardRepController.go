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

// RegisterWardRep handles ward representative registration
func RegisterWardRep(c *gin.Context) {
	var input struct {
		WardLeaderID      string `json:"wardLeaderId" binding:"required"`
		Name              string `json:"name" binding:"required,max=50"`
		Email             string `json:"email" binding:"required,email"`
		Phone             string `json:"phone" binding:"required"`
		Password          string `json:"password" binding:"required,min=6"`
		Ward              string `json:"ward" binding:"required"`
		Area              string `json:"area,omitempty"`
		YearsOfExperience int    `json:"yearsOfExperience,omitempty"`
		Address           string `json:"address,omitempty"`
		ProfileImage      string `json:"profileImage,omitempty"`
		CitizenMeetDays   string `json:"citizenMeetDays,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := wardRepCollection.CountDocuments(ctx, bson.M{"$or": []bson.M{
		{"wardLeaderId": input.WardLeaderID},
		{"email": input.Email},
	}})
	if err != nil {
		log.Println("Error checking existing ward rep:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Ward rep with this leader ID or email already exists"})
		return
	}

	rep := models.WardRep{
		ID:                primitive.NewObjectID(),
		WardLeaderID:      input.WardLeaderID,
		Name:              input.Name,
		Email:             input.Email,
		Phone:             input.Phone,
		Password:          input.Password,
		Ward:              input.Ward,
		Area:              input.Area,
		Role:              "wardRep",
		YearsOfExperience: input.YearsOfExperience,
		Address:           input.Address,
		ProfileImage:      input.ProfileImage,
		CitizenMeetDays:   input.CitizenMeetDays,
		CreatedAt:         time.Now(),
	}

	if err := rep.HashPassword(); err != nil {
		log.Println("Error hashing password:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	if _, err := wardRepCollection.InsertOne(ctx, rep); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Ward rep with this leader ID or email already exists"})
			return
		}
		log.Println("Error inserting ward rep:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	token, err := utils.GenerateToken(rep.ID.Hex(), "wardRep")
	if err != nil {
		log.Println("Error generating token:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"wardRep": rep, "token": token})
}

// LoginWardRep handles ward representative login
func LoginWardRep(c *gin.Context) {
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

	var rep models.WardRep
	err := wardRepCollection.FindOne(ctx, bson.M{"email": input.Email}).Decode(&rep)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !rep.ComparePassword(input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(rep.ID.Hex(), "wardRep")
	if err != nil {
		log.Println("Error generating token:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"wardRep": rep, "token": token})
}

// ListWardReps retrieves ward representatives with pagination
func ListWardReps(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pagination := utils.ParsePagination(c.DefaultQuery("page", "1"), c.DefaultQuery("limit", "20"))
	sortSpec := utils.SortSpec(c.Query("sortBy"), c.Query("sortDir"), "createdAt")

	filter := bson.M{}
	if ward := c.Query("ward"); ward != "" {
		filter["ward"] = ward
	}
	if q := c.Query("q"); q != "" {
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": q, "$options": "i"}},
			{"ward": bson.M{"$regex": q, "$options": "i"}},
		}
	}

	total, err := wardRepCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count ward reps"})
		return
	}

	findOptions := options.Find().
		SetSort(sortSpec).
		SetSkip(pagination.Skip()).
		SetLimit(int64(pagination.Limit))

	cursor, err := wardRepCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve ward reps"})
		return
	}
	defer cursor.Close(ctx)

	reps := make([]models.WardRep, 0)
	if err := cursor.All(ctx, &reps); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode ward reps"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": reps,
		"total": total,
		"page":  pagination.Page,
		"limit": pagination.Limit,
	})
}

// GetWardRep retrieves a ward representative by ID
func GetWardRep(c *gin.Context) {
	repID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ward rep ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var rep models.WardRep
	err = wardRepCollection.FindOne(ctx, bson.M{"_id": repID}).Decode(&rep)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ward rep not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve ward rep"})
		}
		return
	}

	c.JSON(http.StatusOK, rep)
}

// UpdateWardRep applies a partial update. The wardLeaderId and email keys
// are immutable; a new password is re-hashed.
func UpdateWardRep(c *gin.Context) {
	repID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ward rep ID"})
		return
	}

	var input struct {
		Name              *string `json:"name,omitempty"`
		Phone             *string `json:"phone,omitempty"`
		Password          *string `json:"password,omitempty"`
		Ward              *string `json:"ward,omitempty"`
		Area              *string `json:"area,omitempty"`
		YearsOfExperience *int    `json:"yearsOfExperience,omitempty"`
		Address           *string `json:"address,omitempty"`
		ProfileImage      *string `json:"profileImage,omitempty"`
		CitizenMeetDays   *string `json:"citizenMeetDays,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := bson.M{}
	if input.Name != nil {
		update["name"] = *input.Name
	}
	if input.Phone != nil {
		update["phone"] = *input.Phone
	}
	if input.Password != nil {
		rep := models.WardRep{Password: *input.Password}
		if err := rep.HashPassword(); err != nil {
			log.Println("Error hashing password:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
		update["password"] = rep.Password
	}
	if input.Ward != nil {
		update["ward"] = *input.Ward
	}
	if input.Area != nil {
		update["area"] = *input.Area
	}
	if input.YearsOfExperience != nil {
		update["yearsOfExperience"] = *input.YearsOfExperience
	}
	if input.Address != nil {
		update["address"] = *input.Address
	}
	if input.ProfileImage != nil {
		update["profileImage"] = *input.ProfileImage
	}
	if input.CitizenMeetDays != nil {
		update["citizenMeetDays"] = *input.CitizenMeetDays
	}

	if len(update) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.WardRep
	err = wardRepCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": repID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ward rep not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ward rep"})
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

// AddWardRepVerifiedIssue records an issue on the rep's verified list
func AddWardRepVerifiedIssue(c *gin.Context) {
	repID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ward rep ID"})
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

	var rep models.WardRep
	if err := wardRepCollection.FindOne(ctx, bson.M{"_id": repID}).Decode(&rep); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ward rep not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve ward rep"})
		}
		return
	}

	if err := rep.AddVerifiedIssue(issueID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Issue already verified by this rep"})
		return
	}

	update := bson.M{"$set": bson.M{
		"verifiedIssues":      rep.VerifiedIssues,
		"totalResolvedIssues": rep.TotalResolvedIssues,
	}}
	if _, err := wardRepCollection.UpdateOne(ctx, bson.M{"_id": repID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ward rep"})
		return
	}

	c.JSON(http.StatusOK, rep)
}

// IncrementWardRepResolved bumps the rep's resolved counter
func IncrementWardRepResolved(c *gin.Context) {
	repID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ward rep ID"})
		return
	}

	var input struct {
		Delta *int `json:"delta,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	delta := 1
	if input.Delta != nil {
		delta = *input.Delta
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.WardRep
	err = wardRepCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": repID},
		bson.M{"$inc": bson.M{"totalResolvedIssues": delta}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ward rep not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ward rep"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"totalResolvedIssues": updated.TotalResolvedIssues})
}

// DeleteWardRep removes a ward representative account
func DeleteWardRep(c *gin.Context) {
	repID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ward rep ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := wardRepCollection.DeleteOne(ctx, bson.M{"_id": repID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete ward rep"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ward rep not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ward rep deleted"})
}
