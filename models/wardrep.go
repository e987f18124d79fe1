package models

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

var ErrIssueAlreadyVerified = errors.New("issue already verified by this rep")

// WardRep is a ward representative: the actor who verifies or rejects
// reported issues within their ward
type WardRep struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	WardLeaderID        string               `bson:"wardLeaderId" json:"wardLeaderId"`
	Name                string               `bson:"name" json:"name"`
	Email               string               `bson:"email" json:"email"`
	Phone               string               `bson:"phone" json:"phone"`
	Password            string               `bson:"password,omitempty" json:"-"`
	Ward                string               `bson:"ward" json:"ward"`
	Area                string               `bson:"area,omitempty" json:"area,omitempty"`
	Role                string               `bson:"role" json:"role"`
	YearsOfExperience   int                  `bson:"yearsOfExperience" json:"yearsOfExperience"`
	Address             string               `bson:"address,omitempty" json:"address,omitempty"`
	ProfileImage        string               `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	CitizenMeetDays     string               `bson:"citizenMeetDays,omitempty" json:"citizenMeetDays,omitempty"`
	VerifiedIssues      []primitive.ObjectID `bson:"verifiedIssues,omitempty" json:"verifiedIssues,omitempty"`
	TotalResolvedIssues int                  `bson:"totalResolvedIssues" json:"totalResolvedIssues"`
	CreatedAt           time.Time            `bson:"createdAt" json:"createdAt"`
}

func (r *WardRep) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(r.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	r.Password = string(hashed)
	return nil
}

func (r *WardRep) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(r.Password), []byte(candidate))
	return err == nil
}

// AddVerifiedIssue appends an issue to the rep's verified list, rejecting
// duplicates. The counter always equals the list length after this path.
func (r *WardRep) AddVerifiedIssue(issueID primitive.ObjectID) error {
	for _, id := range r.VerifiedIssues {
		if id == issueID {
			return ErrIssueAlreadyVerified
		}
	}
	r.VerifiedIssues = append(r.VerifiedIssues, issueID)
	r.TotalResolvedIssues = len(r.VerifiedIssues)
	return nil
}

// EnsureWardRepIndexes creates the unique indexes on wardLeaderId and email
func EnsureWardRepIndexes(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "wardLeaderId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, models)
	return err
}
