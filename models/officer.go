package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Officer manages issue assignment and budget approval for one or more wards
type Officer struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name           string               `bson:"name" json:"name"`
	Email          string               `bson:"email" json:"email"`
	Password       string               `bson:"password,omitempty" json:"-"`
	WardsManaged   []primitive.ObjectID `bson:"wardsManaged,omitempty" json:"wardsManaged,omitempty"`
	AssignedIssues []primitive.ObjectID `bson:"assignedIssues,omitempty" json:"assignedIssues,omitempty"`
	BudgetApproved float64              `bson:"budgetApproved" json:"budgetApproved"`
	ResolvedCount  int                  `bson:"resolvedCount" json:"resolvedCount"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (o *Officer) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(o.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	o.Password = string(hashed)
	return nil
}

func (o *Officer) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(o.Password), []byte(candidate))
	return err == nil
}
