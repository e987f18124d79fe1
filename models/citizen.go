package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProfileVisibility enum
type ProfileVisibility string

const (
	ProfilePublic  ProfileVisibility = "public"
	ProfilePrivate ProfileVisibility = "private"
)

var (
	ErrDuplicateReportedIssue = errors.New("issue already recorded for this citizen")
	ErrReportedIssueNotFound  = errors.New("reported issue not found for this citizen")
)

// ReportedIssue is a denormalized quick-reference snapshot of an issue the
// citizen reported
type ReportedIssue struct {
	IssueID    primitive.ObjectID `bson:"issueId" json:"issueId"`
	Title      string             `bson:"title,omitempty" json:"title,omitempty"`
	Status     IssueStatus        `bson:"status" json:"status"`
	ReportedAt time.Time          `bson:"reportedAt" json:"reportedAt"`
}

// CitizenComment is an issue-scoped comment reference kept on the profile
type CitizenComment struct {
	IssueID     *primitive.ObjectID `bson:"issueId,omitempty" json:"issueId,omitempty"`
	CommentText string              `bson:"commentText" json:"commentText"`
	CommentedAt time.Time           `bson:"commentedAt" json:"commentedAt"`
}

// Activity is one append-only entry in the citizen's activity log
type Activity struct {
	Action    string              `bson:"action" json:"action"`
	IssueID   *primitive.ObjectID `bson:"issueId,omitempty" json:"issueId,omitempty"`
	Timestamp time.Time           `bson:"timestamp" json:"timestamp"`
}

// GeoLocation is the citizen's home coordinates
type GeoLocation struct {
	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
}

// Citizen represents a citizen's reporting profile, linked 1:1 to a user
// account. The three totals are always derived from issuesReported.
type Citizen struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID              primitive.ObjectID `bson:"userId" json:"userId"`
	WardID              primitive.ObjectID `bson:"wardId" json:"wardId"`
	Address             string             `bson:"address" json:"address"`
	Pincode             string             `bson:"pincode,omitempty" json:"pincode,omitempty"`
	GeoLocation         GeoLocation        `bson:"geoLocation,omitempty" json:"geoLocation"`
	AlternatePhone      string             `bson:"alternatePhone,omitempty" json:"alternatePhone,omitempty"`
	IssuesReported      []ReportedIssue    `bson:"issuesReported,omitempty" json:"issuesReported,omitempty"`
	Comments            []CitizenComment   `bson:"comments,omitempty" json:"comments,omitempty"`
	ActivityLog         []Activity         `bson:"activityLog,omitempty" json:"activityLog,omitempty"`
	TotalIssuesReported int                `bson:"totalIssuesReported" json:"totalIssuesReported"`
	TotalResolved       int                `bson:"totalResolved" json:"totalResolved"`
	TotalPending        int                `bson:"totalPending" json:"totalPending"`
	ProfileVisibility   ProfileVisibility  `bson:"profileVisibility" json:"profileVisibility"`
	IsVerifiedCitizen   bool               `bson:"isVerifiedCitizen" json:"isVerifiedCitizen"`
	IsArchived          bool               `bson:"isArchived" json:"isArchived"`
	IsActive            bool               `bson:"isActive" json:"isActive"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RecalcTotals recomputes the derived counters from issuesReported. It runs
// before every persisted save so the counters can never drift; a Resolved or
// Closed snapshot counts as resolved, everything else as pending.
func (c *Citizen) RecalcTotals() {
	c.TotalIssuesReported = len(c.IssuesReported)
	resolved := 0
	for _, r := range c.IssuesReported {
		if r.Status == IssueResolved || r.Status == IssueClosed {
			resolved++
		}
	}
	c.TotalResolved = resolved
	c.TotalPending = c.TotalIssuesReported - resolved
}

// LogActivity appends one entry to the activity log
func (c *Citizen) LogActivity(action string, issueID *primitive.ObjectID) {
	c.ActivityLog = append(c.ActivityLog, Activity{
		Action:    action,
		IssueID:   issueID,
		Timestamp: time.Now(),
	})
}

// AddReportedIssue appends a snapshot entry, rejecting duplicates, then
// recomputes the totals and logs the activity.
func (c *Citizen) AddReportedIssue(entry ReportedIssue) error {
	for _, r := range c.IssuesReported {
		if r.IssueID == entry.IssueID {
			return ErrDuplicateReportedIssue
		}
	}
	if entry.Status == "" {
		entry.Status = IssuePendingVerification
	}
	if entry.ReportedAt.IsZero() {
		entry.ReportedAt = time.Now()
	}
	c.IssuesReported = append(c.IssuesReported, entry)
	c.RecalcTotals()
	issueID := entry.IssueID
	c.LogActivity("Reported Issue", &issueID)
	c.UpdatedAt = time.Now()
	return nil
}

// SetReportedIssueStatus mutates the snapshot entry's status, recomputes the
// totals and logs the change.
func (c *Citizen) SetReportedIssueStatus(issueID primitive.ObjectID, status IssueStatus) error {
	for idx := range c.IssuesReported {
		if c.IssuesReported[idx].IssueID == issueID {
			c.IssuesReported[idx].Status = status
			c.RecalcTotals()
			c.LogActivity(fmt.Sprintf("Issue status updated to %s", status), &issueID)
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrReportedIssueNotFound
}

// SetArchive flips the soft-delete flags with a log entry
func (c *Citizen) SetArchive(archive bool) {
	c.IsArchived = archive
	c.IsActive = !archive
	action := "Archived profile"
	if !archive {
		action = "Restored profile"
	}
	c.LogActivity(action, nil)
	c.UpdatedAt = time.Now()
}

// EnsureCitizenIndex creates the unique index enforcing one profile per user
func EnsureCitizenIndex(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	return err
}
