package models

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	Lighting        IssueCategory = "Lighting"
	WasteManagement IssueCategory = "Waste Management"
	Roads           IssueCategory = "Roads"
	WaterSupply     IssueCategory = "Water Supply"
	Drainage        IssueCategory = "Drainage"
	PublicHealth    IssueCategory = "Public Health"
	Others          IssueCategory = "Others"
)

// IssuePriority enum
type IssuePriority string

const (
	PriorityLow    IssuePriority = "Low"
	PriorityMedium IssuePriority = "Medium"
	PriorityHigh   IssuePriority = "High"
)

// IssueStatus enum
type IssueStatus string

const (
	IssuePendingVerification IssueStatus = "Pending Verification"
	IssueVerified            IssueStatus = "Verified"
	IssueRejected            IssueStatus = "Rejected"
	IssueAssigned            IssueStatus = "Assigned"
	IssueInProgress          IssueStatus = "In Progress"
	IssueWorkHalted          IssueStatus = "Work Halted"
	IssueResolved            IssueStatus = "Resolved"
	IssueClosed              IssueStatus = "Closed"
)

// IssueVisibility enum
type IssueVisibility string

const (
	VisibilityPublic   IssueVisibility = "public"
	VisibilityWardOnly IssueVisibility = "ward_only"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownStatus     = errors.New("unknown status")
	ErrNothingToAssign   = errors.New("officerId or workerId is required")
)

// statusTransitions encodes the allowed lifecycle moves. Closed is terminal;
// a verification verdict may be overwritten until the issue is assigned.
var statusTransitions = map[IssueStatus][]IssueStatus{
	IssuePendingVerification: {IssueVerified, IssueRejected},
	IssueVerified:            {IssueVerified, IssueRejected, IssueAssigned},
	IssueRejected:            {IssueVerified, IssueRejected},
	IssueAssigned:            {IssueAssigned, IssueInProgress, IssueWorkHalted, IssueResolved, IssueClosed},
	IssueInProgress:          {IssueInProgress, IssueWorkHalted, IssueResolved, IssueClosed},
	IssueWorkHalted:          {IssueInProgress, IssueWorkHalted, IssueResolved, IssueClosed},
	IssueResolved:            {IssueClosed},
	IssueClosed:              {},
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
func (s IssueStatus) CanTransitionTo(next IssueStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidCategory checks a category string against the closed set
func ValidCategory(c string) bool {
	switch IssueCategory(c) {
	case Lighting, WasteManagement, Roads, WaterSupply, Drainage, PublicHealth, Others:
		return true
	}
	return false
}

// ValidPriority checks a priority string against the closed set
func ValidPriority(p string) bool {
	switch IssuePriority(p) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ValidProgressStatus checks a status value against the set allowed in
// progress updates. Verification verdicts are not settable through progress.
func ValidProgressStatus(s IssueStatus) bool {
	switch s {
	case IssueAssigned, IssueInProgress, IssueWorkHalted, IssueResolved, IssueClosed:
		return true
	}
	return false
}

// Location holds the geographic details of a reported issue
type Location struct {
	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Address   string   `bson:"address,omitempty" json:"address,omitempty"`
	Landmark  string   `bson:"landmark,omitempty" json:"landmark,omitempty"`
}

// ProgressUpdate is one append-only entry in the issue's work history
type ProgressUpdate struct {
	Status    IssueStatus         `bson:"status" json:"status"`
	Remark    string              `bson:"remark,omitempty" json:"remark,omitempty"`
	UpdatedBy *primitive.ObjectID `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	Photo     string              `bson:"photo,omitempty" json:"photo,omitempty"`
	Timestamp time.Time           `bson:"timestamp" json:"timestamp"`
}

// IssueComment is a comment left on an issue by any actor
type IssueComment struct {
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Text      string             `bson:"text" json:"text"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// IssueLike records a single user's like; at most one per user
type IssueLike struct {
	UserID  primitive.ObjectID `bson:"userId" json:"userId"`
	LikedAt time.Time          `bson:"likedAt" json:"likedAt"`
}

// Issue represents a civic problem reported by a citizen and tracked
// through verification, assignment and resolution
type Issue struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CitizenID          primitive.ObjectID  `bson:"citizenId" json:"citizenId"`
	WardID             primitive.ObjectID  `bson:"wardId" json:"wardId"`
	Title              string              `bson:"title" json:"title"`
	Description        string              `bson:"description" json:"description"`
	Category           IssueCategory       `bson:"category" json:"category"`
	Priority           IssuePriority       `bson:"priority" json:"priority"`
	Location           Location            `bson:"location,omitempty" json:"location"`
	Images             []string            `bson:"images,omitempty" json:"images,omitempty"`
	Status             IssueStatus         `bson:"status" json:"status"`
	VerifiedBy         *primitive.ObjectID `bson:"verifiedBy,omitempty" json:"verifiedBy,omitempty"`
	VerificationRemark string              `bson:"verificationRemark,omitempty" json:"verificationRemark,omitempty"`
	VerifiedAt         *time.Time          `bson:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`
	OfficerID          *primitive.ObjectID `bson:"officerId,omitempty" json:"officerId,omitempty"`
	AssignedTo         *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	AssignedAt         *time.Time          `bson:"assignedAt,omitempty" json:"assignedAt,omitempty"`
	ProgressUpdates    []ProgressUpdate    `bson:"progressUpdates,omitempty" json:"progressUpdates,omitempty"`
	EstimatedCost      float64             `bson:"estimatedCost" json:"estimatedCost"`
	BudgetUsed         float64             `bson:"budgetUsed" json:"budgetUsed"`
	BudgetDetails      *primitive.ObjectID `bson:"budgetDetails,omitempty" json:"budgetDetails,omitempty"`
	VerifiedDate       *time.Time          `bson:"verifiedDate,omitempty" json:"verifiedDate,omitempty"`
	ResolvedDate       *time.Time          `bson:"resolvedDate,omitempty" json:"resolvedDate,omitempty"`
	ClosedDate         *time.Time          `bson:"closedDate,omitempty" json:"closedDate,omitempty"`
	Visibility         IssueVisibility     `bson:"visibility" json:"visibility"`
	Comments           []IssueComment      `bson:"comments,omitempty" json:"comments,omitempty"`
	Likes              []IssueLike         `bson:"likes,omitempty" json:"likes,omitempty"`
	Views              int64               `bson:"views" json:"views"`
	PostID             *primitive.ObjectID `bson:"postId,omitempty" json:"postId,omitempty"`
	IsActive           bool                `bson:"isActive" json:"isActive"`
	IsArchived         bool                `bson:"isArchived" json:"isArchived"`
	CreatedAt          time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// ApplyVerification records the ward representative's verdict. Allowed only
// while the issue has not yet been assigned; re-verification overwrites the
// previous verdict.
func (i *Issue) ApplyVerification(repID primitive.ObjectID, remark string, accept bool) error {
	target := IssueVerified
	if !accept {
		target = IssueRejected
	}
	if !i.Status.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	if remark == "" {
		remark = string(target)
	}
	now := time.Now()
	i.VerifiedBy = &repID
	i.VerificationRemark = remark
	i.VerifiedAt = &now
	i.VerifiedDate = &now
	i.Status = target
	i.UpdatedAt = now
	return nil
}

// Assign sets the responsible officer and/or assigned worker and moves the
// issue to Assigned. At least one of the two references must be given.
func (i *Issue) Assign(officerID, workerID, assignedBy *primitive.ObjectID) error {
	if officerID == nil && workerID == nil {
		return ErrNothingToAssign
	}
	if !i.Status.CanTransitionTo(IssueAssigned) {
		return ErrInvalidTransition
	}
	now := time.Now()
	if officerID != nil {
		i.OfficerID = officerID
	}
	if workerID != nil {
		i.AssignedTo = workerID
		i.AssignedAt = &now
	}
	i.Status = IssueAssigned
	if assignedBy != nil {
		i.ProgressUpdates = append(i.ProgressUpdates, ProgressUpdate{
			Status:    IssueAssigned,
			Remark:    fmt.Sprintf("Assigned by %s", assignedBy.Hex()),
			UpdatedBy: assignedBy,
			Timestamp: now,
		})
	}
	i.UpdatedAt = now
	return nil
}

// ApplyProgress appends a progress entry and moves the top-level status.
// Resolved and Closed additionally stamp their dates.
func (i *Issue) ApplyProgress(update ProgressUpdate) error {
	if !ValidProgressStatus(update.Status) {
		return ErrUnknownStatus
	}
	if !i.Status.CanTransitionTo(update.Status) {
		return ErrInvalidTransition
	}
	now := time.Now()
	if update.Timestamp.IsZero() {
		update.Timestamp = now
	}
	i.ProgressUpdates = append(i.ProgressUpdates, update)
	i.Status = update.Status
	switch update.Status {
	case IssueResolved:
		i.ResolvedDate = &now
	case IssueClosed:
		i.ClosedDate = &now
	}
	i.UpdatedAt = now
	return nil
}

// ToggleLike inserts or removes the user's like and returns the resulting
// membership (true = now liked).
func (i *Issue) ToggleLike(userID primitive.ObjectID) bool {
	for idx, l := range i.Likes {
		if l.UserID == userID {
			i.Likes = append(i.Likes[:idx], i.Likes[idx+1:]...)
			return false
		}
	}
	i.Likes = append(i.Likes, IssueLike{UserID: userID, LikedAt: time.Now()})
	return true
}

// SetArchive flips the soft-delete flags; isActive always mirrors !isArchived.
func (i *Issue) SetArchive(archive bool) {
	i.IsArchived = archive
	i.IsActive = !archive
	i.UpdatedAt = time.Now()
}
