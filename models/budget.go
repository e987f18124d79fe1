package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BudgetStatus enum
type BudgetStatus string

const (
	BudgetApproved      BudgetStatus = "Approved"
	BudgetPartiallyUsed BudgetStatus = "Partially Used"
	BudgetCompleted     BudgetStatus = "Completed"
	BudgetClosed        BudgetStatus = "Closed"
)

var ErrBudgetClosed = errors.New("budget is closed")

// BudgetDocument is attachment metadata (approvals, invoices, bills)
type BudgetDocument struct {
	FileName   string    `bson:"fileName" json:"fileName"`
	FilePath   string    `bson:"filePath" json:"filePath"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// BudgetHistoryEntry is one append-only audit-trail record; every mutating
// operation on a budget writes exactly one of these
type BudgetHistoryEntry struct {
	Action        string              `bson:"action" json:"action"`
	By            *primitive.ObjectID `bson:"by,omitempty" json:"by,omitempty"`
	AmountChanged *float64            `bson:"amountChanged,omitempty" json:"amountChanged,omitempty"`
	Note          string              `bson:"note,omitempty" json:"note,omitempty"`
	Timestamp     time.Time           `bson:"timestamp" json:"timestamp"`
}

// Budget is the financial ledger tied 1:1 to an issue
type Budget struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	IssueID         primitive.ObjectID   `bson:"issueId" json:"issueId"`
	WardID          primitive.ObjectID   `bson:"wardId" json:"wardId"`
	ApprovedBy      primitive.ObjectID   `bson:"approvedBy" json:"approvedBy"`
	EstimatedCost   float64              `bson:"estimatedCost" json:"estimatedCost"`
	AmountApproved  float64              `bson:"amountApproved" json:"amountApproved"`
	AmountUsed      float64              `bson:"amountUsed" json:"amountUsed"`
	RemainingAmount float64              `bson:"remainingAmount" json:"remainingAmount"`
	Remarks         string               `bson:"remarks,omitempty" json:"remarks,omitempty"`
	ApprovedAt      time.Time            `bson:"approvedAt" json:"approvedAt"`
	UpdatedAt       time.Time            `bson:"updatedAt" json:"updatedAt"`
	ClosedAt        *time.Time           `bson:"closedAt,omitempty" json:"closedAt,omitempty"`
	Status          BudgetStatus         `bson:"status" json:"status"`
	Documents       []BudgetDocument     `bson:"documents,omitempty" json:"documents,omitempty"`
	History         []BudgetHistoryEntry `bson:"history" json:"history"`
}

// NewBudget builds a budget with its initial "Approved" history entry and
// derived fields already computed.
func NewBudget(issueID, wardID, approvedBy primitive.ObjectID, estimatedCost, amountApproved, amountUsed float64, remarks string, documents []BudgetDocument) *Budget {
	now := time.Now()
	approved := amountApproved
	b := &Budget{
		ID:             primitive.NewObjectID(),
		IssueID:        issueID,
		WardID:         wardID,
		ApprovedBy:     approvedBy,
		EstimatedCost:  estimatedCost,
		AmountApproved: amountApproved,
		AmountUsed:     amountUsed,
		Remarks:        remarks,
		ApprovedAt:     now,
		UpdatedAt:      now,
		Documents:      documents,
		History: []BudgetHistoryEntry{{
			Action:        "Approved",
			By:            &approvedBy,
			AmountChanged: &approved,
			Note:          "Initial budget approval",
			Timestamp:     now,
		}},
	}
	b.Recalculate()
	return b
}

// Recalculate derives remainingAmount and status from the amounts. It must
// run before every persisted write; callers never set these fields directly.
// An explicit Closed status is terminal and is not re-derived.
func (b *Budget) Recalculate() {
	b.RemainingAmount = b.AmountApproved - b.AmountUsed
	if b.Status == BudgetClosed {
		return
	}
	switch {
	case b.AmountUsed == 0:
		b.Status = BudgetApproved
	case b.AmountUsed < b.AmountApproved:
		b.Status = BudgetPartiallyUsed
	default:
		b.Status = BudgetCompleted
	}
}

// ApplyUsage records new spending, re-derives status and appends the audit
// entry. Zero is a valid amount.
func (b *Budget) ApplyUsage(amountUsed float64, by primitive.ObjectID, note string) error {
	if b.Status == BudgetClosed {
		return ErrBudgetClosed
	}
	now := time.Now()
	b.AmountUsed = amountUsed
	b.UpdatedAt = now
	if note == "" {
		note = "Updated budget usage"
	}
	changed := amountUsed
	b.History = append(b.History, BudgetHistoryEntry{
		Action:        "Updated",
		By:            &by,
		AmountChanged: &changed,
		Note:          note,
		Timestamp:     now,
	})
	b.Recalculate()
	return nil
}

// AttachDocument appends attachment metadata plus its audit entry.
func (b *Budget) AttachDocument(fileName, filePath string, by primitive.ObjectID, note string) error {
	if b.Status == BudgetClosed {
		return ErrBudgetClosed
	}
	now := time.Now()
	b.Documents = append(b.Documents, BudgetDocument{
		FileName:   fileName,
		FilePath:   filePath,
		UploadedAt: now,
	})
	if note == "" {
		note = "New document uploaded"
	}
	b.History = append(b.History, BudgetHistoryEntry{
		Action:    "Document Added",
		By:        &by,
		Note:      note,
		Timestamp: now,
	})
	b.UpdatedAt = now
	return nil
}

// Close forces the terminal status, stamps closedAt and appends the audit
// entry. A closed budget cannot be closed again.
func (b *Budget) Close(by primitive.ObjectID, note string) error {
	if b.Status == BudgetClosed {
		return ErrBudgetClosed
	}
	now := time.Now()
	b.Status = BudgetClosed
	b.ClosedAt = &now
	if note == "" {
		note = "Budget closed"
	}
	b.History = append(b.History, BudgetHistoryEntry{
		Action:    "Closed",
		By:        &by,
		Note:      note,
		Timestamp: now,
	})
	b.UpdatedAt = now
	return nil
}
