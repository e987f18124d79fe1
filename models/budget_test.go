package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBudgetScenario(t *testing.T) {
	officer := primitive.NewObjectID()
	budget := NewBudget(primitive.NewObjectID(), primitive.NewObjectID(), officer, 1000, 800, 0, "", nil)

	assert.Equal(t, BudgetApproved, budget.Status)
	assert.Equal(t, float64(800), budget.RemainingAmount)
	require.Len(t, budget.History, 1)
	assert.Equal(t, "Approved", budget.History[0].Action)
	require.NotNil(t, budget.History[0].AmountChanged)
	assert.Equal(t, float64(800), *budget.History[0].AmountChanged)

	require.NoError(t, budget.ApplyUsage(800, officer, ""))
	assert.Equal(t, BudgetCompleted, budget.Status)
	assert.Equal(t, float64(0), budget.RemainingAmount)
	assert.Len(t, budget.History, 2)

	require.NoError(t, budget.Close(officer, ""))
	assert.Equal(t, BudgetClosed, budget.Status)
	assert.NotNil(t, budget.ClosedAt)
	assert.Len(t, budget.History, 3)
}

func TestBudgetStatusDerivation(t *testing.T) {
	officer := primitive.NewObjectID()
	budget := NewBudget(primitive.NewObjectID(), primitive.NewObjectID(), officer, 5000, 4000, 0, "road repair", nil)

	require.NoError(t, budget.ApplyUsage(1500, officer, "first contractor invoice"))
	assert.Equal(t, BudgetPartiallyUsed, budget.Status)
	assert.Equal(t, float64(2500), budget.RemainingAmount)

	// zero is a valid value and rolls the status back to Approved
	require.NoError(t, budget.ApplyUsage(0, officer, "invoice reversed"))
	assert.Equal(t, BudgetApproved, budget.Status)
	assert.Equal(t, float64(4000), budget.RemainingAmount)

	// overspend still derives Completed
	require.NoError(t, budget.ApplyUsage(4200, officer, ""))
	assert.Equal(t, BudgetCompleted, budget.Status)
	assert.Equal(t, float64(-200), budget.RemainingAmount)
	assert.Len(t, budget.History, 4)
}

func TestClosedBudgetIsTerminal(t *testing.T) {
	officer := primitive.NewObjectID()
	budget := NewBudget(primitive.NewObjectID(), primitive.NewObjectID(), officer, 1000, 1000, 0, "", nil)
	require.NoError(t, budget.Close(officer, "work abandoned"))

	assert.ErrorIs(t, budget.ApplyUsage(500, officer, ""), ErrBudgetClosed)
	assert.ErrorIs(t, budget.AttachDocument("bill.pdf", "/files/bill.pdf", officer, ""), ErrBudgetClosed)
	assert.ErrorIs(t, budget.Close(officer, ""), ErrBudgetClosed)

	// a recalculation after closing must not resurrect a derived status
	budget.Recalculate()
	assert.Equal(t, BudgetClosed, budget.Status)
	assert.Len(t, budget.History, 2)
}

func TestAttachDocumentAppendsHistory(t *testing.T) {
	officer := primitive.NewObjectID()
	budget := NewBudget(primitive.NewObjectID(), primitive.NewObjectID(), officer, 1000, 900, 0, "", nil)

	require.NoError(t, budget.AttachDocument("approval.pdf", "/uploads/approval.pdf", officer, ""))
	require.Len(t, budget.Documents, 1)
	assert.Equal(t, "approval.pdf", budget.Documents[0].FileName)
	assert.False(t, budget.Documents[0].UploadedAt.IsZero())

	require.Len(t, budget.History, 2)
	assert.Equal(t, "Document Added", budget.History[1].Action)
	assert.Nil(t, budget.History[1].AmountChanged)
}

func TestRemainingAmountAlwaysConsistent(t *testing.T) {
	officer := primitive.NewObjectID()
	budget := NewBudget(primitive.NewObjectID(), primitive.NewObjectID(), officer, 100, 75, 0, "", nil)

	for _, used := range []float64{0, 10, 74.5, 75, 80} {
		require.NoError(t, budget.ApplyUsage(used, officer, ""))
		assert.Equal(t, budget.AmountApproved-budget.AmountUsed, budget.RemainingAmount)
	}
}
