package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestCitizen() *Citizen {
	return &Citizen{
		ID:                primitive.NewObjectID(),
		UserID:            primitive.NewObjectID(),
		WardID:            primitive.NewObjectID(),
		Address:           "12 Gandhi Road",
		ProfileVisibility: ProfilePublic,
		IsActive:          true,
	}
}

func TestAddReportedIssueRecomputesTotals(t *testing.T) {
	citizen := newTestCitizen()
	issueID := primitive.NewObjectID()

	require.NoError(t, citizen.AddReportedIssue(ReportedIssue{IssueID: issueID, Title: "Pothole"}))
	assert.Equal(t, 1, citizen.TotalIssuesReported)
	assert.Equal(t, 0, citizen.TotalResolved)
	assert.Equal(t, 1, citizen.TotalPending)
	require.Len(t, citizen.IssuesReported, 1)
	assert.Equal(t, IssuePendingVerification, citizen.IssuesReported[0].Status)
	assert.False(t, citizen.IssuesReported[0].ReportedAt.IsZero())
	require.Len(t, citizen.ActivityLog, 1)
	assert.Equal(t, "Reported Issue", citizen.ActivityLog[0].Action)
}

func TestAddReportedIssueRejectsDuplicate(t *testing.T) {
	citizen := newTestCitizen()
	issueID := primitive.NewObjectID()

	require.NoError(t, citizen.AddReportedIssue(ReportedIssue{IssueID: issueID}))
	err := citizen.AddReportedIssue(ReportedIssue{IssueID: issueID})
	assert.ErrorIs(t, err, ErrDuplicateReportedIssue)
	assert.Equal(t, 1, citizen.TotalIssuesReported)
	assert.Len(t, citizen.ActivityLog, 1)
}

func TestSetReportedIssueStatus(t *testing.T) {
	citizen := newTestCitizen()
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	require.NoError(t, citizen.AddReportedIssue(ReportedIssue{IssueID: first}))
	require.NoError(t, citizen.AddReportedIssue(ReportedIssue{IssueID: second}))

	require.NoError(t, citizen.SetReportedIssueStatus(first, IssueResolved))
	assert.Equal(t, 2, citizen.TotalIssuesReported)
	assert.Equal(t, 1, citizen.TotalResolved)
	assert.Equal(t, 1, citizen.TotalPending)

	require.NoError(t, citizen.SetReportedIssueStatus(second, IssueClosed))
	assert.Equal(t, 2, citizen.TotalResolved)
	assert.Equal(t, 0, citizen.TotalPending)

	err := citizen.SetReportedIssueStatus(primitive.NewObjectID(), IssueResolved)
	assert.ErrorIs(t, err, ErrReportedIssueNotFound)
}

func TestTotalsInvariantHoldsAcrossStates(t *testing.T) {
	citizen := newTestCitizen()
	statuses := []IssueStatus{
		IssuePendingVerification, IssueVerified, IssueAssigned,
		IssueInProgress, IssueResolved, IssueClosed,
	}
	for _, s := range statuses {
		require.NoError(t, citizen.AddReportedIssue(ReportedIssue{IssueID: primitive.NewObjectID(), Status: s}))
	}

	assert.Equal(t, len(statuses), citizen.TotalIssuesReported)
	assert.Equal(t, citizen.TotalIssuesReported, len(citizen.IssuesReported))
	assert.Equal(t, citizen.TotalIssuesReported, citizen.TotalResolved+citizen.TotalPending)
	assert.Equal(t, 2, citizen.TotalResolved)
}

func TestCitizenArchiveLogsActivity(t *testing.T) {
	citizen := newTestCitizen()

	citizen.SetArchive(true)
	assert.True(t, citizen.IsArchived)
	assert.False(t, citizen.IsActive)

	citizen.SetArchive(false)
	assert.False(t, citizen.IsArchived)
	assert.True(t, citizen.IsActive)

	require.Len(t, citizen.ActivityLog, 2)
	assert.Equal(t, "Archived profile", citizen.ActivityLog[0].Action)
	assert.Equal(t, "Restored profile", citizen.ActivityLog[1].Action)
}

func TestWardRepAddVerifiedIssue(t *testing.T) {
	rep := &WardRep{ID: primitive.NewObjectID(), WardLeaderID: "WL-014", Name: "Asha"}
	issueID := primitive.NewObjectID()

	require.NoError(t, rep.AddVerifiedIssue(issueID))
	assert.Equal(t, 1, rep.TotalResolvedIssues)
	assert.Equal(t, len(rep.VerifiedIssues), rep.TotalResolvedIssues)

	err := rep.AddVerifiedIssue(issueID)
	assert.ErrorIs(t, err, ErrIssueAlreadyVerified)
	assert.Equal(t, 1, rep.TotalResolvedIssues)
}
