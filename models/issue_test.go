package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestIssue() *Issue {
	return &Issue{
		ID:          primitive.NewObjectID(),
		CitizenID:   primitive.NewObjectID(),
		WardID:      primitive.NewObjectID(),
		Title:       "Pothole",
		Description: "Large pothole on Main St",
		Category:    Roads,
		Priority:    PriorityMedium,
		Status:      IssuePendingVerification,
		Visibility:  VisibilityPublic,
		IsActive:    true,
	}
}

func TestIssueLifecycleScenario(t *testing.T) {
	issue := newTestIssue()
	rep := primitive.NewObjectID()
	officer := primitive.NewObjectID()

	require.NoError(t, issue.ApplyVerification(rep, "", true))
	assert.Equal(t, IssueVerified, issue.Status)
	require.NotNil(t, issue.VerifiedBy)
	assert.Equal(t, rep, *issue.VerifiedBy)
	assert.Equal(t, "Verified", issue.VerificationRemark)
	assert.NotNil(t, issue.VerifiedDate)

	require.NoError(t, issue.Assign(&officer, nil, nil))
	assert.Equal(t, IssueAssigned, issue.Status)
	require.NotNil(t, issue.OfficerID)
	assert.Equal(t, officer, *issue.OfficerID)

	require.NoError(t, issue.ApplyProgress(ProgressUpdate{Status: IssueResolved, Remark: "Filled and paved"}))
	assert.Equal(t, IssueResolved, issue.Status)
	assert.NotNil(t, issue.ResolvedDate)
}

func TestVerificationRejectsAfterAssignment(t *testing.T) {
	issue := newTestIssue()
	rep := primitive.NewObjectID()
	worker := primitive.NewObjectID()

	require.NoError(t, issue.ApplyVerification(rep, "checked on site", true))
	require.NoError(t, issue.Assign(nil, &worker, nil))
	assert.NotNil(t, issue.AssignedAt)

	err := issue.ApplyVerification(rep, "", false)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, IssueAssigned, issue.Status)
}

func TestReVerificationOverwritesVerdict(t *testing.T) {
	issue := newTestIssue()
	rep1 := primitive.NewObjectID()
	rep2 := primitive.NewObjectID()

	require.NoError(t, issue.ApplyVerification(rep1, "", false))
	assert.Equal(t, IssueRejected, issue.Status)
	assert.Equal(t, "Rejected", issue.VerificationRemark)

	require.NoError(t, issue.ApplyVerification(rep2, "valid after recheck", true))
	assert.Equal(t, IssueVerified, issue.Status)
	assert.Equal(t, rep2, *issue.VerifiedBy)
	assert.Equal(t, "valid after recheck", issue.VerificationRemark)
}

func TestClosedIssueNeverRegresses(t *testing.T) {
	issue := newTestIssue()
	issue.Status = IssueClosed

	for _, next := range []IssueStatus{
		IssuePendingVerification, IssueVerified, IssueAssigned,
		IssueInProgress, IssueResolved, IssueClosed,
	} {
		assert.False(t, issue.Status.CanTransitionTo(next), "Closed -> %s must be rejected", next)
	}

	err := issue.ApplyProgress(ProgressUpdate{Status: IssueInProgress})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApplyProgressRejectsUnknownStatus(t *testing.T) {
	issue := newTestIssue()
	issue.Status = IssueAssigned

	err := issue.ApplyProgress(ProgressUpdate{Status: "Teleported"})
	assert.ErrorIs(t, err, ErrUnknownStatus)
	assert.Empty(t, issue.ProgressUpdates)

	// verification verdicts cannot arrive through the progress path either
	err = issue.ApplyProgress(ProgressUpdate{Status: IssueVerified})
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestApplyProgressStampsClosedDate(t *testing.T) {
	issue := newTestIssue()
	issue.Status = IssueInProgress

	require.NoError(t, issue.ApplyProgress(ProgressUpdate{Status: IssueWorkHalted, Remark: "monsoon"}))
	require.NoError(t, issue.ApplyProgress(ProgressUpdate{Status: IssueInProgress}))
	require.NoError(t, issue.ApplyProgress(ProgressUpdate{Status: IssueClosed}))

	assert.Equal(t, IssueClosed, issue.Status)
	assert.NotNil(t, issue.ClosedDate)
	assert.Len(t, issue.ProgressUpdates, 3)
}

func TestAssignRequiresTarget(t *testing.T) {
	issue := newTestIssue()
	issue.Status = IssueVerified

	err := issue.Assign(nil, nil, nil)
	assert.ErrorIs(t, err, ErrNothingToAssign)
}

func TestAssignRecordsSyntheticProgress(t *testing.T) {
	issue := newTestIssue()
	issue.Status = IssueVerified
	officer := primitive.NewObjectID()
	assigner := primitive.NewObjectID()

	require.NoError(t, issue.Assign(&officer, nil, &assigner))
	require.Len(t, issue.ProgressUpdates, 1)
	assert.Equal(t, IssueAssigned, issue.ProgressUpdates[0].Status)
	assert.Equal(t, assigner, *issue.ProgressUpdates[0].UpdatedBy)
}

func TestToggleLikeRoundTrip(t *testing.T) {
	issue := newTestIssue()
	user := primitive.NewObjectID()
	other := primitive.NewObjectID()

	assert.True(t, issue.ToggleLike(user))
	assert.True(t, issue.ToggleLike(other))
	assert.Len(t, issue.Likes, 2)

	assert.False(t, issue.ToggleLike(user))
	assert.Len(t, issue.Likes, 1)
	assert.Equal(t, other, issue.Likes[0].UserID)
}

func TestSetArchiveMirrorsActiveFlag(t *testing.T) {
	issue := newTestIssue()

	issue.SetArchive(true)
	assert.True(t, issue.IsArchived)
	assert.False(t, issue.IsActive)

	issue.SetArchive(false)
	assert.False(t, issue.IsArchived)
	assert.True(t, issue.IsActive)
}

func TestValidCategoryAndPriority(t *testing.T) {
	assert.True(t, ValidCategory("Waste Management"))
	assert.True(t, ValidCategory("Others"))
	assert.False(t, ValidCategory("Potholes"))
	assert.True(t, ValidPriority("High"))
	assert.False(t, ValidPriority("Urgent"))
}
