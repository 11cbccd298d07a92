package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/alumni_connect/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovalFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	admin := f.admin(t)
	s := f.student(t, "sam")
	al2 := f.pendingAlumni(t, "al2", "Acme")

	directoryIDs := func(t *testing.T) []int64 {
		entries, err := f.directory.SearchAlumni(ctx, s.ID, model.DirectoryFilter{})
		require.NoError(t, err)
		ids := make([]int64, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
		return ids
	}

	t.Run("should keep unapproved alumni out of the directory", func(t *testing.T) {
		assert.NotContains(t, directoryIDs(t), al2.ID)

		pending, err := f.approval.ListPendingAlumni(ctx, admin.ID)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, al2.ID, pending[0].ID)

		_, err = f.approval.Actor(ctx, al2.ID)
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	var reqID int64

	t.Run("should make approved alumni visible and usable", func(t *testing.T) {
		updated, err := f.approval.UpdateApproval(ctx, admin.ID, al2.ID, ApprovalApproved)
		require.NoError(t, err)
		assert.True(t, updated.IsApproved)
		assert.True(t, updated.IsActive)

		assert.Contains(t, directoryIDs(t), al2.ID)

		req, err := f.mentorships.CreateRequest(ctx, s.ID, al2.ID, "resume_review", "please")
		require.NoError(t, err)
		reqID = req.ID
	})

	t.Run("should be idempotent", func(t *testing.T) {
		_, err := f.approval.UpdateApproval(ctx, admin.ID, al2.ID, ApprovalApproved)
		require.NoError(t, err)
		assert.Contains(t, directoryIDs(t), al2.ID)
	})

	t.Run("should hide and block deactivated alumni", func(t *testing.T) {
		active, err := f.approval.ToggleActive(ctx, admin.ID, al2.ID)
		require.NoError(t, err)
		assert.False(t, active)

		assert.NotContains(t, directoryIDs(t), al2.ID)

		_, err = f.mentorships.ResolveRequest(ctx, reqID, al2.ID, "accepted")
		assert.ErrorIs(t, err, model.ErrAccountInactive)

		stored, err := f.store.Mentorships().GetByID(ctx, reqID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, stored.Status)
	})

	t.Run("should restore access on a second toggle", func(t *testing.T) {
		active, err := f.approval.ToggleActive(ctx, admin.ID, al2.ID)
		require.NoError(t, err)
		assert.True(t, active)

		_, err = f.mentorships.ResolveRequest(ctx, reqID, al2.ID, "accepted")
		require.NoError(t, err)
	})

	t.Run("should deactivate on rejection", func(t *testing.T) {
		updated, err := f.approval.UpdateApproval(ctx, admin.ID, al2.ID, ApprovalRejected)
		require.NoError(t, err)
		assert.False(t, updated.IsApproved)
		assert.False(t, updated.IsActive)

		_, err = f.approval.Actor(ctx, al2.ID)
		assert.ErrorIs(t, err, model.ErrAccountInactive)
		assert.NotContains(t, directoryIDs(t), al2.ID)
	})
}

func TestApprovalGuards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	admin := f.admin(t)
	s := f.student(t, "sam")
	al := f.pendingAlumni(t, "al", "Acme")

	t.Run("should require an admin", func(t *testing.T) {
		_, err := f.approval.UpdateApproval(ctx, s.ID, al.ID, ApprovalApproved)
		assert.ErrorIs(t, err, model.ErrForbidden)

		_, err = f.approval.ToggleActive(ctx, s.ID, al.ID)
		assert.ErrorIs(t, err, model.ErrForbidden)

		_, err = f.approval.ListPendingAlumni(ctx, s.ID)
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("should only approve alumni", func(t *testing.T) {
		_, err := f.approval.UpdateApproval(ctx, admin.ID, s.ID, ApprovalApproved)
		assert.ErrorIs(t, err, model.ErrNotFoundOrUnauthorized)

		_, err = f.approval.UpdateApproval(ctx, admin.ID, 9999, ApprovalApproved)
		assert.ErrorIs(t, err, model.ErrNotFoundOrUnauthorized)
	})

	t.Run("should reject an unknown decision", func(t *testing.T) {
		_, err := f.approval.UpdateApproval(ctx, admin.ID, al.ID, "accepted")
		assert.ErrorIs(t, err, model.ErrInvalidDecision)
	})

	t.Run("should not toggle the admin itself or a missing user", func(t *testing.T) {
		_, err := f.approval.ToggleActive(ctx, admin.ID, admin.ID)
		assert.ErrorIs(t, err, model.ErrInvalidTarget)

		_, err = f.approval.ToggleActive(ctx, admin.ID, 9999)
		assert.ErrorIs(t, err, model.ErrNotFoundOrUnauthorized)
	})

	t.Run("should classify actors", func(t *testing.T) {
		unverified := f.addUser(t, "uma", model.StudentProfile{}, false, false, true)

		_, err := f.approval.Actor(ctx, unverified.ID)
		assert.ErrorIs(t, err, model.ErrForbidden)

		_, err = f.approval.Actor(ctx, 9999)
		assert.ErrorIs(t, err, model.ErrUnauthenticated)

		_, err = f.approval.Counterpart(ctx, unverified.ID)
		assert.ErrorIs(t, err, model.ErrNotFoundOrUnauthorized)

		actor, err := f.approval.Actor(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RoleStudent, actor.Role())
	})
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	admin := f.admin(t)
	s := f.student(t, "sam")
	al := f.pendingAlumni(t, "al", "Acme")
	f.setActive(t, s.ID, false)

	t.Run("should list every account newest first", func(t *testing.T) {
		users, err := f.approval.ListUsers(ctx, admin.ID)
		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Equal(t, []int64{al.ID, s.ID, admin.ID}, []int64{users[0].ID, users[1].ID, users[2].ID})
		assert.False(t, users[1].IsActive)
	})

	t.Run("should refuse non-admins", func(t *testing.T) {
		other := f.student(t, "other")
		_, err := f.approval.ListUsers(ctx, other.ID)
		assert.ErrorIs(t, err, model.ErrForbidden)
	})
}
