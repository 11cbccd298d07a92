package service

import (
	"context"
	"sync"
	"testing"

	"github.com/Freeeeeet/alumni_connect/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateConnection(t *testing.T) {
	ctx := context.Background()

	t.Run("should create a pending connection", func(t *testing.T) {
		f := newFixture(t)
		a := f.student(t, "alice")
		b := f.alumni(t, "bob", "Acme")

		conn, err := f.connections.CreateConnection(ctx, a.ID, b.ID)
		require.NoError(t, err)
		assert.NotZero(t, conn.ID)
		assert.Equal(t, model.StatusPending, conn.Status)
		assert.Equal(t, a.ID, conn.RequesterID)
		assert.Equal(t, b.ID, conn.ReceiverID)
	})

	t.Run("should reject a second request for the same pair in either direction", func(t *testing.T) {
		f := newFixture(t)
		a := f.student(t, "alice")
		b := f.student(t, "bob")

		_, err := f.connections.CreateConnection(ctx, a.ID, b.ID)
		require.NoError(t, err)

		_, err = f.connections.CreateConnection(ctx, a.ID, b.ID)
		assert.ErrorIs(t, err, model.ErrDuplicateRelationship)

		_, err = f.connections.CreateConnection(ctx, b.ID, a.ID)
		assert.ErrorIs(t, err, model.ErrDuplicateRelationship)
	})

	t.Run("should keep a rejected pair blocked", func(t *testing.T) {
		f := newFixture(t)
		a := f.student(t, "alice")
		b := f.student(t, "bob")

		conn, err := f.connections.CreateConnection(ctx, a.ID, b.ID)
		require.NoError(t, err)
		_, err = f.connections.ResolveConnection(ctx, conn.ID, b.ID, "rejected")
		require.NoError(t, err)

		_, err = f.connections.CreateConnection(ctx, b.ID, a.ID)
		assert.ErrorIs(t, err, model.ErrDuplicateRelationship)
	})

	t.Run("should reject a self connection", func(t *testing.T) {
		f := newFixture(t)
		a := f.student(t, "alice")

		_, err := f.connections.CreateConnection(ctx, a.ID, a.ID)
		assert.ErrorIs(t, err, model.ErrInvalidTarget)
	})

	t.Run("should hide missing and unapproved counterparts", func(t *testing.T) {
		f := newFixture(t)
		a := f.student(t, "alice")
		pending := f.pendingAlumni(t, "carol", "Initech")
		admin := f.admin(t)

		for _, target := range []int64{9999, pending.ID, admin.ID} {
			_, err := f.connections.CreateConnection(ctx, a.ID, target)
			assert.ErrorIs(t, err, model.ErrNotFoundOrUnauthorized)
		}
	})

	t.Run("should refuse inactive parties", func(t *testing.T) {
		f := newFixture(t)
		a := f.student(t, "alice")
		b := f.student(t, "bob")

		f.setActive(t, b.ID, false)
		_, err := f.connections.CreateConnection(ctx, a.ID, b.ID)
		assert.ErrorIs(t, err, model.ErrAccountInactive)

		_, err = f.connections.CreateConnection(ctx, b.ID, a.ID)
		assert.ErrorIs(t, err, model.ErrAccountInactive)
	})

	t.Run("should allow exactly one of many concurrent requests for a pair", func(t *testing.T) {
		f := newFixture(t)
		a := f.student(t, "alice")
		b := f.student(t, "bob")

		const workers = 16
		var (
			wg         sync.WaitGroup
			mu         sync.Mutex
			successes  int
			duplicates int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				from, to := a.ID, b.ID
				if i%2 == 1 {
					from, to = to, from
				}
				_, err := f.connections.CreateConnection(ctx, from, to)

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case assert.ErrorIs(t, err, model.ErrDuplicateRelationship):
					duplicates++
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 1, successes)
		assert.Equal(t, workers-1, duplicates)
	})
}

func TestResolveConnection(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fixture, *model.User, *model.User, *model.Connection) {
		f := newFixture(t)
		a := f.student(t, "alice")
		b := f.student(t, "bob")
		conn, err := f.connections.CreateConnection(ctx, a.ID, b.ID)
		require.NoError(t, err)
		return f, a, b, conn
	}

	t.Run("should let the receiver accept", func(t *testing.T) {
		f, _, b, conn := setup(t)

		resolved, err := f.connections.ResolveConnection(ctx, conn.ID, b.ID, "accepted")
		require.NoError(t, err)
		assert.Equal(t, model.StatusAccepted, resolved.Status)
		assert.NotNil(t, resolved.UpdatedAt)
	})

	t.Run("should report anyone but the receiver as not found", func(t *testing.T) {
		f, a, _, conn := setup(t)
		outsider := f.student(t, "eve")

		for _, actor := range []int64{a.ID, outsider.ID} {
			_, err := f.connections.ResolveConnection(ctx, conn.ID, actor, "accepted")
			assert.ErrorIs(t, err, model.ErrNotFoundOrUnauthorized)
		}

		_, err := f.connections.ResolveConnection(ctx, 9999, outsider.ID, "accepted")
		assert.ErrorIs(t, err, model.ErrNotFoundOrUnauthorized)
	})

	t.Run("should refuse a second decision and keep the first", func(t *testing.T) {
		for _, second := range []string{"accepted", "rejected"} {
			f, a, b, conn := setup(t)

			_, err := f.connections.ResolveConnection(ctx, conn.ID, b.ID, "accepted")
			require.NoError(t, err)

			_, err = f.connections.ResolveConnection(ctx, conn.ID, b.ID, second)
			assert.ErrorIs(t, err, model.ErrAlreadyResolved)

			stored, err := f.store.Connections().GetByID(ctx, conn.ID)
			require.NoError(t, err)
			assert.Equal(t, model.StatusAccepted, stored.Status)

			peers, err := f.connections.ListAccepted(ctx, a.ID)
			require.NoError(t, err)
			require.Len(t, peers, 1)
			assert.Equal(t, b.ID, peers[0].ID)
		}
	})

	t.Run("should reject an unknown decision", func(t *testing.T) {
		f, _, b, conn := setup(t)

		for _, decision := range []string{"", "pending", "ACCEPTED", "maybe"} {
			_, err := f.connections.ResolveConnection(ctx, conn.ID, b.ID, decision)
			assert.ErrorIs(t, err, model.ErrInvalidDecision)
		}
	})

	t.Run("should refuse an inactive receiver", func(t *testing.T) {
		f, _, b, conn := setup(t)
		f.setActive(t, b.ID, false)

		_, err := f.connections.ResolveConnection(ctx, conn.ID, b.ID, "accepted")
		assert.ErrorIs(t, err, model.ErrAccountInactive)
	})

	t.Run("should let exactly one concurrent decision win", func(t *testing.T) {
		f, _, b, conn := setup(t)

		const workers = 8
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				decision := "accepted"
				if i%2 == 1 {
					decision = "rejected"
				}
				_, err := f.connections.ResolveConnection(ctx, conn.ID, b.ID, decision)
				if err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
					return
				}
				assert.ErrorIs(t, err, model.ErrAlreadyResolved)
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 1, wins)
	})
}

func TestConnectionListings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a := f.student(t, "alice")
	b := f.student(t, "bob")
	c := f.alumni(t, "carol", "Acme")

	ab, err := f.connections.CreateConnection(ctx, a.ID, b.ID)
	require.NoError(t, err)
	cb, err := f.connections.CreateConnection(ctx, c.ID, b.ID)
	require.NoError(t, err)

	t.Run("should list pending requests for the receiver, newest first", func(t *testing.T) {
		pending, err := f.connections.ListPendingFor(ctx, b.ID)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, cb.ID, pending[0].ConnectionID)
		assert.Equal(t, model.RoleAlumni, pending[0].Role)
		assert.Equal(t, ab.ID, pending[1].ConnectionID)
		assert.Equal(t, "alice", pending[1].Name)

		none, err := f.connections.ListPendingFor(ctx, a.ID)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("should list accepted connections for both sides", func(t *testing.T) {
		_, err := f.connections.ResolveConnection(ctx, ab.ID, b.ID, "accepted")
		require.NoError(t, err)

		forA, err := f.connections.ListAccepted(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, forA, 1)
		assert.Equal(t, b.ID, forA[0].ID)

		forB, err := f.connections.ListAccepted(ctx, b.ID)
		require.NoError(t, err)
		require.Len(t, forB, 1)
		assert.Equal(t, a.ID, forB[0].ID)

		forC, err := f.connections.ListAccepted(ctx, c.ID)
		require.NoError(t, err)
		assert.Empty(t, forC)
	})
}
