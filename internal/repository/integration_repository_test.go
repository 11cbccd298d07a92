package repository

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/Freeeeeet/alumni_connect/internal/app"
	"github.com/Freeeeeet/alumni_connect/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// getTestPool подключается к DB_DSN, применяет миграции и очищает таблицы.
// Без DB_DSN тесты пропускаются.
func getTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		t.Skip("DB_DSN is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(pool.Close)

	migrator, err := app.NewMigrator(pool, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Run(ctx))
	require.NoError(t, migrator.Close())

	_, err = pool.Exec(ctx, `
		TRUNCATE mentorship_requests, connections, alumni_profiles, student_profiles, users
		RESTART IDENTITY CASCADE
	`)
	require.NoError(t, err)

	return pool
}

func createTestUser(t *testing.T, users *UserRepository, name string, profile model.Profile) *model.User {
	t.Helper()

	user := &model.User{
		Name:         name,
		Email:        name + "@example.com",
		PhoneNumber:  "+1" + name,
		PasswordHash: "hash",
		IsVerified:   true,
		IsApproved:   true,
		IsActive:     true,
		Profile:      profile,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func strPtr(s string) *string { return &s }

func TestIntegrationConnectionRepository(t *testing.T) {
	pool := getTestPool(t)
	ctx := context.Background()

	users := NewUserRepository(pool)
	repo := NewConnectionRepository(pool)

	a := createTestUser(t, users, "alice", model.StudentProfile{})
	b := createTestUser(t, users, "bob", model.StudentProfile{})

	t.Run("should keep one row per unordered pair under concurrency", func(t *testing.T) {
		const attempts = 10

		var (
			wg         sync.WaitGroup
			mu         sync.Mutex
			created    int
			duplicates int
		)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()

				conn := &model.Connection{RequesterID: a.ID, ReceiverID: b.ID, Status: model.StatusPending}
				if i%2 == 1 {
					conn.RequesterID, conn.ReceiverID = b.ID, a.ID
				}

				err := repo.Create(ctx, conn)

				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					created++
					return
				}
				assert.ErrorIs(t, err, model.ErrDuplicateRelationship)
				duplicates++
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 1, created)
		assert.Equal(t, attempts-1, duplicates)

		var rows int
		require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM connections`).Scan(&rows))
		assert.Equal(t, 1, rows)
	})

	t.Run("should reject a missing user", func(t *testing.T) {
		err := repo.Create(ctx, &model.Connection{RequesterID: a.ID, ReceiverID: 9999, Status: model.StatusPending})
		assert.ErrorIs(t, err, model.ErrNotFoundOrUnauthorized)
	})

	t.Run("should resolve a pending connection exactly once", func(t *testing.T) {
		var id, receiverID int64
		require.NoError(t, pool.QueryRow(ctx, `SELECT id, receiver_id FROM connections`).Scan(&id, &receiverID))

		otherID := a.ID
		if receiverID == a.ID {
			otherID = b.ID
		}

		wrong, err := repo.ResolveIfPending(ctx, id, otherID, model.StatusAccepted)
		require.NoError(t, err)
		assert.Nil(t, wrong)

		first, err := repo.ResolveIfPending(ctx, id, receiverID, model.StatusAccepted)
		require.NoError(t, err)
		require.NotNil(t, first)
		assert.Equal(t, model.StatusAccepted, first.Status)
		assert.NotNil(t, first.UpdatedAt)

		second, err := repo.ResolveIfPending(ctx, id, receiverID, model.StatusRejected)
		require.NoError(t, err)
		assert.Nil(t, second)

		stored, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.StatusAccepted, stored.Status)

		peers, err := repo.ListAccepted(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, peers, 1)
		assert.Equal(t, b.ID, peers[0].ID)
	})
}

func TestIntegrationMentorshipRepository(t *testing.T) {
	pool := getTestPool(t)
	ctx := context.Background()

	users := NewUserRepository(pool)
	repo := NewMentorshipRepository(pool)

	s := createTestUser(t, users, "sam", model.StudentProfile{})
	al := createTestUser(t, users, "alex", model.AlumniProfile{Company: strPtr("Acme"), MentorshipAvailable: true})

	req := &model.MentorshipRequest{
		StudentID: s.ID,
		AlumniID:  al.ID,
		Purpose:   model.PurposeResumeReview,
		Message:   "please review",
		Status:    model.StatusPending,
	}
	require.NoError(t, repo.Create(ctx, req))

	t.Run("should let exactly one concurrent resolve win", func(t *testing.T) {
		results := make(chan *model.MentorshipRequest, 2)

		var wg sync.WaitGroup
		for _, status := range []model.RelationshipStatus{model.StatusAccepted, model.StatusRejected} {
			wg.Add(1)
			go func(status model.RelationshipStatus) {
				defer wg.Done()
				resolved, err := repo.ResolveIfPending(ctx, req.ID, al.ID, status)
				assert.NoError(t, err)
				results <- resolved
			}(status)
		}
		wg.Wait()
		close(results)

		var winners int
		for r := range results {
			if r != nil {
				winners++
			}
		}
		assert.Equal(t, 1, winners)
	})

	t.Run("should ignore a student resolving", func(t *testing.T) {
		resolved, err := repo.ResolveIfPending(ctx, req.ID, s.ID, model.StatusAccepted)
		require.NoError(t, err)
		assert.Nil(t, resolved)
	})

	t.Run("should join the parties into the view", func(t *testing.T) {
		view, err := repo.GetView(ctx, req.ID)
		require.NoError(t, err)
		require.NotNil(t, view)
		assert.Equal(t, "sam", view.StudentName)
		assert.Equal(t, "Acme", *view.AlumniCompany)
	})
}

func TestIntegrationUserRepository(t *testing.T) {
	pool := getTestPool(t)
	ctx := context.Background()

	users := NewUserRepository(pool)
	directory := NewDirectoryRepository(pool)

	al := createTestUser(t, users, "alex", model.AlumniProfile{Company: strPtr("Acme"), MentorshipAvailable: true})
	createTestUser(t, users, "sam", model.StudentProfile{})

	t.Run("should toggle availability atomically", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := users.ToggleMentorshipAvailability(ctx, al.ID)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		stored, err := users.GetByID(ctx, al.ID)
		require.NoError(t, err)
		profile, _ := stored.Alumni()
		assert.True(t, profile.MentorshipAvailable)
	})

	t.Run("should update the profile in one transaction", func(t *testing.T) {
		update := *al
		update.Name = "Alex Smith"
		update.Profile = model.AlumniProfile{Company: strPtr("Globex"), Skills: strPtr("C++ 100%")}

		updated, err := users.UpdateProfile(ctx, &update)
		require.NoError(t, err)
		assert.Equal(t, "Alex Smith", updated.Name)

		profile, ok := updated.Alumni()
		require.True(t, ok)
		assert.Equal(t, "Globex", *profile.Company)
		assert.True(t, profile.MentorshipAvailable)
	})

	t.Run("should match LIKE characters literally", func(t *testing.T) {
		for _, q := range []string{"%", "_", "1_0"} {
			entries, err := directory.SearchAlumni(ctx, model.DirectoryFilter{Query: q, Limit: 20})
			require.NoError(t, err)
			assert.Empty(t, entries, q)
		}

		entries, err := directory.SearchAlumni(ctx, model.DirectoryFilter{Query: "100%", Limit: 20})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, al.ID, entries[0].ID)

		entries, err = directory.SearchAlumni(ctx, model.DirectoryFilter{Company: "G_obex", Limit: 20})
		require.NoError(t, err)
		assert.Empty(t, entries)

		entries, err = directory.SearchAlumni(ctx, model.DirectoryFilter{Company: "glob", Limit: 20})
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("should list every user newest first", func(t *testing.T) {
		all, err := users.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "sam", all[0].Name)
	})
}
