package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/Freeeeeet/alumni_connect/internal/model"
	"github.com/Freeeeeet/alumni_connect/internal/testutil/memstore"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	store       *memstore.Store
	approval    *ApprovalService
	connections *ConnectionService
	mentorships *MentorshipService
	directory   *DirectoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	logger := zap.NewNop()
	approval := NewApprovalService(store.Users(), logger)

	return &fixture{
		store:       store,
		approval:    approval,
		connections: NewConnectionService(store.Connections(), approval, logger),
		mentorships: NewMentorshipService(store.Mentorships(), store.Users(), approval, logger),
		directory:   NewDirectoryService(store.Directory(), approval),
	}
}

func (f *fixture) addUser(t *testing.T, name string, profile model.Profile, verified, approved, active bool) *model.User {
	t.Helper()

	user := &model.User{
		Name:        name,
		Email:       fmt.Sprintf("%s@example.com", name),
		PhoneNumber: "+1" + name,
		IsVerified:  verified,
		IsApproved:  approved,
		IsActive:    active,
		Profile:     profile,
	}
	require.NoError(t, f.store.Users().Create(context.Background(), user))
	return user
}

func (f *fixture) student(t *testing.T, name string) *model.User {
	return f.addUser(t, name, model.StudentProfile{}, true, false, true)
}

func (f *fixture) alumni(t *testing.T, name string, company string) *model.User {
	return f.addUser(t, name, model.AlumniProfile{Company: &company, MentorshipAvailable: true}, true, true, true)
}

func (f *fixture) pendingAlumni(t *testing.T, name string, company string) *model.User {
	return f.addUser(t, name, model.AlumniProfile{Company: &company, MentorshipAvailable: true}, true, false, true)
}

func (f *fixture) admin(t *testing.T) *model.User {
	return f.addUser(t, "admin", model.AdminProfile{}, true, true, true)
}

func (f *fixture) setActive(t *testing.T, id int64, active bool) {
	t.Helper()

	user, err := f.store.Users().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NoError(t, f.store.Users().SetApproval(context.Background(), id, user.IsApproved, active))
}
