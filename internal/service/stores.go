package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/alumni_connect/internal/model"
)

// Хранилища, от которых зависят сервисы. Реализации: internal/repository
// (PostgreSQL) и internal/testutil/memstore (тесты).
//
// Методы Get* возвращают nil, nil если запись не найдена.

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	VerifyOTP(ctx context.Context, phone, code string, now time.Time) (*model.User, error)
	SetApproval(ctx context.Context, id int64, approved, active bool) error
	ToggleActive(ctx context.Context, id int64) (bool, error)
	SetMentorshipAvailability(ctx context.Context, alumniID int64, available bool) error
	// ToggleMentorshipAvailability инвертирует флаг атомарно
	ToggleMentorshipAvailability(ctx context.Context, alumniID int64) (bool, error)
	// UpdateProfile сохраняет имя, колледж и поля профиля, но не флаги
	UpdateProfile(ctx context.Context, user *model.User) (*model.User, error)
	ListPendingAlumni(ctx context.Context) ([]*model.User, error)
	ListAll(ctx context.Context) ([]*model.User, error)
}

type ConnectionStore interface {
	// Create возвращает model.ErrDuplicateRelationship, если у пары уже есть запись
	Create(ctx context.Context, conn *model.Connection) error
	GetByID(ctx context.Context, id int64) (*model.Connection, error)
	// ResolveIfPending атомарно обновляет статус; nil означает "ни одна строка не изменилась"
	ResolveIfPending(ctx context.Context, id, receiverID int64, status model.RelationshipStatus) (*model.Connection, error)
	ListPendingForReceiver(ctx context.Context, receiverID int64) ([]*model.PendingConnection, error)
	ListAccepted(ctx context.Context, userID int64) ([]*model.ConnectedPeer, error)
}

type MentorshipStore interface {
	Create(ctx context.Context, req *model.MentorshipRequest) error
	GetByID(ctx context.Context, id int64) (*model.MentorshipRequest, error)
	GetView(ctx context.Context, id int64) (*model.MentorshipView, error)
	ResolveIfPending(ctx context.Context, id, alumniID int64, status model.RelationshipStatus) (*model.MentorshipRequest, error)
	ListByParty(ctx context.Context, userID int64, role model.Role) ([]*model.MentorshipView, error)
	ListPendingForAlumni(ctx context.Context, alumniID int64) ([]*model.MentorshipView, error)
}

type DirectoryStore interface {
	SearchAlumni(ctx context.Context, filter model.DirectoryFilter) ([]*model.AlumniEntry, error)
	Dashboard(ctx context.Context, userID int64) (*model.Dashboard, error)
}
