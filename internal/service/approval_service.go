package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/alumni_connect/internal/metrics"
	"github.com/Freeeeeet/alumni_connect/internal/model"
	"go.uber.org/zap"
)

// Решения администратора по выпускнику
const (
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// ApprovalService отвечает за то, может ли пользователь участвовать в связях:
// подтверждение, одобрение выпускников администратором и флаг активности.
type ApprovalService struct {
	users  UserStore
	logger *zap.Logger
}

func NewApprovalService(users UserStore, logger *zap.Logger) *ApprovalService {
	return &ApprovalService{
		users:  users,
		logger: logger,
	}
}

// ============ Проверки сторон ============

// Actor загружает пользователя, выполняющего команду, и проверяет что он может действовать
func (s *ApprovalService) Actor(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get actor: %w", err)
	}

	if user == nil {
		return nil, model.ErrUnauthenticated
	}
	if !user.IsActive {
		return nil, model.ErrAccountInactive
	}
	if !user.IsVerified {
		return nil, model.ErrForbidden
	}

	switch user.Profile.(type) {
	case model.AlumniProfile:
		if !user.IsApproved {
			return nil, model.ErrForbidden
		}
	case model.StudentProfile, model.AdminProfile:
	default:
		return nil, model.ErrForbidden
	}

	return user, nil
}

// Counterpart загружает вторую сторону связи.
// Несуществующий, неподтверждённый и неодобренный пользователь неотличимы друг от друга.
func (s *ApprovalService) Counterpart(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get counterpart: %w", err)
	}

	if user == nil || !user.IsVerified {
		return nil, model.ErrNotFoundOrUnauthorized
	}

	switch user.Profile.(type) {
	case model.AlumniProfile:
		if !user.IsApproved {
			return nil, model.ErrNotFoundOrUnauthorized
		}
	case model.StudentProfile:
	case model.AdminProfile:
		// администраторы не участвуют в связях между участниками
		return nil, model.ErrNotFoundOrUnauthorized
	default:
		return nil, model.ErrNotFoundOrUnauthorized
	}

	if !user.IsActive {
		return nil, model.ErrAccountInactive
	}

	return user, nil
}

// ============ Модерация ============

// UpdateApproval одобряет или отклоняет выпускника.
// Отклонение снимает одобрение и деактивирует аккаунт.
func (s *ApprovalService) UpdateApproval(ctx context.Context, adminID, userID int64, decision string) (*model.User, error) {
	if _, err := s.admin(ctx, adminID); err != nil {
		return nil, err
	}

	var approved, active bool
	switch decision {
	case ApprovalApproved:
		approved, active = true, true
	case ApprovalRejected:
		approved, active = false, false
	default:
		return nil, model.ErrInvalidDecision
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if target == nil {
		return nil, model.ErrNotFoundOrUnauthorized
	}
	if _, ok := target.Alumni(); !ok {
		return nil, model.ErrNotFoundOrUnauthorized
	}

	if err := s.users.SetApproval(ctx, userID, approved, active); err != nil {
		return nil, fmt.Errorf("set approval: %w", err)
	}

	target.IsApproved = approved
	target.IsActive = active

	metrics.ApprovalDecisions.WithLabelValues(decision).Inc()
	s.logger.Info("Alumni approval updated",
		zap.Int64("admin_id", adminID),
		zap.Int64("user_id", userID),
		zap.String("decision", decision),
	)

	return target, nil
}

// ToggleActive переключает флаг активности любого пользователя, кроме самого администратора
func (s *ApprovalService) ToggleActive(ctx context.Context, adminID, userID int64) (bool, error) {
	if _, err := s.admin(ctx, adminID); err != nil {
		return false, err
	}

	if adminID == userID {
		return false, model.ErrInvalidTarget
	}

	active, err := s.users.ToggleActive(ctx, userID)
	if err != nil {
		return false, err
	}

	action := "deactivated"
	if active {
		action = "activated"
	}
	metrics.ApprovalDecisions.WithLabelValues(action).Inc()

	s.logger.Info("User active flag toggled",
		zap.Int64("admin_id", adminID),
		zap.Int64("user_id", userID),
		zap.Bool("is_active", active),
	)

	return active, nil
}

// ListPendingAlumni выпускники, ожидающие решения администратора
func (s *ApprovalService) ListPendingAlumni(ctx context.Context, adminID int64) ([]*model.User, error) {
	if _, err := s.admin(ctx, adminID); err != nil {
		return nil, err
	}

	users, err := s.users.ListPendingAlumni(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending alumni: %w", err)
	}

	return users, nil
}

// ListUsers все пользователи для страницы администрирования
func (s *ApprovalService) ListUsers(ctx context.Context, adminID int64) ([]*model.User, error) {
	if _, err := s.admin(ctx, adminID); err != nil {
		return nil, err
	}

	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

func (s *ApprovalService) admin(ctx context.Context, adminID int64) (*model.User, error) {
	actor, err := s.Actor(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if err := RequireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	return actor, nil
}
