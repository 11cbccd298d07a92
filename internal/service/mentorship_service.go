package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/alumni_connect/internal/metrics"
	"github.com/Freeeeeet/alumni_connect/internal/model"
	"go.uber.org/zap"
)

type MentorshipService struct {
	requests MentorshipStore
	users    UserStore
	approval *ApprovalService
	logger   *zap.Logger
}

func NewMentorshipService(requests MentorshipStore, users UserStore, approval *ApprovalService, logger *zap.Logger) *MentorshipService {
	return &MentorshipService{
		requests: requests,
		users:    users,
		approval: approval,
		logger:   logger,
	}
}

// ============ Заявки ============

// CreateRequest создаёт заявку студента к выпускнику.
// Повторные pending заявки к тому же выпускнику разрешены.
func (s *MentorshipService) CreateRequest(ctx context.Context, studentID, alumniID int64, purpose, message string) (*model.MentorshipRequest, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, rejected(metrics.KindMentorship, model.ErrEmptyMessage)
	}

	p, err := model.ParsePurpose(purpose)
	if err != nil {
		return nil, rejected(metrics.KindMentorship, err)
	}

	if studentID == alumniID {
		return nil, rejected(metrics.KindMentorship, model.ErrInvalidTarget)
	}

	student, err := s.approval.Actor(ctx, studentID)
	if err != nil {
		return nil, rejected(metrics.KindMentorship, err)
	}
	if err := RequireRole(student, model.RoleStudent); err != nil {
		return nil, rejected(metrics.KindMentorship, err)
	}

	alumni, err := s.approval.Counterpart(ctx, alumniID)
	if err != nil {
		return nil, rejected(metrics.KindMentorship, err)
	}

	profile, ok := alumni.Alumni()
	if !ok {
		return nil, rejected(metrics.KindMentorship, model.ErrNotFoundOrUnauthorized)
	}
	if !profile.MentorshipAvailable {
		return nil, rejected(metrics.KindMentorship, model.ErrMentorUnavailable)
	}

	req := &model.MentorshipRequest{
		StudentID: studentID,
		AlumniID:  alumniID,
		Purpose:   p,
		Message:   message,
		Status:    model.StatusPending,
	}

	if err := s.requests.Create(ctx, req); err != nil {
		if isDomainError(err) {
			return nil, rejected(metrics.KindMentorship, err)
		}
		return nil, fmt.Errorf("create mentorship request: %w", err)
	}

	metrics.RelationshipsCreated.WithLabelValues(metrics.KindMentorship).Inc()
	s.logger.Info("Mentorship request created",
		zap.Int64("request_id", req.ID),
		zap.Int64("student_id", studentID),
		zap.Int64("alumni_id", alumniID),
		zap.String("purpose", string(p)),
	)

	return req, nil
}

// ResolveRequest принимает или отклоняет заявку (только адресат-выпускник)
func (s *MentorshipService) ResolveRequest(ctx context.Context, requestID, alumniID int64, decision string) (*model.MentorshipRequest, error) {
	status, err := model.ParseDecision(decision)
	if err != nil {
		return nil, rejected(metrics.KindMentorship, err)
	}

	actor, err := s.approval.Actor(ctx, alumniID)
	if err != nil {
		return nil, rejected(metrics.KindMentorship, err)
	}
	if err := RequireRole(actor, model.RoleAlumni); err != nil {
		return nil, rejected(metrics.KindMentorship, err)
	}

	req, err := s.requests.ResolveIfPending(ctx, requestID, alumniID, status)
	if err != nil {
		return nil, fmt.Errorf("resolve mentorship request: %w", err)
	}

	if req == nil {
		existing, err := s.requests.GetByID(ctx, requestID)
		if err != nil {
			return nil, fmt.Errorf("get mentorship request: %w", err)
		}
		if existing == nil || !CanResolve(existing, alumniID) {
			return nil, rejected(metrics.KindMentorship, model.ErrNotFoundOrUnauthorized)
		}
		return nil, rejected(metrics.KindMentorship, model.ErrAlreadyResolved)
	}

	metrics.RelationshipsResolved.WithLabelValues(metrics.KindMentorship, string(status)).Inc()
	s.logger.Info("Mentorship request resolved",
		zap.Int64("request_id", req.ID),
		zap.Int64("alumni_id", alumniID),
		zap.String("status", string(status)),
	)

	return req, nil
}

// ============ Чтение ============

// GetDetail заявка видна только её студенту и выпускнику
func (s *MentorshipService) GetDetail(ctx context.Context, requestID, actorID int64) (*model.MentorshipView, error) {
	if _, err := s.approval.Actor(ctx, actorID); err != nil {
		return nil, err
	}

	view, err := s.requests.GetView(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get mentorship request: %w", err)
	}

	if view == nil || !model.HasParty(&view.MentorshipRequest, actorID) {
		return nil, model.ErrNotFoundOrUnauthorized
	}

	return view, nil
}

// Audit просмотр любой заявки администратором
func (s *MentorshipService) Audit(ctx context.Context, requestID, adminID int64) (*model.MentorshipView, error) {
	actor, err := s.approval.Actor(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if err := RequireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}

	view, err := s.requests.GetView(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get mentorship request: %w", err)
	}

	if view == nil || !CanView(&view.MentorshipRequest, actor) {
		return nil, model.ErrNotFoundOrUnauthorized
	}

	return view, nil
}

// History все заявки пользователя, новые первыми
func (s *MentorshipService) History(ctx context.Context, userID int64) ([]*model.MentorshipView, error) {
	actor, err := s.approval.Actor(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.requests.ListByParty(ctx, userID, actor.Role())
	if err != nil {
		return nil, fmt.Errorf("get mentorship history: %w", err)
	}

	return history, nil
}

// ListIncoming pending заявки, адресованные выпускнику
func (s *MentorshipService) ListIncoming(ctx context.Context, alumniID int64) ([]*model.MentorshipView, error) {
	actor, err := s.approval.Actor(ctx, alumniID)
	if err != nil {
		return nil, err
	}
	if err := RequireRole(actor, model.RoleAlumni); err != nil {
		return nil, err
	}

	requests, err := s.requests.ListPendingForAlumni(ctx, alumniID)
	if err != nil {
		return nil, fmt.Errorf("get incoming requests: %w", err)
	}

	return requests, nil
}

// ============ Доступность выпускника ============

// SetAvailability включает или выключает приём новых заявок
func (s *MentorshipService) SetAvailability(ctx context.Context, alumniID int64, available bool) error {
	actor, err := s.approval.Actor(ctx, alumniID)
	if err != nil {
		return err
	}
	if err := RequireRole(actor, model.RoleAlumni); err != nil {
		return err
	}

	if err := s.users.SetMentorshipAvailability(ctx, alumniID, available); err != nil {
		return fmt.Errorf("set mentorship availability: %w", err)
	}

	s.logger.Info("Mentorship availability changed",
		zap.Int64("alumni_id", alumniID),
		zap.Bool("available", available),
	)

	return nil
}

// ToggleAvailability инвертирует флаг одним обновлением и возвращает новое значение
func (s *MentorshipService) ToggleAvailability(ctx context.Context, alumniID int64) (bool, error) {
	actor, err := s.approval.Actor(ctx, alumniID)
	if err != nil {
		return false, err
	}
	if err := RequireRole(actor, model.RoleAlumni); err != nil {
		return false, err
	}

	available, err := s.users.ToggleMentorshipAvailability(ctx, alumniID)
	if err != nil {
		return false, fmt.Errorf("toggle mentorship availability: %w", err)
	}

	s.logger.Info("Mentorship availability changed",
		zap.Int64("alumni_id", alumniID),
		zap.Bool("available", available),
	)

	return available, nil
}
