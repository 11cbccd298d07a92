package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/alumni_connect/internal/metrics"
	"github.com/Freeeeeet/alumni_connect/internal/model"
	"go.uber.org/zap"
)

type ConnectionService struct {
	connections ConnectionStore
	approval    *ApprovalService
	logger      *zap.Logger
}

func NewConnectionService(connections ConnectionStore, approval *ApprovalService, logger *zap.Logger) *ConnectionService {
	return &ConnectionService{
		connections: connections,
		approval:    approval,
		logger:      logger,
	}
}

// CreateConnection создаёт pending заявку на связь от requesterID к receiverID
func (s *ConnectionService) CreateConnection(ctx context.Context, requesterID, receiverID int64) (*model.Connection, error) {
	if requesterID == receiverID {
		return nil, rejected(metrics.KindConnection, model.ErrInvalidTarget)
	}

	if _, err := s.approval.Actor(ctx, requesterID); err != nil {
		return nil, rejected(metrics.KindConnection, err)
	}

	if _, err := s.approval.Counterpart(ctx, receiverID); err != nil {
		return nil, rejected(metrics.KindConnection, err)
	}

	conn := &model.Connection{
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      model.StatusPending,
	}

	if err := s.connections.Create(ctx, conn); err != nil {
		if isDomainError(err) {
			return nil, rejected(metrics.KindConnection, err)
		}
		return nil, fmt.Errorf("create connection: %w", err)
	}

	metrics.RelationshipsCreated.WithLabelValues(metrics.KindConnection).Inc()
	s.logger.Info("Connection requested",
		zap.Int64("connection_id", conn.ID),
		zap.Int64("requester_id", requesterID),
		zap.Int64("receiver_id", receiverID),
	)

	return conn, nil
}

// ResolveConnection принимает или отклоняет заявку (только получатель)
func (s *ConnectionService) ResolveConnection(ctx context.Context, connectionID, actorID int64, decision string) (*model.Connection, error) {
	status, err := model.ParseDecision(decision)
	if err != nil {
		return nil, rejected(metrics.KindConnection, err)
	}

	if _, err := s.approval.Actor(ctx, actorID); err != nil {
		return nil, rejected(metrics.KindConnection, err)
	}

	conn, err := s.connections.ResolveIfPending(ctx, connectionID, actorID, status)
	if err != nil {
		return nil, fmt.Errorf("resolve connection: %w", err)
	}

	if conn == nil {
		// Ни одна строка не обновилась: выясняем почему
		existing, err := s.connections.GetByID(ctx, connectionID)
		if err != nil {
			return nil, fmt.Errorf("get connection: %w", err)
		}
		if existing == nil || !CanResolve(existing, actorID) {
			return nil, rejected(metrics.KindConnection, model.ErrNotFoundOrUnauthorized)
		}
		return nil, rejected(metrics.KindConnection, model.ErrAlreadyResolved)
	}

	metrics.RelationshipsResolved.WithLabelValues(metrics.KindConnection, string(status)).Inc()
	s.logger.Info("Connection resolved",
		zap.Int64("connection_id", conn.ID),
		zap.Int64("receiver_id", actorID),
		zap.String("status", string(status)),
	)

	return conn, nil
}

// ListPendingFor входящие заявки, ожидающие решения пользователя
func (s *ConnectionService) ListPendingFor(ctx context.Context, userID int64) ([]*model.PendingConnection, error) {
	if _, err := s.approval.Actor(ctx, userID); err != nil {
		return nil, err
	}

	pending, err := s.connections.ListPendingForReceiver(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending connections: %w", err)
	}

	return pending, nil
}

// ListAccepted принятые связи пользователя в обе стороны
func (s *ConnectionService) ListAccepted(ctx context.Context, userID int64) ([]*model.ConnectedPeer, error) {
	if _, err := s.approval.Actor(ctx, userID); err != nil {
		return nil, err
	}

	peers, err := s.connections.ListAccepted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list accepted connections: %w", err)
	}

	return peers, nil
}

// ============ Вспомогательное ============

var domainErrors = map[error]string{
	model.ErrInvalidTarget:          "invalid_target",
	model.ErrDuplicateRelationship:  "duplicate",
	model.ErrNotFoundOrUnauthorized: "not_found",
	model.ErrAlreadyResolved:        "already_resolved",
	model.ErrAccountInactive:        "inactive",
	model.ErrEmptyMessage:           "empty_message",
	model.ErrInvalidDecision:        "invalid_decision",
	model.ErrInvalidPurpose:         "invalid_purpose",
	model.ErrForbidden:              "forbidden",
	model.ErrMentorUnavailable:      "mentor_unavailable",
	model.ErrUnauthenticated:        "unauthenticated",
}

func isDomainError(err error) bool {
	for domainErr := range domainErrors {
		if errors.Is(err, domainErr) {
			return true
		}
	}
	return false
}

// rejected считает отказ по причине и возвращает ошибку как есть
func rejected(kind string, err error) error {
	reason := "internal"
	for domainErr, label := range domainErrors {
		if errors.Is(err, domainErr) {
			reason = label
			break
		}
	}
	metrics.LedgerRejections.WithLabelValues(kind, reason).Inc()
	return err
}
