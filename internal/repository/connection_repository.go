package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/alumni_connect/internal/model"
	"github.com/Freeeeeet/alumni_connect/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConnectionRepository struct {
	*base.Repository
}

func NewConnectionRepository(pool *pgxpool.Pool) *ConnectionRepository {
	return &ConnectionRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт заявку на связь.
// Уникальный индекс по неупорядоченной паре гарантирует одну запись на пару,
// поэтому при конкурентных вызовах успешен ровно один.
func (r *ConnectionRepository) Create(ctx context.Context, conn *model.Connection) error {
	query := `
		INSERT INTO connections (requester_id, receiver_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, conn.RequesterID, conn.ReceiverID, conn.Status).
		Scan(&conn.ID, &conn.CreatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return model.ErrDuplicateRelationship
		}
		if base.IsForeignKeyViolation(err) {
			return model.ErrNotFoundOrUnauthorized
		}
		return fmt.Errorf("create connection: %w", err)
	}

	return nil
}

// GetByID получает связь по ID
func (r *ConnectionRepository) GetByID(ctx context.Context, id int64) (*model.Connection, error) {
	query := `
		SELECT id, requester_id, receiver_id, status, created_at, updated_at
		FROM connections
		WHERE id = $1
	`

	var conn model.Connection
	err := r.QueryRow(ctx, query, id).Scan(
		&conn.ID,
		&conn.RequesterID,
		&conn.ReceiverID,
		&conn.Status,
		&conn.CreatedAt,
		&conn.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get connection: %w", err)
	}

	return &conn, nil
}

// ResolveIfPending меняет статус, только если запись ждёт именно этого получателя.
// Возвращает nil, если ни одна строка не обновилась.
func (r *ConnectionRepository) ResolveIfPending(ctx context.Context, id, receiverID int64, status model.RelationshipStatus) (*model.Connection, error) {
	query := `
		UPDATE connections
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND receiver_id = $3 AND status = $4
		RETURNING id, requester_id, receiver_id, status, created_at, updated_at
	`

	var conn model.Connection
	err := r.QueryRow(ctx, query, status, id, receiverID, model.StatusPending).Scan(
		&conn.ID,
		&conn.RequesterID,
		&conn.ReceiverID,
		&conn.Status,
		&conn.CreatedAt,
		&conn.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve connection: %w", err)
	}

	return &conn, nil
}

// ListPendingForReceiver получает входящие pending заявки
func (r *ConnectionRepository) ListPendingForReceiver(ctx context.Context, receiverID int64) ([]*model.PendingConnection, error) {
	query := `
		SELECT c.id, u.id, u.name, u.email, u.role,
		       COALESCE(sp.department, ap.department), COALESCE(sp.batch, ap.batch), sp.resume_url,
		       c.created_at
		FROM connections c
		JOIN users u ON c.requester_id = u.id
		LEFT JOIN student_profiles sp ON sp.user_id = u.id
		LEFT JOIN alumni_profiles ap ON ap.user_id = u.id
		WHERE c.receiver_id = $1 AND c.status = $2
		ORDER BY c.created_at DESC, c.id DESC
	`

	rows, err := r.Query(ctx, query, receiverID, model.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("get pending connections: %w", err)
	}
	defer rows.Close()

	var pending []*model.PendingConnection
	for rows.Next() {
		var p model.PendingConnection
		err := rows.Scan(
			&p.ConnectionID,
			&p.RequesterID,
			&p.Name,
			&p.Email,
			&p.Role,
			&p.Department,
			&p.Batch,
			&p.ResumeURL,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pending connection: %w", err)
		}
		pending = append(pending, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending connections: %w", err)
	}

	return pending, nil
}

// ListAccepted получает принятые связи пользователя в обе стороны
func (r *ConnectionRepository) ListAccepted(ctx context.Context, userID int64) ([]*model.ConnectedPeer, error) {
	query := `
		SELECT c.id, u.id, u.name, u.role, u.college, u.email, c.status, c.created_at
		FROM connections c
		JOIN users u ON u.id = CASE WHEN c.requester_id = $1 THEN c.receiver_id ELSE c.requester_id END
		WHERE (c.requester_id = $1 OR c.receiver_id = $1) AND c.status = $2
		ORDER BY c.created_at DESC, c.id DESC
	`

	rows, err := r.Query(ctx, query, userID, model.StatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("get accepted connections: %w", err)
	}
	defer rows.Close()

	var peers []*model.ConnectedPeer
	for rows.Next() {
		var p model.ConnectedPeer
		err := rows.Scan(
			&p.ConnectionID,
			&p.ID,
			&p.Name,
			&p.Role,
			&p.College,
			&p.Email,
			&p.Status,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan connected peer: %w", err)
		}
		peers = append(peers, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate connected peers: %w", err)
	}

	return peers, nil
}
