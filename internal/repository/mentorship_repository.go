package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/alumni_connect/internal/model"
	"github.com/Freeeeeet/alumni_connect/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectMentorshipView = `
	SELECT m.id, m.student_id, m.alumni_id, m.purpose, m.message, m.status, m.created_at, m.updated_at,
	       s.name, s.email, a.name, ap.company, ap.job_role
	FROM mentorship_requests m
	JOIN users s ON s.id = m.student_id
	JOIN users a ON a.id = m.alumni_id
	LEFT JOIN alumni_profiles ap ON ap.user_id = m.alumni_id
`

type MentorshipRepository struct {
	*base.Repository
}

func NewMentorshipRepository(pool *pgxpool.Pool) *MentorshipRepository {
	return &MentorshipRepository{Repository: base.NewRepository(pool)}
}

func scanMentorshipView(row pgx.Row) (*model.MentorshipView, error) {
	var v model.MentorshipView
	err := row.Scan(
		&v.ID,
		&v.StudentID,
		&v.AlumniID,
		&v.Purpose,
		&v.Message,
		&v.Status,
		&v.CreatedAt,
		&v.UpdatedAt,
		&v.StudentName,
		&v.StudentEmail,
		&v.AlumniName,
		&v.AlumniCompany,
		&v.AlumniJobRole,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *MentorshipRepository) listViews(ctx context.Context, query string, args ...any) ([]*model.MentorshipView, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get mentorship requests: %w", err)
	}
	defer rows.Close()

	var views []*model.MentorshipView
	for rows.Next() {
		v, err := scanMentorshipView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mentorship request: %w", err)
		}
		views = append(views, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mentorship requests: %w", err)
	}

	return views, nil
}

// Create создаёт заявку на менторство
func (r *MentorshipRepository) Create(ctx context.Context, req *model.MentorshipRequest) error {
	query := `
		INSERT INTO mentorship_requests (student_id, alumni_id, purpose, message, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		req.StudentID,
		req.AlumniID,
		req.Purpose,
		req.Message,
		req.Status,
	).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		if base.IsForeignKeyViolation(err) {
			return model.ErrNotFoundOrUnauthorized
		}
		return fmt.Errorf("create mentorship request: %w", err)
	}

	return nil
}

// GetByID получает заявку по ID
func (r *MentorshipRepository) GetByID(ctx context.Context, id int64) (*model.MentorshipRequest, error) {
	query := `
		SELECT id, student_id, alumni_id, purpose, message, status, created_at, updated_at
		FROM mentorship_requests
		WHERE id = $1
	`

	var req model.MentorshipRequest
	err := r.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.StudentID,
		&req.AlumniID,
		&req.Purpose,
		&req.Message,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get mentorship request: %w", err)
	}

	return &req, nil
}

// GetView получает заявку с именами сторон
func (r *MentorshipRepository) GetView(ctx context.Context, id int64) (*model.MentorshipView, error) {
	v, err := scanMentorshipView(r.QueryRow(ctx, selectMentorshipView+` WHERE m.id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get mentorship view: %w", err)
	}
	return v, nil
}

// ResolveIfPending переводит pending заявку в конечный статус.
// Возвращает nil, если заявка не принадлежит выпускнику или уже решена.
func (r *MentorshipRepository) ResolveIfPending(ctx context.Context, id, alumniID int64, status model.RelationshipStatus) (*model.MentorshipRequest, error) {
	query := `
		UPDATE mentorship_requests
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND alumni_id = $3 AND status = $4
		RETURNING id, student_id, alumni_id, purpose, message, status, created_at, updated_at
	`

	var req model.MentorshipRequest
	err := r.QueryRow(ctx, query, status, id, alumniID, model.StatusPending).Scan(
		&req.ID,
		&req.StudentID,
		&req.AlumniID,
		&req.Purpose,
		&req.Message,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve mentorship request: %w", err)
	}

	return &req, nil
}

// ListByParty получает историю заявок пользователя, новые первыми
func (r *MentorshipRepository) ListByParty(ctx context.Context, userID int64, role model.Role) ([]*model.MentorshipView, error) {
	var where string
	switch role {
	case model.RoleStudent:
		where = ` WHERE m.student_id = $1`
	case model.RoleAlumni:
		where = ` WHERE m.alumni_id = $1`
	default:
		where = ` WHERE m.student_id = $1 OR m.alumni_id = $1`
	}

	return r.listViews(ctx, selectMentorshipView+where+` ORDER BY m.created_at DESC, m.id DESC`, userID)
}

// ListPendingForAlumni получает входящие pending заявки выпускника
func (r *MentorshipRepository) ListPendingForAlumni(ctx context.Context, alumniID int64) ([]*model.MentorshipView, error) {
	query := selectMentorshipView + `
		WHERE m.alumni_id = $1 AND m.status = $2
		ORDER BY m.created_at DESC, m.id DESC
	`
	return r.listViews(ctx, query, alumniID, model.StatusPending)
}
