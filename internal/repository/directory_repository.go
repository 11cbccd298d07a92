package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/alumni_connect/internal/model"
	"github.com/Freeeeeet/alumni_connect/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DirectoryRepository только читает: справочник выпускников и счётчики
type DirectoryRepository struct {
	*base.Repository
}

func NewDirectoryRepository(pool *pgxpool.Pool) *DirectoryRepository {
	return &DirectoryRepository{Repository: base.NewRepository(pool)}
}

// SearchAlumni ищет одобренных и активных выпускников по фильтру
func (r *DirectoryRepository) SearchAlumni(ctx context.Context, filter model.DirectoryFilter) ([]*model.AlumniEntry, error) {
	conditions := []string{
		"u.role = 'alumni'",
		"u.is_verified",
		"u.is_approved",
		"u.is_active",
	}
	var args []any

	addArg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	// ввод пользователя экранируется, % и _ в нём не работают как шаблон
	contains := func(v string) string {
		return addArg("%"+base.EscapeLike(v)+"%") + ` ESCAPE '\'`
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		p := contains(q)
		conditions = append(conditions, fmt.Sprintf(
			"(u.name ILIKE %[1]s OR ap.company ILIKE %[1]s OR ap.job_role ILIKE %[1]s OR ap.skills ILIKE %[1]s)", p))
	}
	if filter.Company != "" {
		conditions = append(conditions, "ap.company ILIKE "+contains(filter.Company))
	}
	if filter.Department != "" {
		conditions = append(conditions, "ap.department ILIKE "+addArg(base.EscapeLike(filter.Department))+` ESCAPE '\'`)
	}
	if filter.Batch != "" {
		conditions = append(conditions, "ap.batch = "+addArg(filter.Batch))
	}
	if filter.AvailableOnly {
		conditions = append(conditions, "ap.mentorship_available")
	}

	query := `
		SELECT u.id, u.name, u.email, u.college,
		       ap.company, ap.job_role, ap.batch, ap.department, ap.skills,
		       COALESCE(ap.mentorship_available, FALSE)
		FROM users u
		LEFT JOIN alumni_profiles ap ON ap.user_id = u.id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY u.name, u.id
		LIMIT ` + addArg(filter.Limit) + ` OFFSET ` + addArg(filter.Offset)

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search alumni: %w", err)
	}
	defer rows.Close()

	var entries []*model.AlumniEntry
	for rows.Next() {
		var e model.AlumniEntry
		err := rows.Scan(
			&e.ID,
			&e.Name,
			&e.Email,
			&e.College,
			&e.Company,
			&e.JobRole,
			&e.Batch,
			&e.Department,
			&e.Skills,
			&e.MentorshipAvailable,
		)
		if err != nil {
			return nil, fmt.Errorf("scan alumni entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alumni entries: %w", err)
	}

	return entries, nil
}

// Dashboard подсчитывает связи и заявки пользователя одним запросом
func (r *DirectoryRepository) Dashboard(ctx context.Context, userID int64) (*model.Dashboard, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM connections WHERE receiver_id = $1 AND status = 'pending'),
			(SELECT COUNT(*) FROM connections WHERE (requester_id = $1 OR receiver_id = $1) AND status = 'accepted'),
			(SELECT COUNT(*) FROM mentorship_requests WHERE (student_id = $1 OR alumni_id = $1) AND status = 'pending'),
			(SELECT COUNT(*) FROM mentorship_requests WHERE (student_id = $1 OR alumni_id = $1) AND status = 'accepted'),
			(SELECT COUNT(*) FROM mentorship_requests WHERE (student_id = $1 OR alumni_id = $1) AND status = 'rejected')
	`

	var d model.Dashboard
	err := r.QueryRow(ctx, query, userID).Scan(
		&d.PendingConnections,
		&d.AcceptedConnections,
		&d.PendingMentorships,
		&d.AcceptedMentorships,
		&d.RejectedMentorships,
	)
	if err != nil {
		return nil, fmt.Errorf("count dashboard: %w", err)
	}

	return &d, nil
}
