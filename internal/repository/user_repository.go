package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/alumni_connect/internal/model"
	"github.com/Freeeeeet/alumni_connect/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectUser = `
	SELECT u.id, u.name, u.email, u.phone_number, u.password_hash, u.role, u.college,
	       u.is_verified, u.is_approved, u.is_active, u.otp_code, u.otp_expiry, u.created_at,
	       sp.department, sp.register_number, sp.batch, sp.interests, sp.resume_url,
	       ap.company, ap.job_role, ap.batch, ap.department, ap.skills,
	       COALESCE(ap.mentorship_available, FALSE)
	FROM users u
	LEFT JOIN student_profiles sp ON sp.user_id = u.id
	LEFT JOIN alumni_profiles ap ON ap.user_id = u.id
`

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

// scanUser собирает пользователя и профиль по его роли
func scanUser(row pgx.Row) (*model.User, error) {
	var (
		user    model.User
		role    string
		student model.StudentProfile
		alumni  model.AlumniProfile
	)

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PhoneNumber,
		&user.PasswordHash,
		&role,
		&user.College,
		&user.IsVerified,
		&user.IsApproved,
		&user.IsActive,
		&user.OTPCode,
		&user.OTPExpiry,
		&user.CreatedAt,
		&student.Department,
		&student.RegisterNumber,
		&student.Batch,
		&student.Interests,
		&student.ResumeURL,
		&alumni.Company,
		&alumni.JobRole,
		&alumni.Batch,
		&alumni.Department,
		&alumni.Skills,
		&alumni.MentorshipAvailable,
	)
	if err != nil {
		return nil, err
	}

	switch model.Role(role) {
	case model.RoleStudent:
		user.Profile = student
	case model.RoleAlumni:
		user.Profile = alumni
	case model.RoleAdmin:
		user.Profile = model.AdminProfile{}
	default:
		return nil, fmt.Errorf("unknown role %q for user %d", role, user.ID)
	}

	return &user, nil
}

// Create создаёт пользователя вместе с профилем роли
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO users (name, email, phone_number, password_hash, role, college,
			                   is_verified, is_approved, is_active, otp_code, otp_expiry)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id, created_at
		`

		err := tx.QueryRow(
			ctx, query,
			user.Name,
			user.Email,
			user.PhoneNumber,
			user.PasswordHash,
			string(user.Role()),
			user.College,
			user.IsVerified,
			user.IsApproved,
			user.IsActive,
			user.OTPCode,
			user.OTPExpiry,
		).Scan(&user.ID, &user.CreatedAt)
		if err != nil {
			if base.IsUniqueViolation(err) {
				return model.ErrUserExists
			}
			return fmt.Errorf("create user: %w", err)
		}

		switch p := user.Profile.(type) {
		case model.StudentProfile:
			_, err = tx.Exec(ctx, `
				INSERT INTO student_profiles (user_id, department, register_number, batch, interests, resume_url)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, user.ID, p.Department, p.RegisterNumber, p.Batch, p.Interests, p.ResumeURL)
		case model.AlumniProfile:
			_, err = tx.Exec(ctx, `
				INSERT INTO alumni_profiles (user_id, company, job_role, batch, department, skills, mentorship_available)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, user.ID, p.Company, p.JobRole, p.Batch, p.Department, p.Skills, p.MentorshipAvailable)
		case model.AdminProfile:
			// у администратора нет профиля
		default:
			return model.ErrInvalidRole
		}
		if err != nil {
			return fmt.Errorf("create profile: %w", err)
		}

		return nil
	})
}

// getUserByID читает пользователя через пул или транзакцию
func getUserByID(ctx context.Context, q base.Querier, id int64) (*model.User, error) {
	user, err := scanUser(q.QueryRow(ctx, selectUser+` WHERE u.id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return getUserByID(ctx, r.Querier(), id)
}

// GetByEmail получает пользователя по email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.QueryRow(ctx, selectUser+` WHERE u.email = $1`, email))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// ExistsByEmailOrPhone проверяет, занят ли email или телефон
func (r *UserRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM users WHERE email = $1 OR phone_number = $2
		)
	`

	var exists bool
	if err := r.QueryRow(ctx, query, email, phone).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// VerifyOTP помечает пользователя подтверждённым, если код совпал и не истёк
func (r *UserRepository) VerifyOTP(ctx context.Context, phone, code string, now time.Time) (*model.User, error) {
	query := `
		UPDATE users
		SET is_verified = TRUE, otp_code = NULL, otp_expiry = NULL
		WHERE phone_number = $1 AND otp_code = $2 AND otp_expiry > $3
		RETURNING id
	`

	var id int64
	err := r.QueryRow(ctx, query, phone, code, now).Scan(&id)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("verify otp: %w", err)
	}

	return r.GetByID(ctx, id)
}

// SetApproval обновляет флаги одобрения и активности
func (r *UserRepository) SetApproval(ctx context.Context, id int64, approved, active bool) error {
	affected, err := r.ExecAffected(ctx, `
		UPDATE users
		SET is_approved = $1, is_active = $2
		WHERE id = $3
	`, approved, active, id)
	if err != nil {
		return fmt.Errorf("set approval: %w", err)
	}
	if affected == 0 {
		return model.ErrNotFoundOrUnauthorized
	}
	return nil
}

// ToggleActive переключает is_active и возвращает новое значение
func (r *UserRepository) ToggleActive(ctx context.Context, id int64) (bool, error) {
	var active bool
	err := r.QueryRow(ctx, `
		UPDATE users
		SET is_active = NOT is_active
		WHERE id = $1
		RETURNING is_active
	`, id).Scan(&active)
	if err != nil {
		if base.IsNotFound(err) {
			return false, model.ErrNotFoundOrUnauthorized
		}
		return false, fmt.Errorf("toggle active: %w", err)
	}
	return active, nil
}

// SetMentorshipAvailability включает или выключает приём заявок выпускником
func (r *UserRepository) SetMentorshipAvailability(ctx context.Context, alumniID int64, available bool) error {
	affected, err := r.ExecAffected(ctx, `
		UPDATE alumni_profiles
		SET mentorship_available = $1
		WHERE user_id = $2
	`, available, alumniID)
	if err != nil {
		return fmt.Errorf("set mentorship availability: %w", err)
	}
	if affected == 0 {
		return model.ErrNotFoundOrUnauthorized
	}
	return nil
}

// listUsers выполняет запрос на основе selectUser
func (r *UserRepository) listUsers(ctx context.Context, query string, args ...any) ([]*model.User, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// ToggleMentorshipAvailability инвертирует флаг одним UPDATE и возвращает новое значение
func (r *UserRepository) ToggleMentorshipAvailability(ctx context.Context, alumniID int64) (bool, error) {
	var available bool
	err := r.QueryRow(ctx, `
		UPDATE alumni_profiles
		SET mentorship_available = NOT mentorship_available
		WHERE user_id = $1
		RETURNING mentorship_available
	`, alumniID).Scan(&available)
	if err != nil {
		if base.IsNotFound(err) {
			return false, model.ErrNotFoundOrUnauthorized
		}
		return false, fmt.Errorf("toggle mentorship availability: %w", err)
	}
	return available, nil
}

// UpdateProfile обновляет редактируемые поля пользователя и его профиля.
// mentorship_available не трогается: он меняется только переключателем.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *model.User) (*model.User, error) {
	var updated *model.User

	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE users SET name = $1, college = $2 WHERE id = $3
		`, user.Name, user.College, user.ID)
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrNotFoundOrUnauthorized
		}

		switch p := user.Profile.(type) {
		case model.StudentProfile:
			tag, err = tx.Exec(ctx, `
				UPDATE student_profiles
				SET department = $2, register_number = $3, batch = $4, interests = $5, resume_url = $6
				WHERE user_id = $1
			`, user.ID, p.Department, p.RegisterNumber, p.Batch, p.Interests, p.ResumeURL)
		case model.AlumniProfile:
			tag, err = tx.Exec(ctx, `
				UPDATE alumni_profiles
				SET company = $2, job_role = $3, batch = $4, department = $5, skills = $6
				WHERE user_id = $1
			`, user.ID, p.Company, p.JobRole, p.Batch, p.Department, p.Skills)
		default:
			return model.ErrForbidden
		}
		if err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrNotFoundOrUnauthorized
		}

		updated, err = getUserByID(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// ListPendingAlumni возвращает подтверждённых, но ещё не одобренных выпускников
func (r *UserRepository) ListPendingAlumni(ctx context.Context) ([]*model.User, error) {
	users, err := r.listUsers(ctx, selectUser+`
		WHERE u.role = 'alumni' AND u.is_verified AND NOT u.is_approved AND u.is_active
		ORDER BY u.created_at ASC, u.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list pending alumni: %w", err)
	}
	return users, nil
}

// ListAll возвращает всех пользователей, новые первыми
func (r *UserRepository) ListAll(ctx context.Context) ([]*model.User, error) {
	users, err := r.listUsers(ctx, selectUser+`
		ORDER BY u.created_at DESC, u.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
