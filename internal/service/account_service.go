package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/alumni_connect/internal/auth"
	"github.com/Freeeeeet/alumni_connect/internal/model"
	"go.uber.org/zap"
)

// TokenIssuer выдаёт bearer токены
type TokenIssuer interface {
	Issue(user *model.User) (string, error)
}

// OTPSender доставляет код подтверждения
type OTPSender interface {
	SendOTP(ctx context.Context, user *model.User, code string) error
}

// LogOTPSender пишет код в лог вместо SMS
type LogOTPSender struct {
	Logger *zap.Logger
}

func (s LogOTPSender) SendOTP(_ context.Context, user *model.User, code string) error {
	s.Logger.Info("OTP issued",
		zap.Int64("user_id", user.ID),
		zap.String("phone_number", user.PhoneNumber),
		zap.String("otp", code),
	)
	return nil
}

// RegisterInput данные регистрации; профильные поля зависят от роли
type RegisterInput struct {
	Name           string
	Email          string
	PhoneNumber    string
	Password       string
	Role           string
	College        string
	Department     string
	RegisterNumber string
	Batch          string
	Company        string
	JobRole        string
}

// ProfileInput редактируемые поля профиля. Пустая строка очищает необязательное поле.
type ProfileInput struct {
	Name           string
	College        string
	Department     string
	Batch          string
	RegisterNumber string // студент
	Interests      string // студент
	ResumeURL      string // студент
	Company        string // выпускник
	JobRole        string // выпускник
	Skills         string // выпускник
}

type AccountService struct {
	users    UserStore
	approval *ApprovalService
	tokens   TokenIssuer
	otp      OTPSender
	otpTTL   time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewAccountService(users UserStore, tokens TokenIssuer, otp OTPSender, otpTTL time.Duration, logger *zap.Logger) *AccountService {
	return &AccountService{
		users:    users,
		approval: NewApprovalService(users, logger),
		tokens:   tokens,
		otp:      otp,
		otpTTL:   otpTTL,
		now:      time.Now,
		logger:   logger,
	}
}

// Register создаёт неподтверждённого студента или выпускника и отправляет OTP
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	var profile model.Profile
	switch role, _ := model.ParseRole(in.Role); role {
	case model.RoleStudent:
		profile = model.StudentProfile{
			Department:     optional(in.Department),
			RegisterNumber: optional(in.RegisterNumber),
			Batch:          optional(in.Batch),
		}
	case model.RoleAlumni:
		profile = model.AlumniProfile{
			Company:             optional(in.Company),
			JobRole:             optional(in.JobRole),
			Batch:               optional(in.Batch),
			Department:          optional(in.Department),
			MentorshipAvailable: true,
		}
	default:
		// администраторы не регистрируются сами
		return nil, model.ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	exists, err := s.users.ExistsByEmailOrPhone(ctx, email, in.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, model.ErrUserExists
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	code, err := auth.GenerateOTP()
	if err != nil {
		return nil, err
	}
	expiry := s.now().Add(s.otpTTL)

	user := &model.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: hash,
		College:      optional(in.College),
		IsActive:     true,
		OTPCode:      &code,
		OTPExpiry:    &expiry,
		Profile:      profile,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if isAccountError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.otp.SendOTP(ctx, user, code); err != nil {
		s.logger.Error("Failed to send OTP", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	s.logger.Info("New user registered",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role())),
	)

	return user, nil
}

// VerifyOTP подтверждает телефон и сразу выдаёт токен
func (s *AccountService) VerifyOTP(ctx context.Context, phone, code string) (*model.User, string, error) {
	user, err := s.users.VerifyOTP(ctx, phone, code, s.now())
	if err != nil {
		return nil, "", fmt.Errorf("verify otp: %w", err)
	}
	if user == nil {
		return nil, "", model.ErrInvalidOTP
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("User verified", zap.Int64("user_id", user.ID))

	return user, token, nil
}

// Login проверяет пароль и выдаёт токен
func (s *AccountService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", model.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, "", model.ErrNotVerified
	}
	if !user.IsActive {
		return nil, "", model.ErrAccountInactive
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Me текущий пользователь по ID из токена
func (s *AccountService) Me(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUnauthenticated
	}
	return user, nil
}

// UpdateProfile сохраняет профиль пользователя. role задаётся маршрутом:
// студент не может изменить профиль через маршрут выпускника и наоборот.
func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, role model.Role, in ProfileInput) (*model.User, error) {
	actor, err := s.approval.Actor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := RequireRole(actor, role); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = actor.Name
	}

	updated := *actor
	updated.Name = name
	updated.College = optional(in.College)

	switch current := actor.Profile.(type) {
	case model.StudentProfile:
		updated.Profile = model.StudentProfile{
			Department:     optional(in.Department),
			RegisterNumber: optional(in.RegisterNumber),
			Batch:          optional(in.Batch),
			Interests:      optional(in.Interests),
			ResumeURL:      optional(in.ResumeURL),
		}
	case model.AlumniProfile:
		updated.Profile = model.AlumniProfile{
			Company:             optional(in.Company),
			JobRole:             optional(in.JobRole),
			Batch:               optional(in.Batch),
			Department:          optional(in.Department),
			Skills:              optional(in.Skills),
			MentorshipAvailable: current.MentorshipAvailable,
		}
	default:
		// у администратора нет профиля
		return nil, model.ErrForbidden
	}

	user, err := s.users.UpdateProfile(ctx, &updated)
	if err != nil {
		if errors.Is(err, model.ErrNotFoundOrUnauthorized) || errors.Is(err, model.ErrForbidden) {
			return nil, err
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.logger.Info("Profile updated",
		zap.Int64("user_id", userID),
		zap.String("role", string(role)),
	)

	return user, nil
}

// EnsureAdmin создаёт администратора, если пользователя с таким email ещё нет
func (s *AccountService) EnsureAdmin(ctx context.Context, name, email, phone, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin := &model.User{
		Name:         name,
		Email:        email,
		PhoneNumber:  phone,
		PasswordHash: hash,
		IsVerified:   true,
		IsApproved:   true,
		IsActive:     true,
		Profile:      model.AdminProfile{},
	}

	if err := s.users.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}

	s.logger.Info("Admin account created", zap.Int64("user_id", admin.ID), zap.String("email", email))

	return admin, nil
}

func isAccountError(err error) bool {
	return errors.Is(err, model.ErrUserExists) || errors.Is(err, model.ErrInvalidRole)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
