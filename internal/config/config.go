package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment     string
	LogLevel        string
	HTTPAddr        string
	DBDSN           string
	MigrationsAuto  bool
	ShutdownTimeout time.Duration

	JWTSecret string
	TokenTTL  time.Duration
	OTPTTL    time.Duration

	// Первый администратор создаётся при старте, если задан email
	AdminEmail    string
	AdminPassword string
	AdminPhone    string
	AdminName     string

	// Бот модерации включается только при наличии токена
	TelegramToken string
	// chatID -> ID администратора в users
	TelegramAdmins map[int64]int64
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Environment:   getEnv("ENV", "development"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		DBDSN:         os.Getenv("DB_DSN"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminPhone:    os.Getenv("ADMIN_PHONE"),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
	}

	var err error
	if cfg.MigrationsAuto, err = getBool("MIGRATIONS_AUTO", true); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.OTPTTL, err = getDuration("OTP_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.TelegramAdmins, err = ParseAdminChats(os.Getenv("TELEGRAM_ADMIN_CHATS")); err != nil {
		return nil, err
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}
	if cfg.AdminEmail != "" && (cfg.AdminPassword == "" || cfg.AdminPhone == "") {
		return nil, fmt.Errorf("ADMIN_PASSWORD and ADMIN_PHONE are required when ADMIN_EMAIL is set")
	}

	return cfg, nil
}

// ParseAdminChats разбирает список вида "chatID:userID,chatID:userID"
func ParseAdminChats(raw string) (map[int64]int64, error) {
	admins := make(map[int64]int64)
	if strings.TrimSpace(raw) == "" {
		return admins, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		chat, user, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return nil, fmt.Errorf("TELEGRAM_ADMIN_CHATS: %q is not chatID:userID", pair)
		}
		chatID, err := strconv.ParseInt(chat, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_ADMIN_CHATS: bad chat id %q: %w", chat, err)
		}
		userID, err := strconv.ParseInt(user, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_ADMIN_CHATS: bad user id %q: %w", user, err)
		}
		admins[chatID] = userID
	}

	return admins, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
