// Package moderation is the Telegram bot through which admins approve alumni
// and toggle accounts without opening the web dashboard.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/alumni_connect/internal/model"
	"github.com/Freeeeeet/alumni_connect/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Moderator is the part of the approval service the bot drives
type Moderator interface {
	ListPendingAlumni(ctx context.Context, adminID int64) ([]*model.User, error)
	UpdateApproval(ctx context.Context, adminID, userID int64, decision string) (*model.User, error)
	ToggleActive(ctx context.Context, adminID, userID int64) (bool, error)
}

type BotController struct {
	bot       *bot.Bot
	moderator Moderator
	// chatID -> ID администратора
	admins map[int64]int64
	logger *zap.Logger
}

func NewBotController(botInstance *bot.Bot, moderator Moderator, admins map[int64]int64, logger *zap.Logger) *BotController {
	return &BotController{
		bot:       botInstance,
		moderator: moderator,
		admins:    admins,
		logger:    logger,
	}
}

// RegisterHandlers регистрирует команды модерации
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	for _, cmd := range []string{"/start", "/help", "/pending", "/approve", "/reject", "/toggle"} {
		c.bot.RegisterHandler(bot.HandlerTypeMessageText, cmd, bot.MatchTypePrefix, c.HandleCommand)
	}

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "pending", Description: "⏳ Выпускники на проверке"},
		{Command: "approve", Description: "✅ Одобрить выпускника: /approve <id>"},
		{Command: "reject", Description: "❌ Отклонить выпускника: /reject <id>"},
		{Command: "toggle", Description: "🔁 Заблокировать/разблокировать: /toggle <id>"},
		{Command: "help", Description: "❓ Справка по командам"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start запускает бота; блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting moderation bot...")
	c.bot.Start(ctx)
}

// HandleCommand выполняет команду и отвечает в тот же чат
func (c *BotController) HandleCommand(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	reply := c.execute(ctx, chatID, update.Message.Text)

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   reply,
	})
	if err != nil {
		c.logger.Error("Failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// execute разбирает текст команды и возвращает ответ
func (c *BotController) execute(ctx context.Context, chatID int64, text string) string {
	adminID, ok := c.admins[chatID]
	if !ok {
		c.logger.Warn("Command from unknown chat", zap.Int64("chat_id", chatID))
		return "⛔ Этот чат не привязан к администратору."
	}

	cmd, arg := parseCommand(text)

	switch cmd {
	case "start", "help":
		return helpText

	case "pending":
		users, err := c.moderator.ListPendingAlumni(ctx, adminID)
		if err != nil {
			return c.failure(err)
		}
		return formatPending(users)

	case "approve", "reject":
		userID, err := parseUserID(arg)
		if err != nil {
			return fmt.Sprintf("Использование: /%s <id пользователя>", cmd)
		}

		decision := service.ApprovalApproved
		if cmd == "reject" {
			decision = service.ApprovalRejected
		}

		user, err := c.moderator.UpdateApproval(ctx, adminID, userID, decision)
		if err != nil {
			return c.failure(err)
		}

		if decision == service.ApprovalApproved {
			return fmt.Sprintf("✅ %s (#%d) одобрен.", user.Name, user.ID)
		}
		return fmt.Sprintf("❌ %s (#%d) отклонён и деактивирован.", user.Name, user.ID)

	case "toggle":
		userID, err := parseUserID(arg)
		if err != nil {
			return "Использование: /toggle <id пользователя>"
		}

		active, err := c.moderator.ToggleActive(ctx, adminID, userID)
		if err != nil {
			return c.failure(err)
		}

		if active {
			return fmt.Sprintf("🔓 Пользователь #%d активирован.", userID)
		}
		return fmt.Sprintf("🔒 Пользователь #%d деактивирован.", userID)
	}

	return "Неизвестная команда. " + helpText
}

// failure превращает ошибку сервиса в ответ; внутренние ошибки только логируются
func (c *BotController) failure(err error) string {
	switch {
	case errors.Is(err, model.ErrNotFoundOrUnauthorized):
		return "❌ Выпускник не найден."
	case errors.Is(err, model.ErrInvalidTarget):
		return "❌ Нельзя изменить статус собственного аккаунта."
	case errors.Is(err, model.ErrForbidden), errors.Is(err, model.ErrAccountInactive), errors.Is(err, model.ErrUnauthenticated):
		return "⛔ Аккаунт администратора недоступен."
	}

	c.logger.Error("Moderation command failed", zap.Error(err))
	return "❌ Произошла ошибка. Попробуйте позже."
}

const helpText = "Команды модерации:\n" +
	"/pending - выпускники, ожидающие одобрения\n" +
	"/approve <id> - одобрить выпускника\n" +
	"/reject <id> - отклонить выпускника\n" +
	"/toggle <id> - заблокировать или разблокировать пользователя"

// parseCommand: "/approve@alumni_bot 42" -> ("approve", "42")
func parseCommand(text string) (string, string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", ""
	}

	cmd := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}

	var arg string
	if len(fields) > 1 {
		arg = fields[1]
	}
	return strings.ToLower(cmd), arg
}

func parseUserID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", arg)
	}
	return id, nil
}

func formatPending(users []*model.User) string {
	if len(users) == 0 {
		return "Нет выпускников, ожидающих одобрения."
	}

	var sb strings.Builder
	sb.WriteString("⏳ Ожидают одобрения:\n")
	for _, u := range users {
		fmt.Fprintf(&sb, "\n#%d %s <%s>", u.ID, u.Name, u.Email)
		if p, ok := u.Alumni(); ok {
			if p.Company != nil {
				fmt.Fprintf(&sb, ", %s", *p.Company)
			}
			if p.Batch != nil {
				fmt.Fprintf(&sb, ", выпуск %s", *p.Batch)
			}
		}
	}
	return sb.String()
}
