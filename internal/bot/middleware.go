package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jpagency/paywall_bot/internal/i18n"
	"github.com/jpagency/paywall_bot/internal/models"
)

// withUser оборачивает обработчик проверкой регистрации. Незарегистрированный
// пользователь без deep-link онбординга получает локализованный отказ:
// самостоятельной регистрации вне /start с параметром нет.
func (b *Bot) withUser(ctx context.Context, message *tgbotapi.Message, handler func(ctx context.Context, message *tgbotapi.Message, user *models.User)) {
	userID := message.From.ID

	user, err := b.svc.GetUser(ctx, userID)
	if err != nil {
		b.logger.Errorf("Failed to get user %d: %v", userID, err)
		lang := i18n.FromLanguageCode(message.From.LanguageCode)
		b.sendMessage(message.Chat.ID, i18n.GenericError(lang), nil)
		return
	}

	if user == nil {
		lang := i18n.FromLanguageCode(message.From.LanguageCode)
		b.sendMessage(message.Chat.ID, i18n.OnboardingError(lang), nil)
		return
	}

	handler(ctx, message, user)
}
