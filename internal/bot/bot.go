package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jpagency/paywall_bot/internal/i18n"
	"github.com/jpagency/paywall_bot/internal/service"
	"github.com/jpagency/paywall_bot/utils"
)

// Bot — диалоговый слой одного бота. Каждый экземпляр привязан к своей
// категории и получает обновления через /webhook/<bot id>.
type Bot struct {
	id       int64
	category string
	api      *tgbotapi.BotAPI
	svc      *service.Service
	states   StateStore
	logger   *utils.Logger
}

func New(id int64, category string, api *tgbotapi.BotAPI, svc *service.Service, states StateStore, logger *utils.Logger) *Bot {
	return &Bot{
		id:       id,
		category: category,
		api:      api,
		svc:      svc,
		states:   states,
		logger:   logger,
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
	}
}

// sendMessage — унифицированная отправка с HTML-разметкой.
func (b *Bot) sendMessage(chatID int64, text string, replyMarkup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Errorf("Failed to send message: %v", err)
	}
}

func (b *Bot) answerCallback(callbackID string, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.logger.Errorf("Failed to answer callback: %v", err)
	}
}

// mainMenu зависит от категории пользователя: меню подписок показывается
// только в категории "of".
func mainMenu(lang i18n.Lang, category string) interface{} {
	if category != "of" {
		return tgbotapi.NewRemoveKeyboard(false)
	}
	return tgbotapi.NewReplyKeyboard(
		[]tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton(i18n.TariffsButton(lang)),
			tgbotapi.NewKeyboardButton(i18n.MySubscriptionButton(lang)),
		},
	)
}
