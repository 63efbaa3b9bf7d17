package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jpagency/paywall_bot/internal/i18n"
	"github.com/jpagency/paywall_bot/internal/models"
	"github.com/jpagency/paywall_bot/internal/service"
	"github.com/jpagency/paywall_bot/utils"
)

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}

	if message.IsCommand() && message.Command() == "start" {
		b.handleStart(ctx, message)
		return
	}

	b.withUser(ctx, message, func(ctx context.Context, message *tgbotapi.Message, user *models.User) {
		lang := i18n.Parse(user.Lang)
		text := strings.TrimSpace(message.Text)

		switch text {
		case i18n.MySubscriptionButton(i18n.RU), i18n.MySubscriptionButton(i18n.EN):
			b.handleMySubscription(ctx, message.Chat.ID, user, lang)
		case i18n.TariffsButton(i18n.RU), i18n.TariffsButton(i18n.EN):
			b.handleTariffList(ctx, message.Chat.ID, user, lang)
		default:
			if state, _ := b.states.Get(ctx, user.ID); state == stateAwaitingPayment {
				b.sendMessage(message.Chat.ID, i18n.PaymentPending(lang), mainMenu(lang, user.Category))
				return
			}
			b.sendMessage(message.Chat.ID, i18n.UnderDevelopment(lang), mainMenu(lang, user.Category))
		}
	})
}

// handleStart регистрирует пользователя по deep-link параметру "of_<channel>".
// Без параметра незнакомцу отвечаем локализованной ошибкой — в точности как
// ведёт себя онбординг у внешнего каталога.
func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	tgLang := i18n.FromLanguageCode(message.From.LanguageCode)

	user, err := b.svc.GetUser(ctx, userID)
	if err != nil {
		b.logger.Errorf("Failed to get user %d: %v", userID, err)
		b.sendMessage(message.Chat.ID, i18n.GenericError(tgLang), nil)
		return
	}

	if user == nil {
		category, channel := parseStartParam(message.CommandArguments())
		if category == "" {
			b.sendMessage(message.Chat.ID, i18n.OnboardingError(tgLang), nil)
			return
		}

		user = &models.User{
			ID:       userID,
			Lang:     string(tgLang),
			Category: category,
			Channel:  channel,
			BotID:    b.id,
		}
		if err := b.svc.RegisterUser(ctx, user); err != nil {
			b.logger.Errorf("Failed to register user %d: %v", userID, err)
			b.sendMessage(message.Chat.ID, i18n.GenericError(tgLang), nil)
			return
		}
		b.logger.Infof("👤 Registered user %d (category=%s, channel=%s)", userID, category, channel)
	}

	lang := i18n.Parse(user.Lang)
	b.sendMessage(message.Chat.ID, i18n.Welcome(lang), mainMenu(lang, user.Category))
}

// parseStartParam разбирает deep-link вида "of_<channel>".
func parseStartParam(param string) (category string, channel string) {
	if !strings.HasPrefix(param, "of_") {
		return "", ""
	}
	parts := strings.SplitN(param, "_", 2)
	if len(parts) < 2 {
		return "of", ""
	}
	return "of", parts[1]
}

func (b *Bot) handleMySubscription(ctx context.Context, chatID int64, user *models.User, lang i18n.Lang) {
	subs, err := b.svc.ListSubscriptionsByUser(ctx, user.ID)
	if err != nil {
		b.logger.Errorf("Failed to list subscriptions for user %d: %v", user.ID, err)
		b.sendMessage(chatID, i18n.GenericError(lang), mainMenu(lang, user.Category))
		return
	}

	for _, sub := range subs {
		if sub.Status != models.SubscriptionStatusActive {
			continue
		}
		tariff, err := b.svc.GetTariff(ctx, sub.TariffID)
		title := sub.TariffID
		if err == nil && tariff != nil {
			title = tariff.Title
		}
		title = utils.EscapeHTML(title)
		until := sub.EndsAt.Format("02.01.2006 15:04 MST")
		_ = b.states.Clear(ctx, user.ID)
		b.sendMessage(chatID, i18n.SubscriptionStatus(lang, title, until), mainMenu(lang, user.Category))
		return
	}

	b.sendMessage(chatID, i18n.NoActiveSubscription(lang), mainMenu(lang, user.Category))
}

func (b *Bot) handleTariffList(ctx context.Context, chatID int64, user *models.User, lang i18n.Lang) {
	tariffs, err := b.svc.ListActiveTariffs(ctx, user.Category)
	if err != nil {
		b.logger.Errorf("Failed to list tariffs: %v", err)
		b.sendMessage(chatID, i18n.GenericError(lang), mainMenu(lang, user.Category))
		return
	}

	if len(tariffs) == 0 {
		b.sendMessage(chatID, i18n.NoTariffs(lang), mainMenu(lang, user.Category))
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(tariffs))
	for _, tariff := range tariffs {
		label := fmt.Sprintf("%s — %s", tariff.Title, utils.FormatPrice(tariff.Price, tariff.Currency))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "tariff:"+tariff.ID),
		))
	}

	msg := tgbotapi.NewMessage(chatID, i18n.ChooseTariff(lang))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Errorf("Failed to send tariff list: %v", err)
	}
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.From == nil || callback.Message == nil {
		return
	}

	user, err := b.svc.GetUser(ctx, callback.From.ID)
	if err != nil || user == nil {
		b.answerCallback(callback.ID, "")
		return
	}
	lang := i18n.Parse(user.Lang)
	chatID := callback.Message.Chat.ID

	data := callback.Data
	switch {
	case strings.HasPrefix(data, "tariff:"):
		b.handleTariffChosen(ctx, chatID, lang, strings.TrimPrefix(data, "tariff:"))
	case strings.HasPrefix(data, "pay:card:"):
		b.handleCardPayment(ctx, chatID, user, lang, strings.TrimPrefix(data, "pay:card:"))
	case strings.HasPrefix(data, "pay:crypto:"):
		b.handleCryptoPayment(ctx, chatID, user, lang, strings.TrimPrefix(data, "pay:crypto:"))
	}
	b.answerCallback(callback.ID, "")
}

func (b *Bot) handleTariffChosen(ctx context.Context, chatID int64, lang i18n.Lang, tariffID string) {
	tariff, err := b.svc.GetTariff(ctx, tariffID)
	if err != nil || tariff == nil {
		b.sendMessage(chatID, i18n.GenericError(lang), nil)
		return
	}

	row := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(i18n.PayByCrypto(lang), "pay:crypto:"+tariff.ID),
	}
	if tariff.PaymentLink != "" {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(i18n.PayByCard(lang), "pay:card:"+tariff.ID))
	}

	msg := tgbotapi.NewMessage(chatID, i18n.ChoosePaymentMethod(lang))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Errorf("Failed to send payment methods: %v", err)
	}
}

func (b *Bot) handleCardPayment(ctx context.Context, chatID int64, user *models.User, lang i18n.Lang, tariffID string) {
	tariff, err := b.svc.GetTariff(ctx, tariffID)
	if err != nil || tariff == nil {
		b.sendMessage(chatID, i18n.GenericError(lang), nil)
		return
	}

	link, err := b.svc.CardPaymentLink(ctx, user, tariff)
	if errors.Is(err, service.ErrAlreadySubscribed) {
		b.sendMessage(chatID, i18n.AlreadySubscribed(lang), mainMenu(lang, user.Category))
		return
	}
	if err != nil {
		b.logger.Errorf("Card checkout failed for user %d: %v", user.ID, err)
		b.sendMessage(chatID, i18n.PaymentFailed(lang), mainMenu(lang, user.Category))
		return
	}

	b.sendMessage(chatID, i18n.CardPaymentLink(lang, link), nil)
}

func (b *Bot) handleCryptoPayment(ctx context.Context, chatID int64, user *models.User, lang i18n.Lang, tariffID string) {
	tariff, err := b.svc.GetTariff(ctx, tariffID)
	if err != nil || tariff == nil {
		b.sendMessage(chatID, i18n.GenericError(lang), nil)
		return
	}

	invoice, err := b.svc.StartCryptoCheckout(ctx, user, tariff)
	if errors.Is(err, service.ErrAlreadySubscribed) {
		b.sendMessage(chatID, i18n.AlreadySubscribed(lang), mainMenu(lang, user.Category))
		return
	}
	if err != nil {
		b.logger.Errorf("Crypto checkout failed for user %d: %v", user.ID, err)
		b.sendMessage(chatID, i18n.PaymentFailed(lang), mainMenu(lang, user.Category))
		return
	}

	if err := b.states.Set(ctx, user.ID, stateAwaitingPayment); err != nil {
		b.logger.Warnf("Failed to store dialog state for user %d: %v", user.ID, err)
	}
	b.sendMessage(chatID, i18n.CryptoPaymentLink(lang, invoice.PayURL), nil)
}
