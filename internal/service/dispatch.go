package service

import (
	"context"
	"errors"

	"github.com/jpagency/paywall_bot/internal/i18n"
	"github.com/jpagency/paywall_bot/internal/models"
	"github.com/jpagency/paywall_bot/internal/registry"
	"github.com/jpagency/paywall_bot/utils"
)

// dispatchAccessGrant шлёт пользователю подтверждение оплаты и одноразовую
// инвайт-ссылку через владеющего бота. Fire-and-forget относительно леджера:
// оплата уже зафиксирована провайдером, локально её «отменять» нельзя,
// поэтому любой сбой здесь только логируется.
func (s *Service) dispatchAccessGrant(ctx context.Context, botID int64, userID int64, tariff *models.Tariff, sub *models.Subscription) {
	client, err := s.bots.Messenger(botID)
	if err != nil {
		if errors.Is(err, registry.ErrBotNotFound) {
			s.logger.Errorf("Owning bot %d for user %d is not registered, notification skipped", botID, userID)
			return
		}
		s.logger.Errorf("Failed to resolve bot %d: %v", botID, err)
		return
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil || user == nil {
		s.logger.Errorf("User %d not found after activation, notification skipped", userID)
		return
	}

	lang := i18n.Parse(user.Lang)
	until := sub.EndsAt.Format("02.01.2006 15:04 MST")
	if err := client.SendMessage(user.ID, i18n.PaymentSuccess(lang, utils.EscapeHTML(tariff.Title), until)); err != nil {
		s.logger.Errorf("Failed to notify user %d: %v", user.ID, err)
	}

	if tariff.Channel == "" {
		return
	}

	link, err := client.CreateInviteLink(tariff.Channel, 1)
	if err != nil {
		s.logger.Errorf("Failed to create invite link to %s for user %d: %v", tariff.Channel, user.ID, err)
		return
	}
	if err := client.SendMessage(user.ID, i18n.InviteLink(lang, link)); err != nil {
		s.logger.Errorf("Failed to deliver invite link to user %d: %v", user.ID, err)
	}
}

// ExpireOverdue — периодическая зачистка: активные подписки с истёкшим
// сроком переводятся в expired одним условным UPDATE.
func (s *Service) ExpireOverdue(ctx context.Context) {
	affected, err := s.repo.ExpireDueSubscriptions(ctx, s.now())
	if err != nil {
		s.logger.Errorf("Expiry sweep failed: %v", err)
		return
	}
	if affected > 0 {
		s.logger.Infof("⏳ Expired %d overdue subscriptions", affected)
	}
}
