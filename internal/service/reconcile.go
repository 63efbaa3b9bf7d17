package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jpagency/paywall_bot/internal/models"
	"github.com/jpagency/paywall_bot/internal/payment"
)

// ConfirmCryptoPayment проводит подтверждение оплаты CryptoCloud.
//
// Переход created -> paid выполняется одним условным UPDATE по order_id.
// Ноль затронутых строк означает либо повторную доставку (счёт уже оплачен,
// безвредный no-op), либо неизвестный order_id (ErrOrderNotFound) — различие
// выясняется чтением уже после no-op, поэтому гонки lost-update нет.
//
// Промахи справочников после состоявшегося перехода не откатывают леджер:
// уведомление пропускается, событие логируется и подтверждается провайдеру —
// повторная доставка такую ситуацию не исправит.
func (s *Service) ConfirmCryptoPayment(ctx context.Context, orderID string, rawPayload string) error {
	affected, err := s.repo.MarkInvoicePaid(ctx, orderID, rawPayload)
	if err != nil {
		return err
	}

	if affected == 0 {
		invoice, err := s.repo.GetInvoiceByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return ErrOrderNotFound
		}
		s.logger.Infof("Duplicate payment webhook for order %s ignored", orderID)
		return nil
	}

	invoice, err := s.repo.GetInvoiceByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return ErrOrderNotFound
	}

	tariff, err := s.repo.GetTariff(ctx, invoice.TariffID)
	if err != nil {
		return err
	}
	if tariff == nil {
		s.logger.Errorf("Invoice %s references unknown tariff %s, skipping activation", invoice.ID, invoice.TariffID)
		return nil
	}

	// Guard на уровне подписки: повторная активация при уже активной
	// подписке на тот же тариф не плодит вторую строку.
	existing, err := s.repo.GetActiveSubscription(ctx, invoice.UserID, tariff.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		s.logger.Warnf("User %d already has active subscription %s for tariff %s, skipping insert", invoice.UserID, existing.ID, tariff.ID)
		return nil
	}

	now := s.now()
	sub := &models.Subscription{
		ID:        uuid.NewString(),
		UserID:    invoice.UserID,
		TariffID:  tariff.ID,
		StartedAt: now,
		EndsAt:    now.Add(time.Duration(tariff.Lifetime) * time.Minute),
		Status:    models.SubscriptionStatusActive,
		Price:     invoice.Amount,
		Currency:  invoice.Currency,
	}
	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return fmt.Errorf("failed to create subscription for order %s: %w", orderID, err)
	}

	s.logger.Infof("✅ Order %s paid, subscription %s active until %s", orderID, sub.ID, sub.EndsAt.Format(time.RFC3339))

	s.dispatchAccessGrant(ctx, invoice.BotID, invoice.UserID, tariff, sub)
	return nil
}

// ApplyTributeSubscription обрабатывает событие new_subscription.
// Ключ идемпотентности — subscription_id провайдера: повторная доставка и
// продление делают upsert, а не вторую вставку.
func (s *Service) ApplyTributeSubscription(ctx context.Context, ev *payment.TributeSubscription) error {
	user, err := s.repo.GetUser(ctx, ev.TelegramUserID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: telegram id %d", ErrUserNotFound, ev.TelegramUserID)
	}

	tariff, err := s.repo.GetTariffByChannel(ctx, ev.ChannelName)
	if err != nil {
		return err
	}
	if tariff == nil {
		return fmt.Errorf("%w: channel %s", ErrTariffNotFound, ev.ChannelName)
	}

	id := strconv.FormatInt(ev.SubscriptionID, 10)
	prior, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return err
	}

	sub := &models.Subscription{
		ID:        id,
		UserID:    user.ID,
		TariffID:  tariff.ID,
		StartedAt: s.now(),
		EndsAt:    ev.ExpiresAt,
		Status:    models.SubscriptionStatusActive,
		Price:     ev.Amount,
		Currency:  ev.Currency,
	}
	if err := s.repo.UpsertSubscription(ctx, sub); err != nil {
		return err
	}

	if prior == nil {
		s.logger.Infof("✅ Tribute subscription %s active for user %d until %s", id, user.ID, ev.ExpiresAt.Format(time.RFC3339))
		s.dispatchAccessGrant(ctx, user.BotID, user.ID, tariff, sub)
	} else {
		s.logger.Infof("Tribute subscription %s refreshed, ends at %s", id, ev.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

// CancelTributeSubscription обрабатывает cancelled_subscription: целевой
// UPDATE по id провайдера, доступ сохраняется до присланного expires_at.
func (s *Service) CancelTributeSubscription(ctx context.Context, ev *payment.TributeSubscription) error {
	id := strconv.FormatInt(ev.SubscriptionID, 10)
	affected, err := s.repo.CancelSubscription(ctx, id, ev.CancelReason, ev.ExpiresAt)
	if err != nil {
		return err
	}
	if affected == 0 {
		// Отмена неизвестной подписки: ретраи провайдера это не исправят,
		// подтверждаем и оставляем след в логе.
		s.logger.Warnf("Cancellation for unknown subscription %s ignored", id)
		return nil
	}
	s.logger.Infof("Subscription %s cancelled (%s), access until %s", id, ev.CancelReason, ev.ExpiresAt.Format(time.RFC3339))
	return nil
}
