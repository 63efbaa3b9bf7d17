package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jpagency/paywall_bot/internal/models"
)

// StartCryptoCheckout создаёт счёт CryptoCloud для пары (user, tariff).
// Перед выпиской счёта стоит best-effort guard: при уже активной подписке
// на этот тариф возвращается ErrAlreadySubscribed и счёт не создаётся.
func (s *Service) StartCryptoCheckout(ctx context.Context, user *models.User, tariff *models.Tariff) (*models.Invoice, error) {
	existing, err := s.repo.GetActiveSubscription(ctx, user.ID, tariff.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadySubscribed
	}

	orderID := uuid.NewString()
	created, err := s.crypto.CreateInvoice(ctx, tariff.Price, tariff.Currency, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to create cryptocloud invoice: %w", err)
	}

	invoice := &models.Invoice{
		ID:       created.UUID,
		UserID:   user.ID,
		TariffID: tariff.ID,
		OrderID:  orderID,
		PayURL:   created.Link,
		Amount:   tariff.Price,
		Currency: tariff.Currency,
		Status:   models.InvoiceStatusCreated,
		BotID:    user.BotID,
	}
	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}
	invoice.CreatedAt = s.now()

	if err := s.repo.CreateInvoice(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to store invoice: %w", err)
	}

	s.logger.Infof("🧾 Created invoice %s (order %s) for user %d, tariff %s", invoice.ID, orderID, user.ID, tariff.ID)
	return invoice, nil
}

// CardPaymentLink отдаёт внешнюю ссылку на карточную оплату под тем же guard.
func (s *Service) CardPaymentLink(ctx context.Context, user *models.User, tariff *models.Tariff) (string, error) {
	existing, err := s.repo.GetActiveSubscription(ctx, user.ID, tariff.ID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", ErrAlreadySubscribed
	}
	if tariff.PaymentLink == "" {
		return "", fmt.Errorf("tariff %s has no card payment link", tariff.ID)
	}
	return tariff.PaymentLink, nil
}
