package service

import (
	"context"
	"errors"
	"time"

	"github.com/jpagency/paywall_bot/config"
	"github.com/jpagency/paywall_bot/internal/models"
	"github.com/jpagency/paywall_bot/internal/payment"
	"github.com/jpagency/paywall_bot/internal/telegram"
	"github.com/jpagency/paywall_bot/utils"
)

var (
	ErrAlreadySubscribed = errors.New("active subscription already exists")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrTariffNotFound    = errors.New("tariff not found")
)

// Repository — леджер из четырёх коллекций: Users, Tariffs, Invoices,
// Subscriptions. Все мутации по ключу — условные UPDATE/UPSERT, никакого
// read-then-write в два запроса.
type Repository interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUserLang(ctx context.Context, id int64, lang string) error

	GetTariff(ctx context.Context, id string) (*models.Tariff, error)
	ListActiveTariffs(ctx context.Context, category string) ([]models.Tariff, error)
	GetTariffByChannel(ctx context.Context, channel string) (*models.Tariff, error)

	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	GetInvoiceByOrderID(ctx context.Context, orderID string) (*models.Invoice, error)
	MarkInvoicePaid(ctx context.Context, orderID string, payload string) (int64, error)

	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)
	GetActiveSubscription(ctx context.Context, userID int64, tariffID string) (*models.Subscription, error)
	ListSubscriptionsByUser(ctx context.Context, userID int64) ([]models.Subscription, error)
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	UpsertSubscription(ctx context.Context, sub *models.Subscription) error
	CancelSubscription(ctx context.Context, id string, reason string, endsAt time.Time) (int64, error)
	ExpireDueSubscriptions(ctx context.Context, now time.Time) (int64, error)
}

// BotRegistry отдаёт клиент мессенджера владеющего бота.
type BotRegistry interface {
	Messenger(botID int64) (telegram.Client, error)
}

// CryptoGateway — исходящий вызов к платёжному провайдеру.
type CryptoGateway interface {
	CreateInvoice(ctx context.Context, amount float64, currency string, orderID string) (*payment.CreatedInvoice, error)
}

type Service struct {
	repo   Repository
	bots   BotRegistry
	crypto CryptoGateway
	config *config.Config
	logger *utils.Logger
	now    func() time.Time
}

func New(repo Repository, bots BotRegistry, crypto CryptoGateway, cfg *config.Config, logger *utils.Logger) *Service {
	return &Service{
		repo:   repo,
		bots:   bots,
		crypto: crypto,
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUser(ctx, id)
}

// RegisterUser заводит пользователя при первом онбординге. Категория и канал
// фиксируются навсегда, меняться потом может только язык.
func (s *Service) RegisterUser(ctx context.Context, user *models.User) error {
	user.CreatedAt = s.now()
	return s.repo.CreateUser(ctx, user)
}

func (s *Service) UpdateUserLang(ctx context.Context, id int64, lang string) error {
	return s.repo.UpdateUserLang(ctx, id, lang)
}

func (s *Service) ListActiveTariffs(ctx context.Context, category string) ([]models.Tariff, error) {
	return s.repo.ListActiveTariffs(ctx, category)
}

func (s *Service) GetTariff(ctx context.Context, id string) (*models.Tariff, error) {
	return s.repo.GetTariff(ctx, id)
}

func (s *Service) ActiveSubscription(ctx context.Context, userID int64, tariffID string) (*models.Subscription, error) {
	return s.repo.GetActiveSubscription(ctx, userID, tariffID)
}

func (s *Service) ListSubscriptionsByUser(ctx context.Context, userID int64) ([]models.Subscription, error) {
	return s.repo.ListSubscriptionsByUser(ctx, userID)
}
