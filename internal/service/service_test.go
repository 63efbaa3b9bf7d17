package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/jpagency/paywall_bot/config"
	"github.com/jpagency/paywall_bot/internal/models"
	"github.com/jpagency/paywall_bot/internal/payment"
	"github.com/jpagency/paywall_bot/internal/registry"
	"github.com/jpagency/paywall_bot/internal/repository"
	"github.com/jpagency/paywall_bot/internal/telegram"
	"github.com/jpagency/paywall_bot/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type sentMessage struct {
	chatID int64
	text   string
}

type fakeMessenger struct {
	sent  []sentMessage
	links []string
}

func (f *fakeMessenger) SendMessage(chatID int64, text string) error {
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeMessenger) CreateInviteLink(channel string, memberLimit int) (string, error) {
	f.links = append(f.links, fmt.Sprintf("%s:%d", channel, memberLimit))
	return "https://t.me/+invite", nil
}

type fakeRegistry struct {
	clients map[int64]*fakeMessenger
}

func (f *fakeRegistry) Messenger(botID int64) (telegram.Client, error) {
	client, ok := f.clients[botID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", registry.ErrBotNotFound, botID)
	}
	return client, nil
}

type fakeGateway struct {
	calls int
}

func (f *fakeGateway) CreateInvoice(_ context.Context, amount float64, currency string, orderID string) (*payment.CreatedInvoice, error) {
	f.calls++
	return &payment.CreatedInvoice{
		UUID: "cc-" + orderID,
		Link: "https://pay.cryptocloud.plus/" + orderID,
	}, nil
}

type fixture struct {
	svc     *Service
	store   *repository.Repository
	db      *gorm.DB
	bots    *fakeRegistry
	gateway *fakeGateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.BotConfig{},
		&models.User{},
		&models.Tariff{},
		&models.Invoice{},
		&models.Subscription{},
	))

	logger := utils.InitLogger()
	store := repository.NewRepository(db, logger)
	bots := &fakeRegistry{clients: map[int64]*fakeMessenger{
		1: {},
		2: {},
	}}
	gateway := &fakeGateway{}

	return &fixture{
		svc:     New(store, bots, gateway, &config.Config{}, logger),
		store:   store,
		db:      db,
		bots:    bots,
		gateway: gateway,
	}
}

// Тарифы принадлежат внешнему каталогу, поэтому у адаптера нет записи —
// тестовые строки сеются напрямую.
func (f *fixture) seedUserAndTariff(t *testing.T, botID int64) (*models.User, *models.Tariff) {
	t.Helper()

	user := &models.User{ID: 100, Lang: "en", Category: "of", Channel: "paywall_channel", BotID: botID}
	require.NoError(t, f.store.CreateUser(context.Background(), user))

	tariff := &models.Tariff{
		ID:       "t1",
		Title:    "Monthly",
		Price:    10,
		Currency: "USD",
		Lifetime: 4320,
		Active:   true,
		Category: "of",
		Channel:  "paywall_channel",
	}
	require.NoError(t, f.db.Create(tariff).Error)

	return user, tariff
}
