package server

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/jpagency/paywall_bot/config"
	"github.com/jpagency/paywall_bot/internal/models"
	"github.com/jpagency/paywall_bot/internal/payment"
	"github.com/jpagency/paywall_bot/internal/registry"
	"github.com/jpagency/paywall_bot/internal/repository"
	"github.com/jpagency/paywall_bot/internal/service"
	"github.com/jpagency/paywall_bot/internal/telegram"
	"github.com/jpagency/paywall_bot/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const testSecret = "tribute-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeMessenger struct {
	sent int
}

func (f *fakeMessenger) SendMessage(chatID int64, text string) error {
	f.sent++
	return nil
}

func (f *fakeMessenger) CreateInviteLink(channel string, memberLimit int) (string, error) {
	return "https://t.me/+invite", nil
}

type fakeRegistry struct {
	client *fakeMessenger
}

func (f *fakeRegistry) Messenger(botID int64) (telegram.Client, error) {
	if botID != 1 {
		return nil, fmt.Errorf("%w: %d", registry.ErrBotNotFound, botID)
	}
	return f.client, nil
}

type fakeGateway struct{}

func (f *fakeGateway) CreateInvoice(_ context.Context, amount float64, currency string, orderID string) (*payment.CreatedInvoice, error) {
	return &payment.CreatedInvoice{UUID: "cc-" + orderID, Link: "https://pay/" + orderID}, nil
}

type webhookFixture struct {
	srv   *Server
	svc   *service.Service
	store *repository.Repository
	db    *gorm.DB
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Tariff{},
		&models.Invoice{},
		&models.Subscription{},
	))

	logger := utils.InitLogger()
	store := repository.NewRepository(db, logger)
	svc := service.New(store, &fakeRegistry{client: &fakeMessenger{}}, &fakeGateway{}, &config.Config{}, logger)

	cfg := &config.Config{TributeAPIKey: testSecret, WebhookTimeoutSeconds: 5}
	return &webhookFixture{
		srv:   New(svc, nil, cfg, logger),
		svc:   svc,
		store: store,
		db:    db,
	}
}

func (f *webhookFixture) seed(t *testing.T) (*models.User, *models.Tariff) {
	t.Helper()
	user := &models.User{ID: 100, Lang: "en", Category: "of", BotID: 1}
	require.NoError(t, f.store.CreateUser(context.Background(), user))
	tariff := &models.Tariff{
		ID: "t1", Title: "Monthly", Price: 10, Currency: "USD",
		Lifetime: 4320, Active: true, Category: "of", Channel: "paywall_channel",
	}
	require.NoError(t, f.db.Create(tariff).Error)
	return user, tariff
}

func (f *webhookFixture) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	f.srv.Engine().ServeHTTP(w, req)
	return w
}

func (f *webhookFixture) postTribute(body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/tribute", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("trbt-signature", signature)
	}
	w := httptest.NewRecorder()
	f.srv.Engine().ServeHTTP(w, req)
	return w
}

func signBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (f *webhookFixture) subscriptionCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.Subscription{}).Count(&count).Error)
	return count
}

func TestCryptoCloudWebhookSuccess(t *testing.T) {
	f := newWebhookFixture(t)
	user, tariff := f.seed(t)
	ctx := context.Background()

	invoice, err := f.svc.StartCryptoCheckout(ctx, user, tariff)
	require.NoError(t, err)

	w := f.postForm("/webhook/cryptocloud", url.Values{
		"status":   {"success"},
		"order_id": {invoice.OrderID},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	stored, err := f.store.GetInvoiceByOrderID(ctx, invoice.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, stored.Status)
	assert.Equal(t, int64(1), f.subscriptionCount(t))
}

func TestCryptoCloudWebhookIgnorableStatus(t *testing.T) {
	f := newWebhookFixture(t)
	f.seed(t)

	// Не-success статус валиден и игнорируем: 200, иначе провайдер ретраит.
	w := f.postForm("/webhook/cryptocloud", url.Values{
		"status":   {"fail"},
		"order_id": {"whatever"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), f.subscriptionCount(t))
}

func TestCryptoCloudWebhookUnknownOrder(t *testing.T) {
	f := newWebhookFixture(t)
	f.seed(t)

	w := f.postForm("/webhook/cryptocloud", url.Values{
		"status":   {"success"},
		"order_id": {"unknown-id"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, int64(0), f.subscriptionCount(t))
}

func TestCryptoCloudWebhookMissingOrderID(t *testing.T) {
	f := newWebhookFixture(t)

	w := f.postForm("/webhook/cryptocloud", url.Values{"status": {"success"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCryptoCloudWebhookDuplicateDelivery(t *testing.T) {
	f := newWebhookFixture(t)
	user, tariff := f.seed(t)

	invoice, err := f.svc.StartCryptoCheckout(context.Background(), user, tariff)
	require.NoError(t, err)

	form := url.Values{"status": {"success"}, "order_id": {invoice.OrderID}}
	assert.Equal(t, http.StatusOK, f.postForm("/webhook/cryptocloud", form).Code)
	assert.Equal(t, http.StatusOK, f.postForm("/webhook/cryptocloud", form).Code)
	assert.Equal(t, int64(1), f.subscriptionCount(t))
}

func tributeBody(t *testing.T, name string, payload map[string]interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{"name": name, "payload": payload})
	require.NoError(t, err)
	return raw
}

func TestTributeWebhookMissingSignature(t *testing.T) {
	f := newWebhookFixture(t)

	w := f.postTribute([]byte(`{"name":"new_subscription","payload":{}}`), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTributeWebhookInvalidSignature(t *testing.T) {
	f := newWebhookFixture(t)
	f.seed(t)

	body := tributeBody(t, "new_subscription", map[string]interface{}{
		"subscription_id":  555,
		"telegram_user_id": 100,
		"channel_name":     "paywall_channel",
		"expires_at":       time.Now().Add(time.Hour).Format(time.RFC3339),
	})

	w := f.postTribute(body, signBody(body, "wrong-secret"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, int64(0), f.subscriptionCount(t), "no ledger mutation on bad signature")
}

func TestTributeWebhookNewSubscription(t *testing.T) {
	f := newWebhookFixture(t)
	f.seed(t)

	expires := time.Now().Add(30 * 24 * time.Hour).UTC().Format(time.RFC3339)
	body := tributeBody(t, "new_subscription", map[string]interface{}{
		"subscription_id":  555,
		"telegram_user_id": 100,
		"channel_name":     "paywall_channel",
		"amount":           15,
		"currency":         "EUR",
		"expires_at":       expires,
	})

	w := f.postTribute(body, signBody(body, testSecret))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), f.subscriptionCount(t))

	sub, err := f.store.GetSubscription(context.Background(), "555")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
}

func TestTributeWebhookMissingFields(t *testing.T) {
	f := newWebhookFixture(t)

	body := tributeBody(t, "new_subscription", map[string]interface{}{
		"telegram_user_id": 100,
	})
	w := f.postTribute(body, signBody(body, testSecret))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTributeWebhookUnresolvedUser(t *testing.T) {
	f := newWebhookFixture(t)
	f.seed(t)

	body := tributeBody(t, "new_subscription", map[string]interface{}{
		"subscription_id":  555,
		"telegram_user_id": 42,
		"channel_name":     "paywall_channel",
		"expires_at":       time.Now().Format(time.RFC3339),
	})
	w := f.postTribute(body, signBody(body, testSecret))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTributeWebhookUnknownEventIsIgnored(t *testing.T) {
	f := newWebhookFixture(t)

	body := tributeBody(t, "payout_created", map[string]interface{}{})
	w := f.postTribute(body, signBody(body, testSecret))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTributeWebhookCancellation(t *testing.T) {
	f := newWebhookFixture(t)
	f.seed(t)

	expires := time.Now().Add(24 * time.Hour).UTC()
	create := tributeBody(t, "new_subscription", map[string]interface{}{
		"subscription_id":  555,
		"telegram_user_id": 100,
		"channel_name":     "paywall_channel",
		"expires_at":       expires.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, f.postTribute(create, signBody(create, testSecret)).Code)

	cancel := tributeBody(t, "cancelled_subscription", map[string]interface{}{
		"subscription_id":  555,
		"telegram_user_id": 100,
		"cancel_reason":    "user_request",
		"expires_at":       expires.Format(time.RFC3339),
	})
	w := f.postTribute(cancel, signBody(cancel, testSecret))
	assert.Equal(t, http.StatusOK, w.Code)

	sub, err := f.store.GetSubscription(context.Background(), "555")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusCancelled, sub.Status)
}

func TestTelegramWebhookUnknownBot(t *testing.T) {
	f := newWebhookFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/webhook/42", strings.NewReader(`{"update_id":1}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.srv.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
