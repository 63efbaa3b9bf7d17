package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Имена событий Tribute, которые двигают жизненный цикл подписки.
const (
	TributeEventNewSubscription       = "new_subscription"
	TributeEventCancelledSubscription = "cancelled_subscription"
)

// TributeEnvelope — внешний конверт вебхука Tribute.
type TributeEnvelope struct {
	Name      string          `json:"name"`
	CreatedAt string          `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

// TributeSubscription — payload событий new_subscription / cancelled_subscription.
type TributeSubscription struct {
	SubscriptionName string    `json:"subscription_name"`
	SubscriptionID   int64     `json:"subscription_id"`
	PeriodDays       int       `json:"period_days"`
	Period           string    `json:"period"`
	Price            float64   `json:"price"`
	Amount           float64   `json:"amount"`
	Currency         string    `json:"currency"`
	UserID           int64     `json:"user_id"`
	TelegramUserID   int64     `json:"telegram_user_id"`
	ChannelID        int64     `json:"channel_id"`
	ChannelName      string    `json:"channel_name"`
	ExpiresAt        time.Time `json:"expires_at"`
	CancelReason     string    `json:"cancel_reason"`
}

// VerifyTributeSignature сверяет hex HMAC-SHA256 от сырого тела запроса.
// Считать подпись нужно до разбора JSON: повторная сериализация меняет
// байты и ломает сверку. Отсутствие секрета или заголовка — отказ.
func VerifyTributeSignature(rawBody []byte, signatureHeader string, secret string) bool {
	if secret == "" || signatureHeader == "" {
		return false
	}

	provided, err := hex.DecodeString(signatureHeader)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return hmac.Equal(provided, mac.Sum(nil))
}
