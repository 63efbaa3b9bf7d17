package models

import "time"

const (
	InvoiceStatusCreated = "created"
	InvoiceStatusPaid    = "paid"

	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusExpired   = "expired"
)

// User — покупатель. ID совпадает с telegram id.
// Категория и канал задаются при онбординге и больше не меняются,
// мутируется только язык.
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Lang      string    `json:"lang"`
	Category  string    `gorm:"index" json:"category"`
	Channel   string    `json:"channel"`
	BotID     int64     `json:"bot_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Tariff принадлежит внешнему каталогу, здесь только читается.
// Lifetime хранится в минутах.
type Tariff struct {
	ID          string  `gorm:"primaryKey" json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	Lifetime    int64   `json:"lifetime"`
	Active      bool    `gorm:"default:true" json:"active"`
	Category    string  `gorm:"index" json:"category"`
	Channel     string  `json:"channel"`
	PaymentLink string  `json:"payment_link"`
}

// Invoice — одна попытка крипто-оплаты. OrderID — ключ идемпотентности
// для вебхука CryptoCloud. Никогда не удаляется.
type Invoice struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"index" json:"user_id"`
	TariffID  string    `json:"tariff_id"`
	OrderID   string    `gorm:"uniqueIndex" json:"order_id"`
	PayURL    string    `json:"pay_url"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `gorm:"default:created" json:"status"`
	Payload   string    `json:"payload"`
	BotID     int64     `json:"bot_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subscription — оплаченный период доступа. Для Tribute ID приходит от
// провайдера и служит ключом идемпотентности, для CryptoCloud генерируется.
type Subscription struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	UserID       int64     `gorm:"index" json:"user_id"`
	TariffID     string    `gorm:"index" json:"tariff_id"`
	StartedAt    time.Time `json:"started_at"`
	EndsAt       time.Time `json:"ends_at"`
	Status       string    `gorm:"default:active;index" json:"status"`
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"`
	CancelReason string    `json:"cancel_reason"`
}

// BotConfig загружается один раз на старте процесса.
type BotConfig struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	Token    string `json:"token"`
	Category string `json:"category"`
	Active   bool   `gorm:"default:true" json:"active"`
}
