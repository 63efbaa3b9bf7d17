package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jpagency/paywall_bot/utils"
)

const defaultCryptoCloudAPIURL = "https://api.cryptocloud.plus/v2"

// CryptoCloudClient создаёт счета на оплату через hosted-API CryptoCloud.
// Подтверждение оплаты приходит отдельным вебхуком, здесь только исходящий вызов.
type CryptoCloudClient struct {
	apiKey     string
	shopID     string
	baseURL    string
	httpClient *http.Client
	logger     *utils.Logger
}

func NewCryptoCloudClient(apiKey, shopID string, logger *utils.Logger) *CryptoCloudClient {
	return &CryptoCloudClient{
		apiKey:  apiKey,
		shopID:  shopID,
		baseURL: defaultCryptoCloudAPIURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// SetBaseURL используется в тестах для подмены endpoint.
func (c *CryptoCloudClient) SetBaseURL(url string) {
	c.baseURL = url
}

// CreatedInvoice — результат создания счёта: ссылка на оплату и uuid счёта
// на стороне провайдера.
type CreatedInvoice struct {
	UUID string `json:"uuid"`
	Link string `json:"link"`
}

type createInvoiceRequest struct {
	ShopID   string  `json:"shop_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	OrderID  string  `json:"order_id"`
}

type createInvoiceResponse struct {
	Status string         `json:"status"`
	Result CreatedInvoice `json:"result"`
}

func (c *CryptoCloudClient) CreateInvoice(ctx context.Context, amount float64, currency string, orderID string) (*CreatedInvoice, error) {
	body, err := json.Marshal(createInvoiceRequest{
		ShopID:   c.shopID,
		Amount:   amount,
		Currency: currency,
		OrderID:  orderID,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/invoice/create", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cryptocloud request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		c.logger.Errorf("CryptoCloud returned %d: %s", resp.StatusCode, string(raw))
		return nil, fmt.Errorf("cryptocloud returned status %d", resp.StatusCode)
	}

	var parsed createInvoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode cryptocloud response: %w", err)
	}

	if parsed.Status != "success" {
		return nil, fmt.Errorf("cryptocloud rejected invoice for order %s", orderID)
	}

	return &parsed.Result, nil
}
