package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jpagency/paywall_bot/internal/payment"
	"github.com/jpagency/paywall_bot/internal/service"
)

// handleTribute принимает подписанный JSON-конверт Tribute.
// Подпись сверяется по сырому телу до любого разбора JSON.
func (s *Server) handleTribute(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "failed to read body"})
		return
	}

	signature := c.GetHeader("trbt-signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "missing signature"})
		return
	}
	if !payment.VerifyTributeSignature(rawBody, signature, s.tributeSecret) {
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "invalid signature"})
		return
	}

	var envelope payment.TributeEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "malformed envelope"})
		return
	}

	switch envelope.Name {
	case payment.TributeEventNewSubscription:
		ev, err := parseTributeSubscription(envelope.Payload)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
		s.respondTribute(c, s.svc.ApplyTributeSubscription(ctx, ev))
	case payment.TributeEventCancelledSubscription:
		ev, err := parseTributeSubscription(envelope.Payload)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
		s.respondTribute(c, s.svc.CancelTributeSubscription(ctx, ev))
	default:
		// Неизвестные события валидны и игнорируемы.
		s.logger.Infof("Ignoring tribute event %q", envelope.Name)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func parseTributeSubscription(raw json.RawMessage) (*payment.TributeSubscription, error) {
	var ev payment.TributeSubscription
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, errors.New("malformed payload")
	}
	if ev.SubscriptionID == 0 {
		return nil, errors.New("subscription_id is required")
	}
	if ev.TelegramUserID == 0 {
		return nil, errors.New("telegram_user_id is required")
	}
	return &ev, nil
}

func (s *Server) respondTribute(c *gin.Context, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrTariffNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
	default:
		s.logger.Errorf("Failed to process tribute webhook: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
	}
}
