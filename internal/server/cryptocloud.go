package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jpagency/paywall_bot/internal/service"
)

// handleCryptoCloud принимает form-encoded postback CryptoCloud.
//
// Дисциплина статусов: 200 для валидных, но игнорируемых событий
// (не-success статус, повторная доставка) — провайдер ретраит всё, что не 2xx,
// и «проигнорировано» нельзя путать с «упало». 404 только для неизвестного
// order_id, 500 для внутренних сбоев.
func (s *Server) handleCryptoCloud(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	status := c.PostForm("status")
	orderID := c.PostForm("order_id")

	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "order_id is required"})
		return
	}

	if status != "success" {
		s.logger.Infof("Ignoring cryptocloud webhook for order %s with status %q", orderID, status)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	raw, _ := json.Marshal(c.Request.PostForm)

	err := s.svc.ConfirmCryptoPayment(ctx, orderID, string(raw))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "order not found"})
	default:
		s.logger.Errorf("Failed to process cryptocloud webhook for order %s: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
	}
}
