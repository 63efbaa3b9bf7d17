package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleTelegramUpdate — входящие обновления telegram для конкретного бота.
// Telegram ретраит не-2xx, поэтому ошибки диалогового слоя сюда не протекают.
func (s *Server) handleTelegramUpdate(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	botID, err := strconv.ParseInt(c.Param("botID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "unknown bot"})
		return
	}

	handler, ok := s.handlers[botID]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "unknown bot"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "failed to read body"})
		return
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "malformed update"})
		return
	}

	handler.HandleUpdate(ctx, update)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
