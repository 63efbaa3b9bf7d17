package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jpagency/paywall_bot/config"
	"github.com/jpagency/paywall_bot/internal/service"
	"github.com/jpagency/paywall_bot/utils"
)

// UpdateHandler обрабатывает входящий telegram update конкретного бота.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// Server — вебхук-роутер: по одному endpoint на платёжного провайдера плюс
// endpoint обновлений telegram на каждого бота.
type Server struct {
	engine        *gin.Engine
	svc           *service.Service
	handlers      map[int64]UpdateHandler
	tributeSecret string
	timeout       time.Duration
	logger        *utils.Logger
}

func New(svc *service.Service, handlers map[int64]UpdateHandler, cfg *config.Config, logger *utils.Logger) *Server {
	timeout := time.Duration(cfg.WebhookTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	s := &Server{
		engine:        gin.New(),
		svc:           svc,
		handlers:      handlers,
		tributeSecret: cfg.TributeAPIKey,
		timeout:       timeout,
		logger:        logger,
	}

	s.engine.Use(gin.Recovery())

	s.engine.POST("/webhook/cryptocloud", s.handleCryptoCloud)
	s.engine.POST("/webhook/tribute", s.handleTribute)
	s.engine.POST("/webhook/:botID", s.handleTelegramUpdate)

	return s
}

// Engine отдаёт роутер для httptest.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Run(addr string) error {
	s.logger.Infof("🚀 Webhook server listening on %s", addr)
	return s.engine.Run(addr)
}

// requestContext навешивает общий дедлайн обработки: дольше держать
// соединение провайдера открытым нельзя.
func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.timeout)
}
