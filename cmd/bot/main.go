package main

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jpagency/paywall_bot/config"
	"github.com/jpagency/paywall_bot/db"
	"github.com/jpagency/paywall_bot/internal/bot"
	"github.com/jpagency/paywall_bot/internal/payment"
	"github.com/jpagency/paywall_bot/internal/registry"
	"github.com/jpagency/paywall_bot/internal/repository"
	"github.com/jpagency/paywall_bot/internal/server"
	"github.com/jpagency/paywall_bot/internal/service"
	"github.com/jpagency/paywall_bot/utils"
	"github.com/robfig/cron/v3"
)

func main() {
	logger := utils.InitLogger()
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		logger.Fatal("Failed to load config: ", err)
	}

	database, err := db.ConnectDb(cfg.DB_URL, logger)
	if err != nil {
		logger.Fatal(err)
	}

	if err := db.Migrate(database, true, logger); err != nil {
		logger.Fatal(err)
	}

	repo := repository.NewRepository(database, logger)

	ctx := context.Background()
	configs, err := registry.LoadConfigs(ctx, repo, &cfg, logger)
	if err != nil {
		logger.Fatal("Failed to load bot configs: ", err)
	}

	reg, err := registry.New(configs, registry.TelegramAPIFactory, logger)
	if err != nil {
		logger.Fatal("Failed to init bot registry: ", err)
	}

	crypto := payment.NewCryptoCloudClient(cfg.CryptoCloudAPIKey, cfg.CryptoCloudShopID, logger)
	svc := service.New(repo, reg, crypto, &cfg, logger)

	var states bot.StateStore
	if cfg.RedisAddr != "" {
		redisStates, err := bot.NewRedisStateStore(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Fatal("Failed to connect to redis: ", err)
		}
		states = redisStates
	} else {
		states = bot.NewMemoryStateStore()
	}

	handlers := make(map[int64]server.UpdateHandler, len(reg.All()))
	for _, inst := range reg.All() {
		handlers[inst.ID] = bot.New(inst.ID, inst.Category, inst.API, svc, states, logger)

		if cfg.WebhookBaseURL != "" {
			url := fmt.Sprintf("%s/webhook/%d", cfg.WebhookBaseURL, inst.ID)
			wh, err := tgbotapi.NewWebhook(url)
			if err != nil {
				logger.Errorf("Failed to build webhook config for bot %d: %v", inst.ID, err)
				continue
			}
			if _, err := inst.API.Request(wh); err != nil {
				logger.Errorf("Failed to set webhook for bot %d: %v", inst.ID, err)
			}
		}
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", func() {
		svc.ExpireOverdue(context.Background())
	}); err != nil {
		logger.Fatal("Failed to schedule expiry sweep: ", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := server.New(svc, handlers, &cfg, logger)
	if err := srv.Run(":" + cfg.Port); err != nil {
		logger.Fatal(err)
	}
}
