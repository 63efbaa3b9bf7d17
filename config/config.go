package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	BotToken  string `mapstructure:"BOT_TOKEN"`
	BotTokens string `mapstructure:"BOT_TOKENS"`
	DB_URL    string `mapstructure:"DB_URL"`
	Port      string `mapstructure:"PORT"`

	WebhookBaseURL        string `mapstructure:"WEBHOOK_BASE_URL"`
	WebhookTimeoutSeconds int    `mapstructure:"WEBHOOK_TIMEOUT_SECONDS"`

	CryptoCloudAPIKey string `mapstructure:"CRYPTOCLOUD_API_KEY"`
	CryptoCloudShopID string `mapstructure:"CRYPTOCLOUD_SHOP_ID"`
	TributeAPIKey     string `mapstructure:"TRIBUTE_API_KEY"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
}

func LoadConfig(path string) (config Config, err error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return config, fmt.Errorf("ошибка получения абсолютного пути: %w", err)
	}

	viper.AddConfigPath(filepath.Dir(absPath))
	viper.SetConfigName(filepath.Base(absPath))
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("WEBHOOK_TIMEOUT_SECONDS", 15)

	if err := viper.ReadInConfig(); err != nil {
		return config, fmt.Errorf("ошибка чтения конфигурации: %w", err)
	}

	if err := viper.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("ошибка преобразования конфига: %w", err)
	}

	return config, nil
}
