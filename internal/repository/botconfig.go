package repository

import (
	"context"

	"github.com/jpagency/paywall_bot/internal/models"
)

func (r *Repository) ListActiveBotConfigs(ctx context.Context) ([]models.BotConfig, error) {
	var configs []models.BotConfig
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Find(&configs).
		Error
	if err != nil {
		return nil, err
	}
	return configs, nil
}
