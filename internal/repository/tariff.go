package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jpagency/paywall_bot/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) GetTariff(ctx context.Context, id string) (*models.Tariff, error) {
	var tariff models.Tariff
	err := r.db.WithContext(ctx).First(&tariff, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tariff %s: %w", id, err)
	}
	return &tariff, nil
}

// ListActiveTariffs принимает категорию явно: это граница мультитенантности,
// а не скрытый фильтр внутри адаптера.
func (r *Repository) ListActiveTariffs(ctx context.Context, category string) ([]models.Tariff, error) {
	var tariffs []models.Tariff
	err := r.db.WithContext(ctx).
		Where("active = ? AND category = ?", true, category).
		Order("price").
		Find(&tariffs).
		Error
	if err != nil {
		return nil, err
	}
	return tariffs, nil
}

func (r *Repository) GetTariffByChannel(ctx context.Context, channel string) (*models.Tariff, error) {
	var tariff models.Tariff
	err := r.db.WithContext(ctx).
		Where("active = ? AND channel = ?", true, channel).
		First(&tariff).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tariff by channel %s: %w", channel, err)
	}
	return &tariff, nil
}
