package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jpagency/paywall_bot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *Repository) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).First(&sub, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription %s: %w", id, err)
	}
	return &sub, nil
}

func (r *Repository) GetActiveSubscription(ctx context.Context, userID int64, tariffID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND tariff_id = ? AND status = ?", userID, tariffID, models.SubscriptionStatusActive).
		First(&sub).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *Repository) ListSubscriptionsByUser(ctx context.Context, userID int64) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("ends_at DESC").
		Find(&subs).
		Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *Repository) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// UpsertSubscription сходится к одному состоянию при любом порядке доставки:
// вставка при отсутствии строки, иначе обновление срока, суммы и статуса.
// StartedAt и UserID повторная доставка не трогает.
func (r *Repository) UpsertSubscription(ctx context.Context, sub *models.Subscription) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"ends_at", "status", "price", "currency"}),
		}).
		Create(sub).
		Error
	if err != nil {
		return fmt.Errorf("failed to upsert subscription %s: %w", sub.ID, err)
	}
	return nil
}

// CancelSubscription — целевой условный UPDATE по id провайдера.
func (r *Repository) CancelSubscription(ctx context.Context, id string, reason string, endsAt time.Time) (int64, error) {
	patch := map[string]interface{}{
		"status":        models.SubscriptionStatusCancelled,
		"cancel_reason": reason,
	}
	if !endsAt.IsZero() {
		patch["ends_at"] = endsAt
	}
	res := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ?", id).
		Updates(patch)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to cancel subscription %s: %w", id, res.Error)
	}
	return res.RowsAffected, nil
}

// ExpireDueSubscriptions переводит просроченные активные подписки в expired.
func (r *Repository) ExpireDueSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("status = ? AND ends_at < ?", models.SubscriptionStatusActive, now).
		Update("status", models.SubscriptionStatusExpired)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
