package repository

import (
	"context"
	"errors"

	"github.com/jpagency/paywall_bot/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// UpdateUserLang — единственная разрешённая мутация пользователя.
func (r *Repository) UpdateUserLang(ctx context.Context, id int64, lang string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("lang", lang).
		Error
}
