package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jpagency/paywall_bot/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *Repository) GetInvoiceByOrderID(ctx context.Context, orderID string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&invoice).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice by order %s: %w", orderID, err)
	}
	return &invoice, nil
}

// MarkInvoicePaid — единственный разрешённый переход created -> paid.
// Условный одно-строчный UPDATE: при повторной доставке вебхука или
// неизвестном order_id затрагивает 0 строк и ничего не перезаписывает.
func (r *Repository) MarkInvoicePaid(ctx context.Context, orderID string, payload string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("order_id = ? AND status = ?", orderID, models.InvoiceStatusCreated).
		Updates(map[string]interface{}{
			"status":  models.InvoiceStatusPaid,
			"payload": payload,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark invoice paid for order %s: %w", orderID, res.Error)
	}
	return res.RowsAffected, nil
}
