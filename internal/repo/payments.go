package repo

import (
	"context" // Request scoped context

	"crowdfunding/internal/domain" // Importing domain models

	"gorm.io/gorm/clause" // Association handling
)

// CreatePayment inserts p; donor and collect must already exist
func (s *Store) CreatePayment(ctx context.Context, p *domain.Payment) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

// FindPayment returns the payment with its donor and collect
func (s *Store) FindPayment(ctx context.Context, id uint) (*domain.Payment, error) {
	var p domain.Payment
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Collect").
		Preload("Collect.Author").
		First(&p, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// ListPaymentsByUser returns every payment made by userID
func (s *Store) ListPaymentsByUser(ctx context.Context, userID uint) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Collect").
		Where("user_id = ?", userID).
		Order("id").
		Find(&payments).Error
	return payments, err
}

// DeletePayment removes the payment row
func (s *Store) DeletePayment(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&domain.Payment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SumPayments returns the live total and count of payments for a collect
func (s *Store) SumPayments(ctx context.Context, collectID uint) (int64, int64, error) {
	var row struct {
		Total  int64
		Donors int64
	}
	err := s.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS donors").
		Where("collect_id = ?", collectID).
		Scan(&row).Error
	return row.Total, row.Donors, err
}
