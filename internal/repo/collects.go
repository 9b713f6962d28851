package repo

import (
	"context" // Request scoped context

	"crowdfunding/internal/domain" // Importing domain models

	"gorm.io/gorm"        // GORM ORM library
	"gorm.io/gorm/clause" // Association handling
)

// withCollectRelations preloads the author and the payments with their donors
func withCollectRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payments.id")
		}).
		Preload("Payments.User")
}

// CreateCollect inserts c; the author must already exist
func (s *Store) CreateCollect(ctx context.Context, c *domain.Collect) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

// FindCollect returns the collect with its author and payments
func (s *Store) FindCollect(ctx context.Context, id uint) (*domain.Collect, error) {
	var c domain.Collect
	if err := withCollectRelations(s.db.WithContext(ctx)).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// FindCollectWithAuthor returns the collect with its author only
func (s *Store) FindCollectWithAuthor(ctx context.Context, id uint) (*domain.Collect, error) {
	var c domain.Collect
	if err := s.db.WithContext(ctx).Preload("Author").First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// ListCollectsByAuthor returns every collect created by authorID
func (s *Store) ListCollectsByAuthor(ctx context.Context, authorID uint) ([]domain.Collect, error) {
	var collects []domain.Collect
	err := withCollectRelations(s.db.WithContext(ctx)).
		Where("author_id = ?", authorID).
		Order("id").
		Find(&collects).Error
	return collects, err
}

// UpdateCollect writes the given client-controlled columns. Aggregate
// counters are never part of fields, so a concurrent donation is not lost.
func (s *Store) UpdateCollect(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&domain.Collect{}).Where("id = ?", id).Updates(fields).Error
}

// DeleteCollect removes the collect and all of its payments in one
// transaction. It returns the ids of donors whose payments were removed.
func (s *Store) DeleteCollect(ctx context.Context, id uint) ([]uint, error) {
	var donors []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Remember affected donors before their payments go away
		if err := tx.Model(&domain.Payment{}).Where("collect_id = ?", id).Distinct("user_id").Pluck("user_id", &donors).Error; err != nil {
			return err
		}
		if err := tx.Where("collect_id = ?", id).Delete(&domain.Payment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Collect{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return donors, nil
}

// AdjustCollectTotals atomically adds the deltas to the collect counters.
// Negative deltas only apply when the counters stay non-negative; otherwise
// domain.ErrAggregateUnderflow is returned and nothing changes.
func (s *Store) AdjustCollectTotals(ctx context.Context, id uint, amountDelta, donorsDelta int64) error {
	q := s.db.WithContext(ctx).Model(&domain.Collect{}).Where("id = ?", id)
	if amountDelta < 0 {
		q = q.Where("collected_amount >= ?", -amountDelta)
	}
	if donorsDelta < 0 {
		q = q.Where("donors_count >= ?", -donorsDelta)
	}
	res := q.Updates(map[string]any{
		"collected_amount": gorm.Expr("collected_amount + ?", amountDelta),
		"donors_count":     gorm.Expr("donors_count + ?", donorsDelta),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// Nothing updated: either the collect is gone or the floor guard held
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.Collect{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrAggregateUnderflow
}

// SetCollectTotals overwrites the counters with recomputed values
func (s *Store) SetCollectTotals(ctx context.Context, id uint, collected, donors int64) error {
	return s.db.WithContext(ctx).Model(&domain.Collect{}).Where("id = ?", id).Updates(map[string]any{
		"collected_amount": collected,
		"donors_count":     donors,
	}).Error
}
