// Package accounting keeps each collect's collected_amount and donors_count
// in step with its payments. Every payment write and the matching counter
// update commit in one transaction.
package accounting

import (
	"context" // Request scoped context
	"time"    // Audit timestamps

	"crowdfunding/internal/cache"  // Cache keys
	"crowdfunding/internal/domain" // Importing domain models
	"crowdfunding/internal/repo"   // Repository functions

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Invalidator drops cached reads made stale by a write
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// Service applies payments to collect totals
type Service struct {
	db    *gorm.DB
	store *repo.Store
	cache Invalidator
}

// New creates a service; cache may be nil
func New(db *gorm.DB, cache Invalidator) *Service {
	return &Service{db: db, store: repo.New(db), cache: cache}
}

// RecordPayment creates a payment of amount by donor to the collect and
// adds it to the collect totals. It returns the payment and the collect
// with its author and updated totals.
func (s *Service) RecordPayment(ctx context.Context, collectID uint, donor *domain.User, amount int64) (*domain.Payment, *domain.Collect, error) {
	if amount <= 0 {
		return nil, nil, domain.ErrInvalidAmount
	}
	var payment *domain.Payment
	var collect *domain.Collect
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)
		c, err := store.FindCollectWithAuthor(ctx, collectID)
		if err != nil {
			return err
		}
		p := &domain.Payment{UserID: donor.ID, CollectID: collectID, Amount: amount}
		if err := store.CreatePayment(ctx, p); err != nil {
			return err
		}
		if err := store.AdjustCollectTotals(ctx, collectID, amount, 1); err != nil {
			return err
		}
		// Re-read so the caller sees totals including concurrent donations
		c, err = store.FindCollectWithAuthor(ctx, collectID)
		if err != nil {
			return err
		}
		payment, collect = p, c
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	payment.User = *donor
	payment.Collect = collect
	s.invalidate(ctx, collect.ID, collect.AuthorID, donor.ID, 0)
	logrus.WithFields(logrus.Fields{
		"payment_id":       payment.ID,
		"collect_id":       collect.ID,
		"user_id":          donor.ID,
		"amount":           amount,
		"collected_amount": collect.CollectedAmount,
		"donors_count":     collect.DonorsCount,
		"timestamp":        time.Now().Format(time.RFC3339),
	}).Info("Payment recorded")
	return payment, collect, nil
}

// RevokePayment removes the payment and subtracts it from the collect
// totals. Totals never drop below zero: such a revoke is rejected with
// domain.ErrAggregateUnderflow. Revoking an already deleted payment
// returns domain.ErrNotFound and leaves the totals untouched.
func (s *Service) RevokePayment(ctx context.Context, payment *domain.Payment) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)
		if err := store.AdjustCollectTotals(ctx, payment.CollectID, -payment.Amount, -1); err != nil {
			return err
		}
		return store.DeletePayment(ctx, payment.ID)
	})
	if err != nil {
		return err
	}
	authorID := uint(0)
	if payment.Collect != nil {
		authorID = payment.Collect.AuthorID
	}
	s.invalidate(ctx, payment.CollectID, authorID, payment.UserID, payment.ID)
	logrus.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"collect_id": payment.CollectID,
		"user_id":    payment.UserID,
		"amount":     payment.Amount,
		"timestamp":  time.Now().Format(time.RFC3339),
	}).Info("Payment revoked")
	return nil
}

// Reconcile recomputes the collect totals from its payment rows
func (s *Service) Reconcile(ctx context.Context, collectID uint) (*domain.Collect, error) {
	var collect *domain.Collect
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)
		c, err := store.FindCollectWithAuthor(ctx, collectID)
		if err != nil {
			return err
		}
		total, donors, err := store.SumPayments(ctx, collectID)
		if err != nil {
			return err
		}
		if c.CollectedAmount != total || c.DonorsCount != donors {
			logrus.WithFields(logrus.Fields{
				"collect_id":       collectID,
				"collected_amount": c.CollectedAmount,
				"donors_count":     c.DonorsCount,
				"payments_total":   total,
				"payments_count":   donors,
			}).Warn("Collect totals drifted, repairing")
		}
		if err := store.SetCollectTotals(ctx, collectID, total, donors); err != nil {
			return err
		}
		c.CollectedAmount, c.DonorsCount = total, donors
		collect = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, collect.ID, collect.AuthorID, 0, 0)
	return collect, nil
}

// invalidate clears every cached read that embeds the collect totals or
// the donor's payments. Detail entries are dropped for all users.
func (s *Service) invalidate(ctx context.Context, collectID, authorID, donorID, paymentID uint) {
	if s.cache == nil {
		return
	}
	var keys []string
	if authorID != 0 {
		keys = append(keys, cache.MakeKey(cache.CollectList, authorID, 0))
	}
	if donorID != 0 {
		keys = append(keys, cache.MakeKey(cache.PaymentList, donorID, 0))
	}
	_ = s.cache.Invalidate(ctx, keys...)
	_ = s.cache.InvalidatePrefix(ctx, cache.ObjectPrefix(cache.CollectDetail, collectID))
	if paymentID != 0 {
		_ = s.cache.InvalidatePrefix(ctx, cache.ObjectPrefix(cache.PaymentDetail, paymentID))
	}
}
