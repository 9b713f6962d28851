package repo

import (
	"context" // Request scoped context

	"crowdfunding/internal/domain" // Importing domain models

	"gorm.io/gorm/clause" // Association handling
)

// CreateUser inserts u, rejecting a username that is already taken
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrDuplicateUser
	}
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error
}

// FindUser returns the user with the given id
func (s *Store) FindUser(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// FindUserByUsername returns the user registered under username
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}
