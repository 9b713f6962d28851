// Package repo holds the explicit repository functions the service uses
// instead of framework-level object mapping.
package repo

import (
	"errors" // Error inspection

	"crowdfunding/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Store runs queries against a database handle or an open transaction
type Store struct {
	db *gorm.DB
}

// New creates a store over db
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx returns a store bound to the transaction tx
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

// DB returns the underlying handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// translate maps GORM lookup failures onto domain errors
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
