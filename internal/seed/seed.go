// Package seed loads demo users, collects and payments from a JSON file.
package seed

import (
	"context"       // Request scoped context
	"encoding/json" // Mock data decoding
	"errors"        // Error inspection
	"fmt"           // Error wrapping
	"io"            // Input
	"time"          // Date parsing

	"crowdfunding/internal/accounting" // Counter reconciliation
	"crowdfunding/internal/domain"     // Importing domain models
	"crowdfunding/internal/repo"       // Repository functions

	"github.com/google/uuid"     // Unusable passwords
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// Entry is one user with the collects they authored
type Entry struct {
	User struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
	Collects []CollectData `json:"collects"`
}

// CollectData is a collect as it appears in the mock file
type CollectData struct {
	Title           string        `json:"title"`
	Occasion        string        `json:"occasion"`
	Description     string        `json:"description"`
	TargetAmount    int64         `json:"target_amount"`
	CollectedAmount int64         `json:"collected_amount"`
	DonorsCount     int64         `json:"donors_count"`
	CoverImage      *string       `json:"cover_image"`
	EndDate         string        `json:"end_date"`
	Payments        []PaymentData `json:"payments"`
}

// PaymentData is a payment made by the entry's user to the collect
type PaymentData struct {
	Amount    int64  `json:"amount"`
	CreatedAt string `json:"created_at"`
}

// Result counts what was created
type Result struct {
	Users    int
	Collects int
	Payments int
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// Decode reads the mock data file format
func Decode(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode mock data: %w", err)
	}
	return entries, nil
}

// Load inserts entries in one transaction. Users that already exist are
// reused. Counters in the file are written as given and then reconciled
// against the inserted payments.
func Load(ctx context.Context, db *gorm.DB, svc *accounting.Service, entries []Entry) (Result, error) {
	var res Result
	var collectIDs []uint
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := repo.New(tx)
		for _, e := range entries {
			user, created, err := getOrCreateUser(ctx, store, e.User.Username, e.User.Email)
			if err != nil {
				return err
			}
			if created {
				res.Users++
			}
			for _, cd := range e.Collects {
				collect, err := newCollect(user.ID, cd)
				if err != nil {
					return err
				}
				if err := store.CreateCollect(ctx, collect); err != nil {
					return fmt.Errorf("create collect %q: %w", cd.Title, err)
				}
				collectIDs = append(collectIDs, collect.ID)
				res.Collects++
				for _, pd := range cd.Payments {
					createdAt, err := parseDate(pd.CreatedAt)
					if err != nil {
						return fmt.Errorf("payment for %q: %w", cd.Title, err)
					}
					p := &domain.Payment{UserID: user.ID, CollectID: collect.ID, Amount: pd.Amount, CreatedAt: createdAt}
					if err := store.CreatePayment(ctx, p); err != nil {
						return fmt.Errorf("create payment for %q: %w", cd.Title, err)
					}
					res.Payments++
				}
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	for _, id := range collectIDs {
		if _, err := svc.Reconcile(ctx, id); err != nil {
			return res, fmt.Errorf("reconcile collect %d: %w", id, err)
		}
	}
	logrus.WithFields(logrus.Fields{
		"users":    res.Users,
		"collects": res.Collects,
		"payments": res.Payments,
	}).Info("Mock data loaded")
	return res, nil
}

func getOrCreateUser(ctx context.Context, store *repo.Store, username, email string) (*domain.User, bool, error) {
	u, err := store.FindUserByUsername(ctx, username)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}
	// Seeded accounts get a random password nobody knows
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.MinCost)
	if err != nil {
		return nil, false, err
	}
	u = &domain.User{Username: username, Email: email, Password: string(hash)}
	if err := store.CreateUser(ctx, u); err != nil {
		return nil, false, fmt.Errorf("create user %q: %w", username, err)
	}
	return u, true, nil
}

func newCollect(authorID uint, cd CollectData) (*domain.Collect, error) {
	occasion := domain.Occasion(cd.Occasion)
	if !occasion.Valid() {
		return nil, fmt.Errorf("collect %q: unknown occasion %q", cd.Title, cd.Occasion)
	}
	end, err := parseDate(cd.EndDate)
	if err != nil {
		return nil, fmt.Errorf("collect %q: %w", cd.Title, err)
	}
	return &domain.Collect{
		AuthorID:        authorID,
		Title:           cd.Title,
		Occasion:        occasion,
		Description:     cd.Description,
		TargetAmount:    cd.TargetAmount,
		CollectedAmount: cd.CollectedAmount,
		DonorsCount:     cd.DonorsCount,
		CoverImage:      cd.CoverImage,
		EndDate:         end,
	}, nil
}
