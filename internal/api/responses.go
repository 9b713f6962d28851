package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"time"     // Timestamps

	"crowdfunding/internal/domain"     // Importing domain models
	"crowdfunding/internal/middleware" // Context keys

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// UserResponse is a user as embedded in collects and payments
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PaymentResponse is the wire form of a payment; Collect holds the collect title
type PaymentResponse struct {
	ID        uint         `json:"id"`
	Collect   string       `json:"collect"`
	User      UserResponse `json:"user"`
	Amount    int64        `json:"amount"`
	CreatedAt time.Time    `json:"created_at"`
}

// CollectResponse is the wire form of a collect with its payments
type CollectResponse struct {
	ID              uint              `json:"id"`
	Author          UserResponse      `json:"author"`
	Title           string            `json:"title"`
	Occasion        domain.Occasion   `json:"occasion"`
	Description     string            `json:"description"`
	TargetAmount    int64             `json:"target_amount"`
	CollectedAmount int64             `json:"collected_amount"`
	DonorsCount     int64             `json:"donors_count"`
	CoverImage      *string           `json:"cover_image"`
	EndDate         time.Time         `json:"end_date"`
	Payments        []PaymentResponse `json:"payments"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

func newPaymentResponse(p *domain.Payment, collectTitle string) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		Collect:   collectTitle,
		User:      newUserResponse(&p.User),
		Amount:    p.Amount,
		CreatedAt: p.CreatedAt,
	}
}

// paymentTitle returns the title of the payment's collect when loaded
func paymentTitle(p *domain.Payment) string {
	if p.Collect == nil {
		return ""
	}
	return p.Collect.Title
}

func newCollectResponse(c *domain.Collect) CollectResponse {
	payments := make([]PaymentResponse, 0, len(c.Payments))
	for i := range c.Payments {
		payments = append(payments, newPaymentResponse(&c.Payments[i], c.Title))
	}
	return CollectResponse{
		ID:              c.ID,
		Author:          newUserResponse(&c.Author),
		Title:           c.Title,
		Occasion:        c.Occasion,
		Description:     c.Description,
		TargetAmount:    c.TargetAmount,
		CollectedAmount: c.CollectedAmount,
		DonorsCount:     c.DonorsCount,
		CoverImage:      c.CoverImage,
		EndDate:         c.EndDate,
		Payments:        payments,
	}
}

// internalError logs err with fields and answers 500 with msg
func internalError(c *gin.Context, msg string, err error, fields logrus.Fields) {
	entry := logrus.WithFields(fields).WithField("error", err.Error())
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		entry = entry.WithField("request_id", id)
	}
	entry.Error(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// domainError maps domain errors to their HTTP status and answers 500 for
// anything else
func domainError(c *gin.Context, msg string, err error, fields logrus.Fields) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, domain.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be a positive integer"})
	case errors.Is(err, domain.ErrAggregateUnderflow):
		logrus.WithFields(fields).Warn("Collect totals would drop below zero")
		c.JSON(http.StatusConflict, gin.H{"error": "Collect totals would drop below zero"})
	default:
		internalError(c, msg, err, fields)
	}
}
