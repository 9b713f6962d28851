package api

import (
	"net/http" // HTTP status codes

	"crowdfunding/internal/accounting" // Donation accounting
	"crowdfunding/internal/cache"      // Cached reads
	"crowdfunding/internal/domain"     // Importing domain models
	"crowdfunding/internal/middleware" // Auth helpers
	"crowdfunding/internal/notify"     // Email notifications
	"crowdfunding/internal/repo"       // Repository functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// DonationAddedMessage is returned when a payment is recorded
const DonationAddedMessage = "Donation added successfully"

// PaymentRequest represents a donation
type PaymentRequest struct {
	Collect uint  `json:"collect" form:"collect" binding:"required"` // Collect id
	Amount  int64 `json:"amount" form:"amount" binding:"required"`   // Whole currency units
}

// canSeePayment reports whether userID is the donor or the collect author
func canSeePayment(p *domain.Payment, userID uint) bool {
	return p.UserID == userID || (p.Collect != nil && p.Collect.AuthorID == userID)
}

// ListPaymentsHandler returns the payments made by the requesting user
func ListPaymentsHandler(store *repo.Store, ch *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()
		key := cache.MakeKey(cache.PaymentList, userID, 0)
		resp, err := cache.GetOrCompute(ctx, ch, key, func() ([]PaymentResponse, error) {
			payments, err := store.ListPaymentsByUser(ctx, userID)
			if err != nil {
				return nil, err
			}
			out := make([]PaymentResponse, 0, len(payments))
			for i := range payments {
				out = append(out, newPaymentResponse(&payments[i], paymentTitle(&payments[i])))
			}
			return out, nil
		})
		if err != nil {
			internalError(c, "Failed to list payments", err, logrus.Fields{"user_id": userID})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// CreatePaymentHandler records a donation and notifies the collect author
func CreatePaymentHandler(svc *accounting.Service, store *repo.Store, mail notify.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req PaymentRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: collect and a whole amount are required"})
			return
		}
		ctx := c.Request.Context()
		donor, err := store.FindUser(ctx, userID)
		if err != nil {
			domainError(c, "Failed to load user", err, logrus.Fields{"user_id": userID})
			return
		}
		_, collect, err := svc.RecordPayment(ctx, req.Collect, donor, req.Amount)
		if err != nil {
			domainError(c, "Failed to record payment", err, logrus.Fields{
				"user_id":    userID,
				"collect_id": req.Collect,
				"amount":     req.Amount,
			})
			return
		}
		notify.Send(ctx, mail, notify.DonationJob(donor.Username, req.Amount, collect.Title, collect.Author.Email))
		c.JSON(http.StatusOK, gin.H{"message": DonationAddedMessage})
	}
}

// GetPaymentHandler returns one payment to its donor or the collect author
func GetPaymentHandler(store *repo.Store, ch *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := middleware.ParamID(c, "id")
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		ctx := c.Request.Context()
		key := cache.MakeKey(cache.PaymentDetail, userID, id)
		resp, err := cache.GetOrCompute(ctx, ch, key, func() (PaymentResponse, error) {
			p, err := store.FindPayment(ctx, id)
			if err != nil {
				return PaymentResponse{}, err
			}
			if !canSeePayment(p, userID) {
				return PaymentResponse{}, domain.ErrForbidden
			}
			return newPaymentResponse(p, paymentTitle(p)), nil
		})
		if err != nil {
			domainError(c, "Failed to load payment", err, logrus.Fields{"payment_id": id})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// DeletePaymentHandler revokes a payment; allowed for its donor and the collect author
func DeletePaymentHandler(svc *accounting.Service, store *repo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := middleware.ParamID(c, "id")
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		ctx := c.Request.Context()
		p, err := store.FindPayment(ctx, id)
		if err != nil {
			domainError(c, "Failed to load payment", err, logrus.Fields{"payment_id": id})
			return
		}
		if !canSeePayment(p, userID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the donor or the collect author can delete this payment"})
			return
		}
		if err := svc.RevokePayment(ctx, p); err != nil {
			domainError(c, "Failed to delete payment", err, logrus.Fields{
				"payment_id": id,
				"user_id":    userID,
			})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
