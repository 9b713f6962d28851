package api

import (
	"context"  // Request scoped context
	"errors"   // Error values
	"fmt"      // Error formatting
	"net/http" // HTTP status codes
	"net/url"  // Cover image validation
	"strings"  // String manipulation
	"time"     // End date parsing

	"crowdfunding/internal/cache"      // Cached reads
	"crowdfunding/internal/domain"     // Importing domain models
	"crowdfunding/internal/middleware" // Auth helpers
	"crowdfunding/internal/notify"     // Email notifications
	"crowdfunding/internal/repo"       // Repository functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// Accepted end_date layouts
var endDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

// CollectRequest is the client writable part of a collect. A nil field is
// absent from the request; author and the totals are not accepted.
type CollectRequest struct {
	Title        *string `json:"title" form:"title"`
	Occasion     *string `json:"occasion" form:"occasion"`
	Description  *string `json:"description" form:"description"`
	TargetAmount *int64  `json:"target_amount" form:"target_amount"`
	CoverImage   *string `json:"cover_image" form:"cover_image"` // Image URL, empty clears it
	EndDate      *string `json:"end_date" form:"end_date"`

	endDate time.Time // Parsed EndDate
}

// validate checks the present fields; when partial is false the fields a
// collect cannot exist without must be present too
func (r *CollectRequest) validate(partial bool) error {
	if !partial {
		switch {
		case r.Title == nil:
			return errors.New("title is required")
		case r.Occasion == nil:
			return errors.New("occasion is required")
		case r.Description == nil:
			return errors.New("description is required")
		case r.EndDate == nil:
			return errors.New("end_date is required")
		}
	}
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		if t == "" || len(t) > 255 {
			return errors.New("title must be 1 to 255 characters")
		}
		r.Title = &t
	}
	if r.Occasion != nil && !domain.Occasion(*r.Occasion).Valid() {
		return fmt.Errorf("occasion %q is not one of birthday, wedding, charity, other", *r.Occasion)
	}
	if r.Description != nil && strings.TrimSpace(*r.Description) == "" {
		return errors.New("description may not be blank")
	}
	if r.TargetAmount != nil && *r.TargetAmount < 0 {
		return errors.New("target_amount may not be negative")
	}
	if r.CoverImage != nil && *r.CoverImage != "" {
		u, err := url.ParseRequestURI(*r.CoverImage)
		if err != nil || u.Host == "" || len(*r.CoverImage) > 512 {
			return errors.New("cover_image must be an absolute URL")
		}
	}
	if r.EndDate != nil {
		t, err := parseEndDate(*r.EndDate)
		if err != nil {
			return err
		}
		r.endDate = t
	}
	return nil
}

// updates returns the column changes for the present fields
func (r *CollectRequest) updates() map[string]any {
	fields := map[string]any{}
	if r.Title != nil {
		fields["title"] = *r.Title
	}
	if r.Occasion != nil {
		fields["occasion"] = domain.Occasion(*r.Occasion)
	}
	if r.Description != nil {
		fields["description"] = *r.Description
	}
	if r.TargetAmount != nil {
		fields["target_amount"] = *r.TargetAmount
	}
	if r.CoverImage != nil {
		fields["cover_image"] = coverImage(*r.CoverImage)
	}
	if r.EndDate != nil {
		fields["end_date"] = r.endDate
	}
	return fields
}

func coverImage(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseEndDate(s string) (time.Time, error) {
	for _, layout := range endDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("end_date %q is not a valid datetime", s)
}

// ListCollectsHandler returns the collects authored by the requesting user
func ListCollectsHandler(store *repo.Store, ch *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()
		key := cache.MakeKey(cache.CollectList, userID, 0)
		resp, err := cache.GetOrCompute(ctx, ch, key, func() ([]CollectResponse, error) {
			collects, err := store.ListCollectsByAuthor(ctx, userID)
			if err != nil {
				return nil, err
			}
			out := make([]CollectResponse, 0, len(collects))
			for i := range collects {
				out = append(out, newCollectResponse(&collects[i]))
			}
			return out, nil
		})
		if err != nil {
			internalError(c, "Failed to list collects", err, logrus.Fields{"user_id": userID})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// CreateCollectHandler creates a collect authored by the requesting user
func CreateCollectHandler(store *repo.Store, ch *cache.Cache, mail notify.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CollectRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
		if err := req.validate(false); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := c.Request.Context()
		collect := domain.Collect{
			AuthorID:    userID,
			Title:       *req.Title,
			Occasion:    domain.Occasion(*req.Occasion),
			Description: *req.Description,
			EndDate:     req.endDate,
		}
		if req.TargetAmount != nil {
			collect.TargetAmount = *req.TargetAmount
		}
		if req.CoverImage != nil {
			collect.CoverImage = coverImage(*req.CoverImage)
		}
		if err := store.CreateCollect(ctx, &collect); err != nil {
			internalError(c, "Failed to create collect", err, logrus.Fields{"user_id": userID})
			return
		}
		created, err := store.FindCollect(ctx, collect.ID)
		if err != nil {
			internalError(c, "Failed to load collect", err, logrus.Fields{"collect_id": collect.ID})
			return
		}
		_ = ch.Invalidate(ctx, cache.MakeKey(cache.CollectList, userID, 0))
		notify.Send(ctx, mail, notify.CollectCreatedJob(&created.Author, created.Title))
		logrus.WithFields(logrus.Fields{
			"collect_id":    created.ID,
			"user_id":       userID,
			"target_amount": created.TargetAmount,
			"timestamp":     time.Now().Format(time.RFC3339),
		}).Info("Collect created")
		c.JSON(http.StatusCreated, newCollectResponse(created))
	}
}

// GetCollectHandler returns one collect; any authenticated user may read it
func GetCollectHandler(store *repo.Store, ch *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := middleware.ParamID(c, "id")
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Collect not found"})
			return
		}
		ctx := c.Request.Context()
		key := cache.MakeKey(cache.CollectDetail, userID, id)
		resp, err := cache.GetOrCompute(ctx, ch, key, func() (CollectResponse, error) {
			collect, err := store.FindCollect(ctx, id)
			if err != nil {
				return CollectResponse{}, err
			}
			return newCollectResponse(collect), nil
		})
		if err != nil {
			domainError(c, "Failed to load collect", err, logrus.Fields{"collect_id": id})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// UpdateCollectHandler applies a full (PUT) or partial (PATCH) update.
// Must run behind middleware.CollectAuthorOnly.
func UpdateCollectHandler(store *repo.Store, ch *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		collect := c.MustGet(middleware.CollectKey).(*domain.Collect)
		var req CollectRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
		if err := req.validate(c.Request.Method == http.MethodPatch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := c.Request.Context()
		if fields := req.updates(); len(fields) > 0 {
			if err := store.UpdateCollect(ctx, collect.ID, fields); err != nil {
				domainError(c, "Failed to update collect", err, logrus.Fields{"collect_id": collect.ID})
				return
			}
		}
		updated, err := store.FindCollect(ctx, collect.ID)
		if err != nil {
			domainError(c, "Failed to load collect", err, logrus.Fields{"collect_id": collect.ID})
			return
		}
		invalidateCollect(ctx, ch, collect, donorIDs(collect.Payments), false)
		logrus.WithFields(logrus.Fields{
			"collect_id": collect.ID,
			"user_id":    collect.AuthorID,
			"timestamp":  time.Now().Format(time.RFC3339),
		}).Info("Collect updated")
		c.JSON(http.StatusOK, newCollectResponse(updated))
	}
}

// DeleteCollectHandler removes a collect and its payments.
// Must run behind middleware.CollectAuthorOnly.
func DeleteCollectHandler(store *repo.Store, ch *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		collect := c.MustGet(middleware.CollectKey).(*domain.Collect)
		ctx := c.Request.Context()
		donors, err := store.DeleteCollect(ctx, collect.ID)
		if err != nil {
			domainError(c, "Failed to delete collect", err, logrus.Fields{"collect_id": collect.ID})
			return
		}
		invalidateCollect(ctx, ch, collect, donors, true)
		logrus.WithFields(logrus.Fields{
			"collect_id": collect.ID,
			"user_id":    collect.AuthorID,
			"payments":   len(collect.Payments),
			"timestamp":  time.Now().Format(time.RFC3339),
		}).Info("Collect deleted")
		c.Status(http.StatusNoContent)
	}
}

// invalidateCollect drops the cached reads that embed the collect: every
// user's detail entry, the author's list and the donors' payment lists.
// With payments set the collect's payment detail entries go too.
func invalidateCollect(ctx context.Context, ch *cache.Cache, collect *domain.Collect, donors []uint, payments bool) {
	keys := []string{cache.MakeKey(cache.CollectList, collect.AuthorID, 0)}
	for _, id := range donors {
		keys = append(keys, cache.MakeKey(cache.PaymentList, id, 0))
	}
	_ = ch.Invalidate(ctx, keys...)
	_ = ch.InvalidatePrefix(ctx, cache.ObjectPrefix(cache.CollectDetail, collect.ID))
	if payments {
		for _, p := range collect.Payments {
			_ = ch.InvalidatePrefix(ctx, cache.ObjectPrefix(cache.PaymentDetail, p.ID))
		}
	}
}

func donorIDs(payments []domain.Payment) []uint {
	seen := map[uint]bool{}
	var ids []uint
	for _, p := range payments {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			ids = append(ids, p.UserID)
		}
	}
	return ids
}
