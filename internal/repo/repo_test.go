package repo_test

import (
	"context"
	"testing"
	"time"

	"crowdfunding/internal/domain"
	"crowdfunding/internal/repo"
	"crowdfunding/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(t *testing.T, store *repo.Store, name string) *domain.User {
	t.Helper()
	u := &domain.User{Username: name, Email: name + "@x.com", Password: "hash"}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func newCollect(t *testing.T, store *repo.Store, author *domain.User) *domain.Collect {
	t.Helper()
	c := &domain.Collect{
		AuthorID:     author.ID,
		Title:        "Birthday gift",
		Occasion:     domain.OccasionBirthday,
		TargetAmount: 1000,
		EndDate:      time.Now().Add(7 * 24 * time.Hour),
	}
	require.NoError(t, store.CreateCollect(context.Background(), c))
	return c
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	store := repo.New(testutil.NewDB(t))
	newUser(t, store, "alice")

	err := store.CreateUser(context.Background(), &domain.User{Username: "alice", Email: "other@x.com", Password: "hash"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)

	u, err := store.FindUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", u.Email)

	_, err = store.FindUser(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFindCollectPreloadsRelations(t *testing.T) {
	ctx := context.Background()
	store := repo.New(testutil.NewDB(t))
	alice := newUser(t, store, "alice")
	bob := newUser(t, store, "bob")
	c := newCollect(t, store, alice)
	require.NoError(t, store.CreatePayment(ctx, &domain.Payment{UserID: bob.ID, CollectID: c.ID, Amount: 100}))

	got, err := store.FindCollect(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Author.Username)
	require.Len(t, got.Payments, 1)
	assert.Equal(t, "bob", got.Payments[0].User.Username)
	assert.False(t, got.Payments[0].CreatedAt.IsZero())

	_, err = store.FindCollect(ctx, c.ID+100)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateCollectLeavesCountersAlone(t *testing.T) {
	ctx := context.Background()
	store := repo.New(testutil.NewDB(t))
	alice := newUser(t, store, "alice")
	c := newCollect(t, store, alice)
	require.NoError(t, store.AdjustCollectTotals(ctx, c.ID, 300, 1))

	require.NoError(t, store.UpdateCollect(ctx, c.ID, map[string]any{"title": "Wedding fund"}))

	got, err := store.FindCollect(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wedding fund", got.Title)
	assert.Equal(t, int64(300), got.CollectedAmount)
	assert.Equal(t, int64(1), got.DonorsCount)
}

func TestDeleteCollectCascadesPayments(t *testing.T) {
	ctx := context.Background()
	store := repo.New(testutil.NewDB(t))
	alice := newUser(t, store, "alice")
	bob := newUser(t, store, "bob")
	carol := newUser(t, store, "carol")
	c := newCollect(t, store, alice)
	other := newCollect(t, store, alice)
	for _, donor := range []*domain.User{bob, bob, carol} {
		require.NoError(t, store.CreatePayment(ctx, &domain.Payment{UserID: donor.ID, CollectID: c.ID, Amount: 10}))
	}
	require.NoError(t, store.CreatePayment(ctx, &domain.Payment{UserID: bob.ID, CollectID: other.ID, Amount: 10}))

	donors, err := store.DeleteCollect(ctx, c.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{bob.ID, carol.ID}, donors)

	var remaining int64
	require.NoError(t, store.DB().Model(&domain.Payment{}).Where("collect_id = ?", c.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	bobs, err := store.ListPaymentsByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, bobs, 1)

	_, err = store.DeleteCollect(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustCollectTotalsFloor(t *testing.T) {
	ctx := context.Background()
	store := repo.New(testutil.NewDB(t))
	alice := newUser(t, store, "alice")
	c := newCollect(t, store, alice)

	require.NoError(t, store.AdjustCollectTotals(ctx, c.ID, 50, 1))
	assert.ErrorIs(t, store.AdjustCollectTotals(ctx, c.ID, -60, -1), domain.ErrAggregateUnderflow)
	assert.ErrorIs(t, store.AdjustCollectTotals(ctx, c.ID+100, 10, 1), domain.ErrNotFound)

	got, err := store.FindCollect(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), got.CollectedAmount)
	assert.Equal(t, int64(1), got.DonorsCount)

	require.NoError(t, store.AdjustCollectTotals(ctx, c.ID, -50, -1))
	got, err = store.FindCollect(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CollectedAmount)
	assert.Zero(t, got.DonorsCount)
}

func TestSumPayments(t *testing.T) {
	ctx := context.Background()
	store := repo.New(testutil.NewDB(t))
	alice := newUser(t, store, "alice")
	c := newCollect(t, store, alice)

	total, donors, err := store.SumPayments(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, donors)

	for _, amount := range []int64{100, 250, 5} {
		require.NoError(t, store.CreatePayment(ctx, &domain.Payment{UserID: alice.ID, CollectID: c.ID, Amount: amount}))
	}
	total, donors, err = store.SumPayments(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(355), total)
	assert.Equal(t, int64(3), donors)
}
