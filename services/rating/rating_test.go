package rating

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingRepo "hustlr/database/repository/booking"
	providerRepo "hustlr/database/repository/provider"
	ratingRepo "hustlr/database/repository/rating"
	"hustlr/models"
	"hustlr/services/booking"
	"hustlr/utils"
)

// --- Fakes ---

type fakeRatingRepo struct {
	mu      sync.Mutex
	ratings map[string]models.Rating // keyed by booking id, mirroring the unique index
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: make(map[string]models.Rating)}
}

func (f *fakeRatingRepo) EnsureIndexes() error { return nil }

func (f *fakeRatingRepo) Create(_ context.Context, r *models.Rating) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.ratings[r.BookingID]; exists {
		return ratingRepo.ErrDuplicate
	}
	f.ratings[r.BookingID] = *r
	return nil
}

func (f *fakeRatingRepo) GetByBookingID(_ context.Context, bookingID string) (*models.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.ratings[bookingID]
	if !ok {
		return nil, nil
	}
	cp := r
	return &cp, nil
}

func (f *fakeRatingRepo) ListByProvider(_ context.Context, providerID string) ([]models.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Rating
	for _, r := range f.ratings {
		if r.ProviderID == providerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRatingRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.ratings)), nil
}

type fakeBookingStore struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
}

func (f *fakeBookingStore) EnsureIndexes() error { return nil }
func (f *fakeBookingStore) Create(_ context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[b.ID] = *b
	return nil
}
func (f *fakeBookingStore) GetByID(_ context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	cp := b
	return &cp, nil
}
func (f *fakeBookingStore) Update(_ context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[b.ID] = *b
	return nil
}
func (f *fakeBookingStore) FindActiveBySlot(_ context.Context, _, _, _, _ string) (*models.Booking, error) {
	return nil, nil
}
func (f *fakeBookingStore) ListByCustomer(_ context.Context, _ string) ([]models.Booking, error) {
	return nil, nil
}
func (f *fakeBookingStore) ListByProviders(_ context.Context, _ []string) ([]models.Booking, error) {
	return nil, nil
}
func (f *fakeBookingStore) ListAll(_ context.Context) ([]models.Booking, error) { return nil, nil }
func (f *fakeBookingStore) Count(_ context.Context) (int64, error)              { return 0, nil }

type fakeProviderStore struct {
	mu        sync.Mutex
	providers map[string]models.Provider
	failApply bool
}

func (f *fakeProviderStore) EnsureIndexes() error { return nil }
func (f *fakeProviderStore) Create(_ context.Context, p *models.Provider) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.providers[p.ID] = *p
	return nil
}
func (f *fakeProviderStore) GetByID(_ context.Context, id string) (*models.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.providers[id]
	if !ok {
		return nil, providerRepo.ErrNotFound
	}
	cp := p
	return &cp, nil
}
func (f *fakeProviderStore) ListByUser(_ context.Context, _ string) ([]models.Provider, error) {
	return nil, nil
}
func (f *fakeProviderStore) Search(_ context.Context, _, _ string, _ bool, _ int64) ([]models.Provider, error) {
	return nil, nil
}
func (f *fakeProviderStore) SetVerified(_ context.Context, _ string, _ bool) error { return nil }
func (f *fakeProviderStore) ApplyRating(_ context.Context, providerID string, score int) (*models.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failApply {
		return nil, errors.New("aggregate store unavailable")
	}
	p, ok := f.providers[providerID]
	if !ok {
		return nil, providerRepo.ErrNotFound
	}
	newCount := p.TotalRatings + 1
	p.Rating = (p.Rating*float64(p.TotalRatings) + float64(score)) / float64(newCount)
	p.TotalRatings = newCount
	f.providers[providerID] = p
	cp := p
	return &cp, nil
}
func (f *fakeProviderStore) Count(_ context.Context) (int64, error) { return 0, nil }

// --- Helpers ---

var ratingCustomer = booking.Actor{ID: "cust-1", Role: models.RoleCustomer}

func completedBooking(id string) models.Booking {
	now := time.Now().UTC()
	return models.Booking{
		ID:         id,
		CustomerID: "cust-1",
		ProviderID: "prov-1",
		Date:       "2026-01-10",
		Time:       "10:00",
		Status:     models.BookingCompleted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func newRatingService(bookings ...models.Booking) (*DefaultRatingService, *fakeProviderStore) {
	bkgStore := &fakeBookingStore{bookings: make(map[string]models.Booking)}
	for _, b := range bookings {
		bkgStore.bookings[b.ID] = b
	}
	provStore := &fakeProviderStore{providers: map[string]models.Provider{
		"prov-1": {ID: "prov-1", UserID: "owner-1", IsVerified: true},
	}}
	svc := &DefaultRatingService{
		Repo:         newFakeRatingRepo(),
		BookingRepo:  bkgStore,
		ProviderRepo: provStore,
	}
	return svc, provStore
}

func submitReq(bookingID string, score int) SubmitRatingRequest {
	return SubmitRatingRequest{
		BookingID:  bookingID,
		CustomerID: "cust-1",
		ProviderID: "prov-1",
		Score:      score,
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var svcErr *utils.ServiceError
	require.True(t, errors.As(err, &svcErr), "expected ServiceError, got %v", err)
	assert.Equal(t, code, svcErr.Code)
}

// --- Tests ---

func TestSubmitRating(t *testing.T) {
	svc, provStore := newRatingService(completedBooking("bkg-1"))

	r, err := svc.Submit(context.Background(), ratingCustomer, "bkg-1", submitReq("bkg-1", 5))
	require.NoError(t, err)
	assert.Equal(t, 5, r.Score)
	assert.Equal(t, "prov-1", r.ProviderID)

	p, err := provStore.GetByID(context.Background(), "prov-1")
	require.NoError(t, err)
	assert.Equal(t, 5.0, p.Rating)
	assert.Equal(t, 1, p.TotalRatings)
}

func TestSubmitRatingExactlyOnce(t *testing.T) {
	svc, provStore := newRatingService(completedBooking("bkg-1"))

	_, err := svc.Submit(context.Background(), ratingCustomer, "bkg-1", submitReq("bkg-1", 5))
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), ratingCustomer, "bkg-1", submitReq("bkg-1", 1))
	assertCode(t, err, utils.CodeConflict)

	// The rejected attempt must not touch the aggregate.
	p, err := provStore.GetByID(context.Background(), "prov-1")
	require.NoError(t, err)
	assert.Equal(t, 5.0, p.Rating)
	assert.Equal(t, 1, p.TotalRatings)
}

func TestSubmitRatingConcurrentDuplicates(t *testing.T) {
	svc, provStore := newRatingService(completedBooking("bkg-1"))

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(context.Background(), ratingCustomer, "bkg-1", submitReq("bkg-1", 4))
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assertCode(t, err, utils.CodeConflict)
		}
	}
	assert.Equal(t, 1, succeeded)

	p, err := provStore.GetByID(context.Background(), "prov-1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.TotalRatings)
}

func TestAggregateIsArithmeticMean(t *testing.T) {
	scores := []int{5, 3, 4, 1, 5, 2}
	var bookings []models.Booking
	for i := range scores {
		bookings = append(bookings, completedBooking(fmt.Sprintf("bkg-%d", i)))
	}
	svc, provStore := newRatingService(bookings...)

	var sum int
	for i, score := range scores {
		id := fmt.Sprintf("bkg-%d", i)
		_, err := svc.Submit(context.Background(), ratingCustomer, id, submitReq(id, score))
		require.NoError(t, err)
		sum += score
	}

	p, err := provStore.GetByID(context.Background(), "prov-1")
	require.NoError(t, err)
	assert.Equal(t, len(scores), p.TotalRatings)
	assert.InDelta(t, float64(sum)/float64(len(scores)), p.Rating, 1e-9)
}

func TestSubmitRatingGuards(t *testing.T) {
	pending := completedBooking("bkg-pending")
	pending.Status = models.BookingPending
	svc, _ := newRatingService(completedBooking("bkg-1"), pending)

	// Booking must exist.
	_, err := svc.Submit(context.Background(), ratingCustomer, "missing", submitReq("missing", 5))
	assertCode(t, err, utils.CodeNotFound)

	// Booking must be completed.
	_, err = svc.Submit(context.Background(), ratingCustomer, "bkg-pending", submitReq("bkg-pending", 5))
	assertCode(t, err, utils.CodeInvalidState)

	// Only the booking's customer may rate.
	stranger := booking.Actor{ID: "cust-2", Role: models.RoleCustomer}
	_, err = svc.Submit(context.Background(), stranger, "bkg-1", submitReq("bkg-1", 5))
	assertCode(t, err, utils.CodeForbidden)

	provider := booking.Actor{ID: "owner-1", Role: models.RoleProvider}
	_, err = svc.Submit(context.Background(), provider, "bkg-1", submitReq("bkg-1", 5))
	assertCode(t, err, utils.CodeForbidden)

	// Payload ids must match the booking.
	req := submitReq("bkg-1", 5)
	req.BookingID = "bkg-other"
	_, err = svc.Submit(context.Background(), ratingCustomer, "bkg-1", req)
	assertCode(t, err, utils.CodeInvalidInput)

	req = submitReq("bkg-1", 5)
	req.CustomerID = "cust-2"
	_, err = svc.Submit(context.Background(), ratingCustomer, "bkg-1", req)
	assertCode(t, err, utils.CodeInvalidInput)

	req = submitReq("bkg-1", 5)
	req.ProviderID = "prov-2"
	_, err = svc.Submit(context.Background(), ratingCustomer, "bkg-1", req)
	assertCode(t, err, utils.CodeInvalidInput)

	// Score bounds.
	for _, score := range []int{0, 6, -1} {
		_, err = svc.Submit(context.Background(), ratingCustomer, "bkg-1", submitReq("bkg-1", score))
		assertCode(t, err, utils.CodeInvalidInput)
	}
}

func TestSubmitRatingAggregateFailureSurfaces(t *testing.T) {
	svc, provStore := newRatingService(completedBooking("bkg-1"))
	provStore.failApply = true

	_, err := svc.Submit(context.Background(), ratingCustomer, "bkg-1", submitReq("bkg-1", 5))
	require.Error(t, err)

	// The rating itself is persisted; the aggregate is rebuildable.
	stored, getErr := svc.Repo.GetByBookingID(context.Background(), "bkg-1")
	require.NoError(t, getErr)
	require.NotNil(t, stored)
}

func TestDisplayRatingRounding(t *testing.T) {
	p := models.Provider{Rating: 4.666666666, TotalRatings: 3}
	assert.Equal(t, 4.67, p.DisplayRating())
}
