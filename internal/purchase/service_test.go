// AngelaMos | 2026
// service_test.go

package purchase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/coursehub/internal/core"
	"github.com/carterperez-dev/coursehub/internal/course"
	"github.com/carterperez-dev/coursehub/internal/events"
)

// memLedger enforces the same (user, course) uniqueness as the purchases
// table.
type memLedger struct {
	mu        sync.Mutex
	purchases []Purchase
	catalog   *memCatalog
	clock     time.Time
}

func (m *memLedger) Create(_ context.Context, p *Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.purchases {
		if existing.UserID == p.UserID && existing.CourseID == p.CourseID {
			return fmt.Errorf("create purchase: %w", core.ErrDuplicateKey)
		}
	}

	m.clock = m.clock.Add(time.Minute)
	p.PurchasedAt = m.clock
	m.purchases = append(m.purchases, *p)
	return nil
}

func (m *memLedger) Exists(_ context.Context, userID, courseID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.purchases {
		if p.UserID == userID && p.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memLedger) ListOwnedCourses(ctx context.Context, userID string) ([]OwnedRow, error) {
	m.mu.Lock()
	mine := make([]Purchase, 0)
	for _, p := range m.purchases {
		if p.UserID == userID {
			mine = append(mine, p)
		}
	}
	m.mu.Unlock()

	sort.Slice(mine, func(i, j int) bool { return mine[i].PurchasedAt.After(mine[j].PurchasedAt) })

	rows := make([]OwnedRow, 0, len(mine))
	for _, p := range mine {
		c, err := m.catalog.GetByID(ctx, p.CourseID)
		if err != nil {
			return nil, err
		}
		c.Videos = nil
		rows = append(rows, OwnedRow{Course: *c, PurchasedAt: p.PurchasedAt})
	}
	return rows, nil
}

func (m *memLedger) Totals(_ context.Context) (Totals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	buyers := map[string]bool{}
	t := Totals{Revenue: map[string]float64{}}
	for _, p := range m.purchases {
		t.Count++
		buyers[p.UserID] = true
		t.Revenue[p.Currency] += p.Amount
	}
	t.Buyers = len(buyers)
	return t, nil
}

type memCatalog struct {
	courses map[string]course.Course
}

func (c *memCatalog) GetByID(_ context.Context, id string) (*course.Course, error) {
	found, ok := c.courses[id]
	if !ok {
		return nil, fmt.Errorf("get course: %w", core.ErrNotFound)
	}
	return &found, nil
}

func (c *memCatalog) LoadVideos(_ context.Context, courses []course.Course) error {
	for i := range courses {
		courses[i].Videos = c.courses[courses[i].ID].Videos
	}
	return nil
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, key string, data any) error {
	return m.Called(ctx, key, data).Error(0)
}

func (m *mockPublisher) Close() error { return nil }

const (
	goID      = "11111111-1111-4111-8111-111111111111"
	freeID    = "22222222-2222-4222-8222-222222222222"
	retiredID = "33333333-3333-4333-8333-333333333333"
)

var student = &core.Identity{UserID: "student-1", Role: core.RoleStudent}

func newTestService(t *testing.T, pub events.Publisher) (*Service, *memLedger, *memCatalog) {
	t.Helper()

	catalog := &memCatalog{courses: map[string]course.Course{
		goID: {
			ID: goID, Title: "Go", Price: 49.9, Currency: "TRY", IsActive: true,
			Videos: []course.Video{{CourseID: goID, Position: 1, Title: "Intro", URL: "https://cdn.example.com/go/1.mp4"}},
		},
		freeID:    {ID: freeID, Title: "Free", Price: 0, Currency: "USD", IsActive: true},
		retiredID: {ID: retiredID, Title: "Old", Price: 5, Currency: "TRY", IsActive: false},
	}}
	ledger := &memLedger{catalog: catalog, clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewService(ledger, catalog, pub, logger), ledger, catalog
}

func TestPurchase(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, events.PurchaseCompleted, mock.AnythingOfType("purchase.PurchaseResponse")).
		Return(nil).Once()
	svc, ledger, _ := newTestService(t, pub)

	p, err := svc.Purchase(context.Background(), student, goID)
	require.NoError(t, err)
	assert.True(t, core.IsUUID(p.ID))
	assert.Equal(t, 49.9, p.Amount)
	assert.Equal(t, "TRY", p.Currency)
	assert.Equal(t, StatusCompleted, p.Status)
	assert.False(t, p.PurchasedAt.IsZero())
	assert.Len(t, ledger.purchases, 1)

	owns, err := svc.Owns(context.Background(), student.UserID, goID)
	require.NoError(t, err)
	assert.True(t, owns)

	pub.AssertExpectations(t)
}

func TestPurchaseSnapshotsPrice(t *testing.T) {
	svc, ledger, catalog := newTestService(t, nil)

	_, err := svc.Purchase(context.Background(), student, goID)
	require.NoError(t, err)

	c := catalog.courses[goID]
	c.Price = 99
	catalog.courses[goID] = c

	assert.Equal(t, 49.9, ledger.purchases[0].Amount)
}

func TestPurchaseDuplicate(t *testing.T) {
	svc, ledger, _ := newTestService(t, nil)

	_, err := svc.Purchase(context.Background(), student, freeID)
	require.NoError(t, err)

	_, err = svc.Purchase(context.Background(), student, freeID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyOwned)

	var appErr *core.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusConflict, appErr.StatusCode)
	assert.Equal(t, "ALREADY_OWNED", appErr.Code)
	assert.Len(t, ledger.purchases, 1)
}

func TestPurchaseConcurrentDuplicates(t *testing.T) {
	svc, ledger, _ := newTestService(t, nil)

	const attempts = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		conflict int
	)

	start := make(chan struct{})
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Purchase(context.Background(), student, goID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrAlreadyOwned):
				conflict++
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, conflict)
	assert.Len(t, ledger.purchases, 1)
}

func TestPurchaseRejects(t *testing.T) {
	svc, ledger, _ := newTestService(t, nil)

	_, err := svc.Purchase(context.Background(), nil, goID)
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	_, err = svc.Purchase(context.Background(), student, retiredID)
	assert.ErrorIs(t, err, core.ErrNotFound, "inactive courses cannot be bought")

	_, err = svc.Purchase(context.Background(), student, "44444444-4444-4444-8444-444444444444")
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.Empty(t, ledger.purchases)
}

func TestPurchasePublishFailureIsNotFatal(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("channel closed"))
	svc, _, _ := newTestService(t, pub)

	_, err := svc.Purchase(context.Background(), student, goID)
	assert.NoError(t, err)
}

func TestListMyCourses(t *testing.T) {
	svc, ledger, catalog := newTestService(t, nil)

	list, err := svc.ListMyCourses(context.Background(), student)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Purchase(context.Background(), student, goID)
	require.NoError(t, err)
	_, err = svc.Purchase(context.Background(), student, freeID)
	require.NoError(t, err)
	_, err = svc.Purchase(context.Background(), &core.Identity{UserID: "other", Role: core.RoleStudent}, goID)
	require.NoError(t, err)

	// Deactivated after purchase: stays in the library.
	c := catalog.courses[goID]
	c.IsActive = false
	catalog.courses[goID] = c

	list, err = svc.ListMyCourses(context.Background(), student)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, freeID, list[0].ID, "newest purchase first")
	assert.Equal(t, goID, list[1].ID)
	assert.False(t, list[1].IsActive)
	require.Len(t, list[1].Videos, 1)
	assert.Equal(t, "https://cdn.example.com/go/1.mp4", list[1].Videos[0].URL)
	assert.True(t, *list[1].Owned)
	assert.Equal(t, ledger.purchases[0].PurchasedAt, list[1].PurchasedAt)

	_, err = svc.ListMyCourses(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestTotals(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	for _, id := range []string{goID, freeID} {
		_, err := svc.Purchase(context.Background(), student, id)
		require.NoError(t, err)
	}

	totals, err := svc.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, totals.Count)
	assert.Equal(t, 1, totals.Buyers)
	assert.Equal(t, map[string]float64{"TRY": 49.9, "USD": 0}, totals.Revenue)
}
