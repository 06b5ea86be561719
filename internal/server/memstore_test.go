// AngelaMos | 2026
// memstore_test.go

package server

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/carterperez-dev/coursehub/internal/core"
	"github.com/carterperez-dev/coursehub/internal/course"
	"github.com/carterperez-dev/coursehub/internal/purchase"
	"github.com/carterperez-dev/coursehub/internal/user"
)

// memStore backs the user, course and purchase repositories with maps
// guarded by one lock, enforcing the same unique keys as the schema.
type memStore struct {
	mu        sync.Mutex
	users     map[string]user.User
	courses   map[string]course.Course
	purchases []purchase.Purchase
	clock     time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[string]user.User),
		courses: make(map[string]course.Course),
		clock:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type memUsers struct{ *memStore }

func (m memUsers) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == u.Email {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}
	u.CreatedAt = m.tick()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = *u
	return nil
}

func (m memUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &u, nil
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = hash
	m.users[id] = u
	return nil
}

func (m memUsers) List(_ context.Context, p user.ListUsersParams) ([]user.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []user.User{}
	for _, u := range m.users {
		if p.Role == "" || string(u.Role) == p.Role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, len(out), nil
}

func (m memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

func (m memUsers) CountByRole(_ context.Context) (map[core.Role]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := map[core.Role]int{}
	for _, u := range m.users {
		counts[u.Role]++
	}
	return counts, nil
}

type memCourses struct{ *memStore }

func (m memCourses) Create(_ context.Context, c *course.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c.CreatedAt = m.tick()
	c.UpdatedAt = c.CreatedAt
	m.courses[c.ID] = *c
	return nil
}

func (m memCourses) Update(_ context.Context, c *course.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.courses[c.ID]
	if !ok {
		return core.ErrNotFound
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = m.tick()
	m.courses[c.ID] = *c
	return nil
}

func (m memCourses) Deactivate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.courses[id]
	if !ok {
		return core.ErrNotFound
	}
	c.IsActive = false
	m.courses[id] = c
	return nil
}

func (m memCourses) GetByID(_ context.Context, id string) (*course.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.courses[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &c, nil
}

func (m memCourses) list(activeOnly bool) []course.Course {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []course.Course{}
	for _, c := range m.courses {
		if activeOnly && !c.IsActive {
			continue
		}
		c.VideoCount = len(c.Videos)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m memCourses) ListActive(_ context.Context) ([]course.Course, error) {
	out := m.list(true)
	for i := range out {
		out[i].Videos = nil
	}
	return out, nil
}

func (m memCourses) ListAll(_ context.Context) ([]course.Course, error) {
	return m.list(false), nil
}

func (m memCourses) LoadVideos(_ context.Context, courses []course.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range courses {
		courses[i].Videos = m.courses[courses[i].ID].Videos
	}
	return nil
}

func (m memCourses) Counts(_ context.Context) (course.Counts, error) {
	var counts course.Counts
	for _, c := range m.list(false) {
		counts.Total++
		if c.IsActive {
			counts.Active++
		}
		counts.Videos += len(c.Videos)
	}
	return counts, nil
}

type memPurchases struct{ *memStore }

func (m memPurchases) Create(_ context.Context, p *purchase.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.purchases {
		if existing.UserID == p.UserID && existing.CourseID == p.CourseID {
			return fmt.Errorf("create purchase: %w", core.ErrDuplicateKey)
		}
	}
	p.PurchasedAt = m.tick()
	m.purchases = append(m.purchases, *p)
	return nil
}

func (m memPurchases) Exists(_ context.Context, userID, courseID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.purchases {
		if p.UserID == userID && p.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (m memPurchases) ListOwnedCourses(_ context.Context, userID string) ([]purchase.OwnedRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := []purchase.OwnedRow{}
	for _, p := range m.purchases {
		if p.UserID != userID {
			continue
		}
		c := m.courses[p.CourseID]
		c.Videos = nil
		rows = append(rows, purchase.OwnedRow{Course: c, PurchasedAt: p.PurchasedAt})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].PurchasedAt.After(rows[j].PurchasedAt) })
	return rows, nil
}

func (m memPurchases) Totals(_ context.Context) (purchase.Totals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := purchase.Totals{Revenue: map[string]float64{}}
	buyers := map[string]bool{}
	for _, p := range m.purchases {
		t.Count++
		buyers[p.UserID] = true
		t.Revenue[p.Currency] += p.Amount
	}
	t.Buyers = len(buyers)
	return t, nil
}
