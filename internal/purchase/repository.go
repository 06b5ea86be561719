// AngelaMos | 2026
// repository.go

package purchase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/coursehub/internal/core"
	"github.com/carterperez-dev/coursehub/internal/course"
)

type Repository interface {
	Create(ctx context.Context, p *Purchase) error
	Exists(ctx context.Context, userID, courseID string) (bool, error)
	ListOwnedCourses(ctx context.Context, userID string) ([]OwnedRow, error)
	Totals(ctx context.Context) (Totals, error)
}

// OwnedRow is a course joined with the caller's purchase time.
type OwnedRow struct {
	course.Course
	PurchasedAt time.Time `db:"purchased_at"`
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Create inserts the purchase. The (user_id, course_id) unique constraint
// is the ownership check, so a concurrent duplicate fails here with
// core.ErrDuplicateKey.
func (r *repository) Create(ctx context.Context, p *Purchase) error {
	query := `
		INSERT INTO purchases (id, user_id, course_id, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING purchased_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.ID,
		p.UserID,
		p.CourseID,
		p.Amount,
		p.Currency,
		p.Status,
	).Scan(&p.PurchasedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create purchase: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create purchase: %w", err)
	}

	return nil
}

func (r *repository) Exists(
	ctx context.Context,
	userID, courseID string,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM purchases WHERE user_id = $1 AND course_id = $2
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, courseID); err != nil {
		return false, fmt.Errorf("check purchase: %w", err)
	}

	return exists, nil
}

func (r *repository) ListOwnedCourses(
	ctx context.Context,
	userID string,
) ([]OwnedRow, error) {
	query := `
		SELECT ` + course.Columns + `, p.purchased_at
		FROM purchases p
		JOIN courses c ON c.id = p.course_id
		WHERE p.user_id = $1
		ORDER BY p.purchased_at DESC`

	rows := []OwnedRow{}
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list owned courses: %w", err)
	}

	return rows, nil
}

func (r *repository) Totals(ctx context.Context) (Totals, error) {
	query := `
		SELECT COUNT(*)                AS count,
		       COUNT(DISTINCT user_id) AS buyers
		FROM purchases`

	var totals Totals
	if err := r.db.GetContext(ctx, &totals, query); err != nil {
		return Totals{}, fmt.Errorf("purchase totals: %w", err)
	}

	var revenue []struct {
		Currency string  `db:"currency"`
		Amount   float64 `db:"amount"`
	}
	revenueQuery := `
		SELECT currency, SUM(amount) AS amount
		FROM purchases
		GROUP BY currency`
	if err := r.db.SelectContext(ctx, &revenue, revenueQuery); err != nil {
		return Totals{}, fmt.Errorf("purchase revenue: %w", err)
	}

	totals.Revenue = make(map[string]float64, len(revenue))
	for _, row := range revenue {
		totals.Revenue[row.Currency] = row.Amount
	}

	return totals, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
