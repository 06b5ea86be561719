// AngelaMos | 2026
// repository.go

package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/coursehub/internal/core"
)

type Repository interface {
	Create(ctx context.Context, course *Course) error
	Update(ctx context.Context, course *Course) error
	Deactivate(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Course, error)
	ListActive(ctx context.Context) ([]Course, error)
	ListAll(ctx context.Context) ([]Course, error)
	LoadVideos(ctx context.Context, courses []Course) error
	Counts(ctx context.Context) (Counts, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Columns selects every Course field from a table aliased as c.
const Columns = `c.id, c.title, c.description, c.instructor, c.category,
	c.difficulty, c.duration, c.price, c.currency, c.thumbnail_url,
	c.is_active, c.created_at, c.updated_at`

// Create inserts the course row and its videos in one transaction.
func (r *repository) Create(ctx context.Context, course *Course) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO courses (id, title, description, instructor, category,
			                     difficulty, duration, price, currency,
			                     thumbnail_url, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING created_at, updated_at`

		err := tx.QueryRowxContext(ctx, query,
			course.ID,
			course.Title,
			course.Description,
			course.Instructor,
			course.Category,
			course.Difficulty,
			course.Duration,
			course.Price,
			course.Currency,
			course.ThumbnailURL,
			course.IsActive,
		).Scan(&course.CreatedAt, &course.UpdatedAt)
		if err != nil {
			return fmt.Errorf("create course: %w", asInputError(err))
		}

		return insertVideos(ctx, tx, course.Videos)
	})
}

// Update replaces every mutable field and the full video list.
func (r *repository) Update(ctx context.Context, course *Course) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE courses
			SET title = $2, description = $3, instructor = $4, category = $5,
			    difficulty = $6, duration = $7, price = $8, currency = $9,
			    thumbnail_url = $10, is_active = $11, updated_at = NOW()
			WHERE id = $1
			RETURNING created_at, updated_at`

		err := tx.QueryRowxContext(ctx, query,
			course.ID,
			course.Title,
			course.Description,
			course.Instructor,
			course.Category,
			course.Difficulty,
			course.Duration,
			course.Price,
			course.Currency,
			course.ThumbnailURL,
			course.IsActive,
		).Scan(&course.CreatedAt, &course.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("update course: %w", core.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("update course: %w", asInputError(err))
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM course_videos WHERE course_id = $1`, course.ID,
		); err != nil {
			return fmt.Errorf("clear videos: %w", err)
		}

		return insertVideos(ctx, tx, course.Videos)
	})
}

func insertVideos(ctx context.Context, tx *sqlx.Tx, videos []Video) error {
	if len(videos) == 0 {
		return nil
	}

	query := `
		INSERT INTO course_videos (course_id, position, title, url, description)
		VALUES (:course_id, :position, :title, :url, :description)`

	if _, err := tx.NamedExecContext(ctx, query, videos); err != nil {
		return fmt.Errorf("insert videos: %w", asInputError(err))
	}

	return nil
}

func (r *repository) Deactivate(ctx context.Context, id string) error {
	query := `
		UPDATE courses
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate course: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate course: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("deactivate course: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Course, error) {
	query := `SELECT ` + Columns + ` FROM courses c WHERE c.id = $1`

	var course Course
	err := r.db.GetContext(ctx, &course, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get course: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}

	courses := []Course{course}
	if err := r.LoadVideos(ctx, courses); err != nil {
		return nil, err
	}

	return &courses[0], nil
}

// ListActive returns active courses newest first with video counts only.
func (r *repository) ListActive(ctx context.Context) ([]Course, error) {
	query := `
		SELECT ` + Columns + `,
		       (SELECT COUNT(*) FROM course_videos v WHERE v.course_id = c.id)
		           AS video_count
		FROM courses c
		WHERE c.is_active
		ORDER BY c.created_at DESC`

	courses := []Course{}
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list active courses: %w", err)
	}

	return courses, nil
}

func (r *repository) ListAll(ctx context.Context) ([]Course, error) {
	query := `SELECT ` + Columns + ` FROM courses c ORDER BY c.created_at DESC`

	courses := []Course{}
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	if err := r.LoadVideos(ctx, courses); err != nil {
		return nil, err
	}

	return courses, nil
}

// LoadVideos fills Videos on each course with a single query.
func (r *repository) LoadVideos(ctx context.Context, courses []Course) error {
	if len(courses) == 0 {
		return nil
	}

	ids := make([]string, 0, len(courses))
	index := make(map[string]int, len(courses))
	for i := range courses {
		courses[i].Videos = []Video{}
		ids = append(ids, courses[i].ID)
		index[courses[i].ID] = i
	}

	query, args, err := sqlx.In(`
		SELECT course_id, position, title, url, description
		FROM course_videos
		WHERE course_id IN (?)
		ORDER BY course_id, position`, ids)
	if err != nil {
		return fmt.Errorf("build video query: %w", err)
	}

	var videos []Video
	if err := r.db.SelectContext(ctx, &videos, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load videos: %w", err)
	}

	for _, v := range videos {
		i := index[v.CourseID]
		courses[i].Videos = append(courses[i].Videos, v)
	}
	for i := range courses {
		courses[i].VideoCount = len(courses[i].Videos)
	}

	return nil
}

func (r *repository) Counts(ctx context.Context) (Counts, error) {
	query := `
		SELECT COUNT(*)                              AS total,
		       COUNT(*) FILTER (WHERE is_active)     AS active,
		       (SELECT COUNT(*) FROM course_videos)  AS videos
		FROM courses`

	var counts Counts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return Counts{}, fmt.Errorf("count courses: %w", err)
	}

	return counts, nil
}

// asInputError turns value errors raised by column limits into a 400. The
// request validators catch these first; this covers direct service use.
func asInputError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "22003":
		return core.ValidationError("numeric value out of range")
	case "22001":
		return core.ValidationError("value too long")
	case "23514":
		return core.ValidationError("value violates a constraint")
	}
	return err
}
