// AngelaMos | 2026
// repository_test.go

package course_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/coursehub/internal/config"
	"github.com/carterperez-dev/coursehub/internal/core"
	"github.com/carterperez-dev/coursehub/internal/course"
	"github.com/carterperez-dev/coursehub/migrations"
)

func openTestDB(t *testing.T) *core.Database {
	t.Helper()

	url := os.Getenv("COURSEHUB_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("COURSEHUB_TEST_DATABASE_URL not set")
	}

	_, err := core.Migrate(url, migrations.FS)
	require.NoError(t, err)

	db, err := core.NewDatabase(context.Background(), config.DatabaseConfig{
		URL:             url,
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func newCourse(titles ...string) *course.Course {
	id := uuid.New().String()
	c := &course.Course{
		ID:          id,
		Title:       "Repository " + id[:8],
		Description: "Seeded by tests",
		Instructor:  "Ada Lovelace",
		Category:    "Programming",
		Difficulty:  "beginner",
		Duration:    "3h",
		Price:       19.99,
		Currency:    "TRY",
		IsActive:    true,
	}
	for i, title := range titles {
		c.Videos = append(c.Videos, course.Video{
			CourseID: id,
			Position: i + 1,
			Title:    title,
			URL:      "https://cdn.example.com/" + id + "/" + title + ".mp4",
		})
	}
	return c
}

func titles(videos []course.Video) []string {
	out := make([]string, 0, len(videos))
	for _, v := range videos {
		out = append(out, v.Title)
	}
	return out
}

func TestRepositoryCreateAndGet(t *testing.T) {
	repo := course.NewRepository(openTestDB(t).DB)
	ctx := context.Background()

	c := newCourse("intro", "setup", "deploy")
	// insert order must not decide playback order
	c.Videos[0], c.Videos[2] = c.Videos[2], c.Videos[0]
	require.NoError(t, repo.Create(ctx, c))
	assert.False(t, c.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Title, got.Title)
	assert.Equal(t, "Ada Lovelace", got.Instructor)
	assert.Equal(t, "Programming", got.Category)
	assert.Equal(t, "beginner", got.Difficulty)
	assert.Equal(t, "3h", got.Duration)
	assert.Equal(t, 19.99, got.Price)
	assert.Equal(t, []string{"intro", "setup", "deploy"}, titles(got.Videos))
	assert.Equal(t, 3, got.VideoCount)

	_, err = repo.GetByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryUpdateReplacesVideos(t *testing.T) {
	repo := course.NewRepository(openTestDB(t).DB)
	ctx := context.Background()

	c := newCourse("one", "two", "three")
	require.NoError(t, repo.Create(ctx, c))

	replacement := newCourse("fresh")
	replacement.ID = c.ID
	replacement.Videos[0].CourseID = c.ID
	replacement.Title = "Renamed"
	replacement.Price = 5
	require.NoError(t, repo.Update(ctx, replacement))
	assert.False(t, replacement.UpdatedAt.Before(c.UpdatedAt))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, 5.0, got.Price)
	assert.Equal(t, []string{"fresh"}, titles(got.Videos))

	replacement.Videos = nil
	require.NoError(t, repo.Update(ctx, replacement))
	got, err = repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Videos, "an empty list clears every video")

	missing := newCourse()
	err = repo.Update(ctx, missing)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryDeactivate(t *testing.T) {
	repo := course.NewRepository(openTestDB(t).DB)
	ctx := context.Background()

	c := newCourse("only")
	require.NoError(t, repo.Create(ctx, c))
	require.NoError(t, repo.Deactivate(ctx, c.ID))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	for _, a := range active {
		assert.NotEqual(t, c.ID, a.ID, "inactive course listed publicly")
		assert.True(t, a.IsActive)
	}

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	var found *course.Course
	for i := range all {
		if all[i].ID == c.ID {
			found = &all[i]
		}
	}
	require.NotNil(t, found, "admin listing keeps inactive courses")
	assert.False(t, found.IsActive)
	assert.Equal(t, []string{"only"}, titles(found.Videos))

	err = repo.Deactivate(ctx, uuid.New().String())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryListActiveCountsVideos(t *testing.T) {
	repo := course.NewRepository(openTestDB(t).DB)
	ctx := context.Background()

	c := newCourse("a", "b")
	require.NoError(t, repo.Create(ctx, c))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	for _, a := range active {
		if a.ID == c.ID {
			assert.Equal(t, 2, a.VideoCount)
			assert.Nil(t, a.Videos, "public list carries counts, not playlists")
			return
		}
	}
	t.Fatalf("course %s missing from active list", c.ID)
}

func TestRepositoryLoadVideos(t *testing.T) {
	repo := course.NewRepository(openTestDB(t).DB)
	ctx := context.Background()

	first := newCourse("x1", "x2")
	second := newCourse()
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	courses := []course.Course{{ID: second.ID}, {ID: first.ID}}
	require.NoError(t, repo.LoadVideos(ctx, courses))

	assert.NotNil(t, courses[0].Videos)
	assert.Empty(t, courses[0].Videos)
	assert.Equal(t, []string{"x1", "x2"}, titles(courses[1].Videos))
	assert.Equal(t, 2, courses[1].VideoCount)
}

func TestRepositoryRejectsOutOfRangePrice(t *testing.T) {
	repo := course.NewRepository(openTestDB(t).DB)

	c := newCourse()
	c.Price = 1e10
	err := repo.Create(context.Background(), c)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.True(t, core.IsAppError(err))
}
