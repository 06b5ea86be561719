// AngelaMos | 2026
// entity.go

package course

import (
	"time"
)

type Course struct {
	ID           string    `db:"id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	Instructor   string    `db:"instructor"`
	Category     string    `db:"category"`
	Difficulty   string    `db:"difficulty"`
	Duration     string    `db:"duration"`
	Price        float64   `db:"price"`
	Currency     string    `db:"currency"`
	ThumbnailURL string    `db:"thumbnail_url"`
	IsActive     bool      `db:"is_active"`
	VideoCount   int       `db:"video_count"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`

	Videos []Video `db:"-"`
}

func (c *Course) IsFree() bool {
	return c.Price == 0
}

// Video is one entry of a course's ordered playlist. Position starts at 1.
type Video struct {
	CourseID    string `db:"course_id"`
	Position    int    `db:"position"`
	Title       string `db:"title"`
	URL         string `db:"url"`
	Description string `db:"description"`
}

type Counts struct {
	Total  int `db:"total"  json:"total"`
	Active int `db:"active" json:"active"`
	Videos int `db:"videos" json:"videos"`
}
