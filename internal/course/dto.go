// AngelaMos | 2026
// dto.go

package course

import (
	"strings"
	"time"
)

type VideoRequest struct {
	Title       string `json:"title"       validate:"required,notblank,max=255"`
	URL         string `json:"url"         validate:"required,url,max=1000"`
	Description string `json:"description" validate:"omitempty,max=5000"`
}

// CourseRequest is the full replacement body for create and update. An
// omitted currency falls back to the catalog default, an omitted is_active
// keeps the current flag on update. Call normalize before validating.
type CourseRequest struct {
	Title        string         `json:"title"         validate:"required,notblank,max=255"`
	Description  string         `json:"description"   validate:"required,notblank"`
	Instructor   string         `json:"instructor"    validate:"omitempty,max=255"`
	Category     string         `json:"category"      validate:"omitempty,max=100"`
	Difficulty   string         `json:"difficulty"    validate:"omitempty,max=50"`
	Duration     string         `json:"duration"      validate:"omitempty,max=50"`
	Price        *float64       `json:"price"         validate:"required,gte=0,lte=9999999999.99,cents"`
	Currency     string         `json:"currency"      validate:"omitempty,iso4217"`
	ThumbnailURL string         `json:"thumbnail_url" validate:"omitempty,url,max=500"`
	Videos       []VideoRequest `json:"videos"        validate:"max=500,dive"`
	IsActive     *bool          `json:"is_active"`
}

func (r *CourseRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Instructor = strings.TrimSpace(r.Instructor)
	r.Category = strings.TrimSpace(r.Category)
	r.Difficulty = strings.TrimSpace(r.Difficulty)
	r.Duration = strings.TrimSpace(r.Duration)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	r.ThumbnailURL = strings.TrimSpace(r.ThumbnailURL)
	for i := range r.Videos {
		v := &r.Videos[i]
		v.Title = strings.TrimSpace(v.Title)
		v.URL = strings.TrimSpace(v.URL)
		v.Description = strings.TrimSpace(v.Description)
	}
}

func (r *CourseRequest) videos(courseID string) []Video {
	videos := make([]Video, 0, len(r.Videos))
	for i, v := range r.Videos {
		videos = append(videos, Video{
			CourseID:    courseID,
			Position:    i + 1,
			Title:       v.Title,
			URL:         v.URL,
			Description: v.Description,
		})
	}
	return videos
}

type CourseSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Instructor   string    `json:"instructor,omitempty"`
	Category     string    `json:"category,omitempty"`
	Difficulty   string    `json:"difficulty,omitempty"`
	Duration     string    `json:"duration,omitempty"`
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"`
	IsFree       bool      `json:"is_free"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	VideoCount   int       `json:"video_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// VideoResponse omits URL for callers who may not watch the course; such
// entries carry Locked instead.
type VideoResponse struct {
	Position    int    `json:"position"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Locked      bool   `json:"locked,omitempty"`
}

type CourseDetail struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Instructor   string          `json:"instructor,omitempty"`
	Category     string          `json:"category,omitempty"`
	Difficulty   string          `json:"difficulty,omitempty"`
	Duration     string          `json:"duration,omitempty"`
	Price        float64         `json:"price"`
	Currency     string          `json:"currency"`
	IsFree       bool            `json:"is_free"`
	ThumbnailURL string          `json:"thumbnail_url,omitempty"`
	IsActive     bool            `json:"is_active"`
	Videos       []VideoResponse `json:"videos"`
	Owned        *bool           `json:"owned,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func ToSummary(c *Course) CourseSummary {
	count := c.VideoCount
	if c.Videos != nil {
		count = len(c.Videos)
	}

	return CourseSummary{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		Instructor:   c.Instructor,
		Category:     c.Category,
		Difficulty:   c.Difficulty,
		Duration:     c.Duration,
		Price:        c.Price,
		Currency:     c.Currency,
		IsFree:       c.IsFree(),
		ThumbnailURL: c.ThumbnailURL,
		VideoCount:   count,
		CreatedAt:    c.CreatedAt,
	}
}

// ToDetail renders c. Video URLs are included only when unlocked is true.
func ToDetail(c *Course, unlocked bool) CourseDetail {
	videos := make([]VideoResponse, 0, len(c.Videos))
	for _, v := range c.Videos {
		vr := VideoResponse{
			Position:    v.Position,
			Title:       v.Title,
			Description: v.Description,
		}
		if unlocked {
			vr.URL = v.URL
		} else {
			vr.Locked = true
		}
		videos = append(videos, vr)
	}

	return CourseDetail{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		Instructor:   c.Instructor,
		Category:     c.Category,
		Difficulty:   c.Difficulty,
		Duration:     c.Duration,
		Price:        c.Price,
		Currency:     c.Currency,
		IsFree:       c.IsFree(),
		ThumbnailURL: c.ThumbnailURL,
		IsActive:     c.IsActive,
		Videos:       videos,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
