// AngelaMos | 2026
// service.go

package course

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/coursehub/internal/core"
	"github.com/carterperez-dev/coursehub/internal/events"
)

// OwnershipChecker answers whether a user holds a purchase for a course.
type OwnershipChecker interface {
	Owns(ctx context.Context, userID, courseID string) (bool, error)
}

type ServiceConfig struct {
	Repo            Repository
	Owners          OwnershipChecker
	Cache           Cache
	Events          events.Publisher
	DefaultCurrency string
	Logger          *slog.Logger
}

type Service struct {
	repo            Repository
	owners          OwnershipChecker
	cache           Cache
	events          events.Publisher
	defaultCurrency string
	logger          *slog.Logger
}

func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		repo:            cfg.Repo,
		owners:          cfg.Owners,
		cache:           cfg.Cache,
		events:          cfg.Events,
		defaultCurrency: cfg.DefaultCurrency,
		logger:          cfg.Logger,
	}

	if s.cache == nil {
		s.cache = noCache{}
	}
	if s.events == nil {
		s.events = events.NopPublisher{}
	}
	if s.defaultCurrency == "" {
		s.defaultCurrency = "TRY"
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// ListPublic returns active courses for the storefront. Cache errors are
// logged and the database answers instead. The snapshot is stored under
// the generation observed before the read, so a concurrent admin write
// leaves it unreachable.
func (s *Service) ListPublic(ctx context.Context) ([]CourseSummary, error) {
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "catalog cache generation failed", "error", err)
		return s.loadPublic(ctx)
	}

	cached, ok, err := s.cache.GetPublic(ctx, gen)
	if err != nil {
		s.logger.WarnContext(ctx, "catalog cache read failed", "error", err)
	}
	if ok {
		return cached, nil
	}

	summaries, err := s.loadPublic(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetPublic(ctx, gen, summaries); err != nil {
		s.logger.WarnContext(ctx, "catalog cache write failed", "error", err)
	}

	return summaries, nil
}

func (s *Service) loadPublic(ctx context.Context) ([]CourseSummary, error) {
	courses, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]CourseSummary, 0, len(courses))
	for i := range courses {
		summaries = append(summaries, ToSummary(&courses[i]))
	}
	return summaries, nil
}

// GetCourse returns one course as seen by identity, which may be nil for
// anonymous callers. Inactive courses exist only for owners and admins.
func (s *Service) GetCourse(
	ctx context.Context,
	identity *core.Identity,
	id string,
) (detail *CourseDetail, err error) {
	ctx, span := core.StartSpan(ctx, "course.GetCourse",
		attribute.String("course.id", id),
	)
	defer func() { core.EndSpan(span, err) }()

	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isAdmin := identity.IsAdmin()
	owned := false
	if identity != nil && !isAdmin {
		owned, err = s.owners.Owns(ctx, identity.UserID, course.ID)
		if err != nil {
			return nil, fmt.Errorf("check ownership: %w", err)
		}
	}

	if !course.IsActive && !isAdmin && !owned {
		return nil, fmt.Errorf("get course: %w", core.ErrNotFound)
	}

	d := ToDetail(course, isAdmin || owned)
	if identity != nil {
		d.Owned = &owned
	}

	return &d, nil
}

func (s *Service) ListAll(
	ctx context.Context,
	identity *core.Identity,
) ([]CourseDetail, error) {
	if err := core.RequireRole(identity, core.RoleAdmin); err != nil {
		return nil, err
	}

	courses, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	details := make([]CourseDetail, 0, len(courses))
	for i := range courses {
		details = append(details, ToDetail(&courses[i], true))
	}

	return details, nil
}

func (s *Service) Create(
	ctx context.Context,
	identity *core.Identity,
	req CourseRequest,
) (*CourseDetail, error) {
	if err := core.RequireRole(identity, core.RoleAdmin); err != nil {
		return nil, err
	}

	req.normalize()
	course := s.fromRequest(uuid.New().String(), req, true)

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, events.CourseCreated, course, identity)

	d := ToDetail(course, true)
	return &d, nil
}

// Update replaces the course and its full video list.
func (s *Service) Update(
	ctx context.Context,
	identity *core.Identity,
	id string,
	req CourseRequest,
) (*CourseDetail, error) {
	if err := core.RequireRole(identity, core.RoleAdmin); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.normalize()
	course := s.fromRequest(existing.ID, req, existing.IsActive)

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, events.CourseUpdated, course, identity)

	d := ToDetail(course, true)
	return &d, nil
}

// Delete deactivates the course. Purchases stay valid and owners keep
// access through their library.
func (s *Service) Delete(
	ctx context.Context,
	identity *core.Identity,
	id string,
) error {
	if err := core.RequireRole(identity, core.RoleAdmin); err != nil {
		return err
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.afterWrite(ctx, events.CourseDeactivated, &Course{ID: id}, identity)

	return nil
}

func (s *Service) Counts(ctx context.Context) (Counts, error) {
	return s.repo.Counts(ctx)
}

// fromRequest builds the stored course. Prices are kept to the cent so
// the response matches what the NUMERIC(12, 2) column holds.
func (s *Service) fromRequest(id string, req CourseRequest, active bool) *Course {
	var price float64
	if req.Price != nil {
		price = core.RoundCents(*req.Price)
	}
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return &Course{
		ID:           id,
		Title:        req.Title,
		Description:  req.Description,
		Instructor:   req.Instructor,
		Category:     req.Category,
		Difficulty:   req.Difficulty,
		Duration:     req.Duration,
		Price:        price,
		Currency:     s.currency(req.Currency),
		ThumbnailURL: req.ThumbnailURL,
		IsActive:     active,
		Videos:       req.videos(id),
	}
}

func (s *Service) currency(requested string) string {
	if requested != "" {
		return requested
	}
	return s.defaultCurrency
}

type courseEvent struct {
	CourseID string  `json:"course_id"`
	Title    string  `json:"title,omitempty"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency,omitempty"`
	IsActive bool    `json:"is_active"`
	ActorID  string  `json:"actor_id"`
}

func (s *Service) afterWrite(
	ctx context.Context,
	kind string,
	course *Course,
	identity *core.Identity,
) {
	if err := s.cache.InvalidatePublic(ctx); err != nil {
		s.logger.WarnContext(ctx, "catalog cache invalidation failed",
			"course_id", course.ID,
			"error", err,
		)
	}

	err := s.events.Publish(ctx, kind, courseEvent{
		CourseID: course.ID,
		Title:    course.Title,
		Price:    course.Price,
		Currency: course.Currency,
		IsActive: course.IsActive,
		ActorID:  identity.UserID,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "event publish failed",
			"event", kind,
			"course_id", course.ID,
			"error", err,
		)
	}

	s.logger.InfoContext(ctx, kind,
		"course_id", course.ID,
		"actor_id", identity.UserID,
	)
}
