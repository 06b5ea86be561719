// AngelaMos | 2026
// service.go

package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/coursehub/internal/core"
	"github.com/carterperez-dev/coursehub/internal/course"
	"github.com/carterperez-dev/coursehub/internal/events"
)

var ErrAlreadyOwned = errors.New("course already owned")

var purchasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "coursehub_purchases_total",
	Help: "Purchase attempts by outcome",
}, []string{"outcome"})

// CourseReader is the slice of the catalog the ledger needs.
type CourseReader interface {
	GetByID(ctx context.Context, id string) (*course.Course, error)
	LoadVideos(ctx context.Context, courses []course.Course) error
}

type Service struct {
	repo    Repository
	courses CourseReader
	events  events.Publisher
	logger  *slog.Logger
}

func NewService(
	repo Repository,
	courses CourseReader,
	publisher events.Publisher,
	logger *slog.Logger,
) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		repo:    repo,
		courses: courses,
		events:  publisher,
		logger:  logger,
	}
}

// Purchase records that identity now owns courseID. Free and paid courses
// take the same path; no payment is captured.
func (s *Service) Purchase(
	ctx context.Context,
	identity *core.Identity,
	courseID string,
) (p *Purchase, err error) {
	ctx, span := core.StartSpan(ctx, "purchase.Purchase",
		attribute.String("course.id", courseID),
	)
	defer func() { core.EndSpan(span, err) }()

	if identity == nil || identity.UserID == "" {
		return nil, core.UnauthorizedError("")
	}

	c, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		purchasesTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}

	if !c.IsActive {
		purchasesTotal.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("purchase inactive course: %w", core.ErrNotFound)
	}

	p = &Purchase{
		ID:       uuid.New().String(),
		UserID:   identity.UserID,
		CourseID: c.ID,
		Amount:   c.Price,
		Currency: c.Currency,
		Status:   StatusCompleted,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			purchasesTotal.WithLabelValues("already_owned").Inc()
			return nil, core.NewAppError(
				fmt.Errorf("%w: %w", ErrAlreadyOwned, err),
				"course already owned",
				http.StatusConflict,
				"ALREADY_OWNED",
			)
		}
		purchasesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	purchasesTotal.WithLabelValues("completed").Inc()

	s.logger.InfoContext(ctx, "purchase completed",
		"purchase_id", p.ID,
		"user_id", p.UserID,
		"course_id", p.CourseID,
		"amount", p.Amount,
		"currency", p.Currency,
	)

	if pubErr := s.events.Publish(ctx, events.PurchaseCompleted, ToPurchaseResponse(p)); pubErr != nil {
		s.logger.WarnContext(ctx, "event publish failed",
			"event", events.PurchaseCompleted,
			"purchase_id", p.ID,
			"error", pubErr,
		)
	}

	return p, nil
}

// ListMyCourses returns every owned course with full video access, newest
// purchase first. Courses deactivated after purchase are included.
func (s *Service) ListMyCourses(
	ctx context.Context,
	identity *core.Identity,
) ([]OwnedCourse, error) {
	if identity == nil || identity.UserID == "" {
		return nil, core.UnauthorizedError("")
	}

	rows, err := s.repo.ListOwnedCourses(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	courses := make([]course.Course, len(rows))
	for i := range rows {
		courses[i] = rows[i].Course
	}

	if err := s.courses.LoadVideos(ctx, courses); err != nil {
		return nil, err
	}

	owned := make([]OwnedCourse, 0, len(rows))
	for i := range courses {
		detail := course.ToDetail(&courses[i], true)
		isOwned := true
		detail.Owned = &isOwned

		owned = append(owned, OwnedCourse{
			CourseDetail: detail,
			PurchasedAt:  rows[i].PurchasedAt,
		})
	}

	return owned, nil
}

func (s *Service) Owns(
	ctx context.Context,
	userID, courseID string,
) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.repo.Exists(ctx, userID, courseID)
}

func (s *Service) Totals(ctx context.Context) (Totals, error) {
	return s.repo.Totals(ctx)
}

var _ course.OwnershipChecker = (*Service)(nil)
