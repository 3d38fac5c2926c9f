// Package services – QueryService
//
// This file implements the read side of the catalog: listing every cafe,
// picking one at random and filtering by location. All methods read the
// full table and work on the in-memory list.
package services

import (
	"context"
	"math/rand/v2"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-cafe-api/internal/domain"
	"github.com/tbourn/go-cafe-api/internal/search"
)

// CafeRepo defines the repository contract required by the cafe services.
type CafeRepo interface {
	// ListCafes returns every cafe in id order.
	ListCafes(ctx context.Context, db *gorm.DB) ([]domain.Cafe, error)

	// GetCafe fetches a cafe by id.
	GetCafe(ctx context.Context, db *gorm.DB, id int) (*domain.Cafe, error)

	// CreateCafe inserts a cafe and assigns its id.
	CreateCafe(ctx context.Context, db *gorm.DB, c *domain.Cafe) error

	// UpdateCafePrice overwrites coffee_price (nil stores NULL).
	UpdateCafePrice(ctx context.Context, db *gorm.DB, id int, price *string) error

	// DeleteCafe removes a cafe by id.
	DeleteCafe(ctx context.Context, db *gorm.DB, id int) error
}

// QueryService serves the public read operations.
type QueryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the cafe repository used by this service.
	Repo CafeRepo

	// Intn returns a uniform value in [0, n). Defaults to math/rand/v2.
	Intn func(n int) int
}

// NewQueryService constructs a QueryService using the package-level
// random source.
func NewQueryService(db *gorm.DB, r CafeRepo) *QueryService {
	return &QueryService{DB: db, Repo: r, Intn: rand.IntN}
}

// All returns every cafe in store order.
func (s *QueryService) All(ctx context.Context) ([]domain.Cafe, error) {
	ctx, span := otel.Tracer("services/QueryService").Start(ctx, "All")
	defer span.End()

	cafes, err := s.Repo.ListCafes(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("cafe.count", len(cafes)))
	return cafes, nil
}

// Random returns one cafe chosen uniformly by position in the listing, so
// gaps left by deleted ids never produce an empty result. It returns
// ErrNoCafes when the catalog is empty.
func (s *QueryService) Random(ctx context.Context) (*domain.Cafe, error) {
	ctx, span := otel.Tracer("services/QueryService").Start(ctx, "Random")
	defer span.End()

	cafes, err := s.Repo.ListCafes(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if len(cafes) == 0 {
		return nil, ErrNoCafes
	}

	intn := s.Intn
	if intn == nil {
		intn = rand.IntN
	}
	picked := cafes[intn(len(cafes))]
	span.SetAttributes(attribute.Int("cafe.id", picked.ID))
	return &picked, nil
}

// Search returns the cafes whose location equals the title-cased query.
func (s *QueryService) Search(ctx context.Context, loc string) ([]domain.Cafe, error) {
	ctx, span := otel.Tracer("services/QueryService").Start(ctx, "Search",
		trace.WithAttributes(attribute.String("cafe.location", search.NormalizeLocation(loc))),
	)
	defer span.End()

	cafes, err := s.Repo.ListCafes(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	return search.FilterByLocation(cafes, loc), nil
}
