// Package services – MutationService
//
// This file implements the write side of the catalog: adding a cafe,
// updating its coffee price and removing it when reported closed. Every
// mutation is a single statement committed on its own. API key checks
// happen in the HTTP layer before these methods are reached.
//
// Outcomes are counted on cafe_mutations_total{op,result}.
package services

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-cafe-api/internal/domain"
	"github.com/tbourn/go-cafe-api/internal/repo"
)

const (
	opAdd         = "add"
	opUpdatePrice = "update_price"
	opDelete      = "delete"
)

// NewCafe carries the attributes accepted when adding a cafe. The id is
// always assigned by the store. A nil required attribute was not sent; an
// empty one was sent blank and is stored as is.
type NewCafe struct {
	Name         *string
	MapURL       *string
	ImgURL       *string
	Location     *string
	Seats        *string
	HasToilet    bool
	HasWifi      bool
	HasSockets   bool
	CanTakeCalls bool
	CoffeePrice  *string
}

// MutationService serves the add, update-price and delete operations.
type MutationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the cafe repository used by this service.
	Repo CafeRepo
}

// NewMutationService constructs a MutationService.
func NewMutationService(db *gorm.DB, r CafeRepo) *MutationService {
	return &MutationService{DB: db, Repo: r}
}

// Add validates the required attributes and inserts a new cafe.
//
// Errors:
//   - ErrMissingField (wrapped with the field name) when name, map_url,
//     img_url, location or seats is absent.
//   - ErrDuplicateName when the name is already taken; the store is unchanged.
func (s *MutationService) Add(ctx context.Context, in NewCafe) (*domain.Cafe, error) {
	ctx, span := otel.Tracer("services/MutationService").Start(ctx, "Add")
	defer span.End()

	if field := firstMissing(in); field != "" {
		record(opAdd, resultInvalid)
		return nil, fmt.Errorf("%w: %s", ErrMissingField, field)
	}

	span.SetAttributes(attribute.String("cafe.name", *in.Name))

	c := &domain.Cafe{
		Name:         *in.Name,
		MapURL:       *in.MapURL,
		ImgURL:       *in.ImgURL,
		Location:     *in.Location,
		Seats:        *in.Seats,
		HasToilet:    in.HasToilet,
		HasWifi:      in.HasWifi,
		HasSockets:   in.HasSockets,
		CanTakeCalls: in.CanTakeCalls,
		CoffeePrice:  in.CoffeePrice,
	}
	if err := s.Repo.CreateCafe(ctx, s.DB, c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			record(opAdd, resultConflict)
			return nil, ErrDuplicateName
		}
		record(opAdd, resultError)
		return nil, err
	}
	record(opAdd, resultOK)
	span.SetAttributes(attribute.Int("cafe.id", c.ID))
	return c, nil
}

// UpdatePrice overwrites the coffee price of cafe id. The lookup runs first,
// so a missing cafe yields ErrCafeNotFound even when price is nil; a nil
// price on an existing cafe yields ErrMissingPrice.
func (s *MutationService) UpdatePrice(ctx context.Context, id int, price *string) (*domain.Cafe, error) {
	ctx, span := otel.Tracer("services/MutationService").Start(ctx, "UpdatePrice",
		trace.WithAttributes(attribute.Int("cafe.id", id)),
	)
	defer span.End()

	c, err := s.lookup(ctx, opUpdatePrice, id)
	if err != nil {
		return nil, err
	}
	if price == nil {
		record(opUpdatePrice, resultInvalid)
		return nil, ErrMissingPrice
	}
	if err := s.Repo.UpdateCafePrice(ctx, s.DB, id, price); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			record(opUpdatePrice, resultNotFound)
			return nil, ErrCafeNotFound
		}
		record(opUpdatePrice, resultError)
		return nil, err
	}
	record(opUpdatePrice, resultOK)
	c.CoffeePrice = price
	return c, nil
}

// Delete removes cafe id and returns the record as it was before removal.
func (s *MutationService) Delete(ctx context.Context, id int) (*domain.Cafe, error) {
	ctx, span := otel.Tracer("services/MutationService").Start(ctx, "Delete",
		trace.WithAttributes(attribute.Int("cafe.id", id)),
	)
	defer span.End()

	c, err := s.lookup(ctx, opDelete, id)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.DeleteCafe(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			record(opDelete, resultNotFound)
			return nil, ErrCafeNotFound
		}
		record(opDelete, resultError)
		return nil, err
	}
	record(opDelete, resultOK)
	return c, nil
}

func (s *MutationService) lookup(ctx context.Context, op string, id int) (*domain.Cafe, error) {
	c, err := s.Repo.GetCafe(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			record(op, resultNotFound)
			return nil, ErrCafeNotFound
		}
		record(op, resultError)
		return nil, err
	}
	return c, nil
}

// firstMissing reports the first required attribute that was not sent.
func firstMissing(in NewCafe) string {
	required := []struct {
		name  string
		value *string
	}{
		{"name", in.Name},
		{"map_url", in.MapURL},
		{"img_url", in.ImgURL},
		{"location", in.Location},
		{"seats", in.Seats},
	}
	for _, f := range required {
		if f.value == nil {
			return f.name
		}
	}
	return ""
}
