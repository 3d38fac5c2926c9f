// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Cafe model.
//
// All functions are context-aware and accept a *gorm.DB handle. They follow
// the "thin repository" approach: no business logic, only CRUD persistence.
// Every mutation is a single statement committed on its own.
//
// Error semantics:
//   - When a cafe is not found, functions return ErrNotFound
//     (an alias of gorm.ErrRecordNotFound).
//   - A duplicate name on insert returns ErrDuplicate.
//   - On other DB errors, the raw gorm error is propagated.
//
// Usage:
//
//	cafe, err := repo.GetCafe(ctx, db, 3)
//	if errors.Is(err, repo.ErrNotFound) {
//	    // handle missing
//	}
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-cafe-api/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ListCafes returns every cafe in insertion (id) order. It returns an empty
// slice when the table is empty.
func ListCafes(ctx context.Context, db *gorm.DB) ([]domain.Cafe, error) {
	out := []domain.Cafe{}
	err := db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// CountCafes returns the number of stored cafes.
func CountCafes(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Cafe{}).Count(&total).Error
	return total, err
}

// GetCafe fetches a single cafe by id, or ErrNotFound if missing.
func GetCafe(ctx context.Context, db *gorm.DB, id int) (*domain.Cafe, error) {
	var c domain.Cafe
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCafe inserts c and fills in its auto-assigned ID. A name that is
// already taken yields ErrDuplicate and leaves the table unchanged.
func CreateCafe(ctx context.Context, db *gorm.DB, c *domain.Cafe) error {
	c.ID = 0
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// UpdateCafePrice overwrites coffee_price for the cafe with the given id.
// A nil price stores NULL. Returns ErrNotFound when no row matches.
func UpdateCafePrice(ctx context.Context, db *gorm.DB, id int, price *string) error {
	var v any
	if price != nil {
		v = *price
	}
	res := db.WithContext(ctx).
		Model(&domain.Cafe{}).
		Where("id = ?", id).
		Update("coffee_price", v)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCafe removes the cafe with the given id. Returns ErrNotFound when
// no row matches.
func DeleteCafe(ctx context.Context, db *gorm.DB, id int) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Cafe{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
