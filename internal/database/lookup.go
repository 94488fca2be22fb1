package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"seafood-backend/internal/apperr"
)

// ForUpdate adds SELECT ... FOR UPDATE. The sqlite dialect drops the clause;
// there the single writer connection provides the same serialization.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// First loads the row with primary key id into dest, turning a miss into a
// not_found error naming entity.
func First(tx *gorm.DB, dest any, entity string, id uint) error {
	if err := tx.First(dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(entity, id)
		}
		return fmt.Errorf("%s %d could not be loaded: %w", entity, id, err)
	}
	return nil
}

// Exists reports a not_found error when no row of model has primary key id.
func Exists(tx *gorm.DB, model any, entity string, id uint) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("%s %d lookup failed: %w", entity, id, err)
	}
	if count == 0 {
		return apperr.NotFound(entity, id)
	}
	return nil
}
