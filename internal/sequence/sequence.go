// Package sequence hands out human readable identifiers (lot ids, accounting
// codes, transaction and purchase numbers).
//
// Each series has one row in sequence_counters. Next increments that row
// inside the caller's transaction, so concurrent writers serialize on the row
// and every committed identifier is distinct. The first time a series is
// used, its counter is seeded from the highest identifier already stored in
// the owning table.
package sequence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"seafood-backend/internal/apperr"
	"seafood-backend/internal/models"
)

const DefaultMaxAttempts = 10

// LegacyScan returns the numeric suffix of the last identifier already
// stored for a series, 0 when there is none.
type LegacyScan func(tx *gorm.DB) (int64, error)

type Series struct {
	Key    string
	Prefix string
	Width  int
	Floor  int64 // first value handed out
	Max    int64 // 0 means unbounded
	Legacy LegacyScan
}

func (s Series) Format(n int64) string {
	return fmt.Sprintf("%s%0*d", s.Prefix, s.Width, n)
}

type Generator struct {
	maxAttempts int
}

func NewGenerator(maxAttempts int) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{maxAttempts: maxAttempts}
}

// Next reserves the next value of s. tx must be a transaction; the value is
// only consumed if tx commits.
func (g *Generator) Next(tx *gorm.DB, s Series) (int64, error) {
	if err := g.ensureCounter(tx, s); err != nil {
		return 0, err
	}

	res := tx.Model(&models.SequenceCounter{}).
		Where("series_key = ?", s.Key).
		Update("last_value", gorm.Expr("last_value + 1"))
	if res.Error != nil {
		return 0, fmt.Errorf("sequence %s could not be incremented: %w", s.Key, res.Error)
	}

	var counter models.SequenceCounter
	if err := tx.First(&counter, "series_key = ?", s.Key).Error; err != nil {
		return 0, fmt.Errorf("sequence %s could not be read: %w", s.Key, err)
	}
	if s.Max > 0 && counter.LastValue > s.Max {
		return 0, apperr.New(apperr.KindNoCodesLeft, "no codes left in series %s (max %d)", s.Key, s.Max)
	}
	return counter.LastValue, nil
}

// NextString is Next formatted with the series template.
func (g *Generator) NextString(tx *gorm.DB, s Series) (string, error) {
	n, err := g.Next(tx, s)
	if err != nil {
		return "", err
	}
	return s.Format(n), nil
}

// Assign draws identifiers from s and hands each to insert, inside a
// savepoint, until one is accepted. A unique violation (a row written
// outside the counter) makes it draw again; after maxAttempts it gives up
// with duplicate_identifier.
func (g *Generator) Assign(tx *gorm.DB, s Series, insert func(tx *gorm.DB, id string) error) (string, error) {
	var lastErr error
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		id, err := g.NextString(tx, s)
		if err != nil {
			return "", err
		}
		err = tx.Transaction(func(sp *gorm.DB) error {
			return insert(sp, id)
		})
		if err == nil {
			return id, nil
		}
		if !IsDuplicate(err) {
			return "", err
		}
		lastErr = err
	}
	return "", &apperr.Error{
		Kind:    apperr.KindDuplicateIdentifier,
		Message: fmt.Sprintf("could not assign a unique %s after %d attempts", s.Key, g.maxAttempts),
		Err:     lastErr,
	}
}

func (g *Generator) ensureCounter(tx *gorm.DB, s Series) error {
	var count int64
	if err := tx.Model(&models.SequenceCounter{}).Where("series_key = ?", s.Key).Count(&count).Error; err != nil {
		return fmt.Errorf("sequence %s lookup failed: %w", s.Key, err)
	}
	if count > 0 {
		return nil
	}

	seed := s.Floor - 1
	if s.Legacy != nil {
		last, err := s.Legacy(tx)
		if err != nil {
			return fmt.Errorf("sequence %s seed scan failed: %w", s.Key, err)
		}
		if last > seed {
			seed = last
		}
	}

	// Another writer may create the row first; theirs wins.
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.SequenceCounter{SeriesKey: s.Key, LastValue: seed}).Error
}

// ParseSuffix extracts the number after prefix, accepting the legacy
// hyphenated form (TRX-000012). Anything unparsable yields 0.
func ParseSuffix(value, prefix string) int64 {
	rest, ok := strings.CutPrefix(value, prefix)
	if !ok {
		return 0
	}
	rest = strings.TrimPrefix(rest, "-")
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// IsDuplicate reports whether err is a unique constraint violation.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
