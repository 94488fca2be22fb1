// Package classification owns the per species breakdown of accepted lots and
// the tunnel stage that follows it.
package classification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"seafood-backend/internal/apperr"
	"seafood-backend/internal/audit"
	"seafood-backend/internal/database"
	"seafood-backend/internal/lifecycle"
	"seafood-backend/internal/models"
	"seafood-backend/internal/sequence"
)

const targetType = "classification"

type Service struct {
	db    *gorm.DB
	audit *audit.Logger
	now   func() time.Time
}

func NewService(db *gorm.DB, logger *audit.Logger) *Service {
	return &Service{db: db, audit: logger, now: time.Now}
}

// ItemInput names the species either by sub category id or by a free text
// tag, never both.
type ItemInput struct {
	SpeciesID  *uint
	SpeciesTag string
	Weight     decimal.Decimal
	PlateCount int
}

type CreateInput struct {
	ReceptionID      uint
	PointerFullName  string
	ReferenceChambre string
	StartDatetime    time.Time
	EndDatetime      *time.Time
	TunnelIn         *time.Time
	TunnelOut        *time.Time
	Observations     string
	Items            []ItemInput
}

// EditInput holds the header fields to change; nil fields stay as they are.
type EditInput struct {
	PointerFullName  *string
	ReferenceChambre *string
	StartDatetime    *time.Time
	EndDatetime      *time.Time
	TunnelIn         *time.Time
	TunnelOut        *time.Time
	Observations     *string
}

func validateTimes(c *models.Classification) error {
	if c.StartDatetime.IsZero() {
		return apperr.Validation("start datetime is required")
	}
	if c.EndDatetime != nil && !c.EndDatetime.After(c.StartDatetime) {
		return apperr.Validation("end datetime must be after start datetime")
	}
	if c.TunnelOut != nil {
		if c.TunnelIn == nil {
			return apperr.Validation("tunnel out requires tunnel in")
		}
		if !c.TunnelOut.After(*c.TunnelIn) {
			return apperr.Validation("tunnel out must be after tunnel in")
		}
	}
	return nil
}

func validateHeader(c *models.Classification) error {
	if c.PointerFullName == "" {
		return apperr.Validation("pointer full name is required")
	}
	if c.ReferenceChambre == "" {
		return apperr.Validation("cold room reference is required")
	}
	return validateTimes(c)
}

// buildItem validates in and checks that a referenced species exists.
func buildItem(tx *gorm.DB, in ItemInput) (models.ClassificationItem, error) {
	tag := strings.TrimSpace(in.SpeciesTag)
	if (in.SpeciesID == nil) == (tag == "") {
		return models.ClassificationItem{}, apperr.Validation("give either a species or a species tag")
	}
	if !in.Weight.IsPositive() {
		return models.ClassificationItem{}, apperr.Validation("item weight must be greater than 0, got %s", in.Weight.String())
	}
	if in.PlateCount < 0 {
		return models.ClassificationItem{}, apperr.Validation("plate count cannot be negative")
	}
	if in.SpeciesID != nil {
		if err := database.Exists(tx, &models.ServiceSubCategory{}, "species", *in.SpeciesID); err != nil {
			return models.ClassificationItem{}, err
		}
	}
	return models.ClassificationItem{
		SpeciesKey: models.SpeciesKeyFor(in.SpeciesID, tag),
		SpeciesID:  in.SpeciesID,
		SpeciesTag: tag,
		Weight:     in.Weight,
		PlateCount: in.PlateCount,
	}, nil
}

func duplicateSpecies(err error) error {
	if sequence.IsDuplicate(err) {
		return apperr.Validation("this species is already listed in the classification")
	}
	return err
}

// checkEligible requires an accepted reception whose service goes through
// classification and which has no classification other than cancelled ones.
func checkEligible(tx *gorm.DB, r *models.Reception) error {
	if r.Status != models.ReceptionStatusAccepted {
		return apperr.Validation("reception %s must be accepted to be classified, it is %s", r.LotID, r.Status)
	}
	if r.Service != nil && !r.Service.RequiresClassification() {
		return apperr.Validation("service %d of reception %s does not go through classification", r.Service.Code, r.LotID)
	}

	var active int64
	err := tx.Model(&models.Classification{}).
		Where("reception_id = ? AND status <> ?", r.ID, models.ClassificationStatusCancelled).
		Count(&active).Error
	if err != nil {
		return fmt.Errorf("classification lookup failed: %w", err)
	}
	if active > 0 {
		return apperr.Validation("reception %s already has an active classification", r.LotID)
	}
	return nil
}

// Create opens a draft classification for an eligible reception.
func (s *Service) Create(ctx context.Context, actor audit.Actor, in CreateInput) (*models.Classification, error) {
	c := models.Classification{
		ReceptionID:      in.ReceptionID,
		PointerFullName:  strings.TrimSpace(in.PointerFullName),
		ReferenceChambre: strings.TrimSpace(in.ReferenceChambre),
		StartDatetime:    in.StartDatetime,
		EndDatetime:      in.EndDatetime,
		TunnelIn:         in.TunnelIn,
		TunnelOut:        in.TunnelOut,
		Status:           models.ClassificationStatusDraft,
		Observations:     in.Observations,
		CreatedByID:      actor.UserID,
	}
	if err := validateHeader(&c); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.Reception
		if err := database.First(database.ForUpdate(tx).Preload("Service"), &r, "reception", in.ReceptionID); err != nil {
			return err
		}
		if err := checkEligible(tx, &r); err != nil {
			return err
		}

		seen := make(map[string]bool, len(in.Items))
		for i, itemIn := range in.Items {
			item, err := buildItem(tx, itemIn)
			if err != nil {
				return err
			}
			if seen[item.SpeciesKey] {
				return apperr.Validation("this species is already listed in the classification")
			}
			seen[item.SpeciesKey] = true
			item.Position = i + 1
			c.Items = append(c.Items, item)
		}

		if err := tx.Create(&c).Error; err != nil {
			return duplicateSpecies(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: targetType,
		TargetID:   c.ID,
		Action:     models.AuditActionCreate,
		Details:    fmt.Sprintf("classification created for reception %d, %d items", c.ReceptionID, len(c.Items)),
		After:      c,
	})
	return &c, nil
}

// lockDraft loads the classification for update and refuses anything but a
// draft.
func lockDraft(tx *gorm.DB, id uint) (*models.Classification, error) {
	var c models.Classification
	if err := database.First(database.ForUpdate(tx), &c, "classification", id); err != nil {
		return nil, err
	}
	if !c.IsEditable() {
		return nil, apperr.EditNotAllowed("classification", c.Status)
	}
	return &c, nil
}

func (s *Service) Edit(ctx context.Context, actor audit.Actor, id uint, in EditInput) (*models.Classification, error) {
	var before, c models.Classification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockDraft(tx, id)
		if err != nil {
			return err
		}
		c = *locked
		before = c

		if in.PointerFullName != nil {
			c.PointerFullName = strings.TrimSpace(*in.PointerFullName)
		}
		if in.ReferenceChambre != nil {
			c.ReferenceChambre = strings.TrimSpace(*in.ReferenceChambre)
		}
		if in.StartDatetime != nil {
			c.StartDatetime = *in.StartDatetime
		}
		if in.EndDatetime != nil {
			c.EndDatetime = in.EndDatetime
		}
		if in.TunnelIn != nil {
			c.TunnelIn = in.TunnelIn
		}
		if in.TunnelOut != nil {
			c.TunnelOut = in.TunnelOut
		}
		if in.Observations != nil {
			c.Observations = *in.Observations
		}
		if err := validateHeader(&c); err != nil {
			return err
		}
		return tx.Omit("Items").Save(&c).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: targetType,
		TargetID:   c.ID,
		Action:     models.AuditActionUpdate,
		Details:    "classification updated",
		Before:     before,
		After:      c,
	})
	return s.Get(ctx, c.ID)
}

func (s *Service) AddItem(ctx context.Context, actor audit.Actor, id uint, in ItemInput) (*models.ClassificationItem, error) {
	var item models.ClassificationItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockDraft(tx, id); err != nil {
			return err
		}
		var err error
		if item, err = buildItem(tx, in); err != nil {
			return err
		}

		var last struct{ Max *int }
		if err := tx.Model(&models.ClassificationItem{}).
			Select("MAX(position) AS max").
			Where("classification_id = ?", id).
			Scan(&last).Error; err != nil {
			return err
		}
		item.ClassificationID = id
		item.Position = 1
		if last.Max != nil {
			item.Position = *last.Max + 1
		}

		if err := tx.Create(&item).Error; err != nil {
			return duplicateSpecies(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: targetType,
		TargetID:   id,
		Action:     models.AuditActionUpdate,
		Details:    fmt.Sprintf("item %s added, %s kg", item.SpeciesKey, item.Weight.StringFixed(2)),
		After:      item,
	})
	return &item, nil
}

func (s *Service) UpdateItem(ctx context.Context, actor audit.Actor, id, itemID uint, in ItemInput) (*models.ClassificationItem, error) {
	var before, item models.ClassificationItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockDraft(tx, id); err != nil {
			return err
		}
		if err := tx.Where("classification_id = ?", id).First(&item, itemID).Error; err != nil {
			return apperr.NotFound("classification item", itemID)
		}
		before = item

		built, err := buildItem(tx, in)
		if err != nil {
			return err
		}
		item.SpeciesKey = built.SpeciesKey
		item.SpeciesID = built.SpeciesID
		item.SpeciesTag = built.SpeciesTag
		item.Weight = built.Weight
		item.PlateCount = built.PlateCount

		if err := tx.Save(&item).Error; err != nil {
			return duplicateSpecies(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: targetType,
		TargetID:   id,
		Action:     models.AuditActionUpdate,
		Details:    fmt.Sprintf("item %d updated", item.ID),
		Before:     before,
		After:      item,
	})
	return &item, nil
}

func (s *Service) RemoveItem(ctx context.Context, actor audit.Actor, id, itemID uint) error {
	var item models.ClassificationItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockDraft(tx, id); err != nil {
			return err
		}
		if err := tx.Where("classification_id = ?", id).First(&item, itemID).Error; err != nil {
			return apperr.NotFound("classification item", itemID)
		}
		return tx.Delete(&item).Error
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: targetType,
		TargetID:   id,
		Action:     models.AuditActionUpdate,
		Details:    fmt.Sprintf("item %d removed", item.ID),
		Before:     item,
	})
	return nil
}

// Transition moves a classification along lifecycle.Classification.
// Validation needs at least one item; entering the tunnel stamps tunnel_in
// and completion stamps tunnel_out, unless they were already recorded.
func (s *Service) Transition(ctx context.Context, actor audit.Actor, id uint, to models.ClassificationStatus) (*models.Classification, error) {
	var c models.Classification
	var from models.ClassificationStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.First(database.ForUpdate(tx), &c, "classification", id); err != nil {
			return err
		}
		from = c.Status
		if err := lifecycle.Classification.Check("classification", from, to); err != nil {
			return err
		}

		now := s.now()
		switch to {
		case models.ClassificationStatusValidated:
			var items int64
			if err := tx.Model(&models.ClassificationItem{}).Where("classification_id = ?", c.ID).Count(&items).Error; err != nil {
				return err
			}
			if items == 0 {
				return apperr.Validation("a classification needs at least one item to be validated")
			}
		case models.ClassificationStatusInTunnel:
			if c.TunnelIn == nil {
				c.TunnelIn = &now
			}
		case models.ClassificationStatusCompleted:
			if c.TunnelOut == nil {
				c.TunnelOut = &now
			}
		}
		if err := validateTimes(&c); err != nil {
			return err
		}

		c.Status = to
		return tx.Model(&c).Updates(map[string]any{
			"status":     c.Status,
			"tunnel_in":  c.TunnelIn,
			"tunnel_out": c.TunnelOut,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: targetType,
		TargetID:   c.ID,
		Action:     models.AuditActionStatusChange,
		Details:    fmt.Sprintf("%s -> %s", from, to),
		Before:     map[string]any{"status": from},
		After:      map[string]any{"status": to},
	})
	return s.Get(ctx, c.ID)
}

// Delete removes a draft classification together with its items.
func (s *Service) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	var c *models.Classification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if c, err = lockDraft(tx, id); err != nil {
			return err
		}
		if err := tx.Where("classification_id = ?", id).Delete(&models.ClassificationItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(c).Error
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: targetType,
		TargetID:   id,
		Action:     models.AuditActionDelete,
		Details:    fmt.Sprintf("classification of reception %d deleted", c.ReceptionID),
		Before:     c,
	})
	return nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Classification, error) {
	var c models.Classification
	q := s.db.WithContext(ctx).
		Preload("Reception").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Items.Species")
	if err := database.First(q, &c, "classification", id); err != nil {
		return nil, err
	}
	return &c, nil
}

type ListFilter struct {
	ReceptionID uint
	Status      models.ClassificationStatus
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Classification, error) {
	q := s.db.WithContext(ctx).Model(&models.Classification{}).Preload("Items")
	if f.ReceptionID != 0 {
		q = q.Where("reception_id = ?", f.ReceptionID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var list []models.Classification
	if err := q.Order("start_datetime DESC").Order("id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("classifications could not be listed: %w", err)
	}
	return list, nil
}
