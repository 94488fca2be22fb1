// Package reception owns the lot intake records and their status machine.
package reception

import (
	"context"
	"fmt"
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

const targetType = "reception"

type Service struct {
	db    *gorm.DB
	seq   *sequence.Generator
	audit *audit.Logger
}

func NewService(db *gorm.DB, seq *sequence.Generator, logger *audit.Logger) *Service {
	return &Service{db: db, seq: seq, audit: logger}
}

type CreateInput struct {
	ClientID      uint
	ReceptionDate time.Time
	Weight        decimal.Decimal
	ServiceID     uint
	Observations  string
}

// EditInput holds the fields to change; nil fields stay as they are.
type EditInput struct {
	ClientID      *uint
	ReceptionDate *time.Time
	Weight        *decimal.Decimal
	ServiceID     *uint
	Observations  *string
}

func validateWeight(w decimal.Decimal) error {
	if !w.IsPositive() {
		return apperr.Validation("weight must be greater than 0, got %s", w.String())
	}
	return nil
}

func checkReferences(tx *gorm.DB, clientID, serviceID uint) error {
	if err := database.Exists(tx, &models.Client{}, "client", clientID); err != nil {
		return err
	}
	return database.Exists(tx, &models.Service{}, "service", serviceID)
}

// Create records a new lot in draft and assigns its lot id.
func (s *Service) Create(ctx context.Context, actor audit.Actor, in CreateInput) (*models.Reception, error) {
	if err := validateWeight(in.Weight); err != nil {
		return nil, err
	}
	if in.ReceptionDate.IsZero() {
		return nil, apperr.Validation("reception date is required")
	}

	var r models.Reception
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, in.ClientID, in.ServiceID); err != nil {
			return err
		}
		_, err := s.seq.Assign(tx, sequence.LotID(), func(tx *gorm.DB, lotID string) error {
			r = models.Reception{
				LotID:         lotID,
				ClientID:      in.ClientID,
				ReceptionDate: in.ReceptionDate,
				Weight:        in.Weight,
				ServiceID:     in.ServiceID,
				Status:        models.ReceptionStatusDraft,
				Observations:  in.Observations,
				CreatedByID:   actor.UserID,
			}
			return tx.Create(&r).Error
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: targetType,
		TargetID:   r.ID,
		Action:     models.AuditActionCreate,
		Details:    fmt.Sprintf("lot %s received, %s kg", r.LotID, r.Weight.StringFixed(2)),
		After:      r,
	})
	return &r, nil
}

// Edit changes a draft reception. The lot id never changes.
func (s *Service) Edit(ctx context.Context, actor audit.Actor, id uint, in EditInput) (*models.Reception, error) {
	if in.Weight != nil {
		if err := validateWeight(*in.Weight); err != nil {
			return nil, err
		}
	}
	if in.ReceptionDate != nil && in.ReceptionDate.IsZero() {
		return nil, apperr.Validation("reception date is required")
	}

	var before, r models.Reception
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.First(database.ForUpdate(tx), &r, "reception", id); err != nil {
			return err
		}
		if !r.IsEditable() {
			return apperr.EditNotAllowed("reception "+r.LotID, r.Status)
		}
		before = r

		if in.ClientID != nil {
			r.ClientID = *in.ClientID
		}
		if in.ServiceID != nil {
			r.ServiceID = *in.ServiceID
		}
		if in.ReceptionDate != nil {
			r.ReceptionDate = *in.ReceptionDate
		}
		if in.Weight != nil {
			r.Weight = *in.Weight
		}
		if in.Observations != nil {
			r.Observations = *in.Observations
		}
		if err := checkReferences(tx, r.ClientID, r.ServiceID); err != nil {
			return err
		}
		return tx.Save(&r).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: targetType,
		TargetID:   r.ID,
		Action:     models.AuditActionUpdate,
		Details:    "lot " + r.LotID + " updated",
		Before:     before,
		After:      r,
	})
	return &r, nil
}

// Transition moves a reception to status to, following lifecycle.Reception.
func (s *Service) Transition(ctx context.Context, actor audit.Actor, id uint, to models.ReceptionStatus) (*models.Reception, error) {
	var r models.Reception
	var from models.ReceptionStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.First(database.ForUpdate(tx), &r, "reception", id); err != nil {
			return err
		}
		from = r.Status
		if err := lifecycle.Reception.Check("reception "+r.LotID, from, to); err != nil {
			return err
		}
		r.Status = to
		return tx.Model(&r).Update("status", to).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: targetType,
		TargetID:   r.ID,
		Action:     models.AuditActionStatusChange,
		Details:    fmt.Sprintf("lot %s: %s -> %s", r.LotID, from, to),
		Before:     map[string]any{"status": from},
		After:      map[string]any{"status": to},
	})
	return &r, nil
}

// Delete removes a draft reception that no classification refers to.
func (s *Service) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	var r models.Reception
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.First(database.ForUpdate(tx), &r, "reception", id); err != nil {
			return err
		}
		if !r.IsEditable() {
			return apperr.EditNotAllowed("reception "+r.LotID, r.Status)
		}

		var count int64
		if err := tx.Model(&models.Classification{}).Where("reception_id = ?", r.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("classification lookup failed: %w", err)
		}
		if count > 0 {
			return apperr.New(apperr.KindEditNotAllowed, "reception %s has classifications and cannot be deleted", r.LotID)
		}
		return tx.Delete(&r).Error
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: targetType,
		TargetID:   r.ID,
		Action:     models.AuditActionDelete,
		Details:    "lot " + r.LotID + " deleted",
		Before:     r,
	})
	return nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Reception, error) {
	var r models.Reception
	q := s.db.WithContext(ctx).Preload("Client").Preload("Service")
	if err := database.First(q, &r, "reception", id); err != nil {
		return nil, err
	}
	return &r, nil
}

type ListFilter struct {
	Status   models.ReceptionStatus
	ClientID uint
	From     *time.Time
	To       *time.Time
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Reception, error) {
	q := s.db.WithContext(ctx).Model(&models.Reception{}).Preload("Client").Preload("Service")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ClientID != 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.From != nil {
		q = q.Where("reception_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("reception_date <= ?", *f.To)
	}

	var receptions []models.Reception
	if err := q.Order("reception_date DESC").Order("id DESC").Find(&receptions).Error; err != nil {
		return nil, fmt.Errorf("receptions could not be listed: %w", err)
	}
	return receptions, nil
}
