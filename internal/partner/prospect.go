package partner

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"seafood-backend/internal/apperr"
	"seafood-backend/internal/audit"
	"seafood-backend/internal/database"
	"seafood-backend/internal/models"
)

type ProspectInput struct {
	Name    string                `json:"name"`
	Company string                `json:"company"`
	Email   string                `json:"email"`
	Phone   string                `json:"phone"`
	Source  string                `json:"source"`
	Status  models.ProspectStatus `json:"status"`
	Notes   string                `json:"notes"`
}

func validProspectStatus(s models.ProspectStatus) bool {
	switch s {
	case models.ProspectStatusNew, models.ProspectStatusContacted, models.ProspectStatusQualified,
		models.ProspectStatusRelaunched, models.ProspectStatusConverted, models.ProspectStatusLost:
		return true
	}
	return false
}

func (in *ProspectInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperr.Validation("prospect name is required")
	}
	if in.Status == "" {
		in.Status = models.ProspectStatusNew
	}
	if !validProspectStatus(in.Status) {
		return apperr.Validation("unknown prospect status %q", in.Status)
	}
	return nil
}

func (in *ProspectInput) apply(p *models.Prospect) {
	p.Name = in.Name
	p.Company = in.Company
	p.Email = in.Email
	p.Phone = in.Phone
	p.Source = in.Source
	p.Status = in.Status
	p.Notes = in.Notes
}

func (s *Service) CreateProspect(ctx context.Context, actor audit.Actor, in ProspectInput) (*models.Prospect, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var p models.Prospect
	in.apply(&p)
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("prospect could not be created: %w", err)
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: "prospect",
		TargetID:   p.ID,
		Action:     models.AuditActionCreate,
		Details:    "prospect " + p.Name + " created",
		After:      p,
	})
	return &p, nil
}

func (s *Service) UpdateProspect(ctx context.Context, actor audit.Actor, id uint, in ProspectInput) (*models.Prospect, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var before, p models.Prospect
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.First(database.ForUpdate(tx), &p, "prospect", id); err != nil {
			return err
		}
		before = p
		in.apply(&p)
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: "prospect",
		TargetID:   p.ID,
		Action:     models.AuditActionUpdate,
		Details:    "prospect " + p.Name + " updated",
		Before:     before,
		After:      p,
	})
	return &p, nil
}

// SetProspectStatus moves a prospect to any pipeline status; there is no
// transition table for prospects.
func (s *Service) SetProspectStatus(ctx context.Context, actor audit.Actor, id uint, status models.ProspectStatus) (*models.Prospect, error) {
	if !validProspectStatus(status) {
		return nil, apperr.Validation("unknown prospect status %q", status)
	}

	var p models.Prospect
	var from models.ProspectStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.First(database.ForUpdate(tx), &p, "prospect", id); err != nil {
			return err
		}
		from = p.Status
		p.Status = status
		return tx.Model(&p).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: "prospect",
		TargetID:   p.ID,
		Action:     models.AuditActionStatusChange,
		Details:    fmt.Sprintf("%s -> %s", from, status),
	})
	return &p, nil
}

func (s *Service) ListProspects(ctx context.Context, status models.ProspectStatus) ([]models.Prospect, error) {
	q := s.db.WithContext(ctx).Model(&models.Prospect{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var prospects []models.Prospect
	if err := q.Order("created_at DESC").Find(&prospects).Error; err != nil {
		return nil, fmt.Errorf("prospects could not be listed: %w", err)
	}
	return prospects, nil
}
