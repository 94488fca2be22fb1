// Package catalog manages billable services, their categories and the
// species (sub categories) used by classification items.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"seafood-backend/internal/apperr"
	"seafood-backend/internal/audit"
	"seafood-backend/internal/database"
	"seafood-backend/internal/models"
	"seafood-backend/internal/sequence"
)

type Service struct {
	db    *gorm.DB
	seq   *sequence.Generator
	audit *audit.Logger
}

func NewService(db *gorm.DB, seq *sequence.Generator, logger *audit.Logger) *Service {
	return &Service{db: db, seq: seq, audit: logger}
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

func (s *Service) CreateCategory(ctx context.Context, actor audit.Actor, in CategoryInput) (*models.ServiceCategory, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("category name is required")
	}

	cat := models.ServiceCategory{Name: name, Description: in.Description, IsActive: true}
	if err := s.db.WithContext(ctx).Create(&cat).Error; err != nil {
		if sequence.IsDuplicate(err) {
			return nil, apperr.Validation("category %q already exists", name)
		}
		return nil, fmt.Errorf("category could not be created: %w", err)
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: "service_category",
		TargetID:   cat.ID,
		Action:     models.AuditActionCreate,
		Details:    "category " + cat.Name + " created",
		After:      cat,
	})
	return &cat, nil
}

func (s *Service) UpdateCategory(ctx context.Context, actor audit.Actor, id uint, in CategoryInput) (*models.ServiceCategory, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("category name is required")
	}

	var before, cat models.ServiceCategory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.First(database.ForUpdate(tx), &cat, "service category", id); err != nil {
			return err
		}
		before = cat
		cat.Name = name
		cat.Description = in.Description
		if in.IsActive != nil {
			cat.IsActive = *in.IsActive
		}
		if err := tx.Save(&cat).Error; err != nil {
			if sequence.IsDuplicate(err) {
				return apperr.Validation("category %q already exists", name)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: "service_category",
		TargetID:   cat.ID,
		Action:     models.AuditActionUpdate,
		Details:    "category " + cat.Name + " updated",
		Before:     before,
		After:      cat,
	})
	return &cat, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]models.ServiceCategory, error) {
	var cats []models.ServiceCategory
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("categories could not be listed: %w", err)
	}
	return cats, nil
}

type SubCategoryInput struct {
	CategoryID  uint   `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateSubCategory adds a species under a category. Names are unique per
// category.
func (s *Service) CreateSubCategory(ctx context.Context, actor audit.Actor, in SubCategoryInput) (*models.ServiceSubCategory, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("species name is required")
	}

	sub := models.ServiceSubCategory{CategoryID: in.CategoryID, Name: name, Description: in.Description, IsActive: true}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.Exists(tx, &models.ServiceCategory{}, "service category", in.CategoryID); err != nil {
			return err
		}
		if err := tx.Create(&sub).Error; err != nil {
			if sequence.IsDuplicate(err) {
				return apperr.Validation("species %q already exists in this category", name)
			}
			return fmt.Errorf("species could not be created: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: "service_sub_category",
		TargetID:   sub.ID,
		Action:     models.AuditActionCreate,
		Details:    "species " + sub.Name + " created",
		After:      sub,
	})
	return &sub, nil
}

func (s *Service) ListSubCategories(ctx context.Context, categoryID uint) ([]models.ServiceSubCategory, error) {
	q := s.db.WithContext(ctx).Model(&models.ServiceSubCategory{})
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	var subs []models.ServiceSubCategory
	if err := q.Order("name ASC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("species could not be listed: %w", err)
	}
	return subs, nil
}

type ServiceInput struct {
	Code        *int   `json:"code"` // nil: next free code from 1011
	Name        string `json:"name"`
	CategoryID  *uint  `json:"category_id"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

func (s *Service) checkCategory(tx *gorm.DB, id *uint) error {
	if id == nil {
		return nil
	}
	return database.Exists(tx, &models.ServiceCategory{}, "service category", *id)
}

// CreateService stores a service. An explicit code must lie in
// [1000, 9999]; without one the next code from 1011 upward is allocated.
func (s *Service) CreateService(ctx context.Context, actor audit.Actor, in ServiceInput) (*models.Service, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("service name is required")
	}
	if in.Code != nil && (*in.Code < models.ServiceCodeMin || *in.Code > models.ServiceCodeMax) {
		return nil, apperr.Validation("service code must be between %d and %d", models.ServiceCodeMin, models.ServiceCodeMax)
	}

	svc := models.Service{
		Name:        name,
		CategoryID:  in.CategoryID,
		Description: in.Description,
		IsActive:    true,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkCategory(tx, in.CategoryID); err != nil {
			return err
		}

		if in.Code != nil {
			svc.Code = *in.Code
			if err := tx.Create(&svc).Error; err != nil {
				if sequence.IsDuplicate(err) {
					return apperr.Validation("service code %d is already used", *in.Code)
				}
				return fmt.Errorf("service could not be created: %w", err)
			}
			return nil
		}

		_, err := s.seq.Assign(tx, sequence.ServiceCode(), func(tx *gorm.DB, id string) error {
			code, err := strconv.Atoi(id)
			if err != nil {
				return err
			}
			svc.ID = 0
			svc.Code = code
			return tx.Create(&svc).Error
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: "service",
		TargetID:   svc.ID,
		Action:     models.AuditActionCreate,
		Details:    fmt.Sprintf("service %d %s created", svc.Code, svc.Name),
		After:      svc,
	})
	return &svc, nil
}

// UpdateService edits a service. Its code is fixed at creation.
func (s *Service) UpdateService(ctx context.Context, actor audit.Actor, id uint, in ServiceInput) (*models.Service, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("service name is required")
	}

	var before, svc models.Service
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.First(database.ForUpdate(tx), &svc, "service", id); err != nil {
			return err
		}
		if in.Code != nil && *in.Code != svc.Code {
			return apperr.Validation("service code %d cannot be changed", svc.Code)
		}
		if err := s.checkCategory(tx, in.CategoryID); err != nil {
			return err
		}
		before = svc
		svc.Name = name
		svc.CategoryID = in.CategoryID
		svc.Description = in.Description
		if in.IsActive != nil {
			svc.IsActive = *in.IsActive
		}
		return tx.Save(&svc).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: "service",
		TargetID:   svc.ID,
		Action:     models.AuditActionUpdate,
		Details:    fmt.Sprintf("service %d updated", svc.Code),
		Before:     before,
		After:      svc,
	})
	return &svc, nil
}

func (s *Service) GetService(ctx context.Context, id uint) (*models.Service, error) {
	var svc models.Service
	if err := database.First(s.db.WithContext(ctx).Preload("Category"), &svc, "service", id); err != nil {
		return nil, err
	}
	return &svc, nil
}

// GetServiceByCode looks a service up by its 4 digit code.
func (s *Service) GetServiceByCode(ctx context.Context, code int) (*models.Service, error) {
	var svc models.Service
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&svc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("service with code", code)
	}
	if err != nil {
		return nil, fmt.Errorf("service %d could not be loaded: %w", code, err)
	}
	return &svc, nil
}

func (s *Service) ListServices(ctx context.Context, categoryID uint, activeOnly bool) ([]models.Service, error) {
	q := s.db.WithContext(ctx).Model(&models.Service{})
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var services []models.Service
	if err := q.Order("code ASC").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("services could not be listed: %w", err)
	}
	return services, nil
}
