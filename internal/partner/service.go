// Package partner manages clients, suppliers and prospects.
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
	"seafood-backend/internal/sequence"
)

const DefaultPaymentTerms = 30

type Service struct {
	db    *gorm.DB
	seq   *sequence.Generator
	audit *audit.Logger
}

func NewService(db *gorm.DB, seq *sequence.Generator, logger *audit.Logger) *Service {
	return &Service{db: db, seq: seq, audit: logger}
}

type ClientInput struct {
	Name          string               `json:"name"`
	ClientType    models.ClientType    `json:"client_type"`
	Responsible   string               `json:"responsible"`
	Mobile        string               `json:"mobile"`
	Phone         string               `json:"phone"`
	Email         string               `json:"email"`
	Website       string               `json:"website"`
	Address       string               `json:"address"`
	City          string               `json:"city"`
	PostalCode    string               `json:"postal_code"`
	Country       string               `json:"country"`
	TradeRegister string               `json:"trade_register"`
	TaxID         string               `json:"tax_id"`
	Status        models.PartnerStatus `json:"status"`
	Observations  string               `json:"observations"`
}

func validClientStatus(s models.PartnerStatus) bool {
	switch s {
	case models.PartnerStatusActive, models.PartnerStatusInactive, models.PartnerStatusSuspended:
		return true
	}
	return false
}

func validSupplierStatus(s models.PartnerStatus) bool {
	return s == models.PartnerStatusActive || s == models.PartnerStatusSuspended
}

func (in *ClientInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperr.Validation("client name is required")
	}
	if in.ClientType == "" {
		in.ClientType = models.ClientTypeCompany
	}
	switch in.ClientType {
	case models.ClientTypeIndividual, models.ClientTypeCompany, models.ClientTypeOrganization:
	default:
		return apperr.Validation("unknown client type %q", in.ClientType)
	}
	if in.Status == "" {
		in.Status = models.PartnerStatusActive
	}
	if !validClientStatus(in.Status) {
		return apperr.Validation("unknown client status %q", in.Status)
	}
	return nil
}

func (in *ClientInput) apply(c *models.Client) {
	c.Name = in.Name
	c.ClientType = in.ClientType
	c.Responsible = in.Responsible
	c.Mobile = in.Mobile
	c.Phone = in.Phone
	c.Email = in.Email
	c.Website = in.Website
	c.Address = in.Address
	c.City = in.City
	c.PostalCode = in.PostalCode
	c.Country = in.Country
	c.TradeRegister = in.TradeRegister
	c.TaxID = in.TaxID
	c.Status = in.Status
	c.Observations = in.Observations
}

// CreateClient stores a client and assigns its 41XXXXXX accounting code.
func (s *Service) CreateClient(ctx context.Context, actor audit.Actor, in ClientInput) (*models.Client, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var client models.Client
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.seq.Assign(tx, sequence.ClientAccountingCode(), func(tx *gorm.DB, code string) error {
			client = models.Client{AccountingCode: code}
			in.apply(&client)
			return tx.Create(&client).Error
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: "client",
		TargetID:   client.ID,
		Action:     models.AuditActionCreate,
		Details:    fmt.Sprintf("client %s %s created", client.AccountingCode, client.Name),
		After:      client,
	})
	return &client, nil
}

// UpdateClient replaces the editable fields. The accounting code never changes.
func (s *Service) UpdateClient(ctx context.Context, actor audit.Actor, id uint, in ClientInput) (*models.Client, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var before, client models.Client
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.First(database.ForUpdate(tx), &client, "client", id); err != nil {
			return err
		}
		before = client
		in.apply(&client)
		return tx.Save(&client).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: "client",
		TargetID:   client.ID,
		Action:     models.AuditActionUpdate,
		Details:    fmt.Sprintf("client %s updated", client.AccountingCode),
		Before:     before,
		After:      client,
	})
	return &client, nil
}

func (s *Service) SetClientStatus(ctx context.Context, actor audit.Actor, id uint, status models.PartnerStatus) (*models.Client, error) {
	if !validClientStatus(status) {
		return nil, apperr.Validation("unknown client status %q", status)
	}

	var client models.Client
	var from models.PartnerStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.First(database.ForUpdate(tx), &client, "client", id); err != nil {
			return err
		}
		from = client.Status
		client.Status = status
		return tx.Model(&client).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: "client",
		TargetID:   client.ID,
		Action:     models.AuditActionStatusChange,
		Details:    fmt.Sprintf("%s -> %s", from, status),
	})
	return &client, nil
}

func (s *Service) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	var client models.Client
	if err := database.First(s.db.WithContext(ctx), &client, "client", id); err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *Service) ListClients(ctx context.Context, status models.PartnerStatus) ([]models.Client, error) {
	q := s.db.WithContext(ctx).Model(&models.Client{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var clients []models.Client
	if err := q.Order("name ASC").Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("clients could not be listed: %w", err)
	}
	return clients, nil
}

type SupplierInput struct {
	Name          string                  `json:"name"`
	Category      models.SupplierCategory `json:"category"`
	TaxID         string                  `json:"tax_id"`
	TradeRegister string                  `json:"trade_register"`
	PaymentTerms  *int                    `json:"payment_terms"`
	ContactPhone  string                  `json:"contact_phone"`
	Mobile        string                  `json:"mobile"`
	Email         string                  `json:"email"`
	Website       string                  `json:"website"`
	Address       string                  `json:"address"`
	City          string                  `json:"city"`
	Country       string                  `json:"country"`
	Status        models.PartnerStatus    `json:"status"`
}

func (in *SupplierInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperr.Validation("supplier name is required")
	}
	if in.Category == "" {
		in.Category = models.SupplierCategoryOther
	}
	switch in.Category {
	case models.SupplierCategoryLogistics, models.SupplierCategoryManufacturing, models.SupplierCategoryMining,
		models.SupplierCategoryConstruction, models.SupplierCategoryAdministration, models.SupplierCategoryFishFood,
		models.SupplierCategoryOther:
	default:
		return apperr.Validation("unknown supplier category %q", in.Category)
	}
	if in.PaymentTerms == nil {
		terms := DefaultPaymentTerms
		in.PaymentTerms = &terms
	}
	if *in.PaymentTerms < 0 {
		return apperr.Validation("payment terms cannot be negative")
	}
	if in.Status == "" {
		in.Status = models.PartnerStatusActive
	}
	if !validSupplierStatus(in.Status) {
		return apperr.Validation("supplier status must be active or suspended, got %q", in.Status)
	}
	return nil
}

func (in *SupplierInput) apply(sp *models.Supplier) {
	sp.Name = in.Name
	sp.Category = in.Category
	sp.TaxID = in.TaxID
	sp.TradeRegister = in.TradeRegister
	sp.PaymentTerms = *in.PaymentTerms
	sp.ContactPhone = in.ContactPhone
	sp.Mobile = in.Mobile
	sp.Email = in.Email
	sp.Website = in.Website
	sp.Address = in.Address
	sp.City = in.City
	sp.Country = in.Country
	sp.Status = in.Status
}

// CreateSupplier stores a supplier and assigns its 40XXXXXX accounting code.
func (s *Service) CreateSupplier(ctx context.Context, actor audit.Actor, in SupplierInput) (*models.Supplier, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var supplier models.Supplier
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.seq.Assign(tx, sequence.SupplierAccountingCode(), func(tx *gorm.DB, code string) error {
			supplier = models.Supplier{AccountingCode: code}
			in.apply(&supplier)
			return tx.Create(&supplier).Error
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: "supplier",
		TargetID:   supplier.ID,
		Action:     models.AuditActionCreate,
		Details:    fmt.Sprintf("supplier %s %s created", supplier.AccountingCode, supplier.Name),
		After:      supplier,
	})
	return &supplier, nil
}

func (s *Service) UpdateSupplier(ctx context.Context, actor audit.Actor, id uint, in SupplierInput) (*models.Supplier, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var before, supplier models.Supplier
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.First(database.ForUpdate(tx), &supplier, "supplier", id); err != nil {
			return err
		}
		before = supplier
		in.apply(&supplier)
		return tx.Save(&supplier).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: "supplier",
		TargetID:   supplier.ID,
		Action:     models.AuditActionUpdate,
		Details:    fmt.Sprintf("supplier %s updated", supplier.AccountingCode),
		Before:     before,
		After:      supplier,
	})
	return &supplier, nil
}

func (s *Service) SetSupplierStatus(ctx context.Context, actor audit.Actor, id uint, status models.PartnerStatus) (*models.Supplier, error) {
	if !validSupplierStatus(status) {
		return nil, apperr.Validation("supplier status must be active or suspended, got %q", status)
	}

	var supplier models.Supplier
	var from models.PartnerStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.First(database.ForUpdate(tx), &supplier, "supplier", id); err != nil {
			return err
		}
		from = supplier.Status
		supplier.Status = status
		return tx.Model(&supplier).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: "supplier",
		TargetID:   supplier.ID,
		Action:     models.AuditActionStatusChange,
		Details:    fmt.Sprintf("%s -> %s", from, status),
	})
	return &supplier, nil
}

func (s *Service) GetSupplier(ctx context.Context, id uint) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := database.First(s.db.WithContext(ctx), &supplier, "supplier", id); err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (s *Service) ListSuppliers(ctx context.Context, status models.PartnerStatus, category models.SupplierCategory) ([]models.Supplier, error) {
	q := s.db.WithContext(ctx).Model(&models.Supplier{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var suppliers []models.Supplier
	if err := q.Order("name ASC").Find(&suppliers).Error; err != nil {
		return nil, fmt.Errorf("suppliers could not be listed: %w", err)
	}
	return suppliers, nil
}
