// Package procurement turns unpriced purchase requests into priced purchase
// orders and pays approved orders out of the ledger.
package procurement

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
	"seafood-backend/internal/ledger"
	"seafood-backend/internal/lifecycle"
	"seafood-backend/internal/models"
	"seafood-backend/internal/sequence"
)

const (
	requestTarget = "purchase_request"
	orderTarget   = "purchase_order"
)

type Service struct {
	db     *gorm.DB
	seq    *sequence.Generator
	ledger *ledger.Engine
	audit  *audit.Logger
	now    func() time.Time
}

func NewService(db *gorm.DB, seq *sequence.Generator, engine *ledger.Engine, logger *audit.Logger) *Service {
	return &Service{db: db, seq: seq, ledger: engine, audit: logger, now: time.Now}
}

type RequestItemInput struct {
	Designation string          `json:"designation"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
}

type CreateRequestInput struct {
	Title       string
	RequestDate time.Time
	Notes       string
	Items       []RequestItemInput
}

// PriceInput prices one request item on approval.
type PriceInput struct {
	ItemID    uint             `json:"item_id"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal  `json:"tax_rate"`
}

type ApproveRequestInput struct {
	SupplierID uint
	OrderDate  time.Time
	Prices     []PriceInput
}

func buildRequestItems(in []RequestItemInput) ([]models.PurchaseRequestItem, error) {
	if len(in) == 0 {
		return nil, apperr.Validation("a purchase request needs at least one item")
	}
	items := make([]models.PurchaseRequestItem, 0, len(in))
	for i, it := range in {
		designation := strings.TrimSpace(it.Designation)
		unit := strings.TrimSpace(it.Unit)
		if designation == "" || unit == "" {
			return nil, apperr.Validation("item %d: designation and unit are required", i+1)
		}
		if !it.Quantity.IsPositive() {
			return nil, apperr.Validation("item %d: quantity must be greater than 0", i+1)
		}
		items = append(items, models.PurchaseRequestItem{
			Designation: designation,
			Quantity:    it.Quantity,
			Unit:        unit,
			Position:    i + 1,
		})
	}
	return items, nil
}

func checkSupplier(tx *gorm.DB, id uint) error {
	var s models.Supplier
	if err := database.First(tx, &s, "supplier", id); err != nil {
		return err
	}
	if s.Status != models.PartnerStatusActive {
		return apperr.Validation("supplier %s is %s", s.Name, s.Status)
	}
	return nil
}

func lockRequest(tx *gorm.DB, id uint) (*models.PurchaseRequest, error) {
	var pr models.PurchaseRequest
	if err := database.First(database.ForUpdate(tx), &pr, "purchase request", id); err != nil {
		return nil, err
	}
	return &pr, nil
}

// CreateRequest stores a draft request with its items and numbers it.
func (s *Service) CreateRequest(ctx context.Context, actor audit.Actor, in CreateRequestInput) (*models.PurchaseRequest, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	items, err := buildRequestItems(in.Items)
	if err != nil {
		return nil, err
	}
	if in.RequestDate.IsZero() {
		in.RequestDate = s.now()
	}

	var pr models.PurchaseRequest
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.seq.Assign(tx, sequence.PurchaseRequestNumber(s.now()), func(tx *gorm.DB, number string) error {
			pr = models.PurchaseRequest{
				PRNumber:      number,
				Title:         title,
				RequestDate:   in.RequestDate,
				Status:        models.PurchaseRequestStatusDraft,
				Notes:         in.Notes,
				RequestedByID: actor.UserID,
			}
			return tx.Omit("Items").Create(&pr).Error
		})
		if err != nil {
			return err
		}
		for i := range items {
			items[i].PurchaseRequestID = pr.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("purchase request items could not be saved: %w", err)
		}
		pr.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: requestTarget,
		TargetID:   pr.ID,
		Action:     models.AuditActionCreate,
		Details:    fmt.Sprintf("purchase request %s created with %d items", pr.PRNumber, len(pr.Items)),
		After:      pr,
	})
	return &pr, nil
}

// UpdateRequestItems replaces the items of a draft request.
func (s *Service) UpdateRequestItems(ctx context.Context, actor audit.Actor, id uint, in []RequestItemInput) (*models.PurchaseRequest, error) {
	items, err := buildRequestItems(in)
	if err != nil {
		return nil, err
	}

	var pr *models.PurchaseRequest
	var before []models.PurchaseRequestItem
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if pr, err = lockRequest(tx, id); err != nil {
			return err
		}
		if pr.Status != models.PurchaseRequestStatusDraft {
			return apperr.EditNotAllowed("purchase request "+pr.PRNumber, pr.Status)
		}
		if err := tx.Where("purchase_request_id = ?", pr.ID).Order("position ASC").Find(&before).Error; err != nil {
			return fmt.Errorf("purchase request items could not be loaded: %w", err)
		}
		if err := tx.Where("purchase_request_id = ?", pr.ID).Delete(&models.PurchaseRequestItem{}).Error; err != nil {
			return fmt.Errorf("purchase request items could not be removed: %w", err)
		}
		for i := range items {
			items[i].PurchaseRequestID = pr.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("purchase request items could not be saved: %w", err)
		}
		pr.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: requestTarget,
		TargetID:   pr.ID,
		Action:     models.AuditActionUpdate,
		Details:    fmt.Sprintf("purchase request %s items replaced (%d -> %d)", pr.PRNumber, len(before), len(items)),
		Before:     before,
		After:      items,
	})
	return pr, nil
}

// ApproveRequest derives a pending purchase order from a draft request.
// Every request item must be priced.
func (s *Service) ApproveRequest(ctx context.Context, actor audit.Actor, id uint, in ApproveRequestInput) (*models.PurchaseOrder, error) {
	prices := make(map[uint]PriceInput, len(in.Prices))
	for _, p := range in.Prices {
		if p.UnitPrice != nil && p.UnitPrice.IsNegative() {
			return nil, apperr.Validation("unit price cannot be negative")
		}
		if p.TaxRate.IsNegative() {
			return nil, apperr.Validation("tax rate cannot be negative")
		}
		prices[p.ItemID] = p
	}
	if in.OrderDate.IsZero() {
		in.OrderDate = s.now()
	}

	var pr *models.PurchaseRequest
	var po models.PurchaseOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if pr, err = lockRequest(tx, id); err != nil {
			return err
		}
		if err := lifecycle.PurchaseRequest.Check("purchase request "+pr.PRNumber, pr.Status, models.PurchaseRequestStatusApproved); err != nil {
			return err
		}
		if err := checkSupplier(tx, in.SupplierID); err != nil {
			return err
		}

		var reqItems []models.PurchaseRequestItem
		if err := tx.Where("purchase_request_id = ?", pr.ID).Order("position ASC").Find(&reqItems).Error; err != nil {
			return fmt.Errorf("purchase request items could not be loaded: %w", err)
		}
		if len(reqItems) == 0 {
			return apperr.Validation("purchase request %s has no items", pr.PRNumber)
		}

		items := make([]models.PurchaseOrderItem, 0, len(reqItems))
		for _, it := range reqItems {
			p, ok := prices[it.ID]
			if !ok || p.UnitPrice == nil {
				return apperr.New(apperr.KindMissingPrice, "item %q has no unit price", it.Designation)
			}
			items = append(items, models.PurchaseOrderItem{
				Designation: it.Designation,
				Quantity:    it.Quantity,
				Unit:        it.Unit,
				UnitPrice:   *p.UnitPrice,
				TaxRate:     p.TaxRate,
				Position:    it.Position,
			})
		}

		requestID := pr.ID
		_, err = s.seq.Assign(tx, sequence.PurchaseOrderNumber(s.now()), func(tx *gorm.DB, number string) error {
			po = models.PurchaseOrder{
				PONumber:          number,
				SupplierID:        in.SupplierID,
				PurchaseRequestID: &requestID,
				OrderDate:         in.OrderDate,
				Status:            models.PurchaseOrderStatusPending,
				Notes:             pr.Notes,
				CreatedByID:       actor.UserID,
				Items:             items,
			}
			po.CalculateTotals()
			return tx.Omit("Items").Create(&po).Error
		})
		if err != nil {
			return err
		}
		if err := saveOrderItems(tx, &po); err != nil {
			return err
		}

		pr.Status = models.PurchaseRequestStatusApproved
		pr.RejectionReason = ""
		pr.PurchaseOrderID = &po.ID
		return tx.Model(pr).Updates(map[string]any{
			"status":            pr.Status,
			"rejection_reason":  "",
			"purchase_order_id": po.ID,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: requestTarget,
		TargetID:   pr.ID,
		Action:     models.AuditActionStatusChange,
		Details:    fmt.Sprintf("purchase request %s approved as order %s", pr.PRNumber, po.PONumber),
		Before:     map[string]any{"status": models.PurchaseRequestStatusDraft},
		After:      map[string]any{"status": pr.Status, "purchase_order_id": po.ID},
	})
	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: orderTarget,
		TargetID:   po.ID,
		Action:     models.AuditActionCreate,
		Details:    fmt.Sprintf("purchase order %s created from request %s, total %s", po.PONumber, pr.PRNumber, po.Total.StringFixed(2)),
		After:      po,
	})
	return &po, nil
}

// RejectRequest closes a draft request. The reason is mandatory.
func (s *Service) RejectRequest(ctx context.Context, actor audit.Actor, id uint, reason string) (*models.PurchaseRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.New(apperr.KindMissingReason, "a rejection reason is required")
	}
	return s.closeRequest(ctx, actor, id, models.PurchaseRequestStatusRejected, reason)
}

func (s *Service) CancelRequest(ctx context.Context, actor audit.Actor, id uint) (*models.PurchaseRequest, error) {
	return s.closeRequest(ctx, actor, id, models.PurchaseRequestStatusCancelled, "")
}

func (s *Service) closeRequest(ctx context.Context, actor audit.Actor, id uint, to models.PurchaseRequestStatus, reason string) (*models.PurchaseRequest, error) {
	var pr *models.PurchaseRequest
	var from models.PurchaseRequestStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if pr, err = lockRequest(tx, id); err != nil {
			return err
		}
		from = pr.Status
		if err := lifecycle.PurchaseRequest.Check("purchase request "+pr.PRNumber, from, to); err != nil {
			return err
		}
		pr.Status = to
		pr.RejectionReason = reason
		return tx.Model(pr).Updates(map[string]any{"status": to, "rejection_reason": reason}).Error
	})
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("purchase request %s: %s -> %s", pr.PRNumber, from, to)
	if reason != "" {
		details += " (" + reason + ")"
	}
	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: requestTarget,
		TargetID:   pr.ID,
		Action:     models.AuditActionStatusChange,
		Details:    details,
		Before:     map[string]any{"status": from},
		After:      map[string]any{"status": to, "rejection_reason": reason},
	})
	return pr, nil
}

func (s *Service) GetRequest(ctx context.Context, id uint) (*models.PurchaseRequest, error) {
	var pr models.PurchaseRequest
	q := s.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
	if err := database.First(q, &pr, "purchase request", id); err != nil {
		return nil, err
	}
	return &pr, nil
}

func (s *Service) ListRequests(ctx context.Context, status models.PurchaseRequestStatus) ([]models.PurchaseRequest, error) {
	q := s.db.WithContext(ctx).Model(&models.PurchaseRequest{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []models.PurchaseRequest
	if err := q.Order("request_date DESC").Order("id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("purchase requests could not be listed: %w", err)
	}
	return list, nil
}
