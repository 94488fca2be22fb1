package procurement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"seafood-backend/internal/apperr"
	"seafood-backend/internal/audit"
	"seafood-backend/internal/database"
	"seafood-backend/internal/ledger"
	"seafood-backend/internal/lifecycle"
	"seafood-backend/internal/models"
	"seafood-backend/internal/sequence"
)

type OrderItemInput struct {
	Designation string          `json:"designation"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

type CreateOrderInput struct {
	SupplierID uint
	OrderDate  time.Time
	Notes      string
	Items      []OrderItemInput
}

type PayInput struct {
	Method    models.PaymentMethod
	AccountID uint
	Date      time.Time
}

func buildOrderItem(in OrderItemInput, position int) (models.PurchaseOrderItem, error) {
	designation := strings.TrimSpace(in.Designation)
	unit := strings.TrimSpace(in.Unit)
	if designation == "" || unit == "" {
		return models.PurchaseOrderItem{}, apperr.Validation("designation and unit are required")
	}
	if !in.Quantity.IsPositive() {
		return models.PurchaseOrderItem{}, apperr.Validation("quantity must be greater than 0")
	}
	if in.UnitPrice.IsNegative() || in.TaxRate.IsNegative() {
		return models.PurchaseOrderItem{}, apperr.Validation("unit price and tax rate cannot be negative")
	}
	return models.PurchaseOrderItem{
		Designation: designation,
		Quantity:    in.Quantity,
		Unit:        unit,
		UnitPrice:   in.UnitPrice,
		TaxRate:     in.TaxRate,
		Position:    position,
	}, nil
}

func saveOrderItems(tx *gorm.DB, po *models.PurchaseOrder) error {
	if len(po.Items) == 0 {
		return nil
	}
	for i := range po.Items {
		po.Items[i].PurchaseOrderID = po.ID
	}
	if err := tx.Create(&po.Items).Error; err != nil {
		return fmt.Errorf("purchase order items could not be saved: %w", err)
	}
	return nil
}

func lockOrder(tx *gorm.DB, id uint) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	if err := database.First(database.ForUpdate(tx), &po, "purchase order", id); err != nil {
		return nil, err
	}
	return &po, nil
}

// recalculate reloads the items of po and persists fresh totals.
func recalculate(tx *gorm.DB, po *models.PurchaseOrder) error {
	if err := tx.Where("purchase_order_id = ?", po.ID).Order("position ASC").Find(&po.Items).Error; err != nil {
		return fmt.Errorf("purchase order items could not be loaded: %w", err)
	}
	po.CalculateTotals()
	err := tx.Model(po).Omit(clause.Associations).Updates(map[string]any{
		"subtotal":   po.Subtotal,
		"tax_amount": po.TaxAmount,
		"total":      po.Total,
	}).Error
	if err != nil {
		return fmt.Errorf("purchase order totals could not be saved: %w", err)
	}
	return nil
}

func itemsEditable(po *models.PurchaseOrder) error {
	if po.Status != models.PurchaseOrderStatusDraft && po.Status != models.PurchaseOrderStatusPending {
		return apperr.EditNotAllowed("purchase order "+po.PONumber, po.Status)
	}
	return nil
}

// CreateOrder stores a draft order that does not come from a request.
func (s *Service) CreateOrder(ctx context.Context, actor audit.Actor, in CreateOrderInput) (*models.PurchaseOrder, error) {
	items := make([]models.PurchaseOrderItem, 0, len(in.Items))
	for i, it := range in.Items {
		item, err := buildOrderItem(it, i+1)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if in.OrderDate.IsZero() {
		in.OrderDate = s.now()
	}

	var po models.PurchaseOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkSupplier(tx, in.SupplierID); err != nil {
			return err
		}
		_, err := s.seq.Assign(tx, sequence.PurchaseOrderNumber(s.now()), func(tx *gorm.DB, number string) error {
			po = models.PurchaseOrder{
				PONumber:    number,
				SupplierID:  in.SupplierID,
				OrderDate:   in.OrderDate,
				Status:      models.PurchaseOrderStatusDraft,
				Notes:       in.Notes,
				CreatedByID: actor.UserID,
				Items:       items,
			}
			po.CalculateTotals()
			return tx.Omit("Items").Create(&po).Error
		})
		if err != nil {
			return err
		}
		return saveOrderItems(tx, &po)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: orderTarget,
		TargetID:   po.ID,
		Action:     models.AuditActionCreate,
		Details:    fmt.Sprintf("purchase order %s created, total %s", po.PONumber, po.Total.StringFixed(2)),
		After:      po,
	})
	return &po, nil
}

// AddItem appends an item to a draft or pending order and refreshes its totals.
func (s *Service) AddItem(ctx context.Context, actor audit.Actor, id uint, in OrderItemInput) (*models.PurchaseOrder, error) {
	var po *models.PurchaseOrder
	var item models.PurchaseOrderItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if po, err = lockOrder(tx, id); err != nil {
			return err
		}
		if err := itemsEditable(po); err != nil {
			return err
		}
		var last int
		if err := tx.Model(&models.PurchaseOrderItem{}).
			Where("purchase_order_id = ?", po.ID).
			Select("COALESCE(MAX(position), 0)").Scan(&last).Error; err != nil {
			return fmt.Errorf("item position lookup failed: %w", err)
		}
		if item, err = buildOrderItem(in, last+1); err != nil {
			return err
		}
		item.PurchaseOrderID = po.ID
		if err := tx.Create(&item).Error; err != nil {
			return fmt.Errorf("purchase order item could not be saved: %w", err)
		}
		return recalculate(tx, po)
	})
	if err != nil {
		return nil, err
	}

	s.recordItemChange(ctx, actor, po, fmt.Sprintf("item %q added", item.Designation))
	return po, nil
}

func (s *Service) UpdateItem(ctx context.Context, actor audit.Actor, id, itemID uint, in OrderItemInput) (*models.PurchaseOrder, error) {
	var po *models.PurchaseOrder
	var item models.PurchaseOrderItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if po, err = lockOrder(tx, id); err != nil {
			return err
		}
		if err := itemsEditable(po); err != nil {
			return err
		}
		var existing models.PurchaseOrderItem
		if err := tx.Where("id = ? AND purchase_order_id = ?", itemID, po.ID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("purchase order item", itemID)
			}
			return fmt.Errorf("purchase order item could not be loaded: %w", err)
		}
		if item, err = buildOrderItem(in, existing.Position); err != nil {
			return err
		}
		item.ID = existing.ID
		item.PurchaseOrderID = po.ID
		if err := tx.Save(&item).Error; err != nil {
			return fmt.Errorf("purchase order item could not be saved: %w", err)
		}
		return recalculate(tx, po)
	})
	if err != nil {
		return nil, err
	}

	s.recordItemChange(ctx, actor, po, fmt.Sprintf("item %q updated", item.Designation))
	return po, nil
}

func (s *Service) RemoveItem(ctx context.Context, actor audit.Actor, id, itemID uint) (*models.PurchaseOrder, error) {
	var po *models.PurchaseOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if po, err = lockOrder(tx, id); err != nil {
			return err
		}
		if err := itemsEditable(po); err != nil {
			return err
		}
		res := tx.Where("id = ? AND purchase_order_id = ?", itemID, po.ID).Delete(&models.PurchaseOrderItem{})
		if res.Error != nil {
			return fmt.Errorf("purchase order item could not be removed: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("purchase order item", itemID)
		}
		return recalculate(tx, po)
	})
	if err != nil {
		return nil, err
	}

	s.recordItemChange(ctx, actor, po, fmt.Sprintf("item %d removed", itemID))
	return po, nil
}

func (s *Service) recordItemChange(ctx context.Context, actor audit.Actor, po *models.PurchaseOrder, what string) {
	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: orderTarget,
		TargetID:   po.ID,
		Action:     models.AuditActionUpdate,
		Details:    fmt.Sprintf("purchase order %s: %s, total %s", po.PONumber, what, po.Total.StringFixed(2)),
		After:      po,
	})
}

// Submit sends a draft order for approval.
func (s *Service) Submit(ctx context.Context, actor audit.Actor, id uint) (*models.PurchaseOrder, error) {
	return s.transition(ctx, actor, id, models.PurchaseOrderStatusPending, func(tx *gorm.DB, po *models.PurchaseOrder) error {
		var count int64
		if err := tx.Model(&models.PurchaseOrderItem{}).Where("purchase_order_id = ?", po.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("purchase order items could not be counted: %w", err)
		}
		if count == 0 {
			return apperr.Validation("purchase order %s has no items", po.PONumber)
		}
		return nil
	})
}

// Approve records who approved the order and when.
func (s *Service) Approve(ctx context.Context, actor audit.Actor, id uint) (*models.PurchaseOrder, error) {
	return s.transition(ctx, actor, id, models.PurchaseOrderStatusApproved, func(tx *gorm.DB, po *models.PurchaseOrder) error {
		now := s.now()
		po.ApprovedByID = actor.UserID
		po.ApprovedAt = &now
		return tx.Model(po).Updates(map[string]any{"approved_by_id": actor.UserID, "approved_at": now}).Error
	})
}

func (s *Service) Cancel(ctx context.Context, actor audit.Actor, id uint) (*models.PurchaseOrder, error) {
	return s.transition(ctx, actor, id, models.PurchaseOrderStatusCancelled, nil)
}

// transition checks the move against lifecycle.PurchaseOrder and runs apply
// in the same transaction before the status is written.
func (s *Service) transition(ctx context.Context, actor audit.Actor, id uint, to models.PurchaseOrderStatus, apply func(*gorm.DB, *models.PurchaseOrder) error) (*models.PurchaseOrder, error) {
	var po *models.PurchaseOrder
	var from models.PurchaseOrderStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if po, err = lockOrder(tx, id); err != nil {
			return err
		}
		from = po.Status
		if err := lifecycle.PurchaseOrder.Check("purchase order "+po.PONumber, from, to); err != nil {
			return err
		}
		if apply != nil {
			if err := apply(tx, po); err != nil {
				return err
			}
		}
		po.Status = to
		return tx.Model(po).Update("status", to).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: orderTarget,
		TargetID:   po.ID,
		Action:     models.AuditActionStatusChange,
		Details:    fmt.Sprintf("purchase order %s: %s -> %s", po.PONumber, from, to),
		Before:     map[string]any{"status": from},
		After:      map[string]any{"status": to},
	})
	return po, nil
}

// Pay settles an approved order from a cashbox or bank account. The posting,
// the balance change and the status flip commit together or not at all.
func (s *Service) Pay(ctx context.Context, actor audit.Actor, id uint, in PayInput) (*models.PurchaseOrder, error) {
	var kind ledger.AccountKind
	var source models.TransactionSource
	switch in.Method {
	case models.PaymentMethodCashbox:
		kind, source = ledger.AccountCashbox, models.TransactionSourceCash
	case models.PaymentMethodBank:
		kind, source = ledger.AccountBank, models.TransactionSourceBankTransfer
	default:
		return nil, apperr.Validation("payment method must be cashbox or bank, got %q", in.Method)
	}
	if in.Date.IsZero() {
		in.Date = s.now()
	}

	var po *models.PurchaseOrder
	var posting *ledger.Posting
	var from models.PurchaseOrderStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if po, err = lockOrder(tx, id); err != nil {
			return err
		}
		from = po.Status
		if err := lifecycle.PurchaseOrder.Check("purchase order "+po.PONumber, from, models.PurchaseOrderStatusPaid); err != nil {
			return err
		}
		if !po.Total.IsPositive() {
			return apperr.Validation("purchase order %s has nothing to pay", po.PONumber)
		}

		posting, err = s.ledger.PostTx(tx, ledger.PostInput{
			Kind:         kind,
			AccountID:    in.AccountID,
			Type:         models.TransactionTypeOut,
			Source:       source,
			Amount:       po.Total,
			Date:         in.Date,
			Description:  "Payment of purchase order " + po.PONumber,
			Reference:    po.PONumber,
			CreatedByID:  actor.UserID,
			RequireFunds: true,
		})
		if err != nil {
			return err
		}

		accountID := in.AccountID
		po.Status = models.PurchaseOrderStatusPaid
		po.PaymentMethod = in.Method
		po.PaymentDate = &in.Date
		po.PaymentTransactionNumber = posting.TransactionNumber
		if kind == ledger.AccountCashbox {
			po.CashboxID = &accountID
		} else {
			po.BankAccountID = &accountID
		}
		return tx.Model(po).Updates(map[string]any{
			"status":                     po.Status,
			"payment_method":             po.PaymentMethod,
			"payment_date":               po.PaymentDate,
			"payment_transaction_number": po.PaymentTransactionNumber,
			"cashbox_id":                 po.CashboxID,
			"bank_account_id":            po.BankAccountID,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.ledger.RecordPosting(ctx, actor, posting)
	s.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: orderTarget,
		TargetID:   po.ID,
		Action:     models.AuditActionStatusChange,
		Details: fmt.Sprintf("purchase order %s paid %s by %s (%s)",
			po.PONumber, po.Total.StringFixed(2), po.PaymentMethod, po.PaymentTransactionNumber),
		Before: map[string]any{"status": from},
		After:  map[string]any{"status": po.Status, "payment_transaction_number": po.PaymentTransactionNumber},
	})
	return po, nil
}

func (s *Service) GetOrder(ctx context.Context, id uint) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	q := s.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
	if err := database.First(q, &po, "purchase order", id); err != nil {
		return nil, err
	}
	return &po, nil
}

type OrderFilter struct {
	Status     models.PurchaseOrderStatus
	SupplierID uint
}

func (s *Service) ListOrders(ctx context.Context, f OrderFilter) ([]models.PurchaseOrder, error) {
	q := s.db.WithContext(ctx).Model(&models.PurchaseOrder{}).Preload("Supplier")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.SupplierID != 0 {
		q = q.Where("supplier_id = ?", f.SupplierID)
	}
	var list []models.PurchaseOrder
	if err := q.Order("order_date DESC").Order("id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("purchase orders could not be listed: %w", err)
	}
	return list, nil
}
