package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "draft"
	PurchaseOrderStatusPending   PurchaseOrderStatus = "pending"
	PurchaseOrderStatusApproved  PurchaseOrderStatus = "approved"
	PurchaseOrderStatusPaid      PurchaseOrderStatus = "paid"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentMethodCashbox PaymentMethod = "cashbox"
	PaymentMethodBank    PaymentMethod = "bank"
)

// PurchaseOrder: priced, supplier bound. Subtotal/TaxAmount/Total are stored and
// must be recomputed after every item change.
type PurchaseOrder struct {
	ID                uint                `gorm:"primaryKey" json:"id"`
	PONumber          string              `gorm:"size:20;uniqueIndex;not null" json:"po_number"`
	SupplierID        uint                `gorm:"index;not null" json:"supplier_id"`
	Supplier          *Supplier           `json:"supplier,omitempty"`
	PurchaseRequestID *uint               `gorm:"index" json:"purchase_request_id"`
	OrderDate         time.Time           `gorm:"type:date;not null" json:"order_date"`
	Status            PurchaseOrderStatus `gorm:"size:20;index;not null" json:"status"`
	Subtotal          decimal.Decimal     `gorm:"type:decimal(14,2);not null" json:"subtotal"`
	TaxAmount         decimal.Decimal     `gorm:"type:decimal(14,2);not null" json:"tax_amount"`
	Total             decimal.Decimal     `gorm:"type:decimal(14,2);not null" json:"total"`
	Notes             string              `gorm:"type:text" json:"notes"`
	CreatedByID       *uint               `json:"created_by_id"`
	ApprovedByID      *uint               `json:"approved_by_id"`
	ApprovedAt        *time.Time          `json:"approved_at"`

	// Payment
	PaymentMethod            PaymentMethod `gorm:"size:20" json:"payment_method"`
	CashboxID                *uint         `json:"cashbox_id"`
	BankAccountID            *uint         `json:"bank_account_id"`
	PaymentDate              *time.Time    `json:"payment_date"`
	PaymentTransactionNumber string        `gorm:"size:20" json:"payment_transaction_number"`

	Items     []PurchaseOrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type PurchaseOrderItem struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	PurchaseOrderID uint            `gorm:"index;not null" json:"purchase_order_id"`
	Designation     string          `gorm:"size:255;not null" json:"designation"`
	Quantity        decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
	Unit            string          `gorm:"size:30;not null" json:"unit"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_price"`
	TaxRate         decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tax_rate"` // percent
	Position        int             `json:"position"`
}

func (it *PurchaseOrderItem) Subtotal() decimal.Decimal {
	return it.Quantity.Mul(it.UnitPrice)
}

func (it *PurchaseOrderItem) TaxAmount() decimal.Decimal {
	return it.Subtotal().Mul(it.TaxRate).Div(decimal.NewFromInt(100))
}

// CalculateTotals recomputes Subtotal, TaxAmount and Total from Items.
func (o *PurchaseOrder) CalculateTotals() {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for i := range o.Items {
		subtotal = subtotal.Add(o.Items[i].Subtotal())
		tax = tax.Add(o.Items[i].TaxAmount())
	}
	o.Subtotal = subtotal.Round(2)
	o.TaxAmount = tax.Round(2)
	o.Total = o.Subtotal.Add(o.TaxAmount)
}
