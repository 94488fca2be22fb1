// Package ledger keeps cashbox and bank account balances. Every balance
// change is a posting: an immutable transaction row written together with
// the account's new balance in one database transaction.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"seafood-backend/internal/apperr"
	"seafood-backend/internal/audit"
	"seafood-backend/internal/database"
	"seafood-backend/internal/models"
	"seafood-backend/internal/sequence"
)

type AccountKind string

const (
	AccountCashbox AccountKind = "cashbox"
	AccountBank    AccountKind = "bank"
)

type PostInput struct {
	Kind        AccountKind
	AccountID   uint
	Type        models.TransactionType
	Source      models.TransactionSource
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	Reference   string
	CreatedByID *uint
	// RequireFunds rejects an outgoing posting that would take the balance
	// below zero.
	RequireFunds bool
}

// Posting is the outcome of a successful post.
type Posting struct {
	Kind              AccountKind              `json:"account_kind"`
	AccountID         uint                     `json:"account_id"`
	TransactionID     uint                     `json:"transaction_id"`
	TransactionNumber string                   `json:"transaction_number"`
	Type              models.TransactionType   `json:"transaction_type"`
	Source            models.TransactionSource `json:"source"`
	Amount            decimal.Decimal          `json:"amount"`
	BalanceBefore     decimal.Decimal          `json:"balance_before"`
	BalanceAfter      decimal.Decimal          `json:"balance_after"`
	Date              time.Time                `json:"date"`
	Reference         string                   `json:"reference"`
}

type Engine struct {
	db    *gorm.DB
	seq   *sequence.Generator
	audit *audit.Logger
	now   func() time.Time
}

func NewEngine(db *gorm.DB, seq *sequence.Generator, logger *audit.Logger) *Engine {
	return &Engine{db: db, seq: seq, audit: logger, now: time.Now}
}

func validSource(s models.TransactionSource) bool {
	switch s {
	case models.TransactionSourceCash, models.TransactionSourceMobile, models.TransactionSourceCheck,
		models.TransactionSourceDeposit, models.TransactionSourceBankTransfer, models.TransactionSourceOther:
		return true
	}
	return false
}

func (e *Engine) normalize(in *PostInput) error {
	if in.Kind != AccountCashbox && in.Kind != AccountBank {
		return apperr.Validation("unknown account kind %q", in.Kind)
	}
	if in.Type != models.TransactionTypeIn && in.Type != models.TransactionTypeOut {
		return apperr.Validation("transaction type must be in or out, got %q", in.Type)
	}
	if !in.Amount.IsPositive() {
		return apperr.Validation("amount must be greater than 0, got %s", in.Amount.String())
	}
	if !in.Amount.Equal(in.Amount.Round(2)) {
		return apperr.Validation("amount %s has more than two decimals", in.Amount.String())
	}
	if in.Source == "" {
		in.Source = models.TransactionSourceOther
	}
	if !validSource(in.Source) {
		return apperr.Validation("unknown transaction source %q", in.Source)
	}
	if in.Date.IsZero() {
		in.Date = e.now()
	}
	return nil
}

// lockBalance reads the account balance under a row lock.
func lockBalance(tx *gorm.DB, kind AccountKind, id uint) (decimal.Decimal, error) {
	switch kind {
	case AccountCashbox:
		var cb models.Cashbox
		if err := database.First(database.ForUpdate(tx), &cb, "cashbox", id); err != nil {
			return decimal.Zero, err
		}
		if !cb.IsActive {
			return decimal.Zero, apperr.Validation("cashbox %s is inactive", cb.Name)
		}
		return cb.CurrentBalance, nil
	default:
		var ba models.BankAccount
		if err := database.First(database.ForUpdate(tx), &ba, "bank account", id); err != nil {
			return decimal.Zero, err
		}
		if !ba.IsActive {
			return decimal.Zero, apperr.Validation("bank account %s is inactive", ba.Identifier)
		}
		return ba.CurrentBalance, nil
	}
}

func setBalance(tx *gorm.DB, kind AccountKind, id uint, balance decimal.Decimal) error {
	var model any = &models.Cashbox{}
	if kind == AccountBank {
		model = &models.BankAccount{}
	}
	res := tx.Model(model).Where("id = ?", id).Update("current_balance", balance)
	if res.Error != nil {
		return fmt.Errorf("balance could not be updated: %w", res.Error)
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("balance update touched %d rows", res.RowsAffected)
	}
	return nil
}

func insertTransaction(tx *gorm.DB, in PostInput, number string, after decimal.Decimal) (uint, error) {
	if in.Kind == AccountCashbox {
		row := models.CashboxTransaction{
			TransactionNumber: number,
			CashboxID:         in.AccountID,
			Type:              in.Type,
			Source:            in.Source,
			Amount:            in.Amount,
			BalanceAfter:      after,
			Date:              in.Date,
			Description:       in.Description,
			Reference:         in.Reference,
			CreatedByID:       in.CreatedByID,
		}
		err := tx.Create(&row).Error
		return row.ID, err
	}
	row := models.BankTransaction{
		TransactionNumber: number,
		BankAccountID:     in.AccountID,
		Type:              in.Type,
		Source:            in.Source,
		Amount:            in.Amount,
		BalanceAfter:      after,
		Date:              in.Date,
		Description:       in.Description,
		Reference:         in.Reference,
		CreatedByID:       in.CreatedByID,
	}
	err := tx.Create(&row).Error
	return row.ID, err
}

// PostTx posts inside the caller's transaction. The account row stays locked
// until tx ends, so concurrent postings to one account serialize.
func (e *Engine) PostTx(tx *gorm.DB, in PostInput) (*Posting, error) {
	if err := e.normalize(&in); err != nil {
		return nil, err
	}

	before, err := lockBalance(tx, in.Kind, in.AccountID)
	if err != nil {
		return nil, err
	}

	after := before.Add(in.Amount)
	if in.Type == models.TransactionTypeOut {
		after = before.Sub(in.Amount)
		if in.RequireFunds && after.IsNegative() {
			return nil, apperr.InsufficientFunds(before, in.Amount)
		}
	}

	var id uint
	number, err := e.seq.Assign(tx, sequence.TransactionNumber(), func(tx *gorm.DB, number string) error {
		var err error
		id, err = insertTransaction(tx, in, number, after)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := setBalance(tx, in.Kind, in.AccountID, after); err != nil {
		return nil, err
	}

	return &Posting{
		Kind:              in.Kind,
		AccountID:         in.AccountID,
		TransactionID:     id,
		TransactionNumber: number,
		Type:              in.Type,
		Source:            in.Source,
		Amount:            in.Amount,
		BalanceBefore:     before,
		BalanceAfter:      after,
		Date:              in.Date,
		Reference:         in.Reference,
	}, nil
}

// Post runs PostTx in its own transaction and records the audit entry.
func (e *Engine) Post(ctx context.Context, actor audit.Actor, in PostInput) (*Posting, error) {
	if in.CreatedByID == nil {
		in.CreatedByID = actor.UserID
	}

	var p *Posting
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		p, err = e.PostTx(tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.RecordPosting(ctx, actor, p)
	return p, nil
}

// RecordPosting writes the audit entry of a committed posting.
func (e *Engine) RecordPosting(ctx context.Context, actor audit.Actor, p *Posting) {
	e.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: string(p.Kind) + "_transaction",
		TargetID:   p.TransactionID,
		Action:     models.AuditActionCreate,
		Details: fmt.Sprintf("%s %s %s on %s %d, balance %s -> %s",
			p.TransactionNumber, p.Type, p.Amount.StringFixed(2), p.Kind, p.AccountID,
			p.BalanceBefore.StringFixed(2), p.BalanceAfter.StringFixed(2)),
		After: p,
	})
}
