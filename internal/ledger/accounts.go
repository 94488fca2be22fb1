package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"seafood-backend/internal/apperr"
	"seafood-backend/internal/audit"
	"seafood-backend/internal/database"
	"seafood-backend/internal/models"
	"seafood-backend/internal/sequence"
)

const openingBalanceDescription = "Opening balance"

type CashboxInput struct {
	Name           string          `json:"name"`
	Prefix         string          `json:"prefix"`
	Description    string          `json:"description"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

type BankAccountInput struct {
	Name           string          `json:"name"`
	BankName       string          `json:"bank_name"`
	AccountNumber  string          `json:"account_number"`
	Description    string          `json:"description"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

func validateOpening(v decimal.Decimal) error {
	if v.IsNegative() {
		return apperr.Validation("opening balance cannot be negative")
	}
	return nil
}

// openTx posts the opening balance as the account's first transaction so
// that the balance always equals the last balance_after.
func (e *Engine) openTx(tx *gorm.DB, kind AccountKind, id uint, amount decimal.Decimal, actor audit.Actor) (*Posting, error) {
	if !amount.IsPositive() {
		return nil, nil
	}
	return e.PostTx(tx, PostInput{
		Kind:        kind,
		AccountID:   id,
		Type:        models.TransactionTypeIn,
		Source:      models.TransactionSourceDeposit,
		Amount:      amount,
		Description: openingBalanceDescription,
		CreatedByID: actor.UserID,
	})
}

func (e *Engine) CreateCashbox(ctx context.Context, actor audit.Actor, in CashboxInput) (*models.Cashbox, error) {
	name := strings.TrimSpace(in.Name)
	prefix := strings.ToUpper(strings.TrimSpace(in.Prefix))
	if name == "" || prefix == "" {
		return nil, apperr.Validation("cashbox name and prefix are required")
	}
	if err := validateOpening(in.OpeningBalance); err != nil {
		return nil, err
	}

	cb := models.Cashbox{Name: name, Prefix: prefix, Description: in.Description, CurrentBalance: decimal.Zero, IsActive: true}
	var opening *Posting
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cb).Error; err != nil {
			if sequence.IsDuplicate(err) {
				return apperr.Validation("cashbox prefix %q is already used", prefix)
			}
			return fmt.Errorf("cashbox could not be created: %w", err)
		}
		var err error
		opening, err = e.openTx(tx, AccountCashbox, cb.ID, in.OpeningBalance, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	if opening != nil {
		cb.CurrentBalance = opening.BalanceAfter
	}

	e.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: "cashbox",
		TargetID:   cb.ID,
		Action:     models.AuditActionCreate,
		Details:    fmt.Sprintf("cashbox %s (%s) opened with %s", cb.Name, cb.Prefix, cb.CurrentBalance.StringFixed(2)),
		After:      cb,
	})
	if opening != nil {
		e.RecordPosting(ctx, actor, opening)
	}
	return &cb, nil
}

// CreateBankAccount opens an account with a BNKXXXXXX identifier.
func (e *Engine) CreateBankAccount(ctx context.Context, actor audit.Actor, in BankAccountInput) (*models.BankAccount, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("bank account name is required")
	}
	if err := validateOpening(in.OpeningBalance); err != nil {
		return nil, err
	}

	var ba models.BankAccount
	var opening *Posting
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := e.seq.Assign(tx, sequence.BankIdentifier(), func(tx *gorm.DB, identifier string) error {
			ba = models.BankAccount{
				Identifier:     identifier,
				Name:           name,
				BankName:       in.BankName,
				AccountNumber:  in.AccountNumber,
				Description:    in.Description,
				CurrentBalance: decimal.Zero,
				IsActive:       true,
			}
			return tx.Create(&ba).Error
		})
		if err != nil {
			return err
		}
		opening, err = e.openTx(tx, AccountBank, ba.ID, in.OpeningBalance, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	if opening != nil {
		ba.CurrentBalance = opening.BalanceAfter
	}

	e.audit.Record(ctx, audit.LogOptions{
		Actor:      actor,
		TargetType: "bank_account",
		TargetID:   ba.ID,
		Action:     models.AuditActionCreate,
		Details:    fmt.Sprintf("bank account %s opened with %s", ba.Identifier, ba.CurrentBalance.StringFixed(2)),
		After:      ba,
	})
	if opening != nil {
		e.RecordPosting(ctx, actor, opening)
	}
	return &ba, nil
}

func (e *Engine) GetCashbox(ctx context.Context, id uint) (*models.Cashbox, error) {
	var cb models.Cashbox
	if err := database.First(e.db.WithContext(ctx), &cb, "cashbox", id); err != nil {
		return nil, err
	}
	return &cb, nil
}

func (e *Engine) ListCashboxes(ctx context.Context) ([]models.Cashbox, error) {
	var list []models.Cashbox
	if err := e.db.WithContext(ctx).Order("name ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("cashboxes could not be listed: %w", err)
	}
	return list, nil
}

func (e *Engine) GetBankAccount(ctx context.Context, id uint) (*models.BankAccount, error) {
	var ba models.BankAccount
	if err := database.First(e.db.WithContext(ctx), &ba, "bank account", id); err != nil {
		return nil, err
	}
	return &ba, nil
}

func (e *Engine) ListBankAccounts(ctx context.Context) ([]models.BankAccount, error) {
	var list []models.BankAccount
	if err := e.db.WithContext(ctx).Order("identifier ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("bank accounts could not be listed: %w", err)
	}
	return list, nil
}

// CashboxTransactions lists the postings of a cashbox, most recent first.
func (e *Engine) CashboxTransactions(ctx context.Context, cashboxID uint) ([]models.CashboxTransaction, error) {
	if err := database.Exists(e.db.WithContext(ctx), &models.Cashbox{}, "cashbox", cashboxID); err != nil {
		return nil, err
	}
	var list []models.CashboxTransaction
	err := e.db.WithContext(ctx).
		Where("cashbox_id = ?", cashboxID).
		Order("id DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("cashbox transactions could not be listed: %w", err)
	}
	return list, nil
}

func (e *Engine) BankTransactions(ctx context.Context, bankAccountID uint) ([]models.BankTransaction, error) {
	if err := database.Exists(e.db.WithContext(ctx), &models.BankAccount{}, "bank account", bankAccountID); err != nil {
		return nil, err
	}
	var list []models.BankTransaction
	err := e.db.WithContext(ctx).
		Where("bank_account_id = ?", bankAccountID).
		Order("id DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("bank transactions could not be listed: %w", err)
	}
	return list, nil
}
