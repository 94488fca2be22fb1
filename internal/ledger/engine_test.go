package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"seafood-backend/internal/apperr"
	"seafood-backend/internal/audit"
	"seafood-backend/internal/httpx"
	"seafood-backend/internal/models"
	"seafood-backend/internal/sequence"
	"seafood-backend/internal/testutil"
)

func newEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return NewEngine(db, sequence.NewGenerator(0), audit.NewLogger(db, nil)), db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func post(t *testing.T, e *Engine, kind AccountKind, id uint, typ models.TransactionType, amount string) *Posting {
	t.Helper()
	p, err := e.Post(context.Background(), audit.Actor{}, PostInput{Kind: kind, AccountID: id, Type: typ, Amount: dec(amount)})
	require.NoError(t, err)
	return p
}

func TestCreateCashboxPostsOpeningBalance(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	cb, err := e.CreateCashbox(ctx, audit.Actor{}, CashboxInput{Name: "Front desk", Prefix: "fd", OpeningBalance: dec("1000.00")})
	require.NoError(t, err)
	assert.Equal(t, "FD", cb.Prefix)
	assert.Equal(t, "1000.00", cb.CurrentBalance.StringFixed(2))

	txs, err := e.CashboxTransactions(ctx, cb.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "TRX000001", txs[0].TransactionNumber)
	assert.Equal(t, models.TransactionTypeIn, txs[0].Type)
	assert.Equal(t, "1000.00", txs[0].BalanceAfter.StringFixed(2))

	_, err = e.CreateCashbox(ctx, audit.Actor{}, CashboxInput{Name: "Other", Prefix: "FD"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	empty, err := e.CreateCashbox(ctx, audit.Actor{}, CashboxInput{Name: "Petty", Prefix: "PC"})
	require.NoError(t, err)
	txs, err = e.CashboxTransactions(ctx, empty.ID)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestCreateBankAccountAssignsIdentifier(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	a, err := e.CreateBankAccount(ctx, audit.Actor{}, BankAccountInput{Name: "Operations", BankName: "CBAO"})
	require.NoError(t, err)
	b, err := e.CreateBankAccount(ctx, audit.Actor{}, BankAccountInput{Name: "Payroll", OpeningBalance: dec("250")})
	require.NoError(t, err)

	assert.Equal(t, "BNK000001", a.Identifier)
	assert.Equal(t, "BNK000002", b.Identifier)
	assert.Equal(t, "250.00", b.CurrentBalance.StringFixed(2))

	_, err = e.CreateBankAccount(ctx, audit.Actor{}, BankAccountInput{Name: "Bad", OpeningBalance: dec("-1")})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPostKeepsBalanceAndLastBalanceAfterInStep(t *testing.T) {
	e, db := newEngine(t)
	ctx := context.Background()

	cb, err := e.CreateCashbox(ctx, audit.Actor{}, CashboxInput{Name: "Main", Prefix: "MN", OpeningBalance: dec("100.00")})
	require.NoError(t, err)

	p := post(t, e, AccountCashbox, cb.ID, models.TransactionTypeIn, "50.25")
	assert.Equal(t, "100.00", p.BalanceBefore.StringFixed(2))
	assert.Equal(t, "150.25", p.BalanceAfter.StringFixed(2))

	p = post(t, e, AccountCashbox, cb.ID, models.TransactionTypeOut, "20.10")
	assert.Equal(t, "150.25", p.BalanceBefore.StringFixed(2))
	assert.Equal(t, "130.15", p.BalanceAfter.StringFixed(2))
	assert.Equal(t, "TRX000003", p.TransactionNumber)

	got, err := e.GetCashbox(ctx, cb.ID)
	require.NoError(t, err)

	var last models.CashboxTransaction
	require.NoError(t, db.Where("cashbox_id = ?", cb.ID).Order("id DESC").First(&last).Error)
	assert.True(t, got.CurrentBalance.Equal(last.BalanceAfter))
	assert.Equal(t, "130.15", got.CurrentBalance.StringFixed(2))
}

func TestManualOutMayOverdrawButPaymentsMayNot(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	cb, err := e.CreateCashbox(ctx, audit.Actor{}, CashboxInput{Name: "Main", Prefix: "MN", OpeningBalance: dec("1000.00")})
	require.NoError(t, err)

	_, err = e.Post(ctx, audit.Actor{}, PostInput{
		Kind: AccountCashbox, AccountID: cb.ID, Type: models.TransactionTypeOut,
		Amount: dec("1200.00"), RequireFunds: true,
	})
	require.ErrorIs(t, err, apperr.ErrInsufficientFunds)

	got, err := e.GetCashbox(ctx, cb.ID)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", got.CurrentBalance.StringFixed(2))
	txs, err := e.CashboxTransactions(ctx, cb.ID)
	require.NoError(t, err)
	assert.Len(t, txs, 1)

	p := post(t, e, AccountCashbox, cb.ID, models.TransactionTypeOut, "1200.00")
	assert.Equal(t, "-200.00", p.BalanceAfter.StringFixed(2))
}

func TestPostValidation(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	cb, err := e.CreateCashbox(ctx, audit.Actor{}, CashboxInput{Name: "Main", Prefix: "MN"})
	require.NoError(t, err)

	cases := []PostInput{
		{Kind: AccountCashbox, AccountID: cb.ID, Type: models.TransactionTypeIn, Amount: dec("0")},
		{Kind: AccountCashbox, AccountID: cb.ID, Type: models.TransactionTypeIn, Amount: dec("-5")},
		{Kind: AccountCashbox, AccountID: cb.ID, Type: models.TransactionTypeIn, Amount: dec("1.005")},
		{Kind: AccountCashbox, AccountID: cb.ID, Type: "sideways", Amount: dec("5")},
		{Kind: AccountCashbox, AccountID: cb.ID, Type: models.TransactionTypeIn, Source: "barter", Amount: dec("5")},
		{Kind: "wallet", AccountID: cb.ID, Type: models.TransactionTypeIn, Amount: dec("5")},
	}
	for i, in := range cases {
		_, err := e.Post(ctx, audit.Actor{}, in)
		assert.ErrorIs(t, err, apperr.ErrValidation, "case %d", i)
	}

	_, err = e.Post(ctx, audit.Actor{}, PostInput{Kind: AccountBank, AccountID: 404, Type: models.TransactionTypeIn, Amount: dec("5")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCashboxAndBankShareTransactionNumbers(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	cb, err := e.CreateCashbox(ctx, audit.Actor{}, CashboxInput{Name: "Main", Prefix: "MN"})
	require.NoError(t, err)
	ba, err := e.CreateBankAccount(ctx, audit.Actor{}, BankAccountInput{Name: "Ops"})
	require.NoError(t, err)

	a := post(t, e, AccountCashbox, cb.ID, models.TransactionTypeIn, "10")
	b := post(t, e, AccountBank, ba.ID, models.TransactionTypeIn, "10")
	c := post(t, e, AccountCashbox, cb.ID, models.TransactionTypeIn, "10")

	assert.Equal(t, "TRX000001", a.TransactionNumber)
	assert.Equal(t, "TRX000002", b.TransactionNumber)
	assert.Equal(t, "TRX000003", c.TransactionNumber)

	bankTxs, err := e.BankTransactions(ctx, ba.ID)
	require.NoError(t, err)
	require.Len(t, bankTxs, 1)
	assert.Equal(t, "10.00", bankTxs[0].BalanceAfter.StringFixed(2))
}

func TestConcurrentPostsSerializePerAccount(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	cb, err := e.CreateCashbox(ctx, audit.Actor{}, CashboxInput{Name: "Main", Prefix: "MN", OpeningBalance: dec("100")})
	require.NoError(t, err)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			typ := models.TransactionTypeIn
			if i%2 == 1 {
				typ = models.TransactionTypeOut
			}
			_, err := e.Post(ctx, audit.Actor{}, PostInput{Kind: AccountCashbox, AccountID: cb.ID, Type: typ, Amount: dec("7.50")})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := e.GetCashbox(ctx, cb.ID)
	require.NoError(t, err)
	assert.Equal(t, "100.00", got.CurrentBalance.StringFixed(2))

	txs, err := e.CashboxTransactions(ctx, cb.ID)
	require.NoError(t, err)
	require.Len(t, txs, n+1)
	assert.True(t, got.CurrentBalance.Equal(txs[0].BalanceAfter))

	// replaying the postings in order reproduces every balance_after
	numbers := make(map[string]bool)
	balance := decimal.Zero
	for i := len(txs) - 1; i >= 0; i-- {
		tx := txs[i]
		if tx.Type == models.TransactionTypeIn {
			balance = balance.Add(tx.Amount)
		} else {
			balance = balance.Sub(tx.Amount)
		}
		assert.True(t, balance.Equal(tx.BalanceAfter), "transaction %s", tx.TransactionNumber)
		numbers[tx.TransactionNumber] = true
	}
	assert.Len(t, numbers, n+1)
}

func TestPostCashboxTransactionHandler(t *testing.T) {
	e, _ := newEngine(t)
	cb, err := e.CreateCashbox(context.Background(), audit.Actor{}, CashboxInput{Name: "Main", Prefix: "MN"})
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler})
	app.Post("/cashboxes/:id/transactions", PostCashboxTransactionHandler(e))

	body, _ := json.Marshal(fiber.Map{"transaction_type": "in", "source": "cash", "amount": "75.00", "date": "2025-11-03"})
	req := httptest.NewRequest("POST", fmt.Sprintf("/cashboxes/%d/transactions", cb.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var p Posting
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.Equal(t, "75.00", p.BalanceAfter.StringFixed(2))
	assert.Equal(t, "TRX000001", p.TransactionNumber)
}
