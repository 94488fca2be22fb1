package sequence

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"seafood-backend/internal/apperr"
	"seafood-backend/internal/models"
	"seafood-backend/internal/testutil"
)

func next(t *testing.T, db *gorm.DB, g *Generator, s Series) string {
	t.Helper()
	var id string
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		id, err = g.NextString(tx, s)
		return err
	})
	require.NoError(t, err)
	return id
}

func TestSeriesFormat(t *testing.T) {
	nov := time.Date(2025, time.November, 3, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "000001", LotID().Format(1))
	assert.Equal(t, "1234567", LotID().Format(1234567))
	assert.Equal(t, "41000001", ClientAccountingCode().Format(1))
	assert.Equal(t, "40000012", SupplierAccountingCode().Format(12))
	assert.Equal(t, "BNK000003", BankIdentifier().Format(3))
	assert.Equal(t, "TRX000042", TransactionNumber().Format(42))
	assert.Equal(t, "#PR1125000001", PurchaseRequestNumber(nov).Format(1))
	assert.Equal(t, "#1125000007", PurchaseOrderNumber(nov).Format(7))
	assert.Equal(t, "1011", ServiceCode().Format(1011))
}

func TestParseSuffix(t *testing.T) {
	assert.Equal(t, int64(12), ParseSuffix("TRX-000012", "TRX"))
	assert.Equal(t, int64(13), ParseSuffix("TRX000013", "TRX"))
	assert.Equal(t, int64(5), ParseSuffix("#PR1125000005", "#PR1125"))
	assert.Zero(t, ParseSuffix("TRXabc", "TRX"))
	assert.Zero(t, ParseSuffix("BNK000001", "TRX"))
}

func TestNextIncrements(t *testing.T) {
	db := testutil.NewDB(t)
	g := NewGenerator(0)

	assert.Equal(t, "000001", next(t, db, g, LotID()))
	assert.Equal(t, "000002", next(t, db, g, LotID()))
	assert.Equal(t, "41000001", next(t, db, g, ClientAccountingCode()))
	assert.Equal(t, "000003", next(t, db, g, LotID()))
}

func TestNextIsNotConsumedOnRollback(t *testing.T) {
	db := testutil.NewDB(t)
	g := NewGenerator(0)

	boom := errors.New("boom")
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := g.Next(tx, LotID())
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, "000001", next(t, db, g, LotID()))
}

func TestNextSeedsFromLegacyRows(t *testing.T) {
	db := testutil.NewDB(t)
	g := NewGenerator(0)

	now := time.Now()
	require.NoError(t, db.Create(&models.CashboxTransaction{
		TransactionNumber: "TRX-000041", CashboxID: 1, Type: models.TransactionTypeIn,
		Source: models.TransactionSourceCash, Amount: decimal.NewFromInt(1), BalanceAfter: decimal.NewFromInt(1), Date: now,
	}).Error)
	require.NoError(t, db.Create(&models.BankTransaction{
		TransactionNumber: "TRX000007", BankAccountID: 1, Type: models.TransactionTypeIn,
		Source: models.TransactionSourceDeposit, Amount: decimal.NewFromInt(1), BalanceAfter: decimal.NewFromInt(1), Date: now,
	}).Error)

	assert.Equal(t, "TRX000042", next(t, db, g, TransactionNumber()))
	assert.Equal(t, "TRX000043", next(t, db, g, TransactionNumber()))
}

func TestMonthScopedSeriesRestart(t *testing.T) {
	db := testutil.NewDB(t)
	g := NewGenerator(0)

	nov := time.Date(2025, time.November, 30, 23, 0, 0, 0, time.UTC)
	dec := time.Date(2025, time.December, 1, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, "#PR1125000001", next(t, db, g, PurchaseRequestNumber(nov)))
	assert.Equal(t, "#PR1125000002", next(t, db, g, PurchaseRequestNumber(nov)))
	assert.Equal(t, "#PR1225000001", next(t, db, g, PurchaseRequestNumber(dec)))
	assert.Equal(t, "#1225000001", next(t, db, g, PurchaseOrderNumber(dec)))
}

func TestServiceCodeStartsAfterReservedBlock(t *testing.T) {
	db := testutil.NewDB(t)
	g := NewGenerator(0)

	assert.Equal(t, "1011", next(t, db, g, ServiceCode()))
}

func TestServiceCodeSeedsFromExistingServices(t *testing.T) {
	db := testutil.NewDB(t)
	g := NewGenerator(0)

	require.NoError(t, db.Create(&models.Service{Code: 1500, Name: "Filleting"}).Error)

	assert.Equal(t, "1501", next(t, db, g, ServiceCode()))
}

func TestNextReportsOverflow(t *testing.T) {
	db := testutil.NewDB(t)
	g := NewGenerator(0)

	require.NoError(t, db.Create(&models.SequenceCounter{SeriesKey: "service_code", LastValue: 9999}).Error)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := g.Next(tx, ServiceCode())
		return err
	})
	require.ErrorIs(t, err, apperr.ErrNoCodesLeft)
}

func testSeries() Series {
	return Series{Key: "cashbox_prefix_test", Prefix: "CB", Width: 2, Floor: 1}
}

func insertCashbox(tx *gorm.DB, prefix string) error {
	return tx.Create(&models.Cashbox{Name: "Main", Prefix: prefix, CurrentBalance: decimal.Zero}).Error
}

func TestAssignSkipsIdentifiersTakenOutsideTheCounter(t *testing.T) {
	db := testutil.NewDB(t)
	g := NewGenerator(0)

	require.NoError(t, insertCashbox(db, "CB01"))

	var id string
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		id, err = g.Assign(tx, testSeries(), insertCashbox)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "CB02", id)

	var count int64
	require.NoError(t, db.Model(&models.Cashbox{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestAssignGivesUpAfterMaxAttempts(t *testing.T) {
	db := testutil.NewDB(t)
	g := NewGenerator(2)

	require.NoError(t, insertCashbox(db, "CB01"))
	require.NoError(t, insertCashbox(db, "CB02"))

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := g.Assign(tx, testSeries(), insertCashbox)
		return err
	})
	require.ErrorIs(t, err, apperr.ErrDuplicateIdentifier)
	assert.True(t, IsDuplicate(errors.Unwrap(err)))
}

func TestAssignDoesNotRetryOtherErrors(t *testing.T) {
	db := testutil.NewDB(t)
	g := NewGenerator(0)

	boom := errors.New("boom")
	calls := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := g.Assign(tx, testSeries(), func(*gorm.DB, string) error {
			calls++
			return boom
		})
		return err
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestConcurrentNextHandsOutDistinctGaplessValues(t *testing.T) {
	db := testutil.NewDB(t)
	g := NewGenerator(0)

	const n = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var v int64
			err := db.Transaction(func(tx *gorm.DB) error {
				var err error
				v, err = g.Next(tx, LotID())
				return err
			})
			assert.NoError(t, err)
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, n)
	for v := int64(1); v <= n; v++ {
		assert.True(t, seen[v], "missing %d", v)
	}
}
