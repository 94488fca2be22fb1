package sequence

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"seafood-backend/internal/models"
)

// LastSuffix scans column of table for values starting with prefix and
// returns the largest numeric suffix found.
func LastSuffix(table, column, prefix string) LegacyScan {
	return func(tx *gorm.DB) (int64, error) {
		var values []string
		if err := tx.Table(table).Where(column+" LIKE ?", prefix+"%").Pluck(column, &values).Error; err != nil {
			return 0, err
		}
		var last int64
		for _, v := range values {
			if n := ParseSuffix(v, prefix); n > last {
				last = n
			}
		}
		return last, nil
	}
}

func maxOf(scans ...LegacyScan) LegacyScan {
	return func(tx *gorm.DB) (int64, error) {
		var last int64
		for _, scan := range scans {
			n, err := scan(tx)
			if err != nil {
				return 0, err
			}
			if n > last {
				last = n
			}
		}
		return last, nil
	}
}

// LotID: 000001, 000002, ... growing past six digits when needed.
func LotID() Series {
	return Series{
		Key:    "lot_id",
		Width:  6,
		Floor:  1,
		Legacy: LastSuffix("receptions", "lot_id", ""),
	}
}

// ClientAccountingCode: 41XXXXXX
func ClientAccountingCode() Series {
	return Series{
		Key:    "accounting_code:client",
		Prefix: "41",
		Width:  6,
		Floor:  1,
		Max:    999999,
		Legacy: LastSuffix("clients", "accounting_code", "41"),
	}
}

// SupplierAccountingCode: 40XXXXXX
func SupplierAccountingCode() Series {
	return Series{
		Key:    "accounting_code:supplier",
		Prefix: "40",
		Width:  6,
		Floor:  1,
		Max:    999999,
		Legacy: LastSuffix("suppliers", "accounting_code", "40"),
	}
}

// BankIdentifier: BNKXXXXXX
func BankIdentifier() Series {
	return Series{
		Key:    "bank_identifier",
		Prefix: "BNK",
		Width:  6,
		Floor:  1,
		Max:    999999,
		Legacy: LastSuffix("bank_accounts", "identifier", "BNK"),
	}
}

// TransactionNumber: TRXXXXXXX, shared by cashbox and bank transactions.
// Legacy rows written as TRX-XXXXXX are taken into account when seeding.
func TransactionNumber() Series {
	return Series{
		Key:    "transaction_number",
		Prefix: "TRX",
		Width:  6,
		Floor:  1,
		Legacy: maxOf(
			LastSuffix("cashbox_transactions", "transaction_number", "TRX"),
			LastSuffix("bank_transactions", "transaction_number", "TRX"),
		),
	}
}

// ServiceCode allocates user services from 1011 upward; 1000-1010 are
// never handed out automatically.
func ServiceCode() Series {
	return Series{
		Key:   "service_code",
		Width: 4,
		Floor: models.ServiceCodeReserved + 1,
		Max:   models.ServiceCodeMax,
		Legacy: func(tx *gorm.DB) (int64, error) {
			var last *int64
			err := tx.Model(&models.Service{}).
				Where("code > ?", models.ServiceCodeReserved).
				Select("MAX(code)").
				Scan(&last).Error
			if err != nil || last == nil {
				return 0, err
			}
			return *last, nil
		},
	}
}

func monthScope(now time.Time) string {
	return fmt.Sprintf("%02d%02d", int(now.Month()), now.Year()%100)
}

// PurchaseRequestNumber: #PRMMYYXXXXXX. The counter restarts with each month
// because the scope is part of the key.
func PurchaseRequestNumber(now time.Time) Series {
	scope := monthScope(now)
	prefix := "#PR" + scope
	return Series{
		Key:    "pr_number:" + scope,
		Prefix: prefix,
		Width:  6,
		Floor:  1,
		Max:    999999,
		Legacy: LastSuffix("purchase_requests", "pr_number", prefix),
	}
}

// PurchaseOrderNumber: #MMYYXXXXXX
func PurchaseOrderNumber(now time.Time) Series {
	scope := monthScope(now)
	prefix := "#" + scope
	return Series{
		Key:    "po_number:" + scope,
		Prefix: prefix,
		Width:  6,
		Floor:  1,
		Max:    999999,
		Legacy: LastSuffix("purchase_orders", "po_number", prefix),
	}
}
