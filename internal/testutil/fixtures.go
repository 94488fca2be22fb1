package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"seafood-backend/internal/models"
)

// CreateClient inserts a client with a code outside the generated range.
func CreateClient(t *testing.T, db *gorm.DB, name string) *models.Client {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Client{}).Count(&count).Error)
	c := &models.Client{
		AccountingCode: fmt.Sprintf("41%06d", 900000+count+1),
		Name:           name,
		ClientType:     models.ClientTypeCompany,
		Status:         models.PartnerStatusActive,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func CreateSupplier(t *testing.T, db *gorm.DB, name string) *models.Supplier {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Supplier{}).Count(&count).Error)
	s := &models.Supplier{
		AccountingCode: fmt.Sprintf("40%06d", 900000+count+1),
		Name:           name,
		Category:       models.SupplierCategoryOther,
		PaymentTerms:   30,
		Status:         models.PartnerStatusActive,
	}
	require.NoError(t, db.Create(s).Error)
	return s
}

// ServiceWithCode returns the service with code, creating it when missing.
func ServiceWithCode(t *testing.T, db *gorm.DB, code int) *models.Service {
	t.Helper()
	s := &models.Service{}
	err := db.Where(models.Service{Code: code}).
		Attrs(models.Service{Name: fmt.Sprintf("Service %d", code), IsActive: true}).
		FirstOrCreate(s).Error
	require.NoError(t, err)
	return s
}
