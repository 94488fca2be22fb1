package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seafood-backend/internal/database"
	"seafood-backend/internal/models"
	"seafood-backend/internal/testutil"
)

func TestIsSQLite(t *testing.T) {
	assert.True(t, database.IsSQLite("file:seafood?mode=memory"))
	assert.True(t, database.IsSQLite("seafood.db"))
	assert.False(t, database.IsSQLite("host=localhost user=postgres dbname=seafood"))
}

func TestMigrateSeedsReservedServicesOnce(t *testing.T) {
	db := testutil.NewDB(t)

	// renamed by an operator; a second migrate must keep the change
	require.NoError(t, db.Model(&models.Service{}).Where("code = ?", 1000).Update("name", "Intake").Error)
	require.NoError(t, database.Migrate(db))

	var services []models.Service
	require.NoError(t, db.Order("code ASC").Find(&services).Error)
	require.Len(t, services, len(database.ReservedServices))
	assert.Equal(t, 1000, services[0].Code)
	assert.Equal(t, "Intake", services[0].Name)
	assert.Equal(t, 1010, services[len(services)-1].Code)
	for _, s := range services {
		assert.True(t, s.IsSystem, "service %d", s.Code)
	}
}
