package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seafood-backend/internal/apperr"
	"seafood-backend/internal/audit"
	"seafood-backend/internal/sequence"
	"seafood-backend/internal/testutil"
)

func newService(t *testing.T) *Service {
	t.Helper()
	db := testutil.NewDB(t)
	return NewService(db, sequence.NewGenerator(0), audit.NewLogger(db, nil))
}

func code(v int) *int { return &v }

func TestReservedServicesAreSeeded(t *testing.T) {
	svc := newService(t)

	services, err := svc.ListServices(context.Background(), 0, false)
	require.NoError(t, err)
	require.Len(t, services, 11)
	assert.Equal(t, 1000, services[0].Code)
	assert.Equal(t, 1010, services[10].Code)
	assert.True(t, services[0].IsSystem)
}

func TestCreateServiceAllocatesAfterReservedBlock(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.CreateService(ctx, audit.Actor{}, ServiceInput{Name: "Filleting"})
	require.NoError(t, err)
	b, err := svc.CreateService(ctx, audit.Actor{}, ServiceInput{Name: "Smoking"})
	require.NoError(t, err)

	assert.Equal(t, 1011, a.Code)
	assert.Equal(t, 1012, b.Code)
	assert.False(t, a.IsSystem)
}

func TestCreateServiceSkipsExplicitlyTakenCode(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.CreateService(ctx, audit.Actor{}, ServiceInput{Name: "Filleting"})
	require.NoError(t, err)
	require.Equal(t, 1011, a.Code)

	_, err = svc.CreateService(ctx, audit.Actor{}, ServiceInput{Name: "Brining", Code: code(1012)})
	require.NoError(t, err)

	c, err := svc.CreateService(ctx, audit.Actor{}, ServiceInput{Name: "Smoking"})
	require.NoError(t, err)
	assert.Equal(t, 1013, c.Code)
}

func TestCreateServiceExplicitCodeRules(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.CreateService(ctx, audit.Actor{}, ServiceInput{Name: "Too big", Code: code(10000)})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateService(ctx, audit.Actor{}, ServiceInput{Name: "Clash", Code: code(1005)})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateService(ctx, audit.Actor{}, ServiceInput{Name: "Ok", Code: code(1500)})
	require.NoError(t, err)
}

func TestCreateServiceReportsExhaustedCodes(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.CreateService(ctx, audit.Actor{}, ServiceInput{Name: "Last", Code: code(9999)})
	require.NoError(t, err)

	_, err = svc.CreateService(ctx, audit.Actor{}, ServiceInput{Name: "One more"})
	assert.ErrorIs(t, err, apperr.ErrNoCodesLeft)
}

func TestUpdateServiceRejectsCodeChange(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	s, err := svc.CreateService(ctx, audit.Actor{}, ServiceInput{Name: "Filleting"})
	require.NoError(t, err)

	_, err = svc.UpdateService(ctx, audit.Actor{}, s.ID, ServiceInput{Name: "Filleting", Code: code(1999)})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	updated, err := svc.UpdateService(ctx, audit.Actor{}, s.ID, ServiceInput{Name: "Fine filleting", Code: code(s.Code)})
	require.NoError(t, err)
	assert.Equal(t, "Fine filleting", updated.Name)
	assert.Equal(t, s.Code, updated.Code)
}

func TestSubCategoryUniquePerCategory(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	fish, err := svc.CreateCategory(ctx, audit.Actor{}, CategoryInput{Name: "Fish"})
	require.NoError(t, err)
	shell, err := svc.CreateCategory(ctx, audit.Actor{}, CategoryInput{Name: "Shellfish"})
	require.NoError(t, err)

	_, err = svc.CreateSubCategory(ctx, audit.Actor{}, SubCategoryInput{CategoryID: fish.ID, Name: "Sardine"})
	require.NoError(t, err)
	_, err = svc.CreateSubCategory(ctx, audit.Actor{}, SubCategoryInput{CategoryID: fish.ID, Name: "Sardine"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.CreateSubCategory(ctx, audit.Actor{}, SubCategoryInput{CategoryID: shell.ID, Name: "Sardine"})
	require.NoError(t, err)
	_, err = svc.CreateSubCategory(ctx, audit.Actor{}, SubCategoryInput{CategoryID: 404, Name: "Tuna"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	subs, err := svc.ListSubCategories(ctx, fish.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Sardine", subs[0].Name)
}
