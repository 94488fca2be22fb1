package partner

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seafood-backend/internal/apperr"
	"seafood-backend/internal/audit"
	"seafood-backend/internal/httpx"
	"seafood-backend/internal/models"
	"seafood-backend/internal/sequence"
	"seafood-backend/internal/testutil"
)

func newService(t *testing.T) *Service {
	t.Helper()
	db := testutil.NewDB(t)
	return NewService(db, sequence.NewGenerator(0), audit.NewLogger(db, nil))
}

func TestCreateClientAssignsSequentialCodes(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.CreateClient(ctx, audit.Actor{}, ClientInput{Name: "Ocean Foods"})
	require.NoError(t, err)
	b, err := svc.CreateClient(ctx, audit.Actor{}, ClientInput{Name: "Blue Fleet", ClientType: models.ClientTypeIndividual})
	require.NoError(t, err)

	assert.Equal(t, "41000001", a.AccountingCode)
	assert.Equal(t, "41000002", b.AccountingCode)
	assert.Equal(t, models.PartnerStatusActive, a.Status)
	assert.Equal(t, models.ClientTypeCompany, a.ClientType)
}

func TestUpdateClientKeepsAccountingCode(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	c, err := svc.CreateClient(ctx, audit.Actor{}, ClientInput{Name: "Ocean Foods"})
	require.NoError(t, err)

	updated, err := svc.UpdateClient(ctx, audit.Actor{}, c.ID, ClientInput{Name: "Ocean Foods SA", City: "Dakar"})
	require.NoError(t, err)
	assert.Equal(t, c.AccountingCode, updated.AccountingCode)
	assert.Equal(t, "Dakar", updated.City)

	_, err = svc.UpdateClient(ctx, audit.Actor{}, 999, ClientInput{Name: "Nobody"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestClientValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.CreateClient(ctx, audit.Actor{}, ClientInput{Name: "  "})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateClient(ctx, audit.Actor{}, ClientInput{Name: "X", ClientType: "alien"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSupplierCodesAndStatus(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	sp, err := svc.CreateSupplier(ctx, audit.Actor{}, SupplierInput{Name: "Ice Co", Category: models.SupplierCategoryLogistics})
	require.NoError(t, err)
	assert.Equal(t, "40000001", sp.AccountingCode)
	assert.Equal(t, DefaultPaymentTerms, sp.PaymentTerms)

	_, err = svc.SetSupplierStatus(ctx, audit.Actor{}, sp.ID, models.PartnerStatusInactive)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	sp, err = svc.SetSupplierStatus(ctx, audit.Actor{}, sp.ID, models.PartnerStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, models.PartnerStatusSuspended, sp.Status)

	_, err = svc.CreateSupplier(ctx, audit.Actor{}, SupplierInput{Name: "Bad", Status: models.PartnerStatusInactive})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestProspectStatusMovesFreely(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p, err := svc.CreateProspect(ctx, audit.Actor{}, ProspectInput{Name: "Harbor Market"})
	require.NoError(t, err)
	assert.Equal(t, models.ProspectStatusNew, p.Status)

	for _, st := range []models.ProspectStatus{
		models.ProspectStatusLost, models.ProspectStatusRelaunched, models.ProspectStatusNew, models.ProspectStatusConverted,
	} {
		p, err = svc.SetProspectStatus(ctx, audit.Actor{}, p.ID, st)
		require.NoError(t, err)
		assert.Equal(t, st, p.Status)
	}

	_, err = svc.SetProspectStatus(ctx, audit.Actor{}, p.ID, "won")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestClientHandlers(t *testing.T) {
	svc := newService(t)
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler})
	app.Post("/clients", CreateClientHandler(svc))
	app.Get("/clients/:id", GetClientHandler(svc))

	b, _ := json.Marshal(ClientInput{Name: "Ocean Foods"})
	req := httptest.NewRequest("POST", "/clients", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created models.Client
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "41000001", created.AccountingCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/clients/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
