package reception

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seafood-backend/internal/httpx"
	"seafood-backend/internal/models"
)

func send(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestReceptionHandlers(t *testing.T) {
	f := setup(t)
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler})
	app.Post("/receptions", CreateReceptionHandler(f.svc))
	app.Get("/receptions/:id", GetReceptionHandler(f.svc))
	app.Post("/receptions/:id/transition", TransitionReceptionHandler(f.svc))

	resp := send(t, app, "POST", "/receptions", fiber.Map{
		"client_id":      f.client.ID,
		"reception_date": "2025-11-03",
		"weight":         "100.00",
		"service_id":     f.service.ID,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var r models.Reception
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&r))
	assert.Equal(t, "000001", r.LotID)

	resp = send(t, app, "POST", fmt.Sprintf("/receptions/%d/transition", r.ID), TransitionRequest{Status: models.ReceptionStatusCompleted})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = send(t, app, "POST", fmt.Sprintf("/receptions/%d/transition", r.ID), TransitionRequest{Status: models.ReceptionStatusAccepted})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = send(t, app, "GET", fmt.Sprintf("/receptions/%d", r.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var detail struct {
		IsLocked        bool `json:"is_locked"`
		CanBeClassified bool `json:"can_be_classified"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
	assert.True(t, detail.IsLocked)
	assert.True(t, detail.CanBeClassified)

	resp = send(t, app, "POST", "/receptions", fiber.Map{
		"client_id":  f.client.ID,
		"weight":     "0",
		"service_id": f.service.ID,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
