package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seafood-backend/internal/auth"
	"seafood-backend/internal/config"
	"seafood-backend/internal/models"
	"seafood-backend/internal/testutil"
)

func do(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRoutesEndToEnd(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret-test-secret-test-secret", CORSOrigins: "*", SequenceMaxAttempts: 10}
	app := newApp(cfg, testutil.NewDB(t), slog.Default())

	resp := do(t, app, "POST", "/api/auth/register-admin", "", fiber.Map{"name": "Root", "email": "root@example.com", "password": "correct-horse"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = do(t, app, "POST", "/api/auth/login", "", fiber.Map{"email": "root@example.com", "password": "correct-horse"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))

	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, "GET", "/api/cashboxes", "", nil).StatusCode)

	resp = do(t, app, "POST", "/api/cashboxes", login.Token, fiber.Map{"name": "Main", "prefix": "mn", "opening_balance": "1000.00"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var cb models.Cashbox
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cb))
	assert.Equal(t, "MN", cb.Prefix)

	resp = do(t, app, "POST", "/api/cashboxes/999/transactions", login.Token, fiber.Map{"transaction_type": "in", "amount": "5"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "not_found", body["kind"])

	resp = do(t, app, "POST", "/api/clients", login.Token, fiber.Map{"name": "Ocean Catch", "client_type": "company"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	operator, err := auth.GenerateToken(cfg.JWTSecret, &models.User{ID: 42, Name: "Op", Role: models.RoleOperator})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, do(t, app, "GET", "/api/cashboxes", operator, nil).StatusCode)
	assert.Equal(t, fiber.StatusOK, do(t, app, "GET", "/api/receptions", operator, nil).StatusCode)
	assert.Equal(t, fiber.StatusOK, do(t, app, "GET", "/api/clients", operator, nil).StatusCode)
	assert.Equal(t, fiber.StatusForbidden, do(t, app, "POST", "/api/clients", operator, fiber.Map{"name": "X"}).StatusCode)
}
