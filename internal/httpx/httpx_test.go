package httpx

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seafood-backend/internal/apperr"
)

func TestErrorHandlerMapsKinds(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/funds", func(c *fiber.Ctx) error {
		return apperr.New(apperr.KindInsufficientFunds, "not enough")
	})
	app.Get("/missing/:id", func(c *fiber.Ctx) error {
		id, err := ParamID(c, "id")
		if err != nil {
			return err
		}
		return apperr.NotFound("reception", id)
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("disk on fire")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/funds", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "insufficient_funds", body["kind"])
	assert.Equal(t, "not enough", body["error"])

	resp, err = app.Test(httptest.NewRequest("GET", "/missing/4", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/missing/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestParseDate(t *testing.T) {
	def := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	d, err := ParseDate("", def)
	require.NoError(t, err)
	assert.Equal(t, def, d)

	d, err = ParseDate("2025-11-03", def)
	require.NoError(t, err)
	assert.Equal(t, time.November, d.Month())

	_, err = ParseDate("03/11/2025", def)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestParseOptionalDateTime(t *testing.T) {
	got, err := ParseOptionalDateTime(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	v := "2025-11-03T08:30:00Z"
	got, err = ParseOptionalDateTime(&v)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 8, got.Hour())

	bad := "tomorrow"
	_, err = ParseOptionalDateTime(&bad)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
