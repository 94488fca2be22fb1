// Package httpx holds the request plumbing shared by the domain handlers.
package httpx

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"seafood-backend/internal/apperr"
)

const DateLayout = "2006-01-02"

// ErrorHandler renders every failure as {"error": ..., "kind": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
		})
	}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		return c.Status(apperr.HTTPStatus(ae.Kind)).JSON(fiber.Map{
			"error": ae.Error(),
			"kind":  ae.Kind,
		})
	}

	log.Println("Unexpected error:", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Unexpected server error",
	})
}

// ParamID reads a positive integer path parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || v == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(v), nil
}

func QueryUint(c *fiber.Ctx, key string) uint {
	v, err := strconv.ParseUint(c.Query(key), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

// ParseBody decodes the JSON body into dest.
func ParseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}

// ParseDate reads YYYY-MM-DD; an empty value yields def.
func ParseDate(value string, def time.Time) (time.Time, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date %q, expected YYYY-MM-DD", value)
	}
	return d, nil
}

// ParseOptionalDate is ParseDate for fields that may be left out.
func ParseOptionalDate(value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	d, err := ParseDate(*value, time.Time{})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ParseDateTime accepts RFC 3339 or "YYYY-MM-DD HH:MM".
func ParseDateTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid datetime %q", value)
	}
	return t, nil
}

// ParseOptionalDateTime returns nil for nil or empty input.
func ParseOptionalDateTime(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := ParseDateTime(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
