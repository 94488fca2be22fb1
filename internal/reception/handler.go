package reception

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"seafood-backend/internal/auth"
	"seafood-backend/internal/httpx"
	"seafood-backend/internal/models"
)

type CreateReceptionRequest struct {
	ClientID      uint            `json:"client_id"`
	ReceptionDate string          `json:"reception_date"` // YYYY-MM-DD, today when empty
	Weight        decimal.Decimal `json:"weight"`
	ServiceID     uint            `json:"service_id"`
	Observations  string          `json:"observations"`
}

type EditReceptionRequest struct {
	ClientID      *uint            `json:"client_id"`
	ReceptionDate *string          `json:"reception_date"`
	Weight        *decimal.Decimal `json:"weight"`
	ServiceID     *uint            `json:"service_id"`
	Observations  *string          `json:"observations"`
}

type TransitionRequest struct {
	Status models.ReceptionStatus `json:"status"`
}

func today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// POST /api/receptions
func CreateReceptionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateReceptionRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		date, err := httpx.ParseDate(body.ReceptionDate, today())
		if err != nil {
			return err
		}

		r, err := svc.Create(c.UserContext(), auth.ActorFromCtx(c), CreateInput{
			ClientID:      body.ClientID,
			ReceptionDate: date,
			Weight:        body.Weight,
			ServiceID:     body.ServiceID,
			Observations:  body.Observations,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(r)
	}
}

// GET /api/receptions?status=accepted&client_id=1&from=2025-11-01&to=2025-11-30
func ListReceptionsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := ListFilter{
			Status:   models.ReceptionStatus(c.Query("status")),
			ClientID: httpx.QueryUint(c, "client_id"),
		}
		if v := c.Query("from"); v != "" {
			from, err := httpx.ParseDate(v, time.Time{})
			if err != nil {
				return err
			}
			f.From = &from
		}
		if v := c.Query("to"); v != "" {
			to, err := httpx.ParseDate(v, time.Time{})
			if err != nil {
				return err
			}
			f.To = &to
		}

		receptions, err := svc.List(c.UserContext(), f)
		if err != nil {
			return err
		}
		return c.JSON(receptions)
	}
}

// GET /api/receptions/:id
func GetReceptionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		r, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"reception":         r,
			"is_editable":       r.IsEditable(),
			"is_locked":         r.IsLocked(),
			"can_be_classified": r.CanBeClassified(),
		})
	}
}

// PUT /api/receptions/:id
func EditReceptionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body EditReceptionRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		date, err := httpx.ParseOptionalDate(body.ReceptionDate)
		if err != nil {
			return err
		}

		r, err := svc.Edit(c.UserContext(), auth.ActorFromCtx(c), id, EditInput{
			ClientID:      body.ClientID,
			ReceptionDate: date,
			Weight:        body.Weight,
			ServiceID:     body.ServiceID,
			Observations:  body.Observations,
		})
		if err != nil {
			return err
		}
		return c.JSON(r)
	}
}

// POST /api/receptions/:id/transition
func TransitionReceptionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body TransitionRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		r, err := svc.Transition(c.UserContext(), auth.ActorFromCtx(c), id, body.Status)
		if err != nil {
			return err
		}
		return c.JSON(r)
	}
}

// DELETE /api/receptions/:id
func DeleteReceptionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), auth.ActorFromCtx(c), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
