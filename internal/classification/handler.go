package classification

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"seafood-backend/internal/auth"
	"seafood-backend/internal/httpx"
	"seafood-backend/internal/models"
)

type ItemRequest struct {
	SpeciesID  *uint           `json:"species_id"`
	SpeciesTag string          `json:"species_tag"`
	Weight     decimal.Decimal `json:"weight"`
	PlateCount int             `json:"plate_count"`
}

func (r ItemRequest) input() ItemInput {
	return ItemInput{SpeciesID: r.SpeciesID, SpeciesTag: r.SpeciesTag, Weight: r.Weight, PlateCount: r.PlateCount}
}

type CreateClassificationRequest struct {
	ReceptionID      uint          `json:"reception_id"`
	PointerFullName  string        `json:"pointer_full_name"`
	ReferenceChambre string        `json:"reference_chambre"`
	StartDatetime    string        `json:"start_datetime"`
	EndDatetime      *string       `json:"end_datetime"`
	TunnelIn         *string       `json:"tunnel_in"`
	TunnelOut        *string       `json:"tunnel_out"`
	Observations     string        `json:"observations"`
	Items            []ItemRequest `json:"items"`
}

type EditClassificationRequest struct {
	PointerFullName  *string `json:"pointer_full_name"`
	ReferenceChambre *string `json:"reference_chambre"`
	StartDatetime    *string `json:"start_datetime"`
	EndDatetime      *string `json:"end_datetime"`
	TunnelIn         *string `json:"tunnel_in"`
	TunnelOut        *string `json:"tunnel_out"`
	Observations     *string `json:"observations"`
}

type TransitionRequest struct {
	Status models.ClassificationStatus `json:"status"`
}

// POST /api/classifications
func CreateClassificationHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateClassificationRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		start, err := httpx.ParseDateTime(body.StartDatetime)
		if err != nil {
			return err
		}
		end, err := httpx.ParseOptionalDateTime(body.EndDatetime)
		if err != nil {
			return err
		}
		tunnelIn, err := httpx.ParseOptionalDateTime(body.TunnelIn)
		if err != nil {
			return err
		}
		tunnelOut, err := httpx.ParseOptionalDateTime(body.TunnelOut)
		if err != nil {
			return err
		}

		in := CreateInput{
			ReceptionID:      body.ReceptionID,
			PointerFullName:  body.PointerFullName,
			ReferenceChambre: body.ReferenceChambre,
			StartDatetime:    start,
			EndDatetime:      end,
			TunnelIn:         tunnelIn,
			TunnelOut:        tunnelOut,
			Observations:     body.Observations,
		}
		for _, it := range body.Items {
			in.Items = append(in.Items, it.input())
		}

		cl, err := svc.Create(c.UserContext(), auth.ActorFromCtx(c), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(cl)
	}
}

// GET /api/classifications?reception_id=1&status=draft
func ListClassificationsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.List(c.UserContext(), ListFilter{
			ReceptionID: httpx.QueryUint(c, "reception_id"),
			Status:      models.ClassificationStatus(c.Query("status")),
		})
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}

// GET /api/classifications/:id
func GetClassificationHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		cl, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(Summarize(cl))
	}
}

// PUT /api/classifications/:id
func EditClassificationHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body EditClassificationRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		in := EditInput{
			PointerFullName:  body.PointerFullName,
			ReferenceChambre: body.ReferenceChambre,
			Observations:     body.Observations,
		}
		if in.StartDatetime, err = httpx.ParseOptionalDateTime(body.StartDatetime); err != nil {
			return err
		}
		if in.EndDatetime, err = httpx.ParseOptionalDateTime(body.EndDatetime); err != nil {
			return err
		}
		if in.TunnelIn, err = httpx.ParseOptionalDateTime(body.TunnelIn); err != nil {
			return err
		}
		if in.TunnelOut, err = httpx.ParseOptionalDateTime(body.TunnelOut); err != nil {
			return err
		}

		cl, err := svc.Edit(c.UserContext(), auth.ActorFromCtx(c), id, in)
		if err != nil {
			return err
		}
		return c.JSON(Summarize(cl))
	}
}

// POST /api/classifications/:id/transition
func TransitionClassificationHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body TransitionRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		cl, err := svc.Transition(c.UserContext(), auth.ActorFromCtx(c), id, body.Status)
		if err != nil {
			return err
		}
		return c.JSON(Summarize(cl))
	}
}

// DELETE /api/classifications/:id
func DeleteClassificationHandler(svc *Service) fiber.Handler {
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

// POST /api/classifications/:id/items
func AddItemHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body ItemRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		item, err := svc.AddItem(c.UserContext(), auth.ActorFromCtx(c), id, body.input())
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

// PUT /api/classifications/:id/items/:itemId
func UpdateItemHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		itemID, err := httpx.ParamID(c, "itemId")
		if err != nil {
			return err
		}
		var body ItemRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		item, err := svc.UpdateItem(c.UserContext(), auth.ActorFromCtx(c), id, itemID, body.input())
		if err != nil {
			return err
		}
		return c.JSON(item)
	}
}

// DELETE /api/classifications/:id/items/:itemId
func RemoveItemHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		itemID, err := httpx.ParamID(c, "itemId")
		if err != nil {
			return err
		}
		if err := svc.RemoveItem(c.UserContext(), auth.ActorFromCtx(c), id, itemID); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
