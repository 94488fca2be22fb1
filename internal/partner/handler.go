package partner

import (
	"github.com/gofiber/fiber/v2"

	"seafood-backend/internal/auth"
	"seafood-backend/internal/httpx"
	"seafood-backend/internal/models"
)

type StatusRequest struct {
	Status string `json:"status"`
}

// POST /api/clients
func CreateClientHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ClientInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		client, err := svc.CreateClient(c.UserContext(), auth.ActorFromCtx(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(client)
	}
}

// GET /api/clients?status=active
func ListClientsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clients, err := svc.ListClients(c.UserContext(), models.PartnerStatus(c.Query("status")))
		if err != nil {
			return err
		}
		return c.JSON(clients)
	}
}

// GET /api/clients/:id
func GetClientHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		client, err := svc.GetClient(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(client)
	}
}

// PUT /api/clients/:id
func UpdateClientHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body ClientInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		client, err := svc.UpdateClient(c.UserContext(), auth.ActorFromCtx(c), id, body)
		if err != nil {
			return err
		}
		return c.JSON(client)
	}
}

// POST /api/clients/:id/status
func SetClientStatusHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body StatusRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		client, err := svc.SetClientStatus(c.UserContext(), auth.ActorFromCtx(c), id, models.PartnerStatus(body.Status))
		if err != nil {
			return err
		}
		return c.JSON(client)
	}
}

// POST /api/suppliers
func CreateSupplierHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SupplierInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		supplier, err := svc.CreateSupplier(c.UserContext(), auth.ActorFromCtx(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(supplier)
	}
}

// GET /api/suppliers?status=active&category=fish_food
func ListSuppliersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		suppliers, err := svc.ListSuppliers(c.UserContext(),
			models.PartnerStatus(c.Query("status")),
			models.SupplierCategory(c.Query("category")))
		if err != nil {
			return err
		}
		return c.JSON(suppliers)
	}
}

// GET /api/suppliers/:id
func GetSupplierHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		supplier, err := svc.GetSupplier(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(supplier)
	}
}

// PUT /api/suppliers/:id
func UpdateSupplierHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body SupplierInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		supplier, err := svc.UpdateSupplier(c.UserContext(), auth.ActorFromCtx(c), id, body)
		if err != nil {
			return err
		}
		return c.JSON(supplier)
	}
}

// POST /api/suppliers/:id/status
func SetSupplierStatusHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body StatusRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		supplier, err := svc.SetSupplierStatus(c.UserContext(), auth.ActorFromCtx(c), id, models.PartnerStatus(body.Status))
		if err != nil {
			return err
		}
		return c.JSON(supplier)
	}
}

// POST /api/prospects
func CreateProspectHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProspectInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		p, err := svc.CreateProspect(c.UserContext(), auth.ActorFromCtx(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// GET /api/prospects?status=new
func ListProspectsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		prospects, err := svc.ListProspects(c.UserContext(), models.ProspectStatus(c.Query("status")))
		if err != nil {
			return err
		}
		return c.JSON(prospects)
	}
}

// PUT /api/prospects/:id
func UpdateProspectHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body ProspectInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		p, err := svc.UpdateProspect(c.UserContext(), auth.ActorFromCtx(c), id, body)
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// POST /api/prospects/:id/status
func SetProspectStatusHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body StatusRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		p, err := svc.SetProspectStatus(c.UserContext(), auth.ActorFromCtx(c), id, models.ProspectStatus(body.Status))
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}
