package catalog

import (
	"github.com/gofiber/fiber/v2"

	"seafood-backend/internal/auth"
	"seafood-backend/internal/httpx"
)

// POST /api/service-categories
func CreateCategoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CategoryInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		cat, err := svc.CreateCategory(c.UserContext(), auth.ActorFromCtx(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(cat)
	}
}

// PUT /api/service-categories/:id
func UpdateCategoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body CategoryInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		cat, err := svc.UpdateCategory(c.UserContext(), auth.ActorFromCtx(c), id, body)
		if err != nil {
			return err
		}
		return c.JSON(cat)
	}
}

// GET /api/service-categories
func ListCategoriesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cats, err := svc.ListCategories(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(cats)
	}
}

// POST /api/species
func CreateSubCategoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SubCategoryInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		sub, err := svc.CreateSubCategory(c.UserContext(), auth.ActorFromCtx(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(sub)
	}
}

// GET /api/species?category_id=1
func ListSubCategoriesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subs, err := svc.ListSubCategories(c.UserContext(), httpx.QueryUint(c, "category_id"))
		if err != nil {
			return err
		}
		return c.JSON(subs)
	}
}

// POST /api/services
func CreateServiceHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ServiceInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		s, err := svc.CreateService(c.UserContext(), auth.ActorFromCtx(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(s)
	}
}

// PUT /api/services/:id
func UpdateServiceHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body ServiceInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		s, err := svc.UpdateService(c.UserContext(), auth.ActorFromCtx(c), id, body)
		if err != nil {
			return err
		}
		return c.JSON(s)
	}
}

// GET /api/services/:id
func GetServiceHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		s, err := svc.GetService(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(s)
	}
}

// GET /api/services?category_id=1&active=true
func ListServicesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		services, err := svc.ListServices(c.UserContext(), httpx.QueryUint(c, "category_id"), c.QueryBool("active"))
		if err != nil {
			return err
		}
		return c.JSON(services)
	}
}
