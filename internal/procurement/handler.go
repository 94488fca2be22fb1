package procurement

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"seafood-backend/internal/audit"
	"seafood-backend/internal/auth"
	"seafood-backend/internal/httpx"
	"seafood-backend/internal/models"
)

type CreateRequestRequest struct {
	Title       string             `json:"title"`
	RequestDate string             `json:"request_date"` // YYYY-MM-DD, today when empty
	Notes       string             `json:"notes"`
	Items       []RequestItemInput `json:"items"`
}

type RequestItemsRequest struct {
	Items []RequestItemInput `json:"items"`
}

type ApproveRequestRequest struct {
	SupplierID uint         `json:"supplier_id"`
	OrderDate  string       `json:"order_date"`
	Prices     []PriceInput `json:"prices"`
}

type RejectRequestRequest struct {
	Reason string `json:"reason"`
}

type CreateOrderRequest struct {
	SupplierID uint             `json:"supplier_id"`
	OrderDate  string           `json:"order_date"`
	Notes      string           `json:"notes"`
	Items      []OrderItemInput `json:"items"`
}

type PayOrderRequest struct {
	Method    models.PaymentMethod `json:"payment_method"`
	AccountID uint                 `json:"account_id"`
	Date      string               `json:"payment_date"`
}

// POST /api/purchase-requests
func CreateRequestHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRequestRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		date, err := httpx.ParseDate(body.RequestDate, time.Time{})
		if err != nil {
			return err
		}
		pr, err := svc.CreateRequest(c.UserContext(), auth.ActorFromCtx(c), CreateRequestInput{
			Title:       body.Title,
			RequestDate: date,
			Notes:       body.Notes,
			Items:       body.Items,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(pr)
	}
}

// GET /api/purchase-requests?status=draft
func ListRequestsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.ListRequests(c.UserContext(), models.PurchaseRequestStatus(c.Query("status")))
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}

// GET /api/purchase-requests/:id
func GetRequestHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		pr, err := svc.GetRequest(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(pr)
	}
}

// PUT /api/purchase-requests/:id/items
func UpdateRequestItemsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body RequestItemsRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		pr, err := svc.UpdateRequestItems(c.UserContext(), auth.ActorFromCtx(c), id, body.Items)
		if err != nil {
			return err
		}
		return c.JSON(pr)
	}
}

// POST /api/purchase-requests/:id/approve
func ApproveRequestHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body ApproveRequestRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		date, err := httpx.ParseDate(body.OrderDate, time.Time{})
		if err != nil {
			return err
		}
		po, err := svc.ApproveRequest(c.UserContext(), auth.ActorFromCtx(c), id, ApproveRequestInput{
			SupplierID: body.SupplierID,
			OrderDate:  date,
			Prices:     body.Prices,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(po)
	}
}

// POST /api/purchase-requests/:id/reject
func RejectRequestHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body RejectRequestRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		pr, err := svc.RejectRequest(c.UserContext(), auth.ActorFromCtx(c), id, body.Reason)
		if err != nil {
			return err
		}
		return c.JSON(pr)
	}
}

// POST /api/purchase-requests/:id/cancel
func CancelRequestHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		pr, err := svc.CancelRequest(c.UserContext(), auth.ActorFromCtx(c), id)
		if err != nil {
			return err
		}
		return c.JSON(pr)
	}
}

// POST /api/purchase-orders
func CreateOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		date, err := httpx.ParseDate(body.OrderDate, time.Time{})
		if err != nil {
			return err
		}
		po, err := svc.CreateOrder(c.UserContext(), auth.ActorFromCtx(c), CreateOrderInput{
			SupplierID: body.SupplierID,
			OrderDate:  date,
			Notes:      body.Notes,
			Items:      body.Items,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(po)
	}
}

// GET /api/purchase-orders?status=&supplier_id=
func ListOrdersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.ListOrders(c.UserContext(), OrderFilter{
			Status:     models.PurchaseOrderStatus(c.Query("status")),
			SupplierID: httpx.QueryUint(c, "supplier_id"),
		})
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}

// GET /api/purchase-orders/:id
func GetOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		po, err := svc.GetOrder(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(po)
	}
}

// POST /api/purchase-orders/:id/items
func AddOrderItemHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body OrderItemInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		po, err := svc.AddItem(c.UserContext(), auth.ActorFromCtx(c), id, body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(po)
	}
}

// PUT /api/purchase-orders/:id/items/:itemId
func UpdateOrderItemHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		itemID, err := httpx.ParamID(c, "itemId")
		if err != nil {
			return err
		}
		var body OrderItemInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		po, err := svc.UpdateItem(c.UserContext(), auth.ActorFromCtx(c), id, itemID, body)
		if err != nil {
			return err
		}
		return c.JSON(po)
	}
}

// DELETE /api/purchase-orders/:id/items/:itemId
func RemoveOrderItemHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		itemID, err := httpx.ParamID(c, "itemId")
		if err != nil {
			return err
		}
		po, err := svc.RemoveItem(c.UserContext(), auth.ActorFromCtx(c), id, itemID)
		if err != nil {
			return err
		}
		return c.JSON(po)
	}
}

type orderOp func(ctx context.Context, actor audit.Actor, id uint) (*models.PurchaseOrder, error)

func orderAction(op orderOp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		po, err := op(c.UserContext(), auth.ActorFromCtx(c), id)
		if err != nil {
			return err
		}
		return c.JSON(po)
	}
}

// POST /api/purchase-orders/:id/submit
func SubmitOrderHandler(svc *Service) fiber.Handler { return orderAction(svc.Submit) }

// POST /api/purchase-orders/:id/approve
func ApproveOrderHandler(svc *Service) fiber.Handler { return orderAction(svc.Approve) }

// POST /api/purchase-orders/:id/cancel
func CancelOrderHandler(svc *Service) fiber.Handler { return orderAction(svc.Cancel) }

// POST /api/purchase-orders/:id/pay
func PayOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body PayOrderRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		date, err := httpx.ParseDate(body.Date, time.Time{})
		if err != nil {
			return err
		}
		po, err := svc.Pay(c.UserContext(), auth.ActorFromCtx(c), id, PayInput{
			Method:    body.Method,
			AccountID: body.AccountID,
			Date:      date,
		})
		if err != nil {
			return err
		}
		return c.JSON(po)
	}
}
