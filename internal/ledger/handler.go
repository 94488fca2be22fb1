package ledger

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"seafood-backend/internal/auth"
	"seafood-backend/internal/httpx"
	"seafood-backend/internal/models"
)

type PostRequest struct {
	Type        models.TransactionType   `json:"transaction_type"`
	Source      models.TransactionSource `json:"source"`
	Amount      decimal.Decimal          `json:"amount"`
	Date        string                   `json:"date"` // YYYY-MM-DD, now when empty
	Description string                   `json:"description"`
	Reference   string                   `json:"reference"`
}

// postHandler serves manual postings. They may take a balance below zero;
// only procurement payments require funds.
func postHandler(e *Engine, kind AccountKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body PostRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		date, err := httpx.ParseDate(body.Date, time.Time{})
		if err != nil {
			return err
		}

		p, err := e.Post(c.UserContext(), auth.ActorFromCtx(c), PostInput{
			Kind:        kind,
			AccountID:   id,
			Type:        body.Type,
			Source:      body.Source,
			Amount:      body.Amount,
			Date:        date,
			Description: body.Description,
			Reference:   body.Reference,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// POST /api/cashboxes
func CreateCashboxHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CashboxInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		cb, err := e.CreateCashbox(c.UserContext(), auth.ActorFromCtx(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(cb)
	}
}

// GET /api/cashboxes
func ListCashboxesHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := e.ListCashboxes(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}

// GET /api/cashboxes/:id
func GetCashboxHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		cb, err := e.GetCashbox(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(cb)
	}
}

// POST /api/cashboxes/:id/transactions
func PostCashboxTransactionHandler(e *Engine) fiber.Handler {
	return postHandler(e, AccountCashbox)
}

// GET /api/cashboxes/:id/transactions
func ListCashboxTransactionsHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		list, err := e.CashboxTransactions(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}

// POST /api/bank-accounts
func CreateBankAccountHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BankAccountInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		ba, err := e.CreateBankAccount(c.UserContext(), auth.ActorFromCtx(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ba)
	}
}

// GET /api/bank-accounts
func ListBankAccountsHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := e.ListBankAccounts(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}

// GET /api/bank-accounts/:id
func GetBankAccountHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		ba, err := e.GetBankAccount(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(ba)
	}
}

// POST /api/bank-accounts/:id/transactions
func PostBankTransactionHandler(e *Engine) fiber.Handler {
	return postHandler(e, AccountBank)
}

// GET /api/bank-accounts/:id/transactions
func ListBankTransactionsHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		list, err := e.BankTransactions(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}
