package audit

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"seafood-backend/internal/httpx"
	"seafood-backend/internal/models"
)

type AuditLogResponse struct {
	ID         uint               `json:"id"`
	CreatedAt  string             `json:"created_at"`
	UserID     *uint              `json:"user_id"`
	UserName   string             `json:"user_name"`
	TargetType string             `json:"target_type"`
	TargetID   uint               `json:"target_id"`
	Action     models.AuditAction `json:"action"`
	Details    string             `json:"details"`
	IPAddress  string             `json:"ip_address"`
	UserAgent  string             `json:"user_agent"`
	RequestID  string             `json:"request_id"`
}

// GET /api/audit-logs?target_type=reception&target_id=1&user_id=2&action=status_change
func ListAuditLogsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logs, err := List(c.UserContext(), db, Filter{
			TargetType: c.Query("target_type"),
			TargetID:   httpx.QueryUint(c, "target_id"),
			UserID:     httpx.QueryUint(c, "user_id"),
			Action:     models.AuditAction(c.Query("action")),
			Limit:      c.QueryInt("limit", 200),
		})
		if err != nil {
			return err
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, AuditLogResponse{
				ID:         l.ID,
				CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
				UserID:     l.UserID,
				UserName:   l.UserName,
				TargetType: l.TargetType,
				TargetID:   l.TargetID,
				Action:     l.Action,
				Details:    l.Details,
				IPAddress:  l.IPAddress,
				UserAgent:  l.UserAgent,
				RequestID:  l.RequestID,
			})
		}
		return c.JSON(resp)
	}
}
