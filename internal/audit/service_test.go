package audit

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seafood-backend/internal/models"
	"seafood-backend/internal/testutil"
)

func TestRecordWritesEntry(t *testing.T) {
	db := testutil.NewDB(t)
	l := NewLogger(db, nil)
	uid := uint(7)

	l.Record(context.Background(), LogOptions{
		Actor:      Actor{UserID: &uid, UserName: "Ops", IPAddress: "10.0.0.1", UserAgent: "curl", RequestID: "req-1"},
		TargetType: "reception",
		TargetID:   3,
		Action:     models.AuditActionStatusChange,
		Details:    "draft -> accepted",
		Before:     map[string]string{"status": "draft"},
		After:      map[string]string{"status": "accepted"},
	})

	logs, err := List(context.Background(), db, Filter{TargetType: "reception", TargetID: 3})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Ops", logs[0].UserName)
	assert.Equal(t, uid, *logs[0].UserID)
	assert.Equal(t, "req-1", logs[0].RequestID)
	assert.JSONEq(t, `{"status":"accepted"}`, string(logs[0].AfterData))
}

func TestRecordOnNilLoggerIsNoop(t *testing.T) {
	var l *Logger
	l.Record(context.Background(), LogOptions{TargetType: "reception"})
}

func TestRecordSwallowsWriteFailure(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, db.Migrator().DropTable(&models.AuditLog{}))

	NewLogger(db, nil).Record(context.Background(), LogOptions{TargetType: "reception", Action: models.AuditActionCreate})
}

func TestListAuditLogsHandlerFilters(t *testing.T) {
	db := testutil.NewDB(t)
	l := NewLogger(db, nil)
	ctx := context.Background()
	l.Record(ctx, LogOptions{TargetType: "reception", TargetID: 1, Action: models.AuditActionCreate})
	l.Record(ctx, LogOptions{TargetType: "purchase_order", TargetID: 1, Action: models.AuditActionCreate})
	l.Record(ctx, LogOptions{TargetType: "reception", TargetID: 1, Action: models.AuditActionStatusChange})

	app := fiber.New()
	app.Get("/audit-logs", ListAuditLogsHandler(db))

	resp, err := app.Test(httptest.NewRequest("GET", "/audit-logs?target_type=reception", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body []AuditLogResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 2)
	assert.Equal(t, models.AuditActionStatusChange, body[0].Action)
}
