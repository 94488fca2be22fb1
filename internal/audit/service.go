package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"seafood-backend/internal/models"
)

// Actor identifies who triggered an operation and from where.
type Actor struct {
	UserID    *uint
	UserName  string
	IPAddress string
	UserAgent string
	RequestID string
}

type LogOptions struct {
	Actor      Actor
	TargetType string
	TargetID   uint
	Action     models.AuditAction
	Details    string
	Before     any
	After      any
}

func toJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

func WriteLog(db *gorm.DB, opts LogOptions) error {
	entry := models.AuditLog{
		UserID:     opts.Actor.UserID,
		UserName:   opts.Actor.UserName,
		TargetType: opts.TargetType,
		TargetID:   opts.TargetID,
		Action:     opts.Action,
		Details:    opts.Details,
		IPAddress:  opts.Actor.IPAddress,
		UserAgent:  opts.Actor.UserAgent,
		RequestID:  opts.Actor.RequestID,
		BeforeData: toJSON(opts.Before),
		AfterData:  toJSON(opts.After),
	}

	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("audit log could not be written: %w", err)
	}
	return nil
}

// Logger records audit entries after the business change has committed.
// A failed write is logged and otherwise ignored. A nil Logger records
// nothing.
type Logger struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewLogger(db *gorm.DB, log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{db: db, log: log}
}

func (l *Logger) Record(ctx context.Context, opts LogOptions) {
	if l == nil {
		return
	}
	if err := WriteLog(l.db.WithContext(ctx), opts); err != nil {
		l.log.WarnContext(ctx, "audit log could not be written",
			"target_type", opts.TargetType,
			"target_id", opts.TargetID,
			"action", opts.Action,
			"error", err,
		)
	}
}

type Filter struct {
	TargetType string
	TargetID   uint
	UserID     uint
	Action     models.AuditAction
	Limit      int
}

// List returns entries newest first.
func List(ctx context.Context, db *gorm.DB, f Filter) ([]models.AuditLog, error) {
	q := db.WithContext(ctx).Model(&models.AuditLog{})
	if f.TargetType != "" {
		q = q.Where("target_type = ?", f.TargetType)
	}
	if f.TargetID != 0 {
		q = q.Where("target_id = ?", f.TargetID)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var logs []models.AuditLog
	if err := q.Order("created_at DESC").Order("id DESC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("audit logs could not be listed: %w", err)
	}
	return logs, nil
}
