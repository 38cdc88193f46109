package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/traveldesk/traveldesk/internal/application/port"
	"github.com/traveldesk/traveldesk/internal/domain/entity"
	"github.com/traveldesk/traveldesk/internal/infrastructure/persistence/sqlite"
)

// NotificationRepository implements port.NotificationRepository
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) port.NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create records a pending notification
func (r *NotificationRepository) Create(ctx context.Context, rec *entity.NotificationRecord) error {
	query := `
		INSERT INTO notifications (request_id, kind, recipients, subject, status)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		rec.RequestID,
		rec.Kind,
		rec.Recipients,
		rec.Subject,
		rec.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create notification", zap.String("request_id", rec.RequestID), zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	rec.ID = id
	return nil
}

// MarkSent marks a notification as delivered
func (r *NotificationRepository) MarkSent(ctx context.Context, id int64) error {
	query := `UPDATE notifications SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, entity.NotificationStatusSent, id)
	if err != nil {
		r.logger.Error("Failed to mark notification sent", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}

	return nil
}

// UpdateStatus records a delivery outcome with an optional error message
func (r *NotificationRepository) UpdateStatus(ctx context.Context, id int64, status, errorMsg string) error {
	query := `UPDATE notifications SET status = ?, error_msg = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, status, errorMsg, id)
	if err != nil {
		r.logger.Error("Failed to update notification status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update notification status: %w", err)
	}

	return nil
}

func (r *NotificationRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

var _ port.NotificationRepository = (*NotificationRepository)(nil)
