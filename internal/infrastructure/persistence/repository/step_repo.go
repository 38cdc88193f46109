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

// StepRepository implements port.StepRepository
type StepRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStepRepository creates a new approval step repository
func NewStepRepository(db *sql.DB, logger *zap.Logger) port.StepRepository {
	return &StepRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends one audit row
func (r *StepRepository) Create(ctx context.Context, step *entity.ApprovalStep) error {
	query := `
		INSERT INTO approval_steps (request_id, role, name, status, comments, date)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		step.RequestID,
		step.Role,
		step.Name,
		step.Status,
		step.Comments,
		step.Date,
	)
	if err != nil {
		r.logger.Error("Failed to create approval step", zap.String("request_id", step.RequestID), zap.Error(err))
		return fmt.Errorf("failed to create approval step: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	step.ID = id
	return nil
}

// GetByRequestID retrieves the ordered audit trail for a request
func (r *StepRepository) GetByRequestID(ctx context.Context, requestID string) ([]*entity.ApprovalStep, error) {
	query := `
		SELECT id, request_id, role, name, status, comments, date
		FROM approval_steps
		WHERE request_id = ?
		ORDER BY date ASC, id ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, requestID)
	if err != nil {
		r.logger.Error("Failed to get approval steps", zap.String("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to get approval steps: %w", err)
	}
	defer rows.Close()

	var steps []*entity.ApprovalStep
	for rows.Next() {
		var step entity.ApprovalStep
		err := rows.Scan(
			&step.ID,
			&step.RequestID,
			&step.Role,
			&step.Name,
			&step.Status,
			&step.Comments,
			&step.Date,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval step: %w", err)
		}
		steps = append(steps, &step)
	}

	return steps, rows.Err()
}

// DeleteByRequestID clears the audit trail; only the edit/resubmission path
// calls this, immediately before logging the Edited marker
func (r *StepRepository) DeleteByRequestID(ctx context.Context, requestID string) error {
	query := `DELETE FROM approval_steps WHERE request_id = ?`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, requestID)
	if err != nil {
		r.logger.Error("Failed to delete approval steps", zap.String("request_id", requestID), zap.Error(err))
		return fmt.Errorf("failed to delete approval steps: %w", err)
	}

	return nil
}

func (r *StepRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

var _ port.StepRepository = (*StepRepository)(nil)
