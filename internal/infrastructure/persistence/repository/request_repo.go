package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/traveldesk/traveldesk/internal/application/port"
	"github.com/traveldesk/traveldesk/internal/domain/entity"
	"github.com/traveldesk/traveldesk/internal/infrastructure/persistence/sqlite"
)

// RequestRepository implements port.RequestRepository
type RequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *sql.DB, logger *zap.Logger) port.RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger,
	}
}

const requestColumns = `id, domain, status, requestor_name, staff_id, department,
	email, purpose, total_amount, details, parent_id, child_key,
	submitted_at, approved_at, created_at, updated_at`

// Create inserts a new request row
func (r *RequestRepository) Create(ctx context.Context, req *entity.Request) error {
	query := `
		INSERT INTO requests (
			id, domain, status, requestor_name, staff_id, department,
			email, purpose, total_amount, details, parent_id, child_key, submitted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		req.ID,
		req.Domain.String(),
		req.Status,
		req.RequestorName,
		req.StaffID,
		req.Department,
		req.Email,
		req.Purpose,
		req.TotalAmount,
		req.Details,
		req.ParentID,
		req.ChildKey,
		req.SubmittedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create request", zap.String("id", req.ID), zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}

	return nil
}

// GetByID retrieves a request by id; returns nil when not found
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = ?`

	req, err := scanRequest(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get request", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	return req, nil
}

// UpdateStatus updates the status of a request
func (r *RequestRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	query := `UPDATE requests SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update status", zap.String("id", id), zap.String("status", status), zap.Error(err))
		return fmt.Errorf("failed to update status: %w", err)
	}

	return nil
}

// Update rewrites the mutable fields of a request
func (r *RequestRepository) Update(ctx context.Context, req *entity.Request) error {
	query := `
		UPDATE requests SET
			status = ?, requestor_name = ?, staff_id = ?, department = ?,
			email = ?, purpose = ?, total_amount = ?, details = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		req.Status,
		req.RequestorName,
		req.StaffID,
		req.Department,
		req.Email,
		req.Purpose,
		req.TotalAmount,
		req.Details,
		req.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update request", zap.String("id", req.ID), zap.Error(err))
		return fmt.Errorf("failed to update request: %w", err)
	}

	return nil
}

// SetApprovedAt stamps the approval time on a request
func (r *RequestRepository) SetApprovedAt(ctx context.Context, id string, t time.Time) error {
	query := `UPDATE requests SET approved_at = ? WHERE id = ?`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, t, id)
	if err != nil {
		r.logger.Error("Failed to set approval time", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to set approval time: %w", err)
	}

	return nil
}

// List retrieves requests in a domain with pagination
func (r *RequestRepository) List(ctx context.Context, domain entity.Domain, limit, offset int) ([]*entity.Request, error) {
	query := `SELECT ` + requestColumns + `
		FROM requests
		WHERE domain = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, domain.String(), limit, offset)
	if err != nil {
		r.logger.Error("Failed to list requests", zap.String("domain", domain.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// ListByStatuses retrieves requests in a domain whose status is in the set
func (r *RequestRepository) ListByStatuses(ctx context.Context, domain entity.Domain, statuses []string, limit, offset int) ([]*entity.Request, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(statuses))
	placeholders = placeholders[:len(placeholders)-1]

	query := `SELECT ` + requestColumns + `
		FROM requests
		WHERE domain = ? AND status IN (` + placeholders + `)
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	args := make([]interface{}, 0, len(statuses)+3)
	args = append(args, domain.String())
	for _, s := range statuses {
		args = append(args, s)
	}
	args = append(args, limit, offset)

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list requests by status", zap.String("domain", domain.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list requests by status: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// ListChildren retrieves the auto-generated children of a parent TSR
func (r *RequestRepository) ListChildren(ctx context.Context, parentID string) ([]*entity.Request, error) {
	query := `SELECT ` + requestColumns + `
		FROM requests
		WHERE parent_id = ?
		ORDER BY id ASC`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, parentID)
	if err != nil {
		r.logger.Error("Failed to list children", zap.String("parent_id", parentID), zap.Error(err))
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// CountForYear counts a domain's requests submitted in a calendar year, for
// sequential id generation
func (r *RequestRepository) CountForYear(ctx context.Context, domain entity.Domain, year int) (int64, error) {
	query := `SELECT COUNT(*) FROM requests WHERE domain = ? AND id LIKE ?`

	var count int64
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, domain.String(), fmt.Sprintf("%s-%d-%%", domain, year)).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count requests", zap.String("domain", domain.String()), zap.Error(err))
		return 0, fmt.Errorf("failed to count requests: %w", err)
	}

	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*entity.Request, error) {
	var req entity.Request
	var domain string
	var parentID, childKey sql.NullString
	var approvedAt sql.NullTime

	err := row.Scan(
		&req.ID,
		&domain,
		&req.Status,
		&req.RequestorName,
		&req.StaffID,
		&req.Department,
		&req.Email,
		&req.Purpose,
		&req.TotalAmount,
		&req.Details,
		&parentID,
		&childKey,
		&req.SubmittedAt,
		&approvedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Domain = entity.Domain(domain)
	req.ParentID = parentID.String
	req.ChildKey = childKey.String
	if approvedAt.Valid {
		req.ApprovedAt = &approvedAt.Time
	}

	return &req, nil
}

func collectRequests(rows *sql.Rows) ([]*entity.Request, error) {
	var requests []*entity.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// getExecutor returns the in-flight transaction if present, else the pool
func (r *RequestRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// executor interface covers both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var _ port.RequestRepository = (*RequestRepository)(nil)
