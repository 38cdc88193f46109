package port

import (
	"context"
	"time"

	"github.com/traveldesk/traveldesk/internal/domain/entity"
)

// RequestRepository defines persistence operations for Request
type RequestRepository interface {
	Create(ctx context.Context, req *entity.Request) error
	GetByID(ctx context.Context, id string) (*entity.Request, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	Update(ctx context.Context, req *entity.Request) error
	SetApprovedAt(ctx context.Context, id string, t time.Time) error
	List(ctx context.Context, domain entity.Domain, limit, offset int) ([]*entity.Request, error)
	ListByStatuses(ctx context.Context, domain entity.Domain, statuses []string, limit, offset int) ([]*entity.Request, error)
	ListChildren(ctx context.Context, parentID string) ([]*entity.Request, error)
	CountForYear(ctx context.Context, domain entity.Domain, year int) (int64, error)
}

// StepRepository defines persistence operations for ApprovalStep
type StepRepository interface {
	Create(ctx context.Context, step *entity.ApprovalStep) error
	GetByRequestID(ctx context.Context, requestID string) ([]*entity.ApprovalStep, error)
	DeleteByRequestID(ctx context.Context, requestID string) error
}

// NotificationRepository defines persistence operations for NotificationRecord
type NotificationRepository interface {
	Create(ctx context.Context, rec *entity.NotificationRecord) error
	MarkSent(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, status, errorMsg string) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
