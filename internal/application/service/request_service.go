package service

import (
	"context"
	"fmt"
	"time"

	"github.com/traveldesk/traveldesk/internal/apperrors"
	"github.com/traveldesk/traveldesk/internal/application/dispatcher"
	"github.com/traveldesk/traveldesk/internal/application/port"
	appwf "github.com/traveldesk/traveldesk/internal/application/workflow"
	"github.com/traveldesk/traveldesk/internal/domain/entity"
	"github.com/traveldesk/traveldesk/internal/domain/event"
	domainwf "github.com/traveldesk/traveldesk/internal/domain/workflow"
	"github.com/traveldesk/traveldesk/pkg/utils"
)

// CreateRequest carries the fields for a new request submission
type CreateRequest struct {
	RequestorName string  `json:"requestorName" binding:"required"`
	StaffID       string  `json:"staffId" binding:"required"`
	Department    string  `json:"department" binding:"required"`
	Email         string  `json:"email"`
	Purpose       string  `json:"purpose" binding:"required"`
	TotalAmount   float64 `json:"totalAmount"`
	Details       string  `json:"details"`
}

// RequestService manages request lifecycle outside the action workflow:
// creation, edit/resubmission, retrieval.
type RequestService interface {
	Create(ctx context.Context, domain entity.Domain, req CreateRequest) (*entity.Request, error)
	Edit(ctx context.Context, id string, req CreateRequest) (*entity.Request, error)
	Get(ctx context.Context, id string) (*entity.Request, error)
	GetSteps(ctx context.Context, id string) ([]*entity.ApprovalStep, error)
	List(ctx context.Context, domain entity.Domain, limit, offset int) ([]*entity.Request, error)
	ListForRole(ctx context.Context, domain entity.Domain, role string, limit, offset int) ([]*entity.Request, error)
}

type requestServiceImpl struct {
	requestRepo port.RequestRepository
	stepRepo    port.StepRepository
	txManager   port.TransactionManager
	autoGen     AutoGenService
	dispatcher  dispatcher.Dispatcher
	logger      Logger
	now         func() time.Time
}

// NewRequestService creates a new RequestService
func NewRequestService(
	requestRepo port.RequestRepository,
	stepRepo port.StepRepository,
	txManager port.TransactionManager,
	autoGen AutoGenService,
	d dispatcher.Dispatcher,
	logger Logger,
) RequestService {
	return &requestServiceImpl{
		requestRepo: requestRepo,
		stepRepo:    stepRepo,
		txManager:   txManager,
		autoGen:     autoGen,
		dispatcher:  d,
		logger:      logger,
		now:         time.Now,
	}
}

// Create submits a new request in the domain's initial pending status and
// logs the Submitted audit step in the same transaction. For TSRs, child
// transport/accommodation requests are reconciled afterwards, best effort.
func (s *requestServiceImpl) Create(ctx context.Context, domain entity.Domain, req CreateRequest) (*entity.Request, error) {
	if !domain.IsValid() {
		return nil, apperrors.NewValidation("domain", fmt.Sprintf("unknown request domain %q", domain))
	}
	if err := validateSubmission(req); err != nil {
		return nil, err
	}
	req.Purpose = utils.SanitizeString(req.Purpose)

	now := s.now()
	request := &entity.Request{
		Domain:        domain,
		Status:        appwf.InitialState(domain).String(),
		RequestorName: req.RequestorName,
		StaffID:       req.StaffID,
		Department:    req.Department,
		Email:         req.Email,
		Purpose:       req.Purpose,
		TotalAmount:   req.TotalAmount,
		Details:       req.Details,
		SubmittedAt:   now,
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		id, err := s.nextID(txCtx, domain, now)
		if err != nil {
			return err
		}
		request.ID = id

		if err := s.requestRepo.Create(txCtx, request); err != nil {
			return apperrors.NewPersistence(err)
		}

		step := &entity.ApprovalStep{
			RequestID: request.ID,
			Role:      entity.RoleRequestor,
			Name:      req.RequestorName,
			Status:    entity.StepStatusSubmitted,
			Date:      now,
		}
		if err := s.stepRepo.Create(txCtx, step); err != nil {
			return apperrors.NewPersistence(err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create request", "domain", domain, "error", err)
		return nil, err
	}

	s.logger.Info("Request created", "request_id", request.ID, "status", request.Status)

	s.reconcileChildren(ctx, request)
	s.emit(ctx, event.TypeRequestSubmitted, request)

	return request, nil
}

// Edit resubmits a request: prior approval steps are deleted, one Edited
// marker step is logged, and the request restarts from its initial pending
// status. Only pending/draft and rejected requests can be edited.
func (s *requestServiceImpl) Edit(ctx context.Context, id string, req CreateRequest) (*entity.Request, error) {
	if err := validateSubmission(req); err != nil {
		return nil, err
	}
	req.Purpose = utils.SanitizeString(req.Purpose)

	var request *entity.Request

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.requestRepo.GetByID(txCtx, id)
		if err != nil {
			return apperrors.NewPersistence(err)
		}
		if existing == nil {
			return apperrors.NewNotFound(id)
		}

		current := domainwf.State(existing.Status)
		if !current.IsCancellable() && current != domainwf.StateRejected {
			return apperrors.NewInvalidTransition(id, existing.Status, "edit")
		}

		existing.RequestorName = req.RequestorName
		existing.StaffID = req.StaffID
		existing.Department = req.Department
		if req.Email != "" {
			existing.Email = req.Email
		}
		existing.Purpose = req.Purpose
		existing.TotalAmount = req.TotalAmount
		existing.Details = req.Details
		existing.Status = appwf.InitialState(existing.Domain).String()

		if err := s.requestRepo.Update(txCtx, existing); err != nil {
			return apperrors.NewPersistence(err)
		}

		if err := s.stepRepo.DeleteByRequestID(txCtx, id); err != nil {
			return apperrors.NewPersistence(err)
		}

		step := &entity.ApprovalStep{
			RequestID: id,
			Role:      entity.RoleRequestor,
			Name:      req.RequestorName,
			Status:    entity.StepStatusEdited,
			Date:      s.now(),
		}
		if err := s.stepRepo.Create(txCtx, step); err != nil {
			return apperrors.NewPersistence(err)
		}

		request = existing
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to edit request", "request_id", id, "error", err)
		return nil, err
	}

	s.logger.Info("Request edited and resubmitted", "request_id", id, "status", request.Status)

	s.reconcileChildren(ctx, request)
	s.emit(ctx, event.TypeRequestEdited, request)

	return request, nil
}

// Get retrieves a request by id
func (s *requestServiceImpl) Get(ctx context.Context, id string) (*entity.Request, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewPersistence(err)
	}
	if request == nil {
		return nil, apperrors.NewNotFound(id)
	}
	return request, nil
}

// GetSteps returns the ordered audit trail for a request
func (s *requestServiceImpl) GetSteps(ctx context.Context, id string) ([]*entity.ApprovalStep, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewPersistence(err)
	}
	if request == nil {
		return nil, apperrors.NewNotFound(id)
	}
	steps, err := s.stepRepo.GetByRequestID(ctx, id)
	if err != nil {
		return nil, apperrors.NewPersistence(err)
	}
	return steps, nil
}

// List retrieves a page of requests in a domain
func (s *requestServiceImpl) List(ctx context.Context, domain entity.Domain, limit, offset int) ([]*entity.Request, error) {
	requests, err := s.requestRepo.List(ctx, domain, limit, offset)
	if err != nil {
		return nil, apperrors.NewPersistence(err)
	}
	return requests, nil
}

// ListForRole retrieves a page of the approval queue a role acts on. The
// status filter is applied in the query so pagination covers the filtered
// set. Roles without a queue see nothing.
func (s *requestServiceImpl) ListForRole(ctx context.Context, domain entity.Domain, role string, limit, offset int) ([]*entity.Request, error) {
	filters := GetApprovalQueueFilters(role)
	if filters == nil {
		return nil, nil
	}
	statuses := make([]string, len(filters))
	for i, state := range filters {
		statuses[i] = state.String()
	}
	requests, err := s.requestRepo.ListByStatuses(ctx, domain, statuses, limit, offset)
	if err != nil {
		return nil, apperrors.NewPersistence(err)
	}
	return requests, nil
}

func validateSubmission(req CreateRequest) error {
	if err := utils.ValidateStaffID(req.StaffID); err != nil {
		return apperrors.NewValidation("staffId", err.Error())
	}
	if req.Email != "" {
		if err := utils.ValidateEmail(req.Email); err != nil {
			return apperrors.NewValidation("email", err.Error())
		}
	}
	if err := utils.ValidateAmount(req.TotalAmount); err != nil {
		return apperrors.NewValidation("totalAmount", err.Error())
	}
	return nil
}

// nextID generates a domain-prefixed sequential id like TSR-2026-0042
func (s *requestServiceImpl) nextID(ctx context.Context, domain entity.Domain, now time.Time) (string, error) {
	count, err := s.requestRepo.CountForYear(ctx, domain, now.Year())
	if err != nil {
		return "", apperrors.NewPersistence(err)
	}
	return fmt.Sprintf("%s-%d-%04d", domain, now.Year(), count+1), nil
}

// reconcileChildren runs auto-generation for TSRs. Failures are logged and
// swallowed; they never roll back the parent write.
func (s *requestServiceImpl) reconcileChildren(ctx context.Context, request *entity.Request) {
	if request.Domain != entity.DomainTSR || s.autoGen == nil {
		return
	}
	result, err := s.autoGen.ReconcileChildRequests(ctx, request)
	if err != nil {
		s.logger.Error("Child request reconciliation failed", "request_id", request.ID, "error", err)
		return
	}
	s.logger.Info("Child requests reconciled",
		"request_id", request.ID,
		"transport", len(result.TransportRequests),
		"accommodation", len(result.AccommodationRequests),
		"created", result.Created,
		"updated", result.Updated,
	)
}

func (s *requestServiceImpl) emit(ctx context.Context, t event.Type, request *entity.Request) {
	if s.dispatcher == nil {
		return
	}
	// Detached: the caller's request context is cancelled as soon as the
	// response is written, before the handlers run
	s.dispatcher.DispatchAsync(context.WithoutCancel(ctx), event.NewEvent(t, request.ID, request.Domain, map[string]interface{}{
		"new_status": request.Status,
	}))
}
