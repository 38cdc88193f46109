package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/traveldesk/traveldesk/internal/application/port"
	appwf "github.com/traveldesk/traveldesk/internal/application/workflow"
	"github.com/traveldesk/traveldesk/internal/domain/entity"
)

// ReconcileResult distinguishes the auxiliary auto-generation outcome from
// the primary request write, so callers and tests can assert on both.
type ReconcileResult struct {
	TransportRequests     []*entity.Request
	AccommodationRequests []*entity.Request
	Created               int
	Updated               int
}

// AutoGenService derives transport and accommodation child requests from a
// parent TSR's detail payload. Reconciliation is an idempotent upsert:
// existing children keyed by the same leg/stay are updated in place, new
// legs/stays create new children, and no-longer-implied children are left
// alone so independently progressed workflow state is never destroyed.
type AutoGenService interface {
	ReconcileChildRequests(ctx context.Context, parent *entity.Request) (*ReconcileResult, error)
}

type autoGenServiceImpl struct {
	requestRepo port.RequestRepository
	stepRepo    port.StepRepository
	txManager   port.TransactionManager
	logger      Logger
}

// NewAutoGenService creates a new AutoGenService
func NewAutoGenService(
	requestRepo port.RequestRepository,
	stepRepo port.StepRepository,
	txManager port.TransactionManager,
	logger Logger,
) AutoGenService {
	return &autoGenServiceImpl{
		requestRepo: requestRepo,
		stepRepo:    stepRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// ReconcileChildRequests upserts the child requests implied by the parent's
// itinerary and accommodation payload
func (s *autoGenServiceImpl) ReconcileChildRequests(ctx context.Context, parent *entity.Request) (*ReconcileResult, error) {
	if parent.Domain != entity.DomainTSR {
		return nil, fmt.Errorf("parent %s is not a travel request", parent.ID)
	}
	if parent.Details == "" {
		return &ReconcileResult{}, nil
	}

	details, err := entity.ParseTSRDetails(parent.Details)
	if err != nil {
		return nil, fmt.Errorf("parse detail payload for %s: %w", parent.ID, err)
	}

	existing, err := s.requestRepo.ListChildren(ctx, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("list children of %s: %w", parent.ID, err)
	}
	byKey := make(map[string]*entity.Request, len(existing))
	for _, child := range existing {
		byKey[child.ChildKey] = child
	}
	// IDs continue from the highest suffix ever issued per domain, so a
	// replaced leg can never collide with a preserved child's ID.
	lastSeq := lastChildSeq(existing)

	result := &ReconcileResult{}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, seg := range details.Itinerary {
			key := fmt.Sprintf("transport:%s:%s:%s", seg.From, seg.To, seg.DepartureDate)
			payload, err := entity.MarshalDetails(seg)
			if err != nil {
				return err
			}

			seq := 0
			if byKey[key] == nil {
				lastSeq[entity.DomainTransport]++
				seq = lastSeq[entity.DomainTransport]
			}
			child, err := s.upsertChild(txCtx, parent, byKey[key], entity.DomainTransport, key, seq,
				fmt.Sprintf("Transport %s to %s for %s", seg.From, seg.To, parent.ID), payload, result)
			if err != nil {
				return err
			}
			result.TransportRequests = append(result.TransportRequests, child)
		}

		for _, block := range details.Accommodation {
			key := fmt.Sprintf("accommodation:%s:%s:%s", block.Location, block.CheckInDate, block.CheckOutDate)
			payload, err := entity.MarshalDetails(block)
			if err != nil {
				return err
			}

			seq := 0
			if byKey[key] == nil {
				lastSeq[entity.DomainAccommodation]++
				seq = lastSeq[entity.DomainAccommodation]
			}
			child, err := s.upsertChild(txCtx, parent, byKey[key], entity.DomainAccommodation, key, seq,
				fmt.Sprintf("Accommodation in %s for %s", block.Location, parent.ID), payload, result)
			if err != nil {
				return err
			}
			result.AccommodationRequests = append(result.AccommodationRequests, child)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// upsertChild updates an existing child's payload in place, or creates a new
// child in its domain's initial pending status. A child is a fully
// independent request thereafter; its status is never touched here.
func (s *autoGenServiceImpl) upsertChild(
	ctx context.Context,
	parent *entity.Request,
	existing *entity.Request,
	domain entity.Domain,
	key string,
	seq int,
	purpose string,
	payload string,
	result *ReconcileResult,
) (*entity.Request, error) {
	if existing != nil {
		existing.Purpose = purpose
		existing.Details = payload
		if err := s.requestRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("update child %s: %w", existing.ID, err)
		}
		result.Updated++
		return existing, nil
	}

	child := &entity.Request{
		ID:            fmt.Sprintf("%s-%s-%02d", domain, parent.ID, seq),
		Domain:        domain,
		Status:        appwf.InitialState(domain).String(),
		RequestorName: parent.RequestorName,
		StaffID:       parent.StaffID,
		Department:    parent.Department,
		Email:         parent.Email,
		Purpose:       purpose,
		Details:       payload,
		ParentID:      parent.ID,
		ChildKey:      key,
		SubmittedAt:   parent.SubmittedAt,
	}
	if err := s.requestRepo.Create(ctx, child); err != nil {
		return nil, fmt.Errorf("create child %s: %w", child.ID, err)
	}

	step := &entity.ApprovalStep{
		RequestID: child.ID,
		Role:      entity.RoleRequestor,
		Name:      parent.RequestorName,
		Status:    entity.StepStatusSubmitted,
		Date:      parent.SubmittedAt,
	}
	if err := s.stepRepo.Create(ctx, step); err != nil {
		return nil, fmt.Errorf("create child step for %s: %w", child.ID, err)
	}

	result.Created++
	return child, nil
}

// lastChildSeq maps each child domain to the highest ID suffix already
// issued among the parent's children
func lastChildSeq(children []*entity.Request) map[entity.Domain]int {
	last := make(map[entity.Domain]int)
	for _, child := range children {
		idx := strings.LastIndex(child.ID, "-")
		if idx < 0 {
			continue
		}
		n, err := strconv.Atoi(child.ID[idx+1:])
		if err != nil {
			continue
		}
		if n > last[child.Domain] {
			last[child.Domain] = n
		}
	}
	return last
}
