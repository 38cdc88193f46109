package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/traveldesk/traveldesk/internal/application/dispatcher"
	"github.com/traveldesk/traveldesk/internal/application/port"
	"github.com/traveldesk/traveldesk/internal/domain/entity"
	"github.com/traveldesk/traveldesk/internal/domain/event"
)

// NotificationService builds and sends approval/rejection emails. It runs
// on the dispatcher's async path: every failure is logged and recorded, and
// none ever reaches the caller of the transition.
type NotificationService interface {
	NotifyApproval(ctx context.Context, evt *event.Event) error
	NotifyRejection(ctx context.Context, evt *event.Event) error
	NotifyCancellation(ctx context.Context, evt *event.Event) error

	// RegisterHandlers subscribes the notifier to the workflow events
	RegisterHandlers(d dispatcher.Dispatcher)
}

type notificationServiceImpl struct {
	requestRepo      port.RequestRepository
	notificationRepo port.NotificationRepository
	mailer           port.Mailer
	approverInbox    string
	logger           Logger
}

// NewNotificationService creates a new NotificationService. approverInbox is
// the shared mailbox for approver/admin-team copies.
func NewNotificationService(
	requestRepo port.RequestRepository,
	notificationRepo port.NotificationRepository,
	mailer port.Mailer,
	approverInbox string,
	logger Logger,
) NotificationService {
	return &notificationServiceImpl{
		requestRepo:      requestRepo,
		notificationRepo: notificationRepo,
		mailer:           mailer,
		approverInbox:    approverInbox,
		logger:           logger,
	}
}

// RegisterHandlers wires the notifier into the dispatcher
func (s *notificationServiceImpl) RegisterHandlers(d dispatcher.Dispatcher) {
	d.Subscribe(event.TypeRequestApproved, "notify-approval", s.NotifyApproval)
	d.Subscribe(event.TypeRequestRejected, "notify-rejection", s.NotifyRejection)
	d.Subscribe(event.TypeRequestCancelled, "notify-cancellation", s.NotifyCancellation)
}

// NotifyApproval emails the requestor and the next approver after an
// approval has committed
func (s *notificationServiceImpl) NotifyApproval(ctx context.Context, evt *event.Event) error {
	request, err := s.requestRepo.GetByID(ctx, evt.RequestID)
	if err != nil {
		return fmt.Errorf("get request %s: %w", evt.RequestID, err)
	}
	if request == nil {
		return fmt.Errorf("request %s not found for approval notification", evt.RequestID)
	}

	nextApprover := evt.GetPayloadString("next_approver")
	subject := fmt.Sprintf("[%s] %s approved - now %s", request.Domain, request.ID, evt.GetPayloadString("new_status"))

	var body strings.Builder
	fmt.Fprintf(&body, "Request %s (%s) has been approved by %s (%s).\n\n",
		request.ID, request.Purpose, evt.GetPayloadString("approver_name"), evt.GetPayloadString("approver_role"))
	fmt.Fprintf(&body, "Requestor: %s (%s), %s\n", request.RequestorName, request.StaffID, request.Department)
	fmt.Fprintf(&body, "Status: %s -> %s\n", evt.GetPayloadString("previous_status"), evt.GetPayloadString("new_status"))
	fmt.Fprintf(&body, "Next approver: %s\n", nextApprover)
	if request.TotalAmount > 0 {
		fmt.Fprintf(&body, "Amount: %.2f\n", request.TotalAmount)
	}
	fmt.Fprintf(&body, "Submitted: %s\n", request.SubmittedAt.Format("2 Jan 2006"))
	if comments := evt.GetPayloadString("comments"); comments != "" {
		fmt.Fprintf(&body, "\nComments: %s\n", comments)
	}

	return s.deliver(ctx, request, entity.NotificationKindApproval, subject, body.String())
}

// NotifyRejection emails the requestor with the mandatory rejection reason
func (s *notificationServiceImpl) NotifyRejection(ctx context.Context, evt *event.Event) error {
	request, err := s.requestRepo.GetByID(ctx, evt.RequestID)
	if err != nil {
		return fmt.Errorf("get request %s: %w", evt.RequestID, err)
	}
	if request == nil {
		return fmt.Errorf("request %s not found for rejection notification", evt.RequestID)
	}

	subject := fmt.Sprintf("[%s] %s rejected", request.Domain, request.ID)

	var body strings.Builder
	fmt.Fprintf(&body, "Request %s (%s) has been rejected by %s (%s).\n\n",
		request.ID, request.Purpose, evt.GetPayloadString("approver_name"), evt.GetPayloadString("approver_role"))
	fmt.Fprintf(&body, "Reason: %s\n", evt.GetPayloadString("comments"))
	fmt.Fprintf(&body, "Submitted: %s\n", request.SubmittedAt.Format("2 Jan 2006"))
	fmt.Fprintf(&body, "\nYou may edit and resubmit the request.\n")

	return s.deliver(ctx, request, entity.NotificationKindRejection, subject, body.String())
}

// NotifyCancellation emails the requestor confirming a cancellation
func (s *notificationServiceImpl) NotifyCancellation(ctx context.Context, evt *event.Event) error {
	request, err := s.requestRepo.GetByID(ctx, evt.RequestID)
	if err != nil {
		return fmt.Errorf("get request %s: %w", evt.RequestID, err)
	}
	if request == nil {
		return fmt.Errorf("request %s not found for cancellation notification", evt.RequestID)
	}

	subject := fmt.Sprintf("[%s] %s cancelled", request.Domain, request.ID)
	body := fmt.Sprintf("Request %s (%s) has been cancelled.\n", request.ID, request.Purpose)

	return s.deliver(ctx, request, entity.NotificationKindCancellation, subject, body)
}

// deliver records the notification and sends it, marking the record SENT or
// FAILED accordingly
func (s *notificationServiceImpl) deliver(ctx context.Context, request *entity.Request, kind, subject, body string) error {
	recipients := s.recipients(request, kind)

	rec := &entity.NotificationRecord{
		RequestID:  request.ID,
		Kind:       kind,
		Recipients: strings.Join(recipients, ","),
		Subject:    subject,
		Status:     entity.NotificationStatusPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := s.notificationRepo.Create(ctx, rec); err != nil {
		s.logger.Error("Failed to record notification", "request_id", request.ID, "error", err)
		return err
	}

	err := s.mailer.Send(ctx, port.MailMessage{
		To:      recipients,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		s.logger.Error("Failed to send notification",
			"request_id", request.ID,
			"kind", kind,
			"error", err,
		)
		if updErr := s.notificationRepo.UpdateStatus(ctx, rec.ID, entity.NotificationStatusFailed, err.Error()); updErr != nil {
			s.logger.Error("Failed to mark notification failed", "notification_id", rec.ID, "error", updErr)
		}
		return err
	}

	if err := s.notificationRepo.MarkSent(ctx, rec.ID); err != nil {
		s.logger.Error("Failed to mark notification sent", "notification_id", rec.ID, "error", err)
		return err
	}

	s.logger.Info("Notification sent",
		"request_id", request.ID,
		"kind", kind,
		"recipients", rec.Recipients,
	)
	return nil
}

func (s *notificationServiceImpl) recipients(request *entity.Request, kind string) []string {
	recipients := make([]string, 0, 2)
	if request.Email != "" {
		recipients = append(recipients, request.Email)
	}
	// Approvals also go to the shared approver/admin-team inbox so the next
	// stage sees the request without polling.
	if kind == entity.NotificationKindApproval && s.approverInbox != "" {
		recipients = append(recipients, s.approverInbox)
	}
	return recipients
}
