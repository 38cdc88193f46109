package port

import "context"

// MailMessage is a single outbound email
type MailMessage struct {
	To      []string
	Subject string
	Body    string
}

// Mailer delivers notification emails. Implementations must be safe for
// concurrent use; callers treat failures as best effort.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}
