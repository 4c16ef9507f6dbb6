package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gardenstate-security/website-api/pkg/logging"
)

// DeliveryID identifies one dispatched notification across all recipients.
type DeliveryID string

// DeliveryError is returned when no recipient received the notification.
type DeliveryError struct {
	Provider string
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("notify: %s delivery failed: %v", e.Provider, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// ErrNoRecipients is returned when the mailer has nobody to notify.
var ErrNoRecipients = errors.New("notify: no recipients configured")

// Mailer hands formatted notifications to an EmailSender, one message per
// operator recipient.
type Mailer struct {
	sender     EmailSender
	provider   string
	recipients []string
	logger     *logging.Logger
}

// NewMailer builds a mailer. provider is a label used in logs and metrics.
func NewMailer(sender EmailSender, provider string, recipients []string, logger *logging.Logger) *Mailer {
	if logger == nil {
		logger = logging.Default()
	}
	var cleaned []string
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			cleaned = append(cleaned, r)
		}
	}
	return &Mailer{
		sender:     sender,
		provider:   provider,
		recipients: cleaned,
		logger:     logger,
	}
}

// Provider returns the configured provider label.
func (m *Mailer) Provider() string {
	return m.provider
}

// Send delivers n to every recipient. It succeeds when at least one
// recipient accepted the message; partial failures are logged.
func (m *Mailer) Send(ctx context.Context, n Notification) (DeliveryID, error) {
	if m.sender == nil {
		return "", &DeliveryError{Provider: m.provider, Err: errors.New("sender not configured")}
	}
	if len(m.recipients) == 0 {
		return "", &DeliveryError{Provider: m.provider, Err: ErrNoRecipients}
	}

	id := DeliveryID(uuid.NewString())
	var errs []error
	delivered := 0
	for _, recipient := range m.recipients {
		msg := EmailMessage{
			To:      recipient,
			ReplyTo: n.ReplyTo,
			Subject: n.Subject,
			Body:    n.Text,
			HTML:    n.HTML,
		}
		messageID, err := m.sender.Send(ctx, msg)
		if err != nil {
			m.logger.Error("notify: failed to send email", "error", err, "to", recipient, "delivery_id", id)
			errs = append(errs, err)
			continue
		}
		delivered++
		m.logger.Info("notify: notification email sent", "to", recipient, "delivery_id", id, "message_id", messageID)
	}

	if delivered == 0 {
		return "", &DeliveryError{Provider: m.provider, Err: errors.Join(errs...)}
	}
	if len(errs) > 0 {
		m.logger.Warn("notify: notification partially delivered", "delivery_id", id, "failed", len(errs), "delivered", delivered)
	}
	return id, nil
}
