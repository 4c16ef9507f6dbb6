package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/gardenstate-security/website-api/internal/leads"
)

const EventTypeLeadSubmittedV1 = "lead.submitted.v1"

// LeadSubmittedV1 announces an accepted contact or quote submission.
// It carries contact details only; the full payload lives in the archive.
type LeadSubmittedV1 struct {
	EventID     string    `json:"event_id"`
	Kind        string    `json:"kind"`
	Reference   string    `json:"reference"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Urgency     string    `json:"urgency,omitempty"`
	Timeline    string    `json:"timeline,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (LeadSubmittedV1) EventType() string { return EventTypeLeadSubmittedV1 }

func NewContactSubmitted(sub leads.ContactSubmission, reference string, at time.Time) LeadSubmittedV1 {
	return LeadSubmittedV1{
		EventID:     uuid.NewString(),
		Kind:        string(leads.KindContact),
		Reference:   reference,
		Name:        sub.Name,
		Email:       sub.Email,
		Phone:       sub.Phone,
		Urgency:     string(sub.Urgency),
		SubmittedAt: at.UTC(),
	}
}

func NewQuoteSubmitted(sub leads.QuoteSubmission, quoteNumber string, at time.Time) LeadSubmittedV1 {
	return LeadSubmittedV1{
		EventID:     uuid.NewString(),
		Kind:        string(leads.KindQuote),
		Reference:   quoteNumber,
		Name:        sub.FullName(),
		Email:       sub.Email,
		Phone:       sub.Phone,
		Timeline:    string(sub.Timeline),
		SubmittedAt: at.UTC(),
	}
}
