package leads

import "strings"

// Urgency signals how quickly a contact submission needs a response.
type Urgency string

const (
	UrgencyNormal    Urgency = "normal"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyEmergency Urgency = "emergency"
)

// ContactMethod is the channel a visitor prefers to be reached on.
type ContactMethod string

const (
	ContactByEmail ContactMethod = "email"
	ContactByPhone ContactMethod = "phone"
)

type PropertyType string

const (
	PropertyResidential PropertyType = "residential"
	PropertyCommercial  PropertyType = "commercial"
	PropertyIndustrial  PropertyType = "industrial"
)

// State is limited to the service area.
type State string

const (
	StateNJ State = "NJ"
	StatePA State = "PA"
)

type Timeline string

const (
	TimelineImmediate Timeline = "immediate"
	TimelineOneToTwo  Timeline = "1-2weeks"
	TimelineOneMonth  Timeline = "1month"
	TimelinePlanning  Timeline = "planning"
)

type Budget string

const (
	BudgetUnder5k  Budget = "under5k"
	Budget5kTo10k  Budget = "5k-10k"
	Budget10kTo25k Budget = "10k-25k"
	Budget25kTo50k Budget = "25k-50k"
	BudgetOver50k  Budget = "over50k"
	BudgetUnsure   Budget = "unsure"
)

// SentinelToken is sent by the site when no challenge was shown to the
// visitor (script blocked, key missing on the page).
const SentinelToken = "no-recaptcha"

// ContactSubmission is a validated contact form post.
type ContactSubmission struct {
	Name              string        `json:"name" validate:"min=2"`
	Email             string        `json:"email" validate:"required,email"`
	Phone             string        `json:"phone" validate:"min=10"`
	Company           string        `json:"company,omitempty"`
	Message           string        `json:"message" validate:"min=10"`
	Service           string        `json:"service,omitempty"`
	Urgency           Urgency       `json:"urgency" validate:"oneof=normal urgent emergency"`
	PreferredContact  ContactMethod `json:"preferredContact" validate:"oneof=email phone"`
	Location          string        `json:"location,omitempty"`
	VerificationToken string        `json:"verificationToken,omitempty"`
}

// Redacted returns a copy safe to hand to notifications and storage.
func (c ContactSubmission) Redacted() ContactSubmission {
	c.VerificationToken = ""
	return c
}

func (c *ContactSubmission) normalize() {
	trimAll(&c.Name, &c.Email, &c.Phone, &c.Company, &c.Message, &c.Service, &c.Location)
	c.VerificationToken = strings.TrimSpace(c.VerificationToken)
	if c.Urgency == "" {
		c.Urgency = UrgencyNormal
	}
	if c.PreferredContact == "" {
		c.PreferredContact = ContactByEmail
	}
}

// QuoteSubmission is a validated quote request.
type QuoteSubmission struct {
	FirstName            string       `json:"firstName" validate:"min=2"`
	LastName             string       `json:"lastName" validate:"min=2"`
	Email                string       `json:"email" validate:"required,email"`
	Phone                string       `json:"phone" validate:"min=10"`
	Company              string       `json:"company,omitempty"`
	PropertyType         PropertyType `json:"propertyType" validate:"required,oneof=residential commercial industrial"`
	PropertySize         string       `json:"propertySize" validate:"required"`
	Address              string       `json:"address" validate:"min=5"`
	City                 string       `json:"city" validate:"min=2"`
	State                State        `json:"state" validate:"required,oneof=NJ PA"`
	ZipCode              string       `json:"zipCode" validate:"zip5"`
	Services             []string     `json:"services" validate:"min=1,dive,required"`
	CurrentSystem        *bool        `json:"currentSystem" validate:"required"`
	CurrentSystemDetails string       `json:"currentSystemDetails,omitempty"`
	Timeline             Timeline     `json:"timeline" validate:"required,oneof=immediate 1-2weeks 1month planning"`
	Budget               Budget       `json:"budget" validate:"required,oneof=under5k 5k-10k 10k-25k 25k-50k over50k unsure"`
	SpecialRequirements  string       `json:"specialRequirements,omitempty"`
	HowHeard             string       `json:"howHeard,omitempty"`
}

// FullName joins first and last name.
func (q QuoteSubmission) FullName() string {
	return strings.TrimSpace(q.FirstName + " " + q.LastName)
}

// HasCurrentSystem reports whether the visitor already has a system installed.
func (q QuoteSubmission) HasCurrentSystem() bool {
	return q.CurrentSystem != nil && *q.CurrentSystem
}

func (q *QuoteSubmission) normalize() {
	trimAll(&q.FirstName, &q.LastName, &q.Email, &q.Phone, &q.Company, &q.PropertySize,
		&q.Address, &q.City, &q.ZipCode, &q.CurrentSystemDetails, &q.SpecialRequirements, &q.HowHeard)
	for i := range q.Services {
		q.Services[i] = strings.TrimSpace(q.Services[i])
	}
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
