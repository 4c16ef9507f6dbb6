package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardenstate-security/website-api/internal/leads"
)

var submittedAt = time.Date(2026, time.October, 18, 14, 30, 0, 0, time.UTC)

func testFormatter(t *testing.T) *Formatter {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return NewFormatter(Company{Name: "Garden State Security Pros", SiteURL: "gardenstatesecurity.com", Location: loc})
}

func minimalContact() leads.ContactSubmission {
	return leads.ContactSubmission{
		Name:             "Jane Doe",
		Email:            "jane@example.com",
		Phone:            "6095551234",
		Message:          "Need a quote for cameras",
		Urgency:          leads.UrgencyNormal,
		PreferredContact: leads.ContactByEmail,
	}
}

func minimalQuote() leads.QuoteSubmission {
	no := false
	return leads.QuoteSubmission{
		FirstName:     "John",
		LastName:      "Smith",
		Email:         "john@example.com",
		Phone:         "2155550199",
		PropertyType:  leads.PropertyCommercial,
		PropertySize:  "5,000 sq ft",
		Address:       "12 Market Street",
		City:          "Trenton",
		State:         leads.StateNJ,
		ZipCode:       "08608",
		Services:      []string{"cctv", "custom-thing"},
		CurrentSystem: &no,
		Timeline:      leads.TimelineOneMonth,
		Budget:        leads.Budget10kTo25k,
	}
}

func TestContact_PlainSubject(t *testing.T) {
	n, err := testFormatter(t).Contact(minimalContact(), submittedAt)
	require.NoError(t, err)

	assert.Equal(t, "Contact Form Submission from Jane Doe", n.Subject)
	assert.Equal(t, "jane@example.com", n.ReplyTo)
	assert.NotContains(t, n.Subject, "[EMERGENCY]")
	assert.NotContains(t, n.Subject, "[URGENT]")
}

func TestContact_UrgencyFraming(t *testing.T) {
	f := testFormatter(t)
	for _, u := range []leads.Urgency{leads.UrgencyNormal, leads.UrgencyUrgent, leads.UrgencyEmergency} {
		sub := minimalContact()
		sub.Urgency = u
		n, err := f.Contact(sub, submittedAt)
		require.NoError(t, err)

		if u == leads.UrgencyEmergency {
			assert.True(t, strings.HasPrefix(n.Subject, "[EMERGENCY] "), n.Subject)
			assert.Contains(t, n.Text, "EMERGENCY - Immediate Response Needed")
		} else {
			assert.NotContains(t, n.Subject, "[EMERGENCY]")
		}
		assert.NotContains(t, n.Subject, "[URGENT]")
	}
}

func TestContact_OmitsAbsentOptionalFields(t *testing.T) {
	n, err := testFormatter(t).Contact(minimalContact(), submittedAt)
	require.NoError(t, err)

	for _, label := range []string{"Company", "Service", "Location"} {
		assert.NotContains(t, n.Text, label+":")
		assert.NotContains(t, n.HTML, "<strong>"+label+":</strong>")
	}
	assert.NotContains(t, n.Text, ": \n", "no empty labelled rows")
	assert.NotContains(t, n.HTML, "<td style=\"padding: 8px; border-bottom: 1px solid #e5e7eb;\"></td>")
}

func TestContact_IncludesPresentOptionalFields(t *testing.T) {
	sub := minimalContact()
	sub.Company = "Acme Warehousing"
	sub.Service = "access-control"
	sub.Location = "Princeton, NJ"
	sub.PreferredContact = leads.ContactByPhone

	n, err := testFormatter(t).Contact(sub, submittedAt)
	require.NoError(t, err)

	for _, want := range []string{"Company: Acme Warehousing", "Service: Access Control", "Location: Princeton, NJ", "Preferred Contact: Phone"} {
		assert.Contains(t, n.Text, want)
	}
	assert.Contains(t, n.HTML, "Acme Warehousing")
	assert.Contains(t, n.HTML, `href="tel:6095551234"`)
	assert.Contains(t, n.HTML, `href="mailto:jane@example.com"`)
}

func TestContact_NeverRendersVerificationToken(t *testing.T) {
	sub := minimalContact()
	sub.VerificationToken = "tok-abc-123"

	n, err := testFormatter(t).Contact(sub, submittedAt)
	require.NoError(t, err)

	assert.NotContains(t, n.HTML, "tok-abc-123")
	assert.NotContains(t, n.Text, "tok-abc-123")
}

func TestContact_NewlinesAndEscaping(t *testing.T) {
	sub := minimalContact()
	sub.Message = "Line one\r\nLine <two> & more\nLine three"

	n, err := testFormatter(t).Contact(sub, submittedAt)
	require.NoError(t, err)

	assert.Contains(t, n.HTML, "Line one<br>\nLine &lt;two&gt; &amp; more<br>\nLine three")
	assert.Contains(t, n.Text, "Message:\nLine one\nLine <two> & more\nLine three\n")
	assert.NotContains(t, n.Text, "\r")
}

func TestContact_IsDeterministic(t *testing.T) {
	f := testFormatter(t)
	sub := minimalContact()
	sub.Company = "Acme"

	first, err := f.Contact(sub, submittedAt)
	require.NoError(t, err)
	second, err := f.Contact(sub, submittedAt)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestContact_TimestampUsesCompanyZone(t *testing.T) {
	n, err := testFormatter(t).Contact(minimalContact(), submittedAt)
	require.NoError(t, err)

	if loc, err := time.LoadLocation("America/New_York"); err == nil {
		assert.Contains(t, n.Text, submittedAt.In(loc).Format("January 2, 2006 at 3:04 PM MST"))
	}
}

func TestContact_UnknownEnumPanics(t *testing.T) {
	sub := minimalContact()
	sub.Urgency = "someday"
	assert.Panics(t, func() {
		_, _ = testFormatter(t).Contact(sub, submittedAt)
	})
}

func TestQuote_SubjectAndTimelineFraming(t *testing.T) {
	f := testFormatter(t)
	for _, tl := range []leads.Timeline{leads.TimelineImmediate, leads.TimelineOneToTwo, leads.TimelineOneMonth, leads.TimelinePlanning} {
		sub := minimalQuote()
		sub.Timeline = tl
		n, err := f.Quote(sub, "Q20261018-042", submittedAt)
		require.NoError(t, err)

		if tl == leads.TimelineImmediate {
			assert.Equal(t, "[URGENT] Quote Request from John Smith (Q20261018-042)", n.Subject)
		} else {
			assert.Equal(t, "Quote Request from John Smith (Q20261018-042)", n.Subject)
		}
		assert.NotContains(t, n.Subject, "[EMERGENCY]")
	}
}

func TestQuote_RendersLabels(t *testing.T) {
	n, err := testFormatter(t).Quote(minimalQuote(), "Q20261018-042", submittedAt)
	require.NoError(t, err)

	for _, want := range []string{
		"Property Type: Commercial",
		"Address: 12 Market Street, Trenton, NJ 08608",
		"Services: CCTV / Video Surveillance, custom-thing",
		"Current System: No",
		"Timeline: Within 1 month",
		"Budget: $10,000 - $25,000",
		"Quote Q20261018-042 submitted via",
	} {
		assert.Contains(t, n.Text, want)
	}
	assert.Contains(t, n.HTML, "$10,000 - $25,000")
}

func TestQuote_CurrentSystemDetailsOnlyWhenSystemPresent(t *testing.T) {
	f := testFormatter(t)

	sub := minimalQuote()
	sub.CurrentSystemDetails = "Old DVR in the closet"
	n, err := f.Quote(sub, "Q20261018-001", submittedAt)
	require.NoError(t, err)
	assert.NotContains(t, n.Text, "Current System Details")

	yes := true
	sub.CurrentSystem = &yes
	n, err = f.Quote(sub, "Q20261018-001", submittedAt)
	require.NoError(t, err)
	assert.Contains(t, n.Text, "Current System: Yes")
	assert.Contains(t, n.Text, "Current System Details:\nOld DVR in the closet")
	assert.Contains(t, n.HTML, "Old DVR in the closet")
}

func TestQuote_OptionalSections(t *testing.T) {
	f := testFormatter(t)

	n, err := f.Quote(minimalQuote(), "Q20261018-001", submittedAt)
	require.NoError(t, err)
	for _, label := range []string{"Company", "Special Requirements", "How They Heard"} {
		assert.NotContains(t, n.Text, label+":")
		assert.NotContains(t, n.HTML, "<strong>"+label+":</strong>")
	}

	sub := minimalQuote()
	sub.Company = "Acme"
	sub.SpecialRequirements = "Night install only\nGate code 1234"
	sub.HowHeard = "Google"
	n, err = f.Quote(sub, "Q20261018-001", submittedAt)
	require.NoError(t, err)
	assert.Contains(t, n.Text, "Company: Acme")
	assert.Contains(t, n.Text, "How They Heard: Google")
	assert.Contains(t, n.HTML, "Night install only<br>\nGate code 1234")
}

func TestSingleLineFieldsFoldLineBreaks(t *testing.T) {
	f := testFormatter(t)

	sub := minimalQuote()
	sub.HowHeard = "Google\r\nand a friend"
	sub.Company = "Acme\nWarehousing"
	sub.PropertySize = "5,000\r sq ft"
	n, err := f.Quote(sub, "Q20261018-001", submittedAt)
	require.NoError(t, err)

	assert.Contains(t, n.Text, "How They Heard: Google and a friend\n")
	assert.Contains(t, n.Text, "Company: Acme Warehousing\n")
	assert.Contains(t, n.Text, "Property Size: 5,000 sq ft\n")
	assert.Contains(t, n.HTML, "Acme Warehousing")
	assert.NotContains(t, n.Text, "\r")

	contact := minimalContact()
	contact.Location = "Princeton,\r\nNJ"
	n, err = f.Contact(contact, submittedAt)
	require.NoError(t, err)
	assert.Contains(t, n.Text, "Location: Princeton, NJ\n")
}

func TestTelHrefKeepsDigitsOnly(t *testing.T) {
	assert.Equal(t, "tel:+16095551234", string(tel("+1 (609) 555-1234")))
	assert.Equal(t, "tel:6095551234", string(tel("609-555-1234\"><script>")))
}
