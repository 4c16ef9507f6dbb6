package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/gardenstate-security/website-api/internal/leads"
)

// Notification is the operator-facing rendering of one submission.
type Notification struct {
	Subject string
	HTML    string
	Text    string
	// ReplyTo is the customer's address so operators can answer directly.
	ReplyTo string
}

// Company identifies the business in notification footers.
type Company struct {
	Name     string
	SiteURL  string
	Location *time.Location
}

// Formatter renders submissions. It holds no mutable state; the same input
// always produces the same output.
type Formatter struct {
	company Company
}

// NewFormatter creates a formatter for the given company.
func NewFormatter(company Company) *Formatter {
	if company.Location == nil {
		company.Location = time.UTC
	}
	return &Formatter{company: company}
}

type row struct {
	Label     string
	Value     string
	Href      template.URL
	Multiline bool
}

type section struct {
	Title string
	Rows  []row
}

// add appends a single-line row only when value is non-empty. Line breaks
// inside value are folded into spaces.
func (s *section) add(label, value string) {
	value = singleLine(value)
	if value == "" {
		return
	}
	s.Rows = append(s.Rows, row{Label: label, Value: value})
}

func (s *section) addLink(label, value string, href template.URL) {
	value = singleLine(value)
	if value == "" {
		return
	}
	s.Rows = append(s.Rows, row{Label: label, Value: value, Href: href})
}

func (s *section) addText(label, value string) {
	if value == "" {
		return
	}
	s.Rows = append(s.Rows, row{Label: label, Value: normalizeNewlines(value), Multiline: true})
}

type document struct {
	Heading  string
	Accent   template.CSS
	Banner   string
	Sections []section
	Footer   string
}

// Contact renders a contact form submission.
func (f *Formatter) Contact(sub leads.ContactSubmission, submittedAt time.Time) (Notification, error) {
	sub = sub.Redacted()

	subject := "Contact Form Submission from " + sub.Name
	doc := document{Heading: "New Contact Form Submission", Accent: "#1d4ed8"}
	switch sub.Urgency {
	case leads.UrgencyEmergency:
		subject = "[EMERGENCY] " + subject
		doc.Accent = "#dc2626"
		doc.Banner = "EMERGENCY: the customer needs an immediate response."
	case leads.UrgencyUrgent:
		doc.Banner = "Urgent: the customer asked for a response within 24 hours."
	}

	contact := section{Title: "Contact Information"}
	contact.add("Name", sub.Name)
	contact.addLink("Email", sub.Email, mailto(sub.Email))
	contact.addLink("Phone", sub.Phone, tel(sub.Phone))
	contact.add("Company", sub.Company)
	contact.add("Preferred Contact", mustLabel(contactMethodLabels, "preferred contact", sub.PreferredContact))
	contact.add("Location", sub.Location)

	request := section{Title: "Request Details"}
	request.add("Service", serviceLabel(sub.Service))
	request.add("Urgency", mustLabel(urgencyLabels, "urgency", sub.Urgency))
	request.addText("Message", sub.Message)

	doc.Sections = []section{contact, request}
	doc.Footer = fmt.Sprintf("Submitted via the %s contact form on %s.", f.siteName(), f.timestamp(submittedAt))

	return f.render(subject, sub.Email, doc)
}

// Quote renders a quote request under its quote number.
func (f *Formatter) Quote(sub leads.QuoteSubmission, quoteNumber string, submittedAt time.Time) (Notification, error) {
	name := sub.FullName()
	subject := fmt.Sprintf("Quote Request from %s (%s)", name, quoteNumber)
	doc := document{Heading: "New Quote Request " + quoteNumber, Accent: "#047857"}
	if sub.Timeline == leads.TimelineImmediate {
		subject = "[URGENT] " + subject
		doc.Accent = "#dc2626"
		doc.Banner = "URGENT: the customer wants the work done immediately."
	}

	customer := section{Title: "Customer"}
	customer.add("Name", name)
	customer.addLink("Email", sub.Email, mailto(sub.Email))
	customer.addLink("Phone", sub.Phone, tel(sub.Phone))
	customer.add("Company", sub.Company)
	customer.add("How They Heard", sub.HowHeard)

	property := section{Title: "Property"}
	property.add("Property Type", mustLabel(propertyTypeLabels, "property type", sub.PropertyType))
	property.add("Property Size", sub.PropertySize)
	property.add("Address", fmt.Sprintf("%s, %s, %s %s", sub.Address, sub.City, sub.State, sub.ZipCode))

	project := section{Title: "Project"}
	services := make([]string, 0, len(sub.Services))
	for _, id := range sub.Services {
		services = append(services, serviceLabel(id))
	}
	project.add("Services", strings.Join(services, ", "))
	if sub.HasCurrentSystem() {
		project.add("Current System", "Yes")
		project.addText("Current System Details", sub.CurrentSystemDetails)
	} else {
		project.add("Current System", "No")
	}
	project.add("Timeline", mustLabel(timelineLabels, "timeline", sub.Timeline))
	project.add("Budget", mustLabel(budgetLabels, "budget", sub.Budget))
	project.addText("Special Requirements", sub.SpecialRequirements)

	doc.Sections = []section{customer, property, project}
	doc.Footer = fmt.Sprintf("Quote %s submitted via the %s quote form on %s.", quoteNumber, f.siteName(), f.timestamp(submittedAt))

	return f.render(subject, sub.Email, doc)
}

func (f *Formatter) render(subject, replyTo string, doc document) (Notification, error) {
	var html bytes.Buffer
	if err := htmlTemplate.Execute(&html, doc); err != nil {
		return Notification{}, fmt.Errorf("notify: render html: %w", err)
	}
	return Notification{
		Subject: subject,
		HTML:    html.String(),
		Text:    renderText(doc),
		ReplyTo: replyTo,
	}, nil
}

func (f *Formatter) siteName() string {
	if f.company.SiteURL != "" {
		return f.company.SiteURL
	}
	if f.company.Name != "" {
		return f.company.Name
	}
	return "website"
}

func (f *Formatter) timestamp(t time.Time) string {
	return t.In(f.company.Location).Format("January 2, 2006 at 3:04 PM MST")
}

func renderText(doc document) string {
	var b strings.Builder
	b.WriteString(doc.Heading)
	b.WriteString("\n")
	if doc.Banner != "" {
		b.WriteString("\n*** ")
		b.WriteString(doc.Banner)
		b.WriteString(" ***\n")
	}
	for _, s := range doc.Sections {
		if len(s.Rows) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n== %s ==\n", s.Title)
		for _, r := range s.Rows {
			if r.Multiline {
				fmt.Fprintf(&b, "%s:\n%s\n", r.Label, r.Value)
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n", r.Label, r.Value)
		}
	}
	b.WriteString("\n--\n")
	b.WriteString(doc.Footer)
	b.WriteString("\n")
	return b.String()
}

func singleLine(s string) string {
	lines := strings.Split(normalizeNewlines(s), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, " ")
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// nl2br escapes s and turns newlines into <br> tags.
func nl2br(s string) template.HTML {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = template.HTMLEscapeString(line)
	}
	return template.HTML(strings.Join(lines, "<br>\n"))
}

func mailto(email string) template.URL {
	return template.URL("mailto:" + email)
}

// tel keeps digits and a leading plus so the href is always safe.
func tel(phone string) template.URL {
	var b strings.Builder
	for i, r := range phone {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return template.URL("tel:" + b.String())
}

var htmlTemplate = template.Must(template.New("notification").Funcs(template.FuncMap{
	"nl2br": nl2br,
}).Parse(`<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: {{.Accent}};">{{.Heading}}</h2>
{{- if .Banner}}
<p style="background: #fef2f2; padding: 12px; border-radius: 8px; border-left: 4px solid #dc2626;"><strong>{{.Banner}}</strong></p>
{{- end}}
{{- range .Sections}}{{if .Rows}}
<h3 style="margin-bottom: 4px;">{{.Title}}</h3>
<table style="border-collapse: collapse; margin: 0 0 16px 0;">
{{- range .Rows}}
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb; vertical-align: top;"><strong>{{.Label}}:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">
  {{- if .Href}}<a href="{{.Href}}">{{.Value}}</a>{{else if .Multiline}}{{nl2br .Value}}{{else}}{{.Value}}{{end -}}
  </td></tr>
{{- end}}
</table>
{{- end}}{{end}}
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">{{.Footer}}</p>
</div>
`))
