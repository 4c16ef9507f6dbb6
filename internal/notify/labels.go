package notify

import (
	"fmt"

	"github.com/gardenstate-security/website-api/internal/leads"
)

var urgencyLabels = map[leads.Urgency]string{
	leads.UrgencyNormal:    "Normal",
	leads.UrgencyUrgent:    "Urgent (within 24 hours)",
	leads.UrgencyEmergency: "EMERGENCY - Immediate Response Needed",
}

var contactMethodLabels = map[leads.ContactMethod]string{
	leads.ContactByEmail: "Email",
	leads.ContactByPhone: "Phone",
}

var propertyTypeLabels = map[leads.PropertyType]string{
	leads.PropertyResidential: "Residential",
	leads.PropertyCommercial:  "Commercial",
	leads.PropertyIndustrial:  "Industrial",
}

var timelineLabels = map[leads.Timeline]string{
	leads.TimelineImmediate: "Immediate (ASAP)",
	leads.TimelineOneToTwo:  "Within 1-2 weeks",
	leads.TimelineOneMonth:  "Within 1 month",
	leads.TimelinePlanning:  "Just planning / researching",
}

var budgetLabels = map[leads.Budget]string{
	leads.BudgetUnder5k:  "Under $5,000",
	leads.Budget5kTo10k:  "$5,000 - $10,000",
	leads.Budget10kTo25k: "$10,000 - $25,000",
	leads.Budget25kTo50k: "$25,000 - $50,000",
	leads.BudgetOver50k:  "Over $50,000",
	leads.BudgetUnsure:   "Not sure yet",
}

// Service identifiers are free-form; unknown ones are shown verbatim.
var serviceLabels = map[string]string{
	"cctv":             "CCTV / Video Surveillance",
	"video":            "Video Surveillance",
	"access-control":   "Access Control",
	"alarm":            "Intrusion Alarm System",
	"intercom":         "Intercom / Video Entry",
	"fire":             "Fire Alarm",
	"monitoring":       "24/7 Monitoring",
	"smart-home":       "Smart Home Security",
	"structured-cable": "Structured Cabling",
	"maintenance":      "Service & Maintenance",
}

// mustLabel panics on values validation should have rejected.
func mustLabel[K ~string](table map[K]string, kind string, value K) string {
	label, ok := table[value]
	if !ok {
		panic(fmt.Sprintf("notify: no %s label for %q", kind, string(value)))
	}
	return label
}

func serviceLabel(id string) string {
	if label, ok := serviceLabels[id]; ok {
		return label
	}
	return id
}
