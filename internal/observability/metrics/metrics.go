package metrics

import "github.com/prometheus/client_golang/prometheus"

// Submission outcomes.
const (
	OutcomeSuccess            = "success"
	OutcomeValidationFailed   = "validation_failed"
	OutcomeVerificationFailed = "verification_failed"
	OutcomeInternalError      = "internal_error"
)

// Verification results.
const (
	VerificationPassed  = "passed"
	VerificationFailed  = "failed"
	VerificationSkipped = "skipped"
)

// FormMetrics exposes counters/histograms for the intake forms.
type FormMetrics struct {
	submissionsTotal   *prometheus.CounterVec
	verificationsTotal *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
}

func NewFormMetrics(reg prometheus.Registerer) *FormMetrics {
	m := &FormMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gss",
			Subsystem: "forms",
			Name:      "submissions_total",
			Help:      "Form submissions by form and outcome",
		}, []string{"form", "outcome"}),
		verificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gss",
			Subsystem: "forms",
			Name:      "verifications_total",
			Help:      "reCAPTCHA verification results",
		}, []string{"result"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gss",
			Subsystem: "forms",
			Name:      "notifications_total",
			Help:      "Operator notification dispatches by provider and status",
		}, []string{"provider", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gss",
			Subsystem: "forms",
			Name:      "request_duration_seconds",
			Help:      "Latency of form submission handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"form"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.verificationsTotal, m.notificationsTotal, m.requestDuration)
	return m
}

func (m *FormMetrics) ObserveSubmission(form, outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(form, outcome).Inc()
}

func (m *FormMetrics) ObserveVerification(result string) {
	if m == nil {
		return
	}
	m.verificationsTotal.WithLabelValues(result).Inc()
}

func (m *FormMetrics) ObserveNotification(provider string, ok bool) {
	if m == nil {
		return
	}
	status := "sent"
	if !ok {
		status = "failed"
	}
	m.notificationsTotal.WithLabelValues(provider, status).Inc()
}

func (m *FormMetrics) ObserveDuration(form string, seconds float64) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(form).Observe(seconds)
}
