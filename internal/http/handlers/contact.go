package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/gardenstate-security/website-api/internal/events"
	httpmiddleware "github.com/gardenstate-security/website-api/internal/http/middleware"
	"github.com/gardenstate-security/website-api/internal/leads"
	"github.com/gardenstate-security/website-api/internal/observability/metrics"
	"github.com/gardenstate-security/website-api/internal/recaptcha"
	"github.com/gardenstate-security/website-api/pkg/logging"
)

const msgContactSuccess = "Thank you for your inquiry. We will contact you within 24 hours."

// ContactHandler serves POST /api/contact.
type ContactHandler struct {
	intake *Intake
}

// NewContactHandler creates a contact form handler.
func NewContactHandler(intake *Intake) *ContactHandler {
	return &ContactHandler{intake: intake}
}

func (h *ContactHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.intake.serve(w, r, "contact", func(ctx context.Context, logger *logging.Logger, body []byte) result {
		return h.process(ctx, logger, body, httpmiddleware.ClientIP(r))
	})
}

func (h *ContactHandler) process(ctx context.Context, logger *logging.Logger, body []byte, ip string) result {
	in := h.intake

	sub, err := leads.ParseContact(body)
	if err != nil {
		return rejectParse(logger, err)
	}

	if !h.verify(ctx, logger, sub.VerificationToken, ip) {
		return result{
			status:  http.StatusBadRequest,
			body:    Response{Success: false, Message: msgVerificationFailed},
			outcome: metrics.OutcomeVerificationFailed,
		}
	}
	sub = sub.Redacted()

	submittedAt := in.now()
	n, err := in.Formatter.Contact(sub, submittedAt)
	if err != nil {
		logger.Error("failed to format contact notification", "error", err)
		return internalError()
	}
	if err := in.dispatch(ctx, logger, n); err != nil {
		logger.Error("failed to dispatch contact notification", "error", err)
		return internalError()
	}

	reference := uuid.NewString()
	rec, err := leads.NewContactRecord(sub, reference, submittedAt)
	if err != nil {
		logger.Warn("failed to build contact record", "error", err)
	} else {
		in.record(ctx, logger, rec, events.NewContactSubmitted(sub, reference, submittedAt))
	}

	logger.Info("contact submission accepted", "reference", reference, "urgency", sub.Urgency)
	return result{
		status:  http.StatusOK,
		body:    Response{Success: true, Message: msgContactSuccess},
		outcome: metrics.OutcomeSuccess,
	}
}

// verify applies the challenge gate. It reports whether the submission may
// proceed.
func (h *ContactHandler) verify(ctx context.Context, logger *logging.Logger, token, ip string) bool {
	in := h.intake
	if in.Gate == nil || !in.Gate.Enabled() {
		logger.Warn("recaptcha secret not configured, skipping verification")
		in.Metrics.ObserveVerification(metrics.VerificationSkipped)
		return true
	}

	switch in.Gate.Decide(token) {
	case recaptcha.Verify:
		if in.Gate.Verify(ctx, token, ip) {
			in.Metrics.ObserveVerification(metrics.VerificationPassed)
			return true
		}
		logger.Warn("recaptcha verification failed")
	case recaptcha.Reject:
		logger.Warn("recaptcha token missing in strict mode")
	default:
		logger.Info("recaptcha token absent or sentinel, skipping verification")
		in.Metrics.ObserveVerification(metrics.VerificationSkipped)
		return true
	}
	in.Metrics.ObserveVerification(metrics.VerificationFailed)
	return false
}
