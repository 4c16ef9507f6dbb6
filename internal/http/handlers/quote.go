package handlers

import (
	"context"
	"net/http"

	"github.com/gardenstate-security/website-api/internal/events"
	"github.com/gardenstate-security/website-api/internal/leads"
	"github.com/gardenstate-security/website-api/internal/observability/metrics"
	"github.com/gardenstate-security/website-api/pkg/logging"
)

const msgQuoteSuccess = "Thank you for your quote request! We will prepare a detailed estimate and contact you within 24 hours."

// QuoteHandler serves POST /api/quote. Quotes carry no challenge token.
type QuoteHandler struct {
	intake *Intake
}

// NewQuoteHandler creates a quote request handler.
func NewQuoteHandler(intake *Intake) *QuoteHandler {
	return &QuoteHandler{intake: intake}
}

func (h *QuoteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.intake.serve(w, r, "quote", h.process)
}

func (h *QuoteHandler) process(ctx context.Context, logger *logging.Logger, body []byte) result {
	in := h.intake

	sub, err := leads.ParseQuote(body)
	if err != nil {
		return rejectParse(logger, err)
	}

	submittedAt := in.now()
	quoteNumber := leads.NewQuoteNumber(submittedAt, in.Rand)
	logger = logger.With("quote_number", quoteNumber)

	n, err := in.Formatter.Quote(sub, quoteNumber, submittedAt)
	if err != nil {
		logger.Error("failed to format quote notification", "error", err)
		return internalError()
	}
	if err := in.dispatch(ctx, logger, n); err != nil {
		logger.Error("failed to dispatch quote notification", "error", err)
		return internalError()
	}

	rec, err := leads.NewQuoteRecord(sub, quoteNumber, submittedAt)
	if err != nil {
		logger.Warn("failed to build quote record", "error", err)
	} else {
		in.record(ctx, logger, rec, events.NewQuoteSubmitted(sub, quoteNumber, submittedAt))
	}

	logger.Info("quote submission accepted", "timeline", sub.Timeline)
	return result{
		status:  http.StatusOK,
		body:    Response{Success: true, Message: msgQuoteSuccess, QuoteNumber: quoteNumber},
		outcome: metrics.OutcomeSuccess,
	}
}
