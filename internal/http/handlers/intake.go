package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gardenstate-security/website-api/internal/events"
	"github.com/gardenstate-security/website-api/internal/leads"
	"github.com/gardenstate-security/website-api/internal/notify"
	"github.com/gardenstate-security/website-api/internal/observability/metrics"
	"github.com/gardenstate-security/website-api/internal/recaptcha"
	"github.com/gardenstate-security/website-api/pkg/logging"
)

const (
	maxBodyBytes         = 64 << 10
	defaultNotifyTimeout = 10 * time.Second
	defaultRecordTimeout = 5 * time.Second

	msgValidationFailed   = "Please correct the highlighted fields and try again."
	msgVerificationFailed = "reCAPTCHA verification failed. Please try again."
	msgInternalError      = "An error occurred while processing your request. Please try again later."
)

var errBodyTooLarge = errors.New("handlers: request body too large")

// Verifier gates submissions on a client challenge token.
type Verifier interface {
	Enabled() bool
	Decide(token string) recaptcha.Decision
	Verify(ctx context.Context, token, remoteIP string) bool
}

// Formatter renders operator notifications.
type Formatter interface {
	Contact(sub leads.ContactSubmission, submittedAt time.Time) (notify.Notification, error)
	Quote(sub leads.QuoteSubmission, quoteNumber string, submittedAt time.Time) (notify.Notification, error)
}

// Dispatcher delivers a rendered notification.
type Dispatcher interface {
	Send(ctx context.Context, n notify.Notification) (notify.DeliveryID, error)
	Provider() string
}

// Intake bundles what both form handlers need. Archive and Events are
// optional; a nil value skips that side effect. RecordTimeout bounds each
// of them.
type Intake struct {
	Gate          Verifier
	Formatter     Formatter
	Mailer        Dispatcher
	Archive       leads.Archive
	Events        events.Publisher
	Metrics       *metrics.FormMetrics
	Logger        *logging.Logger
	NotifyTimeout time.Duration
	RecordTimeout time.Duration
	Now           func() time.Time
	Rand          func(n int) int
}

// Response is the JSON envelope returned by both endpoints.
type Response struct {
	Success     bool               `json:"success"`
	Message     string             `json:"message,omitempty"`
	QuoteNumber string             `json:"quoteNumber,omitempty"`
	Errors      []leads.FieldError `json:"errors,omitempty"`
}

type result struct {
	status  int
	body    Response
	outcome string
}

func internalError() result {
	return result{
		status:  http.StatusInternalServerError,
		body:    Response{Success: false, Message: msgInternalError},
		outcome: metrics.OutcomeInternalError,
	}
}

func (in *Intake) logger() *logging.Logger {
	if in.Logger == nil {
		return logging.Default()
	}
	return in.Logger
}

func (in *Intake) now() time.Time {
	if in.Now == nil {
		return time.Now()
	}
	return in.Now()
}

// serve runs process with the request body and writes its result. Panics
// and unexpected errors become the generic 500.
func (in *Intake) serve(w http.ResponseWriter, r *http.Request, form string, process func(ctx context.Context, logger *logging.Logger, body []byte) result) {
	start := time.Now()
	logger := in.logger().With("form", form, "request_id", chimiddleware.GetReqID(r.Context()))

	res := in.run(r, logger, process)

	in.Metrics.ObserveSubmission(form, res.outcome)
	in.Metrics.ObserveDuration(form, time.Since(start).Seconds())
	writeJSON(w, res.status, res.body)
}

func (in *Intake) run(r *http.Request, logger *logging.Logger, process func(ctx context.Context, logger *logging.Logger, body []byte) result) (res result) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic while handling submission", "panic", fmt.Sprint(rec), "stack", string(debug.Stack()))
			res = internalError()
		}
	}()

	body, err := readBody(r)
	if err != nil {
		logger.Error("failed to read request body", "error", err)
		return internalError()
	}
	return process(r.Context(), logger, body)
}

// rejectParse maps a Parse* error onto a response. Only validation
// failures are modeled; everything else is internal.
func rejectParse(logger *logging.Logger, err error) result {
	var verr *leads.ValidationError
	if errors.As(err, &verr) {
		logger.Info("submission failed validation", "fields", len(verr.Errors))
		return result{
			status:  http.StatusBadRequest,
			body:    Response{Success: false, Message: msgValidationFailed, Errors: verr.Errors},
			outcome: metrics.OutcomeValidationFailed,
		}
	}
	logger.Error("failed to parse submission", "error", err)
	return internalError()
}

// dispatch sends n within the notify timeout.
func (in *Intake) dispatch(ctx context.Context, logger *logging.Logger, n notify.Notification) error {
	if in.Mailer == nil {
		return errors.New("handlers: no notification dispatcher configured")
	}
	timeout := in.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	id, err := in.Mailer.Send(ctx, n)
	in.Metrics.ObserveNotification(in.Mailer.Provider(), err == nil)
	if err != nil {
		return err
	}
	logger.Info("notification dispatched", "delivery_id", id, "provider", in.Mailer.Provider())
	return nil
}

// record archives the lead and publishes its event. Failures are logged
// and never change the response. Each step runs detached from the request
// and is bounded by RecordTimeout, so a stalled store cannot hold the
// response or starve the other step.
func (in *Intake) record(ctx context.Context, logger *logging.Logger, rec leads.Record, evt events.LeadSubmittedV1) {
	detached := context.WithoutCancel(ctx)
	if in.Archive != nil {
		if err := in.bounded(detached, func(ctx context.Context) error { return in.Archive.Save(ctx, rec) }); err != nil {
			logger.Warn("failed to archive submission", "error", err, "reference", rec.Reference)
		}
	}
	if in.Events != nil {
		correlationID := chimiddleware.GetReqID(ctx)
		publish := func(ctx context.Context) error { return in.Events.Publish(ctx, rec.Reference, correlationID, evt) }
		if err := in.bounded(detached, publish); err != nil {
			logger.Warn("failed to publish lead event", "error", err, "reference", rec.Reference)
		}
	}
}

func (in *Intake) bounded(ctx context.Context, fn func(context.Context) error) error {
	timeout := in.RecordTimeout
	if timeout <= 0 {
		timeout = defaultRecordTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxBodyBytes {
		return nil, errBodyTooLarge
	}
	return body, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
