package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gardenstate-security/website-api/internal/leads"
	"github.com/gardenstate-security/website-api/pkg/logging"
)

var tracer = otel.Tracer("gss.internal.recaptcha")

// DefaultVerifyURL is Google's siteverify endpoint.
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

const maxResponseBytes = 64 << 10

// Decision is what the gate wants done with a token.
type Decision int

const (
	// Skip lets the submission through without an outbound call.
	Skip Decision = iota
	// Verify requires a siteverify round trip.
	Verify
	// Reject fails the submission without calling out (strict mode only).
	Reject
)

func (d Decision) String() string {
	switch d {
	case Verify:
		return "verify"
	case Reject:
		return "reject"
	default:
		return "skip"
	}
}

// Config holds gate settings.
type Config struct {
	SecretKey string
	VerifyURL string
	Timeout   time.Duration
	// MinScore applies to v3 responses; zero disables the score check.
	MinScore float64
	// Strict makes a missing or sentinel token fail when a secret is set,
	// instead of bypassing verification.
	Strict bool
}

// Gate verifies client tokens against the reCAPTCHA siteverify API.
type Gate struct {
	secret     string
	verifyURL  string
	minScore   float64
	strict     bool
	httpClient *http.Client
	logger     *logging.Logger
}

// NewGate builds a gate. An empty secret yields a disabled gate.
func NewGate(cfg Config, logger *logging.Logger) *Gate {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.VerifyURL == "" {
		cfg.VerifyURL = DefaultVerifyURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Gate{
		secret:    strings.TrimSpace(cfg.SecretKey),
		verifyURL: cfg.VerifyURL,
		minScore:  cfg.MinScore,
		strict:    cfg.Strict,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// Enabled reports whether a server-side secret is configured.
func (g *Gate) Enabled() bool {
	return g != nil && g.secret != ""
}

// Decide maps a client token to a Decision. Outside strict mode a missing
// or sentinel token skips verification even with a secret configured.
func (g *Gate) Decide(token string) Decision {
	if !g.Enabled() {
		return Skip
	}
	token = strings.TrimSpace(token)
	if token != "" && token != leads.SentinelToken {
		return Verify
	}
	if g.strict {
		return Reject
	}
	return Skip
}

type siteVerifyResponse struct {
	Success     bool     `json:"success"`
	Score       *float64 `json:"score,omitempty"`
	Action      string   `json:"action,omitempty"`
	Hostname    string   `json:"hostname,omitempty"`
	ChallengeTS string   `json:"challenge_ts,omitempty"`
	ErrorCodes  []string `json:"error-codes,omitempty"`
}

// Verify performs one siteverify call. Any failure along the way reports
// false; nothing is retried.
func (g *Gate) Verify(ctx context.Context, token, remoteIP string) bool {
	ctx, span := tracer.Start(ctx, "recaptcha.verify")
	defer span.End()

	resp, err := g.call(ctx, token, remoteIP)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "siteverify failed")
		g.logger.Warn("recaptcha verification errored", "error", err)
		return false
	}

	passed := resp.Success
	if passed && g.minScore > 0 && resp.Score != nil && *resp.Score < g.minScore {
		passed = false
	}
	span.SetAttributes(
		attribute.Bool("recaptcha.success", resp.Success),
		attribute.Bool("recaptcha.passed", passed),
		attribute.String("recaptcha.hostname", resp.Hostname),
	)
	if resp.Score != nil {
		span.SetAttributes(attribute.Float64("recaptcha.score", *resp.Score))
	}
	if !passed {
		g.logger.Info("recaptcha verification rejected",
			"error_codes", resp.ErrorCodes,
			"hostname", resp.Hostname,
		)
	}
	return passed
}

func (g *Gate) call(ctx context.Context, token, remoteIP string) (*siteVerifyResponse, error) {
	if !g.Enabled() {
		return nil, fmt.Errorf("recaptcha: secret not configured")
	}

	form := url.Values{}
	form.Set("secret", g.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("recaptcha: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recaptcha: siteverify request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("recaptcha: siteverify status %d", res.StatusCode)
	}

	var out siteVerifyResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("recaptcha: decode siteverify response: %w", err)
	}
	return &out, nil
}
