package bootstrap

import (
	appconfig "github.com/gardenstate-security/website-api/internal/config"
	"github.com/gardenstate-security/website-api/internal/events"
	"github.com/gardenstate-security/website-api/internal/http/handlers"
	"github.com/gardenstate-security/website-api/internal/leads"
	"github.com/gardenstate-security/website-api/internal/notify"
	"github.com/gardenstate-security/website-api/internal/observability/metrics"
	"github.com/gardenstate-security/website-api/internal/recaptcha"
	"github.com/gardenstate-security/website-api/pkg/logging"
)

// IntakeDeps are the already-built collaborators of the form handlers.
type IntakeDeps struct {
	Sender    notify.EmailSender
	Archive   leads.Archive
	Publisher events.Publisher
	Metrics   *metrics.FormMetrics
}

// BuildIntake wires the gate, formatter and mailer from cfg around deps.
func BuildIntake(cfg *appconfig.Config, deps IntakeDeps, logger *logging.Logger) *handlers.Intake {
	if logger == nil {
		logger = logging.Default()
	}

	gate := recaptcha.NewGate(recaptcha.Config{
		SecretKey: cfg.RecaptchaSecretKey,
		VerifyURL: cfg.RecaptchaVerifyURL,
		Timeout:   cfg.RecaptchaTimeout,
		MinScore:  cfg.RecaptchaMinScore,
		Strict:    cfg.RecaptchaStrict,
	}, logger)
	if !gate.Enabled() {
		logger.Warn("RECAPTCHA_SECRET_KEY not set, contact submissions will not be verified")
	}

	provider := cfg.EmailProvider
	if provider == "" {
		provider = ProviderLog
	}

	return &handlers.Intake{
		Gate:          gate,
		Formatter:     BuildFormatter(cfg, logger),
		Mailer:        notify.NewMailer(deps.Sender, provider, cfg.NotifyRecipients, logger),
		Archive:       deps.Archive,
		Events:        deps.Publisher,
		Metrics:       deps.Metrics,
		Logger:        logger,
		NotifyTimeout: cfg.NotifyTimeout,
		RecordTimeout: cfg.ArchiveTimeout,
	}
}
