package bootstrap

import (
	"fmt"
	"time"

	appconfig "github.com/gardenstate-security/website-api/internal/config"
	"github.com/gardenstate-security/website-api/internal/notify"
	"github.com/gardenstate-security/website-api/pkg/logging"
)

// Email providers accepted by EMAIL_PROVIDER.
const (
	ProviderLog      = "log"
	ProviderSendGrid = "sendgrid"
	ProviderSES      = "ses"
)

// BuildEmailSender selects the sender for cfg.EmailProvider. sesClient is
// only consulted for the ses provider.
func BuildEmailSender(cfg *appconfig.Config, sesClient notify.SESAPI, logger *logging.Logger) (notify.EmailSender, error) {
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.EmailProvider {
	case "", ProviderLog:
		logger.Warn("email provider is log, notifications will not be delivered")
		return notify.NewLogSender(logger), nil
	case ProviderSendGrid:
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.NotifyFromEmail,
			FromName:  cfg.NotifyFromName,
		}, logger)
		if sender == nil {
			return nil, fmt.Errorf("bootstrap: SENDGRID_API_KEY is required for the sendgrid provider")
		}
		return sender, nil
	case ProviderSES:
		sender := notify.NewSESSender(sesClient, notify.SESConfig{
			FromEmail: cfg.NotifyFromEmail,
			FromName:  cfg.NotifyFromName,
		}, logger)
		if sender == nil {
			return nil, fmt.Errorf("bootstrap: SES client is required for the ses provider")
		}
		return sender, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown EMAIL_PROVIDER %q", cfg.EmailProvider)
	}
}

// BuildFormatter creates the notification formatter. An unknown timezone
// falls back to UTC with a warning.
func BuildFormatter(cfg *appconfig.Config, logger *logging.Logger) *notify.Formatter {
	if logger == nil {
		logger = logging.Default()
	}
	loc, err := time.LoadLocation(cfg.CompanyTimezone)
	if err != nil {
		logger.Warn("invalid company timezone, using UTC", "timezone", cfg.CompanyTimezone, "error", err)
		loc = time.UTC
	}
	return notify.NewFormatter(notify.Company{
		Name:     cfg.CompanyName,
		SiteURL:  cfg.SiteURL,
		Location: loc,
	})
}
