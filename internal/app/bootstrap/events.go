package bootstrap

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	appconfig "github.com/gardenstate-security/website-api/internal/config"
	"github.com/gardenstate-security/website-api/internal/events"
)

// BuildPublisher returns the SQS lead-event publisher, or nil when no queue
// is configured.
func BuildPublisher(cfg *appconfig.Config, client *sqs.Client) events.Publisher {
	if cfg == nil || client == nil || strings.TrimSpace(cfg.LeadEventsQueueURL) == "" {
		return nil
	}
	return events.NewSQSPublisher(client, cfg.LeadEventsQueueURL)
}
