package notify

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/gardenstate-security/website-api/pkg/logging"
)

const sesCharset = "UTF-8"

// SESAPI is the slice of the SES v2 client the sender uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	FromEmail string
	FromName  string
}

// SESSender delivers operator notifications through SES v2 simple messages.
type SESSender struct {
	client SESAPI
	from   string
	logger *logging.Logger
}

// NewSESSender returns nil without a client so callers can treat SES as
// unconfigured.
func NewSESSender(client SESAPI, cfg SESConfig, logger *logging.Logger) *SESSender {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	name := cfg.FromName
	if name == "" {
		name = defaultFromName
	}
	from := (&mail.Address{Name: name, Address: cfg.FromEmail}).String()
	return &SESSender{client: client, from: from, logger: logger}
}

// Send implements EmailSender and returns the SES message id.
func (s *SESSender) Send(ctx context.Context, msg EmailMessage) (string, error) {
	if s == nil || s.client == nil {
		return "", errors.New("notify: SES client not configured")
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &sestypes.Destination{ToAddresses: []string{msg.To}},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: sesText(msg.Subject),
				Body: &sestypes.Body{
					Text: sesText(msg.Body),
					Html: sesText(msg.HTML),
				},
			},
		},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("ses delivery failed", "error", err, "to", msg.To)
		return "", fmt.Errorf("notify: ses send to %s: %w", msg.To, err)
	}

	id := aws.ToString(out.MessageId)
	s.logger.Info("notification delivered", "provider", "ses", "to", msg.To, "message_id", id)
	return id, nil
}

// sesText wraps a non-empty part; SES rejects empty body parts.
func sesText(data string) *sestypes.Content {
	if data == "" {
		return nil
	}
	return &sestypes.Content{Data: aws.String(data), Charset: aws.String(sesCharset)}
}

var _ EmailSender = (*SESSender)(nil)
