package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardenstate-security/website-api/internal/leads"
)

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

var submitted = time.Date(2026, 10, 18, 14, 30, 0, 0, time.UTC)

func TestNewEnvelope(t *testing.T) {
	id := uuid.New()
	evt := NewQuoteSubmitted(leads.QuoteSubmission{FirstName: "John", LastName: "Smith", Email: "john@example.com", Phone: "2155550199", Timeline: leads.TimelineImmediate}, "Q20261018-042", submitted)

	env, err := NewEnvelope("Q20261018-042", " req-1 ", evt, WithEventID(id), WithTimestamp(submitted))
	require.NoError(t, err)

	assert.Equal(t, id, env.EventID)
	assert.Equal(t, EventTypeLeadSubmittedV1, env.EventType)
	assert.Equal(t, "req-1", env.CorrelationID)
	assert.Equal(t, submitted.UnixMicro(), env.TimestampMicros)

	var payload LeadSubmittedV1
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "quote", payload.Kind)
	assert.Equal(t, "John Smith", payload.Name)
	assert.Equal(t, "immediate", payload.Timeline)
	assert.Empty(t, payload.Urgency)
}

func TestNewEnvelope_Errors(t *testing.T) {
	_, err := NewEnvelope(" ", "", LeadSubmittedV1{})
	assert.ErrorIs(t, err, errMissingAggregate)

	_, err = NewEnvelope("ref", "", nil)
	assert.ErrorIs(t, err, errNilEvent)
}

func TestNewContactSubmitted(t *testing.T) {
	evt := NewContactSubmitted(leads.ContactSubmission{Name: "Jane Doe", Email: "jane@example.com", Urgency: leads.UrgencyEmergency, VerificationToken: "secret"}, "ref-1", submitted)

	data, err := json.Marshal(evt)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.Equal(t, "contact", evt.Kind)
	assert.Equal(t, "emergency", evt.Urgency)
	assert.NotEmpty(t, evt.EventID)
}

func TestSQSPublisher_Publish(t *testing.T) {
	client := &fakeSQS{}
	pub := NewSQSPublisher(client, "https://sqs.us-east-1.amazonaws.com/123/leads")

	evt := NewContactSubmitted(leads.ContactSubmission{Name: "Jane Doe", Email: "jane@example.com", Urgency: leads.UrgencyNormal}, "ref-1", submitted)
	require.NoError(t, pub.Publish(context.Background(), "ref-1", "req-1", evt))

	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, "https://sqs.us-east-1.amazonaws.com/123/leads", aws.ToString(in.QueueUrl))
	assert.Equal(t, EventTypeLeadSubmittedV1, aws.ToString(in.MessageAttributes["event_type"].StringValue))

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &env))
	assert.Equal(t, "ref-1", env.Aggregate)
	assert.Equal(t, "req-1", env.CorrelationID)
}

func TestSQSPublisher_PublishError(t *testing.T) {
	pub := NewSQSPublisher(&fakeSQS{err: errors.New("access denied")}, "q")
	err := pub.Publish(context.Background(), "ref-1", "", LeadSubmittedV1{Kind: "contact"})
	assert.Error(t, err)
}

func TestNewSQSPublisher_PanicsOnMissingConfig(t *testing.T) {
	assert.Panics(t, func() { NewSQSPublisher(nil, "q") })
	assert.Panics(t, func() { NewSQSPublisher(&fakeSQS{}, "") })
}
