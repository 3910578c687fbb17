package forward

import (
	"time"

	"github.com/aws/aws-lambda-go/events"
)

// Metadata is the routing information attached to a forwarded record.
type Metadata struct {
	Environment string `json:"environment"`
	QueueType   string `json:"queueType"`
	ProcessedAt string `json:"processedAt"`
}

// Record mirrors the inbound SQS record. Body is passed through unchanged.
type Record struct {
	MessageID      string            `json:"messageId"`
	ReceiptHandle  string            `json:"receiptHandle"`
	Body           string            `json:"body"`
	Attributes     map[string]string `json:"attributes"`
	EventSourceARN string            `json:"eventSourceARN"`
	Metadata       Metadata          `json:"_metadata"`
}

// Envelope is the body POSTed downstream: always a single record.
type Envelope struct {
	Records []Record `json:"Records"`
}

// NewEnvelope wraps msg with its routing metadata.
func NewEnvelope(msg events.SQSMessage, environment, queueType string, processedAt time.Time) Envelope {
	attrs := msg.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	return Envelope{Records: []Record{{
		MessageID:      msg.MessageId,
		ReceiptHandle:  msg.ReceiptHandle,
		Body:           msg.Body,
		Attributes:     attrs,
		EventSourceARN: msg.EventSourceARN,
		Metadata: Metadata{
			Environment: environment,
			QueueType:   queueType,
			ProcessedAt: processedAt.Format(time.RFC3339Nano),
		},
	}}}
}
