package inject

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/andina-core/sqs-event-router/internal/routing"
)

const (
	DefaultNamespace = "andina-core"
	DefaultType      = routing.TypeSuscripcionCotizacion
	DefaultID        = 12345
)

// Environments are the deployments `all` sends to.
var Environments = []string{"dev", "qa", "uat"}

// SQSClient defines the SQS operations needed by the Injector.
type SQSClient interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ListQueues(ctx context.Context, params *sqs.ListQueuesInput, optFns ...func(*sqs.Options)) (*sqs.ListQueuesOutput, error)
}

// TestMessage is the synthetic body published to a queue.
type TestMessage struct {
	ID        int    `json:"id"`
	Test      bool   `json:"test"`
	Timestamp string `json:"timestamp"`
	Ambiente  string `json:"ambiente"`
	Tipo      string `json:"tipo"`
}

// Sent describes a published message.
type Sent struct {
	Queue     string
	MessageID string
	Message   TestMessage
}

// Injector publishes test messages to queues named
// <environment>-<namespace>-<type>.
type Injector struct {
	client    SQSClient
	namespace string
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Injector)

func WithLogger(l *zap.Logger) Option {
	return func(i *Injector) { i.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(i *Injector) { i.now = now }
}

func WithNamespace(ns string) Option {
	return func(i *Injector) { i.namespace = ns }
}

func New(client SQSClient, opts ...Option) *Injector {
	i := &Injector{
		client:    client,
		namespace: DefaultNamespace,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

// QueueName builds the queue name for an environment and type.
func (i *Injector) QueueName(env string, typ routing.MessageType) string {
	return fmt.Sprintf("%s-%s-%s", env, i.namespace, typ)
}

// Send resolves the queue URL and publishes a TestMessage with the given id.
func (i *Injector) Send(ctx context.Context, env string, typ routing.MessageType, id int) (Sent, error) {
	queue := i.QueueName(env, typ)
	out, err := i.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(queue)})
	if err != nil {
		return Sent{Queue: queue}, errors.Wrapf(err, "get url of %s", queue)
	}

	msg := TestMessage{
		ID:        id,
		Test:      true,
		Timestamp: i.now().Format(time.RFC3339Nano),
		Ambiente:  env,
		Tipo:      string(typ),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return Sent{Queue: queue}, errors.WithStack(err)
	}

	res, err := i.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    out.QueueUrl,
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return Sent{Queue: queue}, errors.Wrapf(err, "send to %s", queue)
	}

	sent := Sent{Queue: queue, MessageID: aws.ToString(res.MessageId), Message: msg}
	i.logger.Info("message sent", zap.String("queue", queue), zap.String("messageId", sent.MessageID))
	return sent, nil
}

// SendAll sends the default type to every known environment. A failure for
// one queue does not stop the others.
func (i *Injector) SendAll(ctx context.Context) ([]Sent, error) {
	var sent []Sent
	var failed []string
	for _, env := range Environments {
		s, err := i.Send(ctx, env, DefaultType, 10000+int(env[0]))
		if err != nil {
			i.logger.Error("send failed", zap.String("queue", s.Queue), zap.Error(err))
			failed = append(failed, s.Queue)
			continue
		}
		sent = append(sent, s)
	}
	if len(failed) > 0 {
		return sent, errors.Errorf("failed to send to %s", strings.Join(failed, ", "))
	}
	return sent, nil
}

// ListQueues returns the names of every queue the emulator knows about.
func (i *Injector) ListQueues(ctx context.Context) ([]string, error) {
	var names []string
	p := sqs.NewListQueuesPaginator(i.client, &sqs.ListQueuesInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return names, errors.Wrap(err, "list queues")
		}
		for _, u := range page.QueueUrls {
			names = append(names, routing.QueueName(u))
		}
	}
	return names, nil
}

// IsEnvironment reports whether env is one of Environments.
func IsEnvironment(env string) bool {
	for _, e := range Environments {
		if e == env {
			return true
		}
	}
	return false
}
