package router

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/andina-core/sqs-event-router/internal/forward"
	"github.com/andina-core/sqs-event-router/internal/routing"
)

// CompletionMessage is the body of every invocation response.
const CompletionMessage = "Procesamiento completado"

const logBodyLimit = 200

// Poster delivers an envelope to a URL.
type Poster interface {
	Post(ctx context.Context, url string, env forward.Envelope) (forward.Response, error)
}

// Response is returned to the Lambda runtime. BatchItemFailures is only
// filled when the AckPolicy reports failures.
type Response struct {
	StatusCode        int                          `json:"statusCode"`
	Body              string                       `json:"body"`
	BatchItemFailures []events.SQSBatchItemFailure `json:"batchItemFailures,omitempty"`
}

// Result describes what happened to a single record.
type Result struct {
	MessageID   string
	Queue       string
	Environment string
	Type        routing.MessageType
	URL         string
	StatusCode  int
	Kind        FailureKind
	Err         error
}

// Router forwards SQS records to the service configured for their queue.
type Router struct {
	routes      routing.Table
	poster      Poster
	policy      AckPolicy
	logger      *zap.Logger
	now         func() time.Time
	environment string
}

type Option func(*Router)

func WithLogger(l *zap.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// WithAckPolicy sets how failed records are reported. Defaults to AlwaysAcknowledge.
func WithAckPolicy(p AckPolicy) Option {
	return func(r *Router) { r.policy = p }
}

func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

// WithEnvironment sets the deployment name logged at each invocation.
func WithEnvironment(env string) Option {
	return func(r *Router) { r.environment = env }
}

func New(routes routing.Table, poster Poster, opts ...Option) *Router {
	r := &Router{
		routes:      routes,
		poster:      poster,
		policy:      AlwaysAcknowledge{},
		logger:      zap.NewNop(),
		now:         time.Now,
		environment: "unknown",
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Handle processes every record in order. It never returns an error: failed
// records are logged and, depending on the AckPolicy, listed in
// BatchItemFailures.
func (r *Router) Handle(ctx context.Context, event events.SQSEvent) (Response, error) {
	r.logger.Info("invocation started",
		zap.String("deployment", r.environment),
		zap.Int("records", len(event.Records)),
	)

	resp := Response{StatusCode: 200, Body: CompletionMessage}
	for _, msg := range event.Records {
		res := r.Process(ctx, msg)
		if res.Kind != FailNone && r.policy.Report(res.Kind) {
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: msg.MessageId})
		}
	}
	return resp, nil
}

// Process runs the pipeline for one record and logs its outcome.
func (r *Router) Process(ctx context.Context, msg events.SQSMessage) (res Result) {
	queue := routing.QueueName(msg.EventSourceARN)
	log := r.logger.With(zap.String("messageId", msg.MessageId), zap.String("queue", queue))
	res = Result{MessageID: msg.MessageId, Queue: queue}

	defer func() {
		if p := recover(); p != nil {
			res.Err = errors.Wrapf(ErrPanic, "%v", p)
			res.Kind = FailTransport
			log.Error("record processing panicked", zap.String("outcome", res.Kind.Outcome()), zap.Error(res.Err))
		}
	}()

	log.Info("processing record")
	res = r.process(ctx, msg, res, log)
	res.Kind = kindOf(res.Err)
	r.logOutcome(log, res)
	return res
}

func (r *Router) process(ctx context.Context, msg events.SQSMessage, res Result, log *zap.Logger) Result {
	res.Environment = routing.Environment(res.Queue)
	log.Info("environment detected", zap.String("environment", res.Environment))

	typ, ok := routing.Classify(res.Queue)
	res.Type = typ
	log.Info("queue type detected", zap.String("queueType", string(typ)), zap.Bool("known", ok))

	if res.Environment == "" {
		res.Err = ErrUnknownEnvironment
		return res
	}
	if !ok {
		res.Err = routing.ErrUnknownType
		return res
	}

	target, err := r.routes.Resolve(typ)
	if err != nil {
		res.Err = err
		return res
	}
	res.URL = target.URL()
	log.Info("target resolved", zap.String("url", res.URL))

	env := forward.NewEnvelope(msg, res.Environment, string(typ), r.now())
	out, err := r.poster.Post(ctx, res.URL, env)
	res.StatusCode = out.StatusCode
	res.Err = err
	if err == nil || errors.Is(err, forward.ErrUnexpectedStatus) {
		log = log.With(zap.Int("status", out.StatusCode))
		if err == nil {
			log.Info("response body", zap.String("body", truncate(out.Body, logBodyLimit)))
		} else {
			log.Error("response body", zap.String("body", out.Body))
		}
	}
	return res
}

func (r *Router) logOutcome(log *zap.Logger, res Result) {
	fields := []zap.Field{
		zap.String("outcome", res.Kind.Outcome()),
		zap.String("environment", res.Environment),
		zap.String("queueType", string(res.Type)),
	}
	switch {
	case res.Kind == FailNone:
		log.Info("record delivered", append(fields, zap.String("url", res.URL))...)
	case res.Kind.Skipped():
		log.Warn(skipMessage(res), append(fields, zap.Error(res.Err))...)
	default:
		log.Error(failMessage(res.Kind), append(fields, zap.String("url", res.URL), zap.Error(res.Err))...)
	}
}

func skipMessage(res Result) string {
	switch res.Kind {
	case FailUnknownEnvironment:
		return "no configuration for environment, skipping"
	case FailUnknownType:
		return "queue type not recognized, skipping"
	default:
		return fmt.Sprintf("no endpoint configured for %s, skipping", res.Type)
	}
}

func failMessage(kind FailureKind) string {
	switch kind {
	case FailServiceUnavailable:
		return "service unavailable"
	case FailTimeout:
		return "timeout calling service"
	case FailStatus:
		return "service rejected record"
	default:
		return "unexpected error calling service"
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
