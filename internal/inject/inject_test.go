package inject

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/andina-core/sqs-event-router/internal/routing"
)

// --- Mock SQSClient ---

type MockSQSClient struct {
	mock.Mock
}

func (m *MockSQSClient) GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.GetQueueUrlOutput), args.Error(1)
}

func (m *MockSQSClient) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.SendMessageOutput), args.Error(1)
}

func (m *MockSQSClient) ListQueues(ctx context.Context, params *sqs.ListQueuesInput, optFns ...func(*sqs.Options)) (*sqs.ListQueuesOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ListQueuesOutput), args.Error(1)
}

// --- Test Helper Functions ---

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func queueURL(name string) string {
	return "http://localhost:4566/000000000000/" + name
}

func expectQueue(m *MockSQSClient, name string) {
	m.On("GetQueueUrl", mock.Anything, mock.MatchedBy(func(in *sqs.GetQueueUrlInput) bool {
		return aws.ToString(in.QueueName) == name
	})).Return(&sqs.GetQueueUrlOutput{QueueUrl: aws.String(queueURL(name))}, nil)
}

func sentTo(name string) interface{} {
	return mock.MatchedBy(func(in *sqs.SendMessageInput) bool {
		return aws.ToString(in.QueueUrl) == queueURL(name)
	})
}

// --- Test Cases ---

func TestInjector_Send(t *testing.T) {
	client := new(MockSQSClient)
	expectQueue(client, "qa-andina-core-masivo-kit")
	var body string
	client.On("SendMessage", mock.Anything, sentTo("qa-andina-core-masivo-kit")).
		Run(func(args mock.Arguments) { body = aws.ToString(args.Get(1).(*sqs.SendMessageInput).MessageBody) }).
		Return(&sqs.SendMessageOutput{MessageId: aws.String("abc")}, nil)

	inj := New(client, WithClock(func() time.Time { return fixedNow }))
	sent, err := inj.Send(context.Background(), "qa", routing.TypeKit, DefaultID)
	require.NoError(t, err)

	assert.Equal(t, "qa-andina-core-masivo-kit", sent.Queue)
	assert.Equal(t, "abc", sent.MessageID)

	var msg TestMessage
	require.NoError(t, json.Unmarshal([]byte(body), &msg))
	assert.Equal(t, TestMessage{ID: 12345, Test: true, Timestamp: "2024-05-01T10:00:00Z", Ambiente: "qa", Tipo: "masivo-kit"}, msg)
	client.AssertExpectations(t)
}

func TestInjector_SendUnknownQueue(t *testing.T) {
	client := new(MockSQSClient)
	client.On("GetQueueUrl", mock.Anything, mock.Anything).Return(nil, errors.New("AWS.SimpleQueueService.NonExistentQueue"))

	_, err := New(client).Send(context.Background(), "dev", routing.TypeKit, 1)
	assert.ErrorContains(t, err, "dev-andina-core-masivo-kit")
	client.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}

func TestInjector_SendAll(t *testing.T) {
	client := new(MockSQSClient)
	var ids []int
	for _, env := range Environments {
		name := env + "-andina-core-masivo-suscripcion-cotizacion"
		expectQueue(client, name)
		client.On("SendMessage", mock.Anything, sentTo(name)).
			Run(func(args mock.Arguments) {
				var msg TestMessage
				_ = json.Unmarshal([]byte(aws.ToString(args.Get(1).(*sqs.SendMessageInput).MessageBody)), &msg)
				ids = append(ids, msg.ID)
			}).
			Return(&sqs.SendMessageOutput{MessageId: aws.String(env)}, nil)
	}

	sent, err := New(client).SendAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, sent, 3)
	assert.Equal(t, []int{10000 + 'd', 10000 + 'q', 10000 + 'u'}, ids)
}

func TestInjector_SendAllContinuesAfterFailure(t *testing.T) {
	client := new(MockSQSClient)
	client.On("GetQueueUrl", mock.Anything, mock.MatchedBy(func(in *sqs.GetQueueUrlInput) bool {
		return aws.ToString(in.QueueName) == "dev-andina-core-masivo-suscripcion-cotizacion"
	})).Return(nil, errors.New("missing"))
	for _, env := range []string{"qa", "uat"} {
		name := env + "-andina-core-masivo-suscripcion-cotizacion"
		expectQueue(client, name)
		client.On("SendMessage", mock.Anything, sentTo(name)).Return(&sqs.SendMessageOutput{MessageId: aws.String(env)}, nil)
	}

	sent, err := New(client).SendAll(context.Background())
	assert.ErrorContains(t, err, "dev-andina-core-masivo-suscripcion-cotizacion")
	assert.Len(t, sent, 2)
}

func TestInjector_ListQueues(t *testing.T) {
	client := new(MockSQSClient)
	client.On("ListQueues", mock.Anything, mock.MatchedBy(func(in *sqs.ListQueuesInput) bool { return in.NextToken == nil })).
		Return(&sqs.ListQueuesOutput{
			QueueUrls: []string{queueURL("dev-andina-core-masivo-kit")},
			NextToken: aws.String("p2"),
		}, nil)
	client.On("ListQueues", mock.Anything, mock.MatchedBy(func(in *sqs.ListQueuesInput) bool { return aws.ToString(in.NextToken) == "p2" })).
		Return(&sqs.ListQueuesOutput{
			QueueUrls: []string{queueURL("qa-andina-core-masivo-polizas")},
		}, nil)

	names, err := New(client).ListQueues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"dev-andina-core-masivo-kit", "qa-andina-core-masivo-polizas"}, names)
}

func TestInjector_QueueNameNamespace(t *testing.T) {
	inj := New(new(MockSQSClient), WithNamespace("otro"))
	assert.Equal(t, "uat-otro-masivo-polizas", inj.QueueName("uat", routing.TypePolizas))
	assert.True(t, IsEnvironment("qa"))
	assert.False(t, IsEnvironment("prod"))
}
