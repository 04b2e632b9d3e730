package rabbitmq

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return m.Called(name, kind).Error(0)
}

func (m *mockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, msg).Error(0)
}

func (m *mockChannel) Close() error {
	return m.Called().Error(0)
}

func TestNewClientWithChannel_DeclaresExchange(t *testing.T) {
	ch := new(mockChannel)
	ch.On("ExchangeDeclare", DefaultExchange, "topic").Return(nil).Once()

	client, err := NewClientWithChannel(ch, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultExchange, client.exchange)
	ch.AssertExpectations(t)
}

func TestNewClientWithChannel_DeclareFailure(t *testing.T) {
	ch := new(mockChannel)
	ch.On("ExchangeDeclare", "catalog", "topic").Return(errors.New("access refused")).Once()

	_, err := NewClientWithChannel(ch, "catalog")
	assert.ErrorContains(t, err, "access refused")
}

func TestPublish(t *testing.T) {
	ch := new(mockChannel)
	ch.On("ExchangeDeclare", DefaultExchange, "topic").Return(nil)
	isProductEvent := mock.MatchedBy(func(msg amqp.Publishing) bool {
		return msg.ContentType == "application/json" &&
			msg.DeliveryMode == amqp.Persistent &&
			string(msg.Body) == `{"id":"1"}`
	})
	ch.On("Publish", DefaultExchange, "product.created", isProductEvent).Return(nil).Once()

	client, err := NewClientWithChannel(ch, "")
	require.NoError(t, err)

	err = client.Publish(context.Background(), "product.created", map[string]string{"id": "1"})
	require.NoError(t, err)
	ch.AssertExpectations(t)
}

func TestPublish_Errors(t *testing.T) {
	ch := new(mockChannel)
	ch.On("ExchangeDeclare", DefaultExchange, "topic").Return(nil)
	ch.On("Publish", DefaultExchange, "product.created", mock.Anything).Return(errors.New("channel closed"))

	client, err := NewClientWithChannel(ch, "")
	require.NoError(t, err)

	err = client.Publish(context.Background(), "product.created", struct{}{})
	assert.ErrorContains(t, err, "channel closed")

	err = client.Publish(context.Background(), "product.created", make(chan int))
	assert.ErrorContains(t, err, "failed to marshal")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, client.Publish(ctx, "product.created", struct{}{}), context.Canceled)
}

func TestClose(t *testing.T) {
	ch := new(mockChannel)
	ch.On("ExchangeDeclare", DefaultExchange, "topic").Return(nil)
	ch.On("Close").Return(nil).Once()

	client, err := NewClientWithChannel(ch, "")
	require.NoError(t, err)
	assert.NoError(t, client.Close())
	ch.AssertExpectations(t)
}
