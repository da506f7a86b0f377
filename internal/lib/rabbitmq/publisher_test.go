package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Мок для канала AMQP
type ChannelMock struct {
	mock.Mock
}

func (m *ChannelMock) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func TestPublishMessage(t *testing.T) {
	tests := []struct {
		name       string
		message    any
		publishErr error
		wantErr    bool
	}{
		{
			name:    "success",
			message: map[string]int{"id": 1},
		},
		{
			name:       "publish error",
			message:    map[string]int{"id": 1},
			publishErr: errors.New("channel closed"),
			wantErr:    true,
		},
		{
			name:    "unmarshalable message",
			message: make(chan int),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := new(ChannelMock)
			if tt.name != "unmarshalable message" {
				ch.On("Publish", "ex", "key", false, false, mock.MatchedBy(func(p amqp.Publishing) bool {
					return p.ContentType == "application/json" &&
						p.DeliveryMode == amqp.Persistent &&
						string(p.Body) == `{"id":1}`
				})).Return(tt.publishErr).Once()
			}

			err := PublishMessage(ch, "ex", "key", tt.message)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			ch.AssertExpectations(t)
		})
	}
}

func TestPublisher_PublishAccountRegistered(t *testing.T) {
	ch := new(ChannelMock)
	p := NewPublisher(ch, "accounts")

	event := AccountRegistered{
		AccountID:    "acc-1",
		Name:         "Ada",
		Email:        "ada@x.com",
		RegisteredAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	var published amqp.Publishing
	ch.On("Publish", "accounts", RoutingKeyAccountRegistered, false, false, mock.Anything).
		Run(func(args mock.Arguments) {
			published = args.Get(4).(amqp.Publishing)
		}).
		Return(nil).Once()

	require.NoError(t, p.PublishAccountRegistered(context.Background(), event))
	ch.AssertExpectations(t)

	var got AccountRegistered
	require.NoError(t, json.Unmarshal(published.Body, &got))
	assert.Equal(t, event, got)
}

func TestPublisher_CancelledContext(t *testing.T) {
	ch := new(ChannelMock)
	p := NewPublisher(ch, "accounts")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.PublishAccountRegistered(ctx, AccountRegistered{AccountID: "acc"})
	assert.ErrorIs(t, err, context.Canceled)
	ch.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.PublishAccountRegistered(context.Background(), AccountRegistered{}))
}
