package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvanceDeliveryForward(t *testing.T) {
	m := &Message{DeliveryState: DeliverySent}

	assert.True(t, m.AdvanceDelivery(DeliveryDelivered))
	assert.Equal(t, DeliveryDelivered, m.DeliveryState)

	assert.True(t, m.AdvanceDelivery(DeliveryRead))
	assert.Equal(t, DeliveryRead, m.DeliveryState)
}

func TestAdvanceDeliverySkipsDelivered(t *testing.T) {
	// A read receipt can arrive before any delivery acknowledgement.
	m := &Message{DeliveryState: DeliverySent}

	assert.True(t, m.AdvanceDelivery(DeliveryRead))
	assert.Equal(t, DeliveryRead, m.DeliveryState)
}

func TestAdvanceDeliveryBackwardIsNoop(t *testing.T) {
	m := &Message{DeliveryState: DeliveryRead}

	assert.False(t, m.AdvanceDelivery(DeliveryDelivered))
	assert.Equal(t, DeliveryRead, m.DeliveryState)

	assert.False(t, m.AdvanceDelivery(DeliverySent))
	assert.Equal(t, DeliveryRead, m.DeliveryState)
}

func TestAdvanceDeliveryIdempotent(t *testing.T) {
	m := &Message{DeliveryState: DeliverySent}

	assert.True(t, m.AdvanceDelivery(DeliveryDelivered))
	assert.False(t, m.AdvanceDelivery(DeliveryDelivered))
	assert.Equal(t, DeliveryDelivered, m.DeliveryState)
}

func TestAdvanceDeliveryUnknownState(t *testing.T) {
	m := &Message{DeliveryState: DeliverySent}

	assert.False(t, m.AdvanceDelivery("archived"))
	assert.Equal(t, DeliverySent, m.DeliveryState)
}

func TestUnread(t *testing.T) {
	m := &Message{SenderID: "u1", DeliveryState: DeliverySent}

	assert.True(t, m.Unread("u2"))
	assert.False(t, m.Unread("u1"), "own messages never count as unread")

	m.DeliveryState = DeliveryDelivered
	assert.True(t, m.Unread("u2"), "delivered is still unread")

	m.DeliveryState = DeliveryRead
	assert.False(t, m.Unread("u2"))
}
