package entity

import "time"

// Message content types.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeFile  = "file"
	MessageTypeOffer = "offer"
)

// Delivery states. A message only ever moves forward through
// sent -> delivered -> read; read is terminal.
const (
	DeliverySent      = "sent"
	DeliveryDelivered = "delivered"
	DeliveryRead      = "read"
)

var deliveryRank = map[string]int{
	DeliverySent:      0,
	DeliveryDelivered: 1,
	DeliveryRead:      2,
}

type Message struct {
	ID            string                 `json:"id" firestore:"id"`
	ThreadID      string                 `json:"thread_id" firestore:"threadId"`
	SenderID      string                 `json:"sender_id" firestore:"senderId"`
	Content       string                 `json:"content" firestore:"content"`
	Type          string                 `json:"type" firestore:"type"`
	DeliveryState string                 `json:"delivery_state" firestore:"deliveryState"`
	Seq           int64                  `json:"seq" firestore:"seq"`
	Metadata      map[string]interface{} `json:"metadata,omitempty" firestore:"metadata,omitempty"`
	CreatedAt     time.Time              `json:"created_at" firestore:"createdAt"`
}

// ValidMessageType reports whether t is one of the supported content types.
func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile, MessageTypeOffer:
		return true
	}
	return false
}

// AdvanceDelivery moves the message to state if that is a forward transition
// and reports whether anything changed. Backward or repeated transitions are
// no-ops: a late delivery acknowledgement for an already-read message is
// expected under network reordering, not an error.
func (m *Message) AdvanceDelivery(state string) bool {
	newRank, ok := deliveryRank[state]
	if !ok {
		return false
	}
	if newRank <= deliveryRank[m.DeliveryState] {
		return false
	}
	m.DeliveryState = state
	return true
}

// Unread reports whether the message counts against viewerID's unread total:
// sent by someone else and not yet read.
func (m *Message) Unread(viewerID string) bool {
	return m.SenderID != viewerID && m.DeliveryState != DeliveryRead
}
