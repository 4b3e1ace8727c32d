package websocket

import (
	"encoding/json"
	"time"

	"campusmarket/pkg/logger"
)

// Event types carried in the websocket envelope.
const (
	EventPing            = "ping"
	EventPong            = "pong"
	EventNewMessage      = "new_message"
	EventThreadUpdate    = "thread_update"
	EventTyping          = "typing_indicator"
	EventTypingStart     = "typing_start"
	EventTypingStop      = "typing_stop"
	EventJoinThread      = "join_thread"
	EventLeaveThread     = "leave_thread"
	EventMarkRead        = "mark_read"
	EventReadReceipt     = "read_receipt"
	EventDeliveryReceipt = "delivery_receipt"
	EventPresence        = "presence"
	EventError           = "error"
)

// Envelope is the frame format exchanged with clients.
type Envelope struct {
	Type      string      `json:"type"`
	ThreadID  string      `json:"thread_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type TypingData struct {
	ThreadID      string `json:"thread_id"`
	ParticipantID string `json:"participant_id"`
	Typing        bool   `json:"typing"`
	ExpiresAt     string `json:"expires_at,omitempty"`
}

type ReadReceiptData struct {
	ThreadID string `json:"thread_id"`
	ReaderID string `json:"reader_id"`
}

type DeliveryReceiptData struct {
	ThreadID  string `json:"thread_id"`
	MessageID string `json:"message_id"`
}

type PresenceData struct {
	ContactID string `json:"contact_id"`
	Online    bool   `json:"online"`
	LastSeen  string `json:"last_seen"`
}

// NewEnvelope stamps an event with the current time.
func NewEnvelope(eventType string, data interface{}) Envelope {
	return Envelope{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Marshal serializes an envelope, returning nil on failure so callers can
// treat broadcast as fire-and-forget.
func Marshal(e Envelope) []byte {
	payload, err := json.Marshal(e)
	if err != nil {
		logger.Error("Failed to marshal websocket envelope %s: %v", e.Type, err)
		return nil
	}
	return payload
}
