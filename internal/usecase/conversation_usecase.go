package usecase

import (
	"context"
	"time"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/internal/infrastructure/presence"
	"campusmarket/internal/infrastructure/ratelimit"
	"campusmarket/internal/infrastructure/typing"
	ws "campusmarket/internal/infrastructure/websocket"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/logger"
)

// ConversationUseCase is the public entry point of the messaging core. It
// composes the thread registry, message store, presence tracker and typing
// coordinator; nothing below it is reachable from the surrounding
// application. Validation failures are reported synchronously and never
// partially applied.
type ConversationUseCase struct {
	registry    *ThreadRegistry
	store       *MessageStore
	contactRepo repository.ContactRepository
	listingRepo repository.ListingRepository
	presence    *presence.Tracker
	typing      *typing.Coordinator
	wsManager   *ws.Manager
	rateLimiter *ratelimit.RateLimiter
	typingTTL   time.Duration
}

func NewConversationUseCase(
	registry *ThreadRegistry,
	store *MessageStore,
	contactRepo repository.ContactRepository,
	listingRepo repository.ListingRepository,
	tracker *presence.Tracker,
	typingCoord *typing.Coordinator,
	wsManager *ws.Manager,
	typingTTL time.Duration,
) *ConversationUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ConversationUseCase{
		registry:    registry,
		store:       store,
		contactRepo: contactRepo,
		listingRepo: listingRepo,
		presence:    tracker,
		typing:      typingCoord,
		wsManager:   wsManager,
		rateLimiter: rateLimiter,
		typingTTL:   typingTTL,
	}
}

type OpenConversationInput struct {
	RecipientID    string
	ListingID      string
	InitialMessage string
}

type SendMessageInput struct {
	ThreadID string
	Content  string
	Type     string
	Metadata map[string]interface{}
}

type ThreadResponse struct {
	*entity.Thread
	UnreadCount  int             `json:"unread_count"`
	Listing      *entity.Listing `json:"listing,omitempty"`
	OtherContact *entity.Contact `json:"other_contact,omitempty"`
}

type MessageResponse struct {
	*entity.Message
	Sender *entity.Contact `json:"sender,omitempty"`
}

// OpenConversation finds or creates the thread between the viewer and the
// recipient, optionally scoped to a listing. Opening never consumes the
// unread badge: read state changes only through AcknowledgeRead, so a UI can
// preview a thread without marking it read.
func (uc *ConversationUseCase) OpenConversation(ctx context.Context, viewerID string, input OpenConversationInput) (*ThreadResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(viewerID, "open_conversation")
	if !allowed {
		logger.Warn("OpenConversation rate limited: user %s must wait %v", viewerID, waitTime)
		return nil, errors.TooManyRequests("Too many new conversations. Please wait before opening another")
	}

	var listing *entity.Listing
	if input.ListingID != "" {
		var err error
		listing, err = uc.listingRepo.GetByID(ctx, input.ListingID)
		if err != nil {
			return nil, err
		}
	}

	thread, created, err := uc.registry.FindOrCreate(ctx, viewerID, input.RecipientID, input.ListingID)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Info("Thread %s created for %s and %s (listing %q)", thread.ID, viewerID, input.RecipientID, input.ListingID)
	}

	// A contact is created the first time it is observed.
	uc.ensureContact(ctx, viewerID)
	uc.ensureContact(ctx, input.RecipientID)

	if input.InitialMessage != "" {
		if _, err := uc.SendMessage(ctx, viewerID, SendMessageInput{
			ThreadID: thread.ID,
			Content:  input.InitialMessage,
			Type:     entity.MessageTypeText,
		}); err != nil {
			return nil, err
		}
		thread, err = uc.registry.Get(ctx, thread.ID)
		if err != nil {
			return nil, err
		}
	}

	return uc.buildThreadResponse(ctx, thread, viewerID, listing)
}

// SendMessage appends a message to the thread on behalf of senderID and
// clears the sender's typing signal. The created message is returned for
// optimistic rendering by the caller.
func (uc *ConversationUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*MessageResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(senderID, "send_message")
	if !allowed {
		logger.Warn("SendMessage rate limited: user %s must wait %v", senderID, waitTime)
		uc.notifyUser(senderID, ws.NewEnvelope(ws.EventError, map[string]interface{}{
			"error":     "You are sending messages too quickly. Please slow down.",
			"wait_time": waitTime.Seconds(),
		}))
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message")
	}

	msgType := input.Type
	if msgType == "" {
		msgType = entity.MessageTypeText
	}
	if !entity.ValidMessageType(msgType) {
		return nil, errors.BadRequest("Unsupported message type", nil)
	}

	thread, err := uc.registry.Get(ctx, input.ThreadID)
	if err != nil {
		return nil, err
	}
	if !thread.HasParticipant(senderID) {
		return nil, errors.NotAParticipant(senderID, input.ThreadID)
	}

	metadata := input.Metadata
	if msgType == entity.MessageTypeOffer {
		if metadata == nil {
			metadata = make(map[string]interface{})
		}
		if _, ok := metadata["status"]; !ok {
			metadata["status"] = "pending"
		}
	}

	message, err := uc.store.Append(ctx, input.ThreadID, senderID, input.Content, msgType, metadata)
	if err != nil {
		return nil, err
	}

	// Sending implicitly ends the composing state.
	uc.typing.Clear(input.ThreadID, senderID)

	// If the other side has the thread open right now, the message is
	// delivered immediately and the sender gets a receipt.
	if uc.wsManager != nil && uc.wsManager.HasOnlineMember(input.ThreadID, senderID) {
		if err := uc.store.MarkDelivered(ctx, input.ThreadID, message.ID); err == nil {
			message.DeliveryState = entity.DeliveryDelivered
			uc.notifyUser(senderID, ws.NewEnvelope(ws.EventDeliveryReceipt, ws.DeliveryReceiptData{
				ThreadID:  input.ThreadID,
				MessageID: message.ID,
			}))
		}
	}

	sender, _ := uc.contactRepo.GetByID(ctx, senderID)

	uc.broadcastToThread(input.ThreadID, senderID, ws.NewEnvelope(ws.EventNewMessage, map[string]interface{}{
		"thread_id": input.ThreadID,
		"message":   message,
		"sender":    sender,
	}))
	uc.notifyParticipantsExcept(thread, senderID, ws.NewEnvelope(ws.EventThreadUpdate, map[string]interface{}{
		"thread_id":       input.ThreadID,
		"last_message":    message.Content,
		"last_message_at": message.CreatedAt.Format(time.RFC3339),
		"sender_id":       senderID,
	}))

	return &MessageResponse{Message: message, Sender: sender}, nil
}

// AcknowledgeRead marks every message the viewer has not read yet as read
// and notifies the other participant.
func (uc *ConversationUseCase) AcknowledgeRead(ctx context.Context, threadID, viewerID string) error {
	thread, err := uc.registry.Get(ctx, threadID)
	if err != nil {
		return err
	}
	if !thread.HasParticipant(viewerID) {
		return errors.NotAParticipant(viewerID, threadID)
	}

	marked, err := uc.store.MarkAllRead(ctx, threadID, viewerID)
	if err != nil {
		return err
	}

	if marked > 0 {
		uc.broadcastToThread(threadID, viewerID, ws.NewEnvelope(ws.EventReadReceipt, ws.ReadReceiptData{
			ThreadID: threadID,
			ReaderID: viewerID,
		}))
	}
	return nil
}

// MarkDelivered records a transport delivery acknowledgement for a single
// message. Late or repeated acknowledgements are no-ops.
func (uc *ConversationUseCase) MarkDelivered(ctx context.Context, threadID, messageID string) error {
	return uc.store.MarkDelivered(ctx, threadID, messageID)
}

// SetTyping records or clears a composing signal. Best-effort: unknown
// threads and non-participants are silent no-ops, and the signal expires on
// its own even without an explicit stop.
func (uc *ConversationUseCase) SetTyping(ctx context.Context, threadID, participantID string, isTyping bool) {
	if allowed, _ := uc.rateLimiter.Allow(participantID, "typing"); !allowed {
		return
	}

	thread, err := uc.registry.Get(ctx, threadID)
	if err != nil || !thread.HasParticipant(participantID) {
		return
	}

	data := ws.TypingData{
		ThreadID:      threadID,
		ParticipantID: participantID,
		Typing:        isTyping,
	}
	if isTyping {
		uc.typing.Set(threadID, participantID)
		data.ExpiresAt = time.Now().Add(uc.typingTTL).UTC().Format(time.RFC3339)
	} else {
		uc.typing.Clear(threadID, participantID)
	}

	uc.broadcastToThread(threadID, participantID, ws.NewEnvelope(ws.EventTyping, data))
}

// ActiveTypers returns the participants currently composing in a thread.
func (uc *ConversationUseCase) ActiveTypers(threadID string) []string {
	return uc.typing.ActiveTypers(threadID)
}

// ListThreads returns the viewer's conversations, most recent activity
// first, each with the viewer's unread count. Archived threads are skipped.
func (uc *ConversationUseCase) ListThreads(ctx context.Context, viewerID string, limit, offset int) ([]*ThreadResponse, int64, error) {
	threads, total, err := uc.registry.ListForParticipant(ctx, viewerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*ThreadResponse, 0, len(threads))
	for _, thread := range threads {
		if thread.ArchivedFor(viewerID) {
			continue
		}
		resp, err := uc.buildThreadResponse(ctx, thread, viewerID, nil)
		if err != nil {
			return nil, 0, err
		}
		responses = append(responses, resp)
	}
	return responses, total, nil
}

// GetThread returns a single conversation with the viewer's unread count.
func (uc *ConversationUseCase) GetThread(ctx context.Context, threadID, viewerID string) (*ThreadResponse, error) {
	thread, err := uc.registry.Get(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !thread.HasParticipant(viewerID) {
		return nil, errors.NotAParticipant(viewerID, threadID)
	}
	return uc.buildThreadResponse(ctx, thread, viewerID, nil)
}

// GetMessages returns a page of the thread's log in append order.
func (uc *ConversationUseCase) GetMessages(ctx context.Context, threadID, viewerID string, limit, offset int) ([]*entity.Message, int64, error) {
	thread, err := uc.registry.Get(ctx, threadID)
	if err != nil {
		return nil, 0, err
	}
	if !thread.HasParticipant(viewerID) {
		return nil, 0, errors.NotAParticipant(viewerID, threadID)
	}
	return uc.store.ListMessages(ctx, threadID, limit, offset)
}

// ArchiveThread hides a thread from the viewer's listing. The thread and its
// log are untouched; the other participant's view is unaffected.
func (uc *ConversationUseCase) ArchiveThread(ctx context.Context, threadID, viewerID string, archived bool) error {
	thread, err := uc.registry.Get(ctx, threadID)
	if err != nil {
		return err
	}
	if !thread.HasParticipant(viewerID) {
		return errors.NotAParticipant(viewerID, threadID)
	}
	return uc.registry.SetArchived(ctx, threadID, viewerID, archived)
}

// AcceptOffer resolves a pending price-offer message. Only the participant
// who received the offer may resolve it.
func (uc *ConversationUseCase) AcceptOffer(ctx context.Context, threadID, messageID, userID string) error {
	return uc.resolveOffer(ctx, threadID, messageID, userID, "accepted")
}

// RejectOffer declines a pending price-offer message.
func (uc *ConversationUseCase) RejectOffer(ctx context.Context, threadID, messageID, userID string) error {
	return uc.resolveOffer(ctx, threadID, messageID, userID, "rejected")
}

func (uc *ConversationUseCase) resolveOffer(ctx context.Context, threadID, messageID, userID, status string) error {
	thread, err := uc.registry.Get(ctx, threadID)
	if err != nil {
		return err
	}
	if !thread.HasParticipant(userID) {
		return errors.NotAParticipant(userID, threadID)
	}

	message, err := uc.store.GetMessage(ctx, threadID, messageID)
	if err != nil {
		return err
	}
	if message.SenderID == userID {
		return errors.Forbidden("Only the offer recipient can accept or reject it", nil)
	}

	updated, err := uc.store.SetOfferStatus(ctx, threadID, messageID, status, userID)
	if err != nil {
		return err
	}

	uc.broadcastToThread(threadID, "", ws.NewEnvelope(ws.EventThreadUpdate, map[string]interface{}{
		"thread_id":  threadID,
		"message_id": messageID,
		"offer":      updated.Metadata,
	}))
	return nil
}

// ContactPresence reports a contact's advisory online state.
func (uc *ConversationUseCase) ContactPresence(ctx context.Context, contactID string) (*entity.Contact, error) {
	contact, err := uc.contactRepo.GetByID(ctx, contactID)
	if err != nil {
		return nil, err
	}
	uc.overlayPresence(contact)
	return contact, nil
}

func (uc *ConversationUseCase) buildThreadResponse(ctx context.Context, thread *entity.Thread, viewerID string, listing *entity.Listing) (*ThreadResponse, error) {
	unread, err := uc.store.UnreadCountFor(ctx, thread.ID, viewerID)
	if err != nil {
		return nil, err
	}

	if listing == nil && thread.ListingID != "" {
		listing, _ = uc.listingRepo.GetByID(ctx, thread.ListingID)
	}

	var other *entity.Contact
	if otherID := thread.OtherParticipant(viewerID); otherID != "" {
		other, _ = uc.contactRepo.GetByID(ctx, otherID)
		if other != nil {
			uc.overlayPresence(other)
		}
	}

	return &ThreadResponse{
		Thread:       thread,
		UnreadCount:  unread,
		Listing:      listing,
		OtherContact: other,
	}, nil
}

func (uc *ConversationUseCase) overlayPresence(contact *entity.Contact) {
	contact.Online = uc.presence.IsOnline(contact.ID)
	if lastSeen, ok := uc.presence.LastSeen(contact.ID); ok {
		contact.LastSeen = lastSeen
	}
}

func (uc *ConversationUseCase) ensureContact(ctx context.Context, contactID string) {
	if _, err := uc.contactRepo.GetByID(ctx, contactID); err == nil {
		return
	}
	contact := &entity.Contact{
		ID:          contactID,
		DisplayName: contactID,
	}
	if err := uc.contactRepo.Save(ctx, contact); err != nil {
		logger.Warn("Failed to create contact %s: %v", contactID, err)
	}
}

func (uc *ConversationUseCase) broadcastToThread(threadID, exceptUserID string, envelope ws.Envelope) {
	if uc.wsManager == nil {
		return
	}
	uc.wsManager.BroadcastToThread(threadID, ws.Marshal(envelope), exceptUserID)
}

func (uc *ConversationUseCase) notifyUser(userID string, envelope ws.Envelope) {
	if uc.wsManager == nil {
		return
	}
	uc.wsManager.SendToUser(userID, ws.Marshal(envelope))
}

func (uc *ConversationUseCase) notifyParticipantsExcept(thread *entity.Thread, exceptUserID string, envelope ws.Envelope) {
	if uc.wsManager == nil {
		return
	}
	payload := ws.Marshal(envelope)
	for _, participantID := range thread.Participants {
		if participantID != exceptUserID {
			uc.wsManager.SendToUser(participantID, payload)
		}
	}
}
