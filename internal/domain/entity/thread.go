package entity

import (
	"time"

	"campusmarket/pkg/errors"
)

// generalInquiryKey stands in for "no listing" in the dedup key so that a
// pair's general conversation and their per-listing conversations are
// distinct threads.
const generalInquiryKey = "-"

type Thread struct {
	ID            string         `json:"id" firestore:"id"`
	Key           string         `json:"-" firestore:"key"`
	Participants  []string       `json:"participants" firestore:"participants"`
	ListingID     string         `json:"listing_id,omitempty" firestore:"listingId,omitempty"`
	LastMessage   string         `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageAt time.Time      `json:"last_message_at" firestore:"lastMessageAt"`
	ArchivedBy    []string       `json:"archived_by,omitempty" firestore:"archivedBy,omitempty"`
	CreatedAt     time.Time      `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time      `json:"updated_at" firestore:"updatedAt"`
}

// ThreadKey builds the order-independent dedup key for a participant pair and
// an optional listing id. At most one thread may ever exist per key.
func ThreadKey(participantA, participantB, listingID string) (string, error) {
	if participantA == "" || participantB == "" {
		return "", errors.InvalidParticipants("both participant ids are required")
	}
	if participantA == participantB {
		return "", errors.InvalidParticipants("a conversation requires two distinct participants")
	}

	lo, hi := participantA, participantB
	if lo > hi {
		lo, hi = hi, lo
	}

	listing := listingID
	if listing == "" {
		listing = generalInquiryKey
	}

	return lo + "|" + hi + "#" + listing, nil
}

// HasParticipant reports whether userID is one of the thread's two participants.
func (t *Thread) HasParticipant(userID string) bool {
	for _, p := range t.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the participant that is not userID.
func (t *Thread) OtherParticipant(userID string) string {
	for _, p := range t.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

// ArchivedFor reports whether userID has archived the thread. Archiving is a
// per-viewer visibility flag; threads are never deleted.
func (t *Thread) ArchivedFor(userID string) bool {
	for _, p := range t.ArchivedBy {
		if p == userID {
			return true
		}
	}
	return false
}

// SetArchived adds or removes userID from the archived set.
func (t *Thread) SetArchived(userID string, archived bool) {
	if archived == t.ArchivedFor(userID) {
		return
	}
	if archived {
		t.ArchivedBy = append(t.ArchivedBy, userID)
		return
	}
	kept := t.ArchivedBy[:0]
	for _, p := range t.ArchivedBy {
		if p != userID {
			kept = append(kept, p)
		}
	}
	t.ArchivedBy = kept
}
