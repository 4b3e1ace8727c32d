package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"campusmarket/pkg/errors"
)

func TestThreadKeyOrderIndependent(t *testing.T) {
	k1, err := ThreadKey("u1", "u2", "item-42")
	assert.NoError(t, err)

	k2, err := ThreadKey("u2", "u1", "item-42")
	assert.NoError(t, err)

	assert.Equal(t, k1, k2)
}

func TestThreadKeyDistinguishesListings(t *testing.T) {
	general, err := ThreadKey("u1", "u2", "")
	assert.NoError(t, err)

	scoped, err := ThreadKey("u1", "u2", "item-42")
	assert.NoError(t, err)

	other, err := ThreadKey("u1", "u2", "item-99")
	assert.NoError(t, err)

	assert.NotEqual(t, general, scoped)
	assert.NotEqual(t, scoped, other)
}

func TestThreadKeyInvalidParticipants(t *testing.T) {
	_, err := ThreadKey("u1", "u1", "")
	assert.True(t, errors.Is(err, "INVALID_PARTICIPANTS"))

	_, err = ThreadKey("", "u2", "")
	assert.True(t, errors.Is(err, "INVALID_PARTICIPANTS"))

	_, err = ThreadKey("u1", "", "")
	assert.True(t, errors.Is(err, "INVALID_PARTICIPANTS"))
}

func TestOtherParticipant(t *testing.T) {
	thread := &Thread{Participants: []string{"u1", "u2"}}

	assert.Equal(t, "u2", thread.OtherParticipant("u1"))
	assert.Equal(t, "u1", thread.OtherParticipant("u2"))
}

func TestSetArchived(t *testing.T) {
	thread := &Thread{Participants: []string{"u1", "u2"}}

	thread.SetArchived("u1", true)
	assert.True(t, thread.ArchivedFor("u1"))
	assert.False(t, thread.ArchivedFor("u2"))

	// Repeated archive does not duplicate the entry.
	thread.SetArchived("u1", true)
	assert.Len(t, thread.ArchivedBy, 1)

	thread.SetArchived("u1", false)
	assert.False(t, thread.ArchivedFor("u1"))
}
