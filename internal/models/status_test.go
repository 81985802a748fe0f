package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPOStatusTransitions(t *testing.T) {
	cases := []struct {
		from    POStatus
		to      POStatus
		allowed bool
	}{
		{POStatusDraft, POStatusSent, true},
		{POStatusSent, POStatusAcknowledged, true},
		{POStatusAcknowledged, POStatusReceived, true},
		{POStatusDraft, POStatusCancelled, true},
		{POStatusSent, POStatusCancelled, true},
		{POStatusAcknowledged, POStatusCancelled, true},

		// no skipping forward
		{POStatusDraft, POStatusAcknowledged, false},
		{POStatusDraft, POStatusReceived, false},
		{POStatusSent, POStatusReceived, false},

		// no going backwards
		{POStatusSent, POStatusDraft, false},
		{POStatusAcknowledged, POStatusSent, false},

		// terminal states never move again
		{POStatusReceived, POStatusCancelled, false},
		{POStatusReceived, POStatusDraft, false},
		{POStatusCancelled, POStatusSent, false},
		{POStatusCancelled, POStatusReceived, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestPOStatusTerminal(t *testing.T) {
	assert.True(t, POStatusReceived.IsTerminal())
	assert.True(t, POStatusCancelled.IsTerminal())
	assert.False(t, POStatusDraft.IsTerminal())
	assert.False(t, POStatusSent.IsTerminal())
	assert.False(t, POStatusAcknowledged.IsTerminal())
}

func TestPOStatusCanReceive(t *testing.T) {
	assert.False(t, POStatusDraft.CanReceive())
	assert.True(t, POStatusSent.CanReceive())
	assert.True(t, POStatusAcknowledged.CanReceive())
	assert.False(t, POStatusReceived.CanReceive())
	assert.False(t, POStatusCancelled.CanReceive())
}

func TestParsePOStatus(t *testing.T) {
	status, err := ParsePOStatus("acknowledged")
	assert.NoError(t, err)
	assert.Equal(t, POStatusAcknowledged, status)

	_, err = ParsePOStatus("APPROVED")
	assert.Error(t, err)

	_, err = ParsePOStatus("")
	assert.Error(t, err)
}

func TestParseMovementType(t *testing.T) {
	for _, raw := range []string{"receipt", "adjustment", "sale", "return", "transfer", "count_correction"} {
		mt, err := ParseMovementType(raw)
		assert.NoError(t, err, raw)
		assert.Equal(t, MovementType(raw), mt)
	}

	_, err := ParseMovementType("shrinkage")
	assert.Error(t, err)

	_, err = ParseMovementType("RECEIPT")
	assert.Error(t, err)
}
