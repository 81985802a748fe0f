package models

import "fmt"

// MovementType classifies a ledger entry. The set is closed; unknown values
// are rejected at the operation boundary.
type MovementType string

const (
	MovementReceipt         MovementType = "receipt"
	MovementAdjustment      MovementType = "adjustment"
	MovementSale            MovementType = "sale"
	MovementReturn          MovementType = "return"
	MovementTransfer        MovementType = "transfer"
	MovementCountCorrection MovementType = "count_correction"
)

// ParseMovementType validates a raw movement type string.
func ParseMovementType(raw string) (MovementType, error) {
	switch MovementType(raw) {
	case MovementReceipt, MovementAdjustment, MovementSale,
		MovementReturn, MovementTransfer, MovementCountCorrection:
		return MovementType(raw), nil
	}
	return "", fmt.Errorf("unknown movement type: %q", raw)
}

// POStatus is the purchase order lifecycle state.
type POStatus string

const (
	POStatusDraft        POStatus = "draft"
	POStatusSent         POStatus = "sent"
	POStatusAcknowledged POStatus = "acknowledged"
	POStatusReceived     POStatus = "received"
	POStatusCancelled    POStatus = "cancelled"
)

// ParsePOStatus validates a raw status string.
func ParsePOStatus(raw string) (POStatus, error) {
	switch POStatus(raw) {
	case POStatusDraft, POStatusSent, POStatusAcknowledged,
		POStatusReceived, POStatusCancelled:
		return POStatus(raw), nil
	}
	return "", fmt.Errorf("unknown purchase order status: %q", raw)
}

// IsTerminal reports whether the status admits no further transitions.
func (s POStatus) IsTerminal() bool {
	return s == POStatusReceived || s == POStatusCancelled
}

// CanTransitionTo reports whether a single-step transition to target is
// permitted: draft → sent → acknowledged → received is the linear happy path,
// cancelled is reachable from any non-terminal state, and no transition
// skips forward.
func (s POStatus) CanTransitionTo(target POStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if target == POStatusCancelled {
		return true
	}
	switch s {
	case POStatusDraft:
		return target == POStatusSent
	case POStatusSent:
		return target == POStatusAcknowledged
	case POStatusAcknowledged:
		return target == POStatusReceived
	}
	return false
}

// CanReceive reports whether deliveries may be recorded against the order.
func (s POStatus) CanReceive() bool {
	return s == POStatusSent || s == POStatusAcknowledged
}
