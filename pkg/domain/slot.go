package domain

// SlotID is the sequential identity assigned to a certificate at issuance.
// Slot 0 is reserved as the "absent" sentinel; valid slots start at 1. Slots
// are never reused and never transferred.
type SlotID uint64

// SlotAbsent is the reserved sentinel for "no slot allocated".
const SlotAbsent SlotID = 0

// IsValid reports whether the slot refers to an allocatable identity.
func (s SlotID) IsValid() bool {
	return s != SlotAbsent
}
