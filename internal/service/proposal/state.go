// Package proposal tracks extracted calendar events until a user confirms
// or rejects them.
package proposal

import (
	"errors"
	"fmt"
)

// State represents the lifecycle state of a proposal.
type State int

const (
	// StatePending - Proposal awaits a user decision.
	StatePending State = iota
	// StateConfirmed - User accepted the proposal; the event was handed off.
	StateConfirmed
	// StateRejected - User discarded the proposal.
	StateRejected
	// StateExpired - No decision arrived before the deadline.
	StateExpired
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateConfirmed:
		return "CONFIRMED"
	case StateRejected:
		return "REJECTED"
	case StateExpired:
		return "EXPIRED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(b []byte) error {
	for _, st := range []State{StatePending, StateConfirmed, StateRejected, StateExpired} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown proposal state %q", b)
}

// IsTerminal returns true for every state but PENDING.
func (s State) IsTerminal() bool {
	return s != StatePending
}

// Errors returned by the registry.
var (
	ErrNotFound        = errors.New("proposal not found")
	ErrAlreadyResolved = errors.New("proposal already resolved")
	ErrExpired         = errors.New("proposal expired")
)

// transition moves a proposal out of PENDING.
//
// State transitions:
//
//	PENDING → CONFIRMED
//	   │  └──→ REJECTED
//	   └─────→ EXPIRED
//
// Terminal states never change again.
func transition(from, to State) error {
	switch from {
	case StatePending:
		if to == StatePending {
			return fmt.Errorf("invalid transition %v -> %v", from, to)
		}
		return nil
	case StateExpired:
		return ErrExpired
	case StateConfirmed, StateRejected:
		return ErrAlreadyResolved
	default:
		return fmt.Errorf("unexpected state: %v", from)
	}
}
