// Package ws provides lifecycle state tracking for streaming connections.
package ws

import "sync/atomic"

// ConnState is the lifecycle state of one streaming connection. The only
// path into StateOpen is a successful connect; a connection leaves StateOpen
// exactly once, into StateClosed (graceful) or StateFailed (transport error).
type ConnState int32

const (
	// StateConnecting indicates the handshake is in progress.
	StateConnecting ConnState = iota
	// StateOpen indicates frames can be read.
	StateOpen
	// StateClosed indicates a clean shutdown, locally or by the peer.
	StateClosed
	// StateFailed indicates the transport failed mid-stream.
	StateFailed
)

// String returns the string representation of the connection state.
func (s ConnState) String() string {
	return [...]string{
		"connecting",
		"open",
		"closed",
		"failed",
	}[s]
}

// State provides atomic access to a ConnState value.
type State struct {
	state atomic.Int32
}

// Load returns the current connection state.
func (s *State) Load() ConnState {
	return ConnState(s.state.Load())
}

// Store sets the connection state.
func (s *State) Store(state ConnState) {
	s.state.Store(int32(state))
}

// CompareAndSwap transitions from old to new if the current state is old,
// reporting whether the transition happened.
func (s *State) CompareAndSwap(old, new ConnState) bool {
	return s.state.CompareAndSwap(int32(old), int32(new))
}
