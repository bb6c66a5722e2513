// Package misbehavior classifies protocol-level violations committed by a
// peer into a fixed ban-score, the currency the sync core reports to the
// peer manager (pkg/peermgr) via AdjustScore. It never decides to disconnect
// a peer itself; scoring and bans are entirely the peer manager's call.
package misbehavior

import "fmt"

// Kind enumerates the wire-protocol violations the sync core can detect on
// its own (as opposed to ChainstateError, whose score originates upstream).
type Kind int

const (
	// MessageTooLarge means a peer sent a list exceeding a configured
	// bound (header count, locator length, block request count). The
	// encoded size of a message is not checked.
	MessageTooLarge Kind = iota
	// DisconnectedHeaders means a HeaderList failed internal connectivity
	// (non-contiguous) or connection-to-local-state checks.
	DisconnectedHeaders
	// UnsolicitedBlock means a BlockResponse arrived for an id the peer
	// was never asked for.
	UnsolicitedBlock
	// Stalling means an in-flight block request exceeded
	// sync_stalling_timeout without a response.
	Stalling
)

func (k Kind) String() string {
	switch k {
	case MessageTooLarge:
		return "MessageTooLarge"
	case DisconnectedHeaders:
		return "DisconnectedHeaders"
	case UnsolicitedBlock:
		return "UnsolicitedBlock"
	case Stalling:
		return "Stalling"
	default:
		return "Unknown"
	}
}

// Score returns the fixed ban-score penalty for k. Values are deliberately
// small multiples of ten: a handful of incidents should accumulate towards a
// ban, a single one should not.
func (k Kind) Score() int {
	switch k {
	case MessageTooLarge:
		return 20
	case DisconnectedHeaders:
		return 20
	case UnsolicitedBlock:
		return 20
	case Stalling:
		return 10
	default:
		return 0
	}
}

// ProtocolError is the error type returned by the sync core's message
// handlers whenever a wire-protocol violation is detected. It always carries
// a ban-score; the dispatcher forwards it to the peer manager verbatim and
// otherwise treats handling of the message as complete (not fatal).
type ProtocolError struct {
	Kind Kind
	Msg  string
}

// New builds a ProtocolError of the given kind with a descriptive message.
func New(kind Kind, format string, args ...any) *ProtocolError {
	return &ProtocolError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Score reports the ban-score the peer manager should apply for this error.
func (e *ProtocolError) Score() int {
	return e.Kind.Score()
}
