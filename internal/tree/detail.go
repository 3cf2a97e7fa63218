package tree

import "fmt"

// DetailStatus enumerates the lifecycle of a node's detail text.
type DetailStatus int

const (
	DetailUnresolved DetailStatus = iota
	DetailPending
	DetailReady
	DetailFailed
)

func (s DetailStatus) String() string {
	switch s {
	case DetailUnresolved:
		return "unresolved"
	case DetailPending:
		return "pending"
	case DetailReady:
		return "ready"
	case DetailFailed:
		return "failed"
	default:
		return fmt.Sprintf("DetailStatus(%d)", int(s))
	}
}

// DetailState is an immutable snapshot of a node's detail text. Values are
// published whole through an atomic pointer and never modified afterwards.
type DetailState struct {
	Status DetailStatus
	// Generation is the view generation that requested the computation while
	// the state is Pending.
	Generation uint64
	// Text holds the computed text when Ready and the error surrogate when Failed.
	Text string

	epoch uint64
}

// Resolved reports whether the state is memoized (Ready or Failed).
func (s DetailState) Resolved() bool {
	return s.Status == DetailReady || s.Status == DetailFailed
}
