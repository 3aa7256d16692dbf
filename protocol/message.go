// Package protocol implements the store's wire format: length-prefixed
// framing, fixed-layout request/reply encoding, and the ancillary-data
// helpers that let a file descriptor ride along with a reply.
//
// Grounded on the teacher's protocol/frame_codec.go fixed-header,
// size-limited encoding style, generalized from a WebSocket frame to
// the store's (type, length, payload) envelope.
package protocol

// MessageType identifies the kind of request or disconnect notice
// carried in a frame's header. Numeric values are significant for
// wire compatibility and are not renumbered.
type MessageType int64

const (
	Create    MessageType = 128
	Get       MessageType = 129
	Contains  MessageType = 130
	Seal      MessageType = 131
	Delete    MessageType = 132
	Transfer  MessageType = 133 // unused by the core
	Data      MessageType = 134 // unused by the core
	Subscribe MessageType = 135
	Disconnect MessageType = 136
)

func (t MessageType) String() string {
	switch t {
	case Create:
		return "CREATE"
	case Get:
		return "GET"
	case Contains:
		return "CONTAINS"
	case Seal:
		return "SEAL"
	case Delete:
		return "DELETE"
	case Transfer:
		return "TRANSFER"
	case Data:
		return "DATA"
	case Subscribe:
		return "SUBSCRIBE"
	case Disconnect:
		return "DISCONNECT"
	default:
		return "UNKNOWN"
	}
}
