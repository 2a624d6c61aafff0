package arq

import "fmt"

// Kind identifies what an event represents. The order of the constants is the
// order in which same-time events are processed.
type Kind int

// The event kinds, in tie-break order.
const (
	KindReceiveAck Kind = iota
	KindReceiveNack
	KindTransFrameEnd
	KindTimeout
	KindSendFrame
	KindTransAckEnd
	KindReceiveFrame
	KindProcAckTime
	KindTransNackEnd
)

var kindNames = [...]string{
	KindReceiveAck:    "RECEIVE_ACK",
	KindReceiveNack:   "RECEIVE_NACK",
	KindTransFrameEnd: "TRANS_FRAME_END",
	KindTimeout:       "TIMEOUT",
	KindSendFrame:     "SEND_FRAME",
	KindTransAckEnd:   "TRANS_ACK_END",
	KindReceiveFrame:  "RECEIVE_FRAME",
	KindProcAckTime:   "PROC_ACK_TIME",
	KindTransNackEnd:  "TRANS_NACK_END",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}
