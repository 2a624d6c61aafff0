package tracing

// Labels of the trace records.
const (
	ActionStartSend      = "Start to send frame"
	ActionFrameSent      = "Frame completely sent"
	ActionFrameLost      = "Frame lost"
	ActionTimeout        = "Timeout"
	ActionRetransmit     = "Retransmit frame"
	ActionAckReceived    = "ACK received"
	ActionNackReceived   = "NACK received"
	ActionFrameReceived  = "Frame received"
	ActionFrameAccepted  = "Frame accepted"
	ActionFrameBuffered  = "Frame buffered"
	ActionFrameDiscarded = "Frame discarded"
	ActionAckSent        = "ACK sent"
	ActionAckLost        = "ACK lost"
	ActionNackSent       = "NACK sent"
	ActionNackLost       = "NACK lost"
)
