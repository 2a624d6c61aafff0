package arq

import "github.com/sarchlab/arqsim/sim"

// Stats summarizes a run.
type Stats struct {
	FramesSent      int
	FramesLost      int
	Retransmissions int
	Timeouts        int

	// AcksSent counts both ACKs and NACKs, as they share the ordinals of the
	// ack drop list.
	AcksSent  int
	AcksLost  int
	NacksSent int

	EventsProcessed int
	EndTime         sim.VTimeInSec
}

// State is a snapshot of an engine, safe to read while the engine runs.
type State struct {
	Now            sim.VTimeInSec
	SenderStart    int
	ReceiverStart  int
	SenderWindow   string
	ReceiverWindow string
	InFlight       []int
	PendingEvents  int
	ParkedEvents   int
	Finished       bool
	Stats          Stats
}
