// Package tracing collects the records produced by a simulation run and
// writes them to files or databases.
package tracing

import (
	"fmt"

	"github.com/sarchlab/arqsim/sim"
)

// Entity names the side of the link that produced a record.
type Entity string

// The two sides of the link.
const (
	Sender   Entity = "sender"
	Receiver Entity = "receiver"
)

// HookPosRecord is triggered every time a record is produced. The item of the
// hook context is the Record.
var HookPosRecord = &sim.HookPos{Name: "Record"}

// A Record is one line of the trace.
type Record struct {
	Time   sim.VTimeInSec `json:"time"`
	Entity Entity         `json:"entity"`
	Action string         `json:"action"`
	SeqNum int            `json:"seq_num"`
	Window string         `json:"window"`
}

func (r Record) String() string {
	return fmt.Sprintf("%.6f %s %s seq=%d window=%s",
		r.Time, r.Entity, r.Action, r.SeqNum, r.Window)
}
