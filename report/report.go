// Package report renders the result of a run for the console.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sarchlab/arqsim/arq"
	"github.com/sarchlab/arqsim/config"
	"github.com/sarchlab/arqsim/sim"
	"github.com/sarchlab/arqsim/tracing"
)

// A Report is everything known about a finished run.
type Report struct {
	Config  config.Config
	Records []tracing.Record
	Stats   arq.Stats

	// LinkBusyTime is the time the link spent carrying frames.
	LinkBusyTime sim.VTimeInSec

	// SkipTrace leaves the trace table out.
	SkipTrace bool
}

// Efficiency returns the share of the run during which the link carried
// frames that were sent for the first time.
func (r Report) Efficiency() float64 {
	if r.Stats.EndTime <= 0 {
		return 0
	}

	useful := sim.VTimeInSec(r.Config.NumFrames) * r.Config.Timing.FrameTransmission

	return float64(useful / r.Stats.EndTime)
}

// Utilization returns the share of the run during which the link was busy.
func (r Report) Utilization() float64 {
	if r.Stats.EndTime <= 0 {
		return 0
	}

	return float64(r.LinkBusyTime / r.Stats.EndTime)
}

// Write writes the configuration, the trace and the summary.
func Write(w io.Writer, r Report) error {
	if err := WriteConfig(w, r.Config); err != nil {
		return err
	}

	if !r.SkipTrace {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}

		if err := WriteTrace(w, r.Records); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	return WriteSummary(w, r)
}

// WriteConfig writes the simulated configuration.
func WriteConfig(w io.Writer, c config.Config) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Protocol:\t%s\n", c.Protocol)
	fmt.Fprintf(tw, "Sequence numbers:\t%d (%d bits)\n",
		c.SeqSpace(), c.BitsForNumbering)
	fmt.Fprintf(tw, "Frames:\t%d\n", c.NumFrames)
	fmt.Fprintf(tw, "Windows:\tsender %d, receiver %d\n",
		c.SenderWindow, c.ReceiverWindow)
	fmt.Fprintf(tw, "Frames lost:\t%s\n", ordinals(c.FramesLost))
	fmt.Fprintf(tw, "Acks lost:\t%s\n", ordinals(c.AcksLost))
	fmt.Fprintf(tw, "Timing:\tframe %s+%s, processing %s, ack %s+%s, timeout %s\n",
		seconds(c.Timing.FrameTransmission),
		seconds(c.Timing.FramePropagation),
		seconds(c.Timing.Processing),
		seconds(c.Timing.AckTransmission),
		seconds(c.Timing.AckPropagation),
		seconds(c.Timing.Timeout))

	return tw.Flush()
}

// WriteTrace writes the records as a table.
func WriteTrace(w io.Writer, records []tracing.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "TIME\tENTITY\tACTION\tSEQ\tWINDOW")

	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			seconds(r.Time), r.Entity, r.Action, r.SeqNum, r.Window)
	}

	return tw.Flush()
}

// WriteSummary writes the statistics of the run.
func WriteSummary(w io.Writer, r Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	s := r.Stats

	fmt.Fprintf(tw, "Frames sent:\t%d\n", s.FramesSent)
	fmt.Fprintf(tw, "Frames lost:\t%d\n", s.FramesLost)
	fmt.Fprintf(tw, "Retransmissions:\t%d\n", s.Retransmissions)
	fmt.Fprintf(tw, "Timeouts:\t%d\n", s.Timeouts)
	fmt.Fprintf(tw, "Acks sent:\t%d (%d NACK)\n", s.AcksSent, s.NacksSent)
	fmt.Fprintf(tw, "Acks lost:\t%d\n", s.AcksLost)
	fmt.Fprintf(tw, "Events:\t%d\n", s.EventsProcessed)
	fmt.Fprintf(tw, "Completion time:\t%s\n", seconds(s.EndTime))
	fmt.Fprintf(tw, "Link utilization:\t%.1f%%\n", 100*r.Utilization())
	fmt.Fprintf(tw, "Efficiency:\t%.1f%%\n", 100*r.Efficiency())

	return tw.Flush()
}

func seconds(t sim.VTimeInSec) string {
	return fmt.Sprintf("%gs", float64(t))
}

func ordinals(list []int) string {
	if len(list) == 0 {
		return "none"
	}

	s := make([]string, len(list))
	for i, n := range list {
		s[i] = fmt.Sprint(n)
	}

	return strings.Join(s, ", ")
}
