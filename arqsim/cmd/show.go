package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/sarchlab/arqsim/datarecording"
	"github.com/sarchlab/arqsim/report"
	"github.com/sarchlab/arqsim/simulation"
	"github.com/sarchlab/arqsim/tracing"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show DB",
	Short: "Print a run recorded with `run --db`.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		offset, _ := cmd.Flags().GetInt("offset")
		limit, _ := cmd.Flags().GetInt("limit")
		out := cmd.OutOrStdout()

		records, total, err := tracing.NewDBTraceReader(reader).
			ListRecords(cmd.Context(), offset, limit)
		if err != nil {
			return err
		}

		if err := report.WriteTrace(out, records); err != nil {
			return err
		}

		fmt.Fprintf(out, "(%d of %d records)\n\n", len(records), total)

		summary, err := simulation.ReadSummary(cmd.Context(), reader)
		if err != nil {
			return err
		}

		return writeSummary(cmd, summary)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Int("offset", 0, "Skip the first records")
	showCmd.Flags().Int("limit", 0, "Print at most this many records")
}

func writeSummary(cmd *cobra.Command, s simulation.Summary) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Protocol:\t%s\n", s.Protocol)
	fmt.Fprintf(tw, "Frames:\t%d\n", s.NumFrames)
	fmt.Fprintf(tw, "Frames sent:\t%d\n", s.FramesSent)
	fmt.Fprintf(tw, "Frames lost:\t%d\n", s.FramesLost)
	fmt.Fprintf(tw, "Retransmissions:\t%d\n", s.Retransmissions)
	fmt.Fprintf(tw, "Timeouts:\t%d\n", s.Timeouts)
	fmt.Fprintf(tw, "Acks sent:\t%d (%d NACK)\n", s.AcksSent, s.NacksSent)
	fmt.Fprintf(tw, "Acks lost:\t%d\n", s.AcksLost)
	fmt.Fprintf(tw, "Events:\t%d\n", s.EventsProcessed)
	fmt.Fprintf(tw, "Completion time:\t%gs\n", s.EndTime)
	fmt.Fprintf(tw, "Link utilization:\t%.1f%%\n", 100*s.Utilization)
	fmt.Fprintf(tw, "Efficiency:\t%.1f%%\n", 100*s.Efficiency)

	return tw.Flush()
}
