// Package simulation assembles an ARQ engine with its trace outputs, data
// recorder and monitor.
package simulation

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/sarchlab/arqsim/arq"
	"github.com/sarchlab/arqsim/config"
	"github.com/sarchlab/arqsim/datarecording"
	"github.com/sarchlab/arqsim/monitoring"
	"github.com/sarchlab/arqsim/report"
	"github.com/sarchlab/arqsim/tracing"
)

// SummaryTableName is the table that holds the statistics of a run in the
// recorded database.
const SummaryTableName = "summary"

// Summary is the row recorded in the summary table.
type Summary struct {
	Protocol        string
	NumFrames       int
	FramesSent      int
	FramesLost      int
	Retransmissions int
	Timeouts        int
	AcksSent        int
	AcksLost        int
	NacksSent       int
	EventsProcessed int
	EndTime         float64
	Efficiency      float64
	Utilization     float64
}

// A Simulation is a single run of an ARQ engine and everything that observes
// it.
type Simulation struct {
	id     string
	cfg    config.Config
	logger zerolog.Logger

	engine   *arq.Engine
	trace    *tracing.Trace
	linkBusy *tracing.LinkBusyTracer

	files        []io.Closer
	filePaths    []string
	dataRecorder datarecording.DataRecorder

	monitor    *monitoring.Monitor
	metrics    *monitoring.Metrics
	progress   *monitoring.ProgressBar
	monitorURL string

	terminated bool
}

type pathWriter interface {
	tracing.TraceWriter
	Path() string
}

func (s *Simulation) addFileWriter(w pathWriter, c io.Closer) {
	s.trace.AddWriter(w)
	s.files = append(s.files, c)
	s.filePaths = append(s.filePaths, w.Path())
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Config returns the simulated configuration.
func (s *Simulation) Config() config.Config {
	return s.cfg
}

// Engine returns the engine of the simulation.
func (s *Simulation) Engine() *arq.Engine {
	return s.engine
}

// Trace returns the in-memory trace.
func (s *Simulation) Trace() *tracing.Trace {
	return s.trace
}

// DataRecorder returns the data recorder, or nil if the run is not recorded.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// Monitor returns the monitor, or nil if monitoring is disabled.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the address of the monitoring page.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// OutputFiles returns the trace files written by the simulation.
func (s *Simulation) OutputFiles() []string {
	return append([]string(nil), s.filePaths...)
}

// Run runs the engine until all the frames are delivered.
func (s *Simulation) Run(ctx context.Context) error {
	s.logger.Info().
		Str("protocol", s.cfg.Protocol.String()).
		Int("frames", s.cfg.NumFrames).
		Msg("simulation started")

	start := time.Now()
	err := s.engine.Run(ctx)

	stats := s.engine.State().Stats
	s.logger.Info().
		Err(err).
		Float64("end_time", float64(stats.EndTime)).
		Int("events", stats.EventsProcessed).
		Dur("wall_time", time.Since(start)).
		Msg("simulation finished")

	return err
}

// Report returns the report of the run.
func (s *Simulation) Report(skipTrace bool) report.Report {
	stats := s.engine.State().Stats

	return report.Report{
		Config:       s.cfg,
		Records:      s.trace.Records(),
		Stats:        stats,
		LinkBusyTime: s.linkBusy.BusyTime(),
		SkipTrace:    skipTrace,
	}
}

// Terminate writes the summary, flushes and closes all the outputs, and stops
// the monitor. It is safe to call more than once.
func (s *Simulation) Terminate() error {
	if s.terminated {
		return nil
	}

	s.terminated = true

	if s.dataRecorder != nil {
		s.recordSummary()
	}

	err := s.closeOutputs()

	if s.monitor != nil {
		s.monitor.CompleteProgressBar(s.progress)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if stopErr := s.monitor.StopServer(ctx); stopErr != nil && err == nil {
			err = stopErr
		}
	}

	return err
}

func (s *Simulation) recordSummary() {
	r := s.Report(true)

	s.dataRecorder.CreateTable(SummaryTableName, Summary{})
	s.dataRecorder.InsertData(SummaryTableName, Summary{
		Protocol:        s.cfg.Protocol.String(),
		NumFrames:       s.cfg.NumFrames,
		FramesSent:      r.Stats.FramesSent,
		FramesLost:      r.Stats.FramesLost,
		Retransmissions: r.Stats.Retransmissions,
		Timeouts:        r.Stats.Timeouts,
		AcksSent:        r.Stats.AcksSent,
		AcksLost:        r.Stats.AcksLost,
		NacksSent:       r.Stats.NacksSent,
		EventsProcessed: r.Stats.EventsProcessed,
		EndTime:         float64(r.Stats.EndTime),
		Efficiency:      r.Efficiency(),
		Utilization:     r.Utilization(),
	})
}

func (s *Simulation) closeOutputs() error {
	var firstErr error

	s.trace.Flush()

	for _, f := range s.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if s.dataRecorder != nil {
		if err := s.dataRecorder.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// ReadSummary reads the summary of a recorded run.
func ReadSummary(
	ctx context.Context,
	reader datarecording.DataReader,
) (Summary, error) {
	reader.MapTable(SummaryTableName, Summary{})

	results, _, err := reader.Query(ctx, SummaryTableName,
		datarecording.QueryParams{Limit: 1})
	if err != nil {
		return Summary{}, err
	}

	if len(results) == 0 {
		return Summary{}, fmt.Errorf("table %s is empty", SummaryTableName)
	}

	return *results[0].(*Summary), nil
}
