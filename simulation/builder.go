package simulation

import (
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/sarchlab/arqsim/arq"
	"github.com/sarchlab/arqsim/config"
	"github.com/sarchlab/arqsim/datarecording"
	"github.com/sarchlab/arqsim/monitoring"
	"github.com/sarchlab/arqsim/sim"
	"github.com/sarchlab/arqsim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	cfg    config.Config
	hasCfg bool

	csvOn, jsonOn, dbOn       bool
	csvPath, jsonPath, dbPath string

	monitorOn   bool
	monitorPort int
	startPaused bool
	logEvents   bool
	logger      zerolog.Logger
	hooks       []sim.Hook
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		logger: zerolog.Nop(),
	}
}

// WithConfig sets the validated configuration to simulate.
func (b Builder) WithConfig(cfg config.Config) Builder {
	b.cfg = cfg
	b.hasCfg = true
	return b
}

// WithCSVTrace writes the trace into a CSV file. An empty path generates a
// unique file name.
func (b Builder) WithCSVTrace(path string) Builder {
	b.csvOn = true
	b.csvPath = path
	return b
}

// WithJSONTrace writes the trace as JSON lines.
func (b Builder) WithJSONTrace(path string) Builder {
	b.jsonOn = true
	b.jsonPath = path
	return b
}

// WithDBTrace records the trace and the summary of the run into a SQLite
// database.
func (b Builder) WithDBTrace(path string) Builder {
	b.dbOn = true
	b.dbPath = path
	return b
}

// WithMonitor turns on the monitoring server.
func (b Builder) WithMonitor() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithStartPaused keeps the engine paused until it is continued from the
// monitor.
func (b Builder) WithStartPaused() Builder {
	b.startPaused = true
	return b
}

// WithLogger sets the logger of the simulation.
func (b Builder) WithLogger(logger zerolog.Logger) Builder {
	b.logger = logger
	return b
}

// WithEventLogging logs every event at debug level.
func (b Builder) WithEventLogging() Builder {
	b.logEvents = true
	return b
}

// WithHook attaches an additional hook to the engine.
func (b Builder) WithHook(h sim.Hook) Builder {
	b.hooks = append(append([]sim.Hook(nil), b.hooks...), h)
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.hasCfg {
		panic("config must be set")
	}

	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.monitorOn && b.startPaused {
		panic("a paused simulation can only be continued from the monitor")
	}
}

// Build builds the simulation. If an output cannot be created, the outputs
// created so far are closed and the error is returned.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	s := &Simulation{
		id:       xid.New().String(),
		cfg:      b.cfg,
		trace:    tracing.NewTrace(),
		linkBusy: tracing.NewLinkBusyTracer(),
	}
	s.logger = b.logger.With().Str("sim", s.id).Logger()

	if err := b.buildOutputs(s); err != nil {
		_ = s.closeOutputs()
		return nil, err
	}

	eb := arq.MakeBuilder().
		WithConfig(b.cfg).
		WithSink(s.trace).
		WithHook(s.linkBusy)

	if b.logEvents {
		eb = eb.WithHook(sim.NewEventLogger(s.logger))
	}

	for _, h := range b.hooks {
		eb = eb.WithHook(h)
	}

	if b.monitorOn {
		s.metrics = monitoring.NewMetrics()
		s.monitor = monitoring.NewMonitor().
			WithLogger(s.logger).
			WithPortNumber(b.monitorPort)
		s.progress = s.monitor.CreateProgressBar(
			"Frames acknowledged", uint64(b.cfg.NumFrames))

		eb = eb.
			WithHook(s.metrics).
			WithHook(monitoring.NewProgressHook(s.progress))
	}

	s.engine = eb.Build()

	if b.monitorOn {
		if err := b.startMonitor(s); err != nil {
			_ = s.closeOutputs()
			return nil, err
		}
	}

	if b.startPaused {
		s.engine.Pause()
	}

	return s, nil
}

func (b Builder) buildOutputs(s *Simulation) error {
	if b.csvOn {
		w := tracing.NewCSVTraceWriter(b.csvPath)
		if err := w.Init(); err != nil {
			return err
		}

		s.addFileWriter(w, w)
	}

	if b.jsonOn {
		w := tracing.NewJSONTraceWriter(b.jsonPath)
		if err := w.Init(); err != nil {
			return err
		}

		s.addFileWriter(w, w)
	}

	if b.dbOn {
		recorder, err := datarecording.New(b.dbPath)
		if err != nil {
			return err
		}

		s.dataRecorder = recorder

		w := tracing.NewDBTraceWriter(recorder)
		if err := w.Init(); err != nil {
			return err
		}

		s.trace.AddWriter(w)
	}

	return nil
}

func (b Builder) startMonitor(s *Simulation) error {
	s.monitor.RegisterEngine(s.engine)
	s.monitor.RegisterTrace(s.trace)
	s.monitor.RegisterMetrics(s.metrics)

	url, err := s.monitor.StartServer()
	if err != nil {
		return err
	}

	s.monitorURL = url

	return nil
}
