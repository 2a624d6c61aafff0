package arq

import (
	"github.com/sarchlab/arqsim/config"
	"github.com/sarchlab/arqsim/sim"
	"github.com/sarchlab/arqsim/tracing"
)

// Builder can build engines.
type Builder struct {
	cfg    config.Config
	hasCfg bool
	sink   tracing.Sink
	hooks  []sim.Hook
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithConfig sets the validated configuration to simulate.
func (b Builder) WithConfig(cfg config.Config) Builder {
	b.cfg = cfg
	b.hasCfg = true
	return b
}

// WithSink sets where the trace records go. A new tracing.Trace is used if no
// sink is given.
func (b Builder) WithSink(sink tracing.Sink) Builder {
	b.sink = sink
	return b
}

// WithHook registers a hook on the engine.
func (b Builder) WithHook(hook sim.Hook) Builder {
	b.hooks = append(append([]sim.Hook(nil), b.hooks...), hook)
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.hasCfg {
		panic("config must be set")
	}

	if b.cfg.NumFrames < 1 {
		panic("config must have at least one frame")
	}
}

// Build builds an engine ready to run.
func (b Builder) Build() *Engine {
	b.parametersMustBeValid()

	cfg := b.cfg
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = config.DefaultMaxEvents
	}

	sink := b.sink
	if sink == nil {
		sink = tracing.NewTrace()
	}

	e := &Engine{
		HookableBase: sim.NewHookableBase(),
		cfg:          cfg,
		queue:        NewEventQueue(),
		window: NewWindow(
			cfg.NumFrames,
			cfg.SeqSpace(),
			cfg.SenderWindow,
			cfg.ReceiverWindow,
		),
		sink: sink,
	}

	for _, h := range b.hooks {
		e.AcceptHook(h)
	}

	return e
}
