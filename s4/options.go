package s4

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/exp/rand"

	"github.com/katalvlaran/lvlath-s4/kernel"
)

// Defaults applied by New when no Option overrides them.
const (
	// DefaultStepMin is the lower bound of the log-uniform step draw.
	DefaultStepMin = 1e-3

	// DefaultStepMax is the upper bound of the log-uniform step draw.
	DefaultStepMax = 1e-1

	// DefaultD is the initial weight of the skip path y += D·u.
	DefaultD = 1.0
)

// Option configures New and Restore.
type Option func(*config)

type config struct {
	stepMin, stepMax float64
	src              rand.Source
	logger           *slog.Logger
	d                float64
	method           kernel.Method
	readout          []complex128
}

// WithStepRange sets the interval [dtMin, dtMax] from which the step is drawn
// log-uniformly. Panics unless 0 < dtMin ≤ dtMax.
func WithStepRange(dtMin, dtMax float64) Option {
	if !(dtMin > 0) || dtMax < dtMin {
		panic(fmt.Sprintf("s4: WithStepRange(%g, %g): need 0 < dtMin <= dtMax", dtMin, dtMax))
	}

	return func(c *config) { c.stepMin, c.stepMax = dtMin, dtMax }
}

// WithSeed makes the random draws of New reproducible.
func WithSeed(seed uint64) Option {
	return func(c *config) { c.src = rand.NewSource(seed) }
}

// WithRandSource draws from src. The source is used only during New.
func WithRandSource(src rand.Source) Option {
	if src == nil {
		panic("s4: WithRandSource(nil)")
	}

	return func(c *config) { c.src = src }
}

// WithLogger routes the layer's debug logs to l.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("s4: WithLogger(nil)")
	}

	return func(c *config) { c.logger = l }
}

// WithD sets the skip weight D.
func WithD(d float64) Option {
	return func(c *config) { c.d = d }
}

// WithKernelMethod selects how the train-mode kernel is computed.
func WithKernelMethod(m kernel.Method) Option {
	return func(c *config) { c.method = m }
}

// WithReadout uses c as the readout C̃ instead of drawing one. Its length must
// equal the state size given to New.
func WithReadout(c []complex128) Option {
	cp := make([]complex128, len(c))
	copy(cp, c)

	return func(cfg *config) { cfg.readout = cp }
}

func gatherOptions(opts []Option) config {
	cfg := config{
		stepMin: DefaultStepMin,
		stepMax: DefaultStepMax,
		d:       DefaultD,
		method:  kernel.MethodDPLR,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.src == nil {
		cfg.src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	return cfg
}
