package s4

import (
	"errors"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/lvlath-s4/discretize"
	"github.com/katalvlaran/lvlath-s4/hippo"
	"github.com/katalvlaran/lvlath-s4/kernel"
	"github.com/katalvlaran/lvlath-s4/matrix"
	"github.com/katalvlaran/lvlath-s4/scan"
	"github.com/katalvlaran/lvlath-s4/spectral"
	"github.com/katalvlaran/lvlath-s4/ssmerr"
)

const (
	opNew        = "New"
	opSetMode    = "SetMode"
	opForward    = "Forward"
	opStep       = "Step"
	opKernel     = "Kernel"
	opDiscrete   = "Discrete"
	opSnapshot   = "Snapshot"
	opRestore    = "Restore"
	opParallel   = "ForwardParallel"
	opForwardAs  = "ForwardAs"
	opSetLogStep = "SetLogStep"
)

// ErrNotDecoding is returned by Step outside decode mode.
var ErrNotDecoding = errors.New("s4: layer is not in decode mode")

// Mode selects how Forward evaluates the layer.
type Mode int

const (
	// Train convolves the whole input with the precomputed kernel K̄.
	Train Mode = iota
	// Decode runs the recurrence step by step from the cached state.
	Decode
)

// String returns "train" or "decode".
func (m Mode) String() string {
	if m == Decode {
		return "decode"
	}

	return "train"
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "train":
		return Train, true
	case "decode":
		return Decode, true
	default:
		return Train, false
	}
}

// State is the lifecycle position of a Layer.
type State int

const (
	// Fresh: constructed, no derived view built yet.
	Fresh State = iota
	// BuiltTrain: the kernel K̄ is built and Forward convolves.
	BuiltTrain
	// BuiltDecode: (Ā, B̄, C̄) are built and Forward scans.
	BuiltDecode
)

// String returns "fresh", "built(train)" or "built(decode)".
func (s State) String() string {
	switch s {
	case BuiltTrain:
		return "built(train)"
	case BuiltDecode:
		return "built(decode)"
	default:
		return "fresh"
	}
}

// Layer is a single-input single-output S4 layer: a linear state-space model
// in DPLR form plus a skip path D·u.
//
// A Layer owns its cache and its derived views and is not safe for concurrent
// use. Distinct layers share nothing and may run in parallel.
type Layer struct {
	dplr    hippo.DPLRTuple
	c       []complex128
	d       float64
	logStep float64
	length  int
	mode    Mode
	method  kernel.Method
	built   bool
	cache   []complex128

	kernel []float64
	conv   *spectral.Conv
	disc   *discretize.SSM

	logger *slog.Logger
}

// New builds a layer with state size n and sequence length L.
//
// Implementation:
//   - Stage 1: (Λ, P, B, V) = hippo.DPLR(n).
//   - Stage 2: draw z from a complex standard normal and set
//     C = V*·Re(V·z), the projection of z onto readouts with a real
//     impulse response (unless WithReadout is given).
//   - Stage 3: draw log Δ uniformly on [log dtMin, log dtMax].
//   - Stage 4: cache = 0; mode = Decode if decode, else Train.
//
// Errors: every failure is an ssmerr.Init error wrapping the cause.
func New(n, L int, decode bool, opts ...Option) (*Layer, error) {
	cfg := gatherOptions(opts)
	if n < 1 || L < 1 {
		return nil, ssmerr.Wrap(ssmerr.Init, opNew,
			ssmerr.Errorf(ssmerr.Shape, opNew, "state size %d and length %d must be >= 1", n, L))
	}
	dplr, err := hippo.DPLR(n)
	if err != nil {
		return nil, ssmerr.Wrap(ssmerr.Init, opNew, err)
	}

	c := cfg.readout
	if c == nil {
		if c, err = drawReadout(dplr.V, cfg); err != nil {
			return nil, ssmerr.Wrap(ssmerr.Init, opNew, err)
		}
	} else if len(c) != n {
		return nil, ssmerr.Wrap(ssmerr.Init, opNew,
			ssmerr.Errorf(ssmerr.Shape, opNew, "readout has %d entries, want %d", len(c), n))
	}

	logStep := distuv.Uniform{
		Min: math.Log(cfg.stepMin),
		Max: math.Log(cfg.stepMax),
		Src: cfg.src,
	}.Rand()

	mode := Train
	if decode {
		mode = Decode
	}

	return &Layer{
		dplr:    dplr,
		c:       c,
		d:       cfg.d,
		logStep: logStep,
		length:  L,
		mode:    mode,
		method:  cfg.method,
		cache:   make([]complex128, n),
		logger:  cfg.logger,
	}, nil
}

// drawReadout returns V*·Re(V·z) for z ~ CN(0, I).
func drawReadout(v *matrix.Dense, cfg config) ([]complex128, error) {
	n := v.Rows()
	normal := distuv.Normal{Mu: 0, Sigma: math.Sqrt2 / 2, Src: cfg.src}
	z := make([]complex128, n)
	for i := range z {
		z[i] = complex(normal.Rand(), normal.Rand())
	}
	w, err := matrix.MatVec(v, z)
	if err != nil {
		return nil, err
	}
	for i := range w {
		w[i] = complex(real(w[i]), 0)
	}
	vh, err := matrix.ConjTranspose(v)
	if err != nil {
		return nil, err
	}

	return matrix.MatVec(vh, w)
}

// N returns the state size.
func (l *Layer) N() int { return l.dplr.N() }

// Length returns the sequence length L.
func (l *Layer) Length() int { return l.length }

// Mode returns the current mode.
func (l *Layer) Mode() Mode { return l.mode }

// State returns the lifecycle state.
func (l *Layer) State() State {
	switch {
	case !l.built:
		return Fresh
	case l.mode == Decode:
		return BuiltDecode
	default:
		return BuiltTrain
	}
}

// D returns the skip weight.
func (l *Layer) D() float64 { return l.d }

// LogStep returns log Δ.
func (l *Layer) LogStep() float64 { return l.logStep }

// StepSize returns Δ = exp(LogStep()).
func (l *Layer) StepSize() float64 { return math.Exp(l.logStep) }

// Readout returns a copy of C̃.
func (l *Layer) Readout() []complex128 {
	out := make([]complex128, len(l.c))
	copy(out, l.c)

	return out
}

// DPLR returns the layer's DPLR tuple. The tuple must not be modified.
func (l *Layer) DPLR() hippo.DPLRTuple { return l.dplr }

// Cache returns a copy of the decode state.
func (l *Layer) Cache() []complex128 {
	out := make([]complex128, len(l.cache))
	copy(out, l.cache)

	return out
}

// Params returns the kernel parameters of the layer (Q = P).
func (l *Layer) Params() kernel.Params {
	return kernel.Params{Lambda: l.dplr.Lambda, P: l.dplr.P, Q: l.dplr.P, B: l.dplr.B, C: l.c}
}

// SetMode switches between Train and Decode. Leaving Decode rebuilds K̄;
// entering Decode rebuilds (Ā, B̄, C̄) and zeroes the cache. A Fresh layer
// only records the mode. Setting the current mode is a no-op.
// On error the layer is unchanged.
func (l *Layer) SetMode(m Mode) error {
	if m == l.mode {
		return nil
	}
	if l.built {
		// Builders commit only on success.
		var err error
		switch m {
		case Train:
			err = l.buildKernel()
		case Decode:
			err = l.buildDiscrete()
		}
		if err != nil {
			return ssmerr.Classify(opSetMode, err)
		}
	}
	l.mode = m
	if m == Decode {
		l.zeroCache()
	}

	return nil
}

// SetLogStep replaces log Δ and drops the derived views; they are rebuilt by
// the next Forward. The cache is kept.
func (l *Layer) SetLogStep(logStep float64) error {
	if math.IsNaN(logStep) || math.IsInf(logStep, 0) {
		return ssmerr.Errorf(ssmerr.Shape, opSetLogStep, "log step %g is not finite", logStep)
	}
	l.logStep = logStep
	l.kernel, l.conv, l.disc = nil, nil, nil

	return nil
}

// ResetCache zeroes the decode state. Call it before every independent
// sequence in decode mode.
func (l *Layer) ResetCache() {
	l.zeroCache()
	l.logger.Debug("s4: cache reset", "n", l.N())
}

func (l *Layer) zeroCache() {
	for i := range l.cache {
		l.cache[i] = 0
	}
}

// Kernel returns a copy of K̄, building it if needed. It does not change the mode.
func (l *Layer) Kernel() ([]float64, error) {
	if l.kernel == nil {
		if err := l.buildKernel(); err != nil {
			return nil, ssmerr.Classify(opKernel, err)
		}
	}
	out := make([]float64, len(l.kernel))
	copy(out, l.kernel)

	return out, nil
}

// Discrete returns (Ā, B̄, C̄), building them if needed. It does not change the mode.
func (l *Layer) Discrete() (discretize.SSM, error) {
	if l.disc == nil {
		if err := l.buildDiscrete(); err != nil {
			return discretize.SSM{}, ssmerr.Classify(opDiscrete, err)
		}
	}

	return *l.disc, nil
}

func (l *Layer) buildKernel() error {
	k, err := kernel.Generate(l.Params(), l.StepSize(), l.length, &kernel.Options{Method: l.method})
	if err != nil {
		return err
	}
	conv, err := spectral.NewConv(k)
	if err != nil {
		return ssmerr.Classify(opKernel, err)
	}
	l.kernel, l.conv = k, conv
	l.logger.Debug("s4: kernel built", "n", l.N(), "length", l.length, "step", l.StepSize(), "method", l.method)

	return nil
}

func (l *Layer) buildDiscrete() error {
	ssm, err := discretize.DPLR(l.dplr.Lambda, l.dplr.P, l.dplr.P, l.dplr.B, l.c, l.StepSize(), l.length)
	if err != nil {
		return err
	}
	l.disc = &ssm
	l.logger.Debug("s4: discrete SSM built", "n", l.N(), "length", l.length, "step", l.StepSize())

	return nil
}

// Forward maps u ∈ ℝ^L to y ∈ ℝ^L.
//
//   - Train:  y = CausalConv1D(u, K̄) + D·u.
//   - Decode: y = Re(scan(Ā, B̄, C̄, u, cache)) + D·u; cache ← x_L.
//
// Errors: ssmerr.Shape when len(u) != L; build failures keep their kind.
// On error neither the cache nor the state changes. Non-finite inputs are
// not errors and propagate to the output.
func (l *Layer) Forward(u []float64) ([]float64, error) {
	if len(u) != l.length {
		return nil, ssmerr.Errorf(ssmerr.Shape, opForward, "len(u)=%d, want %d", len(u), l.length)
	}

	var (
		y   []float64
		err error
	)
	switch l.mode {
	case Decode:
		y, err = l.decode(u)
	default:
		y, err = l.train(u)
	}
	if err != nil {
		return nil, ssmerr.Classify(opForward, err)
	}
	l.built = true

	return y, nil
}

func (l *Layer) train(u []float64) ([]float64, error) {
	if l.conv == nil {
		if err := l.buildKernel(); err != nil {
			return nil, err
		}
	}
	y, err := l.conv.Apply(u)
	if err != nil {
		return nil, ssmerr.Wrap(ssmerr.Shape, opForward, err)
	}
	floats.AddScaled(y, l.d, u)

	return y, nil
}

func (l *Layer) decode(u []float64) ([]float64, error) {
	if l.disc == nil {
		if err := l.buildDiscrete(); err != nil {
			return nil, err
		}
	}
	yc, xL, err := scan.Run(*l.disc, spectral.Lift(u), l.cache)
	if err != nil {
		return nil, err
	}
	y := spectral.Real(yc)
	floats.AddScaled(y, l.d, u)
	l.cache = xL

	return y, nil
}

// Step feeds one sample through the recurrence and advances the cache, with
// the same arithmetic as one iteration of a decode-mode Forward. It requires
// decode mode.
func (l *Layer) Step(u float64) (float64, error) {
	if l.mode != Decode {
		return 0, ssmerr.Wrap(ssmerr.Unknown, opStep, ErrNotDecoding)
	}
	if l.disc == nil {
		if err := l.buildDiscrete(); err != nil {
			return 0, ssmerr.Classify(opStep, err)
		}
	}
	y, next, err := scan.Step(*l.disc, l.cache, complex(u, 0))
	if err != nil {
		return 0, ssmerr.Classify(opStep, err)
	}
	l.cache = next
	l.built = true

	return real(y) + l.d*u, nil
}
