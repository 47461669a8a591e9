package s4_test

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/exp/rand"

	"github.com/katalvlaran/lvlath-s4/kernel"
	"github.com/katalvlaran/lvlath-s4/s4"
	"github.com/katalvlaran/lvlath-s4/ssmerr"
)

const (
	stateN = 8
	seqL   = 16
	step   = 0.1
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newLayer(t *testing.T, decode bool, opts ...s4.Option) *s4.Layer {
	t.Helper()
	opts = append([]s4.Option{s4.WithSeed(42), s4.WithLogger(quiet)}, opts...)
	l, err := s4.New(stateN, seqL, decode, opts...)
	require.NoError(t, err)
	require.NoError(t, l.SetLogStep(math.Log(step)))

	return l
}

func normalInput(seed uint64, n int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	u := make([]float64, n)
	for i := range u {
		u[i] = rng.NormFloat64()
	}

	return u
}

func requireRelClose(t *testing.T, want, got []float64, rel float64) {
	t.Helper()
	require.Len(t, got, len(want))
	var scale, diff float64
	for i := range want {
		scale = math.Max(scale, math.Abs(want[i]))
		diff = math.Max(diff, math.Abs(want[i]-got[i]))
	}
	require.LessOrEqual(t, diff, rel*math.Max(scale, 1e-12), "max diff %g, scale %g", diff, scale)
}

// LayerSuite exercises the mode and cache lifecycle of one layer.
type LayerSuite struct {
	suite.Suite
	layer *s4.Layer
	u     []float64
}

func (s *LayerSuite) SetupTest() {
	s.layer = newLayer(s.T(), false)
	s.u = normalInput(5, seqL)
}

func (s *LayerSuite) TestFreshLayer() {
	l := s.layer
	s.Equal(stateN, l.N())
	s.Equal(seqL, l.Length())
	s.Equal(s4.Train, l.Mode())
	s.Equal(s4.Fresh, l.State())
	s.Equal(s4.DefaultD, l.D())
	s.InDelta(step, l.StepSize(), 1e-15)
	s.Len(l.Readout(), stateN)
	s.Equal(make([]complex128, stateN), l.Cache())
}

func (s *LayerSuite) TestTrainDecodeAgree() {
	train, err := s.layer.Forward(s.u)
	s.Require().NoError(err)
	s.Equal(s4.BuiltTrain, s.layer.State())

	s.Require().NoError(s.layer.SetMode(s4.Decode))
	s.Equal(s4.BuiltDecode, s.layer.State())
	decode, err := s.layer.Forward(s.u)
	s.Require().NoError(err)

	requireRelClose(s.T(), train, decode, 1e-4)
}

func (s *LayerSuite) TestDecodeAdvancesCache() {
	s.Require().NoError(s.layer.SetMode(s4.Decode))
	s.Equal(s4.Fresh, s.layer.State())

	first, err := s.layer.Forward(s.u)
	s.Require().NoError(err)
	s.NotEqual(make([]complex128, stateN), s.layer.Cache())

	second, err := s.layer.Forward(s.u)
	s.Require().NoError(err)
	s.NotEqual(first, second)

	s.layer.ResetCache()
	s.Equal(make([]complex128, stateN), s.layer.Cache())
	again, err := s.layer.Forward(s.u)
	s.Require().NoError(err)
	s.Equal(first, again)
}

func (s *LayerSuite) TestFailedForwardChangesNothing() {
	s.Require().NoError(s.layer.SetMode(s4.Decode))
	_, err := s.layer.Forward(s.u)
	s.Require().NoError(err)
	cache := s.layer.Cache()

	_, err = s.layer.Forward(s.u[:seqL-1])
	s.Require().ErrorIs(err, ssmerr.ErrShape)
	s.Equal(cache, s.layer.Cache())
	s.Equal(s4.BuiltDecode, s.layer.State())

	fresh := newLayer(s.T(), true)
	_, err = fresh.Forward(nil)
	s.Require().ErrorIs(err, ssmerr.ErrShape)
	s.Equal(s4.Fresh, fresh.State())
}

func (s *LayerSuite) TestEnteringDecodeZeroesCache() {
	s.Require().NoError(s.layer.SetMode(s4.Decode))
	_, err := s.layer.Forward(s.u)
	s.Require().NoError(err)

	s.Require().NoError(s.layer.SetMode(s4.Decode))
	s.NotEqual(make([]complex128, stateN), s.layer.Cache(), "same mode is a no-op")

	s.Require().NoError(s.layer.SetMode(s4.Train))
	s.Equal(s4.BuiltTrain, s.layer.State())
	s.Require().NoError(s.layer.SetMode(s4.Decode))
	s.Equal(make([]complex128, stateN), s.layer.Cache())
}

func (s *LayerSuite) TestStepMatchesForward() {
	s.Require().NoError(s.layer.SetMode(s4.Decode))
	want, err := s.layer.Forward(s.u)
	s.Require().NoError(err)
	wantCache := s.layer.Cache()

	s.layer.ResetCache()
	for i, x := range s.u {
		y, err := s.layer.Step(x)
		s.Require().NoError(err)
		s.InDelta(want[i], y, 1e-12)
	}
	got := s.layer.Cache()
	for i := range got {
		s.InDelta(real(wantCache[i]), real(got[i]), 1e-12)
		s.InDelta(imag(wantCache[i]), imag(got[i]), 1e-12)
	}
}

func (s *LayerSuite) TestStepRequiresDecode() {
	_, err := s.layer.Step(1)
	s.Require().ErrorIs(err, s4.ErrNotDecoding)
	s.Equal(ssmerr.Unknown, ssmerr.KindOf(err))
}

func (s *LayerSuite) TestSetLogStepRebuilds() {
	before, err := s.layer.Kernel()
	s.Require().NoError(err)
	s.Equal(s4.Fresh, s.layer.State(), "Kernel does not change the state")

	s.Require().NoError(s.layer.SetLogStep(math.Log(0.05)))
	after, err := s.layer.Kernel()
	s.Require().NoError(err)
	s.NotEqual(before, after)

	s.Require().ErrorIs(s.layer.SetLogStep(math.NaN()), ssmerr.ErrShape)
	s.Require().ErrorIs(s.layer.SetLogStep(math.Inf(1)), ssmerr.ErrShape)
	s.InDelta(0.05, s.layer.StepSize(), 1e-15)
}

func (s *LayerSuite) TestKernelMatchesUnrolledMethod() {
	fast, err := s.layer.Kernel()
	s.Require().NoError(err)

	slow := newLayer(s.T(), false, s4.WithKernelMethod(kernel.MethodUnrolled))
	ref, err := slow.Kernel()
	s.Require().NoError(err)
	requireRelClose(s.T(), ref, fast, 1e-6)
}

func (s *LayerSuite) TestDiscreteShape() {
	ssm, err := s.layer.Discrete()
	s.Require().NoError(err)
	s.Equal(stateN, ssm.N())
	s.NoError(ssm.Validate())
}

func TestLayerSuite(t *testing.T) {
	suite.Run(t, new(LayerSuite))
}

// TestZeroInputGivesZeroOutput holds in both modes for a zero cache.
func TestZeroInputGivesZeroOutput(t *testing.T) {
	zero := make([]float64, seqL)
	for _, decode := range []bool{false, true} {
		l := newLayer(t, decode, s4.WithD(3))
		y, err := l.Forward(zero)
		require.NoError(t, err)
		require.InDeltaSlice(t, zero, y, 1e-15)
	}
}

// TestSkipPathOnly: with a zero readout the state path is silent and y = D·u.
func TestSkipPathOnly(t *testing.T) {
	const alpha = 2.5
	u := normalInput(9, seqL)
	want := make([]float64, seqL)
	for i := range u {
		want[i] = alpha * u[i]
	}
	for _, decode := range []bool{false, true} {
		l := newLayer(t, decode, s4.WithD(alpha), s4.WithReadout(make([]complex128, stateN)))
		y, err := l.Forward(u)
		require.NoError(t, err)
		require.InDeltaSlice(t, want, y, 1e-12)
	}
}

// TestSeedIsReproducible: equal seeds give equal readouts and steps.
func TestSeedIsReproducible(t *testing.T) {
	a, err := s4.New(stateN, seqL, false, s4.WithSeed(7), s4.WithLogger(quiet))
	require.NoError(t, err)
	b, err := s4.New(stateN, seqL, false, s4.WithSeed(7), s4.WithLogger(quiet))
	require.NoError(t, err)
	require.Equal(t, a.Readout(), b.Readout())
	require.Equal(t, a.LogStep(), b.LogStep())

	c, err := s4.New(stateN, seqL, false, s4.WithSeed(8), s4.WithLogger(quiet))
	require.NoError(t, err)
	require.NotEqual(t, a.Readout(), c.Readout())
}

// TestStepRangeDraw: the drawn step lies in the configured interval.
func TestStepRangeDraw(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		l, err := s4.New(2, 4, false, s4.WithSeed(seed), s4.WithStepRange(0.01, 0.02), s4.WithLogger(quiet))
		require.NoError(t, err)
		require.GreaterOrEqual(t, l.StepSize(), 0.01*(1-1e-12))
		require.LessOrEqual(t, l.StepSize(), 0.02*(1+1e-12))
	}
}

// TestNewErrors: construction failures are Init errors.
func TestNewErrors(t *testing.T) {
	_, err := s4.New(0, 4, false)
	require.ErrorIs(t, err, ssmerr.ErrInit)
	_, err = s4.New(4, 0, false)
	require.ErrorIs(t, err, ssmerr.ErrInit)
	_, err = s4.New(4, 4, false, s4.WithReadout([]complex128{1}))
	require.ErrorIs(t, err, ssmerr.ErrInit)
}

// TestOptionPanics covers invalid option arguments.
func TestOptionPanics(t *testing.T) {
	require.Panics(t, func() { s4.WithStepRange(0, 1) })
	require.Panics(t, func() { s4.WithStepRange(0.2, 0.1) })
	require.Panics(t, func() { s4.WithRandSource(nil) })
	require.Panics(t, func() { s4.WithLogger(nil) })
}

// TestWithRandSource draws from the supplied source.
func TestWithRandSource(t *testing.T) {
	a, err := s4.New(4, 4, false, s4.WithRandSource(rand.NewSource(3)), s4.WithLogger(quiet))
	require.NoError(t, err)
	b, err := s4.New(4, 4, false, s4.WithSeed(3), s4.WithLogger(quiet))
	require.NoError(t, err)
	require.Equal(t, a.Readout(), b.Readout())
}

// TestWithReadoutCopies: later changes to the caller's slice are not seen.
func TestWithReadoutCopies(t *testing.T) {
	c := []complex128{1, 2}
	opt := s4.WithReadout(c)
	c[0] = 9
	l, err := s4.New(2, 4, false, opt, s4.WithLogger(quiet))
	require.NoError(t, err)
	require.Equal(t, []complex128{1, 2}, l.Readout())
}

// TestModeAndStateStrings covers the printable forms.
func TestModeAndStateStrings(t *testing.T) {
	for _, m := range []s4.Mode{s4.Train, s4.Decode} {
		got, ok := s4.ParseMode(m.String())
		require.True(t, ok)
		require.Equal(t, m, got)
	}
	_, ok := s4.ParseMode("infer")
	require.False(t, ok)

	require.Equal(t, "fresh", s4.Fresh.String())
	require.Equal(t, "built(train)", s4.BuiltTrain.String())
	require.Equal(t, "built(decode)", s4.BuiltDecode.String())
}
