package s4_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlath-s4/s4"
	"github.com/katalvlaran/lvlath-s4/ssmerr"
)

func layerBank(t *testing.T, k int, decode bool) []*s4.Layer {
	t.Helper()
	out := make([]*s4.Layer, k)
	for i := range out {
		l, err := s4.New(stateN, seqL, decode, s4.WithSeed(uint64(100+i)), s4.WithLogger(quiet))
		require.NoError(t, err)
		out[i] = l
	}

	return out
}

// TestForwardParallel_MatchesSequential for both modes and several limits.
func TestForwardParallel_MatchesSequential(t *testing.T) {
	const k = 5
	inputs := make([][]float64, k)
	for i := range inputs {
		inputs[i] = normalInput(uint64(i), seqL)
	}
	for _, decode := range []bool{false, true} {
		for _, limit := range []int{0, 1, 3} {
			seq := layerBank(t, k, decode)
			want := make([][]float64, k)
			for i, l := range seq {
				y, err := l.Forward(inputs[i])
				require.NoError(t, err)
				want[i] = y
			}

			par := layerBank(t, k, decode)
			got, err := s4.ForwardParallel(context.Background(), par, inputs, limit)
			require.NoError(t, err)
			require.Equal(t, want, got)
			for i := range par {
				require.Equal(t, seq[i].Cache(), par[i].Cache())
			}
		}
	}
}

// TestForwardParallel_Errors covers argument checks, layer errors and cancellation.
func TestForwardParallel_Errors(t *testing.T) {
	ls := layerBank(t, 2, false)
	ok := [][]float64{make([]float64, seqL), make([]float64, seqL)}

	_, err := s4.ForwardParallel(context.Background(), ls, ok[:1], 0)
	require.ErrorIs(t, err, ssmerr.ErrShape)

	_, err = s4.ForwardParallel(context.Background(), []*s4.Layer{ls[0], ls[0]}, ok, 0)
	require.ErrorIs(t, err, ssmerr.ErrShape)

	_, err = s4.ForwardParallel(context.Background(), []*s4.Layer{ls[0], nil}, ok, 0)
	require.ErrorIs(t, err, ssmerr.ErrShape)

	_, err = s4.ForwardParallel(context.Background(), ls, [][]float64{ok[0], {1}}, 0)
	require.ErrorIs(t, err, ssmerr.ErrShape)

	idle := layerBank(t, 2, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s4.ForwardParallel(ctx, idle, ok, 0)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, s4.Fresh, idle[0].State())
	require.Equal(t, s4.Fresh, idle[1].State())
}

// TestForwardAs_Float32 matches the float64 path to single precision.
func TestForwardAs_Float32(t *testing.T) {
	l := newLayer(t, false)
	u := normalInput(4, seqL)
	want, err := l.Forward(u)
	require.NoError(t, err)

	u32 := make([]float32, seqL)
	for i, x := range u {
		u32[i] = float32(x)
	}
	got, err := s4.ForwardAs(l, u32)
	require.NoError(t, err)
	require.Len(t, got, seqL)
	for i := range got {
		require.InDelta(t, want[i], float64(got[i]), 1e-4)
	}

	_, err = s4.ForwardAs(l, []float32{1})
	require.ErrorIs(t, err, ssmerr.ErrShape)
}
