package s4

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lvlath-s4/ssmerr"
)

// ForwardParallel runs layers[i].Forward(inputs[i]) for every i with at most
// limit calls in flight (limit ≤ 0 means no bound). Each layer must appear
// once, since a Layer is not safe for concurrent use.
//
// Cancellation is checked before each Forward starts; a running Forward is
// never interrupted. The first error cancels the rest and is returned.
// Layers whose Forward completed keep their updated caches.
func ForwardParallel(ctx context.Context, layers []*Layer, inputs [][]float64, limit int) ([][]float64, error) {
	if len(layers) != len(inputs) {
		return nil, ssmerr.Errorf(ssmerr.Shape, opParallel, "%d layers, %d inputs", len(layers), len(inputs))
	}
	seen := make(map[*Layer]struct{}, len(layers))
	for i, l := range layers {
		if l == nil {
			return nil, ssmerr.Errorf(ssmerr.Shape, opParallel, "layer %d is nil", i)
		}
		if _, dup := seen[l]; dup {
			return nil, ssmerr.Errorf(ssmerr.Shape, opParallel, "layer %d appears more than once", i)
		}
		seen[l] = struct{}{}
	}

	out := make([][]float64, len(layers))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range layers {
		i := i // per-iteration copy (go1.22 loopvar semantics under go 1.21 directive)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			y, err := layers[i].Forward(inputs[i])
			if err != nil {
				return err
			}
			out[i] = y

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// Float is the set of real element types accepted by ForwardAs.
type Float interface {
	~float32 | ~float64
}

// ForwardAs runs Forward on u converted to float64 and converts the result
// back to T.
func ForwardAs[T Float](l *Layer, u []T) ([]T, error) {
	in := make([]float64, len(u))
	for i, x := range u {
		in[i] = float64(x)
	}
	y, err := l.Forward(in)
	if err != nil {
		return nil, ssmerr.Classify(opForwardAs, err)
	}
	out := make([]T, len(y))
	for i, x := range y {
		out[i] = T(x)
	}

	return out, nil
}
