package s4

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/katalvlaran/lvlath-s4/hippo"
	"github.com/katalvlaran/lvlath-s4/kernel"
	"github.com/katalvlaran/lvlath-s4/matrix"
	"github.com/katalvlaran/lvlath-s4/ssmerr"
)

const snapshotVersion = 1

// complexVec splits a complex vector into parts; CBOR has no complex type.
type complexVec struct {
	Re []float64 `cbor:"re"`
	Im []float64 `cbor:"im"`
}

func split(v []complex128) complexVec {
	out := complexVec{Re: make([]float64, len(v)), Im: make([]float64, len(v))}
	for i, x := range v {
		out.Re[i], out.Im[i] = real(x), imag(x)
	}

	return out
}

func (c complexVec) join(n int) ([]complex128, bool) {
	if len(c.Re) != n || len(c.Im) != n {
		return nil, false
	}
	out := make([]complex128, n)
	for i := range out {
		out[i] = complex(c.Re[i], c.Im[i])
	}

	return out, true
}

type snapshot struct {
	Version int        `cbor:"version"`
	N       int        `cbor:"n"`
	Length  int        `cbor:"length"`
	Lambda  complexVec `cbor:"lambda"`
	P       complexVec `cbor:"p"`
	B       complexVec `cbor:"b"`
	V       complexVec `cbor:"v"`
	C       complexVec `cbor:"c"`
	D       float64    `cbor:"d"`
	LogStep float64    `cbor:"log_step"`
	Mode    string     `cbor:"mode"`
	Method  string     `cbor:"method"`
	Cache   complexVec `cbor:"cache"`
}

// Snapshot serializes (Λ, P, B, V, C, D, log Δ, L, mode, cache) as CBOR.
// Derived views are not stored. The format carries a version field but no
// compatibility promise across versions.
func (l *Layer) Snapshot() ([]byte, error) {
	s := snapshot{
		Version: snapshotVersion,
		N:       l.N(),
		Length:  l.length,
		Lambda:  split(l.dplr.Lambda),
		P:       split(l.dplr.P),
		B:       split(l.dplr.B),
		V:       split(l.dplr.V.Data()),
		C:       split(l.c),
		D:       l.d,
		LogStep: l.logStep,
		Mode:    l.mode.String(),
		Method:  l.method.String(),
		Cache:   split(l.cache),
	}
	b, err := cbor.Marshal(s)
	if err != nil {
		return nil, ssmerr.Wrap(ssmerr.Unknown, opSnapshot, err)
	}

	return b, nil
}

// Restore rebuilds a layer from Snapshot output. The result is Fresh: its
// kernel or discrete SSM is rebuilt on first use, while the cache is restored.
// Only WithLogger is honoured among opts.
//
// Errors: ssmerr.Init wrapping the decode failure or an ssmerr.Shape
// inconsistency.
func Restore(data []byte, opts ...Option) (*Layer, error) {
	cfg := gatherOptions(opts)
	var s snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, ssmerr.Wrap(ssmerr.Init, opRestore, err)
	}
	if s.Version != snapshotVersion {
		return nil, ssmerr.Errorf(ssmerr.Init, opRestore, "snapshot version %d, want %d", s.Version, snapshotVersion)
	}
	n := s.N
	if n < 1 || s.Length < 1 {
		return nil, ssmerr.Wrap(ssmerr.Init, opRestore,
			ssmerr.Errorf(ssmerr.Shape, opRestore, "n=%d length=%d", n, s.Length))
	}
	mode, ok := ParseMode(s.Mode)
	if !ok {
		return nil, ssmerr.Errorf(ssmerr.Init, opRestore, "unknown mode %q", s.Mode)
	}
	method, ok := kernel.ParseMethod(s.Method)
	if !ok {
		return nil, ssmerr.Errorf(ssmerr.Init, opRestore, "unknown kernel method %q", s.Method)
	}

	var vecs [5][]complex128
	for i, cv := range []complexVec{s.Lambda, s.P, s.B, s.C, s.Cache} {
		if vecs[i], ok = cv.join(n); !ok {
			return nil, ssmerr.Wrap(ssmerr.Init, opRestore,
				ssmerr.Errorf(ssmerr.Shape, opRestore, "vector %d has the wrong length", i))
		}
	}
	vdata, ok := s.V.join(n * n)
	if !ok {
		return nil, ssmerr.Wrap(ssmerr.Init, opRestore,
			ssmerr.Errorf(ssmerr.Shape, opRestore, "V has the wrong size"))
	}
	v, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, ssmerr.Wrap(ssmerr.Init, opRestore, err)
	}
	for i, x := range vdata {
		_ = v.Set(i/n, i%n, x)
	}

	return &Layer{
		dplr:    hippo.DPLRTuple{Lambda: vecs[0], P: vecs[1], B: vecs[2], V: v},
		c:       vecs[3],
		d:       s.D,
		logStep: s.LogStep,
		length:  s.Length,
		mode:    mode,
		method:  method,
		cache:   vecs[4],
		logger:  cfg.logger,
	}, nil
}
