// Package s4 implements a single-input single-output S4 layer.
//
// A Layer holds a HiPPO-LegS system in DPLR form (package hippo), a readout
// C̃, a skip weight D and a log step size. It evaluates in one of two modes:
//
//	Train   y = CausalConv1D(u, K̄) + D·u    K̄ from package kernel
//	Decode  y = Re(scan(Ā, B̄, C̄, u, x)) + D·u, x ← x_L    from discretize/scan
//
// For x = 0 both modes agree. Derived views (K̄ or Ā, B̄, C̄) are built
// lazily and rebuilt when the mode or step changes.
//
// Lifecycle:
//
//	Fresh ──Forward──▶ Built(mode) ──SetMode(m')──▶ Built(m')
//	                   Built(Decode) ──ResetCache──▶ Built(Decode), cache = 0
//
// A failed Forward leaves both the cache and the state untouched.
//
// Layers are not safe for concurrent use. Independent layers can run in
// parallel through ForwardParallel. Snapshot and Restore persist a layer as
// CBOR. Debug logs go through log/slog (WithLogger).
package s4
