// Package scan runs a discrete state-space model as a recurrence.
//
// The scan is the decode-mode counterpart of the convolution in package
// spectral: for x_0 = 0 both produce the same outputs. It has no interior
// concurrency and no cancellation point. Independent sequences can be scanned
// in parallel, each with its own state vector.
package scan
