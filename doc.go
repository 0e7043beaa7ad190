// Package algofftw manages discrete Fourier transform plans created by an
// external DFT engine.
//
// A Plan is negotiated once from two equally shaped complex buffers, a
// Direction and a set of planner Flags, then executed any number of times,
// optionally against other buffers of the same shape and element kind:
//
//	in, _ := algofftw.Complex128Buffer(input, 64, 64)
//	out, _ := algofftw.Complex128Buffer(output, 64, 64)
//
//	plan, err := algofftw.NewPlan(in, out, algofftw.Forward, algofftw.FlagEstimate)
//	if err != nil {
//	    return err
//	}
//	defer plan.Close()
//
//	spectrum, err := plan.Run(algofftw.RunNormalization(algofftw.NormSqrt))
//
// Engines are reached through the capability table in package engine and
// loaded lazily by a Binding. The default build uses the pure Go engine in
// engine/goengine; building with the fftw tag (and cgo) switches the default
// to libfftw3 via engine/fftw, which also adds extended precision.
//
// Transforms are unnormalized in both directions, following FFTW: a forward
// transform followed by a backward transform scales the data by the element
// count unless NormFull is requested on one of them.
package algofftw
