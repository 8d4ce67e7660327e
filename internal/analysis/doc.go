// Package analysis inspects recorded runs after the fact.
//
//   - [Spectrum] and [DominantFrequency]: one-sided amplitude spectrum of a
//     sampled state trace
//   - [Portrait]: two state variables plotted against each other
//   - [Section]: states recorded where a variable crosses a level
//
// Everything here works on a [dynamo.Result] or a plain series, so it
// applies equally to fresh runs and to runs loaded from storage:
//
//	f, err := analysis.DominantFrequency(analysis.Series(res, vehicle.Roll), dt)
package analysis
