// Package analysis inspects recorded telemetry.
//
//   - [PowerSpectrum] and [DominantFrequency]: oscillation of a channel,
//     typically altitude under an altitude-hold loop
//   - [NewPhasePortrait]: one channel plotted against another
//   - [Crossings]: times at which a channel passes a level
//
// # Example
//
//	alt, _ := rec.Channel("altitude")
//	f, _ := analysis.DominantFrequency(alt, p.UpdateDt)
package analysis
