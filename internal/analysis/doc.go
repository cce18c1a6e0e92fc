// Package analysis inspects sampled trajectories of a run.
//
//   - [PowerSpectrum] and [DominantFrequency]: oscillation content of a column
//   - [NewPortrait]: one column against another, drawn with [PortraitToASCII]
//   - [Crossings]: interpolated times at which a column rises through a level
//
// A body spinning on a motor or bouncing on a floor shows up as a clear peak:
//
//	f, err := analysis.DominantFrequency(traj.Column("rotor_x"), dt)
package analysis
