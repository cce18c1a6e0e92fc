// Package dynamo provides the run primitives shared by the simulation
// packages.
//
// The package defines the types that flow between a world being stepped and
// the code watching it:
//
//   - [Snapshot]: the observable state of a world after a step
//   - [Metric]: accumulates a scalar over the snapshots of a run
//   - [Observer]: receives every snapshot as it is produced
//   - [Config]: timestep, duration and worker settings of a run
//   - [Result]: everything a finished run produced
//
// [ParallelFor] is the fan-out helper used by the narrow phase.
//
// # Example
//
//	w := world.New(world.Options{Gravity: mgl64.Vec3{0, -9.81, 0}})
//	s := sim.New(w)
//	s.AddMetric(metrics.NewEnergyDrift())
//	result, _ := s.Run(ctx, dynamo.DefaultConfig())
package dynamo
