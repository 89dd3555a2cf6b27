// Package dynamo holds the vehicle state and the step driver of the flight
// simulation.
//
// A simulation is assembled from small collaborators, each behind an
// interface so they can be tested in isolation:
//
//   - [Vehicle]: the single mutable state record
//   - [Model]: computes linear acceleration and net torque
//   - [Integrator]: advances the state by one fixed step
//   - [Contact]: resolves ground contact after integration
//   - [Accumulator]: integrates actuator energy
//   - [Simulator]: runs the fixed-step loop and notifies [Redrawer]s
//
// # Example
//
//	p := dynamo.DefaultParams()
//	v := dynamo.NewVehicle(p, rand.New(rand.NewSource(1)))
//	s, _ := dynamo.New(p, v, physics.NewQuadrotor(p), integrators.NewSemiImplicitEuler(),
//	    physics.NewGround(p), physics.NewPowerDraw(p))
//	_ = s.SetThrust(3)
//	_ = s.Advance(2.0)
//	fmt.Println(s.Altitude())
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Use [Simulator.Snapshot] to hand
// state to other goroutines, and [Ensemble] to run independent simulations
// in parallel.
package dynamo
