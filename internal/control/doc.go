// Package control provides feedback controllers for the quadrotor.
//
// Controllers implement [dynamo.Controller] and return a rotor command for
// each step:
//
//   - [AltitudeHold]: PID on altitude with gravity feed-forward, symmetric thrust
//   - [Leveler]: state feedback on roll and pitch mixed over a base controller
//   - [Manual]: keyboard-driven thrust for the live view
//
// # Usage
//
//	hold := control.NewAltitudeHold(4, 0.2, 3, 5, p.Gravity)
//	sim, _ := dynamo.New(p, v, model, integ, ground, power, dynamo.WithController(hold))
//	// Controller.Compute is called before every step
//
// Controllers that carry state implement [dynamo.Resettable] and are reset
// together with the simulator.
package control
