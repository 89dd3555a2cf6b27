// Package physics implements the quadrotor flight model behind
// [dynamo.Simulator]:
//
//   - [Quadrotor]: gravity, rotor thrust, wind, quadratic drag and torque
//   - [Ground]: flat ground plane with friction and an optional [LiftZone]
//   - [PowerDraw]: actuator energy proxy
//
// The orientation-rate vector of the vehicle is read as static x-y-z Euler
// angles and converted to an axis-angle rotation every step (see package
// rotation). This is not a conventional attitude representation; trajectories
// depend on it exactly.
package physics
