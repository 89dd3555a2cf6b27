// Package rotation converts between the attitude representations used by the
// flight model.
//
// Euler triplets are interpreted in the static x-y-z convention (rotate about
// world x, then world y, then world z). The conversions reproduce the usual
// robotics-toolkit behaviour bit for bit where it matters:
//
//   - [EulerToAxisAngle] goes through a unit quaternion and reports the
//     identity rotation as axis (1, 0, 0), angle 0.
//   - [AxisAngleToEuler] goes through a rotation matrix and switches to the
//     gimbal-lock branch when the pitch cosine drops below 4 ulp.
//
// The vehicle state feeds its orientation-rate vector through this round trip
// every step, so small numerical differences here change whole trajectories.
package rotation
