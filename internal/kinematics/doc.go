// Package kinematics holds the frame transforms used by the vehicle model:
// ZYX Euler angles and unit quaternions, body/inertial rotation matrices,
// the Euler-rate Jacobian and the 6x6 aggregates built from them.
//
// Angles follow the roll-pitch-yaw (ZYX) convention of marine vehicles. The
// inertial frame is north-east-down.
package kinematics
