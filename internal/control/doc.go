// Package control provides the controllers that close the loop around the
// vehicle model. Every controller returns raw per-thruster commands which
// the scenario runner sends through the PWM or RPM path.
//
//   - [PID]: tracks one state entry with one thruster slot
//   - [Manual]: operator-set commands, nudged from the live view
//   - [None]: all thrusters off
//   - [Sum]: adds several controllers
//
// # Usage
//
//	depth := control.NewPID(8, 2, 6, 0.6, 0.05, 0.2, 5.0) // z index, heave slot
//	heading := control.NewPID(11, 5, 6, 0.8, 0, 0.3, 1.57)
//	heading.Angular = true
//	ctrl := control.Sum{depth, heading}
//
// Controllers implementing [dynamo.Configurable] support live tuning.
package control
