// Package viz is the terminal flight view, built on Bubble Tea.
//
//   - [Model]: live view of one simulator with side, top and 3D projections
//   - [Picker]: preset menu that launches a [Model]
//   - [Canvas]: Braille sub-pixel canvas the views draw on
//
// # Key Bindings
//
//	W/S   - All rotors up / down (manual controller)
//	1..4  - Select rotor, Up/Down to trim it
//	Space - Pause/Resume
//	R     - Reset to the origin
//	V     - Cycle views
//	[ ]   - Replay recorded history
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz
