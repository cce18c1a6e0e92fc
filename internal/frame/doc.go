// Package frame provides the coordinate-frame math shared by the rigid-body
// core.
//
// Two precisions are used:
//
//   - [Frame]: a local frame with a float64 position, used for attachments,
//     constraint offsets and anything expressed relative to a body.
//   - [GlobalFrame]: a world frame whose position is a fixed-point [Position],
//     so that bodies far from the origin keep sub-millimetre resolution.
//
// Rotations are always orthonormal 3x3 matrices. Composition is not
// commutative: a.LocalToGlobalFrame(b) places b inside a.
package frame
