// Package validation contains the logic for validating
// request data.
//
// It binds requests with echo, runs the payload's own Validate method
// (usually backed by the `validator` library), and turns failures into
// field errors the client can understand
package validation
