// Package v4l2 provides pure Go bindings to the Video4Linux2 API for the
// small surface this project needs: capability queries, format, frame-size
// and frame-interval enumeration, and hardware control access.
//
// The package talks to the kernel directly through ioctl (golang.org/x/sys),
// without cgo, so the binary cross-compiles for the arm/arm64 vehicle targets
// the same way it builds for amd64.
//
// All enumeration calls follow the kernel convention of increasing an index
// until the driver answers EINVAL; that terminator is not surfaced as an
// error, only unexpected errnos are.
package v4l2
