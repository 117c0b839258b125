// Package video models the capture sources this manager can stream from and
// probes their hardware capabilities.
//
// Three source families exist: local V4L2 devices (SourceLocal), synthetic
// GStreamer test-pattern generators (SourceGst) and redirects to externally
// produced streams (SourceRedirect). Local sources are discovered from
// /dev/video* and classified by the bus descriptor the driver reports, which
// survives device-path renumbering and is therefore the stable identity used
// when reconciling a source after a reboot or re-plug.
//
// Capability probing is best-effort by design: a device or a single
// size/interval that cannot be queried is logged and skipped, and the caller
// receives the partial result. Interval lists attached to a Size are ordered
// fastest frame rate first; consumers picking "the first interval" as a
// default rely on that ordering.
package video
