// Package stream validates requested stream configurations, synthesizes the
// GStreamer pipeline description for accepted ones and wraps the resulting
// transport in a lifecycle-managed backend.
//
// The order is strict: New validates endpoints, then encode, then scheme
// policy, rejecting before any resource is committed; only a validated
// configuration reaches pipeline synthesis, and synthesis is total over
// everything validation accepts. The description string is a wire contract
// with the media engine and is reproduced byte-for-byte for the same inputs.
//
// Backends are independent units; serializing lifecycle calls against one
// instance and keeping two instances off the same destination is the stream
// Manager's job, not the backend's.
package stream
