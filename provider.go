package cameramanager

import (
	"github.com/hunterino/mavlink-camera-manager/internal/settings"
	"github.com/hunterino/mavlink-camera-manager/internal/stream"
	"github.com/hunterino/mavlink-camera-manager/internal/video"
)

// The implementation lives in the internal packages; this package is the
// public contract and re-exports the types a consumer composes with.

// Camera is a discovered local V4L2 capture device.
type Camera = video.SourceLocal

// Source is any stream origin: a Camera, a TestPatternSource or a
// RedirectSource.
type Source = video.Source

// TestPatternSource is a synthetic source producing a GStreamer test pattern.
type TestPatternSource = video.SourceGst

// RedirectSource is a stream produced externally and only advertised here.
type RedirectSource = video.SourceRedirect

// Format, Size and FrameInterval describe what a source can produce.
type (
	Format        = video.Format
	Size          = video.Size
	FrameInterval = video.FrameInterval
)

// EncodeKind is the compression or pixel format of a stream.
type EncodeKind = video.EncodeKind

const (
	EncodeH264 = video.EncodeH264
	EncodeH265 = video.EncodeH265
	EncodeYUYV = video.EncodeYUYV
	EncodeMJPG = video.EncodeMJPG
)

// Control is one adjustable hardware control of a Camera.
type Control = video.Control

// Stream configuration types accepted by Manager.Add.
type (
	VideoAndStreamInformation    = stream.VideoAndStreamInformation
	StreamInformation            = stream.StreamInformation
	VideoCaptureConfiguration    = stream.VideoCaptureConfiguration
	RedirectCaptureConfiguration = stream.RedirectCaptureConfiguration
)

// Manager owns the running streams.
type Manager = stream.Manager

// StreamStatus is a point-in-time view of one managed stream.
type StreamStatus = stream.Status

// Settings is the persisted stream configuration.
type Settings = settings.Settings

// Cameras enumerates the local capture devices. Nodes that cannot be probed
// or do not capture video are skipped; the result may be empty.
func Cameras() []*Camera {
	return video.DiscoverLocal()
}

// NewManager returns an empty stream manager.
func NewManager() *Manager {
	return stream.NewManager()
}

// LoadSettings reads the persisted streams; a missing file yields defaults.
func LoadSettings(path string) (*Settings, error) {
	return settings.Load(path)
}

// SaveSettings writes the persisted streams.
func SaveSettings(path string, s *Settings) error {
	return settings.Save(path, s)
}
