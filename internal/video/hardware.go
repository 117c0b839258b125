package video

import (
	"path/filepath"

	"github.com/hunterino/mavlink-camera-manager/internal/v4l2"
)

// captureDevice is the slice of the V4L2 device surface the probing code
// uses. Tests substitute a fake through the package hooks below.
type captureDevice interface {
	Capability() (v4l2.Capability, error)
	Formats() ([]v4l2.FormatDescription, error)
	FrameSizes(format v4l2.FourCC) ([]v4l2.FrameSize, error)
	FrameIntervals(format v4l2.FourCC, width, height uint32) ([]v4l2.FrameInterval, error)
	QueryControls() ([]v4l2.ControlDescription, error)
	ControlValue(id uint32) (int64, error)
	SetControlValue(id uint32, value int64) error
	Close() error
}

var openDevice = func(path string) (captureDevice, error) {
	return v4l2.Open(path)
}

var listDeviceNodes = func() ([]string, error) {
	return filepath.Glob("/dev/video*")
}
