package stream

import (
	"net/url"
	"strings"

	"github.com/hunterino/mavlink-camera-manager/internal/video"
)

// CaptureConfiguration selects what a stream carries: a locally captured and
// encoded video (VideoCaptureConfiguration) or a pass-through redirect
// (RedirectCaptureConfiguration).
type CaptureConfiguration interface {
	isCaptureConfiguration()
}

// VideoCaptureConfiguration pins the encode, geometry and frame interval a
// capture source must produce.
type VideoCaptureConfiguration struct {
	Encode        video.EncodeKind
	Width         uint32
	Height        uint32
	FrameInterval video.FrameInterval
}

// RedirectCaptureConfiguration carries no media parameters: the media path
// is produced externally and only forwarded.
type RedirectCaptureConfiguration struct{}

func (VideoCaptureConfiguration) isCaptureConfiguration()    {}
func (RedirectCaptureConfiguration) isCaptureConfiguration() {}

// StreamInformation is where a stream goes and what it carries.
type StreamInformation struct {
	Endpoints     []*url.URL
	Configuration CaptureConfiguration
}

// VideoAndStreamInformation is the unit handed to validation and synthesis:
// a named pairing of a capture source with its stream destination.
type VideoAndStreamInformation struct {
	Name              string
	StreamInformation StreamInformation
	VideoSource       video.Source
}

// pathSegments splits a URL path into its non-empty segments.
func pathSegments(u *url.URL) []string {
	trimmed := strings.Trim(u.Path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
