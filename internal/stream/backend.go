package stream

import (
	"fmt"

	"github.com/hunterino/mavlink-camera-manager/internal/video"
)

// Backend is a lifecycle-managed stream. Implementations are safe against
// repeated Start and Stop calls; they are not safe for concurrent use, the
// Manager serializes access.
type Backend interface {
	// Start brings the stream up. Starting a running backend is a no-op.
	Start() error
	// Stop tears the stream down. Stopping a stopped backend is a no-op.
	Stop() error
	// IsRunning reports whether the stream is currently up.
	IsRunning() bool
	// Restart is a Stop followed by a Start, counted for status reporting.
	Restart() error
	// PipelineDescription is the synthesized pipeline, empty for redirects.
	PipelineDescription() string
	// AllowSameEndpoints reports whether another stream may share this
	// stream's endpoints.
	AllowSameEndpoints() bool
	// Info returns the configuration the backend was built from.
	Info() *VideoAndStreamInformation
}

// New validates the configuration and builds the backend matching its source
// and endpoint scheme. Nothing is started; the caller owns the lifecycle.
func New(info *VideoAndStreamInformation) (Backend, error) {
	if err := validate(info); err != nil {
		return nil, err
	}

	if _, isRedirect := info.VideoSource.(*video.SourceRedirect); isRedirect {
		return newRedirectBackend(info), nil
	}

	switch scheme := info.StreamInformation.Endpoints[0].Scheme; scheme {
	case "udp":
		return newUDPBackend(info)
	case "rtsp":
		return newRTSPBackend(info)
	default:
		return nil, fmt.Errorf("stream: no backend available for scheme %s", scheme)
	}
}
