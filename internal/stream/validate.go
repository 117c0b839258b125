package stream

import (
	"fmt"

	"github.com/hunterino/mavlink-camera-manager/internal/video"
)

// validate runs the three-stage configuration check: endpoints, then encode,
// then scheme policy. It is pure, commits no resource and short-circuits on
// the first failure.
func validate(info *VideoAndStreamInformation) error {
	if err := checkEndpoints(info); err != nil {
		return err
	}
	if err := checkEncode(info); err != nil {
		return err
	}
	return checkScheme(info)
}

func checkEndpoints(info *VideoAndStreamInformation) error {
	endpoints := info.StreamInformation.Endpoints

	if len(endpoints) == 0 {
		return fmt.Errorf("stream: endpoints are empty")
	}

	scheme := endpoints[0].Scheme
	for _, endpoint := range endpoints[1:] {
		if endpoint.Scheme != scheme {
			return fmt.Errorf("stream: endpoint schemes are not the same: %v", endpoints)
		}
	}
	return nil
}

func checkEncode(info *VideoAndStreamInformation) error {
	configuration, ok := info.StreamInformation.Configuration.(VideoCaptureConfiguration)
	if !ok {
		// Redirect configurations impose no encode constraint.
		return nil
	}

	switch encode := configuration.Encode; encode {
	case video.EncodeH264, video.EncodeYUYV, video.EncodeMJPG:
		return nil
	default:
		if !encode.Known() {
			return fmt.Errorf("stream: encode is not supported and also unknown: %s", encode)
		}
		return fmt.Errorf("stream: only H264, YUYV and MJPG encodes are supported now, used: %s", encode)
	}
}

func checkScheme(info *VideoAndStreamInformation) error {
	endpoints := info.StreamInformation.Endpoints
	scheme := endpoints[0].Scheme

	var encode video.EncodeKind
	if configuration, ok := info.StreamInformation.Configuration.(VideoCaptureConfiguration); ok {
		encode = configuration.Encode
	}

	if _, isRedirect := info.VideoSource.(*video.SourceRedirect); isRedirect {
		switch scheme {
		case "udp", "udp265", "rtsp", "mpegts", "tcp":
			return nil
		default:
			return fmt.Errorf(
				"stream: the URL's scheme for redirect endpoints should be udp, udp265, rtsp, mpegts or tcp, but was: %q",
				scheme)
		}
	}

	switch scheme {
	case "rtsp":
		if len(endpoints) > 1 {
			return fmt.Errorf("stream: multiple RTSP endpoints are not acceptable: %v", endpoints)
		}
	case "udp":
		if encode == video.EncodeH265 {
			return fmt.Errorf(
				"stream: endpoint with udp scheme only supports H264, encode type is H265, the scheme should be udp265")
		}
		for _, endpoint := range endpoints {
			if endpoint.Hostname() == "" || endpoint.Port() == "" {
				return fmt.Errorf(
					"stream: endpoint with udp scheme should contain host and port, endpoints: %v", endpoints)
			}
		}
	case "udp265":
		if encode != video.EncodeH265 {
			return fmt.Errorf(
				"stream: endpoint with udp265 scheme only supports H265 encode, encode: %s, endpoints: %v",
				encode, endpoints)
		}
	default:
		return fmt.Errorf("stream: scheme is not accepted as stream endpoint: %s", scheme)
	}
	return nil
}
