package stream

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hunterino/mavlink-camera-manager/internal/video"
)

// ErrInternal marks an internal-consistency fault: synthesis reached a
// combination the validator guarantees cannot occur. It is a programming
// error, distinct from a validation reject, and should fail loudly.
var ErrInternal = errors.New("stream: internal consistency fault")

// buildPipeline synthesizes the media-pipeline description for a validated
// configuration as the concatenation of four segments: source, transcode,
// payload and sink. The output is a wire contract with the media engine;
// every literal below is deliberate.
func buildPipeline(info *VideoAndStreamInformation) (string, error) {
	source, err := buildPipelineSource(info)
	if err != nil {
		return "", err
	}
	transcode, err := buildPipelineTranscode(info)
	if err != nil {
		return "", err
	}
	payload, err := buildPipelinePayload(info)
	if err != nil {
		return "", err
	}
	sink := buildPipelineSink(info)

	description := source + transcode + payload + sink
	slog.Info("stream: new pipeline built", "name", info.Name, "description", description)
	return description, nil
}

// buildCapabilityString encodes the pixel-format token, geometry and frame
// rate the source element must deliver. The stored frame interval is
// inverted: caps state a rate, denominator over numerator.
func buildCapabilityString(info *VideoAndStreamInformation) (string, error) {
	configuration, err := videoConfiguration(info)
	if err != nil {
		return "", err
	}

	var format string
	if _, isGst := info.VideoSource.(*video.SourceGst); isGst {
		// The pattern generator only produces raw video, and a transcode
		// step follows, so one raw format is advertised regardless of the
		// requested encode. UYVY is the one the application/x-rtp template
		// capabilities accept.
		format = "video/x-raw,format=UYVY"
	} else {
		switch configuration.Encode {
		case video.EncodeH264:
			format = "video/x-h264"
		case video.EncodeYUYV:
			format = "video/x-raw,format=YUY2"
		case video.EncodeMJPG:
			format = "image/jpeg"
		default:
			return "", fmt.Errorf("%w: unsupported encode %q in capability", ErrInternal, configuration.Encode)
		}
	}

	return fmt.Sprintf("%s,width=%d,height=%d,framerate=%d/%d",
		format,
		configuration.Width,
		configuration.Height,
		configuration.FrameInterval.Denominator,
		configuration.FrameInterval.Numerator,
	), nil
}

func buildPipelineSource(info *VideoAndStreamInformation) (string, error) {
	var element string
	switch source := info.VideoSource.(type) {
	case *video.SourceGst:
		element = fmt.Sprintf("videotestsrc pattern=%s", source.Pattern)
	case *video.SourceLocal:
		switch source.Connection.Kind {
		case video.ConnectionUsb, video.ConnectionLegacyPlatform:
			element = fmt.Sprintf("v4l2src device=%s", source.DevicePath)
		default:
			return "", fmt.Errorf("%w: unsupported local source connection %q",
				ErrInternal, source.Connection.Kind)
		}
	default:
		return "", fmt.Errorf("%w: unsupported video source %T", ErrInternal, info.VideoSource)
	}

	capability, err := buildCapabilityString(info)
	if err != nil {
		return "", err
	}
	return element + " ! " + capability, nil
}

func buildPipelineTranscode(info *VideoAndStreamInformation) (string, error) {
	configuration, err := videoConfiguration(info)
	if err != nil {
		return "", err
	}

	switch info.VideoSource.(type) {
	case *video.SourceGst:
		switch configuration.Encode {
		case video.EncodeH264:
			// Raw pattern frames need a software encode to go on the wire.
			return " ! videoconvert" +
				" ! x264enc bitrate=5000" +
				" ! video/x-h264,profile=baseline", nil
		case video.EncodeMJPG:
			return " ! jpegenc", nil
		default:
			return "", nil
		}
	case *video.SourceLocal:
		if configuration.Encode == video.EncodeYUYV {
			// The application/x-rtp templates do not accept YUY2, so raw
			// hardware frames are converted to the closest accepted
			// format, UYVY.
			return " ! videoconvert ! video/x-raw,format=UYVY", nil
		}
		return "", nil
	default:
		return "", fmt.Errorf("%w: unsupported video source %T", ErrInternal, info.VideoSource)
	}
}

func buildPipelinePayload(info *VideoAndStreamInformation) (string, error) {
	configuration, err := videoConfiguration(info)
	if err != nil {
		return "", err
	}

	// The payloader is named pay0 because the RTSP server expects that
	// exact name; it does not hurt any other endpoint type.
	switch configuration.Encode {
	case video.EncodeH264:
		return " ! h264parse" +
			" ! queue" +
			" ! rtph264pay name=pay0 config-interval=10 pt=96", nil
	case video.EncodeYUYV:
		// The transcode segment always converts raw video to UYVY, so
		// YCbCr-4:2:2 is always the right sampling to declare.
		return " ! rtpvrawpay name=pay0" +
			" ! application/x-rtp,payload=96,sampling=YCbCr-4:2:2", nil
	case video.EncodeMJPG:
		return " ! rtpjpegpay name=pay0 pt=96", nil
	default:
		return "", fmt.Errorf("%w: unsupported encode %q in payload", ErrInternal, configuration.Encode)
	}
}

func buildPipelineSink(info *VideoAndStreamInformation) string {
	endpoints := info.StreamInformation.Endpoints
	if endpoints[0].Scheme != "udp" {
		// Non-UDP pipelines are left unterminated for the external
		// transport (e.g. an RTSP mount point) to attach.
		return ""
	}

	clients := make([]string, 0, len(endpoints))
	for _, endpoint := range endpoints {
		clients = append(clients, endpoint.Hostname()+":"+endpoint.Port())
	}
	return " ! multiudpsink clients=" + strings.Join(clients, ",")
}

func videoConfiguration(info *VideoAndStreamInformation) (VideoCaptureConfiguration, error) {
	configuration, ok := info.StreamInformation.Configuration.(VideoCaptureConfiguration)
	if !ok {
		return VideoCaptureConfiguration{},
			fmt.Errorf("%w: cannot create a pipeline from a redirect source", ErrInternal)
	}
	return configuration, nil
}
