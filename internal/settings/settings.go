package settings

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hunterino/mavlink-camera-manager/internal/stream"
	"github.com/hunterino/mavlink-camera-manager/internal/video"
)

const headerVersion = 1

// Settings is the persisted configuration file.
type Settings struct {
	HeaderVersion int            `yaml:"header_version"`
	Streams       []StreamRecord `yaml:"streams"`
}

// StreamRecord is one persisted stream.
type StreamRecord struct {
	Name          string               `yaml:"name"`
	Source        SourceRecord         `yaml:"source"`
	Configuration *VideoConfiguration  `yaml:"configuration,omitempty"`
	Endpoints     []string             `yaml:"endpoints"`
}

// SourceRecord identifies a video source without depending on runtime state.
// Kind selects which of the other fields is meaningful. Local sources carry
// the bus descriptor alongside the device path: the kernel may renumber
// /dev/video* between boots, the descriptor stays.
type SourceRecord struct {
	Kind       string `yaml:"kind"` // local, test or redirect
	Device     string `yaml:"device,omitempty"`
	Descriptor string `yaml:"descriptor,omitempty"`
	Pattern    string `yaml:"pattern,omitempty"`
	Name       string `yaml:"name,omitempty"`
	Scheme     string `yaml:"scheme,omitempty"`
}

// VideoConfiguration is the persisted capture configuration. Absent for
// redirect streams.
type VideoConfiguration struct {
	Encode        string              `yaml:"encode"`
	Width         uint32              `yaml:"width"`
	Height        uint32              `yaml:"height"`
	FrameInterval video.FrameInterval `yaml:"frame_interval"`
}

// Default returns an empty configuration at the current header version.
func Default() *Settings {
	return &Settings{HeaderVersion: headerVersion}
}

// Load reads the settings file. A missing file yields Default, not an error;
// anything else that goes wrong is surfaced.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("settings: parse %s: %w", path, err)
	}
	if settings.HeaderVersion != headerVersion {
		return nil, fmt.Errorf("settings: unsupported header version %d in %s",
			settings.HeaderVersion, path)
	}
	return &settings, nil
}

// Save writes the settings file, creating the parent directory if needed.
func Save(path string, settings *Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("settings: create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("settings: write %s: %w", path, err)
	}
	return nil
}

// FromStream converts a running stream's configuration back into a record.
func FromStream(info *stream.VideoAndStreamInformation) (StreamRecord, error) {
	record := StreamRecord{Name: info.Name}

	switch source := info.VideoSource.(type) {
	case *video.SourceLocal:
		record.Source = SourceRecord{
			Kind:       "local",
			Device:     source.DevicePath,
			Descriptor: source.Connection.Descriptor,
		}
	case *video.SourceGst:
		record.Source = SourceRecord{Kind: "test", Name: source.Name, Pattern: source.Pattern}
	case *video.SourceRedirect:
		record.Source = SourceRecord{Kind: "redirect", Name: source.Name, Scheme: source.Scheme}
	default:
		return StreamRecord{}, fmt.Errorf("settings: unsupported video source %T", info.VideoSource)
	}

	if configuration, ok := info.StreamInformation.Configuration.(stream.VideoCaptureConfiguration); ok {
		record.Configuration = &VideoConfiguration{
			Encode:        string(configuration.Encode),
			Width:         configuration.Width,
			Height:        configuration.Height,
			FrameInterval: configuration.FrameInterval,
		}
	}

	for _, endpoint := range info.StreamInformation.Endpoints {
		record.Endpoints = append(record.Endpoints, endpoint.String())
	}
	return record, nil
}

// ToStream rebuilds the stream configuration from a record. Local sources are
// resolved against the discovered device list so the connection
// classification is current, not the one from the previous boot.
func (r StreamRecord) ToStream(discovered []video.Source) (*stream.VideoAndStreamInformation, error) {
	source, err := r.resolveSource(discovered)
	if err != nil {
		return nil, err
	}

	var configuration stream.CaptureConfiguration
	if r.Configuration != nil {
		configuration = stream.VideoCaptureConfiguration{
			Encode:        video.ParseEncode(r.Configuration.Encode),
			Width:         r.Configuration.Width,
			Height:        r.Configuration.Height,
			FrameInterval: r.Configuration.FrameInterval,
		}
	} else {
		configuration = stream.RedirectCaptureConfiguration{}
	}

	endpoints := make([]*url.URL, 0, len(r.Endpoints))
	for _, raw := range r.Endpoints {
		endpoint, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("settings: stream %q: parse endpoint %q: %w", r.Name, raw, err)
		}
		endpoints = append(endpoints, endpoint)
	}

	return &stream.VideoAndStreamInformation{
		Name: r.Name,
		StreamInformation: stream.StreamInformation{
			Endpoints:     endpoints,
			Configuration: configuration,
		},
		VideoSource: source,
	}, nil
}

func (r StreamRecord) resolveSource(discovered []video.Source) (video.Source, error) {
	switch r.Source.Kind {
	case "local":
		// The descriptor is the camera's stable identity; the device path is
		// only a fallback for records written before the descriptor existed.
		// A path match alone would lose the camera after the OS renumbers
		// /dev/video* nodes.
		var byPath *video.SourceLocal
		for _, candidate := range discovered {
			local, ok := candidate.(*video.SourceLocal)
			if !ok {
				continue
			}
			if r.Source.Descriptor != "" && local.Connection.Descriptor == r.Source.Descriptor {
				return local, nil
			}
			if local.DevicePath == r.Source.Device {
				byPath = local
			}
		}
		// Path fallback only for records without a descriptor: with one, a
		// camera at the old path is a different camera, not this one.
		if r.Source.Descriptor == "" && byPath != nil {
			return byPath, nil
		}
		return nil, fmt.Errorf("settings: stream %q: device %s (descriptor %q) is not available",
			r.Name, r.Source.Device, r.Source.Descriptor)
	case "test":
		return &video.SourceGst{Name: r.Source.Name, Pattern: r.Source.Pattern}, nil
	case "redirect":
		return &video.SourceRedirect{Name: r.Source.Name, Scheme: r.Source.Scheme}, nil
	default:
		return nil, fmt.Errorf("settings: stream %q: unknown source kind %q", r.Name, r.Source.Kind)
	}
}
