package settings

import (
	"net/url"
	"path/filepath"
	"testing"

	"github.com/hunterino/mavlink-camera-manager/internal/stream"
	"github.com/hunterino/mavlink-camera-manager/internal/video"
)

func TestLoadMissingFileYieldsDefault(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if settings.HeaderVersion != headerVersion || len(settings.Streams) != 0 {
		t.Errorf("Load() = %+v, want empty defaults", settings)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	saved := &Settings{
		HeaderVersion: headerVersion,
		Streams: []StreamRecord{{
			Name:   "Front Camera",
			Source: SourceRecord{Kind: "local", Device: "/dev/video0"},
			Configuration: &VideoConfiguration{
				Encode: "H264",
				Width:  1920,
				Height: 1080,
				FrameInterval: video.FrameInterval{
					Numerator:   1,
					Denominator: 30,
				},
			},
			Endpoints: []string{"udp://192.168.0.1:5600"},
		}},
	}
	if err := Save(path, saved); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(loaded.Streams) != 1 {
		t.Fatalf("Load() returned %d streams, want 1", len(loaded.Streams))
	}

	record := loaded.Streams[0]
	if record.Name != "Front Camera" || record.Source.Device != "/dev/video0" {
		t.Errorf("record = %+v", record)
	}
	if record.Configuration == nil || record.Configuration.FrameInterval.Denominator != 30 {
		t.Errorf("configuration = %+v", record.Configuration)
	}
}

func TestToStreamResolvesLocalDevice(t *testing.T) {
	discovered := []video.Source{
		&video.SourceLocal{
			Name:       "Front Camera",
			DevicePath: "/dev/video0",
			Connection: video.ClassifyConnection("usb-0000:08:00.3-1"),
		},
	}

	record := StreamRecord{
		Name:   "Front Camera Stream",
		Source: SourceRecord{Kind: "local", Device: "/dev/video0"},
		Configuration: &VideoConfiguration{
			Encode: "H264",
			Width:  1920,
			Height: 1080,
			FrameInterval: video.FrameInterval{
				Numerator:   1,
				Denominator: 30,
			},
		},
		Endpoints: []string{"udp://192.168.0.1:5600"},
	}

	info, err := record.ToStream(discovered)
	if err != nil {
		t.Fatalf("ToStream() error: %v", err)
	}

	source, ok := info.VideoSource.(*video.SourceLocal)
	if !ok {
		t.Fatalf("VideoSource = %T, want *video.SourceLocal", info.VideoSource)
	}
	if source.Connection.Kind != video.ConnectionUsb {
		t.Errorf("connection = %+v, want the discovered classification", source.Connection)
	}

	configuration, ok := info.StreamInformation.Configuration.(stream.VideoCaptureConfiguration)
	if !ok {
		t.Fatalf("Configuration = %T, want VideoCaptureConfiguration",
			info.StreamInformation.Configuration)
	}
	if configuration.Encode != video.EncodeH264 || configuration.Width != 1920 {
		t.Errorf("configuration = %+v", configuration)
	}
}

func TestToStreamFollowsRenumberedDevice(t *testing.T) {
	// The camera persisted at /dev/video0 came back as /dev/video4 after a
	// reboot; the bus descriptor identifies it anyway.
	discovered := []video.Source{
		&video.SourceLocal{
			Name:       "Front Camera",
			DevicePath: "/dev/video4",
			Connection: video.ClassifyConnection("usb-0000:08:00.3-1"),
		},
	}

	record := StreamRecord{
		Name: "Front Camera Stream",
		Source: SourceRecord{
			Kind:       "local",
			Device:     "/dev/video0",
			Descriptor: "usb-0000:08:00.3-1",
		},
		Configuration: &VideoConfiguration{
			Encode: "H264",
			Width:  1920,
			Height: 1080,
			FrameInterval: video.FrameInterval{
				Numerator:   1,
				Denominator: 30,
			},
		},
		Endpoints: []string{"udp://192.168.0.1:5600"},
	}

	info, err := record.ToStream(discovered)
	if err != nil {
		t.Fatalf("ToStream() error: %v", err)
	}
	source, ok := info.VideoSource.(*video.SourceLocal)
	if !ok {
		t.Fatalf("VideoSource = %T, want *video.SourceLocal", info.VideoSource)
	}
	if source.DevicePath != "/dev/video4" {
		t.Errorf("DevicePath = %q, want the renumbered /dev/video4", source.DevicePath)
	}
}

func TestToStreamRejectsDescriptorMismatchAtOldPath(t *testing.T) {
	// A different camera now occupies the persisted path; binding the stream
	// to it would be wrong.
	discovered := []video.Source{
		&video.SourceLocal{
			Name:       "Other Camera",
			DevicePath: "/dev/video0",
			Connection: video.ClassifyConnection("usb-0000:08:00.3-2.1"),
		},
	}

	record := StreamRecord{
		Name: "Front Camera Stream",
		Source: SourceRecord{
			Kind:       "local",
			Device:     "/dev/video0",
			Descriptor: "usb-0000:08:00.3-1",
		},
		Endpoints: []string{"udp://192.168.0.1:5600"},
	}

	if _, err := record.ToStream(discovered); err == nil {
		t.Error("ToStream() = nil, want error for a descriptor mismatch")
	}
}

func TestFromStreamPersistsDescriptor(t *testing.T) {
	endpoint, _ := url.Parse("udp://192.168.0.1:5600")
	info := &stream.VideoAndStreamInformation{
		Name: "Front Camera Stream",
		StreamInformation: stream.StreamInformation{
			Endpoints: []*url.URL{endpoint},
			Configuration: stream.VideoCaptureConfiguration{
				Encode: video.EncodeH264,
				Width:  1920,
				Height: 1080,
				FrameInterval: video.FrameInterval{
					Numerator:   1,
					Denominator: 30,
				},
			},
		},
		VideoSource: &video.SourceLocal{
			Name:       "Front Camera",
			DevicePath: "/dev/video0",
			Connection: video.ClassifyConnection("usb-0000:08:00.3-1"),
		},
	}

	record, err := FromStream(info)
	if err != nil {
		t.Fatalf("FromStream() error: %v", err)
	}
	if record.Source.Descriptor != "usb-0000:08:00.3-1" {
		t.Errorf("Descriptor = %q, want the bus descriptor persisted", record.Source.Descriptor)
	}
}

func TestToStreamRejectsMissingDevice(t *testing.T) {
	record := StreamRecord{
		Name:      "Gone Camera",
		Source:    SourceRecord{Kind: "local", Device: "/dev/video9"},
		Endpoints: []string{"udp://192.168.0.1:5600"},
	}
	if _, err := record.ToStream(nil); err == nil {
		t.Error("ToStream() = nil for an absent device, want error")
	}
}

func TestToStreamRedirect(t *testing.T) {
	record := StreamRecord{
		Name:      "External Stream",
		Source:    SourceRecord{Kind: "redirect", Name: "External Stream", Scheme: "rtsp"},
		Endpoints: []string{"rtsp://192.168.0.10:8554/external"},
	}

	info, err := record.ToStream(nil)
	if err != nil {
		t.Fatalf("ToStream() error: %v", err)
	}
	if _, ok := info.StreamInformation.Configuration.(stream.RedirectCaptureConfiguration); !ok {
		t.Errorf("Configuration = %T, want RedirectCaptureConfiguration",
			info.StreamInformation.Configuration)
	}
}

func TestRoundTripThroughStream(t *testing.T) {
	endpoint, _ := url.Parse("udp://192.168.0.1:5600")
	info := &stream.VideoAndStreamInformation{
		Name: "Pattern Stream",
		StreamInformation: stream.StreamInformation{
			Endpoints: []*url.URL{endpoint},
			Configuration: stream.VideoCaptureConfiguration{
				Encode: video.EncodeH264,
				Width:  1280,
				Height: 720,
				FrameInterval: video.FrameInterval{
					Numerator:   1,
					Denominator: 30,
				},
			},
		},
		VideoSource: &video.SourceGst{Name: "Pattern Stream", Pattern: "ball"},
	}

	record, err := FromStream(info)
	if err != nil {
		t.Fatalf("FromStream() error: %v", err)
	}
	rebuilt, err := record.ToStream(nil)
	if err != nil {
		t.Fatalf("ToStream() error: %v", err)
	}

	source, ok := rebuilt.VideoSource.(*video.SourceGst)
	if !ok || source.Pattern != "ball" {
		t.Errorf("VideoSource = %+v, want the pattern source back", rebuilt.VideoSource)
	}
	if rebuilt.StreamInformation.Endpoints[0].String() != "udp://192.168.0.1:5600" {
		t.Errorf("endpoint = %v", rebuilt.StreamInformation.Endpoints[0])
	}
}
