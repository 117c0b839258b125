package stream

import (
	"fmt"
	"testing"

	"github.com/hunterino/mavlink-camera-manager/internal/video"
)

// fakeRunner stands in for the media engine and records lifecycle calls.
type fakeRunner struct {
	description string
	starts      int
	stops       int
	startErr    error
}

func (r *fakeRunner) Start(description string) error {
	if r.startErr != nil {
		return r.startErr
	}
	r.description = description
	r.starts++
	return nil
}

func (r *fakeRunner) Stop() error {
	r.stops++
	return nil
}

func installFakeRunner(t *testing.T) *fakeRunner {
	t.Helper()

	runner := &fakeRunner{}
	prev := newPipelineRunner
	newPipelineRunner = func(string) pipelineRunner { return runner }
	t.Cleanup(func() { newPipelineRunner = prev })
	return runner
}

func TestNewDispatch(t *testing.T) {
	installFakeRunner(t)

	tests := []struct {
		name       string
		info       *VideoAndStreamInformation
		wantErr    bool
		allowShare bool
	}{
		{"udp capture", captureInfo(t, video.EncodeH264, "udp://192.168.0.1:5600"), false, false},
		{"rtsp capture", captureInfo(t, video.EncodeH264, "rtsp://0.0.0.0:8554/video1"), false, false},
		{"redirect", redirectInfo(t, "rtsp://192.168.0.10:8554/external"), false, true},
		{"invalid configuration", captureInfo(t, video.EncodeH265, "udp://192.168.0.1:5600"), true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := New(tt.info)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if backend.AllowSameEndpoints() != tt.allowShare {
				t.Errorf("AllowSameEndpoints() = %v, want %v",
					backend.AllowSameEndpoints(), tt.allowShare)
			}
			if backend.IsRunning() {
				t.Error("IsRunning() = true for a freshly built backend")
			}
		})
	}
}

func TestNewRTSPEndpointPolicy(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		wantErr  bool
	}{
		{"single path segment on the server port", "rtsp://0.0.0.0:8554/video1", false},
		{"wrong port", "rtsp://0.0.0.0:554/video1", true},
		{"missing path", "rtsp://0.0.0.0:8554", true},
		{"nested path", "rtsp://0.0.0.0:8554/a/b", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(captureInfo(t, video.EncodeH264, tt.endpoint))
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%s) error = %v, wantErr %v", tt.endpoint, err, tt.wantErr)
			}
		})
	}
}

func TestUDPBackendLifecycle(t *testing.T) {
	runner := installFakeRunner(t)

	backend, err := New(captureInfo(t, video.EncodeH264, "udp://192.168.0.1:5600"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if err := backend.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if !backend.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}
	if runner.description != backend.PipelineDescription() {
		t.Errorf("runner got %q, want the backend pipeline %q",
			runner.description, backend.PipelineDescription())
	}

	// Start and Stop are idempotent.
	if err := backend.Start(); err != nil {
		t.Fatalf("second Start() error: %v", err)
	}
	if runner.starts != 1 {
		t.Errorf("runner started %d times, want 1", runner.starts)
	}

	if err := backend.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if err := backend.Stop(); err != nil {
		t.Fatalf("second Stop() error: %v", err)
	}
	if runner.stops != 1 {
		t.Errorf("runner stopped %d times, want 1", runner.stops)
	}
	if backend.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}

	if err := backend.Restart(); err != nil {
		t.Fatalf("Restart() error: %v", err)
	}
	if !backend.IsRunning() {
		t.Error("IsRunning() = false after Restart")
	}
}

func TestUDPBackendStartFailure(t *testing.T) {
	runner := installFakeRunner(t)
	runner.startErr = fmt.Errorf("engine refused")

	backend, err := New(captureInfo(t, video.EncodeH264, "udp://192.168.0.1:5600"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := backend.Start(); err == nil {
		t.Fatal("Start() = nil, want the engine failure surfaced")
	}
	if backend.IsRunning() {
		t.Error("IsRunning() = true after failed Start")
	}
}

func TestRTSPBackendMounts(t *testing.T) {
	backend, err := New(captureInfo(t, video.EncodeH264, "rtsp://0.0.0.0:8554/video9"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if err := backend.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(func() { backend.Stop() })

	mounts := RTSPMounts()
	if mounts["/video9"] != backend.PipelineDescription() {
		t.Errorf("mount table = %v, want /video9 serving the backend pipeline", mounts)
	}

	// The mount path is exclusive while the stream runs.
	other, err := New(captureInfo(t, video.EncodeMJPG, "rtsp://0.0.0.0:8554/video9"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := other.Start(); err == nil {
		other.Stop()
		t.Fatal("Start() = nil for a taken mount path, want error")
	}

	if err := backend.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if _, taken := RTSPMounts()["/video9"]; taken {
		t.Error("mount still present after Stop")
	}
}

func TestManagerEndpointCollision(t *testing.T) {
	installFakeRunner(t)
	manager := NewManager()
	t.Cleanup(manager.Close)

	first, err := manager.Add(captureInfo(t, video.EncodeH264, "udp://192.168.0.1:5600"))
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	if _, err := manager.Add(captureInfo(t, video.EncodeMJPG, "udp://192.168.0.1:5600")); err == nil {
		t.Fatal("Add() = nil for a claimed endpoint, want error")
	}

	// Redirects may share endpoints freely.
	if _, err := manager.Add(redirectInfo(t, "rtsp://192.168.0.10:8554/external")); err != nil {
		t.Fatalf("Add() redirect error: %v", err)
	}
	if _, err := manager.Add(redirectInfo(t, "rtsp://192.168.0.10:8554/external")); err != nil {
		t.Fatalf("Add() second redirect error: %v", err)
	}

	if err := manager.Remove(first); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if _, err := manager.Add(captureInfo(t, video.EncodeMJPG, "udp://192.168.0.1:5600")); err != nil {
		t.Fatalf("Add() after Remove error: %v", err)
	}
}

func TestManagerStatusAndRestart(t *testing.T) {
	installFakeRunner(t)
	manager := NewManager()
	t.Cleanup(manager.Close)

	id, err := manager.Add(captureInfo(t, video.EncodeH264, "udp://192.168.0.1:5600"))
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	if err := manager.Restart(id); err != nil {
		t.Fatalf("Restart() error: %v", err)
	}

	statuses := manager.Status()
	if len(statuses) != 1 {
		t.Fatalf("Status() returned %d entries, want 1", len(statuses))
	}
	status := statuses[0]
	if status.ID != id || !status.Running || status.Restarts != 1 {
		t.Errorf("status = %+v, want running with one restart", status)
	}
	if status.Pipeline == "" {
		t.Error("status pipeline is empty for a capture stream")
	}

	if err := manager.Remove(id); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if err := manager.Remove(id); err == nil {
		t.Error("Remove() = nil for an unknown id, want ErrStreamNotFound")
	}
}
