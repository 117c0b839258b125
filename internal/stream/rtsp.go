package stream

import (
	"fmt"
	"log/slog"
	"sync"
)

const rtspServerPort = "8554"

// rtspMounts maps mount paths to pipeline descriptions for the RTSP server
// to serve. One process runs one server, so the table is package state.
var rtspMounts = struct {
	sync.Mutex
	byPath map[string]string
}{byPath: map[string]string{}}

// RTSPMounts returns a snapshot of the active mount paths and their pipeline
// descriptions.
func RTSPMounts() map[string]string {
	rtspMounts.Lock()
	defer rtspMounts.Unlock()

	snapshot := make(map[string]string, len(rtspMounts.byPath))
	for path, description := range rtspMounts.byPath {
		snapshot[path] = description
	}
	return snapshot
}

// rtspBackend serves a pipeline through the RTSP server's mount table. The
// pipeline is left unterminated: the server attaches its own transport behind
// the pay0 payloader.
type rtspBackend struct {
	info        *VideoAndStreamInformation
	description string
	path        string

	mu      sync.Mutex
	running bool
}

func newRTSPBackend(info *VideoAndStreamInformation) (*rtspBackend, error) {
	endpoint := info.StreamInformation.Endpoints[0]

	if endpoint.Scheme != "rtsp" {
		return nil, fmt.Errorf("stream: only the rtsp scheme is supported by the RTSP server, endpoint: %v", endpoint)
	}
	if endpoint.Port() != rtspServerPort {
		return nil, fmt.Errorf(
			"stream: the RTSP server is only available for port %s, endpoint: %v", rtspServerPort, endpoint)
	}
	segments := pathSegments(endpoint)
	if len(segments) != 1 {
		return nil, fmt.Errorf(
			"stream: RTSP endpoints must have a single path segment, like rtsp://0.0.0.0:8554/video1, endpoint: %v",
			endpoint)
	}

	description, err := buildPipeline(info)
	if err != nil {
		return nil, err
	}

	return &rtspBackend{
		info:        info,
		description: description,
		path:        "/" + segments[0],
	}, nil
}

func (b *rtspBackend) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return nil
	}

	rtspMounts.Lock()
	defer rtspMounts.Unlock()
	if _, taken := rtspMounts.byPath[b.path]; taken {
		return fmt.Errorf("stream: RTSP mount path %s is already in use", b.path)
	}
	rtspMounts.byPath[b.path] = b.description

	b.running = true
	slog.Info("stream: rtsp stream mounted", "name", b.info.Name, "path", b.path)
	return nil
}

func (b *rtspBackend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return nil
	}

	rtspMounts.Lock()
	delete(rtspMounts.byPath, b.path)
	rtspMounts.Unlock()

	b.running = false
	slog.Info("stream: rtsp stream unmounted", "name", b.info.Name, "path", b.path)
	return nil
}

func (b *rtspBackend) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

func (b *rtspBackend) Restart() error {
	if err := b.Stop(); err != nil {
		return err
	}
	return b.Start()
}

func (b *rtspBackend) PipelineDescription() string { return b.description }

func (b *rtspBackend) AllowSameEndpoints() bool { return false }

func (b *rtspBackend) Info() *VideoAndStreamInformation { return b.info }
