package stream

import (
	"log/slog"
	"sync"
)

// udpBackend runs a pipeline that terminates in a multiudpsink. The pipeline
// owns its destinations, so two UDP streams must never share an endpoint.
type udpBackend struct {
	info        *VideoAndStreamInformation
	description string

	mu      sync.Mutex
	runner  pipelineRunner
	running bool
}

func newUDPBackend(info *VideoAndStreamInformation) (*udpBackend, error) {
	description, err := buildPipeline(info)
	if err != nil {
		return nil, err
	}
	return &udpBackend{
		info:        info,
		description: description,
	}, nil
}

func (b *udpBackend) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return nil
	}

	runner := newPipelineRunner(b.info.Name)
	if err := runner.Start(b.description); err != nil {
		return err
	}

	b.runner = runner
	b.running = true
	slog.Info("stream: udp stream started",
		"name", b.info.Name,
		"endpoints", b.info.StreamInformation.Endpoints,
	)
	return nil
}

func (b *udpBackend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return nil
	}

	if err := b.runner.Stop(); err != nil {
		return err
	}
	b.runner = nil
	b.running = false
	slog.Info("stream: udp stream stopped", "name", b.info.Name)
	return nil
}

func (b *udpBackend) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

func (b *udpBackend) Restart() error {
	if err := b.Stop(); err != nil {
		return err
	}
	return b.Start()
}

func (b *udpBackend) PipelineDescription() string { return b.description }

func (b *udpBackend) AllowSameEndpoints() bool { return false }

func (b *udpBackend) Info() *VideoAndStreamInformation { return b.info }
