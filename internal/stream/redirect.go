package stream

import (
	"log/slog"
	"sync"
)

// redirectBackend represents a stream whose media path is produced by an
// external system. There is nothing to run; the backend only tracks whether
// the redirection is advertised.
type redirectBackend struct {
	info *VideoAndStreamInformation

	mu      sync.Mutex
	running bool
}

func newRedirectBackend(info *VideoAndStreamInformation) *redirectBackend {
	return &redirectBackend{info: info}
}

func (b *redirectBackend) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return nil
	}
	b.running = true
	slog.Info("stream: redirect stream advertised",
		"name", b.info.Name,
		"endpoints", b.info.StreamInformation.Endpoints,
	)
	return nil
}

func (b *redirectBackend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return nil
	}
	b.running = false
	slog.Info("stream: redirect stream withdrawn", "name", b.info.Name)
	return nil
}

func (b *redirectBackend) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

func (b *redirectBackend) Restart() error {
	if err := b.Stop(); err != nil {
		return err
	}
	return b.Start()
}

func (b *redirectBackend) PipelineDescription() string { return "" }

// Redirected endpoints are external; several advertised streams may point at
// the same one.
func (b *redirectBackend) AllowSameEndpoints() bool { return true }

func (b *redirectBackend) Info() *VideoAndStreamInformation { return b.info }
