package stream

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrStreamNotFound is returned by Manager operations given an id with no
// registered stream.
var ErrStreamNotFound = errors.New("stream: stream not found")

// Status is a point-in-time view of one managed stream.
type Status struct {
	ID        uuid.UUID
	Name      string
	Running   bool
	Uptime    time.Duration
	Restarts  uint32
	Pipeline  string
	Endpoints []string
}

type managedStream struct {
	backend   Backend
	startedAt time.Time
	restarts  uint32
}

// Manager owns the set of running streams. It serializes every lifecycle
// call, enforces the endpoint sharing policy between streams and tags each
// stream with a stable id.
type Manager struct {
	mu      sync.Mutex
	streams map[uuid.UUID]*managedStream
}

func NewManager() *Manager {
	return &Manager{streams: map[uuid.UUID]*managedStream{}}
}

// Add validates the configuration, builds its backend, starts it and
// registers it. Endpoints already claimed by a registered stream are
// rejected unless both sides allow sharing.
func (m *Manager) Add(info *VideoAndStreamInformation) (uuid.UUID, error) {
	backend, err := New(info)
	if err != nil {
		return uuid.Nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkEndpointCollision(backend); err != nil {
		return uuid.Nil, err
	}

	if err := backend.Start(); err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	m.streams[id] = &managedStream{
		backend:   backend,
		startedAt: time.Now(),
	}
	slog.Info("stream: stream registered", "id", id, "name", info.Name)
	return id, nil
}

func (m *Manager) checkEndpointCollision(candidate Backend) error {
	claimed := map[string]string{}
	for _, stream := range m.streams {
		if stream.backend.AllowSameEndpoints() {
			continue
		}
		for _, endpoint := range stream.backend.Info().StreamInformation.Endpoints {
			claimed[endpoint.String()] = stream.backend.Info().Name
		}
	}

	if candidate.AllowSameEndpoints() {
		return nil
	}
	for _, endpoint := range candidate.Info().StreamInformation.Endpoints {
		if owner, taken := claimed[endpoint.String()]; taken {
			return fmt.Errorf("stream: endpoint %v is already in use by stream %q", endpoint, owner)
		}
	}
	return nil
}

// Remove stops the stream and drops it from the registry. The stop error is
// logged but does not keep the stream registered.
func (m *Manager) Remove(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stream, ok := m.streams[id]
	if !ok {
		return fmt.Errorf("%w: id %s", ErrStreamNotFound, id)
	}

	if err := stream.backend.Stop(); err != nil {
		slog.Error("stream: failed to stop stream on removal",
			"id", id,
			"name", stream.backend.Info().Name,
			"error", err,
		)
	}
	delete(m.streams, id)
	slog.Info("stream: stream removed", "id", id, "name", stream.backend.Info().Name)
	return nil
}

// Restart bounces the stream and counts the bounce.
func (m *Manager) Restart(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stream, ok := m.streams[id]
	if !ok {
		return fmt.Errorf("%w: id %s", ErrStreamNotFound, id)
	}

	if err := stream.backend.Restart(); err != nil {
		return err
	}
	stream.restarts++
	stream.startedAt = time.Now()
	return nil
}

// Lookup returns the configuration of a registered stream.
func (m *Manager) Lookup(id uuid.UUID) (*VideoAndStreamInformation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stream, ok := m.streams[id]
	if !ok {
		return nil, false
	}
	return stream.backend.Info(), true
}

// Status reports every registered stream, in no particular order.
func (m *Manager) Status() []Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	statuses := make([]Status, 0, len(m.streams))
	for id, stream := range m.streams {
		info := stream.backend.Info()
		endpoints := make([]string, 0, len(info.StreamInformation.Endpoints))
		for _, endpoint := range info.StreamInformation.Endpoints {
			endpoints = append(endpoints, endpoint.String())
		}
		statuses = append(statuses, Status{
			ID:        id,
			Name:      info.Name,
			Running:   stream.backend.IsRunning(),
			Uptime:    time.Since(stream.startedAt),
			Restarts:  stream.restarts,
			Pipeline:  stream.backend.PipelineDescription(),
			Endpoints: endpoints,
		})
	}
	return statuses
}

// Close stops every stream and empties the registry. Used on shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, stream := range m.streams {
		if err := stream.backend.Stop(); err != nil {
			slog.Error("stream: failed to stop stream on shutdown",
				"id", id,
				"name", stream.backend.Info().Name,
				"error", err,
			)
		}
		delete(m.streams, id)
	}
}
