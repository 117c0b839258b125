package stream

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
)

// pipelineRunner abstracts the media engine behind a backend: parse a
// description, run it, tear it down. Backends hold exactly one runner and
// never share it.
type pipelineRunner interface {
	Start(description string) error
	Stop() error
}

// newPipelineRunner is replaced in tests with a fake engine.
var newPipelineRunner = func(name string) pipelineRunner {
	return &gstRunner{name: name}
}

// gstRunner drives a GStreamer pipeline parsed from a description string and
// watches its bus until stopped.
type gstRunner struct {
	name     string
	pipeline *gst.Pipeline
	cancel   context.CancelFunc
	done     chan struct{}
}

func (r *gstRunner) Start(description string) error {
	// Safe to call multiple times.
	gst.Init(nil)

	pipeline, err := gst.NewPipelineFromString(description)
	if err != nil {
		return fmt.Errorf("stream: failed to parse pipeline %q: %w", description, err)
	}

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		pipeline.SetState(gst.StateNull)
		return fmt.Errorf("stream: failed to start pipeline for %s: %w", r.name, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.pipeline = pipeline
	r.cancel = cancel
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)
		r.watchBus(ctx)
	}()

	return nil
}

func (r *gstRunner) Stop() error {
	if r.pipeline == nil {
		return nil
	}

	r.cancel()
	<-r.done

	if err := r.pipeline.SetState(gst.StateNull); err != nil {
		return fmt.Errorf("stream: failed to stop pipeline for %s: %w", r.name, err)
	}
	r.pipeline = nil
	return nil
}

// watchBus polls the pipeline bus until the context is cancelled. Bus faults
// are logged, not propagated: restart policy lives in the Manager, which
// observes the backend state, not the bus.
func (r *gstRunner) watchBus(ctx context.Context) {
	bus := r.pipeline.GetPipelineBus()

	for {
		select {
		case <-ctx.Done():
			slog.Debug("stream: stopping pipeline bus watch", "name", r.name)
			return
		default:
			// Short poll timeout keeps shutdown responsive.
			msg := bus.TimedPop(50 * time.Millisecond)
			if msg == nil {
				continue
			}

			switch msg.Type() {
			case gst.MessageEOS:
				slog.Warn("stream: end of stream received", "name", r.name)
			case gst.MessageError:
				gerr := msg.ParseError()
				slog.Error("stream: pipeline error",
					"name", r.name,
					"error", gerr.Error(),
					"debug", gerr.DebugString(),
				)
			case gst.MessageStateChanged:
				if msg.Source() == r.pipeline.GetName() {
					from, to := msg.ParseStateChanged()
					slog.Debug("stream: pipeline state changed",
						"name", r.name,
						"from", from,
						"to", to,
					)
				}
			}
		}
	}
}
