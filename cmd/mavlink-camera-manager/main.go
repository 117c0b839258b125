package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hunterino/mavlink-camera-manager/internal/settings"
	"github.com/hunterino/mavlink-camera-manager/internal/stream"
	"github.com/hunterino/mavlink-camera-manager/internal/video"
)

const version = "v0.1.0"

func defaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "settings.yaml"
	}
	return filepath.Join(home, ".config", "mavlink-camera-manager", "settings.yaml")
}

func main() {
	settingsPath := flag.String("settings", defaultSettingsPath(), "Path to the settings file")
	reset := flag.Bool("reset", false, "Ignore the persisted streams and start empty")
	statusInterval := flag.Int("status-interval", 30, "Seconds between stream status reports (0 disables)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("mavlink-camera-manager %s\n", version)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("mavlink-camera-manager starting", "version", version, "settings", *settingsPath)

	// Discover the local cameras and log what each one can do.
	cameras := video.DiscoverLocal()
	sources := make([]video.Source, 0, len(cameras))
	for _, camera := range cameras {
		sources = append(sources, camera)
		formats, err := camera.Formats()
		if err != nil {
			slog.Warn("failed to probe camera capabilities",
				"name", camera.Name,
				"device", camera.DevicePath,
				"error", err,
			)
			continue
		}
		slog.Info("camera discovered",
			"name", camera.Name,
			"device", camera.DevicePath,
			"connection", camera.Connection.Kind,
			"formats", len(formats),
		)
	}
	if len(cameras) == 0 {
		slog.Warn("no local cameras found")
	}

	manager := stream.NewManager()
	defer manager.Close()

	if !*reset {
		if err := restorePersistedStreams(*settingsPath, sources, manager); err != nil {
			slog.Error("failed to load settings", "path", *settingsPath, "error", err)
			os.Exit(1)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var statusTicker *time.Ticker
	var statusC <-chan time.Time
	if *statusInterval > 0 {
		statusTicker = time.NewTicker(time.Duration(*statusInterval) * time.Second)
		defer statusTicker.Stop()
		statusC = statusTicker.C
	}

	for {
		select {
		case sig := <-sigChan:
			slog.Info("shutting down", "signal", sig)
			persistStreams(*settingsPath, manager)
			return

		case <-statusC:
			// Re-resolve USB camera paths before reporting: the OS may have
			// renumbered the device nodes since the last tick. The stream
			// sources share these Camera values, so a moved path is picked
			// up by the streams too.
			for _, camera := range cameras {
				camera.UpdateDevice()
			}
			for _, status := range manager.Status() {
				slog.Info("stream status",
					"id", status.ID,
					"name", status.Name,
					"running", status.Running,
					"uptime", status.Uptime.Round(time.Second),
					"restarts", status.Restarts,
				)
			}
		}
	}
}

// restorePersistedStreams brings back the streams from the previous run. A
// stream whose camera is gone or whose configuration no longer validates is
// logged and skipped, never blocks the rest; only an unreadable settings file
// is an error.
func restorePersistedStreams(path string, sources []video.Source, manager *stream.Manager) error {
	persisted, err := settings.Load(path)
	if err != nil {
		return err
	}

	for _, record := range persisted.Streams {
		info, err := record.ToStream(sources)
		if err != nil {
			slog.Warn("skipping persisted stream", "name", record.Name, "error", err)
			continue
		}
		id, err := manager.Add(info)
		if err != nil {
			slog.Warn("failed to restore stream", "name", record.Name, "error", err)
			continue
		}
		slog.Info("stream restored", "id", id, "name", record.Name)
	}
	return nil
}

func persistStreams(path string, manager *stream.Manager) {
	persisted := settings.Default()
	for _, status := range manager.Status() {
		info, ok := manager.Lookup(status.ID)
		if !ok {
			continue
		}
		record, err := settings.FromStream(info)
		if err != nil {
			slog.Warn("cannot persist stream", "name", status.Name, "error", err)
			continue
		}
		persisted.Streams = append(persisted.Streams, record)
	}

	if err := settings.Save(path, persisted); err != nil {
		slog.Error("failed to save settings", "path", path, "error", err)
		return
	}
	slog.Info("settings saved", "path", path, "streams", len(persisted.Streams))
}
