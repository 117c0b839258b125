package video

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/hunterino/mavlink-camera-manager/internal/v4l2"
)

// Formats probes the device for every pixel format, frame size and frame
// interval it supports. Stepwise ranges are discretized over the standard
// size grid plus the range maximum. A size or interval that cannot be
// queried is collected and logged, never aborts the rest of the probe.
func (s *SourceLocal) Formats() ([]Format, error) {
	var formats []Format
	err := s.withDevice(func(device captureDevice) error {
		descriptions, err := device.Formats()
		if err != nil {
			return fmt.Errorf("video: enumerate formats of %s: %w", s.DevicePath, err)
		}

		slog.Debug("video: checking resolutions", "device", s.DevicePath)
		for _, description := range descriptions {
			sizes, probeErrors := enumerateSizes(device, description.PixelFormat)
			if len(probeErrors) > 0 {
				slog.Debug("video: failed to fetch some frame intervals",
					"device", s.DevicePath,
					"encode", description.PixelFormat.String(),
					"errors", probeErrors,
				)
			}
			formats = append(formats, Format{
				Encode: ParseEncode(description.PixelFormat.String()),
				Sizes:  normalizeSizes(sizes),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Connection.Kind == ConnectionLegacyPlatform {
		slog.Warn("video: legacy platform camera, constraining capability to 1920x1080 @ 30FPS",
			"device", s.DevicePath)
		applyLegacyCaptureLimits(formats)
	}

	return sortFormats(formats), nil
}

func enumerateSizes(device captureDevice, format v4l2.FourCC) ([]Size, []string) {
	frameSizes, err := device.FrameSizes(format)
	if err != nil {
		return nil, []string{err.Error()}
	}

	var sizes []Size
	var probeErrors []string

	probe := func(width, height uint32) {
		rawIntervals, err := device.FrameIntervals(format, width, height)
		if err != nil {
			probeErrors = append(probeErrors,
				fmt.Sprintf("encode: %s, size: %dx%d, error: %v", format, width, height, err))
			return
		}
		sizes = append(sizes, Size{
			Width:     width,
			Height:    height,
			Intervals: flattenIntervals(rawIntervals),
		})
	}

	for _, frameSize := range frameSizes {
		if frameSize.Discrete {
			probe(frameSize.Width, frameSize.Height)
			continue
		}
		// Stepwise range: sample the standard grid plus the range maximum
		// instead of enumerating every step.
		for _, std := range standardSizes {
			probe(std[0], std[1])
		}
		probe(frameSize.MaxWidth, frameSize.MaxHeight)
	}
	return sizes, probeErrors
}

// flattenIntervals turns the driver-reported interval list into concrete
// samples. Discrete entries pass through; stepwise ranges sample numerator
// and denominator independently with a step of at least 5 units, always
// including the range maximum, and clamp any sampled 0 to 1. The result is
// sorted, deduplicated and reversed so the fastest frame rate comes first.
func flattenIntervals(rawIntervals []v4l2.FrameInterval) []FrameInterval {
	var intervals []FrameInterval
	for _, raw := range rawIntervals {
		if raw.Discrete {
			intervals = append(intervals, FrameInterval{
				Numerator:   raw.Interval.Numerator,
				Denominator: raw.Interval.Denominator,
			})
			continue
		}

		const minStep = 5
		numeratorStep := max(raw.Step.Numerator, minStep)
		denominatorStep := max(raw.Step.Denominator, minStep)

		// The upper bound comes from the driver; stop before the counter can
		// wrap or the loop never ends.
		var numerators, denominators []uint32
		for n := uint32(0); n <= raw.Min.Numerator; n += numeratorStep {
			numerators = append(numerators, n)
			if n > math.MaxUint32-numeratorStep {
				break
			}
		}
		numerators = append(numerators, raw.Max.Numerator)
		for d := uint32(0); d <= raw.Min.Denominator; d += denominatorStep {
			denominators = append(denominators, d)
			if d > math.MaxUint32-denominatorStep {
				break
			}
		}
		denominators = append(denominators, raw.Max.Denominator)

		for _, numerator := range numerators {
			for _, denominator := range denominators {
				intervals = append(intervals, FrameInterval{
					Numerator:   max(1, numerator),
					Denominator: max(1, denominator),
				})
			}
		}
	}
	return normalizeIntervals(intervals)
}

// applyLegacyCaptureLimits constrains legacy platform cameras to at most
// 1920x1080 and 30 FPS. The V4L2 driver for these cameras reports sizes and
// rates the encoder pipeline cannot actually deliver (the firmware rejects
// the port configuration), so the capability set is clamped before anyone
// picks from it.
func applyLegacyCaptureLimits(formats []Format) {
	const (
		maxWidth  = 1920
		maxHeight = 1080
		maxRate   = 30
	)
	for i := range formats {
		sizes := formats[i].Sizes
		for j := range sizes {
			size := &sizes[j]
			if size.Width > maxWidth {
				size.Width = maxWidth
			}
			if size.Height > maxHeight {
				size.Height = maxHeight
			}

			kept := size.Intervals[:0]
			for _, interval := range size.Intervals {
				// Historical quirk: the cap compares numerator*denominator
				// against 30, which is not a frame rate. Kept bit-for-bit;
				// changing it would alter which intervals survive on
				// deployed cameras.
				if interval.Numerator*interval.Denominator <= maxRate {
					kept = append(kept, interval)
				}
			}
			size.Intervals = kept
		}
		formats[i].Sizes = slices.CompactFunc(sizes, equalSize)
	}
}
