package video

import (
	"cmp"
	"slices"
	"strings"
)

// EncodeKind is the compression or pixel format of frames leaving a source.
// Values not covered by the constants carry the raw FourCC name, so unknown
// hardware formats stay reportable and rejectable by name.
type EncodeKind string

const (
	EncodeH264 EncodeKind = "H264"
	EncodeH265 EncodeKind = "H265"
	EncodeYUYV EncodeKind = "YUYV"
	EncodeMJPG EncodeKind = "MJPG"
)

// ParseEncode maps a FourCC name to an EncodeKind.
func ParseEncode(fourcc string) EncodeKind {
	switch strings.ToUpper(fourcc) {
	case "H264":
		return EncodeH264
	case "H265", "HEVC":
		return EncodeH265
	case "YUYV":
		return EncodeYUYV
	case "MJPG":
		return EncodeMJPG
	default:
		return EncodeKind(fourcc)
	}
}

// Known reports whether the encode is one this manager recognizes at all,
// supported for streaming or not.
func (e EncodeKind) Known() bool {
	switch e {
	case EncodeH264, EncodeH265, EncodeYUYV, EncodeMJPG:
		return true
	}
	return false
}

// FrameInterval is the rational time between frames. The frame rate is the
// inverse, Denominator/Numerator.
type FrameInterval struct {
	Numerator   uint32 `yaml:"numerator"`
	Denominator uint32 `yaml:"denominator"`
}

// Size is a frame geometry together with the intervals the hardware supports
// at that geometry, fastest frame rate first.
type Size struct {
	Width     uint32
	Height    uint32
	Intervals []FrameInterval
}

// Format is an encode together with every size it is offered at.
type Format struct {
	Encode EncodeKind
	Sizes  []Size
}

// standardSizes is the sampling grid used to discretize stepwise frame-size
// ranges. Enumerating every step of a stepwise range is unbounded, so probing
// is limited to these common geometries plus the range maximum.
var standardSizes = [][2]uint32{
	{7680, 4320},
	{7200, 3060},
	{3840, 2160},
	{2560, 1440},
	{1920, 1080},
	{1600, 1200},
	{1440, 1080},
	{1280, 1080},
	{1280, 720},
	{1024, 768},
	{960, 720},
	{800, 600},
	{640, 480},
	{640, 360},
	{320, 240},
	{256, 144},
}

func compareInterval(a, b FrameInterval) int {
	if c := cmp.Compare(a.Numerator, b.Numerator); c != 0 {
		return c
	}
	return cmp.Compare(a.Denominator, b.Denominator)
}

func compareSize(a, b Size) int {
	if c := cmp.Compare(a.Width, b.Width); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Height, b.Height); c != 0 {
		return c
	}
	return slices.CompareFunc(a.Intervals, b.Intervals, compareInterval)
}

func equalSize(a, b Size) bool { return compareSize(a, b) == 0 }

// normalizeIntervals sorts ascending, drops duplicates and reverses, leaving
// the fastest frame rate first. The reversal is a contract with consumers
// that pick the first interval as default.
func normalizeIntervals(intervals []FrameInterval) []FrameInterval {
	slices.SortFunc(intervals, compareInterval)
	intervals = slices.Compact(intervals)
	slices.Reverse(intervals)
	return intervals
}

// normalizeSizes sorts ascending, drops duplicates and reverses, leaving the
// largest geometry first.
func normalizeSizes(sizes []Size) []Size {
	slices.SortFunc(sizes, compareSize)
	sizes = slices.CompactFunc(sizes, equalSize)
	slices.Reverse(sizes)
	return sizes
}

// ControlState carries the hardware availability flags of a control.
type ControlState struct {
	IsDisabled bool
	IsInactive bool
}

// Control is the generic model of one hardware control.
type Control struct {
	ID            uint64
	Name          string
	State         ControlState
	Configuration ControlConfiguration
}

// ControlConfiguration is the per-type payload of a Control: ControlBool,
// ControlSlider or ControlMenu.
type ControlConfiguration interface {
	isControlConfiguration()
}

// ControlBool is an on/off control.
type ControlBool struct {
	Default int64
	Value   int64
}

// ControlSlider is an integer control constrained to a stepped range.
type ControlSlider struct {
	Default int64
	Value   int64
	Step    int64
	Max     int64
	Min     int64
}

// ControlMenu is a control whose value is one of an ordered option list.
type ControlMenu struct {
	Default int64
	Value   int64
	Options []ControlOption
}

// ControlOption is one selectable entry of a ControlMenu.
type ControlOption struct {
	Name  string
	Value int64
}

func (ControlBool) isControlConfiguration()   {}
func (ControlSlider) isControlConfiguration() {}
func (ControlMenu) isControlConfiguration()   {}
