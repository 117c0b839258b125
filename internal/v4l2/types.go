package v4l2

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// Capability bits from VIDIOC_QUERYCAP we care about.
const (
	CapVideoCapture = 0x00000001
	capDeviceCaps   = 0x80000000
)

// Buffer type for enumeration calls.
const bufTypeVideoCapture = 1

// Frame size / interval enumeration types.
const (
	frmTypeDiscrete   = 1
	frmTypeContinuous = 2
	frmTypeStepwise   = 3
)

// Control types (v4l2_ctrl_type).
const (
	CtrlTypeInteger     = 1
	CtrlTypeBoolean     = 2
	CtrlTypeMenu        = 3
	CtrlTypeButton      = 4
	CtrlTypeInteger64   = 5
	CtrlTypeCtrlClass   = 6
	CtrlTypeString      = 7
	CtrlTypeBitmask     = 8
	CtrlTypeIntegerMenu = 9
)

// Control flags (v4l2_ctrl_flags).
const (
	CtrlFlagDisabled = 0x0001
	CtrlFlagInactive = 0x0010
	ctrlFlagNextCtrl = 0x80000000
)

// FourCC is a V4L2 pixel format code.
type FourCC uint32

// FourCCOf builds a code from its four-character name, e.g. "YUYV".
func FourCCOf(s string) FourCC {
	var b [4]byte
	copy(b[:], s)
	return FourCC(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
}

func (f FourCC) String() string {
	b := []byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)}
	return strings.TrimRight(string(b), "\x00")
}

// Capability is the result of VIDIOC_QUERYCAP.
type Capability struct {
	Driver       string
	Card         string
	BusInfo      string
	Version      uint32
	Capabilities uint32
}

// IsVideoCapture reports whether the node captures video frames. When the
// driver exposes per-node device_caps, those take precedence over the
// driver-wide capability set.
func (c Capability) IsVideoCapture() bool {
	return c.Capabilities&CapVideoCapture != 0
}

// FormatDescription is one entry from VIDIOC_ENUM_FMT.
type FormatDescription struct {
	Index       uint32
	PixelFormat FourCC
	Description string
}

// Fract is a V4L2 rational number.
type Fract struct {
	Numerator   uint32
	Denominator uint32
}

func (f Fract) String() string {
	return fmt.Sprintf("%d/%d", f.Numerator, f.Denominator)
}

// FrameSize is one entry from VIDIOC_ENUM_FRAMESIZES. Discrete entries fill
// Width/Height; stepwise (and continuous) entries fill the range fields.
type FrameSize struct {
	PixelFormat FourCC
	Discrete    bool

	Width  uint32
	Height uint32

	MinWidth   uint32
	MaxWidth   uint32
	StepWidth  uint32
	MinHeight  uint32
	MaxHeight  uint32
	StepHeight uint32
}

// FrameInterval is one entry from VIDIOC_ENUM_FRAMEINTERVALS. Discrete
// entries fill Interval; stepwise (and continuous) entries fill Min/Max/Step.
type FrameInterval struct {
	Discrete bool

	Interval Fract

	Min  Fract
	Max  Fract
	Step Fract
}

// ControlDescription is one entry from the VIDIOC_QUERYCTRL walk.
type ControlDescription struct {
	ID      uint32
	Name    string
	Type    uint32
	Minimum int64
	Maximum int64
	Step    int64
	Default int64
	Flags   uint32

	// MenuItems is populated for menu and integer-menu controls, indexed by
	// the menu item value. Nil for every other control type.
	MenuItems []MenuItem
}

// MenuItem is one selectable option of a menu control.
type MenuItem struct {
	Value int64
	Name  string
}

// Kernel ABI mirror structs. Field layout must match videodev2.h exactly;
// every field is 32-bit so Go inserts no padding.

type capability struct {
	driver       [16]byte
	card         [32]byte
	busInfo      [32]byte
	version      uint32
	capabilities uint32
	deviceCaps   uint32
	reserved     [3]uint32
}

type fmtDesc struct {
	index       uint32
	typ         uint32
	flags       uint32
	description [32]byte
	pixelFormat uint32
	mbusCode    uint32
	reserved    [3]uint32
}

type frmSizeEnum struct {
	index       uint32
	pixelFormat uint32
	typ         uint32
	// union of v4l2_frmsize_discrete (8 bytes) and v4l2_frmsize_stepwise
	// (24 bytes), decoded by hand.
	union    [24]byte
	reserved [2]uint32
}

type frmIvalEnum struct {
	index       uint32
	pixelFormat uint32
	width       uint32
	height      uint32
	typ         uint32
	// union of v4l2_fract (8 bytes) and v4l2_frmival_stepwise (24 bytes).
	union    [24]byte
	reserved [2]uint32
}

type queryCtrl struct {
	id           uint32
	typ          uint32
	name         [32]byte
	minimum      int32
	maximum      int32
	step         int32
	defaultValue int32
	flags        uint32
	reserved     [2]uint32
}

// queryMenu is declared packed in the kernel; with the union represented as
// raw bytes every Go field is 32-bit aligned and the layout matches.
type queryMenu struct {
	id    uint32
	index uint32
	// union of name [32]byte and value int64.
	union    [32]byte
	reserved uint32
}

type control struct {
	id    uint32
	value int32
}

type extControls struct {
	which     uint32
	count     uint32
	errorIdx  uint32
	requestFD int32
	reserved  uint32
	_         uint32 // pad so the pointer lands on an 8-byte boundary
	controls  uintptr
}

// extControlSize is the packed size of v4l2_ext_control: id, size, reserved2
// and the 8-byte value union.
const extControlSize = 20

func u32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
