package v4l2

import (
	"encoding/binary"
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ErrUnsupportedControlType is returned when a control's value cannot be
// represented as an integer (string-typed controls).
var ErrUnsupportedControlType = errors.New("v4l2: string control type is not supported")

// Device is an open V4L2 device node.
type Device struct {
	fd   int
	path string
}

// Open opens a device node such as /dev/video0.
func Open(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("v4l2: open %s: %w", path, err)
	}
	return &Device{fd: fd, path: path}, nil
}

// Close releases the device file descriptor. Safe to call more than once.
func (d *Device) Close() error {
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}

// Path returns the device node path the Device was opened with.
func (d *Device) Path() string { return d.path }

// Capability issues VIDIOC_QUERYCAP.
func (d *Device) Capability() (Capability, error) {
	var raw capability
	if err := ioctl(d.fd, vidiocQuerycap, unsafe.Pointer(&raw)); err != nil {
		return Capability{}, fmt.Errorf("v4l2: querycap %s: %w", d.path, err)
	}
	caps := raw.capabilities
	if caps&capDeviceCaps != 0 {
		caps = raw.deviceCaps
	}
	return Capability{
		Driver:       cstr(raw.driver[:]),
		Card:         cstr(raw.card[:]),
		BusInfo:      cstr(raw.busInfo[:]),
		Version:      raw.version,
		Capabilities: caps,
	}, nil
}

// Formats enumerates the pixel formats of the capture buffer type.
func (d *Device) Formats() ([]FormatDescription, error) {
	var formats []FormatDescription
	for index := uint32(0); ; index++ {
		raw := fmtDesc{index: index, typ: bufTypeVideoCapture}
		if err := ioctl(d.fd, vidiocEnumFmt, unsafe.Pointer(&raw)); err != nil {
			if errors.Is(err, unix.EINVAL) {
				return formats, nil
			}
			return formats, fmt.Errorf("v4l2: enum_fmt %s index %d: %w", d.path, index, err)
		}
		formats = append(formats, FormatDescription{
			Index:       raw.index,
			PixelFormat: FourCC(raw.pixelFormat),
			Description: cstr(raw.description[:]),
		})
	}
}

// FrameSizes enumerates the frame sizes supported for a pixel format.
// Continuous ranges are reported as stepwise with a step of 1, matching the
// kernel's own convention.
func (d *Device) FrameSizes(format FourCC) ([]FrameSize, error) {
	var sizes []FrameSize
	for index := uint32(0); ; index++ {
		raw := frmSizeEnum{index: index, pixelFormat: uint32(format)}
		if err := ioctl(d.fd, vidiocEnumFramesizes, unsafe.Pointer(&raw)); err != nil {
			if errors.Is(err, unix.EINVAL) && index > 0 {
				return sizes, nil
			}
			return sizes, fmt.Errorf("v4l2: enum_framesizes %s %s index %d: %w", d.path, format, index, err)
		}

		size := FrameSize{PixelFormat: format}
		switch raw.typ {
		case frmTypeDiscrete:
			size.Discrete = true
			size.Width = u32(raw.union[0:])
			size.Height = u32(raw.union[4:])
		default: // stepwise or continuous
			size.MinWidth = u32(raw.union[0:])
			size.MaxWidth = u32(raw.union[4:])
			size.StepWidth = u32(raw.union[8:])
			size.MinHeight = u32(raw.union[12:])
			size.MaxHeight = u32(raw.union[16:])
			size.StepHeight = u32(raw.union[20:])
			if raw.typ == frmTypeContinuous {
				size.StepWidth = 1
				size.StepHeight = 1
			}
		}
		sizes = append(sizes, size)
	}
}

// FrameIntervals enumerates the frame intervals supported for a pixel format
// at a given size.
func (d *Device) FrameIntervals(format FourCC, width, height uint32) ([]FrameInterval, error) {
	var intervals []FrameInterval
	for index := uint32(0); ; index++ {
		raw := frmIvalEnum{
			index:       index,
			pixelFormat: uint32(format),
			width:       width,
			height:      height,
		}
		if err := ioctl(d.fd, vidiocEnumFrameintervals, unsafe.Pointer(&raw)); err != nil {
			if errors.Is(err, unix.EINVAL) && index > 0 {
				return intervals, nil
			}
			return intervals, fmt.Errorf("v4l2: enum_frameintervals %s %s %dx%d index %d: %w",
				d.path, format, width, height, index, err)
		}

		interval := FrameInterval{}
		switch raw.typ {
		case frmTypeDiscrete:
			interval.Discrete = true
			interval.Interval = Fract{u32(raw.union[0:]), u32(raw.union[4:])}
		default: // stepwise or continuous
			interval.Min = Fract{u32(raw.union[0:]), u32(raw.union[4:])}
			interval.Max = Fract{u32(raw.union[8:]), u32(raw.union[12:])}
			interval.Step = Fract{u32(raw.union[16:]), u32(raw.union[20:])}
			if raw.typ == frmTypeContinuous {
				interval.Step = Fract{1, 1}
			}
		}
		intervals = append(intervals, interval)
	}
}

// QueryControls walks the device controls with the NEXT_CTRL flag. Controls
// the driver marks with errors other than EINVAL end the walk; menu items are
// fetched eagerly so callers get a self-contained description.
func (d *Device) QueryControls() ([]ControlDescription, error) {
	var controls []ControlDescription
	id := uint32(ctrlFlagNextCtrl)
	for {
		raw := queryCtrl{id: id}
		if err := ioctl(d.fd, vidiocQueryctrl, unsafe.Pointer(&raw)); err != nil {
			if errors.Is(err, unix.EINVAL) {
				return controls, nil
			}
			return controls, fmt.Errorf("v4l2: queryctrl %s: %w", d.path, err)
		}

		desc := ControlDescription{
			ID:      raw.id,
			Name:    cstr(raw.name[:]),
			Type:    raw.typ,
			Minimum: int64(raw.minimum),
			Maximum: int64(raw.maximum),
			Step:    int64(raw.step),
			Default: int64(raw.defaultValue),
			Flags:   raw.flags,
		}
		if raw.typ == CtrlTypeMenu || raw.typ == CtrlTypeIntegerMenu {
			desc.MenuItems = d.menuItems(raw)
		}
		controls = append(controls, desc)

		id = raw.id | ctrlFlagNextCtrl
	}
}

// menuItems collects the valid entries of a menu control. Indexes the driver
// rejects are holes in the menu, not errors.
func (d *Device) menuItems(ctrl queryCtrl) []MenuItem {
	var items []MenuItem
	for index := ctrl.minimum; index <= ctrl.maximum; index++ {
		raw := queryMenu{id: ctrl.id, index: uint32(index)}
		if err := ioctl(d.fd, vidiocQuerymenu, unsafe.Pointer(&raw)); err != nil {
			continue
		}
		item := MenuItem{Value: int64(index)}
		if ctrl.typ == CtrlTypeIntegerMenu {
			item.Name = fmt.Sprintf("%d", int64(binary.LittleEndian.Uint64(raw.union[0:8])))
		} else {
			item.Name = cstr(raw.union[:])
		}
		items = append(items, item)
	}
	return items
}

// ControlValue reads a control's current value, widened to int64. String
// controls are rejected with ErrUnsupportedControlType; 64-bit integer
// controls are read through the extended control interface.
func (d *Device) ControlValue(id uint32) (int64, error) {
	typ, err := d.controlType(id)
	if err != nil {
		return 0, err
	}

	switch typ {
	case CtrlTypeString:
		return 0, ErrUnsupportedControlType
	case CtrlTypeInteger64:
		return d.extControlValue64(id)
	default:
		raw := control{id: id}
		if err := ioctl(d.fd, vidiocGCtrl, unsafe.Pointer(&raw)); err != nil {
			return 0, fmt.Errorf("v4l2: g_ctrl %s id %d: %w", d.path, id, err)
		}
		return int64(raw.value), nil
	}
}

// SetControlValue writes a control value. The value travels as a 32-bit
// integer, which covers every control class this project mutates.
func (d *Device) SetControlValue(id uint32, value int64) error {
	raw := control{id: id, value: int32(value)}
	if err := ioctl(d.fd, vidiocSCtrl, unsafe.Pointer(&raw)); err != nil {
		return fmt.Errorf("v4l2: s_ctrl %s id %d value %d: %w", d.path, id, value, err)
	}
	return nil
}

func (d *Device) controlType(id uint32) (uint32, error) {
	raw := queryCtrl{id: id}
	if err := ioctl(d.fd, vidiocQueryctrl, unsafe.Pointer(&raw)); err != nil {
		return 0, fmt.Errorf("v4l2: queryctrl %s id %d: %w", d.path, id, err)
	}
	return raw.typ, nil
}

// extControlValue64 reads a 64-bit integer control via VIDIOC_G_EXT_CTRLS.
// v4l2_ext_control is packed in the kernel, so it is marshaled by hand.
func (d *Device) extControlValue64(id uint32) (int64, error) {
	buf := make([]byte, extControlSize)
	binary.LittleEndian.PutUint32(buf[0:4], id)

	req := extControls{
		count:    1,
		controls: uintptr(unsafe.Pointer(&buf[0])),
	}
	err := ioctl(d.fd, vidiocGExtCtrls, unsafe.Pointer(&req))
	runtime.KeepAlive(buf)
	if err != nil {
		return 0, fmt.Errorf("v4l2: g_ext_ctrls %s id %d: %w", d.path, id, err)
	}
	return int64(binary.LittleEndian.Uint64(buf[12:20])), nil
}
