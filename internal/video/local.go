package video

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"sort"
)

// ConnectionKind is the physical connection family of a local device.
type ConnectionKind int

const (
	ConnectionUnknown ConnectionKind = iota
	ConnectionUsb
	ConnectionLegacyPlatform
)

func (k ConnectionKind) String() string {
	switch k {
	case ConnectionUsb:
		return "usb"
	case ConnectionLegacyPlatform:
		return "legacy-platform"
	default:
		return "unknown"
	}
}

// ConnectionType classifies how a local device is attached, keeping the raw
// bus descriptor the driver reported. The descriptor is the stable identity
// of a camera: the kernel may renumber /dev/video* between boots or
// re-plugs, the bus path stays.
type ConnectionType struct {
	Kind       ConnectionKind
	Descriptor string
}

// For PCI-attached controllers the descriptor follows BDF notation,
// <domain>:<bus>:<device>.<first_function>-<last_function>, e.g.
// "usb-0000:08:00.3-1". Boards without PCI report
// usb-<address>.usb-<hub>.<port>, e.g. "usb-3f980000.usb-1.4".
var usbDescriptorPattern = regexp.MustCompile(
	`usb-(?P<interface>(([0-9a-fA-F]{2}){1,2}:?){4})?\.(usb-)?(?P<device>.*)`)

// Legacy-mode platform capture nodes report platform:<name>-v4l2-<index>,
// e.g. "platform:bcm2835-v4l2-0".
var legacyPlatformPattern = regexp.MustCompile(`platform:(?P<device>\S+)-v4l2-[0-9]`)

// benignUnknownDescriptor is the Raspberry Pi internal ISP node. It is always
// present, never user-selectable, and would otherwise spam the log with an
// unknown-connection warning on every discovery pass.
const benignUnknownDescriptor = "platform:bcm2835-isp"

func matchUsb(descriptor string) (ConnectionType, bool) {
	if usbDescriptorPattern.MatchString(descriptor) {
		return ConnectionType{Kind: ConnectionUsb, Descriptor: descriptor}, true
	}
	return ConnectionType{}, false
}

func matchLegacyPlatform(descriptor string) (ConnectionType, bool) {
	if legacyPlatformPattern.MatchString(descriptor) {
		return ConnectionType{Kind: ConnectionLegacyPlatform, Descriptor: descriptor}, true
	}
	return ConnectionType{}, false
}

var connectionMatchers = []func(string) (ConnectionType, bool){
	matchUsb,
	matchLegacyPlatform,
}

// ClassifyConnection maps a bus descriptor to a ConnectionType; the first
// matcher wins, anything unmatched is Unknown.
func ClassifyConnection(descriptor string) ConnectionType {
	for _, match := range connectionMatchers {
		if connection, ok := match(descriptor); ok {
			return connection
		}
	}

	msg := "video: unable to identify the local camera connection type, please report the problem"
	if descriptor == benignUnknownDescriptor {
		slog.Debug(msg, "descriptor", descriptor)
	} else {
		slog.Warn(msg, "descriptor", descriptor)
	}
	return ConnectionType{Kind: ConnectionUnknown, Descriptor: descriptor}
}

// SourceLocal is a V4L2 capture device.
type SourceLocal struct {
	Name       string
	DevicePath string
	Connection ConnectionType
}

func (s *SourceLocal) DisplayName() string  { return s.Name }
func (s *SourceLocal) SourceString() string { return s.DevicePath }

// IsValid reports whether the source still points at a device node. A source
// loses its path when reconciliation cannot find its camera anymore.
func (s *SourceLocal) IsValid() bool { return s.DevicePath != "" }

// DiscoverLocal enumerates the system capture nodes. Nodes that cannot be
// opened or queried, and nodes without the video-capture capability
// (metadata planes, ISP internals), are skipped with a logged reason; the
// result is partial rather than an error.
func DiscoverLocal() []*SourceLocal {
	paths, err := listDeviceNodes()
	if err != nil {
		slog.Error("video: failed to scan device nodes", "error", err)
		return nil
	}
	sort.Strings(paths)

	var sources []*SourceLocal
	for _, path := range paths {
		device, err := openDevice(path)
		if err != nil {
			slog.Debug("video: failed to open device", "device", path, "error", err)
			continue
		}
		capability, err := device.Capability()
		device.Close()
		if err != nil {
			slog.Debug("video: failed to query device capability", "device", path, "error", err)
			continue
		}
		if !capability.IsVideoCapture() {
			slog.Debug("video: skipping non-capture node", "device", path, "card", capability.Card)
			continue
		}

		sources = append(sources, &SourceLocal{
			Name:       capability.Card,
			DevicePath: path,
			Connection: ClassifyConnection(capability.BusInfo),
		})
	}
	return sources
}

// UpdateDevice re-resolves the device path of a USB source by re-running
// discovery and matching on the bus descriptor. Paths move when the OS
// renumbers devices; the descriptor does not. Returns false and clears the
// path when the camera is gone. Non-USB sources have nothing to reconcile.
func (s *SourceLocal) UpdateDevice() bool {
	if s.Connection.Kind != ConnectionUsb {
		return true
	}

	for _, candidate := range DiscoverLocal() {
		if candidate.Connection.Kind != ConnectionUsb ||
			candidate.Connection.Descriptor != s.Connection.Descriptor {
			continue
		}
		if candidate.DevicePath == s.DevicePath {
			return true
		}
		slog.Info("video: camera path changed",
			"name", s.Name,
			"descriptor", s.Connection.Descriptor,
			"previous", s.DevicePath,
			"current", candidate.DevicePath,
		)
		*s = *candidate
		return true
	}

	slog.Error("video: failed to find camera, marking it as invalid",
		"name", s.Name,
		"descriptor", s.Connection.Descriptor,
		"previous", s.DevicePath,
	)
	s.DevicePath = ""
	return false
}

func (s *SourceLocal) withDevice(fn func(captureDevice) error) error {
	device, err := openDevice(s.DevicePath)
	if err != nil {
		return fmt.Errorf("video: open %s: %w", s.DevicePath, err)
	}
	defer device.Close()
	return fn(device)
}

var _ Source = (*SourceLocal)(nil)
var _ Source = (*SourceGst)(nil)
var _ Source = (*SourceRedirect)(nil)

// sortFormats orders by encode token so repeated probes of the same camera
// produce identical lists.
func sortFormats(formats []Format) []Format {
	slices.SortFunc(formats, func(a, b Format) int {
		if a.Encode < b.Encode {
			return -1
		}
		if a.Encode > b.Encode {
			return 1
		}
		return slices.CompareFunc(a.Sizes, b.Sizes, compareSize)
	})
	return slices.CompactFunc(formats, func(a, b Format) bool {
		return a.Encode == b.Encode && slices.EqualFunc(a.Sizes, b.Sizes, equalSize)
	})
}
