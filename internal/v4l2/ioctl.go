package v4l2

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl direction/encoding constants, as defined by the asm-generic ABI used
// on every platform this project targets.
const (
	iocNone  = 0
	iocWrite = 1
	iocRead  = 2

	iocNrBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNrShift   = 0
	iocTypeShift = iocNrShift + iocNrBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNrShift | size<<iocSizeShift
}

func ioR(typ, nr, size uintptr) uintptr  { return ioc(iocRead, typ, nr, size) }
func ioWR(typ, nr, size uintptr) uintptr { return ioc(iocRead|iocWrite, typ, nr, size) }

// V4L2 ioctl requests ('V' = 0x56). Sizes are taken from the struct
// definitions in types.go, which mirror the kernel layouts.
var (
	vidiocQuerycap           = ioR('V', 0, unsafe.Sizeof(capability{}))
	vidiocEnumFmt            = ioWR('V', 2, unsafe.Sizeof(fmtDesc{}))
	vidiocGCtrl              = ioWR('V', 27, unsafe.Sizeof(control{}))
	vidiocSCtrl              = ioWR('V', 28, unsafe.Sizeof(control{}))
	vidiocQueryctrl          = ioWR('V', 36, unsafe.Sizeof(queryCtrl{}))
	vidiocQuerymenu          = ioWR('V', 37, unsafe.Sizeof(queryMenu{}))
	vidiocGExtCtrls          = ioWR('V', 71, unsafe.Sizeof(extControls{}))
	vidiocEnumFramesizes     = ioWR('V', 74, unsafe.Sizeof(frmSizeEnum{}))
	vidiocEnumFrameintervals = ioWR('V', 75, unsafe.Sizeof(frmIvalEnum{}))
)

// ioctl issues the request against fd, retrying on EINTR as the kernel docs
// require for V4L2 devices.
func ioctl(fd int, request uintptr, arg unsafe.Pointer) error {
	for {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), request, uintptr(arg))
		if errno == 0 {
			return nil
		}
		if errno == unix.EINTR {
			continue
		}
		return errno
	}
}
