package v4l2

import (
	"testing"
	"unsafe"
)

// TestIoctlRequestCodes pins the computed request numbers against the values
// from videodev2.h. A size mismatch in any mirrored struct shows up here.
func TestIoctlRequestCodes(t *testing.T) {
	testCases := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"VIDIOC_QUERYCAP", vidiocQuerycap, 0x80685600},
		{"VIDIOC_ENUM_FMT", vidiocEnumFmt, 0xc0405602},
		{"VIDIOC_G_CTRL", vidiocGCtrl, 0xc008561b},
		{"VIDIOC_S_CTRL", vidiocSCtrl, 0xc008561c},
		{"VIDIOC_QUERYCTRL", vidiocQueryctrl, 0xc0445624},
		{"VIDIOC_QUERYMENU", vidiocQuerymenu, 0xc02c5625},
		{"VIDIOC_ENUM_FRAMESIZES", vidiocEnumFramesizes, 0xc02c564a},
		{"VIDIOC_ENUM_FRAMEINTERVALS", vidiocEnumFrameintervals, 0xc034564b},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("%s = %#x, want %#x", tc.name, tc.got, tc.want)
			}
		})
	}
}

func TestStructSizes(t *testing.T) {
	testCases := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"v4l2_capability", unsafe.Sizeof(capability{}), 104},
		{"v4l2_fmtdesc", unsafe.Sizeof(fmtDesc{}), 64},
		{"v4l2_frmsizeenum", unsafe.Sizeof(frmSizeEnum{}), 44},
		{"v4l2_frmivalenum", unsafe.Sizeof(frmIvalEnum{}), 52},
		{"v4l2_queryctrl", unsafe.Sizeof(queryCtrl{}), 68},
		{"v4l2_querymenu", unsafe.Sizeof(queryMenu{}), 44},
		{"v4l2_control", unsafe.Sizeof(control{}), 8},
	}

	for _, tc := range testCases {
		if tc.got != tc.want {
			t.Errorf("sizeof(%s) = %d, want %d", tc.name, tc.got, tc.want)
		}
	}
}

func TestFourCC(t *testing.T) {
	testCases := []struct {
		name string
		code uint32
	}{
		{"YUYV", 0x56595559},
		{"MJPG", 0x47504a4d},
		{"H264", 0x34363248},
	}

	for _, tc := range testCases {
		f := FourCCOf(tc.name)
		if uint32(f) != tc.code {
			t.Errorf("FourCCOf(%q) = %#x, want %#x", tc.name, uint32(f), tc.code)
		}
		if f.String() != tc.name {
			t.Errorf("FourCC(%#x).String() = %q, want %q", tc.code, f.String(), tc.name)
		}
	}
}
