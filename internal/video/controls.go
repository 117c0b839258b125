package video

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hunterino/mavlink-camera-manager/internal/v4l2"
)

// ErrControlNotFound is returned by SetControl for an id that is not among
// the currently enumerated controls.
var ErrControlNotFound = errors.New("video: control not found")

// Controls enumerates the device's hardware controls mapped into the generic
// control model. Control-class rows are bookkeeping entries, not controls
// (reading one fails with a permission error), and are never surfaced.
// Controls whose current value cannot be read are skipped with a logged
// reason instead of failing the enumeration.
func (s *SourceLocal) Controls() ([]Control, error) {
	var controls []Control
	err := s.withDevice(func(device captureDevice) error {
		descriptions, err := device.QueryControls()
		if err != nil {
			return fmt.Errorf("video: enumerate controls of %s: %w", s.DevicePath, err)
		}

		for _, description := range descriptions {
			if description.Type == v4l2.CtrlTypeCtrlClass {
				continue
			}

			value, err := device.ControlValue(description.ID)
			if err != nil {
				slog.Error("video: failed to get control value",
					"device", s.DevicePath,
					"control", description.Name,
					"id", description.ID,
					"error", err,
				)
				continue
			}

			control := Control{
				ID:   uint64(description.ID),
				Name: description.Name,
				State: ControlState{
					IsDisabled: description.Flags&v4l2.CtrlFlagDisabled != 0,
					IsInactive: description.Flags&v4l2.CtrlFlagInactive != 0,
				},
			}

			switch description.Type {
			case v4l2.CtrlTypeBoolean:
				control.Configuration = ControlBool{
					Default: description.Default,
					Value:   value,
				}
			case v4l2.CtrlTypeInteger, v4l2.CtrlTypeInteger64:
				control.Configuration = ControlSlider{
					Default: description.Default,
					Value:   value,
					Step:    description.Step,
					Max:     description.Maximum,
					Min:     description.Minimum,
				}
			case v4l2.CtrlTypeMenu, v4l2.CtrlTypeIntegerMenu:
				if len(description.MenuItems) == 0 {
					continue
				}
				options := make([]ControlOption, 0, len(description.MenuItems))
				for _, item := range description.MenuItems {
					options = append(options, ControlOption{
						Name:  item.Name,
						Value: item.Value,
					})
				}
				control.Configuration = ControlMenu{
					Default: description.Default,
					Value:   value,
					Options: options,
				}
			default:
				continue
			}

			controls = append(controls, control)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return controls, nil
}

// ControlValue reads a control's current value, widened to int64.
// String-typed controls are rejected with v4l2.ErrUnsupportedControlType.
func (s *SourceLocal) ControlValue(id uint64) (int64, error) {
	var value int64
	err := s.withDevice(func(device captureDevice) error {
		var err error
		value, err = device.ControlValue(uint32(id))
		return err
	})
	return value, err
}

// SetControl writes a control value. An id that is not among the enumerated
// controls fails with ErrControlNotFound naming the valid ids; anything the
// hardware rejects is surfaced verbatim.
func (s *SourceLocal) SetControl(id uint64, value int64) error {
	controls, err := s.Controls()
	if err != nil {
		return err
	}

	known := false
	ids := make([]uint64, 0, len(controls))
	for _, control := range controls {
		ids = append(ids, control.ID)
		if control.ID == id {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("%w: id %d is not valid, options are %v", ErrControlNotFound, id, ids)
	}

	return s.withDevice(func(device captureDevice) error {
		if err := device.SetControlValue(uint32(id), value); err != nil {
			slog.Warn("video: failed to set control",
				"device", s.DevicePath,
				"id", id,
				"value", value,
				"error", err,
			)
			return err
		}
		return nil
	})
}
