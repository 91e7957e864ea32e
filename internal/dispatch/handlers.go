package dispatch

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lumenlab/slm-aim/internal/catalog"
	"github.com/lumenlab/slm-aim/internal/pattern"
	"github.com/lumenlab/slm-aim/internal/protocol"
)

// setAndReport folds the non-nil fields into the state, recomputes, presents
// and reports. nil fields keep their current value.
func (d *Dispatcher) setAndReport(sel protocol.Selector, fresnel *int, wavelength *uint32) error {
	next := d.state
	if sel != nil {
		next.Pattern = sel
	}
	if fresnel != nil {
		next.Fresnel = *fresnel
	}
	if wavelength != nil {
		next.Wavelength = *wavelength
	}

	if err := d.apply(next); err != nil {
		return err
	}
	return d.reportState()
}

func (d *Dispatcher) handleUpload(data protocol.AimUploadImage) error {
	ext, raw, err := protocol.ParseDataURL(data.ImageData)
	if err != nil {
		return err
	}

	path := d.customPath(replaceExt(data.Name, ext))
	if err := d.store.Write(path, raw); err != nil {
		return fmt.Errorf("store upload %s: %w", path, err)
	}
	d.log.Info("stored uploaded pattern", "path", path, "bytes", len(raw))

	if err := d.reportCatalog(); err != nil {
		return err
	}
	return d.reportState()
}

func (d *Dispatcher) handleDelete(data protocol.AimDeleteImage) error {
	path := d.customPath(data.Name)
	if err := d.store.Remove(path); err != nil {
		return fmt.Errorf("delete upload %s: %w", path, err)
	}
	d.log.Info("deleted uploaded pattern", "path", path)

	if err := d.reportCatalog(); err != nil {
		return err
	}
	return d.reportState()
}

func (d *Dispatcher) handleCorrection(data protocol.AimCorrectionDeltas) error {
	delta, err := pattern.DecodeDeltas(data.ImageData, data.Shape[0], data.Shape[1])
	if err != nil {
		return err
	}
	if err := d.engine.MergeCorrection(data.Wavelength, delta); err != nil {
		return err
	}
	d.log.Info("merged correction deltas", "wavelength", data.Wavelength)

	return d.publish(protocol.DeviceMessage(protocol.AimCorrectionAck{
		Wavelength: data.Wavelength,
		Success:    true,
	}))
}

// handleReboot halts the dispatcher before asking the OS to go down, so a
// failed reboot call still stops message processing.
func (d *Dispatcher) handleReboot() error {
	d.log.Warn("reboot requested; halting dispatch")
	d.halted = true
	return d.reboot()
}

func (d *Dispatcher) customPath(name string) string {
	return filepath.Join(d.baseDir, catalog.CustomDir, name)
}

// replaceExt swaps name's extension for the one the upload header declares,
// or appends it when name has none.
func replaceExt(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + "." + ext
}
