package dispatch

import "github.com/lumenlab/slm-aim/internal/protocol"

// ledLaserName is the white-light LED line reported alongside the lasers.
// It never selects the working wavelength.
const ledLaserName = "led"

// handleLasers picks the working wavelength from a laser bank report: the
// strongest enabled laser, LED excluded, earliest report entry on ties.
func (d *Dispatcher) handleLasers(lasers []protocol.LaserState) error {
	winner := -1
	for i, l := range lasers {
		if l.State == 0 || l.Name == ledLaserName {
			continue
		}
		if winner < 0 || l.Intensity > lasers[winner].Intensity {
			winner = i
		}
	}
	if winner < 0 {
		d.log.Info("no laser enabled; keeping wavelength", "wavelength", d.state.Wavelength)
		return nil
	}

	w := lasers[winner]
	d.log.Info("selected strongest laser",
		"name", w.Name,
		"wavelength", w.Wavelength,
		"intensity", w.Intensity)

	return d.setAndReport(nil, nil, &w.Wavelength)
}
