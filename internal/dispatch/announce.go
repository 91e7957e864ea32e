package dispatch

import (
	"github.com/lumenlab/slm-aim/internal/catalog"
	"github.com/lumenlab/slm-aim/internal/protocol"
)

// announceAll emits the announce sequence. Failures are logged and skipped;
// peers re-request anything they missed.
func (d *Dispatcher) announceAll() {
	d.log.Info("announcing laser request, catalog and state")

	if err := d.publish(protocol.DeviceMessage(protocol.LasersGet{})); err != nil {
		d.log.Error("laser request failed", "error", err)
	}
	if err := d.reportCatalog(); err != nil {
		d.log.Error("catalog report failed", "error", err)
	}
	if err := d.reportState(); err != nil {
		d.log.Error("state report failed", "error", err)
	}
}

func (d *Dispatcher) reportState() error {
	return d.publish(protocol.DeviceMessage(protocol.AimState{
		Wavelength: d.state.Wavelength,
		Fresnel:    d.state.Fresnel,
		Pattern:    d.state.Pattern,
	}))
}

func (d *Dispatcher) reportCatalog() error {
	c := catalog.Build(d.store, d.baseDir)
	return d.publish(protocol.DeviceMessage(protocol.AimAvailablePatterns{Patterns: c}))
}

func (d *Dispatcher) publish(m protocol.Message) error {
	payload, err := protocol.Encode(m)
	if err != nil {
		return err
	}
	d.log.Debug("publishing", "topic", d.topics.Aim(), "bytes", len(payload))
	return d.pub.Publish(d.topics.Aim(), payload, publishQoS, false)
}
