package dispatch

import (
	"fmt"
	"sync/atomic"

	"github.com/lumenlab/slm-aim/internal/fsio"
	"github.com/lumenlab/slm-aim/internal/pattern"
	"github.com/lumenlab/slm-aim/internal/protocol"
)

const (
	// publishQoS is the delivery guarantee for every outbound message.
	// Peers tolerate loss; state reports are re-requestable.
	publishQoS byte = 0

	// preStackDone is the acknowledgment text peers sequence
	// acquisition on.
	preStackDone = "PreStack done"

	// defaultInboxSize bounds the inbound buffer. Commands are
	// operator-paced; a deep backlog means the peer is misbehaving.
	defaultInboxSize = 64

	// previewLimit caps how much of an offending payload goes to the
	// log. Upload payloads run to megabytes.
	previewLimit = 200
)

// Logger is the minimal logging interface used by the dispatcher.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Publisher is the outbound transport capability.
type Publisher interface {
	// Publish sends a payload to the given topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Sink receives every computed frame for presentation.
type Sink interface {
	Present(f *pattern.Frame) error
}

// State is the device state the dispatcher owns: the selected pattern, the
// fresnel lens power and the working wavelength. It changes only when a
// command is processed to completion.
type State struct {
	Wavelength uint32
	Fresnel    int
	Pattern    protocol.Selector
}

// Options holds the collaborators for a Dispatcher.
type Options struct {
	// Engine computes and merges patterns.
	Engine *pattern.Engine

	// Store is the filesystem shared with the engine; uploads, deletes
	// and catalog scans go through it.
	Store fsio.Store

	// Publisher sends outbound messages. Usually the MQTT client.
	Publisher Publisher

	// Sink presents computed frames. Usually the display window.
	Sink Sink

	// Topics is the instrument's topic scheme.
	Topics protocol.Topics

	// BaseDir is the base pattern directory; uploads land in its
	// custom_patterns subdirectory.
	BaseDir string

	// Initial is the state before any command arrives.
	Initial State

	// Logger is optional structured logging.
	Logger Logger

	// Reboot is invoked for the reboot command. Defaults to an OS-level
	// reboot; injectable for tests.
	Reboot func() error

	// InboxSize overrides the inbound buffer depth. Zero means default.
	InboxSize int
}

// Dispatcher owns the device state and processes every inbound message to
// completion. Enqueue and RequestAnnounce are the only entry points safe to
// call from transport callbacks; everything else runs on the frame loop via
// Pump.
type Dispatcher struct {
	engine  *pattern.Engine
	store   fsio.Store
	pub     Publisher
	sink    Sink
	topics  protocol.Topics
	baseDir string
	reboot  func() error
	log     Logger

	inbox    chan []byte
	announce atomic.Bool
	halted   bool

	state State
}

// New creates a dispatcher. Call Refresh once before the loop starts to put
// the initial pattern on the modulator.
func New(opts Options) (*Dispatcher, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if opts.Publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if opts.BaseDir == "" {
		return nil, fmt.Errorf("base pattern directory is required")
	}
	if opts.Initial.Pattern == nil {
		return nil, fmt.Errorf("initial pattern selection is required")
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	if opts.Reboot == nil {
		opts.Reboot = osReboot
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = defaultInboxSize
	}

	return &Dispatcher{
		engine:  opts.Engine,
		store:   opts.Store,
		pub:     opts.Publisher,
		sink:    opts.Sink,
		topics:  opts.Topics,
		baseDir: opts.BaseDir,
		reboot:  opts.Reboot,
		log:     opts.Logger,
		inbox:   make(chan []byte, opts.InboxSize),
		state:   opts.Initial,
	}, nil
}

// Enqueue hands one raw inbound payload to the dispatcher. Safe to call from
// transport callbacks; never blocks.
func (d *Dispatcher) Enqueue(payload []byte) error {
	select {
	case d.inbox <- payload:
		return nil
	default:
		return fmt.Errorf("%w: dropping %d bytes", ErrInboxFull, len(payload))
	}
}

// RequestAnnounce schedules the announce sequence (laser request, catalog
// report, state report) for the next Pump. Safe to call from transport
// callbacks; coalesces repeated requests.
func (d *Dispatcher) RequestAnnounce() {
	d.announce.Store(true)
}

// Refresh recomputes the pattern from the current state and presents it.
// Called once at startup; initialization fails if the defaults cannot be
// computed.
func (d *Dispatcher) Refresh() error {
	return d.apply(d.state)
}

// Pump runs one frame-loop tick: a pending announce first, then every queued
// message. Processing errors are logged and dropped; Pump only returns an
// error once the dispatcher is halted by a reboot command.
func (d *Dispatcher) Pump() error {
	if d.halted {
		return ErrHalted
	}

	if d.announce.Swap(false) {
		d.announceAll()
	}

	for {
		select {
		case payload := <-d.inbox:
			if err := d.process(payload); err != nil {
				d.log.Error("message processing failed",
					"error", err,
					"message", preview(payload))
			}
			if d.halted {
				return ErrHalted
			}
		default:
			return nil
		}
	}
}

// process decodes and handles one inbound payload. Any error leaves the
// device state and cache untouched.
func (d *Dispatcher) process(payload []byte) error {
	msg, err := protocol.Decode(payload)
	if err != nil {
		return err
	}

	d.log.Info("message received", "type", msg.Type, "data", fmt.Sprintf("%T", msg.Data))

	if msg.Type == protocol.TypeStatus {
		if emb, ok := msg.Data.(protocol.Embedded); ok && emb.Command == protocol.EmbeddedInitDone {
			// Peer finished booting; repeat the connect-time announce.
			d.announceAll()
			return nil
		}
		return fmt.Errorf("%w: type %q, data %T", ErrUnexpectedMessage, msg.Type, msg.Data)
	}
	if msg.Type != protocol.TypeDevice {
		return fmt.Errorf("%w: type %q, data %T", ErrUnexpectedMessage, msg.Type, msg.Data)
	}

	switch data := msg.Data.(type) {
	case protocol.LasersSet:
		return d.handleLasers(data.Lasers)

	case protocol.AimGet:
		return d.reportState()

	case protocol.AimGetAllPatterns:
		return d.reportCatalog()

	case protocol.AimSet:
		return d.setAndReport(data.Pattern, &data.Fresnel, nil)

	case protocol.AimPreStack:
		if err := d.setAndReport(data.Pattern, &data.Fresnel, nil); err != nil {
			return err
		}
		return d.publish(protocol.DeviceMessage(protocol.AimResponse{Reply: preStackDone}))

	case protocol.AimSetPattern:
		return d.setAndReport(data.Pattern, nil, nil)

	case protocol.AimSetFresnel:
		return d.setAndReport(nil, &data.Value, nil)

	case protocol.AimUploadImage:
		return d.handleUpload(data)

	case protocol.AimDeleteImage:
		return d.handleDelete(data)

	case protocol.AimCorrectionDeltas:
		return d.handleCorrection(data)

	case protocol.AimReboot:
		return d.handleReboot()

	case protocol.AimResponse, protocol.AimDisconnect, protocol.AimAvailablePatterns, protocol.AimState:
		// Our own outbound vocabulary looped back; nothing to do.
		d.log.Debug("ignoring outbound-only command", "data", fmt.Sprintf("%T", msg.Data))
		return nil

	default:
		return fmt.Errorf("%w: type %q, data %T", ErrUnexpectedMessage, msg.Type, msg.Data)
	}
}

// apply computes next and presents the result. The dispatcher's state only
// advances when both steps succeed.
func (d *Dispatcher) apply(next State) error {
	frame, err := d.engine.Compute(next.Wavelength, next.Fresnel, next.Pattern)
	if err != nil {
		return err
	}
	if err := d.sink.Present(frame); err != nil {
		return err
	}
	d.state = next
	return nil
}

// preview renders a payload for error logs, truncated to keep image uploads
// out of the log file.
func preview(payload []byte) string {
	if len(payload) <= previewLimit {
		return string(payload)
	}
	return fmt.Sprintf("%s... (%d bytes)", payload[:previewLimit], len(payload))
}
