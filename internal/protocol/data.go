package protocol

import (
	"encoding/json"

	"github.com/lumenlab/slm-aim/internal/catalog"
)

// header carries the two union tags every data object starts with. Wire
// structs embed it so encoding/json flattens the tags alongside the payload
// fields.
type header struct {
	Device  Device `json:"device"`
	Command string `json:"command"`
}

// EmbeddedCommand is a command of the embedded controller family.
type EmbeddedCommand string

// Embedded controller commands.
const (
	EmbeddedInitDone EmbeddedCommand = EmbeddedCommand(cmdInitDone)
	EmbeddedSet      EmbeddedCommand = EmbeddedCommand(cmdSet)
)

// Embedded is a payload from the embedded controller; it carries a command
// and nothing else.
type Embedded struct {
	Command EmbeddedCommand
}

func (Embedded) device() Device { return DeviceEmbedded }

// MarshalJSON renders the tag-only embedded payload.
func (e Embedded) MarshalJSON() ([]byte, error) {
	return json.Marshal(header{DeviceEmbedded, string(e.Command)})
}

// LaserState is one laser line as reported by the embedded subsystem.
type LaserState struct {
	Name       string `json:"name"`
	State      uint32 `json:"state"`
	Wavelength uint32 `json:"wavelength"`
	Intensity  uint32 `json:"intensity"`
}

// LasersGet requests the current laser states. Outbound at startup and on
// peer re-initialisation.
type LasersGet struct{}

func (LasersGet) device() Device { return DeviceLasers }

// MarshalJSON renders the tag-only laser request.
func (LasersGet) MarshalJSON() ([]byte, error) {
	return json.Marshal(header{DeviceLasers, cmdGet})
}

// LasersAvailablePatterns is a tag-only laser-family broadcast. Decoded for
// completeness; the dispatcher treats it as unexpected.
type LasersAvailablePatterns struct{}

func (LasersAvailablePatterns) device() Device { return DeviceLasers }

// MarshalJSON renders the tag-only broadcast.
func (LasersAvailablePatterns) MarshalJSON() ([]byte, error) {
	return json.Marshal(header{DeviceLasers, cmdAvailablePatterns})
}

// LasersSet reports the full laser bank state.
type LasersSet struct {
	Lasers []LaserState
}

func (LasersSet) device() Device { return DeviceLasers }

// MarshalJSON renders the laser bank report.
func (l LasersSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		header
		Lasers []LaserState `json:"lasers"`
	}{header{DeviceLasers, cmdSet}, l.Lasers})
}

// AimGet asks for a current-state report.
type AimGet struct{}

// AimGetAllPatterns asks for an availablePatterns report.
type AimGetAllPatterns struct{}

// AimReboot requests an OS-level reboot of the controller host.
type AimReboot struct{}

// AimDisconnect announces loss of this controller; registered as the
// transport last-will.
type AimDisconnect struct{}

// AimSet replaces the pattern selection and fresnel power together.
type AimSet struct {
	Pattern Selector
	Fresnel int
}

// AimPreStack is AimSet plus an explicit completion acknowledgment, used by
// peers that sequence acquisition on it.
type AimPreStack struct {
	Pattern Selector
	Fresnel int
}

// AimSetPattern replaces only the pattern selection.
type AimSetPattern struct {
	Pattern Selector
}

// AimSetFresnel replaces only the fresnel power.
type AimSetFresnel struct {
	Value int
}

// AimResponse is a free-form textual acknowledgment.
type AimResponse struct {
	Reply string
}

// AimUploadImage stores a peer-supplied pattern image. ImageData is a data
// URL: "<mimeheader>;base64,<body>".
type AimUploadImage struct {
	Name      string
	ImageData string
}

// AimDeleteImage removes an uploaded pattern image.
type AimDeleteImage struct {
	Name string
}

// AimCorrectionDeltas merges an additive delta raster into the flatness
// correction for one wavelength. ImageData is base64-encoded little-endian
// float32 samples, row-major over Shape (rows, cols).
type AimCorrectionDeltas struct {
	Wavelength uint32
	ImageData  string
	Shape      [2]int
}

// AimCorrectionAck acknowledges a correction merge. It shares its wire
// command name with AimCorrectionDeltas; inbound payloads always decode as
// the request form.
type AimCorrectionAck struct {
	Wavelength uint32
	Success    bool
}

// AimAvailablePatterns reports the pattern catalog.
type AimAvailablePatterns struct {
	Patterns *catalog.Catalog
}

// AimState reports the full device state: the reply to AimGet and the
// broadcast after every state change.
type AimState struct {
	Wavelength uint32
	Fresnel    int
	Pattern    Selector
}

func (AimGet) device() Device               { return DeviceAim }
func (AimGetAllPatterns) device() Device    { return DeviceAim }
func (AimReboot) device() Device            { return DeviceAim }
func (AimDisconnect) device() Device        { return DeviceAim }
func (AimSet) device() Device               { return DeviceAim }
func (AimPreStack) device() Device          { return DeviceAim }
func (AimSetPattern) device() Device        { return DeviceAim }
func (AimSetFresnel) device() Device        { return DeviceAim }
func (AimResponse) device() Device          { return DeviceAim }
func (AimUploadImage) device() Device       { return DeviceAim }
func (AimDeleteImage) device() Device       { return DeviceAim }
func (AimCorrectionDeltas) device() Device  { return DeviceAim }
func (AimCorrectionAck) device() Device     { return DeviceAim }
func (AimAvailablePatterns) device() Device { return DeviceAim }
func (AimState) device() Device             { return DeviceAim }

// MarshalJSON renders the tag-only aim request.
func (AimGet) MarshalJSON() ([]byte, error) {
	return json.Marshal(header{DeviceAim, cmdGet})
}

// MarshalJSON renders the tag-only catalog request.
func (AimGetAllPatterns) MarshalJSON() ([]byte, error) {
	return json.Marshal(header{DeviceAim, cmdGetAllPatterns})
}

// MarshalJSON renders the tag-only reboot request.
func (AimReboot) MarshalJSON() ([]byte, error) {
	return json.Marshal(header{DeviceAim, cmdReboot})
}

// MarshalJSON renders the tag-only disconnect announcement.
func (AimDisconnect) MarshalJSON() ([]byte, error) {
	return json.Marshal(header{DeviceAim, cmdDisconnect})
}

// MarshalJSON renders the combined pattern/fresnel update.
func (a AimSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		header
		Pattern Selector `json:"pattern"`
		Fresnel int      `json:"fresnel"`
	}{header{DeviceAim, cmdSet}, a.Pattern, a.Fresnel})
}

// MarshalJSON renders the acknowledged pattern/fresnel update.
func (a AimPreStack) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		header
		Pattern Selector `json:"pattern"`
		Fresnel int      `json:"fresnel"`
	}{header{DeviceAim, cmdPreStack}, a.Pattern, a.Fresnel})
}

// MarshalJSON renders the pattern-only update.
func (a AimSetPattern) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		header
		Pattern Selector `json:"pattern"`
	}{header{DeviceAim, cmdSetPattern}, a.Pattern})
}

// MarshalJSON renders the fresnel-only update.
func (a AimSetFresnel) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		header
		Value int `json:"value"`
	}{header{DeviceAim, cmdSetFresnel}, a.Value})
}

// MarshalJSON renders the textual acknowledgment.
func (a AimResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		header
		Reply string `json:"reply"`
	}{header{DeviceAim, cmdResponse}, a.Reply})
}

// MarshalJSON renders the upload request.
func (a AimUploadImage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		header
		Name      string `json:"name"`
		ImageData string `json:"imagedata"`
	}{header{DeviceAim, cmdUploadImage}, a.Name, a.ImageData})
}

// MarshalJSON renders the delete request.
func (a AimDeleteImage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		header
		Name string `json:"name"`
	}{header{DeviceAim, cmdDeleteImage}, a.Name})
}

// MarshalJSON renders the correction-delta request.
func (a AimCorrectionDeltas) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		header
		Wavelength uint32 `json:"wavelength"`
		ImageData  string `json:"imagedata"`
		Shape      [2]int `json:"shape_xy"`
	}{header{DeviceAim, cmdCorrectionDeltas}, a.Wavelength, a.ImageData, a.Shape})
}

// MarshalJSON renders the correction acknowledgment.
func (a AimCorrectionAck) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		header
		Wavelength uint32 `json:"wavelength"`
		Success    bool   `json:"success"`
	}{header{DeviceAim, cmdCorrectionDeltas}, a.Wavelength, a.Success})
}

// MarshalJSON renders the catalog report.
func (a AimAvailablePatterns) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		header
		Patterns *catalog.Catalog `json:"patterns"`
	}{header{DeviceAim, cmdAvailablePatterns}, a.Patterns})
}

// MarshalJSON renders the state report.
func (a AimState) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		header
		Wavelength uint32   `json:"wavelength"`
		Fresnel    int      `json:"fresnel"`
		Pattern    Selector `json:"pattern"`
	}{header{DeviceAim, cmdState}, a.Wavelength, a.Fresnel, a.Pattern})
}
