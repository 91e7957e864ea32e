package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/lumenlab/slm-aim/internal/catalog"
)

// Type is the top-level message discriminant.
type Type string

// Message types.
const (
	TypeLog    Type = "log"
	TypeDevice Type = "device"
	TypeStatus Type = "status"
)

// Device selects the payload family inside "data".
type Device string

// Payload families.
const (
	DeviceEmbedded Device = "embedded"
	DeviceLasers   Device = "lasers"
	DeviceAim      Device = "aim"
)

// Wire command names. These are fixed by the deployed peers; PreStack keeps
// its historical capitalisation.
const (
	cmdGet               = "get"
	cmdSet               = "set"
	cmdGetAllPatterns    = "getAllPatterns"
	cmdAvailablePatterns = "availablePatterns"
	cmdPreStack          = "PreStack"
	cmdSetPattern        = "setpattern"
	cmdSetFresnel        = "setfresnel"
	cmdResponse          = "response"
	cmdUploadImage       = "uploadimage"
	cmdDeleteImage       = "deleteimage"
	cmdDisconnect        = "disconnect"
	cmdCorrectionDeltas  = "setCorrectionPatternDeltas"
	cmdReboot            = "reboot"
	cmdState             = "state"
	cmdInitDone          = "initdone"
)

// Message is the envelope every payload travels in.
type Message struct {
	Type Type `json:"type"`
	Data Data `json:"data"`
}

// Data is implemented by every payload variant. The method is unexported so
// the variant set is closed: dispatch code can type-switch over it and treat
// an unhandled variant as a programming error.
type Data interface {
	device() Device
}

// DeviceMessage wraps data in a "device"-typed envelope.
func DeviceMessage(data Data) Message {
	return Message{Type: TypeDevice, Data: data}
}

// StatusMessage wraps data in a "status"-typed envelope.
func StatusMessage(data Data) Message {
	return Message{Type: TypeStatus, Data: data}
}

// Encode renders m to its wire form.
func Encode(m Message) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode: %w", err)
	}
	return payload, nil
}

// Decode parses one inbound payload, validating both union tags and every
// required field of the selected variant.
func Decode(payload []byte) (Message, error) {
	var env struct {
		Type Type            `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		return Message{}, fmt.Errorf("protocol: envelope: %w", err)
	}
	switch env.Type {
	case TypeLog, TypeDevice, TypeStatus:
	default:
		return Message{}, fmt.Errorf("%w %q", ErrUnknownType, env.Type)
	}

	var hdr struct {
		Device  Device `json:"device"`
		Command string `json:"command"`
	}
	if err := json.Unmarshal(env.Data, &hdr); err != nil {
		return Message{}, fmt.Errorf("protocol: data: %w", err)
	}

	data, err := decodeData(hdr.Device, hdr.Command, env.Data)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: env.Type, Data: data}, nil
}

func decodeData(dev Device, command string, raw []byte) (Data, error) {
	switch dev {
	case DeviceEmbedded:
		switch command {
		case cmdInitDone:
			return Embedded{Command: EmbeddedInitDone}, nil
		case cmdSet:
			return Embedded{Command: EmbeddedSet}, nil
		}
	case DeviceLasers:
		switch command {
		case cmdGet:
			return LasersGet{}, nil
		case cmdAvailablePatterns:
			return LasersAvailablePatterns{}, nil
		case cmdSet:
			var aux struct {
				Lasers *[]LaserState `json:"lasers"`
			}
			if err := json.Unmarshal(raw, &aux); err != nil {
				return nil, fmt.Errorf("protocol: lasers set: %w", err)
			}
			if aux.Lasers == nil {
				return nil, fmt.Errorf("%w: lasers set requires lasers", ErrMissingField)
			}
			return LasersSet{Lasers: *aux.Lasers}, nil
		}
	case DeviceAim:
		return decodeAim(command, raw)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownDevice, dev)
	}
	return nil, fmt.Errorf("%w %q for device %s", ErrUnknownCommand, command, dev)
}

//nolint:gocyclo // one arm per wire command; splitting would obscure the variant set
func decodeAim(command string, raw []byte) (Data, error) {
	switch command {
	case cmdGet:
		return AimGet{}, nil

	case cmdGetAllPatterns:
		return AimGetAllPatterns{}, nil

	case cmdReboot:
		return AimReboot{}, nil

	case cmdDisconnect:
		return AimDisconnect{}, nil

	case cmdSet, cmdPreStack:
		var aux struct {
			Pattern json.RawMessage `json:"pattern"`
			Fresnel *int            `json:"fresnel"`
		}
		if err := json.Unmarshal(raw, &aux); err != nil {
			return nil, fmt.Errorf("protocol: %s: %w", command, err)
		}
		if aux.Pattern == nil || aux.Fresnel == nil {
			return nil, fmt.Errorf("%w: %s requires pattern and fresnel", ErrMissingField, command)
		}
		sel, err := ParseSelector(aux.Pattern)
		if err != nil {
			return nil, err
		}
		if command == cmdPreStack {
			return AimPreStack{Pattern: sel, Fresnel: *aux.Fresnel}, nil
		}
		return AimSet{Pattern: sel, Fresnel: *aux.Fresnel}, nil

	case cmdSetPattern:
		var aux struct {
			Pattern json.RawMessage `json:"pattern"`
		}
		if err := json.Unmarshal(raw, &aux); err != nil {
			return nil, fmt.Errorf("protocol: setpattern: %w", err)
		}
		if aux.Pattern == nil {
			return nil, fmt.Errorf("%w: setpattern requires pattern", ErrMissingField)
		}
		sel, err := ParseSelector(aux.Pattern)
		if err != nil {
			return nil, err
		}
		return AimSetPattern{Pattern: sel}, nil

	case cmdSetFresnel:
		var aux struct {
			Value *int `json:"value"`
		}
		if err := json.Unmarshal(raw, &aux); err != nil {
			return nil, fmt.Errorf("protocol: setfresnel: %w", err)
		}
		if aux.Value == nil {
			return nil, fmt.Errorf("%w: setfresnel requires value", ErrMissingField)
		}
		return AimSetFresnel{Value: *aux.Value}, nil

	case cmdResponse:
		var aux struct {
			Reply *string `json:"reply"`
		}
		if err := json.Unmarshal(raw, &aux); err != nil {
			return nil, fmt.Errorf("protocol: response: %w", err)
		}
		if aux.Reply == nil {
			return nil, fmt.Errorf("%w: response requires reply", ErrMissingField)
		}
		return AimResponse{Reply: *aux.Reply}, nil

	case cmdUploadImage:
		var aux struct {
			Name      *string `json:"name"`
			ImageData *string `json:"imagedata"`
		}
		if err := json.Unmarshal(raw, &aux); err != nil {
			return nil, fmt.Errorf("protocol: uploadimage: %w", err)
		}
		if aux.Name == nil || aux.ImageData == nil {
			return nil, fmt.Errorf("%w: uploadimage requires name and imagedata", ErrMissingField)
		}
		return AimUploadImage{Name: *aux.Name, ImageData: *aux.ImageData}, nil

	case cmdDeleteImage:
		var aux struct {
			Name *string `json:"name"`
		}
		if err := json.Unmarshal(raw, &aux); err != nil {
			return nil, fmt.Errorf("protocol: deleteimage: %w", err)
		}
		if aux.Name == nil {
			return nil, fmt.Errorf("%w: deleteimage requires name", ErrMissingField)
		}
		return AimDeleteImage{Name: *aux.Name}, nil

	case cmdCorrectionDeltas:
		var aux struct {
			Wavelength *uint32 `json:"wavelength"`
			ImageData  *string `json:"imagedata"`
			Shape      *[2]int `json:"shape_xy"`
		}
		if err := json.Unmarshal(raw, &aux); err != nil {
			return nil, fmt.Errorf("protocol: setCorrectionPatternDeltas: %w", err)
		}
		if aux.Wavelength == nil || aux.ImageData == nil || aux.Shape == nil {
			return nil, fmt.Errorf("%w: setCorrectionPatternDeltas requires wavelength, imagedata and shape_xy", ErrMissingField)
		}
		return AimCorrectionDeltas{Wavelength: *aux.Wavelength, ImageData: *aux.ImageData, Shape: *aux.Shape}, nil

	case cmdAvailablePatterns:
		var aux struct {
			Patterns *catalog.Catalog `json:"patterns"`
		}
		if err := json.Unmarshal(raw, &aux); err != nil {
			return nil, fmt.Errorf("protocol: availablePatterns: %w", err)
		}
		if aux.Patterns == nil {
			return nil, fmt.Errorf("%w: availablePatterns requires patterns", ErrMissingField)
		}
		return AimAvailablePatterns{Patterns: aux.Patterns}, nil

	case cmdState:
		var aux struct {
			Wavelength *uint32         `json:"wavelength"`
			Fresnel    *int            `json:"fresnel"`
			Pattern    json.RawMessage `json:"pattern"`
		}
		if err := json.Unmarshal(raw, &aux); err != nil {
			return nil, fmt.Errorf("protocol: state: %w", err)
		}
		if aux.Wavelength == nil || aux.Fresnel == nil || aux.Pattern == nil {
			return nil, fmt.Errorf("%w: state requires wavelength, fresnel and pattern", ErrMissingField)
		}
		sel, err := ParseSelector(aux.Pattern)
		if err != nil {
			return nil, err
		}
		return AimState{Wavelength: *aux.Wavelength, Fresnel: *aux.Fresnel, Pattern: sel}, nil
	}
	return nil, fmt.Errorf("%w %q for device %s", ErrUnknownCommand, command, DeviceAim)
}
