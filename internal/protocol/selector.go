package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Selector variant keys. Spot and custom are reserved; any other key names a
// file-based pattern family.
const (
	selectorSpot   = "spot"
	selectorCustom = "custom"
)

// Selector is one pattern selection: a synthetic spot, an uploaded custom
// file, or a file-based pattern family with property values. Exactly one
// variant is active at a time.
type Selector interface {
	// Variant returns "spot", "custom" or "base".
	Variant() string
}

// Spot is a fully synthetic selection: a disk of the given diameter at the
// given position carrying the inner gradient, over a background gradient.
type Spot struct {
	Position           [2]float64 `json:"position_xy" yaml:"position_xy"`
	Diameter           float64    `json:"diameter" yaml:"diameter"`
	Gradient           [2]float64 `json:"gradient_xy" yaml:"gradient_xy"`
	BackgroundGradient [2]float64 `json:"background_gradient_xy" yaml:"background_gradient_xy"`
}

// Custom selects an uploaded file by name from the upload directory.
type Custom struct {
	Filename string `json:"filename" yaml:"filename"`
}

// Property is one (name, value) pair of a file-based pattern, in the order
// the peer declared it. Order is meaningful: it drives filename resolution.
type Property struct {
	Name  string
	Value string
}

// Base selects a file-based pattern family plus its property values.
type Base struct {
	Family     string
	Properties []Property
}

// Variant identifies the selector kind for logging and dispatch.
func (Spot) Variant() string   { return "spot" }
func (Custom) Variant() string { return "custom" }
func (Base) Variant() string   { return "base" }

// MarshalJSON renders {"spot": {...}}.
func (s Spot) MarshalJSON() ([]byte, error) {
	type alias Spot
	return json.Marshal(struct {
		Spot alias `json:"spot"`
	}{alias(s)})
}

// MarshalJSON renders {"custom": {"filename": ...}}.
func (c Custom) MarshalJSON() ([]byte, error) {
	type alias Custom
	return json.Marshal(struct {
		Custom alias `json:"custom"`
	}{alias(c)})
}

// MarshalJSON renders the single-entry family object with properties in
// declared order, which encoding/json map marshalling would not preserve.
func (b Base) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeJSONString(&buf, b.Family); err != nil {
		return nil, err
	}
	buf.WriteString(":{")
	for i, p := range b.Properties {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, p.Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONString(&buf, p.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(enc)
	return nil
}

// ParseSelector parses one selector value: a JSON object with exactly one
// entry. The key chooses the variant; unknown keys name a file-based family
// whose value object maps property names to string values, order preserved.
func ParseSelector(data []byte) (Selector, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSelector, err)
	}
	if !dec.More() {
		return nil, fmt.Errorf("%w: empty object", ErrBadSelector)
	}
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSelector, err)
	}
	key, ok := tok.(string)
	if !ok {
		return nil, fmt.Errorf("%w: non-string key", ErrBadSelector)
	}

	var sel Selector
	switch key {
	case selectorSpot:
		sel, err = parseSpot(dec)
	case selectorCustom:
		sel, err = parseCustom(dec)
	default:
		sel, err = parseBase(dec, key)
	}
	if err != nil {
		return nil, err
	}

	if dec.More() {
		return nil, fmt.Errorf("%w: more than one entry", ErrBadSelector)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSelector, err)
	}
	return sel, nil
}

func parseSpot(dec *json.Decoder) (Selector, error) {
	var aux struct {
		Position           *[2]float64 `json:"position_xy"`
		Diameter           *float64    `json:"diameter"`
		Gradient           *[2]float64 `json:"gradient_xy"`
		BackgroundGradient *[2]float64 `json:"background_gradient_xy"`
	}
	if err := dec.Decode(&aux); err != nil {
		return nil, fmt.Errorf("%w: spot: %v", ErrBadSelector, err)
	}
	if aux.Position == nil || aux.Diameter == nil || aux.Gradient == nil || aux.BackgroundGradient == nil {
		return nil, fmt.Errorf("%w: spot requires position_xy, diameter, gradient_xy, background_gradient_xy", ErrBadSelector)
	}
	return Spot{
		Position:           *aux.Position,
		Diameter:           *aux.Diameter,
		Gradient:           *aux.Gradient,
		BackgroundGradient: *aux.BackgroundGradient,
	}, nil
}

func parseCustom(dec *json.Decoder) (Selector, error) {
	var aux struct {
		Filename *string `json:"filename"`
	}
	if err := dec.Decode(&aux); err != nil {
		return nil, fmt.Errorf("%w: custom: %v", ErrBadSelector, err)
	}
	if aux.Filename == nil {
		return nil, fmt.Errorf("%w: custom requires filename", ErrBadSelector)
	}
	return Custom{Filename: *aux.Filename}, nil
}

func parseBase(dec *json.Decoder, family string) (Selector, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("%w: family %s: %v", ErrBadSelector, family, err)
	}
	b := Base{Family: family}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: family %s: %v", ErrBadSelector, family, err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: family %s: non-string key", ErrBadSelector, family)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: family %s: property %s must be a string", ErrBadSelector, family, name)
		}
		b.Properties = append(b.Properties, Property{Name: name, Value: value})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, fmt.Errorf("%w: family %s: %v", ErrBadSelector, family, err)
	}
	return b, nil
}

func expectDelim(dec *json.Decoder, d json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if got, ok := tok.(json.Delim); !ok || got != d {
		return fmt.Errorf("expected %q, got %v", d, tok)
	}
	return nil
}

// SelectorSpec adapts a Selector for YAML configuration fields (the startup
// default pattern). It accepts the same three single-entry mapping shapes as
// the JSON wire form, preserving property order through the YAML node API.
type SelectorSpec struct {
	Selector
}

// UnmarshalYAML parses the single-entry mapping into the right variant.
func (s *SelectorSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("%w: want a single-entry mapping", ErrBadSelector)
	}
	key, val := node.Content[0].Value, node.Content[1]
	switch key {
	case selectorSpot:
		var sp Spot
		if err := val.Decode(&sp); err != nil {
			return fmt.Errorf("%w: spot: %v", ErrBadSelector, err)
		}
		s.Selector = sp
	case selectorCustom:
		var c Custom
		if err := val.Decode(&c); err != nil {
			return fmt.Errorf("%w: custom: %v", ErrBadSelector, err)
		}
		s.Selector = c
	default:
		if val.Kind != yaml.MappingNode {
			return fmt.Errorf("%w: family %s: want a mapping of properties", ErrBadSelector, key)
		}
		b := Base{Family: key}
		for i := 0; i < len(val.Content); i += 2 {
			prop, pv := val.Content[i], val.Content[i+1]
			if pv.Kind != yaml.ScalarNode {
				return fmt.Errorf("%w: family %s: property %s must be a scalar", ErrBadSelector, key, prop.Value)
			}
			b.Properties = append(b.Properties, Property{Name: prop.Value, Value: pv.Value})
		}
		s.Selector = b
	}
	return nil
}
