package protocol

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseSelectorVariants(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Selector
	}{
		{
			name: "spot",
			data: `{"spot":{"position_xy":[960,540],"diameter":60.5,"gradient_xy":[0.1,0.2],"background_gradient_xy":[0,0]}}`,
			want: Spot{Position: [2]float64{960, 540}, Diameter: 60.5, Gradient: [2]float64{0.1, 0.2}, BackgroundGradient: [2]float64{0, 0}},
		},
		{
			name: "custom",
			data: `{"custom":{"filename":"donut.png"}}`,
			want: Custom{Filename: "donut.png"},
		},
		{
			name: "base preserves declared property order",
			data: `{"gauss":{"size":"10","shape":"round","offset":"3"}}`,
			want: Base{Family: "gauss", Properties: []Property{{"size", "10"}, {"shape", "round"}, {"offset", "3"}}},
		},
		{
			name: "base with no properties",
			data: `{"airy":{}}`,
			want: Base{Family: "airy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelector([]byte(tt.data))
			if err != nil {
				t.Fatalf("ParseSelector() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSelector() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseSelectorRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty object", `{}`},
		{"two entries", `{"gauss":{"size":"10"},"airy":{}}`},
		{"not an object", `[1,2]`},
		{"spot missing diameter", `{"spot":{"position_xy":[0,0],"gradient_xy":[0,0],"background_gradient_xy":[0,0]}}`},
		{"custom missing filename", `{"custom":{}}`},
		{"base with non-string value", `{"gauss":{"size":10}}`},
		{"base value not an object", `{"gauss":"size"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSelector([]byte(tt.data)); !errors.Is(err, ErrBadSelector) {
				t.Errorf("ParseSelector(%s) error = %v, want ErrBadSelector", tt.data, err)
			}
		})
	}
}

func TestSelectorMarshalRoundTrip(t *testing.T) {
	selectors := []Selector{
		Spot{Position: [2]float64{1, 2}, Diameter: 3, Gradient: [2]float64{4, 5}, BackgroundGradient: [2]float64{6, 7}},
		Custom{Filename: "x.png"},
		Base{Family: "gauss", Properties: []Property{{"size", "10"}, {"shape", "round"}}},
	}

	for _, sel := range selectors {
		data, err := json.Marshal(sel)
		if err != nil {
			t.Fatalf("marshal %T error = %v", sel, err)
		}
		back, err := ParseSelector(data)
		if err != nil {
			t.Fatalf("ParseSelector(%s) error = %v", data, err)
		}
		if !reflect.DeepEqual(back, sel) {
			t.Errorf("round trip %T: got %+v, want %+v", sel, back, sel)
		}
	}
}

func TestBaseMarshalKeepsPropertyOrder(t *testing.T) {
	b := Base{Family: "gauss", Properties: []Property{{"zeta", "1"}, {"alpha", "2"}}}
	data, err := b.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if want := `{"gauss":{"zeta":"1","alpha":"2"}}`; string(data) != want {
		t.Errorf("MarshalJSON() = %s, want %s", data, want)
	}
}

func TestSelectorSpecYAML(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want Selector
	}{
		{
			name: "spot",
			yaml: "spot:\n  position_xy: [960, 540]\n  diameter: 60\n  gradient_xy: [0.1, 0]\n  background_gradient_xy: [0, 0]\n",
			want: Spot{Position: [2]float64{960, 540}, Diameter: 60, Gradient: [2]float64{0.1, 0}},
		},
		{
			name: "custom",
			yaml: "custom:\n  filename: donut.png\n",
			want: Custom{Filename: "donut.png"},
		},
		{
			name: "base keeps mapping order",
			yaml: "gauss:\n  size: 10\n  shape: round\n",
			want: Base{Family: "gauss", Properties: []Property{{"size", "10"}, {"shape", "round"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var spec SelectorSpec
			if err := yaml.Unmarshal([]byte(tt.yaml), &spec); err != nil {
				t.Fatalf("yaml.Unmarshal() error = %v", err)
			}
			if !reflect.DeepEqual(spec.Selector, tt.want) {
				t.Errorf("Selector = %+v, want %+v", spec.Selector, tt.want)
			}
		})
	}
}

func TestSelectorSpecYAMLRejectsMultiEntry(t *testing.T) {
	var spec SelectorSpec
	err := yaml.Unmarshal([]byte("spot:\n  diameter: 1\ngauss:\n  size: 10\n"), &spec)
	if !errors.Is(err, ErrBadSelector) {
		t.Errorf("yaml.Unmarshal() error = %v, want ErrBadSelector", err)
	}
}
