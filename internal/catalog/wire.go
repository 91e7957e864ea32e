package catalog

import (
	"encoding/json"
	"fmt"
)

// Wire shape: the catalog flattens to a single JSON object. Every family
// name is a top-level key, plus "patternNames" carrying the sorted family
// list. Each family object maps property names to {"values": [...]} and
// carries its property order under "properties".
//
//	{
//	  "gauss": {
//	    "size":  {"values": ["10", "20"]},
//	    "shape": {"values": ["round"]},
//	    "properties": ["size", "shape"]
//	  },
//	  "patternNames": ["gauss"]
//	}

const (
	namesKey      = "patternNames"
	propertiesKey = "properties"
	valuesKey     = "values"
)

type valueList struct {
	Values []string `json:"values"`
}

// MarshalJSON renders the flattened catalog object.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	top := make(map[string]any, len(c.Families)+1)
	for name, f := range c.Families {
		top[name] = f
	}
	top[namesKey] = c.Names
	return json.Marshal(top)
}

// MarshalJSON renders one family as property objects plus the order list.
func (f *Family) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(f.Properties)+1)
	for prop, vals := range f.Values {
		obj[prop] = valueList{Values: vals}
	}
	obj[propertiesKey] = f.Properties
	return json.Marshal(obj)
}

// UnmarshalJSON parses the flattened catalog object.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	c.Families = make(map[string]*Family)
	c.Names = nil
	for key, raw := range top {
		if key == namesKey {
			if err := json.Unmarshal(raw, &c.Names); err != nil {
				return fmt.Errorf("catalog: %s: %w", namesKey, err)
			}
			continue
		}
		var f Family
		if err := json.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("catalog: family %s: %w", key, err)
		}
		c.Families[key] = &f
	}
	return nil
}

// UnmarshalJSON parses one family object, restoring property order from the
// "properties" list.
func (f *Family) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if raw, ok := obj[propertiesKey]; ok {
		if err := json.Unmarshal(raw, &f.Properties); err != nil {
			return fmt.Errorf("%s: %w", propertiesKey, err)
		}
	}
	f.Values = make(map[string][]string, len(f.Properties))
	for _, prop := range f.Properties {
		raw, ok := obj[prop]
		if !ok {
			continue
		}
		var vl valueList
		if err := json.Unmarshal(raw, &vl); err != nil {
			return fmt.Errorf("property %s: %w", prop, err)
		}
		f.Values[prop] = vl.Values
	}
	return nil
}
